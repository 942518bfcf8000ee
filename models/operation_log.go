package models

import (
	"time"
)

// OperationLog 操作日志结构体
type OperationLog struct {
	ID            string      `json:"id" bson:"_id"`
	Method        string      `json:"method" bson:"method"`
	Path          string      `json:"path" bson:"path"`
	Operator      string      `json:"operator" bson:"operator"`
	RequestBody   interface{} `json:"requestBody" bson:"requestBody"`
	RequestHeader interface{} `json:"requestHeaders" bson:"requestHeaders"`
	ResponseData  interface{} `json:"responseData" bson:"responseData"`
	StatusCode    int         `json:"statusCode" bson:"statusCode"`
	Success       bool        `json:"success" bson:"success"`
	ErrorMessage  string      `json:"errorMessage,omitempty" bson:"errorMessage,omitempty"`
	OperationTime time.Time   `json:"operationTime" bson:"operationTime"`
	ResponseTime  int64       `json:"responseTime" bson:"responseTime"` // 毫秒
	IPAddress     string      `json:"ipAddress" bson:"ipAddress"`
	UserAgent     string      `json:"userAgent" bson:"userAgent"`
}
