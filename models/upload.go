package models

import "time"

// UploadStatus 文件上传状态
type UploadStatus string

const (
	UploadUploading  UploadStatus = "uploading"
	UploadProcessing UploadStatus = "processing"
	UploadCompleted  UploadStatus = "completed"
	UploadError      UploadStatus = "error"
)

// Row 解析得到的原始行，按表头取值
type Row map[string]string

// RowError 行级校验错误
type RowError struct {
	Row     int    `json:"row" bson:"row"`
	Column  string `json:"column,omitempty" bson:"column,omitempty"`
	Message string `json:"message" bson:"message"`
}

// ValidationReport 导入数据校验报告
type ValidationReport struct {
	MissingColumns []string   `json:"missingColumns" bson:"missingColumns"`
	UnknownColumns []string   `json:"unknownColumns,omitempty" bson:"unknownColumns,omitempty"`
	RowErrors      []RowError `json:"rowErrors" bson:"rowErrors"`
	TotalRows      int        `json:"totalRows" bson:"totalRows"`
	ValidRows      int        `json:"validRows" bson:"validRows"`
}

// Valid 表头齐全且所有行校验通过
func (r ValidationReport) Valid() bool {
	return len(r.MissingColumns) == 0 && len(r.RowErrors) == 0
}

// FileUpload 上传文件及其处理状态
type FileUpload struct {
	ID        string            `json:"id" bson:"_id"`
	Name      string            `json:"name" bson:"name"`
	Size      int64             `json:"size" bson:"size"`
	Status    UploadStatus      `json:"status" bson:"status"`
	Progress  int               `json:"progress" bson:"progress"`
	JobID     string            `json:"jobId,omitempty" bson:"jobId,omitempty"`
	Headers   []string          `json:"headers,omitempty" bson:"headers,omitempty"`
	Data      []Row             `json:"-" bson:"data,omitempty"`
	Errors    []string          `json:"errors,omitempty" bson:"errors,omitempty"`
	Report    *ValidationReport `json:"report,omitempty" bson:"report,omitempty"`
	CreatedAt time.Time         `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt" bson:"updatedAt"`
}

// SalesRecord 通过校验的销售记录
type SalesRecord struct {
	ID            string    `json:"id" bson:"_id"`
	UploadID      string    `json:"uploadId" bson:"uploadId"`
	Date          time.Time `json:"date" bson:"date"`
	Customer      string    `json:"customer" bson:"customer"`
	CustomerEmail string    `json:"customerEmail,omitempty" bson:"customerEmail,omitempty"`
	Product       string    `json:"product" bson:"product"`
	Category      string    `json:"category,omitempty" bson:"category,omitempty"`
	Quantity      float64   `json:"quantity" bson:"quantity"`
	UnitPrice     float64   `json:"unitPrice" bson:"unitPrice"`
	TotalAmount   float64   `json:"totalAmount" bson:"totalAmount"`
	Region        string    `json:"region,omitempty" bson:"region,omitempty"`
	SalesRep      string    `json:"salesRep,omitempty" bson:"salesRep,omitempty"`
}
