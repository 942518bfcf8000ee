package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/BerniceZTT/salesiq/models"
	"github.com/BerniceZTT/salesiq/repository"
	"github.com/BerniceZTT/salesiq/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// maxLoggedResponse 操作日志中保存的最大响应体长度
const maxLoggedResponse = 16 << 10

// 需要记录的HTTP方法
var loggedMethods = map[string]bool{
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodDelete: true,
	http.MethodPatch:  true,
}

// 不需要记录的路径
var excludedPaths = map[string]bool{
	"/api/health":        true,
	"/api/db-status":     true,
	"/api/charts/render": true,
}

// OperationLoggerMiddleware 操作日志记录中间件
func OperationLoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 检查是否需要记录此操作
		if !shouldLogOperation(c) {
			c.Next()
			return
		}

		startTime := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		// 创建自定义响应写入器以捕获响应体
		blw := &bodyLogWriter{
			body:           bytes.NewBufferString(""),
			ResponseWriter: c.Writer,
		}
		c.Writer = blw

		// 读取并重置请求体，上传的文件只记录文件名
		var requestBody interface{}
		contentType := c.Request.Header.Get("Content-Type")
		switch {
		case strings.HasPrefix(contentType, "multipart/form-data"):
			requestBody = "multipart upload"
		case c.Request.Body != nil:
			requestBodyBytes, err := io.ReadAll(c.Request.Body)
			if err != nil {
				utils.Logger.Error().Err(err).Msg("读取请求体失败")
				break
			}
			c.Request.Body = io.NopCloser(bytes.NewBuffer(requestBodyBytes))
			if len(requestBodyBytes) == 0 {
				break
			}
			if isJSON(contentType) {
				if err := json.Unmarshal(requestBodyBytes, &requestBody); err != nil {
					utils.Logger.Warn().Err(err).Msg("解析JSON请求体失败")
					requestBody = string(requestBodyBytes)
				}
			} else {
				requestBody = string(requestBodyBytes)
			}
		}

		// 清理敏感数据
		sanitizedRequestBody := sanitizeData(requestBody)
		sanitizedHeaders := sanitizeHeaders(c.Request.Header)

		// 处理请求
		c.Next()

		responseTime := time.Since(startTime).Milliseconds()

		// 获取响应数据
		var responseData interface{}
		if isJSON(c.Writer.Header().Get("Content-Type")) {
			if err := json.Unmarshal(blw.body.Bytes(), &responseData); err != nil {
				responseData = blw.body.String()
			}
		} else if blw.body.Len() > 0 {
			responseData = fmt.Sprintf("%d bytes", blw.body.Len())
		}
		if s, ok := responseData.(string); ok && len(s) > maxLoggedResponse {
			responseData = s[:maxLoggedResponse]
		}

		// 获取错误信息
		var errorMessage string
		if len(c.Errors) > 0 {
			errorMessage = c.Errors.String()
		} else if c.Writer.Status() >= http.StatusBadRequest {
			if m, ok := responseData.(map[string]interface{}); ok {
				errorMessage, _ = m["error"].(string)
			}
		}

		operationLog := models.OperationLog{
			ID:            uuid.NewString(),
			Method:        method,
			Path:          path,
			Operator:      operatorOf(c),
			RequestBody:   sanitizedRequestBody,
			RequestHeader: sanitizedHeaders,
			ResponseData:  sanitizeData(responseData),
			StatusCode:    c.Writer.Status(),
			Success:       c.Writer.Status() < http.StatusBadRequest,
			ErrorMessage:  errorMessage,
			OperationTime: startTime,
			ResponseTime:  responseTime,
			IPAddress:     getClientIP(c),
			UserAgent:     c.Request.UserAgent(),
		}

		// 保存操作日志，失败时尝试保存最小日志
		if err := saveOperationLog(c.Request.Context(), operationLog); err != nil {
			utils.Logger.Error().Err(err).Msg("保存操作日志失败")
			minimalLog := operationLog
			minimalLog.RequestBody = nil
			minimalLog.RequestHeader = nil
			minimalLog.ResponseData = nil
			minimalLog.ErrorMessage = fmt.Sprintf("保存详细日志失败: %v", err)

			if saveErr := saveOperationLog(c.Request.Context(), minimalLog); saveErr != nil {
				utils.Logger.Error().Err(saveErr).Msg("保存最小日志失败")
			}
		}

		utils.Logger.Debug().
			Str("method", method).
			Str("path", path).
			Int("status", c.Writer.Status()).
			Str("operator", operationLog.Operator).
			Int64("responseTime", responseTime).
			Msg("操作日志记录完成")
	}
}

// shouldLogOperation 检查是否需要记录此操作
func shouldLogOperation(c *gin.Context) bool {
	if excludedPaths[c.Request.URL.Path] {
		return false
	}
	return loggedMethods[c.Request.Method]
}

// operatorOf webhook 请求记录为集成，其他请求为匿名用户
func operatorOf(c *gin.Context) string {
	if id := c.GetString(IntegrationIDKey); id != "" {
		return "integration:" + id
	}
	return "anonymous"
}

// sanitizeData 清理数据中的敏感信息
func sanitizeData(data interface{}) interface{} {
	if data == nil {
		return nil
	}

	if m, ok := data.(map[string]interface{}); ok {
		sanitized := make(map[string]interface{})
		for k, v := range m {
			switch strings.ToLower(k) {
			case "password", "token", "authorization", "secret", "key", "apikey", "webhooktoken":
				sanitized[k] = "******"
			default:
				sanitized[k] = sanitizeData(v)
			}
		}
		return sanitized
	}

	if s, ok := data.([]interface{}); ok {
		sanitized := make([]interface{}, len(s))
		for i, v := range s {
			sanitized[i] = sanitizeData(v)
		}
		return sanitized
	}

	return data
}

// sanitizeHeaders 清理请求头中的敏感信息
func sanitizeHeaders(headers http.Header) map[string]interface{} {
	sanitized := make(map[string]interface{})
	for k, v := range headers {
		switch strings.ToLower(k) {
		case "authorization":
			if len(v) > 0 {
				sanitized[k] = getShortAuthHeader(v[0])
			}
		case "cookie", "x-api-key":
			sanitized[k] = "******"
		default:
			sanitized[k] = v
		}
	}
	return sanitized
}

// getClientIP 获取客户端IP地址
func getClientIP(c *gin.Context) string {
	if ip := c.Request.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := c.Request.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return c.ClientIP()
}

// saveOperationLog 保存操作日志，请求取消后仍然写入
func saveOperationLog(ctx context.Context, log models.OperationLog) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	return repository.GetStore().AppendOperationLog(ctx, log)
}
