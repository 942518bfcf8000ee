package utils

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ApiError 自定义API错误
type ApiError struct {
	StatusCode int
	Message    string
	ErrorCode  string
	Details    interface{}
}

// Error 实现error接口
func (e *ApiError) Error() string {
	return e.Message
}

// NewApiError 创建API错误
func NewApiError(message string, statusCode int, errorCode string) *ApiError {
	return &ApiError{
		StatusCode: statusCode,
		Message:    message,
		ErrorCode:  errorCode,
	}
}

// WithDetails 附加错误详情
func (e *ApiError) WithDetails(details interface{}) *ApiError {
	e.Details = details
	return e
}

// CreateNotFoundError 创建资源不存在错误
func CreateNotFoundError(resource string) *ApiError {
	return NewApiError(resource+"不存在", http.StatusNotFound, "RESOURCE_NOT_FOUND")
}

// CreateBadRequestError 创建错误请求错误
func CreateBadRequestError(message string) *ApiError {
	return NewApiError(message, http.StatusBadRequest, "BAD_REQUEST")
}

// CreateConfirmationRequiredError 删除等破坏性操作需要确认
func CreateConfirmationRequiredError(resource string) *ApiError {
	return NewApiError("删除"+resource+"需要确认 (confirm=true)", http.StatusConflict, "CONFIRMATION_REQUIRED")
}

// CreateUnauthorizedError 创建未授权错误
func CreateUnauthorizedError(message string) *ApiError {
	return NewApiError(message, http.StatusUnauthorized, "UNAUTHORIZED")
}

// CreateConflictError 创建状态冲突错误
func CreateConflictError(message string) *ApiError {
	return NewApiError(message, http.StatusConflict, "CONFLICT")
}

// HandleError 处理错误并返回适当的响应
func HandleError(c *gin.Context, err error) {
	if c == nil {
		return
	}
	// 记录错误
	errorMessage := err.Error()

	// 处理API错误
	var apiErr *ApiError
	if errors.As(err, &apiErr) {
		Logger.Warn().
			Str("path", c.Request.URL.Path).
			Str("method", c.Request.Method).
			Str("code", apiErr.ErrorCode).
			Msg("API错误: " + errorMessage)

		response := gin.H{"success": false, "error": apiErr.Message}
		if apiErr.ErrorCode != "" {
			response["code"] = apiErr.ErrorCode
		}
		if apiErr.Details != nil {
			response["details"] = apiErr.Details
		}
		c.AbortWithStatusJSON(apiErr.StatusCode, response)
		return
	}

	var appErr *AppError
	if errors.As(err, &appErr) && appErr.StatusCode > 0 {
		LogError(appErr.Err, map[string]interface{}{
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		}, appErr.Message)
		c.AbortWithStatusJSON(appErr.StatusCode, gin.H{
			"success": false,
			"error":   errorMessage,
		})
		return
	}

	// 其他未预期的错误
	LogError(err, map[string]interface{}{
		"path":   c.Request.URL.Path,
		"method": c.Request.Method,
	}, "API错误")

	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
		"error":   errorMessage,
		"code":    "INTERNAL_ERROR",
		"success": false,
	})
}

// SuccessResponse 成功响应
func SuccessResponse(c *gin.Context, data interface{}, message string, statusCode ...int) {
	code := http.StatusOK
	if len(statusCode) > 0 {
		code = statusCode[0]
	}

	response := gin.H{"success": true}
	if data != nil {
		response["data"] = data
	}
	if message != "" {
		response["message"] = message
	}

	c.JSON(code, response)
}

// ErrorResponse 错误响应
func ErrorResponse(c *gin.Context, message string, statusCode int) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error":   message,
	})
}

// AppError 应用错误类型
type AppError struct {
	Message    string
	StatusCode int
	Err        error
}

// Error 实现error接口
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap 返回底层错误
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError 创建新的应用错误
func NewAppError(message string, statusCode int, err error) *AppError {
	return &AppError{
		Message:    message,
		StatusCode: statusCode,
		Err:        err,
	}
}
