package middleware

import (
	"github.com/BerniceZTT/salesiq/utils"

	"github.com/gin-gonic/gin"
)

// ErrorHandler 全局错误处理中间件，处理 c.Error 记录但未响应的错误
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// 如果已经写出响应，不重复处理
		if c.Writer.Written() || c.Writer.Status() >= 400 {
			return
		}

		// 获取最后一个错误
		if err := c.Errors.Last(); err != nil {
			utils.HandleError(c, err.Err)
		}
	}
}
