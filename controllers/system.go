package controllers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/BerniceZTT/salesiq/utils"
)

// HealthCheck 健康检查
func HealthCheck(c *gin.Context) {
	c.JSON(200, gin.H{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// GetDatabaseStatus 数据存储状态
func GetDatabaseStatus(c *gin.Context) {
	status, err := store().Status(c.Request.Context())
	if err != nil {
		utils.ErrorResponse(c, "获取数据库状态失败: "+err.Error(), 500)
		return
	}
	c.JSON(200, status)
}

// GetOperationLogs 获取最近的操作日志，最新的在前
func GetOperationLogs(c *gin.Context) {
	limit := utils.QueryInt(c, "limit", 100)
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	logs, err := store().ListOperationLogs(c.Request.Context(), limit)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.ListResponse(c, "logs", logs, len(logs))
}

// ServeWebSocket 订阅任务进度等实时事件
func ServeWebSocket(c *gin.Context) {
	if eventHub == nil {
		utils.ErrorResponse(c, "实时推送未启用", 503)
		return
	}
	if err := eventHub.ServeWS(c.Writer, c.Request); err != nil {
		// Upgrader 已经写出错误响应
		utils.Logger.Warn().Err(err).Msg("WebSocket升级失败")
	}
}
