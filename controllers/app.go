package controllers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/BerniceZTT/salesiq/config"
	"github.com/BerniceZTT/salesiq/realtime"
	"github.com/BerniceZTT/salesiq/repository"
	"github.com/BerniceZTT/salesiq/service"
	"github.com/BerniceZTT/salesiq/tasks"
	"github.com/BerniceZTT/salesiq/utils"
)

// 推送给前端的事件
const (
	EventUploadUpdated      = "upload.updated"
	EventIntegrationUpdated = "integration.updated"
)

// 控制器依赖，启动时由 Setup 注入
var (
	appConfig       = config.LoadConfig()
	taskManager     = tasks.NewManager(nil)
	eventHub        *realtime.Hub
	reportScheduler *service.ReportScheduler
)

// Setup 注入控制器依赖，hub 和 scheduler 可以为 nil
func Setup(cfg *config.Config, manager *tasks.Manager, hub *realtime.Hub, scheduler *service.ReportScheduler) {
	appConfig = cfg
	taskManager = manager
	eventHub = hub
	reportScheduler = scheduler
}

// publish 推送事件，未配置 hub 时忽略
func publish(event string, payload interface{}) {
	if eventHub != nil {
		eventHub.Publish(event, payload)
	}
}

func store() repository.Store {
	return repository.GetStore()
}

// handleStoreError 把 ErrNotFound 转换为404
func handleStoreError(c *gin.Context, err error, resource string) {
	if errors.Is(err, repository.ErrNotFound) {
		utils.HandleError(c, utils.CreateNotFoundError(resource))
		return
	}
	utils.HandleError(c, err)
}

// bindJSON 解析请求体，失败时返回400
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		utils.HandleError(c, utils.CreateBadRequestError("请求参数错误: "+err.Error()))
		return false
	}
	return true
}

// requireConfirm 破坏性操作未确认时返回409
func requireConfirm(c *gin.Context, resource string) bool {
	if !utils.IsConfirmed(c) {
		utils.HandleError(c, utils.CreateConfirmationRequiredError(resource))
		return false
	}
	return true
}
