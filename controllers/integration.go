package controllers

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/BerniceZTT/salesiq/dataimport"
	"github.com/BerniceZTT/salesiq/middleware"
	"github.com/BerniceZTT/salesiq/models"
	"github.com/BerniceZTT/salesiq/service"
	"github.com/BerniceZTT/salesiq/tasks"
	"github.com/BerniceZTT/salesiq/utils"
)

// syncSteps 模拟同步的阶段数
const syncSteps = 4

// ErrMissingAPIKey 测试连接时集成没有配置 API Key
var ErrMissingAPIKey = errors.New("集成未配置API Key")

// maskIntegration 响应中只返回脱敏后的 API Key
func maskIntegration(integration models.APIIntegration) models.APIIntegration {
	integration.APIKey = integration.MaskedAPIKey()
	return integration
}

// GetIntegrations 获取集成列表
func GetIntegrations(c *gin.Context) {
	integrations, err := store().ListIntegrations(c.Request.Context())
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	for i := range integrations {
		integrations[i] = maskIntegration(integrations[i])
	}
	utils.ListResponse(c, "integrations", integrations, len(integrations))
}

// CreateIntegration 添加集成，新集成需要测试连接后才会变为已连接
func CreateIntegration(c *gin.Context) {
	var req models.CreateIntegrationRequest
	if !bindJSON(c, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		utils.HandleError(c, utils.CreateBadRequestError("集成名称不能为空"))
		return
	}
	if !models.IsValidIntegrationType(req.Type) {
		utils.HandleError(c, utils.CreateBadRequestError("无效的集成类型: "+string(req.Type)))
		return
	}

	integration := models.APIIntegration{
		ID:         uuid.NewString(),
		Name:       strings.TrimSpace(req.Name),
		Type:       req.Type,
		Status:     models.IntegrationDisconnected,
		APIKey:     strings.TrimSpace(req.APIKey),
		WebhookURL: req.WebhookURL,
	}
	if err := store().SaveIntegration(c.Request.Context(), integration); err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, maskIntegration(integration), "集成创建成功", http.StatusCreated)
}

// UpdateIntegration 更新集成，修改 API Key 后需要重新测试连接
func UpdateIntegration(c *gin.Context) {
	var req models.UpdateIntegrationRequest
	if !bindJSON(c, &req) {
		return
	}

	integration, err := store().UpdateIntegration(c.Request.Context(), c.Param("id"), func(i *models.APIIntegration) error {
		if req.Name != nil {
			if strings.TrimSpace(*req.Name) == "" {
				return utils.CreateBadRequestError("集成名称不能为空")
			}
			i.Name = strings.TrimSpace(*req.Name)
		}
		if req.WebhookURL != nil {
			i.WebhookURL = *req.WebhookURL
		}
		if req.APIKey != nil && strings.TrimSpace(*req.APIKey) != i.APIKey {
			i.APIKey = strings.TrimSpace(*req.APIKey)
			i.Status = models.IntegrationDisconnected
		}
		return nil
	})
	if err != nil {
		handleStoreError(c, err, "集成")
		return
	}
	publish(EventIntegrationUpdated, maskIntegration(*integration))
	utils.SuccessResponse(c, maskIntegration(*integration), "集成更新成功")
}

// DeleteIntegration 删除集成，需要 confirm=true
func DeleteIntegration(c *gin.Context) {
	if !requireConfirm(c, "集成") {
		return
	}
	if err := store().DeleteIntegration(c.Request.Context(), c.Param("id")); err != nil {
		handleStoreError(c, err, "集成")
		return
	}
	utils.SuccessResponse(c, nil, "集成删除成功")
}

// updateIntegration 在任务中修改集成并推送，任务已取消时不写入
func updateIntegration(ctx context.Context, id string, update func(*models.APIIntegration)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	integration, err := store().UpdateIntegration(ctx, id, func(i *models.APIIntegration) error {
		update(i)
		return nil
	})
	if err != nil {
		return err
	}
	publish(EventIntegrationUpdated, maskIntegration(*integration))
	return nil
}

// SyncIntegration 异步同步集成数据，返回后台任务
func SyncIntegration(c *gin.Context) {
	integration, err := store().GetIntegration(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleStoreError(c, err, "集成")
		return
	}
	if integration.Status != models.IntegrationConnected {
		utils.HandleError(c, utils.CreateConflictError("集成未连接，请先测试连接"))
		return
	}

	id := integration.ID
	latency := appConfig.SimulatedLatency
	job := taskManager.Start(tasks.KindIntegrationSync, integration.Name, func(ctx context.Context, progress tasks.Progress) error {
		for step := 1; step <= syncSteps; step++ {
			if err := tasks.Sleep(ctx, latency/syncSteps); err != nil {
				return err
			}
			progress(step * 100 / syncSteps)
		}
		return updateIntegration(ctx, id, func(i *models.APIIntegration) {
			i.LastSync = time.Now()
		})
	})
	utils.SuccessResponse(c, job, "同步已开始", http.StatusAccepted)
}

// TestIntegration 异步测试集成连接，结果写回集成状态
func TestIntegration(c *gin.Context) {
	integration, err := store().GetIntegration(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleStoreError(c, err, "集成")
		return
	}

	id := integration.ID
	latency := appConfig.SimulatedLatency
	job := taskManager.Start(tasks.KindIntegrationTest, integration.Name, func(ctx context.Context, progress tasks.Progress) error {
		if err := tasks.Sleep(ctx, latency); err != nil {
			return err
		}
		var hasKey bool
		err := updateIntegration(ctx, id, func(i *models.APIIntegration) {
			hasKey = i.APIKey != ""
			if hasKey {
				i.Status = models.IntegrationConnected
			} else {
				i.Status = models.IntegrationError
			}
		})
		if err != nil {
			return err
		}
		if !hasKey {
			return ErrMissingAPIKey
		}
		return nil
	})
	utils.SuccessResponse(c, job, "连接测试已开始", http.StatusAccepted)
}

// CreateWebhookToken 为集成签发 webhook 令牌
func CreateWebhookToken(c *gin.Context) {
	integration, err := store().GetIntegration(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleStoreError(c, err, "集成")
		return
	}
	token, err := utils.GenerateWebhookToken(*integration)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{
		"token":       token,
		"webhookPath": "/api/integrations/" + integration.ID + "/webhook",
	}, "令牌已生成", http.StatusCreated)
}

// WebhookPayload 集成推送的销售数据，行按导入模板的列名取值
type WebhookPayload struct {
	Rows []models.Row `json:"rows" binding:"required,min=1"`
}

// webhookTable 把推送的行转换为表格，表头为所有行出现过的列
func webhookTable(rows []models.Row) *dataimport.Table {
	seen := make(map[string]bool)
	var headers []string
	for _, row := range rows {
		for key := range row {
			if !seen[key] {
				seen[key] = true
				headers = append(headers, key)
			}
		}
	}
	sort.Strings(headers)
	return &dataimport.Table{Headers: headers, Rows: rows}
}

// ReceiveWebhook 接收集成推送的销售数据，校验通过的行写入销售记录
func ReceiveWebhook(c *gin.Context) {
	var payload WebhookPayload
	if !bindJSON(c, &payload) {
		return
	}

	ctx := c.Request.Context()
	integrationID := c.GetString(middleware.IntegrationIDKey)
	integration, err := store().GetIntegration(ctx, integrationID)
	if err != nil {
		handleStoreError(c, err, "集成")
		return
	}

	report, records := dataimport.Validate(webhookTable(payload.Rows), "integration:"+integration.ID)
	if len(records) > 0 {
		if err := store().AddSalesRecords(ctx, records); err != nil {
			utils.HandleError(c, err)
			return
		}
	}
	if err := updateIntegration(ctx, integration.ID, func(i *models.APIIntegration) {
		i.LastSync = time.Now()
	}); err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.Logger.Info().
		Str("integrationId", integration.ID).
		Int("validRows", report.ValidRows).
		Int("totalRows", report.TotalRows).
		Msg("收到集成推送数据")

	switch {
	case report.Valid():
		c.JSON(http.StatusOK, gin.H{"success": true, "data": report})
	case report.ValidRows > 0:
		c.JSON(http.StatusMultiStatus, gin.H{"success": false, "data": report})
	default:
		utils.HandleError(c, utils.NewApiError("推送数据均未通过校验", http.StatusUnprocessableEntity, "VALIDATION_FAILED").WithDetails(report))
	}
}

// notificationView 短信周报设置及下一次发送时间
func notificationView(settings models.NotificationSettings) gin.H {
	view := gin.H{"settings": settings}
	if reportScheduler != nil {
		if next := reportScheduler.NextRun(); !next.IsZero() {
			view["nextRun"] = next
		}
	}
	return view
}

// GetNotificationSettings 获取短信周报设置
func GetNotificationSettings(c *gin.Context) {
	settings, err := store().GetNotificationSettings(c.Request.Context())
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, notificationView(settings), "")
}

// UpdateNotificationSettings 更新短信周报设置并重新调度
func UpdateNotificationSettings(c *gin.Context) {
	var settings models.NotificationSettings
	if !bindJSON(c, &settings) {
		return
	}
	settings.ReportDay = models.ReportDay(strings.ToLower(strings.TrimSpace(string(settings.ReportDay))))
	settings.Phone = strings.TrimSpace(settings.Phone)
	if settings.Metrics == nil {
		settings.Metrics = []string{}
	}
	if err := service.ValidateNotificationSettings(settings); err != nil {
		utils.HandleError(c, err)
		return
	}

	if err := store().SaveNotificationSettings(c.Request.Context(), settings); err != nil {
		utils.HandleError(c, err)
		return
	}
	if reportScheduler != nil {
		if err := reportScheduler.Reschedule(settings); err != nil {
			utils.HandleError(c, err)
			return
		}
	}
	utils.SuccessResponse(c, notificationView(settings), "短信周报设置已保存")
}
