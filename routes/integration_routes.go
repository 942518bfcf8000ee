package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/BerniceZTT/salesiq/controllers"
	"github.com/BerniceZTT/salesiq/middleware"
)

// RegisterIntegrationRoutes 注册集成和短信周报路由
func RegisterIntegrationRoutes(router *gin.Engine) {
	integrationRoutes := router.Group("/api/integrations")

	integrationRoutes.GET("", controllers.GetIntegrations)
	integrationRoutes.POST("", controllers.CreateIntegration)
	integrationRoutes.PUT("/:id", controllers.UpdateIntegration)
	integrationRoutes.DELETE("/:id", controllers.DeleteIntegration)
	integrationRoutes.POST("/:id/sync", controllers.SyncIntegration)
	integrationRoutes.POST("/:id/test", controllers.TestIntegration)
	integrationRoutes.POST("/:id/webhook-token", controllers.CreateWebhookToken)

	// 集成推送数据，使用 webhook 令牌认证
	integrationRoutes.POST("/:id/webhook", middleware.WebhookAuth(), controllers.ReceiveWebhook)

	notificationRoutes := router.Group("/api/notifications")
	notificationRoutes.GET("/sms", controllers.GetNotificationSettings)
	notificationRoutes.PUT("/sms", controllers.UpdateNotificationSettings)
}
