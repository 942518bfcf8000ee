package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/BerniceZTT/salesiq/config"
	"github.com/BerniceZTT/salesiq/controllers"
	"github.com/BerniceZTT/salesiq/middleware"
)

// SetupRouter 创建 gin 实例并挂载中间件和全部路由
func SetupRouter(cfg *config.Config) *gin.Engine {
	router := gin.New()

	// 应用中间件
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(middleware.Metrics())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.OperationLoggerMiddleware())

	RegisterRoutes(router)
	return router
}

// RegisterRoutes 注册所有路由
func RegisterRoutes(router *gin.Engine) {
	RegisterDashboardRoutes(router)
	RegisterCustomerRoutes(router)
	RegisterUserRoutes(router)
	RegisterIntegrationRoutes(router)
	RegisterImportRoutes(router)
	RegisterJobRoutes(router)

	// 健康检查路由
	router.GET("/api/health", controllers.HealthCheck)

	// 数据库状态检查路由
	router.GET("/api/db-status", controllers.GetDatabaseStatus)

	// 操作日志
	router.GET("/api/operation-logs", controllers.GetOperationLogs)

	// 实时事件
	router.GET("/api/ws", controllers.ServeWebSocket)

	// Prometheus 指标
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
