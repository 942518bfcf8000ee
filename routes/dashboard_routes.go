package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/BerniceZTT/salesiq/controllers"
)

// RegisterDashboardRoutes 注册看板和图表路由
func RegisterDashboardRoutes(router *gin.Engine) {
	router.GET("/api/dashboard", controllers.GetDashboard)

	chartRoutes := router.Group("/api/charts")
	chartRoutes.POST("/render", controllers.RenderChart)
	chartRoutes.GET("/:name", controllers.GetChart)
	chartRoutes.GET("/:name/hover", controllers.GetChartHover)
}
