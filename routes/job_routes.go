package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/BerniceZTT/salesiq/controllers"
)

// RegisterJobRoutes 注册后台任务路由
func RegisterJobRoutes(router *gin.Engine) {
	jobRoutes := router.Group("/api/jobs")

	jobRoutes.GET("", controllers.GetJobs)
	jobRoutes.GET("/:id", controllers.GetJob)
	jobRoutes.DELETE("/:id", controllers.CancelJob)
}
