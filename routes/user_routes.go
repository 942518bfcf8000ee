package routes

import (
	"github.com/BerniceZTT/salesiq/controllers"

	"github.com/gin-gonic/gin"
)

// RegisterUserRoutes 注册用户管理路由
func RegisterUserRoutes(router *gin.Engine) {
	users := router.Group("/api/users")

	// 用户列表，支持搜索、角色和状态过滤
	users.GET("", controllers.GetUsers)

	// 统计和角色权限概览
	users.GET("/stats", controllers.GetUserStats)
	users.GET("/roles", controllers.GetRoleOverview)

	users.POST("", controllers.CreateUser)
	users.PUT("/:id", controllers.UpdateUser)
	users.POST("/:id/toggle-status", controllers.ToggleUserStatus)

	// 删除用户 (需要 confirm=true)
	users.DELETE("/:id", controllers.DeleteUser)
}
