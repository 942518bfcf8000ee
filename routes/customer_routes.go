package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/BerniceZTT/salesiq/controllers"
)

// RegisterCustomerRoutes 注册客户相关路由
func RegisterCustomerRoutes(router *gin.Engine) {
	customerRoutes := router.Group("/api/customers")

	customerRoutes.GET("", controllers.GetCustomerList)
	customerRoutes.GET("/stats", controllers.GetCustomerStats)
	customerRoutes.GET("/export", controllers.ExportCustomers)
	customerRoutes.POST("", controllers.CreateCustomer)
	customerRoutes.GET("/:id", controllers.GetCustomerDetail)
	customerRoutes.PUT("/:id", controllers.UpdateCustomer)
	customerRoutes.DELETE("/:id", controllers.DeleteCustomer)
}
