package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/BerniceZTT/salesiq/controllers"
)

// RegisterImportRoutes 注册文件导入和销售记录路由
func RegisterImportRoutes(router *gin.Engine) {
	importRoutes := router.Group("/api/imports")

	importRoutes.POST("", controllers.UploadFiles)
	importRoutes.GET("", controllers.GetUploads)
	importRoutes.GET("/template", controllers.DownloadTemplate)
	importRoutes.GET("/:id", controllers.GetUpload)
	importRoutes.GET("/:id/preview", controllers.GetUploadPreview)
	importRoutes.GET("/:id/export", controllers.ExportUpload)
	importRoutes.DELETE("/:id", controllers.DeleteUpload)

	router.GET("/api/sales", controllers.GetSalesRecords)
}
