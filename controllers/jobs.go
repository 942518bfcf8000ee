package controllers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/BerniceZTT/salesiq/models"
	"github.com/BerniceZTT/salesiq/tasks"
	"github.com/BerniceZTT/salesiq/utils"
)

// GetJobs 获取后台任务列表
func GetJobs(c *gin.Context) {
	jobs := taskManager.List()
	utils.ListResponse(c, "jobs", jobs, len(jobs))
}

// GetJob 获取后台任务状态
func GetJob(c *gin.Context) {
	job, err := taskManager.Get(c.Param("id"))
	if err != nil {
		handleJobError(c, err)
		return
	}
	utils.SuccessResponse(c, job, "")
}

// CancelJob 取消运行中的后台任务
func CancelJob(c *gin.Context) {
	job, err := taskManager.Cancel(c.Param("id"))
	if err != nil {
		handleJobError(c, err)
		return
	}

	if job.Kind == tasks.KindImport {
		markImportCancelled(c, job.ID)
	}
	utils.SuccessResponse(c, job, "任务已取消")
}

// markImportCancelled 任务取消后把对应上传标记为失败，并删除已写入的销售记录
func markImportCancelled(c *gin.Context, jobID string) {
	uploads, err := store().ListUploads(c.Request.Context())
	if err != nil {
		utils.Logger.Error().Err(err).Msg("读取上传列表失败")
		return
	}
	for _, u := range uploads {
		if u.JobID != jobID {
			continue
		}
		err := setUpload(c.Request.Context(), u.ID, func(upload *models.FileUpload) {
			upload.Status = models.UploadError
			upload.Errors = []string{"导入已取消"}
		})
		if err != nil {
			utils.Logger.Error().Err(err).Str("uploadId", u.ID).Msg("更新上传状态失败")
		}
		removeImportedSales(c.Request.Context(), u.ID)
		return
	}
}

// handleJobError 任务不存在返回404，已结束返回409
func handleJobError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, tasks.ErrJobNotFound):
		utils.HandleError(c, utils.CreateNotFoundError("任务"))
	case errors.Is(err, tasks.ErrJobFinished):
		utils.HandleError(c, utils.CreateConflictError("任务已结束"))
	default:
		utils.HandleError(c, err)
	}
}
