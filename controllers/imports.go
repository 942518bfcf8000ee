package controllers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/BerniceZTT/salesiq/dataimport"
	"github.com/BerniceZTT/salesiq/metrics"
	"github.com/BerniceZTT/salesiq/models"
	"github.com/BerniceZTT/salesiq/tasks"
	"github.com/BerniceZTT/salesiq/utils"
)

// 导入进度节点
const (
	progressReceived  = 30
	progressParsed    = 60
	progressValidated = 90
)

// UploadResult 批量上传中单个文件的受理结果
type UploadResult struct {
	Upload models.FileUpload `json:"upload"`
	Job    *tasks.Job        `json:"job,omitempty"`
	Error  string            `json:"error,omitempty"`
}

// UploadFiles 批量上传销售数据文件，每个文件在独立的后台任务中处理
func UploadFiles(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, appConfig.MaxUploadBytes)
	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.HandleError(c, utils.NewAppError("上传文件超过大小限制", http.StatusRequestEntityTooLarge, err))
			return
		}
		utils.HandleError(c, utils.CreateBadRequestError("读取上传文件失败: "+err.Error()))
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		utils.HandleError(c, utils.CreateBadRequestError("请选择要上传的文件 (files)"))
		return
	}

	results := make([]UploadResult, 0, len(files))
	for _, fh := range files {
		results = append(results, acceptFile(c.Request.Context(), fh))
	}

	utils.LogInfo(map[string]interface{}{"files": len(files)}, "文件上传已受理")
	utils.SuccessResponse(c, gin.H{"uploads": results}, "文件已上传，正在处理", http.StatusAccepted)
}

// acceptFile 记录上传并启动处理任务，单个文件失败只记录在它自己的结果中，不影响同批其他文件
func acceptFile(ctx context.Context, fh *multipart.FileHeader) UploadResult {
	now := time.Now()
	upload := models.FileUpload{
		ID:        uuid.NewString(),
		Name:      filepath.Base(fh.Filename),
		Size:      fh.Size,
		Status:    models.UploadUploading,
		CreatedAt: now,
		UpdatedAt: now,
	}

	data, err := readUpload(fh)
	if err != nil {
		upload.Status = models.UploadError
		upload.Errors = []string{err.Error()}
		metrics.ImportFilesTotal.WithLabelValues(formatLabel(upload.Name), string(models.UploadError)).Inc()
		if err := store().SaveUpload(ctx, upload); err != nil {
			return storeFailure(upload, err)
		}
		publish(EventUploadUpdated, upload)
		return UploadResult{Upload: upload}
	}

	if err := store().SaveUpload(ctx, upload); err != nil {
		return storeFailure(upload, err)
	}
	job := taskManager.Start(tasks.KindImport, upload.Name, importJob(upload.ID, upload.Name, data))

	updated, err := store().UpdateUpload(ctx, upload.ID, func(u *models.FileUpload) error {
		u.JobID = job.ID
		return nil
	})
	if err != nil {
		// 任务已在运行，仍然返回任务ID
		utils.Logger.Error().Err(err).Str("uploadId", upload.ID).Msg("记录导入任务失败")
		upload.JobID = job.ID
		return UploadResult{Upload: upload, Job: &job, Error: "记录导入任务失败: " + err.Error()}
	}
	return UploadResult{Upload: *updated, Job: &job}
}

// storeFailure 上传记录无法保存时的结果
func storeFailure(upload models.FileUpload, err error) UploadResult {
	utils.Logger.Error().Err(err).Str("name", upload.Name).Msg("保存上传记录失败")
	message := "保存上传记录失败: " + err.Error()
	upload.Status = models.UploadError
	upload.Errors = []string{message}
	return UploadResult{Upload: upload, Error: message}
}

// readUpload 检查扩展名并读入文件内容
func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	if !dataimport.SupportedFile(fh.Filename) {
		return nil, dataimport.ErrUnsupportedFile
	}
	file, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("打开文件失败: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("读取文件失败: %w", err)
	}
	return data, nil
}

// formatLabel 指标中的文件格式
func formatLabel(name string) string {
	lower := strings.ToLower(name)
	gz := strings.HasSuffix(lower, ".gz")
	ext := strings.TrimPrefix(filepath.Ext(strings.TrimSuffix(lower, ".gz")), ".")
	switch ext {
	case "csv", "xlsx", "xls":
	default:
		return "unknown"
	}
	if gz {
		return ext + ".gz"
	}
	return ext
}

// baseName 去掉扩展名和 .gz 后缀的文件名
func baseName(name string) string {
	if strings.HasSuffix(strings.ToLower(name), ".gz") {
		name = name[:len(name)-len(".gz")]
	}
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// setUpload 修改上传状态并推送，任务取消后不再写入
func setUpload(ctx context.Context, id string, update func(*models.FileUpload)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	upload, err := store().UpdateUpload(ctx, id, func(u *models.FileUpload) error {
		update(u)
		u.UpdatedAt = time.Now()
		return nil
	})
	if err != nil {
		return err
	}
	publish(EventUploadUpdated, upload)
	return nil
}

// importJob 解析、校验并保存文件数据
func importJob(uploadID, name string, data []byte) tasks.Func {
	latency := appConfig.SimulatedLatency
	format := formatLabel(name)

	return func(ctx context.Context, progress tasks.Progress) error {
		// 模拟传输耗时
		if err := tasks.Sleep(ctx, latency/2); err != nil {
			return err
		}
		if err := setUpload(ctx, uploadID, func(u *models.FileUpload) {
			u.Status = models.UploadProcessing
			u.Progress = progressReceived
		}); err != nil {
			return err
		}
		progress(progressReceived)

		table, err := dataimport.ParseFile(name, bytes.NewReader(data))
		if err != nil {
			metrics.ImportFilesTotal.WithLabelValues(format, string(models.UploadError)).Inc()
			if setErr := setUpload(ctx, uploadID, func(u *models.FileUpload) {
				u.Status = models.UploadError
				u.Errors = []string{err.Error()}
			}); setErr != nil {
				return setErr
			}
			return err
		}
		progress(progressParsed)

		report, records := dataimport.Validate(table, uploadID)
		metrics.ImportRowsTotal.WithLabelValues("valid").Add(float64(report.ValidRows))
		metrics.ImportRowsTotal.WithLabelValues("invalid").Add(float64(report.TotalRows - report.ValidRows))
		if err := setUpload(ctx, uploadID, func(u *models.FileUpload) {
			u.Progress = progressValidated
		}); err != nil {
			return err
		}
		progress(progressValidated)

		if err := tasks.Sleep(ctx, latency/2); err != nil {
			return err
		}
		if len(records) > 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := store().AddSalesRecords(ctx, records); err != nil {
				return err
			}
		}

		status := models.UploadCompleted
		if len(report.MissingColumns) > 0 {
			status = models.UploadError
		}
		err = setUpload(ctx, uploadID, func(u *models.FileUpload) {
			u.Status = status
			u.Progress = 100
			u.Headers = table.Headers
			u.Data = table.Rows
			u.Report = &report
			u.Errors = reportErrors(report)
		})
		if err != nil {
			if len(records) > 0 {
				removeImportedSales(ctx, uploadID)
			}
			return err
		}
		metrics.ImportFilesTotal.WithLabelValues(format, string(status)).Inc()
		return nil
	}
}

// removeImportedSales 删除上传写入的销售记录，任务取消后也会执行
func removeImportedSales(ctx context.Context, uploadID string) {
	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := store().DeleteSalesRecordsByUpload(cleanupCtx, uploadID); err != nil {
		utils.Logger.Error().Err(err).Str("uploadId", uploadID).Msg("删除导入的销售记录失败")
	}
}

// maxListedErrors 上传状态中列出的最大错误条数
const maxListedErrors = 20

// reportErrors 把校验报告整理为可读的错误列表
func reportErrors(report models.ValidationReport) []string {
	var result []string
	if len(report.MissingColumns) > 0 {
		result = append(result, "缺少必填列: "+strings.Join(report.MissingColumns, ", "))
	}
	for _, e := range report.RowErrors {
		if len(result) >= maxListedErrors {
			result = append(result, fmt.Sprintf("另有 %d 个错误未列出", len(report.RowErrors)-maxListedErrors))
			break
		}
		if e.Column != "" {
			result = append(result, fmt.Sprintf("第 %d 行 %s: %s", e.Row, e.Column, e.Message))
		} else {
			result = append(result, fmt.Sprintf("第 %d 行: %s", e.Row, e.Message))
		}
	}
	return result
}

// GetUploads 获取上传列表
func GetUploads(c *gin.Context) {
	uploads, err := store().ListUploads(c.Request.Context())
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.ListResponse(c, "uploads", uploads, len(uploads))
}

// GetUpload 获取上传详情和校验报告
func GetUpload(c *gin.Context) {
	upload, err := store().GetUpload(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleStoreError(c, err, "上传文件")
		return
	}
	utils.SuccessResponse(c, upload, "")
}

// processedUpload 读取已处理完成的上传
func processedUpload(c *gin.Context) (*models.FileUpload, bool) {
	upload, err := store().GetUpload(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleStoreError(c, err, "上传文件")
		return nil, false
	}
	if upload.Report == nil {
		utils.HandleError(c, utils.CreateConflictError("文件尚未处理完成"))
		return nil, false
	}
	return upload, true
}

// GetUploadPreview 预览上传文件的前几行
func GetUploadPreview(c *gin.Context) {
	upload, ok := processedUpload(c)
	if !ok {
		return
	}
	limit := utils.QueryInt(c, "limit", appConfig.PreviewRows)
	rows := dataimport.Preview(upload.Data, limit, appConfig.PreviewRows, appConfig.MaxPreviewRows)
	utils.SuccessResponse(c, gin.H{
		"headers":   upload.Headers,
		"rows":      rows,
		"totalRows": len(upload.Data),
	}, "")
}

// ExportUpload 按原始列导出上传文件的数据
func ExportUpload(c *gin.Context) {
	format, err := dataimport.ParseFormat(c.Query("format"))
	if err != nil {
		utils.HandleError(c, utils.CreateBadRequestError(err.Error()))
		return
	}
	upload, ok := processedUpload(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := dataimport.Write(&buf, format, upload.Headers, upload.Data); err != nil {
		utils.HandleError(c, err)
		return
	}
	attachment(c, format.FileName(baseName(upload.Name)), format.ContentType(), buf.Bytes())
}

// DownloadTemplate 下载导入模板
func DownloadTemplate(c *gin.Context) {
	var buf bytes.Buffer
	if err := dataimport.WriteTemplate(&buf); err != nil {
		utils.HandleError(c, err)
		return
	}
	attachment(c, "sales_template.csv", dataimport.FormatCSV.ContentType(), buf.Bytes())
}

// DeleteUpload 删除上传及其导入的销售记录，处理中的任务先取消，需要 confirm=true
func DeleteUpload(c *gin.Context) {
	if !requireConfirm(c, "上传文件") {
		return
	}

	ctx := c.Request.Context()
	upload, err := store().GetUpload(ctx, c.Param("id"))
	if err != nil {
		handleStoreError(c, err, "上传文件")
		return
	}

	if upload.JobID != "" {
		if _, err := taskManager.Cancel(upload.JobID); err != nil &&
			!errors.Is(err, tasks.ErrJobFinished) && !errors.Is(err, tasks.ErrJobNotFound) {
			utils.HandleError(c, err)
			return
		}
	}
	if err := store().DeleteSalesRecordsByUpload(ctx, upload.ID); err != nil {
		utils.HandleError(c, err)
		return
	}
	if err := store().DeleteUpload(ctx, upload.ID); err != nil {
		handleStoreError(c, err, "上传文件")
		return
	}

	utils.Logger.Info().Str("uploadId", upload.ID).Str("name", upload.Name).Msg("上传文件已删除")
	utils.SuccessResponse(c, nil, "上传文件已删除")
}

// GetSalesRecords 获取导入的销售记录，可按 uploadId 过滤
func GetSalesRecords(c *gin.Context) {
	records, err := store().ListSalesRecords(c.Request.Context())
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	if uploadID := c.Query("uploadId"); uploadID != "" {
		filtered := records[:0]
		for _, r := range records {
			if r.UploadID == uploadID {
				filtered = append(filtered, r)
			}
		}
		records = filtered
	}
	utils.ListResponse(c, "sales", records, len(records))
}
