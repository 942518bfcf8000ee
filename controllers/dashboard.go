package controllers

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/BerniceZTT/salesiq/charts"
	"github.com/BerniceZTT/salesiq/models"
	"github.com/BerniceZTT/salesiq/service"
	"github.com/BerniceZTT/salesiq/utils"
)

// 图表输出格式
const (
	chartFormatJSON = "json"
	chartFormatSVG  = "svg"
	chartFormatPNG  = "png"
)

// GetDashboard 获取看板指标卡片和图表数据
func GetDashboard(c *gin.Context) {
	dashboard, err := service.BuildDashboard(c.Request.Context(), store())
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, dashboard, "")
}

// loadChart 读取看板图表并解析 type 参数
func loadChart(c *gin.Context) (models.ChartSummary, charts.Kind, charts.Options, bool) {
	name := c.Param("name")
	summary, err := service.DashboardChart(c.Request.Context(), store(), name)
	if err != nil {
		if errors.Is(err, service.ErrUnknownChart) {
			utils.HandleError(c, utils.CreateNotFoundError("图表 "+name))
		} else {
			utils.HandleError(c, err)
		}
		return summary, "", charts.Options{}, false
	}

	kind, err := charts.ParseKind(c.DefaultQuery("type", summary.Type))
	if err != nil {
		utils.HandleError(c, utils.CreateBadRequestError(err.Error()))
		return summary, "", charts.Options{}, false
	}

	opts := charts.DefaultOptions(summary.Title)
	// 客户数图表默认不按货币显示
	opts.Currency = name != service.ChartCustomerGrowth
	if raw := c.Query("currency"); raw != "" {
		currency, err := strconv.ParseBool(raw)
		if err != nil {
			utils.HandleError(c, utils.CreateBadRequestError("currency 必须为布尔值"))
			return summary, "", charts.Options{}, false
		}
		opts.Currency = currency
	}
	return summary, kind, opts, true
}

// GetChart 渲染看板图表，format 为 json、svg 或 png
func GetChart(c *gin.Context) {
	summary, kind, opts, ok := loadChart(c)
	if !ok {
		return
	}
	writeChart(c, summary, kind, opts)
}

// GetChartHover 计算光标悬停在图表上时的提示信息
func GetChartHover(c *gin.Context) {
	x, okX := utils.QueryFloat(c, "x")
	y, okY := utils.QueryFloat(c, "y")
	if !okX || !okY {
		utils.HandleError(c, utils.CreateBadRequestError("x 和 y 必须为数字"))
		return
	}

	summary, kind, opts, ok := loadChart(c)
	if !ok {
		return
	}
	scene, err := charts.Render(summary.Data, kind, opts)
	if err != nil {
		handleChartError(c, err)
		return
	}

	hover := scene.Hover(charts.Position{X: x, Y: y})
	utils.SuccessResponse(c, gin.H{
		"hit":   hover != nil,
		"hover": hover,
	}, "")
}

// RenderChart 渲染请求中提供的数据
func RenderChart(c *gin.Context) {
	var req models.RenderChartRequest
	if !bindJSON(c, &req) {
		return
	}
	kind, err := charts.ParseKind(req.Type)
	if err != nil {
		utils.HandleError(c, utils.CreateBadRequestError(err.Error()))
		return
	}

	opts := charts.DefaultOptions(req.Title)
	if req.Height > 0 {
		opts.Height = float64(req.Height)
	}
	if req.ShowGrid != nil {
		opts.ShowGrid = *req.ShowGrid
	}
	opts.Currency = req.Currency

	writeChart(c, models.ChartSummary{Title: req.Title, Type: req.Type, Data: req.Data}, kind, opts)
}

// writeChart 按 format 参数输出场景JSON、SVG或PNG
func writeChart(c *gin.Context, summary models.ChartSummary, kind charts.Kind, opts charts.Options) {
	format := strings.ToLower(c.DefaultQuery("format", chartFormatJSON))

	var buf bytes.Buffer
	switch format {
	case chartFormatJSON:
		scene, err := charts.Render(summary.Data, kind, opts)
		if err != nil {
			handleChartError(c, err)
			return
		}
		utils.SuccessResponse(c, gin.H{"chart": summary, "scene": scene}, "")

	case chartFormatSVG:
		scene, err := charts.Render(summary.Data, kind, opts)
		if err != nil {
			handleChartError(c, err)
			return
		}
		if err := scene.WriteSVG(&buf); err != nil {
			utils.HandleError(c, err)
			return
		}
		c.Data(http.StatusOK, "image/svg+xml; charset=utf-8", buf.Bytes())

	case chartFormatPNG:
		if err := charts.RenderPNG(&buf, summary.Data, kind, opts); err != nil {
			handleChartError(c, err)
			return
		}
		c.Data(http.StatusOK, "image/png", buf.Bytes())

	default:
		utils.HandleError(c, utils.CreateBadRequestError("不支持的图表格式: "+format))
	}
}

// handleChartError 无法渲染的数据返回400
func handleChartError(c *gin.Context, err error) {
	if errors.Is(err, charts.ErrNoData) || errors.Is(err, charts.ErrInvalidPieData) {
		utils.HandleError(c, utils.CreateBadRequestError(err.Error()))
		return
	}
	utils.HandleError(c, err)
}
