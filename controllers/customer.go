package controllers

import (
	"bytes"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/BerniceZTT/salesiq/dataimport"
	"github.com/BerniceZTT/salesiq/models"
	"github.com/BerniceZTT/salesiq/service"
	"github.com/BerniceZTT/salesiq/utils"
)

// customerQuery 从查询参数构造客户过滤条件
func customerQuery(c *gin.Context) (service.CustomerQuery, error) {
	q := service.CustomerQuery{
		Search:  c.Query("search"),
		Segment: c.Query("segment"),
		SortBy:  c.DefaultQuery("sortBy", "name"),
		Order:   service.ParseOrder(c.Query("order")),
	}
	if !service.CustomerSortFields[q.SortBy] {
		return q, utils.CreateBadRequestError("不支持的排序字段: " + q.SortBy)
	}
	return q, nil
}

// GetCustomerList 获取客户列表
func GetCustomerList(c *gin.Context) {
	q, err := customerQuery(c)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.LogInfo(map[string]interface{}{
		"search":  q.Search,
		"segment": q.Segment,
		"sortBy":  q.SortBy,
		"order":   q.Order,
	}, "获取客户列表")

	customers, err := store().ListCustomers(c.Request.Context())
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	filtered := service.FilterCustomers(customers, q)
	utils.ListResponse(c, "customers", filtered, len(filtered))
}

// GetCustomerStats 获取客户概览统计
func GetCustomerStats(c *gin.Context) {
	customers, err := store().ListCustomers(c.Request.Context())
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, service.CustomerStatsOf(customers), "")
}

// ExportCustomers 按当前过滤条件导出客户
func ExportCustomers(c *gin.Context) {
	format, err := dataimport.ParseFormat(c.Query("format"))
	if err != nil {
		utils.HandleError(c, utils.CreateBadRequestError(err.Error()))
		return
	}
	q, err := customerQuery(c)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	customers, err := store().ListCustomers(c.Request.Context())
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	filtered := service.FilterCustomers(customers, q)

	var buf bytes.Buffer
	if err := dataimport.Write(&buf, format, dataimport.CustomerHeaders, dataimport.CustomerRows(filtered)); err != nil {
		utils.HandleError(c, err)
		return
	}
	attachment(c, format.FileName("customers"), format.ContentType(), buf.Bytes())
}

// attachment 以下载文件的形式返回数据
func attachment(c *gin.Context, fileName, contentType string, data []byte) {
	c.Header("Content-Disposition", `attachment; filename="`+fileName+`"`)
	c.Data(http.StatusOK, contentType, data)
}

// GetCustomerDetail 获取客户详情
func GetCustomerDetail(c *gin.Context) {
	customer, err := store().GetCustomer(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleStoreError(c, err, "客户")
		return
	}
	utils.SuccessResponse(c, customer, "")
}

// validateSegment 空分群默认为 New
func validateSegment(segment models.CustomerSegment) (models.CustomerSegment, error) {
	if segment == "" {
		return models.SegmentNew, nil
	}
	if !models.IsValidSegment(segment) {
		return "", utils.CreateBadRequestError("无效的客户分群: " + string(segment))
	}
	return segment, nil
}

// CreateCustomer 创建客户
func CreateCustomer(c *gin.Context) {
	var req models.CustomerCreateRequest
	if !bindJSON(c, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		utils.HandleError(c, utils.CreateBadRequestError("客户名称不能为空"))
		return
	}
	segment, err := validateSegment(req.Segment)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	lastOrder, err := models.ParseDate(req.LastOrderDate)
	if err != nil {
		utils.HandleError(c, utils.CreateBadRequestError("最后下单日期格式应为 YYYY-MM-DD"))
		return
	}

	customer := models.Customer{
		ID:            uuid.NewString(),
		Name:          strings.TrimSpace(req.Name),
		Email:         strings.TrimSpace(req.Email),
		TotalSpent:    req.TotalSpent,
		OrderCount:    req.OrderCount,
		LastOrderDate: lastOrder,
		Segment:       segment,
	}
	if err := store().SaveCustomer(c.Request.Context(), customer); err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.Logger.Info().Str("customerId", customer.ID).Str("name", customer.Name).Msg("客户创建成功")
	utils.SuccessResponse(c, customer, "客户创建成功", http.StatusCreated)
}

// UpdateCustomer 更新客户信息
func UpdateCustomer(c *gin.Context) {
	var req models.CustomerUpdateRequest
	if !bindJSON(c, &req) {
		return
	}

	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		utils.HandleError(c, utils.CreateBadRequestError("客户名称不能为空"))
		return
	}
	if req.Segment != nil && !models.IsValidSegment(*req.Segment) {
		utils.HandleError(c, utils.CreateBadRequestError("无效的客户分群: "+string(*req.Segment)))
		return
	}
	var lastOrder time.Time
	if req.LastOrderDate != nil {
		parsed, err := models.ParseDate(*req.LastOrderDate)
		if err != nil {
			utils.HandleError(c, utils.CreateBadRequestError("最后下单日期格式应为 YYYY-MM-DD"))
			return
		}
		lastOrder = parsed
	}

	customer, err := store().UpdateCustomer(c.Request.Context(), c.Param("id"), func(customer *models.Customer) error {
		if req.Name != nil {
			customer.Name = strings.TrimSpace(*req.Name)
		}
		if req.Email != nil {
			customer.Email = strings.TrimSpace(*req.Email)
		}
		if req.TotalSpent != nil {
			customer.TotalSpent = *req.TotalSpent
		}
		if req.OrderCount != nil {
			customer.OrderCount = *req.OrderCount
		}
		if req.LastOrderDate != nil {
			customer.LastOrderDate = lastOrder
		}
		if req.Segment != nil {
			customer.Segment = *req.Segment
		}
		return nil
	})
	if err != nil {
		handleStoreError(c, err, "客户")
		return
	}
	utils.SuccessResponse(c, customer, "客户更新成功")
}

// DeleteCustomer 删除客户，需要 confirm=true
func DeleteCustomer(c *gin.Context) {
	if !requireConfirm(c, "客户") {
		return
	}
	if err := store().DeleteCustomer(c.Request.Context(), c.Param("id")); err != nil {
		handleStoreError(c, err, "客户")
		return
	}
	utils.SuccessResponse(c, nil, "客户删除成功")
}
