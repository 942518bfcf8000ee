package models

import (
	"time"
)

// UserRole 用户角色枚举
type UserRole string

const (
	UserRoleAdmin   UserRole = "admin"   // 管理员
	UserRoleManager UserRole = "manager" // 经理
	UserRoleViewer  UserRole = "viewer"  // 只读用户
)

// IsValidUserRole 验证角色是否有效
func IsValidUserRole(role UserRole) bool {
	switch role {
	case UserRoleAdmin, UserRoleManager, UserRoleViewer:
		return true
	}
	return false
}

// Label 角色显示名称
func (r UserRole) Label() string {
	switch r {
	case UserRoleAdmin:
		return "Administrator"
	case UserRoleManager:
		return "Manager"
	case UserRoleViewer:
		return "Viewer"
	}
	return string(r)
}

// Permissions 用户权限
type Permissions struct {
	ViewDashboard bool `json:"viewDashboard" bson:"viewDashboard"`
	ViewCustomers bool `json:"viewCustomers" bson:"viewCustomers"`
	ViewReports   bool `json:"viewReports" bson:"viewReports"`
	ManageUsers   bool `json:"manageUsers" bson:"manageUsers"`
	ExportData    bool `json:"exportData" bson:"exportData"`
	ImportData    bool `json:"importData" bson:"importData"`
}

// User 用户类型
type User struct {
	ID          string      `json:"id" bson:"_id"`
	Name        string      `json:"name" bson:"name"`
	Email       string      `json:"email" bson:"email"`
	Phone       string      `json:"phone" bson:"phone"`
	Role        UserRole    `json:"role" bson:"role"`
	Department  string      `json:"department" bson:"department"`
	LastLogin   time.Time   `json:"lastLogin" bson:"lastLogin"`
	IsActive    bool        `json:"isActive" bson:"isActive"`
	Permissions Permissions `json:"permissions" bson:"permissions"`
}

// CustomerSegment 客户分群
type CustomerSegment string

const (
	SegmentHighValue CustomerSegment = "High Value"
	SegmentRegular   CustomerSegment = "Regular"
	SegmentNew       CustomerSegment = "New"
	SegmentAtRisk    CustomerSegment = "At Risk"
)

// Segments 全部客户分群，按界面展示顺序
var Segments = []CustomerSegment{SegmentHighValue, SegmentRegular, SegmentNew, SegmentAtRisk}

// IsValidSegment 验证分群是否有效
func IsValidSegment(segment CustomerSegment) bool {
	for _, s := range Segments {
		if s == segment {
			return true
		}
	}
	return false
}

// Customer 客户模型
type Customer struct {
	ID            string          `json:"id" bson:"_id"`
	Name          string          `json:"name" bson:"name"`
	Email         string          `json:"email" bson:"email"`
	TotalSpent    float64         `json:"totalSpent" bson:"totalSpent"`
	OrderCount    int             `json:"orderCount" bson:"orderCount"`
	LastOrderDate time.Time       `json:"lastOrderDate" bson:"lastOrderDate"`
	Segment       CustomerSegment `json:"segment" bson:"segment"`
}

// AverageOrderValue 平均订单金额，无订单时为0
func (c Customer) AverageOrderValue() float64 {
	if c.OrderCount <= 0 {
		return 0
	}
	return c.TotalSpent / float64(c.OrderCount)
}

// 各种请求和响应结构
type (
	// CustomerCreateRequest 创建客户请求
	CustomerCreateRequest struct {
		Name          string          `json:"name" binding:"required"`
		Email         string          `json:"email" binding:"required,email"`
		TotalSpent    float64         `json:"totalSpent" binding:"gte=0"`
		OrderCount    int             `json:"orderCount" binding:"gte=0"`
		LastOrderDate string          `json:"lastOrderDate"`
		Segment       CustomerSegment `json:"segment"`
	}

	// CustomerUpdateRequest 更新客户请求
	CustomerUpdateRequest struct {
		Name          *string          `json:"name" binding:"omitempty,min=1"`
		Email         *string          `json:"email" binding:"omitempty,email"`
		TotalSpent    *float64         `json:"totalSpent" binding:"omitempty,gte=0"`
		OrderCount    *int             `json:"orderCount" binding:"omitempty,gte=0"`
		LastOrderDate *string          `json:"lastOrderDate"`
		Segment       *CustomerSegment `json:"segment"`
	}

	// CreateUserRequest 创建用户请求
	CreateUserRequest struct {
		Name        string       `json:"name" binding:"required"`
		Email       string       `json:"email" binding:"required,email"`
		Phone       string       `json:"phone"`
		Role        UserRole     `json:"role" binding:"required"`
		Department  string       `json:"department"`
		Permissions *Permissions `json:"permissions"`
	}

	// UpdateUserRequest 更新用户请求
	UpdateUserRequest struct {
		Name        *string      `json:"name" binding:"omitempty,min=1"`
		Email       *string      `json:"email" binding:"omitempty,email"`
		Phone       *string      `json:"phone"`
		Role        *UserRole    `json:"role"`
		Department  *string      `json:"department"`
		IsActive    *bool        `json:"isActive"`
		Permissions *Permissions `json:"permissions"`
	}
)

// DateLayout 日期格式
const DateLayout = "2006-01-02"

// ParseDate 解析 YYYY-MM-DD 日期，空字符串返回零值
func ParseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse(DateLayout, value)
}
