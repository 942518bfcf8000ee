package service

import (
	"sort"
	"strings"

	"github.com/BerniceZTT/salesiq/models"
)

// SortOrder 排序方向
type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// ParseOrder 解析排序方向，默认升序
func ParseOrder(value string) SortOrder {
	if strings.EqualFold(value, string(OrderDesc)) {
		return OrderDesc
	}
	return OrderAsc
}

// allValues 表示不过滤分类
const allValues = "all"

func isAll(value string) bool {
	return value == "" || strings.EqualFold(value, allValues)
}

// containsFold 忽略大小写的子串匹配
func containsFold(value, term string) bool {
	return strings.Contains(strings.ToLower(value), term)
}

// CustomerSortFields 客户列表可排序的字段
var CustomerSortFields = map[string]bool{
	"name":          true,
	"email":         true,
	"totalSpent":    true,
	"orderCount":    true,
	"lastOrderDate": true,
	"segment":       true,
}

// CustomerQuery 客户列表查询条件
type CustomerQuery struct {
	Search  string
	Segment string
	SortBy  string
	Order   SortOrder
}

// FilterCustomers 按关键字和分群过滤客户，结果按条件排序，不修改入参
func FilterCustomers(customers []models.Customer, q CustomerQuery) []models.Customer {
	term := strings.ToLower(strings.TrimSpace(q.Search))

	result := make([]models.Customer, 0, len(customers))
	for _, c := range customers {
		if term != "" && !containsFold(c.Name, term) && !containsFold(c.Email, term) {
			continue
		}
		if !isAll(q.Segment) && !strings.EqualFold(string(c.Segment), q.Segment) {
			continue
		}
		result = append(result, c)
	}

	SortCustomers(result, q.SortBy, q.Order)
	return result
}

// SortCustomers 按单个字段排序，字符串忽略大小写
func SortCustomers(customers []models.Customer, field string, order SortOrder) {
	if !CustomerSortFields[field] {
		return
	}
	less := func(a, b models.Customer) int {
		switch field {
		case "email":
			return compareFold(a.Email, b.Email)
		case "totalSpent":
			return compareFloat(a.TotalSpent, b.TotalSpent)
		case "orderCount":
			return compareFloat(float64(a.OrderCount), float64(b.OrderCount))
		case "lastOrderDate":
			return a.LastOrderDate.Compare(b.LastOrderDate)
		case "segment":
			return compareFold(string(a.Segment), string(b.Segment))
		}
		return compareFold(a.Name, b.Name)
	}
	sort.SliceStable(customers, func(i, j int) bool {
		cmp := less(customers[i], customers[j])
		if order == OrderDesc {
			return cmp > 0
		}
		return cmp < 0
	})
}

// CustomerStatsOf 客户概览统计
func CustomerStatsOf(customers []models.Customer) models.CustomerStats {
	stats := models.CustomerStats{TotalCustomers: len(customers)}
	var aovSum float64
	for _, c := range customers {
		if c.Segment == models.SegmentHighValue {
			stats.HighValueCustomers++
		}
		stats.TotalRevenue += c.TotalSpent
		aovSum += c.AverageOrderValue()
	}
	if len(customers) > 0 {
		stats.AverageOrderValue = aovSum / float64(len(customers))
	}
	return stats
}

func compareFold(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
