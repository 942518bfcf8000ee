package service

import (
	"sort"
	"strings"

	"github.com/BerniceZTT/salesiq/models"
)

// 用户状态过滤值
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// UserSortFields 用户列表可排序的字段
var UserSortFields = map[string]bool{
	"name":       true,
	"email":      true,
	"role":       true,
	"department": true,
	"lastLogin":  true,
}

// UserQuery 用户列表查询条件
type UserQuery struct {
	Search string
	Role   string
	Status string
	SortBy string
	Order  SortOrder
}

// FilterUsers 按关键字、角色和状态过滤用户
func FilterUsers(users []models.User, q UserQuery) []models.User {
	term := strings.ToLower(strings.TrimSpace(q.Search))

	result := make([]models.User, 0, len(users))
	for _, u := range users {
		if term != "" && !containsFold(u.Name, term) && !containsFold(u.Email, term) && !containsFold(u.Department, term) {
			continue
		}
		if !isAll(q.Role) && !strings.EqualFold(string(u.Role), q.Role) {
			continue
		}
		switch strings.ToLower(q.Status) {
		case StatusActive:
			if !u.IsActive {
				continue
			}
		case StatusInactive:
			if u.IsActive {
				continue
			}
		}
		result = append(result, u)
	}

	SortUsers(result, q.SortBy, q.Order)
	return result
}

// SortUsers 按单个字段排序
func SortUsers(users []models.User, field string, order SortOrder) {
	if !UserSortFields[field] {
		return
	}
	cmp := func(a, b models.User) int {
		switch field {
		case "email":
			return compareFold(a.Email, b.Email)
		case "role":
			return compareFold(string(a.Role), string(b.Role))
		case "department":
			return compareFold(a.Department, b.Department)
		case "lastLogin":
			return a.LastLogin.Compare(b.LastLogin)
		}
		return compareFold(a.Name, b.Name)
	}
	sort.SliceStable(users, func(i, j int) bool {
		if order == OrderDesc {
			return cmp(users[i], users[j]) > 0
		}
		return cmp(users[i], users[j]) < 0
	})
}

// UserStatsOf 用户概览统计
func UserStatsOf(users []models.User) models.UserStats {
	stats := models.UserStats{TotalUsers: len(users)}
	for _, u := range users {
		if u.Role == models.UserRoleAdmin {
			stats.Admins++
		}
		if u.IsActive {
			stats.ActiveUsers++
		} else {
			stats.InactiveUsers++
		}
	}
	return stats
}
