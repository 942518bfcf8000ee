package utils

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 \-]{6,18}$`)

// IsValidPhone 验证电话号码是否有效（国际格式，允许空格和短横线）
func IsValidPhone(phone string) bool {
	return phonePattern.MatchString(strings.TrimSpace(phone))
}

// IsConfirmed 破坏性操作是否已确认
func IsConfirmed(c *gin.Context) bool {
	confirmed, _ := strconv.ParseBool(c.Query("confirm"))
	return confirmed
}

// QueryInt 读取整数查询参数，非法值返回默认值
func QueryInt(c *gin.Context, key string, defaultValue int) int {
	raw := c.Query(key)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return defaultValue
	}
	return value
}

// QueryFloat 读取浮点查询参数
func QueryFloat(c *gin.Context, key string) (float64, bool) {
	raw := c.Query(key)
	if raw == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// ListResponse 列表响应
func ListResponse(c *gin.Context, key string, items interface{}, total int) {
	SuccessResponse(c, gin.H{
		key:     items,
		"total": total,
	}, "")
}
