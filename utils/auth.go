package utils

import (
	"fmt"
	"time"

	"github.com/BerniceZTT/salesiq/config"
	"github.com/BerniceZTT/salesiq/models"

	"github.com/dgrijalva/jwt-go"
)

var webhookSecret = []byte(config.LoadConfig().WebhookKey)

// webhookTokenTTL 集成webhook令牌有效期
const webhookTokenTTL = 365 * 24 * time.Hour

// SetWebhookSecret 替换webhook签名密钥
func SetWebhookSecret(secret string) {
	webhookSecret = []byte(secret)
}

// GenerateWebhookToken 为集成生成webhook令牌
func GenerateWebhookToken(integration models.APIIntegration) (string, error) {
	Logger.Info().
		Str("integrationId", integration.ID).
		Str("type", string(integration.Type)).
		Msg("开始生成webhook令牌")

	now := time.Now()
	claims := jwt.MapClaims{
		"integrationId": integration.ID,
		"type":          string(integration.Type),
		"exp":           now.Add(webhookTokenTTL).Unix(),
		"iat":           now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(webhookSecret)
	if err != nil {
		Logger.Error().Err(err).Msg("生成webhook令牌失败")
		return "", err
	}
	return tokenString, nil
}

// ParseWebhookToken 解析和验证webhook令牌，返回其所属的集成ID
func ParseWebhookToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// 验证签名方法
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return webhookSecret, nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("无效的token")
	}
	integrationID, ok := claims["integrationId"].(string)
	if !ok || integrationID == "" {
		return "", fmt.Errorf("token缺少integrationId")
	}
	return integrationID, nil
}

// rolePermissions 各角色默认权限
var rolePermissions = map[models.UserRole]models.Permissions{
	models.UserRoleAdmin: {
		ViewDashboard: true,
		ViewCustomers: true,
		ViewReports:   true,
		ManageUsers:   true,
		ExportData:    true,
		ImportData:    true,
	},
	models.UserRoleManager: {
		ViewDashboard: true,
		ViewCustomers: true,
		ViewReports:   true,
		ExportData:    true,
		ImportData:    true,
	},
	models.UserRoleViewer: {
		ViewDashboard: true,
		ViewReports:   true,
	},
}

// roleCapabilities 权限概览中的角色说明
var roleCapabilities = map[models.UserRole][]string{
	models.UserRoleAdmin: {
		"Full access to all features",
		"Can manage users",
		"Can export all data",
		"Can configure API integrations",
	},
	models.UserRoleManager: {
		"Can view dashboard and reports",
		"Can manage customers",
		"Can export data",
		"Can import data",
	},
	models.UserRoleViewer: {
		"Can view dashboard",
		"Can view reports",
		"Limited data access",
		"Cannot export data",
	},
}

// DefaultPermissions 返回角色的默认权限
func DefaultPermissions(role models.UserRole) models.Permissions {
	return rolePermissions[role]
}

// RoleOverview 角色权限概览
type RoleOverview struct {
	Role         models.UserRole    `json:"role"`
	Label        string             `json:"label"`
	Permissions  models.Permissions `json:"permissions"`
	Capabilities []string           `json:"capabilities"`
}

// RoleOverviews 按 admin、manager、viewer 顺序返回权限概览
func RoleOverviews() []RoleOverview {
	roles := []models.UserRole{models.UserRoleAdmin, models.UserRoleManager, models.UserRoleViewer}
	result := make([]RoleOverview, 0, len(roles))
	for _, role := range roles {
		result = append(result, RoleOverview{
			Role:         role,
			Label:        role.Label(),
			Permissions:  rolePermissions[role],
			Capabilities: roleCapabilities[role],
		})
	}
	return result
}
