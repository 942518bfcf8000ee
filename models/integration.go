package models

import "time"

// IntegrationType 集成渠道类型
type IntegrationType string

const (
	IntegrationShopify     IntegrationType = "shopify"
	IntegrationWooCommerce IntegrationType = "woocommerce"
	IntegrationStripe      IntegrationType = "stripe"
	IntegrationSquare      IntegrationType = "square"
	IntegrationCustom      IntegrationType = "custom"
)

// IsValidIntegrationType 验证集成类型是否有效
func IsValidIntegrationType(t IntegrationType) bool {
	switch t {
	case IntegrationShopify, IntegrationWooCommerce, IntegrationStripe, IntegrationSquare, IntegrationCustom:
		return true
	}
	return false
}

// IntegrationStatus 集成连接状态
type IntegrationStatus string

const (
	IntegrationConnected    IntegrationStatus = "connected"
	IntegrationDisconnected IntegrationStatus = "disconnected"
	IntegrationError        IntegrationStatus = "error"
)

// APIIntegration 第三方销售/支付渠道
type APIIntegration struct {
	ID         string            `json:"id" bson:"_id"`
	Name       string            `json:"name" bson:"name"`
	Type       IntegrationType   `json:"type" bson:"type"`
	Status     IntegrationStatus `json:"status" bson:"status"`
	LastSync   time.Time         `json:"lastSync" bson:"lastSync"`
	APIKey     string            `json:"apiKey,omitempty" bson:"apiKey,omitempty"`
	WebhookURL string            `json:"webhookUrl,omitempty" bson:"webhookUrl,omitempty"`
}

// MaskedAPIKey 返回脱敏后的API Key，只保留前缀
func (i APIIntegration) MaskedAPIKey() string {
	if i.APIKey == "" {
		return ""
	}
	prefix := i.APIKey
	if len(prefix) > 8 {
		prefix = prefix[:8]
	}
	return prefix + "***************"
}

type (
	// CreateIntegrationRequest 创建集成请求
	CreateIntegrationRequest struct {
		Name       string          `json:"name" binding:"required"`
		Type       IntegrationType `json:"type" binding:"required"`
		APIKey     string          `json:"apiKey"`
		WebhookURL string          `json:"webhookUrl" binding:"omitempty,url"`
	}

	// UpdateIntegrationRequest 更新集成请求
	UpdateIntegrationRequest struct {
		Name       *string `json:"name" binding:"omitempty,min=1"`
		APIKey     *string `json:"apiKey"`
		WebhookURL *string `json:"webhookUrl" binding:"omitempty,url"`
	}
)

// ReportDay 周报发送日
type ReportDay string

// ReportDays 允许的发送日
var ReportDays = map[ReportDay]time.Weekday{
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	"sunday":    time.Sunday,
}

// ReportMetrics 周报可选的KPI
var ReportMetrics = map[string]string{
	"revenue":    "Omsättning",
	"customers":  "Nya kunder",
	"orders":     "Antal beställningar",
	"conversion": "Konverteringsgrad",
	"aov":        "Genomsnittligt ordervärde",
}

// NotificationSettings 短信周报设置
type NotificationSettings struct {
	Enabled   bool      `json:"enabled" bson:"enabled"`
	Phone     string    `json:"phone" bson:"phone"`
	ReportDay ReportDay `json:"reportDay" bson:"reportDay"`
	Metrics   []string  `json:"metrics" bson:"metrics"`
}
