package models

// ChartMetadata 图表数据点的附加信息
type ChartMetadata struct {
	Change     *float64           `json:"change,omitempty"`
	Percentage *float64           `json:"percentage,omitempty"`
	Details    string             `json:"details,omitempty"`
	SubMetrics map[string]float64 `json:"subMetrics,omitempty"`
}

// ChartDataPoint 图表数据点
type ChartDataPoint struct {
	Label    string         `json:"label"`
	Value    float64        `json:"value"`
	Color    string         `json:"color,omitempty"`
	Metadata *ChartMetadata `json:"metadata,omitempty"`
}

// MonthlyMetric 月度销售指标
type MonthlyMetric struct {
	Month     string  `json:"month" bson:"month"`
	Sales     float64 `json:"sales" bson:"sales"`
	Customers int     `json:"customers" bson:"customers"`
	Orders    int     `json:"orders" bson:"orders"`
}

// RegionMetric 区域销售指标
type RegionMetric struct {
	Region     string  `json:"region" bson:"region"`
	Sales      float64 `json:"sales" bson:"sales"`
	Percentage float64 `json:"percentage" bson:"percentage"`
}

// RenderChartRequest 渲染自定义图表请求
type RenderChartRequest struct {
	Type     string           `json:"type" binding:"required,oneof=bar line area pie"`
	Title    string           `json:"title"`
	Height   int              `json:"height" binding:"omitempty,gte=120,lte=2000"`
	ShowGrid *bool            `json:"showGrid"`
	Currency bool             `json:"currency"`
	Data     []ChartDataPoint `json:"data" binding:"required,min=1,dive"`
}
