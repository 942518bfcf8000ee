package models

// Trend 指标趋势
type Trend string

const (
	TrendUp      Trend = "up"
	TrendDown    Trend = "down"
	TrendNeutral Trend = "neutral"
)

// AnalyticsCard 看板指标卡片
type AnalyticsCard struct {
	Key    string  `json:"key"`
	Title  string  `json:"title"`
	Value  string  `json:"value"`
	Raw    float64 `json:"raw"`
	Change string  `json:"change"`
	Trend  Trend   `json:"trend"`
}

// ChartSummary 看板中的图表
type ChartSummary struct {
	Name  string           `json:"name"`
	Title string           `json:"title"`
	Type  string           `json:"type"`
	Data  []ChartDataPoint `json:"data"`
}

// DashboardDataResponse 数据看板响应结构
type DashboardDataResponse struct {
	Cards          []AnalyticsCard `json:"cards"`
	Charts         []ChartSummary  `json:"charts"`
	ImportedSales  int             `json:"importedSales"`
	ImportedAmount float64         `json:"importedAmount"`
}

// CustomerStats 客户概览统计
type CustomerStats struct {
	TotalCustomers     int     `json:"totalCustomers"`
	HighValueCustomers int     `json:"highValueCustomers"`
	AverageOrderValue  float64 `json:"averageOrderValue"`
	TotalRevenue       float64 `json:"totalRevenue"`
}

// UserStats 用户概览统计
type UserStats struct {
	TotalUsers    int `json:"totalUsers"`
	Admins        int `json:"admins"`
	ActiveUsers   int `json:"activeUsers"`
	InactiveUsers int `json:"inactiveUsers"`
}
