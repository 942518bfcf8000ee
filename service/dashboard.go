package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/BerniceZTT/salesiq/charts"
	"github.com/BerniceZTT/salesiq/models"
	"github.com/BerniceZTT/salesiq/repository"
)

// ErrUnknownChart 看板中没有该图表
var ErrUnknownChart = errors.New("未知的图表")

// 看板图表名
const (
	ChartMonthlySales         = "monthly-sales"
	ChartRegions              = "regions"
	ChartCustomerGrowth       = "customer-growth"
	ChartMonthlySalesDetailed = "monthly-sales-detailed"
	ChartRegionsDetailed      = "regions-detailed"
)

// ChartNames 看板图表，按展示顺序
var ChartNames = []string{
	ChartMonthlySales,
	ChartRegions,
	ChartCustomerGrowth,
	ChartMonthlySalesDetailed,
	ChartRegionsDetailed,
}

// recentMonths 月度销售图展示的月份数
const recentMonths = 6

var regionPalette = []string{"#10B981", "#8B5CF6", "#F59E0B", "#EF4444"}

// monthNotes 月度销售的说明
var monthNotes = map[string]string{
	"Jan": "Post-holiday slowdown affected sales in January",
	"Feb": "Valentine's Day campaign drove significant growth",
	"Mar": "Spring product launch exceeded expectations",
	"Apr": "Seasonal adjustment after strong March performance",
	"May": "Mother's Day and spring promotions boosted sales",
	"Jun": "Summer collection launch and graduation season",
}

// dashboardSource 看板所需的全部数据
type dashboardSource struct {
	monthly  []models.MonthlyMetric
	regions  []models.RegionMetric
	imported []models.SalesRecord
}

func loadDashboardSource(ctx context.Context, store repository.Store) (*dashboardSource, error) {
	monthly, err := store.MonthlyMetrics(ctx)
	if err != nil {
		return nil, fmt.Errorf("读取月度指标失败: %w", err)
	}
	regions, err := store.RegionMetrics(ctx)
	if err != nil {
		return nil, fmt.Errorf("读取区域指标失败: %w", err)
	}
	sales, err := store.ListSalesRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("读取销售记录失败: %w", err)
	}
	src := &dashboardSource{monthly: monthly}
	for _, r := range sales {
		if r.UploadID != "" {
			src.imported = append(src.imported, r)
		}
	}
	src.regions = mergeImportedRegions(regions, src.imported)
	return src, nil
}

// mergeImportedRegions 把导入的销售额计入对应区域，未知区域追加在末尾，并重新计算占比
func mergeImportedRegions(regions []models.RegionMetric, imported []models.SalesRecord) []models.RegionMetric {
	merged := append([]models.RegionMetric(nil), regions...)
	index := make(map[string]int, len(merged))
	for i, r := range merged {
		index[strings.ToLower(r.Region)] = i
	}
	for _, rec := range imported {
		name := strings.TrimSpace(rec.Region)
		if name == "" {
			continue
		}
		i, ok := index[strings.ToLower(name)]
		if !ok {
			merged = append(merged, models.RegionMetric{Region: name})
			i = len(merged) - 1
			index[strings.ToLower(name)] = i
		}
		merged[i].Sales += rec.TotalAmount
	}
	if len(imported) == 0 {
		return merged
	}

	var total float64
	for _, r := range merged {
		total += r.Sales
	}
	for i := range merged {
		if total > 0 {
			merged[i].Percentage = math.Round(merged[i].Sales/total*1000) / 10
		}
	}
	return merged
}

// BuildDashboard 汇总看板的指标卡片和图表
func BuildDashboard(ctx context.Context, store repository.Store) (*models.DashboardDataResponse, error) {
	src, err := loadDashboardSource(ctx, store)
	if err != nil {
		return nil, err
	}

	resp := &models.DashboardDataResponse{
		Cards:         src.cards(),
		ImportedSales: len(src.imported),
	}
	for _, r := range src.imported {
		resp.ImportedAmount += r.TotalAmount
	}
	for _, name := range ChartNames {
		chart, err := src.chart(name)
		if err != nil {
			return nil, err
		}
		resp.Charts = append(resp.Charts, chart)
	}
	return resp, nil
}

// DashboardChart 返回单个看板图表的数据
func DashboardChart(ctx context.Context, store repository.Store, name string) (models.ChartSummary, error) {
	src, err := loadDashboardSource(ctx, store)
	if err != nil {
		return models.ChartSummary{}, err
	}
	return src.chart(name)
}

func (s *dashboardSource) chart(name string) (models.ChartSummary, error) {
	switch name {
	case ChartMonthlySales:
		return models.ChartSummary{Name: name, Title: "Månadsförsäljning", Type: string(charts.KindBar), Data: s.monthlySales(false)}, nil
	case ChartRegions:
		return models.ChartSummary{Name: name, Title: "Försäljning per region", Type: string(charts.KindPie), Data: s.regionShares(false)}, nil
	case ChartCustomerGrowth:
		return models.ChartSummary{Name: name, Title: "Kundtillväxt", Type: string(charts.KindLine), Data: s.customerGrowth()}, nil
	case ChartMonthlySalesDetailed:
		return models.ChartSummary{Name: name, Title: "Detaljerad månadsförsäljning", Type: string(charts.KindArea), Data: s.monthlySales(true)}, nil
	case ChartRegionsDetailed:
		return models.ChartSummary{Name: name, Title: "Regional analys", Type: string(charts.KindPie), Data: s.regionShares(true)}, nil
	}
	return models.ChartSummary{}, fmt.Errorf("%w: %s", ErrUnknownChart, name)
}

func (s *dashboardSource) recent() []models.MonthlyMetric {
	if len(s.monthly) <= recentMonths {
		return s.monthly
	}
	return s.monthly[len(s.monthly)-recentMonths:]
}

func (s *dashboardSource) monthlySales(detailed bool) []models.ChartDataPoint {
	recent := s.recent()
	offset := len(s.monthly) - len(recent)
	points := make([]models.ChartDataPoint, 0, len(recent))
	for i, m := range recent {
		point := models.ChartDataPoint{Label: m.Month, Value: m.Sales}
		if detailed {
			point.Color = charts.DefaultColor
			meta := &models.ChartMetadata{
				Details: monthNotes[m.Month],
				SubMetrics: map[string]float64{
					"Nya kunder":                float64(m.Customers),
					"Antal beställningar":       float64(m.Orders),
					"Genomsnittligt ordervärde": math.Round(averageOrderValue(m)),
				},
			}
			if prev := offset + i - 1; prev >= 0 {
				change := percentChange(s.monthly[prev].Sales, m.Sales)
				meta.Change = &change
			}
			point.Metadata = meta
		}
		points = append(points, point)
	}
	return points
}

func (s *dashboardSource) customerGrowth() []models.ChartDataPoint {
	points := make([]models.ChartDataPoint, 0, len(s.monthly))
	for _, m := range s.monthly {
		points = append(points, models.ChartDataPoint{Label: m.Month, Value: float64(m.Customers), Color: "#10B981"})
	}
	return points
}

func (s *dashboardSource) regionShares(detailed bool) []models.ChartDataPoint {
	points := make([]models.ChartDataPoint, 0, len(s.regions))
	for i, r := range s.regions {
		point := models.ChartDataPoint{Label: r.Region, Value: r.Sales}
		if detailed {
			percentage := r.Percentage
			point.Color = regionPalette[i%len(regionPalette)]
			point.Metadata = &models.ChartMetadata{
				Percentage: &percentage,
				SubMetrics: map[string]float64{"Marknadsandel": r.Percentage},
			}
		}
		points = append(points, point)
	}
	return points
}

func averageOrderValue(m models.MonthlyMetric) float64 {
	if m.Orders == 0 {
		return 0
	}
	return m.Sales / float64(m.Orders)
}

// percentChange 相对变化百分比，保留一位小数
func percentChange(previous, current float64) float64 {
	if previous == 0 {
		return 0
	}
	return math.Round((current-previous)/previous*1000) / 10
}

func trendOf(change float64) models.Trend {
	switch {
	case change > 0:
		return models.TrendUp
	case change < 0:
		return models.TrendDown
	}
	return models.TrendNeutral
}

func formatChange(change float64) string {
	return fmt.Sprintf("%+.1f%%", change)
}

func card(key, title string, raw, change float64, value string) models.AnalyticsCard {
	return models.AnalyticsCard{
		Key:    key,
		Title:  title,
		Value:  value,
		Raw:    raw,
		Change: formatChange(change),
		Trend:  trendOf(change),
	}
}

// cards 以最近两个月对比计算变化率
func (s *dashboardSource) cards() []models.AnalyticsCard {
	var last, prev models.MonthlyMetric
	if n := len(s.monthly); n > 0 {
		last = s.monthly[n-1]
		prev = last
		if n > 1 {
			prev = s.monthly[n-2]
		}
	}

	var revenue, importedAmount float64
	for _, r := range s.regions {
		revenue += r.Sales
	}
	for _, r := range s.imported {
		importedAmount += r.TotalAmount
	}

	aov, prevAOV := averageOrderValue(last), averageOrderValue(prev)
	conversion, prevConversion := conversionRate(last), conversionRate(prev)

	return []models.AnalyticsCard{
		card("revenue", "Total omsättning", revenue, percentChange(prev.Sales, last.Sales), charts.FormatValue(revenue, true)),
		card("customers", "Kunder", float64(last.Customers), percentChange(float64(prev.Customers), float64(last.Customers)), charts.FormatValue(float64(last.Customers), false)),
		card("orders", "Beställningar", float64(last.Orders), percentChange(float64(prev.Orders), float64(last.Orders)), charts.FormatValue(float64(last.Orders), false)),
		card("aov", "Genomsnittligt ordervärde", aov, percentChange(prevAOV, aov), charts.FormatValue(aov, true)),
		card("imported", "Importerade försäljningar", importedAmount, 0, charts.FormatValue(float64(len(s.imported)), false)),
		card("conversion", "Konverteringsgrad", conversion, conversion-prevConversion, fmt.Sprintf("%.1f%%", conversion)),
	}
}

// conversionRate 每张订单对应的新客户占比
func conversionRate(m models.MonthlyMetric) float64 {
	if m.Orders == 0 {
		return 0
	}
	return math.Round(float64(m.Customers)/float64(m.Orders)*1000) / 10
}
