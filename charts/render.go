package charts

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/BerniceZTT/salesiq/models"
)

// Kind 图表类型
type Kind string

const (
	KindBar  Kind = "bar"
	KindLine Kind = "line"
	KindArea Kind = "area"
	KindPie  Kind = "pie"
)

// ParseKind 解析图表类型
func ParseKind(value string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(value))); k {
	case KindBar, KindLine, KindArea, KindPie:
		return k, nil
	}
	return "", fmt.Errorf("不支持的图表类型: %q", value)
}

var (
	// ErrNoData 没有数据点
	ErrNoData = errors.New("图表数据为空")
	// ErrInvalidPieData 饼图包含负值或总和不为正
	ErrInvalidPieData = errors.New("饼图数据必须为非负数且总和大于0")
)

const (
	// DefaultColor 默认数据点颜色
	DefaultColor = "#3B82F6"

	defaultHeight  = 300
	defaultWidth   = 400
	defaultPadding = 50
	gridSteps      = 5
	barSlotRatio   = 0.6
	pieLabelRatio  = 0.7
	// 占比不超过该值的扇区不显示百分比标签
	pieLabelMinPercent = 5
	labelBaselineInset = 10
)

// Options 渲染参数
type Options struct {
	Title    string
	Height   float64
	Width    float64
	Padding  float64
	ShowGrid bool
	Currency bool
}

// DefaultOptions 默认渲染参数
func DefaultOptions(title string) Options {
	return Options{
		Title:    title,
		Height:   defaultHeight,
		Width:    defaultWidth,
		Padding:  defaultPadding,
		ShowGrid: true,
	}
}

func (o Options) withDefaults() Options {
	if o.Height <= 0 {
		o.Height = defaultHeight
	}
	if o.Width <= 0 {
		o.Width = defaultWidth
	}
	if o.Padding <= 0 {
		o.Padding = defaultPadding
	}
	return o
}

// GridLine 水平网格线
type GridLine struct {
	Y     float64 `json:"y"`
	Value float64 `json:"value"`
	Label string  `json:"label"`
}

// Bar 柱
type Bar struct {
	Index  int     `json:"index"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Color  string  `json:"color"`
}

// Marker 折线/面积图上的数据点
type Marker struct {
	Index int     `json:"index"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Color string  `json:"color"`
}

// Slice 饼图扇区，角度单位为度，-90 为12点方向
type Slice struct {
	Index      int     `json:"index"`
	Path       string  `json:"path"`
	Color      string  `json:"color"`
	StartAngle float64 `json:"startAngle"`
	EndAngle   float64 `json:"endAngle"`
	Percentage float64 `json:"percentage"`
	LabelX     float64 `json:"labelX"`
	LabelY     float64 `json:"labelY"`
	Label      string  `json:"label"`
}

// Text 轴标签
type Text struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Value string  `json:"value"`
}

// Scene 一次渲染得到的全部绘图元素
type Scene struct {
	Kind       Kind     `json:"kind"`
	Title      string   `json:"title"`
	ViewWidth  float64  `json:"viewWidth"`
	ViewHeight float64  `json:"viewHeight"`
	Padding    float64  `json:"padding"`
	PlotWidth  float64  `json:"plotWidth"`
	PlotHeight float64  `json:"plotHeight"`
	Scale      Scale    `json:"scale"`
	Currency   bool     `json:"currency"`
	// Flat 所有值相等，前端据此显示“无变化”提示
	Flat       bool       `json:"flat"`
	Grid       []GridLine `json:"grid,omitempty"`
	Bars       []Bar      `json:"bars,omitempty"`
	Markers    []Marker   `json:"markers,omitempty"`
	Polyline   string     `json:"polyline,omitempty"`
	Area       string     `json:"area,omitempty"`
	GradientID string     `json:"gradientId,omitempty"`
	Slices     []Slice    `json:"slices,omitempty"`
	Labels     []Text     `json:"labels,omitempty"`

	// 饼图几何
	CenterX float64 `json:"centerX,omitempty"`
	CenterY float64 `json:"centerY,omitempty"`
	Radius  float64 `json:"radius,omitempty"`

	Data []models.ChartDataPoint `json:"data"`
}

// Render 把数据点映射为指定类型的场景
func Render(points []models.ChartDataPoint, kind Kind, opts Options) (*Scene, error) {
	if len(points) == 0 {
		return nil, ErrNoData
	}
	opts = opts.withDefaults()

	scene := &Scene{
		Kind:       kind,
		Title:      opts.Title,
		ViewWidth:  opts.Width + opts.Padding*2,
		ViewHeight: opts.Height,
		Padding:    opts.Padding,
		PlotWidth:  opts.Width,
		PlotHeight: opts.Height - opts.Padding*2,
		Scale:      NewScale(points),
		Currency:   opts.Currency,
		Data:       points,
	}
	scene.Flat = scene.Scale.Degenerate

	switch kind {
	case KindBar:
		scene.layoutBars()
	case KindLine, KindArea:
		scene.layoutLine()
	case KindPie:
		if err := scene.layoutPie(); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("不支持的图表类型: %q", kind)
	}

	if opts.ShowGrid && kind != KindPie {
		scene.layoutGrid()
	}
	return scene, nil
}

// baseline 绘图区底边的 y 坐标
func (s *Scene) baseline() float64 {
	return s.Padding + s.PlotHeight
}

func (s *Scene) layoutGrid() {
	for i := 0; i <= gridSteps; i++ {
		value := s.Scale.GridValue(i, gridSteps)
		s.Grid = append(s.Grid, GridLine{
			Y:     s.Padding + (s.PlotHeight/gridSteps)*float64(i),
			Value: value,
			Label: FormatValue(value, s.Currency),
		})
	}
}

func (s *Scene) layoutBars() {
	slot := s.PlotWidth / float64(len(s.Data))
	width := slot * barSlotRatio
	for i, p := range s.Data {
		height := s.Scale.PixelHeight(p.Value, s.PlotHeight)
		x := s.Padding + float64(i)*slot + slot*(1-barSlotRatio)/2
		s.Bars = append(s.Bars, Bar{
			Index:  i,
			X:      x,
			Y:      s.baseline() - height,
			Width:  width,
			Height: height,
			Color:  colorOr(p.Color, DefaultColor),
		})
		s.Labels = append(s.Labels, Text{X: x + width/2, Y: s.ViewHeight - labelBaselineInset, Value: p.Label})
	}
}

// markerX 单个数据点居中，避免除以 n-1 = 0
func (s *Scene) markerX(i int) float64 {
	n := len(s.Data)
	if n == 1 {
		return s.Padding + s.PlotWidth/2
	}
	return s.Padding + float64(i)*(s.PlotWidth/float64(n-1))
}

func (s *Scene) layoutLine() {
	coords := make([]string, 0, len(s.Data))
	for i, p := range s.Data {
		x := s.markerX(i)
		y := s.baseline() - s.Scale.PixelHeight(p.Value, s.PlotHeight)
		s.Markers = append(s.Markers, Marker{Index: i, X: x, Y: y, Color: colorOr(p.Color, DefaultColor)})
		s.Labels = append(s.Labels, Text{X: x, Y: s.ViewHeight - labelBaselineInset, Value: p.Label})
		coords = append(coords, formatNumber(x)+","+formatNumber(y))
	}
	s.Polyline = strings.Join(coords, " ")

	if s.Kind == KindArea {
		s.GradientID = "areaGradient-" + gradientSuffix(s.Title)
		s.Area = strings.Join([]string{
			formatNumber(s.Padding) + "," + formatNumber(s.baseline()),
			s.Polyline,
			formatNumber(s.Padding+s.PlotWidth) + "," + formatNumber(s.baseline()),
		}, " ")
	}
}

func (s *Scene) layoutPie() error {
	var total float64
	for _, p := range s.Data {
		if p.Value < 0 {
			return ErrInvalidPieData
		}
		total += p.Value
	}
	if total <= 0 {
		return ErrInvalidPieData
	}

	s.CenterX = s.PlotWidth/2 + s.Padding
	s.CenterY = s.ViewHeight / 2
	s.Radius = math.Min(s.PlotWidth, s.PlotHeight) / 3

	var current float64
	n := len(s.Data)
	for i, p := range s.Data {
		sweep := p.Value / total * 360
		start := current - 90
		end := start + sweep
		current += sweep

		x1, y1 := s.polar(s.Radius, start)
		x2, y2 := s.polar(s.Radius, end)
		largeArc := 0
		if sweep > 180 {
			largeArc = 1
		}
		path := fmt.Sprintf("M %s %s L %s %s A %s %s 0 %d 1 %s %s Z",
			formatNumber(s.CenterX), formatNumber(s.CenterY),
			formatNumber(x1), formatNumber(y1),
			formatNumber(s.Radius), formatNumber(s.Radius),
			largeArc,
			formatNumber(x2), formatNumber(y2),
		)
		if sweep >= 360 {
			// 起点终点重合的弧不会被绘制，整圆拆成两段
			path = fmt.Sprintf("M %s %s A %[3]s %[3]s 0 1 1 %[1]s %[4]s A %[3]s %[3]s 0 1 1 %[1]s %[2]s Z",
				formatNumber(s.CenterX), formatNumber(s.CenterY-s.Radius),
				formatNumber(s.Radius), formatNumber(s.CenterY+s.Radius),
			)
		}

		percentage := p.Value / total * 100
		lx, ly := s.polar(s.Radius*pieLabelRatio, (start+end)/2)
		label := ""
		if percentage > pieLabelMinPercent {
			label = fmt.Sprintf("%.0f%%", percentage)
		}

		s.Slices = append(s.Slices, Slice{
			Index:      i,
			Path:       path,
			Color:      colorOr(p.Color, fmt.Sprintf("hsl(%s, 65%%, 55%%)", formatNumber(float64(i)*360/float64(n)))),
			StartAngle: start,
			EndAngle:   end,
			Percentage: percentage,
			LabelX:     lx,
			LabelY:     ly,
			Label:      label,
		})
	}
	return nil
}

// polar 以饼图圆心为原点的极坐标转换
func (s *Scene) polar(radius, degrees float64) (float64, float64) {
	rad := degrees * math.Pi / 180
	return s.CenterX + radius*math.Cos(rad), s.CenterY + radius*math.Sin(rad)
}

// TotalAngle 所有扇区角度之和
func (s *Scene) TotalAngle() float64 {
	var sum float64
	for _, slice := range s.Slices {
		sum += slice.EndAngle - slice.StartAngle
	}
	return sum
}

func colorOr(color, fallback string) string {
	if strings.TrimSpace(color) == "" {
		return fallback
	}
	return color
}

var nonIdentChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

func gradientSuffix(title string) string {
	suffix := nonIdentChars.ReplaceAllString(title, "-")
	if suffix == "" {
		return "chart"
	}
	return suffix
}

// formatNumber 保留两位小数并去掉多余的0
func formatNumber(v float64) string {
	rounded := math.Round(v*100) / 100
	if rounded == 0 {
		rounded = 0 // 去掉 -0
	}
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", rounded), "0"), ".")
}
