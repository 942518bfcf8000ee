package charts

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/BerniceZTT/salesiq/models"
)

// RenderPNG 用 go-chart 输出位图版本，几何与 SVG 版本无关
func RenderPNG(w io.Writer, points []models.ChartDataPoint, kind Kind, opts Options) error {
	if len(points) == 0 {
		return ErrNoData
	}
	opts = opts.withDefaults()
	width := int(opts.Width + opts.Padding*2)
	height := int(opts.Height)
	scale := NewScale(points)

	// 值域为0时手动放宽，go-chart 不接受零宽值域
	yRange := &chart.ContinuousRange{Min: math.Min(0, scale.Min), Max: scale.Max}
	if yRange.Max <= yRange.Min {
		yRange.Max = yRange.Min + 1
	}
	valueFormatter := func(v interface{}) string {
		if f, ok := v.(float64); ok {
			return FormatValue(f, opts.Currency)
		}
		return fmt.Sprint(v)
	}

	switch kind {
	case KindBar:
		bars := make([]chart.Value, 0, len(points))
		for _, p := range points {
			color := parseColor(p.Color, DefaultColor)
			bars = append(bars, chart.Value{
				Label: p.Label,
				Value: p.Value,
				Style: chart.Style{FillColor: color, StrokeColor: color},
			})
		}
		graph := chart.BarChart{
			Title:  opts.Title,
			Width:  width,
			Height: height,
			YAxis: chart.YAxis{
				Range:          yRange,
				ValueFormatter: valueFormatter,
			},
			Bars: bars,
		}
		return graph.Render(chart.PNG, w)

	case KindLine, KindArea:
		xs := make([]float64, len(points))
		ys := make([]float64, len(points))
		ticks := make([]chart.Tick, len(points))
		for i, p := range points {
			xs[i] = float64(i)
			ys[i] = p.Value
			ticks[i] = chart.Tick{Value: float64(i), Label: p.Label}
		}
		xRange := &chart.ContinuousRange{Min: 0, Max: float64(len(points) - 1)}
		if len(points) == 1 {
			// 单点时居中画一条短线，go-chart 至少需要两个X值
			xs = []float64{-0.5, 0.5}
			ys = []float64{points[0].Value, points[0].Value}
			xRange = &chart.ContinuousRange{Min: -1, Max: 1}
		}
		style := chart.Style{
			StrokeColor: parseColor(DefaultColor, DefaultColor),
			StrokeWidth: 3,
		}
		if kind == KindArea {
			style.FillColor = parseColor(DefaultColor, DefaultColor).WithAlpha(51)
		}
		graph := chart.Chart{
			Title:  opts.Title,
			Width:  width,
			Height: height,
			XAxis: chart.XAxis{
				Range: xRange,
				Ticks: ticks,
			},
			YAxis: chart.YAxis{
				Range:          yRange,
				ValueFormatter: valueFormatter,
			},
			Series: []chart.Series{
				chart.ContinuousSeries{Name: opts.Title, XValues: xs, YValues: ys, Style: style},
			},
		}
		return graph.Render(chart.PNG, w)

	case KindPie:
		values := make([]chart.Value, 0, len(points))
		for i, p := range points {
			if p.Value < 0 {
				return ErrInvalidPieData
			}
			fallback := hslToHex(float64(i)*360/float64(len(points)), 0.65, 0.55)
			color := parseColor(p.Color, fallback)
			values = append(values, chart.Value{
				Label: p.Label,
				Value: p.Value,
				Style: chart.Style{FillColor: color},
			})
		}
		if scale.Max <= 0 {
			return ErrInvalidPieData
		}
		graph := chart.PieChart{
			Title:  opts.Title,
			Width:  width,
			Height: height,
			Values: values,
		}
		return graph.Render(chart.PNG, w)
	}

	return fmt.Errorf("不支持的图表类型: %q", kind)
}

// parseColor 只接受 #rrggbb，其他写法回退到默认颜色
func parseColor(color, fallback string) drawing.Color {
	hex := strings.TrimPrefix(strings.TrimSpace(color), "#")
	if len(hex) != 6 {
		hex = strings.TrimPrefix(fallback, "#")
	}
	if _, err := strconv.ParseUint(hex, 16, 32); err != nil {
		hex = strings.TrimPrefix(DefaultColor, "#")
	}
	return drawing.ColorFromHex(hex)
}

// hslToHex h 为角度，s、l 取值 [0,1]
func hslToHex(h, s, l float64) string {
	c := (1 - math.Abs(2*l-1)) * s
	hp := math.Mod(h, 360) / 60
	x := c * (1 - math.Abs(math.Mod(hp, 2)-1))
	var r, g, b float64
	switch {
	case hp < 1:
		r, g, b = c, x, 0
	case hp < 2:
		r, g, b = x, c, 0
	case hp < 3:
		r, g, b = 0, c, x
	case hp < 4:
		r, g, b = 0, x, c
	case hp < 5:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	m := l - c/2
	to := func(v float64) int { return int(math.Round((v + m) * 255)) }
	return fmt.Sprintf("#%02x%02x%02x", to(r), to(g), to(b))
}
