package charts

import (
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/BerniceZTT/salesiq/models"
)

const (
	tooltipOffset = 10
	// 光标超过该横坐标时提示框翻转到左侧，避免被裁剪
	tooltipFlipThreshold = 300
)

// Position 相对于图表包围盒的坐标
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Relative 把视口坐标换算为相对包围盒左上角的坐标
func Relative(client, origin Position) Position {
	return Position{X: client.X - origin.X, Y: client.Y - origin.Y}
}

// TooltipPlacement 提示框位置
type TooltipPlacement struct {
	Left  float64 `json:"left"`
	Top   float64 `json:"top"`
	FlipX bool    `json:"flipX"`
}

// PlaceTooltip 提示框放在光标右上方，越过阈值后水平翻转
func PlaceTooltip(cursor Position) TooltipPlacement {
	return TooltipPlacement{
		Left:  cursor.X + tooltipOffset,
		Top:   cursor.Y - tooltipOffset,
		FlipX: cursor.X > tooltipFlipThreshold,
	}
}

// HitTest 返回光标所在图形对应的数据点下标
func (s *Scene) HitTest(cursor Position) (int, bool) {
	switch s.Kind {
	case KindBar:
		if cursor.Y < s.Padding || cursor.Y > s.baseline() {
			return 0, false
		}
		for _, b := range s.Bars {
			if cursor.X >= b.X && cursor.X <= b.X+b.Width {
				return b.Index, true
			}
		}
	case KindLine, KindArea:
		if len(s.Markers) == 0 {
			return 0, false
		}
		reach := s.PlotWidth / 2
		if len(s.Markers) > 1 {
			reach = s.PlotWidth / float64(len(s.Markers)-1) / 2
		}
		best, bestDist := -1, math.Inf(1)
		for _, m := range s.Markers {
			if d := math.Abs(cursor.X - m.X); d < bestDist {
				best, bestDist = m.Index, d
			}
		}
		if bestDist <= reach {
			return best, true
		}
	case KindPie:
		dx, dy := cursor.X-s.CenterX, cursor.Y-s.CenterY
		if math.Hypot(dx, dy) > s.Radius {
			return 0, false
		}
		// 以12点方向为0度顺时针计算
		angle := math.Atan2(dy, dx)*180/math.Pi + 90
		if angle < 0 {
			angle += 360
		}
		for _, slice := range s.Slices {
			if angle >= slice.StartAngle+90 && angle < slice.EndAngle+90 {
				return slice.Index, true
			}
		}
	}
	return 0, false
}

// HoverResult 悬停命中的数据点及提示框
type HoverResult struct {
	Index          int                   `json:"index"`
	Point          models.ChartDataPoint `json:"point"`
	FormattedValue string                `json:"formattedValue"`
	Tooltip        TooltipPlacement      `json:"tooltip"`
}

// Hover 计算光标悬停状态，未命中任何图形时返回 nil
func (s *Scene) Hover(cursor Position) *HoverResult {
	index, ok := s.HitTest(cursor)
	if !ok {
		return nil
	}

	point := s.Data[index]
	if s.Kind == KindPie {
		// 饼图悬停时附带占比
		meta := models.ChartMetadata{}
		if point.Metadata != nil {
			meta = *point.Metadata
		}
		percentage := s.Slices[index].Percentage
		meta.Percentage = &percentage
		point.Metadata = &meta
	}
	if point.Color == "" {
		point.Color = DefaultColor
	}

	return &HoverResult{
		Index:          index,
		Point:          point,
		FormattedValue: FormatValue(point.Value, s.Currency),
		Tooltip:        PlaceTooltip(cursor),
	}
}

var swedish = message.NewPrinter(language.Swedish)

// FormatValue 按 sv-SE 习惯格式化数值，货币为瑞典克朗且不保留小数
func FormatValue(value float64, currency bool) string {
	if currency {
		return swedish.Sprintf("%d kr", int64(math.Round(value)))
	}
	if value == math.Trunc(value) {
		return swedish.Sprintf("%d", int64(value))
	}
	// 与 toLocaleString 一致，最多两位小数且去掉末尾的0
	formatted := swedish.Sprintf("%.2f", value)
	formatted = strings.TrimRight(formatted, "0")
	return strings.TrimRight(formatted, ",.")
}
