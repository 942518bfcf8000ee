// Package charts 把图表数据点映射为 SVG 场景（柱状图、折线图、面积图、饼图）并处理悬停交互
package charts

import (
	"math"

	"github.com/BerniceZTT/salesiq/models"
)

// Scale 线性值域
type Scale struct {
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Range float64 `json:"range"`
	// Degenerate 所有值相等，值域宽度为0
	Degenerate bool `json:"degenerate"`
}

// NewScale 根据数据点计算值域，空数据返回零值
func NewScale(points []models.ChartDataPoint) Scale {
	if len(points) == 0 {
		return Scale{Degenerate: true}
	}

	min, max := math.Inf(1), math.Inf(-1)
	for _, p := range points {
		min = math.Min(min, p.Value)
		max = math.Max(max, p.Value)
	}

	return Scale{
		Min:        min,
		Max:        max,
		Range:      max - min,
		Degenerate: max == min,
	}
}

// divisor 零宽值域时退化为1，所有点归一化为0
func (s Scale) divisor() float64 {
	if s.Range == 0 {
		return 1
	}
	return s.Range
}

// Normalize 把值映射到 [0,1]
func (s Scale) Normalize(value float64) float64 {
	return (value - s.Min) / s.divisor()
}

// PixelHeight 把值映射为绘图区内的像素高度
func (s Scale) PixelHeight(value, plotHeight float64) float64 {
	return s.Normalize(value) * plotHeight
}

// GridValue 第 i 条网格线对应的值（从上往下）
func (s Scale) GridValue(i, steps int) float64 {
	return s.Max - (s.divisor()/float64(steps))*float64(i)
}
