package charts

import (
	"bufio"
	"fmt"
	"html"
	"io"
)

// WriteSVG 把场景序列化为独立的 SVG 文档
func (s *Scene) WriteSVG(w io.Writer) error {
	bw := bufio.NewWriter(w)
	p := func(format string, args ...interface{}) {
		fmt.Fprintf(bw, format, args...)
	}

	p(`<svg xmlns="http://www.w3.org/2000/svg" width="100%%" height="%s" viewBox="0 0 %s %s" data-kind="%s" data-flat="%t">`,
		formatNumber(s.ViewHeight), formatNumber(s.ViewWidth), formatNumber(s.ViewHeight), s.Kind, s.Flat)
	if s.Title != "" {
		p(`<title>%s</title>`, html.EscapeString(s.Title))
	}

	for _, g := range s.Grid {
		p(`<g class="grid"><line x1="%s" y1="%s" x2="%s" y2="%s" stroke="#e5e7eb" stroke-width="1" stroke-dasharray="2,2"/>`,
			formatNumber(s.Padding), formatNumber(g.Y), formatNumber(s.Padding+s.PlotWidth), formatNumber(g.Y))
		p(`<text x="%s" y="%s" font-size="10" fill="#6b7280" text-anchor="end">%s</text></g>`,
			formatNumber(s.Padding-10), formatNumber(g.Y+4), html.EscapeString(g.Label))
	}

	switch s.Kind {
	case KindBar:
		for _, b := range s.Bars {
			p(`<rect data-index="%d" x="%s" y="%s" width="%s" height="%s" fill="%s" rx="4"/>`,
				b.Index, formatNumber(b.X), formatNumber(b.Y), formatNumber(b.Width), formatNumber(b.Height), html.EscapeString(b.Color))
		}
	case KindLine, KindArea:
		if s.Kind == KindArea {
			p(`<defs><linearGradient id="%s" x1="0%%" y1="0%%" x2="0%%" y2="100%%">`, s.GradientID)
			p(`<stop offset="0%%" stop-color="%s" stop-opacity="0.2"/><stop offset="100%%" stop-color="%s" stop-opacity="0"/>`, DefaultColor, DefaultColor)
			p(`</linearGradient></defs>`)
			p(`<polygon points="%s" fill="url(#%s)"/>`, s.Area, s.GradientID)
		}
		p(`<polyline points="%s" fill="none" stroke="%s" stroke-width="3"/>`, s.Polyline, DefaultColor)
		for _, m := range s.Markers {
			p(`<circle data-index="%d" cx="%s" cy="%s" r="6" fill="%s"/>`,
				m.Index, formatNumber(m.X), formatNumber(m.Y), html.EscapeString(m.Color))
		}
	case KindPie:
		for _, slice := range s.Slices {
			p(`<g><path data-index="%d" d="%s" fill="%s"/>`, slice.Index, slice.Path, html.EscapeString(slice.Color))
			p(`<text x="%s" y="%s" text-anchor="middle" font-size="10" fill="#ffffff">%s</text></g>`,
				formatNumber(slice.LabelX), formatNumber(slice.LabelY), slice.Label)
		}
	}

	for _, t := range s.Labels {
		p(`<text x="%s" y="%s" text-anchor="middle" font-size="10" fill="#4b5563">%s</text>`,
			formatNumber(t.X), formatNumber(t.Y), html.EscapeString(t.Value))
	}

	p(`</svg>`)
	return bw.Flush()
}
