package render

import (
	"errors"
	"fmt"
	"html"
	"io"
	"strings"

	forecastview "github.com/aouyang1/go-forecastview"
	"github.com/aouyang1/go-forecastview/geometry"
	"github.com/aouyang1/go-forecastview/panel"
)

var (
	ErrNoResults     = errors.New("no results to render")
	ErrNothingToDraw = errors.New("panel has nothing to draw")
)

const (
	panelGap     = 24.0
	legendHeight = 28.0
	labelEvery   = 7
	fontFamily   = "sans-serif"
)

// SVG writes every panel stacked vertically followed by the legend as a single svg document.
func SVG(w io.Writer, res *forecastview.Results) error {
	if res == nil {
		return ErrNoResults
	}

	width := res.Viewport.Width
	height := legendHeight
	for _, b := range res.Panels {
		height += b.Viewport.Height + panelGap
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">`,
		width, height, width, height))
	sb.WriteString(fmt.Sprintf(`<rect x="0" y="0" width="%.0f" height="%.0f" fill="#ffffff"/>`, width, height))

	offset := 0.0
	for _, b := range res.Panels {
		sb.WriteString(fmt.Sprintf(`<g class="panel" id="%s" transform="translate(0,%.2f)">`, html.EscapeString(b.Name), offset))
		writePanel(&sb, b)
		sb.WriteString(`</g>`)
		offset += b.Viewport.Height + panelGap
	}

	writeLegend(&sb, res.Legend, offset)
	sb.WriteString(`</svg>`)

	_, err := io.WriteString(w, sb.String())
	return err
}

// PanelSVG writes a single panel as an svg document.
func PanelSVG(w io.Writer, b panel.Bundle) error {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f">`,
		b.Viewport.Width, b.Viewport.Height))
	writePanel(&sb, b)
	sb.WriteString(`</svg>`)
	_, err := io.WriteString(w, sb.String())
	return err
}

func writePanel(sb *strings.Builder, b panel.Bundle) {
	vp := b.Viewport
	sb.WriteString(fmt.Sprintf(`<text x="%.2f" y="%.2f" font-family="%s" font-size="12" font-weight="bold">%s</text>`,
		vp.Padding.Left, vp.Padding.Top-4, fontFamily, html.EscapeString(b.Title)))
	sb.WriteString(fmt.Sprintf(`<rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="none" stroke="#dddddd"/>`,
		vp.Padding.Left, vp.Padding.Top, vp.InnerWidth(), vp.InnerHeight()))

	writeAxisLabels(sb, b)

	if b.Domain == nil {
		sb.WriteString(fmt.Sprintf(`<text x="%.2f" y="%.2f" font-family="%s" font-size="12" fill="#999999" text-anchor="middle">No data</text>`,
			vp.Padding.Left+vp.InnerWidth()/2, vp.Padding.Top+vp.InnerHeight()/2, fontFamily))
		return
	}

	sb.WriteString(fmt.Sprintf(`<text x="%.2f" y="%.2f" font-family="%s" font-size="10" text-anchor="end">%.1f</text>`,
		vp.Padding.Left-4, vp.Padding.Top+4, fontFamily, b.Domain.Max))
	sb.WriteString(fmt.Sprintf(`<text x="%.2f" y="%.2f" font-family="%s" font-size="10" text-anchor="end">%.1f</text>`,
		vp.Padding.Left-4, vp.Bottom(), fontFamily, b.Domain.Min))

	for _, band := range b.Bands {
		if len(band.Polygon) < 3 {
			continue
		}
		sb.WriteString(fmt.Sprintf(`<polygon class="band" data-key="%s" points="%s" fill="%s" fill-opacity="%.2f" stroke="none"/>`,
			html.EscapeString(band.Key), band.Polygon.Points(), band.Color, band.Opacity))
	}

	for _, m := range b.Markers {
		sb.WriteString(fmt.Sprintf(`<line class="marker" x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="#bbbbbb" stroke-dasharray="2,3"><title>%s</title></line>`,
			m.X, vp.Padding.Top, m.X, vp.Bottom(), html.EscapeString(m.Name)))
	}

	for _, s := range b.Paths {
		if !s.Path.Drawable() {
			continue
		}
		dash := ""
		if s.Dashed {
			dash = ` stroke-dasharray="5,3"`
		}
		sb.WriteString(fmt.Sprintf(`<path class="series" data-key="%s" d="%s" fill="none" stroke="%s" stroke-width="1.5"%s/>`,
			html.EscapeString(s.Key), s.Path.D(), s.Color, dash))
	}
}

func writeAxisLabels(sb *strings.Builder, b panel.Bundle) {
	vp := b.Viewport
	xs := geometry.XPositions(len(b.AxisLabels), vp)
	for i, k := range b.AxisLabels {
		if i%labelEvery != 0 && i != len(b.AxisLabels)-1 {
			continue
		}
		sb.WriteString(fmt.Sprintf(`<text x="%.2f" y="%.2f" font-family="%s" font-size="10" text-anchor="middle">%s</text>`,
			xs[i], vp.Bottom()+14, fontFamily, html.EscapeString(shortLabel(string(k)))))
	}
}

// shortLabel drops the year from a date key.
func shortLabel(k string) string {
	if len(k) != len("2006-01-02") {
		return k
	}
	return k[5:]
}

func writeLegend(sb *strings.Builder, items []panel.LegendItem, offset float64) {
	x := 8.0
	y := offset + legendHeight/2
	for _, item := range items {
		sb.WriteString(fmt.Sprintf(`<rect x="%.2f" y="%.2f" width="12" height="12" fill="%s"/>`, x, y-9, item.ColorToken))
		sb.WriteString(fmt.Sprintf(`<text x="%.2f" y="%.2f" font-family="%s" font-size="11">%s</text>`,
			x+16, y+1, fontFamily, html.EscapeString(item.Label)))
		x += 24 + 7*float64(len(item.Label))
	}
}
