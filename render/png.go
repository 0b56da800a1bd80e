package render

import (
	"fmt"
	"io"

	"github.com/aouyang1/go-forecastview/panel"
	"github.com/aouyang1/go-forecastview/timeseries"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var (
	colorText   = drawing.Color{R: 52, G: 58, B: 64, A: 255}
	colorMarker = drawing.Color{R: 187, G: 187, B: 187, A: 255}
)

// PNG rasterizes one panel with go-chart. Series are split at gaps into separate runs so a
// missing day is never bridged. Band edges are stroked in the band color.
func PNG(w io.Writer, rows []timeseries.AlignedRow, b panel.Bundle) error {
	if b.Domain == nil || len(rows) == 0 {
		return fmt.Errorf("panel %s, %w", b.Name, ErrNothingToDraw)
	}

	n := len(rows)
	series := make([]chart.Series, 0, len(b.Paths)+2*len(b.Bands)+len(b.Markers))

	lo, hi := b.Domain.Min, b.Domain.Max
	if lo == hi {
		lo, hi = lo-1, hi+1
	}
	for _, m := range b.Markers {
		series = append(series, chart.ContinuousSeries{
			Name:    m.Name,
			XValues: []float64{float64(m.Index), float64(m.Index)},
			YValues: []float64{lo, hi},
			Style: chart.Style{
				StrokeColor:     colorMarker,
				StrokeWidth:     1,
				StrokeDashArray: []float64{2, 3},
			},
		})
	}

	for _, band := range b.Bands {
		color := parseColor(band.Color)
		series = append(series, runs(band.Key+"_low", rows, band.Low, nil, chart.Style{StrokeColor: color, StrokeWidth: 1})...)
		series = append(series, runs(band.Key+"_high", rows, band.High, nil, chart.Style{StrokeColor: color, StrokeWidth: 1})...)
	}

	for _, s := range b.Paths {
		style := chart.Style{
			StrokeColor: parseColor(s.Color),
			StrokeWidth: 2,
		}
		if s.Dashed {
			style.StrokeDashArray = []float64{5, 3}
		}
		drawn := make([]bool, len(s.Path))
		for i, pt := range s.Path {
			drawn[i] = pt.Y != nil
		}
		series = append(series, runs(s.Key, rows, s.Field, drawn, style)...)
	}

	if len(series) == 0 {
		return fmt.Errorf("panel %s, %w", b.Name, ErrNothingToDraw)
	}

	xMax := float64(n - 1)
	if n == 1 {
		xMax = 1
	}
	pad := b.Viewport.Padding
	graph := chart.Chart{
		Title:  b.Title,
		Width:  int(b.Viewport.Width),
		Height: int(b.Viewport.Height),
		TitleStyle: chart.Style{
			FontSize:  11,
			FontColor: colorText,
		},
		Background: chart.Style{
			Padding: chart.Box{
				Top:    int(pad.Top) + 16,
				Left:   int(pad.Left),
				Right:  int(pad.Right),
				Bottom: int(pad.Bottom),
			},
			FillColor: drawing.ColorWhite,
		},
		XAxis: chart.XAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: xMax},
			ValueFormatter: func(v interface{}) string {
				f, ok := v.(float64)
				if !ok {
					return ""
				}
				i := int(f)
				if i < 0 || i >= len(b.AxisLabels) {
					return ""
				}
				return shortLabel(string(b.AxisLabels[i]))
			},
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: lo, Max: hi},
		},
		Series: series,
	}
	return graph.Render(chart.PNG, w)
}

// runs splits field into contiguous go-chart series. When drawn is set only its true indices
// are eligible.
func runs(name string, rows []timeseries.AlignedRow, field timeseries.Field, drawn []bool, style chart.Style) []chart.Series {
	var out []chart.Series
	var xs, ys []float64
	flush := func() {
		if len(xs) > 0 {
			out = append(out, chart.ContinuousSeries{
				Name:    fmt.Sprintf("%s_%d", name, len(out)),
				XValues: xs,
				YValues: ys,
				Style:   style,
			})
		}
		xs, ys = nil, nil
	}
	for i, r := range rows {
		v, ok := r.Get(field)
		if ok && drawn != nil && (i >= len(drawn) || !drawn[i]) {
			ok = false
		}
		if !ok {
			flush()
			continue
		}
		xs = append(xs, float64(i))
		ys = append(ys, v)
	}
	flush()
	return out
}
