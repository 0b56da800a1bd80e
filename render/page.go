package render

import (
	"fmt"
	"io"

	forecastview "github.com/aouyang1/go-forecastview"
	"github.com/aouyang1/go-forecastview/panel"
	"github.com/aouyang1/go-forecastview/timeseries"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// missing is the echarts placeholder for a point that must not be connected.
const missing = "-"

// Page writes an interactive html page with one echarts line chart per panel.
func Page(w io.Writer, res *forecastview.Results) error {
	if res == nil {
		return ErrNoResults
	}
	page := components.NewPage()
	for _, b := range res.Panels {
		page.AddCharts(LinePanel(res, b))
	}
	return page.Render(w)
}

// LinePanel generates an echart line chart for a panel bundle. Bands are drawn as a
// transparent lower series stacked under the band width, bound traces are kept out of the
// legend.
func LinePanel(res *forecastview.Results, b panel.Bundle) *charts.Line {
	line := charts.NewLine()

	globals := []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "forecastview",
			Width:     fmt.Sprintf("%.0fpx", b.Viewport.Width),
			Height:    fmt.Sprintf("%.0fpx", b.Viewport.Height+80),
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    b.Title,
			Subtitle: fmt.Sprintf("%s, %d month(s)", res.StartMonth, res.Span),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Data: legendLabels(b)}),
	}
	if b.Domain != nil {
		globals = append(globals, charts.WithYAxisOpts(opts.YAxis{
			Min: b.Domain.Min,
			Max: b.Domain.Max,
		}))
	}
	line.SetGlobalOptions(globals...)

	labels := make([]string, len(b.AxisLabels))
	for i, k := range b.AxisLabels {
		labels[i] = string(k)
	}
	line.SetXAxis(labels)

	for _, band := range b.Bands {
		base, width := bandData(res.Rows, band)
		line.AddSeries(band.Label+" base", base,
			charts.WithLineChartOpts(opts.LineChart{Stack: band.Key, Symbol: "none"}),
			charts.WithLineStyleOpts(opts.LineStyle{Color: rgba(band.Color, 0)}),
		)
		line.AddSeries(band.Label, width,
			charts.WithLineChartOpts(opts.LineChart{Stack: band.Key, Symbol: "none"}),
			charts.WithLineStyleOpts(opts.LineStyle{Color: rgba(band.Color, 0)}),
			charts.WithAreaStyleOpts(opts.AreaStyle{Color: rgba(band.Color, band.Opacity)}),
		)
	}

	for i, s := range b.Paths {
		style := opts.LineStyle{Color: s.Color}
		if s.Dashed {
			style.Type = "dashed"
		}
		seriesOpts := []charts.SeriesOpts{
			charts.WithLineChartOpts(opts.LineChart{Symbol: "none"}),
			charts.WithLineStyleOpts(style),
		}
		if i == 0 {
			for _, m := range b.Markers {
				seriesOpts = append(seriesOpts, charts.WithMarkLineNameXAxisItemOpts(opts.MarkLineNameXAxisItem{
					Name:  m.Name,
					XAxis: string(m.Date),
				}))
			}
		}
		line.AddSeries(s.Label, seriesData(res.Rows, s), seriesOpts...)
	}
	return line
}

func legendLabels(b panel.Bundle) []string {
	labels := make([]string, 0, len(b.Paths)+len(b.Bands))
	for _, s := range b.Paths {
		if s.Bound {
			continue
		}
		labels = append(labels, s.Label)
	}
	for _, band := range b.Bands {
		labels = append(labels, band.Label)
	}
	return labels
}

// seriesData reads values from the aligned rows wherever the mapped path is drawable so segment
// masks carry over to the chart.
func seriesData(rows []timeseries.AlignedRow, s panel.Series) []opts.LineData {
	data := make([]opts.LineData, len(s.Path))
	for i, pt := range s.Path {
		data[i] = opts.LineData{Value: missing}
		if pt.Y == nil || i >= len(rows) {
			continue
		}
		if v, ok := rows[i].Get(s.Field); ok {
			data[i] = opts.LineData{Value: v}
		}
	}
	return data
}

func bandData(rows []timeseries.AlignedRow, band panel.Band) ([]opts.LineData, []opts.LineData) {
	base := make([]opts.LineData, len(rows))
	width := make([]opts.LineData, len(rows))
	for i, r := range rows {
		lo, okLo := r.Get(band.Low)
		hi, okHi := r.Get(band.High)
		if !okLo || !okHi {
			base[i] = opts.LineData{Value: missing}
			width[i] = opts.LineData{Value: missing}
			continue
		}
		base[i] = opts.LineData{Value: lo}
		width[i] = opts.LineData{Value: hi - lo}
	}
	return base, width
}
