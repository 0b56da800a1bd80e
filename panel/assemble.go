package panel

import (
	"github.com/aouyang1/go-forecastview/dateaxis"
	"github.com/aouyang1/go-forecastview/event"
	"github.com/aouyang1/go-forecastview/geometry"
	"github.com/aouyang1/go-forecastview/scale"
	"github.com/aouyang1/go-forecastview/timeseries"
)

// Series is a drawable stroke.
type Series struct {
	Key    string           `json:"key"`
	Label  string           `json:"label"`
	Field  timeseries.Field `json:"field"`
	Color  string           `json:"color"`
	Dashed bool             `json:"dashed"`
	Bound  bool             `json:"bound"`
	Path   geometry.Path    `json:"path"`
}

// Band is a drawable filled region.
type Band struct {
	Key     string           `json:"key"`
	Label   string           `json:"label"`
	Low     timeseries.Field `json:"low"`
	High    timeseries.Field `json:"high"`
	Color   string           `json:"color"`
	Opacity float64          `json:"opacity"`
	Polygon geometry.Polygon `json:"polygon"`
}

// MarkerLine is an axis marker placed at its pixel column.
type MarkerLine struct {
	event.Marker
	X float64 `json:"x"`
}

// Bundle is everything needed to draw one panel.
type Bundle struct {
	Name       string             `json:"name"`
	Title      string             `json:"title"`
	Paths      []Series           `json:"paths"`
	Bands      []Band             `json:"bands"`
	Domain     *scale.Domain      `json:"domain"`
	AxisLabels []dateaxis.DateKey `json:"axis_labels"`
	Markers    []MarkerLine       `json:"markers"`
	Viewport   geometry.Viewport  `json:"viewport"`
}

// Input is the aligned data and surface a group is drawn against.
type Input struct {
	Axis     dateaxis.Axis
	Rows     []timeseries.AlignedRow
	Viewport geometry.Viewport
	Markers  []event.Marker

	// Domain overrides the group's own domain when set, letting several panels share a scale.
	Domain *scale.Domain
}

// Assemble maps every series and band of the group into pixel space. When no domain can be
// derived and none is supplied the bundle carries axis labels only.
func Assemble(g Group, in Input) Bundle {
	b := Bundle{
		Name:       g.Name,
		Title:      g.Title,
		Paths:      []Series{},
		Bands:      []Band{},
		AxisLabels: append([]dateaxis.DateKey{}, in.Axis.Keys...),
		Markers:    []MarkerLine{},
		Viewport:   in.Viewport,
	}

	n := len(in.Rows)
	for _, m := range in.Markers {
		if m.Index < 0 || m.Index >= n {
			continue
		}
		b.Markers = append(b.Markers, MarkerLine{Marker: m, X: geometry.XAt(m.Index, n, in.Viewport)})
	}

	if in.Domain != nil {
		d := *in.Domain
		b.Domain = &d
	} else {
		b.Domain = scale.Compute([][]timeseries.AlignedRow{in.Rows}, g.Fields())
	}
	if b.Domain == nil {
		return b
	}

	boundary := in.Axis.SpanStartIndex()
	for _, spec := range g.Series {
		path := geometry.MapToPixels(in.Rows, spec.Field, *b.Domain, in.Viewport)
		mask(path, spec.Segment, boundary)
		b.Paths = append(b.Paths, Series{
			Key:    spec.Key,
			Label:  spec.Label,
			Field:  spec.Field,
			Color:  spec.Color,
			Dashed: spec.Dashed,
			Bound:  spec.Bound,
			Path:   path,
		})
	}

	for _, spec := range g.Bands {
		b.Bands = append(b.Bands, Band{
			Key:     spec.Key,
			Label:   spec.Label,
			Low:     spec.Low,
			High:    spec.High,
			Color:   spec.Color,
			Opacity: spec.Opacity,
			Polygon: geometry.MapBand(in.Rows, in.Rows, spec.Low, spec.High, *b.Domain, in.Viewport),
		})
	}
	return b
}

// mask clears points outside the segment. History and future share the boundary index so
// the two strokes meet.
func mask(path geometry.Path, seg Segment, boundary int) {
	for i := range path {
		switch {
		case seg == SegmentHistory && i > boundary:
			path[i].Y = nil
		case seg == SegmentFuture && i < boundary:
			path[i].Y = nil
		}
	}
}

// LegendItem is one visible legend entry.
type LegendItem struct {
	Label      string `json:"label"`
	ColorToken string `json:"color"`
}

// Legend lists the series and bands of the groups in order, skipping bound traces and entries
// already listed by an earlier group.
func Legend(groups ...Group) []LegendItem {
	seen := make(map[LegendItem]bool)
	items := []LegendItem{}
	add := func(item LegendItem) {
		if seen[item] {
			return
		}
		seen[item] = true
		items = append(items, item)
	}
	for _, g := range groups {
		for _, s := range g.Series {
			if s.Bound {
				continue
			}
			add(LegendItem{Label: s.Label, ColorToken: s.Color})
		}
		for _, b := range g.Bands {
			add(LegendItem{Label: b.Label, ColorToken: b.Color})
		}
	}
	return items
}
