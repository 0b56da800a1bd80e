package forecastview

import (
	"errors"
	"fmt"

	"github.com/aouyang1/go-forecastview/dateaxis"
	"github.com/aouyang1/go-forecastview/event"
	"github.com/aouyang1/go-forecastview/geometry"
	"github.com/aouyang1/go-forecastview/panel"
	"github.com/aouyang1/go-forecastview/scale"
	"github.com/aouyang1/go-forecastview/timeseries"
	"github.com/rickar/cal/v2"
)

var (
	ErrNotRendered   = errors.New("nothing rendered yet")
	ErrInvalidWidth  = errors.New("width must exceed the horizontal padding")
	ErrNoGroups      = errors.New("no panel groups configured")
	ErrInvalidDomain = errors.New("invalid domain")
)

// View turns query rows into drawable panels and keeps the last render so it can be redrawn at
// a new width. A View is not safe for concurrent use.
type View struct {
	opt      *Options
	holidays []*cal.Holiday
	width    float64

	axis    dateaxis.Axis
	rows    []timeseries.AlignedRow
	results *Results
}

// New creates a View using the provided options. If no options are provided a default is used.
func New(opt *Options) (*View, error) {
	if opt == nil {
		opt = NewDefaultOptions()
	}
	if len(opt.Groups) == 0 {
		return nil, ErrNoGroups
	}
	if err := checkWidth(opt.Width, opt.Padding); err != nil {
		return nil, err
	}
	if opt.Domain != nil && !opt.Domain.Valid() {
		return nil, fmt.Errorf("domain override %s is not usable, %w", opt.Domain, ErrInvalidDomain)
	}

	hols, err := event.Holidays(opt.Holidays)
	if err != nil {
		return nil, fmt.Errorf("unable to resolve holidays, %w", err)
	}

	return &View{
		opt:      opt,
		holidays: hols,
		width:    opt.Width,
	}, nil
}

// Render builds the axis for startMonth and span, aligns rows onto it and assembles every panel.
// A malformed start month fails with dateaxis.ErrInvalidDate and leaves the previous render in
// place.
func (v *View) Render(rows []timeseries.QueryRow, startMonth string, span int) (*Results, error) {
	axis, err := dateaxis.BuildFromString(startMonth, span)
	if err != nil {
		return nil, fmt.Errorf("unable to build date axis, %w", err)
	}

	v.axis = axis
	v.rows = timeseries.Align(axis, rows)
	v.results = v.assemble()
	return v.results, nil
}

// Resize recomputes the geometry of the last render at a new width.
func (v *View) Resize(width float64) (*Results, error) {
	if err := checkWidth(width, v.opt.Padding); err != nil {
		return nil, err
	}
	v.width = width
	if v.results == nil {
		return nil, ErrNotRendered
	}
	v.results = v.assemble()
	return v.results, nil
}

// checkWidth rejects widths that leave no room between the left and right insets.
func checkWidth(width float64, padding geometry.Padding) error {
	if width <= 0 || width <= padding.Horizontal() {
		return fmt.Errorf("received width of %.2f with %.2f horizontal padding, %w", width, padding.Horizontal(), ErrInvalidWidth)
	}
	return nil
}

// Results returns the last render or nil.
func (v *View) Results() *Results {
	return v.results
}

// Width is the width the next render is drawn at.
func (v *View) Width() float64 {
	return v.width
}

func (v *View) domain() *scale.Domain {
	if v.opt.Domain != nil {
		d := *v.opt.Domain
		return &d
	}
	if !v.opt.SharedDomain {
		return nil
	}

	fields := make([]timeseries.Field, 0, len(timeseries.AllFields))
	seen := make(map[timeseries.Field]bool)
	for _, g := range v.opt.Groups {
		for _, f := range g.Fields() {
			if seen[f] {
				continue
			}
			seen[f] = true
			fields = append(fields, f)
		}
	}
	return scale.Compute([][]timeseries.AlignedRow{v.rows}, fields)
}

func (v *View) assemble() *Results {
	vp := geometry.NewViewport(v.width, v.opt.Padding)
	domain := v.domain()
	markers := event.Markers(v.axis, v.holidays)

	panels := make([]panel.Bundle, 0, len(v.opt.Groups))
	for _, g := range v.opt.Groups {
		panels = append(panels, panel.Assemble(g, panel.Input{
			Axis:     v.axis,
			Rows:     v.rows,
			Viewport: vp,
			Markers:  markers,
			Domain:   domain,
		}))
	}

	return &Results{
		StartMonth: v.axis.Start.String(),
		Span:       v.axis.Span,
		Axis:       v.axis,
		Rows:       v.rows,
		Viewport:   vp,
		Domain:     domain,
		Panels:     panels,
		Legend:     panel.Legend(v.opt.Groups...),
		Markers:    markers,
	}
}
