package forecastview

import (
	"github.com/aouyang1/go-forecastview/event"
	"github.com/aouyang1/go-forecastview/geometry"
	"github.com/aouyang1/go-forecastview/panel"
	"github.com/aouyang1/go-forecastview/scale"
)

const DefaultWidth = 960.0

// Options configures how query rows are turned into panels.
type Options struct {
	// Width is the measured width of the drawing surface in pixels. Height is derived from it.
	Width   float64
	Padding geometry.Padding

	// Groups are the panels drawn top to bottom.
	Groups []panel.Group

	// SharedDomain scales every panel with one domain computed over all of their fields.
	SharedDomain bool

	// Domain is an explicit scale applied to every panel. It takes precedence over SharedDomain.
	Domain *scale.Domain

	// Holidays are holiday keys marked on the axis, see event.Holidays.
	Holidays []string
}

// NewDefaultOptions draws the classical and targeted panels on a shared scale with the default
// holiday markers.
func NewDefaultOptions() *Options {
	return &Options{
		Width:        DefaultWidth,
		Padding:      geometry.DefaultPadding,
		Groups:       panel.DefaultGroups(),
		SharedDomain: true,
		Holidays:     append([]string{}, event.DefaultHolidays...),
	}
}
