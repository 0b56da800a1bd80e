package forecastview

import (
	"fmt"
	"io"
	"strings"

	"github.com/aouyang1/go-forecastview/dateaxis"
	"github.com/aouyang1/go-forecastview/event"
	"github.com/aouyang1/go-forecastview/geometry"
	"github.com/aouyang1/go-forecastview/panel"
	"github.com/aouyang1/go-forecastview/scale"
	"github.com/aouyang1/go-forecastview/timeseries"
	"github.com/aouyang1/go-forecastview/util"
)

// Results is one render cycle: the aligned rows and every panel drawn from them.
type Results struct {
	StartMonth string                  `json:"start_month"`
	Span       int                     `json:"span"`
	Axis       dateaxis.Axis           `json:"axis"`
	Rows       []timeseries.AlignedRow `json:"rows"`
	Viewport   geometry.Viewport       `json:"viewport"`
	Domain     *scale.Domain           `json:"domain"`
	Panels     []panel.Bundle          `json:"panels"`
	Legend     []panel.LegendItem      `json:"legend"`
	Markers    []event.Marker          `json:"markers"`
}

// Panel returns the bundle with the given group name.
func (r *Results) Panel(name string) (panel.Bundle, bool) {
	for _, b := range r.Panels {
		if b.Name == name {
			return b, true
		}
	}
	return panel.Bundle{}, false
}

func (r *Results) TablePrint(w io.Writer, prefix, indent string) error {
	if _, err := fmt.Fprintf(w, "%s%sView:\n", prefix, util.IndentExpand(indent, 0)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%s%sStart Month: %s    Span: %d\n",
		prefix, util.IndentExpand(indent, 1), r.StartMonth, r.Span); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%s%sAxis: %s to %s (%d days)\n",
		prefix, util.IndentExpand(indent, 1), r.Axis.StartKey(), r.Axis.EndKey(), r.Axis.Len()); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%s%sViewport: %.0fx%.0f\n",
		prefix, util.IndentExpand(indent, 1), r.Viewport.Width, r.Viewport.Height); err != nil {
		return err
	}
	observed := make([]string, 0, len(timeseries.AllFields))
	for _, f := range timeseries.AllFields {
		if n := timeseries.Present(r.Rows, f); n > 0 {
			observed = append(observed, fmt.Sprintf("%s=%d", f, n))
		}
	}
	if len(observed) == 0 {
		observed = append(observed, "none")
	}
	if _, err := fmt.Fprintf(w, "%s%sObserved: %s\n",
		prefix, util.IndentExpand(indent, 1), strings.Join(observed, " ")); err != nil {
		return err
	}
	if r.Domain != nil {
		if _, err := fmt.Fprintf(w, "%s%sShared Domain: %s\n", prefix, util.IndentExpand(indent, 1), r.Domain); err != nil {
			return err
		}
	}

	for _, b := range r.Panels {
		if err := b.TablePrint(w, prefix, indent, 0); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(w, "%s%sLegend:\n", prefix, util.IndentExpand(indent, 0)); err != nil {
		return err
	}
	for _, item := range r.Legend {
		if _, err := fmt.Fprintf(w, "%s%s%s %s\n", prefix, util.IndentExpand(indent, 1), item.ColorToken, item.Label); err != nil {
			return err
		}
	}
	return nil
}
