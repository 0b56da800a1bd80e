package panel

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/aouyang1/go-forecastview/util"
)

func (b Bundle) TablePrint(w io.Writer, prefix, indent string, indentGrowth int) error {
	if _, err := fmt.Fprintf(w, "%s%sPanel: %s\n", prefix, util.IndentExpand(indent, indentGrowth), b.Title); err != nil {
		return err
	}

	if b.Domain == nil {
		if _, err := fmt.Fprintf(w, "%s%sDomain: None\n", prefix, util.IndentExpand(indent, indentGrowth+1)); err != nil {
			return err
		}
	} else {
		if _, err := fmt.Fprintf(w, "%s%sDomain: %s\n", prefix, util.IndentExpand(indent, indentGrowth+1), b.Domain); err != nil {
			return err
		}
	}

	if len(b.Markers) > 0 {
		if _, err := fmt.Fprintf(w, "%s%sMarkers:\n", prefix, util.IndentExpand(indent, indentGrowth+1)); err != nil {
			return err
		}
		for _, m := range b.Markers {
			if _, err := fmt.Fprintf(w, "%s%s%s: %s\n", prefix, util.IndentExpand(indent, indentGrowth+2), m.Date, m.Name); err != nil {
				return err
			}
		}
	}

	tbl := tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.AlignRight)
	if _, err := fmt.Fprintf(tbl, "%s%sSeries\tField\tPoints\tSegments\tLegend\t\n", prefix, util.IndentExpand(indent, indentGrowth+1)); err != nil {
		return err
	}
	for _, s := range b.Paths {
		var drawn int
		for _, pt := range s.Path {
			if pt.Y != nil {
				drawn++
			}
		}
		legend := "yes"
		if s.Bound {
			legend = "no"
		}
		if _, err := fmt.Fprintf(tbl, "%s%s%s\t%s\t%d\t%d\t%s\t\n",
			prefix, util.IndentExpand(indent, indentGrowth+1),
			s.Label, s.Field, drawn, len(s.Path.Segments()), legend); err != nil {
			return err
		}
	}
	for _, band := range b.Bands {
		if _, err := fmt.Fprintf(tbl, "%s%s%s\t%s\t%d\t%d\t%s\t\n",
			prefix, util.IndentExpand(indent, indentGrowth+1),
			band.Label, "band", len(band.Polygon), 1, "yes"); err != nil {
			return err
		}
	}
	return tbl.Flush()
}
