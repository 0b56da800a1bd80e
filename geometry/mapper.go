package geometry

import (
	"fmt"
	"math"
	"strings"

	"github.com/aouyang1/go-forecastview/scale"
	"github.com/aouyang1/go-forecastview/timeseries"
	"gonum.org/v1/gonum/floats"
)

// Point is a pixel coordinate. A nil Y marks a gap that must not be drawn through.
type Point struct {
	X float64  `json:"x"`
	Y *float64 `json:"y"`
}

// Path is a stroke in index order. Gaps split it into disjoint segments.
type Path []Point

// Polygon is a closed ring; the last point implicitly joins the first.
type Polygon []Point

// XPositions spaces n points evenly across the inner width starting at the left inset. A single
// point sits on the left inset.
func XPositions(n int, vp Viewport) []float64 {
	switch {
	case n <= 0:
		return []float64{}
	case n == 1:
		return []float64{vp.Padding.Left}
	}
	xs := make([]float64, n)
	return floats.Span(xs, vp.Padding.Left, vp.Padding.Left+vp.InnerWidth())
}

// XAt returns the x position of index i out of n.
func XAt(i, n int, vp Viewport) float64 {
	if n <= 1 {
		return vp.Padding.Left
	}
	return vp.Padding.Left + float64(i)*(vp.InnerWidth()/float64(n-1))
}

// YFor maps v into the inner height with larger values closer to the top. A flat domain
// places every value on the vertical middle.
func YFor(v float64, domain scale.Domain, vp Viewport) float64 {
	rng := domain.Range()
	if rng == 0 {
		return vp.Padding.Top + vp.InnerHeight()/2
	}
	return vp.Padding.Top + (domain.Max-v)/rng*vp.InnerHeight()
}

func valueAt(r timeseries.AlignedRow, field timeseries.Field) (float64, bool) {
	v, ok := r.Get(field)
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// MapToPixels converts field of each row into a point. Rows without a value keep their x and
// get a nil y.
func MapToPixels(rows []timeseries.AlignedRow, field timeseries.Field, domain scale.Domain, vp Viewport) Path {
	xs := XPositions(len(rows), vp)
	path := make(Path, len(rows))
	for i, r := range rows {
		path[i] = Point{X: xs[i]}
		if v, ok := valueAt(r, field); ok {
			y := YFor(v, domain, vp)
			path[i].Y = &y
		}
	}
	return path
}

// MapBand builds the fill region between lowField of rowsLow and highField of rowsHigh. The
// low edge is walked left to right and the high edge right to left. An index missing either
// bound is dropped from both edges so the ring stays simple.
func MapBand(
	rowsLow, rowsHigh []timeseries.AlignedRow,
	lowField, highField timeseries.Field,
	domain scale.Domain, vp Viewport,
) Polygon {
	n := max(len(rowsLow), len(rowsHigh))
	m := min(len(rowsLow), len(rowsHigh))
	xs := XPositions(n, vp)

	lowEdge := make([]Point, 0, m)
	highEdge := make([]Point, 0, m)
	for i := 0; i < m; i++ {
		lo, okLo := valueAt(rowsLow[i], lowField)
		hi, okHi := valueAt(rowsHigh[i], highField)
		if !okLo || !okHi {
			continue
		}
		yLo := YFor(lo, domain, vp)
		yHi := YFor(hi, domain, vp)
		lowEdge = append(lowEdge, Point{X: xs[i], Y: &yLo})
		highEdge = append(highEdge, Point{X: xs[i], Y: &yHi})
	}

	ring := make(Polygon, 0, len(lowEdge)+len(highEdge))
	ring = append(ring, lowEdge...)
	for i := len(highEdge) - 1; i >= 0; i-- {
		ring = append(ring, highEdge[i])
	}
	return ring
}

// Segments returns the contiguous runs of drawable points.
func (p Path) Segments() []Path {
	var segs []Path
	var cur Path
	for _, pt := range p {
		if pt.Y == nil {
			if len(cur) > 0 {
				segs = append(segs, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, pt)
	}
	if len(cur) > 0 {
		segs = append(segs, cur)
	}
	return segs
}

// Drawable reports whether at least one point has a y.
func (p Path) Drawable() bool {
	for _, pt := range p {
		if pt.Y != nil {
			return true
		}
	}
	return false
}

// D renders the path as an SVG path data string, starting a new subpath after every gap.
func (p Path) D() string {
	parts := make([]string, 0, len(p))
	for _, seg := range p.Segments() {
		for i, pt := range seg {
			cmd := "L"
			if i == 0 {
				cmd = "M"
			}
			parts = append(parts, fmt.Sprintf("%s%.2f,%.2f", cmd, pt.X, *pt.Y))
		}
	}
	return strings.Join(parts, " ")
}

// Points renders the ring as an SVG points attribute.
func (p Polygon) Points() string {
	parts := make([]string, 0, len(p))
	for _, pt := range p {
		if pt.Y == nil {
			continue
		}
		parts = append(parts, fmt.Sprintf("%.2f,%.2f", pt.X, *pt.Y))
	}
	return strings.Join(parts, " ")
}
