package geometry

import "math"

const (
	MinHeight   = 220.0
	MaxHeight   = 340.0
	HeightRatio = 0.22
)

// Padding insets the plot area from the edges of the drawing surface in pixels.
type Padding struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// DefaultPadding leaves room for y axis labels on the left and date labels underneath.
var DefaultPadding = Padding{Top: 16, Right: 24, Bottom: 32, Left: 56}

// Viewport is the measured drawing surface.
type Viewport struct {
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Padding Padding `json:"padding"`
}

// HeightForWidth derives the panel height from the measured width, clamped to
// [MinHeight, MaxHeight].
func HeightForWidth(width float64) float64 {
	h := math.Round(width * HeightRatio)
	return math.Max(MinHeight, math.Min(MaxHeight, h))
}

// NewViewport returns a viewport whose height follows HeightForWidth.
func NewViewport(width float64, padding Padding) Viewport {
	return Viewport{
		Width:   width,
		Height:  HeightForWidth(width),
		Padding: padding,
	}
}

// Resize returns a copy of the viewport measured at a new width.
func (v Viewport) Resize(width float64) Viewport {
	return NewViewport(width, v.Padding)
}

// Horizontal is the total left and right inset.
func (p Padding) Horizontal() float64 {
	return p.Left + p.Right
}

// InnerWidth is the plot width between the insets, never negative.
func (v Viewport) InnerWidth() float64 {
	return math.Max(0, v.Width-v.Padding.Horizontal())
}

// InnerHeight is the plot height between the insets, never negative.
func (v Viewport) InnerHeight() float64 {
	return math.Max(0, v.Height-v.Padding.Top-v.Padding.Bottom)
}

// Bottom is the pixel row of the lowest value in the domain.
func (v Viewport) Bottom() float64 {
	return v.Height - v.Padding.Bottom
}
