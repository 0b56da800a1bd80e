package scale

import (
	"fmt"
	"math"

	"github.com/aouyang1/go-forecastview/timeseries"
	"github.com/aouyang1/go-forecastview/util"
	"gonum.org/v1/gonum/floats"
)

const (
	// PadFraction of the raw range is added above and below the observed values.
	PadFraction = 0.08

	// FlatPad is used in place of the fractional pad when every value is equal.
	FlatPad = 1.0
)

// Domain is the displayed value range of a panel.
type Domain struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Compute returns the padded range of every finite value of fields across all row groups. A nil
// Domain means there was nothing to scale and scale dependent drawing should be skipped.
func Compute(rowGroups [][]timeseries.AlignedRow, fields []timeseries.Field) *Domain {
	var n int
	for _, rows := range rowGroups {
		n += len(rows) * len(fields)
	}
	vals := make([]float64, 0, n)
	for _, rows := range rowGroups {
		for _, f := range fields {
			vals = append(vals, timeseries.Column(rows, f)...)
		}
	}
	return FromValues(vals)
}

// FromValues computes a padded domain directly from values, ignoring non-finite entries.
func FromValues(vals []float64) *Domain {
	finite := make([]float64, 0, len(vals))
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		finite = append(finite, v)
	}
	if len(finite) == 0 {
		return nil
	}

	lo := floats.Min(finite)
	hi := floats.Max(finite)
	pad := (hi - lo) * PadFraction
	if hi == lo {
		pad = FlatPad
	}
	return &Domain{Min: lo - pad, Max: hi + pad}
}

// Range returns Max - Min.
func (d Domain) Range() float64 {
	return d.Max - d.Min
}

// Valid reports whether both bounds are finite and ordered.
func (d Domain) Valid() bool {
	if math.IsNaN(d.Min) || math.IsNaN(d.Max) || math.IsInf(d.Min, 0) || math.IsInf(d.Max, 0) {
		return false
	}
	return d.Min <= d.Max
}

func (d Domain) String() string {
	return fmt.Sprintf("[%s, %s]", util.FormatValue(d.Min), util.FormatValue(d.Max))
}
