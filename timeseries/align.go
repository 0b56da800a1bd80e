package timeseries

import (
	"math"

	"github.com/aouyang1/go-forecastview/dateaxis"
)

// Align projects sparse query rows onto every day of the axis. When more than one row shares a
// date the later row in input order wins. Rows with an unparseable date or a date outside the
// axis are dropped. Days without a row produce an AlignedRow with every field null.
func Align(axis dateaxis.Axis, rows []QueryRow) []AlignedRow {
	byDate := make(map[dateaxis.DateKey]Fields, len(rows))
	for _, r := range rows {
		key, ok := dateaxis.ParseDateKey(r.Date)
		if !ok {
			continue
		}
		byDate[key] = r.Fields
	}

	aligned := make([]AlignedRow, len(axis.Keys))
	for i, key := range axis.Keys {
		aligned[i] = AlignedRow{Date: key}
		if f, exists := byDate[key]; exists {
			aligned[i].Fields = f.clone()
		}
	}
	return aligned
}

// clone copies every value so aligned output never shares pointers with the caller's rows.
func (f Fields) clone() Fields {
	var out Fields
	for _, field := range AllFields {
		if v, ok := f.Get(field); ok {
			out.Set(field, v)
		}
	}
	return out
}

// Column extracts field from rows with NaN standing in for missing values.
func Column(rows []AlignedRow, field Field) []float64 {
	col := make([]float64, len(rows))
	for i, r := range rows {
		v, ok := r.Get(field)
		if !ok {
			col[i] = math.NaN()
			continue
		}
		col[i] = v
	}
	return col
}

// Present counts rows holding a value for field.
func Present(rows []AlignedRow, field Field) int {
	var n int
	for _, r := range rows {
		if _, ok := r.Get(field); ok {
			n++
		}
	}
	return n
}
