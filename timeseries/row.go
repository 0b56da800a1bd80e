package timeseries

import (
	"bytes"
	"fmt"
	"math"
	"strconv"

	"github.com/aouyang1/go-forecastview/dateaxis"
	"github.com/goccy/go-json"
)

// Field names a numeric column of a query row.
type Field string

const (
	FieldValue    Field = "value"
	FieldForecast Field = "fv"
	FieldLow      Field = "low"
	FieldHigh     Field = "high"
	FieldARIMA    Field = "ARIMA_M"
	FieldSES      Field = "SES_M"
	FieldHWES     Field = "HWES_M"
	FieldCI85Low  Field = "ci85_low"
	FieldCI85High Field = "ci85_high"
	FieldCI90Low  Field = "ci90_low"
	FieldCI90High Field = "ci90_high"
	FieldCI95Low  Field = "ci95_low"
	FieldCI95High Field = "ci95_high"
)

// AllFields lists every known field in wire order.
var AllFields = []Field{
	FieldValue, FieldForecast, FieldLow, FieldHigh,
	FieldARIMA, FieldSES, FieldHWES,
	FieldCI85Low, FieldCI85High,
	FieldCI90Low, FieldCI90High,
	FieldCI95Low, FieldCI95High,
}

// Fields holds one nullable value per series. A nil pointer means no observation.
type Fields struct {
	Value    *float64 `json:"value"`
	Forecast *float64 `json:"fv"`
	Low      *float64 `json:"low"`
	High     *float64 `json:"high"`
	ARIMA    *float64 `json:"ARIMA_M"`
	SES      *float64 `json:"SES_M"`
	HWES     *float64 `json:"HWES_M"`
	CI85Low  *float64 `json:"ci85_low"`
	CI85High *float64 `json:"ci85_high"`
	CI90Low  *float64 `json:"ci90_low"`
	CI90High *float64 `json:"ci90_high"`
	CI95Low  *float64 `json:"ci95_low"`
	CI95High *float64 `json:"ci95_high"`
}

func (f *Fields) ref(field Field) **float64 {
	switch field {
	case FieldValue:
		return &f.Value
	case FieldForecast:
		return &f.Forecast
	case FieldLow:
		return &f.Low
	case FieldHigh:
		return &f.High
	case FieldARIMA:
		return &f.ARIMA
	case FieldSES:
		return &f.SES
	case FieldHWES:
		return &f.HWES
	case FieldCI85Low:
		return &f.CI85Low
	case FieldCI85High:
		return &f.CI85High
	case FieldCI90Low:
		return &f.CI90Low
	case FieldCI90High:
		return &f.CI90High
	case FieldCI95Low:
		return &f.CI95Low
	case FieldCI95High:
		return &f.CI95High
	}
	return nil
}

// Get returns the value of field and whether it is present.
func (f Fields) Get(field Field) (float64, bool) {
	p := f.ref(field)
	if p == nil || *p == nil {
		return 0, false
	}
	return **p, true
}

// Set stores v under field. Unknown fields are ignored.
func (f *Fields) Set(field Field, v float64) {
	p := f.ref(field)
	if p == nil {
		return
	}
	*p = &v
}


// QueryRow is a record as returned by the query service. Dates are kept as received and only
// normalized during alignment.
type QueryRow struct {
	Date string `json:"date"`
	Fields
}

// UnmarshalJSON decodes a row leniently. Numbers and numeric strings are kept, anything else
// including non-finite values decodes as null rather than failing the whole response.
func (r *QueryRow) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("unable to decode query row, %w", err)
	}

	row := QueryRow{}
	if d, exists := raw["date"]; exists {
		var s string
		if err := json.Unmarshal(d, &s); err == nil {
			row.Date = s
		}
	}
	for _, field := range AllFields {
		v, exists := raw[string(field)]
		if !exists {
			continue
		}
		if f, ok := decodeNumber(v); ok {
			row.Set(field, f)
		}
	}
	*r = row
	return nil
}

func decodeNumber(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 || string(bytes.TrimSpace(raw)) == "null" {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, finite(f)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, finite(f)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// AlignedRow is a row guaranteed to exist for its axis day. Missing fields marshal as null.
type AlignedRow struct {
	Date dateaxis.DateKey `json:"date"`
	Fields
}
