package panel

import "github.com/aouyang1/go-forecastview/timeseries"

// Segment restricts a series to part of the axis.
type Segment int

const (
	// SegmentAll draws the series over the whole axis.
	SegmentAll Segment = iota
	// SegmentHistory draws from the start of the axis through the first day of the start month.
	SegmentHistory
	// SegmentFuture draws from the first day of the start month onwards.
	SegmentFuture
)

func (s Segment) String() string {
	switch s {
	case SegmentHistory:
		return "history"
	case SegmentFuture:
		return "future"
	default:
		return "all"
	}
}

// SeriesSpec describes one stroked line of a panel.
type SeriesSpec struct {
	Key     string
	Label   string
	Field   timeseries.Field
	Color   string
	Segment Segment
	Dashed  bool

	// Bound marks a synthetic upper or lower bound trace. Bounds are drawn but never listed
	// in the legend.
	Bound bool
}

// BandSpec describes a filled confidence region between two fields.
type BandSpec struct {
	Key     string
	Label   string
	Low     timeseries.Field
	High    timeseries.Field
	Color   string
	Opacity float64
}

// Group is the set of series and bands drawn on one panel.
type Group struct {
	Name   string
	Title  string
	Series []SeriesSpec
	Bands  []BandSpec
}

// Fields returns every field the group draws, in first use order without duplicates.
func (g Group) Fields() []timeseries.Field {
	seen := make(map[timeseries.Field]bool)
	fields := make([]timeseries.Field, 0, len(g.Series)+2*len(g.Bands))
	add := func(f timeseries.Field) {
		if seen[f] {
			return
		}
		seen[f] = true
		fields = append(fields, f)
	}
	for _, s := range g.Series {
		add(s.Field)
	}
	for _, b := range g.Bands {
		add(b.Low)
		add(b.High)
	}
	return fields
}

const (
	ColorActual        = "#1f77b4"
	ColorActualFuture  = "#6baed6"
	ColorARIMA         = "#ff7f0e"
	ColorSES           = "#2ca02c"
	ColorHWES          = "#d62728"
	ColorForecast      = "#9467bd"
	ColorBound         = "#7f7f7f"
	ColorConfidenceFar = "#c5b0d5"
	ColorConfidenceMid = "#b39ddb"
	ColorConfidenceIn  = "#9575cd"
)

func actualSeries() []SeriesSpec {
	return []SeriesSpec{
		{
			Key:     "actual_history",
			Label:   "Actual",
			Field:   timeseries.FieldValue,
			Color:   ColorActual,
			Segment: SegmentHistory,
		},
		{
			Key:     "actual_future",
			Label:   "Actual (future)",
			Field:   timeseries.FieldValue,
			Color:   ColorActualFuture,
			Segment: SegmentFuture,
		},
	}
}

// Classical is the panel comparing the actuals against the classical model outputs.
func Classical() Group {
	series := actualSeries()
	series = append(series,
		SeriesSpec{Key: "arima", Label: "ARIMA", Field: timeseries.FieldARIMA, Color: ColorARIMA},
		SeriesSpec{Key: "ses", Label: "SES", Field: timeseries.FieldSES, Color: ColorSES},
		SeriesSpec{Key: "hwes", Label: "HWES", Field: timeseries.FieldHWES, Color: ColorHWES},
	)
	return Group{
		Name:   "classical",
		Title:  "Classical models",
		Series: series,
	}
}

// Targeted is the seasonal forecast panel with its nested confidence bands. Bands are ordered
// widest first so narrower bands paint on top.
func Targeted() Group {
	series := actualSeries()
	series = append(series,
		SeriesSpec{Key: "forecast", Label: "Forecast", Field: timeseries.FieldForecast, Color: ColorForecast},
		SeriesSpec{Key: "lower", Label: "Lower bound", Field: timeseries.FieldLow, Color: ColorBound, Dashed: true, Bound: true},
		SeriesSpec{Key: "upper", Label: "Upper bound", Field: timeseries.FieldHigh, Color: ColorBound, Dashed: true, Bound: true},
	)
	return Group{
		Name:   "targeted",
		Title:  "Targeted seasonal forecast",
		Series: series,
		Bands: []BandSpec{
			{Key: "ci95", Label: "95% interval", Low: timeseries.FieldCI95Low, High: timeseries.FieldCI95High, Color: ColorConfidenceFar, Opacity: 0.25},
			{Key: "ci90", Label: "90% interval", Low: timeseries.FieldCI90Low, High: timeseries.FieldCI90High, Color: ColorConfidenceMid, Opacity: 0.35},
			{Key: "ci85", Label: "85% interval", Low: timeseries.FieldCI85Low, High: timeseries.FieldCI85High, Color: ColorConfidenceIn, Opacity: 0.45},
		},
	}
}

// DefaultGroups returns the panels drawn by the dashboard, top to bottom.
func DefaultGroups() []Group {
	return []Group{Classical(), Targeted()}
}
