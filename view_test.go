package forecastview

import (
	"bytes"
	"testing"

	"github.com/aouyang1/go-forecastview/dateaxis"
	"github.com/aouyang1/go-forecastview/event"
	"github.com/aouyang1/go-forecastview/geometry"
	"github.com/aouyang1/go-forecastview/panel"
	"github.com/aouyang1/go-forecastview/scale"
	"github.com/aouyang1/go-forecastview/timeseries"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 {
	return &v
}

func testRows() []timeseries.QueryRow {
	return []timeseries.QueryRow{
		{Date: "2025-02-27", Fields: timeseries.Fields{Value: ptr(10), ARIMA: ptr(11)}},
		{Date: "2025-03-01", Fields: timeseries.Fields{Value: ptr(12), SES: ptr(12)}},
		{Date: "2025-03-02", Fields: timeseries.Fields{Forecast: ptr(30), CI95Low: ptr(20), CI95High: ptr(40)}},
		{Date: "2025-03-03", Fields: timeseries.Fields{Forecast: ptr(32), CI95Low: ptr(21), CI95High: ptr(44)}},
	}
}

func TestNew(t *testing.T) {
	testData := map[string]struct {
		opt *Options
		err error
	}{
		"default": {},
		"no groups": {
			opt: &Options{Width: 100},
			err: ErrNoGroups,
		},
		"zero width": {
			opt: &Options{Groups: panel.DefaultGroups()},
			err: ErrInvalidWidth,
		},
		"width inside padding": {
			opt: &Options{Width: 80, Padding: geometry.DefaultPadding, Groups: panel.DefaultGroups()},
			err: ErrInvalidWidth,
		},
		"inverted domain": {
			opt: &Options{Width: 100, Groups: panel.DefaultGroups(), Domain: &scale.Domain{Min: 2, Max: 1}},
			err: ErrInvalidDomain,
		},
		"unknown holiday": {
			opt: &Options{Width: 100, Groups: panel.DefaultGroups(), Holidays: []string{"festivus"}},
			err: event.ErrUnknownHoliday,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			v, err := New(td.opt)
			if td.err != nil {
				require.ErrorIs(t, err, td.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, DefaultWidth, v.Width())
			assert.Nil(t, v.Results())
		})
	}
}

func TestRenderScenario(t *testing.T) {
	v, err := New(nil)
	require.NoError(t, err)

	res, err := v.Render([]timeseries.QueryRow{
		{Date: "2025-03-05", Fields: timeseries.Fields{Value: ptr(42)}},
	}, "2025-03", 1)
	require.NoError(t, err)

	assert.Equal(t, "2025-03", res.StartMonth)
	assert.Equal(t, 1, res.Span)
	require.Len(t, res.Rows, 38)
	assert.Equal(t, dateaxis.DateKey("2025-02-22"), res.Axis.StartKey())
	assert.Equal(t, dateaxis.DateKey("2025-03-31"), res.Axis.EndKey())
	for i, r := range res.Rows {
		_, ok := r.Get(timeseries.FieldValue)
		assert.Equal(t, r.Date == "2025-03-05", ok, "row %d", i)
	}

	require.NotNil(t, res.Domain)
	assert.Equal(t, scale.Domain{Min: 41, Max: 43}, *res.Domain)
	require.Len(t, res.Panels, 2)
	for _, b := range res.Panels {
		assert.Equal(t, *res.Domain, *b.Domain)
		assert.Len(t, b.AxisLabels, 38)
	}
	assert.Equal(t, geometry.HeightForWidth(DefaultWidth), res.Viewport.Height)
	assert.Same(t, res, v.Results())
}

func TestRenderSharedDomain(t *testing.T) {
	testData := map[string]struct {
		shared            bool
		expectedShared    *scale.Domain
		expectedClassical scale.Domain
		expectedTargeted  scale.Domain
	}{
		"shared": {
			shared:            true,
			expectedShared:    &scale.Domain{Min: 10 - 34*0.08, Max: 44 + 34*0.08},
			expectedClassical: scale.Domain{Min: 10 - 34*0.08, Max: 44 + 34*0.08},
			expectedTargeted:  scale.Domain{Min: 10 - 34*0.08, Max: 44 + 34*0.08},
		},
		"independent": {
			shared:            false,
			expectedClassical: scale.Domain{Min: 10 - 2*0.08, Max: 12 + 2*0.08},
			expectedTargeted:  scale.Domain{Min: 10 - 34*0.08, Max: 44 + 34*0.08},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			opt := NewDefaultOptions()
			opt.SharedDomain = td.shared
			v, err := New(opt)
			require.NoError(t, err)

			res, err := v.Render(testRows(), "2025-03", 1)
			require.NoError(t, err)

			if td.expectedShared == nil {
				assert.Nil(t, res.Domain)
			} else {
				require.NotNil(t, res.Domain)
				assert.InDelta(t, td.expectedShared.Min, res.Domain.Min, 1e-9)
				assert.InDelta(t, td.expectedShared.Max, res.Domain.Max, 1e-9)
			}

			classical, ok := res.Panel("classical")
			require.True(t, ok)
			targeted, ok := res.Panel("targeted")
			require.True(t, ok)
			assert.InDelta(t, td.expectedClassical.Min, classical.Domain.Min, 1e-9)
			assert.InDelta(t, td.expectedClassical.Max, classical.Domain.Max, 1e-9)
			assert.InDelta(t, td.expectedTargeted.Min, targeted.Domain.Min, 1e-9)
			assert.InDelta(t, td.expectedTargeted.Max, targeted.Domain.Max, 1e-9)
		})
	}
}

func TestRenderDomainOverride(t *testing.T) {
	opt := NewDefaultOptions()
	opt.Domain = &scale.Domain{Min: 0, Max: 100}
	v, err := New(opt)
	require.NoError(t, err)

	res, err := v.Render(testRows(), "2025-03", 1)
	require.NoError(t, err)
	for _, b := range res.Panels {
		assert.Equal(t, scale.Domain{Min: 0, Max: 100}, *b.Domain)
	}

	res.Domain.Min = -1
	assert.Equal(t, 0.0, opt.Domain.Min)
}

func TestRenderInvalidInputKeepsPrevious(t *testing.T) {
	v, err := New(nil)
	require.NoError(t, err)

	first, err := v.Render(testRows(), "2025-03", 1)
	require.NoError(t, err)

	_, err = v.Render(testRows(), "2025/03", 1)
	assert.ErrorIs(t, err, dateaxis.ErrInvalidDate)
	_, err = v.Render(testRows(), "2025-03", 0)
	assert.ErrorIs(t, err, dateaxis.ErrInvalidSpan)

	assert.Same(t, first, v.Results())
}

func TestResize(t *testing.T) {
	v, err := New(nil)
	require.NoError(t, err)

	_, err = v.Resize(1200)
	assert.ErrorIs(t, err, ErrNotRendered)
	assert.Equal(t, 1200.0, v.Width())

	_, err = v.Resize(0)
	assert.ErrorIs(t, err, ErrInvalidWidth)

	before, err := v.Render(testRows(), "2025-03", 1)
	require.NoError(t, err)
	assert.Equal(t, 1200.0, before.Viewport.Width)
	assert.Equal(t, 264.0, before.Viewport.Height)

	after, err := v.Resize(2000)
	require.NoError(t, err)
	assert.Equal(t, 2000.0, after.Viewport.Width)
	assert.Equal(t, 340.0, after.Viewport.Height)
	assert.Equal(t, before.Rows, after.Rows)
	assert.Equal(t, *before.Domain, *after.Domain)

	bh, _ := before.Panel("classical")
	ah, _ := after.Panel("classical")
	require.NotEmpty(t, bh.Paths)
	last := len(bh.Paths[0].Path) - 1
	assert.Less(t, bh.Paths[0].Path[last].X, ah.Paths[0].Path[last].X)
}

func TestResizeNarrowWidth(t *testing.T) {
	v, err := New(nil)
	require.NoError(t, err)
	before, err := v.Render(testRows(), "2025-03", 1)
	require.NoError(t, err)

	for _, width := range []float64{50, 80} {
		_, err := v.Resize(width)
		assert.ErrorIs(t, err, ErrInvalidWidth)
		assert.Same(t, before, v.Results())
		assert.Equal(t, DefaultWidth, v.Width())
	}

	res, err := v.Resize(81)
	require.NoError(t, err)
	b, ok := res.Panel("classical")
	require.True(t, ok)
	path := b.Paths[0].Path
	for i := 1; i < len(path); i++ {
		assert.Greater(t, path[i].X, path[i-1].X)
	}
}

func TestResultsTablePrint(t *testing.T) {
	v, err := New(nil)
	require.NoError(t, err)
	res, err := v.Render(testRows(), "2025-03", 1)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, res.TablePrint(&buf, "", "  "))
	out := buf.String()
	assert.Contains(t, out, "View:\n")
	assert.Contains(t, out, "  Start Month: 2025-03    Span: 1\n")
	assert.Contains(t, out, "  Axis: 2025-02-22 to 2025-03-31 (38 days)\n")
	assert.Contains(t, out, "  Viewport: 960x220\n")
	assert.Contains(t, out, "  Observed: value=2 fv=2 ARIMA_M=1 SES_M=1 ci95_low=2 ci95_high=2\n")
	assert.Contains(t, out, "Panel: Classical models\n")
	assert.Contains(t, out, "Legend:\n")
	assert.Contains(t, out, "  #1f77b4 Actual\n")
}
