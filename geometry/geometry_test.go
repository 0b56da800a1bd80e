package geometry

import (
	"math"
	"testing"

	"github.com/aouyang1/go-forecastview/scale"
	"github.com/aouyang1/go-forecastview/timeseries"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testViewport = Viewport{
	Width:   110,
	Height:  100,
	Padding: Padding{Top: 10, Right: 10, Bottom: 10, Left: 10},
}

func rowsOf(field timeseries.Field, vals ...float64) []timeseries.AlignedRow {
	rows := make([]timeseries.AlignedRow, len(vals))
	for i, v := range vals {
		if math.IsNaN(v) {
			continue
		}
		rows[i].Set(field, v)
	}
	return rows
}

func yOf(t *testing.T, p Point) float64 {
	t.Helper()
	require.NotNil(t, p.Y)
	return *p.Y
}

func TestHeightForWidth(t *testing.T) {
	testData := map[string]struct {
		width    float64
		expected float64
	}{
		"zero clamps to min":   {width: 0, expected: 220},
		"at min boundary":      {width: 1000, expected: 220},
		"proportional":         {width: 1200, expected: 264},
		"rounded":              {width: 1409, expected: 310},
		"rounds up to max":     {width: 1545, expected: 340},
		"wide clamps to max":   {width: 4000, expected: 340},
		"narrow clamps to min": {width: 320, expected: 220},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, td.expected, HeightForWidth(td.width))
		})
	}
}

func TestViewportResize(t *testing.T) {
	vp := NewViewport(1200, DefaultPadding)
	assert.Equal(t, 264.0, vp.Height)

	resized := vp.Resize(1409)
	assert.Equal(t, 310.0, resized.Height)
	assert.Equal(t, DefaultPadding, resized.Padding)
	assert.Equal(t, 264.0, vp.Height)
}

func TestViewportNarrowerThanPadding(t *testing.T) {
	vp := NewViewport(50, DefaultPadding)
	assert.Equal(t, 0.0, vp.InnerWidth())
	assert.Equal(t, 80.0, DefaultPadding.Horizontal())

	xs := XPositions(4, vp)
	require.Len(t, xs, 4)
	for i := 1; i < len(xs); i++ {
		assert.GreaterOrEqual(t, xs[i], xs[i-1])
	}
	assert.Equal(t, DefaultPadding.Left, XAt(3, 4, vp))
}

func TestXPositions(t *testing.T) {
	assert.Empty(t, XPositions(0, testViewport))
	assert.Equal(t, []float64{10}, XPositions(1, testViewport))
	assert.InDeltaSlice(t, []float64{10, 55, 100}, XPositions(3, testViewport), 1e-9)

	xs := XPositions(38, testViewport)
	require.Len(t, xs, 38)
	for i := 1; i < len(xs); i++ {
		assert.Less(t, xs[i-1], xs[i])
		assert.InDelta(t, XAt(i, 38, testViewport), xs[i], 1e-9)
	}
	assert.Equal(t, 10.0, XAt(0, 1, testViewport))
}

func TestMapToPixels(t *testing.T) {
	domain := scale.Domain{Min: 0, Max: 100}
	rows := rowsOf(timeseries.FieldValue, 0, math.NaN(), 100, 50)

	path := MapToPixels(rows, timeseries.FieldValue, domain, testViewport)
	require.Len(t, path, 4)

	for i := 1; i < len(path); i++ {
		assert.Less(t, path[i-1].X, path[i].X)
	}
	assert.Nil(t, path[1].Y)
	assert.InDelta(t, 40, path[1].X, 1e-9)

	y0 := yOf(t, path[0])
	y100 := yOf(t, path[2])
	assert.Less(t, y100, y0)
	assert.Equal(t, 90.0, y0)
	assert.Equal(t, 10.0, y100)
	assert.Equal(t, 50.0, yOf(t, path[3]))
}

func TestMapToPixelsEdgeCases(t *testing.T) {
	testData := map[string]struct {
		rows     []timeseries.AlignedRow
		domain   scale.Domain
		expected Path
	}{
		"empty": {
			rows:     nil,
			domain:   scale.Domain{Min: 0, Max: 1},
			expected: Path{},
		},
		"single row sits on left inset": {
			rows:     rowsOf(timeseries.FieldValue, 5),
			domain:   scale.Domain{Min: 0, Max: 10},
			expected: Path{{X: 10, Y: ptr(50)}},
		},
		"flat domain centers values": {
			rows:     rowsOf(timeseries.FieldValue, 5, 5),
			domain:   scale.Domain{Min: 5, Max: 5},
			expected: Path{{X: 10, Y: ptr(50)}, {X: 100, Y: ptr(50)}},
		},
		"all null keeps x": {
			rows:     rowsOf(timeseries.FieldValue, math.NaN(), math.NaN()),
			domain:   scale.Domain{Min: 0, Max: 1},
			expected: Path{{X: 10}, {X: 100}},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res := MapToPixels(td.rows, timeseries.FieldValue, td.domain, testViewport)
			assert.Equal(t, td.expected, res)
		})
	}
}

func ptr(v float64) *float64 {
	return &v
}

func TestMapBand(t *testing.T) {
	domain := scale.Domain{Min: 0, Max: 10}
	low := rowsOf(timeseries.FieldCI95Low, 1, 2, 3)
	high := rowsOf(timeseries.FieldCI95High, 5, 6, 7)

	ring := MapBand(low, high, timeseries.FieldCI95Low, timeseries.FieldCI95High, domain, testViewport)

	lowPath := MapToPixels(low, timeseries.FieldCI95Low, domain, testViewport)
	highPath := MapToPixels(high, timeseries.FieldCI95High, domain, testViewport)
	expected := Polygon{lowPath[0], lowPath[1], lowPath[2], highPath[2], highPath[1], highPath[0]}
	assert.Equal(t, expected, ring)

	assert.Equal(t, "10.00,82.00 55.00,74.00 100.00,66.00 100.00,34.00 55.00,42.00 10.00,50.00", ring.Points())
}

func TestMapBandSkipsMissingBounds(t *testing.T) {
	domain := scale.Domain{Min: 0, Max: 10}
	nan := math.NaN()

	testData := map[string]struct {
		low      []float64
		high     []float64
		expected []float64
	}{
		"low missing in middle": {
			low:      []float64{1, nan, 3},
			high:     []float64{5, 6, 7},
			expected: []float64{10, 100, 100, 10},
		},
		"high missing at end": {
			low:      []float64{1, 2, 3},
			high:     []float64{5, 6, nan},
			expected: []float64{10, 55, 55, 10},
		},
		"all missing": {
			low:      []float64{nan, nan},
			high:     []float64{5, 6},
			expected: []float64{},
		},
		"mismatched lengths": {
			low:      []float64{1, 2, 3},
			high:     []float64{5},
			expected: []float64{10, 10},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			ring := MapBand(
				rowsOf(timeseries.FieldLow, td.low...),
				rowsOf(timeseries.FieldHigh, td.high...),
				timeseries.FieldLow, timeseries.FieldHigh,
				domain, testViewport,
			)
			xs := make([]float64, 0, len(ring))
			for _, pt := range ring {
				require.NotNil(t, pt.Y)
				xs = append(xs, pt.X)
			}
			assert.Equal(t, td.expected, xs)
		})
	}
}

func TestPathSegmentsAndD(t *testing.T) {
	path := Path{
		{X: 0, Y: ptr(1)},
		{X: 1, Y: ptr(2)},
		{X: 2},
		{X: 3, Y: ptr(4)},
		{X: 4},
	}
	segs := path.Segments()
	require.Len(t, segs, 2)
	assert.Len(t, segs[0], 2)
	assert.Len(t, segs[1], 1)
	assert.True(t, path.Drawable())
	assert.Equal(t, "M0.00,1.00 L1.00,2.00 M3.00,4.00", path.D())

	empty := Path{{X: 0}, {X: 1}}
	assert.False(t, empty.Drawable())
	assert.Empty(t, empty.Segments())
	assert.Equal(t, "", empty.D())
}
