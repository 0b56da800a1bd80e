package event

import (
	"testing"

	"github.com/aouyang1/go-forecastview/dateaxis"
	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/us"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildAxis(t *testing.T, start string, span int) dateaxis.Axis {
	t.Helper()
	axis, err := dateaxis.BuildFromString(start, span)
	require.NoError(t, err)
	return axis
}

func TestHoliday(t *testing.T) {
	testData := map[string]struct {
		hol      *cal.Holiday
		start    string
		span     int
		expected []Marker
	}{
		"christmas in span": {
			hol:   us.ChristmasDay,
			start: "2024-12",
			span:  1,
			expected: []Marker{
				{Name: us.ChristmasDay.Name, Date: "2024-12-25", Index: 31},
			},
		},
		"thanksgiving in pre-roll": {
			hol:   us.ThanksgivingDay,
			start: "2024-12",
			span:  1,
			expected: []Marker{
				{Name: us.ThanksgivingDay.Name, Date: "2024-11-28", Index: 4},
			},
		},
		"new year across rollover": {
			hol:   us.NewYear,
			start: "2024-12",
			span:  2,
			expected: []Marker{
				{Name: us.NewYear.Name, Date: "2025-01-01", Index: 38},
			},
		},
		"not on axis": {
			hol:      us.ChristmasDay,
			start:    "2025-03",
			span:     3,
			expected: []Marker{},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res := Holiday(td.hol, buildAxis(t, td.start, td.span))
			assert.Equal(t, td.expected, res)
		})
	}
}

func TestHolidayEmptyAxis(t *testing.T) {
	assert.Nil(t, Holiday(us.ChristmasDay, dateaxis.Axis{}))
}

func TestMarkersOrdered(t *testing.T) {
	hols, err := Holidays([]string{"christmas", "Thanksgiving", " new_year "})
	require.NoError(t, err)

	markers := Markers(buildAxis(t, "2024-12", 2), hols)
	require.Len(t, markers, 3)
	assert.Equal(t, dateaxis.DateKey("2024-11-28"), markers[0].Date)
	assert.Equal(t, dateaxis.DateKey("2024-12-25"), markers[1].Date)
	assert.Equal(t, dateaxis.DateKey("2025-01-01"), markers[2].Date)
}

func TestHolidays(t *testing.T) {
	hols, err := Holidays(DefaultHolidays)
	require.NoError(t, err)
	assert.Len(t, hols, len(DefaultHolidays))

	_, err = Holidays([]string{"festivus"})
	assert.ErrorIs(t, err, ErrUnknownHoliday)
}
