package event

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aouyang1/go-forecastview/dateaxis"
	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/us"
)

var ErrUnknownHoliday = errors.New("unknown holiday")

// Marker is a named day on the axis drawn as a vertical guide.
type Marker struct {
	Name  string           `json:"name"`
	Date  dateaxis.DateKey `json:"date"`
	Index int              `json:"index"`
}

var holidays = map[string]*cal.Holiday{
	"new_year":     us.NewYear,
	"mlk":          us.MlkDay,
	"presidents":   us.PresidentsDay,
	"memorial":     us.MemorialDay,
	"independence": us.IndependenceDay,
	"labor":        us.LaborDay,
	"thanksgiving": us.ThanksgivingDay,
	"christmas":    us.ChristmasDay,
}

// DefaultHolidays are the holiday keys marked when none are configured.
var DefaultHolidays = []string{"new_year", "memorial", "independence", "labor", "thanksgiving", "christmas"}

// Holidays resolves holiday keys such as "christmas" into calendar definitions.
func Holidays(names []string) ([]*cal.Holiday, error) {
	hols := make([]*cal.Holiday, 0, len(names))
	for _, name := range names {
		hol, exists := holidays[strings.ToLower(strings.TrimSpace(name))]
		if !exists {
			return nil, fmt.Errorf("%q, %w", name, ErrUnknownHoliday)
		}
		hols = append(hols, hol)
	}
	return hols, nil
}

// Holiday returns a marker for every occurrence of hol that falls on the axis. The actual
// calendar date is used rather than the observed weekday.
func Holiday(hol *cal.Holiday, axis dateaxis.Axis) []Marker {
	if axis.Len() == 0 {
		return nil
	}
	start, err := axis.StartKey().Time()
	if err != nil {
		return nil
	}
	end, err := axis.EndKey().Time()
	if err != nil {
		return nil
	}

	markers := []Marker{}
	for i := start.Year(); i <= end.Year(); i++ {
		actual, _ := hol.Calc(i)
		if actual.IsZero() {
			continue
		}
		key := dateaxis.NewDateKey(time.Date(actual.Year(), actual.Month(), actual.Day(), 0, 0, 0, 0, time.UTC))
		idx := axis.Index(key)
		if idx < 0 {
			continue
		}
		markers = append(markers, Marker{
			Name:  hol.Name,
			Date:  key,
			Index: idx,
		})
	}
	return markers
}

// Markers collects the markers of every holiday on the axis ordered by date.
func Markers(axis dateaxis.Axis, hols []*cal.Holiday) []Marker {
	markers := []Marker{}
	for _, hol := range hols {
		markers = append(markers, Holiday(hol, axis)...)
	}
	sort.SliceStable(markers, func(i, j int) bool {
		return markers[i].Index < markers[j].Index
	})
	return markers
}
