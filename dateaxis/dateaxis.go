package dateaxis

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidDate = errors.New("invalid date")
	ErrInvalidSpan = errors.New("span must be at least one month")
)

const (
	// PreRollDays is the number of days drawn before the first requested month.
	PreRollDays = 7

	KeyLayout   = "2006-01-02"
	MonthLayout = "2006-01"

	day = 24 * time.Hour
)

// DateKey is a calendar day formatted as YYYY-MM-DD and always read as UTC midnight.
// Keys of the same layout compare lexicographically in calendar order.
type DateKey string

// NewDateKey formats t in UTC as a DateKey.
func NewDateKey(t time.Time) DateKey {
	return DateKey(t.UTC().Format(KeyLayout))
}

// Time returns the UTC midnight the key represents.
func (k DateKey) Time() (time.Time, error) {
	t, err := time.Parse(KeyLayout, string(k))
	if err != nil {
		return time.Time{}, fmt.Errorf("unable to parse date key %q, %w", k, ErrInvalidDate)
	}
	return t, nil
}

func (k DateKey) String() string {
	return string(k)
}

// ParseDateKey normalizes either a YYYY-MM-DD date or an RFC3339 timestamp into a DateKey.
// Timestamps are converted to UTC before the date part is taken.
func ParseDateKey(s string) (DateKey, bool) {
	if t, err := time.Parse(KeyLayout, s); err == nil {
		return NewDateKey(t), true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return NewDateKey(t), true
	}
	return "", false
}

// YearMonth identifies a calendar month.
type YearMonth struct {
	Year  int
	Month time.Month
}

// ParseYearMonth parses a strict YYYY-MM string.
func ParseYearMonth(s string) (YearMonth, error) {
	if len(s) != len(MonthLayout) {
		return YearMonth{}, fmt.Errorf("start month %q is not YYYY-MM, %w", s, ErrInvalidDate)
	}
	t, err := time.Parse(MonthLayout, s)
	if err != nil {
		return YearMonth{}, fmt.Errorf("start month %q is not YYYY-MM, %w", s, ErrInvalidDate)
	}
	return YearMonth{Year: t.Year(), Month: t.Month()}, nil
}

// FirstDay returns UTC midnight of the first day of the month.
func (ym YearMonth) FirstDay() time.Time {
	return time.Date(ym.Year, ym.Month, 1, 0, 0, 0, 0, time.UTC)
}

// AddMonths returns the month n months after ym.
func (ym YearMonth) AddMonths(n int) YearMonth {
	t := ym.FirstDay().AddDate(0, n, 0)
	return YearMonth{Year: t.Year(), Month: t.Month()}
}

func (ym YearMonth) String() string {
	return ym.FirstDay().Format(MonthLayout)
}

// DaysInSpan returns the number of calendar days in span consecutive months starting at start.
func DaysInSpan(start YearMonth, span int) int {
	if span < 1 {
		return 0
	}
	first := start.FirstDay()
	end := first.AddDate(0, span, 0)
	return int(end.Sub(first) / day)
}

// Axis is a dense, strictly increasing sequence of daily keys covering a pre-roll window
// plus the requested months.
type Axis struct {
	Keys  []DateKey `json:"keys"`
	Start YearMonth `json:"-"`
	Span  int       `json:"span"`
}

// Build generates the axis from PreRollDays before the first day of start through the last day
// of the month span-1 months after start, inclusive.
func Build(start YearMonth, span int) (Axis, error) {
	if span < 1 {
		return Axis{}, fmt.Errorf("received span of %d, %w", span, ErrInvalidSpan)
	}
	if start.Month < time.January || start.Month > time.December {
		return Axis{}, fmt.Errorf("month %d out of range, %w", start.Month, ErrInvalidDate)
	}

	first := start.FirstDay()
	from := first.AddDate(0, 0, -PreRollDays)
	to := first.AddDate(0, span, -1)

	n := PreRollDays + DaysInSpan(start, span)
	keys := make([]DateKey, 0, n)
	for t := from; !t.After(to); t = t.AddDate(0, 0, 1) {
		keys = append(keys, NewDateKey(t))
	}

	return Axis{
		Keys:  keys,
		Start: start,
		Span:  span,
	}, nil
}

// BuildFromString parses a YYYY-MM start month and builds the axis.
func BuildFromString(startMonth string, span int) (Axis, error) {
	ym, err := ParseYearMonth(startMonth)
	if err != nil {
		return Axis{}, err
	}
	return Build(ym, span)
}

func (a Axis) Len() int {
	return len(a.Keys)
}

// Index returns the position of key in the axis or -1 if the key is not covered.
func (a Axis) Index(key DateKey) int {
	if len(a.Keys) == 0 || key < a.Keys[0] || key > a.Keys[len(a.Keys)-1] {
		return -1
	}
	first, err := a.Keys[0].Time()
	if err != nil {
		return -1
	}
	t, err := key.Time()
	if err != nil {
		return -1
	}
	idx := int(t.Sub(first) / day)
	if idx < 0 || idx >= len(a.Keys) || a.Keys[idx] != key {
		return -1
	}
	return idx
}

// SpanStartIndex is the index of the first day of the start month, equal to the pre-roll length
// for a non-empty axis.
func (a Axis) SpanStartIndex() int {
	if len(a.Keys) == 0 {
		return 0
	}
	return PreRollDays
}

func (a Axis) StartKey() DateKey {
	if len(a.Keys) == 0 {
		return ""
	}
	return a.Keys[0]
}

func (a Axis) EndKey() DateKey {
	if len(a.Keys) == 0 {
		return ""
	}
	return a.Keys[len(a.Keys)-1]
}
