package client

import (
	"context"
	"errors"
	"strings"

	"github.com/aouyang1/go-forecastview/dateaxis"
	"github.com/aouyang1/go-forecastview/timeseries"
)

var ErrIncompleteLegacyQuery = errors.New("legacy query needs forecast_id and date_from")

// LegacyQuery is the date range request shape older callers still send.
type LegacyQuery struct {
	ForecastID string `json:"forecast_id"`
	DateFrom   string `json:"date_from"`
	DateTo     string `json:"date_to"`
}

// ForecastID is the {id, name} pair older callers expect for each forecast.
type ForecastID struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ForecastIDs wraps plain forecast names, using the name as the id.
func ForecastIDs(names []string) []ForecastID {
	ids := make([]ForecastID, 0, len(names))
	for _, n := range names {
		ids = append(ids, ForecastID{ID: n, Name: n})
	}
	return ids
}

// MonthSpan counts the months from the month of from through the month of to inclusive. It is
// at least 1 and is 1 whenever either month cannot be read.
func MonthSpan(from, to string) int {
	start, err := dateaxis.ParseYearMonth(truncMonth(from))
	if err != nil {
		return 1
	}
	if strings.TrimSpace(to) == "" {
		return 1
	}
	end, err := dateaxis.ParseYearMonth(truncMonth(to))
	if err != nil {
		return 1
	}

	span := (end.Year-start.Year)*12 + int(end.Month) - int(start.Month) + 1
	if span < 1 {
		return 1
	}
	return span
}

// TranslateLegacy converts a date range request into a month and span request.
func TranslateLegacy(q LegacyQuery) (QueryRequest, error) {
	id := strings.TrimSpace(q.ForecastID)
	from := strings.TrimSpace(q.DateFrom)
	if id == "" || from == "" {
		return QueryRequest{}, ErrIncompleteLegacyQuery
	}
	return QueryRequest{
		ForecastName: id,
		Month:        truncMonth(from),
		Span:         MonthSpan(from, q.DateTo),
	}, nil
}

// LegacyQuery translates q and runs it.
func (c *Client) LegacyQuery(ctx context.Context, q LegacyQuery) ([]timeseries.QueryRow, error) {
	req, err := TranslateLegacy(q)
	if err != nil {
		return nil, err
	}
	return c.Query(ctx, req)
}

// ForecastIDs lists the forecasts in the {id, name} shape.
func (c *Client) ForecastIDs(ctx context.Context) ([]ForecastID, error) {
	names, err := c.Forecasts(ctx)
	if err != nil {
		return nil, err
	}
	return ForecastIDs(names), nil
}

func truncMonth(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 7 {
		return s[:7]
	}
	return s
}
