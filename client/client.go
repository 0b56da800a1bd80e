package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aouyang1/go-forecastview/observability"
	"github.com/aouyang1/go-forecastview/timeseries"
	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

const DefaultBaseURL = "https://tsf-demand-back.onrender.com"

const (
	EndpointForecasts = "forecasts"
	EndpointMonths    = "months"
	EndpointQuery     = "query"
	EndpointHealth    = "health"
)

const (
	outcomeSuccess = "success"
	outcomeError   = "error"
	outcomeStatus  = "status"
)

var (
	ErrNoForecast      = errors.New("forecast name is required")
	ErrInvalidResponse = errors.New("invalid response body")
)

// StatusError is returned for any non 2xx response.
type StatusError struct {
	Endpoint string
	Code     int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d", e.Code)
}

type Options struct {
	BaseURL    string
	Timeout    time.Duration
	RetryCount int
	RetryWait  time.Duration
	Logger     zerolog.Logger
	Metrics    *observability.Metrics
}

func NewDefaultOptions() *Options {
	return &Options{
		BaseURL:    DefaultBaseURL,
		Timeout:    30 * time.Second,
		RetryCount: 2,
		RetryWait:  500 * time.Millisecond,
		Logger:     zerolog.Nop(),
	}
}

// QueryRequest selects the rows of a forecast for span months starting at month.
type QueryRequest struct {
	ForecastName string `json:"forecast_name"`
	Month        string `json:"month"`
	Span         int    `json:"span"`
}

// Normalize truncates the month to YYYY-MM and defaults the span to one month.
func (q QueryRequest) Normalize() QueryRequest {
	q.ForecastName = strings.TrimSpace(q.ForecastName)
	q.Month = strings.TrimSpace(q.Month)
	if len(q.Month) > 7 {
		q.Month = q.Month[:7]
	}
	if q.Span < 1 {
		q.Span = 1
	}
	return q
}

// Client talks to the forecast query service.
type Client struct {
	rc      *resty.Client
	baseURL string
	log     zerolog.Logger
	metrics *observability.Metrics
}

// New creates a Client using the provided options. If no options are provided a default is used.
func New(opt *Options) *Client {
	if opt == nil {
		opt = NewDefaultOptions()
	}
	baseURL := strings.TrimRight(opt.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	rc := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(opt.Timeout).
		SetRetryCount(opt.RetryCount).
		SetRetryWaitTime(opt.RetryWait).
		SetHeader("Accept", "application/json").
		SetJSONMarshaler(json.Marshal).
		SetJSONUnmarshaler(json.Unmarshal).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err == nil && r != nil && r.StatusCode() >= http.StatusInternalServerError
		})
	if opt.RetryWait > 0 {
		rc.SetRetryMaxWaitTime(4 * opt.RetryWait)
	}

	return &Client{
		rc:      rc,
		baseURL: baseURL,
		log:     opt.Logger.With().Str("component", "client").Logger(),
		metrics: opt.Metrics,
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Forecasts lists the forecast names known to the service.
func (c *Client) Forecasts(ctx context.Context) ([]string, error) {
	body, err := c.do(ctx, EndpointForecasts, func(r *resty.Request) (*resty.Response, error) {
		return r.Get("/views/forecasts")
	})
	if err != nil {
		return nil, err
	}
	return decodeStrings(body)
}

// Months lists the YYYY-MM months available for a forecast.
func (c *Client) Months(ctx context.Context, forecast string) ([]string, error) {
	forecast = strings.TrimSpace(forecast)
	if forecast == "" {
		return nil, ErrNoForecast
	}
	body, err := c.do(ctx, EndpointMonths, func(r *resty.Request) (*resty.Response, error) {
		return r.SetQueryParam("forecast_name", forecast).Get("/views/months")
	})
	if err != nil {
		return nil, err
	}
	return decodeStrings(body)
}

// Query fetches the rows for a request. The service answers either {"rows": [...]} or a bare
// array, both are accepted.
func (c *Client) Query(ctx context.Context, req QueryRequest) ([]timeseries.QueryRow, error) {
	req = req.Normalize()
	if req.ForecastName == "" {
		return nil, ErrNoForecast
	}
	body, err := c.do(ctx, EndpointQuery, func(r *resty.Request) (*resty.Response, error) {
		return r.SetHeader("Content-Type", "application/json").SetBody(req).Post("/views/query")
	})
	if err != nil {
		return nil, err
	}
	return decodeRows(body)
}

// Health succeeds when the service answers with any 2xx status.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.do(ctx, EndpointHealth, func(r *resty.Request) (*resty.Response, error) {
		return r.Get("/health")
	})
	return err
}

func (c *Client) do(ctx context.Context, endpoint string, send func(*resty.Request) (*resty.Response, error)) ([]byte, error) {
	start := time.Now()
	resp, err := send(c.rc.R().SetContext(ctx))
	elapsed := time.Since(start)

	if c.metrics != nil {
		c.metrics.UpstreamDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
	}

	if err != nil {
		c.observe(endpoint, outcomeError)
		c.log.Warn().Err(err).Str("endpoint", endpoint).Dur("elapsed", elapsed).Msg("request failed")
		return nil, fmt.Errorf("%s request failed, %w", endpoint, err)
	}

	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		c.observe(endpoint, outcomeStatus)
		c.log.Warn().Str("endpoint", endpoint).Int("status", resp.StatusCode()).Dur("elapsed", elapsed).Msg("unexpected status")
		return nil, &StatusError{Endpoint: endpoint, Code: resp.StatusCode(), Body: resp.String()}
	}

	c.observe(endpoint, outcomeSuccess)
	c.log.Debug().Str("endpoint", endpoint).Int("status", resp.StatusCode()).Dur("elapsed", elapsed).Int("bytes", len(resp.Body())).Msg("request done")
	return resp.Body(), nil
}

func (c *Client) observe(endpoint, outcome string) {
	if c.metrics == nil {
		return
	}
	c.metrics.UpstreamRequests.WithLabelValues(endpoint, outcome).Inc()
}

// decodeStrings reads a json array and stringifies every element. A body that is not an array
// yields an empty list.
func decodeStrings(body []byte) ([]string, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '[' {
		return []string{}, nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w, %w", ErrInvalidResponse, err)
	}
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		var s string
		if err := json.Unmarshal(r, &s); err == nil {
			out = append(out, s)
			continue
		}
		out = append(out, string(bytes.TrimSpace(r)))
	}
	return out, nil
}

type queryResponse struct {
	Rows []timeseries.QueryRow `json:"rows"`
}

func decodeRows(body []byte) ([]timeseries.QueryRow, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return []timeseries.QueryRow{}, nil
	}

	switch body[0] {
	case '[':
		var rows []timeseries.QueryRow
		if err := json.Unmarshal(body, &rows); err != nil {
			return nil, fmt.Errorf("%w, %w", ErrInvalidResponse, err)
		}
		return rows, nil
	case '{':
		var res queryResponse
		if err := json.Unmarshal(body, &res); err != nil {
			return nil, fmt.Errorf("%w, %w", ErrInvalidResponse, err)
		}
		if res.Rows == nil {
			res.Rows = []timeseries.QueryRow{}
		}
		return res.Rows, nil
	default:
		return nil, fmt.Errorf("body starts with %q, %w", body[0], ErrInvalidResponse)
	}
}
