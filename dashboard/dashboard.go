package dashboard

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	forecastview "github.com/aouyang1/go-forecastview"
	"github.com/aouyang1/go-forecastview/client"
	"github.com/aouyang1/go-forecastview/observability"
	"github.com/aouyang1/go-forecastview/timeseries"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

const (
	MinSpan     = 1
	MaxSpan     = 3
	DefaultSpan = 1
)

var (
	ErrSuperseded      = errors.New("superseded by a newer request")
	ErrNoSelection     = errors.New("forecast and month must be selected")
	ErrUnknownForecast = errors.New("unknown forecast")
	ErrUnknownMonth    = errors.New("unknown month")
	ErrInvalidSpan     = errors.New("span must be between 1 and 3 months")
)

// Client is the subset of the query service the dashboard needs.
type Client interface {
	Forecasts(ctx context.Context) ([]string, error)
	Months(ctx context.Context, forecast string) ([]string, error)
	Query(ctx context.Context, req client.QueryRequest) ([]timeseries.QueryRow, error)
}

type Options struct {
	Client  Client
	View    *forecastview.Options
	Clock   clockwork.Clock
	Logger  zerolog.Logger
	Metrics *observability.Metrics
}

// Snapshot is a copy of the dashboard at one point in time.
type Snapshot struct {
	State      State                 `json:"state"`
	Forecasts  []string              `json:"forecasts"`
	Forecast   string                `json:"forecast"`
	Months     []string              `json:"months"`
	Month      string                `json:"month"`
	Span       int                   `json:"span"`
	Rows       int                   `json:"rows"`
	Status     string                `json:"status"`
	Error      string                `json:"error,omitempty"`
	RenderedAt *time.Time            `json:"rendered_at,omitempty"`
	Results    *forecastview.Results `json:"results,omitempty"`
}

// Dashboard drives forecast and month selection, runs queries and keeps the rendered view.
// Only the most recent request may change the dashboard, responses to older ones are dropped
// with ErrSuperseded.
type Dashboard struct {
	client  Client
	clock   clockwork.Clock
	log     zerolog.Logger
	metrics *observability.Metrics

	mu     sync.Mutex
	view   *forecastview.View
	state  State
	gen    uint64
	cancel context.CancelFunc

	forecasts  []string
	forecast   string
	months     []string
	month      string
	span       int
	rows       int
	err        error
	renderedAt time.Time
}

func New(opt Options) (*Dashboard, error) {
	if opt.Client == nil {
		return nil, errors.New("dashboard needs a client")
	}
	view, err := forecastview.New(opt.View)
	if err != nil {
		return nil, fmt.Errorf("unable to create view, %w", err)
	}
	clock := opt.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	d := &Dashboard{
		client:  opt.Client,
		clock:   clock,
		log:     opt.Logger.With().Str("component", "dashboard").Logger(),
		metrics: opt.Metrics,
		view:    view,
		span:    DefaultSpan,
	}
	d.set(StateIdle)
	return d, nil
}

// LoadForecasts fetches the forecast list, selects the first forecast and loads its months.
func (d *Dashboard) LoadForecasts(ctx context.Context) (Snapshot, error) {
	d.mu.Lock()
	if err := d.transition(StateLoadingForecasts); err != nil {
		d.mu.Unlock()
		return d.Snapshot(), err
	}
	gen, lctx, done := d.begin(ctx)
	d.mu.Unlock()
	defer done()

	names, err := d.client.Forecasts(lctx)

	d.mu.Lock()
	if gen != d.gen {
		d.mu.Unlock()
		return d.superseded("forecasts")
	}
	if err != nil {
		d.fail(err)
		d.mu.Unlock()
		return d.Snapshot(), err
	}

	d.forecasts = names
	d.months = nil
	d.month = ""
	if len(names) == 0 {
		d.forecast = ""
		d.set(StateReady)
		d.mu.Unlock()
		return d.Snapshot(), nil
	}
	d.forecast = names[0]
	d.set(StateLoadingMonths)
	forecast := d.forecast
	d.mu.Unlock()

	return d.loadMonths(lctx, gen, forecast)
}

// SelectForecast switches forecast and loads its months, selecting the first one.
func (d *Dashboard) SelectForecast(ctx context.Context, name string) (Snapshot, error) {
	d.mu.Lock()
	if !slices.Contains(d.forecasts, name) {
		d.mu.Unlock()
		return d.Snapshot(), fmt.Errorf("%q, %w", name, ErrUnknownForecast)
	}
	if err := d.transition(StateLoadingMonths); err != nil {
		d.mu.Unlock()
		return d.Snapshot(), err
	}
	gen, lctx, done := d.begin(ctx)
	d.forecast = name
	d.months = nil
	d.month = ""
	d.mu.Unlock()
	defer done()

	return d.loadMonths(lctx, gen, name)
}

func (d *Dashboard) loadMonths(ctx context.Context, gen uint64, forecast string) (Snapshot, error) {
	months, err := d.client.Months(ctx, forecast)

	d.mu.Lock()
	defer d.mu.Unlock()
	if gen != d.gen {
		return d.supersededLocked("months")
	}
	if err != nil {
		d.fail(err)
		return d.snapshotLocked(), err
	}

	d.months = months
	d.month = ""
	if len(months) > 0 {
		d.month = months[0]
	}
	d.set(StateReady)
	return d.snapshotLocked(), nil
}

// SelectMonth picks one of the loaded months.
func (d *Dashboard) SelectMonth(month string) (Snapshot, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !slices.Contains(d.months, month) {
		return d.snapshotLocked(), fmt.Errorf("%q, %w", month, ErrUnknownMonth)
	}
	d.month = month
	return d.snapshotLocked(), nil
}

func (d *Dashboard) SelectSpan(span int) (Snapshot, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if span < MinSpan || span > MaxSpan {
		return d.snapshotLocked(), fmt.Errorf("received %d, %w", span, ErrInvalidSpan)
	}
	d.span = span
	return d.snapshotLocked(), nil
}

// Run queries the selected forecast, month and span and renders the rows. A run cancels any
// request still in flight.
func (d *Dashboard) Run(ctx context.Context) (Snapshot, error) {
	d.mu.Lock()
	if d.forecast == "" || d.month == "" {
		d.mu.Unlock()
		return d.Snapshot(), ErrNoSelection
	}
	if err := d.transition(StateQuerying); err != nil {
		d.mu.Unlock()
		return d.Snapshot(), err
	}
	gen, qctx, done := d.begin(ctx)
	req := client.QueryRequest{ForecastName: d.forecast, Month: d.month, Span: d.span}.Normalize()
	d.mu.Unlock()
	defer done()

	d.log.Debug().Str("forecast", req.ForecastName).Str("month", req.Month).Int("span", req.Span).Uint64("generation", gen).Msg("running query")
	rows, err := d.client.Query(qctx, req)

	d.mu.Lock()
	defer d.mu.Unlock()
	if gen != d.gen {
		return d.supersededLocked("query")
	}
	if err != nil {
		d.fail(err)
		return d.snapshotLocked(), err
	}

	start := d.clock.Now()
	res, err := d.view.Render(rows, req.Month, req.Span)
	if d.metrics != nil {
		d.metrics.RenderDuration.WithLabelValues("results").Observe(d.clock.Since(start).Seconds())
	}
	if err != nil {
		d.fail(err)
		return d.snapshotLocked(), err
	}
	if d.metrics != nil {
		d.metrics.RenderedRows.Observe(float64(len(res.Rows)))
	}

	d.rows = len(rows)
	d.err = nil
	d.renderedAt = d.clock.Now()
	d.set(StateRendered)
	d.log.Info().Str("forecast", req.ForecastName).Str("month", req.Month).Int("span", req.Span).Int("rows", d.rows).Msg("rendered")
	return d.snapshotLocked(), nil
}

// Resize redraws the current render at a new width. Before the first render the width is
// remembered for the next one.
func (d *Dashboard) Resize(width float64) (Snapshot, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, err := d.view.Resize(width); err != nil && !errors.Is(err, forecastview.ErrNotRendered) {
		return d.snapshotLocked(), err
	}
	return d.snapshotLocked(), nil
}

func (d *Dashboard) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

func (d *Dashboard) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.snapshotLocked()
}

func (d *Dashboard) snapshotLocked() Snapshot {
	s := Snapshot{
		State:     d.state,
		Forecasts: append([]string{}, d.forecasts...),
		Forecast:  d.forecast,
		Months:    append([]string{}, d.months...),
		Month:     d.month,
		Span:      d.span,
		Rows:      d.rows,
		Status:    d.status(),
	}
	if d.err != nil {
		s.Error = d.err.Error()
	}
	if d.state == StateRendered {
		t := d.renderedAt
		s.RenderedAt = &t
		s.Results = d.view.Results()
	}
	return s
}

func (d *Dashboard) status() string {
	switch d.state {
	case StateIdle:
		return "Idle"
	case StateLoadingForecasts:
		return "Loading forecasts"
	case StateLoadingMonths:
		return "Loading months"
	case StateReady:
		if len(d.forecasts) == 0 {
			return "No forecasts"
		}
		return "Ready"
	case StateQuerying:
		return "Querying"
	case StateRendered:
		return fmt.Sprintf("Rows: %d", d.rows)
	case StateErrored:
		if d.err != nil {
			return d.err.Error()
		}
		return "Error"
	default:
		return d.state.String()
	}
}

// begin starts a new request generation, cancelling the previous request. Callers hold mu.
func (d *Dashboard) begin(ctx context.Context) (uint64, context.Context, context.CancelFunc) {
	if d.cancel != nil {
		d.cancel()
	}
	d.gen++
	rctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	return d.gen, rctx, cancel
}

func (d *Dashboard) transition(to State) error {
	if !d.state.CanTransition(to) {
		return fmt.Errorf("from %s to %s, %w", d.state, to, ErrInvalidTransition)
	}
	d.set(to)
	return nil
}

func (d *Dashboard) set(s State) {
	d.state = s
	if s != StateErrored {
		d.err = nil
	}
	if d.metrics != nil {
		d.metrics.SetState(s.String(), stateNames())
	}
}

func (d *Dashboard) fail(err error) {
	d.set(StateErrored)
	d.err = err
	d.log.Warn().Err(err).Msg("dashboard request failed")
}

func (d *Dashboard) superseded(op string) (Snapshot, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.supersededLocked(op)
}

func (d *Dashboard) supersededLocked(op string) (Snapshot, error) {
	if d.metrics != nil {
		d.metrics.SupersededRuns.Inc()
	}
	d.log.Debug().Str("op", op).Msg("dropping stale response")
	return d.snapshotLocked(), fmt.Errorf("%s, %w", op, ErrSuperseded)
}
