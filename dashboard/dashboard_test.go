package dashboard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	forecastview "github.com/aouyang1/go-forecastview"
	"github.com/aouyang1/go-forecastview/client"
	"github.com/aouyang1/go-forecastview/observability"
	"github.com/aouyang1/go-forecastview/timeseries"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	mu        sync.Mutex
	forecasts []string
	months    map[string][]string
	err       error
	queryFn   func(ctx context.Context, req client.QueryRequest) ([]timeseries.QueryRow, error)
	queries   []client.QueryRequest
}

func (f *fakeClient) Forecasts(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.forecasts, nil
}

func (f *fakeClient) Months(ctx context.Context, forecast string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.months[forecast], nil
}

func (f *fakeClient) Query(ctx context.Context, req client.QueryRequest) ([]timeseries.QueryRow, error) {
	f.mu.Lock()
	f.queries = append(f.queries, req)
	fn := f.queryFn
	err := f.err
	f.mu.Unlock()

	if err != nil {
		return nil, err
	}
	if fn != nil {
		return fn(ctx, req)
	}
	return sampleRows(), nil
}

func ptr(v float64) *float64 {
	return &v
}

func sampleRows() []timeseries.QueryRow {
	return []timeseries.QueryRow{
		{Date: "2025-03-05", Fields: timeseries.Fields{Value: ptr(42)}},
		{Date: "2025-03-06", Fields: timeseries.Fields{Forecast: ptr(40), CI95Low: ptr(30), CI95High: ptr(50)}},
	}
}

func newFake() *fakeClient {
	return &fakeClient{
		forecasts: []string{"demand", "returns"},
		months: map[string][]string{
			"demand":  {"2025-03", "2025-04"},
			"returns": {"2025-06"},
		},
	}
}

func newTestDashboard(t *testing.T, c Client) (*Dashboard, *clockwork.FakeClock, *observability.Metrics) {
	t.Helper()
	clock := clockwork.NewFakeClockAt(time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))
	metrics := observability.NewMetricsForTesting()
	d, err := New(Options{
		Client:  c,
		Clock:   clock,
		Logger:  zerolog.Nop(),
		Metrics: metrics,
	})
	require.NoError(t, err)
	return d, clock, metrics
}

func TestStateTransitions(t *testing.T) {
	testData := map[string]struct {
		from     State
		to       State
		expected bool
	}{
		"idle to loading":       {StateIdle, StateLoadingForecasts, true},
		"idle to querying":      {StateIdle, StateQuerying, false},
		"ready to querying":     {StateReady, StateQuerying, true},
		"querying to rendered":  {StateQuerying, StateRendered, true},
		"ready to rendered":     {StateReady, StateRendered, false},
		"errored to querying":   {StateErrored, StateQuerying, true},
		"loading months to run": {StateLoadingMonths, StateQuerying, false},
		"rendered to idle":      {StateRendered, StateIdle, false},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, td.expected, td.from.CanTransition(td.to))
		})
	}
	assert.Equal(t, "loading_months", StateLoadingMonths.String())
	assert.Equal(t, "state(99)", State(99).String())
}

func TestLoadForecastsSelectsFirst(t *testing.T) {
	d, _, metrics := newTestDashboard(t, newFake())
	assert.Equal(t, StateIdle, d.State())

	snap, err := d.LoadForecasts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateReady, snap.State)
	assert.Equal(t, []string{"demand", "returns"}, snap.Forecasts)
	assert.Equal(t, "demand", snap.Forecast)
	assert.Equal(t, []string{"2025-03", "2025-04"}, snap.Months)
	assert.Equal(t, "2025-03", snap.Month)
	assert.Equal(t, 1, snap.Span)
	assert.Equal(t, "Ready", snap.Status)
	assert.Nil(t, snap.Results)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.DashboardState.WithLabelValues("ready")))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.DashboardState.WithLabelValues("idle")))
}

func TestLoadForecastsEmpty(t *testing.T) {
	d, _, _ := newTestDashboard(t, &fakeClient{})
	snap, err := d.LoadForecasts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateReady, snap.State)
	assert.Empty(t, snap.Forecast)
	assert.Equal(t, "No forecasts", snap.Status)

	_, err = d.Run(context.Background())
	assert.ErrorIs(t, err, ErrNoSelection)
}

func TestSelectForecast(t *testing.T) {
	d, _, _ := newTestDashboard(t, newFake())
	_, err := d.LoadForecasts(context.Background())
	require.NoError(t, err)

	snap, err := d.SelectForecast(context.Background(), "returns")
	require.NoError(t, err)
	assert.Equal(t, "returns", snap.Forecast)
	assert.Equal(t, []string{"2025-06"}, snap.Months)
	assert.Equal(t, "2025-06", snap.Month)

	_, err = d.SelectForecast(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrUnknownForecast)
}

func TestSelections(t *testing.T) {
	d, _, _ := newTestDashboard(t, newFake())
	_, err := d.SelectForecast(context.Background(), "demand")
	assert.ErrorIs(t, err, ErrUnknownForecast)

	_, err = d.LoadForecasts(context.Background())
	require.NoError(t, err)

	snap, err := d.SelectMonth("2025-04")
	require.NoError(t, err)
	assert.Equal(t, "2025-04", snap.Month)

	_, err = d.SelectMonth("2026-01")
	assert.ErrorIs(t, err, ErrUnknownMonth)

	testData := map[string]struct {
		span int
		err  error
	}{
		"one":   {span: 1},
		"three": {span: 3},
		"zero":  {span: 0, err: ErrInvalidSpan},
		"four":  {span: 4, err: ErrInvalidSpan},
	}
	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			_, err := d.SelectSpan(td.span)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, td.span, d.Snapshot().Span)
		})
	}
}

func TestRun(t *testing.T) {
	fake := newFake()
	d, clock, metrics := newTestDashboard(t, fake)

	_, err := d.Run(context.Background())
	assert.ErrorIs(t, err, ErrNoSelection)

	_, err = d.LoadForecasts(context.Background())
	require.NoError(t, err)
	_, err = d.SelectSpan(2)
	require.NoError(t, err)

	snap, err := d.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateRendered, snap.State)
	assert.Equal(t, "Rows: 2", snap.Status)
	assert.Equal(t, 2, snap.Rows)
	require.NotNil(t, snap.RenderedAt)
	assert.Equal(t, clock.Now(), *snap.RenderedAt)
	require.NotNil(t, snap.Results)
	assert.Equal(t, "2025-03", snap.Results.StartMonth)
	assert.Equal(t, 2, snap.Results.Span)
	assert.Len(t, snap.Results.Rows, 7+31+30)

	require.Len(t, fake.queries, 1)
	assert.Equal(t, client.QueryRequest{ForecastName: "demand", Month: "2025-03", Span: 2}, fake.queries[0])
	assert.Equal(t, 1, testutil.CollectAndCount(metrics.RenderDuration))
}

func TestRunDayPrecisionMonth(t *testing.T) {
	fake := newFake()
	fake.months["demand"] = []string{"2025-03-01", "2025-04-01"}
	d, _, _ := newTestDashboard(t, fake)

	snap, err := d.LoadForecasts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2025-03-01", snap.Month)

	snap, err = d.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateRendered, snap.State)
	require.NotNil(t, snap.Results)
	assert.Equal(t, "2025-03", snap.Results.StartMonth)
	assert.Len(t, snap.Results.Rows, 7+31)

	require.Len(t, fake.queries, 1)
	assert.Equal(t, client.QueryRequest{ForecastName: "demand", Month: "2025-03", Span: 1}, fake.queries[0])
}

func TestRunError(t *testing.T) {
	fake := newFake()
	d, _, _ := newTestDashboard(t, fake)
	_, err := d.LoadForecasts(context.Background())
	require.NoError(t, err)

	fake.mu.Lock()
	fake.err = &client.StatusError{Endpoint: client.EndpointQuery, Code: 503}
	fake.mu.Unlock()

	snap, err := d.Run(context.Background())
	var se *client.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, StateErrored, snap.State)
	assert.Equal(t, "HTTP 503", snap.Status)
	assert.Equal(t, "HTTP 503", snap.Error)
	assert.Nil(t, snap.Results)

	fake.mu.Lock()
	fake.err = nil
	fake.mu.Unlock()

	snap, err = d.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateRendered, snap.State)
	assert.Empty(t, snap.Error)
}

func TestLoadForecastsError(t *testing.T) {
	fake := newFake()
	fake.err = errors.New("connection refused")
	d, _, _ := newTestDashboard(t, fake)

	snap, err := d.LoadForecasts(context.Background())
	require.Error(t, err)
	assert.Equal(t, StateErrored, snap.State)
	assert.Equal(t, "connection refused", snap.Status)
}

func TestRunSuperseded(t *testing.T) {
	fake := newFake()
	d, _, metrics := newTestDashboard(t, fake)
	_, err := d.LoadForecasts(context.Background())
	require.NoError(t, err)

	started := make(chan struct{})
	release := make(chan struct{})
	var calls int
	fake.queryFn = func(ctx context.Context, req client.QueryRequest) ([]timeseries.QueryRow, error) {
		calls++
		if calls == 1 {
			close(started)
			<-release
			assert.ErrorIs(t, ctx.Err(), context.Canceled)
			return []timeseries.QueryRow{{Date: "2025-03-01", Fields: timeseries.Fields{Value: ptr(1)}}}, nil
		}
		return sampleRows(), nil
	}

	type result struct {
		snap Snapshot
		err  error
	}
	first := make(chan result, 1)
	go func() {
		snap, err := d.Run(context.Background())
		first <- result{snap, err}
	}()
	<-started

	_, err = d.SelectMonth("2025-04")
	require.NoError(t, err)
	second, err := d.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateRendered, second.State)
	assert.Equal(t, "2025-04", second.Results.StartMonth)

	close(release)
	res := <-first
	assert.ErrorIs(t, res.err, ErrSuperseded)

	snap := d.Snapshot()
	assert.Equal(t, StateRendered, snap.State)
	assert.Equal(t, "2025-04", snap.Results.StartMonth)
	assert.Equal(t, 2, snap.Rows)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.SupersededRuns))
}

func TestResize(t *testing.T) {
	d, _, _ := newTestDashboard(t, newFake())

	_, err := d.Resize(1200)
	require.NoError(t, err)
	_, err = d.Resize(-1)
	assert.Error(t, err)

	_, err = d.LoadForecasts(context.Background())
	require.NoError(t, err)
	snap, err := d.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1200.0, snap.Results.Viewport.Width)

	snap, err = d.Resize(50)
	assert.ErrorIs(t, err, forecastview.ErrInvalidWidth)
	assert.Equal(t, 1200.0, snap.Results.Viewport.Width)

	snap, err = d.Resize(2000)
	require.NoError(t, err)
	assert.Equal(t, 2000.0, snap.Results.Viewport.Width)
	assert.Equal(t, 340.0, snap.Results.Viewport.Height)
}

func TestNewRequiresClient(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}
