package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	forecastview "github.com/aouyang1/go-forecastview"
	"github.com/aouyang1/go-forecastview/dashboard"
	"github.com/aouyang1/go-forecastview/observability"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Client is the query service as seen by the http handlers.
type Client interface {
	dashboard.Client
	Health(ctx context.Context) error
}

type Options struct {
	Addr            string
	ShutdownTimeout time.Duration

	Client    Client
	Dashboard *dashboard.Dashboard

	// View is the base for every stateless render. Width, shared domain and holidays may be
	// overridden per request.
	View *forecastview.Options

	Logger  zerolog.Logger
	Metrics *observability.Metrics

	// Gatherer backs /metrics, the default registry when nil.
	Gatherer prometheus.Gatherer
}

// Server serves the rendered panels and the dashboard over http.
type Server struct {
	echo *echo.Echo
	opt  Options
	log  zerolog.Logger
}

func New(opt Options) (*Server, error) {
	if opt.Client == nil {
		return nil, errors.New("server needs a client")
	}
	if opt.View == nil {
		opt.View = forecastview.NewDefaultOptions()
	}
	if opt.ShutdownTimeout <= 0 {
		opt.ShutdownTimeout = 10 * time.Second
	}
	gatherer := opt.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	log := opt.Logger.With().Str("component", "server").Logger()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = jsonSerializer{}
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		if werr := ErrorResponse(c, err); werr != nil {
			log.Warn().Err(werr).Msg("unable to write error response")
		}
	}

	e.Use(recoverer(log))
	e.Use(requestLogging(log))

	s := &Server{
		echo: e,
		opt:  opt,
		log:  log,
	}
	s.registerRoutes(e)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	return s, nil
}

// Handler exposes the router, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves until ctx is done and then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.opt.Addr).Msg("http server listening")
		if err := s.echo.Start(s.opt.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server, %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	sctx, cancel := context.WithTimeout(context.Background(), s.opt.ShutdownTimeout)
	defer cancel()
	if err := s.echo.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutdown error, %w", err)
	}
	s.log.Info().Msg("http server stopped")
	return nil
}
