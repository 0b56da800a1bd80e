package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/aouyang1/go-forecastview/dashboard"
	"github.com/aouyang1/go-forecastview/observability"
	"github.com/aouyang1/go-forecastview/server"
	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		addr string
		load bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard, panel renders and metrics over http",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a.metrics = observability.NewMetrics()
			c := a.client()

			dash, err := dashboard.New(dashboard.Options{
				Client:  c,
				View:    a.viewOptions(),
				Logger:  a.log,
				Metrics: a.metrics,
			})
			if err != nil {
				return err
			}
			if load {
				if _, err := dash.LoadForecasts(ctx); err != nil {
					a.log.Warn().Err(err).Msg("initial forecast load failed")
				}
			}

			if addr == "" {
				addr = a.cfg.HTTPAddr
			}
			srv, err := server.New(server.Options{
				Addr:            addr,
				ShutdownTimeout: a.cfg.ShutdownTimeout,
				Client:          c,
				Dashboard:       dash,
				View:            a.viewOptions(),
				Logger:          a.log,
				Metrics:         a.metrics,
			})
			if err != nil {
				return err
			}
			a.log.Info().
				Str("backend", c.BaseURL()).
				Float64("width", a.cfg.ChartWidth).
				Bool("shared_domain", a.cfg.Shared()).
				Msg("starting forecastview")
			return srv.Start(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, defaults to the configured http_addr")
	cmd.Flags().BoolVar(&load, "load", true, "load the forecast list on startup")
	return cmd
}
