package main

import (
	"fmt"
	"io"

	forecastview "github.com/aouyang1/go-forecastview"
	"github.com/aouyang1/go-forecastview/client"
	"github.com/aouyang1/go-forecastview/config"
	"github.com/aouyang1/go-forecastview/logger"
	"github.com/aouyang1/go-forecastview/observability"
	"github.com/pkg/profile"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// app carries the persistent flags and everything built from them before a subcommand runs.
type app struct {
	configPath string
	logLevel   string
	backendURL string
	profile    string

	out     io.Writer
	cfg     *config.Config
	log     zerolog.Logger
	metrics *observability.Metrics
	stop    func()
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out}

	root := &cobra.Command{
		Use:           "forecastview",
		Short:         "Compare forecasts against actuals as aligned panels",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.stop != nil {
				a.stop()
			}
		},
	}
	root.SetOut(out)

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "yaml config file")
	flags.StringVar(&a.logLevel, "log-level", "", "log level override: debug, info, warn, error")
	flags.StringVar(&a.backendURL, "backend", "", "query service base url override")
	flags.StringVar(&a.profile, "profile", "", "write a cpu or mem profile to the working directory")

	root.AddCommand(
		newServeCmd(a),
		newRenderCmd(a),
		newForecastsCmd(a),
		newMonthsCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(cmd.Context(), a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if a.backendURL != "" {
		cfg.BackendURL = a.backendURL
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	log, err := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
	if err != nil {
		return err
	}
	a.log = log

	switch a.profile {
	case "":
	case "cpu":
		a.stop = profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.Quiet).Stop
	case "mem":
		a.stop = profile.Start(profile.MemProfile, profile.ProfilePath("."), profile.Quiet).Stop
	default:
		return fmt.Errorf("unknown profile %q, expected cpu or mem", a.profile)
	}
	return nil
}

func (a *app) client() *client.Client {
	return client.New(&client.Options{
		BaseURL:    a.cfg.BackendURL,
		Timeout:    a.cfg.RequestTimeout,
		RetryCount: a.cfg.RetryCount,
		RetryWait:  a.cfg.RetryWait,
		Logger:     a.log,
		Metrics:    a.metrics,
	})
}

// viewOptions are the default panels sized and scaled from the config.
func (a *app) viewOptions() *forecastview.Options {
	return viewOptionsFrom(a.cfg)
}

func viewOptionsFrom(cfg *config.Config) *forecastview.Options {
	opt := forecastview.NewDefaultOptions()
	opt.Width = cfg.ChartWidth
	opt.SharedDomain = cfg.Shared()
	opt.Holidays = append([]string{}, cfg.Holidays...)
	return opt
}
