package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
	"gopkg.in/yaml.v3"
)

const EnvPrefix = "FORECASTVIEW_"

var ErrInvalidConfig = errors.New("invalid config")

// Config holds everything the server and the cli need. Values are read from an optional yaml
// file, then FORECASTVIEW_ prefixed environment variables, then defaults.
type Config struct {
	// Query service
	BackendURL     string        `yaml:"backend_url" env:"BACKEND_URL,overwrite" default:"https://tsf-demand-back.onrender.com" validate:"required,url"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"REQUEST_TIMEOUT,overwrite" default:"30s" validate:"gt=0"`
	RetryCount     int           `yaml:"retry_count" env:"RETRY_COUNT,overwrite" default:"2" validate:"gte=0,lte=10"`
	RetryWait      time.Duration `yaml:"retry_wait" env:"RETRY_WAIT,overwrite" default:"500ms" validate:"gte=0"`

	// HTTP server
	HTTPAddr        string        `yaml:"http_addr" env:"HTTP_ADDR,overwrite" default:":8080" validate:"required"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT,overwrite" default:"10s" validate:"gt=0"`

	// Logging
	LogLevel  string `yaml:"log_level" env:"LOG_LEVEL,overwrite" default:"info" validate:"oneof=debug info warn error"`
	LogFormat string `yaml:"log_format" env:"LOG_FORMAT,overwrite" default:"json" validate:"oneof=json console"`

	// Rendering
	ChartWidth   float64  `yaml:"chart_width" env:"CHART_WIDTH,overwrite" default:"960" validate:"gt=0"`
	SharedDomain *bool    `yaml:"shared_domain" env:"SHARED_DOMAIN,overwrite,noinit" default:"true"`
	Holidays     []string `yaml:"holidays" env:"HOLIDAYS,overwrite" default:"[\"new_year\",\"memorial\",\"independence\",\"labor\",\"thanksgiving\",\"christmas\"]" validate:"dive,required"`
}

// Sources are where Load reads from. Empty file names are skipped.
type Sources struct {
	// EnvFile is a dotenv file whose entries apply when the variable is not already set.
	EnvFile string

	// ConfigFile is a yaml file.
	ConfigFile string

	// Lookuper resolves environment variables, the process environment when nil.
	Lookuper envconfig.Lookuper
}

// Load reads the optional .env file in the working directory and the yaml file at path.
func Load(ctx context.Context, path string) (*Config, error) {
	return LoadFrom(ctx, Sources{EnvFile: ".env", ConfigFile: path})
}

func LoadFrom(ctx context.Context, src Sources) (*Config, error) {
	var cfg Config

	if src.ConfigFile != "" {
		b, err := os.ReadFile(src.ConfigFile)
		if err != nil {
			return nil, fmt.Errorf("read config, %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("parse config, %w", err)
		}
	}

	lookuper := src.Lookuper
	if lookuper == nil {
		lookuper = envconfig.OsLookuper()
	}
	if src.EnvFile != "" {
		dotenv, err := godotenv.Read(src.EnvFile)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read env file, %w", err)
		default:
			lookuper = envconfig.MultiLookuper(lookuper, envconfig.MapLookuper(dotenv))
		}
	}

	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: envconfig.PrefixLookuper(EnvPrefix, lookuper),
	}); err != nil {
		return nil, fmt.Errorf("process env, %w", err)
	}

	if err := defaults.Set(&cfg); err != nil {
		return nil, fmt.Errorf("set defaults, %w", err)
	}
	cfg.BackendURL = strings.TrimRight(strings.TrimSpace(cfg.BackendURL), "/")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w, %w", ErrInvalidConfig, err)
	}
	return nil
}

// Shared reports whether panels share one y domain.
func (c *Config) Shared() bool {
	return c.SharedDomain == nil || *c.SharedDomain
}
