// Package config
package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/amirphl/simple-indicators/internal/indicator"
	"github.com/amirphl/simple-indicators/internal/tfutils"
	"github.com/amirphl/simple-indicators/internal/validation"
)

/*
YAML config example:
loader: "Wallex"
wallex_api_key: "..."
symbols: ["wallex:btcusdt", "wallex:ethusdt"]
interval: "1h"
limit: 500
persist: true
db_conn_str: "host=localhost port=5432 user=postgres password=postgres dbname=candles sslmode=disable"
log_level: "info"
metrics_addr: ":9100"
indicators:
  - { family: "SMA", user_name: "sma_20", src: "close", period: 20 }
  - { family: "KAMA", user_name: "kama_10", src: "close", period: 10, fast: 2, slow: 30 }
  - { family: "ESMA", user_name: "esma_5", src: "c", period: 5, alpha: 0.3 }
*/

type Config struct {
	Loader         string           `yaml:"loader" validate:"oneof=Postgres Wallex"`
	Symbols        []string         `yaml:"symbols" validate:"min=1"`
	Interval       string           `yaml:"interval" validate:"required"`
	Limit          int              `yaml:"limit" validate:"gt=0"`
	From           time.Time        `yaml:"from"`
	To             time.Time        `yaml:"to"`
	Source         string           `yaml:"source"`
	Indicators     []indicator.Spec `yaml:"indicators" validate:"min=1"`
	WallexAPIKey   string           `yaml:"wallex_api_key"`
	RequestTimeout time.Duration    `yaml:"request_timeout" validate:"gt=0"`
	Pacing         time.Duration    `yaml:"pacing" validate:"gte=0"`
	DBConnStr      string           `yaml:"db_conn_str" validate:"required_if=Loader Postgres,required_if=Persist true"`
	DBMaxOpen      int              `yaml:"db_max_open"`
	DBMaxIdle      int              `yaml:"db_max_idle"`
	Persist        bool             `yaml:"persist"`
	LogLevel       string           `yaml:"log_level" validate:"oneof=debug info warn error"`
	LogPaths       []string         `yaml:"log_paths"`
	MetricsAddr    string           `yaml:"metrics_addr"`
	MaxRows        int              `yaml:"max_rows" validate:"gte=0"`
}

func defaults() Config {
	return Config{
		Loader:         "Wallex",
		Interval:       "1h",
		Limit:          500,
		WallexAPIKey:   os.Getenv("WALLEX_API_KEY"),
		RequestTimeout: 15 * time.Second,
		Pacing:         time.Second,
		DBConnStr:      os.Getenv("DB_CONN_STR"),
		DBMaxOpen:      10,
		DBMaxIdle:      5,
		LogLevel:       "info",
		MaxRows:        20,
	}
}

// Load parses args. When -config names a YAML file, the file wins over
// the other flags, as it always has.
func Load(args []string) (Config, error) {
	cfg := defaults()
	fs := flag.NewFlagSet("simple-indicators", flag.ContinueOnError)

	fs.StringVar(&cfg.Loader, "loader", cfg.Loader, "Price loader: Postgres or Wallex")
	symbolsFlag := fs.String("symbols", "wallex:btcusdt", "Comma-separated list of EXCHANGE:TICKER symbols")
	fs.StringVar(&cfg.Interval, "interval", cfg.Interval, "Bar interval, e.g. 1m, 1h, daily")
	fs.IntVar(&cfg.Limit, "limit", cfg.Limit, "Number of bars per symbol")
	from := fs.String("from", "", "Start date (YYYY-MM-DD), Postgres loader only")
	to := fs.String("to", "", "End date (YYYY-MM-DD), Postgres loader only")
	fs.StringVar(&cfg.Source, "source", "", "Candle source filter, Postgres loader only")
	fs.DurationVar(&cfg.RequestTimeout, "request-timeout", cfg.RequestTimeout, "Timeout of a single exchange request")
	fs.DurationVar(&cfg.Pacing, "pacing", cfg.Pacing, "Pause between two symbol requests")
	fs.BoolVar(&cfg.Persist, "persist", false, "Save downloaded candles to Postgres")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn or error")
	fs.StringVar(&cfg.MetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9100")
	fs.IntVar(&cfg.MaxRows, "max-rows", cfg.MaxRows, "Rows printed per table, 0 prints all")
	var indicatorErr error
	fs.Func("indicator", "family:user_name:src:period[:alpha=x][:fast=n][:slow=n], repeatable", func(s string) error {
		spec, err := ParseIndicator(s)
		if err != nil {
			indicatorErr = err
			return err
		}
		cfg.Indicators = append(cfg.Indicators, spec)
		return nil
	})
	configFile := fs.String("config", "", "Path to YAML config file")

	if err := fs.Parse(args); err != nil {
		if indicatorErr != nil {
			return Config{}, indicatorErr
		}
		return Config{}, err
	}

	if *configFile != "" {
		data, err := os.ReadFile(*configFile)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		fileCfg := defaults()
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file: %w", err)
		}
		return fileCfg, fileCfg.Validate()
	}

	cfg.Symbols = strings.Split(*symbolsFlag, ",")
	var err error
	if cfg.From, err = parseDate("from", *from); err != nil {
		return Config{}, err
	}
	if cfg.To, err = parseDate("to", *to); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if err := validation.Struct(c); err != nil {
		return err
	}
	if !tfutils.IsValidInterval(c.Interval) {
		return validation.Invalid("interval", c.Interval, "use one of %v", tfutils.SupportedIntervals())
	}
	if !c.From.IsZero() && !c.To.IsZero() && !c.From.Before(c.To) {
		return validation.Invalid("from", c.From.Format(time.DateOnly), "must be before %s", c.To.Format(time.DateOnly))
	}
	return nil
}

func parseDate(field, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, validation.Invalid(field, s, "use YYYY-MM-DD")
	}
	return t, nil
}

// ParseIndicator parses "family:user_name:src:period" followed by optional
// key=value extras, e.g. "KAMA:kama_10:close:10:fast=2:slow=30".
func ParseIndicator(s string) (indicator.Spec, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 4 {
		return indicator.Spec{}, validation.Invalid("indicator", s, "use family:user_name:src:period")
	}
	period, err := strconv.Atoi(parts[3])
	if err != nil {
		return indicator.Spec{}, validation.Invalid("period", parts[3], "must be an integer")
	}
	spec := indicator.Spec{Family: parts[0], UserName: parts[1], Src: parts[2], Period: period}

	for _, kv := range parts[4:] {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			return indicator.Spec{}, validation.Invalid("indicator", s, "extra %q is not key=value", kv)
		}
		switch key {
		case "alpha":
			spec.Alpha, err = strconv.ParseFloat(value, 64)
		case "fast":
			spec.Fast, err = strconv.Atoi(value)
		case "slow":
			spec.Slow, err = strconv.Atoi(value)
		default:
			return indicator.Spec{}, validation.Invalid("indicator", s, "unknown extra %q, use alpha, fast or slow", key)
		}
		if err != nil {
			return indicator.Spec{}, validation.Invalid(key, value, "is not a number")
		}
	}
	return spec, nil
}
