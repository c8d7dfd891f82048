package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/miqueiast/vendas-amazon/internal/daterange"
	"github.com/miqueiast/vendas-amazon/internal/knowndates"
)

// ErrInvalidConfig wraps every configuration error. It is fatal: the run
// stops before any request is sent.
var ErrInvalidConfig = errors.New("invalid configuration")

// Defaults applied when neither a flag, the environment nor a config file
// sets the value.
const (
	// DefaultEventType is the eventType filter of the countPerHour endpoint
	DefaultEventType = 11
	// DefaultStartDate is the first day the downstream store expects
	DefaultStartDate = "2025-02-01"
	// DefaultTimezone is the calendar that defines "yesterday"
	DefaultTimezone = "UTC"
	// DefaultOutputPath is written in the working directory
	DefaultOutputPath = "countPerHour.csv"
	// DefaultConcurrency keeps requests sequential
	DefaultConcurrency = 1
	// DefaultRequestTimeout bounds a single request
	DefaultRequestTimeout = 30 * time.Second
	// DefaultLogLevel is the slog level name
	DefaultLogLevel = "info"
	// DefaultLogFormat selects the text handler
	DefaultLogFormat = "text"
)

// Config holds all configuration for the countPerHour backfill.
type Config struct {
	// Analytics API
	BaseURL   string `mapstructure:"base_url" validate:"required,url"`
	Username  string `mapstructure:"username" validate:"required"`
	Password  string `mapstructure:"password" validate:"required"`
	EventType int    `mapstructure:"event_type" validate:"gt=0"`

	// Range
	StartDate string `mapstructure:"start_date" validate:"required,datetime=2006-01-02"`
	Timezone  string `mapstructure:"timezone" validate:"required,timezone"`

	// Known dates sources, all optional; their union is skipped
	KnownDates       []string `mapstructure:"known_dates"`
	KnownDatesFile   string   `mapstructure:"known_dates_file" validate:"omitempty,file"`
	KnownDatesSQLite string   `mapstructure:"known_dates_sqlite" validate:"omitempty,file"`
	KnownDatesQuery  string   `mapstructure:"known_dates_query"`

	// Output
	OutputPath   string `mapstructure:"output" validate:"required"`
	OutputFormat string `mapstructure:"output_format" validate:"omitempty,oneof=csv xlsx parquet"`

	// Execution
	Concurrency       int           `mapstructure:"concurrency" validate:"gte=1,lte=32"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second" validate:"gte=0"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout" validate:"gt=0"`
	RunTimeout        time.Duration `mapstructure:"run_timeout" validate:"gte=0"`

	// Logging
	LogLevel  string `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	LogFormat string `mapstructure:"log_format" validate:"oneof=text json"`
}

// setting ties a Config field to its config key and environment variable.
type setting struct {
	field string
	key   string
	env   string
}

var settings = []setting{
	{"BaseURL", "base_url", "ANALYTICS_BASE_URL"},
	{"Username", "username", "ANALYTICS_USERNAME"},
	{"Password", "password", "ANALYTICS_PASSWORD"},
	{"EventType", "event_type", "EVENT_TYPE"},
	{"StartDate", "start_date", "START_DATE"},
	{"Timezone", "timezone", "TIMEZONE"},
	{"KnownDates", "known_dates", "KNOWN_DATES"},
	{"KnownDatesFile", "known_dates_file", "KNOWN_DATES_FILE"},
	{"KnownDatesSQLite", "known_dates_sqlite", "KNOWN_DATES_SQLITE"},
	{"KnownDatesQuery", "known_dates_query", "KNOWN_DATES_QUERY"},
	{"OutputPath", "output", "OUTPUT_PATH"},
	{"OutputFormat", "output_format", "OUTPUT_FORMAT"},
	{"Concurrency", "concurrency", "CONCURRENCY"},
	{"RequestsPerSecond", "requests_per_second", "REQUESTS_PER_SECOND"},
	{"RequestTimeout", "request_timeout", "REQUEST_TIMEOUT"},
	{"RunTimeout", "run_timeout", "RUN_TIMEOUT"},
	{"LogLevel", "log_level", "LOG_LEVEL"},
	{"LogFormat", "log_format", "LOG_FORMAT"},
}

func envName(field string) string {
	for _, s := range settings {
		if s.field == field {
			return s.env
		}
	}
	return field
}

// flagKeys maps flag names to config keys.
var flagKeys = map[string]string{
	"base-url":           "base_url",
	"username":           "username",
	"event-type":         "event_type",
	"start-date":         "start_date",
	"timezone":           "timezone",
	"known-dates":        "known_dates",
	"known-dates-file":   "known_dates_file",
	"known-dates-sqlite": "known_dates_sqlite",
	"known-dates-query":  "known_dates_query",
	"output":             "output",
	"format":             "output_format",
	"concurrency":        "concurrency",
	"rps":                "requests_per_second",
	"timeout":            "request_timeout",
	"run-timeout":        "run_timeout",
	"log-level":          "log_level",
	"log-format":         "log_format",
}

// NewFlagSet declares the command-line flags. The password has no flag so it
// never shows up in process listings.
func NewFlagSet(name string) *pflag.FlagSet {
	flags := pflag.NewFlagSet(name, pflag.ContinueOnError)
	flags.String("config", "", "path to a YAML config file")
	flags.String("base-url", "", "analytics API root, e.g. https://analytics.example.com")
	flags.String("username", "", "analytics basic-auth username")
	flags.Int("event-type", DefaultEventType, "eventType filter sent with every request")
	flags.String("start-date", DefaultStartDate, "first day to backfill (YYYY-MM-DD)")
	flags.String("timezone", DefaultTimezone, "IANA zone whose calendar defines yesterday")
	flags.StringSlice("known-dates", nil, "days already stored downstream (comma separated)")
	flags.String("known-dates-file", "", "txt/csv/json/yaml file listing days already stored")
	flags.String("known-dates-sqlite", "", "SQLite database holding days already stored")
	flags.String("known-dates-query", knowndates.DefaultQuery, "query returning stored days in its first column")
	flags.StringP("output", "o", DefaultOutputPath, "output file")
	flags.String("format", "", "output format: csv, xlsx or parquet (default: from extension)")
	flags.Int("concurrency", DefaultConcurrency, "max requests in flight (1 = sequential)")
	flags.Float64("rps", 0, "max requests per second (0 = unlimited)")
	flags.Duration("timeout", DefaultRequestTimeout, "per-request timeout")
	flags.Duration("run-timeout", 0, "deadline for the whole run (0 = none)")
	flags.String("log-level", DefaultLogLevel, "debug, info, warn or error")
	flags.String("log-format", DefaultLogFormat, "text or json")
	return flags
}

// Load reads configuration from flags, environment variables, an optional
// .env file and an optional config file. Precedence: flags, environment,
// config file, defaults.
//
// Expected environment variables:
//   - ANALYTICS_BASE_URL
//   - ANALYTICS_USERNAME
//   - ANALYTICS_PASSWORD
//   - EVENT_TYPE, START_DATE, TIMEZONE (optional)
//   - KNOWN_DATES, KNOWN_DATES_FILE, KNOWN_DATES_SQLITE, KNOWN_DATES_QUERY (optional)
//   - OUTPUT_PATH, OUTPUT_FORMAT (optional)
//   - CONCURRENCY, REQUESTS_PER_SECOND, REQUEST_TIMEOUT, RUN_TIMEOUT (optional)
//   - LOG_LEVEL, LOG_FORMAT (optional)
func Load(args []string) (*Config, error) {
	// .env never overrides variables already set in the environment
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: reading .env: %v", ErrInvalidConfig, err)
	}

	flags := NewFlagSet("countfetcher")
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	v := viper.New()

	v.SetDefault("event_type", DefaultEventType)
	v.SetDefault("start_date", DefaultStartDate)
	v.SetDefault("timezone", DefaultTimezone)
	v.SetDefault("known_dates_query", knowndates.DefaultQuery)
	v.SetDefault("output", DefaultOutputPath)
	v.SetDefault("concurrency", DefaultConcurrency)
	v.SetDefault("requests_per_second", 0)
	v.SetDefault("request_timeout", DefaultRequestTimeout)
	v.SetDefault("run_timeout", 0)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("log_format", DefaultLogFormat)

	configFile, _ := flags.GetString("config")
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("%w: reading %s: %v", ErrInvalidConfig, configFile, err)
		}
	} else {
		// Optionally read from config file if it exists
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.countfetcher")
		_ = v.ReadInConfig()
	}

	// Only the variables bound here are read; AutomaticEnv would pick up
	// USERNAME or PASSWORD from the login environment.
	for _, s := range settings {
		v.BindEnv(s.key, s.env)
	}
	for name, key := range flagKeys {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return nil, fmt.Errorf("binding flag %s: %w", name, err)
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal config: %v", ErrInvalidConfig, err)
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks every field and reports missing and invalid settings by
// their environment variable names.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	var missing, invalid []string
	for _, fe := range verrs {
		name := envName(fe.StructField())
		if fe.Tag() == "required" {
			missing = append(missing, name)
			continue
		}
		invalid = append(invalid, fmt.Sprintf("%s (%v fails %s)", name, fe.Value(), describeTag(fe)))
	}

	var parts []string
	if len(missing) > 0 {
		parts = append(parts, "missing required configuration: "+strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		parts = append(parts, "invalid configuration: "+strings.Join(invalid, ", "))
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(parts, "; "))
}

// Location returns the timezone used for calendar days.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: TIMEZONE: %v", ErrInvalidConfig, err)
	}
	return loc, nil
}

// Start returns the first day of the range at midnight in loc.
func (c *Config) Start(loc *time.Location) (time.Time, error) {
	t, err := daterange.ParseDay(c.StartDate, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: START_DATE: %v", ErrInvalidConfig, err)
	}
	return t, nil
}

func describeTag(fe validator.FieldError) string {
	if fe.Param() == "" {
		return fe.Tag()
	}
	return fe.Tag() + "=" + fe.Param()
}

// KnownDatesSource combines every configured known-dates source.
func (c *Config) KnownDatesSource() knowndates.Source {
	var sources knowndates.Multi
	if len(c.KnownDates) > 0 {
		sources = append(sources, knowndates.Static(c.KnownDates))
	}
	if c.KnownDatesFile != "" {
		sources = append(sources, knowndates.File{Path: c.KnownDatesFile})
	}
	if c.KnownDatesSQLite != "" {
		sources = append(sources, knowndates.SQLite{Path: c.KnownDatesSQLite, Query: c.KnownDatesQuery})
	}
	return sources
}
