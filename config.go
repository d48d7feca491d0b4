package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/dnldd/stocks/fetch"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

const (
	// defaultUpdateInterval is the default refresh interval in seconds.
	defaultUpdateInterval = 60
	// defaultUserAgent is the default user agent sent to the vendor.
	defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) stocks"
	// defaultLogLevel is the default log level.
	defaultLogLevel = "info"
)

// Config is the configuration struct for the service.
type Config struct {
	// Symbols seeds an empty watch-list.
	Symbols []string
	// UpdateInterval is the interval between periodic refreshes in seconds.
	UpdateInterval int
	// UserAgent is sent with every vendor request.
	UserAgent string
	// ChartBaseURL overrides the vendor chart endpoint.
	ChartBaseURL string
	// SearchBaseURL overrides the vendor search endpoint.
	SearchBaseURL string
	// RequestsPerSecond limits the vendor request rate.
	RequestsPerSecond float64
	// DBEndpoint is the rqlite endpoint, the watch-list is kept in memory when empty.
	DBEndpoint string
	// DBUser is the database user.
	DBUser string
	// DBPass is the database user pass.
	DBPass string
	// LogLevel is the minimum log level.
	LogLevel string
	// LogFile is an optional rotating log file.
	LogFile string

	registeredFlags map[string]bool
}

// Validate asserts the config sane inputs.
func (cfg *Config) Validate() error {
	var errs error

	if cfg.UpdateInterval <= 0 {
		errs = errors.Join(errs, fmt.Errorf("update interval must be positive"))
	}
	if strings.TrimSpace(cfg.UserAgent) == "" {
		errs = errors.Join(errs, fmt.Errorf("user agent cannot be an empty string"))
	}
	if cfg.RequestsPerSecond <= 0 {
		errs = errors.Join(errs, fmt.Errorf("requests per second must be positive"))
	}
	if cfg.DBEndpoint == "" && (cfg.DBUser != "" || cfg.DBPass != "") {
		errs = errors.Join(errs, fmt.Errorf("database credentials provided without an endpoint"))
	}
	if _, err := zerolog.ParseLevel(cfg.LogLevel); err != nil {
		errs = errors.Join(errs, fmt.Errorf("invalid log level %q", cfg.LogLevel))
	}

	return errs
}

// applyDefaults fills unset fields with their defaults.
func (cfg *Config) applyDefaults() {
	if cfg.UpdateInterval == 0 {
		cfg.UpdateInterval = defaultUpdateInterval
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.RequestsPerSecond == 0 {
		cfg.RequestsPerSecond = fetch.DefaultRequestsPerSecond
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}
}

// registerFlag registers command line arguments of any type and tracks them to avoid reregistration.
func (cfg *Config) registerFlag(name string, value interface{}, usage string) error {
	if cfg.registeredFlags == nil {
		cfg.registeredFlags = make(map[string]bool)
	}

	if cfg.registeredFlags[name] {
		return nil
	}

	cfg.registeredFlags[name] = true

	defValue := os.Getenv(name)
	val := reflect.ValueOf(value)
	if val.Kind() != reflect.Ptr || val.IsNil() {
		return fmt.Errorf("%s: value must be a non-nil pointer", name)
	}

	switch val.Elem().Kind() {
	case reflect.String:
		flag.StringVar(value.(*string), name, defValue, usage)
	case reflect.Int:
		var def int
		if defValue != "" {
			def, _ = strconv.Atoi(defValue)
		}
		flag.IntVar(value.(*int), name, def, usage)
	case reflect.Float64:
		var def float64
		if defValue != "" {
			def, _ = strconv.ParseFloat(defValue, 64)
		}
		flag.Float64Var(value.(*float64), name, def, usage)
	case reflect.Slice:
		// Only handle []string
		if val.Elem().Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("%s: unsupported slice type", name)
		}
		flag.Func(name, usage, func(s string) error {
			*value.(*[]string) = splitList(s)
			return nil
		})
		if defValue != "" {
			*value.(*[]string) = splitList(defValue)
		}
	default:
		return fmt.Errorf("%s: unsupported type", name)
	}

	return nil
}

// splitList splits a comma separated list, dropping blank entries.
func splitList(s string) []string {
	var out []string
	for _, entry := range strings.Split(s, ",") {
		entry = strings.TrimSpace(entry)
		if entry != "" {
			out = append(out, entry)
		}
	}

	return out
}

// loadConfig loads the configuration from environment variables and command line flags.
func loadConfig(cfg *Config, path string) error {
	if path == "" {
		path = ".env"
	}

	// Check if the expected .env file exists before loading it.
	_, err := os.Stat(path)
	if err == nil {
		err := godotenv.Load(path)
		if err != nil {
			return fmt.Errorf("loading .env file: %w", err)
		}
	}

	// Register command line arguments using loaded environment variables as defaults.
	flags := []struct {
		name  string
		value interface{}
		usage string
	}{
		{"symbols", &cfg.Symbols, "the initial watch-list symbols"},
		{"updateinterval", &cfg.UpdateInterval, "the refresh interval in seconds"},
		{"useragent", &cfg.UserAgent, "the user agent sent to the vendor"},
		{"chartbaseurl", &cfg.ChartBaseURL, "the vendor chart endpoint"},
		{"searchbaseurl", &cfg.SearchBaseURL, "the vendor search endpoint"},
		{"requestspersecond", &cfg.RequestsPerSecond, "the vendor request rate"},
		{"dbendpoint", &cfg.DBEndpoint, "the rqlite endpoint"},
		{"dbuser", &cfg.DBUser, "the database user"},
		{"dbpass", &cfg.DBPass, "the database user pass"},
		{"loglevel", &cfg.LogLevel, "the log level"},
		{"logfile", &cfg.LogFile, "the rotating log file"},
	}
	for _, f := range flags {
		err = cfg.registerFlag(f.name, f.value, f.usage)
		if err != nil {
			return err
		}
	}

	// Parse command-line flags.
	flag.Parse()

	cfg.applyDefaults()

	return cfg.Validate()
}
