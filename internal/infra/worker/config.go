package worker

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Config controls the scheduled refresh job.
type Config struct {
	// CronSchedule is a 5-field cron expression ("minute hour dom month dow").
	CronSchedule string

	// Timezone is the IANA zone used both for the schedule and for deciding
	// which stored dates are in the past. Earnings are announced on US
	// exchange time, hence the default.
	Timezone string

	// RefreshConcurrency bounds how many symbols are resolved at once.
	// Kept low because every resolution can hit the same free-tier APIs.
	RefreshConcurrency int

	// RunTimeout bounds one refresh run.
	RunTimeout time.Duration

	HealthPort  int
	MetricsPort int
}

// DefaultConfig returns the defaults: daily at 06:00 New York time, two
// symbols at a time.
func DefaultConfig() Config {
	return Config{
		CronSchedule:       "0 6 * * *",
		Timezone:           "America/New_York",
		RefreshConcurrency: 2,
		RunTimeout:         15 * time.Minute,
		HealthPort:         9091,
		MetricsPort:        9090,
	}
}

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

func validateCron(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("cron schedule cannot be empty")
	}
	if _, err := cronParser.Parse(s); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s, err)
	}
	return nil
}

func validateTimezone(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("timezone cannot be empty")
	}
	if _, err := time.LoadLocation(s); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", s, err)
	}
	return nil
}

func validateRange(v, lo, hi int) error {
	if v < lo || v > hi {
		return fmt.Errorf("value %d must be between %d and %d", v, lo, hi)
	}
	return nil
}

func validateTimeout(d time.Duration) error {
	if d < time.Minute || d > 2*time.Hour {
		return fmt.Errorf("timeout %s must be between 1m and 2h", d)
	}
	return nil
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var errs []error
	if err := validateCron(c.CronSchedule); err != nil {
		errs = append(errs, fmt.Errorf("cron schedule: %w", err))
	}
	if err := validateTimezone(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	if err := validateRange(c.RefreshConcurrency, 1, 16); err != nil {
		errs = append(errs, fmt.Errorf("refresh concurrency: %w", err))
	}
	if err := validateTimeout(c.RunTimeout); err != nil {
		errs = append(errs, fmt.Errorf("run timeout: %w", err))
	}
	if err := validateRange(c.HealthPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("health port: %w", err))
	}
	if err := validateRange(c.MetricsPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("metrics port: %w", err))
	}
	if c.HealthPort == c.MetricsPort {
		errs = append(errs, errors.New("health and metrics ports must differ"))
	}
	return errors.Join(errs...)
}

// Location loads the configured timezone, falling back to UTC.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// LoadConfig reads the WORKER_* and METRICS_PORT variables. It never fails:
// an unset value keeps its default, and an invalid one falls back to the
// default with a warning and a fallback metric, so a typo in one variable
// cannot stop the refresh job.
//
//	WORKER_CRON_SCHEDULE        (default "0 6 * * *")
//	WORKER_TIMEZONE             (default "America/New_York")
//	WORKER_REFRESH_CONCURRENCY  (default 2, 1-16)
//	WORKER_RUN_TIMEOUT          (default 15m, 1m-2h)
//	WORKER_HEALTH_PORT          (default 9091)
//	METRICS_PORT                (default 9090)
func LoadConfig(logger *slog.Logger, m *Metrics) Config {
	cfg := DefaultConfig()
	l := loader{logger: logger, metrics: m}

	cfg.CronSchedule = l.stringVar("WORKER_CRON_SCHEDULE", cfg.CronSchedule, validateCron)
	cfg.Timezone = l.stringVar("WORKER_TIMEZONE", cfg.Timezone, validateTimezone)
	cfg.RefreshConcurrency = l.intVar("WORKER_REFRESH_CONCURRENCY", cfg.RefreshConcurrency, 1, 16)
	cfg.RunTimeout = l.durationVar("WORKER_RUN_TIMEOUT", cfg.RunTimeout, validateTimeout)
	cfg.HealthPort = l.intVar("WORKER_HEALTH_PORT", cfg.HealthPort, 1024, 65535)
	cfg.MetricsPort = l.intVar("METRICS_PORT", cfg.MetricsPort, 1024, 65535)

	if m != nil {
		m.SetFallbackActive(l.fellBack)
		m.RecordLoadTimestamp()
	}
	return cfg
}

type loader struct {
	logger   *slog.Logger
	metrics  *Metrics
	fellBack bool
}

func (l *loader) fallback(key, raw string, def any, err error) {
	l.fellBack = true
	if l.metrics != nil {
		l.metrics.RecordFallback(key)
	}
	if l.logger != nil {
		l.logger.Warn("configuration fallback applied",
			slog.String("env_key", key),
			slog.String("invalid_value", raw),
			slog.Any("default_value", def),
			slog.String("error", err.Error()))
	}
}

func (l *loader) stringVar(key, def string, validate func(string) error) string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	if err := validate(raw); err != nil {
		l.fallback(key, raw, def, err)
		return def
	}
	return raw
}

func (l *loader) intVar(key string, def, lo, hi int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err == nil {
		err = validateRange(v, lo, hi)
	}
	if err != nil {
		l.fallback(key, raw, def, err)
		return def
	}
	return v
}

func (l *loader) durationVar(key string, def time.Duration, validate func(time.Duration) error) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := time.ParseDuration(raw)
	if err == nil {
		err = validate(v)
	}
	if err != nil {
		l.fallback(key, raw, def.String(), err)
		return def
	}
	return v
}
