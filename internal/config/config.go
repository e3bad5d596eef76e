package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/rental-ledger/internal/pricing"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv    string
	LogFormat string
	LogLevel  string

	CommissionRate    decimal.Decimal
	InsuranceShare    decimal.Decimal
	AssistancePerDay  int64
	DeductibleDayCost int64
	DiscountSchedule  string

	MetricsNamespace string
	MetricsTextfile  string

	TracingEnabled       bool
	TracingExporter      string
	TracingEndpoint      string
	TracingSamplingRatio float64
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:           valueOrDefault(k.String("APP_ENV"), "development"),
		LogFormat:        valueOrDefault(k.String("LOG_FORMAT"), "json"),
		LogLevel:         valueOrDefault(k.String("LOG_LEVEL"), "info"),
		DiscountSchedule: strings.TrimSpace(k.String("PRICING_DISCOUNT_SCHEDULE")),
		MetricsNamespace: valueOrDefault(k.String("METRICS_NAMESPACE"), "rental_ledger"),
		MetricsTextfile:  strings.TrimSpace(k.String("METRICS_TEXTFILE")),
		TracingEnabled:   parseBool(k.String("TRACING_ENABLED")),
		TracingExporter:  valueOrDefault(k.String("TRACING_EXPORTER"), "otlp"),
		TracingEndpoint:  strings.TrimSpace(k.String("TRACING_ENDPOINT")),
	}

	var err error
	if cfg.CommissionRate, err = parseFraction("PRICING_COMMISSION_RATE", k.String("PRICING_COMMISSION_RATE"), "0.30"); err != nil {
		return nil, err
	}
	if cfg.InsuranceShare, err = parseFraction("PRICING_INSURANCE_SHARE", k.String("PRICING_INSURANCE_SHARE"), "0.50"); err != nil {
		return nil, err
	}
	if cfg.AssistancePerDay, err = parseAmount("PRICING_ASSISTANCE_PER_DAY", k.String("PRICING_ASSISTANCE_PER_DAY"), 100); err != nil {
		return nil, err
	}
	if cfg.DeductibleDayCost, err = parseAmount("PRICING_DEDUCTIBLE_DAY_COST", k.String("PRICING_DEDUCTIBLE_DAY_COST"), 400); err != nil {
		return nil, err
	}
	if cfg.TracingSamplingRatio, err = parseRatio(k.String("TRACING_SAMPLING_RATIO"), 1); err != nil {
		return nil, err
	}
	if _, err := cfg.Schedule(); err != nil {
		return nil, fmt.Errorf("PRICING_DISCOUNT_SCHEDULE: %w", err)
	}
	if cfg.TracingEnabled && cfg.TracingEndpoint == "" {
		return nil, errors.New("TRACING_ENDPOINT is required when TRACING_ENABLED is set")
	}

	return cfg, nil
}

// PricingDefaults returns the rule parameters used to assemble rentals.
func (c *Config) PricingDefaults() pricing.Defaults {
	return pricing.Defaults{
		CommissionRate:    c.CommissionRate,
		InsuranceShare:    c.InsuranceShare,
		AssistancePerDay:  c.AssistancePerDay,
		DeductibleDayCost: c.DeductibleDayCost,
	}
}

// Schedule parses the configured day discount. A nil schedule means no discount.
func (c *Config) Schedule() (pricing.Schedule, error) {
	return pricing.ParseSchedule(c.DiscountSchedule)
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

func parseFraction(key, value, fallback string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(valueOrDefault(value, fallback))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", key, err)
	}
	if d.IsNegative() || d.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.Zero, fmt.Errorf("%s: %s is outside [0,1]", key, d)
	}
	return d, nil
}

func parseAmount(key, value string, fallback int64) (int64, error) {
	if strings.TrimSpace(value) == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("%s: must not be negative", key)
	}
	return n, nil
}

func parseRatio(value string, fallback float64) (float64, error) {
	if strings.TrimSpace(value) == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, fmt.Errorf("TRACING_SAMPLING_RATIO: %w", err)
	}
	return f, nil
}

// LoadForTests allows tests to override environment variables without touching the real environment.
func LoadForTests(env map[string]string) (*Config, error) {
	original := make(map[string]string, len(env))
	for key := range env {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
