package config_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/rental-ledger/internal/config"
	"github.com/noah-isme/rental-ledger/internal/pricing"
)

func baseEnv(overrides map[string]string) map[string]string {
	env := map[string]string{
		"APP_ENV":                     "",
		"LOG_FORMAT":                  "",
		"LOG_LEVEL":                   "",
		"PRICING_COMMISSION_RATE":     "",
		"PRICING_INSURANCE_SHARE":     "",
		"PRICING_ASSISTANCE_PER_DAY":  "",
		"PRICING_DEDUCTIBLE_DAY_COST": "",
		"PRICING_DISCOUNT_SCHEDULE":   "",
		"METRICS_NAMESPACE":           "",
		"METRICS_TEXTFILE":            "",
		"TRACING_ENABLED":             "",
		"TRACING_ENDPOINT":            "",
		"TRACING_SAMPLING_RATIO":      "",
	}
	for k, v := range overrides {
		env[k] = v
	}
	return env
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.LoadForTests(baseEnv(nil))
	require.NoError(t, err)

	require.Equal(t, "development", cfg.AppEnv)
	require.Equal(t, "json", cfg.LogFormat)
	require.Equal(t, "rental_ledger", cfg.MetricsNamespace)
	require.False(t, cfg.TracingEnabled)
	require.Equal(t, 1.0, cfg.TracingSamplingRatio)

	defaults := cfg.PricingDefaults()
	want := pricing.StandardDefaults()
	require.True(t, want.CommissionRate.Equal(defaults.CommissionRate))
	require.True(t, want.InsuranceShare.Equal(defaults.InsuranceShare))
	require.Equal(t, want.AssistancePerDay, defaults.AssistancePerDay)
	require.Equal(t, want.DeductibleDayCost, defaults.DeductibleDayCost)

	schedule, err := cfg.Schedule()
	require.NoError(t, err)
	require.Nil(t, schedule)
}

func TestLoadPricingOverrides(t *testing.T) {
	cfg, err := config.LoadForTests(baseEnv(map[string]string{
		"PRICING_COMMISSION_RATE":     "0.25",
		"PRICING_DEDUCTIBLE_DAY_COST": "500",
		"PRICING_DISCOUNT_SCHEDULE":   "standard",
		"LOG_FORMAT":                  "console",
	}))
	require.NoError(t, err)

	require.Equal(t, "0.25", cfg.CommissionRate.String())
	require.EqualValues(t, 500, cfg.DeductibleDayCost)
	require.Equal(t, "console", cfg.LogFormat)

	schedule, err := cfg.Schedule()
	require.NoError(t, err)
	require.Equal(t, pricing.StandardSchedule().String(), schedule.String())
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]map[string]string{
		"rate above one":    {"PRICING_COMMISSION_RATE": "1.5"},
		"rate not a number": {"PRICING_INSURANCE_SHARE": "half"},
		"negative fee":      {"PRICING_ASSISTANCE_PER_DAY": "-1"},
		"bad schedule":      {"PRICING_DISCOUNT_SCHEDULE": "1-3:2"},
		"tracing endpoint":  {"TRACING_ENABLED": "true"},
		"sampling ratio":    {"TRACING_SAMPLING_RATIO": "often"},
	}
	for name, overrides := range cases {
		_, err := config.LoadForTests(baseEnv(overrides))
		require.Error(t, err, name)
	}
}

func TestLoadWrapsScheduleError(t *testing.T) {
	_, err := config.LoadForTests(baseEnv(map[string]string{"PRICING_DISCOUNT_SCHEDULE": "1-3"}))
	require.ErrorIs(t, err, pricing.ErrInvalidSchedule)
}
