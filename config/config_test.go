package config

import (
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppConfigDefaults(t *testing.T) {
	var cfg AppConfig
	require.NoError(t, env.Parse(&cfg))
	cfg.Sanitize()

	assert.False(t, cfg.IsDev)
	assert.Equal(t, "localhost", cfg.Postgres.Host)
	assert.Equal(t, 5432, cfg.Postgres.Port)
	assert.Equal(t, "pressrun", cfg.Postgres.Name)
	assert.True(t, cfg.Postgres.RunMigrationsOnStart)
	assert.Equal(t, "localhost:6379", cfg.Redis.URI)
	assert.Equal(t, 5*time.Second, cfg.Dispatcher.Interval)
	assert.Equal(t, 50, cfg.Dispatcher.BatchSize)
	assert.Equal(t, 5, cfg.Dispatcher.MaxAttempts)
	assert.Equal(t, 30*time.Minute, cfg.Cache.PricingRuleTTL)
	assert.Equal(t, "./data/blobs", cfg.Intake.BlobRoot)
}

func TestDispatcherConfigSanitize(t *testing.T) {
	tests := []struct {
		name     string
		input    DispatcherConfig
		expected DispatcherConfig
	}{
		{
			name:     "clamps sub-second interval",
			input:    DispatcherConfig{Interval: 50 * time.Millisecond, BatchSize: 10, MaxAttempts: 3},
			expected: DispatcherConfig{Interval: time.Second, BatchSize: 10, MaxAttempts: 3},
		},
		{
			name:     "clamps zero batch size",
			input:    DispatcherConfig{Interval: 5 * time.Second, BatchSize: 0, MaxAttempts: 3},
			expected: DispatcherConfig{Interval: 5 * time.Second, BatchSize: 1, MaxAttempts: 3},
		},
		{
			name:     "clamps oversized batch",
			input:    DispatcherConfig{Interval: 5 * time.Second, BatchSize: 5000, MaxAttempts: 3},
			expected: DispatcherConfig{Interval: 5 * time.Second, BatchSize: 1000, MaxAttempts: 3},
		},
		{
			name:     "negative max attempts disables escalation",
			input:    DispatcherConfig{Interval: 5 * time.Second, BatchSize: 10, MaxAttempts: -1},
			expected: DispatcherConfig{Interval: 5 * time.Second, BatchSize: 10, MaxAttempts: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.input
			cfg.Sanitize()
			assert.Equal(t, tt.expected, cfg)
		})
	}
}

func TestSettlementConfigSanitize(t *testing.T) {
	cfg := SettlementConfig{PerUnitFloor: " 0.25 "}
	cfg.Sanitize()
	assert.Equal(t, "0.25", cfg.PerUnitFloor)
	assert.True(t, cfg.PerUnitFloorAmount().Equal(decimal.RequireFromString("0.25")))

	cfg = SettlementConfig{PerUnitFloor: "not-a-number"}
	cfg.Sanitize()
	assert.Equal(t, "0.01", cfg.PerUnitFloor)
}

func TestNotificationsSanitizeDisablesSinksWithoutTargets(t *testing.T) {
	cfg := ObservabilityNotificationsConfig{
		Enabled: true,
		Slack:   SlackNotificationConfig{Enabled: true, WebhookURL: "  "},
		PagerDuty: PagerDutyNotificationConfig{
			Enabled:    true,
			RoutingKey: "",
		},
	}
	cfg.Sanitize()

	assert.False(t, cfg.Slack.Enabled)
	assert.False(t, cfg.PagerDuty.Enabled)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, "pressrun", cfg.Slack.Username)
	assert.Equal(t, "outbox-dispatcher", cfg.PagerDuty.Component)
}

func TestNotificationsSanitizeDisabledParentDisablesChildren(t *testing.T) {
	cfg := ObservabilityNotificationsConfig{
		Enabled:   false,
		Slack:     SlackNotificationConfig{Enabled: true, WebhookURL: "https://hooks.slack.com/x"},
		PagerDuty: PagerDutyNotificationConfig{Enabled: true, RoutingKey: "rk"},
	}
	cfg.Sanitize()

	assert.False(t, cfg.Slack.Enabled)
	assert.False(t, cfg.PagerDuty.Enabled)
}

func TestMetricsSanitize(t *testing.T) {
	cfg := ObservabilityMetricsConfig{Enabled: true, StatsdAddress: "   "}
	cfg.Sanitize()
	assert.False(t, cfg.IsEnabled())

	cfg = ObservabilityMetricsConfig{Enabled: true, StatsdAddress: "127.0.0.1:8125"}
	cfg.Sanitize()
	assert.True(t, cfg.IsEnabled())
}
