package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 10*time.Minute, cfg.Tariff.CacheTTL)
	assert.Equal(t, "America/Santiago", cfg.Pricing.Timezone)
	assert.False(t, cfg.Pricing.FallbackToBase)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 30*time.Minute, cfg.Reservation.PendingTTL)

	f, err := cfg.DepositFraction()
	require.NoError(t, err)
	assert.True(t, f.Equal(decimal.RequireFromString("0.4")))
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SHUTTLE_HTTP_ADDR", ":9090")
	t.Setenv("SHUTTLE_REDIS_DB", "3")
	t.Setenv("SHUTTLE_TARIFF_CACHE_TTL", "90s")
	t.Setenv("SHUTTLE_PRICING_TIMEZONE", "UTC")
	t.Setenv("SHUTTLE_PRICING_FALLBACK_TO_BASE", "true")
	t.Setenv("SHUTTLE_PAYMENT_DEPOSIT_FRACTION", "0.5")
	t.Setenv("SHUTTLE_LOG_FORMAT", "console")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, 90*time.Second, cfg.Tariff.CacheTTL)
	assert.True(t, cfg.Pricing.FallbackToBase)
	assert.Equal(t, "console", cfg.Log.Format)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name, key, val string
	}{
		{"unknown timezone", "SHUTTLE_PRICING_TIMEZONE", "Mars/Olympus"},
		{"deposit above one", "SHUTTLE_PAYMENT_DEPOSIT_FRACTION", "1.5"},
		{"deposit not a number", "SHUTTLE_PAYMENT_DEPOSIT_FRACTION", "mitad"},
		{"expiry without interval", "SHUTTLE_RESERVATION_EXPIRY_INTERVAL", "0s"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
