package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kodjo-amani/dossier-check/constants"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()

	assert.Equal(t, ":8080", cfg.Server.GRPCAddr)
	assert.Equal(t, "./inbox", cfg.Ingest.InboxDir)
	assert.Equal(t, 5*time.Second, cfg.Ingest.PollInterval)
	assert.Equal(t, constants.VisaCourtSejour, cfg.Ingest.VisaType)
	assert.InDelta(t, 0.80, cfg.Checks.NameSimilarity, 1e-9)
	assert.Equal(t, 1, cfg.Checks.HotelToleranceDays)
	assert.Equal(t, 30, cfg.Checks.PaymentValidityDays)
	assert.Equal(t, 5, cfg.Checks.UrgentTravelDays)
	assert.Equal(t, 90, cfg.Checks.LongStayNights)

	require.NoError(t, cfg.Validate())
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("GRPC_ADDR", ":9090")
	t.Setenv("INBOX_DIR", "/var/dossiers")
	t.Setenv("VISA_TYPE", "long sejour")
	t.Setenv("NAME_SIMILARITY", "0.9")
	t.Setenv("INBOX_POLL_INTERVAL", "250ms")
	t.Setenv("URGENT_TRAVEL_DAYS", "7")

	cfg := LoadConfig()

	assert.Equal(t, ":9090", cfg.Server.GRPCAddr)
	assert.Equal(t, "/var/dossiers", cfg.Ingest.InboxDir)
	assert.Equal(t, constants.VisaLongSejour, cfg.Ingest.VisaType)
	assert.InDelta(t, 0.9, cfg.Checks.NameSimilarity, 1e-9)
	assert.Equal(t, 250*time.Millisecond, cfg.Ingest.PollInterval)
	assert.Equal(t, 7, cfg.Checks.UrgentTravelDays)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "missing grpc addr",
			mutate:  func(c *Config) { c.Server.GRPCAddr = "" },
			wantErr: "GRPC_ADDR",
		},
		{
			name:    "missing inbox dir",
			mutate:  func(c *Config) { c.Ingest.InboxDir = "   " },
			wantErr: "INBOX_DIR",
		},
		{
			name:    "similarity out of range",
			mutate:  func(c *Config) { c.Checks.NameSimilarity = 1.5 },
			wantErr: "NAME_SIMILARITY",
		},
		{
			name:    "zero payment window",
			mutate:  func(c *Config) { c.Checks.PaymentValidityDays = 0 },
			wantErr: "PAYMENT_VALIDITY_DAYS",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := LoadConfig()
			tc.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}
