package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_MemoryStoreDefaults(t *testing.T) {
	t.Setenv("STORE", StoreMemory)
	t.Setenv("API_KEYS", "a, b")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 2.0, cfg.SpeedFactor)
	assert.Equal(t, time.Minute, cfg.ETATimeScale)
	assert.Equal(t, 60*time.Second, cfg.SceneClearanceDelay)
	assert.Equal(t, 180*time.Second, cfg.VehicleAvailabilityDelay)
	assert.Equal(t, []string{"a", "b"}, cfg.APIKeys)
	assert.Equal(t, int64(10000), cfg.WebhookQueueLimit)
	assert.False(t, cfg.VoiceEnabled())
}

func TestLoadConfig_PostgresRequiresURL(t *testing.T) {
	t.Setenv("STORE", StorePostgres)
	t.Setenv("DATABASE_URL", "")

	_, err := LoadConfig()
	assert.ErrorContains(t, err, "DATABASE_URL")
}

func TestValidate_DelayOrdering(t *testing.T) {
	cfg := &Config{
		Store:                    StoreMemory,
		SpeedFactor:              2,
		ETATimeScale:             time.Second,
		SceneClearanceDelay:      time.Minute,
		VehicleAvailabilityDelay: time.Minute,
	}
	assert.ErrorContains(t, cfg.Validate(), "VEHICLE_AVAILABILITY_DELAY")

	cfg.VehicleAvailabilityDelay = 2 * time.Minute
	assert.NoError(t, cfg.Validate())
}

func TestValidate_UnknownStore(t *testing.T) {
	cfg := &Config{Store: "mongo"}
	assert.ErrorContains(t, cfg.Validate(), "unknown STORE")
}
