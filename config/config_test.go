package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"SOLAR_ADDR", "SOLAR_STORAGE", "SOLAR_RATE_PER_MINUTE", "SOLAR_LOG_LEVEL"} {
		t.Setenv(k, "")
	}
	c, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, ":8080", c.Addr)
	assert.Equal(t, StorageMemory, c.Storage)
	assert.Equal(t, 30, c.RatePerMinute)

	l, err := c.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, l)
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	t.Setenv("SOLAR_ADDR", ":9000")
	t.Setenv("SOLAR_STORAGE", "sqlite")
	t.Setenv("SOLAR_RATE_BURST", "3")

	c, err := Load([]string{"--addr", ":9100", "--log-level", "debug"})
	require.NoError(t, err)
	assert.Equal(t, ":9100", c.Addr)
	assert.Equal(t, StorageSQLite, c.Storage)
	assert.Equal(t, 3, c.RateBurst)
	l, _ := c.Level()
	assert.Equal(t, slog.LevelDebug, l)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	_, err := Load([]string{"--storage", "postgres"})
	assert.ErrorContains(t, err, "postgres-dsn")

	_, err = Load([]string{"--storage", "mongo"})
	assert.ErrorContains(t, err, "unknown storage")

	_, err = Load([]string{"--fuel-price", "-3"})
	assert.ErrorContains(t, err, "fuel price")

	_, err = Load([]string{"--no-such-flag"})
	assert.Error(t, err)
}

func TestTables_Overrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tables.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"locations": {"Jos": {"sun_hours": 6.2, "cost_per_watt": "375", "installation_factor": "1.1"}},
		"fuel_price_per_liter": 900
	}`), 0o644))

	c := Config{TablesFile: path}
	tables, err := c.Tables()
	require.NoError(t, err)
	assert.Contains(t, tables.Locations, "Jos")
	assert.Contains(t, tables.Locations, "Lagos")
	assert.True(t, tables.FuelPricePerLiter.Equal(decimal.NewFromInt(900)))

	c.FuelPrice = "700"
	tables, err = c.Tables()
	require.NoError(t, err)
	assert.True(t, tables.FuelPricePerLiter.Equal(decimal.NewFromInt(700)))
}

func TestTables_BadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tables.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"locations": [}`), 0o644))

	_, err := Config{TablesFile: path}.Tables()
	assert.Error(t, err)
}
