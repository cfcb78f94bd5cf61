package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.InDelta(t, 25.0, cfg.Discovery.DefaultRadiusMiles, 0.001)
	assert.InDelta(t, 100.0, cfg.Discovery.MaxRadiusMiles, 0.001)
	assert.Equal(t, 20, cfg.Discovery.DefaultLimit)
	assert.Equal(t, 100, cfg.Discovery.MaxLimit)
	assert.Equal(t, 1, cfg.Discovery.TierPriority["default"]["featured"])
	assert.Equal(t, 3, cfg.Discovery.TierPriority["default"]["standard"])
	assert.Equal(t, 30, cfg.Insights.BasicMaxLookbackDays)
	assert.Equal(t, 90, cfg.Insights.ProMaxLookbackDays)
	assert.InDelta(t, 25.0, cfg.Insights.MissingMarketsMiles, 0.001)
	assert.Equal(t, 10, cfg.Insights.MissingMarketsLimit)
	assert.Equal(t, 30, cfg.Insights.CoverageGapDays)
	assert.Equal(t, 5, cfg.Resilience.FailureThreshold)
	assert.Equal(t, "sqlite", cfg.Postal.Driver)
	assert.Equal(t, "postal.db", cfg.Postal.Path)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
store:
  database_url: postgres://localhost/market
log:
  level: debug
  format: console
server:
  port: 9090
discovery:
  tier_priority:
    fireworks:
      featured: 1
      premium: 1
      standard: 2
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost/market", cfg.Store.DatabaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 1, cfg.Discovery.TierPriority["fireworks"]["premium"])
	// Defaults still apply for unset values
	assert.Equal(t, 20, cfg.Discovery.DefaultLimit)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
postal:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("VENDORGEO_POSTAL_DRIVER", "postgres")
	t.Setenv("VENDORGEO_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "postgres", cfg.Postal.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("VENDORGEO_SERVER_PORT", "3000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config with all defaults populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Server.Port = 8080
	cfg.Discovery.DefaultRadiusMiles = 25
	cfg.Discovery.MaxRadiusMiles = 100
	cfg.Discovery.DefaultLimit = 20
	cfg.Discovery.MaxLimit = 100
	cfg.Insights.BasicMaxLookbackDays = 30
	cfg.Insights.ProMaxLookbackDays = 90
	cfg.Postal.Driver = "sqlite"
	cfg.Postal.Path = "postal.db"
	return cfg
}

func TestValidateServe_AllPresent(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.DatabaseURL = "postgres://localhost/test"

	assert.NoError(t, cfg.Validate("serve"))
}

func TestValidateSearch_MissingDatabase(t *testing.T) {
	cfg := validDefaults()

	err := cfg.Validate("search")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "store.database_url is required")
}

func TestValidateServe_InvalidPort(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.DatabaseURL = "postgres://localhost/test"
	cfg.Server.Port = 0

	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")
}

func TestValidatePostal_Drivers(t *testing.T) {
	cfg := validDefaults()
	assert.NoError(t, cfg.Validate("postal"))

	cfg.Postal.Path = ""
	err := cfg.Validate("postal")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "postal.path is required")

	cfg.Postal.Driver = "postgres"
	err = cfg.Validate("postal")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "postgres postal driver")

	cfg.Store.DatabaseURL = "postgres://localhost/test"
	assert.NoError(t, cfg.Validate("postal"))

	cfg.Postal.Driver = "csv"
	err = cfg.Validate("postal")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "postal.driver must be sqlite or postgres")
}

func TestValidateUnknownMode(t *testing.T) {
	cfg := validDefaults()
	err := cfg.Validate("unknown")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}

func TestValidateDiscoveryBounds(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.DatabaseURL = "postgres://localhost/test"

	cfg.Discovery.DefaultRadiusMiles = 150
	err := cfg.Validate("search")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "default_radius_miles")

	cfg.Discovery.DefaultRadiusMiles = 25
	cfg.Discovery.DefaultLimit = 0
	err = cfg.Validate("search")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "default_limit")

	cfg.Discovery.DefaultLimit = 20
	assert.NoError(t, cfg.Validate("search"))
}

func TestValidateInsightsLookbackCaps(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.DatabaseURL = "postgres://localhost/test"

	cfg.Insights.ProMaxLookbackDays = 10
	err := cfg.Validate("insights")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "lookback caps")
}
