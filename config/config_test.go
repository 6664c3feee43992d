package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(FileEnvVar, "")
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 120, cfg.RateLimitCounters)

	settings := cfg.Settings()
	assert.Equal(t, 3, settings.PointsWin)
	assert.Equal(t, 1, settings.Bands.ChampionMax)
	assert.Equal(t, 8, settings.Bands.PlayoffMax)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server_port: 9000\nseason_name: Apertura\nband_playoff_max: 4\n"), 0o644))
	t.Setenv(FileEnvVar, path)
	t.Setenv("SERVER_PORT", "9100")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("SHUTDOWN_TIMEOUT", "5s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.ServerPort)
	assert.Equal(t, "Apertura", cfg.SeasonName)
	assert.Equal(t, 4, cfg.BandPlayoffMax)
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(c *Config){
		"port":          func(c *Config) { c.ServerPort = 70000 },
		"timeout":       func(c *Config) { c.RequestTimeout = 0 },
		"bands":         func(c *Config) { c.BandChampionMax = 9 },
		"zero champion": func(c *Config) { c.BandChampionMax = 0 },
		"points":        func(c *Config) { c.PointsDraw = 4 },
		"log level":     func(c *Config) { c.LogLevel = "trace" },
		"partial r2":    func(c *Config) { c.R2BucketName = "clips" },
		"admin hash":    func(c *Config) { c.AdminJWTSecret = "secret" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := defaultConfig()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	assert.NoError(t, defaultConfig().Validate())
}
