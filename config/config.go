package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/Dosada05/league-portal/models"
	"github.com/Dosada05/league-portal/storage"
)

// FileEnvVar names an optional YAML file layered between defaults and env.
const FileEnvVar = "CONFIG_FILE"

type Config struct {
	ServerPort      int           `koanf:"server_port"`
	DatabaseURL     string        `koanf:"database_url"`
	RequestTimeout  time.Duration `koanf:"request_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	LogLevel  string `koanf:"log_level"`
	LogFormat string `koanf:"log_format"`

	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`
	RateLimitCounters  int      `koanf:"rate_limit_counters"`

	AdminJWTSecret    string `koanf:"admin_jwt_secret"`
	AdminPasswordHash string `koanf:"admin_password_hash"`

	R2AccountID       string `koanf:"r2_account_id"`
	R2AccessKeyID     string `koanf:"r2_access_key_id"`
	R2SecretAccessKey string `koanf:"r2_secret_access_key"`
	R2BucketName      string `koanf:"r2_bucket_name"`
	R2PublicBaseURL   string `koanf:"r2_public_base_url"`
	UploadDir         string `koanf:"upload_dir"`

	SeasonName      string `koanf:"season_name"`
	PointsWin       int    `koanf:"points_win"`
	PointsDraw      int    `koanf:"points_draw"`
	PointsLoss      int    `koanf:"points_loss"`
	BandChampionMax int    `koanf:"band_champion_max"`
	BandPlayoffMax  int    `koanf:"band_playoff_max"`
}

func defaultConfig() *Config {
	return &Config{
		ServerPort:         8080,
		RequestTimeout:     10 * time.Second,
		ShutdownTimeout:    15 * time.Second,
		LogLevel:           "info",
		LogFormat:          "json",
		CORSAllowedOrigins: []string{"*"},
		RateLimitCounters:  120,
		UploadDir:          "uploads",
		SeasonName:         "Temporada 2025",
		PointsWin:          3,
		PointsDraw:         1,
		PointsLoss:         0,
		BandChampionMax:    1,
		BandPlayoffMax:     8,
	}
}

// Load reads .env when present, then layers struct defaults, the optional
// YAML file named by CONFIG_FILE and finally environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k, err := layered(defaultConfig(), "", os.Getenv(FileEnvVar), "cors_allowed_origins")
	if err != nil {
		return nil, err
	}
	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// layered builds the defaults, file, env stack. Only keys present in
// defaults are taken from the environment, after stripping envPrefix.
func layered(defaults any, envPrefix, path string, lists ...string) (*koanf.Koanf, error) {
	k := koanf.New(".")
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	known := make(map[string]bool)
	for _, key := range k.Keys() {
		known[key] = true
	}
	envProvider := env.Provider(envPrefix, ".", func(key string) string {
		key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
		if !known[key] {
			return ""
		}
		return key
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	for _, list := range lists {
		if err := splitList(k, list); err != nil {
			return nil, err
		}
	}
	return k, nil
}

// splitList turns a comma separated env value into a slice. Values that came
// from YAML are already lists.
func splitList(k *koanf.Koanf, path string) error {
	raw, ok := k.Get(path).(string)
	if !ok {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if err := k.Set(path, out); err != nil {
		return fmt.Errorf("failed to set %s: %w", path, err)
	}
	return nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		errs = append(errs, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", c.ServerPort))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, fmt.Errorf("REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("SHUTDOWN_TIMEOUT must be positive, got %s", c.ShutdownTimeout))
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL must be debug, info, warn or error, got %q", c.LogLevel))
	}
	switch strings.ToLower(c.LogFormat) {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.LogFormat))
	}
	if c.RateLimitCounters < 0 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_COUNTERS must not be negative, got %d", c.RateLimitCounters))
	}
	if c.BandChampionMax < 1 || c.BandChampionMax > c.BandPlayoffMax {
		errs = append(errs, fmt.Errorf("bands must satisfy 1 <= BAND_CHAMPION_MAX (%d) <= BAND_PLAYOFF_MAX (%d)",
			c.BandChampionMax, c.BandPlayoffMax))
	}
	if c.PointsWin < c.PointsDraw || c.PointsDraw < c.PointsLoss {
		errs = append(errs, fmt.Errorf("points must satisfy POINTS_WIN >= POINTS_DRAW >= POINTS_LOSS"))
	}
	if c.AdminJWTSecret != "" && c.AdminPasswordHash == "" {
		errs = append(errs, errors.New("ADMIN_PASSWORD_HASH is required when ADMIN_JWT_SECRET is set"))
	}
	r2 := c.R2()
	if r2.Any() && !r2.Complete() {
		errs = append(errs, errors.New("R2 settings must be all set or all empty"))
	}
	return errors.Join(errs...)
}

func (c *Config) Settings() models.Settings {
	return models.Settings{
		SeasonName: c.SeasonName,
		PointsWin:  c.PointsWin,
		PointsDraw: c.PointsDraw,
		PointsLoss: c.PointsLoss,
		Bands:      models.Bands{ChampionMax: c.BandChampionMax, PlayoffMax: c.BandPlayoffMax},
	}
}

func (c *Config) R2() storage.CloudflareR2UploaderConfig {
	return storage.CloudflareR2UploaderConfig{
		AccountID:       c.R2AccountID,
		AccessKeyID:     c.R2AccessKeyID,
		SecretAccessKey: c.R2SecretAccessKey,
		BucketName:      c.R2BucketName,
		PublicBaseURL:   c.R2PublicBaseURL,
	}
}
