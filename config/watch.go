package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/Dosada05/league-portal/broadcast"
)

// WatchEnvPrefix prefixes every variable read by the leaguewatch replica.
const WatchEnvPrefix = "LEAGUEWATCH_"

// WatchConfig configures a replica following a running server.
type WatchConfig struct {
	ServerURL             string        `koanf:"server_url"`
	Channels              []string      `koanf:"channels"`
	RequestTimeout        time.Duration `koanf:"request_timeout"`
	StatsPollInterval     time.Duration `koanf:"stats_poll_interval"`
	StandingsPollInterval time.Duration `koanf:"standings_poll_interval"`
	ReconnectMin          time.Duration `koanf:"reconnect_min"`
	ReconnectMax          time.Duration `koanf:"reconnect_max"`
	LeaderboardLimit      int           `koanf:"leaderboard_limit"`
	LogLevel              string        `koanf:"log_level"`
	LogFormat             string        `koanf:"log_format"`
}

func defaultWatchConfig() *WatchConfig {
	return &WatchConfig{
		ServerURL:             "http://localhost:8080",
		Channels:              []string{},
		RequestTimeout:        10 * time.Second,
		StatsPollInterval:     1500 * time.Millisecond,
		StandingsPollInterval: 10 * time.Second,
		ReconnectMin:          500 * time.Millisecond,
		ReconnectMax:          30 * time.Second,
		LeaderboardLimit:      10,
		LogLevel:              "info",
		LogFormat:             "console",
	}
}

// LoadWatch reads LEAGUEWATCH_* variables over the defaults, with an
// optional YAML file named by LEAGUEWATCH_CONFIG_FILE in between.
func LoadWatch() (*WatchConfig, error) {
	k, err := layered(defaultWatchConfig(), WatchEnvPrefix, os.Getenv(WatchEnvPrefix+FileEnvVar), "channels")
	if err != nil {
		return nil, err
	}
	cfg := &WatchConfig{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func (c *WatchConfig) Validate() error {
	var errs []error
	if u, err := url.Parse(c.ServerURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("LEAGUEWATCH_SERVER_URL must be an http(s) url, got %q", c.ServerURL))
	}
	if _, err := broadcast.ParseChannels(strings.Join(c.Channels, ",")); err != nil {
		errs = append(errs, fmt.Errorf("LEAGUEWATCH_CHANNELS: %w", err))
	}
	for name, d := range map[string]time.Duration{
		"REQUEST_TIMEOUT":         c.RequestTimeout,
		"STATS_POLL_INTERVAL":     c.StatsPollInterval,
		"STANDINGS_POLL_INTERVAL": c.StandingsPollInterval,
		"RECONNECT_MIN":           c.ReconnectMin,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("LEAGUEWATCH_%s must be positive, got %s", name, d))
		}
	}
	if c.ReconnectMax < c.ReconnectMin {
		errs = append(errs, errors.New("LEAGUEWATCH_RECONNECT_MAX must not be below LEAGUEWATCH_RECONNECT_MIN"))
	}
	if c.LeaderboardLimit < 0 {
		errs = append(errs, fmt.Errorf("LEAGUEWATCH_LEADERBOARD_LIMIT must not be negative, got %d", c.LeaderboardLimit))
	}
	return errors.Join(errs...)
}

// SubscribedChannels resolves the configured list; empty means all.
func (c *WatchConfig) SubscribedChannels() []broadcast.Channel {
	chs, err := broadcast.ParseChannels(strings.Join(c.Channels, ","))
	if err != nil {
		return broadcast.AllChannels
	}
	return chs
}
