package config

import "time"

// Config holds runtime settings for the PayChain CLI.
//
// Fields:
//   - APIBaseURL: base URL of the PayChain REST backend.
//   - StoragePath: SQLite file holding the credential, session slice and
//     offline cache.
//   - NotificationPollInterval: how often the unread counter is polled.
//   - OnlineCheckInterval: how often the client probes backend health.
//   - DebounceDelay: delay applied to interactive search and filter input.
//   - RequestTimeout: per-request deadline; zero means none.
//   - LogLevel, LogFormat: passed to logging.New.
type Config struct {
	APIBaseURL               string
	StoragePath              string
	NotificationPollInterval time.Duration
	OnlineCheckInterval      time.Duration
	DebounceDelay            time.Duration
	RequestTimeout           time.Duration
	LogLevel                 string
	LogFormat                string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://localhost:8000"
	c.StoragePath = "paychain.db"
	c.NotificationPollInterval = 30 * time.Second
	c.OnlineCheckInterval = 5 * time.Second
	c.DebounceDelay = 300 * time.Millisecond
	c.RequestTimeout = 0
	c.LogLevel = "info"
	c.LogFormat = "text"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), the environment and command-line flags. Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
