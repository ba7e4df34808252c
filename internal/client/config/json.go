package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/paychain/internal/flagx"
	"github.com/dmitrijs2005/paychain/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Durations
// may be strings like "30s" or integer nanoseconds.
type JsonConfig struct {
	APIBaseURL               string         `json:"api_base_url"`
	StoragePath              string         `json:"storage_path"`
	NotificationPollInterval timex.Duration `json:"notification_poll_interval"`
	OnlineCheckInterval      timex.Duration `json:"online_check_interval"`
	DebounceDelay            timex.Duration `json:"debounce_delay"`
	RequestTimeout           timex.Duration `json:"request_timeout"`
	LogLevel                 string         `json:"log_level"`
	LogFormat                string         `json:"log_format"`
}

// parseJson overlays cfg with the fields present in the file named by -c or
// -config. Absent or zero fields keep their current value. It panics on read
// or unmarshal errors.
func parseJson(cfg *Config) {
	path := flagx.ConfigPath(os.Args[1:])
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setString(&cfg.APIBaseURL, jc.APIBaseURL)
	setString(&cfg.StoragePath, jc.StoragePath)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.LogFormat, jc.LogFormat)
	if jc.NotificationPollInterval.Duration > 0 {
		cfg.NotificationPollInterval = jc.NotificationPollInterval.Duration
	}
	if jc.OnlineCheckInterval.Duration > 0 {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
	if jc.DebounceDelay.Duration > 0 {
		cfg.DebounceDelay = jc.DebounceDelay.Duration
	}
	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
