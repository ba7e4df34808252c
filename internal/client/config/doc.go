// Package config loads runtime configuration for the PayChain CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Environment: PAYCHAIN_API_URL, PAYCHAIN_STORAGE, PAYCHAIN_LOG_LEVEL and
//     PAYCHAIN_LOG_FORMAT, with a .env file loaded through godotenv.
//  4. Command-line flags, which override everything else.
//
// Supported flags
//
//	-a string   backend base URL
//	-s string   local storage file
//	-i int      notification poll interval (seconds)
//	-l string   log level
//
// # JSON schema
//
//	{
//	  "api_base_url": "http://localhost:8000",
//	  "storage_path": "paychain.db",
//	  "notification_poll_interval": "30s",
//	  "online_check_interval": "5s",
//	  "debounce_delay": "300ms",
//	  "request_timeout": "0s",
//	  "log_level": "info",
//	  "log_format": "text"
//	}
package config
