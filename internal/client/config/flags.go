package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/paychain/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
//	-a string   backend base URL
//	-s string   local storage file
//	-i int      notification poll interval (seconds)
//	-l string   log level
//
// os.Args is filtered with flagx.FilterArgs first so flags owned by other
// loaders (-c) do not interfere.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-s", "-i", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "backend base URL")
	fs.StringVar(&cfg.StoragePath, "s", cfg.StoragePath, "local storage file")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug, info, warn, error)")
	pollInterval := fs.Int("i", int(cfg.NotificationPollInterval.Seconds()), "notification poll interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.NotificationPollInterval = time.Duration(*pollInterval) * time.Second
}
