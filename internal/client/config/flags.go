package config

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/taskflow/internal/flagx"
)

// Flags lists the flag names owned by this package, -c/-config included.
// The command tree never sees them.
var Flags = []string{"a", "d", "s", "r", "i", "l", "f", "c", "config"}

// parseFlags populates selected Config fields from command-line flags.
//
// Note: args are filtered with flagx.FilterArgs first, so subcommands and
// their flags do not interfere.
func parseFlags(cfg *Config, args []string) error {
	filtered := flagx.FilterArgs(args, []string{"a", "d", "s", "r", "i", "l", "f"})

	fs := flag.NewFlagSet("taskflow", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerBaseURL, "a", cfg.ServerBaseURL, "backend base URL")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "local database path")
	fs.StringVar(&cfg.StorageBackend, "s", cfg.StorageBackend, "credential storage: sqlite or redis")
	fs.StringVar(&cfg.RedisAddr, "r", cfg.RedisAddr, "redis address")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.LogFormat, "f", cfg.LogFormat, "log format")

	if err := fs.Parse(filtered); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	// Sub-second intervals from JSON or env survive when -i is absent.
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "i" {
			cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
		}
	})
	return nil
}
