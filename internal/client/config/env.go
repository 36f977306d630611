package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

// EnvPrefix is prepended to every variable name, e.g. TASKFLOW_CACHE_TTL.
const EnvPrefix = "TASKFLOW_"

// lookuper is a test seam.
var lookuper envconfig.Lookuper = envconfig.OsLookuper()

// parseEnv overlays cfg with the variables that are set. Unset variables
// leave the current value alone.
func parseEnv(ctx context.Context, cfg *Config, l envconfig.Lookuper) error {
	err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   cfg,
		Lookuper: envconfig.PrefixLookuper(EnvPrefix, l),
	})
	if err != nil {
		return fmt.Errorf("read environment: %w", err)
	}
	return nil
}
