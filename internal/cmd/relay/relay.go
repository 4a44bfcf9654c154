// Package relay parses relay command flags and starts the transport
// process.
package relay

import (
	"context"
	"flag"
	"fmt"

	entrypoint "github.com/louisbranch/parlor.space/internal/platform/cmd"
	server "github.com/louisbranch/parlor.space/internal/services/relay/app"
)

// Config holds relay command configuration.
type Config struct {
	HTTPAddr string `env:"PARLOR_SPACE_RELAY_HTTP_ADDR" envDefault:":8087"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "relay HTTP listen address")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the relay service.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceRelay, func(context.Context) error {
		if err := server.Run(ctx, server.Config{HTTPAddr: cfg.HTTPAddr}); err != nil {
			return fmt.Errorf("serve relay: %w", err)
		}
		return nil
	})
}
