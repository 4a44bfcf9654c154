package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// ParseEnv fills a service config struct from environment variables
// using `env` struct tags. Flags layered on top of the result take
// precedence, so call this before flag parsing.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
