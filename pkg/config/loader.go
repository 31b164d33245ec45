// Package config binds environment variables to tagged structs.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Load fills cfg from the environment according to its `env` and
// `envDefault` tags.
func Load(cfg any) error {
	return LoadWithPrefix(cfg, "")
}

// LoadWithPrefix is Load with every variable name prefixed, so that a tool can
// keep its own settings apart from the service's. Slices split on commas
// unless the field sets envSeparator.
func LoadWithPrefix(cfg any, prefix string) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: prefix}); err != nil {
		if prefix != "" {
			return fmt.Errorf("parse %s config: %w", prefix, err)
		}
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}
