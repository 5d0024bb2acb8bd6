package recordings

import (
	"os"
	"strconv"

	"github.com/JaimeStill/aviary/pkg/storage"
)

// Config holds upload directory settings and WAV enforcement.
// The embedded storage fields appear inline in the [recordings] table.
type Config struct {
	storage.Config
	RequireWAV bool `toml:"require_wav"`
}

// Env maps config fields to environment variable names.
type Env struct {
	storage.Env
	RequireWAV string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	var storeEnv *storage.Env
	if env != nil {
		storeEnv = &env.Env
		if v := os.Getenv(env.RequireWAV); env.RequireWAV != "" && v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				c.RequireWAV = b
			}
		}
	}
	return c.Config.Finalize(storeEnv)
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	c.Config.Merge(&overlay.Config)
	if overlay.RequireWAV {
		c.RequireWAV = true
	}
}
