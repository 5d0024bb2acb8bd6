package storage

import (
	"fmt"
	"os"
)

// CollisionPolicy decides what Save does when the target name already exists.
type CollisionPolicy string

const (
	// Overwrite truncates and rewrites the existing file.
	Overwrite CollisionPolicy = "overwrite"
	// Reject fails with ErrExists and leaves the existing file untouched.
	Reject CollisionPolicy = "reject"
	// Uniquify appends _1, _2, ... to the base name until a free name is claimed.
	Uniquify CollisionPolicy = "uniquify"
)

// ParseCollisionPolicy validates a policy name from configuration.
func ParseCollisionPolicy(s string) (CollisionPolicy, error) {
	switch p := CollisionPolicy(s); p {
	case Overwrite, Reject, Uniquify:
		return p, nil
	}
	return "", fmt.Errorf("unknown collision policy %q (want overwrite, reject or uniquify)", s)
}

// Config holds filesystem store settings.
type Config struct {
	Root            string `toml:"upload_dir"`
	CollisionPolicy string `toml:"collision_policy"`
	MaxSuffix       int    `toml:"max_suffix"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Root            string
	CollisionPolicy string
}

// Policy returns the parsed collision policy. Call after Finalize.
func (c *Config) Policy() CollisionPolicy {
	return CollisionPolicy(c.CollisionPolicy)
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Root != "" {
		c.Root = overlay.Root
	}
	if overlay.CollisionPolicy != "" {
		c.CollisionPolicy = overlay.CollisionPolicy
	}
	if overlay.MaxSuffix != 0 {
		c.MaxSuffix = overlay.MaxSuffix
	}
}

func (c *Config) loadDefaults() {
	if c.Root == "" {
		c.Root = "new_received_audio"
	}
	if c.CollisionPolicy == "" {
		c.CollisionPolicy = string(Overwrite)
	}
	if c.MaxSuffix <= 0 {
		c.MaxSuffix = 1000
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Root != "" {
		if v := os.Getenv(env.Root); v != "" {
			c.Root = v
		}
	}
	if env.CollisionPolicy != "" {
		if v := os.Getenv(env.CollisionPolicy); v != "" {
			c.CollisionPolicy = v
		}
	}
}

func (c *Config) validate() error {
	if c.Root == "" {
		return fmt.Errorf("upload_dir required")
	}
	if _, err := ParseCollisionPolicy(c.CollisionPolicy); err != nil {
		return err
	}
	return nil
}
