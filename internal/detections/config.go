package detections

import (
	"fmt"
	"os"
)

// Mode selects how detection inserts for one recording are grouped into transactions.
type Mode string

const (
	// ModePerDetection commits every detection in its own transaction.
	ModePerDetection Mode = "per_detection"
	// ModeBatch commits all detections of a recording together, or none of them.
	ModeBatch Mode = "batch"
)

// ParseMode validates a transaction mode name.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModePerDetection, ModeBatch:
		return m, nil
	}
	return "", fmt.Errorf("unknown transaction_mode %q", s)
}

// Config holds persistence settings.
type Config struct {
	TransactionMode string `toml:"transaction_mode"`
}

// Env maps config fields to environment variable names.
type Env struct {
	TransactionMode string
}

// Mode returns the parsed transaction mode. Call after Finalize.
func (c *Config) Mode() Mode {
	return Mode(c.TransactionMode)
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	if c.TransactionMode == "" {
		c.TransactionMode = string(ModePerDetection)
	}
	if env != nil && env.TransactionMode != "" {
		if v := os.Getenv(env.TransactionMode); v != "" {
			c.TransactionMode = v
		}
	}
	_, err := ParseMode(c.TransactionMode)
	return err
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.TransactionMode != "" {
		c.TransactionMode = overlay.TransactionMode
	}
}
