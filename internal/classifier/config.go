package classifier

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

// Config locates the remote analyzer service.
type Config struct {
	BaseURL       string  `toml:"base_url"`
	Timeout       string  `toml:"timeout"`
	MinConfidence float64 `toml:"min_confidence"`
	// RequireHealthy makes a failed startup health check fatal.
	RequireHealthy bool `toml:"require_healthy"`
}

// Env maps config fields to environment variable names.
type Env struct {
	BaseURL        string
	Timeout        string
	MinConfidence  string
	RequireHealthy string
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
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
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
	if overlay.MinConfidence != 0 {
		c.MinConfidence = overlay.MinConfidence
	}
	if overlay.RequireHealthy {
		c.RequireHealthy = true
	}
}

func (c *Config) loadDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "http://localhost:5002"
	}
	if c.Timeout == "" {
		c.Timeout = "2m"
	}
	if c.MinConfidence == 0 {
		c.MinConfidence = 0.1
	}
}

func (c *Config) loadEnv(env *Env) {
	if v := os.Getenv(env.BaseURL); env.BaseURL != "" && v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv(env.Timeout); env.Timeout != "" && v != "" {
		c.Timeout = v
	}
	if v := os.Getenv(env.MinConfidence); env.MinConfidence != "" && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.MinConfidence = f
		}
	}
	if v := os.Getenv(env.RequireHealthy); env.RequireHealthy != "" && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.RequireHealthy = b
		}
	}
}

func (c *Config) validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid base_url %q", c.BaseURL)
	}
	if d, err := time.ParseDuration(c.Timeout); err != nil || d <= 0 {
		return fmt.Errorf("invalid timeout %q", c.Timeout)
	}
	if c.MinConfidence < 0 || c.MinConfidence > 1 {
		return fmt.Errorf("min_confidence must be within [0, 1]")
	}
	return nil
}
