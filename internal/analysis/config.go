package analysis

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds the default recording location and the week override.
type Config struct {
	Lon float64 `toml:"lon"`
	Lat float64 `toml:"lat"`
	// Week pins the classifier's week (1..48). Zero derives it from the capture time.
	Week int `toml:"week"`
}

// Env maps config fields to environment variable names.
type Env struct {
	Lon  string
	Lat  string
	Week string
}

const (
	defaultLon = 24
	defaultLat = 56
)

// Finalize applies defaults, environment variable overrides, and validation.
// A zero lon/lat pair is replaced by the default location.
func (c *Config) Finalize(env *Env) error {
	if c.Lon == 0 && c.Lat == 0 {
		c.Lon = defaultLon
		c.Lat = defaultLat
	}
	if env != nil {
		envFloat(env.Lon, &c.Lon)
		envFloat(env.Lat, &c.Lat)
		if v := lookup(env.Week); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.Week = n
			}
		}
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Lon != 0 {
		c.Lon = overlay.Lon
	}
	if overlay.Lat != 0 {
		c.Lat = overlay.Lat
	}
	if overlay.Week != 0 {
		c.Week = overlay.Week
	}
}

func (c *Config) validate() error {
	if c.Lon < -180 || c.Lon > 180 {
		return fmt.Errorf("lon %v out of range", c.Lon)
	}
	if c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("lat %v out of range", c.Lat)
	}
	if c.Week < 0 || c.Week > 48 {
		return fmt.Errorf("week must be 0 (derived) or 1..48, got %d", c.Week)
	}
	return nil
}

func lookup(key string) string {
	if key == "" {
		return ""
	}
	return os.Getenv(key)
}

func envFloat(key string, dst *float64) {
	if v := lookup(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}
