package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"
)

const (
	EnvServerHost         = "AVIARY_SERVER_HOST"
	EnvServerPort         = "AVIARY_SERVER_PORT"
	EnvServerReadTimeout  = "AVIARY_SERVER_READ_TIMEOUT"
	EnvServerWriteTimeout = "AVIARY_SERVER_WRITE_TIMEOUT"
	EnvServerIdleTimeout  = "AVIARY_SERVER_IDLE_TIMEOUT"
)

// ServerConfig holds HTTP listener parameters.
// WriteTimeout bounds a whole upload, including classification and persistence.
type ServerConfig struct {
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	ReadTimeout  string `toml:"read_timeout"`
	WriteTimeout string `toml:"write_timeout"`
	IdleTimeout  string `toml:"idle_timeout"`
}

// Addr returns the host:port listen address.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// ReadTimeoutDuration returns ReadTimeout as a time.Duration.
func (c *ServerConfig) ReadTimeoutDuration() time.Duration {
	return duration(c.ReadTimeout)
}

// WriteTimeoutDuration returns WriteTimeout as a time.Duration.
func (c *ServerConfig) WriteTimeoutDuration() time.Duration {
	return duration(c.WriteTimeout)
}

// IdleTimeoutDuration returns IdleTimeout as a time.Duration.
func (c *ServerConfig) IdleTimeoutDuration() time.Duration {
	return duration(c.IdleTimeout)
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *ServerConfig) Finalize() error {
	setDefault(&c.Host, "0.0.0.0")
	if c.Port == 0 {
		c.Port = 8000
	}
	setDefault(&c.ReadTimeout, "1m")
	setDefault(&c.WriteTimeout, "10m")
	setDefault(&c.IdleTimeout, "2m")

	setFromEnv(&c.Host, EnvServerHost)
	if v := os.Getenv(EnvServerPort); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Port = port
		}
	}
	setFromEnv(&c.ReadTimeout, EnvServerReadTimeout)
	setFromEnv(&c.WriteTimeout, EnvServerWriteTimeout)
	setFromEnv(&c.IdleTimeout, EnvServerIdleTimeout)

	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	for name, v := range map[string]string{
		"read_timeout":  c.ReadTimeout,
		"write_timeout": c.WriteTimeout,
		"idle_timeout":  c.IdleTimeout,
	} {
		if _, err := time.ParseDuration(v); err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *ServerConfig) Merge(overlay *ServerConfig) {
	mergeString(&c.Host, overlay.Host)
	if overlay.Port != 0 {
		c.Port = overlay.Port
	}
	mergeString(&c.ReadTimeout, overlay.ReadTimeout)
	mergeString(&c.WriteTimeout, overlay.WriteTimeout)
	mergeString(&c.IdleTimeout, overlay.IdleTimeout)
}

func duration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}

func setDefault(dst *string, v string) {
	if *dst == "" {
		*dst = v
	}
}

func setFromEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func mergeString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
