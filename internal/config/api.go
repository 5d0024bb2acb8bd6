package config

import (
	"fmt"
	"strings"

	"github.com/JaimeStill/aviary/pkg/formatting"
	"github.com/JaimeStill/aviary/pkg/middleware"
	"github.com/JaimeStill/aviary/pkg/openapi"
	"github.com/JaimeStill/aviary/pkg/pagination"
)

const (
	EnvAPIBasePath      = "AVIARY_API_BASE_PATH"
	EnvAPIUploadPath    = "AVIARY_API_UPLOAD_PATH"
	EnvAPIMaxUploadSize = "AVIARY_API_MAX_UPLOAD_SIZE"
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "AVIARY_CORS_ENABLED",
	Origins:          "AVIARY_CORS_ORIGINS",
	AllowedMethods:   "AVIARY_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "AVIARY_CORS_ALLOWED_HEADERS",
	AllowCredentials: "AVIARY_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "AVIARY_CORS_MAX_AGE",
}

var openAPIEnv = &openapi.ConfigEnv{
	Title:       "AVIARY_OPENAPI_TITLE",
	Description: "AVIARY_OPENAPI_DESCRIPTION",
}

var paginationEnv = &pagination.ConfigEnv{
	DefaultPageSize: "AVIARY_PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "AVIARY_PAGINATION_MAX_PAGE_SIZE",
}

// APIConfig holds routing prefixes, the upload size limit, CORS, OpenAPI
// metadata and pagination.
type APIConfig struct {
	BasePath      string                `toml:"base_path"`
	UploadPath    string                `toml:"upload_path"`
	MaxUploadSize string                `toml:"max_upload_size"`
	CORS          middleware.CORSConfig `toml:"cors"`
	OpenAPI       openapi.Config        `toml:"openapi"`
	Pagination    pagination.Config     `toml:"pagination"`

	maxUploadBytes int64
}

// MaxUploadSizeBytes returns the parsed upload limit. Valid after Finalize.
func (c *APIConfig) MaxUploadSizeBytes() int64 {
	return c.maxUploadBytes
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested configs.
func (c *APIConfig) Finalize() error {
	setDefault(&c.BasePath, "/api")
	setDefault(&c.UploadPath, "/upload")
	setDefault(&c.MaxUploadSize, "100MB")

	setFromEnv(&c.BasePath, EnvAPIBasePath)
	setFromEnv(&c.UploadPath, EnvAPIUploadPath)
	setFromEnv(&c.MaxUploadSize, EnvAPIMaxUploadSize)

	size, err := formatting.ParseBytes(c.MaxUploadSize)
	if err != nil {
		return fmt.Errorf("max_upload_size: %w", err)
	}
	if size <= 0 {
		return fmt.Errorf("max_upload_size must be positive")
	}
	c.maxUploadBytes = size

	for name, prefix := range map[string]string{"base_path": c.BasePath, "upload_path": c.UploadPath} {
		if !strings.HasPrefix(prefix, "/") || prefix == "/" || strings.Count(prefix, "/") != 1 {
			return fmt.Errorf("%s must be a single path segment such as /api, got %q", name, prefix)
		}
	}
	if c.BasePath == c.UploadPath {
		return fmt.Errorf("base_path and upload_path must differ")
	}
	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.OpenAPI.Finalize(openAPIEnv); err != nil {
		return fmt.Errorf("openapi: %w", err)
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	mergeString(&c.BasePath, overlay.BasePath)
	mergeString(&c.UploadPath, overlay.UploadPath)
	mergeString(&c.MaxUploadSize, overlay.MaxUploadSize)
	c.CORS.Merge(&overlay.CORS)
	c.OpenAPI.Merge(&overlay.OpenAPI)
	c.Pagination.Merge(&overlay.Pagination)
}
