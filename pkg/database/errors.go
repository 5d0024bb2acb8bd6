package database

import "errors"

var (
	// ErrNotReady indicates the startup ping could not reach the database.
	ErrNotReady = errors.New("database not ready")
	// ErrSchemaMissing indicates a required table does not exist; migrations have not run.
	ErrSchemaMissing = errors.New("database schema missing")
)
