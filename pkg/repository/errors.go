package repository

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgDuplicateKeyCode = "23505"
	pgInvalidTextCode  = "22P02"
	pgDatetimeCode     = "22007"
)

// MapError translates database errors to domain errors.
// It maps sql.ErrNoRows to notFoundErr and PostgreSQL unique violation (23505)
// to duplicateErr. Other errors are returned unchanged.
func MapError(err error, notFoundErr, duplicateErr error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return notFoundErr
	}

	if Code(err) == pgDuplicateKeyCode {
		return duplicateErr
	}

	return err
}

// Code returns the PostgreSQL SQLSTATE carried by err, or "" when err
// did not originate from the server.
func Code(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// IsInvalidInput reports whether the server rejected a parameter value,
// such as a timestamp string it could not parse.
func IsInvalidInput(err error) bool {
	switch Code(err) {
	case pgInvalidTextCode, pgDatetimeCode:
		return true
	}
	return false
}
