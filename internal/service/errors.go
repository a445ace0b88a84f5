package service

import (
	"database/sql"
	"errors"
)

var (
	// ErrNotFound means the referenced package, product or user does not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation rejects malformed input before any store call.
	ErrValidation = errors.New("validation error")

	// ErrForbidden means the caller lacks the manager capability.
	ErrForbidden = errors.New("forbidden")

	// ErrConflict is a retryable optimistic-concurrency or referential conflict.
	ErrConflict = errors.New("conflict")

	// ErrNotReady means the package cannot be archived until every manifest
	// line has been scan-confirmed.
	ErrNotReady = errors.New("package not ready for archive")

	// ErrScanMismatch means the decoded token does not equal the product the
	// picker chose to scan. Retryable; session state is unchanged.
	ErrScanMismatch = errors.New("scanned code does not match the expected product")
)

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
