package store

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "github.com/skillsenselab/voicenotes/errors"
)

// IsConnectionError checks if a database error is a connectivity failure,
// as opposed to an operation failure. The distinction drives the 503/500
// split at the HTTP boundary.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())
	patterns := []string{
		"connection refused",
		"connection reset",
		"broken pipe",
		"i/o timeout",
		"no route to host",
		"network is unreachable",
		"database is locked",
		"driver: bad connection",
		"unable to open database",
	}
	for _, p := range patterns {
		if strings.Contains(errStr, p) {
			return true
		}
	}
	return false
}

// FromDatabase converts a database error to an AppError. GORM's translated
// duplicate-key error maps to AlreadyExists; connectivity failures map to a
// retryable 503-class error; everything else is a generic database error.
func FromDatabase(err error, resource string) *apperrors.AppError {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFound(resource, "")
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperrors.AlreadyExists(resource).WithCause(err)
	}

	if IsConnectionError(err) {
		return apperrors.ServiceUnavailable("database").WithCause(err)
	}

	return apperrors.DatabaseError(err)
}
