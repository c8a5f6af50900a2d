package store

import (
	stderrors "errors"
	"fmt"
	"testing"

	"gorm.io/gorm"

	apperrors "github.com/skillsenselab/voicenotes/errors"
)

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{fmt.Errorf("dial tcp: connection refused"), true},
		{fmt.Errorf("unable to open database file"), true},
		{fmt.Errorf("database is locked"), true},
		{fmt.Errorf("UNIQUE constraint failed: entries.id"), false},
		{gorm.ErrRecordNotFound, false},
	}
	for _, tc := range tests {
		if got := IsConnectionError(tc.err); got != tc.want {
			t.Errorf("IsConnectionError(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}

func TestFromDatabase(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode apperrors.ErrorCode
	}{
		{"not found", gorm.ErrRecordNotFound, apperrors.ErrCodeNotFound},
		{"duplicate", gorm.ErrDuplicatedKey, apperrors.ErrCodeAlreadyExists},
		{"connectivity", fmt.Errorf("dial tcp: connection refused"), apperrors.ErrCodeServiceUnavailable},
		{"generic", fmt.Errorf("syntax error"), apperrors.ErrCodeDatabaseError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			appErr := FromDatabase(tc.err, "entry")
			if appErr.Code != tc.wantCode {
				t.Errorf("expected %s, got %s", tc.wantCode, appErr.Code)
			}
		})
	}
	if FromDatabase(nil, "entry") != nil {
		t.Error("nil error should map to nil")
	}

	wrapped := fmt.Errorf("create: %w", gorm.ErrDuplicatedKey)
	if FromDatabase(wrapped, "entry").Code != apperrors.ErrCodeAlreadyExists {
		t.Error("wrapped duplicate error should still map to ALREADY_EXISTS")
	}
	if !stderrors.Is(FromDatabase(wrapped, "entry"), gorm.ErrDuplicatedKey) {
		t.Error("cause should be preserved")
	}
}
