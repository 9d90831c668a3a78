package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainErrorMapsSentinels(t *testing.T) {
	notFound := ToDomainError(fmt.Errorf("get person: %w", ErrNotFound))
	require.NotNil(t, notFound)
	assert.Equal(t, http.StatusNotFound, notFound.HTTPStatus)
	assert.Equal(t, "NOT_FOUND", notFound.Code)

	conflict := ToDomainError(fmt.Errorf("insert user: %w", ErrConflict))
	assert.Equal(t, http.StatusConflict, conflict.HTTPStatus)

	internal := ToDomainError(errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, internal.HTTPStatus)
	assert.Equal(t, "internal server error", internal.Message)

	assert.Nil(t, ToDomainError(nil))
	assert.NoError(t, MapError(nil))
}

func TestToDomainErrorKeepsWrappedDomainError(t *testing.T) {
	original := NewValidationError("bad input", map[string]any{"email": "is required"})
	wrapped := fmt.Errorf("register: %w", original)

	got := ToDomainError(wrapped)
	assert.Equal(t, "VALIDATION_FAILED", got.Code)
	assert.Equal(t, "is required", got.Details["email"])
}

func TestNewDuplicateApplication(t *testing.T) {
	last := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	err := NewDuplicateApplication(last, 36*time.Hour)

	de := ToDomainError(err)
	assert.Equal(t, "DUPLICATE_APPLICATION", de.Code)
	assert.Equal(t, http.StatusConflict, de.HTTPStatus)
	assert.Contains(t, de.Message, "2 day(s)")
	assert.Equal(t, int64(129600), de.Details["retry_after_seconds"])
	assert.Equal(t, "2026-03-01T12:00:00Z", de.Details["last_applied_at"])
}

func TestFromStatus(t *testing.T) {
	assert.Equal(t, "METHOD_NOT_ALLOWED", FromStatus(http.StatusMethodNotAllowed, "nope").Code)
	assert.Equal(t, "INTERNAL_ERROR", FromStatus(http.StatusBadGateway, "upstream").Code)
	assert.Equal(t, "REQUEST_FAILED", FromStatus(http.StatusTeapot, "tea").Code)
}
