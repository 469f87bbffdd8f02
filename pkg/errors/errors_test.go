package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorKeepsTypedErrors(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", Clone(ErrConflict, "department already exists"))
	got := FromError(wrapped)
	assert.Equal(t, "CONFLICT", got.Code)
	assert.Equal(t, "department already exists", got.Message)
	assert.False(t, Internal(got))
}

func TestFromErrorWrapsUnknown(t *testing.T) {
	driverErr := errors.New(`pq: relation "cap_books" does not exist`)
	got := FromError(driverErr)
	assert.Equal(t, http.StatusInternalServerError, got.Status)
	assert.True(t, Internal(got))
	assert.NotContains(t, got.Message, "cap_books")
	assert.ErrorIs(t, got, driverErr)
}

func TestCloneDoesNotMutateOriginal(t *testing.T) {
	clone := Clone(ErrValidation, "title is required")
	assert.Equal(t, "validation failed", ErrValidation.Message)
	assert.Equal(t, "title is required", clone.Message)
}
