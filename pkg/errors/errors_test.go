package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorKeepsTypedError(t *testing.T) {
	err := Clone(ErrNotFound, "sample plan not found")
	wrapped := errors.Join(errors.New("context"), err)

	got := FromError(wrapped)
	assert.Equal(t, "NOT_FOUND", got.Code)
	assert.Equal(t, http.StatusNotFound, got.Status)
	assert.Equal(t, "sample plan not found", got.Message)
}

func TestFromErrorWrapsUnknown(t *testing.T) {
	got := FromError(errors.New("boom"))
	assert.Equal(t, ErrInternal.Code, got.Code)
	assert.Equal(t, http.StatusInternalServerError, got.Status)
	assert.EqualError(t, got, "internal server error: boom")
}

func TestCloneDoesNotMutateOriginal(t *testing.T) {
	clone := Clone(ErrValidation, "question type required")
	assert.Equal(t, "validation failed", ErrValidation.Message)
	assert.Equal(t, "question type required", clone.Message)
	assert.Nil(t, FromError(nil))
}

func TestIsMatchesOnCode(t *testing.T) {
	err := fmt.Errorf("apply: %w", Clone(ErrAlreadySampled, "learners already sampled: l-1"))
	assert.True(t, errors.Is(err, ErrAlreadySampled))
	assert.False(t, errors.Is(err, ErrConflict))
	assert.Equal(t, http.StatusConflict, FromError(err).Status)

	internal := Internal(errors.New("disk full"), "failed to persist document")
	assert.True(t, errors.Is(internal, ErrInternal))
	assert.EqualError(t, internal, "failed to persist document: disk full")
}
