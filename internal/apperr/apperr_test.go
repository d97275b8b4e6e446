package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrom_PassesThroughClassified(t *testing.T) {
	orig := NotFound("Profile not found")
	wrapped := fmt.Errorf("loading: %w", orig)

	got := From(wrapped)
	assert.Same(t, orig, got)
	assert.Equal(t, http.StatusNotFound, got.Status())
	assert.False(t, got.Retryable)
}

func TestFrom_UnclassifiedIsRetryable(t *testing.T) {
	cause := errors.New("connection refused")
	got := From(cause)

	assert.Equal(t, KindUnavailable, got.Kind)
	assert.True(t, got.Retryable)
	assert.ErrorIs(t, got, cause)
	assert.Equal(t, http.StatusServiceUnavailable, got.Status())
}

func TestFrom_Nil(t *testing.T) {
	assert.Nil(t, From(nil))
}

func TestIs(t *testing.T) {
	err := fmt.Errorf("submit: %w", Field("painLevel", "is required"))
	assert.True(t, Is(err, KindValidation))
	assert.False(t, Is(err, KindConflict))
}

func TestSummary(t *testing.T) {
	err := Validation("Please fill in the required fields", map[string]string{
		"lastName":  "is required",
		"firstName": "is required",
	})
	assert.Equal(t, "firstName: is required, lastName: is required", err.Summary())
	assert.Equal(t, "plain", Conflict("plain").Summary())
}
