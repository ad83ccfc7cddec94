package services

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestServiceErrorKinds(t *testing.T) {
	err := WrapError(ErrNotFound("Game not found"), "answer cell")
	assert.True(t, errors.Is(err, NotFound))
	assert.False(t, errors.Is(err, Conflict))

	var svcErr ServiceError
	assert.True(t, errors.As(err, &svcErr))
	assert.Equal(t, http.StatusNotFound, svcErr.Status)
	assert.Equal(t, "Game not found", svcErr.Message)
}

func TestConflictMapsToBadRequest(t *testing.T) {
	var svcErr ServiceError
	assert.True(t, errors.As(ErrConflict("Game already completed"), &svcErr))
	assert.Equal(t, http.StatusBadRequest, svcErr.Status)
	assert.Equal(t, KindConflict, svcErr.Kind)
}

func TestWrapNil(t *testing.T) {
	assert.NoError(t, WrapError(nil, "noop"))
}
