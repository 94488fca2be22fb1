package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMatchesByKind(t *testing.T) {
	err := NotFound("reception", 12)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrValidation))
	assert.Equal(t, "reception 12 not found", err.Error())

	wrapped := fmt.Errorf("loading: %w", InvalidTransition("reception", "draft", "completed"))
	assert.True(t, errors.Is(wrapped, ErrInvalidTransition))
	assert.Equal(t, KindInvalidTransition, KindOf(wrapped))
	assert.Equal(t, Kind(""), KindOf(errors.New("boom")))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(KindMissingReason))
	assert.Equal(t, http.StatusConflict, HTTPStatus(KindInsufficientFunds))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(KindNotFound))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(Kind("other")))
}
