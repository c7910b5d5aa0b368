package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	err := New(ErrorTypeNetwork, 0, stderrors.New("connection reset"), "%s %s failed", "GET", "https://graph.instagram.com/me")
	assert.Equal(t, "network error (code 0): GET https://graph.instagram.com/me failed: connection reset", err.Error())

	err = New(ErrorTypeParsing, 502, nil, "response body is not a JSON object")
	assert.Equal(t, "parsing error (code 502): response body is not a JSON object", err.Error())
}

func TestErrorMatching(t *testing.T) {
	cause := stderrors.New("dial tcp: timeout")
	err := fmt.Errorf("refresh: %w", New(ErrorTypeNetwork, 0, cause, "request failed"))

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, &Error{Type: ErrorTypeNetwork})
	assert.NotErrorIs(t, err, ErrMissingCode)
	assert.True(t, IsNetwork(err))
	assert.False(t, IsInvalidInput(err))

	assert.ErrorIs(t, ErrMissingCode, &Error{Type: ErrorTypeInvalidInput})
	assert.True(t, IsInvalidInput(fmt.Errorf("wrapped: %w", ErrMissingCode)))
}

func TestTypeOf(t *testing.T) {
	assert.Equal(t, ErrorTypeUnknown, TypeOf(stderrors.New("plain")))
	assert.Equal(t, ErrorTypeUnknown, TypeOf(nil))
	assert.Equal(t, ErrorTypeParsing, TypeOf(&Error{Type: ErrorTypeParsing}))
}
