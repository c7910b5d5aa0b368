package instagram

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDecode(t *testing.T, body string) Response {
	t.Helper()
	r, err := decodeBody([]byte(body))
	require.NoError(t, err)
	return r
}

func TestResponseAccessors(t *testing.T) {
	r := mustDecode(t, `{"s":"x","n":17841405793187218,"f":1.5,"b":true,"ns":"12"}`)

	assert.Equal(t, "x", r.String("s"))
	assert.Equal(t, "17841405793187218", r.String("n"))
	assert.Equal(t, "true", r.String("b"))
	assert.Equal(t, "", r.String("missing"))

	n, ok := r.Int64("n")
	assert.True(t, ok)
	assert.Equal(t, int64(17841405793187218), n)

	f, ok := r.Int64("f")
	assert.True(t, ok)
	assert.Equal(t, int64(1), f)

	ns, ok := r.Int64("ns")
	assert.True(t, ok)
	assert.Equal(t, int64(12), ns)

	_, ok = r.Int64("s")
	assert.False(t, ok)
	_, ok = r.Int64("b")
	assert.False(t, ok)
}

func TestResponseErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		isError bool
		errType string
		message string
	}{
		{
			name:    "oauth shape",
			body:    `{"error_type":"OAuthException","code":400,"error_message":"Invalid redirect_uri"}`,
			isError: true,
			errType: "OAuthException",
			message: "Invalid redirect_uri",
		},
		{
			name:    "graph shape",
			body:    `{"error":{"message":"Invalid OAuth access token.","type":"OAuthException","code":190}}`,
			isError: true,
			errType: "OAuthException",
			message: "Invalid OAuth access token.",
		},
		{
			name:    "plain string error",
			body:    `{"error":"invalid_request"}`,
			isError: true,
			message: "invalid_request",
		},
		{
			name: "success",
			body: `{"access_token":"x"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := mustDecode(t, tt.body)
			assert.Equal(t, tt.isError, r.IsError())
			assert.Equal(t, tt.errType, r.ErrorType())
			assert.Equal(t, tt.message, r.ErrorMessage())
		})
	}
}

func TestParseToken(t *testing.T) {
	t.Run("short-lived", func(t *testing.T) {
		token, err := ParseToken(mustDecode(t, `{"access_token":"IGQVJ","user_id":17841405793187218}`))
		require.NoError(t, err)
		assert.Equal(t, "IGQVJ", token.AccessToken)
		assert.Equal(t, "17841405793187218", token.UserID)
		assert.Zero(t, token.ExpiresIn)
		assert.True(t, token.ExpiresAt.IsZero())
	})

	t.Run("raw expires_in", func(t *testing.T) {
		token, err := ParseToken(mustDecode(t, `{"access_token":"a","token_type":"bearer","expires_in":5183944}`))
		require.NoError(t, err)
		assert.Equal(t, "bearer", token.TokenType)
		assert.Equal(t, int64(5183944), token.ExpiresIn)
	})

	t.Run("formatted expires_in", func(t *testing.T) {
		token, err := ParseToken(Response{"access_token": "a", "expires_in": "2026-05-13 09:30:00"})
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, time.May, 13, 9, 30, 0, 0, time.Local), token.ExpiresAt)
	})

	t.Run("invalid expires_in", func(t *testing.T) {
		_, err := ParseToken(Response{"access_token": "a", "expires_in": "tomorrow"})
		assert.Error(t, err)
	})

	t.Run("provider error", func(t *testing.T) {
		_, err := ParseToken(mustDecode(t, `{"error_type":"OAuthException","error_message":"bad code"}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bad code")
	})

	t.Run("missing token", func(t *testing.T) {
		_, err := ParseToken(Response{"token_type": "bearer"})
		assert.Error(t, err)
	})
}

func TestOAuth2Token(t *testing.T) {
	expiry := time.Date(2026, time.May, 13, 9, 30, 0, 0, time.Local)
	tok := (&TokenResponse{AccessToken: "a", TokenType: "bearer", UserID: "42", ExpiresAt: expiry}).OAuth2Token()

	assert.Equal(t, "a", tok.AccessToken)
	assert.Equal(t, "Bearer", tok.Type())
	assert.Equal(t, expiry, tok.Expiry)
	assert.Equal(t, "42", tok.Extra("user_id"))

	relative := (&TokenResponse{AccessToken: "a", ExpiresIn: 3600}).OAuth2Token()
	assert.WithinDuration(t, time.Now().Add(time.Hour), relative.Expiry, time.Minute)
	assert.Nil(t, relative.Extra("user_id"))
}

func TestDecodeBodyUsesNumbers(t *testing.T) {
	r := mustDecode(t, `{"expires_in":3600}`)
	_, isNumber := r["expires_in"].(json.Number)
	assert.True(t, isNumber)
}
