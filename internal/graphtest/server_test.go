package graphtest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestServerCodeExchangeIsSingleUse(t *testing.T) {
	s := NewServer("app", "secret")
	defer s.Close()
	s.AddUser("1784", "jane", "code-1")

	form := url.Values{
		"client_id":     {"app"},
		"client_secret": {"secret"},
		"grant_type":    {"authorization_code"},
		"code":          {"code-1"},
	}

	resp, err := s.Client().PostForm("https://api.instagram.com/oauth/access_token", form)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode(t, resp)
	assert.True(t, strings.HasPrefix(body["access_token"].(string), "IGQVJshort"))

	resp, err = s.Client().PostForm("https://api.instagram.com/oauth/access_token", form)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid authorization code", decode(t, resp)["error_message"])

	assert.Equal(t, 2, s.RequestCount())
}

func TestServerForcedError(t *testing.T) {
	s := NewServer("app", "secret")
	defer s.Close()
	s.SetErrorResponse("/refresh_access_token", http.StatusInternalServerError)

	resp, err := s.Client().Get("https://graph.instagram.com/refresh_access_token?grant_type=ig_refresh_token")
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	body := decode(t, resp)
	assert.Contains(t, body, "error")
}

func TestServerRejectsUnknownToken(t *testing.T) {
	s := NewServer("app", "secret")
	defer s.Close()
	s.AddUser("1784", "jane", "code-1")

	resp, err := s.Client().Get("https://graph.instagram.com/1784?access_token=nope")
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	_ = decode(t, resp)
	require.Len(t, s.Requests(), 1)
	assert.Equal(t, GraphHost, s.Requests()[0].Host)
}
