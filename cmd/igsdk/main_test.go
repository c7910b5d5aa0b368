package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
	"igsdk/internal/graphtest"
	"igsdk/pkg/errors"
	"igsdk/pkg/ui"
)

const (
	testAppID    = "990602627938098"
	testSecret   = "app-secret-0123456789"
	testRedirect = "https://example.com/auth/"
)

func setupEnv(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	ui.SetOutput(io.Discard)
	t.Cleanup(func() { ui.SetOutput(os.Stderr) })
}

// run executes the CLI with args and returns what it wrote to stdout
func run(t *testing.T, a *app, args ...string) (string, error) {
	t.Helper()
	if a.stdin == nil {
		a.stdin = strings.NewReader("")
	}
	var out bytes.Buffer
	root := newRootCmd(a)
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func appFlags(extra ...string) []string {
	return append([]string{
		"--app-id", testAppID,
		"--app-secret", testSecret,
		"--redirect-uri", testRedirect,
		"--log-level", "error",
	}, extra...)
}

func decodeJSON(t *testing.T, s string) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(s), &out), s)
	return out
}

func TestAuthURL(t *testing.T) {
	setupEnv(t)

	t.Run("with state", func(t *testing.T) {
		out, err := run(t, &app{}, append([]string{"auth", "url", "--state", "abc"}, appFlags()...)...)
		require.NoError(t, err)

		u, err := url.Parse(strings.TrimSpace(out))
		require.NoError(t, err)
		q := u.Query()
		assert.Equal(t, "api.instagram.com", u.Host)
		assert.Equal(t, testAppID, q.Get("client_id"))
		assert.Equal(t, "user_profile,user_media", q.Get("scope"))
		assert.Equal(t, "code", q.Get("response_type"))
		assert.Equal(t, testRedirect, q.Get("redirect_uri"))
		assert.Equal(t, "abc", q.Get("state"))
	})

	t.Run("generated state", func(t *testing.T) {
		out, err := run(t, &app{}, append([]string{"auth", "url"}, appFlags()...)...)
		require.NoError(t, err)

		u, err := url.Parse(strings.TrimSpace(out))
		require.NoError(t, err)
		assert.Len(t, u.Query().Get("state"), 21)
	})

	t.Run("missing app credentials", func(t *testing.T) {
		_, err := run(t, &app{}, "auth", "url", "--log-level", "error")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "app_id")
	})
}

func TestExchangeEmptyCode(t *testing.T) {
	setupEnv(t)
	server := graphtest.NewServer(testAppID, testSecret)
	defer server.Close()

	_, err := run(t, &app{httpClient: server.Client()}, append([]string{"auth", "exchange", ""}, appFlags()...)...)
	assert.ErrorIs(t, err, errors.ErrMissingCode)
	assert.Equal(t, 0, server.RequestCount())
}

func TestFullFlow(t *testing.T) {
	setupEnv(t)
	server := graphtest.NewServer(testAppID, testSecret)
	defer server.Close()
	server.AddUser("17841405793187218", "jane", "AQB-code",
		graphtest.Media{ID: "1", MediaType: "IMAGE", Caption: "first"},
		graphtest.Media{ID: "2", MediaType: "VIDEO", Caption: "second"})

	newApp := func() *app { return &app{httpClient: server.Client()} }

	out, err := run(t, newApp(), append([]string{"auth", "exchange", "AQB-code"}, appFlags()...)...)
	require.NoError(t, err)
	short := decodeJSON(t, out)
	shortToken := short["access_token"].(string)
	assert.Contains(t, out, `"user_id": 17841405793187218`)

	out, err = run(t, newApp(), append([]string{"auth", "long-lived", "--access-token", shortToken}, appFlags()...)...)
	require.NoError(t, err)
	long := decodeJSON(t, out)
	longToken := long["access_token"].(string)
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}$`, long["expires_in"])

	// refresh reads the token from stdin when none is configured
	out, err = run(t, &app{httpClient: server.Client(), stdin: strings.NewReader(longToken + "\n")},
		"auth", "refresh", "--log-level", "error")
	require.NoError(t, err)
	refreshed := decodeJSON(t, out)
	token := refreshed["access_token"].(string)
	assert.NotEqual(t, longToken, token)

	out, err = run(t, newApp(), "user", "me", "--access-token", token, "--user-id", "17841405793187218", "--log-level", "error")
	require.NoError(t, err)
	assert.Equal(t, "jane", decodeJSON(t, out)["username"])

	out, err = run(t, newApp(), "user", "media", "--access-token", token, "--user-id", "17841405793187218",
		"--field", "id", "--field", "caption", "--format", "yaml", "--log-level", "error")
	require.NoError(t, err)

	var media struct {
		Data []map[string]interface{} `yaml:"data"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &media))
	require.Len(t, media.Data, 2)
	assert.Equal(t, "second", media.Data[1]["caption"])

	last := server.Requests()[len(server.Requests())-1]
	assert.Equal(t, "id,caption", last.URL.Query().Get("fields"))
}

func TestProviderErrorFailsCommand(t *testing.T) {
	setupEnv(t)
	server := graphtest.NewServer(testAppID, testSecret)
	defer server.Close()
	server.AddUser("42", "jane", "code")

	out, err := run(t, &app{httpClient: server.Client()}, "user", "me", "--access-token", "bogus", "--user-id", "42", "--log-level", "error")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OAuthException")

	body := decodeJSON(t, out)
	assert.Contains(t, body, "error")
}

func TestUserMeWithExplicitID(t *testing.T) {
	setupEnv(t)
	server := graphtest.NewServer(testAppID, testSecret)
	defer server.Close()

	_, _ = run(t, &app{httpClient: server.Client()}, "user", "me", "--access-token", "t", "--user-id", "stored", "--id", "other", "--log-level", "error")
	require.Len(t, server.Requests(), 1)
	assert.Equal(t, "/other", server.Requests()[0].URL.Path)
}

func TestMissingTokenFails(t *testing.T) {
	setupEnv(t)

	_, err := run(t, &app{stdin: strings.NewReader("\n")}, "user", "media", "--log-level", "error")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access token is required")
}

func TestConfigCommands(t *testing.T) {
	setupEnv(t)
	path := filepath.Join(t.TempDir(), "igsdk", "config.yaml")

	_, err := run(t, &app{}, "config", "init", "--config", path)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	_, err = run(t, &app{}, "config", "init", "--config", path)
	assert.Error(t, err)

	_, err = run(t, &app{}, "config", "validate", "--config", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "app_id")

	out, err := run(t, &app{}, append([]string{"config", "show", "--config", path, "--access-token", "IGQVJ-very-long-token"}, appFlags()...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "app_id: \""+testAppID+"\"")
	assert.NotContains(t, out, testSecret)
	assert.NotContains(t, out, "IGQVJ-very-long-token")
	assert.Contains(t, out, "timeout: 30s")

	_, err = run(t, &app{}, append([]string{"config", "validate", "--config", path}, appFlags()...)...)
	assert.NoError(t, err)
}

func TestUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	err := writeResponse(&buf, "xml", nil)
	assert.Error(t, err)
}

func TestPlainValue(t *testing.T) {
	in := map[string]interface{}{
		"n":    json.Number("5183944"),
		"f":    json.Number("1.5"),
		"list": []interface{}{json.Number("1"), "x"},
	}
	out := plainValue(in).(map[string]interface{})
	assert.Equal(t, int64(5183944), out["n"])
	assert.Equal(t, 1.5, out["f"])
	assert.Equal(t, []interface{}{int64(1), "x"}, out["list"])
}
