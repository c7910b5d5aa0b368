package instagram

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"igsdk/pkg/errors"
	"igsdk/pkg/logger"
)

const userAgent = "igsdk/1.0"

var (
	// DefaultScope is the permission list requested when none is configured
	DefaultScope = []string{"user_profile", "user_media"}

	// DefaultMediaFields are the fields requested from the media listing
	DefaultMediaFields = []string{"id", "media_type", "media_url", "caption", "permalink", "thumbnail_url"}

	// DefaultUserFields are the fields requested from the user node
	DefaultUserFields = []string{"id", "username"}
)

// Doer issues HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the Instagram OAuth and Graph endpoints.
//
// A Client is plain mutable state: setters and requests must not be used from
// multiple goroutines at the same time.
type Client struct {
	httpClient Doer
	logger     logger.Logger
	now        func() time.Time

	appID       string
	appSecret   string
	redirectURI string
	scope       []string
	mediaFields []string
	userFields  []string

	accessToken string
	userID      string
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient sets the transport used for every request
func WithHTTPClient(d Doer) Option {
	return func(c *Client) {
		if d != nil {
			c.httpClient = d
		}
	}
}

// WithTimeout uses a fresh *http.Client with the given timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient = &http.Client{Timeout: timeout}
	}
}

// WithLogger sets the logger
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithClock overrides the clock used to compute token expiry timestamps
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// NewClient creates a new Instagram client for the given app
func NewClient(appID, appSecret, redirectURI string, opts ...Option) *Client {
	c := &Client{
		httpClient:  http.DefaultClient,
		now:         time.Now,
		appID:       appID,
		appSecret:   appSecret,
		redirectURI: redirectURI,
		scope:       append([]string(nil), DefaultScope...),
		mediaFields: append([]string(nil), DefaultMediaFields...),
		userFields:  append([]string(nil), DefaultUserFields...),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logger.GetLogger().WithField("component", "instagram")
	}
	return c
}

func (c *Client) SetAppID(appID string)             { c.appID = appID }
func (c *Client) AppID() string                     { return c.appID }
func (c *Client) SetAppSecret(appSecret string)     { c.appSecret = appSecret }
func (c *Client) AppSecret() string                 { return c.appSecret }
func (c *Client) SetRedirectURI(redirectURI string) { c.redirectURI = redirectURI }
func (c *Client) RedirectURI() string               { return c.redirectURI }
func (c *Client) SetAccessToken(token string)       { c.accessToken = token }
func (c *Client) AccessToken() string               { return c.accessToken }
func (c *Client) SetUserID(userID string)           { c.userID = userID }
func (c *Client) UserID() string                    { return c.userID }

// SetScope replaces the requested permissions
func (c *Client) SetScope(scope []string) {
	c.scope = append([]string(nil), scope...)
}

// Scope returns the requested permissions, comma-joined
func (c *Client) Scope() string {
	return strings.Join(c.scope, ",")
}

// SetMediaFields replaces the media field list
func (c *Client) SetMediaFields(fields []string) {
	c.mediaFields = append([]string(nil), fields...)
}

// AddMediaField appends one field to the media field list
func (c *Client) AddMediaField(field string) {
	c.mediaFields = append(c.mediaFields, field)
}

// MediaFields returns the media field list, comma-joined
func (c *Client) MediaFields() string {
	return strings.Join(c.mediaFields, ",")
}

// SetUserFields replaces the fields requested from the user node.
// An empty list omits the fields parameter.
func (c *Client) SetUserFields(fields []string) {
	c.userFields = append([]string(nil), fields...)
}

// AuthorizationURL returns the URL the user is sent to for consent.
// state is omitted from the URL when empty.
func (c *Client) AuthorizationURL(state string) string {
	cfg := oauth2.Config{
		ClientID:    c.appID,
		RedirectURL: c.redirectURI,
		Endpoint:    Endpoint,
	}
	// Instagram expects a comma-separated scope, oauth2 joins with spaces
	if len(c.scope) > 0 {
		cfg.Scopes = []string{c.Scope()}
	}
	return cfg.AuthCodeURL(state)
}

// ExchangeCode trades an authorization code for a short-lived token.
// An empty code fails with errors.ErrMissingCode before any request is made.
func (c *Client) ExchangeCode(ctx context.Context, code string) (Response, error) {
	if code == "" {
		c.logger.Warn("code exchange attempted without a code")
		return nil, errors.ErrMissingCode
	}

	form := url.Values{}
	form.Set("client_id", c.appID)
	form.Set("client_secret", c.appSecret)
	form.Set("grant_type", GrantAuthorizationCode)
	form.Set("code", code)
	form.Set("redirect_uri", c.redirectURI)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, newRequestError(err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	_, body, err := c.doJSON(req)
	return body, err
}

// ExchangeLongLivedToken trades the current short-lived token for a long-lived one
func (c *Client) ExchangeLongLivedToken(ctx context.Context) (Response, error) {
	status, body, err := c.getJSON(ctx, GetLongLivedTokenURL(c.appSecret, c.accessToken))
	if err != nil {
		return nil, err
	}
	c.stampExpiry(status, body)
	return body, nil
}

// RefreshToken refreshes the current long-lived token
func (c *Client) RefreshToken(ctx context.Context) (Response, error) {
	status, body, err := c.getJSON(ctx, GetRefreshTokenURL(c.accessToken))
	if err != nil {
		return nil, err
	}
	c.stampExpiry(status, body)
	return body, nil
}

// FetchCurrentUser fetches the user node for the stored user id
func (c *Client) FetchCurrentUser(ctx context.Context) (Response, error) {
	return c.FetchUser(ctx, c.userID)
}

// FetchUser fetches the user node for userID using the stored access token
func (c *Client) FetchUser(ctx context.Context, userID string) (Response, error) {
	_, body, err := c.getJSON(ctx, GetUserURL(userID, c.userFields, c.accessToken))
	return body, err
}

// FetchUserMedia lists the stored user's media with the configured fields
func (c *Client) FetchUserMedia(ctx context.Context) (Response, error) {
	_, body, err := c.getJSON(ctx, GetMediaURL(c.userID, c.mediaFields, c.accessToken))
	return body, err
}

// stampExpiry rewrites expires_in from seconds to an absolute local timestamp.
// Only 200 responses carrying a numeric expires_in are touched.
func (c *Client) stampExpiry(status int, body Response) {
	if status != http.StatusOK || body == nil {
		return
	}
	secs, ok := body.Int64("expires_in")
	if !ok {
		return
	}
	expires := c.now().Add(time.Duration(secs) * time.Second)
	body["expires_in"] = expires.Local().Format(ExpiryLayout)
}

func (c *Client) getJSON(ctx context.Context, rawURL string) (int, Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, nil, newRequestError(err)
	}
	return c.doJSON(req)
}

// doJSON performs the request and decodes the body whatever the status code
func (c *Client) doJSON(req *http.Request) (int, Response, error) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	redacted := RedactURL(req.URL.String())
	c.logger.DebugWithFields("sending HTTP request", map[string]interface{}{
		"method": req.Method,
		"url":    redacted,
	})

	start := c.now()
	resp, err := c.httpClient.Do(req)
	duration := c.now().Sub(start)
	if err != nil {
		// *url.Error repeats the full URL, credentials included
		var urlErr *url.Error
		if stderrors.As(err, &urlErr) {
			err = urlErr.Err
		}
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"method":   req.Method,
			"url":      redacted,
			"error":    err.Error(),
			"duration": duration,
		})
		return 0, nil, errors.New(errors.ErrorTypeNetwork, 0, err, "%s %s failed", req.Method, redacted)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, errors.New(errors.ErrorTypeNetwork, resp.StatusCode, err, "failed to read response body")
	}

	logger.LogRequest(c.logger, req.Method, redacted, resp.StatusCode, float64(duration.Microseconds())/1000)

	body, err := decodeBody(raw)
	if err != nil {
		preview := string(raw)
		if len(preview) > 200 {
			preview = preview[:200] + "..."
		}
		c.logger.ErrorWithFields("failed to parse JSON response", map[string]interface{}{
			"url":          redacted,
			"status":       resp.StatusCode,
			"error":        err.Error(),
			"body_preview": preview,
		})
		return resp.StatusCode, nil, &errors.Error{
			Type:    errors.ErrorTypeParsing,
			Message: "response body is not a JSON object",
			Code:    resp.StatusCode,
			Body:    raw,
			Err:     err,
		}
	}

	return resp.StatusCode, body, nil
}

func decodeBody(raw []byte) (Response, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var body Response
	if err := dec.Decode(&body); err != nil {
		return nil, err
	}
	if body == nil {
		// literal null
		return nil, io.ErrUnexpectedEOF
	}
	return body, nil
}

func newRequestError(err error) error {
	return errors.New(errors.ErrorTypeUnknown, 0, err, "failed to create request")
}
