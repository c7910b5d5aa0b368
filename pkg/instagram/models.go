package instagram

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/oauth2"
)

// ExpiryLayout is the format expires_in is rewritten to after a successful
// long-lived exchange or refresh
const ExpiryLayout = "2006-01-02 15:04:05"

// Response is a decoded JSON body. Its shape is controlled by Instagram and is
// not validated. Numbers are kept as json.Number so ids do not lose precision.
type Response map[string]interface{}

// String returns the value at key rendered as a string, or "" if absent
func (r Response) String(key string) string {
	switch v := r[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// Int64 returns the value at key as an integer if it is numeric
func (r Response) Int64(key string) (int64, bool) {
	switch v := r[key].(type) {
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			f, ferr := v.Float64()
			if ferr != nil {
				return 0, false
			}
			return int64(f), true
		}
		return n, true
	case float64:
		return int64(v), true
	case int64:
		return v, true
	case int:
		return int64(v), true
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}

// providerError returns the nested Graph API error object, if any
func (r Response) providerError() Response {
	if m, ok := r["error"].(map[string]interface{}); ok {
		return Response(m)
	}
	return nil
}

// IsError reports whether the body has one of Instagram's error shapes:
// {"error_type", "error_message"} from api.instagram.com or
// {"error": {...}} from graph.instagram.com.
func (r Response) IsError() bool {
	if _, ok := r["error_type"]; ok {
		return true
	}
	if _, ok := r["error_message"]; ok {
		return true
	}
	_, ok := r["error"]
	return ok
}

// ErrorType returns the provider error type, if any
func (r Response) ErrorType() string {
	if t := r.String("error_type"); t != "" {
		return t
	}
	if e := r.providerError(); e != nil {
		return e.String("type")
	}
	return ""
}

// ErrorMessage returns the provider error message, if any
func (r Response) ErrorMessage() string {
	if m := r.String("error_message"); m != "" {
		return m
	}
	if e := r.providerError(); e != nil {
		return e.String("message")
	}
	return r.String("error")
}

// TokenResponse is a typed view of a token endpoint body
type TokenResponse struct {
	AccessToken string
	TokenType   string
	UserID      string

	// ExpiresIn is the lifetime in seconds when the body still carries it raw
	ExpiresIn int64

	// ExpiresAt is set when expires_in holds a formatted timestamp
	ExpiresAt time.Time
}

// ParseToken extracts a TokenResponse from a token endpoint body.
// Provider error bodies and bodies without an access_token are rejected.
func ParseToken(r Response) (*TokenResponse, error) {
	if r.IsError() {
		return nil, fmt.Errorf("instagram token error %q: %s", r.ErrorType(), r.ErrorMessage())
	}

	token := &TokenResponse{
		AccessToken: r.String("access_token"),
		TokenType:   r.String("token_type"),
		UserID:      r.String("user_id"),
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("instagram token response has no access_token")
	}

	if secs, ok := r.Int64("expires_in"); ok {
		token.ExpiresIn = secs
	} else if s := r.String("expires_in"); s != "" {
		at, err := time.ParseInLocation(ExpiryLayout, s, time.Local)
		if err != nil {
			return nil, fmt.Errorf("invalid expires_in %q: %w", s, err)
		}
		token.ExpiresAt = at
	}

	return token, nil
}

// OAuth2Token converts the token for use with golang.org/x/oauth2 clients
func (t *TokenResponse) OAuth2Token() *oauth2.Token {
	tok := &oauth2.Token{
		AccessToken: t.AccessToken,
		TokenType:   t.TokenType,
		Expiry:      t.ExpiresAt,
	}
	if tok.Expiry.IsZero() && t.ExpiresIn > 0 {
		tok.Expiry = time.Now().Add(time.Duration(t.ExpiresIn) * time.Second)
	}
	if t.UserID != "" {
		tok = tok.WithExtra(map[string]interface{}{"user_id": t.UserID})
	}
	return tok
}
