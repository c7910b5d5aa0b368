package instagram

import (
	"net/url"
	"strings"

	"golang.org/x/oauth2"
)

const (
	// AuthorizeURL is the OAuth authorization dialog
	AuthorizeURL = "https://api.instagram.com/oauth/authorize"

	// TokenURL exchanges an authorization code for a short-lived token (POST, form body)
	TokenURL = "https://api.instagram.com/oauth/access_token"

	// LongLivedTokenURL exchanges a short-lived token for a long-lived one
	LongLivedTokenURL = "https://graph.instagram.com/access_token"

	// RefreshTokenURL refreshes a long-lived token
	RefreshTokenURL = "https://graph.instagram.com/refresh_access_token"

	// UserURLTemplate is the user node; {user-id} is substituted literally
	UserURLTemplate = "https://graph.instagram.com/{user-id}"

	// MediaURLTemplate lists a user's media. Placeholders are substituted literally.
	MediaURLTemplate = "https://graph.instagram.com/v11.0/{user-id}/media?fields={fields}&access_token={access-token}"
)

// Grant types sent to the token endpoints
const (
	GrantAuthorizationCode = "authorization_code"
	GrantExchangeToken     = "ig_exchange_token"
	GrantRefreshToken      = "ig_refresh_token"
)

// Endpoint describes the Instagram OAuth endpoints for golang.org/x/oauth2
var Endpoint = oauth2.Endpoint{
	AuthURL:   AuthorizeURL,
	TokenURL:  TokenURL,
	AuthStyle: oauth2.AuthStyleInParams,
}

// expandTemplate replaces placeholder tokens such as {user-id} verbatim.
// pairs alternate placeholder and value, as for strings.NewReplacer.
func expandTemplate(tmpl string, pairs ...string) string {
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

// GetLongLivedTokenURL constructs the long-lived token exchange URL
func GetLongLivedTokenURL(appSecret, accessToken string) string {
	params := url.Values{}
	params.Set("grant_type", GrantExchangeToken)
	params.Set("client_secret", appSecret)
	params.Set("access_token", accessToken)

	return LongLivedTokenURL + "?" + params.Encode()
}

// GetRefreshTokenURL constructs the token refresh URL
func GetRefreshTokenURL(accessToken string) string {
	params := url.Values{}
	params.Set("grant_type", GrantRefreshToken)
	params.Set("access_token", accessToken)

	return RefreshTokenURL + "?" + params.Encode()
}

// GetUserURL constructs the user node URL. The fields and access_token
// query parameters are appended only when non-empty.
func GetUserURL(userID string, fields []string, accessToken string) string {
	u := expandTemplate(UserURLTemplate, "{user-id}", userID)

	params := url.Values{}
	if len(fields) > 0 {
		params.Set("fields", strings.Join(fields, ","))
	}
	if accessToken != "" {
		params.Set("access_token", accessToken)
	}
	if len(params) == 0 {
		return u
	}
	return u + "?" + params.Encode()
}

// GetMediaURL constructs the media listing URL
func GetMediaURL(userID string, fields []string, accessToken string) string {
	return expandTemplate(MediaURLTemplate,
		"{user-id}", userID,
		"{fields}", strings.Join(fields, ","),
		"{access-token}", accessToken,
	)
}

var redactedParams = []string{"access_token", "client_secret"}

// RedactURL masks credentials in a URL so it can be logged
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<unparseable url>"
	}

	q := u.Query()
	changed := false
	for _, key := range redactedParams {
		if q.Has(key) {
			q.Set(key, "REDACTED")
			changed = true
		}
	}
	if changed {
		u.RawQuery = q.Encode()
	}
	return u.String()
}
