// Package instagram is a client for Instagram's OAuth flow and the read-only
// user and media endpoints of the Graph API.
//
// Every operation is a single blocking HTTP round-trip. Bodies are decoded
// into a Response map and returned even for non-2xx statuses, so provider
// errors reach the caller untouched. Only local failures are returned as
// errors: an empty authorization code, a transport failure, or a body that is
// not JSON.
//
// Example usage:
//
//	client := instagram.NewClient(appID, appSecret, "https://example.com/auth/")
//	http.Redirect(w, r, client.AuthorizationURL(state), http.StatusFound)
//
//	// in the redirect handler
//	short, err := client.ExchangeCode(ctx, r.URL.Query().Get("code"))
//	if err != nil {
//	    return err
//	}
//	if short.IsError() {
//	    return fmt.Errorf("instagram: %s", short.ErrorMessage())
//	}
//	client.SetAccessToken(short.String("access_token"))
//	client.SetUserID(short.String("user_id"))
//
//	long, err := client.ExchangeLongLivedToken(ctx)
//	// long["expires_in"] is now "2006-01-02 15:04:05" formatted
//
//	media, err := client.FetchUserMedia(ctx)
package instagram
