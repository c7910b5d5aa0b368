// Package graphtest runs an in-process fake of the Instagram OAuth and Graph
// endpoints for tests.
package graphtest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
)

// Hosts served by the fake
const (
	APIHost   = "api.instagram.com"
	GraphHost = "graph.instagram.com"
)

// LongLivedExpiry is the expires_in returned for long-lived tokens
const LongLivedExpiry = 5183944

// Media is one item returned by the media listing
type Media struct {
	ID        string `json:"id"`
	MediaType string `json:"media_type"`
	MediaURL  string `json:"media_url"`
	Caption   string `json:"caption"`
	Permalink string `json:"permalink"`
}

// Server simulates the Instagram endpoints with realistic bodies
type Server struct {
	server *httptest.Server

	AppID     string
	AppSecret string

	requestCount int32

	mu             sync.RWMutex
	requests       []*http.Request
	codes          map[string]string // code -> user id
	shortTokens    map[string]string // token -> user id
	longTokens     map[string]string
	usernames      map[string]string
	media          map[string][]Media
	errorResponses map[string]int // path -> status
	tokenSeq       int
}

// NewServer starts a fake for the given app credentials
func NewServer(appID, appSecret string) *Server {
	s := &Server{
		AppID:          appID,
		AppSecret:      appSecret,
		codes:          make(map[string]string),
		shortTokens:    make(map[string]string),
		longTokens:     make(map[string]string),
		usernames:      make(map[string]string),
		media:          make(map[string][]Media),
		errorResponses: make(map[string]int),
	}
	s.server = httptest.NewServer(http.HandlerFunc(s.route))
	return s
}

// Close shuts the server down
func (s *Server) Close() {
	s.server.Close()
}

// URL returns the base URL of the underlying httptest server
func (s *Server) URL() string {
	return s.server.URL
}

// Client returns an *http.Client whose requests to the Instagram hosts are
// redirected to this server
func (s *Server) Client() *http.Client {
	target, _ := url.Parse(s.server.URL)
	return &http.Client{
		Transport: &rewriteTransport{target: target, next: http.DefaultTransport},
	}
}

// AddUser registers a user and the authorization code that grants access to it
func (s *Server) AddUser(userID, username, code string, media ...Media) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.usernames[userID] = username
	s.codes[code] = userID
	s.media[userID] = append(s.media[userID], media...)
}

// SetErrorResponse forces requests to path to fail with status
func (s *Server) SetErrorResponse(path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errorResponses[path] = status
}

// RequestCount returns the number of requests served
func (s *Server) RequestCount() int {
	return int(atomic.LoadInt32(&s.requestCount))
}

// Requests returns the requests received so far
func (s *Server) Requests() []*http.Request {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*http.Request, len(s.requests))
	copy(out, s.requests)
	return out
}

func (s *Server) route(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt32(&s.requestCount, 1)
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, oauthError("OAuthException", "malformed request"))
		return
	}

	s.mu.Lock()
	s.requests = append(s.requests, r)
	status := s.errorResponses[r.URL.Path]
	s.mu.Unlock()

	if status > 0 {
		writeJSON(w, status, graphError("forced failure", "OAuthException", status))
		return
	}

	switch {
	case r.Host == APIHost && r.URL.Path == "/oauth/access_token":
		s.handleCodeExchange(w, r)
	case r.URL.Path == "/access_token":
		s.handleLongLived(w, r)
	case r.URL.Path == "/refresh_access_token":
		s.handleRefresh(w, r)
	case strings.HasPrefix(r.URL.Path, "/v11.0/") && strings.HasSuffix(r.URL.Path, "/media"):
		s.handleMedia(w, r)
	default:
		s.handleUser(w, r)
	}
}

func (s *Server) handleCodeExchange(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, oauthError("OAuthException", "Unsupported method"))
		return
	}
	if r.PostForm.Get("client_id") != s.AppID || r.PostForm.Get("client_secret") != s.AppSecret {
		writeJSON(w, http.StatusBadRequest, oauthError("OAuthException", "Invalid platform app"))
		return
	}
	if r.PostForm.Get("grant_type") != "authorization_code" {
		writeJSON(w, http.StatusBadRequest, oauthError("OAuthException", "Unsupported grant_type"))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	userID, ok := s.codes[r.PostForm.Get("code")]
	if !ok {
		writeJSON(w, http.StatusBadRequest, oauthError("OAuthException", "Invalid authorization code"))
		return
	}
	delete(s.codes, r.PostForm.Get("code"))

	token := s.nextToken("IGQVJshort")
	s.shortTokens[token] = userID
	writeRaw(w, http.StatusOK, fmt.Sprintf(`{"access_token":%q,"user_id":%s}`, token, userID))
}

func (s *Server) handleLongLived(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("grant_type") != "ig_exchange_token" || q.Get("client_secret") != s.AppSecret {
		writeJSON(w, http.StatusBadRequest, graphError("Invalid request", "OAuthException", 100))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	userID, ok := s.shortTokens[q.Get("access_token")]
	if !ok {
		writeJSON(w, http.StatusBadRequest, graphError("Invalid OAuth access token.", "OAuthException", 190))
		return
	}

	token := s.nextToken("IGQVJlong")
	s.longTokens[token] = userID
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"access_token": token,
		"token_type":   "bearer",
		"expires_in":   LongLivedExpiry,
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("grant_type") != "ig_refresh_token" {
		writeJSON(w, http.StatusBadRequest, graphError("Invalid request", "OAuthException", 100))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	userID, ok := s.longTokens[q.Get("access_token")]
	if !ok {
		writeJSON(w, http.StatusBadRequest, graphError("Invalid OAuth access token.", "OAuthException", 190))
		return
	}

	delete(s.longTokens, q.Get("access_token"))
	token := s.nextToken("IGQVJlong")
	s.longTokens[token] = userID
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"access_token": token,
		"token_type":   "bearer",
		"expires_in":   LongLivedExpiry,
	})
}

func (s *Server) handleUser(w http.ResponseWriter, r *http.Request) {
	userID := strings.Trim(r.URL.Path, "/")

	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.authorized(r.URL.Query().Get("access_token"), userID) {
		writeJSON(w, http.StatusBadRequest, graphError("Invalid OAuth access token.", "OAuthException", 190))
		return
	}

	username, ok := s.usernames[userID]
	if !ok {
		writeJSON(w, http.StatusNotFound, graphError("Unsupported get request.", "GraphMethodException", 100))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":       userID,
		"username": username,
	})
}

func (s *Server) handleMedia(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/v11.0/"), "/media")

	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.authorized(r.URL.Query().Get("access_token"), userID) {
		writeJSON(w, http.StatusBadRequest, graphError("Invalid OAuth access token.", "OAuthException", 190))
		return
	}

	items := s.media[userID]
	if items == nil {
		items = []Media{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": items,
		"paging": map[string]interface{}{
			"cursors": map[string]string{"before": "QVFI", "after": "QVFJ"},
		},
	})
}

func (s *Server) authorized(token, userID string) bool {
	if owner, ok := s.shortTokens[token]; ok && owner == userID {
		return true
	}
	owner, ok := s.longTokens[token]
	return ok && owner == userID
}

func (s *Server) nextToken(prefix string) string {
	s.tokenSeq++
	return fmt.Sprintf("%s%04d", prefix, s.tokenSeq)
}

func oauthError(errType, msg string) map[string]interface{} {
	return map[string]interface{}{
		"error_type":    errType,
		"code":          400,
		"error_message": msg,
	}
}

func graphError(msg, errType string, code int) map[string]interface{} {
	return map[string]interface{}{
		"error": map[string]interface{}{
			"message": msg,
			"type":    errType,
			"code":    code,
		},
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	data, _ := json.Marshal(v)
	writeRaw(w, status, string(data))
}

func writeRaw(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// rewriteTransport sends requests for the Instagram hosts to the fake while
// keeping the original Host header so the router can tell them apart
type rewriteTransport struct {
	target *url.URL
	next   http.RoundTripper
}

func (t *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.URL.Host != APIHost && req.URL.Host != GraphHost {
		return t.next.RoundTrip(req)
	}

	out := req.Clone(req.Context())
	out.Host = req.URL.Host
	out.URL.Scheme = t.target.Scheme
	out.URL.Host = t.target.Host
	return t.next.RoundTrip(out)
}
