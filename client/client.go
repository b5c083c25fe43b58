// Package client is the Go SDK for the AIBanker API. It is the single
// choke-point for backend calls: every request carries the session's
// current access token, and an authorization failure triggers exactly one
// coalesced refresh-and-retry cycle before the caller sees an error.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/aibanker/go-aibanker/api"
	"github.com/aibanker/go-aibanker/session"
)

// ErrSessionExpired is returned when a refresh attempt fails and the
// session has been cleared. Callers should send the user back to login.
var ErrSessionExpired = errors.New("session expired")

// ErrVersionConflict is matched (via errors.Is) by APIErrors carrying
// HTTP 409: the entity was modified since the caller read it.
var ErrVersionConflict = errors.New("version conflict")

// APIError is a non-2xx response from the backend, carrying the
// human-readable detail message from the error body.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.StatusCode, e.Detail)
}

// Is lets errors.Is match sentinel errors against APIErrors.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrVersionConflict:
		return e.StatusCode == http.StatusConflict
	}
	return false
}

// Client is the AIBanker API client. Construct with New and share freely:
// all methods are safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	session    *session.Session
	logger     zerolog.Logger

	// refreshGroup coalesces concurrent refresh attempts: when N requests
	// fail with 401 simultaneously, only one refresh call is issued and
	// all waiters share its result.
	refreshGroup singleflight.Group

	onSessionExpired func()
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client (e.g. for custom
// transports or timeouts).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger attaches a zerolog logger. The default discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithSessionExpiredHandler registers a callback invoked when a refresh
// attempt fails and the session is cleared - the place to route the user
// back to the login screen.
func WithSessionExpiredHandler(fn func()) Option {
	return func(c *Client) {
		c.onSessionExpired = fn
	}
}

// New creates a client for the API at baseURL, authenticating from sess.
func New(baseURL string, sess *session.Session, options ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		session: sess,
		logger:  zerolog.Nop(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Session returns the injected session.
func (c *Client) Session() *session.Session {
	return c.session
}

// attempt performs a single HTTP request with the given bearer token.
// body must be replayable, so it is passed as bytes.
func (c *Client) attempt(ctx context.Context, method, path string, body []byte, contentType, accessToken string) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		reqBody = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.attempt] create request")
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	c.logger.Debug().Str("method", method).Str("path", path).Msg("api request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.attempt] perform request")
	}
	return resp, nil
}

// send performs an authorized request with the one-shot refresh-and-retry
// cycle: a 401 response triggers a single coalesced refresh, and on
// success the original request is replayed exactly once with the new
// access token. A 401 with no refresh token on hand fails immediately
// without calling the refresh endpoint. Every other failure propagates
// unmodified.
func (c *Client) send(ctx context.Context, method, path string, body []byte, contentType string) (*http.Response, error) {
	resp, err := c.attempt(ctx, method, path, body, contentType, c.session.AccessToken())
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	if c.session.RefreshToken() == "" {
		// Nothing to refresh with; the caller sees the 401.
		return resp, nil
	}

	io.Copy(io.Discard, resp.Body) //nolint:errcheck
	resp.Body.Close()

	newAccess, err := c.refreshSession(ctx)
	if err != nil {
		return nil, err
	}

	c.logger.Debug().Str("method", method).Str("path", path).Msg("replaying request after refresh")
	return c.attempt(ctx, method, path, body, contentType, newAccess)
}

// refreshSession exchanges the refresh token for a new pair. Concurrent
// callers share one in-flight refresh. On an HTTP failure from the
// refresh endpoint the session is cleared, the expiry handler runs, and
// ErrSessionExpired is returned; transport errors propagate without
// destroying the session.
func (c *Client) refreshSession(ctx context.Context) (string, error) {
	v, err, _ := c.refreshGroup.Do("refresh", func() (interface{}, error) {
		refreshToken := c.session.RefreshToken()
		if refreshToken == "" {
			return nil, ErrSessionExpired
		}

		payload, err := json.Marshal(api.RefreshRequest{RefreshToken: refreshToken})
		if err != nil {
			return nil, errors.Wrap(err, "[Client.refreshSession] marshal request")
		}

		resp, err := c.attempt(ctx, http.MethodPost, "/api/v1/auth/refresh", payload, "application/json", "")
		if err != nil {
			return nil, err
		}

		var tokenResp api.TokenResponse
		if err := parseResponse(resp, &tokenResp); err != nil {
			c.logger.Warn().Err(err).Msg("token refresh rejected, clearing session")
			c.expireSession()
			return nil, errors.Wrap(ErrSessionExpired, err.Error())
		}

		if err := c.session.SetTokens(tokenResp.AccessToken, tokenResp.RefreshToken); err != nil {
			return nil, err
		}
		return tokenResp.AccessToken, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (c *Client) expireSession() {
	_ = c.session.Clear()
	if c.onSessionExpired != nil {
		c.onSessionExpired()
	}
}

// doJSON sends a JSON request through the authorized pipeline and decodes
// the response into target (which may be nil).
func (c *Client) doJSON(ctx context.Context, method, path string, body, target interface{}) error {
	var payload []byte
	contentType := ""
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "[Client.doJSON] marshal request body")
		}
		payload = data
		contentType = "application/json"
	}

	resp, err := c.send(ctx, method, path, payload, contentType)
	if err != nil {
		return err
	}
	return parseResponse(resp, target)
}

// parseResponse decodes a response into target, converting non-2xx
// statuses into *APIError with the backend's detail message when the body
// carries one, or a generic fallback when it is unparseable.
func parseResponse(resp *http.Response, target interface{}) error {
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)

		var errResp api.ErrorResponse
		if err := json.Unmarshal(body, &errResp); err == nil && errResp.Detail != "" {
			return &APIError{StatusCode: resp.StatusCode, Detail: errResp.Detail}
		}
		return &APIError{StatusCode: resp.StatusCode, Detail: fmt.Sprintf("request failed with status %d", resp.StatusCode)}
	}

	if target != nil {
		if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
			return errors.Wrap(err, "decode response")
		}
	}
	return nil
}

// ListOptions paginate list endpoints. Zero values mean server defaults.
type ListOptions struct {
	Offset int
	Limit  int
}

func (o ListOptions) query() string {
	if o.Offset == 0 && o.Limit == 0 {
		return ""
	}
	return fmt.Sprintf("?offset=%d&limit=%d", o.Offset, o.Limit)
}
