package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aibanker/go-aibanker/api"
	"github.com/aibanker/go-aibanker/client"
	"github.com/aibanker/go-aibanker/deals"
	"github.com/aibanker/go-aibanker/session"
)

// fakeBackend is a minimal API double: /api/v1/deals accepts only the
// current access token, and /api/v1/auth/refresh rotates the pair.
type fakeBackend struct {
	mu           sync.Mutex
	validAccess  string
	validRefresh string
	nextAccess   string
	nextRefresh  string

	refreshCalls  int32
	refreshDelay  time.Duration
	rejectRefresh bool

	dealTokens []string // Authorization values seen on /api/v1/deals
}

func (b *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&b.refreshCalls, 1)
		if b.refreshDelay > 0 {
			time.Sleep(b.refreshDelay)
		}

		var req api.RefreshRequest
		_ = json.NewDecoder(r.Body).Decode(&req)

		b.mu.Lock()
		defer b.mu.Unlock()

		if b.rejectRefresh || req.RefreshToken != b.validRefresh {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(api.ErrorResponse{Detail: "invalid refresh token"})
			return
		}

		b.validAccess = b.nextAccess
		b.validRefresh = b.nextRefresh
		_ = json.NewEncoder(w).Encode(api.TokenResponse{
			AccessToken:  b.validAccess,
			RefreshToken: b.validRefresh,
			TokenType:    "bearer",
			ExpiresIn:    1800,
		})
	})

	mux.HandleFunc("GET /api/v1/deals", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.dealTokens = append(b.dealTokens, r.Header.Get("Authorization"))
		authorized := r.Header.Get("Authorization") == "Bearer "+b.validAccess
		b.mu.Unlock()

		if !authorized {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(api.ErrorResponse{Detail: "could not validate credentials"})
			return
		}
		_ = json.NewEncoder(w).Encode([]*deals.Deal{{ID: 1, Name: "Project Neptune"}})
	})

	return mux
}

func newTestSession(t *testing.T, access, refresh string) *session.Session {
	t.Helper()
	s := session.New(session.NewMemoryStore())
	require.NoError(t, s.SetTokens(access, refresh))
	return s
}

func TestClient_SendsBearerToken(t *testing.T) {
	backend := &fakeBackend{validAccess: "T1", validRefresh: "R1"}
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()

	sess := newTestSession(t, "T1", "R1")
	c := client.New(srv.URL, sess)

	dealList, err := c.ListDeals(context.Background(), client.ListOptions{})
	require.NoError(t, err)
	require.Len(t, dealList, 1)
	require.Equal(t, []string{"Bearer T1"}, backend.dealTokens)
}

func TestClient_RefreshAndRetryOn401(t *testing.T) {
	backend := &fakeBackend{
		validAccess:  "T2", // T1 is already stale on the server
		validRefresh: "R1",
		nextAccess:   "T2",
		nextRefresh:  "R2",
	}
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()

	sess := newTestSession(t, "T1", "R1")
	c := client.New(srv.URL, sess)

	dealList, err := c.ListDeals(context.Background(), client.ListOptions{})
	require.NoError(t, err)
	require.Len(t, dealList, 1)

	require.Equal(t, int32(1), atomic.LoadInt32(&backend.refreshCalls))
	require.Equal(t, []string{"Bearer T1", "Bearer T2"}, backend.dealTokens,
		"the original request replays exactly once with the new token")

	access, refresh := sess.Read()
	require.Equal(t, "T2", access)
	require.Equal(t, "R2", refresh)
}

func TestClient_RefreshRejectedClearsSession(t *testing.T) {
	backend := &fakeBackend{
		validAccess:   "T2",
		validRefresh:  "R1",
		rejectRefresh: true,
	}
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()

	sess := newTestSession(t, "T1", "R1")
	var expired atomic.Bool
	c := client.New(srv.URL, sess, client.WithSessionExpiredHandler(func() {
		expired.Store(true)
	}))

	_, err := c.ListDeals(context.Background(), client.ListOptions{})
	require.Error(t, err)
	require.ErrorIs(t, err, client.ErrSessionExpired)
	require.True(t, expired.Load(), "expiry handler fires when the refresh is rejected")
	require.False(t, sess.IsAuthenticated())
}

func TestClient_NoRefreshTokenFailsImmediately(t *testing.T) {
	backend := &fakeBackend{validAccess: "T2", validRefresh: "R1"}
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()

	sess := newTestSession(t, "T1", "") // no refresh token on hand
	c := client.New(srv.URL, sess)

	_, err := c.ListDeals(context.Background(), client.ListOptions{})
	require.Error(t, err)

	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	require.Zero(t, atomic.LoadInt32(&backend.refreshCalls), "no refresh attempt without a refresh token")
}

func TestClient_ConcurrentRefreshCoalesced(t *testing.T) {
	backend := &fakeBackend{
		validAccess:  "T2",
		validRefresh: "R1",
		nextAccess:   "T2",
		nextRefresh:  "R2",
		refreshDelay: 50 * time.Millisecond,
	}
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()

	sess := newTestSession(t, "T1", "R1")
	c := client.New(srv.URL, sess)

	const callers = 8
	start := make(chan struct{})
	errs := make(chan error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := c.ListDeals(context.Background(), client.ListOptions{})
			errs <- err
		}()
	}
	close(start)
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	require.Equal(t, int32(1), atomic.LoadInt32(&backend.refreshCalls),
		"concurrent 401s share a single in-flight refresh")
}

func TestClient_VersionConflict(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("PUT /api/v1/deals/1", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(api.ErrorResponse{Detail: "version conflict"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := client.New(srv.URL, newTestSession(t, "T1", "R1"))

	_, err := c.UpdateDeal(context.Background(), 1, api.UpdateDealRequest{Version: 1})
	require.Error(t, err)
	require.ErrorIs(t, err, client.ErrVersionConflict)

	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusConflict, apiErr.StatusCode)
	require.Equal(t, "version conflict", apiErr.Detail)
}

func TestClient_ContextCancellation(t *testing.T) {
	blocked := make(chan struct{})
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/deals", func(w http.ResponseWriter, r *http.Request) {
		<-blocked
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	defer close(blocked)

	c := client.New(srv.URL, newTestSession(t, "T1", "R1"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.ListDeals(ctx, client.ListOptions{})
	require.Error(t, err)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

// roundTripperFunc lets a test fail specific requests at the transport.
type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestClient_TransportErrorDuringRefreshKeepsSession(t *testing.T) {
	backend := &fakeBackend{validAccess: "T2", validRefresh: "R1"}
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()

	transportErr := errors.New("connection refused")
	hc := &http.Client{
		Transport: roundTripperFunc(func(r *http.Request) (*http.Response, error) {
			if r.URL.Path == "/api/v1/auth/refresh" {
				return nil, transportErr
			}
			return http.DefaultTransport.RoundTrip(r)
		}),
	}

	sess := newTestSession(t, "T1", "R1")
	c := client.New(srv.URL, sess, client.WithHTTPClient(hc))

	_, err := c.ListDeals(context.Background(), client.ListOptions{})
	require.Error(t, err)
	require.NotErrorIs(t, err, client.ErrSessionExpired)
	require.True(t, sess.IsAuthenticated(), "a network failure must not destroy the session")
}

func TestClient_ErrorDetailFallback(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/deals/7", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>gateway error</html>"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := client.New(srv.URL, newTestSession(t, "T1", "R1"))

	_, err := c.GetDeal(context.Background(), 7)
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	require.Equal(t, "request failed with status 502", apiErr.Detail)
}
