package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/condoway/client-go/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// authServer simulates a backend whose protected endpoints accept only
// goodToken. Login issues goodToken unless loginFails is set.
type authServer struct {
	goodToken  string
	loginFails bool

	loginCalls atomic.Int64
	listCalls  atomic.Int64
}

func (s *authServer) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		s.loginCalls.Add(1)
		if s.loginFails {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		var req loginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Email == "" || req.Password == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		resp := map[string]any{
			"success": true,
			"data": map[string]any{
				"user":  map[string]any{"user_id": 1, "userap_id": 7, "user_name": "Ana"},
				"token": s.goodToken,
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	})

	mux.HandleFunc("/occurrences", func(w http.ResponseWriter, r *http.Request) {
		s.listCalls.Add(1)
		if r.Header.Get("Authorization") != "Bearer "+s.goodToken {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, `{"success":true,"data":[{"id":1,"title":"leak"}],"pagination":{"currentPage":1,"totalPages":1,"total":1,"hasMore":false,"perPage":20}}`)
	})

	return mux
}

type recoverySpy struct {
	email, password string
	hasCreds        bool
	storedTokens    []string
	failures        atomic.Int64
}

func (r *recoverySpy) hooks() RecoveryHooks {
	return RecoveryHooks{
		Credentials: func(ctx context.Context) (string, string, bool) {
			return r.email, r.password, r.hasCreds
		},
		StoreToken: func(ctx context.Context, token string) error {
			r.storedTokens = append(r.storedTokens, token)
			return nil
		},
		OnAuthFailure: func(ctx context.Context) {
			r.failures.Add(1)
		},
	}
}

func newTestClient(t *testing.T, srv *httptest.Server, spy *recoverySpy, startToken string) *HTTPClient {
	t.Helper()
	holder := NewTokenHolder()
	holder.Set(startToken)
	return NewHTTPClient(Options{
		BaseURL:  srv.URL,
		Tokens:   holder,
		Recovery: spy.hooks(),
	})
}

func TestRetry_SilentReloginAndReplayOnce(t *testing.T) {
	backend := &authServer{goodToken: "fresh"}
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()

	spy := &recoverySpy{email: "ana@condoway.app", password: "pw", hasCreds: true}
	client := newTestClient(t, srv, spy, "stale")

	page, err := client.ListOccurrences(context.Background(), 7, 1, 20)
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)

	assert.EqualValues(t, 1, backend.loginCalls.Load(), "exactly one silent re-login")
	assert.EqualValues(t, 2, backend.listCalls.Load(), "original request replayed exactly once")
	assert.Equal(t, []string{"fresh"}, spy.storedTokens, "refreshed token persisted")
	assert.Zero(t, spy.failures.Load())
}

func TestRetry_NoCachedCredentials_ForcesLogout(t *testing.T) {
	backend := &authServer{goodToken: "fresh"}
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()

	spy := &recoverySpy{hasCreds: false}
	client := newTestClient(t, srv, spy, "stale")

	_, err := client.ListOccurrences(context.Background(), 7, 1, 20)
	require.ErrorIs(t, err, common.ErrUnauthorized, "original failure is not masked")

	assert.EqualValues(t, 0, backend.loginCalls.Load())
	assert.EqualValues(t, 1, backend.listCalls.Load())
	assert.EqualValues(t, 1, spy.failures.Load())
}

func TestRetry_RecoveryLoginFails_ForcesLogoutNoLoop(t *testing.T) {
	backend := &authServer{goodToken: "fresh", loginFails: true}
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()

	spy := &recoverySpy{email: "ana@condoway.app", password: "pw", hasCreds: true}
	client := newTestClient(t, srv, spy, "stale")

	_, err := client.ListOccurrences(context.Background(), 7, 1, 20)
	require.ErrorIs(t, err, common.ErrUnauthorized)

	assert.EqualValues(t, 1, backend.loginCalls.Load(), "recovery tried once, never looped")
	assert.EqualValues(t, 1, backend.listCalls.Load())
	assert.EqualValues(t, 1, spy.failures.Load())
}

func TestRetry_ReplayAlsoFails_NoInfiniteLoop(t *testing.T) {
	// Login hands out a token the occurrences endpoint still rejects, so
	// the replay 401s too. The request must fail after exactly one replay.
	var loginCalls, listCalls atomic.Int64
	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		loginCalls.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    map[string]any{"token": "still-wrong"},
		})
	})
	mux.HandleFunc("/occurrences", func(w http.ResponseWriter, r *http.Request) {
		listCalls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	spy := &recoverySpy{email: "ana@condoway.app", password: "pw", hasCreds: true}
	client := newTestClient(t, srv, spy, "stale")

	_, err := client.ListOccurrences(context.Background(), 7, 1, 20)
	require.ErrorIs(t, err, common.ErrUnauthorized)

	assert.EqualValues(t, 1, loginCalls.Load())
	assert.EqualValues(t, 2, listCalls.Load(), "one original call plus exactly one replay")
}

func TestRetry_LoginEndpoint401IsNotRecovered(t *testing.T) {
	backend := &authServer{goodToken: "fresh"}
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()

	spy := &recoverySpy{email: "cached@condoway.app", password: "cached", hasCreds: true}
	client := newTestClient(t, srv, spy, "")

	_, _, err := client.Login(context.Background(), "", "")
	require.ErrorIs(t, err, common.ErrInvalidCredentials)

	assert.EqualValues(t, 1, backend.loginCalls.Load(), "a failing login must not trigger recovery")
	assert.Zero(t, spy.failures.Load())
}
