package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/condoway/client-go/internal/common"
	"github.com/condoway/client-go/internal/logging"
)

// RecoveryHooks are injected at construction and connect the retry
// transport to the session layer without ambient globals.
type RecoveryHooks struct {
	// Credentials returns the cached login credentials, ok=false when none
	// are stored. Read straight from durable storage; the session manager's
	// higher-level login is deliberately bypassed to avoid re-entrant state
	// churn during recovery.
	Credentials func(ctx context.Context) (email, password string, ok bool)

	// StoreToken persists a freshly issued token.
	StoreToken func(ctx context.Context, token string) error

	// OnAuthFailure is invoked when silent recovery is impossible. The
	// callee is expected to purge session storage and force a logout.
	OnAuthFailure func(ctx context.Context)
}

// retryTransport wraps the base RoundTripper with bearer-token attachment
// and one silent re-login on a 401.
//
// Exactly-once is structural: the replay and the recovery login both go
// straight to the base transport, so neither can re-enter this path.
type retryTransport struct {
	base     http.RoundTripper
	loginURL string
	tokens   *TokenHolder
	hooks    RecoveryHooks
	log      logging.Logger
}

func newRetryTransport(base http.RoundTripper, loginURL string, tokens *TokenHolder, hooks RecoveryHooks, log logging.Logger) *retryTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &retryTransport{base: base, loginURL: loginURL, tokens: tokens, hooks: hooks, log: log}
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	if tok := t.tokens.Get(); tok != "" {
		out.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+tok)
	}

	resp, err := t.base.RoundTrip(out)
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}
	if req.URL.String() == t.loginURL {
		// A 401 from the login endpoint means bad credentials, not an
		// expired session. Nothing to recover.
		return resp, nil
	}

	ctx := req.Context()

	if t.hooks.Credentials == nil {
		return resp, nil
	}
	email, password, ok := t.hooks.Credentials(ctx)
	if !ok {
		t.log.Warn(ctx, "unauthorized with no cached credentials, forcing logout")
		t.authFailure(ctx)
		return resp, nil
	}

	token, loginErr := t.silentRelogin(ctx, email, password)
	if loginErr != nil {
		t.log.Warn(ctx, "silent re-login failed, forcing logout", "error", loginErr)
		t.authFailure(ctx)
		return resp, nil
	}

	t.tokens.Set(token)
	if t.hooks.StoreToken != nil {
		if storeErr := t.hooks.StoreToken(ctx, token); storeErr != nil {
			t.log.Warn(ctx, "failed to persist refreshed token", "error", storeErr)
		}
	}

	replay, replayErr := cloneForReplay(req)
	if replayErr != nil {
		return resp, nil
	}
	drain(resp)
	replay.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)

	t.log.Info(ctx, "replaying request after silent re-login", "method", req.Method, "path", req.URL.Path)
	return t.base.RoundTrip(replay)
}

func (t *retryTransport) authFailure(ctx context.Context) {
	if t.hooks.OnAuthFailure != nil {
		t.hooks.OnAuthFailure(ctx)
	}
}

// silentRelogin calls the login endpoint on the base transport and returns
// the fresh token.
func (t *retryTransport) silentRelogin(ctx context.Context, email, password string) (string, error) {
	payload, err := json.Marshal(loginRequest{Email: email, Password: password})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.loginURL, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &StatusError{Code: resp.StatusCode, Body: bodySnippet(body)}
	}

	var data loginData
	if err := decodeEnvelope(body, &data); err != nil {
		return "", err
	}
	if data.Token == "" {
		return "", fmt.Errorf("login response carried no token")
	}
	return data.Token, nil
}

// cloneForReplay duplicates the request with a rewound body. Requests whose
// body cannot be re-read are not replayable.
func cloneForReplay(req *http.Request) (*http.Request, error) {
	replay := req.Clone(req.Context())
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		replay.Body = body
		return replay, nil
	}
	if req.Body != nil {
		return nil, fmt.Errorf("request body cannot be replayed")
	}
	return replay, nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
