package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/condoway/client-go/internal/client/api"
	"github.com/condoway/client-go/internal/client/models"
	"github.com/condoway/client-go/internal/client/storage"
	"github.com/condoway/client-go/internal/client/tokens"
	"github.com/condoway/client-go/internal/common"
	"github.com/condoway/client-go/internal/logging"
)

// Manager owns the authenticated-user state. It starts in
// StateBootstrapping and settles after Bootstrap runs once at process start.
type Manager struct {
	api    api.Client
	store  storage.Repository
	creds  *CredentialStore
	tokens *api.TokenHolder
	log    logging.Logger

	mu    sync.Mutex
	state State
	user  *models.User
}

func NewManager(client api.Client, store storage.Repository, holder *api.TokenHolder, log logging.Logger) *Manager {
	if log == nil {
		log = logging.Nop{}
	}
	return &Manager{
		api:    client,
		store:  store,
		creds:  NewCredentialStore(store),
		tokens: holder,
		log:    log,
		state:  StateBootstrapping,
	}
}

// Credentials exposes the credential store for transport recovery wiring.
func (m *Manager) Credentials() *CredentialStore {
	return m.creds
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// CurrentUser returns a copy of the resident record, ok=false when not
// authenticated.
func (m *Manager) CurrentUser() (models.User, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateAuthenticated || m.user == nil {
		return models.User{}, false
	}
	return *m.user, true
}

// UnitID returns the apartment-scoped identity of the current session,
// 0 when unauthenticated.
func (m *Manager) UnitID() int64 {
	u, ok := m.CurrentUser()
	if !ok {
		return 0
	}
	return u.UnitUserID
}

// Bootstrap restores the session from durable storage. A persisted but
// expired token must never be silently reused: all session keys are purged
// and the manager settles Unauthenticated. A valid session repairs a
// missing apartment identity from token claims before surfacing.
func (m *Manager) Bootstrap(ctx context.Context) error {
	userRaw, err := m.store.Get(ctx, KeyUser)
	if err != nil {
		return fmt.Errorf("failed to read stored user: %w", err)
	}
	tokenRaw, err := m.store.Get(ctx, KeyToken)
	if err != nil {
		return fmt.Errorf("failed to read stored token: %w", err)
	}

	if len(userRaw) == 0 || len(tokenRaw) == 0 {
		m.setUnauthenticated()
		return nil
	}

	token := string(tokenRaw)
	if tokens.IsExpired(token) {
		m.log.Info(ctx, "stored session expired, purging")
		if err := m.creds.Purge(ctx); err != nil {
			m.log.Warn(ctx, "failed to purge expired session", "error", err)
		}
		m.setUnauthenticated()
		return nil
	}

	var user models.User
	if err := json.Unmarshal(userRaw, &user); err != nil {
		m.log.Warn(ctx, "stored user record unreadable, purging", "error", err)
		if purgeErr := m.creds.Purge(ctx); purgeErr != nil {
			m.log.Warn(ctx, "failed to purge broken session", "error", purgeErr)
		}
		m.setUnauthenticated()
		return nil
	}

	if user.UnitUserID == 0 {
		if id := tokens.UnitID(token); id != 0 {
			user.UnitUserID = id
			if err := m.persistUser(ctx, &user); err != nil {
				m.log.Warn(ctx, "failed to re-persist repaired user", "error", err)
			}
		}
	}

	m.tokens.Set(token)

	m.mu.Lock()
	m.user = &user
	m.state = StateAuthenticated
	m.mu.Unlock()

	if minutes, ok := tokens.MinutesRemaining(token); ok {
		m.log.Info(ctx, "session restored", "user_id", user.ID, "minutes_left", minutes)
	} else {
		m.log.Info(ctx, "session restored", "user_id", user.ID)
	}
	return nil
}

// Login authenticates against the backend and persists the session. A
// server-issued token that is already expired is a server-side fault and
// propagates loudly; nothing is persisted in that case.
func (m *Manager) Login(ctx context.Context, email, password string) (models.User, error) {
	user, token, err := m.api.Login(ctx, email, password)
	if err != nil {
		return models.User{}, err
	}

	if tokens.IsExpired(token) {
		m.log.Error(ctx, "server issued an already-expired token", "email", email)
		return models.User{}, common.ErrAuthExpiredServerSide
	}

	if user.UnitUserID == 0 {
		if id := tokens.UnitID(token); id != 0 {
			user.UnitUserID = id
		}
	}

	if err := m.persistUser(ctx, user); err != nil {
		return models.User{}, err
	}
	if err := m.creds.SaveToken(ctx, token); err != nil {
		return models.User{}, err
	}
	if err := m.creds.Save(ctx, email, password); err != nil {
		return models.User{}, err
	}

	m.tokens.Set(token)

	m.mu.Lock()
	m.user = user
	m.state = StateAuthenticated
	m.mu.Unlock()

	m.log.Info(ctx, "login succeeded", "user_id", user.ID, "userap_id", user.UnitUserID)
	return *user, nil
}

// Logout clears the token slot, purges all session keys, and settles
// Unauthenticated. Idempotent and never surfaces an error: storage
// failures are logged.
func (m *Manager) Logout(ctx context.Context) {
	m.tokens.Clear()
	if err := m.creds.Purge(ctx); err != nil {
		m.log.Error(ctx, "failed to purge session storage on logout", "error", err)
	}
	m.setUnauthenticated()
}

// ForceLogout is the OnAuthFailure hook for the transport's retry layer:
// silent recovery was impossible, the session is gone.
func (m *Manager) ForceLogout(ctx context.Context) {
	m.log.Warn(ctx, "forcing logout after failed silent re-login")
	m.Logout(ctx)
}

// UserPatch shallow-merges into the current user; nil fields are left as is.
type UserPatch struct {
	Name       *string
	Email      *string
	PhotoURL   *string
	UnitUserID *int64
}

// UpdateUser applies the patch and re-persists the record. No-op when
// unauthenticated.
func (m *Manager) UpdateUser(ctx context.Context, patch UserPatch) error {
	m.mu.Lock()
	if m.state != StateAuthenticated || m.user == nil {
		m.mu.Unlock()
		return nil
	}
	if patch.Name != nil {
		m.user.Name = *patch.Name
	}
	if patch.Email != nil {
		m.user.Email = *patch.Email
	}
	if patch.PhotoURL != nil {
		m.user.PhotoURL = *patch.PhotoURL
	}
	if patch.UnitUserID != nil {
		m.user.UnitUserID = *patch.UnitUserID
	}
	updated := *m.user
	m.mu.Unlock()

	return m.persistUser(ctx, &updated)
}

func (m *Manager) persistUser(ctx context.Context, user *models.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user record: %w", err)
	}
	return m.store.Set(ctx, KeyUser, raw)
}

func (m *Manager) setUnauthenticated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.user = nil
	m.state = StateUnauthenticated
}
