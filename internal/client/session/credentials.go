package session

import (
	"context"
	"fmt"

	"github.com/condoway/client-go/internal/client/storage"
	"github.com/condoway/client-go/internal/cryptox"
)

// CredentialStore persists login credentials for silent re-login and is
// the storage-level collaborator handed to the transport's recovery hooks.
// It bypasses the Manager on purpose: recovery must not churn session state.
//
// The password is sealed at rest; the sealing key lives in the same
// database, so this is opacity against casual inspection, not real secrecy.
// The backend contract (re-login with email/password) is unchanged.
type CredentialStore struct {
	store storage.Repository
}

func NewCredentialStore(store storage.Repository) *CredentialStore {
	return &CredentialStore{store: store}
}

// Save persists the credential pair, sealing the password.
func (s *CredentialStore) Save(ctx context.Context, email, password string) error {
	key, err := s.sealKey(ctx)
	if err != nil {
		return err
	}
	box, err := cryptox.Seal([]byte(password), key)
	if err != nil {
		return fmt.Errorf("failed to seal cached password: %w", err)
	}
	if err := s.store.Set(ctx, KeyEmail, []byte(email)); err != nil {
		return err
	}
	return s.store.Set(ctx, KeyPassword, box)
}

// Lookup returns the cached credentials, ok=false when absent or unsealable.
func (s *CredentialStore) Lookup(ctx context.Context) (email, password string, ok bool) {
	emailRaw, err := s.store.Get(ctx, KeyEmail)
	if err != nil || len(emailRaw) == 0 {
		return "", "", false
	}
	box, err := s.store.Get(ctx, KeyPassword)
	if err != nil || len(box) == 0 {
		return "", "", false
	}
	key, err := s.store.Get(ctx, keySealKey)
	if err != nil || len(key) == 0 {
		return "", "", false
	}
	plain, err := cryptox.Open(box, key)
	if err != nil {
		return "", "", false
	}
	return string(emailRaw), string(plain), true
}

// SaveToken persists a bearer token, used both at login and when the retry
// transport refreshes a token mid-flight.
func (s *CredentialStore) SaveToken(ctx context.Context, token string) error {
	return s.store.Set(ctx, KeyToken, []byte(token))
}

// Purge removes every session key: user, token, and cached credentials.
func (s *CredentialStore) Purge(ctx context.Context) error {
	return s.store.DeleteKeys(ctx, KeyUser, KeyToken, KeyEmail, KeyPassword)
}

func (s *CredentialStore) sealKey(ctx context.Context) ([]byte, error) {
	key, err := s.store.Get(ctx, keySealKey)
	if err != nil {
		return nil, err
	}
	if len(key) == cryptox.KeySize {
		return key, nil
	}
	key = cryptox.NewKey()
	if err := s.store.Set(ctx, keySealKey, key); err != nil {
		return nil, fmt.Errorf("failed to persist sealing key: %w", err)
	}
	return key, nil
}
