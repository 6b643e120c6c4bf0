// Package session owns the authenticated-user lifecycle: bootstrap from
// durable storage, login, logout, profile updates, and the forced-logout
// path taken when silent re-authentication fails.
package session

// State is the session lifecycle state. Transitions:
//
//	Bootstrapping -> Authenticated | Unauthenticated
//	Authenticated -> Unauthenticated   (logout, forced expiry)
//	Unauthenticated -> Authenticated   (login)
type State string

const (
	StateBootstrapping   State = "bootstrapping"
	StateAuthenticated   State = "authenticated"
	StateUnauthenticated State = "unauthenticated"
)

// Durable storage keys owned by the session layer. They are purged as a
// group: a session exists if and only if user and a non-expired token are
// both present.
const (
	KeyUser     = "user"
	KeyToken    = "token"
	KeyEmail    = "email"
	KeyPassword = "password"

	// keySealKey holds the local sealing key for the cached password.
	keySealKey = "credseal"
)
