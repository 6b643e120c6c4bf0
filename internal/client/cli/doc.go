// Package cli provides the interactive CondoWay command-line client.
//
// It wires configuration, local session storage, the HTTP API client with
// its silent re-login transport, and an interactive REPL over the resident
// resources. Typical flow: restore the stored session (or prompt for
// credentials), then execute user commands against the paginated
// occurrence, visitor, and notification controllers.
//
// Key features:
//   - Login / Logout with a durable session that survives restarts
//   - Occurrences: list, load more, refresh, report
//   - Visitors: list, authorize, cancel
//   - Notifications: list, load more, mark read, mark all read
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
