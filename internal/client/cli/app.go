package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/condoway/client-go/internal/client/api"
	"github.com/condoway/client-go/internal/client/config"
	"github.com/condoway/client-go/internal/client/notifications"
	"github.com/condoway/client-go/internal/client/occurrences"
	"github.com/condoway/client-go/internal/client/session"
	"github.com/condoway/client-go/internal/client/storage"
	"github.com/condoway/client-go/internal/client/visitors"
	"github.com/condoway/client-go/internal/logging"

	_ "modernc.org/sqlite"
)

// App owns the wiring of the CLI: configuration, the local database, the
// API client, the session manager, and one controller per resident
// resource. Controllers exist only while a session is active.
type App struct {
	config  *config.Config
	log     logging.Logger
	db      *sql.DB
	api     api.Client
	session *session.Manager
	reader  *bufio.Reader

	occurrences   *occurrences.Controller
	visitors      *visitors.Controller
	notifications *notifications.Controller
}

// NewApp opens the local database, builds the API client with its silent
// re-login transport, and wires the session manager. The recovery hooks
// read credentials straight from durable storage; only the forced-logout
// path goes back through the manager.
func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger) (*App, error) {
	if log == nil {
		log = logging.Nop{}
	}

	db, err := storage.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open local storage: %w", err)
	}

	repo := storage.NewSQLiteRepository(db)
	holder := api.NewTokenHolder()
	creds := session.NewCredentialStore(repo)

	app := &App{
		config: cfg,
		log:    log,
		db:     db,
		reader: bufio.NewReader(os.Stdin),
	}

	recovery := api.RecoveryHooks{
		Credentials: creds.Lookup,
		StoreToken:  creds.SaveToken,
		OnAuthFailure: func(ctx context.Context) {
			if app.session != nil {
				app.session.ForceLogout(ctx)
			}
			app.dropControllers()
		},
	}

	app.api = api.NewHTTPClient(api.Options{
		BaseURL:  cfg.APIBaseURL,
		Timeout:  cfg.RequestTimeout,
		Tokens:   holder,
		Recovery: recovery,
		Logger:   log,
	})
	app.session = session.NewManager(app.api, repo, holder, log)

	return app, nil
}

// Run restores the stored session and starts the REPL. Blocks until the
// user exits.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	if err := a.session.Bootstrap(ctx); err != nil {
		return fmt.Errorf("failed to restore session: %w", err)
	}
	if a.session.State() == session.StateAuthenticated {
		a.bindControllers()
		if user, ok := a.session.CurrentUser(); ok {
			fmt.Printf("Welcome back, %s\n", user.Name)
		}
	}

	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
	return nil
}

func (a *App) Close() {
	if a.db != nil {
		_ = a.db.Close()
	}
}

func (a *App) isLoggedIn() bool {
	return a.session.State() == session.StateAuthenticated
}

func (a *App) getStatus() string {
	user, ok := a.session.CurrentUser()
	if !ok {
		return ""
	}
	return fmt.Sprintf("(%s)", user.Name)
}

// bindControllers creates the per-resource controllers bound to the
// session's apartment identity.
func (a *App) bindControllers() {
	unitID := a.session.UnitID()
	a.occurrences = occurrences.NewController(a.api, unitID, a.log)
	a.visitors = visitors.NewController(a.api, unitID, a.log)
	a.notifications = notifications.NewController(a.api, unitID, a.log)
}

func (a *App) dropControllers() {
	a.occurrences = nil
	a.visitors = nil
	a.notifications = nil
}
