// Package cli is the interactive terminal frontend: a small REPL over the
// session manager, the scan flow, and the ledger API.
package cli

import (
	"bufio"
	"context"
	"errors"
	"log"
	"os"

	"github.com/avolkov/scanonce/internal/client/api"
	"github.com/avolkov/scanonce/internal/client/config"
	"github.com/avolkov/scanonce/internal/client/session"
	"github.com/avolkov/scanonce/internal/client/storage"
)

type App struct {
	config   *config.Config
	client   api.Client
	sessions *session.Manager
	reader   *bufio.Reader
}

func NewApp(c *config.Config) (*App, error) {

	ctx := context.Background()

	db, err := storage.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		log.Printf("error initializing database: %s", err.Error())
		return nil, err
	}

	apiClient := api.NewHTTPClient(c.ServerURL)
	sessions := session.NewManager(db, apiClient)

	return &App{config: c, client: apiClient, sessions: sessions, reader: bufio.NewReader(os.Stdin)}, nil
}

func (a *App) isLoggedIn() bool {
	return a.sessions.Current() != nil
}

// Ping checks server reachability on demand.
func (a *App) Ping(ctx context.Context) error {
	if err := a.client.Ping(ctx); err != nil {
		printlnFn("Server is unreachable:", err.Error())
		return err
	}
	printlnFn("Server is up.")
	return nil
}

// restoreSession tries to pick up the session saved by a previous run. A
// stale session has already been cleared by the manager; a transient server
// failure leaves it in place for the next start.
func (a *App) restoreSession(ctx context.Context) {
	s, err := a.sessions.Restore(ctx)
	switch {
	case err == nil:
		printlnFn("Welcome back,", s.Identity.Username)
	case errors.Is(err, session.ErrNoSession):
	case errors.Is(err, session.ErrInvalidSession):
		printlnFn("Your saved session has expired, please log in again.")
	default:
		log.Printf("could not restore session: %s", err.Error())
	}
}

func (a *App) Run(ctx context.Context) {
	defer a.client.Close()

	printlnFn("scanonce CLI (type 'help' for commands)")
	a.restoreSession(ctx)

	statusFn := func() string {
		if s := a.sessions.Current(); s != nil {
			return s.Identity.Username
		}
		return "not logged in"
	}

	runREPL(ctx, a, statusFn, bufio.NewScanner(os.Stdin))
}
