// Package session manages the client's authenticated session: logging in,
// persisting the session across restarts, restoring and re-validating it on
// startup, and logging out.
package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/avolkov/scanonce/internal/client/api"
	"github.com/avolkov/scanonce/internal/client/models"
	"github.com/avolkov/scanonce/internal/client/repositories/sessionstore"
	"github.com/avolkov/scanonce/internal/dbx"
)

var (
	// ErrNoSession means nothing is persisted; the user has to log in.
	ErrNoSession = errors.New("no saved session")
	// ErrInvalidSession means a persisted session was found but the server
	// no longer accepts it. The stale state has been cleared.
	ErrInvalidSession = errors.New("saved session is no longer valid")
)

const (
	keyToken    = "token"
	keyIdentity = "identity"
)

// Manager is the single owner of the current session. All reads of the
// current token go through it, and persistence of token plus identity is
// atomic: either both are saved or neither is.
type Manager struct {
	mu      sync.RWMutex
	current *models.Session

	db     *sql.DB
	client api.Client
}

func NewManager(db *sql.DB, client api.Client) *Manager {
	return &Manager{db: db, client: client}
}

// Login authenticates against the server and, on success, persists the new
// session in a single transaction before exposing it via Current.
func (m *Manager) Login(ctx context.Context, username, password string) (*models.Session, error) {
	session, err := m.client.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}

	if err := m.persist(ctx, session); err != nil {
		return nil, fmt.Errorf("error saving session: %w", err)
	}

	m.mu.Lock()
	m.current = session
	m.mu.Unlock()

	return session, nil
}

// Restore loads the persisted session and re-validates it against the
// server. A session the server rejects is cleared from local storage and
// reported as ErrInvalidSession; a missing one as ErrNoSession. The restored
// identity is the server's answer, not the locally cached copy.
func (m *Manager) Restore(ctx context.Context) (*models.Session, error) {
	repo := sessionstore.NewSQLiteRepository(m.db)

	token, err := repo.Get(ctx, keyToken)
	if err != nil {
		return nil, err
	}
	if token == nil {
		return nil, ErrNoSession
	}

	identity, err := m.client.ValidateSession(ctx, string(token))
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			if clearErr := m.clear(ctx); clearErr != nil {
				return nil, clearErr
			}
			return nil, ErrInvalidSession
		}
		return nil, err
	}

	session := &models.Session{Token: string(token), Identity: *identity, IssuedAt: time.Now()}

	m.mu.Lock()
	m.current = session
	m.mu.Unlock()

	return session, nil
}

// Logout clears both the in-memory and the persisted session. Calling it
// without an active session is a no-op.
func (m *Manager) Logout(ctx context.Context) error {
	if err := m.clear(ctx); err != nil {
		return err
	}

	m.mu.Lock()
	m.current = nil
	m.mu.Unlock()

	return nil
}

// Current returns the active session, or nil when not logged in.
func (m *Manager) Current() *models.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

func (m *Manager) persist(ctx context.Context, session *models.Session) error {
	identityJSON, err := json.Marshal(session.Identity)
	if err != nil {
		return err
	}

	return dbx.WithTx(ctx, m.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := sessionstore.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, keyToken, []byte(session.Token)); err != nil {
			return err
		}
		return repo.Set(ctx, keyIdentity, identityJSON)
	})
}

func (m *Manager) clear(ctx context.Context) error {
	return dbx.WithTx(ctx, m.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return sessionstore.NewSQLiteRepository(tx).Clear(ctx)
	})
}
