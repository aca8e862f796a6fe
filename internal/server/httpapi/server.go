// Package httpapi exposes the REST surface of the scanonce server: account
// registration and login, session validation, and the scan ledger
// (submission, lookup, history, export).
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/avolkov/scanonce/internal/logging"
	"github.com/avolkov/scanonce/internal/server/models"
)

// UserAPI is the slice of the user service the transport needs.
type UserAPI interface {
	Register(ctx context.Context, username, email string, password []byte) (*models.User, error)
	Login(ctx context.Context, username string, password []byte) (string, *models.User, error)
	ValidateToken(ctx context.Context, token string) (*models.User, error)
}

// ScanAPI is the slice of the scan service the transport needs.
type ScanAPI interface {
	RecordIfAbsent(ctx context.Context, codeValue, ownerID string) (*models.ScanRecord, error)
	Contains(ctx context.Context, codeValue string) (bool, error)
	History(ctx context.Context, ownerID string) ([]*models.ScanRecord, error)
	Export(ctx context.Context) (string, string, error)
}

type Server struct {
	address string
	logger  logging.Logger
	users   UserAPI
	scans   ScanAPI
}

func NewServer(address string, l logging.Logger, users UserAPI, scans ScanAPI) *Server {
	return &Server{
		address: address,
		logger:  l.With("module", "httpapi"),
		users:   users,
		scans:   scans,
	}
}

// Run serves the API until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {

	srv := &http.Server{
		Addr:         s.address,
		Handler:      s.routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}
