// Package api talks to the scanonce server over its REST interface and maps
// HTTP failures to sentinel errors the rest of the client branches on.
package api

import (
	"context"

	"github.com/avolkov/scanonce/internal/client/models"
)

// SubmitResult is the outcome of a scan submission. Exactly one of Record
// (accepted) or Duplicate (rejected as already scanned) is meaningful.
type SubmitResult struct {
	Duplicate bool
	Message   string
	Record    *models.ScanRecord
}

type Client interface {
	Register(ctx context.Context, username, email, password string) (*models.Identity, error)
	Login(ctx context.Context, username, password string) (*models.Session, error)
	ValidateSession(ctx context.Context, token string) (*models.Identity, error)
	SubmitScan(ctx context.Context, token, codeValue string) (*SubmitResult, error)
	ContainsScan(ctx context.Context, token, codeValue string) (bool, error)
	History(ctx context.Context, token string) ([]*models.ScanRecord, error)
	ExportLedger(ctx context.Context, token string) (string, string, error)
	Ping(ctx context.Context) error
	Close()
}
