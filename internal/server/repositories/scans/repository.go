package scans

import (
	"context"

	"github.com/avolkov/scanonce/internal/server/models"
)

// Repository is the ledger's persistence surface. InsertIfAbsent is the
// critical operation: check-and-insert must be a single indivisible step for
// a given code value, even under concurrent calls.
type Repository interface {
	InsertIfAbsent(ctx context.Context, record *models.ScanRecord) (*models.ScanRecord, error)
	Exists(ctx context.Context, codeValue string) (bool, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*models.ScanRecord, error)
	ListAll(ctx context.Context) ([]*models.ScanRecord, error)
}
