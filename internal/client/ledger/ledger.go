// Package ledger is the client's view of the scan ledger: an append-only
// set of code values where recording is an atomic check-and-insert. The
// remote implementation talks to the backend; the in-memory one serves tests
// and fully local operation.
package ledger

import (
	"context"

	"github.com/avolkov/scanonce/internal/client/models"
)

// Ledger answers "was this code ever scanned" and records new scans.
// RecordIfAbsent performs the check and the insert as one atomic step and
// returns common.ErrDuplicate when the code is already present.
type Ledger interface {
	Contains(ctx context.Context, codeValue string) (bool, error)
	RecordIfAbsent(ctx context.Context, codeValue string) (*models.ScanRecord, error)
}

// TokenSource supplies the access token for ledger calls that need one. It
// is consulted on every call so a re-login is picked up immediately.
type TokenSource func() string
