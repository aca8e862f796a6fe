// Package scanflow drives a single scan from decode to verdict: the
// Pipeline performs exactly one ledger submission per scanned code, and the
// Machine turns pipeline outcomes and device events into UI phases.
package scanflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/avolkov/scanonce/internal/client/api"
	"github.com/avolkov/scanonce/internal/client/ledger"
	"github.com/avolkov/scanonce/internal/client/models"
	"github.com/avolkov/scanonce/internal/common"
)

var (
	// ErrNotAuthenticated means there was no valid session at submit time.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrTransient wraps infrastructure failures where the scan outcome is
	// unknown. The pipeline never retries; the user decides.
	ErrTransient = errors.New("temporary failure, scan not confirmed")
)

// Status is the verdict for one submitted code.
type Status int

const (
	StatusAccepted Status = iota
	StatusDuplicate
)

// Outcome is the result of a completed submission.
type Outcome struct {
	Status  Status
	Message string
	Record  *models.ScanRecord
}

// SessionSource exposes the active session; consulted at every submit so a
// logout between scans takes effect immediately.
type SessionSource interface {
	Current() *models.Session
}

// Pipeline submits scanned codes to the ledger.
type Pipeline struct {
	sessions SessionSource
	ledger   ledger.Ledger
}

func NewPipeline(sessions SessionSource, l ledger.Ledger) *Pipeline {
	return &Pipeline{sessions: sessions, ledger: l}
}

// Submit records the code. It makes exactly one ledger attempt: a duplicate
// verdict and an accepted verdict are both terminal, and anything else is
// reported as an error without a retry (the code may or may not have been
// recorded, so a blind retry could double-report to the user).
func (p *Pipeline) Submit(ctx context.Context, codeValue string) (*Outcome, error) {
	if p.sessions.Current() == nil {
		return nil, ErrNotAuthenticated
	}

	record, err := p.ledger.RecordIfAbsent(ctx, codeValue)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrDuplicate):
			return &Outcome{Status: StatusDuplicate, Message: "this code has already been scanned"}, nil
		case errors.Is(err, api.ErrUnauthorized):
			return nil, fmt.Errorf("%w: %v", ErrNotAuthenticated, err)
		default:
			return nil, fmt.Errorf("%w: %v", ErrTransient, err)
		}
	}

	return &Outcome{Status: StatusAccepted, Record: record}, nil
}
