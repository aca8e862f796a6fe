package ledger

import (
	"context"

	"github.com/avolkov/scanonce/internal/client/api"
	"github.com/avolkov/scanonce/internal/client/models"
	"github.com/avolkov/scanonce/internal/common"
)

// Remote delegates ledger operations to the backend. Atomicity of the
// check-and-insert lives server-side; a duplicate outcome on the wire maps
// back to common.ErrDuplicate here.
type Remote struct {
	client api.Client
	token  TokenSource
}

func NewRemote(client api.Client, token TokenSource) *Remote {
	return &Remote{client: client, token: token}
}

func (r *Remote) Contains(ctx context.Context, codeValue string) (bool, error) {
	return r.client.ContainsScan(ctx, r.token(), codeValue)
}

func (r *Remote) RecordIfAbsent(ctx context.Context, codeValue string) (*models.ScanRecord, error) {
	result, err := r.client.SubmitScan(ctx, r.token(), codeValue)
	if err != nil {
		return nil, err
	}
	if result.Duplicate {
		return nil, common.ErrDuplicate
	}
	return result.Record, nil
}
