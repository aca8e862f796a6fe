package scanflow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avolkov/scanonce/internal/client/api"
	"github.com/avolkov/scanonce/internal/client/models"
	"github.com/avolkov/scanonce/internal/common"
)

type fakeSessions struct {
	session *models.Session
}

func (f *fakeSessions) Current() *models.Session { return f.session }

type fakeLedger struct {
	record *models.ScanRecord
	err    error
	calls  int
}

func (f *fakeLedger) Contains(ctx context.Context, codeValue string) (bool, error) {
	return false, errors.New("not implemented")
}

func (f *fakeLedger) RecordIfAbsent(ctx context.Context, codeValue string) (*models.ScanRecord, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.record, nil
}

func loggedIn() *fakeSessions {
	return &fakeSessions{session: &models.Session{Token: "tok", Identity: models.Identity{ID: "u-1"}}}
}

func TestSubmit_Accepted(t *testing.T) {
	l := &fakeLedger{record: &models.ScanRecord{ID: "s-1", CodeValue: "CODE-1"}}
	p := NewPipeline(loggedIn(), l)

	outcome, err := p.Submit(context.Background(), "CODE-1")
	require.NoError(t, err)
	assert.Equal(t, StatusAccepted, outcome.Status)
	assert.Equal(t, "CODE-1", outcome.Record.CodeValue)
	assert.Equal(t, 1, l.calls)
}

func TestSubmit_DuplicateIsAnOutcomeNotAnError(t *testing.T) {
	l := &fakeLedger{err: common.ErrDuplicate}
	p := NewPipeline(loggedIn(), l)

	outcome, err := p.Submit(context.Background(), "CODE-1")
	require.NoError(t, err)
	assert.Equal(t, StatusDuplicate, outcome.Status)
	assert.NotEmpty(t, outcome.Message)
}

func TestSubmit_NoSession(t *testing.T) {
	l := &fakeLedger{}
	p := NewPipeline(&fakeSessions{}, l)

	_, err := p.Submit(context.Background(), "CODE-1")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.Zero(t, l.calls, "no ledger attempt without a session")
}

func TestSubmit_SessionRejectedMidFlight(t *testing.T) {
	l := &fakeLedger{err: api.ErrUnauthorized}
	p := NewPipeline(loggedIn(), l)

	_, err := p.Submit(context.Background(), "CODE-1")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestSubmit_TransientFailureIsNotRetried(t *testing.T) {
	l := &fakeLedger{err: api.ErrUnavailable}
	p := NewPipeline(loggedIn(), l)

	_, err := p.Submit(context.Background(), "CODE-1")
	assert.ErrorIs(t, err, ErrTransient)
	assert.Equal(t, 1, l.calls, "exactly one attempt")
}
