package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/avolkov/scanonce/internal/client/models"
	"github.com/avolkov/scanonce/internal/common"
)

// Memory is a mutex-serialized in-process ledger. The lookup and the insert
// in RecordIfAbsent happen inside one critical section, so concurrent
// submissions of the same code produce exactly one record.
type Memory struct {
	mu      sync.Mutex
	ownerID string
	records map[string]*models.ScanRecord
}

func NewMemory(ownerID string) *Memory {
	return &Memory{ownerID: ownerID, records: make(map[string]*models.ScanRecord)}
}

func (m *Memory) Contains(_ context.Context, codeValue string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.records[codeValue]
	return ok, nil
}

func (m *Memory) RecordIfAbsent(_ context.Context, codeValue string) (*models.ScanRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[codeValue]; ok {
		return nil, common.ErrDuplicate
	}

	record := &models.ScanRecord{
		ID:         uuid.NewString(),
		CodeValue:  codeValue,
		OwnerID:    m.ownerID,
		RecordedAt: time.Now(),
	}
	m.records[codeValue] = record
	return record, nil
}
