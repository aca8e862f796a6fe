package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/avolkov/scanonce/internal/common"
	"github.com/avolkov/scanonce/internal/server/config"
	"github.com/avolkov/scanonce/internal/server/models"
	"github.com/avolkov/scanonce/internal/server/repositories/repomanager"
)

// ScanService owns the authoritative scan ledger. Records are append-only
// and unique per code value across all owners: a code scanned by anyone is a
// duplicate for everyone afterwards.
type ScanService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *config.Config
}

func NewScanService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *ScanService {
	return &ScanService{db: db, repomanager: m, config: cfg}
}

// RecordIfAbsent performs the atomic check-and-insert. Exactly one ledger
// mutation attempt is made; a code already present (any owner) yields
// common.ErrDuplicate and no insert.
func (s *ScanService) RecordIfAbsent(ctx context.Context, codeValue, ownerID string) (*models.ScanRecord, error) {
	repo := s.repomanager.Scans(s.db)

	record := &models.ScanRecord{
		ID:        uuid.NewString(),
		CodeValue: codeValue,
		OwnerID:   ownerID,
	}

	record, err := repo.InsertIfAbsent(ctx, record)
	if err != nil {
		if errors.Is(err, common.ErrDuplicate) {
			return nil, common.ErrDuplicate
		}
		return nil, fmt.Errorf("error recording scan: %w", err)
	}

	return record, nil
}

// Contains reports whether the code has ever been recorded, by any owner.
func (s *ScanService) Contains(ctx context.Context, codeValue string) (bool, error) {
	repo := s.repomanager.Scans(s.db)

	exists, err := repo.Exists(ctx, codeValue)
	if err != nil {
		return false, fmt.Errorf("error checking scan: %w", err)
	}
	return exists, nil
}

// History returns the owner's accepted scans, newest first.
func (s *ScanService) History(ctx context.Context, ownerID string) ([]*models.ScanRecord, error) {
	repo := s.repomanager.Scans(s.db)

	records, err := repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("error listing scans: %w", err)
	}
	return records, nil
}
