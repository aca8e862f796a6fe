package scans

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/avolkov/scanonce/internal/common"
	"github.com/avolkov/scanonce/internal/dbx"
	"github.com/avolkov/scanonce/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// InsertIfAbsent races on the unique index over code_value: the insert and
// the duplicate check are one statement, so two concurrent submissions of
// the same code cannot both succeed. No row back means another record with
// the same code already exists (any owner), reported as common.ErrDuplicate.
func (r *PostgresRepository) InsertIfAbsent(ctx context.Context, record *models.ScanRecord) (*models.ScanRecord, error) {

	query :=
		`INSERT INTO scans (id, code_value, owner_id)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (code_value) DO NOTHING
		 RETURNING recorded_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		record.ID, record.CodeValue, record.OwnerID).Scan(&record.RecordedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrDuplicate
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return record, nil
}

func (r *PostgresRepository) Exists(ctx context.Context, codeValue string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM scans WHERE code_value = $1)`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, codeValue).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.ScanRecord, error) {
	query :=
		`SELECT id, code_value, owner_id, recorded_at FROM scans
		 WHERE owner_id = $1
		 ORDER BY recorded_at DESC
		 `

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	return collect(rows)
}

func (r *PostgresRepository) ListAll(ctx context.Context) ([]*models.ScanRecord, error) {
	query :=
		`SELECT id, code_value, owner_id, recorded_at FROM scans
		 ORDER BY recorded_at ASC
		 `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	return collect(rows)
}

func collect(rows *sql.Rows) ([]*models.ScanRecord, error) {
	result := make([]*models.ScanRecord, 0)
	for rows.Next() {
		rec := &models.ScanRecord{}
		if err := rows.Scan(&rec.ID, &rec.CodeValue, &rec.OwnerID, &rec.RecordedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
