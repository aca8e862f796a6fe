package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/avolkov/scanonce/internal/common"
	"github.com/avolkov/scanonce/internal/dbx"
	"github.com/avolkov/scanonce/internal/server/config"
	"github.com/avolkov/scanonce/internal/server/models"
	scansrepo "github.com/avolkov/scanonce/internal/server/repositories/scans"
	usersrepo "github.com/avolkov/scanonce/internal/server/repositories/users"
)

func newSQLMockDB(t *testing.T) *sql.DB {
	t.Helper()
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		SecretKey:                   "k",
		AccessTokenValidityDuration: time.Hour,
		S3Bucket:                    "ledger",
		S3Region:                    "us-east-1",
	}
}

type fakeUsersRepo struct {
	createOut *models.User
	createErr error

	byUsername map[string]*models.User
	byEmail    map[string]*models.User
	byID       map[string]*models.User

	lookupErr error
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.createOut != nil {
		return f.createOut, nil
	}
	return u, nil
}

func (f *fakeUsersRepo) get(m map[string]*models.User, key string) (*models.User, error) {
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	if u, ok := m[key]; ok {
		return u, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	return f.get(f.byID, id)
}

func (f *fakeUsersRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return f.get(f.byUsername, username)
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return f.get(f.byEmail, email)
}

type fakeScansRepo struct {
	insertOut *models.ScanRecord
	insertErr error

	existsOut bool
	existsErr error

	listOut []*models.ScanRecord
	listErr error
}

func (f *fakeScansRepo) InsertIfAbsent(ctx context.Context, r *models.ScanRecord) (*models.ScanRecord, error) {
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	if f.insertOut != nil {
		return f.insertOut, nil
	}
	r.RecordedAt = time.Now()
	return r, nil
}

func (f *fakeScansRepo) Exists(ctx context.Context, codeValue string) (bool, error) {
	return f.existsOut, f.existsErr
}

func (f *fakeScansRepo) ListByOwner(ctx context.Context, ownerID string) ([]*models.ScanRecord, error) {
	return f.listOut, f.listErr
}

func (f *fakeScansRepo) ListAll(ctx context.Context) ([]*models.ScanRecord, error) {
	return f.listOut, f.listErr
}

type fakeRepoManager struct {
	users usersrepo.Repository
	scans scansrepo.Repository
}

func (f *fakeRepoManager) RunMigrations(ctx context.Context, db *sql.DB) error { return nil }

func (f *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository { return f.users }

func (f *fakeRepoManager) Scans(db dbx.DBTX) scansrepo.Repository { return f.scans }
