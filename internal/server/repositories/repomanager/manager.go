package repomanager

import (
	"context"
	"database/sql"

	"github.com/avolkov/scanonce/internal/dbx"
	"github.com/avolkov/scanonce/internal/server/repositories/scans"
	"github.com/avolkov/scanonce/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DB handle or a
// transaction, plus a schema migration hook.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Scans(db dbx.DBTX) scans.Repository
}
