// Package repomanager wires repository constructors together and owns
// database schema migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/medvault/internal/dbx"
	"github.com/dmitrijs2005/medvault/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/medvault/internal/server/repositories/audit"
	"github.com/dmitrijs2005/medvault/internal/server/repositories/patients"
)

// RepositoryManager vends repositories bound to a DBTX, so services can run
// an operation either on the shared connection pool or inside a transaction
// handle without the repositories knowing the difference.
type RepositoryManager interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
	Accounts(db dbx.DBTX) accounts.Repository
	Patients(db dbx.DBTX) patients.Repository
	Audit(db dbx.DBTX) audit.Repository
}
