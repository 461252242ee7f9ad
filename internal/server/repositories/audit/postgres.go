package audit

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/medvault/internal/dbx"
	"github.com/dmitrijs2005/medvault/internal/server/models"
	"github.com/google/uuid"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Record(ctx context.Context, event *models.AuditEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}

	query :=
		`INSERT INTO audit_log (id, account_id, action, details, ip_address)
		 VALUES ($1, NULLIF($2, ''), $3, $4, $5)
		 `

	if _, err := r.db.ExecContext(ctx, query,
		event.ID, event.AccountID, event.Action, event.Details, event.IPAddress); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
