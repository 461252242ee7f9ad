// Package audit is the append-only sink for security-relevant events
// (registrations, logins, lockouts, rejected tokens).
package audit

import (
	"context"

	"github.com/dmitrijs2005/medvault/internal/server/models"
)

type Repository interface {
	Record(ctx context.Context, event *models.AuditEvent) error
}
