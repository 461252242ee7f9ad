// Package accounts persists Account rows and the per-account lockout state.
package accounts

import (
	"context"
	"time"

	"github.com/dmitrijs2005/medvault/internal/server/lockout"
	"github.com/dmitrijs2005/medvault/internal/server/models"
)

// Repository is the account store. It embeds lockout.Store: the lockout
// counters live on the account row, and the store implementation must keep
// their updates atomic under concurrent failures.
type Repository interface {
	lockout.Store

	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	GetByUsername(ctx context.Context, username string) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	UpdateLastLogin(ctx context.Context, accountID string, at time.Time) error
}
