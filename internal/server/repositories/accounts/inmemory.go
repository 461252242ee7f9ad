package accounts

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/dmitrijs2005/medvault/internal/common"
	"github.com/dmitrijs2005/medvault/internal/server/lockout"
	"github.com/dmitrijs2005/medvault/internal/server/models"
)

// InMemoryRepository is a map-backed Repository used by tests and the
// in-memory repository manager. One mutex guards all rows, which gives the
// same per-account atomicity the Postgres store gets from single-statement
// updates.
type InMemoryRepository struct {
	mu       sync.Mutex
	seq      int
	accounts map[string]*models.Account // keyed by ID
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{accounts: make(map[string]*models.Account)}
}

func (r *InMemoryRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, a := range r.accounts {
		if a.Username == account.Username || a.Email == account.Email {
			return nil, common.ErrorAlreadyExists
		}
	}

	r.seq++
	stored := *account
	stored.ID = "mem-" + strconv.Itoa(r.seq)
	stored.CreatedAt = time.Now()
	r.accounts[stored.ID] = &stored

	out := stored
	return &out, nil
}

func (r *InMemoryRepository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, a := range r.accounts {
		if a.Username == username {
			out := *a
			return &out, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *InMemoryRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, a := range r.accounts {
		if a.Email == email {
			out := *a
			return &out, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *InMemoryRepository) UpdateLastLogin(ctx context.Context, accountID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.accounts[accountID]
	if !ok {
		return common.ErrorNotFound
	}
	a.LastLogin = at
	return nil
}

func (r *InMemoryRepository) RecordFailure(ctx context.Context, accountID string, threshold int, lockUntil, now time.Time) (lockout.State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.accounts[accountID]
	if !ok {
		return lockout.State{}, common.ErrorNotFound
	}

	switch {
	case !a.LockedUntil.IsZero() && !a.LockedUntil.After(now):
		a.FailedAttempts = 1
		a.LockedUntil = time.Time{}
	case !a.LockedUntil.IsZero():
		// Locked: saturated.
	default:
		a.FailedAttempts++
		if a.FailedAttempts >= threshold {
			a.LockedUntil = lockUntil
		}
	}

	return lockout.State{FailedCount: a.FailedAttempts, LockedUntil: a.LockedUntil}, nil
}

func (r *InMemoryRepository) RecordSuccess(ctx context.Context, accountID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.accounts[accountID]
	if !ok {
		return common.ErrorNotFound
	}
	a.FailedAttempts = 0
	a.LockedUntil = time.Time{}
	return nil
}

func (r *InMemoryRepository) LockoutState(ctx context.Context, accountID string) (lockout.State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.accounts[accountID]
	if !ok {
		return lockout.State{}, common.ErrorNotFound
	}
	return lockout.State{FailedCount: a.FailedAttempts, LockedUntil: a.LockedUntil}, nil
}
