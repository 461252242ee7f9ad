// Package lockout tracks consecutive failed login attempts per account and
// enforces time-boxed lockouts. State lives in a Store; the Postgres store
// applies every transition as a single atomic statement so concurrent
// failures against one account never lose updates.
package lockout

import (
	"context"
	"time"
)

// State is the lockout state of one account.
type State struct {
	FailedCount int
	LockedUntil time.Time // zero when not locked
}

// Store persists per-account lockout state.
//
// RecordFailure must apply the whole transition atomically (per-account
// mutex, conditional UPDATE, or equivalent):
//   - if a lock exists but has expired at now, rotate: count=1, lock cleared;
//   - else if the account is already locked, leave the row unchanged;
//   - else increment the count, and when it reaches threshold set the lock
//     to lockUntil (so the lock is set exactly once).
type Store interface {
	RecordFailure(ctx context.Context, accountID string, threshold int, lockUntil, now time.Time) (State, error)
	RecordSuccess(ctx context.Context, accountID string) error
	LockoutState(ctx context.Context, accountID string) (State, error)
}

// Tracker evaluates lockout policy on top of a Store.
type Tracker struct {
	store     Store
	threshold int
	duration  time.Duration
	now       func() time.Time
}

// NewTracker builds a Tracker with the given failure threshold and lockout
// duration.
func NewTracker(store Store, threshold int, duration time.Duration) *Tracker {
	return &Tracker{store: store, threshold: threshold, duration: duration, now: time.Now}
}

// RecordFailure registers one failed attempt and reports whether the account
// is locked afterwards.
func (t *Tracker) RecordFailure(ctx context.Context, accountID string) (bool, error) {
	now := t.now()
	state, err := t.store.RecordFailure(ctx, accountID, t.threshold, now.Add(t.duration), now)
	if err != nil {
		return false, err
	}
	return t.locked(state, now), nil
}

// RecordSuccess resets the failure count and clears any lock.
func (t *Tracker) RecordSuccess(ctx context.Context, accountID string) error {
	return t.store.RecordSuccess(ctx, accountID)
}

// IsLocked reports whether the account is currently locked. Evaluation is
// lazy: an expired lock counts as unlocked without a state write; the row is
// rotated by the next RecordSuccess or RecordFailure.
func (t *Tracker) IsLocked(ctx context.Context, accountID string) (bool, error) {
	state, err := t.store.LockoutState(ctx, accountID)
	if err != nil {
		return false, err
	}
	return t.locked(state, t.now()), nil
}

// Locked applies the lazy-expiry rule to an already loaded state. Callers
// that have the account row in hand (the auth service) use this to avoid a
// second read.
func (t *Tracker) Locked(state State) bool {
	return t.locked(state, t.now())
}

func (t *Tracker) locked(state State, now time.Time) bool {
	return !state.LockedUntil.IsZero() && now.Before(state.LockedUntil)
}
