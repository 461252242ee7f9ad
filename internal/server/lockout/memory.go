package lockout

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store. A single mutex guards the whole map,
// which makes every transition atomic per account. Used by tests and by the
// in-memory repository flavor.
type MemoryStore struct {
	mu     sync.Mutex
	states map[string]State
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[string]State)}
}

func (s *MemoryStore) RecordFailure(ctx context.Context, accountID string, threshold int, lockUntil, now time.Time) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.states[accountID]
	switch {
	case !state.LockedUntil.IsZero() && !state.LockedUntil.After(now):
		// Expired lock: rotate.
		state = State{FailedCount: 1}
	case !state.LockedUntil.IsZero():
		// Already locked: saturated.
	default:
		state.FailedCount++
		if state.FailedCount >= threshold {
			state.LockedUntil = lockUntil
		}
	}

	s.states[accountID] = state
	return state, nil
}

func (s *MemoryStore) RecordSuccess(ctx context.Context, accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, accountID)
	return nil
}

func (s *MemoryStore) LockoutState(ctx context.Context, accountID string) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.states[accountID], nil
}
