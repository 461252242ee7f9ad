// Package models holds the server-side data structures shared between
// repositories and services.
package models

import "time"

// Account is a registered user of the system.
//
// FailedAttempts and LockedUntil are mutated only through the lockout
// tracker's atomic store operations; PasswordHash is mutated only on
// password change. LockedUntil and LastLogin use the zero time for "unset".
type Account struct {
	ID             string
	Username       string
	Email          string
	PasswordHash   string
	Role           string
	Active         bool
	FailedAttempts int
	LockedUntil    time.Time
	LastLogin      time.Time
	CreatedAt      time.Time
}
