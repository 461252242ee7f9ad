package models

import "time"

// Audit actions recorded by the auth service.
const (
	AuditRegistered  = "ACCOUNT_REGISTERED"
	AuditLogin       = "LOGIN"
	AuditLoginFailed = "LOGIN_FAILED"
	AuditLockout     = "ACCOUNT_LOCKED"
	AuditBadToken    = "TOKEN_REJECTED"
)

// AuditEvent is one security-relevant occurrence, written to the append-only
// audit sink. AccountID may be empty when the subject account is unknown.
type AuditEvent struct {
	ID        string
	AccountID string
	Action    string
	Details   string
	IPAddress string
	CreatedAt time.Time
}
