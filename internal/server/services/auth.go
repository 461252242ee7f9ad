// Package services contains server-side business logic. This file implements
// AuthService: registration, credential verification with lockout tracking,
// and bearer-token issuance/verification for the API path.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"time"
	"unicode"

	"github.com/dmitrijs2005/medvault/internal/common"
	"github.com/dmitrijs2005/medvault/internal/logging"
	"github.com/dmitrijs2005/medvault/internal/server/auth"
	"github.com/dmitrijs2005/medvault/internal/server/config"
	"github.com/dmitrijs2005/medvault/internal/server/lockout"
	"github.com/dmitrijs2005/medvault/internal/server/models"
	"github.com/dmitrijs2005/medvault/internal/server/repositories/repomanager"
)

var (
	usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)
	emailRe    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

// AuthService answers "is this login valid" and "is this token valid".
//
// A login attempt runs through a fixed order of checks: account lookup,
// inactive check, lockout check, hash verification. An inactive account
// always yields ErrorAccountInactive regardless of the password, and the
// unknown-user and wrong-password outcomes are indistinguishable to the
// caller.
type AuthService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger

	issuer   *auth.Issuer
	tracker  *lockout.Tracker
	hashPrms auth.PasswordParams
	tokenTTL time.Duration

	// dummyHash absorbs a verification pass for unknown usernames, so the
	// response time does not reveal whether the account exists.
	dummyHash string

	now func() time.Time
}

// NewAuthService wires the authentication core from validated configuration.
// It fails when secret material is missing rather than running insecurely.
func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger) (*AuthService, error) {
	issuer, err := auth.NewIssuer([]byte(cfg.SecretKey))
	if err != nil {
		return nil, err
	}

	params := auth.PasswordParams{
		Time:    cfg.HashTimeCost,
		Memory:  cfg.HashMemoryKiB,
		Threads: cfg.HashParallelism,
		KeyLen:  32,
		SaltLen: 16,
	}

	dummy, err := auth.HashPassword("medvault-dummy-credential", params)
	if err != nil {
		return nil, err
	}

	return &AuthService{
		db:          db,
		repomanager: m,
		logger:      logger.With("module", "auth_service"),
		issuer:      issuer,
		tracker:     lockout.NewTracker(m.Accounts(db), cfg.LockoutThreshold, cfg.LockoutDuration),
		hashPrms:    params,
		tokenTTL:    cfg.AccessTokenValidityDuration,
		dummyHash:   dummy,
		now:         time.Now,
	}, nil
}

// Register validates the inputs, hashes the password, and creates a viewer
// account. Duplicate usernames or emails yield ErrorAlreadyExists.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*models.Account, error) {
	if !usernameRe.MatchString(username) {
		return nil, fmt.Errorf("%w: username must be 3-20 characters of letters, digits, and underscores", common.ErrorInvalidInput)
	}
	if !emailRe.MatchString(email) {
		return nil, fmt.Errorf("%w: invalid email format", common.ErrorInvalidInput)
	}
	if err := checkPasswordStrength(password); err != nil {
		return nil, err
	}

	repo := s.repomanager.Accounts(s.db)

	if _, err := repo.GetByUsername(ctx, username); !errors.Is(err, common.ErrorNotFound) {
		if err != nil {
			return nil, common.ErrorInternal
		}
		return nil, common.ErrorAlreadyExists
	}
	if _, err := repo.GetByEmail(ctx, email); !errors.Is(err, common.ErrorNotFound) {
		if err != nil {
			return nil, common.ErrorInternal
		}
		return nil, common.ErrorAlreadyExists
	}

	hash, err := auth.HashPassword(password, s.hashPrms)
	if err != nil {
		return nil, err
	}

	account, err := repo.Create(ctx, &models.Account{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         string(auth.RoleViewer),
		Active:       true,
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, err
		}
		return nil, common.ErrorInternal
	}

	s.audit(ctx, account.ID, models.AuditRegistered, "account "+username+" registered")
	s.logger.Info(ctx, "account registered", "username", username)
	return account, nil
}

// Authenticate verifies a username/password pair and returns the account on
// success. Failures are one of ErrorAccountInactive, ErrorAccountLocked, or
// ErrorInvalidCredentials; the last is uniform for unknown usernames and
// wrong passwords.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*models.Account, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", common.ErrorInvalidInput)
	}

	repo := s.repomanager.Accounts(s.db)

	account, err := repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// Burn a verification pass so unknown users cost the same as
			// a mismatch, then fail with the uniform message.
			auth.VerifyPassword(password, s.dummyHash)
			s.audit(ctx, "", models.AuditLoginFailed, "unknown username "+username)
			return nil, common.ErrorInvalidCredentials
		}
		return nil, common.ErrorInternal
	}

	if !account.Active {
		s.audit(ctx, account.ID, models.AuditLoginFailed, "inactive account")
		return nil, common.ErrorAccountInactive
	}

	if s.tracker.Locked(lockout.State{FailedCount: account.FailedAttempts, LockedUntil: account.LockedUntil}) {
		s.audit(ctx, account.ID, models.AuditLoginFailed, "attempt while locked")
		return nil, common.ErrorAccountLocked
	}

	if !auth.VerifyPassword(password, account.PasswordHash) {
		locked, err := s.tracker.RecordFailure(ctx, account.ID)
		if err != nil {
			s.logger.Error(ctx, "recording failed attempt", "error", err.Error())
			return nil, common.ErrorInternal
		}
		if locked {
			s.audit(ctx, account.ID, models.AuditLockout, "account locked after repeated failures")
			s.logger.Warn(ctx, "account locked", "username", username)
		} else {
			s.audit(ctx, account.ID, models.AuditLoginFailed, "password mismatch")
		}
		return nil, common.ErrorInvalidCredentials
	}

	if err := s.tracker.RecordSuccess(ctx, account.ID); err != nil {
		s.logger.Error(ctx, "resetting lockout state", "error", err.Error())
		return nil, common.ErrorInternal
	}
	if err := repo.UpdateLastLogin(ctx, account.ID, s.now()); err != nil {
		s.logger.Error(ctx, "updating last login", "error", err.Error())
	}

	s.audit(ctx, account.ID, models.AuditLogin, "login")
	s.logger.Info(ctx, "login", "username", username)
	return account, nil
}

// Login authenticates and mints a bearer token for the API path.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, *models.Account, error) {
	account, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return "", nil, err
	}

	role, err := auth.ParseRole(account.Role)
	if err != nil {
		s.logger.Error(ctx, "account has unknown role", "username", username, "role", account.Role)
		return "", nil, common.ErrorInternal
	}

	token, err := s.issuer.Issue(account.ID, role, s.tokenTTL)
	if err != nil {
		return "", nil, common.ErrorInternal
	}
	return token, account, nil
}

// VerifyToken validates a bearer token and returns its claims. Rejections
// keep their distinguishable sentinel for logging; the transport collapses
// them into a single unauthenticated response.
func (s *AuthService) VerifyToken(ctx context.Context, token string) (*auth.Claims, error) {
	claims, err := s.issuer.Verify(token)
	if err != nil {
		s.audit(ctx, "", models.AuditBadToken, err.Error())
		return nil, err
	}
	return claims, nil
}

// audit writes a security event; a failed write is logged, never propagated
// into the authentication outcome.
func (s *AuthService) audit(ctx context.Context, accountID, action, details string) {
	event := &models.AuditEvent{AccountID: accountID, Action: action, Details: details}
	if err := s.repomanager.Audit(s.db).Record(ctx, event); err != nil {
		s.logger.Error(ctx, "writing audit event", "action", action, "error", err.Error())
	}
}

func checkPasswordStrength(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", common.ErrorInvalidInput)
	}

	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		default:
			special = true
		}
	}
	if !upper || !lower || !digit || !special {
		return fmt.Errorf("%w: password must contain upper and lower case letters, a digit, and a special character", common.ErrorInvalidInput)
	}
	return nil
}
