package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/medvault/internal/common"
	"github.com/dmitrijs2005/medvault/internal/dbx"
	"github.com/dmitrijs2005/medvault/internal/server/lockout"
	"github.com/dmitrijs2005/medvault/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const accountColumns = `id, username, email, password_hash, role, active,
	 failed_attempts, locked_until, last_login, created_at`

func (r *PostgresRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	query :=
		`INSERT INTO accounts (username, email, password_hash, role, active)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		account.Username, account.Email, account.PasswordHash, account.Role, account.Active).
		Scan(&account.ID, &account.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return account, nil
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE username = $1`
	return r.scanAccount(r.db.QueryRowContext(ctx, query, username))
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`
	return r.scanAccount(r.db.QueryRowContext(ctx, query, email))
}

func (r *PostgresRepository) UpdateLastLogin(ctx context.Context, accountID string, at time.Time) error {
	query := `UPDATE accounts SET last_login = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, accountID, at); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// RecordFailure applies the failure transition in one statement, so the
// read-modify-write on (failed_attempts, locked_until) happens inside the
// database and concurrent failures cannot lose updates:
//   - expired lock: rotate to count=1, lock cleared;
//   - active lock: row unchanged (count saturated, lock set exactly once);
//   - otherwise: increment, and set the lock when the threshold is reached.
func (r *PostgresRepository) RecordFailure(ctx context.Context, accountID string, threshold int, lockUntil, now time.Time) (lockout.State, error) {
	query :=
		`UPDATE accounts SET
		     failed_attempts = CASE
		         WHEN locked_until IS NOT NULL AND locked_until <= $4 THEN 1
		         WHEN locked_until IS NOT NULL THEN failed_attempts
		         ELSE failed_attempts + 1
		     END,
		     locked_until = CASE
		         WHEN locked_until IS NOT NULL AND locked_until <= $4 THEN NULL
		         WHEN locked_until IS NOT NULL THEN locked_until
		         WHEN failed_attempts + 1 >= $2 THEN $3
		         ELSE NULL
		     END
		 WHERE id = $1
		 RETURNING failed_attempts, locked_until
		 `

	var state lockout.State
	var lockedUntil sql.NullTime
	err := r.db.QueryRowContext(ctx, query, accountID, threshold, lockUntil, now).
		Scan(&state.FailedCount, &lockedUntil)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return lockout.State{}, common.ErrorNotFound
		}
		return lockout.State{}, fmt.Errorf("db error: %w", err)
	}
	if lockedUntil.Valid {
		state.LockedUntil = lockedUntil.Time
	}
	return state, nil
}

func (r *PostgresRepository) RecordSuccess(ctx context.Context, accountID string) error {
	query := `UPDATE accounts SET failed_attempts = 0, locked_until = NULL WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, accountID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) LockoutState(ctx context.Context, accountID string) (lockout.State, error) {
	query := `SELECT failed_attempts, locked_until FROM accounts WHERE id = $1`

	var state lockout.State
	var lockedUntil sql.NullTime
	err := r.db.QueryRowContext(ctx, query, accountID).Scan(&state.FailedCount, &lockedUntil)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return lockout.State{}, common.ErrorNotFound
		}
		return lockout.State{}, fmt.Errorf("db error: %w", err)
	}
	if lockedUntil.Valid {
		state.LockedUntil = lockedUntil.Time
	}
	return state, nil
}

func (r *PostgresRepository) scanAccount(row *sql.Row) (*models.Account, error) {
	account := &models.Account{}
	var lockedUntil, lastLogin sql.NullTime

	err := row.Scan(&account.ID, &account.Username, &account.Email, &account.PasswordHash,
		&account.Role, &account.Active, &account.FailedAttempts, &lockedUntil, &lastLogin,
		&account.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if lockedUntil.Valid {
		account.LockedUntil = lockedUntil.Time
	}
	if lastLogin.Valid {
		account.LastLogin = lastLogin.Time
	}
	return account, nil
}
