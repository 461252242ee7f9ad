package accounts

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/medvault/internal/common"
	"github.com/dmitrijs2005/medvault/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

func newMockRepo(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

func accountRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "username", "email", "password_hash", "role", "active",
		"failed_attempts", "locked_until", "last_login", "created_at",
	})
}

func TestPostgres_GetByUsername(t *testing.T) {
	repo, mock := newMockRepo(t)

	created := time.Now()
	mock.ExpectQuery(`SELECT .+ FROM accounts WHERE username = \$1`).
		WithArgs("alice").
		WillReturnRows(accountRows().
			AddRow("id-1", "alice", "a@example.com", "$argon2id$...", "viewer", true,
				0, nil, nil, created))

	account, err := repo.GetByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("GetByUsername error: %v", err)
	}
	if account.ID != "id-1" || account.Username != "alice" || !account.Active {
		t.Fatalf("unexpected account: %+v", account)
	}
	if !account.LockedUntil.IsZero() || !account.LastLogin.IsZero() {
		t.Fatalf("NULL timestamps must scan as zero values: %+v", account)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgres_GetByUsername_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT .+ FROM accounts WHERE username = \$1`).
		WithArgs("ghost").
		WillReturnRows(accountRows())

	_, err := repo.GetByUsername(context.Background(), "ghost")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}

func TestPostgres_Create_DuplicateIsAlreadyExists(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO accounts`)).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := repo.Create(context.Background(), &models.Account{
		Username: "alice", Email: "a@example.com", PasswordHash: "h", Role: "viewer", Active: true,
	})
	if !errors.Is(err, common.ErrorAlreadyExists) {
		t.Fatalf("expected ErrorAlreadyExists, got %v", err)
	}
}

func TestPostgres_RecordFailure_ScansState(t *testing.T) {
	repo, mock := newMockRepo(t)

	now := time.Now()
	until := now.Add(15 * time.Minute)
	mock.ExpectQuery(`UPDATE accounts SET`).
		WithArgs("id-1", 5, until, now).
		WillReturnRows(sqlmock.NewRows([]string{"failed_attempts", "locked_until"}).
			AddRow(5, until))

	state, err := repo.RecordFailure(context.Background(), "id-1", 5, until, now)
	if err != nil {
		t.Fatalf("RecordFailure error: %v", err)
	}
	if state.FailedCount != 5 || !state.LockedUntil.Equal(until) {
		t.Fatalf("unexpected state: %+v", state)
	}
}

func TestPostgres_RecordFailure_UnknownAccount(t *testing.T) {
	repo, mock := newMockRepo(t)

	now := time.Now()
	mock.ExpectQuery(`UPDATE accounts SET`).
		WillReturnRows(sqlmock.NewRows([]string{"failed_attempts", "locked_until"}))

	_, err := repo.RecordFailure(context.Background(), "ghost", 5, now.Add(time.Minute), now)
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}

func TestPostgres_RecordSuccess(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`UPDATE accounts SET failed_attempts = 0, locked_until = NULL`).
		WithArgs("id-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.RecordSuccess(context.Background(), "id-1"); err != nil {
		t.Fatalf("RecordSuccess error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
