package pg

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"teampulse.org/internal/budget"
	"teampulse.org/internal/directory"
)

func newMock(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewStore(db), mock
}

var budgetRows = []string{"user_id", "total_budget", "used_budget", "monthly_budget", "reset_date", "created_at", "updated_at"}

func TestBudgetSpendLocksAndCommits(t *testing.T) {
	store, mock := newMock(t)
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery("select (.+) from budgets where user_id=(.+) for update").
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows(budgetRows).
			AddRow("alice", int64(50000), int64(1000), int64(10000), now, now, now))
	mock.ExpectExec("update budgets set used_budget=").
		WithArgs("alice", int64(4000), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	b, err := store.Budgets().Spend(context.Background(), "alice", 3000, now)
	if err != nil {
		t.Fatalf("Spend: %v", err)
	}
	if b.Used != 4000 {
		t.Fatalf("used=%d, want 4000", b.Used)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBudgetSpendMonthlyCapRollsBack(t *testing.T) {
	store, mock := newMock(t)
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery("select (.+) from budgets where user_id=(.+) for update").
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows(budgetRows).
			AddRow("alice", int64(50000), int64(8000), int64(10000), now, now, now))
	mock.ExpectRollback()

	_, err := store.Budgets().Spend(context.Background(), "alice", 3000, now)
	if !errors.Is(err, budget.ErrInsufficientMonthly) {
		t.Fatalf("err=%v, want ErrInsufficientMonthly", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBudgetSpendAppliesLazyReset(t *testing.T) {
	store, mock := newMock(t)
	reset := time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery("select (.+) from budgets where user_id=(.+) for update").
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows(budgetRows).
			AddRow("alice", int64(50000), int64(9500), int64(10000), reset, reset, reset))
	mock.ExpectExec("update budgets set used_budget=").
		WithArgs("alice", int64(3000), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// без сброса 9500+3000 превысило бы месячный лимит
	b, err := store.Budgets().Spend(context.Background(), "alice", 3000, now)
	if err != nil {
		t.Fatalf("Spend: %v", err)
	}
	if b.Used != 3000 {
		t.Fatalf("used=%d, want 3000 after reset", b.Used)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBudgetSpendMissingBudget(t *testing.T) {
	store, mock := newMock(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery("select (.+) from budgets where user_id=(.+) for update").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows(budgetRows))
	mock.ExpectRollback()

	_, err := store.Budgets().Spend(context.Background(), "ghost", 100, now)
	if !errors.Is(err, budget.ErrNotFound) {
		t.Fatalf("err=%v, want ErrNotFound", err)
	}
}

func TestBudgetResetStale(t *testing.T) {
	store, mock := newMock(t)
	now := time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec("update budgets").
		WithArgs(now).
		WillReturnResult(sqlmock.NewResult(0, 7))

	n, err := store.Budgets().ResetStale(context.Background(), now)
	if err != nil {
		t.Fatalf("ResetStale: %v", err)
	}
	if n != 7 {
		t.Fatalf("n=%d, want 7", n)
	}
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	store, mock := newMock(t)

	mock.ExpectQuery("insert into users").
		WillReturnError(&pgconn.PgError{Code: pgErrUniqueViolation})

	err := store.Users().Create(context.Background(), &directory.User{
		Email: "a@b.c", Name: "A", Role: directory.RoleUser, Active: true,
	})
	if !errors.Is(err, directory.ErrEmailTaken) {
		t.Fatalf("err=%v, want ErrEmailTaken", err)
	}
}

func TestAdjustKudosCountersTransactional(t *testing.T) {
	store, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec("update users set total_kudos_sent").
		WithArgs("alice", 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("update users set total_kudos_received").
		WithArgs("bob", 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := store.Users().AdjustKudosCounters(context.Background(), "alice", "bob", 1); err != nil {
		t.Fatalf("AdjustKudosCounters: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAdjustKudosCountersMissingUserRollsBack(t *testing.T) {
	store, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec("update users set total_kudos_sent").
		WithArgs("ghost", 1).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := store.Users().AdjustKudosCounters(context.Background(), "ghost", "bob", 1)
	if !errors.Is(err, directory.ErrNotFound) {
		t.Fatalf("err=%v, want ErrNotFound", err)
	}
}

func TestTeamAddMemberConflicts(t *testing.T) {
	store, mock := newMock(t)

	mock.ExpectExec("insert into team_members").
		WillReturnError(&pgconn.PgError{Code: pgErrUniqueViolation})
	err := store.Teams().AddMember(context.Background(), directory.TeamMember{
		TeamID: "t1", UserID: "alice", Role: directory.TeamRoleMember,
	})
	if !errors.Is(err, directory.ErrAlreadyMember) {
		t.Fatalf("err=%v, want ErrAlreadyMember", err)
	}

	mock.ExpectExec("insert into team_members").
		WillReturnError(&pgconn.PgError{Code: pgErrForeignKeyViolation})
	err = store.Teams().AddMember(context.Background(), directory.TeamMember{
		TeamID: "t1", UserID: "ghost", Role: directory.TeamRoleMember,
	})
	if !errors.Is(err, directory.ErrNotFound) {
		t.Fatalf("err=%v, want ErrNotFound", err)
	}
}
