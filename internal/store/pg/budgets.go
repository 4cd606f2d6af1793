package pg

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"teampulse.org/internal/budget"
)

// Budgets implements budget.Store.
type Budgets struct {
	db *sql.DB
}

var _ budget.Store = (*Budgets)(nil)

const budgetColumns = `user_id, total_budget, used_budget, monthly_budget, reset_date, created_at, updated_at`

func scanBudget(row interface{ Scan(...any) error }) (*budget.Budget, error) {
	var b budget.Budget
	err := row.Scan(&b.UserID, &b.Total, &b.Used, &b.Monthly, &b.ResetDate, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, budget.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *Budgets) Create(ctx context.Context, b *budget.Budget) error {
	row := s.db.QueryRowContext(ctx, `
		insert into budgets (user_id, total_budget, used_budget, monthly_budget, reset_date)
		values ($1, $2, $3, $4, $5)
		returning created_at, updated_at
	`, b.UserID, b.Total, b.Used, b.Monthly, b.ResetDate)
	if err := row.Scan(&b.CreatedAt, &b.UpdatedAt); err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrForeignKeyViolation {
			return budget.ErrNotFound
		}
		return err
	}
	return nil
}

func (s *Budgets) Find(ctx context.Context, userID string) (*budget.Budget, error) {
	return scanBudget(s.db.QueryRowContext(ctx,
		`select `+budgetColumns+` from budgets where user_id=$1`, userID))
}

func (s *Budgets) List(ctx context.Context, offset, limit int) ([]*budget.Budget, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `select count(*) from budgets`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := s.db.QueryContext(ctx, `
		select `+budgetColumns+` from budgets
		order by user_id
		offset $1 limit $2
	`, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []*budget.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, b)
	}
	return result, total, rows.Err()
}

func (s *Budgets) Save(ctx context.Context, b *budget.Budget) error {
	res, err := s.db.ExecContext(ctx, `
		update budgets
		set total_budget=$2, used_budget=$3, monthly_budget=$4, reset_date=$5, updated_at=now()
		where user_id=$1
	`, b.UserID, b.Total, b.Used, b.Monthly, b.ResetDate)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return budget.ErrNotFound
	}
	return nil
}

// Spend deducts amount inside one transaction. The budget row is locked, the
// lazy monthly reset applied, then both caps checked before the update so a
// concurrent spender cannot push used spending past either limit.
func (s *Budgets) Spend(ctx context.Context, userID string, amount int64, now time.Time) (*budget.Budget, error) {
	if amount <= 0 {
		return nil, budget.ErrInvalidAmount
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	b, err := scanBudget(tx.QueryRowContext(ctx,
		`select `+budgetColumns+` from budgets where user_id=$1 for update`, userID))
	if err != nil {
		return nil, err
	}
	budget.ApplyMonthlyReset(b, now)
	if amount > b.Available() {
		return nil, budget.ErrInsufficientTotal
	}
	if amount > b.AvailableMonthly() {
		return nil, budget.ErrInsufficientMonthly
	}
	b.Used += amount
	b.UpdatedAt = now.UTC()
	if _, err := tx.ExecContext(ctx, `
		update budgets set used_budget=$2, reset_date=$3, updated_at=$4 where user_id=$1
	`, userID, b.Used, b.ResetDate, b.UpdatedAt); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Budgets) Refund(ctx context.Context, userID string, amount int64) error {
	if amount <= 0 {
		return budget.ErrInvalidAmount
	}
	res, err := s.db.ExecContext(ctx, `
		update budgets set used_budget = greatest(used_budget - $2, 0), updated_at=now()
		where user_id=$1
	`, userID, amount)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return budget.ErrNotFound
	}
	return nil
}

// ResetStale zeroes used spending for every budget whose reset date's
// calendar month is behind now. One statement, no per-row round trips.
func (s *Budgets) ResetStale(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		update budgets
		set used_budget=0, reset_date=$1, updated_at=$1
		where extract(year from reset_date at time zone 'UTC')*12 + extract(month from reset_date at time zone 'UTC')
		    < extract(year from $1::timestamptz at time zone 'UTC')*12 + extract(month from $1::timestamptz at time zone 'UTC')
	`, now.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
