package pg

import (
	"context"
	"database/sql"
	"errors"

	"teampulse.org/internal/ids"
	"teampulse.org/internal/rewards"
)

// Vouchers implements rewards.Store.
type Vouchers struct {
	db *sql.DB
}

var _ rewards.Store = (*Vouchers)(nil)

const voucherColumns = `id, user_id, title, coalesce(description,''), coalesce(category,''), value,
	currency, expires_at, is_redeemed, redeemed_at, created_at, updated_at`

func scanVoucher(row interface{ Scan(...any) error }) (*rewards.Voucher, error) {
	var v rewards.Voucher
	var expiresAt, redeemedAt sql.NullTime
	err := row.Scan(&v.ID, &v.UserID, &v.Title, &v.Description, &v.Category, &v.Value,
		&v.Currency, &expiresAt, &v.Redeemed, &redeemedAt, &v.CreatedAt, &v.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, rewards.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if expiresAt.Valid {
		t := expiresAt.Time
		v.ExpiresAt = &t
	}
	if redeemedAt.Valid {
		t := redeemedAt.Time
		v.RedeemedAt = &t
	}
	return &v, nil
}

func (s *Vouchers) Create(ctx context.Context, v *rewards.Voucher) error {
	if v.ID == "" {
		v.ID = ids.New()
	}
	var expiresAt any
	if v.ExpiresAt != nil {
		expiresAt = v.ExpiresAt.UTC()
	}
	row := s.db.QueryRowContext(ctx, `
		insert into vouchers (id, user_id, title, description, category, value, currency, expires_at)
		values ($1, $2, $3, $4, $5, $6, $7, $8)
		returning created_at, updated_at
	`, v.ID, v.UserID, v.Title, nullIfEmpty(v.Description), nullIfEmpty(v.Category),
		v.Value, v.Currency, expiresAt)
	if err := row.Scan(&v.CreatedAt, &v.UpdatedAt); err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrForeignKeyViolation {
			return rewards.ErrNotFound
		}
		return err
	}
	return nil
}

func (s *Vouchers) Find(ctx context.Context, id string) (*rewards.Voucher, error) {
	return scanVoucher(s.db.QueryRowContext(ctx,
		`select `+voucherColumns+` from vouchers where id=$1`, id))
}

func (s *Vouchers) List(ctx context.Context, f rewards.Filter) ([]*rewards.Voucher, int, error) {
	where := `where ($1='' or user_id=$1)
		and ($2='' or category=$2)
		and ($3::boolean is null or is_redeemed=$3)`
	var redeemed any
	if f.Redeemed != nil {
		redeemed = *f.Redeemed
	}
	args := []any{f.UserID, f.Category, redeemed}

	var total int
	if err := s.db.QueryRowContext(ctx, `select count(*) from vouchers `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := s.db.QueryContext(ctx, `
		select `+voucherColumns+` from vouchers `+where+`
		order by created_at desc, id desc
		offset $4 limit $5
	`, append(args, f.Offset, f.Limit)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []*rewards.Voucher
	for rows.Next() {
		v, err := scanVoucher(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, v)
	}
	return result, total, rows.Err()
}

func (s *Vouchers) Update(ctx context.Context, v *rewards.Voucher) error {
	var expiresAt, redeemedAt any
	if v.ExpiresAt != nil {
		expiresAt = v.ExpiresAt.UTC()
	}
	if v.RedeemedAt != nil {
		redeemedAt = v.RedeemedAt.UTC()
	}
	res, err := s.db.ExecContext(ctx, `
		update vouchers
		set title=$2, description=$3, category=$4, expires_at=$5, is_redeemed=$6, redeemed_at=$7,
			updated_at=now()
		where id=$1
	`, v.ID, v.Title, nullIfEmpty(v.Description), nullIfEmpty(v.Category),
		expiresAt, v.Redeemed, redeemedAt)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return rewards.ErrNotFound
	}
	return nil
}

func (s *Vouchers) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from vouchers where id=$1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return rewards.ErrNotFound
	}
	return nil
}
