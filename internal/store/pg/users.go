package pg

import (
	"context"
	"database/sql"
	"errors"

	"teampulse.org/internal/directory"
	"teampulse.org/internal/ids"
)

// Users implements directory.UserStore.
type Users struct {
	db *sql.DB
}

var _ directory.UserStore = (*Users)(nil)

const userColumns = `id, email, name, coalesce(department,''), password_hash, role, is_active,
	total_kudos_sent, total_kudos_received, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*directory.User, error) {
	var u directory.User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Department, &u.PasswordHash, &u.Role,
		&u.Active, &u.TotalKudosSent, &u.TotalKudosReceived, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, directory.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Users) Create(ctx context.Context, u *directory.User) error {
	if u.ID == "" {
		u.ID = ids.New()
	}
	row := s.db.QueryRowContext(ctx, `
		insert into users (id, email, name, department, password_hash, role, is_active)
		values ($1, lower($2), $3, $4, $5, $6, $7)
		returning created_at, updated_at
	`, u.ID, u.Email, u.Name, nullIfEmpty(u.Department), u.PasswordHash, u.Role, u.Active)
	if err := row.Scan(&u.CreatedAt, &u.UpdatedAt); err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrUniqueViolation {
			return directory.ErrEmailTaken
		}
		return err
	}
	return nil
}

func (s *Users) Find(ctx context.Context, id string) (*directory.User, error) {
	return scanUser(s.db.QueryRowContext(ctx, `select `+userColumns+` from users where id=$1`, id))
}

func (s *Users) FindByEmail(ctx context.Context, email string) (*directory.User, error) {
	return scanUser(s.db.QueryRowContext(ctx, `select `+userColumns+` from users where email=lower($1)`, email))
}

func (s *Users) List(ctx context.Context, f directory.UserFilter) ([]*directory.User, int, error) {
	where := `where ($1 = '' or department = $1) and ($2 or is_active)`
	var total int
	if err := s.db.QueryRowContext(ctx, `select count(*) from users `+where,
		f.Department, f.IncludeInactive).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := s.db.QueryContext(ctx, `
		select `+userColumns+` from users `+where+`
		order by created_at desc, id desc
		offset $3 limit $4
	`, f.Department, f.IncludeInactive, f.Offset, f.Limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []*directory.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, u)
	}
	return result, total, rows.Err()
}

func (s *Users) Update(ctx context.Context, u *directory.User) error {
	res, err := s.db.ExecContext(ctx, `
		update users
		set email=lower($2), name=$3, department=$4, password_hash=$5, role=$6,
			is_active=$7, updated_at=now()
		where id=$1
	`, u.ID, u.Email, u.Name, nullIfEmpty(u.Department), u.PasswordHash, u.Role, u.Active)
	if err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrUniqueViolation {
			return directory.ErrEmailTaken
		}
		return err
	}
	return requireRow(res)
}

func (s *Users) SetActive(ctx context.Context, id string, active bool) error {
	res, err := s.db.ExecContext(ctx, `
		update users set is_active=$2, updated_at=now() where id=$1
	`, id, active)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *Users) AdjustKudosCounters(ctx context.Context, senderID, recipientID string, delta int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		update users set total_kudos_sent = greatest(total_kudos_sent + $2, 0), updated_at=now()
		where id=$1
	`, senderID, delta)
	if err != nil {
		return err
	}
	if err := requireRow(res); err != nil {
		return err
	}
	res, err = tx.ExecContext(ctx, `
		update users set total_kudos_received = greatest(total_kudos_received + $2, 0), updated_at=now()
		where id=$1
	`, recipientID, delta)
	if err != nil {
		return err
	}
	if err := requireRow(res); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Users) TopReceivers(ctx context.Context, limit int) ([]*directory.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		select `+userColumns+` from users
		where is_active
		order by total_kudos_received desc, total_kudos_sent desc, id
		limit $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*directory.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, u)
	}
	return result, rows.Err()
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return directory.ErrNotFound
	}
	return nil
}
