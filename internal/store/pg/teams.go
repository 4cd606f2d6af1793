package pg

import (
	"context"
	"database/sql"
	"errors"

	"teampulse.org/internal/directory"
	"teampulse.org/internal/ids"
)

// Teams implements directory.TeamStore.
type Teams struct {
	db *sql.DB
}

var _ directory.TeamStore = (*Teams)(nil)

func (s *Teams) Create(ctx context.Context, t *directory.Team) error {
	if t.ID == "" {
		t.ID = ids.New()
	}
	row := s.db.QueryRowContext(ctx, `
		insert into teams (id, name, description)
		values ($1, $2, $3)
		returning created_at, updated_at
	`, t.ID, t.Name, nullIfEmpty(t.Description))
	return row.Scan(&t.CreatedAt, &t.UpdatedAt)
}

func (s *Teams) Find(ctx context.Context, id string) (*directory.Team, error) {
	var t directory.Team
	err := s.db.QueryRowContext(ctx, `
		select id, name, coalesce(description,''), created_at, updated_at
		from teams where id=$1
	`, id).Scan(&t.ID, &t.Name, &t.Description, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, directory.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Teams) List(ctx context.Context, offset, limit int) ([]*directory.Team, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `select count(*) from teams`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := s.db.QueryContext(ctx, `
		select id, name, coalesce(description,''), created_at, updated_at
		from teams
		order by name, id
		offset $1 limit $2
	`, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []*directory.Team
	for rows.Next() {
		var t directory.Team
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, 0, err
		}
		result = append(result, &t)
	}
	return result, total, rows.Err()
}

func (s *Teams) Update(ctx context.Context, t *directory.Team) error {
	res, err := s.db.ExecContext(ctx, `
		update teams set name=$2, description=$3, updated_at=now() where id=$1
	`, t.ID, t.Name, nullIfEmpty(t.Description))
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *Teams) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from teams where id=$1`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *Teams) AddMember(ctx context.Context, m directory.TeamMember) error {
	_, err := s.db.ExecContext(ctx, `
		insert into team_members (team_id, user_id, role)
		values ($1, $2, $3)
	`, m.TeamID, m.UserID, m.Role)
	if pgErr, ok := maybePgError(err); ok {
		switch pgErr.Code {
		case pgErrUniqueViolation:
			return directory.ErrAlreadyMember
		case pgErrForeignKeyViolation:
			return directory.ErrNotFound
		}
	}
	return err
}

func (s *Teams) RemoveMember(ctx context.Context, teamID, userID string) error {
	res, err := s.db.ExecContext(ctx, `
		delete from team_members where team_id=$1 and user_id=$2
	`, teamID, userID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *Teams) Members(ctx context.Context, teamID string) ([]directory.TeamMember, error) {
	rows, err := s.db.QueryContext(ctx, `
		select team_id, user_id, role, created_at
		from team_members
		where team_id=$1
		order by created_at, user_id
	`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []directory.TeamMember
	for rows.Next() {
		var m directory.TeamMember
		if err := rows.Scan(&m.TeamID, &m.UserID, &m.Role, &m.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	return result, rows.Err()
}
