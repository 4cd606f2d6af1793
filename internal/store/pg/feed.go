package pg

import (
	"context"
	"database/sql"
	"time"

	"teampulse.org/internal/feed"
	"teampulse.org/internal/ids"
)

// Notifications implements feed.NotificationStore.
type Notifications struct {
	db *sql.DB
}

var _ feed.NotificationStore = (*Notifications)(nil)

func (s *Notifications) Create(ctx context.Context, n *feed.Notification) error {
	if n.ID == "" {
		n.ID = ids.New()
	}
	row := s.db.QueryRowContext(ctx, `
		insert into notifications (id, user_id, type, severity, title, message)
		values ($1, $2, $3, $4, $5, $6)
		returning created_at
	`, n.ID, n.UserID, n.Type, n.Severity, n.Title, n.Message)
	if err := row.Scan(&n.CreatedAt); err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrForeignKeyViolation {
			return feed.ErrNotFound
		}
		return err
	}
	return nil
}

func (s *Notifications) ListByUser(ctx context.Context, userID string, offset, limit int) ([]*feed.Notification, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx,
		`select count(*) from notifications where user_id=$1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := s.db.QueryContext(ctx, `
		select id, user_id, type, severity, title, message, is_read, read_at, created_at
		from notifications
		where user_id=$1
		order by created_at desc, id desc
		offset $2 limit $3
	`, userID, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []*feed.Notification
	for rows.Next() {
		var n feed.Notification
		var readAt sql.NullTime
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Severity, &n.Title, &n.Message,
			&n.Read, &readAt, &n.CreatedAt); err != nil {
			return nil, 0, err
		}
		if readAt.Valid {
			t := readAt.Time
			n.ReadAt = &t
		}
		result = append(result, &n)
	}
	return result, total, rows.Err()
}

func (s *Notifications) MarkRead(ctx context.Context, userID, id string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		update notifications set is_read=true, read_at=$3
		where id=$1 and user_id=$2
	`, id, userID, at.UTC())
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return feed.ErrNotFound
	}
	return nil
}

func (s *Notifications) MarkAllRead(ctx context.Context, userID string, at time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		update notifications set is_read=true, read_at=$2
		where user_id=$1 and not is_read
	`, userID, at.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Activities implements feed.ActivityStore.
type Activities struct {
	db *sql.DB
}

var _ feed.ActivityStore = (*Activities)(nil)

func (s *Activities) Append(ctx context.Context, a *feed.Activity) error {
	if a.ID == "" {
		a.ID = ids.New()
	}
	row := s.db.QueryRowContext(ctx, `
		insert into activities (id, actor_id, target_id, kudos_id, feedback_id, action, message)
		values ($1, $2, $3, $4, $5, $6, $7)
		returning created_at
	`, a.ID, a.ActorID, nullIfEmpty(a.TargetID), nullIfEmpty(a.KudosID),
		nullIfEmpty(a.FeedbackID), a.Action, a.Message)
	return row.Scan(&a.CreatedAt)
}

func (s *Activities) List(ctx context.Context, offset, limit int) ([]*feed.Activity, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `select count(*) from activities`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := s.db.QueryContext(ctx, `
		select id, actor_id, coalesce(target_id,''), coalesce(kudos_id,''), coalesce(feedback_id,''),
			action, message, created_at
		from activities
		order by created_at desc, id desc
		offset $1 limit $2
	`, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []*feed.Activity
	for rows.Next() {
		var a feed.Activity
		if err := rows.Scan(&a.ID, &a.ActorID, &a.TargetID, &a.KudosID, &a.FeedbackID,
			&a.Action, &a.Message, &a.CreatedAt); err != nil {
			return nil, 0, err
		}
		result = append(result, &a)
	}
	return result, total, rows.Err()
}
