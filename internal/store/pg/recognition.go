package pg

import (
	"context"
	"database/sql"
	"errors"

	"teampulse.org/internal/ids"
	"teampulse.org/internal/recognition"
)

// Recognition implements recognition.Store. Comments cascade from their
// parent via ON DELETE CASCADE in the schema.
type Recognition struct {
	db *sql.DB
}

var _ recognition.Store = (*Recognition)(nil)

// Kudos ---------------------------------------------------------------------

const kudosColumns = `k.id, k.from_user_id, k.to_user_id, k.message, k.monetary_amount, k.currency,
	k.is_public, k.status, coalesce(k.status_reason,''), k.created_at, k.updated_at`

func scanKudos(row interface{ Scan(...any) error }) (*recognition.Kudos, error) {
	var k recognition.Kudos
	err := row.Scan(&k.ID, &k.SenderID, &k.RecipientID, &k.Message, &k.Amount, &k.Currency,
		&k.Public, &k.Status, &k.StatusReason, &k.CreatedAt, &k.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, recognition.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &k, nil
}

func (s *Recognition) CreateKudos(ctx context.Context, k *recognition.Kudos) error {
	if k.ID == "" {
		k.ID = ids.New()
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, `
		insert into kudos (id, from_user_id, to_user_id, message, monetary_amount, currency,
			is_public, status, status_reason)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		returning created_at, updated_at
	`, k.ID, k.SenderID, k.RecipientID, k.Message, k.Amount, k.Currency,
		k.Public, k.Status, nullIfEmpty(k.StatusReason))
	if err := row.Scan(&k.CreatedAt, &k.UpdatedAt); err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrForeignKeyViolation {
			return recognition.ErrNotFound
		}
		return err
	}
	if err := replaceKudosTags(ctx, tx, k.ID, k.TagIDs); err != nil {
		return err
	}
	return tx.Commit()
}

func replaceKudosTags(ctx context.Context, tx *sql.Tx, kudosID string, tagIDs []string) error {
	if _, err := tx.ExecContext(ctx, `delete from kudos_tags where kudos_id=$1`, kudosID); err != nil {
		return err
	}
	for _, tagID := range tagIDs {
		if _, err := tx.ExecContext(ctx, `
			insert into kudos_tags (kudos_id, tag_id) values ($1, $2)
		`, kudosID, tagID); err != nil {
			if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrForeignKeyViolation {
				return recognition.ErrUnknownTag
			}
			return err
		}
	}
	return nil
}

func (s *Recognition) FindKudos(ctx context.Context, id string) (*recognition.Kudos, error) {
	k, err := scanKudos(s.db.QueryRowContext(ctx,
		`select `+kudosColumns+` from kudos k where k.id=$1`, id))
	if err != nil {
		return nil, err
	}
	if err := s.loadKudosTags(ctx, []*recognition.Kudos{k}); err != nil {
		return nil, err
	}
	return k, nil
}

func (s *Recognition) loadKudosTags(ctx context.Context, items []*recognition.Kudos) error {
	byID := make(map[string]*recognition.Kudos, len(items))
	idList := make([]string, 0, len(items))
	for _, k := range items {
		byID[k.ID] = k
		idList = append(idList, k.ID)
	}
	if len(idList) == 0 {
		return nil
	}
	rows, err := s.db.QueryContext(ctx, `
		select kudos_id, tag_id from kudos_tags
		where kudos_id = any($1)
		order by tag_id
	`, idList)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var kudosID, tagID string
		if err := rows.Scan(&kudosID, &tagID); err != nil {
			return err
		}
		if k, ok := byID[kudosID]; ok {
			k.TagIDs = append(k.TagIDs, tagID)
		}
	}
	return rows.Err()
}

const kudosVisibilityClause = `($5 or k.is_public or k.from_user_id=$6 or k.to_user_id=$6)`

func (s *Recognition) ListKudos(ctx context.Context, f recognition.KudosFilter) ([]*recognition.Kudos, int, error) {
	where := `where ($1='' or k.from_user_id=$1)
		and ($2='' or k.to_user_id=$2)
		and ($3='' or k.status=$3)
		and ($4::boolean is null or k.is_public=$4)
		and ` + kudosVisibilityClause
	var public any
	if f.Public != nil {
		public = *f.Public
	}
	args := []any{f.SenderID, f.RecipientID, string(f.Status), public, f.ViewerStaff, f.ViewerID}

	var total int
	if err := s.db.QueryRowContext(ctx, `select count(*) from kudos k `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := s.db.QueryContext(ctx, `
		select `+kudosColumns+` from kudos k `+where+`
		order by k.created_at desc, k.id desc
		offset $7 limit $8
	`, append(args, f.Offset, f.Limit)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []*recognition.Kudos
	for rows.Next() {
		k, err := scanKudos(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, k)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if err := s.loadKudosTags(ctx, result); err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

func (s *Recognition) UpdateKudos(ctx context.Context, k *recognition.Kudos) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		update kudos
		set message=$2, is_public=$3, status=$4, status_reason=$5, updated_at=now()
		where id=$1
	`, k.ID, k.Message, k.Public, k.Status, nullIfEmpty(k.StatusReason))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return recognition.ErrNotFound
	}
	if err := replaceKudosTags(ctx, tx, k.ID, k.TagIDs); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Recognition) DeleteKudos(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from kudos where id=$1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return recognition.ErrNotFound
	}
	return nil
}

// Tags ----------------------------------------------------------------------

func (s *Recognition) ListTags(ctx context.Context) ([]recognition.Tag, error) {
	rows, err := s.db.QueryContext(ctx, `select id, name, emoji, color from tags order by name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []recognition.Tag
	for rows.Next() {
		var t recognition.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Emoji, &t.Color); err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

func (s *Recognition) FindTags(ctx context.Context, tagIDs []string) ([]recognition.Tag, error) {
	rows, err := s.db.QueryContext(ctx, `
		select id, name, emoji, color from tags where id = any($1)
	`, tagIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := make(map[string]recognition.Tag)
	for rows.Next() {
		var t recognition.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Emoji, &t.Color); err != nil {
			return nil, err
		}
		byID[t.ID] = t
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	result := make([]recognition.Tag, 0, len(tagIDs))
	for _, id := range tagIDs {
		t, ok := byID[id]
		if !ok {
			return nil, recognition.ErrUnknownTag
		}
		result = append(result, t)
	}
	return result, nil
}

// Feedback ------------------------------------------------------------------

const feedbackColumns = `f.id, coalesce(f.from_user_id,''), coalesce(f.to_user_id,''), f.type, f.message,
	f.is_public, f.is_anonymous, f.status, coalesce(f.review_note,''), f.created_at, f.updated_at`

func scanFeedback(row interface{ Scan(...any) error }) (*recognition.Feedback, error) {
	var f recognition.Feedback
	err := row.Scan(&f.ID, &f.SenderID, &f.RecipientID, &f.Type, &f.Message,
		&f.Public, &f.Anonymous, &f.Status, &f.ReviewNote, &f.CreatedAt, &f.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, recognition.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (s *Recognition) CreateFeedback(ctx context.Context, f *recognition.Feedback) error {
	if f.ID == "" {
		f.ID = ids.New()
	}
	row := s.db.QueryRowContext(ctx, `
		insert into feedback (id, from_user_id, to_user_id, type, message, is_public, is_anonymous,
			status, review_note)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		returning created_at, updated_at
	`, f.ID, nullIfEmpty(f.SenderID), nullIfEmpty(f.RecipientID), f.Type, f.Message,
		f.Public, f.Anonymous, f.Status, nullIfEmpty(f.ReviewNote))
	if err := row.Scan(&f.CreatedAt, &f.UpdatedAt); err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrForeignKeyViolation {
			return recognition.ErrNotFound
		}
		return err
	}
	return nil
}

func (s *Recognition) FindFeedback(ctx context.Context, id string) (*recognition.Feedback, error) {
	return scanFeedback(s.db.QueryRowContext(ctx,
		`select `+feedbackColumns+` from feedback f where f.id=$1`, id))
}

func (s *Recognition) ListFeedback(ctx context.Context, filter recognition.FeedbackFilter) ([]*recognition.Feedback, int, error) {
	where := `where ($1='' or f.from_user_id=$1)
		and ($2='' or f.to_user_id=$2)
		and ($3='' or f.type=$3)
		and ($4='' or f.status=$4)
		and ($5 or f.is_public or f.from_user_id=$6 or f.to_user_id=$6)`
	args := []any{filter.SenderID, filter.RecipientID, string(filter.Type), string(filter.Status),
		filter.ViewerStaff, filter.ViewerID}

	var total int
	if err := s.db.QueryRowContext(ctx, `select count(*) from feedback f `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := s.db.QueryContext(ctx, `
		select `+feedbackColumns+` from feedback f `+where+`
		order by f.created_at desc, f.id desc
		offset $7 limit $8
	`, append(args, filter.Offset, filter.Limit)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []*recognition.Feedback
	for rows.Next() {
		f, err := scanFeedback(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, f)
	}
	return result, total, rows.Err()
}

func (s *Recognition) UpdateFeedback(ctx context.Context, f *recognition.Feedback) error {
	res, err := s.db.ExecContext(ctx, `
		update feedback
		set type=$2, message=$3, is_public=$4, status=$5, review_note=$6, updated_at=now()
		where id=$1
	`, f.ID, f.Type, f.Message, f.Public, f.Status, nullIfEmpty(f.ReviewNote))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return recognition.ErrNotFound
	}
	return nil
}

func (s *Recognition) DeleteFeedback(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from feedback where id=$1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return recognition.ErrNotFound
	}
	return nil
}

// Comments ------------------------------------------------------------------

const commentColumns = `c.id, c.author_id, coalesce(c.kudos_id,''), coalesce(c.feedback_id,''),
	c.message, c.created_at, c.updated_at`

func scanComment(row interface{ Scan(...any) error }) (*recognition.Comment, error) {
	var c recognition.Comment
	err := row.Scan(&c.ID, &c.AuthorID, &c.KudosID, &c.FeedbackID, &c.Message, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, recognition.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Recognition) CreateComment(ctx context.Context, c *recognition.Comment) error {
	if c.ID == "" {
		c.ID = ids.New()
	}
	row := s.db.QueryRowContext(ctx, `
		insert into comments (id, author_id, kudos_id, feedback_id, message)
		values ($1, $2, $3, $4, $5)
		returning created_at, updated_at
	`, c.ID, c.AuthorID, nullIfEmpty(c.KudosID), nullIfEmpty(c.FeedbackID), c.Message)
	if err := row.Scan(&c.CreatedAt, &c.UpdatedAt); err != nil {
		if pgErr, ok := maybePgError(err); ok {
			switch pgErr.Code {
			case pgErrForeignKeyViolation:
				return recognition.ErrNotFound
			}
		}
		return err
	}
	return nil
}

func (s *Recognition) FindComment(ctx context.Context, id string) (*recognition.Comment, error) {
	return scanComment(s.db.QueryRowContext(ctx,
		`select `+commentColumns+` from comments c where c.id=$1`, id))
}

func (s *Recognition) ListComments(ctx context.Context, kudosID, feedbackID string, offset, limit int) ([]*recognition.Comment, int, error) {
	where := `where ($1='' or c.kudos_id=$1) and ($2='' or c.feedback_id=$2)`
	var total int
	if err := s.db.QueryRowContext(ctx, `select count(*) from comments c `+where,
		kudosID, feedbackID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := s.db.QueryContext(ctx, `
		select `+commentColumns+` from comments c `+where+`
		order by c.created_at, c.id
		offset $3 limit $4
	`, kudosID, feedbackID, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []*recognition.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, c)
	}
	return result, total, rows.Err()
}

func (s *Recognition) UpdateComment(ctx context.Context, c *recognition.Comment) error {
	res, err := s.db.ExecContext(ctx, `
		update comments set message=$2, updated_at=now() where id=$1
	`, c.ID, c.Message)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return recognition.ErrNotFound
	}
	return nil
}

func (s *Recognition) DeleteComment(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from comments where id=$1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return recognition.ErrNotFound
	}
	return nil
}
