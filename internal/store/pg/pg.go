// Package pg implements the persistence interfaces of the domain packages on
// PostgreSQL via database/sql and the pgx stdlib driver.
package pg

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

const (
	pgErrUniqueViolation     = "23505"
	pgErrForeignKeyViolation = "23503"
)

// Store owns the connection pool. The typed accessors expose one store per
// domain interface over the same pool.
type Store struct {
	db *sql.DB
}

func Open(dsn string, maxConns, minConns int) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if maxConns <= 0 {
		maxConns = 25
	}
	if minConns <= 0 {
		minConns = 5
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(minConns)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return &Store{db: db}, nil
}

// NewStore wraps an existing pool (used by tests with sqlmock).
func NewStore(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Users() *Users                 { return &Users{db: s.db} }
func (s *Store) Teams() *Teams                 { return &Teams{db: s.db} }
func (s *Store) Budgets() *Budgets             { return &Budgets{db: s.db} }
func (s *Store) Recognition() *Recognition     { return &Recognition{db: s.db} }
func (s *Store) Notifications() *Notifications { return &Notifications{db: s.db} }
func (s *Store) Activities() *Activities       { return &Activities{db: s.db} }
func (s *Store) Vouchers() *Vouchers           { return &Vouchers{db: s.db} }

// --- helpers ---

func maybePgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
