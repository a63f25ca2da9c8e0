package kv

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

const schemaTimeout = 5 * time.Second

// Postgres is a Store backed by a single key/value table. Every mutating call
// runs in its own transaction and locks the key row, so compute functions own
// the key exclusively; the store reports itself transactional.
type Postgres struct {
	db *sql.DB
}

// NewPostgres returns a Postgres-backed store over db.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// EnsureSchema creates the backing table when it does not exist yet.
func (s *Postgres) EnsureSchema() error {
	ctx, cancel := context.WithTimeout(context.Background(), schemaTimeout)
	defer cancel()

	const ddl = `
		CREATE TABLE IF NOT EXISTS session_attributes (
			key   TEXT PRIMARY KEY,
			value BYTEA NOT NULL
		)
	`
	_, err := s.db.ExecContext(ctx, ddl)
	return err
}

// Get returns the value stored under key.
func (s *Postgres) Get(ctx context.Context, key string) ([]byte, bool, error) {
	const query = `SELECT value FROM session_attributes WHERE key = $1`

	var value []byte
	err := s.db.QueryRowContext(ctx, query, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

// Put stores value under key and returns the previous value, if any.
func (s *Postgres) Put(ctx context.Context, key string, value []byte) ([]byte, bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback()

	previous, existed, err := lockRow(ctx, tx, key)
	if err != nil {
		return nil, false, err
	}
	if err := upsertRow(ctx, tx, key, value); err != nil {
		return nil, false, err
	}
	if err := tx.Commit(); err != nil {
		return nil, false, err
	}
	return previous, existed, nil
}

// Remove deletes key and returns the removed value, if any.
func (s *Postgres) Remove(ctx context.Context, key string) ([]byte, bool, error) {
	const query = `DELETE FROM session_attributes WHERE key = $1 RETURNING value`

	var previous []byte
	err := s.db.QueryRowContext(ctx, query, key).Scan(&previous)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return previous, true, nil
}

// Compute applies fn to the current value of key while holding its row lock.
func (s *Postgres) Compute(ctx context.Context, key string, fn ComputeFunc) ([]byte, bool, error) {
	return s.compute(ctx, key, fn, false)
}

// ComputeIfPresent behaves like Compute but leaves an absent key untouched.
func (s *Postgres) ComputeIfPresent(ctx context.Context, key string, fn ComputeFunc) ([]byte, bool, error) {
	return s.compute(ctx, key, fn, true)
}

func (s *Postgres) compute(ctx context.Context, key string, fn ComputeFunc, presentOnly bool) ([]byte, bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback()

	// Row locks cannot cover a key that has no row yet, so computes on the
	// same absent key serialize on a transaction-scoped advisory lock.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, key); err != nil {
		return nil, false, err
	}

	current, exists, err := lockRow(ctx, tx, key)
	if err != nil {
		return nil, false, err
	}
	if presentOnly && !exists {
		return nil, false, tx.Commit()
	}

	next, keep, err := fn(current, exists)
	if err != nil {
		return nil, false, err
	}

	if keep {
		err = upsertRow(ctx, tx, key, next)
	} else {
		_, err = tx.ExecContext(ctx, `DELETE FROM session_attributes WHERE key = $1`, key)
	}
	if err != nil {
		return nil, false, err
	}
	if err := tx.Commit(); err != nil {
		return nil, false, err
	}
	if !keep {
		return nil, false, nil
	}
	return next, true, nil
}

// Properties reports the store as transactional.
func (s *Postgres) Properties() Properties {
	return Properties{Transactional: true}
}

func lockRow(ctx context.Context, tx *sql.Tx, key string) ([]byte, bool, error) {
	const query = `SELECT value FROM session_attributes WHERE key = $1 FOR UPDATE`

	var value []byte
	err := tx.QueryRowContext(ctx, query, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func upsertRow(ctx context.Context, tx *sql.Tx, key string, value []byte) error {
	const query = `
		INSERT INTO session_attributes (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
	`
	_, err := tx.ExecContext(ctx, query, key, value)
	return err
}
