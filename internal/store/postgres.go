package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/comment-giveaway-api/internal/database"
)

// Postgres is the concrete Store implementation backed by PostgreSQL.
type Postgres struct {
	db *database.DB
}

// NewPostgres creates a Postgres-backed store
func NewPostgres(db *database.DB) *Postgres {
	return &Postgres{db: db}
}

// Get returns the value stored under key, or (nil, nil) if absent/expired
func (s *Postgres) Get(ctx context.Context, key string) ([]byte, error) {
	query := `
		SELECT value FROM kv_entries
		WHERE key = $1 AND (expires_at IS NULL OR expires_at > now())
	`
	var value []byte
	err := s.db.QueryRowContext(ctx, query, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Set upserts the value under key, bumping the record version
func (s *Postgres) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	query := `
		INSERT INTO kv_entries (key, value, version, expires_at)
		VALUES ($1, $2, 1, $3)
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			version = kv_entries.version + 1,
			expires_at = EXCLUDED.expires_at
	`
	var expiresAt sql.NullTime
	if ttl > 0 {
		expiresAt = sql.NullTime{Time: time.Now().Add(ttl), Valid: true}
	}
	_, err := s.db.ExecContext(ctx, query, key, value, expiresAt)
	return err
}

// ListAppend appends items in order and returns the new list length.
// A per-key advisory lock serializes concurrent appenders so positions
// stay dense and gap-free.
func (s *Postgres) ListAppend(ctx context.Context, key string, items [][]byte) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, key); err != nil {
		return 0, err
	}

	var next int
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(pos) + 1, 0) FROM list_entries WHERE key = $1`, key,
	).Scan(&next)
	if err != nil {
		return 0, err
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO list_entries (key, pos, value) VALUES ($1, $2, $3)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for i, item := range items {
		if _, err := stmt.ExecContext(ctx, key, next+i, item); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return next + len(items), nil
}

// ListRange returns up to limit items starting at offset, in list order
func (s *Postgres) ListRange(ctx context.Context, key string, offset, limit int) ([][]byte, error) {
	if offset < 0 {
		return nil, fmt.Errorf("offset must be non-negative, got %d", offset)
	}

	query := `SELECT value FROM list_entries WHERE key = $1 ORDER BY pos OFFSET $2`
	args := []interface{}{key, offset}
	if limit >= 0 {
		query += ` LIMIT $3`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items [][]byte
	for rows.Next() {
		var value []byte
		if err := rows.Scan(&value); err != nil {
			return nil, err
		}
		items = append(items, value)
	}
	return items, rows.Err()
}

// ListLen returns the number of items in the list under key
func (s *Postgres) ListLen(ctx context.Context, key string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM list_entries WHERE key = $1`, key,
	).Scan(&count)
	return count, err
}

// SetAdd adds member to the set and reports whether it was newly added
func (s *Postgres) SetAdd(ctx context.Context, key, member string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO set_members (key, member) VALUES ($1, $2)
		ON CONFLICT (key, member) DO NOTHING
	`, key, member)
	if err != nil {
		return false, err
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

// SetCard returns the cardinality of the set under key
func (s *Postgres) SetCard(ctx context.Context, key string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM set_members WHERE key = $1`, key,
	).Scan(&count)
	return count, err
}

// IndexAdd adds member with score, overwriting any previous score
func (s *Postgres) IndexAdd(ctx context.Context, key, member string, score float64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO index_members (key, member, score) VALUES ($1, $2, $3)
		ON CONFLICT (key, member) DO UPDATE SET score = EXCLUDED.score
	`, key, member, score)
	return err
}

// IndexRangeDesc returns up to limit members ordered by score descending
func (s *Postgres) IndexRangeDesc(ctx context.Context, key string, limit int) ([]string, error) {
	query := `SELECT member FROM index_members WHERE key = $1 ORDER BY score DESC`
	args := []interface{}{key}
	if limit >= 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []string
	for rows.Next() {
		var member string
		if err := rows.Scan(&member); err != nil {
			return nil, err
		}
		members = append(members, member)
	}
	return members, rows.Err()
}
