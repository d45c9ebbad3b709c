package docstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	queryTimeout = 5 * time.Second

	uniqueViolation = "23505"
)

// Collection stores documents in a table of shape (id, doc jsonb, created_at, updated_at).
type Collection[T any] struct {
	db    *pgxpool.Pool
	table string
}

func NewCollection[T any](db *pgxpool.Pool, table string) *Collection[T] {
	return &Collection[T]{db: db, table: pgx.Identifier{table}.Sanitize()}
}

var _ Store[struct{}] = (*Collection[struct{}])(nil)

// EnsureSchema creates the collection tables if they are missing.
func EnsureSchema(ctx context.Context, db *pgxpool.Pool, tables ...string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	for _, t := range tables {
		name := pgx.Identifier{t}.Sanitize()
		_, err := db.Exec(ctx, fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id         TEXT PRIMARY KEY,
				doc        JSONB NOT NULL,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`, name))
		if err != nil {
			return fmt.Errorf("create collection %s: %w", t, err)
		}
	}
	return nil
}

func (c *Collection[T]) Insert(ctx context.Context, id string, doc T) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := c.db.Exec(ctx, fmt.Sprintf(`
		INSERT INTO %s (id, doc, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
	`, c.table), id, doc)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrExists
	}
	return err
}

func (c *Collection[T]) Get(ctx context.Context, id string) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var doc T
	err := c.db.QueryRow(ctx, fmt.Sprintf(`SELECT doc FROM %s WHERE id=$1`, c.table), id).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return doc, ErrNotFound
	}
	return doc, err
}

func (c *Collection[T]) List(ctx context.Context) ([]T, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := c.db.Query(ctx, fmt.Sprintf(`
		SELECT doc FROM %s
		ORDER BY created_at DESC, id
	`, c.table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		var doc T
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

func (c *Collection[T]) Replace(ctx context.Context, id string, doc T) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tag, err := c.db.Exec(ctx, fmt.Sprintf(`
		UPDATE %s
		SET doc = $2, updated_at = NOW()
		WHERE id = $1
	`, c.table), id, doc)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *Collection[T]) Delete(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tag, err := c.db.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id=$1`, c.table), id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
