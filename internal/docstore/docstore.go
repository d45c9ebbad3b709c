// Package docstore keeps entities as JSON documents, one collection per
// entity type. Collections live in PostgreSQL (a JSONB column per row) or in
// memory for development and tests.
package docstore

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("document not found")
	ErrExists   = errors.New("document already exists")
)

// Store is a keyed collection of documents of type T.
type Store[T any] interface {
	// Insert adds a new document. Returns ErrExists when id is taken.
	Insert(ctx context.Context, id string, doc T) error
	Get(ctx context.Context, id string) (T, error)
	// List returns every document, newest first.
	List(ctx context.Context) ([]T, error)
	// Replace overwrites the stored document. Returns ErrNotFound for unknown ids.
	Replace(ctx context.Context, id string, doc T) error
	// Delete reports whether a document was removed.
	Delete(ctx context.Context, id string) (bool, error)
}
