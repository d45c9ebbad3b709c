// Package product provides the product catalog model and its repository.
package product

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/MikeMC777/customtees/internal/docstore"
)

const Collection = "products"

var (
	ErrNotFound = errors.New("product not found")
)

type Repository interface {
	Create(ctx context.Context, in Input) (*Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	List(ctx context.Context) ([]Product, error)
	Update(ctx context.Context, id string, in Input) (*Product, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// Repo is the Repository backed by a document collection.
type Repo struct {
	docs docstore.Store[Product]
	now  func() time.Time
}

func NewRepo(docs docstore.Store[Product]) *Repo {
	return &Repo{docs: docs, now: func() time.Time { return time.Now().UTC() }}
}

var _ Repository = (*Repo)(nil)

func (r *Repo) Create(ctx context.Context, in Input) (*Product, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	p := Product{ID: uuid.NewString()}
	p.Apply(in)
	p.CreatedAt = r.now()
	p.UpdatedAt = p.CreatedAt

	if err := r.docs.Insert(ctx, p.ID, p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repo) GetByID(ctx context.Context, id string) (*Product, error) {
	p, err := r.docs.Get(ctx, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *Repo) List(ctx context.Context) ([]Product, error) {
	return r.docs.List(ctx)
}

// Update overwrites every writable field; nothing from the stored record is
// merged in except identity and creation time.
func (r *Repo) Update(ctx context.Context, id string, in Input) (*Product, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	cur, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	cur.Apply(in)
	cur.UpdatedAt = r.now()

	if err := r.docs.Replace(ctx, id, *cur); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return cur, nil
}

func (r *Repo) Delete(ctx context.Context, id string) (bool, error) {
	return r.docs.Delete(ctx, id)
}

// IsValidation reports whether err is one of the input validation errors.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidTitle) ||
		errors.Is(err, ErrNegativePrice) ||
		errors.Is(err, ErrNegativeStock) ||
		errors.Is(err, ErrInvalidReview)
}
