// Package design holds public design submissions and their promotion into
// catalog products.
package design

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/customtees/internal/docstore"
	"github.com/MikeMC777/customtees/internal/product"
)

const Collection = "design_submissions"

var ErrNotFound = errors.New("design submission not found")

type Repository interface {
	Create(ctx context.Context, in Input) (*Submission, error)
	GetByID(ctx context.Context, id string) (*Submission, error)
	List(ctx context.Context) ([]Submission, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type Repo struct {
	docs docstore.Store[Submission]
	now  func() time.Time
}

func NewRepo(docs docstore.Store[Submission]) *Repo {
	return &Repo{docs: docs, now: func() time.Time { return time.Now().UTC() }}
}

var _ Repository = (*Repo)(nil)

func (r *Repo) Create(ctx context.Context, in Input) (*Submission, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	s := Submission{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Name:        strings.TrimSpace(in.Name),
		Email:       in.Email,
		Phone:       in.Phone,
		Margin:      *in.Margin,
		Image:       in.Image,
		CreatedAt:   r.now(),
	}
	if err := r.docs.Insert(ctx, s.ID, s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *Repo) GetByID(ctx context.Context, id string) (*Submission, error) {
	s, err := r.docs.Get(ctx, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *Repo) List(ctx context.Context) ([]Submission, error) {
	return r.docs.List(ctx)
}

// Delete rejects a submission. There is no soft delete.
func (r *Repo) Delete(ctx context.Context, id string) (bool, error) {
	return r.docs.Delete(ctx, id)
}

// Promoter turns submissions into products. BasePrice is used as given; a
// zero base sells the design for its margin alone.
type Promoter struct {
	Designs   Repository
	Products  product.Repository
	BasePrice decimal.Decimal
}

// Promote creates a product from the submission. The submission is kept.
func (p *Promoter) Promote(ctx context.Context, id string, extra PromoteInput) (*product.Product, error) {
	s, err := p.Designs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return p.Products.Create(ctx, s.ProductInput(p.BasePrice, extra))
}
