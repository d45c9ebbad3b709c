package order

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/MikeMC777/customtees/internal/docstore"
)

const Collection = "orders"

var (
	ErrNotFound  = errors.New("order not found")
	ErrEmptyCart = errors.New("order must contain at least one cart item")
)

// Repository is read-only for the API. Create exists for checkout-side
// writers (seeding, fixtures); shoppers never reach it through this service.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	List(ctx context.Context) ([]Order, error)
}

type Repo struct {
	docs docstore.Store[Order]
}

func NewRepo(docs docstore.Store[Order]) *Repo { return &Repo{docs: docs} }

var _ Repository = (*Repo)(nil)

func (r *Repo) Create(ctx context.Context, o *Order) error {
	if len(o.CartItems) == 0 {
		return ErrEmptyCart
	}
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.OrderDate.IsZero() {
		o.OrderDate = time.Now().UTC()
	}
	if o.TotalAmount.IsZero() {
		o.TotalAmount = o.ItemsTotal()
	}
	if o.OrderStatus == "" {
		o.OrderStatus = StatusPending
	}
	if o.PaymentStatus == "" {
		o.PaymentStatus = PaymentPending
	}
	cp := *o
	cp.CartItems = slices.Clone(o.CartItems)
	return r.docs.Insert(ctx, cp.ID, cp)
}

func (r *Repo) GetByID(ctx context.Context, id string) (*Order, error) {
	o, err := r.docs.Get(ctx, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	o.CartItems = slices.Clone(o.CartItems)
	return &o, nil
}

func (r *Repo) List(ctx context.Context) ([]Order, error) {
	out, err := r.docs.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].CartItems = slices.Clone(out[i].CartItems)
	}
	return out, nil
}
