package state

import (
	"context"
	"io"

	"go.uber.org/zap"

	"github.com/MikeMC777/customtees/internal/design"
	"github.com/MikeMC777/customtees/internal/order"
	"github.com/MikeMC777/customtees/internal/product"
)

// ProductAPI is the part of the API client the product controller uses.
type ProductAPI interface {
	ListProducts(ctx context.Context) ([]product.Product, error)
	CreateProduct(ctx context.Context, in product.Input) (*product.Product, error)
	UpdateProduct(ctx context.Context, id string, in product.Input) (*product.Product, error)
	DeleteProduct(ctx context.Context, id string) (bool, error)
	UploadImage(ctx context.Context, filename string, r io.Reader) (string, error)
}

type DesignAPI interface {
	ListDesigns(ctx context.Context) ([]design.Submission, error)
	SubmitDesign(ctx context.Context, in design.Input) (*design.Submission, error)
	DeleteDesign(ctx context.Context, id string) (bool, error)
	PromoteDesign(ctx context.Context, id string, extra design.PromoteInput) (*product.Product, error)
	UploadImage(ctx context.Context, filename string, r io.Reader) (string, error)
}

type OrderAPI interface {
	ListOrders(ctx context.Context) ([]order.Order, error)
	GetOrder(ctx context.Context, id string) (*order.Order, error)
}

// Products drives the product list. Writes report ok plus the error for
// logging; the list is re-fetched after every successful write.
type Products struct {
	api   ProductAPI
	Store *Store[product.Product]
	log   *zap.Logger
}

func NewProducts(api ProductAPI, log *zap.Logger) *Products {
	if log == nil {
		log = zap.NewNop()
	}
	return &Products{api: api, Store: NewStore[product.Product](), log: log}
}

func (p *Products) Fetch(ctx context.Context) error {
	return fetch(ctx, p.Store, p.api.ListProducts, p.log)
}

func (p *Products) Add(ctx context.Context, in product.Input) (bool, error) {
	if _, err := p.api.CreateProduct(ctx, in); err != nil {
		p.log.Warn("create product failed", zap.Error(err))
		return false, err
	}
	_ = p.Fetch(ctx)
	return true, nil
}

func (p *Products) Edit(ctx context.Context, id string, in product.Input) (bool, error) {
	if _, err := p.api.UpdateProduct(ctx, id, in); err != nil {
		p.log.Warn("update product failed", zap.String("id", id), zap.Error(err))
		return false, err
	}
	_ = p.Fetch(ctx)
	return true, nil
}

// Delete reports false when nothing was removed; the list is refreshed
// either way.
func (p *Products) Delete(ctx context.Context, id string) (bool, error) {
	ok, err := p.api.DeleteProduct(ctx, id)
	if err != nil {
		p.log.Warn("delete product failed", zap.String("id", id), zap.Error(err))
		return false, err
	}
	_ = p.Fetch(ctx)
	return ok, nil
}

func (p *Products) UploadImage(ctx context.Context, filename string, r io.Reader) (string, error) {
	return p.api.UploadImage(ctx, filename, r)
}

// Designs drives the submission list. Promotions also refresh Products when
// it is set.
type Designs struct {
	api      DesignAPI
	Store    *Store[design.Submission]
	Products *Products
	log      *zap.Logger
}

func NewDesigns(api DesignAPI, products *Products, log *zap.Logger) *Designs {
	if log == nil {
		log = zap.NewNop()
	}
	return &Designs{api: api, Store: NewStore[design.Submission](), Products: products, log: log}
}

func (d *Designs) Fetch(ctx context.Context) error {
	return fetch(ctx, d.Store, d.api.ListDesigns, d.log)
}

func (d *Designs) Submit(ctx context.Context, in design.Input) (bool, error) {
	if _, err := d.api.SubmitDesign(ctx, in); err != nil {
		d.log.Warn("submit design failed", zap.Error(err))
		return false, err
	}
	_ = d.Fetch(ctx)
	return true, nil
}

func (d *Designs) Reject(ctx context.Context, id string) (bool, error) {
	ok, err := d.api.DeleteDesign(ctx, id)
	if err != nil {
		d.log.Warn("reject design failed", zap.String("id", id), zap.Error(err))
		return false, err
	}
	_ = d.Fetch(ctx)
	return ok, nil
}

func (d *Designs) Promote(ctx context.Context, id string, extra design.PromoteInput) (bool, error) {
	if _, err := d.api.PromoteDesign(ctx, id, extra); err != nil {
		d.log.Warn("promote design failed", zap.String("id", id), zap.Error(err))
		return false, err
	}
	_ = d.Fetch(ctx)
	if d.Products != nil {
		_ = d.Products.Fetch(ctx)
	}
	return true, nil
}

func (d *Designs) UploadImage(ctx context.Context, filename string, r io.Reader) (string, error) {
	return d.api.UploadImage(ctx, filename, r)
}

// Orders is read-only.
type Orders struct {
	api   OrderAPI
	Store *Store[order.Order]
	log   *zap.Logger
}

func NewOrders(api OrderAPI, log *zap.Logger) *Orders {
	if log == nil {
		log = zap.NewNop()
	}
	return &Orders{api: api, Store: NewStore[order.Order](), log: log}
}

func (o *Orders) Fetch(ctx context.Context) error {
	return fetch(ctx, o.Store, o.api.ListOrders, o.log)
}

func (o *Orders) Get(ctx context.Context, id string) (*order.Order, error) {
	return o.api.GetOrder(ctx, id)
}

func fetch[T any](ctx context.Context, s *Store[T], list func(context.Context) ([]T, error), log *zap.Logger) error {
	s.Dispatch(Started[T]())
	items, err := list(ctx)
	if err != nil {
		log.Warn("fetch failed", zap.Error(err))
		s.Dispatch(Failed[T](err))
		return err
	}
	s.Dispatch(Succeeded(items))
	return nil
}
