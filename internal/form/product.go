// Package form models the admin dialogs: field state as typed by the user,
// validation, and submit-then-reset behaviour.
package form

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/MikeMC777/customtees/internal/design"
	"github.com/MikeMC777/customtees/internal/product"
	"github.com/MikeMC777/customtees/internal/validation"
)

var (
	ErrInvalid      = errors.New("form has invalid fields")
	ErrUnknownField = errors.New("unknown form field")
	ErrNotOpen      = errors.New("form is not open")
)

// ProductFields are the raw inputs of the product dialog.
type ProductFields struct {
	Title         string `json:"title"         validate:"required"`
	Description   string `json:"description"   validate:"required"`
	Category      string `json:"category"      validate:"required"`
	Brand         string `json:"brand"         validate:"required"`
	Price         string `json:"price"         validate:"required"`
	SalePrice     string `json:"salePrice"     validate:"required"`
	TotalStock    string `json:"totalStock"    validate:"required"`
	AverageReview string `json:"averageReview"`
	Image         string `json:"image"`
}

// ProductFieldNames lists the dialog fields in display order.
var ProductFieldNames = []string{
	"title", "description", "category", "brand", "price", "salePrice", "totalStock", "averageReview", "image",
}

func DefaultProductFields() ProductFields {
	return ProductFields{AverageReview: "0"}
}

// ProductIntents is what the dialog submits to (state.Products).
type ProductIntents interface {
	Add(ctx context.Context, in product.Input) (bool, error)
	Edit(ctx context.Context, id string, in product.Input) (bool, error)
}

type ProductForm struct {
	Open   bool
	Fields ProductFields

	editingID      string
	existingImage  string
	sourceDesignID string
}

func NewProductForm() *ProductForm {
	return &ProductForm{Fields: DefaultProductFields()}
}

func (f *ProductForm) EditingID() string { return f.editingID }
func (f *ProductForm) Editing() bool     { return f.editingID != "" }

// Reset restores the defaults and closes the dialog.
func (f *ProductForm) Reset() {
	*f = ProductForm{Fields: DefaultProductFields()}
}

func (f *ProductForm) OpenCreate() {
	f.Reset()
	f.Open = true
}

// OpenEdit pre-populates the dialog from p and records its id.
func (f *ProductForm) OpenEdit(p product.Product) {
	f.Reset()
	f.Open = true
	f.editingID = p.ID
	f.existingImage = p.Image
	f.sourceDesignID = p.SourceDesignID
	f.Fields = ProductFields{
		Title:         p.Title,
		Description:   p.Description,
		Category:      p.Category,
		Brand:         p.Brand,
		Price:         p.Price.String(),
		SalePrice:     p.SalePrice.String(),
		TotalStock:    strconv.Itoa(p.TotalStock),
		AverageReview: strconv.FormatFloat(p.AverageReview, 'f', -1, 64),
		Image:         p.Image,
	}
}

// OpenFromDesign pre-fills a new product from a submission: its title,
// description, image and base + margin as price.
func (f *ProductForm) OpenFromDesign(s design.Submission, base decimal.Decimal) {
	f.OpenCreate()
	price := s.Price(base).String()
	f.sourceDesignID = s.ID
	f.Fields.Title = s.Title
	f.Fields.Description = s.Description
	f.Fields.Image = s.Image
	f.Fields.Price = price
	f.Fields.SalePrice = price
}

func (f *ProductForm) Set(field, value string) error {
	p, ok := f.field(field)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	*p = value
	return nil
}

func (f *ProductForm) Get(field string) string {
	if p, ok := f.field(field); ok {
		return *p
	}
	return ""
}

func (f *ProductForm) field(name string) (*string, bool) {
	switch name {
	case "title":
		return &f.Fields.Title, true
	case "description":
		return &f.Fields.Description, true
	case "category":
		return &f.Fields.Category, true
	case "brand":
		return &f.Fields.Brand, true
	case "price":
		return &f.Fields.Price, true
	case "salePrice":
		return &f.Fields.SalePrice, true
	case "totalStock":
		return &f.Fields.TotalStock, true
	case "averageReview":
		return &f.Fields.AverageReview, true
	case "image":
		return &f.Fields.Image, true
	}
	return nil, false
}

// Errors returns inline messages keyed by field name. Every field except
// averageReview is required; the image may stay empty while editing a
// product that already has one.
func (f *ProductForm) Errors() map[string]string {
	fields := f.Fields
	for _, s := range []*string{&fields.Title, &fields.Description, &fields.Category, &fields.Brand,
		&fields.Price, &fields.SalePrice, &fields.TotalStock, &fields.AverageReview, &fields.Image} {
		*s = strings.TrimSpace(*s)
	}

	out := map[string]string{}
	if err := validation.Struct(fields); err != nil {
		var fe validation.FieldErrors
		if !errors.As(err, &fe) {
			out["form"] = err.Error()
			return out
		}
		for k, v := range fe {
			out[k] = v
		}
	}
	if fields.Image == "" && f.existingImage == "" {
		out["image"] = "is required"
	}
	if _, ok := out["price"]; !ok && !nonNegativeDecimal(fields.Price) {
		out["price"] = "must be a non-negative number"
	}
	if _, ok := out["salePrice"]; !ok && !nonNegativeDecimal(fields.SalePrice) {
		out["salePrice"] = "must be a non-negative number"
	}
	if _, ok := out["totalStock"]; !ok {
		if n, err := strconv.Atoi(fields.TotalStock); err != nil || n < 0 {
			out["totalStock"] = "must be a non-negative whole number"
		}
	}
	if fields.AverageReview != "" {
		if r, err := strconv.ParseFloat(fields.AverageReview, 64); err != nil || r < 0 || r > 5 {
			out["averageReview"] = "must be between 0 and 5"
		}
	}
	return out
}

func (f *ProductForm) Valid() bool { return len(f.Errors()) == 0 }

// Input converts the fields. It fails with ErrInvalid unless Valid.
func (f *ProductForm) Input() (product.Input, error) {
	if errs := f.Errors(); len(errs) > 0 {
		return product.Input{}, fmt.Errorf("%w: %v", ErrInvalid, validation.FieldErrors(errs))
	}
	in := product.Input{
		Title:          strings.TrimSpace(f.Fields.Title),
		Description:    strings.TrimSpace(f.Fields.Description),
		Category:       strings.TrimSpace(f.Fields.Category),
		Brand:          strings.TrimSpace(f.Fields.Brand),
		Price:          decimal.RequireFromString(strings.TrimSpace(f.Fields.Price)),
		SalePrice:      decimal.RequireFromString(strings.TrimSpace(f.Fields.SalePrice)),
		Image:          strings.TrimSpace(f.Fields.Image),
		SourceDesignID: f.sourceDesignID,
	}
	in.TotalStock, _ = strconv.Atoi(strings.TrimSpace(f.Fields.TotalStock))
	if r := strings.TrimSpace(f.Fields.AverageReview); r != "" {
		in.AverageReview, _ = strconv.ParseFloat(r, 64)
	}
	if in.Image == "" {
		in.Image = f.existingImage
	}
	return in, nil
}

// Submit creates or updates the product. On success the form resets to its
// defaults and closes; on failure the fields are kept for correction.
func (f *ProductForm) Submit(ctx context.Context, intents ProductIntents) (bool, error) {
	if !f.Open {
		return false, ErrNotOpen
	}
	in, err := f.Input()
	if err != nil {
		return false, err
	}
	var ok bool
	if f.Editing() {
		ok, err = intents.Edit(ctx, f.editingID, in)
	} else {
		ok, err = intents.Add(ctx, in)
	}
	if err != nil || !ok {
		return false, err
	}
	f.Reset()
	return true, nil
}

func nonNegativeDecimal(s string) bool {
	d, err := decimal.NewFromString(s)
	return err == nil && !d.IsNegative()
}
