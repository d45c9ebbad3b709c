package design

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MikeMC777/customtees/internal/product"
	"github.com/MikeMC777/customtees/internal/validation"
)

// DefaultBasePrice is the catalog price of a blank tee; a promoted design
// sells for base price + margin.
var DefaultBasePrice = decimal.NewFromInt(20)

// Submission is a public, unauthenticated design proposal awaiting review.
type Submission struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	Margin      int       `json:"margin"`
	Image       string    `json:"image"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Input is the public intake payload.
// swagger:model DesignInput
type Input struct {
	Title       string `json:"title"       validate:"required"              example:"Logo Tee"`
	Description string `json:"description"                                  example:"Front print, two colours"`
	Name        string `json:"name"        validate:"required"              example:"A"`
	Email       string `json:"email"       validate:"required,emailshape"   example:"a@test.com"`
	Phone       string `json:"phone"       validate:"required,phone10"      example:"1234567890"`
	Margin      *int   `json:"margin"      validate:"required,min=0,max=40" example:"15"`
	Image       string `json:"image"       validate:"required"              example:"https://cdn.example.com/products/logo.png"`
}

// Validate applies the intake rules. The error is a validation.FieldErrors.
// A nil Margin is reported as missing; zero is a valid margin.
func (in Input) Validate() error {
	in.Title = strings.TrimSpace(in.Title)
	in.Name = strings.TrimSpace(in.Name)
	return validation.Struct(in)
}

// PromoteInput carries the product fields an admin adds when promoting a
// submission. Empty values fall back to what the submission provides.
// swagger:model PromoteInput
type PromoteInput struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Category    string           `json:"category"   example:"men"`
	Brand       string           `json:"brand"      example:"customtees"`
	SalePrice   *decimal.Decimal `json:"salePrice"  swaggertype:"string"`
	TotalStock  int              `json:"totalStock" example:"50"`
}

// Price is the catalog price derived from the submission's margin.
func (s Submission) Price(base decimal.Decimal) decimal.Decimal {
	return base.Add(decimal.NewFromInt(int64(s.Margin)))
}

// ProductInput builds the product a submission is promoted into. Title,
// description and image are copied, price is base + margin and the product
// keeps a reference to the submission.
func (s Submission) ProductInput(base decimal.Decimal, extra PromoteInput) product.Input {
	price := s.Price(base)
	in := product.Input{
		Title:          s.Title,
		Description:    s.Description,
		Category:       extra.Category,
		Brand:          extra.Brand,
		Price:          price,
		SalePrice:      price,
		TotalStock:     extra.TotalStock,
		Image:          s.Image,
		SourceDesignID: s.ID,
	}
	if t := strings.TrimSpace(extra.Title); t != "" {
		in.Title = t
	}
	if extra.Description != "" {
		in.Description = extra.Description
	}
	if extra.SalePrice != nil {
		in.SalePrice = *extra.SalePrice
	}
	return in
}
