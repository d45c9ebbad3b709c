package product

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Brand       string `json:"brand"`
	// Prices are decimals serialized as strings to avoid rounding errors.
	Price         decimal.Decimal `json:"price"`
	SalePrice     decimal.Decimal `json:"salePrice"`
	TotalStock    int             `json:"totalStock"`
	AverageReview float64         `json:"averageReview"`
	Image         string          `json:"image"`
	// SourceDesignID links a promoted product back to its design submission.
	SourceDesignID string    `json:"sourceDesignId,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Input is the writable part of a product. Create and Update both take the
// full set of fields; Update overwrites whatever was stored before.
// swagger:model ProductInput
type Input struct {
	Title          string          `json:"title"          example:"Logo Tee"`
	Description    string          `json:"description"    example:"Heavyweight cotton tee"`
	Category       string          `json:"category"       example:"men"`
	Brand          string          `json:"brand"          example:"customtees"`
	Price          decimal.Decimal `json:"price"          swaggertype:"string" example:"35.00"`
	SalePrice      decimal.Decimal `json:"salePrice"      swaggertype:"string" example:"29.99"`
	TotalStock     int             `json:"totalStock"     example:"100"`
	AverageReview  float64         `json:"averageReview"  example:"0"`
	Image          string          `json:"image"          example:"https://cdn.example.com/products/a.png"`
	SourceDesignID string          `json:"sourceDesignId,omitempty"`
}

var (
	ErrInvalidTitle  = errors.New("title is required")
	ErrNegativePrice = errors.New("price and sale price must be non-negative")
	ErrNegativeStock = errors.New("total stock must be non-negative")
	ErrInvalidReview = errors.New("average review must be between 0 and 5")
)

// Validate checks the invariants the store relies on. Client-side forms are
// stricter (every field required); the server only rejects data that would
// break the catalog.
func (in Input) Validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return ErrInvalidTitle
	}
	if in.Price.IsNegative() || in.SalePrice.IsNegative() {
		return ErrNegativePrice
	}
	if in.TotalStock < 0 {
		return ErrNegativeStock
	}
	if in.AverageReview < 0 || in.AverageReview > 5 {
		return ErrInvalidReview
	}
	return nil
}

// Apply overwrites every writable field of p with in.
func (p *Product) Apply(in Input) {
	p.Title = strings.TrimSpace(in.Title)
	p.Description = in.Description
	p.Category = in.Category
	p.Brand = in.Brand
	p.Price = in.Price
	p.SalePrice = in.SalePrice
	p.TotalStock = in.TotalStock
	p.AverageReview = in.AverageReview
	p.Image = in.Image
	p.SourceDesignID = in.SourceDesignID
}

// ToInput returns the writable fields of p.
func (p Product) ToInput() Input {
	return Input{
		Title:          p.Title,
		Description:    p.Description,
		Category:       p.Category,
		Brand:          p.Brand,
		Price:          p.Price,
		SalePrice:      p.SalePrice,
		TotalStock:     p.TotalStock,
		AverageReview:  p.AverageReview,
		Image:          p.Image,
		SourceDesignID: p.SourceDesignID,
	}
}
