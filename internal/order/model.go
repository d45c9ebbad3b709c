package order

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusShipped   = "shipped"
	StatusDelivered = "delivered"
	StatusRejected  = "rejected"

	PaymentPending = "pending"
	PaymentPaid    = "paid"
)

type Order struct {
	ID            string          `json:"id"`
	UserID        string          `json:"userId"`
	CartItems     []CartItem      `json:"cartItems"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	OrderDate     time.Time       `json:"orderDate"`
	OrderStatus   string          `json:"orderStatus"`
	PaymentMethod string          `json:"paymentMethod"`
	PaymentStatus string          `json:"paymentStatus"`
	AddressInfo   Address         `json:"addressInfo"`
}

type CartItem struct {
	ProductID string          `json:"productId"`
	Title     string          `json:"title"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type Address struct {
	Address string `json:"address"`
	City    string `json:"city"`
	Pincode string `json:"pincode"`
	Phone   string `json:"phone"`
	Notes   string `json:"notes"`
}

// LineTotal is price × quantity.
func (it CartItem) LineTotal() decimal.Decimal {
	return it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// ItemsTotal sums the cart lines.
func (o Order) ItemsTotal() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range o.CartItems {
		sum = sum.Add(it.LineTotal())
	}
	return sum
}
