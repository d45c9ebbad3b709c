package order

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// DailySales is one point of the sales series.
type DailySales struct {
	Date   string          `json:"date"` // YYYY-MM-DD, UTC
	Amount decimal.Decimal `json:"amount"`
	Orders int             `json:"orders"`
}

// Summary is the admin dashboard aggregate.
type Summary struct {
	TotalSales           decimal.Decimal `json:"totalSales"`
	TotalOrders          int             `json:"totalOrders"`
	TotalConfirmedOrders int             `json:"totalConfirmedOrders"`
	TotalPendingOrders   int             `json:"totalPendingOrders"`
	TotalPendingPayments int             `json:"totalPendingPayments"`
	TotalProducts        int             `json:"totalProducts"`
	Sales                []DailySales    `json:"sales"`
}

// Summarize aggregates orders. Rejected orders are counted but do not add to sales.
func Summarize(orders []Order, totalProducts int) Summary {
	s := Summary{TotalSales: decimal.Zero, TotalOrders: len(orders), TotalProducts: totalProducts, Sales: []DailySales{}}
	byDay := map[string]*DailySales{}

	for _, o := range orders {
		switch strings.ToLower(o.OrderStatus) {
		case StatusConfirmed, StatusShipped, StatusDelivered:
			s.TotalConfirmedOrders++
		case StatusPending, "":
			s.TotalPendingOrders++
		}
		if strings.ToLower(o.PaymentStatus) != PaymentPaid {
			s.TotalPendingPayments++
		}
		if strings.EqualFold(o.OrderStatus, StatusRejected) {
			continue
		}
		s.TotalSales = s.TotalSales.Add(o.TotalAmount)

		day := o.OrderDate.UTC().Format("2006-01-02")
		d, ok := byDay[day]
		if !ok {
			d = &DailySales{Date: day, Amount: decimal.Zero}
			byDay[day] = d
		}
		d.Amount = d.Amount.Add(o.TotalAmount)
		d.Orders++
	}

	for _, d := range byDay {
		s.Sales = append(s.Sales, *d)
	}
	slices.SortFunc(s.Sales, func(a, b DailySales) int { return strings.Compare(a.Date, b.Date) })
	return s
}
