// Package pricing holds the authoritative money math for cart and order
// lines. Amounts are integers in minor currency units; every fractional
// result floors, never rounds, so the platform can not overcharge by a
// partial minor unit.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/kaoruharada/marketcore-backend/pkg/db/models"
	"github.com/kaoruharada/marketcore-backend/pkg/enums"
	"github.com/kaoruharada/marketcore-backend/pkg/types"
)

// Line is the priced view of a single cart or order line.
type Line struct {
	Amount   int64
	Quantity int64
	TaxRate  decimal.Decimal
	Discount *types.Discount
}

// FromOrderItem projects an order item into its priced view.
func FromOrderItem(item models.OrderItem) Line {
	return Line{
		Amount:   item.Amount,
		Quantity: item.Quantity,
		TaxRate:  item.TaxRate,
		Discount: item.Discount,
	}
}

// FromCartLine projects a cart line into its priced view.
func FromCartLine(line models.CartLine) Line {
	return Line{
		Amount:   line.Amount,
		Quantity: line.Quantity,
		TaxRate:  line.TaxRate,
		Discount: line.Discount,
	}
}

// Tax returns floor(amount * taxRate) in minor units.
func Tax(l Line) int64 {
	if l.TaxRate.IsZero() {
		return 0
	}
	return decimal.NewFromInt(l.Amount).Mul(l.TaxRate).Floor().IntPart()
}

// Subtotal returns the discounted line amount. Both discount branches price
// a single unit and ignore Quantity; only undiscounted lines multiply.
func Subtotal(l Line) int64 {
	if l.Discount != nil {
		switch l.Discount.Type {
		case enums.DiscountTypeRate:
			off := decimal.NewFromInt(l.Amount).Mul(l.Discount.Rate).Floor().IntPart()
			return l.Amount - off
		case enums.DiscountTypeAmount:
			sub := l.Amount - l.Discount.Amount
			if sub < 0 {
				return 0
			}
			return sub
		}
	}
	return l.Amount * l.Quantity
}

// Total returns Subtotal + Tax for the line.
func Total(l Line) int64 {
	return Subtotal(l) + Tax(l)
}

// ItemsTotal sums Total across order items. Used when snapshotting the
// order-level amount at checkout and when recomputing group totals.
func ItemsTotal(items []models.OrderItem) int64 {
	var sum int64
	for _, item := range items {
		sum += Total(FromOrderItem(item))
	}
	return sum
}

// GroupTotals returns the subtotal, tax and total across cart lines.
func GroupTotals(lines []models.CartLine) (subtotal, tax, total int64) {
	for _, line := range lines {
		l := FromCartLine(line)
		subtotal += Subtotal(l)
		tax += Tax(l)
	}
	return subtotal, tax, subtotal + tax
}
