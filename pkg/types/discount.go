package types

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/kaoruharada/marketcore-backend/pkg/enums"
)

// Discount is a line-item price reduction. Exactly one of Rate or Amount is
// set, selected by Type; the other must stay zero.
type Discount struct {
	Type   enums.DiscountType `json:"type"`
	Rate   decimal.Decimal    `json:"rate"`
	Amount int64              `json:"amount"`
}

// Validate enforces the type selector and the rate/amount exclusivity.
func (d *Discount) Validate() error {
	if d == nil {
		return nil
	}
	if !d.Type.IsValid() {
		return fmt.Errorf("invalid discount type %q", d.Type)
	}
	switch d.Type {
	case enums.DiscountTypeRate:
		if d.Amount != 0 {
			return fmt.Errorf("rate discount must not carry an amount")
		}
		if d.Rate.IsNegative() || d.Rate.GreaterThan(decimal.NewFromInt(1)) {
			return fmt.Errorf("discount rate must be within [0, 1]")
		}
	case enums.DiscountTypeAmount:
		if !d.Rate.IsZero() {
			return fmt.Errorf("amount discount must not carry a rate")
		}
		if d.Amount < 0 {
			return fmt.Errorf("discount amount must be non-negative")
		}
	}
	return nil
}
