package enums

import "fmt"

// DiscountType selects between a rate-based and a fixed-amount discount.
// The two are mutually exclusive on a line item.
type DiscountType string

const (
	DiscountTypeRate   DiscountType = "rate"
	DiscountTypeAmount DiscountType = "amount"
)

func (d DiscountType) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DiscountType.
func (d DiscountType) IsValid() bool {
	return d == DiscountTypeRate || d == DiscountTypeAmount
}

// ParseDiscountType converts raw input into a DiscountType.
func ParseDiscountType(value string) (DiscountType, error) {
	switch DiscountType(value) {
	case DiscountTypeRate, DiscountTypeAmount:
		return DiscountType(value), nil
	}
	return "", fmt.Errorf("invalid discount type %q", value)
}
