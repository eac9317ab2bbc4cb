package enums

import "fmt"

// OrderScope names one of the two denormalized copies of an order: the row
// owned by the purchasing customer and the row owned by the providing vendor.
type OrderScope string

const (
	OrderScopeCustomer OrderScope = "customer"
	OrderScopeProvider OrderScope = "provider"
)

func (o OrderScope) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OrderScope.
func (o OrderScope) IsValid() bool {
	return o == OrderScopeCustomer || o == OrderScopeProvider
}

// ParseOrderScope converts raw input into an OrderScope.
func ParseOrderScope(value string) (OrderScope, error) {
	switch OrderScope(value) {
	case OrderScopeCustomer, OrderScopeProvider:
		return OrderScope(value), nil
	}
	return "", fmt.Errorf("invalid order scope %q", value)
}
