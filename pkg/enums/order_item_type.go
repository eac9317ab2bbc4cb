package enums

import "fmt"

// OrderItemType distinguishes one-off SKU purchases from plan purchases.
type OrderItemType string

const (
	OrderItemTypeSKU  OrderItemType = "sku"
	OrderItemTypePlan OrderItemType = "plan"
)

func (o OrderItemType) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OrderItemType.
func (o OrderItemType) IsValid() bool {
	return o == OrderItemTypeSKU || o == OrderItemTypePlan
}

// ParseOrderItemType converts raw input into an OrderItemType.
func ParseOrderItemType(value string) (OrderItemType, error) {
	switch OrderItemType(value) {
	case OrderItemTypeSKU, OrderItemTypePlan:
		return OrderItemType(value), nil
	}
	return "", fmt.Errorf("invalid order item type %q", value)
}
