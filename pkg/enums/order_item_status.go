package enums

import "fmt"

// OrderItemStatus is the per-line fulfilment state. A full-order refund
// forces every item to canceled.
type OrderItemStatus string

const (
	OrderItemStatusNone      OrderItemStatus = "none"
	OrderItemStatusFulfilled OrderItemStatus = "fulfilled"
	OrderItemStatusCanceled  OrderItemStatus = "canceled"
)

var validOrderItemStatuses = []OrderItemStatus{
	OrderItemStatusNone,
	OrderItemStatusFulfilled,
	OrderItemStatusCanceled,
}

func (o OrderItemStatus) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OrderItemStatus.
func (o OrderItemStatus) IsValid() bool {
	for _, candidate := range validOrderItemStatuses {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseOrderItemStatus converts raw input into an OrderItemStatus.
func ParseOrderItemStatus(value string) (OrderItemStatus, error) {
	for _, candidate := range validOrderItemStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order item status %q", value)
}
