package enums

import "fmt"

// DeliveryStatus tracks fulfilment progress on an order.
type DeliveryStatus string

const (
	DeliveryStatusNone       DeliveryStatus = "none"
	DeliveryStatusPending    DeliveryStatus = "pending"
	DeliveryStatusDelivering DeliveryStatus = "delivering"
	DeliveryStatusDelivered  DeliveryStatus = "delivered"
	DeliveryStatusFailure    DeliveryStatus = "failure"
)

var validDeliveryStatuses = []DeliveryStatus{
	DeliveryStatusNone,
	DeliveryStatusPending,
	DeliveryStatusDelivering,
	DeliveryStatusDelivered,
	DeliveryStatusFailure,
}

func (d DeliveryStatus) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DeliveryStatus.
func (d DeliveryStatus) IsValid() bool {
	for _, candidate := range validDeliveryStatuses {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDeliveryStatus converts raw input into a DeliveryStatus.
func ParseDeliveryStatus(value string) (DeliveryStatus, error) {
	for _, candidate := range validDeliveryStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid delivery status %q", value)
}
