package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/kaoruharada/marketcore-backend/pkg/enums"
)

// OrderPaidEvent is emitted when the payment gateway confirms a charge.
type OrderPaidEvent struct {
	OrderID         uuid.UUID      `json:"order_id"`
	UserID          uuid.UUID      `json:"user_id"`
	ProviderID      uuid.UUID      `json:"provider_id"`
	Currency        enums.Currency `json:"currency"`
	AmountCents     int64          `json:"amount_cents"`
	PaymentIntentID string         `json:"payment_intent_id"`
	PaidAt          time.Time      `json:"paid_at"`
}

// OrderPaymentFailedEvent is emitted when a charge attempt fails terminally.
type OrderPaymentFailedEvent struct {
	OrderID         uuid.UUID `json:"order_id"`
	UserID          uuid.UUID `json:"user_id"`
	ProviderID      uuid.UUID `json:"provider_id"`
	PaymentIntentID string    `json:"payment_intent_id,omitempty"`
	Reason          string    `json:"reason,omitempty"`
}

// OrderDeliveredEvent surfaces the terminal delivery transition.
type OrderDeliveredEvent struct {
	OrderID     uuid.UUID `json:"order_id"`
	UserID      uuid.UUID `json:"user_id"`
	ProviderID  uuid.UUID `json:"provider_id"`
	DeliveredAt time.Time `json:"delivered_at"`
}

// OrderRefundedEvent is emitted after a refund settles on both replicas.
type OrderRefundedEvent struct {
	OrderID     uuid.UUID `json:"order_id"`
	UserID      uuid.UUID `json:"user_id"`
	ProviderID  uuid.UUID `json:"provider_id"`
	AmountCents int64     `json:"amount_cents"`
	RefundedAt  time.Time `json:"refunded_at"`
}

// SKUPublishedEvent is emitted when a SKU passes the availability gate.
type SKUPublishedEvent struct {
	SKUID      uuid.UUID `json:"sku_id"`
	ProductID  uuid.UUID `json:"product_id"`
	ProviderID uuid.UUID `json:"provider_id"`
}

// SKUUnpublishedEvent is emitted when a SKU is taken off sale.
type SKUUnpublishedEvent struct {
	SKUID      uuid.UUID `json:"sku_id"`
	ProductID  uuid.UUID `json:"product_id"`
	ProviderID uuid.UUID `json:"provider_id"`
}
