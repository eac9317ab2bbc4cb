package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kaoruharada/marketcore-backend/pkg/enums"
	"github.com/kaoruharada/marketcore-backend/pkg/types"
)

// OrderItem is one purchased line inside an order. The descriptive fields are
// snapshots captured at checkout and never refreshed from the catalog, so
// later product edits cannot rewrite purchase history.
type OrderItem struct {
	Type       enums.OrderItemType   `json:"type"`
	ProductID  uuid.UUID             `json:"product_id"`
	SKUID      *uuid.UUID            `json:"sku_id,omitempty"`
	PlanID     *uuid.UUID            `json:"plan_id,omitempty"`
	Quantity   int64                 `json:"quantity"`
	Currency   enums.Currency        `json:"currency"`
	Amount     int64                 `json:"amount"`
	Discount   *types.Discount       `json:"discount,omitempty"`
	TaxRate    decimal.Decimal       `json:"tax_rate"`
	Status     enums.OrderItemStatus `json:"status"`
	Name       string                `json:"name"`
	Caption    string                `json:"caption,omitempty"`
	Category   string                `json:"category,omitempty"`
	MediatorID *uuid.UUID            `json:"mediator_id,omitempty"`
}

// OrderItems serializes as a jsonb array on the order row.
type OrderItems []OrderItem

// Order is one replica row of an order. Every order exists twice, once under
// the customer scope and once under the provider scope; the two rows share an
// ID and must stay byte-equivalent. Repositories only ever write both.
type Order struct {
	ID              uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	OwnerScope      enums.OrderScope     `gorm:"column:owner_scope;type:text;primaryKey"`
	UserID          uuid.UUID            `gorm:"column:user_id;type:uuid;not null"`
	ProviderID      uuid.UUID            `gorm:"column:provider_id;type:uuid;not null"`
	Title           *string              `gorm:"column:title"`
	Currency        enums.Currency       `gorm:"column:currency;type:text;not null;default:'USD'"`
	AmountCents     int64                `gorm:"column:amount_cents;not null"`
	Shipping        *types.Shipping      `gorm:"column:shipping;type:jsonb;serializer:json"`
	Items           OrderItems           `gorm:"column:items;type:jsonb;serializer:json"`
	DeliveryStatus  enums.DeliveryStatus `gorm:"column:delivery_status;type:text;not null;default:'none'"`
	PaymentStatus   enums.PaymentStatus  `gorm:"column:payment_status;type:text;not null;default:'none'"`
	RefundStatus    enums.RefundStatus   `gorm:"column:refund_status;type:text;not null;default:'none'"`
	IsCancelled     bool                 `gorm:"column:is_cancelled;not null;default:false"`
	PaymentIntentID *string              `gorm:"column:payment_intent_id"`
	TransferID      *string              `gorm:"column:transfer_id"`
	PaymentResult   json.RawMessage      `gorm:"column:payment_result;type:jsonb"`
	RefundResult    json.RawMessage      `gorm:"column:refund_result;type:jsonb"`
	PaidAt          *time.Time           `gorm:"column:paid_at"`
	CreatedAt       time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName keeps both replicas in one physical table.
func (Order) TableName() string {
	return "order_replicas"
}

// CloneForScope copies the order payload into the given replica scope.
// Everything except the scope discriminator is carried over verbatim.
func (o Order) CloneForScope(scope enums.OrderScope) Order {
	clone := o
	clone.OwnerScope = scope
	return clone
}
