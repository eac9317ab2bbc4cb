package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kaoruharada/marketcore-backend/pkg/enums"
	"github.com/kaoruharada/marketcore-backend/pkg/types"
)

// CartRecord is the single active cart owned by a user.
type CartRecord struct {
	ID        uuid.UUID   `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID   `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	Groups    []CartGroup `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time   `gorm:"column:updated_at;autoUpdateTime"`
}

// CartLine is one SKU entry inside a cart group. MediatorID is stamped when
// the line is first created and never overwritten by later additions.
type CartLine struct {
	SKUID      uuid.UUID       `json:"sku_id"`
	ProductID  uuid.UUID       `json:"product_id"`
	Quantity   int64           `json:"quantity"`
	Currency   enums.Currency  `json:"currency"`
	Amount     int64           `json:"amount"`
	Discount   *types.Discount `json:"discount,omitempty"`
	TaxRate    decimal.Decimal `json:"tax_rate"`
	Name       string          `json:"name"`
	Caption    string          `json:"caption,omitempty"`
	Category   string          `json:"category,omitempty"`
	MediatorID *uuid.UUID      `json:"mediator_id,omitempty"`
}

// CartLines serializes as a jsonb array on the group row.
type CartLines []CartLine

// CartGroup collects the cart lines belonging to one provider/product scope.
// GroupID is derived deterministically from that pairing, so repeated
// additions land in the same group regardless of call order. A group is
// never persisted with zero lines.
type CartGroup struct {
	CartID        uuid.UUID      `gorm:"column:cart_id;type:uuid;primaryKey"`
	GroupID       uuid.UUID      `gorm:"column:group_id;type:uuid;primaryKey"`
	ProviderID    uuid.UUID      `gorm:"column:provider_id;type:uuid;not null"`
	ProductID     uuid.UUID      `gorm:"column:product_id;type:uuid;not null"`
	Currency      enums.Currency `gorm:"column:currency;type:text;not null;default:'USD'"`
	SubtotalCents int64          `gorm:"column:subtotal_cents;not null;default:0"`
	TaxCents      int64          `gorm:"column:tax_cents;not null;default:0"`
	TotalCents    int64          `gorm:"column:total_cents;not null;default:0"`
	Lines         CartLines      `gorm:"column:lines;type:jsonb;serializer:json"`
	CreatedAt     time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
