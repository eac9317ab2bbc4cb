package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/kaoruharada/marketcore-backend/pkg/enums"
	"github.com/kaoruharada/marketcore-backend/pkg/types"
)

// Product is a sellable listing owned by one provider.
type Product struct {
	ID          uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProviderID  uuid.UUID      `gorm:"column:provider_id;type:uuid;not null"`
	Name        string         `gorm:"column:name;not null"`
	Caption     string         `gorm:"column:caption"`
	Category    string         `gorm:"column:category"`
	Tags        pq.StringArray `gorm:"column:tags;type:text[];default:ARRAY[]::text[]"`
	IsAvailable bool           `gorm:"column:is_available;not null;default:false"`
	SKUs        []SKU          `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

// SKU is a purchasable variant of a product with its own price and inventory.
type SKU struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID     uuid.UUID           `gorm:"column:product_id;type:uuid;not null"`
	ProviderID    uuid.UUID           `gorm:"column:provider_id;type:uuid;not null"`
	Name          string              `gorm:"column:name;not null"`
	Caption       string              `gorm:"column:caption"`
	Category      string              `gorm:"column:category"`
	Currency      enums.Currency      `gorm:"column:currency;type:text;not null;default:'USD'"`
	PriceCents    int64               `gorm:"column:price_cents;not null"`
	TaxRate       decimal.Decimal     `gorm:"column:tax_rate;type:numeric;not null;default:0"`
	Discount      *types.Discount     `gorm:"column:discount;type:jsonb;serializer:json"`
	IsAvailable   bool                `gorm:"column:is_available;not null;default:false"`
	InventoryType enums.InventoryType `gorm:"column:inventory_type;type:text;not null;default:'finite'"`
	Stocks        []Stock             `gorm:"foreignKey:SKUID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// Stock is one signed inventory adjustment for a SKU. The availability gate
// sums these; it never reads a cached total.
type Stock struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SKUID     uuid.UUID `gorm:"column:sku_id;type:uuid;not null;index"`
	Count     int64     `gorm:"column:count;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
