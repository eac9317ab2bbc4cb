// Package products owns the sellable catalog and the inventory gate that
// guards SKU publication.
package products

import (
	"github.com/kaoruharada/marketcore-backend/pkg/db/models"
	"github.com/kaoruharada/marketcore-backend/pkg/enums"
)

// ReasonNoStock is returned when finite inventory has nothing left to sell.
const ReasonNoStock = "no stock"

// Decision is the gate's advisory verdict. A refused publication is a normal
// outcome, not an error.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// CanPublish decides whether a SKU may flip to available. Finite inventory
// requires a positive aggregate stock count; infinite inventory always
// passes. The gate only applies to the false→true transition; taking a SKU
// off sale is never blocked.
func CanPublish(sku models.SKU, stocks []models.Stock) Decision {
	if sku.InventoryType == enums.InventoryTypeInfinite {
		return Decision{Allowed: true}
	}

	var total int64
	for _, stock := range stocks {
		total += stock.Count
	}
	if total <= 0 {
		return Decision{Allowed: false, Reason: ReasonNoStock}
	}
	return Decision{Allowed: true}
}
