package products

import (
	"testing"

	"github.com/kaoruharada/marketcore-backend/pkg/db/models"
	"github.com/kaoruharada/marketcore-backend/pkg/enums"
)

func TestCanPublishFiniteInventory(t *testing.T) {
	t.Parallel()
	sku := models.SKU{InventoryType: enums.InventoryTypeFinite}

	cases := []struct {
		name    string
		stocks  []models.Stock
		allowed bool
	}{
		{"no records", nil, false},
		{"zero sum", []models.Stock{{Count: 3}, {Count: -3}}, false},
		{"negative sum", []models.Stock{{Count: 1}, {Count: -4}}, false},
		{"single unit", []models.Stock{{Count: 1}}, true},
		{"positive after adjustments", []models.Stock{{Count: 10}, {Count: -9}}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			decision := CanPublish(sku, tc.stocks)
			if decision.Allowed != tc.allowed {
				t.Fatalf("expected allowed=%v, got %+v", tc.allowed, decision)
			}
			if !tc.allowed && decision.Reason != ReasonNoStock {
				t.Fatalf("expected reason %q, got %q", ReasonNoStock, decision.Reason)
			}
		})
	}
}

func TestCanPublishInfiniteInventoryAlwaysAllowed(t *testing.T) {
	t.Parallel()
	sku := models.SKU{InventoryType: enums.InventoryTypeInfinite}
	decision := CanPublish(sku, nil)
	if !decision.Allowed {
		t.Fatalf("infinite inventory must always publish, got %+v", decision)
	}
}
