// Package cart implements the provider/product grouped shopping cart. The
// engine half is pure: it mutates in-memory structures and leaves persistence
// to the service, which writes the whole cart atomically.
package cart

import (
	"github.com/google/uuid"

	"github.com/kaoruharada/marketcore-backend/internal/pricing"
	"github.com/kaoruharada/marketcore-backend/pkg/db/models"
)

// groupNamespace seeds the deterministic group key derivation. Changing it
// orphans every persisted cart group.
var groupNamespace = uuid.MustParse("7c9e9fe2-3b1d-4a06-9f64-2f1f6f1c8a41")

// GroupID derives the cart group key for a provider/product pairing. Same
// inputs always yield the same key, so repeated additions merge into one
// group regardless of call order.
func GroupID(providerID, productID uuid.UUID) uuid.UUID {
	name := make([]byte, 0, 32)
	name = append(name, providerID[:]...)
	name = append(name, productID[:]...)
	return uuid.NewSHA1(groupNamespace, name)
}

// AddSKU merges a line into the group. An existing line for the same SKU has
// its quantity incremented; otherwise the line is appended as-is, stamping
// MediatorID at creation only. Later additions never overwrite attribution.
func AddSKU(group *models.CartGroup, line models.CartLine) {
	for i := range group.Lines {
		if group.Lines[i].SKUID == line.SKUID {
			group.Lines[i].Quantity += line.Quantity
			Recompute(group)
			return
		}
	}
	group.Lines = append(group.Lines, line)
	Recompute(group)
}

// DeleteSKU removes the matching line by SKU identity. The caller drops the
// group from the cart when this empties it; the engine does not self-prune
// the parent collection.
func DeleteSKU(group *models.CartGroup, skuID uuid.UUID) {
	kept := group.Lines[:0]
	for _, line := range group.Lines {
		if line.SKUID != skuID {
			kept = append(kept, line)
		}
	}
	group.Lines = kept
	Recompute(group)
}

// Recompute refreshes the group's subtotal/tax/total from its lines.
func Recompute(group *models.CartGroup) {
	group.SubtotalCents, group.TaxCents, group.TotalCents = pricing.GroupTotals(group.Lines)
}

// FindGroup returns the group with the given key, or nil. Absence is a
// normal signal, not an error.
func FindGroup(groups []models.CartGroup, groupID uuid.UUID) *models.CartGroup {
	for i := range groups {
		if groups[i].GroupID == groupID {
			return &groups[i]
		}
	}
	return nil
}
