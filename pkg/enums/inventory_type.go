package enums

import "fmt"

// InventoryType declares how availability of a SKU is controlled. Finite
// inventory is gated on aggregate stock; infinite inventory never runs out.
type InventoryType string

const (
	InventoryTypeFinite   InventoryType = "finite"
	InventoryTypeInfinite InventoryType = "infinite"
)

func (i InventoryType) String() string {
	return string(i)
}

// IsValid reports whether the value is a known InventoryType.
func (i InventoryType) IsValid() bool {
	return i == InventoryTypeFinite || i == InventoryTypeInfinite
}

// ParseInventoryType converts raw input into an InventoryType.
func ParseInventoryType(value string) (InventoryType, error) {
	switch InventoryType(value) {
	case InventoryTypeFinite, InventoryTypeInfinite:
		return InventoryType(value), nil
	}
	return "", fmt.Errorf("invalid inventory type %q", value)
}
