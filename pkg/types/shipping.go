package types

import "strings"

// Address is the postal address captured inside a shipping snapshot.
type Address struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// Shipping is the address snapshot stored on an order at checkout time. It is
// display data only; mutation of the upstream address never touches it.
type Shipping struct {
	Name    string   `json:"name,omitempty"`
	Phone   string   `json:"phone,omitempty"`
	Address *Address `json:"address,omitempty"`
}

// AddressField names one formattable component of an address.
type AddressField string

const (
	AddressFieldCity   AddressField = "city"
	AddressFieldLine1  AddressField = "line1"
	AddressFieldLine2  AddressField = "line2"
	AddressFieldPostal AddressField = "postal_code"
	AddressFieldState  AddressField = "state"
)

// Formatted renders the address in the conventional field order for the
// given country. Japan puts the postal code first and omits the name.
func (s *Shipping) Formatted(countryCode string) string {
	if s == nil {
		return ""
	}
	switch countryCode {
	case "JP":
		return s.join(
			s.field(AddressFieldPostal),
			s.field(AddressFieldState),
			s.field(AddressFieldCity),
			s.field(AddressFieldLine1),
			s.field(AddressFieldLine2),
		)
	default:
		return s.join(
			s.Name,
			s.field(AddressFieldLine1),
			s.field(AddressFieldLine2),
			s.field(AddressFieldCity),
			s.field(AddressFieldState),
			s.field(AddressFieldPostal),
		)
	}
}

// Format renders the requested fields in the requested order.
func (s *Shipping) Format(fields []AddressField) string {
	if s == nil {
		return ""
	}
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, s.field(f))
	}
	return s.join(parts...)
}

// Equal compares the identity fields only (name, phone, country, state,
// city, line1, line2). Extraneous fields such as postal code are tolerated
// so that snapshots with enriched data still match.
func (s *Shipping) Equal(other *Shipping) bool {
	if s == nil || other == nil {
		return false
	}
	return s.Name == other.Name &&
		s.Phone == other.Phone &&
		s.addressField(func(a *Address) string { return a.Country }) == other.addressField(func(a *Address) string { return a.Country }) &&
		s.field(AddressFieldState) == other.field(AddressFieldState) &&
		s.field(AddressFieldCity) == other.field(AddressFieldCity) &&
		s.field(AddressFieldLine1) == other.field(AddressFieldLine1) &&
		s.field(AddressFieldLine2) == other.field(AddressFieldLine2)
}

func (s *Shipping) field(f AddressField) string {
	return s.addressField(func(a *Address) string {
		switch f {
		case AddressFieldCity:
			return a.City
		case AddressFieldLine1:
			return a.Line1
		case AddressFieldLine2:
			return a.Line2
		case AddressFieldPostal:
			return a.PostalCode
		case AddressFieldState:
			return a.State
		}
		return ""
	})
}

func (s *Shipping) addressField(get func(*Address) string) string {
	if s.Address == nil {
		return ""
	}
	return get(s.Address)
}

func (s *Shipping) join(parts ...string) string {
	nonEmpty := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, " ")
}
