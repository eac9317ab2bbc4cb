package enums

import "fmt"

// MemberRole is the actor role carried in access-token claims.
type MemberRole string

const (
	MemberRoleCustomer MemberRole = "customer"
	MemberRoleOperator MemberRole = "operator"
	MemberRoleAdmin    MemberRole = "admin"
)

var validMemberRoles = []MemberRole{
	MemberRoleCustomer,
	MemberRoleOperator,
	MemberRoleAdmin,
}

func (m MemberRole) String() string {
	return string(m)
}

// IsValid reports whether the value is a known MemberRole.
func (m MemberRole) IsValid() bool {
	for _, candidate := range validMemberRoles {
		if candidate == m {
			return true
		}
	}
	return false
}

// CanOperateProvider reports whether the role may act on provider-owned
// resources (orders, SKUs, refunds).
func (m MemberRole) CanOperateProvider() bool {
	return m == MemberRoleOperator || m == MemberRoleAdmin
}

// ParseMemberRole converts raw input into a MemberRole.
func ParseMemberRole(value string) (MemberRole, error) {
	for _, candidate := range validMemberRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid member role %q", value)
}
