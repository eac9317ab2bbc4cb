package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/kaoruharada/marketcore-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID     uuid.UUID
	ProviderID *uuid.UUID
	Role       enums.MemberRole
}

// AccessTokenClaims represents the typed JWT issued to clients. Provider
// operators carry the provider they are assigned to.
type AccessTokenClaims struct {
	UserID     uuid.UUID        `json:"user_id"`
	ProviderID *uuid.UUID       `json:"provider_id,omitempty"`
	Role       enums.MemberRole `json:"role"`
	jwt.RegisteredClaims
}

// OperatorClaims is the explicit authorization context handed to operations
// that act on provider-owned resources. A nil value means the caller was
// never authenticated; downstream checks must not consult any ambient state.
type OperatorClaims struct {
	UserID     uuid.UUID
	ProviderID uuid.UUID
	Role       enums.MemberRole
}

// Operator narrows token claims to an operator context. Returns nil when the
// token carries no provider assignment.
func (c *AccessTokenClaims) Operator() *OperatorClaims {
	if c == nil || c.ProviderID == nil {
		return nil
	}
	return &OperatorClaims{
		UserID:     c.UserID,
		ProviderID: *c.ProviderID,
		Role:       c.Role,
	}
}
