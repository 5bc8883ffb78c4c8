package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/servex-app/servex-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a staff JWT.
type AccessTokenPayload struct {
	UserID uuid.UUID
	Role   enums.StaffRole
	JTI    string
}

// AccessTokenClaims represents the typed JWT issued to staff clients.
type AccessTokenClaims struct {
	UserID uuid.UUID       `json:"user_id"`
	Role   enums.StaffRole `json:"role"`
	jwt.RegisteredClaims
}

// TableSessionClaims bind an ordering session to one table visit. The token
// is minted when a table's QR code resolves and must accompany order creation.
type TableSessionClaims struct {
	TableID   uuid.UUID `json:"table_id"`
	TokenKind string    `json:"kind"`
	jwt.RegisteredClaims
}
