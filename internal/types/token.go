package types

import (
	"github.com/google/uuid"
)

// TokenClaims carries the verified caller identity extracted from a
// bearer token.
type TokenClaims struct {
	UserID uuid.UUID `json:"user_id"`
}
