package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/platebook/backend/internal/types"
)

// TokenService issues and validates the JWT bearer tokens that carry the
// caller identity. Credential verification happens upstream; this service
// only deals in signed identities.
type TokenService struct {
	jwtSecret string
}

// NewTokenService creates a new TokenService instance
func NewTokenService(jwtSecret string) *TokenService {
	return &TokenService{jwtSecret: jwtSecret}
}

// GenerateToken signs a token for the given user identity, valid for 24h.
func (s *TokenService) GenerateToken(userID uuid.UUID) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID.String(),
		"exp":     time.Now().Add(time.Hour * 24).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// ValidateToken verifies the signature and expiry of a bearer token and
// returns the claims it carries.
func (s *TokenService) ValidateToken(tokenString string) (*types.TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.jwtSecret), nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		userIDStr, ok := claims["user_id"].(string)
		if !ok {
			return nil, errors.New("invalid token claims")
		}

		userID, err := uuid.Parse(userIDStr)
		if err != nil {
			return nil, err
		}

		return &types.TokenClaims{
			UserID: userID,
		}, nil
	}

	return nil, errors.New("invalid token")
}
