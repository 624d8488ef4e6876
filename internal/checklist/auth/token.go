// Package auth issues and validates the JWTs that identify a caller of the
// checklist service: user id, business id and admin flag.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/gartstein/compliance/internal/checklist/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenTTL = 24 * time.Hour

// Claims carried by checklist tokens.
type Claims struct {
	BusinessID string `json:"business_id,omitempty"`
	Admin      bool   `json:"admin,omitempty"`
	jwt.RegisteredClaims
}

var errInvalidClaims = errors.New("invalid token claims")

// GenerateToken signs a token for userID. A nil businessID produces a token
// without a business scope, usable only by admins.
func GenerateToken(userID string, businessID uuid.UUID, admin bool, secret string) (string, error) {
	now := time.Now()
	claims := Claims{
		Admin: admin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
			Issuer:    "auth-service",
		},
	}
	if businessID != uuid.Nil {
		claims.BusinessID = businessID.String()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// validateToken checks the token signature and expiry and returns the caller
// it identifies.
func validateToken(tokenString, secret string) (models.Caller, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return models.Caller{}, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid || claims.Subject == "" {
		return models.Caller{}, errInvalidClaims
	}

	caller := models.Caller{UserID: claims.Subject, Admin: claims.Admin}
	if claims.BusinessID != "" {
		caller.BusinessID, err = uuid.Parse(claims.BusinessID)
		if err != nil {
			return models.Caller{}, fmt.Errorf("%w: business_id: %v", errInvalidClaims, err)
		}
	}
	return caller, nil
}
