package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid visitor token")

const tokenIssuer = "scavenger"

// VisitorClaims is the payload of the visitor session cookie
type VisitorClaims struct {
	jwt.RegisteredClaims
}

// SignVisitorToken issues an HS256 token naming uid as subject
func SignVisitorToken(secret []byte, uid string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := VisitorClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   uid,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign visitor token: %w", err)
	}
	return signed, nil
}

// ParseVisitorToken verifies a token and returns the visitor uid
func ParseVisitorToken(secret []byte, token string) (string, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)
	claims := &VisitorClaims{}

	parsed, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
