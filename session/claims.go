package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrOpaqueToken is returned by ParseClaims when the token is not a JWT.
var ErrOpaqueToken = errors.New("token is not a JWT")

// Claims is the informational content of a JWT bearer token.
type Claims struct {
	Subject   string
	Issuer    string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the token carries an expiry that has passed.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// ParseClaims decodes the registered claims of a JWT without verifying its
// signature. The server remains the authority on validity; this is only used
// to show who is signed in and until when.
func ParseClaims(token string) (Claims, error) {
	var registered jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &registered); err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrOpaqueToken, err)
	}

	claims := Claims{Subject: registered.Subject, Issuer: registered.Issuer}
	if registered.IssuedAt != nil {
		claims.IssuedAt = registered.IssuedAt.Time
	}
	if registered.ExpiresAt != nil {
		claims.ExpiresAt = registered.ExpiresAt.Time
	}
	return claims, nil
}
