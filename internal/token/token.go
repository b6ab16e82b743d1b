// Package token issues and decodes the signed bearer tokens that gate
// mutating post operations.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers malformed, badly signed, and expired tokens.
// Callers must treat it distinctly from "no token supplied".
var ErrInvalidToken = errors.New("token invalid")

// Identity is what a decoded token resolves to.
type Identity struct {
	AccountID string
	Username  string
}

type claims struct {
	AccountID string `json:"account_id"`
	Username  string `json:"username"`
	jwt.RegisteredClaims
}

// Service signs and verifies tokens with a single shared secret. The secret
// is explicit configuration, not ambient state, and must stay identical for
// the process lifetime.
type Service struct {
	secret []byte
	ttl    time.Duration
}

func New(secret string, ttl time.Duration) *Service {
	return &Service{secret: []byte(secret), ttl: ttl}
}

// Issue produces a signed token embedding the identity with an expiry.
func (s *Service) Issue(accountID, username string) (string, error) {
	now := time.Now()
	c := claims{
		AccountID: accountID,
		Username:  username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
}

// Decode verifies the signature and expiry and returns the embedded
// identity. Any failure, including an empty account id claim, yields
// ErrInvalidToken.
func (s *Service) Decode(tokenString string) (Identity, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &claims{}, func(t *jwt.Token) (any, error) {
		// Reject anything but HMAC so a forged header cannot downgrade
		// the verification.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return Identity{}, ErrInvalidToken
	}
	c, ok := parsed.Claims.(*claims)
	if !ok || !parsed.Valid || c.AccountID == "" {
		return Identity{}, ErrInvalidToken
	}
	return Identity{AccountID: c.AccountID, Username: c.Username}, nil
}
