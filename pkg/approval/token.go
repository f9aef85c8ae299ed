package approval

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token validates recovery codes that are short-lived HMAC-signed tokens
// issued out of band. The token's subject must match the operator
// presenting it, so an approval cannot be replayed by someone else.
type Token struct {
	secret []byte
}

// Claims carried by an approval token.
type Claims struct {
	ApprovedBy string `json:"approved_by"`
	jwt.RegisteredClaims
}

// NewToken builds the contract from the signing secret.
func NewToken(secret string) (*Token, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("token approval: empty signing secret")
	}
	return &Token{secret: []byte(secret)}, nil
}

// Approve verifies the token signature, expiry, and that it was issued
// to the presenting operator.
func (t *Token) Approve(approvedBy, code string) error {
	if strings.TrimSpace(approvedBy) == "" {
		return errors.New("approved_by is required")
	}

	tok, err := jwt.ParseWithClaims(code, &Claims{}, func(*jwt.Token) (any, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return fmt.Errorf("parse approval token: %w", err)
	}

	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return errors.New("invalid approval token claims")
	}
	if claims.ApprovedBy != approvedBy {
		return fmt.Errorf("token issued to %q, presented by %q", claims.ApprovedBy, approvedBy)
	}
	return nil
}

// IssueToken signs an approval token for one operator. Lives here so the
// issuing tool and the validator can never drift.
func IssueToken(secret, approvedBy string, ttl time.Duration) (string, error) {
	claims := Claims{
		ApprovedBy: approvedBy,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   approvedBy,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
