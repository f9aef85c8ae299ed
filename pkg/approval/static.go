package approval

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Static checks the presented code against a bcrypt hash baked into the
// gates config. The plaintext never lives in config or logs.
type Static struct {
	hash []byte
}

// NewStatic builds the contract from a bcrypt hash string.
func NewStatic(hash string) (*Static, error) {
	hash = strings.TrimSpace(hash)
	if hash == "" {
		return nil, errors.New("static approval: empty code hash")
	}
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return nil, fmt.Errorf("static approval: bad bcrypt hash: %w", err)
	}
	return &Static{hash: []byte(hash)}, nil
}

// Approve accepts when the code matches the hash. approvedBy only needs
// to be present; who may approve is an organizational question, not a
// cryptographic one.
func (s *Static) Approve(approvedBy, code string) error {
	if strings.TrimSpace(approvedBy) == "" {
		return errors.New("approved_by is required")
	}
	if err := bcrypt.CompareHashAndPassword(s.hash, []byte(code)); err != nil {
		return errors.New("approval code does not match")
	}
	return nil
}

// HashCode produces the bcrypt hash to put in the gates config. Used by
// operators when rotating the code.
func HashCode(code string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
