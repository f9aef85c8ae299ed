// Package approval implements the recovery approval contracts the kill
// switch consults before leaving KILLED. Two modes ship: a static code
// checked against a bcrypt hash, and a signed short-lived token.
package approval

import "fmt"

// Contract validates a recovery request. It matches the kill switch
// manager's Approver seam.
type Contract interface {
	Approve(approvedBy, code string) error
}

// New builds the contract selected by mode. "static" wants a bcrypt hash
// of the shared code; "token" wants the HMAC signing secret.
func New(mode, secret string) (Contract, error) {
	switch mode {
	case "static":
		return NewStatic(secret)
	case "token":
		return NewToken(secret)
	default:
		return nil, fmt.Errorf("unknown approval mode %q (want static or token)", mode)
	}
}
