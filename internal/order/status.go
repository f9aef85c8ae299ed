package order

// Status is the closed set of execution outcomes. Every submission ends in
// exactly one of these; nothing else may appear in results or audit rows.
type Status string

const (
	StatusPending         Status = "PENDING"
	StatusSubmitted       Status = "SUBMITTED"
	StatusFilled          Status = "FILLED"
	StatusPartiallyFilled Status = "PARTIALLY_FILLED"
	StatusCancelled       Status = "CANCELLED"
	StatusRejected        Status = "REJECTED"
	StatusSuccess         Status = "SUCCESS"

	StatusBlockedByGovernance  Status = "BLOCKED_BY_GOVERNANCE"
	StatusBlockedByRisk        Status = "BLOCKED_BY_RISK"
	StatusBlockedBySafety      Status = "BLOCKED_BY_SAFETY"
	StatusBlockedByEnvironment Status = "BLOCKED_BY_ENVIRONMENT"

	StatusInvalid Status = "INVALID"
	StatusError   Status = "ERROR"
	StatusExpired Status = "EXPIRED"
)

var statuses = map[Status]bool{
	StatusPending:              true,
	StatusSubmitted:            true,
	StatusFilled:               true,
	StatusPartiallyFilled:      true,
	StatusCancelled:            true,
	StatusRejected:             true,
	StatusSuccess:              true,
	StatusBlockedByGovernance:  true,
	StatusBlockedByRisk:        true,
	StatusBlockedBySafety:      true,
	StatusBlockedByEnvironment: true,
	StatusInvalid:              true,
	StatusError:                true,
	StatusExpired:              true,
}

// Valid reports whether s is a member of the closed status set.
func (s Status) Valid() bool {
	return statuses[s]
}

// IsBlocked reports whether s is one of the gate block outcomes.
func (s Status) IsBlocked() bool {
	switch s {
	case StatusBlockedByGovernance, StatusBlockedByRisk, StatusBlockedBySafety, StatusBlockedByEnvironment:
		return true
	}
	return false
}
