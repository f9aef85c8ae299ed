package order

import "testing"

// Ensures the status set is closed: all fourteen literals are valid, the
// block helpers agree with them, and arbitrary strings are rejected.
func TestStatusSet(t *testing.T) {
	blocked := map[Status]bool{
		StatusBlockedByGovernance:  true,
		StatusBlockedByRisk:        true,
		StatusBlockedBySafety:      true,
		StatusBlockedByEnvironment: true,
	}

	all := []Status{
		StatusPending, StatusSubmitted, StatusFilled, StatusPartiallyFilled,
		StatusCancelled, StatusRejected, StatusSuccess,
		StatusBlockedByGovernance, StatusBlockedByRisk, StatusBlockedBySafety,
		StatusBlockedByEnvironment, StatusInvalid, StatusError, StatusExpired,
	}
	if len(all) != 14 {
		t.Fatalf("status literals=%d, expected 14", len(all))
	}

	for _, s := range all {
		if !s.Valid() {
			t.Fatalf("status %s not recognized as valid", s)
		}
		if s.IsBlocked() != blocked[s] {
			t.Fatalf("IsBlocked(%s)=%v, expected %v", s, s.IsBlocked(), blocked[s])
		}
	}

	for _, s := range []Status{"", "OK", "BLOCKED", "blocked_by_risk"} {
		if s.Valid() {
			t.Fatalf("status %q accepted, expected rejection", s)
		}
	}
}

// Ensures the environment dispatch tables agree with the deployment contract:
// only live and testnet need capabilities, only non-sandboxed environments
// demand real market data.
func TestEnvironmentTables(t *testing.T) {
	tests := []struct {
		env            Environment
		wantCapability string
		wantSandboxed  bool
	}{
		{EnvLive, "live_order_execution", false},
		{EnvTestnet, "testnet_order_execution", false},
		{EnvPaper, "", true},
		{EnvShadow, "", true},
		{EnvBacktest, "", true},
		{EnvResearch, "", true},
	}

	for _, tt := range tests {
		t.Run(string(tt.env), func(t *testing.T) {
			if !tt.env.Valid() {
				t.Fatalf("environment %s not recognized", tt.env)
			}
			if got := tt.env.Capability(); got != tt.wantCapability {
				t.Fatalf("Capability=%q, expected %q", got, tt.wantCapability)
			}
			if got := tt.env.Sandboxed(); got != tt.wantSandboxed {
				t.Fatalf("Sandboxed=%v, expected %v", got, tt.wantSandboxed)
			}
		})
	}

	if Environment("staging").Valid() {
		t.Fatalf("unknown environment accepted")
	}
	if len(Environments()) != 6 {
		t.Fatalf("environment set=%d, expected 6", len(Environments()))
	}
}
