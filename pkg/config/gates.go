package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"trading-gate/internal/order"
	"trading-gate/internal/risk"
	"trading-gate/pkg/approval"
)

// Gates is the policy file: which capabilities are locked, what the risk
// limits are, how the kill switch recovers, and which executor serves
// each environment. Changing any of it means redeploying the file; the
// running gate has no write path into this.
type Gates struct {
	// Governance maps capability → "locked" | "allowed".
	Governance map[string]string `yaml:"governance"`

	Risk risk.Config `yaml:"risk"`

	KillSwitch KillSwitchGates `yaml:"kill_switch"`

	// Environments maps environment → executor kind
	// (paper | shadow | venue).
	Environments map[string]string `yaml:"environments"`

	// Symbols is the tradable allowlist; empty accepts any symbol.
	Symbols []string `yaml:"symbols"`

	Ledger LedgerGates `yaml:"ledger"`
}

// KillSwitchGates configures recovery.
type KillSwitchGates struct {
	CooldownSeconds int           `yaml:"cooldown_seconds"`
	Approval        ApprovalGates `yaml:"approval"`
}

// ApprovalGates selects the recovery approval contract.
type ApprovalGates struct {
	Mode string `yaml:"mode"` // static | token
	// CodeHash is the bcrypt hash of the static code (mode: static).
	CodeHash string `yaml:"code_hash"`
	// TokenSecret signs approval tokens (mode: token).
	TokenSecret string `yaml:"token_secret"`
}

// Approver builds the recovery approval contract this file selects.
func (a ApprovalGates) Approver() (approval.Contract, error) {
	switch a.Mode {
	case "static":
		return approval.New("static", a.CodeHash)
	case "token":
		return approval.New("token", a.TokenSecret)
	}
	return nil, fmt.Errorf("kill_switch approval mode not configured")
}

// LedgerGates seeds the in-memory books.
type LedgerGates struct {
	EquityAtOpen float64 `yaml:"equity_at_open"`
}

var executorKinds = map[string]bool{
	"paper":  true,
	"shadow": true,
	"venue":  true,
}

// LoadGates reads and validates the gates file. A policy file that does
// not parse or names unknown environments refuses to boot the gate.
func LoadGates(path string) (*Gates, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read gates file: %w", err)
	}

	var g Gates
	if err := yaml.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("parse gates file: %w", err)
	}
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("gates file %s: %w", path, err)
	}
	return &g, nil
}

// Validate rejects unknown statuses, environments, and executor kinds.
func (g *Gates) Validate() error {
	for cap, status := range g.Governance {
		if status != "locked" && status != "allowed" {
			return fmt.Errorf("governance %s: status %q (want locked or allowed)", cap, status)
		}
	}

	for env, kind := range g.Environments {
		if !order.Environment(env).Valid() {
			return fmt.Errorf("environments: unknown environment %q", env)
		}
		if !executorKinds[kind] {
			return fmt.Errorf("environments %s: unknown executor kind %q", env, kind)
		}
	}

	if g.KillSwitch.CooldownSeconds < 0 {
		return fmt.Errorf("kill_switch: negative cooldown_seconds")
	}
	switch g.KillSwitch.Approval.Mode {
	case "", "static", "token":
	default:
		return fmt.Errorf("kill_switch approval: unknown mode %q", g.KillSwitch.Approval.Mode)
	}

	if g.Risk.WarningThreshold < 0 || g.Risk.WarningThreshold >= 1 {
		if g.Risk.WarningThreshold != 0 {
			return fmt.Errorf("risk: warning_threshold %v out of (0,1)", g.Risk.WarningThreshold)
		}
	}
	return nil
}

// Locked reports whether a capability is locked in this file.
func (g *Gates) Locked(capability string) bool {
	return g.Governance[capability] == "locked"
}

// SymbolSet returns the allowlist as a lookup map.
func (g *Gates) SymbolSet() map[string]bool {
	if len(g.Symbols) == 0 {
		return nil
	}
	out := make(map[string]bool, len(g.Symbols))
	for _, s := range g.Symbols {
		out[s] = true
	}
	return out
}
