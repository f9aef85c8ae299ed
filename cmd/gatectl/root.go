package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"trading-gate/internal/killswitch"
	"trading-gate/pkg/config"
	"trading-gate/pkg/db"
)

var (
	// Global flags
	dbPath    string
	gatesPath string
	output    string
)

// rootCmd is the base command. gatectl talks to the kill switch store
// directly, so it works even when the gate process is down — that is the
// point of an operator tool for an emergency stop.
var rootCmd = &cobra.Command{
	Use:   "gatectl",
	Short: "Operator CLI for the order gate kill switch",
	Long: `gatectl manages the gate's global kill switch from the command line.

Commands:
  status             Show the current switch state and cooldown position
  trigger            Halt all order dispatch (ACTIVE -> KILLED)
  recover            Request recovery with approval (KILLED -> RECOVERING)
  complete-recovery  Re-arm dispatch after the cooldown (RECOVERING -> ACTIVE)
  history            List recent state transitions

gatectl writes to the same store the gate reads on every submission, so a
trigger takes effect on the next order no matter which process issued it.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "data/trading_gate.db", "Path to the gate database")
	rootCmd.PersistentFlags().StringVar(&gatesPath, "gates", "gates.yaml", "Path to the gates policy file")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "table", "Output format (json, table)")
}

// openSwitch opens the store and builds a manager around it. The approver
// is wired only when the gates file is readable; commands that never
// approve anything work without one.
func openSwitch() (*killswitch.Manager, func(), error) {
	database, err := db.New(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open database %s: %w", dbPath, err)
	}
	store, err := killswitch.NewSQLiteStore(database.DB)
	if err != nil {
		database.Close()
		return nil, nil, fmt.Errorf("open kill switch store: %w", err)
	}

	opts := []killswitch.Option{}
	var approver killswitch.Approver
	if gates, err := config.LoadGates(gatesPath); err == nil {
		if a, err := gates.KillSwitch.Approval.Approver(); err == nil {
			approver = a
		}
		if gates.KillSwitch.CooldownSeconds > 0 {
			opts = append(opts, killswitch.WithCooldown(time.Duration(gates.KillSwitch.CooldownSeconds)*time.Second))
		}
	}

	mgr := killswitch.NewManager(store, approver, opts...)
	return mgr, func() { database.Close() }, nil
}

// emit prints v as JSON when -o json, otherwise hands off to the table
// renderer the caller supplies.
func emit(v any, table func()) error {
	if output == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	table()
	return nil
}
