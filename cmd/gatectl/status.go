package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the kill switch state",
	Long: `Display the current kill switch record and, while recovering, the
cooldown position.

Examples:
  gatectl status
  gatectl status -o json`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	mgr, closeFn, err := openSwitch()
	if err != nil {
		return err
	}
	defer closeFn()

	snap, err := mgr.Status(cmd.Context())
	if err != nil {
		return err
	}

	return emit(snap, func() {
		fmt.Printf("State:        %s\n", snap.State)
		if snap.TriggerReason != "" {
			fmt.Printf("Reason:       %s\n", snap.TriggerReason)
		}
		if snap.TriggeredBy != "" {
			fmt.Printf("Triggered by: %s\n", snap.TriggeredBy)
			fmt.Printf("Triggered at: %s\n", snap.TriggeredAt.Format(time.RFC3339))
		}
		if snap.ApprovedBy != "" {
			fmt.Printf("Approved by:  %s\n", snap.ApprovedBy)
		}
		if snap.CooldownRemaining > 0 {
			fmt.Printf("Cooldown:     %.0fs remaining\n", snap.CooldownRemaining)
		}
		if snap.CanComplete {
			fmt.Println("Cooldown elapsed; run `gatectl complete-recovery` to re-arm.")
		}
		fmt.Printf("Version:      %d\n", snap.Version)
	})
}
