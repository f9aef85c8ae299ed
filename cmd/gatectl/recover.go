package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"trading-gate/pkg/nodeid"
)

var (
	approvedBy   string
	approvalCode string
)

var recoverCmd = &cobra.Command{
	Use:   "recover",
	Short: "Request recovery from KILLED",
	Long: `Present an approval and move the switch to RECOVERING. The mandatory
cooldown starts now; dispatch stays blocked until complete-recovery.

The approval contract comes from the gates file: a static code checked
against its stored hash, or a signed token.

Examples:
  gatectl recover --approval-code s3cret
  gatectl recover --approval-code "$TOKEN" --approved-by ops-alice`,
	RunE: runRecover,
}

var completeRecoveryCmd = &cobra.Command{
	Use:   "complete-recovery",
	Short: "Re-arm dispatch after the cooldown",
	Long: `Move RECOVERING to ACTIVE. Refuses while the cooldown is still
running and prints the remaining time.`,
	RunE: runCompleteRecovery,
}

func init() {
	recoverCmd.Flags().StringVar(&approvedBy, "approved-by", "", "Approver identity (default: this machine's node id)")
	recoverCmd.Flags().StringVar(&approvalCode, "approval-code", "", "Approval code or token (required)")
	_ = recoverCmd.MarkFlagRequired("approval-code")
	rootCmd.AddCommand(recoverCmd)
	rootCmd.AddCommand(completeRecoveryCmd)
}

func runRecover(cmd *cobra.Command, args []string) error {
	mgr, closeFn, err := openSwitch()
	if err != nil {
		return err
	}
	defer closeFn()

	by := approvedBy
	if by == "" {
		by = nodeid.MustID()
	}

	rec, err := mgr.RequestRecovery(cmd.Context(), by, approvalCode)
	if err != nil {
		return err
	}

	return emit(rec, func() {
		cooldown := time.Duration(rec.CooldownSeconds) * time.Second
		fmt.Printf("Recovery approved by %s; switch %s, cooldown %s\n", rec.ApprovedBy, rec.State, cooldown)
	})
}

func runCompleteRecovery(cmd *cobra.Command, args []string) error {
	mgr, closeFn, err := openSwitch()
	if err != nil {
		return err
	}
	defer closeFn()

	rec, err := mgr.CompleteRecovery(cmd.Context())
	if err != nil {
		return err
	}

	return emit(rec, func() {
		fmt.Printf("Kill switch %s; order dispatch re-armed\n", rec.State)
	})
}
