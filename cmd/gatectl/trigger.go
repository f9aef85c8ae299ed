package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"trading-gate/pkg/nodeid"
)

var (
	triggerReason string
	triggeredBy   string
)

var triggerCmd = &cobra.Command{
	Use:   "trigger",
	Short: "Halt all order dispatch",
	Long: `Flip the kill switch to KILLED. Every submission in every environment
blocks until recovery completes. Triggering an already-killed switch
updates the reason and actor but stays KILLED.

Examples:
  gatectl trigger --reason "venue connectivity flapping"
  gatectl trigger --reason "drill" --triggered-by ops-alice`,
	RunE: runTrigger,
}

func init() {
	triggerCmd.Flags().StringVar(&triggerReason, "reason", "", "Why the switch is being thrown (required)")
	triggerCmd.Flags().StringVar(&triggeredBy, "triggered-by", "", "Actor identity (default: this machine's node id)")
	_ = triggerCmd.MarkFlagRequired("reason")
	rootCmd.AddCommand(triggerCmd)
}

func runTrigger(cmd *cobra.Command, args []string) error {
	mgr, closeFn, err := openSwitch()
	if err != nil {
		return err
	}
	defer closeFn()

	by := triggeredBy
	if by == "" {
		by = nodeid.MustID()
	}

	rec, err := mgr.Trigger(cmd.Context(), triggerReason, by)
	if err != nil {
		return err
	}

	return emit(rec, func() {
		fmt.Printf("Kill switch %s (triggered by %s): %s\n", rec.State, rec.TriggeredBy, rec.TriggerReason)
	})
}
