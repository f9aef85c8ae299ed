package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent kill switch transitions",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum transitions to show")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	mgr, closeFn, err := openSwitch()
	if err != nil {
		return err
	}
	defer closeFn()

	history, err := mgr.History(cmd.Context(), historyLimit)
	if err != nil {
		return err
	}

	return emit(history, func() {
		if len(history) == 0 {
			fmt.Println("No transitions recorded.")
			return
		}
		for _, tr := range history {
			actor := tr.Actor
			if actor == "" {
				actor = "-"
			}
			fmt.Printf("%s  %-10s -> %-10s  %-16s  %s\n",
				tr.At.Format(time.RFC3339), tr.From, tr.To, actor, tr.Reason)
		}
	})
}
