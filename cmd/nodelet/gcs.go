package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var gcsCmd = &cobra.Command{
	Use:   "gcs",
	Short: "Relay control-plane events to workers",
}

var gcsRestartedCmd = &cobra.Command{
	Use:   "restarted",
	Short: "Tell every live worker the global control store restarted",
	Long: `Notify all announced workers that the global control store has
restarted so they re-subscribe and re-report their state. A worker that has
not announced its port yet is notified right after it does.`,
	RunE: runGCSRestarted,
}

func init() {
	gcsCmd.AddCommand(gcsRestartedCmd)
}

func runGCSRestarted(cmd *cobra.Command, args []string) error {
	c := newDaemonClient(cmd)
	defer c.Close()

	n, err := c.NotifyGCSRestarted()
	if err != nil {
		return err
	}

	fmt.Printf("✓ Notified %d workers\n", n)
	return nil
}
