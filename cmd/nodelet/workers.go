package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/nodelet/nodelet/pkg/types"
)

var workersCmd = &cobra.Command{
	Use:   "workers",
	Short: "Manage workers on this node",
}

var workersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List workers registered with the daemon",
	RunE:  runWorkersList,
}

var workersKillCmd = &cobra.Command{
	Use:   "kill WORKER_ID",
	Short: "Terminate a worker",
	Long: `Ask the daemon to terminate a worker.

Without --force the worker gets a graceful termination request first and is
killed once the configured grace period expires. With --force it is killed
immediately.`,
	Args: cobra.ExactArgs(1),
	RunE: runWorkersKill,
}

var workersDisconnectCmd = &cobra.Command{
	Use:   "disconnect WORKER_ID",
	Short: "Retire a worker record without signaling the process",
	Args:  cobra.ExactArgs(1),
	RunE:  runWorkersDisconnect,
}

func init() {
	workersCmd.AddCommand(workersListCmd)
	workersCmd.AddCommand(workersKillCmd)
	workersCmd.AddCommand(workersDisconnectCmd)

	workersKillCmd.Flags().Bool("force", false, "Kill immediately instead of granting the grace period")
}

func runWorkersList(cmd *cobra.Command, args []string) error {
	c := newDaemonClient(cmd)
	defer c.Close()

	workers, err := c.ListWorkers()
	if err != nil {
		return err
	}
	if len(workers) == 0 {
		fmt.Println("No workers registered")
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("ID", "Type", "Language", "PID", "Port", "Job", "State")

	for _, w := range workers {
		table.Append(
			shortID(w.ID),
			string(w.Type),
			string(w.Language),
			strconv.Itoa(w.PID),
			strconv.Itoa(w.Port),
			shortID(w.JobID),
			workerState(w),
		)
	}
	table.Render()

	fmt.Printf("\nTotal workers: %d\n", len(workers))
	return nil
}

func runWorkersKill(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")

	c := newDaemonClient(cmd)
	defer c.Close()

	id := types.WorkerID(args[0])
	if err := c.KillWorker(id, force); err != nil {
		return err
	}

	mode := "gracefully"
	if force {
		mode = "forcefully"
	}
	fmt.Printf("✓ Killing worker %s %s\n", shortID(id), mode)
	return nil
}

func runWorkersDisconnect(cmd *cobra.Command, args []string) error {
	c := newDaemonClient(cmd)
	defer c.Close()

	id := types.WorkerID(args[0])
	if err := c.DisconnectWorker(id); err != nil {
		return err
	}

	fmt.Printf("✓ Worker %s disconnected\n", shortID(id))
	return nil
}

// shortID truncates UUIDs for table display.
func shortID(id fmt.Stringer) string {
	s := id.String()
	if s == "" {
		return "-"
	}
	if len(s) > 8 {
		return s[:8]
	}
	return s
}

func workerState(w types.WorkerInfo) string {
	switch {
	case w.Dead:
		return "dying"
	case w.Blocked:
		return "blocked"
	case w.Port > 0:
		return "ready"
	default:
		return "starting"
	}
}
