package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nodelet/nodelet/pkg/client"
	"github.com/nodelet/nodelet/pkg/config"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "nodelet",
	Short: "Nodelet - per-node worker supervisor",
	Long: `Nodelet is the node-local daemon that spawns, tracks, and reaps the
worker processes of a distributed task cluster. It hands every worker its
identity at spawn time, supervises the process until it exits, and relays
control-plane notifications to the workers it owns.`,
	Version: Version,
}

func init() {
	// Set version template
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"Nodelet version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	rootCmd.PersistentFlags().String("daemon", "127.0.0.1"+config.DefaultAPIAddr,
		"Address of the nodelet API")

	// Add subcommands
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(workersCmd)
	rootCmd.AddCommand(gcsCmd)
	rootCmd.AddCommand(statusCmd)
}

// newDaemonClient builds an API client from the --daemon flag.
func newDaemonClient(cmd *cobra.Command) *client.Client {
	addr, _ := cmd.Flags().GetString("daemon")
	return client.NewClient(addr)
}
