package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/nodelet/nodelet/pkg/config"
	"github.com/nodelet/nodelet/pkg/storage"
)

var debugCmd = &cobra.Command{
	Use:   "debug",
	Short: "Inspect daemon state offline",
}

var debugSpawnsCmd = &cobra.Command{
	Use:   "spawns",
	Short: "Dump persisted spawn records",
	Long: `Dump the spawn records persisted in the daemon's database.

Each record traces a worker process the daemon started and is normally
removed when the worker's exit is observed. Records that remain after a
crash drive orphan reaping on the next boot. Run this while the daemon is
stopped; the database is locked while it runs.

With --clear every record is deleted after a backup of the database is
written next to it. A cleared record means the next daemon boot will not
reap the process it pointed at.`,
	RunE: runDebugSpawns,
}

func init() {
	rootCmd.AddCommand(debugCmd)
	debugCmd.AddCommand(debugSpawnsCmd)

	debugSpawnsCmd.Flags().String("data-dir", config.DefaultDataDir, "Daemon data directory")
	debugSpawnsCmd.Flags().Bool("clear", false, "Delete all spawn records after backing up the database")
}

func runDebugSpawns(cmd *cobra.Command, args []string) error {
	dataDir, _ := cmd.Flags().GetString("data-dir")
	clearAll, _ := cmd.Flags().GetBool("clear")

	dbPath := filepath.Join(dataDir, "nodelet.db")
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return fmt.Errorf("database not found at %s", dbPath)
	}

	if clearAll {
		backup := dbPath + ".backup"
		if err := copyFile(dbPath, backup); err != nil {
			return fmt.Errorf("failed to back up database: %v", err)
		}
		fmt.Printf("✓ Backup written to %s\n", backup)
	}

	store, err := storage.NewBoltStore(dataDir)
	if err != nil {
		return err
	}
	defer store.Close()

	recs, err := store.ListSpawns()
	if err != nil {
		return fmt.Errorf("failed to list spawn records: %v", err)
	}
	if len(recs) == 0 {
		fmt.Println("No spawn records")
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Worker ID", "PID", "Token", "Type", "Language", "Started")

	for _, rec := range recs {
		table.Append(
			shortID(rec.WorkerID),
			strconv.Itoa(rec.PID),
			strconv.FormatInt(int64(rec.StartupToken), 10),
			string(rec.Type),
			string(rec.Language),
			rec.StartedAt.Format(time.RFC3339),
		)
	}
	table.Render()
	fmt.Printf("\nTotal records: %d\n", len(recs))

	if !clearAll {
		return nil
	}

	for _, rec := range recs {
		if err := store.DeleteSpawn(rec.WorkerID); err != nil {
			return fmt.Errorf("failed to delete record %s: %v", rec.WorkerID, err)
		}
	}
	fmt.Printf("✓ Cleared %d spawn records\n", len(recs))
	return nil
}

func copyFile(src, dst string) error {
	input, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, input, 0600)
}
