package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nodelet/nodelet/pkg/api"
	"github.com/nodelet/nodelet/pkg/config"
	"github.com/nodelet/nodelet/pkg/daemon"
	"github.com/nodelet/nodelet/pkg/log"
	"github.com/nodelet/nodelet/pkg/metrics"
	"github.com/nodelet/nodelet/pkg/pool"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the nodelet daemon",
	Long: `Start the nodelet daemon on this node.

The daemon first reaps worker processes orphaned by a previous run, then
serves the HTTP API and begins spawning and supervising workers.`,
	RunE: runStart,
}

func init() {
	startCmd.Flags().StringP("config", "c", "", "YAML config file")
	startCmd.Flags().String("api-addr", "", "HTTP API listen address (overrides config)")
	startCmd.Flags().String("data-dir", "", "Directory for spawn records (overrides config)")
	startCmd.Flags().String("node-ip", "", "Address workers use to reach this node (overrides config)")
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log.Init(log.Config{Level: log.Level(cfg.LogLevel), JSONOutput: cfg.LogJSON})

	fmt.Println("Starting nodelet...")
	fmt.Printf("  Node IP: %s\n", cfg.NodeIP)
	fmt.Printf("  API Address: %s\n", cfg.APIAddr)
	fmt.Printf("  Data Directory: %s\n", cfg.DataDir)
	fmt.Printf("  Worker Ports: %d-%d\n", cfg.WorkerPortMin, cfg.WorkerPortMax)
	fmt.Println()

	// Create daemon
	d, err := daemon.New(daemon.Options{Config: cfg})
	if err != nil {
		return fmt.Errorf("failed to create daemon: %v", err)
	}

	// Reap orphans and start supervision
	if err := d.Start(); err != nil {
		return fmt.Errorf("failed to start daemon: %v", err)
	}
	fmt.Println("✓ Daemon started")

	// Start metrics collector
	collector := metrics.NewCollector(d.Stats, 15*time.Second)
	collector.Start()
	fmt.Println("✓ Metrics collector started")

	// Start worker pool when a floor is configured
	var workerPool *pool.Pool
	if cfg.PoolMinWorkers > 0 {
		workerPool = pool.New(d, cfg.PoolMinWorkers, cfg.PoolInterval())
		workerPool.Start()
		fmt.Printf("✓ Worker pool started (floor: %d)\n", cfg.PoolMinWorkers)
	}

	// Start API server in background
	apiServer := api.NewServer(d)
	errCh := make(chan error, 1)
	go func() {
		if err := apiServer.Start(cfg.APIAddr); err != nil {
			errCh <- fmt.Errorf("API server error: %v", err)
		}
	}()
	fmt.Printf("✓ API listening on %s\n", cfg.APIAddr)

	fmt.Println()
	fmt.Println("Nodelet is running. Press Ctrl+C to stop.")

	// Wait for interrupt signal or API server error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		fmt.Println("\nShutting down...")
	case err := <-errCh:
		fmt.Fprintf(os.Stderr, "\nError: %v\n", err)
	}

	// Shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "API shutdown error: %v\n", err)
	}
	if workerPool != nil {
		workerPool.Stop()
	}
	collector.Stop()
	if err := d.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown: %v", err)
	}

	fmt.Println("✓ Shutdown complete")
	return nil
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfgPath, _ := cmd.Flags().GetString("config")

	cfg := config.Default()
	if cfgPath != "" {
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return nil, err
		}
	}

	if v, _ := cmd.Flags().GetString("api-addr"); v != "" {
		cfg.APIAddr = v
	}
	if v, _ := cmd.Flags().GetString("data-dir"); v != "" {
		cfg.DataDir = v
	}
	if v, _ := cmd.Flags().GetString("node-ip"); v != "" {
		cfg.NodeIP = v
	}
	return cfg, nil
}
