package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nodelet/nodelet/pkg/health"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon status",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	addr, _ := cmd.Flags().GetString("daemon")

	checker := health.NewHTTPChecker(healthzURL(addr)).WithTimeout(3 * time.Second)
	res := checker.Check(cmd.Context())
	if !res.Healthy {
		return fmt.Errorf("daemon is unhealthy: %s", res.Message)
	}

	c := newDaemonClient(cmd)
	defer c.Close()

	h, err := c.Health()
	if err != nil {
		return err
	}

	fmt.Printf("Status:  %s\n", h.Status)
	fmt.Printf("Workers: %d\n", h.Workers)
	fmt.Printf("Latency: %s\n", res.Duration.Round(time.Millisecond))
	return nil
}

func healthzURL(addr string) string {
	if !strings.HasPrefix(addr, "http://") && !strings.HasPrefix(addr, "https://") {
		addr = "http://" + addr
	}
	return strings.TrimSuffix(addr, "/") + "/healthz"
}
