package health

import (
	"context"
	"fmt"
	"time"

	"github.com/nodelet/nodelet/pkg/process"
)

// ProcessChecker reports whether a supervised worker process is still
// running. A worker that died is never coming back, so callers usually
// pair this checker with Retries set to 1.
type ProcessChecker struct {
	// Handle is the supervised process
	Handle process.Handle
}

// NewProcessChecker creates a new process liveness checker
func NewProcessChecker(h process.Handle) *ProcessChecker {
	return &ProcessChecker{Handle: h}
}

// Check performs the process liveness check
func (p *ProcessChecker) Check(ctx context.Context) Result {
	start := time.Now()

	if p.Handle == nil {
		return Result{
			Healthy:   false,
			Message:   "no process bound",
			CheckedAt: start,
			Duration:  time.Since(start),
		}
	}

	if !p.Handle.IsAlive() {
		return Result{
			Healthy:   false,
			Message:   fmt.Sprintf("process %d has exited", p.Handle.Pid()),
			CheckedAt: start,
			Duration:  time.Since(start),
		}
	}

	return Result{
		Healthy:   true,
		Message:   fmt.Sprintf("process %d running", p.Handle.Pid()),
		CheckedAt: start,
		Duration:  time.Since(start),
	}
}

// Type returns the health check type
func (p *ProcessChecker) Type() CheckType {
	return CheckTypeProcess
}
