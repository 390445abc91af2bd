package health

import (
	"context"
	"strings"
	"testing"
)

// stubHandle implements process.Handle for checker tests
type stubHandle struct {
	pid   int
	alive bool
}

func (s *stubHandle) Pid() int         { return s.pid }
func (s *stubHandle) IsAlive() bool    { return s.alive }
func (s *stubHandle) Terminate() error { return nil }
func (s *stubHandle) Kill() error      { return nil }

func TestProcessChecker_Running(t *testing.T) {
	checker := NewProcessChecker(&stubHandle{pid: 4312, alive: true})

	result := checker.Check(context.Background())

	if !result.Healthy {
		t.Errorf("Expected healthy, got unhealthy: %s", result.Message)
	}
	if !strings.Contains(result.Message, "4312") {
		t.Errorf("Expected pid in message, got: %s", result.Message)
	}
}

func TestProcessChecker_Exited(t *testing.T) {
	checker := NewProcessChecker(&stubHandle{pid: 4312, alive: false})

	result := checker.Check(context.Background())

	if result.Healthy {
		t.Errorf("Expected unhealthy for exited process, got healthy: %s", result.Message)
	}
}

func TestProcessChecker_NoHandle(t *testing.T) {
	checker := NewProcessChecker(nil)

	result := checker.Check(context.Background())

	if result.Healthy {
		t.Errorf("Expected unhealthy with no handle, got healthy: %s", result.Message)
	}
}

func TestProcessChecker_Type(t *testing.T) {
	checker := NewProcessChecker(&stubHandle{pid: 1, alive: true})
	if checker.Type() != CheckTypeProcess {
		t.Errorf("Expected type %s, got %s", CheckTypeProcess, checker.Type())
	}
}

func TestStatusUpdateRetryThreshold(t *testing.T) {
	config := DefaultConfig()
	config.Retries = 2

	status := NewStatus()
	if !status.Healthy {
		t.Error("Expected new status to assume healthy")
	}

	fail := Result{Healthy: false}
	status.Update(fail, config)
	if !status.Healthy {
		t.Error("Expected healthy after one failure below threshold")
	}

	status.Update(fail, config)
	if status.Healthy {
		t.Error("Expected unhealthy after reaching retry threshold")
	}

	status.Update(Result{Healthy: true}, config)
	if !status.Healthy {
		t.Error("Expected healthy after first success")
	}
	if status.ConsecutiveFailures != 0 {
		t.Errorf("Expected failure streak reset, got %d", status.ConsecutiveFailures)
	}
}
