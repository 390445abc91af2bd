//go:build !windows

package process

import (
	"errors"
	"fmt"
	"os"
	"syscall"
)

func sysProcAttr() *syscall.SysProcAttr {
	// Own process group so signals reach the worker and everything it forks.
	return &syscall.SysProcAttr{Setpgid: true}
}

// Terminate sends SIGTERM to the worker's process group, falling back to
// the process itself when it is not a group leader. A process that is
// already gone is treated as terminated.
func (h *OS) Terminate() error {
	return h.signal(syscall.SIGTERM, "terminate")
}

// Kill sends SIGKILL the same way Terminate sends SIGTERM.
func (h *OS) Kill() error {
	return h.signal(syscall.SIGKILL, "kill")
}

func (h *OS) signal(sig syscall.Signal, op string) error {
	err := syscall.Kill(-h.pid, sig)
	if err == nil || errors.Is(err, syscall.ESRCH) {
		return nil
	}

	// Not a group leader: signal the single process.
	if err := h.proc.Signal(sig); err != nil {
		if errors.Is(err, os.ErrProcessDone) || errors.Is(err, syscall.ESRCH) {
			return nil
		}
		return fmt.Errorf("failed to %s pid %d: %w", op, h.pid, err)
	}
	return nil
}
