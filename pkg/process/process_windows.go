//go:build windows

package process

import (
	"errors"
	"fmt"
	"os"
	"syscall"
)

func sysProcAttr() *syscall.SysProcAttr {
	return nil
}

// Terminate is a no-op on Windows: there is no graceful termination signal
// to deliver, so a graceful kill waits out the grace period and escalates.
func (h *OS) Terminate() error {
	return nil
}

// Kill forcibly terminates the process.
func (h *OS) Kill() error {
	if err := h.proc.Kill(); err != nil {
		if errors.Is(err, os.ErrProcessDone) {
			return nil
		}
		return fmt.Errorf("failed to kill pid %d: %w", h.pid, err)
	}
	return nil
}
