package process

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/rs/zerolog"
	gops "github.com/shirou/gopsutil/v3/process"

	"github.com/nodelet/nodelet/pkg/log"
)

// Handle is the daemon's grip on one worker OS process. Implementations
// must be safe for concurrent use: the kill path signals from timer
// goroutines while the supervision loop polls liveness.
type Handle interface {
	// Pid returns the OS process ID. It is stable for the handle lifetime.
	Pid() int
	// IsAlive reports whether the process is still running. A reaped or
	// zombie process is not alive.
	IsAlive() bool
	// Terminate requests a graceful exit (SIGTERM). On platforms without
	// termination signals it is a no-op and returns nil.
	Terminate() error
	// Kill forces the process to exit (SIGKILL). Killing an already dead
	// process is not an error.
	Kill() error
}

// SpawnSpec describes a worker process to start.
type SpawnSpec struct {
	// Command is the argv, Command[0] being the executable.
	Command []string
	// Env entries ("KEY=VALUE") appended to the daemon environment.
	Env []string
	// Dir is the working directory. Empty means inherit.
	Dir string
	// Stdout and Stderr receive the process output. Nil inherits the
	// daemon's own streams.
	Stdout io.Writer
	Stderr io.Writer
}

// OS is the Handle implementation backed by a real operating system
// process, either spawned by this daemon or attached by PID.
type OS struct {
	pid   int
	proc  *os.Process
	owned bool

	logger zerolog.Logger

	mu      sync.Mutex
	exited  bool
	exitErr error
	done    chan struct{}
}

// Start launches the command in its own process group and returns a handle
// that owns it. A background goroutine reaps the process when it exits.
func Start(spec SpawnSpec) (*OS, error) {
	if len(spec.Command) == 0 {
		return nil, errors.New("spawn spec has no command")
	}

	cmd := exec.Command(spec.Command[0], spec.Command[1:]...)
	cmd.Env = append(os.Environ(), spec.Env...)
	cmd.Dir = spec.Dir
	cmd.Stdout = spec.Stdout
	cmd.Stderr = spec.Stderr
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}
	cmd.SysProcAttr = sysProcAttr()

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start worker process: %w", err)
	}

	h := &OS{
		pid:    cmd.Process.Pid,
		proc:   cmd.Process,
		owned:  true,
		logger: log.WithComponent("process"),
		done:   make(chan struct{}),
	}
	go h.reap(cmd)
	return h, nil
}

// Attach wraps an existing PID, typically one recovered from a spawn
// record after a daemon restart. Exit notification is unavailable for
// attached handles; liveness falls back to polling the process table.
func Attach(pid int) (*OS, error) {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return nil, fmt.Errorf("failed to attach to pid %d: %w", pid, err)
	}
	return &OS{
		pid:    pid,
		proc:   proc,
		logger: log.WithComponent("process"),
	}, nil
}

// reap waits for the spawned process so it never lingers as a zombie, then
// records the exit for IsAlive and Exited.
func (h *OS) reap(cmd *exec.Cmd) {
	err := cmd.Wait()

	h.mu.Lock()
	h.exited = true
	h.exitErr = err
	h.mu.Unlock()
	close(h.done)

	if err != nil {
		h.logger.Debug().Int("pid", h.pid).Err(err).Msg("worker process exited")
	} else {
		h.logger.Debug().Int("pid", h.pid).Msg("worker process exited cleanly")
	}
}

// Pid returns the OS process ID.
func (h *OS) Pid() int { return h.pid }

// IsAlive reports whether the process is still running. Owned handles use
// the reaper's exit notification; attached handles poll the process table
// and treat zombies as dead.
func (h *OS) IsAlive() bool {
	if h.done != nil {
		select {
		case <-h.done:
			return false
		default:
			return true
		}
	}
	return pidAlive(h.pid)
}

// Exited returns whether an owned process has been reaped and the error
// its Wait returned. Attached handles always report false.
func (h *OS) Exited() (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.exited, h.exitErr
}

func pidAlive(pid int) bool {
	proc, err := gops.NewProcess(int32(pid))
	if err != nil {
		return false
	}
	statuses, err := proc.Status()
	if err != nil {
		running, rerr := proc.IsRunning()
		return rerr == nil && running
	}
	for _, s := range statuses {
		if s == gops.Zombie {
			return false
		}
	}
	return true
}

// StartedAt returns the creation time of the given PID. Orphan reaping
// compares it against the recorded spawn time to avoid killing an
// unrelated process that reused the PID.
func StartedAt(pid int) (time.Time, error) {
	proc, err := gops.NewProcess(int32(pid))
	if err != nil {
		return time.Time{}, fmt.Errorf("process %d not found: %w", pid, err)
	}
	ms, err := proc.CreateTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read start time of pid %d: %w", pid, err)
	}
	return time.UnixMilli(ms), nil
}
