/*
Package log provides structured logging for nodelet using zerolog.

The log package wraps the zerolog library to provide JSON-structured logging
with component-specific loggers, configurable log levels, and helper
functions for common logging patterns. All logs include timestamps and
support filtering by severity level for production debugging.

# Core Components

Global Logger:
  - Package-level zerolog.Logger instance
  - Initialized once via log.Init() (a stderr default is installed for
    code that logs before initialization, such as tests)
  - Thread-safe concurrent writes

Log Levels:
  - Debug: detailed supervision traces (signals sent, timers armed)
  - Info: lifecycle events (worker spawned, announced, reaped)
  - Warn: best-effort failures (notification RPC lost, kill raced an exit)
  - Error: operation failed
  - Fatal: unrecoverable startup errors (process exits)

Context Loggers:
  - WithComponent: add component name to all logs
  - WithWorkerID: add worker ID context
  - WithJobID: add job ID context
  - WithTaskID: add task ID context

# Usage

Initialize once at startup:

	log.Init(log.Config{
		Level:      log.InfoLevel,
		JSONOutput: true,
	})

Create component loggers at construction time and keep them:

	logger := log.WithComponent("termination")
	logger.Info().
		Str("worker_id", w.ID().String()).
		Dur("grace_period", grace).
		Msg("graceful kill requested")

Contract violations log at panic level through pkg/contract rather than
using Fatal here; Fatal is reserved for startup errors where exiting
immediately is the correct behavior.

# Output Formats

JSON format (production):

	{"level":"info","component":"daemon","worker_id":"...","time":"...","message":"worker announced"}

Console format (development):

	10:30AM INF worker announced component=daemon worker_id=...

# Integration Points

This package is used by every other nodelet package. The daemon initializes
it from pkg/config before any component starts; the CLI initializes it with
console output for human readability.
*/
package log
