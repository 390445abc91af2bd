package health

import (
	"context"
	"time"
)

// CheckType identifies what a checker probes.
type CheckType string

const (
	CheckTypeHTTP    CheckType = "http"
	CheckTypeTCP     CheckType = "tcp"
	CheckTypeProcess CheckType = "process"
)

// Result is the outcome of a single probe.
type Result struct {
	Healthy   bool
	Message   string
	CheckedAt time.Time
	Duration  time.Duration
}

// Checker is a single-shot probe. Checkers carry no state between calls;
// the caller decides what repeated failures mean.
type Checker interface {
	// Check performs the probe and returns the result.
	Check(ctx context.Context) Result

	// Type returns what kind of probe this is.
	Type() CheckType
}

// result builds a Result stamped with the probe's start time.
func result(start time.Time, healthy bool, msg string) Result {
	return Result{
		Healthy:   healthy,
		Message:   msg,
		CheckedAt: start,
		Duration:  time.Since(start),
	}
}
