package daemon

import "errors"

// Sentinel errors the API layer branches on for response status codes.
var (
	ErrUnknownWorker = errors.New("unknown worker")
	ErrUnknownToken  = errors.New("unknown startup token")
	ErrWorkerDead    = errors.New("worker is already terminating")
	ErrNoIdleWorker  = errors.New("no idle worker available")
)
