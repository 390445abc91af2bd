package rpc

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Kind classifies an RPC failure so callers can branch without parsing
// message text.
type Kind string

const (
	// KindUnknown is the classification of errors not produced by this
	// package.
	KindUnknown Kind = "unknown"
	// KindInvalid means the request could not be constructed.
	KindInvalid Kind = "invalid"
	// KindUnavailable means the worker endpoint could not be reached.
	KindUnavailable Kind = "unavailable"
	// KindTimeout means the call exceeded its deadline.
	KindTimeout Kind = "timeout"
	// KindCanceled means the caller's context was canceled.
	KindCanceled Kind = "canceled"
	// KindRemote means the worker received the call and rejected it.
	KindRemote Kind = "remote"
)

// Error is the failure type returned by worker RPC calls.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("rpc %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("rpc %s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf extracts the classification from any error, returning KindUnknown
// for errors that did not originate here.
func KindOf(err error) Kind {
	var rerr *Error
	if errors.As(err, &rerr) {
		return rerr.Kind
	}
	return KindUnknown
}

func classify(err error) Kind {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case errors.Is(err, context.Canceled):
		return KindCanceled
	}
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return KindTimeout
	}
	return KindUnavailable
}
