// Package rpctest provides a recording WorkerClient fake for tests.
package rpctest

import (
	"context"
	"sync"

	"github.com/nodelet/nodelet/pkg/rpc"
	"github.com/nodelet/nodelet/pkg/types"
)

// WaitCall is one recorded ArgWaitComplete invocation.
type WaitCall struct {
	Tag      int64
	WorkerID types.WorkerID
}

// Fake records outbound worker notifications. The zero value is usable;
// set Err to make every call fail.
type Fake struct {
	Err error

	mu       sync.Mutex
	restarts int
	waits    []WaitCall
}

var _ rpc.WorkerClient = (*Fake)(nil)

func (f *Fake) NotifyGCSRestart(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.restarts++
	return f.Err
}

func (f *Fake) ArgWaitComplete(ctx context.Context, tag int64, id types.WorkerID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.waits = append(f.waits, WaitCall{Tag: tag, WorkerID: id})
	return f.Err
}

// RestartCount returns how many restart notifications were received.
func (f *Fake) RestartCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.restarts
}

// WaitCalls returns the recorded wait-complete calls in order.
func (f *Fake) WaitCalls() []WaitCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]WaitCall, len(f.waits))
	copy(out, f.waits)
	return out
}

// Factory returns a ClientFactory that hands every worker the same fake,
// ignoring the address.
func Factory(f *Fake) rpc.ClientFactory {
	return func(ip string, port int) rpc.WorkerClient { return f }
}
