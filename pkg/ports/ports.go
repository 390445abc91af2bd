package ports

import (
	"fmt"
	"sync"
)

// Allocator hands out worker RPC ports from a fixed range. The daemon
// suggests one port per spawn; the worker may bind a different one and
// report it at announce time, so allocations here are advisory
// reservations, not bindings.
type Allocator struct {
	mu    sync.Mutex
	min   int
	max   int
	next  int
	inUse map[int]bool
}

// NewAllocator creates an allocator over [min, max] inclusive.
func NewAllocator(min, max int) (*Allocator, error) {
	if min <= 0 || max > 65535 || min > max {
		return nil, fmt.Errorf("invalid port range %d-%d", min, max)
	}
	return &Allocator{
		min:   min,
		max:   max,
		next:  min,
		inUse: make(map[int]bool),
	}, nil
}

// Allocate reserves the next free port in the range. It scans round-robin
// from the last handout so released ports are not immediately recycled.
func (a *Allocator) Allocate() (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	size := a.max - a.min + 1
	for i := 0; i < size; i++ {
		port := a.next
		a.next++
		if a.next > a.max {
			a.next = a.min
		}
		if !a.inUse[port] {
			a.inUse[port] = true
			return port, nil
		}
	}
	return 0, fmt.Errorf("port range %d-%d exhausted", a.min, a.max)
}

// Release returns a port to the pool. Releasing a port outside the range
// or one that was never allocated is a no-op.
func (a *Allocator) Release(port int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.inUse, port)
}

// InUse returns the number of reserved ports.
func (a *Allocator) InUse() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.inUse)
}
