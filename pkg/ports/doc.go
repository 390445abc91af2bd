/*
Package ports allocates worker RPC ports from the daemon's configured
range.

Each spawn reserves one port which is passed to the worker through its
environment. The reservation is advisory: the worker binds whatever it
can and reports the actual port when it announces, at which point the
daemon keeps the reservation until the worker dies.

# Usage

	alloc, err := ports.NewAllocator(10000, 10999)
	if err != nil {
		return err
	}

	port, err := alloc.Allocate()
	if err != nil {
		return err // range exhausted
	}
	defer alloc.Release(port)

# Integration Points

This package integrates with:

  - pkg/daemon: reserves a port per spawn, releases it on exit
  - pkg/config: WorkerPortMin/WorkerPortMax define the range
*/
package ports
