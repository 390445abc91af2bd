/*
Package rpc provides the outbound channel from the daemon to its workers.

Each worker runtime serves a small JSON-over-HTTP endpoint on the port it
announces at startup. The daemon pushes advisory notifications to it
through the WorkerClient interface: a global-control-service restart
notice, and argument-wait completions for blocked actor calls. Both calls
are fire-and-forget bookkeeping; the daemon logs failures and never
escalates them.

# Client Construction

Clients are built lazily, only once a worker has announced its port. The
daemon installs NewHTTPClient as its ClientFactory; tests install fakes so
the notification protocol can be exercised without a live network:

	factory := func(ip string, port int) rpc.WorkerClient {
		return &fakeClient{}
	}

# Error Classification

Failures carry a machine-checkable Kind (unavailable, timeout, canceled,
remote, invalid) so callers can branch without parsing message text:

	if rpc.KindOf(err) == rpc.KindUnavailable {
		// worker likely already exiting; drop the notification
	}

# Completion Dispatch

RPC completions are driven through a Dispatcher supplied by the daemon.
SerialDispatcher drains callbacks on one goroutine in submission order,
which keeps completion handlers from racing each other; InlineDispatcher
runs them synchronously for deterministic tests.

# Integration Points

  - pkg/worker: binds a WorkerClient on Connect and routes notifications
  - pkg/daemon: owns the SerialDispatcher and the ClientFactory
*/
package rpc
