/*
Package client provides a Go client library for the nodelet HTTP API.

The client package wraps the daemon's v1 REST surface with a convenient,
idiomatic Go interface. It handles request encoding, response decoding,
per-call timeouts, and turns the daemon's error envelopes into plain Go
errors.

# Architecture

The client provides a high-level interface to the daemon's API:

	┌──────────────────── APPLICATION CODE ──────────────────────┐
	│                                                             │
	│  import "github.com/nodelet/nodelet/pkg/client"             │
	│                                                             │
	│  c := client.NewClient("127.0.0.1:6790")                    │
	│  workers, err := c.ListWorkers()                            │
	│                                                             │
	└──────────────────┬──────────────────────────────────────────┘
	                   │
	┌──────────────────▼──── pkg/client ──────────────────────────┐
	│                                                             │
	│  Client wrapper                                             │
	│  - Typed methods per operation                              │
	│  - JSON request/response handling                           │
	│  - 10s timeout per call                                     │
	│  - Error envelope unwrapping                                │
	│                                                             │
	└──────────────────┬──────────────────────────────────────────┘
	                   │ HTTP (port 6790)
	                   ▼
	           nodelet API server

# Usage

Creating a client:

	c := client.NewClient("192.168.1.10:6790")
	defer c.Close()

Listing workers:

	workers, err := c.ListWorkers()
	if err != nil {
		log.Fatal(err)
	}
	for _, w := range workers {
		fmt.Printf("%s pid=%d port=%d\n", w.ID, w.PID, w.Port)
	}

Killing a worker:

	// Graceful: the worker gets the configured grace period.
	err := c.KillWorker(id, false)

	// Forceful: SIGKILL immediately.
	err = c.KillWorker(id, true)

Announcing a worker (called by worker runtimes at boot):

	err := c.Announce(workerID, startupToken, listenPort)

Leasing a worker for a task and returning it afterwards:

	info, err := c.LeaseWorker(api.LeaseRequest{
		TaskID: taskID,
		JobID:  jobID,
	})
	...
	err = c.ReleaseWorker(info.ID, taskID)

# Error Handling

Non-2xx responses carry a JSON error envelope which the client surfaces as
an error prefixed with "daemon:". Transport failures are wrapped with
"failed to reach daemon".
*/
package client
