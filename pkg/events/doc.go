/*
Package events provides an in-memory event broker for worker lifecycle
notifications.

The broker broadcasts every published event to all subscribers over
buffered channels. Publishing never blocks: the main channel buffers a
burst, and a subscriber whose buffer is full skips the event. Delivery is
best-effort by construction, which suits monitoring and streaming, not
bookkeeping the daemon depends on.

# Event Types

Worker lifecycle:
  - worker.spawned: process started, record created
  - worker.announced: worker reported its RPC port
  - worker.killed: kill protocol initiated (graceful or forced)
  - worker.kill_escalated: grace period expired, force kill sent
  - worker.exited: process exit observed
  - worker.disconnected: worker deregistered
  - worker.orphan_reaped: stale process from a previous daemon run killed

Control plane:
  - gcs.restarted: restart notification fanned out to live workers

# Usage

Creating and starting the broker:

	broker := events.NewBroker()
	broker.Start()
	defer broker.Stop()

Subscribing:

	sub := broker.Subscribe()
	defer broker.Unsubscribe(sub)

	go func() {
		for event := range sub {
			fmt.Printf("%s %s: %s\n", event.Type, event.WorkerID, event.Message)
		}
	}()

Publishing:

	broker.Publish(events.NewEvent(
		events.EventWorkerSpawned, workerID, "spawned pid 4312"))

# Integration Points

This package integrates with:

  - pkg/daemon: publishes lifecycle events as the worker table changes
  - pkg/api: streams events to CLI clients

# Limitations

In-memory only, no persistence or replay, no delivery guarantee, no
topic filtering. Subscribers filter by Type themselves. Anything that
must survive a daemon restart goes through pkg/storage instead.
*/
package events
