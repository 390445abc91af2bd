/*
Package contract enforces internal invariants that must never be violated.

A contract violation means the daemon itself is buggy: a worker record was
driven through an illegal state transition (rebinding a process handle,
reassigning a worker to a different job, connecting with a non-positive
port). These are not runtime errors to handle; they are programming errors
to crash on, loudly, before corrupted supervision state can spread.

# Usage

	contract.Checkf(w.proc == nil,
		"process already bound to worker %s", w.id)

Check and Checkf log the violation at panic level through pkg/log and then
panic with the message. Nothing in nodelet recovers from these panics, so
in the daemon they terminate the process after the diagnostic is written.
Tests exercise them with require.Panics.

# What Belongs Here

Only preconditions whose failure indicates daemon-internal misuse. Failures
that depend on the outside world (a worker that died, a notification that
could not be delivered) are ordinary errors or logged warnings, never
contract checks.
*/
package contract
