package worker

import (
	"context"
	"time"

	"github.com/nodelet/nodelet/pkg/contract"
	"github.com/nodelet/nodelet/pkg/metrics"
	"github.com/nodelet/nodelet/pkg/rpc"
)

// notifyTimeout bounds a single outbound notification attempt. The calls
// are one-shot and best-effort, so there is no retry beyond this.
const notifyTimeout = 30 * time.Second

// Connect binds the outbound RPC channel using the port the worker
// announced. The port must be positive; an announce that lost its port is
// a protocol bug upstream, not something to limp past.
//
// If a control plane restart notification arrived while the worker was
// still unconnected, Connect replays it now, exactly once.
func (w *Worker) Connect(port int) {
	contract.Checkf(port > 0, "worker %s: connect with invalid port %d", w.id, port)
	w.bind(w.factory(w.ip, port), port)
}

// ConnectClient binds a prebuilt RPC client. Unlike Connect it records no
// negotiated port, so port-gated calls stay unavailable.
func (w *Worker) ConnectClient(client rpc.WorkerClient) {
	contract.Checkf(client != nil, "worker %s: connect with nil client", w.id)
	w.bind(client, 0)
}

func (w *Worker) bind(client rpc.WorkerClient, port int) {
	w.mu.Lock()
	w.client = client
	if port > 0 {
		w.port = port
	}
	replay := w.pendingGCSRestart
	w.pendingGCSRestart = false
	w.mu.Unlock()

	if replay {
		w.logger.Info().Msg("replaying deferred restart notification")
		w.sendGCSRestartNotify(client)
	}
}

// AsyncNotifyGCSRestart tells the worker the cluster control plane came
// back after a restart, so it can re-subscribe and re-push its state. If
// the worker has not connected yet the notification is parked and replayed
// by the next Connect.
func (w *Worker) AsyncNotifyGCSRestart() {
	w.mu.Lock()
	client := w.client
	if client == nil {
		w.pendingGCSRestart = true
	}
	w.mu.Unlock()

	if client == nil {
		w.logger.Debug().Msg("worker not connected, deferring restart notification")
		return
	}
	w.sendGCSRestartNotify(client)
}

func (w *Worker) sendGCSRestartNotify(client rpc.WorkerClient) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		err := client.NotifyGCSRestart(ctx)

		w.disp.Dispatch(func() {
			if err != nil {
				metrics.WorkerNotificationsTotal.WithLabelValues(
					metrics.NotifyGCSRestart, metrics.OutcomeError).Inc()
				w.logger.Error().Err(err).
					Msg("failed to notify worker about control plane restart")
				return
			}
			metrics.WorkerNotificationsTotal.WithLabelValues(
				metrics.NotifyGCSRestart, metrics.OutcomeOK).Inc()
		})
	}()
}

// ActorCallArgWaitComplete tells an actor worker that the arguments it was
// waiting on for call tag are now local. Only meaningful once the worker
// has announced its port; calling earlier is fatal. The send itself is
// best-effort, a failure is logged and dropped.
func (w *Worker) ActorCallArgWaitComplete(tag int64) {
	w.mu.Lock()
	port := w.port
	client := w.client
	w.mu.Unlock()

	contract.Checkf(port > 0,
		"worker %s: arg wait complete before port negotiation", w.id)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		err := client.ArgWaitComplete(ctx, tag, w.id)

		w.disp.Dispatch(func() {
			if err != nil {
				metrics.WorkerNotificationsTotal.WithLabelValues(
					metrics.NotifyArgWait, metrics.OutcomeError).Inc()
				w.logger.Error().Err(err).Int64("tag", tag).
					Msg("failed to send wait complete")
				return
			}
			metrics.WorkerNotificationsTotal.WithLabelValues(
				metrics.NotifyArgWait, metrics.OutcomeOK).Inc()
		})
	}()
}
