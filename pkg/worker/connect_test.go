package worker

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nodelet/nodelet/pkg/metrics"
	"github.com/nodelet/nodelet/pkg/rpc"
	"github.com/nodelet/nodelet/pkg/rpc/rpctest"
	"github.com/nodelet/nodelet/pkg/types"
)

func newConnectWorker(t *testing.T, client rpc.WorkerClient) *Worker {
	t.Helper()
	return New(Options{
		ID:            types.NewWorkerID(),
		Language:      types.LanguagePython,
		Type:          types.WorkerTypeWorker,
		IP:            "10.0.0.5",
		ClientFactory: func(ip string, port int) rpc.WorkerClient { return client },
		Dispatcher:    rpc.InlineDispatcher{},
	})
}

func TestConnectRequiresPositivePort(t *testing.T) {
	w := newConnectWorker(t, &rpctest.Fake{})
	require.Panics(t, func() { w.Connect(0) })
	require.Panics(t, func() { w.Connect(-1) })
	assert.Equal(t, 0, w.Port())
}

func TestConnectClientRejectsNil(t *testing.T) {
	w := newConnectWorker(t, &rpctest.Fake{})
	require.Panics(t, func() { w.ConnectClient(nil) })
}

func TestConnectBuildsClientThroughFactory(t *testing.T) {
	fc := &rpctest.Fake{}
	var gotIP string
	var gotPort int
	w := New(Options{
		ID:       types.NewWorkerID(),
		Language: types.LanguagePython,
		Type:     types.WorkerTypeWorker,
		IP:       "10.0.0.5",
		ClientFactory: func(ip string, port int) rpc.WorkerClient {
			gotIP, gotPort = ip, port
			return fc
		},
		Dispatcher: rpc.InlineDispatcher{},
	})

	w.Connect(4400)

	assert.Equal(t, "10.0.0.5", gotIP)
	assert.Equal(t, 4400, gotPort)
	assert.Equal(t, 4400, w.Port())
}

func TestConnectClientRecordsNoPort(t *testing.T) {
	w := newConnectWorker(t, &rpctest.Fake{})

	w.ConnectClient(&rpctest.Fake{})

	assert.Equal(t, 0, w.Port())
}

func TestNotifyGCSRestartWhenConnected(t *testing.T) {
	fc := &rpctest.Fake{}
	w := newConnectWorker(t, fc)
	w.Connect(4400)

	w.AsyncNotifyGCSRestart()

	require.Eventually(t, func() bool {
		return fc.RestartCount() == 1
	}, 2*time.Second, 5*time.Millisecond)
}

func TestNotifyGCSRestartDeferredUntilConnect(t *testing.T) {
	fc := &rpctest.Fake{}
	w := newConnectWorker(t, fc)

	w.AsyncNotifyGCSRestart()

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, fc.RestartCount())

	w.Connect(4400)
	require.Eventually(t, func() bool {
		return fc.RestartCount() == 1
	}, 2*time.Second, 5*time.Millisecond)

	// The pending flag is consumed by the replay. Reconnecting must not
	// resend.
	time.Sleep(50 * time.Millisecond)
	w.Connect(4401)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 1, fc.RestartCount())
}

func TestNotifyGCSRestartDeferredCollapses(t *testing.T) {
	fc := &rpctest.Fake{}
	w := newConnectWorker(t, fc)

	w.AsyncNotifyGCSRestart()
	w.AsyncNotifyGCSRestart()
	w.AsyncNotifyGCSRestart()

	w.Connect(4400)

	require.Eventually(t, func() bool {
		return fc.RestartCount() == 1
	}, 2*time.Second, 5*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 1, fc.RestartCount())
}

func TestNotifyGCSRestartReplayedByConnectClient(t *testing.T) {
	fc := &rpctest.Fake{}
	w := newConnectWorker(t, &rpctest.Fake{})

	w.AsyncNotifyGCSRestart()
	w.ConnectClient(fc)

	require.Eventually(t, func() bool {
		return fc.RestartCount() == 1
	}, 2*time.Second, 5*time.Millisecond)
}

func TestNotifyGCSRestartFailureCounted(t *testing.T) {
	before := testutil.ToFloat64(metrics.WorkerNotificationsTotal.WithLabelValues(
		metrics.NotifyGCSRestart, metrics.OutcomeError))

	fc := &rpctest.Fake{Err: assert.AnError}
	w := newConnectWorker(t, fc)
	w.Connect(4400)

	require.NotPanics(t, func() { w.AsyncNotifyGCSRestart() })

	require.Eventually(t, func() bool {
		cur := testutil.ToFloat64(metrics.WorkerNotificationsTotal.WithLabelValues(
			metrics.NotifyGCSRestart, metrics.OutcomeError))
		return cur == before+1
	}, 2*time.Second, 5*time.Millisecond)
}

func TestArgWaitComplete(t *testing.T) {
	fc := &rpctest.Fake{}
	w := newConnectWorker(t, fc)
	w.Connect(4400)

	w.ActorCallArgWaitComplete(77)

	require.Eventually(t, func() bool {
		return len(fc.WaitCalls()) == 1
	}, 2*time.Second, 5*time.Millisecond)

	call := fc.WaitCalls()[0]
	assert.Equal(t, int64(77), call.Tag)
	assert.Equal(t, w.ID(), call.WorkerID)
}

func TestArgWaitCompleteBeforeConnectPanics(t *testing.T) {
	w := newConnectWorker(t, &rpctest.Fake{})
	require.Panics(t, func() { w.ActorCallArgWaitComplete(1) })
}

func TestArgWaitCompleteAfterConnectClientPanics(t *testing.T) {
	// ConnectClient binds a client but negotiates no port, so port-gated
	// calls stay fatal.
	w := newConnectWorker(t, &rpctest.Fake{})
	w.ConnectClient(&rpctest.Fake{})

	require.Panics(t, func() { w.ActorCallArgWaitComplete(1) })
}

func TestArgWaitCompleteFailureCounted(t *testing.T) {
	before := testutil.ToFloat64(metrics.WorkerNotificationsTotal.WithLabelValues(
		metrics.NotifyArgWait, metrics.OutcomeError))

	fc := &rpctest.Fake{Err: assert.AnError}
	w := newConnectWorker(t, fc)
	w.Connect(4400)

	w.ActorCallArgWaitComplete(5)

	require.Eventually(t, func() bool {
		cur := testutil.ToFloat64(metrics.WorkerNotificationsTotal.WithLabelValues(
			metrics.NotifyArgWait, metrics.OutcomeError))
		return cur == before+1
	}, 2*time.Second, 5*time.Millisecond)
}

func TestWorkerLifecycleScenario(t *testing.T) {
	// End to end: spawn, a control plane restart races the announce, the
	// worker announces, gets leased, then exits gracefully.
	fc := &rpctest.Fake{}
	w := newConnectWorker(t, fc)
	h := newFakeHandle(2222)
	h.dieOnTerminate = true
	w.SetProcess(h)

	// Restart notification arrives before the worker announced.
	w.AsyncNotifyGCSRestart()
	assert.Equal(t, 0, fc.RestartCount())

	// Announce binds the channel and replays the notification.
	w.SetAssignedPort(4500)
	w.Connect(4500)
	require.Eventually(t, func() bool {
		return fc.RestartCount() == 1
	}, 2*time.Second, 5*time.Millisecond)

	// Lease and dispatch.
	w.SetJobID(types.NewJobID())
	w.SetIsGPU(false)
	w.SetIsActorWorker(true)
	w.AssignActorID(types.NewActorID())
	w.AssignTaskID(types.NewTaskID())
	w.ActorCallArgWaitComplete(9)
	require.Eventually(t, func() bool {
		return len(fc.WaitCalls()) == 1
	}, 2*time.Second, 5*time.Millisecond)

	// Graceful shutdown, no escalation needed.
	w.Kill(false)
	assert.True(t, w.IsDead())
	assert.Equal(t, 1, h.terminateCount())
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, h.killCount())
}
