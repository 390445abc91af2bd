package client

import (
	"context"
	"io"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nodelet/nodelet/pkg/api"
	"github.com/nodelet/nodelet/pkg/config"
	"github.com/nodelet/nodelet/pkg/daemon"
	"github.com/nodelet/nodelet/pkg/log"
	"github.com/nodelet/nodelet/pkg/rpc"
	"github.com/nodelet/nodelet/pkg/rpc/rpctest"
	"github.com/nodelet/nodelet/pkg/types"
	"github.com/nodelet/nodelet/pkg/worker"
)

func TestMain(m *testing.M) {
	log.Init(log.Config{Level: log.ErrorLevel, JSONOutput: true, Output: io.Discard})
	os.Exit(m.Run())
}

func newTestClient(t *testing.T, factory rpc.ClientFactory) (*Client, *daemon.Daemon) {
	t.Helper()
	cfg := config.Default()
	cfg.NodeIP = "127.0.0.1"
	cfg.DataDir = t.TempDir()
	cfg.WorkerCommand = []string{"sleep", "60"}
	cfg.KillGraceSeconds = 1
	cfg.HealthSeconds = 1

	d, err := daemon.New(daemon.Options{Config: cfg, ClientFactory: factory})
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = d.Stop(ctx)
	})

	ts := httptest.NewServer(api.NewServer(d).Handler())
	t.Cleanup(ts.Close)

	c := NewClient(ts.URL)
	t.Cleanup(c.Close)
	return c, d
}

func spawn(t *testing.T, d *daemon.Daemon) *worker.Worker {
	t.Helper()
	w, err := d.SpawnWorker(daemon.SpawnRequest{})
	require.NoError(t, err)
	return w
}

func TestListWorkers(t *testing.T) {
	c, d := newTestClient(t, nil)
	w1 := spawn(t, d)
	w2 := spawn(t, d)

	workers, err := c.ListWorkers()
	require.NoError(t, err)
	require.Len(t, workers, 2)

	ids := map[types.WorkerID]bool{}
	for _, info := range workers {
		ids[info.ID] = true
	}
	assert.True(t, ids[w1.ID()])
	assert.True(t, ids[w2.ID()])
}

func TestKillWorker(t *testing.T) {
	c, d := newTestClient(t, nil)
	w := spawn(t, d)

	require.NoError(t, c.KillWorker(w.ID(), true))
	assert.True(t, w.IsDead())
}

func TestKillWorkerUnknown(t *testing.T) {
	c, _ := newTestClient(t, nil)

	err := c.KillWorker(types.NewWorkerID(), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "daemon: unknown worker")
}

func TestAnnounce(t *testing.T) {
	c, d := newTestClient(t, rpctest.Factory(&rpctest.Fake{}))
	w := spawn(t, d)

	require.NoError(t, c.Announce(w.ID(), w.StartupToken(), w.AssignedPort()))
	assert.Equal(t, w.AssignedPort(), w.Port())
}

func TestAnnounceUnknownToken(t *testing.T) {
	c, d := newTestClient(t, rpctest.Factory(&rpctest.Fake{}))
	w := spawn(t, d)

	err := c.Announce(w.ID(), 999, w.AssignedPort())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown startup token")
}

func TestDisconnectWorker(t *testing.T) {
	c, d := newTestClient(t, nil)
	w := spawn(t, d)
	h := w.Process()
	defer func() { _ = h.Kill() }()

	require.NoError(t, c.DisconnectWorker(w.ID()))

	err := c.DisconnectWorker(w.ID())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown worker")
}

func TestLeaseAndReleaseWorker(t *testing.T) {
	c, d := newTestClient(t, rpctest.Factory(&rpctest.Fake{}))
	w := spawn(t, d)
	require.NoError(t, c.Announce(w.ID(), w.StartupToken(), w.AssignedPort()))

	task := types.NewTaskID()
	info, err := c.LeaseWorker(api.LeaseRequest{
		TaskID:  task,
		JobID:   types.NewJobID(),
		OwnerIP: "10.0.0.9",
	})
	require.NoError(t, err)
	assert.Equal(t, w.ID(), info.ID)
	assert.Equal(t, task, info.TaskID)

	require.NoError(t, c.ReleaseWorker(w.ID(), task))
	assert.True(t, w.AssignedTaskID().IsNil())
}

func TestLeaseWorkerNoneIdle(t *testing.T) {
	c, _ := newTestClient(t, nil)

	_, err := c.LeaseWorker(api.LeaseRequest{
		TaskID: types.NewTaskID(),
		JobID:  types.NewJobID(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no idle worker")
}

func TestNotifyGCSRestarted(t *testing.T) {
	fc := &rpctest.Fake{}
	c, d := newTestClient(t, rpctest.Factory(fc))
	w := spawn(t, d)
	require.NoError(t, c.Announce(w.ID(), w.StartupToken(), w.AssignedPort()))

	n, err := c.NotifyGCSRestarted()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.Eventually(t, func() bool {
		return fc.RestartCount() == 1
	}, 2*time.Second, 5*time.Millisecond)
}

func TestHealth(t *testing.T) {
	c, d := newTestClient(t, nil)
	spawn(t, d)

	resp, err := c.Health()
	require.NoError(t, err)
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, 1, resp.Workers)
	assert.WithinDuration(t, time.Now(), resp.Timestamp, time.Minute)
}

func TestNewClientNormalizesAddress(t *testing.T) {
	assert.Equal(t, "http://127.0.0.1:8400", NewClient("127.0.0.1:8400").baseURL)
	assert.Equal(t, "http://127.0.0.1:8400", NewClient("http://127.0.0.1:8400/").baseURL)
	assert.Equal(t, "https://node:8400", NewClient("https://node:8400").baseURL)
}

func TestUnreachableDaemon(t *testing.T) {
	c := NewClient("127.0.0.1:1")
	defer c.Close()

	_, err := c.ListWorkers()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to reach daemon")
}
