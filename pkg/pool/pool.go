// Package pool keeps a floor of idle task workers warm so lease requests
// do not stall on process startup.
package pool

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/nodelet/nodelet/pkg/daemon"
	"github.com/nodelet/nodelet/pkg/log"
	"github.com/nodelet/nodelet/pkg/metrics"
	"github.com/nodelet/nodelet/pkg/types"
)

// spawnBurst caps how many workers one reconcile cycle starts. A large
// deficit fills over several cycles instead of forking everything at once.
const spawnBurst = 4

// Pool reconciles the number of idle workers against a configured floor.
type Pool struct {
	daemon   *daemon.Daemon
	min      int
	interval time.Duration
	logger   zerolog.Logger

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// New creates a pool that keeps min idle workers available, checking
// every interval.
func New(d *daemon.Daemon, min int, interval time.Duration) *Pool {
	return &Pool{
		daemon:   d,
		min:      min,
		interval: interval,
		logger:   log.WithComponent("pool"),
		stopCh:   make(chan struct{}),
	}
}

// Start begins the reconcile loop. The first cycle runs immediately so
// the floor is filled at boot, not one interval later.
func (p *Pool) Start() {
	p.wg.Add(1)
	go p.run()
}

// Stop stops the reconcile loop and waits for an in-flight cycle.
func (p *Pool) Stop() {
	close(p.stopCh)
	p.wg.Wait()
}

func (p *Pool) run() {
	defer p.wg.Done()
	p.reconcile()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.reconcile()
		}
	}
}

// reconcile spawns workers until the idle count reaches the floor, at
// most spawnBurst per cycle.
func (p *Pool) reconcile() {
	timer := metrics.NewTimer()
	defer func() {
		timer.ObserveDuration(metrics.PoolReconcileDuration)
		metrics.PoolReconcilesTotal.Inc()
	}()

	idle := 0
	for _, w := range p.daemon.ListWorkers() {
		if countsAsIdle(w) {
			idle++
		}
	}

	deficit := p.min - idle
	if deficit <= 0 {
		return
	}
	if deficit > spawnBurst {
		deficit = spawnBurst
	}

	for i := 0; i < deficit; i++ {
		w, err := p.daemon.SpawnWorker(daemon.SpawnRequest{})
		if err != nil {
			p.logger.Error().Err(err).Msg("failed to spawn pool worker")
			return
		}
		p.logger.Info().
			Str("worker_id", w.ID().String()).
			Int("idle", idle+i+1).
			Int("floor", p.min).
			Msg("spawned pool worker")
	}
}

// countsAsIdle reports whether a worker counts against the floor: a live
// task worker holding no lease. Workers still booting count too, so the
// pool does not double-spawn while announce callbacks are in flight.
func countsAsIdle(w types.WorkerInfo) bool {
	return w.Type == types.WorkerTypeWorker &&
		!w.Dead &&
		w.TaskID.IsNil() &&
		w.ActorID.IsNil()
}
