package daemon

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/nodelet/nodelet/pkg/config"
	"github.com/nodelet/nodelet/pkg/events"
	"github.com/nodelet/nodelet/pkg/log"
	"github.com/nodelet/nodelet/pkg/metrics"
	"github.com/nodelet/nodelet/pkg/ports"
	"github.com/nodelet/nodelet/pkg/rpc"
	"github.com/nodelet/nodelet/pkg/scratch"
	"github.com/nodelet/nodelet/pkg/storage"
	"github.com/nodelet/nodelet/pkg/types"
	"github.com/nodelet/nodelet/pkg/worker"
)

// Daemon supervises the worker processes on one node. It owns the worker
// table, spawns processes, correlates their announce callbacks, reaps
// exits, and forwards control plane restart notifications.
type Daemon struct {
	cfg     *config.Config
	table   *Table
	store   storage.Store
	broker  *events.Broker
	alloc   *ports.Allocator
	scratch *scratch.Manager
	factory rpc.ClientFactory
	logger  zerolog.Logger

	// tokenMu serializes startup token allocation; the counter persists
	// across daemon restarts so tokens never repeat on one node.
	tokenMu   sync.Mutex
	nextToken types.StartupToken

	// leaseMu makes candidate selection and assignment one step, so two
	// lease requests cannot grab the same idle worker.
	leaseMu sync.Mutex

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// Options configures a Daemon.
type Options struct {
	// Config is the daemon configuration. Nil means defaults.
	Config *config.Config

	// Store overrides the BoltDB store opened in Config.DataDir. The
	// daemon owns whichever store it ends up with and closes it on Stop.
	Store storage.Store

	// ClientFactory overrides how outbound worker RPC clients are built.
	ClientFactory rpc.ClientFactory
}

// New creates a Daemon: opens the store, sizes the port allocator, and
// loads the startup token counter. Orphan reaping and the supervision
// loop wait for Start.
func New(opts Options) (*Daemon, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}

	store := opts.Store
	if store == nil {
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		var err error
		store, err = storage.NewBoltStore(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("failed to open store: %w", err)
		}
	}

	alloc, err := ports.NewAllocator(cfg.WorkerPortMin, cfg.WorkerPortMax)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	scr, err := scratch.NewManager(filepath.Join(cfg.DataDir, "scratch"))
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	last, err := store.LastStartupToken()
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to load startup token counter: %w", err)
	}

	broker := events.NewBroker()
	broker.Start()

	return &Daemon{
		cfg:       cfg,
		table:     NewTable(),
		store:     store,
		broker:    broker,
		alloc:     alloc,
		scratch:   scr,
		factory:   opts.ClientFactory,
		logger:    log.WithComponent("daemon"),
		nextToken: last,
		stopCh:    make(chan struct{}),
	}, nil
}

// Start reaps workers left behind by a previous daemon instance, sweeps
// their scratch directories, then launches the supervision loop.
func (d *Daemon) Start() error {
	if err := d.reapOrphans(); err != nil {
		return err
	}
	d.sweepScratch()
	d.wg.Add(1)
	go d.supervise()
	return nil
}

// Stop shuts the daemon down. The supervision loop exits, every
// registered worker is killed gracefully, and exits are reaped until ctx
// expires. Workers still running at the deadline are killed outright.
// Only the first call does anything.
func (d *Daemon) Stop(ctx context.Context) error {
	var err error
	d.stopOnce.Do(func() { err = d.shutdown(ctx) })
	return err
}

func (d *Daemon) shutdown(ctx context.Context) error {
	close(d.stopCh)
	d.wg.Wait()

	for _, w := range d.table.List() {
		w.Kill(false)
	}

	stragglers := 0
	for d.table.Len() > 0 {
		select {
		case <-ctx.Done():
			for _, w := range d.table.List() {
				stragglers++
				if h := w.Process(); h != nil {
					_ = h.Kill()
				}
				d.reapExit(w)
			}
		case <-time.After(50 * time.Millisecond):
			d.reapExited()
		}
	}
	if stragglers > 0 {
		d.logger.Warn().Int("workers", stragglers).
			Msg("shutdown deadline reached, force killed remaining workers")
	}

	d.broker.Stop()
	if err := d.store.Close(); err != nil {
		return fmt.Errorf("failed to close store: %w", err)
	}
	return nil
}

// nextStartupToken reserves the next token, persisting the counter before
// the token is handed out.
func (d *Daemon) nextStartupToken() (types.StartupToken, error) {
	d.tokenMu.Lock()
	defer d.tokenMu.Unlock()
	token := d.nextToken + 1
	if err := d.store.PutLastStartupToken(token); err != nil {
		return 0, fmt.Errorf("failed to persist startup token counter: %w", err)
	}
	d.nextToken = token
	return token, nil
}

// Worker returns the registered worker with the given ID, or nil.
func (d *Daemon) Worker(id types.WorkerID) *worker.Worker {
	return d.table.Get(id)
}

// ListWorkers returns snapshots of every registered worker, sorted by ID.
func (d *Daemon) ListWorkers() []types.WorkerInfo {
	ws := d.table.List()
	infos := make([]types.WorkerInfo, 0, len(ws))
	for _, w := range ws {
		infos = append(infos, w.Info())
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos
}

// Events returns the lifecycle event broker.
func (d *Daemon) Events() *events.Broker {
	return d.broker
}

// Stats summarizes the worker table for the metrics collector.
func (d *Daemon) Stats() metrics.Stats {
	stats := metrics.Stats{AliveByType: make(map[string]int)}
	for _, w := range d.table.List() {
		if w.IsDead() {
			continue
		}
		stats.AliveByType[string(w.Type())]++
		if w.IsBlocked() {
			stats.Blocked++
		}
	}
	return stats
}
