package rpc

// Dispatcher drives RPC completion callbacks. The daemon owns one and
// worker records only reference it, so callback execution context is
// decided in one place.
type Dispatcher interface {
	Dispatch(fn func())
}

// SerialDispatcher runs callbacks one at a time in submission order on a
// single goroutine, so completion handlers never race each other.
type SerialDispatcher struct {
	fnCh   chan func()
	stopCh chan struct{}
}

// NewSerialDispatcher creates a stopped dispatcher; call Start to begin
// draining callbacks.
func NewSerialDispatcher() *SerialDispatcher {
	return &SerialDispatcher{
		fnCh:   make(chan func(), 100), // Buffer up to 100 callbacks
		stopCh: make(chan struct{}),
	}
}

// Start begins the dispatch loop.
func (d *SerialDispatcher) Start() {
	go d.run()
}

// Stop stops the dispatch loop. Pending callbacks are dropped.
func (d *SerialDispatcher) Stop() {
	close(d.stopCh)
}

// Dispatch enqueues a callback. Dispatching after Stop is a no-op.
func (d *SerialDispatcher) Dispatch(fn func()) {
	select {
	case d.fnCh <- fn:
	case <-d.stopCh:
	}
}

func (d *SerialDispatcher) run() {
	for {
		select {
		case fn := <-d.fnCh:
			fn()
		case <-d.stopCh:
			return
		}
	}
}

// InlineDispatcher runs callbacks synchronously on the caller's goroutine.
// Tests use it to make completion order deterministic.
type InlineDispatcher struct{}

// Dispatch implements Dispatcher.
func (InlineDispatcher) Dispatch(fn func()) { fn() }
