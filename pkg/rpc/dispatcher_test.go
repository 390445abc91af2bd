package rpc

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSerialDispatcherPreservesOrder(t *testing.T) {
	d := NewSerialDispatcher()
	d.Start()
	defer d.Stop()

	var (
		wg  sync.WaitGroup
		got []int
	)
	for i := 0; i < 50; i++ {
		i := i
		wg.Add(1)
		d.Dispatch(func() {
			got = append(got, i) // serialized by the dispatch loop
			wg.Done()
		})
	}
	wg.Wait()

	assert.Len(t, got, 50)
	for i, v := range got {
		assert.Equal(t, i, v)
	}
}

func TestSerialDispatcherDispatchNeverBlocksAfterStop(t *testing.T) {
	d := NewSerialDispatcher()
	d.Start()
	d.Stop()

	done := make(chan struct{})
	go func() {
		// The loop may be gone; Dispatch must still return.
		for i := 0; i < 200; i++ {
			d.Dispatch(func() {})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Dispatch blocked after Stop")
	}
}

func TestInlineDispatcherRunsSynchronously(t *testing.T) {
	var ran bool
	InlineDispatcher{}.Dispatch(func() { ran = true })
	assert.True(t, ran)
}
