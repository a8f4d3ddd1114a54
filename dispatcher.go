package sdl

import (
	"context"
	"sync/atomic"
)

// DefaultDispatcherDepth is the queue length used when NewDispatcher is
// given a non-positive depth.
const DefaultDispatcherDepth = 64

type callbackCall struct {
	stream     *AudioStream
	cb         AudioStreamCallback
	name       string
	additional int
	total      int
}

// Dispatcher carries audio stream callbacks from the audio thread to an
// application goroutine. The audio thread never blocks on it: when the
// queue is full the call is dropped and counted.
//
// Each queued call re-checks its stream's destroyed state on the receiving
// side before running.
type Dispatcher struct {
	calls   chan callbackCall
	dropped atomic.Uint64
}

// NewDispatcher returns a dispatcher buffering up to depth pending calls.
func NewDispatcher(depth int) *Dispatcher {
	if depth <= 0 {
		depth = DefaultDispatcherDepth
	}
	return &Dispatcher{calls: make(chan callbackCall, depth)}
}

func (d *Dispatcher) post(c callbackCall) bool {
	select {
	case d.calls <- c:
		return true
	default:
		n := d.dropped.Add(1)
		if n == 1 || n%1024 == 0 {
			logger().Warn("audio callback dropped",
				"component", "dispatcher",
				"callback", c.name,
				"dropped", n)
		}
		return false
	}
}

// Run executes queued callbacks until ctx is done.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case c := <-d.calls:
			c.stream.invoke(c.cb, c.name, c.additional, c.total)
		}
	}
}

// Drain executes every queued callback without blocking and returns how
// many were run, including those skipped because their stream was
// destroyed.
func (d *Dispatcher) Drain() int {
	n := 0
	for {
		select {
		case c := <-d.calls:
			c.stream.invoke(c.cb, c.name, c.additional, c.total)
			n++
		default:
			return n
		}
	}
}

// Pending returns the number of queued calls.
func (d *Dispatcher) Pending() int { return len(d.calls) }

// Dropped returns the number of calls discarded because the queue was full.
func (d *Dispatcher) Dropped() uint64 { return d.dropped.Load() }
