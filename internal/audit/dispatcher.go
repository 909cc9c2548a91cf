package audit

import (
	"context"
	"sync"
	"sync/atomic"
)

// Config controls dispatcher buffering behavior.
type Config struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// envelope carries an event together with the request context it was
// emitted under, detached from the request's cancellation.
type envelope struct {
	ctx   context.Context
	event Event
}

// Dispatcher hands flow events to a sink on a single goroutine, so a slow
// sink never holds up a submission unless DropIfFull is off.
type Dispatcher struct {
	cfg  Config
	sink Sink

	queue chan envelope
	stop  chan struct{}
	wg    sync.WaitGroup

	dropped   atomic.Uint64
	delivered atomic.Uint64
	closed    atomic.Bool
	closeOnce sync.Once
}

// NewDispatcher starts a dispatcher, or returns nil when auditing is off.
// A nil *Dispatcher accepts and ignores every call.
func NewDispatcher(cfg Config, sink Sink) *Dispatcher {
	if !cfg.Enabled {
		return nil
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1
	}
	if sink == nil {
		sink = NoOpSink{}
	}

	d := &Dispatcher{
		cfg:   cfg,
		sink:  sink,
		queue: make(chan envelope, cfg.BufferSize),
		stop:  make(chan struct{}),
	}
	d.wg.Add(1)
	go d.loop()
	return d
}

func (d *Dispatcher) loop() {
	defer d.wg.Done()
	for {
		select {
		case env := <-d.queue:
			d.deliver(env)
		case <-d.stop:
			d.drain()
			return
		}
	}
}

func (d *Dispatcher) drain() {
	for {
		select {
		case env := <-d.queue:
			d.deliver(env)
		default:
			return
		}
	}
}

func (d *Dispatcher) deliver(env envelope) {
	d.sink.Emit(env.ctx, env.event)
	d.delivered.Add(1)
}

// Emit queues event. With DropIfFull a full queue drops the event and
// counts it; otherwise Emit waits for room until ctx is done.
func (d *Dispatcher) Emit(ctx context.Context, event Event) {
	if d == nil || d.closed.Load() {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	env := envelope{ctx: context.WithoutCancel(ctx), event: event}

	if d.cfg.DropIfFull {
		select {
		case d.queue <- env:
		case <-d.stop:
		default:
			d.dropped.Add(1)
		}
		return
	}

	select {
	case d.queue <- env:
	case <-ctx.Done():
		d.dropped.Add(1)
	case <-d.stop:
	}
}

// Close stops accepting events and returns once the queue is drained.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.closeOnce.Do(func() {
		d.closed.Store(true)
		close(d.stop)
		d.wg.Wait()
	})
}

// Dropped reports events lost to a full queue or a canceled emitter.
func (d *Dispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}

// Delivered reports events handed to the sink.
func (d *Dispatcher) Delivered() uint64 {
	if d == nil {
		return 0
	}
	return d.delivered.Load()
}
