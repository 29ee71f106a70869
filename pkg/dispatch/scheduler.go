package dispatch

import (
	"context"
	"sync"
)

// Scheduler defers a callback to the owner's next scheduling tick. The
// callback must eventually run exactly once on the owner goroutine.
type Scheduler interface {
	Schedule(fn func())
}

// SchedulerFunc adapts a function into a Scheduler.
type SchedulerFunc func(fn func())

// Schedule calls f(fn).
func (f SchedulerFunc) Schedule(fn func()) {
	f(fn)
}

// Loop is a serial event loop: callbacks posted from any goroutine run one
// at a time on the goroutine that called Run, so they may share state
// without synchronisation. Schedule never blocks, including when it is
// called from a callback running on the loop itself.
type Loop struct {
	mu    sync.Mutex
	queue []func()
	wake  chan struct{}
}

// NewLoop creates a loop. Callbacks run once Run or Drain is called.
func NewLoop() *Loop {
	return &Loop{wake: make(chan struct{}, 1)}
}

// Schedule posts fn to the loop.
func (l *Loop) Schedule(fn func()) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

func (l *Loop) next() (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.queue) == 0 {
		return nil, false
	}
	fn := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	return fn, true
}

// Run executes posted callbacks until ctx is cancelled. Callbacks still
// queued when ctx ends are dropped.
func (l *Loop) Run(ctx context.Context) error {
	for {
		for {
			if err := ctx.Err(); err != nil {
				return err
			}
			fn, ok := l.next()
			if !ok {
				break
			}
			fn()
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}

// Drain runs every callback currently queued, including ones posted while
// draining, and returns how many ran. Hosts without a long-lived loop
// goroutine call it once per tick.
func (l *Loop) Drain() int {
	ran := 0
	for {
		fn, ok := l.next()
		if !ok {
			return ran
		}
		fn()
		ran++
	}
}

// Manual holds scheduled callbacks until Tick is called. Schedule is safe
// for concurrent use; Tick must be called from the owner goroutine.
type Manual struct {
	mu      sync.Mutex
	pending []func()
	total   int
}

// NewManual creates an empty manual scheduler.
func NewManual() *Manual {
	return &Manual{}
}

// Schedule records fn for the next Tick.
func (m *Manual) Schedule(fn func()) {
	if fn == nil {
		return
	}
	m.mu.Lock()
	m.pending = append(m.pending, fn)
	m.total++
	m.mu.Unlock()
}

// Tick runs the callbacks scheduled before the call and returns how many
// ran. Callbacks scheduled while ticking wait for the next Tick.
func (m *Manual) Tick() int {
	m.mu.Lock()
	batch := m.pending
	m.pending = nil
	m.mu.Unlock()

	for _, fn := range batch {
		fn()
	}
	return len(batch)
}

// Pending reports how many callbacks wait for the next Tick.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

// Scheduled reports how many callbacks were ever scheduled.
func (m *Manual) Scheduled() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.total
}
