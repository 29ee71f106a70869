package dispatch

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/hashicorp/go-hclog"
)

// Action is a deferred operation. A returned error or a panic is reported
// as an *ActionFailure and never stops the rest of the batch.
type Action func() error

// ActionFailure describes one queued action that failed during a flush.
type ActionFailure struct {
	Name  any
	Err   error
	Panic any
}

func (f *ActionFailure) Error() string {
	if f.Panic != nil {
		return fmt.Sprintf("dispatch: action %v panicked: %v", f.Name, f.Panic)
	}
	return fmt.Sprintf("dispatch: action %v: %v", f.Name, f.Err)
}

func (f *ActionFailure) Unwrap() error {
	return f.Err
}

// ErrClosed is returned by Enqueue once the queue has been closed.
var ErrClosed = errors.New("dispatch: queue closed")

type namedEvent[K comparable] struct {
	name   K
	action Action
}

// Option configures a Queue.
type Option func(*options)

type options struct {
	logger    hclog.Logger
	onFailure func(*ActionFailure)
}

// WithLogger sets the logger used to report failed actions.
func WithLogger(logger hclog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithFailureHandler registers a callback invoked for every failed action,
// after it has been logged.
func WithFailureHandler(fn func(*ActionFailure)) Option {
	return func(o *options) {
		o.onFailure = fn
	}
}

// Queue coalesces named actions into at most one flush per scheduling tick.
// Within a flush each name runs once, with the most recently enqueued
// action, in the order the name first appeared in the batch.
//
// Enqueue is safe for concurrent use. Flushes run on the scheduler's owner
// goroutine.
type Queue[K comparable] struct {
	scheduler Scheduler
	logger    hclog.Logger
	onFailure func(*ActionFailure)

	mu      sync.Mutex
	pending []namedEvent[K]
	closed  bool

	scheduled atomic.Bool
	flushes   atomic.Int64
}

// New creates a queue that defers its flushes through scheduler.
func New[K comparable](scheduler Scheduler, opts ...Option) *Queue[K] {
	cfg := options{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = hclog.L().Named("dispatch")
	}
	return &Queue[K]{
		scheduler: scheduler,
		logger:    cfg.logger,
		onFailure: cfg.onFailure,
	}
}

// Enqueue appends action under name and schedules a flush unless one is
// already pending. Nil actions are ignored.
func (q *Queue[K]) Enqueue(name K, action Action) error {
	if action == nil {
		return nil
	}
	if q.scheduler == nil {
		return errors.New("dispatch: scheduler is nil")
	}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrClosed
	}
	q.pending = append(q.pending, namedEvent[K]{name: name, action: action})
	q.mu.Unlock()

	q.schedule()
	return nil
}

// Cancel drops every pending action enqueued under name and reports how
// many were removed.
func (q *Queue[K]) Cancel(name K) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	kept := q.pending[:0]
	removed := 0
	for _, evt := range q.pending {
		if evt.name == name {
			removed++
			continue
		}
		kept = append(kept, evt)
	}
	clear(q.pending[len(kept):])
	q.pending = kept
	return removed
}

// Close discards every pending action. Later Enqueue calls return
// ErrClosed and a flush that is already scheduled runs nothing.
func (q *Queue[K]) Close() {
	q.mu.Lock()
	q.closed = true
	q.pending = nil
	q.mu.Unlock()
}

// Pending reports how many actions wait for the next flush, duplicates
// included.
func (q *Queue[K]) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Scheduled reports whether a flush is scheduled and has not completed.
func (q *Queue[K]) Scheduled() bool {
	return q.scheduled.Load()
}

// Flushes reports how many flushes have run.
func (q *Queue[K]) Flushes() int64 {
	return q.flushes.Load()
}

func (q *Queue[K]) schedule() {
	if q.scheduled.CompareAndSwap(false, true) {
		q.scheduler.Schedule(q.flush)
	}
}

func (q *Queue[K]) flush() {
	defer func() {
		q.scheduled.Store(false)
		if q.Pending() > 0 {
			q.schedule()
		}
	}()
	q.flushes.Add(1)

	q.mu.Lock()
	batch := q.pending
	q.pending = nil
	q.mu.Unlock()

	for _, evt := range coalesce(batch) {
		q.run(evt)
	}
}

// coalesce keeps the last action per name, ordered by the name's first
// appearance in batch.
func coalesce[K comparable](batch []namedEvent[K]) []namedEvent[K] {
	if len(batch) == 0 {
		return nil
	}
	position := make(map[K]int, len(batch))
	out := make([]namedEvent[K], 0, len(batch))
	for _, evt := range batch {
		if idx, seen := position[evt.name]; seen {
			out[idx].action = evt.action
			continue
		}
		position[evt.name] = len(out)
		out = append(out, evt)
	}
	return out
}

func (q *Queue[K]) run(evt namedEvent[K]) {
	failure := invoke(evt)
	if failure == nil {
		return
	}
	q.logger.Error("queued action failed", "name", fmt.Sprint(evt.name), "error", failure)
	if q.onFailure != nil {
		q.onFailure(failure)
	}
}

func invoke[K comparable](evt namedEvent[K]) (failure *ActionFailure) {
	defer func() {
		if r := recover(); r != nil {
			failure = &ActionFailure{Name: evt.name, Panic: r}
		}
	}()
	if err := evt.action(); err != nil {
		return &ActionFailure{Name: evt.name, Err: err}
	}
	return nil
}
