package dispatch

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/hashicorp/go-hclog"
)

func testLogger(buf *bytes.Buffer) hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:   "dispatch-test",
		Level:  hclog.Trace,
		Output: buf,
	})
}

func record(log *[]string, label string) Action {
	return func() error {
		*log = append(*log, label)
		return nil
	}
}

func TestQueue_CoalescesByNameInFirstSeenOrder(t *testing.T) {
	sched := NewManual()
	q := New[string](sched, WithLogger(hclog.NewNullLogger()))
	var ran []string

	_ = q.Enqueue("A", record(&ran, "a1"))
	_ = q.Enqueue("B", record(&ran, "b1"))
	_ = q.Enqueue("A", record(&ran, "a2"))

	if sched.Tick() != 1 {
		t.Fatalf("expected a single scheduled flush")
	}
	if diff := cmp.Diff([]string{"a2", "b1"}, ran); diff != "" {
		t.Fatalf("executed actions mismatch (-want +got):\n%s", diff)
	}
}

func TestQueue_SecondNameOrderFollowsFirstAppearance(t *testing.T) {
	sched := NewManual()
	q := New[string](sched, WithLogger(hclog.NewNullLogger()))
	var ran []string

	_ = q.Enqueue("B", record(&ran, "b1"))
	_ = q.Enqueue("A", record(&ran, "a1"))
	_ = q.Enqueue("C", record(&ran, "c1"))
	_ = q.Enqueue("B", record(&ran, "b2"))
	_ = q.Enqueue("A", record(&ran, "a2"))
	sched.Tick()

	if diff := cmp.Diff([]string{"b2", "a2", "c1"}, ran); diff != "" {
		t.Fatalf("executed actions mismatch (-want +got):\n%s", diff)
	}
}

func TestQueue_ConcurrentEnqueueSchedulesOneFlush(t *testing.T) {
	sched := NewManual()
	q := New[int](sched, WithLogger(hclog.NewNullLogger()))

	const producers = 32
	var mu sync.Mutex
	ran := map[int]int{}
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < producers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_ = q.Enqueue(i%8, func() error {
				mu.Lock()
				ran[i%8]++
				mu.Unlock()
				return nil
			})
		}(i)
	}
	close(start)
	wg.Wait()

	if got := sched.Scheduled(); got != 1 {
		t.Fatalf("expected exactly one scheduled flush, got %d", got)
	}
	if !q.Scheduled() {
		t.Fatalf("flag should be set until the flush runs")
	}
	sched.Tick()

	if len(ran) != 8 {
		t.Fatalf("expected 8 distinct names to run, got %v", ran)
	}
	for name, n := range ran {
		if n != 1 {
			t.Fatalf("name %d ran %d times", name, n)
		}
	}
	if q.Scheduled() {
		t.Fatalf("flag should reset after flush")
	}

	_ = q.Enqueue(99, func() error { return nil })
	if got := sched.Scheduled(); got != 2 {
		t.Fatalf("expected a new flush after reset, got %d scheduled", got)
	}
	if q.Flushes() != 1 {
		t.Fatalf("expected one completed flush, got %d", q.Flushes())
	}
}

func TestQueue_FailuresAreIsolated(t *testing.T) {
	sched := NewManual()
	var buf bytes.Buffer
	var failures []*ActionFailure
	q := New[string](sched,
		WithLogger(testLogger(&buf)),
		WithFailureHandler(func(f *ActionFailure) { failures = append(failures, f) }),
	)
	var ran []string
	boom := errors.New("boom")

	_ = q.Enqueue("first", record(&ran, "first"))
	_ = q.Enqueue("panics", func() error { panic("kaboom") })
	_ = q.Enqueue("errors", func() error { return boom })
	_ = q.Enqueue("last", record(&ran, "last"))
	sched.Tick()

	if diff := cmp.Diff([]string{"first", "last"}, ran); diff != "" {
		t.Fatalf("executed actions mismatch (-want +got):\n%s", diff)
	}
	if len(failures) != 2 {
		t.Fatalf("expected two failures, got %d", len(failures))
	}
	if failures[0].Name != "panics" || failures[0].Panic != "kaboom" {
		t.Fatalf("unexpected panic failure %+v", failures[0])
	}
	if !errors.Is(failures[1], boom) {
		t.Fatalf("expected wrapped error, got %v", failures[1])
	}
	if q.Scheduled() {
		t.Fatalf("failed actions must not leave the flush flag set")
	}
	if !strings.Contains(buf.String(), "queued action failed") {
		t.Fatalf("expected failure to be logged, got %q", buf.String())
	}

	_ = q.Enqueue("again", record(&ran, "again"))
	sched.Tick()
	if ran[len(ran)-1] != "again" {
		t.Fatalf("queue should keep working after failures")
	}
}

func TestQueue_EnqueueDuringFlushSchedulesFollowUp(t *testing.T) {
	sched := NewManual()
	q := New[string](sched, WithLogger(hclog.NewNullLogger()))
	var ran []string

	_ = q.Enqueue("outer", func() error {
		ran = append(ran, "outer")
		return q.Enqueue("inner", record(&ran, "inner"))
	})
	sched.Tick()

	if diff := cmp.Diff([]string{"outer"}, ran); diff != "" {
		t.Fatalf("first tick mismatch (-want +got):\n%s", diff)
	}
	if sched.Pending() != 1 {
		t.Fatalf("expected follow-up flush to be scheduled, pending=%d", sched.Pending())
	}
	sched.Tick()
	if diff := cmp.Diff([]string{"outer", "inner"}, ran); diff != "" {
		t.Fatalf("second tick mismatch (-want +got):\n%s", diff)
	}
}

func TestQueue_CancelAndClose(t *testing.T) {
	sched := NewManual()
	q := New[string](sched, WithLogger(hclog.NewNullLogger()))
	var ran []string

	_ = q.Enqueue("keep", record(&ran, "keep"))
	_ = q.Enqueue("drop", record(&ran, "drop"))
	_ = q.Enqueue("drop", record(&ran, "drop2"))
	if removed := q.Cancel("drop"); removed != 2 {
		t.Fatalf("expected two cancelled entries, got %d", removed)
	}
	if q.Pending() != 1 {
		t.Fatalf("expected one pending entry, got %d", q.Pending())
	}
	sched.Tick()
	if diff := cmp.Diff([]string{"keep"}, ran); diff != "" {
		t.Fatalf("executed actions mismatch (-want +got):\n%s", diff)
	}

	_ = q.Enqueue("discarded", record(&ran, "discarded"))
	q.Close()
	sched.Tick()
	if len(ran) != 1 {
		t.Fatalf("closed queue should discard pending actions, ran %v", ran)
	}
	if err := q.Enqueue("late", record(&ran, "late")); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestQueue_NilActionIgnored(t *testing.T) {
	sched := NewManual()
	q := New[string](sched, WithLogger(hclog.NewNullLogger()))
	if err := q.Enqueue("x", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sched.Scheduled() != 0 || q.Pending() != 0 {
		t.Fatalf("nil action should not schedule a flush")
	}
}

func TestQueue_WithLoopScheduler(t *testing.T) {
	loop := NewLoop()
	q := New[string](loop, WithLogger(hclog.NewNullLogger()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()

	results := make(chan string, 4)
	_ = q.Enqueue("a", func() error { results <- "a1"; return nil })
	_ = q.Enqueue("a", func() error { results <- "a2"; return nil })

	select {
	case got := <-results:
		if got != "a2" && got != "a1" {
			t.Fatalf("unexpected result %q", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("loop did not flush the queue")
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestLoop_ScheduleFromLoopNeverBlocks(t *testing.T) {
	loop := NewLoop()
	const posted = 1000
	loop.Schedule(func() {
		for i := 0; i < posted; i++ {
			loop.Schedule(func() {})
		}
	})

	done := make(chan int, 1)
	go func() { done <- loop.Drain() }()
	select {
	case n := <-done:
		if n != posted+1 {
			t.Fatalf("expected %d callbacks, got %d", posted+1, n)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("scheduling from a loop callback blocked")
	}
}

func TestLoop_Drain(t *testing.T) {
	loop := NewLoop()
	var ran []int
	loop.Schedule(func() {
		ran = append(ran, 1)
		loop.Schedule(func() { ran = append(ran, 2) })
	})
	if n := loop.Drain(); n != 2 {
		t.Fatalf("expected two callbacks, got %d", n)
	}
	if diff := cmp.Diff([]int{1, 2}, ran); diff != "" {
		t.Fatalf("drain order mismatch (-want +got):\n%s", diff)
	}
}
