package session

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/goliatone/go-formlet/pkg/dispatch"
	"github.com/goliatone/go-formlet/pkg/formlet"
	"github.com/goliatone/go-formlet/pkg/layout"
)

// State is the lifecycle position of a Session.
type State int

const (
	// StateEmpty means no formlet is shown.
	StateEmpty State = iota
	// StateBuilt means a form is live and accepting input.
	StateBuilt
	// StateSubmitted means the last Submit collected a value and handed it
	// to the submit callback.
	StateSubmitted
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateBuilt:
		return "built"
	case StateSubmitted:
		return "submitted"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Host materialises flat trees published by a session.
type Host interface {
	Publish(tree layout.Flat)
}

// HostFunc adapts a function into a Host.
type HostFunc func(tree layout.Flat)

// Publish calls fn(tree).
func (fn HostFunc) Publish(tree layout.Flat) {
	fn(tree)
}

// rebuildEventPrefix namespaces the dispatch key of every session.
const rebuildEventPrefix = "rebuild:"

// Session owns one live formlet and its current form generation. All
// methods must be called from the goroutine that runs the queue's
// scheduler; the session holds no lock of its own.
type Session struct {
	id          uuid.UUID
	event       string
	ctx         formlet.RebuildContext
	queue       *dispatch.Queue[string]
	host        Host
	logger      hclog.Logger
	orientation layout.Orientation
	onError     ErrorHandler

	live     holder
	state    State
	tree     layout.Flat
	lastOK   bool
	failures []formlet.Failure
}

// New creates an empty session. ctx supplies widget capabilities to every
// rebuild and queue coalesces RequestRebuild calls; both are required. A nil
// host discards published trees.
func New(ctx formlet.RebuildContext, queue *dispatch.Queue[string], host Host, opts ...Option) (*Session, error) {
	if ctx == nil {
		return nil, errors.New("session: rebuild context is nil")
	}
	if queue == nil {
		return nil, errors.New("session: dispatch queue is nil")
	}
	if host == nil {
		host = HostFunc(func(layout.Flat) {})
	}

	s := &Session{
		ctx:         ctx,
		queue:       queue,
		host:        host,
		orientation: layout.DefaultOrientation,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(s)
	}
	s.applyDefaults()
	s.tree = layout.Flatten(s.orientation, nil)
	return s, nil
}

func (s *Session) applyDefaults() {
	if s.id == uuid.Nil {
		s.id = uuid.New()
	}
	s.event = rebuildEventPrefix + s.id.String()
	if s.logger == nil {
		s.logger = hclog.L().Named("session")
	}
	s.logger = s.logger.With("session", s.id.String())
}

// Show replaces the live formlet with f and immediately builds, renders and
// publishes its first generation. A nil f is a no-op. When the first build
// fails the previous formlet, form and tree stay in place and the
// *formlet.EvaluationError is returned. A nil onSubmit is treated as a no-op.
func Show[T any](s *Session, f formlet.Formlet[T], onSubmit func(T)) error {
	if s == nil {
		return errors.New("session: session is nil")
	}
	if isNilFormlet(f) {
		s.logger.Debug("show ignored: formlet is nil")
		return nil
	}
	if onSubmit == nil {
		onSubmit = func(T) {}
	}

	next := &typedHolder[T]{formlet: f, onSubmit: onSubmit}
	node, err := next.rebuild(s.ctx, s.orientation)
	if err != nil {
		s.logger.Warn("show failed, keeping previous form", "error", err)
		return err
	}

	s.queue.Cancel(s.event)
	s.live = next
	s.state = StateBuilt
	s.lastOK = false
	s.failures = nil
	s.publish(node)
	s.logger.Debug("form shown", "leaves", len(s.tree.Leaves()))
	return nil
}

func isNilFormlet[T any](f formlet.Formlet[T]) bool {
	if f == nil {
		return true
	}
	if fn, ok := f.(formlet.Func[T]); ok && fn == nil {
		return true
	}
	return false
}

// RequestRebuild schedules a rebuild of the live form on the next flush of
// the queue. Requests issued before that flush collapse into one rebuild. It
// does nothing while the session is empty.
func (s *Session) RequestRebuild() error {
	if s.state == StateEmpty || s.live == nil {
		return nil
	}
	if err := s.queue.Enqueue(s.event, s.rebuildNow); err != nil {
		return fmt.Errorf("session: request rebuild: %w", err)
	}
	return nil
}

// rebuildNow runs as a queued action. A failed rebuild leaves the published
// tree untouched and is reported rather than returned, so the queue does not
// log it a second time.
func (s *Session) rebuildNow() error {
	if s.live == nil {
		return nil
	}
	node, err := s.live.rebuild(s.ctx, s.orientation)
	if err != nil {
		s.logger.Warn("rebuild failed, keeping previous form", "error", err)
		if s.onError != nil {
			s.onError(err)
		}
		return nil
	}
	s.publish(node)
	s.logger.Trace("form rebuilt")
	return nil
}

// Submit collects the live form. With validation failures it returns false,
// records them in Failures and leaves the state unchanged. Otherwise it
// hands the value to the submit callback once, moves to StateSubmitted and
// returns true. Submitting an empty session returns false.
func (s *Session) Submit() bool {
	if s.live == nil {
		s.lastOK = false
		return false
	}
	failures, ok := s.live.submit()
	s.lastOK = ok
	if !ok {
		s.failures = failures
		s.logger.Debug("submit rejected", "failures", len(failures))
		return false
	}
	s.failures = nil
	s.state = StateSubmitted
	s.logger.Debug("form submitted")
	return true
}

// Reset drops the live formlet and form, cancels a pending rebuild and
// publishes an empty layout.
func (s *Session) Reset() {
	s.queue.Cancel(s.event)
	s.live = nil
	s.state = StateEmpty
	s.lastOK = false
	s.failures = nil
	s.publish(nil)
	s.logger.Debug("session reset")
}

// ID returns the session identity.
func (s *Session) ID() uuid.UUID { return s.id }

// State returns the current lifecycle state.
func (s *Session) State() State { return s.state }

// Tree returns the last published flat tree.
func (s *Session) Tree() layout.Flat { return s.tree }

// LastCollectSucceeded reports whether the most recent Submit collected a
// value.
func (s *Session) LastCollectSucceeded() bool { return s.lastOK }

// Failures returns the validation failures of the most recent rejected
// Submit.
func (s *Session) Failures() []formlet.Failure {
	return append([]formlet.Failure(nil), s.failures...)
}

func (s *Session) publish(node *layout.Node) {
	s.tree = layout.Flatten(s.orientation, node)
	s.host.Publish(s.tree)
}

// holder erases the value type of the live formlet.
type holder interface {
	rebuild(ctx formlet.RebuildContext, orientation layout.Orientation) (*layout.Node, error)
	submit() ([]formlet.Failure, bool)
}

type typedHolder[T any] struct {
	formlet  formlet.Formlet[T]
	form     formlet.Form[T]
	onSubmit func(T)
}

// rebuild commits the next generation only once it has been built and
// rendered.
func (h *typedHolder[T]) rebuild(ctx formlet.RebuildContext, orientation layout.Orientation) (*layout.Node, error) {
	next, err := formlet.Rebuild(h.formlet, h.form, ctx)
	if err != nil {
		return nil, err
	}
	node := formlet.Render(next, formlet.NewRenderContext(orientation))
	h.form = next
	return node, nil
}

func (h *typedHolder[T]) submit() ([]formlet.Failure, bool) {
	res := formlet.Collect(h.form)
	if !res.OK() {
		return res.Failures, false
	}
	h.onSubmit(res.Value)
	return nil, true
}
