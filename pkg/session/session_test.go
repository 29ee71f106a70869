package session

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/goliatone/go-formlet/pkg/capability"
	"github.com/goliatone/go-formlet/pkg/dispatch"
	"github.com/goliatone/go-formlet/pkg/formlet"
	"github.com/goliatone/go-formlet/pkg/layout"
	"github.com/goliatone/go-formlet/pkg/widgets"
)

type recordingHost struct {
	trees []layout.Flat
}

func (h *recordingHost) Publish(tree layout.Flat) {
	h.trees = append(h.trees, tree)
}

type fixture struct {
	sched   *dispatch.Manual
	queue   *dispatch.Queue[string]
	host    *recordingHost
	session *Session
	errs    []error
}

func newFixture(t *testing.T, reg formlet.RebuildContext) *fixture {
	t.Helper()
	if reg == nil {
		reg = widgets.NewDefaultRegistry()
	}
	fx := &fixture{sched: dispatch.NewManual(), host: &recordingHost{}}
	fx.queue = dispatch.New[string](fx.sched, dispatch.WithLogger(hclog.NewNullLogger()))
	s, err := New(reg, fx.queue, fx.host,
		WithLogger(hclog.NewNullLogger()),
		WithErrorHandler(func(err error) { fx.errs = append(fx.errs, err) }),
	)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	fx.session = s
	return fx
}

// sameLeaves compares widget handles by identity.
func sameLeaves(a, b layout.Flat) bool {
	left, right := a.Leaves(), b.Leaves()
	if len(left) != len(right) {
		return false
	}
	for i := range left {
		if left[i] != right[i] {
			return false
		}
	}
	return true
}

func signupFormlet() formlet.Formlet[map[string]any] {
	return formlet.Record(
		formlet.Field("email", formlet.Required(formlet.Text("Email", ""), "")),
		formlet.Field("newsletter", formlet.Toggle("Newsletter", false)),
	)
}

func TestShow_PublishesFlatTree(t *testing.T) {
	fx := newFixture(t, nil)

	if err := Show(fx.session, signupFormlet(), nil); err != nil {
		t.Fatalf("show: %v", err)
	}
	if fx.session.State() != StateBuilt {
		t.Fatalf("expected built state, got %v", fx.session.State())
	}
	if len(fx.host.trees) != 1 {
		t.Fatalf("expected one published tree, got %d", len(fx.host.trees))
	}
	tree := fx.session.Tree()
	if tree.Orientation != layout.LeftToRight || len(tree.Children) != 2 {
		t.Fatalf("unexpected tree %+v", tree)
	}
	if _, ok := tree.Children[0].Widget.(widgets.Text); !ok {
		t.Fatalf("expected text widget first, got %T", tree.Children[0].Widget)
	}
}

func TestShow_NilFormletIsNoop(t *testing.T) {
	fx := newFixture(t, nil)

	if err := Show[int](fx.session, nil, func(int) { t.Fatalf("unexpected submit") }); err != nil {
		t.Fatalf("show nil: %v", err)
	}
	if fx.session.State() != StateEmpty || len(fx.host.trees) != 0 {
		t.Fatalf("nil formlet changed session: state=%v published=%d", fx.session.State(), len(fx.host.trees))
	}

	if err := Show(fx.session, signupFormlet(), nil); err != nil {
		t.Fatalf("show: %v", err)
	}
	before := fx.session.Tree()
	if err := Show[string](fx.session, formlet.Func[string](nil), nil); err != nil {
		t.Fatalf("show nil func: %v", err)
	}
	if fx.session.State() != StateBuilt || len(fx.host.trees) != 1 {
		t.Fatalf("nil formlet changed built session")
	}
	if !sameLeaves(before, fx.session.Tree()) {
		t.Fatalf("tree changed")
	}
}

func TestSubmit_Gating(t *testing.T) {
	fx := newFixture(t, nil)
	var submitted []map[string]any

	if err := Show(fx.session, signupFormlet(), func(v map[string]any) {
		submitted = append(submitted, v)
	}); err != nil {
		t.Fatalf("show: %v", err)
	}

	if fx.session.Submit() {
		t.Fatalf("submit should fail with an empty required field")
	}
	if len(submitted) != 0 || fx.session.State() != StateBuilt || fx.session.LastCollectSucceeded() {
		t.Fatalf("failed submit must not invoke the callback or change state")
	}
	want := []formlet.Failure{{Path: "email", Message: "is required"}}
	if diff := cmp.Diff(want, fx.session.Failures()); diff != "" {
		t.Fatalf("failures mismatch (-want +got):\n%s", diff)
	}

	fx.session.Tree().Leaves()[0].(widgets.Text).SetText("ada@example.com")
	if !fx.session.Submit() {
		t.Fatalf("submit should succeed")
	}
	if fx.session.State() != StateSubmitted || !fx.session.LastCollectSucceeded() {
		t.Fatalf("expected submitted state, got %v", fx.session.State())
	}
	wantValues := []map[string]any{{"email": "ada@example.com", "newsletter": false}}
	if diff := cmp.Diff(wantValues, submitted); diff != "" {
		t.Fatalf("submitted mismatch (-want +got):\n%s", diff)
	}
	if len(fx.session.Failures()) != 0 {
		t.Fatalf("failures should clear after success")
	}
}

func TestSubmit_EmptySession(t *testing.T) {
	fx := newFixture(t, nil)
	if fx.session.Submit() {
		t.Fatalf("empty session cannot submit")
	}
}

func TestRequestRebuild_Coalesces(t *testing.T) {
	fx := newFixture(t, nil)
	if err := Show(fx.session, signupFormlet(), nil); err != nil {
		t.Fatalf("show: %v", err)
	}
	fx.session.Tree().Leaves()[0].(widgets.Text).SetText("grace@example.com")

	for i := 0; i < 5; i++ {
		if err := fx.session.RequestRebuild(); err != nil {
			t.Fatalf("request rebuild: %v", err)
		}
	}
	if len(fx.host.trees) != 1 {
		t.Fatalf("rebuild must be deferred until the flush")
	}
	if fx.sched.Scheduled() != 1 {
		t.Fatalf("expected one scheduled flush, got %d", fx.sched.Scheduled())
	}
	fx.sched.Tick()

	if len(fx.host.trees) != 2 {
		t.Fatalf("expected exactly one rebuild, got %d publishes", len(fx.host.trees)-1)
	}
	text := fx.session.Tree().Leaves()[0].(widgets.Text)
	if text.Text() != "grace@example.com" {
		t.Fatalf("rebuild lost entered text, got %q", text.Text())
	}
	if fx.session.State() != StateBuilt {
		t.Fatalf("rebuild should not change state, got %v", fx.session.State())
	}
}

func TestRequestRebuild_EmptySessionIsNoop(t *testing.T) {
	fx := newFixture(t, nil)
	if err := fx.session.RequestRebuild(); err != nil {
		t.Fatalf("request rebuild: %v", err)
	}
	if fx.sched.Scheduled() != 0 {
		t.Fatalf("empty session should not schedule a rebuild")
	}
}

func TestRequestRebuild_SharedQueue(t *testing.T) {
	fx := newFixture(t, nil)
	other := &recordingHost{}
	second, err := New(widgets.NewDefaultRegistry(), fx.queue, other, WithLogger(hclog.NewNullLogger()))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if fx.session.ID() == second.ID() {
		t.Fatalf("sessions should have distinct identities")
	}

	_ = Show(fx.session, signupFormlet(), nil)
	_ = Show(second, formlet.Text("Name", ""), nil)
	_ = fx.session.RequestRebuild()
	_ = second.RequestRebuild()
	_ = fx.session.RequestRebuild()
	fx.sched.Tick()

	if len(fx.host.trees) != 2 || len(other.trees) != 2 {
		t.Fatalf("each session should rebuild once, got %d and %d", len(fx.host.trees)-1, len(other.trees)-1)
	}
	if fx.queue.Flushes() != 1 {
		t.Fatalf("expected a single flush, got %d", fx.queue.Flushes())
	}
}

func TestRebuildFailure_KeepsPreviousTree(t *testing.T) {
	fx := newFixture(t, nil)
	boom := errors.New("backend gone")
	calls := 0
	flaky := formlet.Func[string](func(ctx formlet.RebuildContext, prev formlet.Form[string]) (formlet.Form[string], error) {
		calls++
		if calls > 1 {
			return nil, boom
		}
		return formlet.Text("Name", "initial").Rebuild(ctx, prev)
	})

	if err := Show(fx.session, flaky, nil); err != nil {
		t.Fatalf("show: %v", err)
	}
	before := fx.session.Tree()
	_ = fx.session.RequestRebuild()
	fx.sched.Tick()

	if len(fx.host.trees) != 1 {
		t.Fatalf("failed rebuild must not publish")
	}
	if !sameLeaves(before, fx.session.Tree()) {
		t.Fatalf("tree changed")
	}
	if len(fx.errs) != 1 || !errors.Is(fx.errs[0], boom) {
		t.Fatalf("expected error handler to receive %v, got %v", boom, fx.errs)
	}
	var evalErr *formlet.EvaluationError
	if !errors.As(fx.errs[0], &evalErr) {
		t.Fatalf("expected EvaluationError, got %T", fx.errs[0])
	}
	if !fx.session.Submit() {
		t.Fatalf("previous form should remain usable")
	}
}

func TestShowFailure_KeepsPreviousSession(t *testing.T) {
	reg := capability.NewRegistry()
	reg.MustRegister(widgets.TagText, func() any { return &widgets.TextBox{} })
	fx := newFixture(t, reg)

	if err := Show(fx.session, formlet.Text("Name", ""), nil); err != nil {
		t.Fatalf("show: %v", err)
	}
	err := Show(fx.session, formlet.Toggle("Agree", false), nil)
	if !errors.Is(err, formlet.ErrCapabilityUnavailable) {
		t.Fatalf("expected capability error, got %v", err)
	}
	if fx.session.State() != StateBuilt || len(fx.host.trees) != 1 {
		t.Fatalf("failed show must leave session untouched")
	}
	if _, ok := fx.session.Tree().Leaves()[0].(widgets.Text); !ok {
		t.Fatalf("previous tree should still be published")
	}
}

func TestReset_CancelsPendingRebuild(t *testing.T) {
	fx := newFixture(t, nil)
	_ = Show(fx.session, signupFormlet(), nil)
	_ = fx.session.RequestRebuild()
	fx.session.Reset()
	fx.sched.Tick()

	if fx.session.State() != StateEmpty {
		t.Fatalf("expected empty state, got %v", fx.session.State())
	}
	if len(fx.host.trees) != 2 {
		t.Fatalf("expected show and reset publishes only, got %d", len(fx.host.trees))
	}
	if got := fx.session.Tree(); len(got.Children) != 0 || got.IsLeaf() {
		t.Fatalf("reset should publish an empty layout, got %+v", got)
	}
	if fx.session.Submit() {
		t.Fatalf("reset session cannot submit")
	}
}

func TestNew_Validation(t *testing.T) {
	queue := dispatch.New[string](dispatch.NewManual())
	if _, err := New(nil, queue, nil); err == nil {
		t.Fatalf("expected error for nil context")
	}
	if _, err := New(widgets.NewDefaultRegistry(), nil, nil); err == nil {
		t.Fatalf("expected error for nil queue")
	}
	id := uuid.MustParse("6f1f0c1e-3b0e-4f5e-9a43-5d1c2a7b8e90")
	s, err := New(widgets.NewDefaultRegistry(), queue, nil, WithID(id), WithOrientation(layout.TopToBottom))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if s.ID() != id {
		t.Fatalf("expected fixed id")
	}
	if s.Tree().Orientation != layout.TopToBottom {
		t.Fatalf("expected empty tree in configured orientation")
	}
}

func TestStateString(t *testing.T) {
	got := []string{StateEmpty.String(), StateBuilt.String(), StateSubmitted.String(), State(9).String()}
	want := []string{"empty", "built", "submitted", "state(9)"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("state names mismatch (-want +got):\n%s", diff)
	}
}
