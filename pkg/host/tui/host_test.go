package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/hashicorp/go-hclog"

	"github.com/goliatone/go-formlet/pkg/dispatch"
	"github.com/goliatone/go-formlet/pkg/formlet"
	"github.com/goliatone/go-formlet/pkg/session"
	"github.com/goliatone/go-formlet/pkg/widgets"
)

type stubDriver struct {
	inputs       []string
	selectIdx    []int
	confirm      []bool
	infoMessages []string
	prompts      []string
	inputPos     int
	selectPos    int
	confirmPos   int
	inputErr     error
}

func (s *stubDriver) Text(_ context.Context, p TextPrompt) (string, error) {
	s.prompts = append(s.prompts, p.Label+"="+p.Default)
	if s.inputErr != nil {
		return "", s.inputErr
	}
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Toggle(_ context.Context, p TogglePrompt) (bool, error) {
	s.prompts = append(s.prompts, p.Label)
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Choice(_ context.Context, p ChoicePrompt) (int, error) {
	s.prompts = append(s.prompts, p.Label+"="+strings.Join(p.Options, "|"))
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) Note(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

type harness struct {
	host    *Host
	sched   *dispatch.Manual
	session *session.Session
	got     []map[string]any
}

func newHarness(t *testing.T, driver PromptDriver, opts ...Option) *harness {
	t.Helper()
	opts = append([]Option{WithPromptDriver(driver), WithLogger(hclog.NewNullLogger())}, opts...)
	h := &harness{host: New(opts...), sched: dispatch.NewManual()}
	queue := dispatch.New[string](h.sched, dispatch.WithLogger(hclog.NewNullLogger()))
	s, err := session.New(widgets.NewDefaultRegistry(), queue, h.host, session.WithLogger(hclog.NewNullLogger()))
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	h.session = s

	f := formlet.Labeled("Sign up", formlet.Record(
		formlet.Field("email", formlet.Required(formlet.Text("Email", ""), "")),
		formlet.Field("newsletter", formlet.Toggle("Newsletter", false)),
		formlet.Field("plan", formlet.Choice("Plan", []string{"free", "pro"}, 0)),
	))
	if err := session.Show(s, f, func(v map[string]any) { h.got = append(h.got, v) }); err != nil {
		t.Fatalf("show: %v", err)
	}
	return h
}

func TestRun_RepromptsUntilValid(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"", "ada@example.com"},
		confirm:   []bool{true, true},
		selectIdx: []int{1, 1},
	}
	h := newHarness(t, driver, WithTheme(Theme{ErrorPrefix: "! "}))

	if err := h.host.Run(context.Background(), h.session, h.sched.Tick); err != nil {
		t.Fatalf("run: %v", err)
	}

	want := []map[string]any{{"email": "ada@example.com", "newsletter": true, "plan": "pro"}}
	if diff := cmp.Diff(want, h.got); diff != "" {
		t.Fatalf("submitted mismatch (-want +got):\n%s", diff)
	}
	wantInfo := []string{"Sign up", "! email: is required"}
	if diff := cmp.Diff(wantInfo, driver.infoMessages); diff != "" {
		t.Fatalf("info mismatch (-want +got):\n%s", diff)
	}
	wantPrompts := []string{
		"Email=", "Newsletter", "Plan=free|pro",
		"Email=", "Newsletter", "Plan=free|pro",
	}
	if diff := cmp.Diff(wantPrompts, driver.prompts); diff != "" {
		t.Fatalf("prompts mismatch (-want +got):\n%s", diff)
	}
	if h.sched.Scheduled() != 6 {
		t.Fatalf("expected one rebuild per answer, got %d", h.sched.Scheduled())
	}
	if h.session.State() != session.StateSubmitted {
		t.Fatalf("expected submitted session, got %v", h.session.State())
	}
}

func TestRun_GivesUpAfterMaxAttempts(t *testing.T) {
	driver := &stubDriver{inputs: []string{""}, confirm: []bool{false}, selectIdx: []int{0}}
	h := newHarness(t, driver, WithMaxAttempts(1))

	err := h.host.Run(context.Background(), h.session, h.sched.Tick)
	if !errors.Is(err, ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}
	if !strings.Contains(err.Error(), "email: is required") {
		t.Fatalf("expected failures in error, got %v", err)
	}
	if len(h.got) != 0 {
		t.Fatalf("submit callback must not run")
	}
}

func TestRun_PropagatesAbort(t *testing.T) {
	driver := &stubDriver{inputErr: ErrAborted}
	h := newHarness(t, driver)

	if err := h.host.Run(context.Background(), h.session, h.sched.Tick); !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
}

func TestRun_RequiresPublishedTree(t *testing.T) {
	host := New(WithPromptDriver(&stubDriver{}), WithLogger(hclog.NewNullLogger()))
	sched := dispatch.NewManual()
	queue := dispatch.New[string](sched)
	s, err := session.New(widgets.NewDefaultRegistry(), queue, host)
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	if err := host.Run(context.Background(), s, sched.Tick); !errors.Is(err, ErrNothingPublished) {
		t.Fatalf("expected ErrNothingPublished, got %v", err)
	}
}
