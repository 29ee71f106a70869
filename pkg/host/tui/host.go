package tui

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/hashicorp/go-hclog"

	"github.com/goliatone/go-formlet/pkg/formlet"
	"github.com/goliatone/go-formlet/pkg/layout"
	"github.com/goliatone/go-formlet/pkg/widgets"
)

// Session is the part of a form session the terminal host drives.
type Session interface {
	RequestRebuild() error
	Submit() bool
	Failures() []formlet.Failure
}

// Pump runs the callbacks scheduled on the session's dispatch queue and
// returns how many ran. dispatch.Loop.Drain and dispatch.Manual.Tick fit.
type Pump func() int

const defaultMaxAttempts = 3

// Host walks the published flat tree with terminal prompts. Every answer is
// written into its widget handle and followed by a rebuild request, so the
// session sees edits the same way a graphical host would deliver them.
type Host struct {
	driver      PromptDriver
	out         io.Writer
	logger      hclog.Logger
	theme       Theme
	maxAttempts int

	tree      layout.Flat
	published bool
}

// New constructs a terminal host with defaults (survey driver, three
// attempts).
func New(options ...Option) *Host {
	h := &Host{maxAttempts: defaultMaxAttempts}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(h)
	}
	if h.driver == nil {
		h.driver = newSurveyDriver(h.out)
	}
	if h.logger == nil {
		h.logger = hclog.L().Named("tui")
	}
	return h
}

// Publish records the tree the next prompt reads from.
func (h *Host) Publish(tree layout.Flat) {
	h.tree = tree
	h.published = true
	h.logger.Trace("tree published", "leaves", len(tree.Leaves()))
}

// Run prompts for every leaf and submits the session. Validation failures
// are printed and the inputs asked again, up to the attempt limit. pump is
// called after each rebuild request; a nil pump leaves rebuilds to the
// caller's own loop.
func (h *Host) Run(ctx context.Context, s Session, pump Pump) error {
	if ctx == nil {
		return errors.New("tui: context is required")
	}
	if s == nil {
		return errors.New("tui: session is nil")
	}
	if !h.published {
		return ErrNothingPublished
	}

	var failures []formlet.Failure
	for attempt := 1; attempt <= h.maxAttempts; attempt++ {
		if err := h.promptPass(ctx, s, pump, attempt == 1); err != nil {
			return err
		}
		if s.Submit() {
			h.logger.Debug("form submitted", "attempt", attempt)
			return nil
		}
		failures = s.Failures()
		h.logger.Debug("submit rejected", "attempt", attempt, "failures", len(failures))
		for _, failure := range failures {
			if err := h.driver.Note(ctx, h.theme.ErrorPrefix+failure.Error()); err != nil {
				return translateSurveyErr(err)
			}
		}
	}
	return fmt.Errorf("%w: %w", ErrTooManyAttempts, formlet.Fail[any](failures...).Err())
}

func (h *Host) promptPass(ctx context.Context, s Session, pump Pump, first bool) error {
	for i := 0; i < len(h.tree.Leaves()); i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		changed, err := h.prompt(ctx, h.tree.Leaves()[i], first)
		if err != nil {
			return err
		}
		if !changed {
			continue
		}
		if err := s.RequestRebuild(); err != nil {
			return err
		}
		if pump != nil {
			pump()
		}
	}
	return nil
}

// prompt asks for one leaf and reports whether an input handle was written.
func (h *Host) prompt(ctx context.Context, leaf any, first bool) (bool, error) {
	switch w := leaf.(type) {
	case widgets.Caption:
		if !first {
			return false, nil
		}
		return false, h.driver.Note(ctx, h.theme.InfoPrefix+w.Caption())
	case widgets.Toggle:
		value, err := h.driver.Toggle(ctx, TogglePrompt{Label: w.Label(), Default: w.Checked()})
		if err != nil {
			return false, err
		}
		w.SetChecked(value)
		return true, nil
	case widgets.Choice:
		idx, err := h.driver.Choice(ctx, ChoicePrompt{
			Label:    w.Label(),
			Options:  w.Options(),
			Selected: w.Selected(),
		})
		if err != nil {
			return false, err
		}
		w.Select(idx)
		return true, nil
	case widgets.Text:
		value, err := h.driver.Text(ctx, TextPrompt{Label: w.Label(), Default: w.Text()})
		if err != nil {
			return false, err
		}
		w.SetText(value)
		return true, nil
	default:
		h.logger.Debug("leaf skipped: unsupported widget", "type", fmt.Sprintf("%T", leaf))
		return false, nil
	}
}
