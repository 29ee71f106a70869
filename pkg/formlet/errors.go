package formlet

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-formlet/pkg/capability"
)

var (
	// ErrNilFormlet is reported when Rebuild receives no formlet.
	ErrNilFormlet = errors.New("formlet: formlet is nil")
	// ErrNilContext is reported when Rebuild receives no capability lookup.
	ErrNilContext = errors.New("formlet: rebuild context is nil")
	// ErrCapabilityUnavailable signals a leaf could not obtain the widget
	// handle it requires.
	ErrCapabilityUnavailable = errors.New("formlet: capability unavailable")
	// ErrDuplicateEntry is reported when a Record declares the same entry
	// name twice.
	ErrDuplicateEntry = errors.New("formlet: duplicate record entry")
)

// EvaluationError reports that a rebuild could not proceed. It is fatal to
// that Rebuild call only; callers keep their previous form.
type EvaluationError struct {
	// Tag is the capability involved, when the failure came from a lookup.
	Tag capability.Tag
	Err error
}

func (e *EvaluationError) Error() string {
	if e == nil {
		return "formlet: evaluation error"
	}
	if e.Tag != "" {
		return fmt.Sprintf("formlet: rebuild %q: %v", e.Tag, e.Err)
	}
	return fmt.Sprintf("formlet: rebuild: %v", e.Err)
}

func (e *EvaluationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// acquire obtains a handle of type H for tag, failing with an
// *EvaluationError when nothing usable is registered.
func acquire[H any](ctx RebuildContext, tag capability.Tag) (H, error) {
	var zero H
	if ctx == nil {
		return zero, &EvaluationError{Tag: tag, Err: ErrNilContext}
	}
	instance, ok := ctx.CreateInstance(tag)
	if !ok || instance == nil {
		return zero, &EvaluationError{Tag: tag, Err: ErrCapabilityUnavailable}
	}
	handle, ok := instance.(H)
	if !ok {
		return zero, &EvaluationError{
			Tag: tag,
			Err: fmt.Errorf("%w: unexpected handle type %T", ErrCapabilityUnavailable, instance),
		}
	}
	return handle, nil
}
