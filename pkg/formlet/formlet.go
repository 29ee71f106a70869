package formlet

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-formlet/pkg/capability"
	"github.com/goliatone/go-formlet/pkg/layout"
)

// RebuildContext is the capability lookup available to every rebuild. It is
// shared and read-only for the duration of a rebuild pass.
// *capability.Registry satisfies it.
type RebuildContext interface {
	CreateInstance(tag capability.Tag) (any, bool)
}

// RenderContext carries the ambient layout parameters for one Render pass.
type RenderContext struct {
	Orientation layout.Orientation
}

// NewRenderContext returns a render context using orientation as the
// default for composed formlets.
func NewRenderContext(orientation layout.Orientation) RenderContext {
	return RenderContext{Orientation: orientation}
}

// Formlet is an immutable description of how to produce a T interactively.
// Rebuild receives the previous generation (nil on first build) and must not
// mutate it.
type Formlet[T any] interface {
	Rebuild(ctx RebuildContext, prev Form[T]) (Form[T], error)
}

// Form is one evaluated generation of a Formlet.
type Form[T any] interface {
	Render(rc RenderContext) *layout.Node
	Collect() Result[T]
}

// Func adapts a plain function into a Formlet.
type Func[T any] func(ctx RebuildContext, prev Form[T]) (Form[T], error)

// Rebuild calls fn.
func (fn Func[T]) Rebuild(ctx RebuildContext, prev Form[T]) (Form[T], error) {
	return fn(ctx, prev)
}

// Rebuild evaluates f against prev and returns the next form generation. A
// nil prev behaves as a first build with declared defaults. Every error is
// reported as an *EvaluationError so callers can keep their previous state.
func Rebuild[T any](f Formlet[T], prev Form[T], ctx RebuildContext) (Form[T], error) {
	if f == nil {
		return nil, &EvaluationError{Err: ErrNilFormlet}
	}
	if ctx == nil {
		return nil, &EvaluationError{Err: ErrNilContext}
	}

	form, err := f.Rebuild(ctx, prev)
	if err != nil {
		var evalErr *EvaluationError
		if errors.As(err, &evalErr) {
			return nil, err
		}
		return nil, &EvaluationError{Err: err}
	}
	if form == nil {
		return nil, &EvaluationError{Err: fmt.Errorf("formlet: rebuild produced no form")}
	}
	return form, nil
}

// Render projects form into a visual tree. A nil form renders nothing.
func Render[T any](form Form[T], rc RenderContext) *layout.Node {
	if form == nil {
		return nil
	}
	return form.Render(rc)
}

// Collect gathers the current value of form or every validation failure.
func Collect[T any](form Form[T]) Result[T] {
	if form == nil {
		return Fail[T](Failure{Message: "form has not been built"})
	}
	return form.Collect()
}
