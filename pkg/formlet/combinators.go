package formlet

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-formlet/pkg/layout"
)

// Map transforms the collected value of f.
func Map[T, U any](f Formlet[T], fn func(T) U) Formlet[U] {
	return Func[U](func(ctx RebuildContext, prev Form[U]) (Form[U], error) {
		var inner Form[T]
		if p, ok := prev.(*mapForm[T, U]); ok && p != nil {
			inner = p.inner
		}
		next, err := f.Rebuild(ctx, inner)
		if err != nil {
			return nil, err
		}
		return &mapForm[T, U]{inner: next, fn: fn}, nil
	})
}

type mapForm[T, U any] struct {
	inner Form[T]
	fn    func(T) U
}

func (f *mapForm[T, U]) Render(rc RenderContext) *layout.Node {
	return f.inner.Render(rc)
}

func (f *mapForm[T, U]) Collect() Result[U] {
	res := f.inner.Collect()
	if !res.OK() {
		return Result[U]{Failures: res.Failures}
	}
	return Success(f.fn(res.Value))
}

// Erase turns a typed formlet into one collecting any. Useful for records.
func Erase[T any](f Formlet[T]) Formlet[any] {
	return Map(f, func(v T) any { return v })
}

// Validate adds a check on the collected value of f. The check only runs
// when f itself collected successfully.
func Validate[T any](f Formlet[T], check func(T) bool, message string) Formlet[T] {
	return Func[T](func(ctx RebuildContext, prev Form[T]) (Form[T], error) {
		var inner Form[T]
		if p, ok := prev.(*validateForm[T]); ok && p != nil {
			inner = p.inner
		}
		next, err := f.Rebuild(ctx, inner)
		if err != nil {
			return nil, err
		}
		return &validateForm[T]{inner: next, check: check, message: message}, nil
	})
}

type validateForm[T any] struct {
	inner   Form[T]
	check   func(T) bool
	message string
}

func (f *validateForm[T]) Render(rc RenderContext) *layout.Node {
	return f.inner.Render(rc)
}

func (f *validateForm[T]) Collect() Result[T] {
	res := f.inner.Collect()
	if !res.OK() {
		return res
	}
	if f.check != nil && !f.check(res.Value) {
		return Fail[T](Failure{Message: f.message})
	}
	return res
}

// Required rejects blank text.
func Required(f Formlet[string], message string) Formlet[string] {
	if message == "" {
		message = "is required"
	}
	return Validate(f, func(v string) bool {
		return strings.TrimSpace(v) != ""
	}, message)
}

// Named attributes failures collected from f to name.
func Named[T any](name string, f Formlet[T]) Formlet[T] {
	return Func[T](func(ctx RebuildContext, prev Form[T]) (Form[T], error) {
		var inner Form[T]
		if p, ok := prev.(*namedForm[T]); ok && p != nil && p.name == name {
			inner = p.inner
		}
		next, err := f.Rebuild(ctx, inner)
		if err != nil {
			return nil, err
		}
		return &namedForm[T]{name: name, inner: next}, nil
	})
}

type namedForm[T any] struct {
	name  string
	inner Form[T]
}

func (f *namedForm[T]) Render(rc RenderContext) *layout.Node {
	return f.inner.Render(rc)
}

func (f *namedForm[T]) Collect() Result[T] {
	res := f.inner.Collect()
	if res.OK() {
		return res
	}
	return Result[T]{Failures: prefixed(f.name, res.Failures)}
}

// Tuple is the value collected by Pair.
type Tuple[A, B any] struct {
	First  A
	Second B
}

// Pair composes two formlets laid out along the ambient orientation.
func Pair[A, B any](a Formlet[A], b Formlet[B]) Formlet[Tuple[A, B]] {
	return Func[Tuple[A, B]](func(ctx RebuildContext, prev Form[Tuple[A, B]]) (Form[Tuple[A, B]], error) {
		var prevA Form[A]
		var prevB Form[B]
		if p, ok := prev.(*pairForm[A, B]); ok && p != nil {
			prevA, prevB = p.a, p.b
		}
		nextA, err := a.Rebuild(ctx, prevA)
		if err != nil {
			return nil, err
		}
		nextB, err := b.Rebuild(ctx, prevB)
		if err != nil {
			return nil, err
		}
		return &pairForm[A, B]{a: nextA, b: nextB}, nil
	})
}

type pairForm[A, B any] struct {
	a Form[A]
	b Form[B]
}

func (f *pairForm[A, B]) Render(rc RenderContext) *layout.Node {
	return layout.Group(rc.Orientation, f.a.Render(rc), f.b.Render(rc))
}

func (f *pairForm[A, B]) Collect() Result[Tuple[A, B]] {
	resA := f.a.Collect()
	resB := f.b.Collect()
	if failures := append(append([]Failure(nil), resA.Failures...), resB.Failures...); len(failures) > 0 {
		return Result[Tuple[A, B]]{Failures: failures}
	}
	return Success(Tuple[A, B]{First: resA.Value, Second: resB.Value})
}

// All composes same-typed formlets into one collecting a slice in order.
func All[T any](formlets ...Formlet[T]) Formlet[[]T] {
	items := append([]Formlet[T](nil), formlets...)
	return Func[[]T](func(ctx RebuildContext, prev Form[[]T]) (Form[[]T], error) {
		var previous []Form[T]
		if p, ok := prev.(*allForm[T]); ok && p != nil {
			previous = p.forms
		}
		forms := make([]Form[T], len(items))
		for i, item := range items {
			var before Form[T]
			if i < len(previous) {
				before = previous[i]
			}
			next, err := item.Rebuild(ctx, before)
			if err != nil {
				return nil, err
			}
			forms[i] = next
		}
		return &allForm[T]{forms: forms}, nil
	})
}

type allForm[T any] struct {
	forms []Form[T]
}

func (f *allForm[T]) Render(rc RenderContext) *layout.Node {
	children := make([]*layout.Node, len(f.forms))
	for i, form := range f.forms {
		children[i] = form.Render(rc)
	}
	return layout.Group(rc.Orientation, children...)
}

func (f *allForm[T]) Collect() Result[[]T] {
	values := make([]T, len(f.forms))
	var failures []Failure
	for i, form := range f.forms {
		res := form.Collect()
		if !res.OK() {
			failures = append(failures, res.Failures...)
			continue
		}
		values[i] = res.Value
	}
	if len(failures) > 0 {
		return Result[[]T]{Failures: failures}
	}
	return Success(values)
}

// Entry is one named member of a Record.
type Entry struct {
	Name    string
	Formlet Formlet[any]
}

// Field builds a record entry, attributing failures of f to name.
func Field[T any](name string, f Formlet[T]) Entry {
	return Entry{Name: name, Formlet: Named(name, Erase(f))}
}

// Record composes named entries into a formlet collecting a map keyed by
// entry name. Entries are rendered and validated in declaration order.
// Entries with an empty name are laid out but not collected; they are
// matched to the previous generation by position instead of by name.
// Repeating a non-empty name fails every rebuild with an *EvaluationError
// wrapping ErrDuplicateEntry.
func Record(entries ...Entry) Formlet[map[string]any] {
	items := make([]Entry, 0, len(entries))
	seen := make(map[string]bool, len(entries))
	var duplicate string
	for _, entry := range entries {
		if entry.Formlet == nil {
			continue
		}
		if entry.Name != "" {
			if seen[entry.Name] && duplicate == "" {
				duplicate = entry.Name
			}
			seen[entry.Name] = true
		}
		items = append(items, entry)
	}
	return Func[map[string]any](func(ctx RebuildContext, prev Form[map[string]any]) (Form[map[string]any], error) {
		if duplicate != "" {
			return nil, &EvaluationError{Err: fmt.Errorf("%w: %q", ErrDuplicateEntry, duplicate)}
		}
		var previous *recordForm
		byName := map[string]Form[any]{}
		if p, ok := prev.(*recordForm); ok && p != nil {
			previous = p
			for i, name := range p.names {
				if name != "" {
					byName[name] = p.forms[i]
				}
			}
		}
		names := make([]string, 0, len(items))
		forms := make([]Form[any], 0, len(items))
		for i, item := range items {
			before := byName[item.Name]
			if item.Name == "" && previous != nil && i < len(previous.names) && previous.names[i] == "" {
				before = previous.forms[i]
			}
			next, err := item.Formlet.Rebuild(ctx, before)
			if err != nil {
				return nil, err
			}
			names = append(names, item.Name)
			forms = append(forms, next)
		}
		return &recordForm{names: names, forms: forms}, nil
	})
}

type recordForm struct {
	names []string
	forms []Form[any]
}

func (f *recordForm) Render(rc RenderContext) *layout.Node {
	children := make([]*layout.Node, len(f.forms))
	for i, form := range f.forms {
		children[i] = form.Render(rc)
	}
	return layout.Group(rc.Orientation, children...)
}

func (f *recordForm) Collect() Result[map[string]any] {
	values := make(map[string]any, len(f.forms))
	var failures []Failure
	for i, form := range f.forms {
		res := form.Collect()
		if !res.OK() {
			failures = append(failures, res.Failures...)
			continue
		}
		if f.names[i] == "" {
			continue
		}
		values[f.names[i]] = res.Value
	}
	if len(failures) > 0 {
		return Result[map[string]any]{Failures: failures}
	}
	return Success(values)
}

// Horizontal lays f out left to right regardless of the ambient orientation.
func Horizontal[T any](f Formlet[T]) Formlet[T] {
	return Oriented(layout.LeftToRight, f)
}

// Vertical lays f out top to bottom regardless of the ambient orientation.
func Vertical[T any](f Formlet[T]) Formlet[T] {
	return Oriented(layout.TopToBottom, f)
}

// Oriented renders f with orientation as its ambient orientation.
func Oriented[T any](orientation layout.Orientation, f Formlet[T]) Formlet[T] {
	return Func[T](func(ctx RebuildContext, prev Form[T]) (Form[T], error) {
		var inner Form[T]
		if p, ok := prev.(*orientedForm[T]); ok && p != nil {
			inner = p.inner
		}
		next, err := f.Rebuild(ctx, inner)
		if err != nil {
			return nil, err
		}
		return &orientedForm[T]{orientation: orientation, inner: next}, nil
	})
}

type orientedForm[T any] struct {
	orientation layout.Orientation
	inner       Form[T]
}

func (f *orientedForm[T]) Render(RenderContext) *layout.Node {
	return layout.Group(f.orientation, f.inner.Render(NewRenderContext(f.orientation)))
}

func (f *orientedForm[T]) Collect() Result[T] {
	return f.inner.Collect()
}

// Labeled places a caption before f along the ambient orientation.
func Labeled[T any](label string, f Formlet[T]) Formlet[T] {
	return Func[T](func(ctx RebuildContext, prev Form[T]) (Form[T], error) {
		var prevCaption any
		var inner Form[T]
		if p, ok := prev.(*labeledForm[T]); ok && p != nil {
			prevCaption, inner = p.caption, p.inner
		}
		caption, err := reuseCaption(ctx, prevCaption)
		if err != nil {
			return nil, err
		}
		caption.SetCaption(label)
		next, err := f.Rebuild(ctx, inner)
		if err != nil {
			return nil, err
		}
		return &labeledForm[T]{caption: &captionForm{widget: caption}, inner: next}, nil
	})
}

type labeledForm[T any] struct {
	caption *captionForm
	inner   Form[T]
}

func (f *labeledForm[T]) Render(rc RenderContext) *layout.Node {
	return layout.Group(rc.Orientation, f.caption.Render(rc), f.inner.Render(rc))
}

func (f *labeledForm[T]) Collect() Result[T] {
	return f.inner.Collect()
}
