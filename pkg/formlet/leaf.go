package formlet

import (
	"slices"
	"strconv"
	"strings"

	"github.com/goliatone/go-formlet/pkg/layout"
	"github.com/goliatone/go-formlet/pkg/widgets"
)

// Text is a single-line text input starting at initial.
func Text(label, initial string) Formlet[string] {
	return Func[string](func(ctx RebuildContext, prev Form[string]) (Form[string], error) {
		widget, err := reuseText(ctx, prev, initial)
		if err != nil {
			return nil, err
		}
		relabel(widget, label)
		return &textForm{widget: widget}, nil
	})
}

type textForm struct {
	widget widgets.Text
}

func (f *textForm) Render(RenderContext) *layout.Node {
	return layout.Leaf(f.widget)
}

func (f *textForm) Collect() Result[string] {
	return Success(f.widget.Text())
}

// relabel writes label only when it differs, so rebuilding an unchanged
// formlet leaves reused handles as the previous generation left them.
func relabel(w interface {
	Label() string
	SetLabel(string)
}, label string) {
	if w.Label() != label {
		w.SetLabel(label)
	}
}

func reuseText[T any](ctx RebuildContext, prev Form[T], initial string) (widgets.Text, error) {
	var widget widgets.Text
	switch p := any(prev).(type) {
	case *textForm:
		if p != nil {
			widget = p.widget
		}
	case *intForm:
		if p != nil {
			widget = p.widget
		}
	case *numberForm:
		if p != nil {
			widget = p.widget
		}
	}
	if widget != nil {
		return widget, nil
	}
	widget, err := acquire[widgets.Text](ctx, widgets.TagText)
	if err != nil {
		return nil, err
	}
	widget.SetText(initial)
	return widget, nil
}

// Int is a text input parsed as a base-10 integer. Unparsable input is a
// validation failure.
func Int(label string, initial int) Formlet[int] {
	return Func[int](func(ctx RebuildContext, prev Form[int]) (Form[int], error) {
		widget, err := reuseText(ctx, prev, strconv.Itoa(initial))
		if err != nil {
			return nil, err
		}
		relabel(widget, label)
		return &intForm{textForm{widget: widget}}, nil
	})
}

type intForm struct {
	textForm
}

func (f *intForm) Collect() Result[int] {
	raw := strings.TrimSpace(f.widget.Text())
	value, err := strconv.Atoi(raw)
	if err != nil {
		return Fail[int](Failure{Message: "must be an integer"})
	}
	return Success(value)
}

// Number is a text input parsed as a float64.
func Number(label string, initial float64) Formlet[float64] {
	return Func[float64](func(ctx RebuildContext, prev Form[float64]) (Form[float64], error) {
		widget, err := reuseText(ctx, prev, strconv.FormatFloat(initial, 'f', -1, 64))
		if err != nil {
			return nil, err
		}
		relabel(widget, label)
		return &numberForm{textForm{widget: widget}}, nil
	})
}

type numberForm struct {
	textForm
}

func (f *numberForm) Collect() Result[float64] {
	raw := strings.TrimSpace(f.widget.Text())
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return Fail[float64](Failure{Message: "must be a number"})
	}
	return Success(value)
}

// Toggle is a boolean input starting at initial.
func Toggle(label string, initial bool) Formlet[bool] {
	return Func[bool](func(ctx RebuildContext, prev Form[bool]) (Form[bool], error) {
		var widget widgets.Toggle
		if p, ok := prev.(*toggleForm); ok && p != nil && p.widget != nil {
			widget = p.widget
		} else {
			created, err := acquire[widgets.Toggle](ctx, widgets.TagToggle)
			if err != nil {
				return nil, err
			}
			created.SetChecked(initial)
			widget = created
		}
		relabel(widget, label)
		return &toggleForm{widget: widget}, nil
	})
}

type toggleForm struct {
	widget widgets.Toggle
}

func (f *toggleForm) Render(RenderContext) *layout.Node {
	return layout.Leaf(f.widget)
}

func (f *toggleForm) Collect() Result[bool] {
	return Success(f.widget.Checked())
}

// Choice selects one of options. initial is an index into options; a
// negative value starts with no selection, which collects as "".
func Choice(label string, options []string, initial int) Formlet[string] {
	opts := append([]string(nil), options...)
	return Func[string](func(ctx RebuildContext, prev Form[string]) (Form[string], error) {
		var widget widgets.Choice
		if p, ok := prev.(*choiceForm); ok && p != nil && p.widget != nil {
			widget = p.widget
			if !slices.Equal(widget.Options(), opts) {
				widget.SetOptions(opts)
			}
		} else {
			created, err := acquire[widgets.Choice](ctx, widgets.TagChoice)
			if err != nil {
				return nil, err
			}
			created.SetOptions(opts)
			created.Select(initial)
			widget = created
		}
		relabel(widget, label)
		return &choiceForm{widget: widget}, nil
	})
}

type choiceForm struct {
	widget widgets.Choice
}

func (f *choiceForm) Render(RenderContext) *layout.Node {
	return layout.Leaf(f.widget)
}

func (f *choiceForm) Collect() Result[string] {
	idx := f.widget.Selected()
	options := f.widget.Options()
	if idx < 0 || idx >= len(options) {
		return Success("")
	}
	return Success(options[idx])
}

// Label is static text. It collects the empty struct and never fails.
func Label(text string) Formlet[struct{}] {
	return Func[struct{}](func(ctx RebuildContext, prev Form[struct{}]) (Form[struct{}], error) {
		caption, err := reuseCaption(ctx, prev)
		if err != nil {
			return nil, err
		}
		if caption.Caption() != text {
			caption.SetCaption(text)
		}
		return &captionForm{widget: caption}, nil
	})
}

type captionForm struct {
	widget widgets.Caption
}

func (f *captionForm) Render(RenderContext) *layout.Node {
	return layout.Leaf(f.widget)
}

func (f *captionForm) Collect() Result[struct{}] {
	return Success(struct{}{})
}

func reuseCaption(ctx RebuildContext, prev any) (widgets.Caption, error) {
	if p, ok := prev.(*captionForm); ok && p != nil && p.widget != nil {
		return p.widget, nil
	}
	return acquire[widgets.Caption](ctx, widgets.TagCaption)
}

// Pure always collects value and renders nothing.
func Pure[T any](value T) Formlet[T] {
	return Func[T](func(RebuildContext, Form[T]) (Form[T], error) {
		return pureForm[T]{value: value}, nil
	})
}

type pureForm[T any] struct {
	value T
}

func (_ pureForm[T]) Render(RenderContext) *layout.Node { return nil }

func (f pureForm[T]) Collect() Result[T] { return Success(f.value) }
