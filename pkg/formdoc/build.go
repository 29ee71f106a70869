package formdoc

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/hashicorp/go-multierror"

	"github.com/goliatone/go-formlet/pkg/capability"
	"github.com/goliatone/go-formlet/pkg/formlet"
	"github.com/goliatone/go-formlet/pkg/layout"
	"github.com/goliatone/go-formlet/pkg/widgets"
)

// FieldBuilder produces the formlet for a field resolved to a custom
// capability tag.
type FieldBuilder func(field Field) (formlet.Formlet[any], error)

// BuildOption configures Build.
type BuildOption func(*builder)

// WithWidgetRegistry overrides the matcher registry used to pick a widget
// capability for each field.
func WithWidgetRegistry(reg *widgets.Registry) BuildOption {
	return func(b *builder) {
		if reg != nil {
			b.widgets = reg
		}
	}
}

// WithFieldBuilder routes fields resolved to tag through fn.
func WithFieldBuilder(tag capability.Tag, fn FieldBuilder) BuildOption {
	return func(b *builder) {
		if fn == nil {
			return
		}
		if b.custom == nil {
			b.custom = make(map[capability.Tag]FieldBuilder)
		}
		b.custom[tag] = fn
	}
}

type builder struct {
	widgets *widgets.Registry
	custom  map[capability.Tag]FieldBuilder
}

// Build turns doc into a formlet collecting a map keyed by field name.
// Fields placed in a section are collected in a nested map under the
// section id and reported with "section.field" failure paths. Every field
// that cannot be built is reported in one multierror.
func Build(doc Document, opts ...BuildOption) (formlet.Formlet[map[string]any], error) {
	b := &builder{}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	if b.widgets == nil {
		b.widgets = widgets.NewRegistry()
	}

	sections := make(map[string]Section, len(doc.Sections))
	for _, section := range doc.Sections {
		sections[section.ID] = section
	}

	var result *multierror.Error
	grouped := make(map[string][]formlet.Entry)
	for _, field := range doc.Fields {
		if _, ok := sections[field.Name]; ok && field.Section == "" && field.Name != "" {
			result = multierror.Append(result, fmt.Errorf("formdoc: form %q: field %q collides with section id", doc.ID, field.Name))
			continue
		}
		entry, err := b.entry(field)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("formdoc: form %q: %w", doc.ID, err))
			continue
		}
		grouped[field.Section] = append(grouped[field.Section], entry)
	}
	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}

	// Sections appear where their first field is declared.
	var entries []formlet.Entry
	emitted := make(map[string]bool)
	next := make(map[string]int)
	for _, field := range doc.Fields {
		if field.Section == "" {
			entries = append(entries, grouped[""][next[""]])
			next[""]++
			continue
		}
		if emitted[field.Section] {
			continue
		}
		emitted[field.Section] = true
		section := sections[field.Section]
		entries = append(entries, formlet.Field(field.Section, decorate(
			formlet.Record(grouped[field.Section]...), section.Layout, section.Title, "",
		)))
	}

	return decorate(formlet.Record(entries...), doc.Layout, doc.Title, doc.Description), nil
}

func decorate[T any](f formlet.Formlet[T], orientation, title, description string) formlet.Formlet[T] {
	if description != "" {
		f = formlet.Labeled(description, f)
	}
	if title != "" {
		f = formlet.Labeled(title, f)
	}
	if o, ok := layout.ParseOrientation(orientation); ok && orientation != "" {
		f = formlet.Oriented(o, f)
	}
	return f
}

func (b *builder) entry(field Field) (formlet.Entry, error) {
	tag, ok := b.widgets.Resolve(widgets.FieldHint{
		Kind:    field.Type,
		Format:  field.Format,
		Options: field.Options,
		Widget:  field.Widget,
	})
	if !ok {
		return formlet.Entry{}, fmt.Errorf("field %q: no widget for type %q", field.Name, field.Type)
	}

	if custom, ok := b.custom[tag]; ok {
		f, err := custom(field)
		if err != nil {
			return formlet.Entry{}, fmt.Errorf("field %q: %w", field.Name, err)
		}
		return formlet.Entry{Name: field.Name, Formlet: formlet.Named(field.Name, f)}, nil
	}

	switch tag {
	case widgets.TagCaption:
		text := field.Label
		if text == "" {
			text = field.Description
		}
		return formlet.Entry{Formlet: formlet.Erase(formlet.Label(text))}, nil
	case widgets.TagToggle:
		f, err := toggleField(field)
		if err != nil {
			return formlet.Entry{}, err
		}
		return formlet.Field(field.Name, f), nil
	case widgets.TagChoice:
		f, err := choiceField(field)
		if err != nil {
			return formlet.Entry{}, err
		}
		return formlet.Field(field.Name, f), nil
	case widgets.TagText:
		return textEntry(field)
	default:
		return formlet.Entry{}, fmt.Errorf("field %q: no builder for widget %q", field.Name, tag)
	}
}

func textEntry(field Field) (formlet.Entry, error) {
	switch field.Type {
	case widgets.KindInteger:
		initial, err := defaultInt(field.Default)
		if err != nil {
			return formlet.Entry{}, fmt.Errorf("field %q: %w", field.Name, err)
		}
		f := formlet.Int(field.DisplayLabel(), initial)
		if field.Minimum != nil {
			limit := *field.Minimum
			f = formlet.Validate(f, func(v int) bool { return float64(v) >= limit }, "must be at least "+formatNumber(limit))
		}
		if field.Maximum != nil {
			limit := *field.Maximum
			f = formlet.Validate(f, func(v int) bool { return float64(v) <= limit }, "must be at most "+formatNumber(limit))
		}
		return formlet.Field(field.Name, f), nil
	case widgets.KindNumber:
		initial, err := defaultFloat(field.Default)
		if err != nil {
			return formlet.Entry{}, fmt.Errorf("field %q: %w", field.Name, err)
		}
		f := formlet.Number(field.DisplayLabel(), initial)
		if field.Minimum != nil {
			limit := *field.Minimum
			f = formlet.Validate(f, func(v float64) bool { return v >= limit }, "must be at least "+formatNumber(limit))
		}
		if field.Maximum != nil {
			limit := *field.Maximum
			f = formlet.Validate(f, func(v float64) bool { return v <= limit }, "must be at most "+formatNumber(limit))
		}
		return formlet.Field(field.Name, f), nil
	}

	f := formlet.Text(field.DisplayLabel(), defaultString(field.Default))
	if field.Required {
		f = formlet.Required(f, "")
	}
	if field.MinLength != nil {
		limit := *field.MinLength
		f = formlet.Validate(f, optional(field, func(v string) bool { return utf8.RuneCountInString(v) >= limit }),
			fmt.Sprintf("must be at least %d characters", limit))
	}
	if field.MaxLength != nil {
		limit := *field.MaxLength
		f = formlet.Validate(f, func(v string) bool { return utf8.RuneCountInString(v) <= limit },
			fmt.Sprintf("must be at most %d characters", limit))
	}
	if field.Pattern != "" {
		re, err := regexp.Compile(field.Pattern)
		if err != nil {
			return formlet.Entry{}, fmt.Errorf("field %q: invalid pattern: %w", field.Name, err)
		}
		f = formlet.Validate(f, optional(field, re.MatchString), "must match pattern "+field.Pattern)
	}
	return formlet.Field(field.Name, f), nil
}

// optional lets an empty value through when the field is not required.
func optional(field Field, check func(string) bool) func(string) bool {
	if field.Required {
		return check
	}
	return func(v string) bool {
		return v == "" || check(v)
	}
}

// toggleField treats required as "must be checked".
func toggleField(field Field) (formlet.Formlet[bool], error) {
	initial, err := defaultBool(field.Default)
	if err != nil {
		return nil, fmt.Errorf("field %q: %w", field.Name, err)
	}
	f := formlet.Toggle(field.DisplayLabel(), initial)
	if field.Required {
		f = formlet.Validate(f, func(v bool) bool { return v }, "must be checked")
	}
	return f, nil
}

func choiceField(field Field) (formlet.Formlet[string], error) {
	initial := -1
	if field.Default != nil {
		want := defaultString(field.Default)
		for i, option := range field.Options {
			if option == want {
				initial = i
				break
			}
		}
		if initial < 0 {
			return nil, fmt.Errorf("field %q: default %q is not one of the options", field.Name, want)
		}
	}
	f := formlet.Choice(field.DisplayLabel(), field.Options, initial)
	if field.Required {
		f = formlet.Required(f, "")
	}
	return f, nil
}

func defaultString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return formatNumber(t)
	default:
		return fmt.Sprint(t)
	}
}

func defaultInt(v any) (int, error) {
	switch t := v.(type) {
	case nil:
		return 0, nil
	case int:
		return t, nil
	case int64:
		return int(t), nil
	case float64:
		if t != float64(int(t)) {
			return 0, fmt.Errorf("default %v is not an integer", t)
		}
		return int(t), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, fmt.Errorf("default %q is not an integer", t)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("default %v is not an integer", t)
	}
}

func defaultFloat(v any) (float64, error) {
	switch t := v.(type) {
	case nil:
		return 0, nil
	case int:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case float64:
		return t, nil
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, fmt.Errorf("default %q is not a number", t)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("default %v is not a number", t)
	}
}

func defaultBool(v any) (bool, error) {
	switch t := v.(type) {
	case nil:
		return false, nil
	case bool:
		return t, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(t))
		if err != nil {
			return false, fmt.Errorf("default %q is not a boolean", t)
		}
		return b, nil
	default:
		return false, fmt.Errorf("default %v is not a boolean", t)
	}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
