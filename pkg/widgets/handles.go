package widgets

import (
	"errors"

	"github.com/goliatone/go-formlet/pkg/capability"
)

// Capability tags backed by the headless handles in this package. Hosts that
// draw real widgets register their own factories under the same tags.
const (
	TagText    capability.Tag = "text-input"
	TagToggle  capability.Tag = "toggle"
	TagChoice  capability.Tag = "choice"
	TagCaption capability.Tag = "caption"
)

// Text is an editable single-line input.
type Text interface {
	Label() string
	SetLabel(string)
	Text() string
	SetText(string)
}

// Toggle is a boolean input.
type Toggle interface {
	Label() string
	SetLabel(string)
	Checked() bool
	SetChecked(bool)
}

// Choice selects one entry out of a fixed option list. Selected returns -1
// when nothing is selected.
type Choice interface {
	Label() string
	SetLabel(string)
	Options() []string
	SetOptions([]string)
	Selected() int
	Select(int)
}

// Caption is static text.
type Caption interface {
	Caption() string
	SetCaption(string)
}

// TextBox is the in-memory Text handle.
type TextBox struct {
	label string
	value string
}

func (t *TextBox) Label() string         { return t.label }
func (t *TextBox) SetLabel(label string) { t.label = label }
func (t *TextBox) Text() string          { return t.value }
func (t *TextBox) SetText(value string)  { t.value = value }

// CheckBox is the in-memory Toggle handle.
type CheckBox struct {
	label   string
	checked bool
}

func (c *CheckBox) Label() string         { return c.label }
func (c *CheckBox) SetLabel(label string) { c.label = label }
func (c *CheckBox) Checked() bool         { return c.checked }
func (c *CheckBox) SetChecked(v bool)     { c.checked = v }

// ChoiceBox is the in-memory Choice handle.
type ChoiceBox struct {
	label    string
	options  []string
	selected int
}

// NewChoiceBox returns a ChoiceBox with no selection.
func NewChoiceBox() *ChoiceBox {
	return &ChoiceBox{selected: -1}
}

func (c *ChoiceBox) Label() string         { return c.label }
func (c *ChoiceBox) SetLabel(label string) { c.label = label }

// Options returns a copy of the option list.
func (c *ChoiceBox) Options() []string {
	return append([]string(nil), c.options...)
}

// SetOptions replaces the option list, clearing a selection that falls out
// of range.
func (c *ChoiceBox) SetOptions(options []string) {
	c.options = append([]string(nil), options...)
	if c.selected >= len(c.options) {
		c.selected = -1
	}
}

func (c *ChoiceBox) Selected() int { return c.selected }

// Select sets the selected index. Out-of-range indices clear the selection.
func (c *ChoiceBox) Select(idx int) {
	if idx < 0 || idx >= len(c.options) {
		c.selected = -1
		return
	}
	c.selected = idx
}

// CaptionText is the in-memory Caption handle.
type CaptionText struct {
	text string
}

func (c *CaptionText) Caption() string        { return c.text }
func (c *CaptionText) SetCaption(text string) { c.text = text }

// RegisterDefaults installs the headless handles into reg, leaving existing
// registrations untouched.
func RegisterDefaults(reg *capability.Registry) {
	if reg == nil {
		return
	}
	defaults := map[capability.Tag]capability.Factory{
		TagText:    func() any { return &TextBox{} },
		TagToggle:  func() any { return &CheckBox{} },
		TagChoice:  func() any { return NewChoiceBox() },
		TagCaption: func() any { return &CaptionText{} },
	}
	for tag, factory := range defaults {
		if err := reg.Register(tag, factory); err != nil && !errors.Is(err, capability.ErrAlreadyRegistered) {
			panic(err)
		}
	}
}

// NewDefaultRegistry returns a capability registry populated with the
// headless handles.
func NewDefaultRegistry() *capability.Registry {
	reg := capability.NewRegistry()
	RegisterDefaults(reg)
	return reg
}
