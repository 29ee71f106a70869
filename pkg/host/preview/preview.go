package preview

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/flosch/pongo2/v6"
	"github.com/hashicorp/go-hclog"

	"github.com/goliatone/go-formlet/pkg/layout"
	"github.com/goliatone/go-formlet/pkg/widgets"
)

//go:embed templates/*.tpl
var embeddedTemplates embed.FS

const defaultTemplate = "outline.tpl"

// TemplatesFS exposes the built-in outline templates so callers can copy or
// extend them.
func TemplatesFS() fs.FS {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		return embeddedTemplates
	}
	return sub
}

// Row is one line of the outline handed to the template.
type Row struct {
	Indent      string
	Depth       int
	Layout      bool
	Orientation string
	Kind        string
	Label       string
	Value       string
}

// Renderer prints a flat tree as an indented text outline. It satisfies the
// session host contract, so it can stand in for an interactive host when
// stdout is not a terminal.
type Renderer struct {
	tpl      *pongo2.Template
	out      io.Writer
	logger   hclog.Logger
	indent   string
	tplFS    fs.FS
	tplName  string
	rendered int
}

// Option customises a Renderer.
type Option func(*Renderer)

// WithOutput sets the writer Publish prints to.
func WithOutput(w io.Writer) Option {
	return func(r *Renderer) {
		r.out = w
	}
}

// WithLogger overrides the renderer logger.
func WithLogger(logger hclog.Logger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithIndent sets the per-level indentation string. Defaults to two spaces.
func WithIndent(indent string) Option {
	return func(r *Renderer) {
		r.indent = indent
	}
}

// WithTemplateFS renders with name loaded from fsys instead of the
// embedded outline template. The template receives a "rows" slice of Row.
func WithTemplateFS(fsys fs.FS, name string) Option {
	return func(r *Renderer) {
		r.tplFS = fsys
		r.tplName = name
	}
}

// New compiles the outline template.
func New(opts ...Option) (*Renderer, error) {
	r := &Renderer{
		indent:  "  ",
		tplName: defaultTemplate,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	if r.logger == nil {
		r.logger = hclog.L().Named("preview")
	}
	if strings.TrimSpace(r.tplName) == "" {
		return nil, errors.New("preview: template name is required")
	}
	if r.tplFS == nil {
		r.tplFS = TemplatesFS()
	}

	set := pongo2.NewSet("preview", pongo2.NewFSLoader(r.tplFS))
	tpl, err := set.FromFile(r.tplName)
	if err != nil {
		return nil, fmt.Errorf("preview: compile %s: %w", r.tplName, err)
	}
	r.tpl = tpl
	return r, nil
}

// Render returns the outline for tree.
func (r *Renderer) Render(tree layout.Flat) (string, error) {
	var buf bytes.Buffer
	if err := r.tpl.ExecuteWriter(pongo2.Context{"rows": r.Rows(tree)}, &buf); err != nil {
		return "", fmt.Errorf("preview: execute template: %w", err)
	}
	return buf.String(), nil
}

// Rows lists the outline lines for tree in visual order.
func (r *Renderer) Rows(tree layout.Flat) []Row {
	var rows []Row
	r.appendRows(&rows, tree, 0)
	return rows
}

func (r *Renderer) appendRows(rows *[]Row, node layout.Flat, depth int) {
	if !node.IsLeaf() {
		*rows = append(*rows, Row{
			Indent:      strings.Repeat(r.indent, depth),
			Depth:       depth,
			Layout:      true,
			Orientation: node.Orientation.String(),
		})
		for _, child := range node.Children {
			r.appendRows(rows, child, depth+1)
		}
		return
	}
	row := describe(node.Widget)
	row.Indent = strings.Repeat(r.indent, depth)
	row.Depth = depth
	*rows = append(*rows, row)
}

func describe(widget any) Row {
	switch w := widget.(type) {
	case widgets.Caption:
		return Row{Kind: "caption", Label: w.Caption()}
	case widgets.Toggle:
		value := "no"
		if w.Checked() {
			value = "yes"
		}
		return Row{Kind: "toggle", Label: w.Label(), Value: value}
	case widgets.Choice:
		row := Row{Kind: "choice", Label: w.Label()}
		if idx, options := w.Selected(), w.Options(); idx >= 0 && idx < len(options) {
			row.Value = options[idx]
		}
		return row
	case widgets.Text:
		return Row{Kind: "text", Label: w.Label(), Value: w.Text()}
	default:
		return Row{Kind: fmt.Sprintf("%T", widget)}
	}
}

// Publish renders tree to the configured output. Rendering errors are
// logged; a renderer without output only counts publications.
func (r *Renderer) Publish(tree layout.Flat) {
	r.rendered++
	if r.out == nil {
		return
	}
	text, err := r.Render(tree)
	if err != nil {
		r.logger.Error("preview render failed", "error", err)
		return
	}
	if _, err := io.WriteString(r.out, text); err != nil {
		r.logger.Error("preview write failed", "error", err)
		return
	}
	r.logger.Trace("preview published", "publication", r.rendered, "leaves", len(tree.Leaves()))
}

// Published reports how many trees Publish has received.
func (r *Renderer) Published() int {
	return r.rendered
}
