package formlet

import (
	"errors"

	"github.com/goliatone/go-formlet/pkg/dispatch"
	"github.com/goliatone/go-formlet/pkg/formdoc"
	pkgformlet "github.com/goliatone/go-formlet/pkg/formlet"
	"github.com/goliatone/go-formlet/pkg/session"
	"github.com/goliatone/go-formlet/pkg/widgets"
)

// Document is a declarative form definition; alias exported via the root
// package for convenience.
type Document = formdoc.Document

// Session owns the live form shown by a host.
type Session = session.Session

// Host receives every flat tree a session publishes.
type Host = session.Host

// Values is the record collected from a document-driven form.
type Values = map[string]any

// NewSession wires a session to the default widget registry. Rebuild
// requests are coalesced on queue, which may be shared between sessions.
func NewSession(queue *dispatch.Queue[string], host Host, options ...session.Option) (*Session, error) {
	return session.New(widgets.NewDefaultRegistry(), queue, host, options...)
}

// FormletFromDocument builds the formlet described by doc.
func FormletFromDocument(doc Document, options ...formdoc.BuildOption) (pkgformlet.Formlet[Values], error) {
	return formdoc.Build(doc, options...)
}

// ShowDocument builds doc and shows it on s. onSubmit receives the collected
// record once Submit succeeds.
func ShowDocument(s *Session, doc Document, onSubmit func(Values), options ...formdoc.BuildOption) error {
	if s == nil {
		return errors.New("formlet: session is nil")
	}
	f, err := FormletFromDocument(doc, options...)
	if err != nil {
		return err
	}
	return session.Show(s, f, onSubmit)
}
