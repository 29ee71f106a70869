package formdoc

import "sort"

// Store keeps the documents parsed by LoadFS. It is safe for concurrent
// readers when treated as immutable after construction.
type Store struct {
	documents map[string]Document
}

// Document describes one form.
type Document struct {
	ID          string    `json:"-" yaml:"-"`
	Source      string    `json:"-" yaml:"-"`
	Title       string    `json:"title,omitempty" yaml:"title,omitempty"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Layout      string    `json:"layout,omitempty" yaml:"layout,omitempty"`
	Sections    []Section `json:"sections,omitempty" yaml:"sections,omitempty"`
	Fields      []Field   `json:"fields" yaml:"fields"`
}

// Section groups fields under a caption. Values of fields placed in a
// section are collected under the section id.
type Section struct {
	ID     string `json:"id" yaml:"id"`
	Title  string `json:"title,omitempty" yaml:"title,omitempty"`
	Layout string `json:"layout,omitempty" yaml:"layout,omitempty"`
}

// Field declares one input.
type Field struct {
	Name        string   `json:"name" yaml:"name"`
	Label       string   `json:"label,omitempty" yaml:"label,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Type        string   `json:"type,omitempty" yaml:"type,omitempty"`
	Format      string   `json:"format,omitempty" yaml:"format,omitempty"`
	Widget      string   `json:"widget,omitempty" yaml:"widget,omitempty"`
	Section     string   `json:"section,omitempty" yaml:"section,omitempty"`
	Required    bool     `json:"required,omitempty" yaml:"required,omitempty"`
	Default     any      `json:"default,omitempty" yaml:"default,omitempty"`
	Options     []string `json:"options,omitempty" yaml:"options,omitempty"`
	MinLength   *int     `json:"minLength,omitempty" yaml:"minLength,omitempty"`
	MaxLength   *int     `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
	Pattern     string   `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Minimum     *float64 `json:"minimum,omitempty" yaml:"minimum,omitempty"`
	Maximum     *float64 `json:"maximum,omitempty" yaml:"maximum,omitempty"`
}

// DisplayLabel returns the label, falling back to the field name.
func (f Field) DisplayLabel() string {
	if f.Label != "" {
		return f.Label
	}
	return f.Name
}

// Document returns the document registered under id.
func (s *Store) Document(id string) (Document, bool) {
	if s == nil {
		return Document{}, false
	}
	doc, ok := s.documents[id]
	return doc, ok
}

// IDs lists the document ids in sorted order.
func (s *Store) IDs() []string {
	if s == nil {
		return nil
	}
	ids := make([]string, 0, len(s.documents))
	for id := range s.documents {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Empty reports whether the store holds any documents.
func (s *Store) Empty() bool {
	return s == nil || len(s.documents) == 0
}
