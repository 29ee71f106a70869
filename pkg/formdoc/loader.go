package formdoc

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formlet/pkg/layout"
)

// LoadFS walks the provided filesystem and parses JSON/YAML form documents.
// When fsys is nil or no document files are present, the returned store is
// empty.
func LoadFS(fsys fs.FS) (*Store, error) {
	store := &Store{documents: make(map[string]Document)}
	if fsys == nil {
		return store, nil
	}

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isDocumentFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("formdoc: read %s: %w", path, err)
		}

		docs, err := Parse(data, path)
		if err != nil {
			return err
		}
		for _, doc := range docs {
			if existing, exists := store.documents[doc.ID]; exists {
				return fmt.Errorf("formdoc: duplicate form %q (files %s and %s)", doc.ID, existing.Source, path)
			}
			store.documents[doc.ID] = doc
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return store, nil
}

// NewStore validates docs the same way LoadFS does and collects them into a
// store. Documents need a non-empty, unique ID.
func NewStore(docs ...Document) (*Store, error) {
	store := &Store{documents: make(map[string]Document, len(docs))}
	var result *multierror.Error
	for _, raw := range docs {
		id := strings.TrimSpace(raw.ID)
		if id == "" {
			result = multierror.Append(result, fmt.Errorf("formdoc: document from %s has an empty id", raw.Source))
			continue
		}
		if _, exists := store.documents[id]; exists {
			result = multierror.Append(result, fmt.Errorf("formdoc: duplicate form %q", id))
			continue
		}
		doc, err := normaliseDocument(raw, id, raw.Source)
		if err != nil {
			result = multierror.Append(result, err)
			continue
		}
		store.documents[id] = doc
	}
	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}
	return store, nil
}

type documentFile struct {
	Forms map[string]Document `json:"forms" yaml:"forms"`
}

// Parse decodes one JSON or YAML file and validates every form it declares.
// All validation problems in the file are reported together. Documents are
// returned sorted by id.
func Parse(data []byte, source string) ([]Document, error) {
	file, err := parseDocument(data, source)
	if err != nil {
		return nil, err
	}
	if len(file.Forms) == 0 {
		return nil, fmt.Errorf("formdoc: file %s declares no forms", source)
	}

	var result *multierror.Error
	docs := make([]Document, 0, len(file.Forms))
	for rawID, raw := range file.Forms {
		id := strings.TrimSpace(rawID)
		if id == "" {
			result = multierror.Append(result, fmt.Errorf("formdoc: file %s defines an empty form id", source))
			continue
		}
		doc, err := normaliseDocument(raw, id, source)
		if err != nil {
			result = multierror.Append(result, err)
			continue
		}
		docs = append(docs, doc)
	}
	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}

	sortDocuments(docs)
	return docs, nil
}

func parseDocument(data []byte, source string) (documentFile, error) {
	var file documentFile
	if len(strings.TrimSpace(string(data))) == 0 {
		return documentFile{}, fmt.Errorf("formdoc: file %s is empty", source)
	}

	if err := json.Unmarshal(data, &file); err == nil {
		return file, nil
	}

	file = documentFile{}
	if err := yaml.Unmarshal(data, &file); err == nil {
		return file, nil
	}

	return documentFile{}, fmt.Errorf("formdoc: parse %s: invalid JSON or YAML", source)
}

// normaliseDocument trims names, strips markup from display text and checks
// the field list. Every problem found is returned in one multierror.
func normaliseDocument(raw Document, id, source string) (Document, error) {
	doc := Document{
		ID:          id,
		Source:      source,
		Title:       sanitizeText(raw.Title),
		Description: sanitizeText(raw.Description),
		Layout:      strings.TrimSpace(raw.Layout),
		Sections:    make([]Section, 0, len(raw.Sections)),
		Fields:      make([]Field, 0, len(raw.Fields)),
	}

	var result *multierror.Error
	fail := func(format string, args ...any) {
		result = multierror.Append(result, fmt.Errorf("formdoc: form %q (file %s): %s", id, source, fmt.Sprintf(format, args...)))
	}

	if doc.Layout != "" {
		if _, ok := layout.ParseOrientation(doc.Layout); !ok {
			fail("unknown layout %q", doc.Layout)
		}
	}

	sections := make(map[string]struct{}, len(raw.Sections))
	for idx, section := range raw.Sections {
		sid := strings.TrimSpace(section.ID)
		if sid == "" {
			fail("section at index %d has an empty id", idx)
			continue
		}
		if _, exists := sections[sid]; exists {
			fail("duplicate section %q", sid)
			continue
		}
		sections[sid] = struct{}{}
		orientation := strings.TrimSpace(section.Layout)
		if orientation != "" {
			if _, ok := layout.ParseOrientation(orientation); !ok {
				fail("section %q has unknown layout %q", sid, orientation)
			}
		}
		doc.Sections = append(doc.Sections, Section{
			ID:     sid,
			Title:  sanitizeText(section.Title),
			Layout: orientation,
		})
	}

	if len(raw.Fields) == 0 {
		fail("declares no fields")
	}
	names := make(map[string]struct{}, len(raw.Fields))
	for idx, field := range raw.Fields {
		cleaned := cloneField(field)
		if cleaned.Name == "" && !strings.EqualFold(cleaned.Type, "caption") {
			fail("field at index %d has an empty name", idx)
			continue
		}
		if cleaned.Name != "" {
			if _, exists := names[cleaned.Name]; exists {
				fail("duplicate field %q", cleaned.Name)
				continue
			}
			names[cleaned.Name] = struct{}{}
		}
		if cleaned.Section != "" {
			if _, ok := sections[cleaned.Section]; !ok {
				fail("field %q references unknown section %q", cleaned.Name, cleaned.Section)
			}
		} else if _, ok := sections[cleaned.Name]; ok && cleaned.Name != "" {
			fail("field %q collides with section id", cleaned.Name)
		}
		if cleaned.MinLength != nil && cleaned.MaxLength != nil && *cleaned.MinLength > *cleaned.MaxLength {
			fail("field %q has minLength greater than maxLength", cleaned.Name)
		}
		if cleaned.Minimum != nil && cleaned.Maximum != nil && *cleaned.Minimum > *cleaned.Maximum {
			fail("field %q has minimum greater than maximum", cleaned.Name)
		}
		doc.Fields = append(doc.Fields, cleaned)
	}

	if err := result.ErrorOrNil(); err != nil {
		return Document{}, err
	}
	return doc, nil
}

func cloneField(field Field) Field {
	out := field
	out.Name = strings.TrimSpace(field.Name)
	out.Type = strings.ToLower(strings.TrimSpace(field.Type))
	out.Format = strings.TrimSpace(field.Format)
	out.Widget = strings.TrimSpace(field.Widget)
	out.Section = strings.TrimSpace(field.Section)
	out.Label = sanitizeText(field.Label)
	out.Description = sanitizeText(field.Description)
	if len(field.Options) > 0 {
		out.Options = make([]string, 0, len(field.Options))
		for _, option := range field.Options {
			out.Options = append(out.Options, sanitizeText(option))
		}
	}
	return out
}

func isDocumentFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}

func sortDocuments(docs []Document) {
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
}
