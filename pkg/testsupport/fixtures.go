package testsupport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formlet/pkg/formdoc"
	"github.com/goliatone/go-formlet/pkg/formlet"
	"github.com/goliatone/go-formlet/pkg/layout"
	"github.com/goliatone/go-formlet/pkg/widgets"
)

// LoadStore reads every form document under dir. Testing helpers fail the
// test on error to keep contract tests concise.
func LoadStore(t *testing.T, dir string) *formdoc.Store {
	t.Helper()

	store, err := LoadStoreFromPath(dir)
	if err != nil {
		t.Fatalf("load store: %v", err)
	}
	return store
}

// LoadStoreFromPath returns a Store without requiring testing.T, allowing
// callers to wire fixtures in setup functions.
func LoadStoreFromPath(dir string) (*formdoc.Store, error) {
	if dir == "" {
		return nil, errors.New("testsupport: document directory is required")
	}
	store, err := formdoc.LoadFS(os.DirFS(dir))
	if err != nil {
		return nil, fmt.Errorf("testsupport: load documents: %w", err)
	}
	return store, nil
}

// MustDocument returns the document registered under id.
func MustDocument(t *testing.T, store *formdoc.Store, id string) formdoc.Document {
	t.Helper()

	doc, ok := store.Document(id)
	if !ok {
		t.Fatalf("document %q not found (have %v)", id, store.IDs())
	}
	return doc
}

// MustBuildForm builds doc and runs the first rebuild against the default
// widget registry.
func MustBuildForm(t *testing.T, doc formdoc.Document) formlet.Form[map[string]any] {
	t.Helper()

	f, err := formdoc.Build(doc)
	if err != nil {
		t.Fatalf("build %s: %v", doc.ID, err)
	}
	form, err := formlet.Rebuild(f, nil, widgets.NewDefaultRegistry())
	if err != nil {
		t.Fatalf("rebuild %s: %v", doc.ID, err)
	}
	return form
}

// Flat renders form and flattens the result the way a session does.
func Flat[T any](form formlet.Form[T], orientation layout.Orientation) layout.Flat {
	return layout.Flatten(orientation, formlet.Render(form, formlet.NewRenderContext(orientation)))
}

// WriteGolden writes value as indented JSON when UPDATE_GOLDENS is set.
func WriteGolden(t *testing.T, path string, value any) {
	t.Helper()

	if os.Getenv("UPDATE_GOLDENS") == "" {
		return
	}
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		t.Fatalf("marshal golden: %v", err)
	}
	WriteMaybeGolden(t, path, payload)
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// MustReadGoldenString reads a golden file and returns its string content.
func MustReadGoldenString(t *testing.T, path string) string {
	t.Helper()
	return string(MustReadGolden(t, path))
}

// MustReadGoldenJSON decodes a JSON golden file into a generic value.
func MustReadGoldenJSON(t *testing.T, path string) any {
	t.Helper()
	var out any
	if err := json.Unmarshal(MustReadGolden(t, path), &out); err != nil {
		t.Fatalf("unmarshal golden: %v", err)
	}
	return out
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}
