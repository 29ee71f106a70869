package formlet

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/goliatone/go-formlet/pkg/formdoc"
	pkgopenapi "github.com/goliatone/go-formlet/pkg/openapi"
)

// LoadDocument reads every YAML/JSON form document under fsys and returns the
// one registered under id.
func LoadDocument(fsys fs.FS, id string) (Document, error) {
	store, err := formdoc.LoadFS(fsys)
	if err != nil {
		return Document{}, err
	}
	return pick(store, id)
}

// LoadOpenAPIDocument imports the OpenAPI description at name and returns the
// form for operation id.
func LoadOpenAPIDocument(ctx context.Context, fsys fs.FS, name, id string, options ...pkgopenapi.Option) (Document, error) {
	docs, err := pkgopenapi.ImportFS(ctx, fsys, name, options...)
	if err != nil {
		return Document{}, err
	}
	store, err := formdoc.NewStore(docs...)
	if err != nil {
		return Document{}, err
	}
	return pick(store, id)
}

// ParseDocument parses a single YAML/JSON payload and returns the form
// registered under id. source names the payload in error messages.
func ParseDocument(data []byte, source, id string) (Document, error) {
	docs, err := formdoc.Parse(data, source)
	if err != nil {
		return Document{}, err
	}
	store, err := formdoc.NewStore(docs...)
	if err != nil {
		return Document{}, err
	}
	return pick(store, id)
}

func pick(store *formdoc.Store, id string) (Document, error) {
	if store.Empty() {
		return Document{}, errors.New("formlet: no form documents found")
	}
	if id == "" {
		ids := store.IDs()
		if len(ids) != 1 {
			return Document{}, fmt.Errorf("formlet: form id is required, choose one of %v", ids)
		}
		id = ids[0]
	}
	doc, ok := store.Document(id)
	if !ok {
		return Document{}, fmt.Errorf("formlet: form %q not found, choose one of %v", id, store.IDs())
	}
	return doc, nil
}
