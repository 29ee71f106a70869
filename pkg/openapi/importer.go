package openapi

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formlet/pkg/formdoc"
)

// Import parses an OpenAPI 3 document and returns one form document per
// operation that declares an object request body. Documents are keyed by
// operationId, falling back to "method:path", and returned sorted by id.
func Import(ctx context.Context, data []byte, opts ...Option) ([]formdoc.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, errors.New("openapi: document payload is empty")
	}
	cfg := newOptions(opts...)

	loader := &openapi3.Loader{
		Context:               ctx,
		IsExternalRefsAllowed: cfg.ResolveReferences,
	}
	api, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	if cfg.ResolveReferences {
		if err := api.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return nil, fmt.Errorf("openapi: validate: %w", err)
		}
	}
	if api.Paths == nil || api.Paths.Len() == 0 {
		return nil, errors.New("openapi: document does not contain any paths")
	}

	imp := &importer{cfg: cfg}
	for path, item := range api.Paths.Map() {
		if item == nil {
			continue
		}
		imp.collect("GET", path, item.Get)
		imp.collect("PUT", path, item.Put)
		imp.collect("POST", path, item.Post)
		imp.collect("DELETE", path, item.Delete)
		imp.collect("PATCH", path, item.Patch)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(imp.docs) == 0 {
		return nil, errors.New("openapi: no operation declares an object request body")
	}

	sort.Slice(imp.docs, func(i, j int) bool { return imp.docs[i].ID < imp.docs[j].ID })
	return imp.docs, nil
}

// ImportFS reads name from fsys and imports it.
func ImportFS(ctx context.Context, fsys fs.FS, name string, opts ...Option) ([]formdoc.Document, error) {
	if fsys == nil {
		return nil, errors.New("openapi: filesystem is nil")
	}
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("openapi: read %s: %w", name, err)
	}
	docs, err := Import(ctx, data, opts...)
	if err != nil {
		return nil, err
	}
	for i := range docs {
		docs[i].Source = name
	}
	return docs, nil
}

type importer struct {
	cfg  Options
	docs []formdoc.Document
}

func (imp *importer) collect(method, path string, operation *openapi3.Operation) {
	if operation == nil {
		return
	}
	id := operation.OperationID
	if id == "" {
		id = strings.ToLower(method) + ":" + path
	}
	schema := imp.requestSchema(operation.RequestBody)
	if schema == nil || !isType(schema, openapi3.TypeObject) || len(schema.Properties) == 0 {
		imp.cfg.Logger.Trace("operation skipped: no object request body", "operation", id)
		return
	}

	title := operation.Summary
	if title == "" {
		title = id
	}
	doc := formdoc.Document{
		ID:          id,
		Title:       title,
		Description: operation.Description,
		Layout:      "vertical",
	}
	imp.appendFields(&doc, id, "", schema)
	if len(doc.Fields) == 0 {
		imp.cfg.Logger.Debug("operation skipped: no supported properties", "operation", id)
		return
	}
	imp.docs = append(imp.docs, doc)
}

func (imp *importer) requestSchema(body *openapi3.RequestBodyRef) *openapi3.Schema {
	if body == nil || body.Value == nil {
		return nil
	}
	content := body.Value.Content
	for _, mediaType := range imp.cfg.MediaTypes {
		if mt, ok := content[mediaType]; ok && mt != nil && mt.Schema != nil {
			return mt.Schema.Value
		}
	}
	keys := make([]string, 0, len(content))
	for key := range content {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if mt := content[key]; mt != nil && mt.Schema != nil {
			return mt.Schema.Value
		}
	}
	return nil
}

// appendFields adds one field per scalar property of schema. Object
// properties at the top level become sections; deeper objects and arrays
// are skipped.
func (imp *importer) appendFields(doc *formdoc.Document, operationID, section string, schema *openapi3.Schema) {
	required := make(map[string]bool, len(schema.Required))
	for _, name := range schema.Required {
		required[name] = true
	}

	for _, name := range orderedProperties(schema.Properties) {
		ref := schema.Properties[name]
		if ref == nil || ref.Value == nil {
			continue
		}
		prop := ref.Value
		hints := formletExtension(prop.Extensions)

		if isType(prop, openapi3.TypeObject) {
			if section != "" || len(prop.Properties) == 0 {
				imp.cfg.Logger.Debug("property skipped: nested object", "operation", operationID, "property", name)
				continue
			}
			title := prop.Title
			if label, ok := hints["label"].(string); ok && label != "" {
				title = label
			}
			if title == "" {
				title = humanize(name)
			}
			doc.Sections = append(doc.Sections, formdoc.Section{ID: name, Title: title, Layout: "vertical"})
			imp.appendFields(doc, operationID, name, prop)
			continue
		}

		field, ok := convertProperty(name, prop, required[name], hints)
		if !ok {
			imp.cfg.Logger.Debug("property skipped: unsupported type", "operation", operationID, "property", name, "type", schemaType(prop))
			continue
		}
		field.Section = section
		doc.Fields = append(doc.Fields, field)
	}
}
