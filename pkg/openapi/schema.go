package openapi

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formlet/pkg/formdoc"
)

// extensionKey carries per-property form hints: label, widget and order.
const extensionKey = "x-formlet"

func convertProperty(name string, prop *openapi3.Schema, required bool, hints map[string]any) (formdoc.Field, bool) {
	kind := schemaType(prop)
	switch kind {
	case openapi3.TypeString, openapi3.TypeInteger, openapi3.TypeNumber, openapi3.TypeBoolean:
	case "":
		if len(prop.Enum) == 0 {
			return formdoc.Field{}, false
		}
		kind = openapi3.TypeString
	default:
		return formdoc.Field{}, false
	}

	field := formdoc.Field{
		Name:        name,
		Label:       prop.Title,
		Description: prop.Description,
		Type:        kind,
		Format:      prop.Format,
		Required:    required,
		Default:     prop.Default,
		Pattern:     prop.Pattern,
	}
	if label, ok := hints["label"].(string); ok && label != "" {
		field.Label = label
	}
	if widget, ok := hints["widget"].(string); ok {
		field.Widget = widget
	}
	if field.Label == "" {
		field.Label = humanize(name)
	}
	for _, option := range prop.Enum {
		field.Options = append(field.Options, fmt.Sprint(option))
	}
	if prop.MinLength != 0 {
		value := int(prop.MinLength)
		field.MinLength = &value
	}
	if prop.MaxLength != nil {
		value := int(*prop.MaxLength)
		field.MaxLength = &value
	}
	if prop.Min != nil {
		value := *prop.Min
		field.Minimum = &value
	}
	if prop.Max != nil {
		value := *prop.Max
		field.Maximum = &value
	}
	return field, true
}

func schemaType(schema *openapi3.Schema) string {
	if schema == nil || schema.Type == nil {
		return ""
	}
	values := schema.Type.Slice()
	for _, value := range values {
		if value != openapi3.TypeNull {
			return value
		}
	}
	return ""
}

func isType(schema *openapi3.Schema, kind string) bool {
	if schemaType(schema) == kind {
		return true
	}
	return kind == openapi3.TypeObject && schemaType(schema) == "" && len(schema.Properties) > 0
}

func formletExtension(ext map[string]any) map[string]any {
	if len(ext) == 0 {
		return nil
	}
	mapped, _ := ext[extensionKey].(map[string]any)
	return mapped
}

// orderedProperties sorts by the "order" hint, then by name. Properties
// without a hint come after every hinted one.
func orderedProperties(props openapi3.Schemas) []string {
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	order := func(name string) float64 {
		ref := props[name]
		if ref == nil || ref.Value == nil {
			return math.MaxFloat64
		}
		if value, ok := formletExtension(ref.Value.Extensions)["order"].(float64); ok {
			return value
		}
		return math.MaxFloat64
	}
	sort.SliceStable(names, func(i, j int) bool {
		oi, oj := order(names[i]), order(names[j])
		if oi != oj {
			return oi < oj
		}
		return names[i] < names[j]
	})
	return names
}

// humanize turns "first_name" or "firstName" into "First name".
func humanize(name string) string {
	var b strings.Builder
	prevLower := false
	for i, r := range name {
		switch {
		case r == '_' || r == '-' || r == '.':
			b.WriteRune(' ')
			prevLower = false
			continue
		case unicode.IsUpper(r) && prevLower:
			b.WriteRune(' ')
		}
		if i == 0 {
			b.WriteRune(unicode.ToUpper(r))
		} else {
			b.WriteRune(unicode.ToLower(r))
		}
		prevLower = unicode.IsLower(r) || unicode.IsDigit(r)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
