package openapi

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-valuetype/pkg/fields"
	"github.com/goliatone/go-valuetype/pkg/valuetype"
)

// ParserOptions controls how existing documents are read.
type ParserOptions struct {
	// ResolveReferences allows external $ref targets and validates the
	// document after loading. Defaults to true.
	ResolveReferences bool

	// AllowPartialDocuments accepts documents without operations.
	AllowPartialDocuments bool
}

// ParserOption mutates ParserOptions.
type ParserOption func(*ParserOptions)

// WithReferenceResolution toggles external reference resolution and
// validation.
func WithReferenceResolution(enabled bool) ParserOption {
	return func(opts *ParserOptions) {
		opts.ResolveReferences = enabled
	}
}

// WithPartialDocuments toggles support for documents without operations.
func WithPartialDocuments(enabled bool) ParserOption {
	return func(opts *ParserOptions) {
		opts.AllowPartialDocuments = enabled
	}
}

// NewParserOptions applies options over the defaults.
func NewParserOptions(options ...ParserOption) ParserOptions {
	cfg := ParserOptions{ResolveReferences: true}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// ImportedOperation carries the field declarations read from one operation.
type ImportedOperation struct {
	ID          string
	Method      string
	Path        string
	Summary     string
	Description string
	Body        []fields.Field
	Query       []fields.Field
}

// Import reads every operation of a JSON or YAML document and maps its JSON
// request body properties and query parameters to field declarations. Keys
// are operation ids; operations without one are keyed "method:path".
func Import(ctx context.Context, data []byte, options ...ParserOption) (map[string]ImportedOperation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errors.New("openapi: document payload is empty")
	}
	opts := NewParserOptions(options...)

	loader := &openapi3.Loader{
		Context:               ctx,
		IsExternalRefsAllowed: opts.ResolveReferences,
	}
	spec, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	if opts.ResolveReferences {
		if err := spec.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return nil, fmt.Errorf("openapi: validate: %w", err)
		}
	}

	operations := make(map[string]ImportedOperation)
	if spec.Paths != nil {
		for path, item := range spec.Paths.Map() {
			if item == nil {
				continue
			}
			for method, operation := range item.Operations() {
				collectOperation(operations, method, path, item.Parameters, operation)
			}
		}
	}
	if len(operations) == 0 && !opts.AllowPartialDocuments {
		return nil, errors.New("openapi: no operations extracted")
	}
	return operations, nil
}

func collectOperation(target map[string]ImportedOperation, method, path string, shared openapi3.Parameters, operation *openapi3.Operation) {
	if operation == nil {
		return
	}
	id := operation.OperationID
	if id == "" {
		id = strings.ToLower(method) + ":" + path
	}

	imported := ImportedOperation{
		ID:          id,
		Method:      strings.ToUpper(method),
		Path:        path,
		Summary:     operation.Summary,
		Description: operation.Description,
		Body:        bodyFields(operation.RequestBody),
	}
	for _, params := range []openapi3.Parameters{shared, operation.Parameters} {
		for _, ref := range params {
			if ref == nil || ref.Value == nil || ref.Value.In != openapi3.ParameterInQuery {
				continue
			}
			field := FieldFromSchema(ref.Value.Name, ref.Value.Schema, ref.Value.Required)
			if field.Description == "" {
				field.Description = ref.Value.Description
			}
			imported.Query = append(imported.Query, field)
		}
	}
	target[id] = imported
}

func bodyFields(body *openapi3.RequestBodyRef) []fields.Field {
	if body == nil || body.Value == nil {
		return nil
	}
	media := body.Value.Content.Get("application/json")
	if media == nil {
		for _, mediaType := range []string{"application/x-www-form-urlencoded", "multipart/form-data"} {
			if media = body.Value.Content.Get(mediaType); media != nil {
				break
			}
		}
	}
	if media == nil || media.Schema == nil || media.Schema.Value == nil {
		return nil
	}
	return ObjectFields(media.Schema.Value)
}

// ObjectFields maps the properties of an object schema to fields, sorted by
// name.
func ObjectFields(schema *openapi3.Schema) []fields.Field {
	if schema == nil || len(schema.Properties) == 0 {
		return nil
	}
	required := make(map[string]bool, len(schema.Required))
	for _, name := range schema.Required {
		required[name] = true
	}
	names := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]fields.Field, 0, len(names))
	for _, name := range names {
		out = append(out, FieldFromSchema(name, schema.Properties[name], required[name]))
	}
	return out
}

// FieldFromSchema picks a value type for a property schema. The x-valuetype
// extension wins; otherwise the type is inferred from type, format, enum and
// items.
func FieldFromSchema(name string, ref *openapi3.SchemaRef, required bool) fields.Field {
	field := fields.Field{Name: name, Type: valuetype.TypeAny, Required: required}
	if ref == nil || ref.Value == nil {
		return field
	}
	schema := ref.Value
	field.Description = schema.Description
	field.Default = schema.Default

	typeName, explicit := schema.Extensions[ExtensionType].(string)
	if !explicit || typeName == "" {
		typeName = inferType(schema)
		if schema.Nullable {
			typeName = valuetype.NullableName(typeName)
		}
	}
	field.Type = typeName
	field.Params = inferParams(strings.TrimPrefix(typeName, valuetype.NullablePrefix), schema)
	return field
}

func inferType(schema *openapi3.Schema) string {
	if len(schema.Enum) > 0 {
		return valuetype.TypeEnum
	}
	switch {
	case schema.Type.Is(openapi3.TypeString):
		switch strings.ToLower(schema.Format) {
		case "date", "date-time":
			return valuetype.TypeDate
		case "email":
			return valuetype.TypeEmail
		case "uri", "url":
			return valuetype.TypeURL
		case "hostname":
			return valuetype.TypeDomain
		case "byte":
			return valuetype.TypeBase64
		}
		if schema.Pattern == "^[0-9a-f]{24}$" {
			return valuetype.TypeMongoIDString
		}
		return valuetype.TypeString
	case schema.Type.Is(openapi3.TypeInteger):
		return valuetype.TypeInteger
	case schema.Type.Is(openapi3.TypeNumber):
		return valuetype.TypeNumber
	case schema.Type.Is(openapi3.TypeBoolean):
		return valuetype.TypeBoolean
	case schema.Type.Is(openapi3.TypeArray):
		if schema.Items != nil && schema.Items.Value != nil {
			switch {
			case schema.Items.Value.Type.Is(openapi3.TypeInteger):
				return valuetype.TypeIntArray
			case schema.Items.Value.Type.Is(openapi3.TypeString):
				return valuetype.TypeStringArray
			}
		}
		return valuetype.TypeArray
	case schema.Type.Is(openapi3.TypeObject):
		return valuetype.TypeObject
	}
	return valuetype.TypeAny
}

func inferParams(base string, schema *openapi3.Schema) any {
	switch base {
	case valuetype.TypeEnum:
		if len(schema.Enum) > 0 {
			return append([]any(nil), schema.Enum...)
		}
	case valuetype.TypeNumber:
		if schema.Min == nil && schema.Max == nil {
			return nil
		}
		params := make(map[string]any, 2)
		if schema.Min != nil {
			params["min"] = *schema.Min
		}
		if schema.Max != nil {
			params["max"] = *schema.Max
		}
		return params
	case valuetype.TypeArray:
		if schema.Items != nil && schema.Items.Value != nil {
			if elem, ok := schema.Items.Value.Extensions[ExtensionType].(string); ok && elem != "" {
				return elem
			}
		}
	}
	return nil
}
