package openapi

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-valuetype/pkg/fields"
	"github.com/goliatone/go-valuetype/pkg/valuetype"
)

const (
	// ExtensionType names the value type a schema was generated from. Import
	// prefers it over inference.
	ExtensionType = "x-valuetype"

	componentPrefix = "#/components/schemas/"
)

var componentName = regexp.MustCompile(`^[a-zA-Z0-9.\-_]+$`)

// Generator derives schemas from the types registered on a manager.
type Generator struct {
	manager *valuetype.Manager
	refs    bool
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithComponentRefs makes field properties without per-field params point at
// the shared component schema instead of inlining it.
func WithComponentRefs(enabled bool) GeneratorOption {
	return func(g *Generator) {
		g.refs = enabled
	}
}

// NewGenerator binds a generator to m.
func NewGenerator(m *valuetype.Manager, options ...GeneratorOption) *Generator {
	g := &Generator{manager: m}
	for _, opt := range options {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// Schema describes the named type with params applied.
func (g *Generator) Schema(name string, params any) (*openapi3.Schema, error) {
	item, ok := g.manager.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("openapi: %w: %q", valuetype.ErrUnknownType, name)
	}
	return g.itemSchema(item, params), nil
}

// Components returns one schema per registered type, keyed by type name.
// Names that are not valid component keys are skipped.
func (g *Generator) Components() openapi3.Schemas {
	schemas := make(openapi3.Schemas, g.manager.Len())
	g.manager.ForEach(func(name string, item *valuetype.Item) bool {
		if componentName.MatchString(name) {
			schemas[name] = openapi3.NewSchemaRef("", g.itemSchema(item, nil))
		}
		return true
	})
	return schemas
}

// ObjectSchema describes a payload accepted by set.
func (g *Generator) ObjectSchema(set *fields.Set) *openapi3.Schema {
	obj := openapi3.NewObjectSchema()
	obj.Properties = make(openapi3.Schemas)
	for _, field := range set.Fields() {
		obj.Properties[field.Name] = g.fieldSchema(field)
		if field.Required {
			obj.Required = append(obj.Required, field.Name)
		}
	}
	return obj
}

// Parameters describes set as query parameters.
func (g *Generator) Parameters(set *fields.Set) openapi3.Parameters {
	params := make(openapi3.Parameters, 0, len(set.Fields()))
	for _, field := range set.Fields() {
		param := openapi3.NewQueryParameter(field.Name).WithRequired(field.Required)
		param.Schema = g.fieldSchema(field)
		if field.Description != "" {
			param.Description = field.Description
		}
		params = append(params, &openapi3.ParameterRef{Value: param})
	}
	return params
}

func (g *Generator) fieldSchema(field fields.Field) *openapi3.SchemaRef {
	item, ok := g.manager.Lookup(field.Type)
	if !ok {
		return openapi3.NewSchemaRef("", &openapi3.Schema{Description: field.Description})
	}
	schema := g.itemSchema(item, field.Params)
	custom := field.Params != nil || field.Description != "" || field.Default != nil
	if field.Description != "" {
		schema.Description = field.Description
	}
	if field.Default != nil {
		schema.Default = field.Default
	}
	if g.refs && !custom && componentName.MatchString(field.Type) {
		return openapi3.NewSchemaRef(componentPrefix+field.Type, schema)
	}
	return openapi3.NewSchemaRef("", schema)
}

func (g *Generator) itemSchema(item *valuetype.Item, params any) *openapi3.Schema {
	info := item.Info()
	swaggerType := info.SwaggerType
	if swaggerType == "" {
		swaggerType = valuetype.SwaggerString
	}

	schema := &openapi3.Schema{
		Type:        &openapi3.Types{string(swaggerType)},
		Description: info.Description,
		Format:      info.Hints.Format,
		Pattern:     info.Hints.Pattern,
		Nullable:    info.Nullable,
		Extensions:  map[string]any{ExtensionType: item.Name()},
	}
	if schema.Pattern == "" {
		if re := info.Checker.Regexp(); re != nil {
			schema.Pattern = re.String()
		}
	}
	if len(info.Hints.Enum) > 0 {
		schema.Enum = append([]any(nil), info.Hints.Enum...)
	}
	if info.Hints.Min != nil {
		lo := *info.Hints.Min
		schema.Min = &lo
	}
	if info.Hints.Max != nil {
		hi := *info.Hints.Max
		schema.Max = &hi
	}
	if info.Hints.MinLength != nil && *info.Hints.MinLength > 0 {
		schema.MinLength = uint64(*info.Hints.MinLength)
	}
	if info.Hints.MaxLength != nil && *info.Hints.MaxLength >= 0 {
		maxLen := uint64(*info.Hints.MaxLength)
		schema.MaxLength = &maxLen
	}

	switch baseName(item) {
	case valuetype.TypeIntArray:
		schema.Items = openapi3.NewIntegerSchema().NewRef()
	case valuetype.TypeStringArray:
		schema.Items = openapi3.NewStringSchema().NewRef()
	case valuetype.TypeArray:
		if elemName, ok := valuetype.ArrayItemType(params); ok {
			if elem, ok := g.manager.Lookup(elemName); ok {
				schema.Items = openapi3.NewSchemaRef("", g.itemSchema(elem, nil))
			}
		}
	case valuetype.TypeEnum:
		if values := valuetype.EnumValues(params); len(values) > 0 {
			schema.Enum = values
			schema.Type = enumType(values)
		}
	}

	if swaggerType == valuetype.SwaggerNumber || swaggerType == valuetype.SwaggerInteger {
		if r, ok := valuetype.RangeOf(params); ok {
			if r.Min != nil {
				schema.Min = r.Min
			}
			if r.Max != nil {
				schema.Max = r.Max
			}
		}
	}
	if swaggerType == valuetype.SwaggerArray && schema.Items == nil {
		schema.Items = openapi3.NewSchemaRef("", &openapi3.Schema{})
	}
	return schema
}

// baseName strips the nullable prefix from derived siblings.
func baseName(item *valuetype.Item) string {
	if item.Nullable() {
		return strings.TrimPrefix(item.Name(), valuetype.NullablePrefix)
	}
	return item.Name()
}

func enumType(values []any) *openapi3.Types {
	allStrings, allNumbers := true, true
	for _, v := range values {
		switch v.(type) {
		case string:
			allNumbers = false
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
			allStrings = false
		default:
			allStrings, allNumbers = false, false
		}
	}
	switch {
	case allStrings:
		return &openapi3.Types{openapi3.TypeString}
	case allNumbers:
		return &openapi3.Types{openapi3.TypeNumber}
	default:
		return nil
	}
}
