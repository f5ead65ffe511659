package valuetype

// SwaggerType is the OpenAPI primitive a value type documents itself as.
type SwaggerType string

const (
	SwaggerString  SwaggerType = "string"
	SwaggerNumber  SwaggerType = "number"
	SwaggerInteger SwaggerType = "integer"
	SwaggerBoolean SwaggerType = "boolean"
	SwaggerArray   SwaggerType = "array"
	SwaggerObject  SwaggerType = "object"
)

// ParseFunc normalises raw input before the check stage.
type ParseFunc func(value any) (any, error)

// FormatFunc canonicalises a checked value.
type FormatFunc func(value any) (any, error)

// ParamsFunc validates the shape of params before they are used by a checker.
type ParamsFunc func(params any) error

// Definition describes one value type. It is copied on registration and never
// mutated afterwards.
type Definition struct {
	// Checker decides validity. The zero value accepts every input.
	Checker Checker
	// ParamsChecker validates params, see Item.CheckParams.
	ParamsChecker ParamsFunc
	// ParamsRequired runs ParamsChecker even when params are absent or empty.
	ParamsRequired bool
	// Parser runs before the check. Nil leaves input unchanged.
	Parser ParseFunc
	// Formatter runs after a passing check when formatting is requested.
	Formatter FormatFunc
	// DefaultFormat decides whether formatting runs when the caller does not
	// request it explicitly.
	DefaultFormat bool
	// Nullable accepts nil as valid and skips parse/format for it. Set on
	// derived Nullable variants.
	Nullable bool

	Description string
	// TSType is the TypeScript annotation used by code generators.
	TSType      string
	SwaggerType SwaggerType
	// Hints mirror constraints the checker enforces. They are documentation
	// only and never consulted by the pipeline.
	Hints   Hints
	Builtin bool
}

// Hints describe a type's constraints to schema generators.
type Hints struct {
	Format    string
	Pattern   string
	Enum      []any
	Min       *float64
	Max       *float64
	MinLength *int
	MaxLength *int
}

// NullablePrefix is prepended to a type name to form its nullable sibling.
const NullablePrefix = "Nullable"

// NullableName returns the name of the nullable sibling of name.
func NullableName(name string) string {
	return NullablePrefix + name
}

func (d Definition) nullable() Definition {
	derived := d
	derived.Nullable = true
	if d.TSType != "" {
		derived.TSType = d.TSType + " | null"
	}
	return derived
}
