package valuetype

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-valuetype/pkg/validators"
)

// Built-in type names seeded by New.
const (
	TypeBoolean        = "Boolean"
	TypeDate           = "Date"
	TypeString         = "String"
	TypeTrimString     = "TrimString"
	TypeNotEmptyString = "NotEmptyString"
	TypeNumber         = "Number"
	TypeInteger        = "Integer"
	TypeFloat          = "Float"
	TypeObject         = "Object"
	TypeArray          = "Array"
	TypeJSON           = "JSON"
	TypeJSONString     = "JSONString"
	TypeAny            = "Any"
	TypeMongoIDString  = "MongoIdString"
	TypeEmail          = "Email"
	TypeDomain         = "Domain"
	TypeAlpha          = "Alpha"
	TypeAlphaNumeric   = "AlphaNumeric"
	TypeASCII          = "Ascii"
	TypeBase64         = "Base64"
	TypeURL            = "URL"
	TypeEnum           = "ENUM"
	TypeIntArray       = "IntArray"
	TypeStringArray    = "StringArray"
)

// Range bounds a Number value inclusively. Nil bounds are not checked.
type Range struct {
	Min *float64
	Max *float64
}

// Between returns a range with both bounds set.
func Between(lo, hi float64) Range {
	return Range{Min: &lo, Max: &hi}
}

// AtLeast returns a range with only a lower bound.
func AtLeast(lo float64) Range {
	return Range{Min: &lo}
}

// AtMost returns a range with only an upper bound.
func AtMost(hi float64) Range {
	return Range{Max: &hi}
}

func (r Range) params() map[string]any {
	out := make(map[string]any, 2)
	if r.Min != nil {
		out["min"] = *r.Min
	}
	if r.Max != nil {
		out["max"] = *r.Max
	}
	return out
}

var dateLayouts = []string{
	time.DateOnly,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// RegisterBuiltins registers the built-in catalog on m through Register. New
// calls it unless built-in types are disabled.
func RegisterBuiltins(m *Manager, v validators.Validators) {
	if v == nil {
		v = validators.Default()
	}

	isString := func(value any) bool {
		_, ok := value.(string)
		return ok
	}
	stringRule := func(rule func(string) bool) Checker {
		return Is(func(value any) bool {
			s, ok := value.(string)
			return ok && rule(s)
		})
	}

	m.Register(TypeBoolean, Definition{
		Checker: Is(func(value any) bool {
			if _, ok := value.(bool); ok {
				return true
			}
			s, ok := value.(string)
			return ok && v.IsBoolean(s)
		}),
		Formatter: func(value any) (any, error) {
			if b, ok := value.(bool); ok {
				return b, nil
			}
			return parseQueryBoolean(value, truthy(value)), nil
		},
		Description:   "Boolean",
		TSType:        "boolean",
		SwaggerType:   SwaggerBoolean,
		Builtin:       true,
		DefaultFormat: true,
	})

	m.Register(TypeDate, Definition{
		Checker: Is(func(value any) bool {
			switch val := value.(type) {
			case time.Time:
				return true
			case *time.Time:
				return val != nil
			case string:
				return len(strings.Split(val, "-")) == 3
			}
			return false
		}),
		Formatter:     formatDate,
		Description:   "Date (2017-05-01)",
		Hints:         Hints{Format: "date"},
		TSType:        "Date",
		SwaggerType:   SwaggerString,
		Builtin:       true,
		DefaultFormat: true,
	})

	m.Register(TypeString, Definition{
		Checker:     Is(isString),
		Description: "String",
		TSType:      "string",
		SwaggerType: SwaggerString,
		Builtin:     true,
	})

	m.Register(TypeTrimString, Definition{
		Checker:       Is(isString),
		Formatter:     trimString,
		Description:   "String with surrounding whitespace trimmed",
		TSType:        "string",
		SwaggerType:   SwaggerString,
		Builtin:       true,
		DefaultFormat: true,
	})

	m.Register(TypeNotEmptyString, Definition{
		Checker: stringRule(func(s string) bool {
			return !v.IsEmpty(s)
		}),
		Formatter:     trimString,
		Description:   "Non-empty string",
		TSType:        "string",
		SwaggerType:   SwaggerString,
		Builtin:       true,
		DefaultFormat: true,
	})

	m.Register(TypeNumber, Definition{
		Parser: func(value any) (any, error) {
			return toNumber(value), nil
		},
		Checker:       Predicate(checkNumber),
		ParamsChecker: checkNumberParams,
		Description:   "Number",
		TSType:        "number",
		SwaggerType:   SwaggerNumber,
		Builtin:       true,
	})

	m.Register(TypeInteger, Definition{
		Checker: Is(func(value any) bool {
			return v.IsInt(stringOf(value))
		}),
		Formatter:     formatInteger,
		Description:   "Integer",
		Hints:         Hints{Format: "int64"},
		TSType:        "number",
		SwaggerType:   SwaggerInteger,
		Builtin:       true,
		DefaultFormat: true,
	})

	m.Register(TypeFloat, Definition{
		Checker: Is(func(value any) bool {
			return v.IsFloat(stringOf(value))
		}),
		Formatter: func(value any) (any, error) {
			return toNumber(value), nil
		},
		Description:   "Floating point number",
		Hints:         Hints{Format: "double"},
		TSType:        "number",
		SwaggerType:   SwaggerNumber,
		Builtin:       true,
		DefaultFormat: true,
	})

	m.Register(TypeObject, Definition{
		Checker:     Is(isObject),
		Description: "Object",
		TSType:      "Record<string, any>",
		SwaggerType: SwaggerObject,
		Builtin:     true,
	})

	m.Register(TypeArray, Definition{
		Checker:       Is(isSlice),
		ParamsChecker: checkArrayParams,
		Description:   "Array",
		TSType:        "any[]",
		SwaggerType:   SwaggerArray,
		Builtin:       true,
	})

	m.Register(TypeJSON, Definition{
		Checker: stringRule(v.IsJSON),
		Formatter: func(value any) (any, error) {
			s, ok := value.(string)
			if !ok {
				return nil, fmt.Errorf("expected string, got %T", value)
			}
			var out any
			if err := json.Unmarshal([]byte(s), &out); err != nil {
				return nil, err
			}
			return out, nil
		},
		Description:   "Object decoded from a JSON string",
		TSType:        "Record<string, any>",
		SwaggerType:   SwaggerObject,
		Builtin:       true,
		DefaultFormat: true,
	})

	m.Register(TypeJSONString, Definition{
		Checker:       stringRule(v.IsJSON),
		Formatter:     trimString,
		Description:   "JSON string",
		TSType:        "string",
		SwaggerType:   SwaggerString,
		Builtin:       true,
		DefaultFormat: true,
	})

	m.Register(TypeAny, Definition{
		Checker:     Is(func(any) bool { return true }),
		Description: "Any value",
		TSType:      "any",
		SwaggerType: SwaggerString,
		Builtin:     true,
	})

	m.Register(TypeMongoIDString, Definition{
		Checker: Is(func(value any) bool {
			return v.IsMongoID(stringOf(value))
		}),
		Description: "MongoDB ObjectId string",
		Hints:       Hints{Pattern: "^[0-9a-f]{24}$"},
		TSType:      "string",
		SwaggerType: SwaggerString,
		Builtin:     true,
	})

	formatTypes := []struct {
		name        string
		rule        func(string) bool
		description string
		tsType      string
		hints       Hints
	}{
		{TypeEmail, v.IsEmail, "Email address", "string", Hints{Format: "email"}},
		{TypeDomain, v.IsFQDN, "Domain name (e.g. domain.com)", "string", Hints{Format: "hostname"}},
		{TypeAlpha, v.IsAlpha, "Letters only (a-zA-Z)", "string", Hints{Pattern: "^[a-zA-Z]+$"}},
		{TypeAlphaNumeric, v.IsAlphanumeric, "Letters and digits (a-zA-Z0-9)", "string | number", Hints{Pattern: "^[a-zA-Z0-9]+$"}},
		{TypeASCII, v.IsASCII, "ASCII string", "string", Hints{}},
		{TypeBase64, v.IsBase64, "Base64 string", "string", Hints{Format: "byte"}},
		{TypeURL, v.IsURL, "URL string", "string", Hints{Format: "uri"}},
	}
	for _, entry := range formatTypes {
		m.Register(entry.name, Definition{
			Checker:     stringRule(entry.rule),
			Description: entry.description,
			TSType:      entry.tsType,
			SwaggerType: SwaggerString,
			Hints:       entry.hints,
			Builtin:     true,
		})
	}

	m.Register(TypeEnum, Definition{
		Checker:        Predicate(checkEnum),
		ParamsChecker:  checkEnumParams,
		ParamsRequired: true,
		Description:    "Enumeration",
		TSType:         "any",
		SwaggerType:    SwaggerString,
		Builtin:        true,
	})

	m.Register(TypeIntArray, Definition{
		Parser: func(value any) (any, error) {
			if isSlice(value) {
				return value, nil
			}
			parts := strings.Split(stringOf(value), ",")
			out := make([]float64, len(parts))
			for idx, part := range parts {
				out[idx] = parseNumber(part)
			}
			sort.Float64s(out)
			return out, nil
		},
		Checker: Is(func(value any) bool {
			if !isSlice(value) {
				return false
			}
			for _, elem := range sliceValues(value) {
				if !v.IsInt(stringOf(elem)) {
					return false
				}
			}
			return true
		}),
		Description: "Comma separated integer list",
		TSType:      "number[]",
		SwaggerType: SwaggerArray,
		Builtin:     true,
	})

	m.Register(TypeStringArray, Definition{
		Parser: func(value any) (any, error) {
			if isSlice(value) {
				return value, nil
			}
			return strings.Split(stringOf(value), ","), nil
		},
		Checker: Is(isSlice),
		Formatter: func(value any) (any, error) {
			elems := sliceValues(value)
			out := make([]string, len(elems))
			for idx, elem := range elems {
				out[idx] = strings.TrimSpace(stringOf(elem))
			}
			return out, nil
		},
		Description:   "Comma separated string list",
		TSType:        "string[]",
		SwaggerType:   SwaggerArray,
		Builtin:       true,
		DefaultFormat: true,
	})
}

func parseQueryBoolean(value any, fallback bool) bool {
	switch stringOf(value) {
	case "1", "true":
		return true
	case "0", "false":
		return false
	}
	return fallback
}

func trimString(value any) (any, error) {
	s, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("expected string, got %T", value)
	}
	return strings.TrimSpace(s), nil
}

func formatDate(value any) (any, error) {
	switch val := value.(type) {
	case time.Time:
		return val, nil
	case *time.Time:
		if val == nil {
			return nil, errors.New("date is nil")
		}
		return *val, nil
	case string:
		trimmed := strings.TrimSpace(val)
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, trimmed); err == nil {
				return parsed, nil
			}
		}
		return nil, fmt.Errorf("invalid date %q", val)
	}
	return nil, fmt.Errorf("expected date, got %T", value)
}

// int64Bound is 2^63, exact as a float64.
const int64Bound = 1 << 63

func formatInteger(value any) (any, error) {
	if n, ok := numberOf(value); ok {
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return nil, fmt.Errorf("%v is not an integer", value)
		}
		if n >= int64Bound || n < -int64Bound {
			return nil, fmt.Errorf("%v overflows int64", value)
		}
		return int64(n), nil
	}
	parsed, err := strconv.ParseInt(strings.TrimSpace(stringOf(value)), 10, 64)
	if err != nil {
		return nil, err
	}
	return parsed, nil
}

func checkNumber(value, params any) (bool, error) {
	n, ok := value.(float64)
	if !ok {
		n = toNumber(value)
	}
	if math.IsNaN(n) {
		return false, nil
	}
	bounds, ok := paramsMap(params)
	if !ok {
		return true, nil
	}
	if raw, present := bounds["min"]; present {
		lo, ok := numberOf(raw)
		if !ok || !(n >= lo) {
			return false, nil
		}
	}
	if raw, present := bounds["max"]; present {
		hi, ok := numberOf(raw)
		if !ok || !(n <= hi) {
			return false, nil
		}
	}
	return true, nil
}

func checkNumberParams(params any) error {
	bounds, ok := paramsMap(params)
	if !ok {
		return fmt.Errorf("%w: params must be an object with min/max, got %T", ErrInvalidParams, params)
	}
	var (
		lo, hi         float64
		hasMin, hasMax bool
	)
	if raw, present := bounds["max"]; present {
		if hi, hasMax = numberOf(raw); !hasMax {
			return fmt.Errorf("%w: params.max must be a number, got %v (%T)", ErrInvalidParams, raw, raw)
		}
	}
	if raw, present := bounds["min"]; present {
		if lo, hasMin = numberOf(raw); !hasMin {
			return fmt.Errorf("%w: params.min must be a number, got %v (%T)", ErrInvalidParams, raw, raw)
		}
	}
	if hasMin && hasMax && !(lo < hi) {
		return fmt.Errorf("%w: params.min must be less than params.max", ErrInvalidParams)
	}
	return nil
}

func checkArrayParams(params any) error {
	if _, ok := params.(string); ok {
		return nil
	}
	if spec, ok := paramsMap(params); ok {
		if _, ok := spec["type"].(string); ok {
			return nil
		}
	}
	return fmt.Errorf("%w: params must be a type name or an object with a string type", ErrInvalidParams)
}

func checkEnum(value, params any) (bool, error) {
	if !truthy(value) || !isSlice(params) {
		return false, nil
	}
	for _, candidate := range sliceValues(params) {
		if sameValue(candidate, value) {
			return true, nil
		}
	}
	return false, nil
}

func checkEnumParams(params any) error {
	if !isSlice(params) || len(sliceValues(params)) == 0 {
		return fmt.Errorf("%w: params must be a non-empty array", ErrInvalidParams)
	}
	return nil
}
