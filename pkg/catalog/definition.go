package catalog

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/goliatone/go-valuetype/pkg/valuetype"
)

// Definition builds the declared type on top of the types already registered on m.
func (spec TypeSpec) Definition(m *valuetype.Manager) (valuetype.Definition, error) {
	var def valuetype.Definition
	if base := strings.TrimSpace(spec.Base); base != "" {
		item, ok := m.Lookup(base)
		if !ok {
			return valuetype.Definition{}, fmt.Errorf("catalog: type %q (file %s): base %w: %q", spec.Name, spec.Source, valuetype.ErrUnknownType, base)
		}
		def = item.Info()
		// Registration derives the sibling again from the plain definition.
		def.Nullable = false
		def.TSType = strings.TrimSuffix(def.TSType, " | null")
	}
	def.Builtin = false

	if spec.Min != nil && spec.Max != nil && *spec.Min > *spec.Max {
		return valuetype.Definition{}, fmt.Errorf("catalog: type %q (file %s): min %v exceeds max %v", spec.Name, spec.Source, *spec.Min, *spec.Max)
	}
	if spec.MinLength != nil && spec.MaxLength != nil && *spec.MinLength > *spec.MaxLength {
		return valuetype.Definition{}, fmt.Errorf("catalog: type %q (file %s): minLength %d exceeds maxLength %d", spec.Name, spec.Source, *spec.MinLength, *spec.MaxLength)
	}

	checkers := []valuetype.Checker{def.Checker}
	if spec.Pattern != "" {
		re, err := regexp.Compile(spec.Pattern)
		if err != nil {
			return valuetype.Definition{}, fmt.Errorf("catalog: type %q (file %s): pattern: %w", spec.Name, spec.Source, err)
		}
		checkers = append(checkers, valuetype.Pattern(re))
	}
	if len(spec.Enum) > 0 {
		checkers = append(checkers, valuetype.OneOf(spec.Enum...))
	}
	if spec.Min != nil || spec.Max != nil {
		checkers = append(checkers, valuetype.InRange(valuetype.Range{Min: spec.Min, Max: spec.Max}))
	}
	if spec.MinLength != nil || spec.MaxLength != nil {
		checkers = append(checkers, valuetype.Length(intOr(spec.MinLength, -1), intOr(spec.MaxLength, -1)))
	}
	def.Checker = valuetype.All(checkers...)
	def.Hints = spec.hints(def.Hints)

	if spec.Trim || spec.Lowercase {
		def.Parser = normaliser(def.Parser, spec.Trim, spec.Lowercase)
	}

	if spec.DefaultFormat != nil {
		def.DefaultFormat = *spec.DefaultFormat
	}
	if spec.Description != "" {
		def.Description = spec.Description
	}
	if spec.TSType != "" {
		def.TSType = spec.TSType
	}
	if spec.SwaggerType != "" {
		def.SwaggerType = valuetype.SwaggerType(spec.SwaggerType)
	}
	if def.SwaggerType == "" {
		def.SwaggerType = valuetype.SwaggerString
	}
	if def.TSType == "" && spec.Base == "" {
		def.TSType = "string"
	}
	return def, nil
}

func (spec TypeSpec) hints(base valuetype.Hints) valuetype.Hints {
	if spec.Format != "" {
		base.Format = spec.Format
	}
	if spec.Pattern != "" {
		base.Pattern = spec.Pattern
	}
	if len(spec.Enum) > 0 {
		base.Enum = append([]any(nil), spec.Enum...)
	}
	if spec.Min != nil {
		base.Min = spec.Min
	}
	if spec.Max != nil {
		base.Max = spec.Max
	}
	if spec.MinLength != nil {
		base.MinLength = spec.MinLength
	}
	if spec.MaxLength != nil {
		base.MaxLength = spec.MaxLength
	}
	return base
}

func normaliser(next valuetype.ParseFunc, trim, lower bool) valuetype.ParseFunc {
	return func(value any) (any, error) {
		if next != nil {
			parsed, err := next(value)
			if err != nil {
				return nil, err
			}
			value = parsed
		}
		s, ok := value.(string)
		if !ok {
			return value, nil
		}
		if trim {
			s = strings.TrimSpace(s)
		}
		if lower {
			s = strings.ToLower(s)
		}
		return s, nil
	}
}

func intOr(v *int, fallback int) int {
	if v == nil {
		return fallback
	}
	return *v
}
