package valuetype

import "regexp"

// CheckFunc validates a value against optional params. Returning (false, nil)
// rejects the value; returning an error rejects it with the error text as the
// message.
type CheckFunc func(value, params any) (bool, error)

type checkerKind uint8

const (
	checkerNone checkerKind = iota
	checkerPredicate
	checkerPattern
)

// Checker is either a predicate or a pattern rule. The zero value accepts
// every input.
type Checker struct {
	kind      checkerKind
	predicate CheckFunc
	pattern   *regexp.Regexp
}

// Predicate wraps fn as a checker. A nil fn yields the zero checker.
func Predicate(fn CheckFunc) Checker {
	if fn == nil {
		return Checker{}
	}
	return Checker{kind: checkerPredicate, predicate: fn}
}

// Is adapts a params-free boolean predicate.
func Is(fn func(value any) bool) Checker {
	if fn == nil {
		return Checker{}
	}
	return Predicate(func(value, _ any) (bool, error) {
		return fn(value), nil
	})
}

// Pattern builds a checker that matches the string form of the value against
// re. A nil re yields the zero checker.
func Pattern(re *regexp.Regexp) Checker {
	if re == nil {
		return Checker{}
	}
	return Checker{kind: checkerPattern, pattern: re}
}

// MustPattern compiles expr and panics when it is invalid.
func MustPattern(expr string) Checker {
	return Pattern(regexp.MustCompile(expr))
}

// IsZero reports whether the checker is unset.
func (c Checker) IsZero() bool {
	return c.kind == checkerNone
}

// IsPattern reports whether the checker is a pattern rule.
func (c Checker) IsPattern() bool {
	return c.kind == checkerPattern
}

// Regexp returns the pattern of a pattern rule, nil otherwise.
func (c Checker) Regexp() *regexp.Regexp {
	if c.kind != checkerPattern {
		return nil
	}
	return c.pattern
}

func (c Checker) eval(value, params any) (bool, error) {
	switch c.kind {
	case checkerPattern:
		return c.pattern.MatchString(stringOf(value)), nil
	case checkerPredicate:
		return c.predicate(value, params)
	default:
		return true, nil
	}
}
