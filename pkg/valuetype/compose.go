package valuetype

import (
	"math"
	"unicode/utf8"
)

// Eval runs the checker outside an Item. Panics propagate to the caller.
func (c Checker) Eval(value, params any) (bool, error) {
	return c.eval(value, params)
}

// All accepts a value only when every checker accepts it. Checkers run in
// order and the first rejection or error stops evaluation. Zero checkers are
// skipped; with nothing left All returns the zero checker.
func All(checkers ...Checker) Checker {
	active := make([]Checker, 0, len(checkers))
	for _, c := range checkers {
		if !c.IsZero() {
			active = append(active, c)
		}
	}
	switch len(active) {
	case 0:
		return Checker{}
	case 1:
		return active[0]
	}
	return Predicate(func(value, params any) (bool, error) {
		for _, c := range active {
			ok, err := c.eval(value, params)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	})
}

// OneOf accepts values strictly equal to one of allowed. Numeric kinds compare
// by value, so 2 and 2.0 match.
func OneOf(allowed ...any) Checker {
	values := append([]any(nil), allowed...)
	return Is(func(value any) bool {
		for _, candidate := range values {
			if sameValue(candidate, value) {
				return true
			}
		}
		return false
	})
}

// InRange accepts values whose numeric form lies inside r, inclusive.
// Non-numeric values are rejected.
func InRange(r Range) Checker {
	return Is(func(value any) bool {
		n := toNumber(value)
		if math.IsNaN(n) {
			return false
		}
		if r.Min != nil && n < *r.Min {
			return false
		}
		if r.Max != nil && n > *r.Max {
			return false
		}
		return true
	})
}

// Length bounds the rune count of the value's string form. Negative bounds
// are not checked.
func Length(minLen, maxLen int) Checker {
	return Is(func(value any) bool {
		if value == nil {
			return false
		}
		n := utf8.RuneCountInString(stringOf(value))
		if minLen >= 0 && n < minLen {
			return false
		}
		if maxLen >= 0 && n > maxLen {
			return false
		}
		return true
	})
}
