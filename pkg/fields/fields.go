// Package fields binds named payload fields to registered value types. A Set
// is compiled once against a manager (type existence and params are verified
// up front) and then validates decoded JSON bodies or query strings, one type
// per field.
package fields

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/goliatone/go-valuetype/pkg/valuetype"
)

// CodeMissing marks a required field absent from the payload. It sits beside
// the pipeline codes reported by valuetype.
const CodeMissing valuetype.Code = "MISSING_FIELD"

var (
	// ErrInvalidField wraps declaration errors found while compiling a Set.
	ErrInvalidField = errors.New("fields: invalid field")
)

// Field declares one payload entry.
type Field struct {
	Name        string `json:"name" yaml:"name"`
	Type        string `json:"type" yaml:"type"`
	Params      any    `json:"params,omitempty" yaml:"params,omitempty"`
	Required    bool   `json:"required,omitempty" yaml:"required,omitempty"`
	Format      *bool  `json:"format,omitempty" yaml:"format,omitempty"`
	Default     any    `json:"default,omitempty" yaml:"default,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Resolver is the part of a manager a Set depends on.
type Resolver interface {
	Lookup(name string) (*valuetype.Item, bool)
	CheckParams(name string, params any) error
}

// Option configures a Set during compilation.
type Option func(*Set)

// WithLogger routes per-field diagnostics to logger.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *Set) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithID labels the set, e.g. with an operation id.
func WithID(id string) Option {
	return func(s *Set) {
		s.id = strings.TrimSpace(id)
	}
}

type boundField struct {
	Field
	item *valuetype.Item
}

// Set is a compiled, immutable list of fields.
type Set struct {
	id     string
	fields []boundField
	logger logrus.FieldLogger
}

// Compile resolves every field's type and validates its params. All
// declaration problems are reported together.
func Compile(resolver Resolver, fields []Field, options ...Option) (*Set, error) {
	if resolver == nil {
		return nil, errors.New("fields: resolver is required")
	}
	set := &Set{}
	for _, opt := range options {
		if opt != nil {
			opt(set)
		}
	}
	if set.logger == nil {
		logger := logrus.New()
		logger.SetOutput(io.Discard)
		set.logger = logger
	}

	var errs []error
	seen := make(map[string]struct{}, len(fields))
	for idx, field := range fields {
		name := strings.TrimSpace(field.Name)
		if name == "" {
			errs = append(errs, fmt.Errorf("%w: field %d has no name", ErrInvalidField, idx))
			continue
		}
		if _, dup := seen[name]; dup {
			errs = append(errs, fmt.Errorf("%w: duplicate field %q", ErrInvalidField, name))
			continue
		}
		seen[name] = struct{}{}

		item, ok := resolver.Lookup(field.Type)
		if !ok {
			errs = append(errs, fmt.Errorf("%w: field %q: %w: %q", ErrInvalidField, name, valuetype.ErrUnknownType, field.Type))
			continue
		}
		if err := resolver.CheckParams(field.Type, field.Params); err != nil {
			errs = append(errs, fmt.Errorf("%w: field %q: %w", ErrInvalidField, name, err))
			continue
		}
		field.Name = name
		set.fields = append(set.fields, boundField{Field: field, item: item})
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return set, nil
}

// MustCompile panics when Compile fails. Useful for init-time wiring.
func MustCompile(resolver Resolver, fields []Field, options ...Option) *Set {
	set, err := Compile(resolver, fields, options...)
	if err != nil {
		panic(err)
	}
	return set
}

// ID returns the set label.
func (s *Set) ID() string {
	return s.id
}

// Fields returns the declarations in order.
func (s *Set) Fields() []Field {
	out := make([]Field, len(s.fields))
	for idx, bound := range s.fields {
		out[idx] = bound.Field
	}
	return out
}

// Issue describes one rejected field.
type Issue struct {
	Field   string         `json:"field"`
	Code    valuetype.Code `json:"code"`
	Message string         `json:"message"`
}

// Report collects the outcome of validating a payload.
type Report struct {
	Valid   bool                             `json:"valid"`
	Values  map[string]any                   `json:"values,omitempty"`
	Results map[string]valuetype.ValueResult `json:"results,omitempty"`
	Issues  []Issue                          `json:"issues,omitempty"`
}

// Validate runs every declared field through its type. Absent optional
// fields are skipped; defaults fill absent fields before validation.
func (s *Set) Validate(input map[string]any) Report {
	report := Report{
		Valid:   true,
		Values:  make(map[string]any, len(s.fields)),
		Results: make(map[string]valuetype.ValueResult, len(s.fields)),
	}
	for _, field := range s.fields {
		raw, present := input[field.Name]
		if !present && field.Default != nil {
			raw, present = field.Default, true
		}
		if !present {
			if field.Required {
				report.addIssue(Issue{Field: field.Name, Code: CodeMissing, Message: "field is required"})
				s.logFailure(field, CodeMissing, "field is required")
			}
			continue
		}

		var result valuetype.ValueResult
		if field.Format != nil {
			result = field.item.Value(raw, field.Params, *field.Format)
		} else {
			result = field.item.Value(raw, field.Params)
		}
		report.Results[field.Name] = result
		if !result.OK {
			report.addIssue(Issue{Field: field.Name, Code: result.Code, Message: result.Message})
			s.logFailure(field, result.Code, result.Message)
			continue
		}
		report.Values[field.Name] = result.Value
	}
	return report
}

// ValidateQuery adapts query-string values: single values are passed as
// strings, repeated keys as []string.
func (s *Set) ValidateQuery(values url.Values) Report {
	input := make(map[string]any, len(values))
	for key, list := range values {
		switch len(list) {
		case 0:
			continue
		case 1:
			input[key] = list[0]
		default:
			input[key] = append([]string(nil), list...)
		}
	}
	return s.Validate(input)
}

func (s *Set) logFailure(field boundField, code valuetype.Code, message string) {
	s.logger.WithFields(logrus.Fields{
		"set":   s.id,
		"field": field.Name,
		"type":  field.Type,
		"code":  code,
	}).Debug(message)
}

func (r *Report) addIssue(issue Issue) {
	r.Valid = false
	r.Issues = append(r.Issues, issue)
}

// Errors groups issue messages by field, the shape form renderers and JSON
// error payloads expect.
func (r Report) Errors() map[string][]string {
	if len(r.Issues) == 0 {
		return nil
	}
	out := make(map[string][]string, len(r.Issues))
	for _, issue := range r.Issues {
		out[issue.Field] = append(out[issue.Field], issue.Message)
	}
	return out
}

// Err returns nil for valid reports and a *ValidationError otherwise.
func (r Report) Err() error {
	if r.Valid {
		return nil
	}
	return &ValidationError{Issues: append([]Issue(nil), r.Issues...)}
}

// ValidationError lists every rejected field.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, fmt.Sprintf("%s: %s (%s)", issue.Field, issue.Message, issue.Code))
	}
	sort.Strings(parts)
	return "fields: validation failed: " + strings.Join(parts, "; ")
}
