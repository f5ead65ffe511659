package openapi

import (
	"errors"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// SchemaIssue is one violation reported by an OpenAPI schema.
type SchemaIssue struct {
	Path    string `json:"path,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// SchemaValidationResult reports how a payload fares against a generated
// schema, which is what API consumers see before values reach the manager.
type SchemaValidationResult struct {
	Valid  bool          `json:"valid"`
	Issues []SchemaIssue `json:"issues,omitempty"`
}

// ValidatePayload checks payload against schema and collects every issue.
// Payloads must use JSON decoding shapes (map[string]any, []any, float64).
func ValidatePayload(schema *openapi3.Schema, payload any) SchemaValidationResult {
	result := SchemaValidationResult{Valid: true}
	if schema == nil {
		return result
	}
	err := schema.VisitJSON(payload, openapi3.MultiErrors())
	if err == nil {
		return result
	}

	result.Valid = false
	for _, leaf := range flatten(err) {
		result.Issues = append(result.Issues, issueFromError(leaf))
	}
	sort.SliceStable(result.Issues, func(i, j int) bool {
		return result.Issues[i].Path < result.Issues[j].Path
	})
	return result
}

func flatten(err error) []error {
	var multi openapi3.MultiError
	if !errors.As(err, &multi) {
		return []error{err}
	}
	var out []error
	for _, item := range multi {
		out = append(out, flatten(item)...)
	}
	return out
}

func issueFromError(err error) SchemaIssue {
	var schemaErr *openapi3.SchemaError
	if !errors.As(err, &schemaErr) {
		return SchemaIssue{Message: strings.TrimSpace(err.Error())}
	}
	pointer := schemaErr.JSONPointer()
	issue := SchemaIssue{
		Field:   strings.Join(pointer, "."),
		Message: strings.TrimSpace(schemaErr.Reason),
	}
	if len(pointer) > 0 {
		issue.Path = "/" + strings.Join(escapePointer(pointer), "/")
	}
	if issue.Message == "" {
		issue.Message = strings.TrimSpace(schemaErr.Error())
	}
	return issue
}

func escapePointer(segments []string) []string {
	out := make([]string, len(segments))
	for idx, segment := range segments {
		segment = strings.ReplaceAll(segment, "~", "~0")
		out[idx] = strings.ReplaceAll(segment, "/", "~1")
	}
	return out
}
