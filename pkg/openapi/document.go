package openapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-valuetype/pkg/fields"
)

// Version is the OpenAPI version emitted by Build.
const Version = "3.0.3"

var pathParam = regexp.MustCompile(`\{([^{}]+)\}`)

// Operation attaches field sets to an HTTP route.
type Operation struct {
	ID          string
	Method      string
	Path        string
	Summary     string
	Description string
	// Body is the JSON request body, nil for none.
	Body *fields.Set
	// Query lists query string parameters, nil for none.
	Query *fields.Set
}

// Document collects operations and renders them into an OpenAPI document.
type Document struct {
	generator  *Generator
	info       openapi3.Info
	operations []Operation
}

// NewDocument starts a document. Empty title and version fall back to
// defaults so the result validates.
func NewDocument(generator *Generator, title, version string) *Document {
	if strings.TrimSpace(title) == "" {
		title = "Value types"
	}
	if strings.TrimSpace(version) == "" {
		version = "1.0.0"
	}
	return &Document{
		generator: generator,
		info:      openapi3.Info{Title: title, Version: version},
	}
}

// WithDescription sets the document description.
func (d *Document) WithDescription(description string) *Document {
	d.info.Description = description
	return d
}

// AddOperation queues op for Build.
func (d *Document) AddOperation(op Operation) *Document {
	d.operations = append(d.operations, op)
	return d
}

// Build renders every registered type as a component plus the queued
// operations, then validates the result.
func (d *Document) Build(ctx context.Context) (*openapi3.T, error) {
	if d.generator == nil {
		return nil, errors.New("openapi: generator is required")
	}
	info := d.info
	doc := &openapi3.T{
		OpenAPI: Version,
		Info:    &info,
		Paths:   openapi3.NewPaths(),
		Components: &openapi3.Components{
			Schemas: d.generator.Components(),
		},
	}
	doc.Components.Schemas["ValidationIssues"] = openapi3.NewSchemaRef("", issuesSchema())

	for _, op := range d.operations {
		if err := d.addOperation(doc, op); err != nil {
			return nil, err
		}
	}

	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("openapi: validate: %w", err)
	}
	return doc, nil
}

func (d *Document) addOperation(doc *openapi3.T, op Operation) error {
	method := strings.ToUpper(strings.TrimSpace(op.Method))
	switch method {
	case http.MethodGet, http.MethodPut, http.MethodPost, http.MethodDelete,
		http.MethodPatch, http.MethodHead, http.MethodOptions, http.MethodTrace:
	default:
		return fmt.Errorf("openapi: operation %q: unsupported method %q", op.ID, op.Method)
	}
	if !strings.HasPrefix(op.Path, "/") {
		return fmt.Errorf("openapi: operation %q: path %q must start with /", op.ID, op.Path)
	}

	item := doc.Paths.Value(op.Path)
	if item == nil {
		item = &openapi3.PathItem{}
		doc.Paths.Set(op.Path, item)
	}
	if item.GetOperation(method) != nil {
		return fmt.Errorf("openapi: duplicate operation %s %s", method, op.Path)
	}

	operation := openapi3.NewOperation()
	operation.OperationID = op.ID
	operation.Summary = op.Summary
	operation.Description = op.Description

	for _, match := range pathParam.FindAllStringSubmatch(op.Path, -1) {
		param := openapi3.NewPathParameter(match[1]).WithSchema(openapi3.NewStringSchema())
		operation.Parameters = append(operation.Parameters, &openapi3.ParameterRef{Value: param})
	}
	if op.Query != nil {
		operation.Parameters = append(operation.Parameters, d.generator.Parameters(op.Query)...)
	}
	if op.Body != nil {
		body := openapi3.NewRequestBody().
			WithRequired(true).
			WithJSONSchema(d.generator.ObjectSchema(op.Body))
		operation.RequestBody = &openapi3.RequestBodyRef{Value: body}
	}

	operation.AddResponse(http.StatusOK, openapi3.NewResponse().WithDescription("Accepted"))
	operation.AddResponse(http.StatusBadRequest, openapi3.NewResponse().
		WithDescription("Validation failed").
		WithJSONSchemaRef(openapi3.NewSchemaRef(componentPrefix+"ValidationIssues", issuesSchema())))

	item.SetOperation(method, operation)
	return nil
}

// issuesSchema mirrors fields.Report as rendered for rejected payloads.
func issuesSchema() *openapi3.Schema {
	issue := openapi3.NewObjectSchema().
		WithProperty("field", openapi3.NewStringSchema()).
		WithProperty("code", openapi3.NewStringSchema()).
		WithProperty("message", openapi3.NewStringSchema())
	issue.Required = []string{"field", "code", "message"}

	return openapi3.NewObjectSchema().
		WithProperty("valid", openapi3.NewBoolSchema()).
		WithProperty("issues", openapi3.NewArraySchema().WithItems(issue))
}

// MarshalJSON renders doc as indented JSON.
func MarshalJSON(doc *openapi3.T) ([]byte, error) {
	raw, err := doc.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("openapi: marshal json: %w", err)
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return nil, fmt.Errorf("openapi: marshal json: %w", err)
	}
	return buf.Bytes(), nil
}

// MarshalYAML renders doc as block-style YAML, keeping the JSON key order.
func MarshalYAML(doc *openapi3.T) ([]byte, error) {
	raw, err := doc.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("openapi: marshal yaml: %w", err)
	}
	var node yaml.Node
	if err := yaml.Unmarshal(raw, &node); err != nil {
		return nil, fmt.Errorf("openapi: marshal yaml: %w", err)
	}
	plainStyle(&node)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return nil, fmt.Errorf("openapi: marshal yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("openapi: marshal yaml: %w", err)
	}
	return buf.Bytes(), nil
}

// plainStyle drops the flow and quoting styles inherited from JSON. The
// encoder re-quotes scalars whose plain form would change type.
func plainStyle(node *yaml.Node) {
	node.Style = 0
	for _, child := range node.Content {
		plainStyle(child)
	}
}
