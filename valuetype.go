// Package valuetype is the convenience entry point for the value type
// registry. It re-exports the core types from pkg/valuetype and wires the
// optional layers (declarative catalogs, extra types, field sets, OpenAPI and
// reference docs) behind a few constructors.
package valuetype

import (
	"context"
	"fmt"
	"io"
	"io/fs"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-valuetype/pkg/catalog"
	"github.com/goliatone/go-valuetype/pkg/docs"
	"github.com/goliatone/go-valuetype/pkg/extratypes"
	"github.com/goliatone/go-valuetype/pkg/fields"
	"github.com/goliatone/go-valuetype/pkg/openapi"
	pkgvaluetype "github.com/goliatone/go-valuetype/pkg/valuetype"
)

type (
	Manager     = pkgvaluetype.Manager
	Item        = pkgvaluetype.Item
	Definition  = pkgvaluetype.Definition
	Checker     = pkgvaluetype.Checker
	CheckResult = pkgvaluetype.CheckResult
	ValueResult = pkgvaluetype.ValueResult
	Code        = pkgvaluetype.Code
	Option      = pkgvaluetype.Option

	Field    = fields.Field
	FieldSet = fields.Set
	Report   = fields.Report
)

// New constructs a manager seeded with the built-in types.
func New(options ...Option) *Manager {
	return pkgvaluetype.New(options...)
}

// NewExtended constructs a manager with the built-in types, the extra types
// and the embedded catalog of common formats.
func NewExtended(options ...Option) (*Manager, error) {
	m := extratypes.Register(pkgvaluetype.New(options...))
	if _, err := LoadCatalog(m, catalog.EmbeddedFS()); err != nil {
		return nil, err
	}
	return m, nil
}

// LoadCatalog registers the types declared in fsys on m and returns the
// store so its schemas can be compiled.
func LoadCatalog(m *Manager, fsys fs.FS) (*catalog.Store, error) {
	store, err := catalog.LoadFS(fsys)
	if err != nil {
		return nil, err
	}
	if err := store.Register(m); err != nil {
		return nil, err
	}
	return store, nil
}

// CompileFields binds declarations to m.
func CompileFields(m *Manager, declared []Field, options ...fields.Option) (*FieldSet, error) {
	return fields.Compile(m, declared, options...)
}

// BuildOpenAPI renders the types of m and the given operations into a
// validated OpenAPI document.
func BuildOpenAPI(ctx context.Context, m *Manager, title, version string, operations ...openapi.Operation) (*openapi3.T, error) {
	doc := openapi.NewDocument(openapi.NewGenerator(m, openapi.WithComponentRefs(true)), title, version)
	for _, op := range operations {
		doc.AddOperation(op)
	}
	return doc.Build(ctx)
}

// RenderDocs writes the reference for m in the named format (markdown, html
// or typescript).
func RenderDocs(w io.Writer, format string, m *Manager, sets ...*FieldSet) error {
	f, err := docs.ParseFormat(format)
	if err != nil {
		return err
	}
	r, err := docs.New()
	if err != nil {
		return fmt.Errorf("valuetype: docs renderer: %w", err)
	}
	return r.Render(w, f, m, sets...)
}
