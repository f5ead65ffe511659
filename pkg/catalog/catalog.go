// Package catalog loads declarative value type definitions and field sets
// from JSON or YAML documents. Loaded types are registered through the
// manager's ordinary Register path; loaded field sets compile into
// fields.Set values.
//
// A document looks like:
//
//	types:
//	  - name: CountryCode
//	    base: TrimString
//	    pattern: "^[A-Z]{2}$"
//	    description: ISO 3166-1 alpha-2 code
//	schemas:
//	  createAddress:
//	    fields:
//	      - name: country
//	        type: CountryCode
//	        required: true
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-valuetype/pkg/fields"
	"github.com/goliatone/go-valuetype/pkg/valuetype"
)

// TypeSpec declares a custom value type.
type TypeSpec struct {
	Name string `json:"name" yaml:"name"`
	// Base copies parser, formatter and checker from an already registered
	// type. Rules declared below are checked in addition to the base checker.
	Base          string   `json:"base,omitempty" yaml:"base,omitempty"`
	Pattern       string   `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Format        string   `json:"format,omitempty" yaml:"format,omitempty"`
	Enum          []any    `json:"enum,omitempty" yaml:"enum,omitempty"`
	Min           *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max           *float64 `json:"max,omitempty" yaml:"max,omitempty"`
	MinLength     *int     `json:"minLength,omitempty" yaml:"minLength,omitempty"`
	MaxLength     *int     `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
	Trim          bool     `json:"trim,omitempty" yaml:"trim,omitempty"`
	Lowercase     bool     `json:"lowercase,omitempty" yaml:"lowercase,omitempty"`
	DefaultFormat *bool    `json:"defaultFormat,omitempty" yaml:"defaultFormat,omitempty"`
	Description   string   `json:"description,omitempty" yaml:"description,omitempty"`
	TSType        string   `json:"tsType,omitempty" yaml:"tsType,omitempty"`
	SwaggerType   string   `json:"swaggerType,omitempty" yaml:"swaggerType,omitempty"`
	Source        string   `json:"-" yaml:"-"`
}

// Schema is a named field set declaration.
type Schema struct {
	ID          string         `json:"-" yaml:"-"`
	Source      string         `json:"-" yaml:"-"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	Fields      []fields.Field `json:"fields" yaml:"fields"`
}

// Store keeps the parsed documents. It is safe for concurrent readers when
// treated as immutable after construction.
type Store struct {
	types   []TypeSpec
	schemas map[string]Schema
}

type documentFile struct {
	Types   []TypeSpec        `json:"types" yaml:"types"`
	Schemas map[string]Schema `json:"schemas" yaml:"schemas"`
}

// LoadFS walks fsys and parses every JSON/YAML document. Files are visited in
// lexical order so type declarations can build on earlier files. A nil fsys
// yields an empty store.
func LoadFS(fsys fs.FS) (*Store, error) {
	store := &Store{schemas: make(map[string]Schema)}
	if fsys == nil {
		return store, nil
	}

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isCatalogFile(path) {
			return nil
		}
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("catalog: read %s: %w", path, err)
		}
		return store.add(data, path)
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}

// Parse builds a store from a single document.
func Parse(data []byte, source string) (*Store, error) {
	store := &Store{schemas: make(map[string]Schema)}
	if err := store.add(data, source); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *Store) add(data []byte, source string) error {
	doc, err := parseDocument(data, source)
	if err != nil {
		return err
	}

	seen := make(map[string]struct{}, len(s.types))
	for _, spec := range s.types {
		seen[spec.Name] = struct{}{}
	}
	for idx, spec := range doc.Types {
		spec.Name = strings.TrimSpace(spec.Name)
		if spec.Name == "" {
			return fmt.Errorf("catalog: file %s type %d has no name", source, idx)
		}
		if _, dup := seen[spec.Name]; dup {
			return fmt.Errorf("catalog: duplicate type %q (file %s)", spec.Name, source)
		}
		seen[spec.Name] = struct{}{}
		spec.Source = source
		s.types = append(s.types, spec)
	}

	for rawID, schema := range doc.Schemas {
		id := strings.TrimSpace(rawID)
		if id == "" {
			return fmt.Errorf("catalog: file %s defines an empty schema id", source)
		}
		if _, exists := s.schemas[id]; exists {
			return fmt.Errorf("catalog: duplicate schema %q (file %s)", id, source)
		}
		schema.ID = id
		schema.Source = source
		schema.Fields = append([]fields.Field(nil), schema.Fields...)
		s.schemas[id] = schema
	}
	return nil
}

func parseDocument(data []byte, source string) (documentFile, error) {
	var doc documentFile
	if len(strings.TrimSpace(string(data))) == 0 {
		return documentFile{}, fmt.Errorf("catalog: file %s is empty", source)
	}

	if err := json.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}

	doc = documentFile{}
	if err := yaml.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}

	return documentFile{}, fmt.Errorf("catalog: parse %s: invalid JSON or YAML", source)
}

func isCatalogFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// Empty reports whether the store holds neither types nor schemas.
func (s *Store) Empty() bool {
	return s == nil || (len(s.types) == 0 && len(s.schemas) == 0)
}

// Types returns the declared types in load order.
func (s *Store) Types() []TypeSpec {
	if s == nil {
		return nil
	}
	return append([]TypeSpec(nil), s.types...)
}

// Schema returns the field set declared under id.
func (s *Store) Schema(id string) (Schema, bool) {
	if s == nil {
		return Schema{}, false
	}
	schema, ok := s.schemas[id]
	return schema, ok
}

// SchemaIDs lists declared schema ids sorted alphabetically.
func (s *Store) SchemaIDs() []string {
	if s == nil {
		return nil
	}
	ids := make([]string, 0, len(s.schemas))
	for id := range s.schemas {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Register defines every declared type on m, in load order.
func (s *Store) Register(m *valuetype.Manager) error {
	if m == nil {
		return errors.New("catalog: manager is required")
	}
	if s == nil {
		return nil
	}
	for _, spec := range s.types {
		def, err := spec.Definition(m)
		if err != nil {
			return err
		}
		m.Register(spec.Name, def)
	}
	return nil
}

// Compile binds the schema id to m.
func (s *Store) Compile(m fields.Resolver, id string, options ...fields.Option) (*fields.Set, error) {
	schema, ok := s.Schema(id)
	if !ok {
		return nil, fmt.Errorf("catalog: schema %q not found", id)
	}
	options = append([]fields.Option{fields.WithID(id)}, options...)
	set, err := fields.Compile(m, schema.Fields, options...)
	if err != nil {
		return nil, fmt.Errorf("catalog: schema %q (file %s): %w", id, schema.Source, err)
	}
	return set, nil
}
