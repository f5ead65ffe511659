package catalog_test

import (
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-valuetype/pkg/catalog"
	"github.com/goliatone/go-valuetype/pkg/fields"
	"github.com/goliatone/go-valuetype/pkg/testsupport"
	"github.com/goliatone/go-valuetype/pkg/valuetype"
)

const typesYAML = `
types:
  - name: Sku
    base: TrimString
    trim: true
    pattern: "^[A-Z]{3}-[0-9]{4}$"
    description: Stock keeping unit
  - name: Quantity
    base: Integer
    min: 1
    max: 99
  - name: Status
    enum: [draft, published]
    tsType: "'draft' | 'published'"
  - name: Handle
    minLength: 3
    maxLength: 8
    lowercase: true
`

const schemasJSON = `{
  "schemas": {
    "createOrder": {
      "description": "Order payload",
      "fields": [
        {"name": "sku", "type": "Sku", "required": true},
        {"name": "quantity", "type": "Quantity", "default": 1},
        {"name": "status", "type": "NullableStatus"}
      ]
    }
  }
}`

func loadFixture(t *testing.T) (*catalog.Store, *valuetype.Manager) {
	t.Helper()
	store, err := catalog.LoadFS(fstest.MapFS{
		"a_types.yaml":     {Data: []byte(typesYAML)},
		"b_schemas.json":   {Data: []byte(schemasJSON)},
		"notes/readme.txt": {Data: []byte("ignored")},
	})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	m := valuetype.New()
	if err := store.Register(m); err != nil {
		t.Fatalf("register: %v", err)
	}
	return store, m
}

func TestLoadFS_RegistersTypes(t *testing.T) {
	store, m := loadFixture(t)

	var names []string
	for _, spec := range store.Types() {
		names = append(names, spec.Name)
	}
	if diff := cmp.Diff([]string{"Sku", "Quantity", "Status", "Handle"}, names); diff != "" {
		t.Fatalf("types (-want +got):\n%s", diff)
	}

	cases := []struct {
		typ   string
		input any
		ok    bool
		want  any
	}{
		{typ: "Sku", input: " ABC-1234 ", ok: true, want: "ABC-1234"},
		{typ: "Sku", input: "abc-1234", ok: false},
		{typ: "Sku", input: 12, ok: false},
		{typ: "Quantity", input: "5", ok: true, want: int64(5)},
		{typ: "Quantity", input: "100", ok: false},
		{typ: "Quantity", input: "1.5", ok: false},
		{typ: "Status", input: "draft", ok: true, want: "draft"},
		{typ: "Status", input: "archived", ok: false},
		{typ: "NullableStatus", input: nil, ok: true, want: nil},
		{typ: "Handle", input: "GoLang", ok: true, want: "golang"},
		{typ: "Handle", input: "go", ok: false},
	}
	for _, tc := range cases {
		got := m.Value(tc.typ, tc.input, nil)
		if got.OK != tc.ok {
			t.Fatalf("%s(%v): want ok=%v, got %+v", tc.typ, tc.input, tc.ok, got)
		}
		if tc.ok {
			if diff := cmp.Diff(tc.want, got.Value); diff != "" {
				t.Fatalf("%s(%v) (-want +got):\n%s", tc.typ, tc.input, diff)
			}
		}
	}

	sku := m.Get("Sku").Info()
	if sku.Description != "Stock keeping unit" || sku.Builtin || sku.SwaggerType != valuetype.SwaggerString {
		t.Fatalf("unexpected Sku info %+v", sku)
	}
	if got := m.Get("NullableStatus").Info().TSType; got != "'draft' | 'published' | null" {
		t.Fatalf("unexpected nullable ts type %q", got)
	}
	if got := m.Get("Quantity").Info().SwaggerType; got != valuetype.SwaggerInteger {
		t.Fatalf("base swagger type should be inherited, got %q", got)
	}
}

func TestStore_CompileSchema(t *testing.T) {
	store, m := loadFixture(t)

	if diff := cmp.Diff([]string{"createOrder"}, store.SchemaIDs()); diff != "" {
		t.Fatalf("schema ids (-want +got):\n%s", diff)
	}
	schema, ok := store.Schema("createOrder")
	if !ok || schema.Description != "Order payload" || schema.Source != "b_schemas.json" {
		t.Fatalf("unexpected schema %+v", schema)
	}

	set, err := store.Compile(m, "createOrder")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if set.ID() != "createOrder" {
		t.Fatalf("expected set id from schema, got %q", set.ID())
	}

	report := set.Validate(map[string]any{"sku": "XYZ-0001", "status": nil})
	if !report.Valid {
		t.Fatalf("expected valid report, got %+v", report.Issues)
	}
	want := map[string]any{"sku": "XYZ-0001", "quantity": int64(1), "status": nil}
	if diff := cmp.Diff(want, report.Values); diff != "" {
		t.Fatalf("values (-want +got):\n%s", diff)
	}

	if _, err := store.Compile(m, "missing"); err == nil {
		t.Fatalf("expected error for unknown schema")
	}
	if _, err := store.Compile(valuetype.New(), "createOrder"); !errors.Is(err, fields.ErrInvalidField) {
		t.Fatalf("compiling against a manager without the types should fail, got %v", err)
	}
}

func TestLoadFS_Errors(t *testing.T) {
	cases := []struct {
		name     string
		files    fstest.MapFS
		fragment string
	}{
		{
			name:     "empty file",
			files:    fstest.MapFS{"a.yaml": {Data: []byte("  ")}},
			fragment: "is empty",
		},
		{
			name:     "invalid document",
			files:    fstest.MapFS{"a.yaml": {Data: []byte("types: [")}},
			fragment: "invalid JSON or YAML",
		},
		{
			name:     "unnamed type",
			files:    fstest.MapFS{"a.yaml": {Data: []byte("types:\n  - description: x\n")}},
			fragment: "has no name",
		},
		{
			name: "duplicate type across files",
			files: fstest.MapFS{
				"a.yaml": {Data: []byte("types:\n  - name: Code\n")},
				"b.yml":  {Data: []byte("types:\n  - name: Code\n")},
			},
			fragment: `duplicate type "Code" (file b.yml)`,
		},
		{
			name: "duplicate schema",
			files: fstest.MapFS{
				"a.json": {Data: []byte(`{"schemas":{"s":{"fields":[]}}}`)},
				"b.json": {Data: []byte(`{"schemas":{"s":{"fields":[]}}}`)},
			},
			fragment: `duplicate schema "s"`,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := catalog.LoadFS(tc.files)
			if err == nil || !strings.Contains(err.Error(), tc.fragment) {
				t.Fatalf("expected error containing %q, got %v", tc.fragment, err)
			}
		})
	}
}

func TestStore_RegisterErrors(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		is   error
	}{
		{name: "unknown base", doc: "types:\n  - name: X\n    base: Nope\n", is: valuetype.ErrUnknownType},
		{name: "bad pattern", doc: "types:\n  - name: X\n    pattern: \"[\"\n"},
		{name: "inverted bounds", doc: "types:\n  - name: X\n    min: 5\n    max: 1\n"},
		{name: "inverted lengths", doc: "types:\n  - name: X\n    minLength: 5\n    maxLength: 1\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store, err := catalog.Parse([]byte(tc.doc), "inline.yaml")
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			m := valuetype.New()
			err = store.Register(m)
			if err == nil {
				t.Fatalf("expected register error")
			}
			if tc.is != nil && !errors.Is(err, tc.is) {
				t.Fatalf("expected %v, got %v", tc.is, err)
			}
			if m.Has("X") {
				t.Fatalf("failed type must not be registered")
			}
		})
	}

	if err := (&catalog.Store{}).Register(nil); err == nil {
		t.Fatalf("expected error for nil manager")
	}
}

func TestLoadFS_NilIsEmpty(t *testing.T) {
	store, err := catalog.LoadFS(nil)
	if err != nil || !store.Empty() {
		t.Fatalf("expected empty store, got %v %v", store, err)
	}
}

func TestEmbeddedCatalog(t *testing.T) {
	store, err := catalog.LoadEmbedded()
	if err != nil {
		t.Fatalf("load embedded: %v", err)
	}
	m := valuetype.New()
	if err := store.Register(m); err != nil {
		t.Fatalf("register embedded: %v", err)
	}

	cases := []struct {
		typ   string
		input any
		ok    bool
		want  any
	}{
		{typ: "HexColor", input: "#FFAA00", ok: true, want: "#ffaa00"},
		{typ: "HexColor", input: "ffaa00", ok: false},
		{typ: "CountryCode", input: " ES ", ok: true, want: "ES"},
		{typ: "CurrencyCode", input: "eur", ok: false},
		{typ: "LanguageTag", input: "en-US", ok: true, want: "en-US"},
		{typ: "PhoneE164", input: "+14155550100", ok: true, want: "+14155550100"},
		{typ: "Semver", input: "1.2.3-rc.1", ok: true, want: "1.2.3-rc.1"},
		{typ: "Semver", input: "1.2", ok: false},
		{typ: "Port", input: "8080", ok: true, want: int64(8080)},
		{typ: "Port", input: 0, ok: false},
		{typ: "Percentage", input: "42.5", ok: true, want: 42.5},
		{typ: "Percentage", input: 101, ok: false},
		{typ: "SortOrder", input: "DESC", ok: true, want: "desc"},
		{typ: "NullableSortOrder", input: nil, ok: true, want: nil},
	}
	for _, tc := range cases {
		got := m.Value(tc.typ, tc.input, nil)
		if tc.ok {
			testsupport.AssertValue(t, got, tc.want)
		} else {
			testsupport.AssertFailure(t, got, valuetype.CodeCheckFailure)
		}
	}
}
