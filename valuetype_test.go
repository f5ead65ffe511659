package valuetype

import (
	"bytes"
	"context"
	"io/fs"
	"strings"
	"testing"

	"github.com/goliatone/go-valuetype/pkg/openapi"
)

func TestNewExtended(t *testing.T) {
	m, err := NewExtended()
	if err != nil {
		t.Fatalf("new extended: %v", err)
	}
	for _, name := range []string{"Email", "UUID", "HTMLString", "HexColor", "NullablePort"} {
		if !m.Has(name) {
			t.Fatalf("expected %s to be registered", name)
		}
	}
	if got := m.Value("Port", "443", nil); !got.OK || got.Value != int64(443) {
		t.Fatalf("unexpected Port result %+v", got)
	}
}

func TestBuildOpenAPIAndDocs(t *testing.T) {
	m := New()
	set, err := CompileFields(m, []Field{{Name: "email", Type: "Email", Required: true}})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	doc, err := BuildOpenAPI(context.Background(), m, "", "", openapi.Operation{
		ID: "subscribe", Method: "POST", Path: "/subscriptions", Body: set,
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if doc.Paths.Value("/subscriptions") == nil {
		t.Fatalf("expected subscription path")
	}

	var buf bytes.Buffer
	if err := RenderDocs(&buf, "md", m, set); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), "| `email` | `Email` | yes |") {
		t.Fatalf("unexpected docs:\n%s", buf.String())
	}
	if err := RenderDocs(&buf, "pdf", m); err == nil {
		t.Fatalf("expected unknown format error")
	}
}

func TestEmbeddedAssets(t *testing.T) {
	if _, err := fs.ReadFile(EmbeddedCatalog(), "common.yaml"); err != nil {
		t.Fatalf("expected bundled catalog: %v", err)
	}
	if _, err := fs.ReadFile(EmbeddedTemplates(), "types.ts.tpl"); err != nil {
		t.Fatalf("expected bundled templates: %v", err)
	}
}
