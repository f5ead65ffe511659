package testsupport_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-valuetype/pkg/fields"
	"github.com/goliatone/go-valuetype/pkg/testsupport"
	"github.com/goliatone/go-valuetype/pkg/valuetype"
)

func TestMustLoadFields(t *testing.T) {
	m, _ := testsupport.NewManager(t)
	declared := testsupport.MustLoadFields(t, filepath.Join("testdata", "fields.yaml"))

	want := []fields.Field{
		{Name: "email", Type: "Email", Required: true},
		{Name: "score", Type: "Number", Params: map[string]any{"min": 0, "max": 10}},
		{Name: "role", Type: "ENUM", Params: []any{"admin", "user"}, Default: "user"},
	}
	if diff := testsupport.CompareGolden(want, declared); diff != "" {
		t.Fatalf("fields (-want +got):\n%s", diff)
	}

	set := fields.MustCompile(m, declared)
	report := set.Validate(map[string]any{"email": "a@b.co", "score": "3"})
	if !report.Valid {
		t.Fatalf("expected valid report, got %+v", report.Issues)
	}
	testsupport.AssertValue(t, report.Results["score"], float64(3))
	testsupport.AssertFailure(t, set.Validate(map[string]any{"email": "a@b.co", "score": 11}).Results["score"], valuetype.CodeCheckFailure)

	if _, err := testsupport.LoadFields(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestNewManager_CapturesLogs(t *testing.T) {
	m, hook := testsupport.NewManager(t, valuetype.WithoutBuiltinTypes())
	m.Register("Code", valuetype.Definition{})
	if len(hook.AllEntries()) != 1 {
		t.Fatalf("expected one log entry, got %d", len(hook.AllEntries()))
	}
}

func TestAssertGolden_UpdatesThenCompares(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.txt")

	t.Setenv("UPDATE_GOLDENS", "1")
	testsupport.AssertGolden(t, path, []byte("hello"))
	testsupport.WriteGolden(t, path+".json", map[string]int{"a": 1})

	t.Setenv("UPDATE_GOLDENS", "")
	testsupport.AssertGolden(t, path, []byte("hello"))
	if got := string(testsupport.MustReadGolden(t, path+".json")); got != "{\n  \"a\": 1\n}" {
		t.Fatalf("unexpected json golden %q", got)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("golden should exist: %v", err)
	}
}
