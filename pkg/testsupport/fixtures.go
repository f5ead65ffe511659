package testsupport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-valuetype/pkg/fields"
	"github.com/goliatone/go-valuetype/pkg/valuetype"
)

// NewManager builds a manager whose debug logs are captured by the returned
// hook. Extra options are applied after the logger.
func NewManager(t *testing.T, options ...valuetype.Option) (*valuetype.Manager, *logtest.Hook) {
	t.Helper()

	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	opts := append([]valuetype.Option{valuetype.WithLogger(logger)}, options...)
	return valuetype.New(opts...), hook
}

// MustLoadFields reads a JSON or YAML list of field declarations.
func MustLoadFields(t *testing.T, path string) []fields.Field {
	t.Helper()

	out, err := LoadFields(path)
	if err != nil {
		t.Fatalf("load fields: %v", err)
	}
	return out
}

// LoadFields returns field declarations without requiring testing.T.
func LoadFields(path string) ([]fields.Field, error) {
	if path == "" {
		return nil, errors.New("testsupport: fields path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("testsupport: read fields: %w", err)
	}
	var out []fields.Field
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("testsupport: unmarshal fields: %w", err)
	}
	return out, nil
}

// AssertValue fails the test when got is not a passing result holding want.
func AssertValue(t *testing.T, got valuetype.ValueResult, want any) {
	t.Helper()

	expected := valuetype.ValueResult{
		CheckResult: valuetype.CheckResult{OK: true, Message: valuetype.MessageSuccess},
		Value:       want,
	}
	if diff := CompareGolden(expected, got); diff != "" {
		t.Fatalf("value result (-want +got):\n%s", diff)
	}
}

// AssertFailure fails the test unless got failed with code.
func AssertFailure(t *testing.T, got valuetype.ValueResult, code valuetype.Code) {
	t.Helper()

	if got.OK || got.Code != code {
		t.Fatalf("expected %s failure, got %+v", code, got)
	}
}

// WriteGolden writes value as indented JSON when UPDATE_GOLDENS is set.
func WriteGolden(t *testing.T, path string, value any) {
	t.Helper()

	if os.Getenv("UPDATE_GOLDENS") == "" {
		return
	}
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		t.Fatalf("marshal golden: %v", err)
	}
	WriteMaybeGolden(t, path, payload)
}

// CompareGolden returns a diff string if the values differ. Nil and empty
// collections compare equal.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got, cmpopts.EquateEmpty())
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v (run with UPDATE_GOLDENS=1 to create it)", err)
	}
	return data
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// AssertGolden compares got with the golden file, rewriting it first when
// UPDATE_GOLDENS is set.
func AssertGolden(t *testing.T, path string, got []byte) {
	t.Helper()
	if WriteMaybeGolden(t, path, got) {
		return
	}
	if diff := cmp.Diff(string(MustReadGolden(t, path)), string(got)); diff != "" {
		t.Fatalf("golden %s (-want +got):\n%s", path, diff)
	}
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}
