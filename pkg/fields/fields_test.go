package fields_test

import (
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"

	"github.com/goliatone/go-valuetype/pkg/fields"
	"github.com/goliatone/go-valuetype/pkg/valuetype"
)

func boolPtr(v bool) *bool { return &v }

func userFields() []fields.Field {
	return []fields.Field{
		{Name: "email", Type: "Email", Required: true},
		{Name: "age", Type: "Integer", Params: nil},
		{Name: "score", Type: "Number", Params: map[string]any{"min": 0, "max": 10}},
		{Name: "role", Type: "ENUM", Params: []string{"admin", "user"}, Default: "user"},
		{Name: "nickname", Type: "NullableTrimString"},
		{Name: "tags", Type: "StringArray"},
		{Name: "active", Type: "Boolean", Format: boolPtr(false)},
	}
}

func TestCompile_ReportsAllDeclarationErrors(t *testing.T) {
	m := valuetype.New()
	_, err := fields.Compile(m, []fields.Field{
		{Name: "", Type: "String"},
		{Name: "a", Type: "Missing"},
		{Name: "b", Type: "Number", Params: map[string]any{"min": 5, "max": 1}},
		{Name: "c", Type: "ENUM"},
		{Name: "d", Type: "String"},
		{Name: "d", Type: "String"},
	})
	if err == nil {
		t.Fatalf("expected compile error")
	}
	if !errors.Is(err, fields.ErrInvalidField) {
		t.Fatalf("expected ErrInvalidField, got %v", err)
	}
	if !errors.Is(err, valuetype.ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType in joined error, got %v", err)
	}
	if !errors.Is(err, valuetype.ErrInvalidParams) {
		t.Fatalf("expected ErrInvalidParams in joined error, got %v", err)
	}
	for _, fragment := range []string{"no name", `"a"`, `"b"`, `"c"`, `duplicate field "d"`} {
		if !strings.Contains(err.Error(), fragment) {
			t.Fatalf("expected %q in %v", fragment, err)
		}
	}
}

func TestSet_Validate(t *testing.T) {
	m := valuetype.New()
	set := fields.MustCompile(m, userFields(), fields.WithID("createUser"))

	report := set.Validate(map[string]any{
		"email":    "yourtion@gmail.com",
		"age":      "42",
		"score":    "7.5",
		"nickname": nil,
		"tags":     "a, b",
		"active":   "true",
	})
	if !report.Valid {
		t.Fatalf("expected valid report, got %+v", report.Issues)
	}

	want := map[string]any{
		"email":    "yourtion@gmail.com",
		"age":      int64(42),
		"score":    7.5,
		"role":     "user",
		"nickname": nil,
		"tags":     []string{"a", "b"},
		"active":   "true",
	}
	if diff := cmp.Diff(want, report.Values); diff != "" {
		t.Fatalf("values (-want +got):\n%s", diff)
	}
	if set.ID() != "createUser" {
		t.Fatalf("unexpected id %q", set.ID())
	}
	if len(set.Fields()) != len(userFields()) {
		t.Fatalf("expected %d fields, got %d", len(userFields()), len(set.Fields()))
	}
}

func TestSet_ValidateCollectsIssues(t *testing.T) {
	m := valuetype.New()
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	set := fields.MustCompile(m, userFields(), fields.WithLogger(logger))

	report := set.Validate(map[string]any{
		"age":   "4.2",
		"score": 11,
		"role":  "root",
	})
	if report.Valid {
		t.Fatalf("expected invalid report")
	}

	want := []fields.Issue{
		{Field: "email", Code: fields.CodeMissing, Message: "field is required"},
		{Field: "age", Code: valuetype.CodeCheckFailure, Message: valuetype.MessageFailure},
		{Field: "score", Code: valuetype.CodeCheckFailure, Message: valuetype.MessageFailure},
		{Field: "role", Code: valuetype.CodeCheckFailure, Message: valuetype.MessageFailure},
	}
	if diff := cmp.Diff(want, report.Issues); diff != "" {
		t.Fatalf("issues (-want +got):\n%s", diff)
	}

	wantErrors := map[string][]string{
		"email": {"field is required"},
		"age":   {valuetype.MessageFailure},
		"score": {valuetype.MessageFailure},
		"role":  {valuetype.MessageFailure},
	}
	if diff := cmp.Diff(wantErrors, report.Errors()); diff != "" {
		t.Fatalf("errors (-want +got):\n%s", diff)
	}

	var validationErr *fields.ValidationError
	if !errors.As(report.Err(), &validationErr) || len(validationErr.Issues) != 4 {
		t.Fatalf("expected ValidationError with 4 issues, got %v", report.Err())
	}
	if len(hook.AllEntries()) != 4 {
		t.Fatalf("expected one debug entry per issue, got %d", len(hook.AllEntries()))
	}
}

func TestSet_ValidateQuery(t *testing.T) {
	m := valuetype.New()
	set := fields.MustCompile(m, []fields.Field{
		{Name: "ids", Type: "IntArray", Required: true},
		{Name: "labels", Type: "StringArray"},
		{Name: "q", Type: "NotEmptyString"},
	})

	report := set.ValidateQuery(url.Values{
		"ids":    {"3,1,2"},
		"labels": {" x ", "y"},
		"q":      {" hello "},
		"extra":  {"ignored"},
	})
	if !report.Valid {
		t.Fatalf("expected valid report, got %+v", report.Issues)
	}
	want := map[string]any{
		"ids":    []float64{1, 2, 3},
		"labels": []string{"x", "y"},
		"q":      "hello",
	}
	if diff := cmp.Diff(want, report.Values, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("values (-want +got):\n%s", diff)
	}
	if report.Err() != nil {
		t.Fatalf("expected nil error, got %v", report.Err())
	}
}
