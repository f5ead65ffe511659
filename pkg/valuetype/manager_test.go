package valuetype_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"

	"github.com/goliatone/go-valuetype/pkg/valuetype"
)

func TestManager_RegisterDerivesNullable(t *testing.T) {
	m := valuetype.New(valuetype.WithoutBuiltinTypes())
	m.Register("Code", valuetype.Definition{
		Checker:     valuetype.MustPattern(`^[A-Z]{3}$`),
		TSType:      "string",
		Description: "three letter code",
	})

	if !m.Has("Code") || !m.Has("NullableCode") {
		t.Fatalf("expected Code and NullableCode to be registered, got %v", m.Names())
	}

	base := m.Get("Code").Info()
	derived := m.Get("NullableCode").Info()
	if base.Nullable {
		t.Fatalf("base type must not be nullable")
	}
	if !derived.Nullable {
		t.Fatalf("derived type must be nullable")
	}
	if derived.TSType != "string | null" {
		t.Fatalf("derived ts type: want %q, got %q", "string | null", derived.TSType)
	}
	if derived.Description != base.Description {
		t.Fatalf("derived description should be copied, got %q", derived.Description)
	}

	if got := m.Value("Code", nil, nil); got.OK {
		t.Fatalf("non-nullable type must reject nil, got %+v", got)
	}
	if diff := cmp.Diff(passing(nil), m.Value("NullableCode", nil, nil)); diff != "" {
		t.Fatalf("nullable nil (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(passing("ABC"), m.Value("NullableCode", "ABC", nil)); diff != "" {
		t.Fatalf("nullable value (-want +got):\n%s", diff)
	}
}

func TestManager_RegisterWithoutTSTypeKeepsItEmpty(t *testing.T) {
	m := valuetype.New(valuetype.WithoutBuiltinTypes())
	m.Register("Bare", valuetype.Definition{})
	if got := m.Get("NullableBare").Info().TSType; got != "" {
		t.Fatalf("expected empty ts type, got %q", got)
	}
}

func TestManager_ReplaceKeepsOrder(t *testing.T) {
	m := valuetype.New(valuetype.WithoutBuiltinTypes())
	m.Register("A", valuetype.Definition{Description: "first"}).
		Register("B", valuetype.Definition{}).
		Register("A", valuetype.Definition{Description: "second"})

	want := []string{"A", "NullableA", "B", "NullableB"}
	if diff := cmp.Diff(want, m.Names()); diff != "" {
		t.Fatalf("names (-want +got):\n%s", diff)
	}
	if got := m.Get("A").Info().Description; got != "second" {
		t.Fatalf("last write should win, got %q", got)
	}
	if got := m.Get("NullableA").Info().Description; got != "second" {
		t.Fatalf("nullable sibling should be replaced too, got %q", got)
	}
	if m.Len() != 4 {
		t.Fatalf("expected 4 entries, got %d", m.Len())
	}
}

func TestManager_EmptyNameIsAllowed(t *testing.T) {
	m := valuetype.New(valuetype.WithoutBuiltinTypes())
	m.Register("", valuetype.Definition{})
	if !m.Has("") || !m.Has("Nullable") {
		t.Fatalf("expected empty name and its sibling, got %v", m.Names())
	}
}

func TestManager_GetUnknownPanics(t *testing.T) {
	m := valuetype.New(valuetype.WithoutBuiltinTypes())

	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected panic for unknown type")
		}
		err, ok := r.(error)
		if !ok || !errors.Is(err, valuetype.ErrUnknownType) {
			t.Fatalf("expected ErrUnknownType, got %v", r)
		}
	}()
	m.Value("Missing", "x", nil)
}

func TestManager_LookupAndCheckParamsUnknown(t *testing.T) {
	m := valuetype.New(valuetype.WithoutBuiltinTypes())
	if _, ok := m.Lookup("Missing"); ok {
		t.Fatalf("lookup should report missing types")
	}
	if err := m.CheckParams("Missing", nil); !errors.Is(err, valuetype.ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
}

func TestManager_ForEachStopsEarly(t *testing.T) {
	m := valuetype.New(valuetype.WithoutBuiltinTypes())
	m.Register("A", valuetype.Definition{}).Register("B", valuetype.Definition{})

	var seen []string
	m.ForEach(func(name string, item *valuetype.Item) bool {
		if item.Name() != name {
			t.Fatalf("item name %q does not match key %q", item.Name(), name)
		}
		seen = append(seen, name)
		return len(seen) < 3
	})
	want := []string{"A", "NullableA", "B"}
	if diff := cmp.Diff(want, seen); diff != "" {
		t.Fatalf("iteration (-want +got):\n%s", diff)
	}
}

func TestManager_ForEachAllowsRegistration(t *testing.T) {
	m := valuetype.New(valuetype.WithoutBuiltinTypes())
	m.Register("A", valuetype.Definition{})
	m.ForEach(func(name string, _ *valuetype.Item) bool {
		m.Register(name+"Copy", valuetype.Definition{})
		return true
	})
	if !m.Has("ACopy") || !m.Has("NullableACopy") {
		t.Fatalf("expected registrations from inside ForEach, got %v", m.Names())
	}
}

func TestManager_SeedsBuiltins(t *testing.T) {
	m := valuetype.New()
	builtins := []string{
		"Boolean", "Date", "String", "TrimString", "NotEmptyString", "Number",
		"Integer", "Float", "Object", "Array", "JSON", "JSONString", "Any",
		"MongoIdString", "Email", "Domain", "Alpha", "AlphaNumeric", "Ascii",
		"Base64", "URL", "ENUM", "IntArray", "StringArray",
	}
	for _, name := range builtins {
		if !m.Has(name) || !m.Has("Nullable"+name) {
			t.Fatalf("expected built-in %s and its nullable sibling", name)
		}
		if !m.Get(name).Info().Builtin {
			t.Fatalf("expected %s to be flagged as built-in", name)
		}
	}
	if m.Len() != len(builtins)*2 {
		t.Fatalf("expected %d entries, got %d", len(builtins)*2, m.Len())
	}

	empty := valuetype.New(valuetype.WithBuiltinTypes(false))
	if empty.Len() != 0 {
		t.Fatalf("expected no built-ins, got %v", empty.Names())
	}
}

func TestManager_LogsRegistrations(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	m := valuetype.New(valuetype.WithoutBuiltinTypes(), valuetype.WithLogger(logger))
	m.Register("A", valuetype.Definition{}).Register("A", valuetype.Definition{})

	entries := hook.AllEntries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 log entries, got %d", len(entries))
	}
	if entries[0].Message != "valuetype: registered value type" || entries[1].Message != "valuetype: replaced value type" {
		t.Fatalf("unexpected messages %q / %q", entries[0].Message, entries[1].Message)
	}
	if entries[1].Data["type"] != "A" {
		t.Fatalf("expected type field, got %v", entries[1].Data)
	}
}

func TestManager_SearchRanksPrefixMatches(t *testing.T) {
	m := valuetype.New()

	got := m.Search("string", 3)
	want := []string{"String", "StringArray", "NullableString"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("search (-want +got):\n%s", diff)
	}
	if all := m.Search("  ", 0); len(all) != m.Len() {
		t.Fatalf("empty query should match everything, got %d", len(all))
	}
	if none := m.Search("missing", 5); len(none) != 0 {
		t.Fatalf("expected no matches, got %v", none)
	}
}
