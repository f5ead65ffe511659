package valuetype_test

import (
	"errors"
	"testing"

	"github.com/goliatone/go-valuetype/pkg/valuetype"
)

func TestAll(t *testing.T) {
	if !valuetype.All().IsZero() || !valuetype.All(valuetype.Checker{}).IsZero() {
		t.Fatalf("All without active checkers should be the zero checker")
	}

	single := valuetype.MustPattern(`^a`)
	if !valuetype.All(valuetype.Checker{}, single).IsPattern() {
		t.Fatalf("All with a single checker should return it unchanged")
	}

	combined := valuetype.All(valuetype.MustPattern(`^[a-z]+$`), valuetype.Length(2, 4))
	for input, want := range map[string]bool{"ab": true, "abcd": true, "a": false, "abcde": false, "AB": false} {
		ok, err := combined.Eval(input, nil)
		if err != nil || ok != want {
			t.Fatalf("All(%q): want %v, got %v (%v)", input, want, ok, err)
		}
	}

	boom := errors.New("boom")
	failing := valuetype.All(valuetype.Predicate(func(any, any) (bool, error) { return false, boom }), single)
	if ok, err := failing.Eval("a", nil); ok || !errors.Is(err, boom) {
		t.Fatalf("expected the first error to stop evaluation, got %v %v", ok, err)
	}
}

func TestOneOfInRangeLength(t *testing.T) {
	cases := []struct {
		name    string
		checker valuetype.Checker
		input   any
		want    bool
	}{
		{name: "oneof string", checker: valuetype.OneOf("a", "b"), input: "b", want: true},
		{name: "oneof numeric kinds", checker: valuetype.OneOf(1, 2), input: 2.0, want: true},
		{name: "oneof strict", checker: valuetype.OneOf(1, 2), input: "2", want: false},
		{name: "range inside", checker: valuetype.InRange(valuetype.Between(1, 3)), input: 3, want: true},
		{name: "range string", checker: valuetype.InRange(valuetype.AtLeast(1)), input: "2", want: true},
		{name: "range below", checker: valuetype.InRange(valuetype.AtLeast(1)), input: 0, want: false},
		{name: "range nan", checker: valuetype.InRange(valuetype.AtLeast(1)), input: "x", want: false},
		{name: "length runes", checker: valuetype.Length(0, 2), input: "éé", want: true},
		{name: "length unbounded max", checker: valuetype.Length(1, -1), input: "long value", want: true},
		{name: "length nil", checker: valuetype.Length(-1, -1), input: nil, want: false},
	}
	for _, tc := range cases {
		ok, err := tc.checker.Eval(tc.input, nil)
		if err != nil || ok != tc.want {
			t.Fatalf("%s: want %v, got %v (%v)", tc.name, tc.want, ok, err)
		}
	}
}
