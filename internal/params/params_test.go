// Where: internal/params/params_test.go
// What: Tests for override parsing and parameter reconciliation.
// Why: The merge decides what the preview request submits; it must be exact.
package params

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseOverrides(t *testing.T) {
	overrides, err := ParseOverrides([]string{"Foo=bar", "Empty=", "Eq=a=b"})
	if err != nil {
		t.Fatalf("parse overrides: %v", err)
	}
	want := map[string]string{"Foo": "bar", "Empty": "", "Eq": "a=b"}
	if !reflect.DeepEqual(overrides, want) {
		t.Fatalf("unexpected overrides: %#v", overrides)
	}
}

func TestParseOverridesNoEquals(t *testing.T) {
	_, err := ParseOverrides([]string{"Foo"})
	if !errors.Is(err, ErrInvalidParameterFormat) {
		t.Fatalf("expected ErrInvalidParameterFormat, got %v", err)
	}
}

func TestParseOverridesEmptyKey(t *testing.T) {
	_, err := ParseOverrides([]string{"=bar"})
	if !errors.Is(err, ErrInvalidParameterFormat) {
		t.Fatalf("expected ErrInvalidParameterFormat, got %v", err)
	}
}

func TestReconcileCoversUnionOfKeys(t *testing.T) {
	deployed := []Deployed{
		{Key: "KeepMe", Value: "old"},
		{Key: "Foo", Value: "baz"},
	}
	overrides := map[string]string{"Foo": "bar", "Brand": "new"}

	effective := Reconcile(deployed, overrides)

	want := []Effective{
		{Key: "Brand", Value: "new"},
		{Key: "Foo", Value: "bar"},
		{Key: "KeepMe", UsePrevious: true},
	}
	if !reflect.DeepEqual(effective, want) {
		t.Fatalf("unexpected effective set: %#v", effective)
	}
}

func TestReconcileOverrideWinsOverDeployedValue(t *testing.T) {
	deployed := []Deployed{{Key: "Foo", Value: "baz"}}
	effective := Reconcile(deployed, map[string]string{"Foo": "bar"})

	if len(effective) != 1 {
		t.Fatalf("expected one parameter, got %d", len(effective))
	}
	if effective[0].UsePrevious {
		t.Fatalf("override must not request previous value")
	}
	if effective[0].Value != "bar" {
		t.Fatalf("unexpected value: %s", effective[0].Value)
	}
}

func TestReconcileNoOverrides(t *testing.T) {
	deployed := []Deployed{{Key: "A", Value: "1"}, {Key: "B", Value: "2"}}
	effective := Reconcile(deployed, nil)

	for _, param := range effective {
		if !param.UsePrevious {
			t.Fatalf("parameter %s should reuse previous value", param.Key)
		}
	}
}

func TestReconcileOrderIndependent(t *testing.T) {
	deployed := []Deployed{{Key: "B", Value: "2"}, {Key: "A", Value: "1"}}
	first := Reconcile(deployed, map[string]string{"C": "3", "A": "x"})
	second := Reconcile([]Deployed{deployed[1], deployed[0]}, map[string]string{"A": "x", "C": "3"})

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("reconcile is order dependent: %#v vs %#v", first, second)
	}
}
