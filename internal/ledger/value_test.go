package ledger

import (
	"testing"
)

func TestFromJSONRoundTrip(t *testing.T) {
	raw := `{"role":"design","person_slug":"pat-lawlor","exists":true,"years":[1990,1992],"note":null}`
	v, err := FromJSON([]byte(raw))
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	if v.Kind() != KindObject {
		t.Fatalf("Kind: expected object, got %d", v.Kind())
	}

	out, err := v.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	// Keys come back sorted.
	want := `{"exists":true,"note":null,"person_slug":"pat-lawlor","role":"design","years":[1990,1992]}`
	if string(out) != want {
		t.Fatalf("MarshalJSON: got %s, want %s", out, want)
	}

	again, err := FromJSON(out)
	if err != nil {
		t.Fatalf("FromJSON (round trip): %v", err)
	}
	if !v.Equal(again) {
		t.Fatalf("round trip not equal")
	}
}

func TestAsInt(t *testing.T) {
	cases := []struct {
		name string
		in   Value
		want int64
		ok   bool
	}{
		{"number", Number(1996), 1996, true},
		{"fractional number truncates", Number(7.5), 7, true},
		{"negative fractional truncates", Number(-7.5), -7, true},
		{"numeric string", String("42"), 42, true},
		{"padded numeric string", String(" 42 "), 42, true},
		{"fractional string fails", String("7.5"), 0, false},
		{"word fails", String("many"), 0, false},
		{"bool true", Bool(true), 1, true},
		{"bool false", Bool(false), 0, true},
		{"null fails", Null(), 0, false},
		{"list fails", List(Int(1)), 0, false},
	}
	for _, tc := range cases {
		got, ok := tc.in.AsInt()
		if ok != tc.ok || got != tc.want {
			t.Fatalf("%s: got (%d, %v), want (%d, %v)", tc.name, got, ok, tc.want, tc.ok)
		}
	}
}

func TestAsFloat(t *testing.T) {
	if got, ok := Number(7.5).AsFloat(); !ok || got != 7.5 {
		t.Fatalf("number: got (%v, %v)", got, ok)
	}
	if got, ok := String("7.5").AsFloat(); !ok || got != 7.5 {
		t.Fatalf("string: got (%v, %v)", got, ok)
	}
	if _, ok := Bool(true).AsFloat(); ok {
		t.Fatalf("bool: expected coercion failure")
	}
	if _, ok := String("high").AsFloat(); ok {
		t.Fatalf("word: expected coercion failure")
	}
}

func TestAsString(t *testing.T) {
	if got, ok := String("Bally").AsString(); !ok || got != "Bally" {
		t.Fatalf("string: got (%q, %v)", got, ok)
	}
	if got, ok := Number(1994).AsString(); !ok || got != "1994" {
		t.Fatalf("integral number: got (%q, %v)", got, ok)
	}
	if got, ok := Number(7.5).AsString(); !ok || got != "7.5" {
		t.Fatalf("fractional number: got (%q, %v)", got, ok)
	}
	if got, ok := Bool(true).AsString(); !ok || got != "true" {
		t.Fatalf("bool: got (%q, %v)", got, ok)
	}
	if _, ok := Object(map[string]Value{"a": Int(1)}).AsString(); ok {
		t.Fatalf("object: expected coercion failure")
	}
	if _, ok := Null().AsString(); ok {
		t.Fatalf("null: expected coercion failure")
	}
}

func TestEqualIgnoresKeyOrder(t *testing.T) {
	a, err := FromJSON([]byte(`{"person_slug":"keith-elwin","role":"design"}`))
	if err != nil {
		t.Fatalf("FromJSON a: %v", err)
	}
	b, err := FromJSON([]byte(`{"role":"design","person_slug":"keith-elwin"}`))
	if err != nil {
		t.Fatalf("FromJSON b: %v", err)
	}
	if !a.Equal(b) {
		t.Fatalf("expected equal")
	}

	c, err := FromJSON([]byte(`{"role":"art","person_slug":"keith-elwin"}`))
	if err != nil {
		t.Fatalf("FromJSON c: %v", err)
	}
	if a.Equal(c) {
		t.Fatalf("expected unequal")
	}
}

func TestExists(t *testing.T) {
	if !String("anything").Exists() {
		t.Fatalf("non-object should default to exists")
	}
	if !Object(map[string]Value{"person_slug": String("x")}).Exists() {
		t.Fatalf("object without flag should default to exists")
	}
	if Object(map[string]Value{"exists": Bool(false)}).Exists() {
		t.Fatalf("explicit false should veto")
	}
	if !Object(map[string]Value{"exists": Bool(true)}).Exists() {
		t.Fatalf("explicit true should hold")
	}
}

func TestEmpty(t *testing.T) {
	if !Null().Empty() {
		t.Fatalf("null should be empty")
	}
	if !String("").Empty() {
		t.Fatalf("empty string should be empty")
	}
	if String("x").Empty() {
		t.Fatalf("non-empty string should not be empty")
	}
	if Number(0).Empty() {
		t.Fatalf("zero should not be empty")
	}
	if Bool(false).Empty() {
		t.Fatalf("false should not be empty")
	}
}
