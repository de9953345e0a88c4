package canonical

import (
	"testing"
)

func TestMarshalSortsObjectKeys(t *testing.T) {
	got, err := Marshal(map[string]interface{}{
		"zeta":  "z",
		"alpha": "a",
		"mid":   []interface{}{"1", "2"},
	})
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	want := `{"alpha":"a","mid":["1","2"],"zeta":"z"}`
	if string(got) != want {
		t.Fatalf("canonical mismatch:\n got %s\nwant %s", got, want)
	}
}

func TestMarshalStringMapAndSlice(t *testing.T) {
	got, err := Marshal(map[string]string{"b": "2", "a": "1"})
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	if string(got) != `{"a":"1","b":"2"}` {
		t.Fatalf("unexpected output: %s", got)
	}

	got, err = Marshal([]string{"x", "y"})
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	if string(got) != `["x","y"]` {
		t.Fatalf("unexpected output: %s", got)
	}
}

func TestMarshalDeterministic(t *testing.T) {
	v := map[string]interface{}{
		"id":       "MED-001",
		"batch":    "B456789",
		"checksum": "f9a2",
		"nested":   map[string]interface{}{"k": nil, "flag": true},
	}
	first, err := Marshal(v)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	for i := 0; i < 50; i++ {
		again, err := Marshal(v)
		if err != nil {
			t.Fatalf("Marshal error: %v", err)
		}
		if string(again) != string(first) {
			t.Fatalf("non-deterministic output on run %d:\n%s\n%s", i, first, again)
		}
	}
}

func TestMarshalEscapesDelimiters(t *testing.T) {
	// fields containing quotes, commas and brackets must stay unambiguous
	a, err := Marshal([]string{`a","b`, "c"})
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	b, err := Marshal([]string{"a", `b","c`})
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	if string(a) == string(b) {
		t.Fatalf("distinct tuples canonicalized identically: %s", a)
	}
}

func TestMarshalStructFallback(t *testing.T) {
	type payload struct {
		B string `json:"b"`
		A string `json:"a"`
	}
	got, err := Marshal(payload{B: "2", A: "1"})
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	if string(got) != `{"a":"1","b":"2"}` {
		t.Fatalf("unexpected output: %s", got)
	}
}
