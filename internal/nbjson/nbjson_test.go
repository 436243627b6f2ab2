package nbjson

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestDecodeRejectsInvalidJSON(t *testing.T) {
	if _, err := Decode([]byte(`{"a": `)); err == nil {
		t.Fatal("Decode accepted truncated JSON")
	}
	if _, err := Decode([]byte(`{} trailing`)); err == nil {
		t.Fatal("Decode accepted trailing data")
	}
}

func TestDecodeRejectsNonObjectTopLevel(t *testing.T) {
	for _, input := range []string{`[]`, `"str"`, `42`, `null`, `true`} {
		_, err := Decode([]byte(input))
		if err == nil {
			t.Errorf("Decode(%s) accepted non-object top level", input)
			continue
		}
		if !IsNotObject(err) {
			t.Errorf("Decode(%s) error = %v, want not-object", input, err)
		}
	}
}

func TestDecodeTypes(t *testing.T) {
	doc, err := Decode([]byte(`{"s": "x", "n": 5, "f": 1.5, "b": true, "z": null, "a": [1, "two"], "o": {"k": "v"}}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if v, _ := doc.Get("s"); v != "x" {
		t.Errorf("s = %v", v)
	}
	if v, _ := doc.Get("n"); v != json.Number("5") {
		t.Errorf("n = %v (%T), want json.Number", v, v)
	}
	if v, _ := doc.Get("b"); v != true {
		t.Errorf("b = %v", v)
	}
	if v, _ := doc.Get("z"); v != nil {
		t.Errorf("z = %v", v)
	}
	if v, _ := doc.Get("a"); len(v.([]any)) != 2 {
		t.Errorf("a = %v", v)
	}
	o, _ := doc.Get("o")
	if m, ok := o.(*Map); !ok {
		t.Errorf("o = %T, want *Map", o)
	} else if v, _ := m.Get("k"); v != "v" {
		t.Errorf("o.k = %v", v)
	}
}

func TestRoundTripPreservesKeyOrder(t *testing.T) {
	input := `{
  "zeta": 1,
  "alpha": {
    "nested_z": true,
    "nested_a": false
  },
  "mid": [
    {
      "bb": 1,
      "aa": 2
    }
  ]
}`
	doc, err := Decode([]byte(input))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	out, err := Encode(doc)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if string(out) != input {
		t.Errorf("round trip changed bytes:\ngot:\n%s\nwant:\n%s", out, input)
	}
}

func TestEncodeLiteralText(t *testing.T) {
	doc, err := Decode([]byte(`{"text": "héllo → wörld", "code": "if a < b && b > c { }"}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	out, err := Encode(doc)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	s := string(out)
	if !strings.Contains(s, "héllo → wörld") {
		t.Errorf("non-ASCII text was escaped: %s", s)
	}
	if !strings.Contains(s, "a < b && b > c") {
		t.Errorf("HTML characters were escaped: %s", s)
	}
	if strings.Contains(s, `\u`) {
		t.Errorf("output contains unicode escapes: %s", s)
	}
}

func TestEncodeNumberLiterals(t *testing.T) {
	input := `{
  "int": 5,
  "float": 1.5,
  "exp": 1e5,
  "big": 12345678901234567890
}`
	doc, err := Decode([]byte(input))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	out, err := Encode(doc)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if string(out) != input {
		t.Errorf("number literals changed:\ngot:\n%s\nwant:\n%s", out, input)
	}
}

func TestEncodeEmptyContainers(t *testing.T) {
	doc, err := Decode([]byte(`{"cells": [], "metadata": {}}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	out, err := Encode(doc)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	want := "{\n  \"cells\": [],\n  \"metadata\": {}\n}"
	if string(out) != want {
		t.Errorf("Encode = %q, want %q", out, want)
	}
}

func TestEncodeNoTrailingNewline(t *testing.T) {
	doc, _ := Decode([]byte(`{"a": 1}`))
	out, err := Encode(doc)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if bytes.HasSuffix(out, []byte("\n")) {
		t.Error("Encode output ends with a newline")
	}
}

func TestEncodeStable(t *testing.T) {
	doc, err := Decode([]byte(`{"a": [1, {"b": "c"}], "d": null}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	first, err := Encode(doc)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	second, err := Encode(doc)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("repeated Encode produced different bytes")
	}
}

func TestEncodeMutatedTree(t *testing.T) {
	doc, err := Decode([]byte(`{"keep": "x"}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	doc.Set("added_int", 4)
	doc.Set("added_null", nil)

	out, err := Encode(doc)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	want := "{\n  \"keep\": \"x\",\n  \"added_int\": 4,\n  \"added_null\": null\n}"
	if string(out) != want {
		t.Errorf("Encode = %q, want %q", out, want)
	}
}
