package tone

import (
	"math"
	"reflect"
	"testing"
)

func TestEncodeSimpleObject(t *testing.T) {
	input := map[string]interface{}{"id": 1, "name": "Alice"}
	got, err := Encode(input)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	// map iteration order is not guaranteed, so decode back and compare
	// rather than asserting on literal key order.
	decoded, err := Decode(got)
	if err != nil {
		t.Fatalf("Decode round trip: %v", err)
	}
	m, ok := decoded.(map[string]interface{})
	if !ok {
		t.Fatalf("expected map, got %T", decoded)
	}
	if m["id"] != 1.0 || m["name"] != "Alice" {
		t.Errorf("got %v", m)
	}
}

func TestEncodeValuePreservesKeyOrder(t *testing.T) {
	obj := Object{}
	obj.Set("name", StringValue("Alice"))
	obj.Set("id", NumberValue(1))

	got, err := encodeRootValue(ObjectValue(obj), EncodeOptions{Indent: 2, Delimiter: Comma})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := "name: Alice\nid: 1"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestTabularArrayFieldOrderFromFirstElement(t *testing.T) {
	row := func(id int, name string) Value {
		o := Object{}
		o.Set("id", NumberValue(float64(id)))
		o.Set("name", StringValue(name))
		return ObjectValue(o)
	}
	arr := ArrayValue(Array{row(1, "Alice"), row(2, "Bob")})

	got, err := encodeRootValue(ObjectValue(Object{{Key: "users", Value: arr}}), EncodeOptions{Indent: 2, Delimiter: Comma})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := "users[2]{id,name}:\n  1,Alice\n  2,Bob"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDecodeTabularArray(t *testing.T) {
	input := "users[2]{id,name}:\n  1,Alice\n  2,Bob\n"
	v, err := DecodeValue(input, nil)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	usersVal, ok := v.Obj.Get("users")
	if !ok {
		t.Fatalf("missing users field")
	}
	if len(usersVal.Arr) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(usersVal.Arr))
	}
	first := usersVal.Arr[0]
	name, _ := first.Obj.Get("name")
	if name.Str != "Alice" {
		t.Errorf("got %q", name.Str)
	}
	// field order on the decoded row should match the header order
	if got := first.Obj.Keys(); !reflect.DeepEqual(got, []string{"id", "name"}) {
		t.Errorf("field order = %v", got)
	}
}

func TestRoundTripPrimitiveArray(t *testing.T) {
	input := []interface{}{1.0, 2.0, 3.0}
	encoded, err := Encode(input)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := Decode(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(decoded, []interface{}{1.0, 2.0, 3.0}) {
		t.Errorf("got %v", decoded)
	}
}

func TestRoundTripNestedObject(t *testing.T) {
	input := map[string]interface{}{
		"user": map[string]interface{}{
			"id":   1.0,
			"tags": []interface{}{"a", "b"},
		},
	}
	encoded, err := Encode(input)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := Decode(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(decoded, input) {
		t.Errorf("got %#v, want %#v", decoded, input)
	}
}

func TestDelimiterTransparency(t *testing.T) {
	arr := ArrayValue(Array{NumberValue(1), NumberValue(2), NumberValue(3)})
	for _, delim := range []Delimiter{Comma, Tab, Pipe} {
		got, err := encodeRootValue(arr, EncodeOptions{Indent: 2, Delimiter: delim})
		if err != nil {
			t.Fatalf("encode with delimiter %q: %v", delim, err)
		}
		v, err := decodeDocument(got, DecodeOptions{Strict: true, Indent: 2})
		if err != nil {
			t.Fatalf("decode with delimiter %q: %v", delim, err)
		}
		if len(v.Arr) != 3 {
			t.Errorf("delimiter %q: got %d items", delim, len(v.Arr))
		}
	}
}

func TestLengthMarkerTransparency(t *testing.T) {
	arr := ArrayValue(Array{NumberValue(1), NumberValue(2)})
	got, err := encodeRootValue(arr, EncodeOptions{Indent: 2, Delimiter: Comma, LengthMarker: true})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if got[:4] != "[#2]" {
		t.Errorf("expected length-marker header, got %q", got)
	}
	v, err := decodeDocument(got, DecodeOptions{Strict: true, Indent: 2})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(v.Arr) != 2 {
		t.Errorf("got %d items", len(v.Arr))
	}
}

func TestStrictModeRejectsRowWidthMismatch(t *testing.T) {
	input := "items[2]{id,name}:\n  1,Alice\n  2\n"
	_, err := DecodeValue(input, &DecodeOptions{Strict: true, Indent: 2})
	if err == nil {
		t.Fatal("expected an error for a short tabular row in strict mode")
	}
	var toneErr *Error
	if !errorsAsTone(err, &toneErr) {
		t.Fatalf("expected *tone.Error, got %T", err)
	}
	if toneErr.Kind != ValidationError {
		t.Errorf("got kind %v", toneErr.Kind)
	}
}

func TestNonStrictModePadsShortRows(t *testing.T) {
	input := "items[2]{id,name}:\n  1,Alice\n  2\n"
	v, err := DecodeValue(input, &DecodeOptions{Strict: false, Indent: 2})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	items, _ := v.Obj.Get("items")
	second := items.Arr[1]
	name, _ := second.Obj.Get("name")
	if name.Kind != KindNull && name.Str != "" {
		t.Errorf("expected padded empty value, got %v", name)
	}
}

func TestStrictModeRejectsNonMultipleIndent(t *testing.T) {
	input := "a:\n   b: 1\n" // 3 spaces, not a multiple of 2
	_, err := DecodeValue(input, &DecodeOptions{Strict: true, Indent: 2})
	if err == nil {
		t.Fatal("expected an indent error")
	}
}

func TestBareKeyEOFIsNull(t *testing.T) {
	v, err := DecodeValue("key:", nil)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	val, ok := v.Obj.Get("key")
	if !ok {
		t.Fatalf("missing key")
	}
	if val.Kind != KindNull {
		t.Errorf("got %v, want null", val.Kind)
	}
}

func TestBareKeyFollowedByShallowerLineIsEmptyObject(t *testing.T) {
	input := "a:\nb: 1\n"
	v, err := DecodeValue(input, nil)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	a, _ := v.Obj.Get("a")
	if a.Kind != KindObject || a.Obj.Len() != 0 {
		t.Errorf("got %v, want empty object", a)
	}
}

func TestEncodeRejectsNonFiniteNumbers(t *testing.T) {
	for _, n := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := Encode(n)
		if err == nil {
			t.Fatalf("expected an encode error for %v", n)
		}
		var toneErr *Error
		if !errorsAsTone(err, &toneErr) {
			t.Fatalf("expected *tone.Error for %v, got %T", n, err)
		}
		if toneErr.Kind != EncodeValueError {
			t.Errorf("got kind %v for %v", toneErr.Kind, n)
		}
	}
}

func TestEncodeRejectsCyclicMap(t *testing.T) {
	m := map[string]interface{}{}
	m["self"] = m
	_, err := Encode(m)
	if err == nil {
		t.Fatal("expected an encode error for a self-referential map")
	}
	var toneErr *Error
	if !errorsAsTone(err, &toneErr) {
		t.Fatalf("expected *tone.Error, got %T", err)
	}
	if toneErr.Kind != EncodeValueError {
		t.Errorf("got kind %v", toneErr.Kind)
	}
}

func TestEncodeAllowsSharedNonCyclicMap(t *testing.T) {
	shared := map[string]interface{}{"x": 1.0}
	m := map[string]interface{}{"a": shared, "b": shared}
	if _, err := Encode(m); err != nil {
		t.Fatalf("expected a shared (non-cyclic) map to encode cleanly: %v", err)
	}
}

func TestArrayOfEmptyObjectsFallsBackToListShape(t *testing.T) {
	arr := ArrayValue(Array{ObjectValue(nil), ObjectValue(nil)})
	shape, _ := classifyArray(arr.Arr)
	if shape != ShapeList {
		t.Errorf("got shape %v, want ShapeList", shape)
	}

	got, err := encodeRootValue(ObjectValue(Object{{Key: "items", Value: arr}}), EncodeOptions{Indent: 2, Delimiter: Comma})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := decodeDocument(got, DecodeOptions{Strict: true, Indent: 2})
	if err != nil {
		t.Fatalf("round trip decode failed for %q: %v", got, err)
	}
	items, _ := decoded.Obj.Get("items")
	if len(items.Arr) != 2 {
		t.Errorf("got %d items, want 2", len(items.Arr))
	}
}

func TestResolveEncodeOptionsRejectsOutOfRangeIndent(t *testing.T) {
	for _, indent := range []int{-1, 9, 100} {
		_, err := resolveEncodeOptions(&EncodeOptions{Indent: indent})
		if err == nil {
			t.Errorf("indent %d: expected a config error", indent)
			continue
		}
		var toneErr *Error
		if !errorsAsTone(err, &toneErr) {
			t.Fatalf("indent %d: expected *tone.Error, got %T", indent, err)
		}
		if toneErr.Kind != ConfigError {
			t.Errorf("indent %d: got kind %v", indent, toneErr.Kind)
		}
	}
	if _, err := resolveEncodeOptions(&EncodeOptions{Indent: 8}); err != nil {
		t.Errorf("indent 8 should be accepted: %v", err)
	}
}

func TestDecodeRejectsTabIndentation(t *testing.T) {
	_, err := DecodeValue("a:\n\tb: 1\n", nil)
	if err == nil {
		t.Fatal("expected an indent error for a tab-indented line")
	}
	var toneErr *Error
	if !errorsAsTone(err, &toneErr) {
		t.Fatalf("expected *tone.Error, got %T", err)
	}
	if toneErr.Kind != IndentError {
		t.Errorf("got kind %v", toneErr.Kind)
	}
}

func errorsAsTone(err error, target **Error) bool {
	if e, ok := err.(*Error); ok {
		*target = e
		return true
	}
	return false
}
