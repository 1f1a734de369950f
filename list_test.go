package tone

import "testing"

func TestListArrayRoundTripMixedShapes(t *testing.T) {
	obj1 := Object{}
	obj1.Set("id", NumberValue(1))
	obj1.Set("extra", ArrayValue(Array{StringValue("x"), StringValue("y")}))

	obj2 := Object{}
	obj2.Set("id", NumberValue(2))

	arr := ArrayValue(Array{ObjectValue(obj1), ObjectValue(obj2), StringValue("loose")})

	encoded, err := encodeRootValue(ObjectValue(Object{{Key: "items", Value: arr}}), EncodeOptions{Indent: 2, Delimiter: Comma})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	v, err := decodeDocument(encoded, DecodeOptions{Strict: true, Indent: 2})
	if err != nil {
		t.Fatalf("decode %q: %v", encoded, err)
	}
	items, ok := v.Obj.Get("items")
	if !ok || items.Kind != KindArray {
		t.Fatalf("missing items array")
	}
	if len(items.Arr) != 3 {
		t.Fatalf("got %d items, want 3", len(items.Arr))
	}
	if items.Arr[2].Kind != KindString || items.Arr[2].Str != "loose" {
		t.Errorf("third item = %v", items.Arr[2])
	}
}

func TestListItemContinuationFieldsIndentOneLevelDeeperThanDash(t *testing.T) {
	obj1 := Object{}
	obj1.Set("id", NumberValue(1))

	obj2 := Object{}
	obj2.Set("id", NumberValue(2))
	obj2.Set("x", BoolValue(true))

	arr := ArrayValue(Array{ObjectValue(obj1), ObjectValue(obj2)})

	got, err := encodeRootValue(ObjectValue(Object{{Key: "u", Value: arr}}), EncodeOptions{Indent: 2, Delimiter: Comma})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := "u[2]:\n  - id: 1\n  - id: 2\n    x: true"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	v, err := decodeDocument(got, DecodeOptions{Strict: true, Indent: 2})
	if err != nil {
		t.Fatalf("decode %q: %v", got, err)
	}
	u, _ := v.Obj.Get("u")
	second := u.Arr[1]
	x, ok := second.Obj.Get("x")
	if !ok || x.Kind != KindBool || !x.Bool {
		t.Errorf("second item's x = %v", second)
	}
}

func TestDecodeRejectsDuplicateKey(t *testing.T) {
	_, err := DecodeValue("a: 1\na: 2\n", nil)
	if err == nil {
		t.Fatal("expected a validation error for a duplicate key")
	}
	var toneErr *Error
	if !errorsAsTone(err, &toneErr) {
		t.Fatalf("expected *tone.Error, got %T", err)
	}
	if toneErr.Kind != ValidationError {
		t.Errorf("got kind %v", toneErr.Kind)
	}
}

func TestDecodeRejectsDuplicateKeyAcrossListItemContinuation(t *testing.T) {
	input := "items[1]:\n  - id: 1\n    id: 2\n"
	_, err := DecodeValue(input, nil)
	if err == nil {
		t.Fatal("expected a validation error for a duplicate key split across a dash line and its continuation")
	}
}

func TestIndentErrorsAreFatalEvenInNonStrictMode(t *testing.T) {
	input := "a:\n   b: 1\n" // 3 spaces, not a multiple of 2
	_, err := DecodeValue(input, &DecodeOptions{Strict: false, Indent: 2})
	if err == nil {
		t.Fatal("expected an indent error even with Strict: false")
	}
	var toneErr *Error
	if !errorsAsTone(err, &toneErr) {
		t.Fatalf("expected *tone.Error, got %T", err)
	}
	if toneErr.Kind != IndentError {
		t.Errorf("got kind %v", toneErr.Kind)
	}
}

func TestListArrayStrictCountMismatch(t *testing.T) {
	input := "items[2]:\n  - a\n"
	_, err := DecodeValue(input, &DecodeOptions{Strict: true, Indent: 2})
	if err == nil {
		t.Fatal("expected a validation error for a short list array")
	}
}

func TestStructMarshalPreservesFieldOrder(t *testing.T) {
	type Point struct {
		X int `json:"x"`
		Y int `json:"y"`
	}
	v, err := Marshal(Point{X: 1, Y: 2})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if got := v.Obj.Keys(); len(got) != 2 || got[0] != "x" || got[1] != "y" {
		t.Errorf("field order = %v", got)
	}
}

func TestUnmarshalIntoStruct(t *testing.T) {
	type Point struct {
		X int `json:"x"`
		Y int `json:"y"`
	}
	v, err := DecodeValue("x: 1\ny: 2", nil)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	var p Point
	if err := Unmarshal(v, &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.X != 1 || p.Y != 2 {
		t.Errorf("got %+v", p)
	}
}
