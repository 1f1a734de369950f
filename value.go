package tone

import (
	"fmt"
	"reflect"
)

// Kind identifies the shape a Value holds.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindObject
	KindArray
)

// KeyValue is one entry of an Object, in insertion order.
type KeyValue struct {
	Key   string
	Value Value
}

// Object is an insertion-order-preserving map from string keys to Values.
// Unlike a Go map, iterating an Object always visits keys in the order
// they were first set. Set on an existing key updates its value in place
// without moving it to the end.
type Object []KeyValue

// Get returns the value stored under key and whether it was present.
func (o Object) Get(key string) (Value, bool) {
	for _, kv := range o {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return Value{}, false
}

// Has reports whether key is present.
func (o Object) Has(key string) bool {
	for _, kv := range o {
		if kv.Key == key {
			return true
		}
	}
	return false
}

// Set inserts or updates key. New keys are appended at the end.
func (o *Object) Set(key string, v Value) {
	for i := range *o {
		if (*o)[i].Key == key {
			(*o)[i].Value = v
			return
		}
	}
	*o = append(*o, KeyValue{Key: key, Value: v})
}

// Keys returns the keys in insertion order.
func (o Object) Keys() []string {
	keys := make([]string, len(o))
	for i, kv := range o {
		keys[i] = kv.Key
	}
	return keys
}

// Len returns the number of keys.
func (o Object) Len() int { return len(o) }

// Array is an ordered sequence of Values.
type Array []Value

// Value is the discriminated union the encoder and decoder operate on:
// nil, bool, float64, string, Object, or Array.
type Value struct {
	Kind Kind
	Bool bool
	Num  float64
	Str  string
	Obj  Object
	Arr  Array
}

func Null() Value                 { return Value{Kind: KindNull} }
func BoolValue(b bool) Value       { return Value{Kind: KindBool, Bool: b} }
func NumberValue(n float64) Value  { return Value{Kind: KindNumber, Num: n} }
func StringValue(s string) Value   { return Value{Kind: KindString, Str: s} }
func ObjectValue(o Object) Value   { return Value{Kind: KindObject, Obj: o} }
func ArrayValue(a Array) Value     { return Value{Kind: KindArray, Arr: a} }

// IsPrimitive reports whether v is null, bool, number, or string.
func (v Value) IsPrimitive() bool {
	switch v.Kind {
	case KindNull, KindBool, KindNumber, KindString:
		return true
	default:
		return false
	}
}

// Interface converts v back into a plain any tree (map[string]any,
// []any, float64, string, bool, nil), mirroring encoding/json's model.
func (v Value) Interface() interface{} {
	switch v.Kind {
	case KindNull:
		return nil
	case KindBool:
		return v.Bool
	case KindNumber:
		return v.Num
	case KindString:
		return v.Str
	case KindObject:
		m := make(map[string]interface{}, len(v.Obj))
		for _, kv := range v.Obj {
			m[kv.Key] = kv.Value.Interface()
		}
		return m
	case KindArray:
		a := make([]interface{}, len(v.Arr))
		for i, e := range v.Arr {
			a[i] = e.Interface()
		}
		return a
	default:
		return nil
	}
}

// visiting tracks the addresses of maps, slices, and pointers currently
// being walked by normalizeReflect, so a value that loops back on itself
// is caught as an encode-value error instead of recursing forever. An
// address is added on entry to a reference-typed value and removed again
// once that value's subtree has been fully walked, so the same map or
// slice may legitimately appear more than once in a DAG-shaped tree
// without being mistaken for a cycle.
type visiting map[uintptr]bool

// normalizeValue walks an arbitrary Go value with reflection and produces
// a Value tree. Structs are normalized field-by-field via their json tags
// (see encoding.go) rather than via a JSON round-trip, so that field
// order (and therefore tabular shape) is preserved.
func normalizeValue(v interface{}) (Value, error) {
	if v == nil {
		return Null(), nil
	}
	if ov, ok := v.(Value); ok {
		return ov, nil
	}

	rv := reflect.ValueOf(v)
	return normalizeReflect(rv, visiting{})
}

func normalizeReflect(rv reflect.Value, seen visiting) (Value, error) {
	for rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return Null(), nil
		}
		if rv.Kind() == reflect.Ptr {
			ptr := rv.Pointer()
			if seen[ptr] {
				return Value{}, NewEncodeError("cannot encode a cyclic value")
			}
			seen[ptr] = true
			defer delete(seen, ptr)
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Invalid:
		return Null(), nil
	case reflect.Bool:
		return BoolValue(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return NumberValue(float64(rv.Int())), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return NumberValue(float64(rv.Uint())), nil
	case reflect.Float32, reflect.Float64:
		return NumberValue(rv.Float()), nil
	case reflect.String:
		return StringValue(rv.String()), nil
	case reflect.Map:
		return normalizeMap(rv, seen)
	case reflect.Slice:
		if rv.IsNil() {
			return ArrayValue(nil), nil
		}
		ptr := rv.Pointer()
		if seen[ptr] {
			return Value{}, NewEncodeError("cannot encode a cyclic value")
		}
		seen[ptr] = true
		defer delete(seen, ptr)
		return normalizeSequence(rv, seen)
	case reflect.Array:
		return normalizeSequence(rv, seen)
	case reflect.Struct:
		return normalizeStruct(rv, seen)
	default:
		return Value{}, NewEncodeError(fmt.Sprintf("cannot encode value of kind %s", rv.Kind()))
	}
}

func normalizeSequence(rv reflect.Value, seen visiting) (Value, error) {
	arr := make(Array, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		ev, err := normalizeReflect(rv.Index(i), seen)
		if err != nil {
			return Value{}, err
		}
		arr[i] = ev
	}
	return ArrayValue(arr), nil
}

func normalizeMap(rv reflect.Value, seen visiting) (Value, error) {
	if rv.IsNil() {
		return Null(), nil
	}
	if rv.Type().Key().Kind() != reflect.String {
		return Value{}, NewEncodeError(fmt.Sprintf("cannot encode map with non-string key type %s", rv.Type().Key()))
	}
	ptr := rv.Pointer()
	if seen[ptr] {
		return Value{}, NewEncodeError("cannot encode a cyclic value")
	}
	seen[ptr] = true
	defer delete(seen, ptr)

	obj := make(Object, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		ev, err := normalizeReflect(iter.Value(), seen)
		if err != nil {
			return Value{}, err
		}
		obj.Set(iter.Key().String(), ev)
	}
	return ObjectValue(obj), nil
}
