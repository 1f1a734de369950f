package tone

import (
	"fmt"
	"reflect"
	"strings"
)

// Marshal converts v, which must be a struct, a pointer to a struct, or a
// slice/map of such, into a Value tree using the same field-naming rules
// as encoding/json (the "json" struct tag, with name overrides, "-" to
// skip a field, and the "omitempty" option), preserving struct field
// declaration order for tabular field-order purposes. This is the
// struct-aware counterpart to the reflect-based any-walking normalizeValue
// uses internally for map/slice input.
func Marshal(v interface{}) (Value, error) {
	return normalizeValue(v)
}

// Unmarshal populates the struct pointed to by out from value. out must
// be a non-nil pointer to a struct, slice, map, or any scalar Go type
// that tone.Value.Interface() could produce.
func Unmarshal(value Value, out interface{}) error {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("tone: Unmarshal target must be a non-nil pointer, got %T", out)
	}
	return setReflect(value, rv.Elem())
}

func setReflect(value Value, target reflect.Value) error {
	switch target.Kind() {
	case reflect.Ptr:
		if value.Kind == KindNull {
			target.Set(reflect.Zero(target.Type()))
			return nil
		}
		if target.IsNil() {
			target.Set(reflect.New(target.Type().Elem()))
		}
		return setReflect(value, target.Elem())
	case reflect.Interface:
		target.Set(reflect.ValueOf(value.Interface()))
		return nil
	case reflect.Bool:
		if value.Kind != KindBool {
			return fmt.Errorf("tone: cannot assign %v into bool", value.Kind)
		}
		target.SetBool(value.Bool)
		return nil
	case reflect.String:
		if value.Kind != KindString {
			return fmt.Errorf("tone: cannot assign %v into string", value.Kind)
		}
		target.SetString(value.Str)
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if value.Kind != KindNumber {
			return fmt.Errorf("tone: cannot assign %v into %s", value.Kind, target.Type())
		}
		target.SetInt(int64(value.Num))
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if value.Kind != KindNumber {
			return fmt.Errorf("tone: cannot assign %v into %s", value.Kind, target.Type())
		}
		target.SetUint(uint64(value.Num))
		return nil
	case reflect.Float32, reflect.Float64:
		if value.Kind != KindNumber {
			return fmt.Errorf("tone: cannot assign %v into %s", value.Kind, target.Type())
		}
		target.SetFloat(value.Num)
		return nil
	case reflect.Slice:
		if value.Kind == KindNull {
			target.Set(reflect.Zero(target.Type()))
			return nil
		}
		if value.Kind != KindArray {
			return fmt.Errorf("tone: cannot assign %v into %s", value.Kind, target.Type())
		}
		out := reflect.MakeSlice(target.Type(), len(value.Arr), len(value.Arr))
		for i, ev := range value.Arr {
			if err := setReflect(ev, out.Index(i)); err != nil {
				return err
			}
		}
		target.Set(out)
		return nil
	case reflect.Map:
		if value.Kind != KindObject {
			return fmt.Errorf("tone: cannot assign %v into %s", value.Kind, target.Type())
		}
		out := reflect.MakeMapWithSize(target.Type(), value.Obj.Len())
		for _, kv := range value.Obj {
			elem := reflect.New(target.Type().Elem()).Elem()
			if err := setReflect(kv.Value, elem); err != nil {
				return err
			}
			out.SetMapIndex(reflect.ValueOf(kv.Key), elem)
		}
		target.Set(out)
		return nil
	case reflect.Struct:
		if value.Kind != KindObject {
			return fmt.Errorf("tone: cannot assign %v into struct %s", value.Kind, target.Type())
		}
		return setStruct(value.Obj, target)
	default:
		return fmt.Errorf("tone: unsupported target kind %s", target.Kind())
	}
}

func setStruct(obj Object, target reflect.Value) error {
	t := target.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.PkgPath != "" {
			continue // unexported
		}
		name, skip := fieldName(field)
		if skip {
			continue
		}
		v, ok := obj.Get(name)
		if !ok {
			continue
		}
		if err := setReflect(v, target.Field(i)); err != nil {
			return fmt.Errorf("tone: field %s: %w", field.Name, err)
		}
	}
	return nil
}

// fieldName resolves a struct field's TONE/JSON key name from its "json"
// tag, the way go-gum-unravel's nameOf resolves field names: an explicit
// name before the first comma, "-" to skip entirely, and the bare field
// name as fallback.
func fieldName(field reflect.StructField) (name string, skip bool) {
	tag := field.Tag.Get("json")
	if tag == "-" {
		return "", true
	}
	if tag == "" {
		return field.Name, false
	}
	parts := strings.Split(tag, ",")
	if parts[0] == "" {
		return field.Name, false
	}
	return parts[0], false
}

func normalizeStruct(rv reflect.Value, seen visiting) (Value, error) {
	t := rv.Type()
	obj := Object{}
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.PkgPath != "" {
			continue
		}
		name, skip := fieldName(field)
		if skip {
			continue
		}
		fv := rv.Field(i)
		if hasOmitempty(field) && isEmptyValue(fv) {
			continue
		}
		ev, err := normalizeReflect(fv, seen)
		if err != nil {
			return Value{}, err
		}
		obj.Set(name, ev)
	}
	return ObjectValue(obj), nil
}

func hasOmitempty(field reflect.StructField) bool {
	tag := field.Tag.Get("json")
	for _, opt := range strings.Split(tag, ",")[1:] {
		if opt == "omitempty" {
			return true
		}
	}
	return false
}

func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Slice, reflect.Map, reflect.String:
		return v.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return v.IsNil()
	case reflect.Bool:
		return !v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	default:
		return false
	}
}
