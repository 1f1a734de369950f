package tone

import (
	"strconv"
	"strings"
)

// encodeRootValue renders v as a complete TONE document.
func encodeRootValue(v Value, opts EncodeOptions) (string, error) {
	switch v.Kind {
	case KindObject:
		w := newLineWriter(opts.Indent)
		if err := encodeObjectFields(v.Obj, 0, w, opts); err != nil {
			return "", err
		}
		return w.String(), nil
	case KindArray:
		w := newLineWriter(opts.Indent)
		if err := encodeArrayGeneric("", v.Arr, 0, w, opts, w.push); err != nil {
			return "", err
		}
		return w.String(), nil
	default:
		return encodePrimitive(v, opts.Delimiter)
	}
}

func encodeObjectFields(obj Object, depth int, w *lineWriter, opts EncodeOptions) error {
	for _, kv := range obj {
		if err := encodeKeyedValue(kv.Key, kv.Value, depth, w, opts); err != nil {
			return err
		}
	}
	return nil
}

func encodeKeyedValue(key string, v Value, depth int, w *lineWriter, opts EncodeOptions) error {
	switch v.Kind {
	case KindObject:
		w.push(depth, encodeKey(key)+":")
		if v.Obj.Len() == 0 {
			return nil
		}
		return encodeObjectFields(v.Obj, depth+1, w, opts)
	case KindArray:
		return encodeArrayGeneric(key, v.Arr, depth, w, opts, w.push)
	default:
		lit, err := encodePrimitive(v, opts.Delimiter)
		if err != nil {
			return err
		}
		w.push(depth, encodeKey(key)+": "+lit)
		return nil
	}
}

// buildArrayHeader renders the "[N]{fields}" (or "key[N]{fields}") header
// portion for arr, classifying its shape along the way.
func buildArrayHeader(key string, arr Array, opts EncodeOptions) (string, ArrayShape, []string) {
	shape, fields := classifyArray(arr)

	lenPart := strconv.Itoa(len(arr))
	if opts.LengthMarker {
		lenPart = "#" + lenPart
	}

	var b strings.Builder
	if key != "" {
		b.WriteString(encodeKey(key))
	}
	b.WriteByte('[')
	b.WriteString(lenPart)
	if opts.Delimiter != Comma {
		b.WriteString(string(opts.Delimiter))
	}
	b.WriteByte(']')
	if shape == ShapeTabular {
		b.WriteByte('{')
		for i, f := range fields {
			if i > 0 {
				b.WriteString(string(opts.Delimiter))
			}
			b.WriteString(encodeKey(f))
		}
		b.WriteByte('}')
	}
	return b.String(), shape, fields
}

func joinPrimitives(arr Array, delim Delimiter) (string, error) {
	parts := make([]string, len(arr))
	for i, v := range arr {
		lit, err := encodePrimitive(v, delim)
		if err != nil {
			return "", err
		}
		parts[i] = lit
	}
	return strings.Join(parts, string(delim)), nil
}

// encodeArrayGeneric renders arr's header line via headerPush (so callers
// can route it through either a plain indented line or a "- "-prefixed
// list item line) and its body, if any, via w directly.
func encodeArrayGeneric(key string, arr Array, depth int, w *lineWriter, opts EncodeOptions, headerPush func(int, string)) error {
	header, shape, fields := buildArrayHeader(key, arr, opts)

	switch shape {
	case ShapeEmpty:
		headerPush(depth, header+":")
	case ShapePrimitive:
		joined, err := joinPrimitives(arr, opts.Delimiter)
		if err != nil {
			return err
		}
		headerPush(depth, header+": "+joined)
	case ShapeTabular:
		headerPush(depth, header+":")
		for _, v := range arr {
			row := make([]string, len(fields))
			for i, f := range fields {
				fv, _ := v.Obj.Get(f)
				lit, err := encodePrimitive(fv, opts.Delimiter)
				if err != nil {
					return err
				}
				row[i] = lit
			}
			w.push(depth+1, strings.Join(row, string(opts.Delimiter)))
		}
	case ShapeList:
		headerPush(depth, header+":")
		for _, v := range arr {
			if err := encodeListItem(v, depth+1, w, opts); err != nil {
				return err
			}
		}
	}
	return nil
}

func encodeListItem(v Value, depth int, w *lineWriter, opts EncodeOptions) error {
	switch v.Kind {
	case KindObject:
		return encodeObjectListItem(v.Obj, depth, w, opts)
	case KindArray:
		return encodeArrayGeneric("", v.Arr, depth, w, opts, w.pushListItem)
	default:
		lit, err := encodePrimitive(v, opts.Delimiter)
		if err != nil {
			return err
		}
		w.pushListItem(depth, lit)
		return nil
	}
}

// encodeObjectListItem renders obj as a "- " list item, placing the first
// field's key (and inline value, if primitive) on the dash line itself —
// the convention that lets tabular-ineligible object arrays still avoid a
// separate "- key:" wrapper line per item — and the remaining fields one
// level deeper than the dash, since the dash marker itself occupies the
// first field's indentation budget.
func encodeObjectListItem(obj Object, depth int, w *lineWriter, opts EncodeOptions) error {
	if obj.Len() == 0 {
		w.pushListItem(depth, "")
		return nil
	}

	first := obj[0]
	switch first.Value.Kind {
	case KindObject:
		w.pushListItem(depth, encodeKey(first.Key)+":")
		if first.Value.Obj.Len() > 0 {
			if err := encodeObjectFields(first.Value.Obj, depth+1, w, opts); err != nil {
				return err
			}
		}
	case KindArray:
		if err := encodeArrayGeneric(first.Key, first.Value.Arr, depth, w, opts, w.pushListItem); err != nil {
			return err
		}
	default:
		lit, err := encodePrimitive(first.Value, opts.Delimiter)
		if err != nil {
			return err
		}
		w.pushListItem(depth, encodeKey(first.Key)+": "+lit)
	}

	for _, kv := range obj[1:] {
		if err := encodeKeyedValue(kv.Key, kv.Value, depth+1, w, opts); err != nil {
			return err
		}
	}
	return nil
}
