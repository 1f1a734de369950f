package tone

// ArrayShape is the encoder's classification of an array, which decides
// how it is rendered on the wire.
type ArrayShape int

const (
	// ShapeEmpty is a zero-length array: "key[0]:" with no body.
	ShapeEmpty ArrayShape = iota
	// ShapePrimitive is a non-empty array of only primitives, rendered
	// inline on the header line.
	ShapePrimitive
	// ShapeTabular is a non-empty array of objects that all share the
	// exact same key set with primitive-only leaf values, rendered as a
	// header row of field names followed by one delimited row per item.
	ShapeTabular
	// ShapeList is the fallback: one or more items that don't qualify for
	// ShapePrimitive or ShapeTabular, rendered as dash-prefixed items.
	ShapeList
)

// classifyArray decides how arr should be encoded.
func classifyArray(arr Array) (ArrayShape, []string) {
	if len(arr) == 0 {
		return ShapeEmpty, nil
	}
	if allPrimitive(arr) {
		return ShapePrimitive, nil
	}
	if fields, ok := tabularFields(arr); ok {
		return ShapeTabular, fields
	}
	return ShapeList, nil
}

func allPrimitive(arr Array) bool {
	for _, v := range arr {
		if !v.IsPrimitive() {
			return false
		}
	}
	return true
}

// tabularFields reports whether arr qualifies as a tabular array: every
// element is a non-empty, non-array, non-nested object sharing the exact
// key set of the first element (order-sensitive only for defining the
// header; set membership is what's actually compared), with
// primitive-only values. The header field order is the first element's
// insertion order.
func tabularFields(arr Array) (fields []string, ok bool) {
	for _, v := range arr {
		if v.Kind != KindObject {
			return nil, false
		}
	}
	first := arr[0].Obj
	fields = first.Keys()
	if len(fields) == 0 {
		return nil, false
	}
	for _, v := range arr {
		obj := v.Obj
		if obj.Len() != len(fields) {
			return nil, false
		}
		for _, key := range fields {
			val, present := obj.Get(key)
			if !present || !val.IsPrimitive() {
				return nil, false
			}
		}
	}
	return fields, true
}
