// Package tone implements the TONE text serialization format: a
// JSON-compatible, indentation-based encoding designed to minimize the
// number of tokens a large language model spends reading structured data,
// by dropping redundant punctuation and compressing uniform arrays of
// objects into a header-plus-rows table.
package tone

// Encode renders v as TONE text using default options (2-space indent,
// comma delimiter, no length markers). v may be a tone.Value or a Go
// value built from nil, bools, numbers, strings, string-keyed maps,
// slices, arrays, pointers, and structs (fields named by their json tags).
// Maps with non-string keys, channels, and funcs are rejected, and
// json.Marshaler implementations are not consulted.
func Encode(v interface{}) (string, error) {
	return EncodeWithOptions(v, nil)
}

// EncodeWithOptions renders v as TONE text. A nil opts uses the defaults
// documented on EncodeOptions.
func EncodeWithOptions(v interface{}, opts *EncodeOptions) (string, error) {
	resolved, err := resolveEncodeOptions(opts)
	if err != nil {
		return "", err
	}
	value, err := normalizeValue(v)
	if err != nil {
		return "", err
	}
	return encodeRootValue(value, resolved)
}

// Decode parses TONE text into a Go value tree (nil, bool, float64,
// string, map[string]interface{}, or []interface{}) using strict mode.
func Decode(data string) (interface{}, error) {
	return DecodeWithOptions(data, nil)
}

// DecodeWithOptions parses TONE text into a Go value tree. A nil opts
// uses the defaults documented on DecodeOptions.
func DecodeWithOptions(data string, opts *DecodeOptions) (interface{}, error) {
	v, err := DecodeValue(data, opts)
	if err != nil {
		return nil, err
	}
	return v.Interface(), nil
}

// DecodeValue parses TONE text into this package's ordered Value tree,
// preserving object key order — use this instead of DecodeWithOptions
// when the caller needs insertion order (e.g. to re-encode or to feed a
// tabular consumer that cares about field order).
func DecodeValue(data string, opts *DecodeOptions) (Value, error) {
	resolved := resolveDecodeOptions(opts)
	return decodeDocument(data, resolved)
}
