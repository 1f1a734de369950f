package tone

import (
	"fmt"
	"strings"
)

// sourceLine is one non-blank line of input, with its 1-based line number,
// its leading-space column count, and its content past that indentation.
type sourceLine struct {
	no   int
	cols int
	text string
}

func splitSourceLines(data string) ([]sourceLine, error) {
	raw := strings.Split(data, "\n")
	lines := make([]sourceLine, 0, len(raw))
	for i, l := range raw {
		l = strings.TrimRight(l, "\r")
		if strings.TrimSpace(l) == "" {
			continue
		}
		cols, hasTab := measureIndent(l)
		if hasTab {
			return nil, NewIndentError(
				"tab characters are not permitted as indentation",
				i+1, 1, excerptOf(l))
		}
		lines = append(lines, sourceLine{no: i + 1, cols: cols, text: l[cols:]})
	}
	return lines, nil
}

// decoder walks a flat slice of sourceLines with a cursor, resolving
// indentation through an indentEngine as it goes and applying strict-mode
// structural validation against the declared lengths and field sets.
type decoder struct {
	lines  []sourceLine
	pos    int
	opts   DecodeOptions
	engine *indentEngine
}

func decodeDocument(data string, opts DecodeOptions) (Value, error) {
	lines, err := splitSourceLines(data)
	if err != nil {
		return Value{}, err
	}
	if len(lines) == 0 {
		return Null(), nil
	}

	d := &decoder{lines: lines, opts: opts, engine: newIndentEngine(opts.Indent, opts.Strict)}
	first := lines[0]

	if h, ok := parseHeaderLine(first.text); ok && !h.hasKey {
		d.pos = 1
		if _, err := d.engine.depthFor(first.cols, first.no, first.text); err != nil {
			return Value{}, err
		}
		return d.decodeArrayAt(1, h)
	}

	if len(lines) == 1 {
		if _, _, _, ok := parseKeyValueLine(first.text); !ok {
			return parseValueToken(strings.TrimSpace(first.text)), nil
		}
	}

	obj, err := d.decodeObjectAt(0)
	if err != nil {
		return Value{}, err
	}
	return ObjectValue(obj), nil
}

// decodeObjectAt consumes lines belonging to an object whose fields sit
// at the given logical depth, stopping (without consuming) at the first
// line whose depth is shallower.
func (d *decoder) decodeObjectAt(depth int) (Object, error) {
	obj := Object{}
	for d.pos < len(d.lines) {
		line := d.lines[d.pos]
		ld, err := d.engine.depthFor(line.cols, line.no, line.text)
		if err != nil {
			return nil, err
		}
		if ld < depth {
			break
		}
		if ld > depth {
			return nil, NewSyntaxError("unexpected indentation", line.no, line.cols+1, excerptOf(line.text))
		}
		// A dash-prefixed line at this same depth belongs to an enclosing
		// list array's next item, not to this object's fields — this is
		// how decodeObjectAt is reused to read a list item's continuation
		// fields, which share the list item's own depth with any sibling
		// item that follows.
		if _, ok := isListItemLine(line.text); ok {
			break
		}
		d.pos++

		if h, ok := parseHeaderLine(line.text); ok && h.hasKey {
			val, err := d.decodeArrayAt(depth+1, h)
			if err != nil {
				return nil, err
			}
			if err := setUnique(&obj, parseKeyToken(h.key), val, line); err != nil {
				return nil, err
			}
			continue
		}

		key, value, hasValue, ok := parseKeyValueLine(line.text)
		if !ok {
			return nil, NewSyntaxError("expected a 'key: value' line", line.no, 1, excerptOf(line.text))
		}
		key = parseKeyToken(key)

		if hasValue {
			if err := setUnique(&obj, key, parseValueToken(value), line); err != nil {
				return nil, err
			}
			continue
		}

		nested, err := d.decodeBareKey(depth, line.cols)
		if err != nil {
			return nil, err
		}
		if err := setUnique(&obj, key, nested, line); err != nil {
			return nil, err
		}
	}
	return obj, nil
}

// setUnique binds key to v in obj, rejecting a key already present in
// this object rather than silently overwriting it.
func setUnique(obj *Object, key string, v Value, line sourceLine) error {
	if obj.Has(key) {
		return NewValidationError(
			fmt.Sprintf("duplicate key %q in the same object", key),
			line.no, 1, excerptOf(line.text))
	}
	obj.Set(key, v)
	return nil
}

// decodeBareKey resolves the value of a bare "key:" line: null at EOF, an
// empty object if the next line is not indented deeper than the key
// line, or a nested object otherwise.
func (d *decoder) decodeBareKey(depth, keyLineCols int) (Value, error) {
	if d.pos >= len(d.lines) {
		return Null(), nil
	}
	next := d.lines[d.pos]
	if next.cols <= keyLineCols {
		return ObjectValue(nil), nil
	}
	child, err := d.decodeObjectAt(depth + 1)
	if err != nil {
		return Value{}, err
	}
	return ObjectValue(child), nil
}

// decodeArrayAt decodes the body of an array whose header has already
// been consumed, at the given expected body depth.
func (d *decoder) decodeArrayAt(depth int, h headerLine) (Value, error) {
	if h.hasInline {
		return d.decodeInlineArray(h)
	}
	if h.count == 0 {
		return ArrayValue(nil), nil
	}
	if h.hasFields {
		return d.decodeTabularArray(depth, h)
	}
	return d.decodeListArray(depth, h)
}

func (d *decoder) decodeInlineArray(h headerLine) (Value, error) {
	if h.count == 0 {
		return ArrayValue(nil), nil
	}
	parts := splitDelimited(h.inline, h.delimiter)
	if len(parts) != h.count {
		if d.opts.Strict {
			return Value{}, NewValidationError(
				fmt.Sprintf("array declared %d items but inline body has %d", h.count, len(parts)),
				0, 0, h.inline)
		}
		parts = padOrTruncate(parts, h.count)
	}
	arr := make(Array, len(parts))
	for i, p := range parts {
		arr[i] = parseValueToken(p)
	}
	return ArrayValue(arr), nil
}

func (d *decoder) decodeTabularArray(depth int, h headerLine) (Value, error) {
	arr := Array{}
	for d.pos < len(d.lines) {
		line := d.lines[d.pos]
		ld, err := d.engine.depthFor(line.cols, line.no, line.text)
		if err != nil {
			return Value{}, err
		}
		if ld < depth {
			break
		}
		if ld > depth {
			return Value{}, NewSyntaxError("unexpected nesting inside a tabular row", line.no, line.cols+1, excerptOf(line.text))
		}
		d.pos++

		cells := splitDelimited(line.text, h.delimiter)
		if len(cells) != len(h.fields) {
			if d.opts.Strict {
				return Value{}, NewValidationError(
					fmt.Sprintf("tabular row has %d values but the header declares %d fields", len(cells), len(h.fields)),
					line.no, 1, excerptOf(line.text))
			}
			cells = padOrTruncate(cells, len(h.fields))
		}

		obj := Object{}
		for i, f := range h.fields {
			obj.Set(f, parseValueToken(cells[i]))
		}
		arr = append(arr, ObjectValue(obj))
	}
	if d.opts.Strict && len(arr) != h.count {
		return Value{}, NewValidationError(
			fmt.Sprintf("array declared %d rows but %d were found", h.count, len(arr)), 0, 0, "")
	}
	return ArrayValue(arr), nil
}

func (d *decoder) decodeListArray(depth int, h headerLine) (Value, error) {
	arr := Array{}
	for d.pos < len(d.lines) {
		line := d.lines[d.pos]
		ld, err := d.engine.depthFor(line.cols, line.no, line.text)
		if err != nil {
			return Value{}, err
		}
		if ld < depth {
			break
		}
		if ld > depth {
			return Value{}, NewSyntaxError("unexpected indentation in a list item", line.no, line.cols+1, excerptOf(line.text))
		}
		d.pos++

		rest, ok := isListItemLine(line.text)
		if !ok {
			return Value{}, NewSyntaxError("expected a '- ' prefixed list item", line.no, 1, excerptOf(line.text))
		}
		item, err := d.decodeListItem(rest, depth, line.cols)
		if err != nil {
			return Value{}, err
		}
		arr = append(arr, item)
	}
	if d.opts.Strict && len(arr) != h.count {
		return Value{}, NewValidationError(
			fmt.Sprintf("array declared %d items but %d were found", h.count, len(arr)), 0, 0, "")
	}
	return ArrayValue(arr), nil
}

// decodeListItem decodes the content following a "- " marker. itemDepth
// is the depth of the dash line itself; the dash occupies the first
// field's indentation budget, so both that field's own nested body and
// any further continuation fields of the same object sit one level
// deeper than the dash.
func (d *decoder) decodeListItem(rest string, itemDepth, lineCols int) (Value, error) {
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return ObjectValue(nil), nil
	}

	if h, ok := parseHeaderLine(rest); ok {
		if h.hasKey {
			val, err := d.decodeArrayAt(itemDepth+1, h)
			if err != nil {
				return Value{}, err
			}
			obj := Object{}
			obj.Set(parseKeyToken(h.key), val)
			more, err := d.decodeObjectAt(itemDepth + 1)
			if err != nil {
				return Value{}, err
			}
			if err := mergeUnique(&obj, more); err != nil {
				return Value{}, err
			}
			return ObjectValue(obj), nil
		}
		return d.decodeArrayAt(itemDepth+1, h)
	}

	key, value, hasValue, ok := parseKeyValueLine(rest)
	if !ok {
		return parseValueToken(rest), nil
	}
	key = parseKeyToken(key)

	obj := Object{}
	if hasValue {
		obj.Set(key, parseValueToken(value))
	} else {
		nested, err := d.decodeBareKey(itemDepth, lineCols)
		if err != nil {
			return Value{}, err
		}
		obj.Set(key, nested)
	}

	more, err := d.decodeObjectAt(itemDepth + 1)
	if err != nil {
		return Value{}, err
	}
	if err := mergeUnique(&obj, more); err != nil {
		return Value{}, err
	}
	return ObjectValue(obj), nil
}

// mergeUnique merges more's fields into obj, rejecting a key that's
// already present — the merge of a list item's dash-line field with its
// continuation fields is still the same object for duplicate-key purposes.
func mergeUnique(obj *Object, more Object) error {
	for _, kv := range more {
		if obj.Has(kv.Key) {
			return NewValidationError(
				fmt.Sprintf("duplicate key %q in the same object", kv.Key), 0, 0, "")
		}
		obj.Set(kv.Key, kv.Value)
	}
	return nil
}

func padOrTruncate(parts []string, n int) []string {
	if len(parts) == n {
		return parts
	}
	if len(parts) > n {
		return parts[:n]
	}
	out := make([]string, n)
	copy(out, parts)
	for i := len(parts); i < n; i++ {
		out[i] = ""
	}
	return out
}
