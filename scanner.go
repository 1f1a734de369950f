package tone

import (
	"regexp"
	"strconv"
	"strings"
)

// headerPattern recognizes an array header line: an optional key, a
// bracketed length (optionally length-marked with '#' and/or carrying an
// explicit delimiter character), an optional "{fields}" tabular field
// list, and a trailing colon plus optional inline body.
//
//	items[3]:
//	items[#3]:
//	items[3|]{id|name}: 1|Alice
//	[2]: 1,2
var headerPattern = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_.]*)?\[(#?)(\d+)([,\t|]?)\](?:\{([^}]*)\})?:(.*)$`)

// keyValuePattern recognizes a "key: value" or bare "key:" line.
var keyValuePattern = regexp.MustCompile(`^([^:]+?):[ \t]?(.*)$`)

type headerLine struct {
	key          string
	hasKey       bool
	lengthMarker bool
	count        int
	delimiter    Delimiter
	fields       []string
	hasFields    bool
	inline       string
	hasInline    bool
}

// parseHeaderLine attempts to parse line as an array header. ok is false
// if line does not match the header grammar at all.
func parseHeaderLine(line string) (headerLine, bool) {
	m := headerPattern.FindStringSubmatch(line)
	if m == nil {
		return headerLine{}, false
	}
	h := headerLine{}
	if m[1] != "" {
		h.key = m[1]
		h.hasKey = true
	}
	h.lengthMarker = m[2] == "#"
	n, err := strconv.Atoi(m[3])
	if err != nil {
		return headerLine{}, false
	}
	h.count = n

	h.delimiter = Comma
	if m[4] != "" {
		h.delimiter = Delimiter(m[4])
	}

	if m[5] != "" || strings.Contains(line, "{}") {
		h.hasFields = true
		if m[5] != "" {
			h.fields = splitDelimited(m[5], h.delimiter)
		}
	}

	rest := strings.TrimSpace(m[6])
	if rest != "" {
		h.inline = rest
		h.hasInline = true
	}
	return h, true
}

// parseKeyValueLine splits a plain "key: value" or "key:" line.
func parseKeyValueLine(line string) (key, value string, hasValue bool, ok bool) {
	m := keyValuePattern.FindStringSubmatch(line)
	if m == nil {
		return "", "", false, false
	}
	key = strings.TrimSpace(m[1])
	value = strings.TrimSpace(m[2])
	return key, value, value != "", true
}

// isListItemLine reports whether a (already indent-stripped) line begins
// a dash-prefixed list item, returning the remainder after "- ".
func isListItemLine(line string) (rest string, ok bool) {
	if strings.HasPrefix(line, "- ") {
		return line[2:], true
	}
	if line == "-" {
		return "", true
	}
	return "", false
}

// splitDelimited splits s on delim, respecting double-quoted spans so a
// delimiter character inside a quoted string literal is not treated as a
// field separator.
func splitDelimited(s string, delim Delimiter) []string {
	var fields []string
	var cur strings.Builder
	inQuotes := false
	d := byte(delim[0])
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"' && (i == 0 || s[i-1] != '\\'):
			inQuotes = !inQuotes
			cur.WriteByte(c)
		case c == d && !inQuotes:
			fields = append(fields, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	fields = append(fields, cur.String())
	for i, f := range fields {
		fields[i] = strings.TrimSpace(f)
	}
	return fields
}
