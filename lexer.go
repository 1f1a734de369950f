package tone

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// identifierPattern matches bare (unquoted) key names: TONE keys may
// contain dots for nested-path shorthand.
var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*$`)

func isBareIdentifier(s string) bool {
	return s != "" && identifierPattern.MatchString(s)
}

// needsQuoting reports whether a string literal must be wrapped in double
// quotes to round-trip unambiguously: empty strings, strings that look
// like other scalar types, strings containing structural characters, and
// strings with leading/trailing whitespace all require quoting.
func needsQuoting(s string, delim Delimiter) bool {
	if s == "" {
		return true
	}
	if s == "true" || s == "false" || s == "null" {
		return true
	}
	if looksLikeNumber(s) {
		return true
	}
	if strings.TrimSpace(s) != s {
		return true
	}
	if strings.ContainsAny(s, "\n\r\"") {
		return true
	}
	if strings.ContainsAny(s, ":[]{}#") {
		return true
	}
	if strings.Contains(s, string(delim)) {
		return true
	}
	if strings.HasPrefix(s, "-") && len(s) > 1 {
		return true
	}
	return false
}

func looksLikeNumber(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// quoteString wraps s in double quotes, escaping the characters the
// decoder's unescapeString reverses.
func quoteString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// unescapeString reverses quoteString's escaping of a quoted literal's
// inner contents (the surrounding quotes must already be stripped).
func unescapeString(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			case 't':
				b.WriteByte('\t')
			case '"':
				b.WriteByte('"')
			case '\\':
				b.WriteByte('\\')
			default:
				b.WriteByte(s[i+1])
			}
			i++
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// encodeKey renders an object key, quoting it if it is not a bare
// identifier.
func encodeKey(key string) string {
	if isBareIdentifier(key) {
		return key
	}
	return quoteString(key)
}

// formatNumber renders a float64 the way JSON numbers are conventionally
// rendered: integral values without a trailing ".0", trailing zeros
// trimmed. NaN and infinities have no JSON/TONE literal and are rejected
// with an encode error rather than silently substituted.
func formatNumber(n float64) (string, error) {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return "", NewEncodeError(fmt.Sprintf("cannot encode non-finite number %v", n))
	}
	if n == math.Trunc(n) && math.Abs(n) < 1e15 {
		return strconv.FormatInt(int64(n), 10), nil
	}
	return strconv.FormatFloat(n, 'g', -1, 64), nil
}

// encodePrimitive renders a scalar Value as a TONE literal.
func encodePrimitive(v Value, delim Delimiter) (string, error) {
	switch v.Kind {
	case KindNull:
		return "null", nil
	case KindBool:
		if v.Bool {
			return "true", nil
		}
		return "false", nil
	case KindNumber:
		return formatNumber(v.Num)
	case KindString:
		if needsQuoting(v.Str, delim) {
			return quoteString(v.Str), nil
		}
		return v.Str, nil
	default:
		return "", nil
	}
}

// parseScalar interprets a raw (unquoted, already-trimmed) literal token
// as null, bool, number, or — failing all of those — string.
func parseScalar(tok string) Value {
	switch tok {
	case "null", "":
		return Null()
	case "true":
		return BoolValue(true)
	case "false":
		return BoolValue(false)
	}
	if n, err := strconv.ParseFloat(tok, 64); err == nil {
		return NumberValue(n)
	}
	return StringValue(tok)
}

// parseValueToken interprets a raw value token that may be quoted.
func parseValueToken(tok string) Value {
	if len(tok) >= 2 && tok[0] == '"' && tok[len(tok)-1] == '"' {
		return StringValue(unescapeString(tok[1 : len(tok)-1]))
	}
	return parseScalar(tok)
}

// parseKeyToken unquotes a key token if it was written as a quoted
// string literal; bare identifier keys pass through unchanged.
func parseKeyToken(tok string) string {
	tok = strings.TrimSpace(tok)
	if len(tok) >= 2 && tok[0] == '"' && tok[len(tok)-1] == '"' {
		return unescapeString(tok[1 : len(tok)-1])
	}
	return tok
}
