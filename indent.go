package tone

import (
	"strings"

	"golang.org/x/text/width"
)

// measureIndent counts the leading whitespace of line. hasTab reports
// whether a tab character appeared anywhere in that leading span — tabs
// are never accepted as indentation (they're reserved for the tab
// delimiter inside values), so callers must reject such a line rather
// than silently treating it as depth-0 content.
func measureIndent(line string) (cols int, hasTab bool) {
	n := 0
	for n < len(line) && (line[n] == ' ' || line[n] == '\t') {
		if line[n] == '\t' {
			hasTab = true
		}
		n++
	}
	return n, hasTab
}

// indentEngine tracks the mapping from raw leading-space counts to
// logical depths as a decode proceeds. It always enforces that every
// indent is a multiple of the configured step and that depth never jumps
// more than one level deeper than its immediate parent — both fatal
// regardless of strict mode. Strict mode adds one further check: that a
// dedent lands exactly on a previously open column, rather than silently
// closing to the nearest enclosing level.
type indentEngine struct {
	step   int
	strict bool
	// stack holds the raw column count of each currently-open depth,
	// stack[0] == 0 for the root.
	stack []int
}

func newIndentEngine(step int, strict bool) *indentEngine {
	if step < 1 {
		step = defaultIndent
	}
	return &indentEngine{step: step, strict: strict, stack: []int{0}}
}

// depthFor resolves the raw column count of a line to a logical depth
// relative to the currently open stack, pushing a new level when the
// column is deeper than the current top and popping when it's shallower.
// lineNo/lineText are used only to annotate any resulting error.
func (e *indentEngine) depthFor(cols, lineNo int, lineText string) (int, error) {
	if cols%e.step != 0 {
		return 0, NewIndentError(
			"indentation is not a multiple of the configured indent size",
			lineNo, cols+1, excerptOf(lineText))
	}

	top := e.stack[len(e.stack)-1]
	switch {
	case cols > top:
		depth := len(e.stack)
		if cols-top > e.step {
			return 0, NewIndentError(
				"indentation jumped more than one level deeper than its parent",
				lineNo, cols+1, excerptOf(lineText))
		}
		e.stack = append(e.stack, cols)
		return depth, nil
	case cols == top:
		return len(e.stack) - 1, nil
	default:
		for len(e.stack) > 1 && e.stack[len(e.stack)-1] > cols {
			e.stack = e.stack[:len(e.stack)-1]
		}
		if e.stack[len(e.stack)-1] != cols && e.strict {
			return 0, NewIndentError(
				"indentation does not match any open level",
				lineNo, cols+1, excerptOf(lineText))
		}
		return len(e.stack) - 1, nil
	}
}

// excerptOf trims line to a column budget for inclusion in an Error,
// counting East-Asian wide runes as two columns the way a terminal would
// render them, so excerpts from CJK-heavy input don't silently overflow
// whatever fixed-width display shows the error.
func excerptOf(line string) string {
	trimmed := strings.TrimRight(line, "\r")
	const maxCols = 80

	col := 0
	for i, r := range trimmed {
		w := 1
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			w = 2
		}
		if col+w > maxCols {
			return trimmed[:i] + "..."
		}
		col += w
	}
	return trimmed
}
