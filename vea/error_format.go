package vea

import (
	"fmt"
	"strconv"
	"strings"
)

// formatCodeFrame renders the source line containing span.Start with a
// caret run under the spanned text. Spans reaching past the line end are
// underlined to the end of the line.
func formatCodeFrame(source string, span Span) string {
	if source == "" {
		return ""
	}

	pos := LineColumn(source, span.Start)
	lines := strings.Split(source, "\n")
	if pos.Line > len(lines) {
		return ""
	}

	lineText := lines[pos.Line-1]
	lineRunes := []rune(lineText)

	column := pos.Column
	if column > len(lineRunes)+1 {
		column = len(lineRunes) + 1
	}

	width := len([]rune(span.Text(source)))
	if nl := strings.IndexByte(span.Text(source), '\n'); nl >= 0 {
		width = len([]rune(span.Text(source)[:nl]))
	}
	if width < 1 {
		width = 1
	}
	if column-1+width > len(lineRunes)+1 {
		width = len(lineRunes) + 1 - (column - 1)
	}

	lineLabel := strconv.Itoa(pos.Line)
	gutterPad := strings.Repeat(" ", len(lineLabel))
	caretPad := strings.Repeat(" ", column-1)

	return fmt.Sprintf(
		"  --> line %d, column %d\n %s | %s\n %s | %s%s",
		pos.Line,
		column,
		lineLabel,
		lineText,
		gutterPad,
		caretPad,
		strings.Repeat("^", width),
	)
}
