package vea

import "unicode/utf8"

// Span is a half-open byte range [Start, End) into the source text.
type Span struct {
	Start int
	End   int
}

// Position is a 1-based line and rune column.
type Position struct {
	Line   int
	Column int
}

func (s Span) Len() int { return s.End - s.Start }

// Join returns the smallest span covering both s and other.
func (s Span) Join(other Span) Span {
	out := s
	if other.Start < out.Start {
		out.Start = other.Start
	}
	if other.End > out.End {
		out.End = other.End
	}
	return out
}

// Text returns the source slice covered by the span, clamped to the input.
func (s Span) Text(source string) string {
	start, end := clampOffset(source, s.Start), clampOffset(source, s.End)
	if end < start {
		return ""
	}
	return source[start:end]
}

// LineColumn converts a byte offset into a line and column.
func LineColumn(source string, offset int) Position {
	offset = clampOffset(source, offset)
	pos := Position{Line: 1, Column: 1}
	for i, r := range source {
		if i >= offset {
			break
		}
		if r == '\n' {
			pos.Line++
			pos.Column = 1
			continue
		}
		pos.Column++
	}
	return pos
}

func clampOffset(source string, offset int) int {
	if offset < 0 {
		return 0
	}
	if offset > len(source) {
		return len(source)
	}
	for offset > 0 && offset < len(source) && !utf8.RuneStart(source[offset]) {
		offset--
	}
	return offset
}
