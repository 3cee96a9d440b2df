package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/vea-lang/vea/vea"
)

var (
	pathStyle  = lipgloss.NewStyle().Bold(true)
	labelStyle = lipgloss.NewStyle().Foreground(errorColor).Bold(true)
	hintStyle  = lipgloss.NewStyle().Foreground(highlightColor)
)

// renderError formats a CLI failure for the terminal. Diagnostics and
// runtime errors get a labelled report with their code frames; anything
// else is printed as is.
func renderError(err error) string {
	var (
		path  string
		fe    *fileError
		diags vea.Diagnostics
		re    *vea.RuntimeError
	)
	if errors.As(err, &fe) {
		path = fe.Path
	}

	switch {
	case errors.As(err, &diags):
		parts := make([]string, 0, len(diags))
		for _, d := range diags {
			parts = append(parts, renderDiagnostic(path, d))
		}
		return strings.Join(parts, "\n\n")
	case errors.As(err, &re):
		return renderRuntimeError(path, re)
	default:
		return errorStyle.Render(err.Error())
	}
}

func renderDiagnostic(path string, d *vea.Diagnostic) string {
	var b strings.Builder
	pos := d.Position()
	b.WriteString(labelStyle.Render(fmt.Sprintf("%s error", d.Stage)))
	b.WriteString(": ")
	b.WriteString(d.Message)
	b.WriteByte('\n')
	b.WriteString(mutedStyle.Render(location(path, pos)))
	if frame := codeFrame(d.Source, d.Span); frame != "" {
		b.WriteByte('\n')
		b.WriteString(frame)
	}
	return b.String()
}

func renderRuntimeError(path string, re *vea.RuntimeError) string {
	var b strings.Builder
	b.WriteString(labelStyle.Render(re.Type))
	b.WriteString(": ")
	b.WriteString(re.Message)
	if re.Hint != "" {
		b.WriteString(" ")
		b.WriteString(hintStyle.Render("(" + re.Hint + ")"))
	}
	if len(re.Frames) > 0 {
		b.WriteByte('\n')
		b.WriteString(mutedStyle.Render(location(path, re.Frames[0].Pos)))
	}
	if re.CodeFrame != "" {
		b.WriteByte('\n')
		b.WriteString(re.CodeFrame)
	}
	for _, frame := range re.Frames {
		b.WriteByte('\n')
		b.WriteString(mutedStyle.Render(fmt.Sprintf("  at %s (%d:%d)", frame.Function, frame.Pos.Line, frame.Pos.Column)))
	}
	return b.String()
}

func location(path string, pos vea.Position) string {
	if path == "" {
		return fmt.Sprintf("  --> %d:%d", pos.Line, pos.Column)
	}
	return fmt.Sprintf("  --> %s:%d:%d", pathStyle.Render(path), pos.Line, pos.Column)
}

// codeFrame draws the offending line with a caret run under the span.
func codeFrame(source string, span vea.Span) string {
	if source == "" {
		return ""
	}
	pos := vea.LineColumn(source, span.Start)
	lines := strings.Split(source, "\n")
	if pos.Line > len(lines) {
		return ""
	}
	line := lines[pos.Line-1]

	text := span.Text(source)
	if nl := strings.IndexByte(text, '\n'); nl >= 0 {
		text = text[:nl]
	}
	width := max(1, len([]rune(text)))
	gutter := fmt.Sprintf("%d", pos.Line)

	return fmt.Sprintf("%s | %s\n%s | %s%s",
		mutedStyle.Render(gutter),
		line,
		strings.Repeat(" ", len(gutter)),
		strings.Repeat(" ", pos.Column-1),
		errorStyle.Render(strings.Repeat("^", width)),
	)
}
