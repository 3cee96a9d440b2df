package vea

import (
	"fmt"
	"strings"
)

// Stage names the pipeline phase that produced a diagnostic.
type Stage string

const (
	StageLex     Stage = "lex"
	StageParse   Stage = "parse"
	StageRuntime Stage = "runtime"
)

// Diagnostic is a span-anchored message from the lexer or parser.
type Diagnostic struct {
	Stage   Stage
	Span    Span
	Message string
	Source  string
}

func newDiagnostic(stage Stage, source string, span Span, msg string) *Diagnostic {
	return &Diagnostic{Stage: stage, Span: span, Message: msg, Source: source}
}

// Position returns the line and column where the diagnostic starts.
func (d *Diagnostic) Position() Position {
	return LineColumn(d.Source, d.Span.Start)
}

func (d *Diagnostic) Error() string {
	var b strings.Builder
	pos := d.Position()
	fmt.Fprintf(&b, "%s error at %d:%d: %s", d.Stage, pos.Line, pos.Column, d.Message)
	if frame := formatCodeFrame(d.Source, d.Span); frame != "" {
		b.WriteString("\n")
		b.WriteString(frame)
	}
	return b.String()
}

// Diagnostics is the batch of problems reported by one lex or parse pass.
type Diagnostics []*Diagnostic

func (ds Diagnostics) Error() string {
	parts := make([]string, len(ds))
	for i, d := range ds {
		parts[i] = d.Error()
	}
	return strings.Join(parts, "\n\n")
}

// Stage reports the phase the batch came from.
func (ds Diagnostics) Stage() Stage {
	if len(ds) == 0 {
		return ""
	}
	return ds[0].Stage
}
