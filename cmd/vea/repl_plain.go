package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/peterh/liner"
	"github.com/vea-lang/vea/vea"
)

const (
	promptMain = "vea> "
	promptCont = "...> "
)

// runPlainREPL is the line-oriented REPL for terminals where the
// full-screen UI is unwanted. Input spanning several lines is collected
// until it parses or fails somewhere other than at its end.
func runPlainREPL(cfg cliConfig) error {
	engine, err := vea.NewEngine(cfg.engineConfig(cfg.newLogger(os.Stderr)))
	if err != nil {
		return err
	}
	session := engine.NewSession()

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	ln.SetCompleter(func(line string) []string {
		return completeLine(line, session.Names())
	})

	if histPath := historyPath(cfg.History); histPath != "" {
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			if f, err := os.Create(histPath); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			}
		}()
	}

	fmt.Printf("vea (%s), :help for commands\n", engine.ConfigSummary())
	for {
		code, ok := readStatement(ln)
		if !ok {
			fmt.Println()
			return nil
		}
		trimmed := strings.TrimSpace(code)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, ":") {
			if quit := plainCommand(trimmed, session, os.Stdout); quit {
				return nil
			}
			continue
		}

		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
		ctx, cancel := cfg.runContext()
		output, err := session.Eval(ctx, code)
		cancel()
		if output != "" {
			fmt.Println(output)
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, renderError(err))
		}
	}
}

func readStatement(ln *liner.State) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", true
		}
		if err != nil {
			return "", false
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") {
			return src, true
		}
		if completed := completeStatement(src); compiles(completed) {
			return completed, true
		}
		if !needsMoreInput(src) {
			return src, true
		}
	}
}

func compiles(src string) bool {
	_, err := vea.Compile(src)
	return err == nil
}

// needsMoreInput reports whether src fails only because it ends early:
// an open block, an unterminated string, or an operator missing its
// right-hand side.
func needsMoreInput(src string) bool {
	_, err := vea.Compile(src)
	var diags vea.Diagnostics
	if !errors.As(err, &diags) {
		return false
	}
	end := len(strings.TrimRight(src, " \t\r\n"))
	for _, d := range diags {
		if d.Span.End < end {
			continue
		}
		if d.Stage == vea.StageParse || strings.HasPrefix(d.Message, "unterminated") {
			return true
		}
	}
	return false
}

func plainCommand(input string, session *vea.Session, w io.Writer) bool {
	switch strings.Fields(input)[0] {
	case ":quit", ":q":
		return true
	case ":vars", ":v":
		bindings := session.Bindings()
		if len(bindings) == 0 {
			fmt.Fprintln(w, "No variables defined")
			return false
		}
		names := make([]string, 0, len(bindings))
		for name := range bindings {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(w, "%s = %s\n", name, bindings[name].Inspect())
		}
	case ":reset", ":r":
		session.Reset()
		fmt.Fprintln(w, "Environment reset")
	case ":help", ":h":
		fmt.Fprintln(w, ":vars   list variables")
		fmt.Fprintln(w, ":reset  drop every binding")
		fmt.Fprintln(w, ":quit   exit")
	default:
		fmt.Fprintf(w, "Unknown command: %s\n", input)
	}
	return false
}

func completeLine(line string, names []string) []string {
	start := len(line)
	for start > 0 && isWordRune(rune(line[start-1])) {
		start--
	}
	word := line[start:]
	if word == "" {
		return nil
	}
	matches := completionsFor(word, names)
	out := make([]string, len(matches))
	for i, match := range matches {
		out[i] = line[:start] + match
	}
	return out
}

func historyPath(name string) string {
	if name == "" {
		return ""
	}
	if filepath.IsAbs(name) {
		return name
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, name)
}
