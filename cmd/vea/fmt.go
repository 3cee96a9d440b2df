package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vea-lang/vea/vea"
)

type fmtMode struct {
	write bool
	list  bool
	check bool
}

// fmtCommand formats .vea files the way `gofmt` does: to stdout by
// default, in place with -w, listing changed paths with -l.
func fmtCommand(args []string) error {
	fs := flag.NewFlagSet("fmt", flag.ContinueOnError)
	fs.SetOutput(new(flagErrorSink))
	var mode fmtMode
	fs.BoolVar(&mode.write, "w", false, "write result to source files instead of stdout")
	fs.BoolVar(&mode.list, "l", false, "list files whose formatting differs")
	fs.BoolVar(&mode.check, "check", false, "fail if any source file needs formatting")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errors.New("vea fmt: path required")
	}

	files, err := collectVeaFiles(fs.Args())
	if err != nil {
		return err
	}

	stale := 0
	for _, path := range files {
		changed, err := formatFile(path, mode)
		if err != nil {
			return err
		}
		if changed {
			stale++
		}
	}
	if mode.check && stale > 0 {
		return fmt.Errorf("vea fmt: %d file(s) need formatting", stale)
	}
	return nil
}

func formatFile(path string, mode fmtMode) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", path, err)
	}
	formatted, err := formatVeaSource(string(src))
	if err != nil {
		return false, &fileError{Path: path, Err: err}
	}
	changed := formatted != string(src)

	if mode.list && changed {
		fmt.Println(path)
	}
	switch {
	case mode.write:
		if changed {
			if err := os.WriteFile(path, []byte(formatted), info.Mode().Perm()); err != nil {
				return false, fmt.Errorf("write %s: %w", path, err)
			}
		}
	case !mode.list && !mode.check:
		fmt.Print(formatted)
	}
	return changed, nil
}

// collectVeaFiles expands directories into the .vea files below them,
// skipping hidden directories. Explicit file arguments are taken as given.
func collectVeaFiles(targets []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(path string) error {
		abs, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", path, err)
		}
		if !seen[abs] {
			seen[abs] = true
			files = append(files, abs)
		}
		return nil
	}

	for _, target := range targets {
		err := filepath.WalkDir(target, func(path string, entry fs.DirEntry, walkErr error) error {
			switch {
			case walkErr != nil:
				return walkErr
			case entry.IsDir():
				if path != target && strings.HasPrefix(entry.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			case path == target || filepath.Ext(path) == ".vea":
				return add(path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", target, err)
		}
	}

	sort.Strings(files)
	return files, nil
}

// formatVeaSource rewrites a program in canonical layout. The lexer drops
// comments, so a file containing any is only cleaned of trailing
// whitespace and blank lines at the end instead of being reprinted.
func formatVeaSource(source string) (string, error) {
	program, err := vea.Compile(source)
	if err != nil {
		return "", err
	}
	if hasComments(source) {
		return trimWhitespace(source), nil
	}
	if len(program.Statements) == 0 {
		return "", nil
	}
	return program.String() + "\n", nil
}

func trimWhitespace(source string) string {
	normalized := strings.ReplaceAll(source, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")

	lines := strings.Split(normalized, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}

	joined := strings.Join(lines, "\n")
	joined = strings.TrimRight(joined, "\n")
	return joined + "\n"
}

// hasComments reports whether source has a `//` outside string literals.
func hasComments(source string) bool {
	inString, escaped := false, false
	for i := 0; i < len(source); i++ {
		c := source[i]
		switch {
		case inString && escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '\'':
			inString = !inString
		case !inString && c == '/' && i+1 < len(source) && source[i+1] == '/':
			return true
		}
	}
	return false
}
