package main

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vea-lang/vea/vea"
)

func TestRunCLIHelp(t *testing.T) {
	if err := runCLI([]string{"vea", "help"}); err != nil {
		t.Fatalf("runCLI help failed: %v", err)
	}
}

func TestRunCLIInvalidCommand(t *testing.T) {
	err := runCLI([]string{"vea", "unknown"})
	if err == nil {
		t.Fatalf("expected invalid command error")
	}
	if !strings.Contains(err.Error(), "invalid command") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunCLIWithoutCommand(t *testing.T) {
	err := runCLI([]string{"vea"})
	if err == nil || !strings.Contains(err.Error(), "invalid command") {
		t.Fatalf("expected invalid command error, got %v", err)
	}
}

func TestRunCommandPrintsOutput(t *testing.T) {
	scriptPath := writeScript(t, `fn fact(n) {
	if n <= 1 { return 1; }
	return n * fact(n - 1);
}
print(fact(5));
print(' done');
`)

	out, err := captureStdout(t, func() error {
		return runCommand([]string{scriptPath})
	})
	if err != nil {
		t.Fatalf("runCommand failed: %v", err)
	}
	if out != "120 done\n" {
		t.Fatalf("unexpected stdout: %q", out)
	}
}

func TestRunCommandRequiresScriptPath(t *testing.T) {
	err := runCommand(nil)
	if err == nil {
		t.Fatalf("expected script path error")
	}
	if !strings.Contains(err.Error(), "script path required") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunCommandReportsRuntimeErrorWithPartialOutput(t *testing.T) {
	scriptPath := writeScript(t, "print('before');\nprint(1 / 0);\n")

	out, err := captureStdout(t, func() error {
		return runCommand([]string{scriptPath})
	})
	if out != "before\n" {
		t.Fatalf("expected partial output, got %q", out)
	}
	var re *vea.RuntimeError
	if !errors.As(err, &re) {
		t.Fatalf("expected runtime error, got %T (%v)", err, err)
	}
	if re.Type != "ArithmeticError" {
		t.Fatalf("unexpected error type %q", re.Type)
	}
	var fe *fileError
	if !errors.As(err, &fe) || fe.Path != scriptPath {
		t.Fatalf("expected error tied to %s, got %v", scriptPath, err)
	}
}

func TestRunCommandReportsCompileErrors(t *testing.T) {
	scriptPath := writeScript(t, "let x = ;\nlet y = @;\n")

	_, err := captureStdout(t, func() error {
		return runCommand([]string{scriptPath})
	})
	var diags vea.Diagnostics
	if !errors.As(err, &diags) {
		t.Fatalf("expected diagnostics, got %T (%v)", err, err)
	}
	if diags.Stage() != vea.StageLex {
		t.Fatalf("expected lex diagnostics first, got %s", diags.Stage())
	}
}

func TestRunCommandStepFlagOverridesConfig(t *testing.T) {
	scriptPath := writeScript(t, "while true { }\n")

	_, err := captureStdout(t, func() error {
		return runCommand([]string{"-steps", "50", scriptPath})
	})
	var re *vea.RuntimeError
	if !errors.As(err, &re) || re.Type != "LimitError" {
		t.Fatalf("expected limit error, got %v", err)
	}
}

func TestRunCommandReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "vea.yml")
	if err := os.WriteFile(configPath, []byte("output_limit_bytes: 3\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	scriptPath := writeScript(t, "print('hello');\n")

	out, err := captureStdout(t, func() error {
		return runCommand([]string{"-config", configPath, scriptPath})
	})
	var re *vea.RuntimeError
	if !errors.As(err, &re) || re.Type != "LimitError" {
		t.Fatalf("expected output limit error, got %v", err)
	}
	if strings.Contains(out, "hello") {
		t.Fatalf("output limit not applied: %q", out)
	}
}

func TestRunCommandRejectsInvalidFlagValues(t *testing.T) {
	scriptPath := writeScript(t, "print(1);\n")

	err := runCommand([]string{"-log-level", "loud", scriptPath})
	if err == nil || !strings.Contains(err.Error(), `unknown log_level "loud"`) {
		t.Fatalf("expected log level error, got %v", err)
	}
}

func TestTokensCommandPrintsPositions(t *testing.T) {
	scriptPath := writeScript(t, "let x = 1;\nprint(x);\n")

	out, err := captureStdout(t, func() error {
		return tokensCommand([]string{scriptPath})
	})
	if err != nil {
		t.Fatalf("tokensCommand failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if lines[0] != "1:1\tLET" {
		t.Fatalf("unexpected first token line %q", lines[0])
	}
	if lines[1] != "1:5\tIDENT(x)" {
		t.Fatalf("unexpected second token line %q", lines[1])
	}
	if !strings.Contains(out, "2:1\tPRINT") {
		t.Fatalf("missing print token:\n%s", out)
	}
	if lines[len(lines)-1] != "3:1\tEOF" {
		t.Fatalf("expected EOF last, got %q", lines[len(lines)-1])
	}
}

func TestTokensCommandReportsLexErrors(t *testing.T) {
	scriptPath := writeScript(t, "let s = 'open;\n")

	out, err := captureStdout(t, func() error {
		return tokensCommand([]string{scriptPath})
	})
	if err == nil {
		t.Fatalf("expected lex error")
	}
	if !strings.Contains(out, "ERROR(unterminated string)") {
		t.Fatalf("expected error token in dump:\n%s", out)
	}
}

func TestASTCommandPrintsCanonicalSource(t *testing.T) {
	scriptPath := writeScript(t, "fn   add(a,b){return a+b;}\nprint( add(1,2) );")

	out, err := captureStdout(t, func() error {
		return astCommand([]string{scriptPath})
	})
	if err != nil {
		t.Fatalf("astCommand failed: %v", err)
	}
	want := "fn add(a, b) {\n\treturn a + b;\n}\nprint(add(1, 2));\n"
	if out != want {
		t.Fatalf("unexpected ast output\nwant:\n%s\ngot:\n%s", want, out)
	}
}

func TestFileErrorUnwraps(t *testing.T) {
	inner := errors.New("boom")
	err := &fileError{Path: "/tmp/x.vea", Err: inner}
	if !errors.Is(err, inner) {
		t.Fatalf("fileError should unwrap to its cause")
	}
	if err.Error() != "/tmp/x.vea: boom" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func writeScript(t *testing.T, source string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "script.vea")
	if err := os.WriteFile(path, []byte(source), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func captureStdout(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	orig := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout = w

	runErr := fn()
	_ = w.Close()
	os.Stdout = orig

	var buf bytes.Buffer
	if _, copyErr := io.Copy(&buf, r); copyErr != nil {
		t.Fatalf("read stdout: %v", copyErr)
	}
	_ = r.Close()
	return buf.String(), runErr
}
