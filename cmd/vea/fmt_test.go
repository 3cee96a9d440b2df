package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFmtCommandRequiresPath(t *testing.T) {
	err := fmtCommand(nil)
	if err == nil {
		t.Fatalf("expected path error")
	}
	if !strings.Contains(err.Error(), "path required") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFmtCommandCheckDetectsUnformattedFiles(t *testing.T) {
	path := writeVeaFile(t, "let  x=1;print(x);")
	err := fmtCommand([]string{"-check", path})
	if err == nil {
		t.Fatalf("expected check failure")
	}
	if !strings.Contains(err.Error(), "1 file(s) need formatting") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFmtCommandWriteFormatsFileInPlace(t *testing.T) {
	path := writeVeaFile(t, "fn id(a){return a;}\nprint( id(1) );")
	if err := fmtCommand([]string{"-w", path}); err != nil {
		t.Fatalf("fmt -w failed: %v", err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read formatted file: %v", err)
	}
	want := "fn id(a) {\n\treturn a;\n}\nprint(id(1));\n"
	if string(content) != want {
		t.Fatalf("unexpected formatted content:\n%q", string(content))
	}
	if err := fmtCommand([]string{"-check", path}); err != nil {
		t.Fatalf("formatted file should pass check: %v", err)
	}
}

func TestFmtCommandPrintsFormattedOutput(t *testing.T) {
	path := writeVeaFile(t, "let s=set{1,2};")
	out, err := captureStdout(t, func() error {
		return fmtCommand([]string{path})
	})
	if err != nil {
		t.Fatalf("fmt failed: %v", err)
	}
	if out != "let s = set { 1, 2 };\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestFmtCommandFormatsDirectories(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "a.vea")
	nested := filepath.Join(dir, "nested", "b.vea")
	ignored := filepath.Join(dir, "notes.txt")
	if err := os.MkdirAll(filepath.Dir(nested), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	for path, content := range map[string]string{
		first:   "print(1) ;",
		nested:  "print( 2 );",
		ignored: "print( 3 );",
	} {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}

	if err := fmtCommand([]string{"-w", dir}); err != nil {
		t.Fatalf("fmt -w dir failed: %v", err)
	}
	for _, path := range []string{first, nested} {
		content, _ := os.ReadFile(path)
		if !strings.HasPrefix(string(content), "print(") || !strings.HasSuffix(string(content), ");\n") {
			t.Fatalf("%s not formatted: %q", path, string(content))
		}
	}
	content, _ := os.ReadFile(ignored)
	if string(content) != "print( 3 );" {
		t.Fatalf("non-.vea file was rewritten: %q", string(content))
	}
}

func TestFmtCommandListsChangedFiles(t *testing.T) {
	dir := t.TempDir()
	clean := filepath.Join(dir, "clean.vea")
	messy := filepath.Join(dir, "messy.vea")
	hidden := filepath.Join(dir, ".cache", "skip.vea")
	if err := os.MkdirAll(filepath.Dir(hidden), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	for path, content := range map[string]string{
		clean:  "print(1);\n",
		messy:  "print( 1 );",
		hidden: "print( 2 );",
	} {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}

	out, err := captureStdout(t, func() error {
		return fmtCommand([]string{"-l", dir})
	})
	if err != nil {
		t.Fatalf("fmt -l failed: %v", err)
	}
	if strings.TrimSpace(out) != messy {
		t.Fatalf("expected only %s to be listed, got %q", messy, out)
	}
	content, _ := os.ReadFile(messy)
	if string(content) != "print( 1 );" {
		t.Fatalf("-l alone must not rewrite files")
	}
}

func TestFmtCommandRejectsInvalidSource(t *testing.T) {
	path := writeVeaFile(t, "let = 1;")
	if err := fmtCommand([]string{path}); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestFormatVeaSourceKeepsCommentedFiles(t *testing.T) {
	got, err := formatVeaSource("let x = 1;   // keep   \nprint(x);\t\n\n\n")
	if err != nil {
		t.Fatalf("format failed: %v", err)
	}
	if got != "let x = 1;   // keep\nprint(x);\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestFormatVeaSourceEmptyProgram(t *testing.T) {
	got, err := formatVeaSource("  \n")
	if err != nil {
		t.Fatalf("format failed: %v", err)
	}
	if got != "" {
		t.Fatalf("expected empty output, got %q", got)
	}
}

func TestHasCommentsIgnoresStrings(t *testing.T) {
	if hasComments("print('http://x');") {
		t.Fatalf("slashes inside a string are not a comment")
	}
	if hasComments(`print('it\'s // fine');`) {
		t.Fatalf("escaped quote should not end the string")
	}
	if !hasComments("print(1); // trailing") {
		t.Fatalf("expected comment to be found")
	}
}

func writeVeaFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "main.vea")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write vea file: %v", err)
	}
	return path
}
