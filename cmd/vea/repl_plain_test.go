package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vea-lang/vea/vea"
)

func TestNeedsMoreInput(t *testing.T) {
	cases := []struct {
		src  string
		want bool
	}{
		{src: "fn f() {", want: true},
		{src: "let x = 1 +", want: true},
		{src: "print('open", want: true},
		{src: "let = 1;", want: false},
		{src: "let x = @", want: false},
		{src: "let x = 1;", want: false},
	}
	for _, tc := range cases {
		if got := needsMoreInput(tc.src); got != tc.want {
			t.Fatalf("needsMoreInput(%q) = %v, want %v", tc.src, got, tc.want)
		}
	}
}

func TestPlainCommands(t *testing.T) {
	session := vea.MustNewEngine(vea.Config{}).NewSession()
	var out bytes.Buffer

	if plainCommand(":vars", session, &out) {
		t.Fatalf(":vars should not quit")
	}
	if strings.TrimSpace(out.String()) != "No variables defined" {
		t.Fatalf("unexpected :vars output %q", out.String())
	}

	if _, err := session.Eval(context.Background(), "let b = 'two'; let a = 1;"); err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	out.Reset()
	plainCommand(":v", session, &out)
	if out.String() != "a = 1\nb = 'two'\n" {
		t.Fatalf("unexpected :vars output %q", out.String())
	}

	out.Reset()
	plainCommand(":reset", session, &out)
	if len(session.Names()) != 0 {
		t.Fatalf("expected bindings to be dropped")
	}

	out.Reset()
	plainCommand(":bogus", session, &out)
	if !strings.Contains(out.String(), "Unknown command: :bogus") {
		t.Fatalf("unexpected output %q", out.String())
	}

	if !plainCommand(":q", session, &out) {
		t.Fatalf(":q should quit")
	}
}

func TestCompleteLine(t *testing.T) {
	got := completeLine("let y = cou", []string{"count", "counter", "total"})
	want := []string{"let y = count", "let y = counter"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("unexpected completions %v", got)
	}
	if completeLine("print(", nil) != nil {
		t.Fatalf("no word under the cursor means no completions")
	}
}

func TestHistoryPath(t *testing.T) {
	if historyPath("") != "" {
		t.Fatalf("empty name disables history")
	}
	abs := filepath.Join(t.TempDir(), "hist")
	if historyPath(abs) != abs {
		t.Fatalf("absolute paths are used as is")
	}
	if got := historyPath(".vea_history"); got != "" && !strings.HasSuffix(got, string(filepath.Separator)+".vea_history") {
		t.Fatalf("relative names live under the home directory, got %q", got)
	}
}
