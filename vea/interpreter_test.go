package vea

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func runSource(t *testing.T, engine *Engine, source string) (string, error) {
	t.Helper()
	result, err := engine.Run(context.Background(), source)
	if result == nil {
		t.Fatalf("Run returned a nil result")
	}
	return result.Output, err
}

func mustRun(t *testing.T, source string) string {
	t.Helper()
	out, err := runSource(t, MustNewEngine(Config{StepQuota: 100_000, RecursionLimit: 200}), source)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	return out
}

func runtimeErrorOf(t *testing.T, source string) (string, *RuntimeError) {
	t.Helper()
	out, err := runSource(t, MustNewEngine(Config{StepQuota: 100_000, RecursionLimit: 200}), source)
	if err == nil {
		t.Fatalf("expected runtime error, got output %q", out)
	}
	var re *RuntimeError
	if !errors.As(err, &re) {
		t.Fatalf("expected RuntimeError, got %T: %v", err, err)
	}
	return out, re
}

func TestRunPrograms(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{name: "print variable", source: "let x = 5; print(x);", want: "5"},
		{name: "call", source: "fn add(a, b) { return a + b; } print(add(1, 2));", want: "3"},
		{name: "precedence", source: "print(1 + 2 * 3 - 4 / 2);", want: "5"},
		{name: "grouping", source: "print((1 + 2) * 3);", want: "9"},
		{name: "left associative", source: "print(10 - 3 - 2);", want: "5"},
		{name: "print concatenates", source: "print(1); print('a'); print(true);", want: "1atrue"},
		{name: "none", source: "print(_);", want: "_"},
		{name: "comparison", source: "print(2 < 3); print('b' >= 'a'); print(1 == '1');", want: "truetruefalse"},
		{name: "bool ops", source: "print(true & false); print(true | false); print(true ^ true);", want: "falsetruefalse"},
		{name: "unary", source: "print(-5); print(!false); print(!0);", want: "-5true-1"},
		{name: "compound", source: "let x = 1; x += 3; print(x);", want: "4"},
		{name: "compound shift", source: "let x = 1; x <<= 4; x -= 6; x %= 7; print(x);", want: "3"},
		{
			name:   "while counter",
			source: "let i = 0; let total = 0; while i < 5 { total += i; i += 1; } print(total);",
			want:   "10",
		},
		{
			name:   "if else chain",
			source: "let n = 7; if n < 5 { print('small'); } else if n < 10 { print('medium'); } else { print('large'); }",
			want:   "medium",
		},
		{
			name:   "factorial",
			source: "fn fact(n) { if (n <= 1) { return 1; } return n * fact(n - 1); } print(fact(10));",
			want:   "3628800",
		},
		{
			name:   "closure",
			source: "fn make(n) { fn adder(x) { return x + n; } return adder; } let add5 = make(5); print(add5(10));",
			want:   "15",
		},
		{
			name:   "return from loop",
			source: "fn f() { let i = 0; while true { i += 1; if i == 3 { return i; } } } print(f());",
			want:   "3",
		},
		{
			name:   "aliasing",
			source: "let a = struct { let v = 1; }; let b = a; b.v = 2; print(a.v);",
			want:   "2",
		},
		{
			name:   "struct method",
			source: "let o = struct { let v = 1; fn get() { return 42; } }; print(o.get()); print(o['v']);",
			want:   "421",
		},
		{
			name:   "nested field update",
			source: "let o = struct { let inner = struct { let n = 1; }; }; o.inner['n'] *= 5; print(o.inner.n);",
			want:   "5",
		},
		{
			name:   "render struct",
			source: "print(struct { let a = 'x'; fn f() { return 1; } });",
			want:   "struct { let a = 'x'; fn f; }",
		},
		{name: "render set", source: "print(set { 1, 'two', _ });", want: "set { 1, 'two', _ }"},
		{name: "set equality", source: "print(set { 1, 2 } == set { 2, 1 });", want: "true"},
		{name: "struct equality", source: "print(struct { let a = 1; } == struct { let a = 1; });", want: "true"},
		{name: "print function", source: "fn f() { return 1; } print(f);", want: "fn f"},
		{name: "block scope", source: "{ let x = 1; print(x); } let x = 2; print(x);", want: "12"},
		{name: "assign outer", source: "let x = 1; fn bump() { x += 1; return x; } print(bump()); print(x);", want: "22"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := mustRun(t, tc.source); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestRedefinitionPointsAtSecondName(t *testing.T) {
	_, re := runtimeErrorOf(t, "let x = 1; let x = 2;")
	if re.Span != (Span{Start: 15, End: 16}) {
		t.Fatalf("unexpected span %v", re.Span)
	}
	if re.Type != "NameError" {
		t.Fatalf("expected NameError, got %s", re.Type)
	}
	if !errors.Is(re, ErrVariableExists) {
		t.Fatalf("expected ErrVariableExists in chain")
	}
}

func TestDuplicateSetElement(t *testing.T) {
	_, re := runtimeErrorOf(t, "set { 1, 1 };")
	if re.Span != (Span{Start: 9, End: 10}) {
		t.Fatalf("unexpected span %v", re.Span)
	}
	if re.Message != "value 1 is already in this set" {
		t.Fatalf("unexpected message %q", re.Message)
	}
}

func TestDuplicateStructField(t *testing.T) {
	_, re := runtimeErrorOf(t, "let o = struct { let a = 1; let a = 2; };")
	if !strings.Contains(re.Message, "field `a` is already defined") {
		t.Fatalf("unexpected message %q", re.Message)
	}
}

func TestDivisionByZero(t *testing.T) {
	_, re := runtimeErrorOf(t, "print(1 / 0);")
	if !errors.Is(re, ErrDivisionByZero) {
		t.Fatalf("expected ErrDivisionByZero, got %v", re)
	}
	if re.Type != "ArithmeticError" {
		t.Fatalf("expected ArithmeticError, got %s", re.Type)
	}
	if re.Span != (Span{Start: 6, End: 11}) {
		t.Fatalf("unexpected span %v", re.Span)
	}
}

func TestArityMismatch(t *testing.T) {
	_, re := runtimeErrorOf(t, "fn add(a, b) { return a + b; } add(1);")
	if re.Message != "fn `add` expected 2 arguments but got 1" {
		t.Fatalf("unexpected message %q", re.Message)
	}

	_, re = runtimeErrorOf(t, "fn one(a) { return a; } one(1, 2);")
	if re.Message != "fn `one` expected 1 argument but got 2" {
		t.Fatalf("unexpected message %q", re.Message)
	}
}

func TestConditionMustBeBool(t *testing.T) {
	out, re := runtimeErrorOf(t, "while (1) { print('looped'); }")
	if out != "" {
		t.Fatalf("loop body must not run, got %q", out)
	}
	if re.Type != "TypeError" {
		t.Fatalf("expected TypeError, got %s", re.Type)
	}
	if re.Message != "`while` condition must be of type `bool`, found `int`" {
		t.Fatalf("unexpected message %q", re.Message)
	}

	_, re = runtimeErrorOf(t, "if 'yes' { }")
	if !strings.Contains(re.Message, "`if` condition must be of type `bool`, found `string`") {
		t.Fatalf("unexpected message %q", re.Message)
	}
}

func TestRuntimeErrors(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		message string
		typ     string
	}{
		{name: "after return", source: "fn f() { return 1; print(2); } print(f());", message: "statement after `return` is never reached", typ: "RuntimeError"},
		{name: "no return", source: "fn f() { let a = 1; } f();", message: "fn `f` doesn't return anything", typ: "RuntimeError"},
		{name: "top-level return", source: "return 1;", message: "used `return` statement outside of a `fn` block", typ: "RuntimeError"},
		{name: "not a function", source: "let x = 1; x();", message: "value of type `int` is not a function", typ: "TypeError"},
		{name: "bad operands", source: "print(1 + 'a');", message: "cannot apply `+` to values of type `int` and `string`", typ: "TypeError"},
		{name: "assign undefined", source: "y = 1;", message: "variable `y` does not exist", typ: "NameError"},
		{name: "missing field", source: "let o = struct {}; print(o.w);", message: "value does not have an index `w`", typ: "RuntimeError"},
		{name: "index non-struct", source: "let n = 1; print(n.a);", message: "cannot index into a value with type `int`", typ: "TypeError"},
		{name: "index with int", source: "let o = struct {}; print(o[1]);", message: "cannot index with a value of type `int`", typ: "TypeError"},
		{name: "shadowing in function", source: "let a = 1; fn f() { let a = 2; return a; } f();", message: "variable `a` already exists", typ: "NameError"},
		{name: "overflow", source: "print(9223372036854775807 + 1);", message: "integer overflow", typ: "ArithmeticError"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, re := runtimeErrorOf(t, tc.source)
			if re.Message != tc.message {
				t.Fatalf("expected %q, got %q", tc.message, re.Message)
			}
			if re.Type != tc.typ {
				t.Fatalf("expected type %s, got %s", tc.typ, re.Type)
			}
		})
	}
}

func TestReturnInsideNestedBlockEndsFunction(t *testing.T) {
	out := mustRun(t, "fn f() { { return 1; } print(9); } print(f());")
	if out != "1" {
		t.Fatalf("expected the nested return to end f, got %q", out)
	}

	_, re := runtimeErrorOf(t, "fn g() { { return 1; print(9); } } g();")
	if re.Message != "statement after `return` is never reached" {
		t.Fatalf("expected unreachable error inside the block, got %q", re.Message)
	}
}

func TestIndexEvaluatesObjectBeforeKey(t *testing.T) {
	source := "fn o() { print('o'); return struct { let a = 1; }; }\n" +
		"fn k() { print('k'); return 'a'; }\n" +
		"print(o()[k()]);"
	if out := mustRun(t, source); out != "ok1" {
		t.Fatalf("expected object then key, got %q", out)
	}

	_, re := runtimeErrorOf(t, "let n = 1; print(n[missing]);")
	if re.Message != "cannot index into a value with type `int`" {
		t.Fatalf("expected the object error first, got %q", re.Message)
	}
}

func TestPrintSelfReferentialStructIsBounded(t *testing.T) {
	engine := MustNewEngine(Config{StepQuota: 1000, OutputLimitBytes: 1 << 16})
	out, err := runSource(t, engine, "let p = struct { let a = 1; let b = 1; }; p.a = p; p.b = p; print(p);")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "struct { let a = struct {...}; let b = struct {...}; }" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestPrintSharedStructsRespectsLimits(t *testing.T) {
	// each level holds the previous one twice, so the rendering doubles per level
	source := "let p = struct { let a = 0; let b = 0; }; let i = 0;\n" +
		"while i < 40 { p = struct { let a = p; let b = p; }; i += 1; }\n" +
		"print(p);"

	engine := MustNewEngine(Config{StepQuota: 5000})
	if _, err := runSource(t, engine, source); !errors.Is(err, ErrStepQuotaExceeded) {
		t.Fatalf("expected step quota error, got %v", err)
	}

	engine = MustNewEngine(Config{OutputLimitBytes: 1 << 10})
	out, err := runSource(t, engine, source)
	if !errors.Is(err, ErrOutputLimit) {
		t.Fatalf("expected output limit error, got %v", err)
	}
	if out != "" {
		t.Fatalf("expected nothing written, got %d bytes", len(out))
	}
}

func TestUndefinedVariableSuggestsName(t *testing.T) {
	_, re := runtimeErrorOf(t, "let count = 1; print(cuont);")
	if re.Hint != "did you mean `count`?" {
		t.Fatalf("unexpected hint %q", re.Hint)
	}
	if !strings.Contains(re.Error(), "variable `cuont` does not exist (did you mean `count`?)") {
		t.Fatalf("unexpected error text:\n%s", re.Error())
	}
}

func TestRuntimeErrorKeepsPartialOutput(t *testing.T) {
	out, re := runtimeErrorOf(t, "print('before'); print(1 / 0); print('after');")
	if out != "before" {
		t.Fatalf("expected partial output, got %q", out)
	}
	if !strings.Contains(re.CodeFrame, "^^^^^") {
		t.Fatalf("expected a code frame, got %q", re.CodeFrame)
	}
}

func TestRuntimeErrorStackFrames(t *testing.T) {
	source := "fn inner() { return 1 / 0; }\nfn outer() { return inner(); }\nprint(outer());"
	_, re := runtimeErrorOf(t, source)
	if len(re.Frames) != 3 {
		t.Fatalf("expected 3 frames, got %d: %+v", len(re.Frames), re.Frames)
	}
	if re.Frames[0].Function != "inner" || re.Frames[0].Pos.Line != 1 {
		t.Fatalf("unexpected innermost frame %+v", re.Frames[0])
	}
	if re.Frames[1].Pos.Line != 2 {
		t.Fatalf("expected inner call site on line 2, got %+v", re.Frames[1])
	}
	last := re.Frames[2]
	if last.Function != "outer" || last.Pos.Line != 3 || last.Pos.Column != 7 {
		t.Fatalf("unexpected outermost frame %+v", last)
	}
	if !strings.Contains(re.Error(), "\n  at outer (3:7)") {
		t.Fatalf("expected rendered frames, got:\n%s", re.Error())
	}
}

func TestStepQuotaStopsRunawayLoop(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelWarn}))
	engine := MustNewEngine(Config{StepQuota: 100, Logger: logger})

	_, err := runSource(t, engine, "while true { }")
	if !errors.Is(err, ErrStepQuotaExceeded) {
		t.Fatalf("expected step quota error, got %v", err)
	}
	var re *RuntimeError
	if !errors.As(err, &re) || re.Type != "LimitError" {
		t.Fatalf("expected LimitError, got %v", err)
	}
	if !strings.Contains(logs.String(), "step quota exceeded") {
		t.Fatalf("expected a warning log, got %q", logs.String())
	}
}

func TestContextCancellationStopsExecution(t *testing.T) {
	engine := MustNewEngine(Config{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.Run(ctx, "while true { }")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRecursionLimitExceeded(t *testing.T) {
	engine := MustNewEngine(Config{RecursionLimit: 10})
	_, err := runSource(t, engine, "fn down(n) { return down(n + 1); } print(down(0));")
	if !errors.Is(err, ErrRecursionLimit) {
		t.Fatalf("expected recursion limit error, got %v", err)
	}
	if !strings.Contains(err.Error(), "recursion limit exceeded (10)") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRecursionLimitAllowsWithinBound(t *testing.T) {
	engine := MustNewEngine(Config{RecursionLimit: 5})
	out, err := runSource(t, engine, "fn count(n) { if n <= 0 { return 0; } return count(n - 1) + 1; } print(count(4));")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "4" {
		t.Fatalf("expected 4, got %q", out)
	}
}

func TestOutputLimit(t *testing.T) {
	engine := MustNewEngine(Config{OutputLimitBytes: 5})
	out, err := runSource(t, engine, "print('hello'); print('world');")
	if !errors.Is(err, ErrOutputLimit) {
		t.Fatalf("expected output limit error, got %v", err)
	}
	if out != "hello" {
		t.Fatalf("expected output up to the limit, got %q", out)
	}
}

func TestNewEngineRejectsNegativeLimits(t *testing.T) {
	for _, cfg := range []Config{{StepQuota: -1}, {RecursionLimit: -1}, {OutputLimitBytes: -1}} {
		if _, err := NewEngine(cfg); err == nil {
			t.Fatalf("expected error for %+v", cfg)
		}
	}
	if got := MustNewEngine(Config{StepQuota: 10}).ConfigSummary(); got != "steps=10 recursion=0 output=0B" {
		t.Fatalf("unexpected summary %q", got)
	}
}

func TestRunStopsAtFirstFailingStage(t *testing.T) {
	engine := MustNewEngine(Config{})

	result, err := engine.Run(context.Background(), "let x = @; print(1);")
	var diags Diagnostics
	if !errors.As(err, &diags) || diags.Stage() != StageLex {
		t.Fatalf("expected lex diagnostics, got %v", err)
	}
	if result.Program != nil || result.Output != "" {
		t.Fatalf("nothing should run after lex errors")
	}
	if len(result.Tokens) == 0 || result.Tokens[len(result.Tokens)-1].Type != tokenEOF {
		t.Fatalf("expected the token stream to be kept")
	}

	result, err = engine.Run(context.Background(), "let = 1;\nlet y = ;\nprint(1);")
	if !errors.As(err, &diags) || diags.Stage() != StageParse {
		t.Fatalf("expected parse diagnostics, got %v", err)
	}
	if len(diags) != 2 {
		t.Fatalf("expected both parse errors, got %d", len(diags))
	}
	if result.Output != "" {
		t.Fatalf("nothing should run after parse errors, got %q", result.Output)
	}
}

func TestPureProgramsAreDeterministic(t *testing.T) {
	source := "print(1 + 2 * 3); print('a' + 'b'); print(set { 3, 1, 2 }); print(struct { let k = 7 << 2; }); print(10 % 4 == 2);"
	engine := MustNewEngine(Config{})
	first, err := runSource(t, engine, source)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := runSource(t, engine, source)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if first != second {
		t.Fatalf("runs differ: %q vs %q", first, second)
	}
}
