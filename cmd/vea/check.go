package main

import (
	"flag"
	"fmt"
	"sort"

	"github.com/vea-lang/vea/vea"
)

type lintWarning struct {
	Function string
	Pos      vea.Position
	Message  string
}

// checkCommand compiles a script without running it and lints the parsed
// program for code that can never execute.
func checkCommand(args []string) error {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	fs.SetOutput(new(flagErrorSink))
	if err := fs.Parse(args); err != nil {
		return err
	}
	path, source, err := readScript("check", fs.Args())
	if err != nil {
		return err
	}

	program, err := vea.Compile(source)
	if err != nil {
		return &fileError{Path: path, Err: err}
	}

	warnings := lintProgram(program)
	if len(warnings) == 0 {
		fmt.Println("No issues found")
		return nil
	}
	for _, warning := range warnings {
		fmt.Printf("%s:%d:%d: %s (%s)\n", path, warning.Pos.Line, warning.Pos.Column, warning.Message, warning.Function)
	}
	return fmt.Errorf("check found %d issue(s)", len(warnings))
}

func lintProgram(program *vea.Program) []lintWarning {
	l := &linter{source: program.Source}
	l.statements("<script>", program.Statements, false)

	sort.SliceStable(l.warnings, func(i, j int) bool {
		if l.warnings[i].Pos.Line != l.warnings[j].Pos.Line {
			return l.warnings[i].Pos.Line < l.warnings[j].Pos.Line
		}
		if l.warnings[i].Pos.Column != l.warnings[j].Pos.Column {
			return l.warnings[i].Pos.Column < l.warnings[j].Pos.Column
		}
		return l.warnings[i].Function < l.warnings[j].Function
	})
	return l.warnings
}

type linter struct {
	source   string
	warnings []lintWarning
}

func (l *linter) warn(function string, span vea.Span, message string) {
	l.warnings = append(l.warnings, lintWarning{
		Function: function,
		Pos:      vea.LineColumn(l.source, span.Start),
		Message:  message,
	})
}

// statements lints a statement list and reports whether control always
// leaves it through a return.
func (l *linter) statements(function string, stmts []vea.Statement, inFn bool) bool {
	terminated := false
	for _, stmt := range stmts {
		if terminated {
			l.warn(function, stmt.Span(), "unreachable statement")
			continue
		}
		if l.statementTerminates(function, stmt, inFn) {
			terminated = true
		}
	}
	return terminated
}

func (l *linter) statementTerminates(function string, stmt vea.Statement, inFn bool) bool {
	switch s := stmt.(type) {
	case *vea.ReturnStmt:
		if !inFn {
			l.warn(function, s.ReturnSpan, "`return` outside of a `fn` block")
		}
		l.expression(function, s.Value)
		return true
	case *vea.FnStmt:
		if !l.statements(s.Name.Name, s.Body.Statements, true) {
			l.warn(s.Name.Name, s.Name.Span(), "fn does not return on every path")
		}
		return false
	case *vea.IfStmt:
		l.expression(function, s.Condition)
		consequent := l.statements(function, s.Consequent.Statements, inFn)
		if s.Alternate == nil {
			return false
		}
		alternate := l.statementTerminates(function, s.Alternate, inFn)
		return consequent && alternate
	case *vea.WhileStmt:
		l.expression(function, s.Condition)
		l.statements(function, s.Body.Statements, inFn)
		return false
	case *vea.BlockStmt:
		return l.statements(function, s.Statements, inFn)
	case *vea.LetStmt:
		l.expression(function, s.Value)
	case *vea.AssignStmt:
		l.expression(function, s.Value)
	case *vea.PrintStmt:
		l.expression(function, s.Value)
	case *vea.ExprStmt:
		l.expression(function, s.Expr)
	}
	return false
}

// expression descends into literals that can hold function bodies.
func (l *linter) expression(function string, expr vea.Expression) {
	switch e := expr.(type) {
	case *vea.StructLiteral:
		for _, field := range e.Fields {
			l.statementTerminates(function, field, false)
		}
	case *vea.SetLiteral:
		for _, elem := range e.Elements {
			l.expression(function, elem)
		}
	case *vea.GroupExpr:
		l.expression(function, e.Inner)
	case *vea.UnaryExpr:
		l.expression(function, e.Right)
	case *vea.BinaryExpr:
		l.expression(function, e.Left)
		l.expression(function, e.Right)
	case *vea.CallExpr:
		l.expression(function, e.Callee)
		for _, arg := range e.Args {
			l.expression(function, arg)
		}
	case *vea.MemberExpr:
		l.expression(function, e.Object)
	case *vea.IndexExpr:
		l.expression(function, e.Object)
		l.expression(function, e.Index)
	}
}
