package vea

import (
	"strconv"
	"strings"
)

func (p *Program) String() string {
	var b strings.Builder
	for i, stmt := range p.Statements {
		if i > 0 {
			b.WriteByte('\n')
		}
		writeStatement(&b, stmt, 0)
	}
	return b.String()
}

func (s *LetStmt) String() string    { return renderStatement(s) }
func (s *FnStmt) String() string     { return renderStatement(s) }
func (s *IfStmt) String() string     { return renderStatement(s) }
func (s *WhileStmt) String() string  { return renderStatement(s) }
func (s *ReturnStmt) String() string { return renderStatement(s) }
func (s *PrintStmt) String() string  { return renderStatement(s) }
func (s *AssignStmt) String() string { return renderStatement(s) }
func (s *ExprStmt) String() string   { return renderStatement(s) }
func (s *BlockStmt) String() string  { return renderStatement(s) }

func (e *Identifier) String() string     { return e.Name }
func (e *IntegerLiteral) String() string { return strconv.FormatInt(e.Value, 10) }
func (e *StringLiteral) String() string  { return quoteString(e.Value) }
func (e *BoolLiteral) String() string    { return strconv.FormatBool(e.Value) }
func (e *NoneLiteral) String() string    { return "_" }
func (e *ErrorExpr) String() string      { return "<error>" }
func (e *GroupExpr) String() string      { return renderExpression(e) }
func (e *UnaryExpr) String() string      { return renderExpression(e) }
func (e *BinaryExpr) String() string     { return renderExpression(e) }
func (e *CallExpr) String() string       { return renderExpression(e) }
func (e *StructLiteral) String() string  { return renderExpression(e) }
func (e *SetLiteral) String() string     { return renderExpression(e) }
func (e *MemberExpr) String() string     { return renderExpression(e) }
func (e *IndexExpr) String() string      { return renderExpression(e) }

func renderStatement(stmt Statement) string {
	var b strings.Builder
	writeStatement(&b, stmt, 0)
	return b.String()
}

func renderExpression(expr Expression) string {
	var b strings.Builder
	writeExpression(&b, expr, 0)
	return b.String()
}

func writeStatement(b *strings.Builder, stmt Statement, depth int) {
	switch s := stmt.(type) {
	case *LetStmt:
		b.WriteString("let ")
		b.WriteString(s.Name.Name)
		b.WriteString(" = ")
		writeExpression(b, s.Value, depth)
		b.WriteByte(';')
	case *FnStmt:
		b.WriteString("fn ")
		b.WriteString(s.Name.Name)
		b.WriteByte('(')
		for i, param := range s.Params {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(param.Name)
		}
		b.WriteString(") ")
		writeStatement(b, s.Body, depth)
	case *IfStmt:
		b.WriteString("if ")
		writeExpression(b, s.Condition, depth)
		b.WriteByte(' ')
		writeStatement(b, s.Consequent, depth)
		if s.Alternate != nil {
			b.WriteString(" else ")
			writeStatement(b, s.Alternate, depth)
		}
	case *WhileStmt:
		b.WriteString("while ")
		writeExpression(b, s.Condition, depth)
		b.WriteByte(' ')
		writeStatement(b, s.Body, depth)
	case *ReturnStmt:
		b.WriteString("return ")
		writeExpression(b, s.Value, depth)
		b.WriteByte(';')
	case *PrintStmt:
		b.WriteString("print(")
		writeExpression(b, s.Value, depth)
		b.WriteString(");")
	case *AssignStmt:
		writeExpression(b, s.Target, depth)
		b.WriteByte(' ')
		b.WriteString(string(s.Operator))
		b.WriteByte(' ')
		writeExpression(b, s.Value, depth)
		b.WriteByte(';')
	case *ExprStmt:
		writeExpression(b, s.Expr, depth)
		b.WriteByte(';')
	case *BlockStmt:
		writeBody(b, s.Statements, depth)
	}
}

// writeBody renders `{ ... }` with one statement per line, indented by tabs.
func writeBody(b *strings.Builder, stmts []Statement, depth int) {
	if len(stmts) == 0 {
		b.WriteString("{}")
		return
	}
	b.WriteString("{\n")
	for _, stmt := range stmts {
		b.WriteString(strings.Repeat("\t", depth+1))
		writeStatement(b, stmt, depth+1)
		b.WriteByte('\n')
	}
	b.WriteString(strings.Repeat("\t", depth))
	b.WriteByte('}')
}

func writeExpression(b *strings.Builder, expr Expression, depth int) {
	switch e := expr.(type) {
	case nil:
		b.WriteString("<error>")
	case *GroupExpr:
		b.WriteByte('(')
		writeExpression(b, e.Inner, depth)
		b.WriteByte(')')
	case *UnaryExpr:
		b.WriteString(string(e.Operator))
		writeExpression(b, e.Right, depth)
	case *BinaryExpr:
		writeExpression(b, e.Left, depth)
		b.WriteByte(' ')
		b.WriteString(string(e.Operator))
		b.WriteByte(' ')
		writeExpression(b, e.Right, depth)
	case *CallExpr:
		writeExpression(b, e.Callee, depth)
		b.WriteByte('(')
		for i, arg := range e.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			writeExpression(b, arg, depth)
		}
		b.WriteByte(')')
	case *StructLiteral:
		b.WriteString("struct ")
		writeBody(b, e.Fields, depth)
	case *SetLiteral:
		if len(e.Elements) == 0 {
			b.WriteString("set {}")
			return
		}
		b.WriteString("set { ")
		for i, elem := range e.Elements {
			if i > 0 {
				b.WriteString(", ")
			}
			writeExpression(b, elem, depth)
		}
		b.WriteString(" }")
	case *MemberExpr:
		writeExpression(b, e.Object, depth)
		b.WriteByte('.')
		b.WriteString(e.Property.Name)
	case *IndexExpr:
		writeExpression(b, e.Object, depth)
		b.WriteByte('[')
		writeExpression(b, e.Index, depth)
		b.WriteByte(']')
	default:
		b.WriteString(expr.String())
	}
}

func quoteString(s string) string {
	var b strings.Builder
	b.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\'':
			b.WriteString(`\'`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('\'')
	return b.String()
}
