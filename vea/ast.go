package vea

// Node is any element of the syntax tree. Span covers the node's full
// source text; String reconstructs canonical source for it.
type Node interface {
	Span() Span
	String() string
}

type Statement interface {
	Node
	stmtNode()
}

type Expression interface {
	Node
	exprNode()
}

// Program is a parsed source file.
type Program struct {
	Statements []Statement
	Source     string
	span       Span
}

func (p *Program) Span() Span { return p.span }

type Identifier struct {
	Name string
	span Span
}

func (e *Identifier) exprNode()  {}
func (e *Identifier) Span() Span { return e.span }

type IntegerLiteral struct {
	Value int64
	span  Span
}

func (e *IntegerLiteral) exprNode()  {}
func (e *IntegerLiteral) Span() Span { return e.span }

type StringLiteral struct {
	Value string
	span  Span
}

func (e *StringLiteral) exprNode()  {}
func (e *StringLiteral) Span() Span { return e.span }

type BoolLiteral struct {
	Value bool
	span  Span
}

func (e *BoolLiteral) exprNode()  {}
func (e *BoolLiteral) Span() Span { return e.span }

// NoneLiteral is the `_` sentinel.
type NoneLiteral struct {
	span Span
}

func (e *NoneLiteral) exprNode()  {}
func (e *NoneLiteral) Span() Span { return e.span }

type GroupExpr struct {
	Inner  Expression
	LParen Span
	RParen Span
	span   Span
}

func (e *GroupExpr) exprNode()  {}
func (e *GroupExpr) Span() Span { return e.span }

type UnaryExpr struct {
	Operator TokenType
	Right    Expression
	OpSpan   Span
	span     Span
}

func (e *UnaryExpr) exprNode()  {}
func (e *UnaryExpr) Span() Span { return e.span }

type BinaryExpr struct {
	Left     Expression
	Operator TokenType
	Right    Expression
	OpSpan   Span
	span     Span
}

func (e *BinaryExpr) exprNode()  {}
func (e *BinaryExpr) Span() Span { return e.span }

type CallExpr struct {
	Callee Expression
	Args   []Expression
	LParen Span
	RParen Span
	span   Span
}

func (e *CallExpr) exprNode()  {}
func (e *CallExpr) Span() Span { return e.span }

// StructLiteral builds an object from `let` and `fn` entries.
type StructLiteral struct {
	Fields     []Statement
	StructSpan Span
	LBrace     Span
	RBrace     Span
	span       Span
}

func (e *StructLiteral) exprNode()  {}
func (e *StructLiteral) Span() Span { return e.span }

type SetLiteral struct {
	Elements []Expression
	SetSpan  Span
	LBrace   Span
	RBrace   Span
	span     Span
}

func (e *SetLiteral) exprNode()  {}
func (e *SetLiteral) Span() Span { return e.span }

// MemberExpr is the chain form `object.property`.
type MemberExpr struct {
	Object   Expression
	Property *Identifier
	DotSpan  Span
	span     Span
}

func (e *MemberExpr) exprNode()  {}
func (e *MemberExpr) Span() Span { return e.span }

// IndexExpr is the chain form `object[key]`; the key must evaluate to a string.
type IndexExpr struct {
	Object   Expression
	Index    Expression
	LBracket Span
	RBracket Span
	span     Span
}

func (e *IndexExpr) exprNode()  {}
func (e *IndexExpr) Span() Span { return e.span }

// ErrorExpr stands in for an expression the parser could not read.
type ErrorExpr struct {
	Message string
	span    Span
}

func (e *ErrorExpr) exprNode()  {}
func (e *ErrorExpr) Span() Span { return e.span }
