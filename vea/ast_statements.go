package vea

type LetStmt struct {
	Name       *Identifier
	Value      Expression
	LetSpan    Span
	AssignSpan Span
	SemiSpan   Span
	span       Span
}

func (s *LetStmt) stmtNode()  {}
func (s *LetStmt) Span() Span { return s.span }

type FnStmt struct {
	Name   *Identifier
	Params []*Identifier
	Body   *BlockStmt
	FnSpan Span
	LParen Span
	RParen Span
	span   Span
}

func (s *FnStmt) stmtNode()  {}
func (s *FnStmt) Span() Span { return s.span }

// IfStmt's Alternate is nil, a *BlockStmt, or a nested *IfStmt for `else if`.
type IfStmt struct {
	Condition  Expression
	Consequent *BlockStmt
	Alternate  Statement
	IfSpan     Span
	ElseSpan   Span
	span       Span
}

func (s *IfStmt) stmtNode()  {}
func (s *IfStmt) Span() Span { return s.span }

type WhileStmt struct {
	Condition Expression
	Body      *BlockStmt
	WhileSpan Span
	span      Span
}

func (s *WhileStmt) stmtNode()  {}
func (s *WhileStmt) Span() Span { return s.span }

type ReturnStmt struct {
	Value      Expression
	ReturnSpan Span
	SemiSpan   Span
	span       Span
}

func (s *ReturnStmt) stmtNode()  {}
func (s *ReturnStmt) Span() Span { return s.span }

type PrintStmt struct {
	Value     Expression
	PrintSpan Span
	LParen    Span
	RParen    Span
	SemiSpan  Span
	span      Span
}

func (s *PrintStmt) stmtNode()  {}
func (s *PrintStmt) Span() Span { return s.span }

// AssignStmt covers `=` and the compound forms; Operator holds the token
// type such as tokenPlusAssign.
type AssignStmt struct {
	Target   Expression
	Operator TokenType
	Value    Expression
	OpSpan   Span
	SemiSpan Span
	span     Span
}

func (s *AssignStmt) stmtNode()  {}
func (s *AssignStmt) Span() Span { return s.span }

type ExprStmt struct {
	Expr     Expression
	SemiSpan Span
	span     Span
}

func (s *ExprStmt) stmtNode()  {}
func (s *ExprStmt) Span() Span { return s.span }

type BlockStmt struct {
	Statements []Statement
	LBrace     Span
	RBrace     Span
	span       Span
}

func (s *BlockStmt) stmtNode()  {}
func (s *BlockStmt) Span() Span { return s.span }

// compoundOperators maps each compound assignment to the binary operator it applies.
var compoundOperators = map[TokenType]TokenType{
	tokenPlusAssign:     tokenPlus,
	tokenMinusAssign:    tokenMinus,
	tokenAsteriskAssign: tokenAsterisk,
	tokenSlashAssign:    tokenSlash,
	tokenPercentAssign:  tokenPercent,
	tokenShlAssign:      tokenShl,
	tokenShrAssign:      tokenShr,
	tokenAmpAssign:      tokenAmp,
	tokenPipeAssign:     tokenPipe,
	tokenCaretAssign:    tokenCaret,
}

func isAssignOperator(tt TokenType) bool {
	if tt == tokenAssign {
		return true
	}
	_, ok := compoundOperators[tt]
	return ok
}
