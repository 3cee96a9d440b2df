package vea

type (
	prefixParseFn func() Expression
	infixParseFn  func(Expression) Expression
)

type parser struct {
	source string
	tokens []Token
	idx    int

	curToken  Token
	peekToken Token

	errors []*Diagnostic
	errIdx int

	prefixFns map[TokenType]prefixParseFn
	infixFns  map[TokenType]infixParseFn
}

// Parse builds a Program from the tokens produced by Lex. Error tokens are
// skipped since Lex already reported them. Parsing recovers at statement
// boundaries, so every independent syntax error in the input is reported;
// statements that could not be read appear in the Program as ErrorExpr
// placeholders.
func Parse(source string, tokens []Token) (*Program, []*Diagnostic) {
	p := newParser(source, tokens)
	return p.ParseProgram(), p.errors
}

func newParser(source string, tokens []Token) *parser {
	p := &parser{source: source}
	for _, tok := range tokens {
		if tok.IsError() {
			continue
		}
		p.tokens = append(p.tokens, tok)
		if tok.Type == tokenEOF {
			break
		}
	}
	if len(p.tokens) == 0 || p.tokens[len(p.tokens)-1].Type != tokenEOF {
		end := len(source)
		p.tokens = append(p.tokens, Token{Type: tokenEOF, Span: Span{Start: end, End: end}})
	}

	p.prefixFns = make(map[TokenType]prefixParseFn)
	p.infixFns = make(map[TokenType]infixParseFn)

	p.registerPrefix(tokenIdent, p.parseIdentifier)
	p.registerPrefix(tokenInt, p.parseIntegerLiteral)
	p.registerPrefix(tokenString, p.parseStringLiteral)
	p.registerPrefix(tokenTrue, p.parseBooleanLiteral)
	p.registerPrefix(tokenFalse, p.parseBooleanLiteral)
	p.registerPrefix(tokenNone, p.parseNoneLiteral)
	p.registerPrefix(tokenLParen, p.parseGroupedExpression)
	p.registerPrefix(tokenBang, p.parsePrefixExpression)
	p.registerPrefix(tokenMinus, p.parsePrefixExpression)
	p.registerPrefix(tokenStruct, p.parseStructLiteral)
	p.registerPrefix(tokenSet, p.parseSetLiteral)

	for tt := range precedences {
		p.infixFns[tt] = p.parseInfixExpression
	}
	p.infixFns[tokenLParen] = p.parseCallExpression
	p.infixFns[tokenDot] = p.parseMemberExpression
	p.infixFns[tokenLBracket] = p.parseIndexExpression

	p.seek(0)
	return p
}

func (p *parser) registerPrefix(tt TokenType, fn prefixParseFn) {
	p.prefixFns[tt] = fn
}

func (p *parser) seek(idx int) {
	last := len(p.tokens) - 1
	if idx > last {
		idx = last
	}
	p.idx = idx
	p.curToken = p.tokens[idx]
	if idx+1 <= last {
		p.peekToken = p.tokens[idx+1]
	} else {
		p.peekToken = p.tokens[last]
	}
}

func (p *parser) nextToken() {
	p.seek(p.idx + 1)
}

func (p *parser) ParseProgram() *Program {
	program := &Program{Source: p.source}

	for p.curToken.Type != tokenEOF {
		program.Statements = p.parseStatementInto(program.Statements)
		p.nextToken()
	}

	program.span = Span{Start: 0, End: len(p.source)}
	return program
}

// parseStatementInto parses one statement starting at curToken and appends
// it to stmts. On failure it records an ErrorExpr placeholder and skips to
// the end of the broken statement.
func (p *parser) parseStatementInto(stmts []Statement) []Statement {
	start := p.idx
	before := len(p.errors)
	stmt := p.parseStatement()
	if stmt != nil {
		return append(stmts, stmt)
	}

	if len(p.errors) == before {
		p.errorUnexpected(p.curToken)
	}
	message := p.errors[before].Message
	p.synchronize(start)
	span := p.tokens[start].Span.Join(p.curToken.Span)
	placeholder := &ErrorExpr{Message: message, span: span}
	return append(stmts, &ExprStmt{Expr: placeholder, span: span})
}

// synchronize moves the parser so that the following nextToken lands on
// the first token after the broken statement: just past a top-level `;`,
// on a closing `}` belonging to an enclosing block, or on a keyword that
// starts a new statement.
func (p *parser) synchronize(start int) {
	i := p.errIdx
	if i < start {
		i = start
	}
	depth := 0
	for ; p.tokens[i].Type != tokenEOF; i++ {
		switch p.tokens[i].Type {
		case tokenLBrace:
			depth++
			continue
		case tokenRBrace:
			if depth > 0 {
				depth--
				continue
			}
			if i == start {
				p.seek(i)
			} else {
				p.seek(i - 1)
			}
			return
		case tokenSemicolon:
			if depth == 0 {
				p.seek(i)
				return
			}
		}
		if depth == 0 && i > start && statementKeywords[p.tokens[i].Type] {
			p.seek(i - 1)
			return
		}
	}
	if i > start {
		p.seek(i - 1)
		return
	}
	p.seek(i)
}

var statementKeywords = map[TokenType]bool{
	tokenLet:    true,
	tokenFn:     true,
	tokenIf:     true,
	tokenWhile:  true,
	tokenFor:    true,
	tokenReturn: true,
	tokenPrint:  true,
}

func (p *parser) parseStatement() Statement {
	switch p.curToken.Type {
	case tokenLet:
		return p.parseLetStatement()
	case tokenFn:
		return p.parseFnStatement()
	case tokenIf:
		return p.parseIfStatement()
	case tokenWhile:
		return p.parseWhileStatement()
	case tokenReturn:
		return p.parseReturnStatement()
	case tokenPrint:
		return p.parsePrintStatement()
	case tokenLBrace:
		return p.parseBlock()
	case tokenFor:
		p.addParseError(p.idx, p.curToken.Span, "`for` loops are not supported, use `while`")
		return nil
	default:
		return p.parseExpressionOrAssignStatement()
	}
}

func (p *parser) parseLetStatement() Statement {
	letSpan := p.curToken.Span
	if !p.expectPeek(tokenIdent) {
		return nil
	}
	name := &Identifier{Name: p.curToken.Literal, span: p.curToken.Span}
	if !p.expectPeek(tokenAssign) {
		return nil
	}
	assignSpan := p.curToken.Span
	p.nextToken()
	value := p.parseExpression(lowestPrec)
	if value == nil {
		return nil
	}
	if !p.expectPeek(tokenSemicolon) {
		return nil
	}
	return &LetStmt{
		Name:       name,
		Value:      value,
		LetSpan:    letSpan,
		AssignSpan: assignSpan,
		SemiSpan:   p.curToken.Span,
		span:       letSpan.Join(p.curToken.Span),
	}
}

func (p *parser) parseFnStatement() Statement {
	fnSpan := p.curToken.Span
	if !p.expectPeek(tokenIdent) {
		return nil
	}
	name := &Identifier{Name: p.curToken.Literal, span: p.curToken.Span}

	if !p.expectPeek(tokenLParen) {
		return nil
	}
	lparen := p.curToken.Span

	params := []*Identifier{}
	seen := make(map[string]bool)
	if p.peekToken.Type == tokenRParen {
		p.nextToken()
	} else {
		for {
			if !p.expectPeek(tokenIdent) {
				return nil
			}
			param := &Identifier{Name: p.curToken.Literal, span: p.curToken.Span}
			if seen[param.Name] {
				p.addParseError(p.idx, param.span, "duplicate parameter `"+param.Name+"`")
				return nil
			}
			seen[param.Name] = true
			params = append(params, param)
			if p.peekToken.Type != tokenComma {
				break
			}
			p.nextToken()
		}
		if !p.expectPeek(tokenRParen) {
			return nil
		}
	}
	rparen := p.curToken.Span

	if !p.expectPeek(tokenLBrace) {
		return nil
	}
	body := p.parseBlock()

	return &FnStmt{
		Name:   name,
		Params: params,
		Body:   body,
		FnSpan: fnSpan,
		LParen: lparen,
		RParen: rparen,
		span:   fnSpan.Join(body.span),
	}
}

func (p *parser) parseIfStatement() Statement {
	ifSpan := p.curToken.Span
	p.nextToken()
	condition := p.parseExpression(lowestPrec)
	if condition == nil {
		return nil
	}
	if !p.expectPeek(tokenLBrace) {
		return nil
	}
	consequent := p.parseBlock()
	stmt := &IfStmt{
		Condition:  condition,
		Consequent: consequent,
		IfSpan:     ifSpan,
		span:       ifSpan.Join(consequent.span),
	}

	if p.peekToken.Type != tokenElse {
		return stmt
	}
	p.nextToken()
	stmt.ElseSpan = p.curToken.Span

	if p.peekToken.Type == tokenIf {
		p.nextToken()
		alternate := p.parseIfStatement()
		if alternate == nil {
			return nil
		}
		stmt.Alternate = alternate
	} else {
		if !p.expectPeekLabel(tokenLBrace, "'{' or 'if'") {
			return nil
		}
		stmt.Alternate = p.parseBlock()
	}
	stmt.span = ifSpan.Join(stmt.Alternate.Span())
	return stmt
}

func (p *parser) parseWhileStatement() Statement {
	whileSpan := p.curToken.Span
	p.nextToken()
	condition := p.parseExpression(lowestPrec)
	if condition == nil {
		return nil
	}
	if !p.expectPeek(tokenLBrace) {
		return nil
	}
	body := p.parseBlock()
	return &WhileStmt{
		Condition: condition,
		Body:      body,
		WhileSpan: whileSpan,
		span:      whileSpan.Join(body.span),
	}
}

func (p *parser) parseReturnStatement() Statement {
	returnSpan := p.curToken.Span
	p.nextToken()
	value := p.parseExpression(lowestPrec)
	if value == nil {
		return nil
	}
	if !p.expectPeek(tokenSemicolon) {
		return nil
	}
	return &ReturnStmt{
		Value:      value,
		ReturnSpan: returnSpan,
		SemiSpan:   p.curToken.Span,
		span:       returnSpan.Join(p.curToken.Span),
	}
}

func (p *parser) parsePrintStatement() Statement {
	printSpan := p.curToken.Span
	if !p.expectPeek(tokenLParen) {
		return nil
	}
	lparen := p.curToken.Span
	p.nextToken()
	value := p.parseExpression(lowestPrec)
	if value == nil {
		return nil
	}
	if !p.expectPeek(tokenRParen) {
		return nil
	}
	rparen := p.curToken.Span
	if !p.expectPeek(tokenSemicolon) {
		return nil
	}
	return &PrintStmt{
		Value:     value,
		PrintSpan: printSpan,
		LParen:    lparen,
		RParen:    rparen,
		SemiSpan:  p.curToken.Span,
		span:      printSpan.Join(p.curToken.Span),
	}
}

func (p *parser) parseExpressionOrAssignStatement() Statement {
	expr := p.parseExpression(lowestPrec)
	if expr == nil {
		return nil
	}

	if isAssignOperator(p.peekToken.Type) {
		if !isAssignable(expr) {
			p.addParseError(p.idx, expr.Span(), "cannot assign to `"+expr.String()+"`")
			return nil
		}
		p.nextToken()
		op := p.curToken
		p.nextToken()
		value := p.parseExpression(lowestPrec)
		if value == nil {
			return nil
		}
		if !p.expectPeek(tokenSemicolon) {
			return nil
		}
		return &AssignStmt{
			Target:   expr,
			Operator: op.Type,
			Value:    value,
			OpSpan:   op.Span,
			SemiSpan: p.curToken.Span,
			span:     expr.Span().Join(p.curToken.Span),
		}
	}

	if !p.expectPeek(tokenSemicolon) {
		return nil
	}
	return &ExprStmt{Expr: expr, SemiSpan: p.curToken.Span, span: expr.Span().Join(p.curToken.Span)}
}

// parseBlock parses `{ ... }` with curToken on the opening brace and leaves
// curToken on the closing brace. A block missing its brace at end of input
// is reported and returned as far as it was read.
func (p *parser) parseBlock() *BlockStmt {
	block := &BlockStmt{LBrace: p.curToken.Span}
	p.nextToken()

	for p.curToken.Type != tokenRBrace && p.curToken.Type != tokenEOF {
		block.Statements = p.parseStatementInto(block.Statements)
		p.nextToken()
	}

	if p.curToken.Type != tokenRBrace {
		p.errorExpected(p.idx, p.curToken, "'}'")
	}
	block.RBrace = p.curToken.Span
	block.span = block.LBrace.Join(p.curToken.Span)
	return block
}

func (p *parser) expectPeek(tt TokenType) bool {
	return p.expectPeekLabel(tt, tokenLabel(tt))
}

func (p *parser) expectPeekLabel(tt TokenType, label string) bool {
	if p.peekToken.Type == tt {
		p.nextToken()
		return true
	}
	p.errorExpected(p.idx+1, p.peekToken, label)
	return false
}
