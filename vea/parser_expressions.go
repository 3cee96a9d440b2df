package vea

import (
	"fmt"
	"strconv"
)

func (p *parser) parseExpression(precedence int) Expression {
	prefix := p.prefixFns[p.curToken.Type]
	if prefix == nil {
		p.errorUnexpected(p.curToken)
		return nil
	}

	left := prefix()
	if left == nil {
		return nil
	}

	for p.peekToken.Type != tokenEOF && precedence < p.peekPrecedence() {
		infix := p.infixFns[p.peekToken.Type]
		if infix == nil {
			return left
		}
		p.nextToken()
		left = infix(left)
		if left == nil {
			return nil
		}
	}

	return left
}

func (p *parser) parseIdentifier() Expression {
	return &Identifier{Name: p.curToken.Literal, span: p.curToken.Span}
}

func (p *parser) parseIntegerLiteral() Expression {
	value, err := strconv.ParseInt(p.curToken.Literal, 10, 64)
	if err != nil {
		p.addParseError(p.idx, p.curToken.Span, "invalid integer literal")
		return nil
	}
	return &IntegerLiteral{Value: value, span: p.curToken.Span}
}

func (p *parser) parseStringLiteral() Expression {
	return &StringLiteral{Value: p.curToken.Literal, span: p.curToken.Span}
}

func (p *parser) parseBooleanLiteral() Expression {
	return &BoolLiteral{Value: p.curToken.Type == tokenTrue, span: p.curToken.Span}
}

func (p *parser) parseNoneLiteral() Expression {
	return &NoneLiteral{span: p.curToken.Span}
}

func (p *parser) parseGroupedExpression() Expression {
	lparen := p.curToken.Span
	p.nextToken()
	inner := p.parseExpression(lowestPrec)
	if inner == nil {
		return nil
	}
	if !p.expectPeek(tokenRParen) {
		return nil
	}
	return &GroupExpr{Inner: inner, LParen: lparen, RParen: p.curToken.Span, span: lparen.Join(p.curToken.Span)}
}

func (p *parser) parsePrefixExpression() Expression {
	op := p.curToken
	p.nextToken()
	right := p.parseExpression(precPrefix)
	if right == nil {
		return nil
	}
	return &UnaryExpr{Operator: op.Type, Right: right, OpSpan: op.Span, span: op.Span.Join(right.Span())}
}

func (p *parser) parseInfixExpression(left Expression) Expression {
	op := p.curToken
	precedence := p.curPrecedence()
	p.nextToken()
	right := p.parseExpression(precedence)
	if right == nil {
		return nil
	}
	return &BinaryExpr{
		Left:     left,
		Operator: op.Type,
		Right:    right,
		OpSpan:   op.Span,
		span:     left.Span().Join(right.Span()),
	}
}

func (p *parser) parseCallExpression(callee Expression) Expression {
	lparen := p.curToken.Span
	args, ok := p.parseExpressionList(tokenRParen)
	if !ok {
		return nil
	}
	return &CallExpr{
		Callee: callee,
		Args:   args,
		LParen: lparen,
		RParen: p.curToken.Span,
		span:   callee.Span().Join(p.curToken.Span),
	}
}

func (p *parser) parseMemberExpression(object Expression) Expression {
	dot := p.curToken.Span
	if !p.expectPeekLabel(tokenIdent, "field name") {
		return nil
	}
	property := &Identifier{Name: p.curToken.Literal, span: p.curToken.Span}
	return &MemberExpr{Object: object, Property: property, DotSpan: dot, span: object.Span().Join(property.span)}
}

func (p *parser) parseIndexExpression(object Expression) Expression {
	lbracket := p.curToken.Span
	p.nextToken()
	index := p.parseExpression(lowestPrec)
	if index == nil {
		return nil
	}
	if !p.expectPeek(tokenRBracket) {
		return nil
	}
	return &IndexExpr{
		Object:   object,
		Index:    index,
		LBracket: lbracket,
		RBracket: p.curToken.Span,
		span:     object.Span().Join(p.curToken.Span),
	}
}

func (p *parser) parseStructLiteral() Expression {
	structSpan := p.curToken.Span
	if !p.expectPeek(tokenLBrace) {
		return nil
	}
	body := p.parseBlock()
	for _, field := range body.Statements {
		switch f := field.(type) {
		case *LetStmt, *FnStmt:
			continue
		case *ExprStmt:
			if _, placeholder := f.Expr.(*ErrorExpr); placeholder {
				continue
			}
		}
		p.addParseError(p.idx, field.Span(), "struct entries must be `let` or `fn` declarations")
	}
	return &StructLiteral{
		Fields:     body.Statements,
		StructSpan: structSpan,
		LBrace:     body.LBrace,
		RBrace:     body.RBrace,
		span:       structSpan.Join(body.span),
	}
}

func (p *parser) parseSetLiteral() Expression {
	setSpan := p.curToken.Span
	if !p.expectPeek(tokenLBrace) {
		return nil
	}
	lbrace := p.curToken.Span
	elements, ok := p.parseExpressionList(tokenRBrace)
	if !ok {
		return nil
	}
	return &SetLiteral{
		Elements: elements,
		SetSpan:  setSpan,
		LBrace:   lbrace,
		RBrace:   p.curToken.Span,
		span:     setSpan.Join(p.curToken.Span),
	}
}

// parseExpressionList reads comma-separated expressions up to the closing
// token, with curToken on the opening delimiter. A trailing comma is allowed.
func (p *parser) parseExpressionList(end TokenType) ([]Expression, bool) {
	list := []Expression{}
	if p.peekToken.Type == end {
		p.nextToken()
		return list, true
	}

	for {
		p.nextToken()
		expr := p.parseExpression(lowestPrec)
		if expr == nil {
			return nil, false
		}
		list = append(list, expr)
		if p.peekToken.Type != tokenComma {
			break
		}
		p.nextToken()
		if p.peekToken.Type == end {
			break
		}
	}

	if !p.expectPeekLabel(end, fmt.Sprintf("',' or %s", tokenLabel(end))) {
		return nil, false
	}
	return list, true
}
