package vea

import "fmt"

func (p *parser) errorExpected(idx int, tok Token, expected string) {
	p.addParseError(idx, tok.Span, fmt.Sprintf("expected %s, got %s", expected, tokenLabel(tok.Type)))
}

func (p *parser) errorUnexpected(tok Token) {
	p.addParseError(p.idx, tok.Span, fmt.Sprintf("unexpected %s", tokenLabel(tok.Type)))
}

// addParseError records a diagnostic; idx is the index of the offending
// token, which is where recovery starts scanning.
func (p *parser) addParseError(idx int, span Span, msg string) {
	if idx >= len(p.tokens) {
		idx = len(p.tokens) - 1
	}
	p.errIdx = idx
	p.errors = append(p.errors, newDiagnostic(StageParse, p.source, span, msg))
}

func tokenLabel(tt TokenType) string {
	switch tt {
	case tokenError:
		return "invalid token"
	case tokenEOF:
		return "end of input"
	case tokenIdent:
		return "identifier"
	case tokenInt:
		return "integer"
	case tokenString:
		return "string"
	case tokenNone:
		return "'_'"
	case tokenLet, tokenIf, tokenElse, tokenWhile, tokenFor, tokenFn,
		tokenPrint, tokenReturn, tokenTrue, tokenFalse, tokenStruct, tokenSet:
		return "keyword '" + keywordText(tt) + "'"
	default:
		return fmt.Sprintf("'%s'", string(tt))
	}
}

func keywordText(tt TokenType) string {
	for text, kw := range keywords {
		if kw == tt {
			return text
		}
	}
	return string(tt)
}
