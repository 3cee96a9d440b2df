package vea

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

type lexer struct {
	input string

	offset int
	width  int

	ch rune
}

// Lex converts source into tokens. It never stops early: invalid input is
// reported as error tokens (and matching diagnostics) and scanning resumes
// after them. The final token is always EOF.
func Lex(source string) ([]Token, []*Diagnostic) {
	l := newLexer(source)
	var (
		tokens []Token
		diags  []*Diagnostic
	)
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.IsError() {
			diags = append(diags, newDiagnostic(StageLex, source, tok.Span, lexErrorMessage(source, tok)))
		}
		if tok.Type == tokenEOF {
			return tokens, diags
		}
	}
}

func newLexer(input string) *lexer {
	l := &lexer{input: input}
	l.readRune()
	return l
}

func (l *lexer) readRune() {
	if l.offset >= len(l.input) {
		l.offset = len(l.input)
		l.width = 0
		l.ch = 0
		return
	}

	r, w := utf8.DecodeRuneInString(l.input[l.offset:])
	l.width = w
	l.offset += w
	l.ch = r
}

func (l *lexer) peekRune() rune {
	if l.offset >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.offset:])
	return r
}

func (l *lexer) atEOF() bool { return l.width == 0 }

func (l *lexer) currentOffset() int { return l.offset - l.width }

func (l *lexer) NextToken() Token {
	l.skipWhitespaceAndComments()

	start := l.currentOffset()
	if l.atEOF() {
		return Token{Type: tokenEOF, Span: Span{Start: start, End: start}}
	}

	switch l.ch {
	case '+':
		return l.withAssign(start, tokenPlus, tokenPlusAssign)
	case '-':
		return l.withAssign(start, tokenMinus, tokenMinusAssign)
	case '*':
		return l.withAssign(start, tokenAsterisk, tokenAsteriskAssign)
	case '/':
		return l.withAssign(start, tokenSlash, tokenSlashAssign)
	case '%':
		return l.withAssign(start, tokenPercent, tokenPercentAssign)
	case '&':
		return l.withAssign(start, tokenAmp, tokenAmpAssign)
	case '|':
		return l.withAssign(start, tokenPipe, tokenPipeAssign)
	case '^':
		return l.withAssign(start, tokenCaret, tokenCaretAssign)
	case '=':
		return l.withAssign(start, tokenAssign, tokenEQ)
	case '!':
		return l.withAssign(start, tokenBang, tokenNotEQ)
	case '<':
		if l.peekRune() == '<' {
			l.readRune()
			return l.withAssign(start, tokenShl, tokenShlAssign)
		}
		return l.withAssign(start, tokenLT, tokenLTE)
	case '>':
		if l.peekRune() == '>' {
			l.readRune()
			return l.withAssign(start, tokenShr, tokenShrAssign)
		}
		return l.withAssign(start, tokenGT, tokenGTE)
	case '~':
		return l.single(start, tokenTilde)
	case '?':
		return l.single(start, tokenQuestion)
	case ',':
		return l.single(start, tokenComma)
	case ';':
		return l.single(start, tokenSemicolon)
	case ':':
		return l.single(start, tokenColon)
	case '.':
		return l.single(start, tokenDot)
	case '(':
		return l.single(start, tokenLParen)
	case ')':
		return l.single(start, tokenRParen)
	case '{':
		return l.single(start, tokenLBrace)
	case '}':
		return l.single(start, tokenRBrace)
	case '[':
		return l.single(start, tokenLBracket)
	case ']':
		return l.single(start, tokenRBracket)
	case '\'':
		return l.readString(start)
	}

	switch {
	case isDigit(l.ch):
		return l.readNumber(start)
	case isIdentifierStart(l.ch):
		ident := l.readIdentifier()
		tt := lookupIdent(ident)
		return Token{Type: tt, Literal: ident, Span: Span{Start: start, End: l.currentOffset()}}
	default:
		literal := string(l.ch)
		l.readRune()
		return Token{Type: tokenError, Literal: literal, Span: Span{Start: start, End: l.currentOffset()}, Err: LexUnexpectedChar}
	}
}

// single consumes the current rune as a one-character token.
func (l *lexer) single(start int, tt TokenType) Token {
	l.readRune()
	end := l.currentOffset()
	return Token{Type: tt, Literal: l.input[start:end], Span: Span{Start: start, End: end}}
}

// withAssign consumes the current rune and, when it is followed by '=',
// the '=' as well, yielding the longer token type.
func (l *lexer) withAssign(start int, plain, withEq TokenType) Token {
	tt := plain
	if l.peekRune() == '=' {
		l.readRune()
		tt = withEq
	}
	return l.single(start, tt)
}

func (l *lexer) skipWhitespaceAndComments() {
	for {
		for !l.atEOF() && unicode.IsSpace(l.ch) {
			l.readRune()
		}
		if l.ch == '/' && l.peekRune() == '/' {
			for !l.atEOF() && l.ch != '\n' {
				l.readRune()
			}
			continue
		}
		return
	}
}

func (l *lexer) readIdentifier() string {
	start := l.currentOffset()
	for !l.atEOF() && isIdentifierRune(l.ch) {
		l.readRune()
	}
	return l.input[start:l.currentOffset()]
}

func (l *lexer) readNumber(start int) Token {
	for !l.atEOF() && isDigit(l.ch) {
		l.readRune()
	}
	span := Span{Start: start, End: l.currentOffset()}
	literal := l.input[span.Start:span.End]
	if _, err := strconv.ParseInt(literal, 10, 64); err != nil {
		return Token{Type: tokenError, Literal: literal, Span: span, Err: LexIntegerOverflow}
	}
	return Token{Type: tokenInt, Literal: literal, Span: span}
}

func (l *lexer) readString(start int) Token {
	var out strings.Builder
	l.readRune()
	for {
		if l.atEOF() {
			span := Span{Start: start, End: l.currentOffset()}
			return Token{Type: tokenError, Literal: l.input[span.Start:span.End], Span: span, Err: LexUnterminatedString}
		}
		switch l.ch {
		case '\'':
			l.readRune()
			return Token{Type: tokenString, Literal: out.String(), Span: Span{Start: start, End: l.currentOffset()}}
		case '\\':
			l.readRune()
			switch l.ch {
			case 'n':
				out.WriteByte('\n')
			case 't':
				out.WriteByte('\t')
			case '\'', '\\':
				out.WriteRune(l.ch)
			case 0:
				continue
			default:
				out.WriteByte('\\')
				out.WriteRune(l.ch)
			}
			l.readRune()
		default:
			out.WriteRune(l.ch)
			l.readRune()
		}
	}
}

func lexErrorMessage(source string, tok Token) string {
	switch tok.Err {
	case LexUnexpectedChar:
		return fmt.Sprintf("unexpected character %q", tok.Span.Text(source))
	case LexUnterminatedString:
		return "unterminated string literal"
	case LexIntegerOverflow:
		return fmt.Sprintf("integer literal %s does not fit in 64 bits", tok.Literal)
	default:
		return tok.Err.String()
	}
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isIdentifierStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isIdentifierRune(r rune) bool {
	return isIdentifierStart(r) || isDigit(r)
}
