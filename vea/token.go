package vea

import (
	"fmt"
	"sort"
)

// TokenType identifies the lexical category of a token.
type TokenType string

const (
	tokenError TokenType = "ERROR"
	tokenEOF   TokenType = "EOF"

	tokenIdent  TokenType = "IDENT"
	tokenInt    TokenType = "INT"
	tokenString TokenType = "STRING"
	tokenNone   TokenType = "_"

	tokenAssign   TokenType = "="
	tokenPlus     TokenType = "+"
	tokenMinus    TokenType = "-"
	tokenAsterisk TokenType = "*"
	tokenSlash    TokenType = "/"
	tokenPercent  TokenType = "%"
	tokenAmp      TokenType = "&"
	tokenPipe     TokenType = "|"
	tokenCaret    TokenType = "^"
	tokenShl      TokenType = "<<"
	tokenShr      TokenType = ">>"
	tokenBang     TokenType = "!"
	tokenTilde    TokenType = "~"
	tokenQuestion TokenType = "?"

	tokenPlusAssign     TokenType = "+="
	tokenMinusAssign    TokenType = "-="
	tokenAsteriskAssign TokenType = "*="
	tokenSlashAssign    TokenType = "/="
	tokenPercentAssign  TokenType = "%="
	tokenAmpAssign      TokenType = "&="
	tokenPipeAssign     TokenType = "|="
	tokenCaretAssign    TokenType = "^="
	tokenShlAssign      TokenType = "<<="
	tokenShrAssign      TokenType = ">>="

	tokenEQ    TokenType = "=="
	tokenNotEQ TokenType = "!="
	tokenLT    TokenType = "<"
	tokenGT    TokenType = ">"
	tokenLTE   TokenType = "<="
	tokenGTE   TokenType = ">="

	tokenComma     TokenType = ","
	tokenSemicolon TokenType = ";"
	tokenColon     TokenType = ":"
	tokenDot       TokenType = "."
	tokenLParen    TokenType = "("
	tokenRParen    TokenType = ")"
	tokenLBrace    TokenType = "{"
	tokenRBrace    TokenType = "}"
	tokenLBracket  TokenType = "["
	tokenRBracket  TokenType = "]"

	tokenLet    TokenType = "LET"
	tokenIf     TokenType = "IF"
	tokenElse   TokenType = "ELSE"
	tokenWhile  TokenType = "WHILE"
	tokenFor    TokenType = "FOR"
	tokenFn     TokenType = "FN"
	tokenPrint  TokenType = "PRINT"
	tokenReturn TokenType = "RETURN"
	tokenTrue   TokenType = "TRUE"
	tokenFalse  TokenType = "FALSE"
	tokenStruct TokenType = "STRUCT"
	tokenSet    TokenType = "SET"
)

// LexErrorCode explains why the lexer produced an error token.
type LexErrorCode int

const (
	LexOK LexErrorCode = iota
	LexUnexpectedChar
	LexUnterminatedString
	LexIntegerOverflow
)

func (c LexErrorCode) String() string {
	switch c {
	case LexUnexpectedChar:
		return "unexpected character"
	case LexUnterminatedString:
		return "unterminated string"
	case LexIntegerOverflow:
		return "integer literal is too large"
	default:
		return "ok"
	}
}

// Token is a single lexeme. Literal holds the decoded text for identifiers,
// integers and strings, and the raw text otherwise.
type Token struct {
	Type    TokenType
	Literal string
	Span    Span
	Err     LexErrorCode
}

// String renders the token for token dumps.
func (t Token) String() string {
	switch t.Type {
	case tokenIdent, tokenInt:
		return fmt.Sprintf("%s(%s)", t.Type, t.Literal)
	case tokenString:
		return fmt.Sprintf("%s(%q)", t.Type, t.Literal)
	case tokenError:
		return fmt.Sprintf("%s(%s)", t.Type, t.Err)
	default:
		return string(t.Type)
	}
}

// IsError reports whether the token is an embedded lex error marker.
func (t Token) IsError() bool { return t.Type == tokenError }

var keywords = map[string]TokenType{
	"let":    tokenLet,
	"if":     tokenIf,
	"else":   tokenElse,
	"while":  tokenWhile,
	"for":    tokenFor,
	"fn":     tokenFn,
	"print":  tokenPrint,
	"return": tokenReturn,
	"true":   tokenTrue,
	"false":  tokenFalse,
	"struct": tokenStruct,
	"set":    tokenSet,
}

// Keywords lists the reserved words, sorted.
func Keywords() []string {
	out := make([]string, 0, len(keywords))
	for word := range keywords {
		out = append(out, word)
	}
	sort.Strings(out)
	return out
}

func lookupIdent(ident string) TokenType {
	if ident == "_" {
		return tokenNone
	}
	if tt, ok := keywords[ident]; ok {
		return tt
	}
	return tokenIdent
}
