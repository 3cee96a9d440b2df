package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/textproto"
	"os"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"

	"github.com/vea-lang/vea/vea"
)

type lspInboundMessage struct {
	JSONRPC string           `json:"jsonrpc"`
	ID      *json.RawMessage `json:"id,omitempty"`
	Method  string           `json:"method,omitempty"`
	Params  json.RawMessage  `json:"params,omitempty"`
}

type lspResponseError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type lspOutboundMessage struct {
	JSONRPC string            `json:"jsonrpc"`
	ID      *json.RawMessage  `json:"id,omitempty"`
	Method  string            `json:"method,omitempty"`
	Params  any               `json:"params,omitempty"`
	Result  any               `json:"result,omitempty"`
	Error   *lspResponseError `json:"error,omitempty"`
}

type lspTextDocument struct {
	URI  string `json:"uri"`
	Text string `json:"text,omitempty"`
}

type lspDidOpenParams struct {
	TextDocument lspTextDocument `json:"textDocument"`
}

type lspDidChangeParams struct {
	TextDocument   lspTextDocument `json:"textDocument"`
	ContentChanges []struct {
		Text string `json:"text"`
	} `json:"contentChanges"`
}

type lspTextDocumentPositionParams struct {
	TextDocument lspTextDocument `json:"textDocument"`
	Position     struct {
		Line      int `json:"line"`
		Character int `json:"character"`
	} `json:"position"`
}

// lspServer publishes lex and parse diagnostics for open documents and
// answers completion, hover and formatting requests. Documents are kept
// whole; only full-text sync is offered.
type lspServer struct {
	reader *bufio.Reader
	writer *bufio.Writer
	docs   map[string]string
}

func runLSP() error {
	server := &lspServer{
		reader: bufio.NewReader(os.Stdin),
		writer: bufio.NewWriter(os.Stdout),
		docs:   make(map[string]string),
	}
	return server.serve()
}

func (s *lspServer) serve() error {
	for {
		payload, err := s.readPayload()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		var incoming lspInboundMessage
		if err := json.Unmarshal(payload, &incoming); err != nil {
			continue
		}

		for _, msg := range s.handleMessage(incoming) {
			if err := s.writePayload(msg); err != nil {
				return err
			}
		}

		if incoming.Method == "exit" {
			return nil
		}
	}
}

func (s *lspServer) handleMessage(incoming lspInboundMessage) []lspOutboundMessage {
	switch incoming.Method {
	case "initialize":
		return reply(incoming, map[string]any{
			"capabilities": map[string]any{
				"textDocumentSync":           1,
				"hoverProvider":              true,
				"documentFormattingProvider": true,
				"completionProvider": map[string]any{
					"resolveProvider": false,
				},
			},
		})
	case "initialized", "exit":
		return nil
	case "shutdown":
		return reply(incoming, nil)
	case "textDocument/didOpen":
		var params lspDidOpenParams
		if err := json.Unmarshal(incoming.Params, &params); err != nil {
			return nil
		}
		s.docs[params.TextDocument.URI] = params.TextDocument.Text
		return []lspOutboundMessage{publishDiagnostics(params.TextDocument.URI, params.TextDocument.Text)}
	case "textDocument/didChange":
		var params lspDidChangeParams
		if err := json.Unmarshal(incoming.Params, &params); err != nil || len(params.ContentChanges) == 0 {
			return nil
		}
		latest := params.ContentChanges[len(params.ContentChanges)-1].Text
		s.docs[params.TextDocument.URI] = latest
		return []lspOutboundMessage{publishDiagnostics(params.TextDocument.URI, latest)}
	case "textDocument/didClose":
		var params lspDidOpenParams
		if err := json.Unmarshal(incoming.Params, &params); err != nil {
			return nil
		}
		delete(s.docs, params.TextDocument.URI)
		return []lspOutboundMessage{{
			JSONRPC: "2.0",
			Method:  "textDocument/publishDiagnostics",
			Params:  map[string]any{"uri": params.TextDocument.URI, "diagnostics": []map[string]any{}},
		}}
	case "textDocument/completion":
		var params lspTextDocumentPositionParams
		_ = json.Unmarshal(incoming.Params, &params)
		return reply(incoming, map[string]any{
			"isIncomplete": false,
			"items":        completionItems(s.docs[params.TextDocument.URI]),
		})
	case "textDocument/hover":
		var params lspTextDocumentPositionParams
		if err := json.Unmarshal(incoming.Params, &params); err != nil {
			return replyError(incoming, -32602, "invalid hover params")
		}
		source := s.docs[params.TextDocument.URI]
		word := wordAtPosition(source, params.Position.Line, params.Position.Character)
		if word == "" {
			return reply(incoming, nil)
		}
		return reply(incoming, map[string]any{
			"contents": map[string]any{
				"kind":  "markdown",
				"value": hoverText(source, word),
			},
		})
	case "textDocument/formatting":
		var params lspTextDocumentPositionParams
		if err := json.Unmarshal(incoming.Params, &params); err != nil {
			return replyError(incoming, -32602, "invalid formatting params")
		}
		source, ok := s.docs[params.TextDocument.URI]
		if !ok {
			return reply(incoming, []any{})
		}
		formatted, err := formatVeaSource(source)
		if err != nil || formatted == source {
			return reply(incoming, []any{})
		}
		end := lspPosition(source, len(source))
		return reply(incoming, []map[string]any{{
			"range": map[string]any{
				"start": map[string]any{"line": 0, "character": 0},
				"end":   end,
			},
			"newText": formatted,
		}})
	default:
		return replyError(incoming, -32601, "method not found")
	}
}

func reply(incoming lspInboundMessage, result any) []lspOutboundMessage {
	if incoming.ID == nil {
		return nil
	}
	return []lspOutboundMessage{{JSONRPC: "2.0", ID: incoming.ID, Result: result}}
}

func replyError(incoming lspInboundMessage, code int, message string) []lspOutboundMessage {
	if incoming.ID == nil {
		return nil
	}
	return []lspOutboundMessage{{
		JSONRPC: "2.0",
		ID:      incoming.ID,
		Error:   &lspResponseError{Code: code, Message: message},
	}}
}

func publishDiagnostics(uri, source string) lspOutboundMessage {
	return lspOutboundMessage{
		JSONRPC: "2.0",
		Method:  "textDocument/publishDiagnostics",
		Params: map[string]any{
			"uri":         uri,
			"diagnostics": diagnosticsForSource(source),
		},
	}
}

// diagnosticsForSource reports lex and parse errors together; the parser
// skips the lexer's error tokens, so both sets are meaningful at once.
func diagnosticsForSource(source string) []map[string]any {
	tokens, lexDiags := vea.Lex(source)
	_, parseDiags := vea.Parse(source, tokens)

	out := make([]map[string]any, 0, len(lexDiags)+len(parseDiags))
	for _, d := range append(lexDiags, parseDiags...) {
		end := d.Span.End
		if end <= d.Span.Start {
			end = d.Span.Start + 1
		}
		out = append(out, map[string]any{
			"range": map[string]any{
				"start": lspPosition(source, d.Span.Start),
				"end":   lspPosition(source, end),
			},
			"severity": 1,
			"source":   "vea-" + string(d.Stage),
			"message":  d.Message,
		})
	}
	return out
}

// lspPosition converts a byte offset to a zero-based line and UTF-16
// character offset.
func lspPosition(source string, offset int) map[string]any {
	if offset > len(source) {
		offset = len(source)
	}
	line, lineStart := 0, 0
	for i := 0; i < offset; i++ {
		if source[i] == '\n' {
			line++
			lineStart = i + 1
		}
	}
	character := 0
	for _, r := range source[lineStart:offset] {
		character += utf16.RuneLen(r)
	}
	return map[string]any{"line": line, "character": character}
}

// declarations collects the names a document binds with `let` or `fn`,
// mapped to a short description.
func declarations(source string) map[string]string {
	out := make(map[string]string)
	tokens, _ := vea.Lex(source)
	program, _ := vea.Parse(source, tokens)
	var walk func(stmts []vea.Statement)
	walk = func(stmts []vea.Statement) {
		for _, stmt := range stmts {
			switch s := stmt.(type) {
			case *vea.LetStmt:
				out[s.Name.Name] = "let " + s.Name.Name
				if lit, ok := s.Value.(*vea.StructLiteral); ok {
					walk(lit.Fields)
				}
			case *vea.FnStmt:
				params := make([]string, len(s.Params))
				for i, p := range s.Params {
					params[i] = p.Name
					out[p.Name] = "parameter of " + s.Name.Name
				}
				out[s.Name.Name] = fmt.Sprintf("fn %s(%s)", s.Name.Name, strings.Join(params, ", "))
				walk(s.Body.Statements)
			case *vea.IfStmt:
				walk(s.Consequent.Statements)
				if s.Alternate != nil {
					walk([]vea.Statement{s.Alternate})
				}
			case *vea.WhileStmt:
				walk(s.Body.Statements)
			case *vea.BlockStmt:
				walk(s.Statements)
			}
		}
	}
	walk(program.Statements)
	return out
}

func completionItems(source string) []map[string]any {
	keywordSet := make(map[string]struct{})
	for _, keyword := range vea.Keywords() {
		keywordSet[keyword] = struct{}{}
	}
	decls := declarations(source)

	labels := vea.Keywords()
	for name := range decls {
		if _, ok := keywordSet[name]; !ok {
			labels = append(labels, name)
		}
	}
	sort.Strings(labels)

	items := make([]map[string]any, 0, len(labels))
	for _, label := range labels {
		kind := 6 // Variable
		detail := decls[label]
		if _, ok := keywordSet[label]; ok {
			kind = 14 // Keyword
			detail = "keyword"
		} else if strings.HasPrefix(detail, "fn ") {
			kind = 3 // Function
		}
		items = append(items, map[string]any{
			"label":  label,
			"kind":   kind,
			"detail": detail,
		})
	}
	return items
}

func hoverText(source, word string) string {
	for _, keyword := range vea.Keywords() {
		if keyword == word {
			return fmt.Sprintf("`%s`\n\nvea keyword", word)
		}
	}
	if decl, ok := declarations(source)[word]; ok {
		return fmt.Sprintf("```vea\n%s\n```", decl)
	}
	return fmt.Sprintf("`%s`\n\nvea symbol", word)
}

// wordAtPosition returns the identifier under a zero-based line and
// UTF-16 character offset.
func wordAtPosition(source string, line, character int) string {
	lines := strings.Split(source, "\n")
	if line < 0 || line >= len(lines) {
		return ""
	}

	runes := []rune(lines[line])
	if len(runes) == 0 {
		return ""
	}

	cursor, units := 0, 0
	for cursor < len(runes) && units < character {
		units += utf16.RuneLen(runes[cursor])
		cursor++
	}
	if cursor == len(runes) {
		cursor--
	}
	if !isWordRune(runes[cursor]) {
		if cursor > 0 && isWordRune(runes[cursor-1]) {
			cursor--
		} else {
			return ""
		}
	}

	start := cursor
	for start > 0 && isWordRune(runes[start-1]) {
		start--
	}
	end := cursor
	for end < len(runes) && isWordRune(runes[end]) {
		end++
	}
	return string(runes[start:end])
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

// readPayload reads one base-protocol message: MIME-style headers, a
// blank line, then Content-Length bytes of JSON.
func (s *lspServer) readPayload() ([]byte, error) {
	header, err := textproto.NewReader(s.reader).ReadMIMEHeader()
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, io.EOF
		}
		return nil, err
	}
	raw := header.Get("Content-Length")
	if raw == "" {
		return nil, errors.New("missing Content-Length header")
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return nil, fmt.Errorf("invalid Content-Length %q", raw)
	}

	payload := make([]byte, n)
	if _, err := io.ReadFull(s.reader, payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func (s *lspServer) writePayload(msg lspOutboundMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.writer, "Content-Length: %d\r\n\r\n", len(data)); err != nil {
		return err
	}
	if _, err := s.writer.Write(data); err != nil {
		return err
	}
	return s.writer.Flush()
}
