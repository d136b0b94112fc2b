package pseudojson

import (
	"fmt"
	"strings"
	"unicode"
)

// TokenKind identifies the lexical class of a token.
type TokenKind int

const (
	Undefined TokenKind = iota
	EOF
	LeftCurlyBracket
	RightCurlyBracket
	LeftParenthesis
	RightParenthesis
	LeftSquareBracket
	RightSquareBracket
	Comma
	Colon
	Equals
	DocLine
	Identifier
	Raw
)

var tokenNames = map[TokenKind]string{
	Undefined:          "undefined",
	EOF:                "end of input",
	LeftCurlyBracket:   "'{'",
	RightCurlyBracket:  "'}'",
	LeftParenthesis:    "'('",
	RightParenthesis:   "')'",
	LeftSquareBracket:  "'['",
	RightSquareBracket: "']'",
	Comma:              "','",
	Colon:              "':'",
	Equals:             "'='",
	DocLine:            "doc comment",
	Identifier:         "identifier",
	Raw:                "literal",
}

func (k TokenKind) String() string {
	if name, ok := tokenNames[k]; ok {
		return name
	}
	return fmt.Sprintf("TokenKind(%d)", int(k))
}

// Position is a 1-based line and rune column in the input.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Token is a lexeme together with where it starts.
type Token struct {
	Kind    TokenKind
	Content string
	Pos     Position
}

func (tok Token) String() string {
	if tok.Content == "" {
		return tok.Kind.String()
	}
	return fmt.Sprintf("%s %q", tok.Kind, tok.Content)
}

var literals = map[rune]TokenKind{
	'{': LeftCurlyBracket,
	'}': RightCurlyBracket,
	'(': LeftParenthesis,
	')': RightParenthesis,
	'[': LeftSquareBracket,
	']': RightSquareBracket,
	',': Comma,
	':': Colon,
	'=': Equals,
}

// Tokenizer splits a definition body into tokens. It works on runes so that
// columns stay correct when doc comments carry non-ASCII punctuation.
type Tokenizer struct {
	content []rune
	index   int
	line    int
	column  int
}

// NewTokenizer creates a tokenizer over content.
func NewTokenizer(content string) *Tokenizer {
	return &Tokenizer{
		content: []rune(content),
		line:    1,
		column:  1,
	}
}

func (t *Tokenizer) atEOF() bool {
	return t.index >= len(t.content)
}

func (t *Tokenizer) current() rune {
	return t.content[t.index]
}

func (t *Tokenizer) position() Position {
	return Position{Line: t.line, Column: t.column}
}

func (t *Tokenizer) advance() rune {
	r := t.content[t.index]
	t.index++
	if r == '\n' {
		t.line++
		t.column = 1
	} else {
		t.column++
	}
	return r
}

func (t *Tokenizer) eatWhitespaces() {
	for !t.atEOF() && unicode.IsSpace(t.current()) {
		t.advance()
	}
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || r == '.' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// NextToken returns the next token. Unknown characters produce an error and
// are skipped.
func (t *Tokenizer) NextToken() (Token, error) {
	t.eatWhitespaces()

	pos := t.position()
	if t.atEOF() {
		return Token{Kind: EOF, Pos: pos}, nil
	}

	r := t.current()

	if kind, ok := literals[r]; ok {
		t.advance()
		return Token{Kind: kind, Content: string(r), Pos: pos}, nil
	}

	if r == '#' {
		t.advance()
		var sb strings.Builder
		for !t.atEOF() && t.current() != '\n' {
			sb.WriteRune(t.advance())
		}
		return Token{Kind: DocLine, Content: strings.TrimSpace(sb.String()), Pos: pos}, nil
	}

	if isIdentStart(r) {
		var sb strings.Builder
		for !t.atEOF() && isIdentPart(t.current()) {
			sb.WriteRune(t.advance())
		}
		return Token{Kind: Identifier, Content: sb.String(), Pos: pos}, nil
	}

	t.advance()
	return Token{Kind: Undefined, Content: string(r), Pos: pos}, fmt.Errorf("unrecognized char %q", r)
}

// RawUntil consumes everything up to, but not including, the first rune in
// stops or the end of the line, and returns it trimmed as a Raw token.
func (t *Tokenizer) RawUntil(stops string) Token {
	t.eatInlineSpaces()
	pos := t.position()

	var sb strings.Builder
	for !t.atEOF() && !strings.ContainsRune(stops, t.current()) && t.current() != '\n' {
		sb.WriteRune(t.advance())
	}
	return Token{Kind: Raw, Content: strings.TrimSpace(sb.String()), Pos: pos}
}

func (t *Tokenizer) eatInlineSpaces() {
	for !t.atEOF() && (t.current() == ' ' || t.current() == '\t') {
		t.advance()
	}
}
