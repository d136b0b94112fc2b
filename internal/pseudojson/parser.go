// Package pseudojson parses the comment-annotated, JSON-like struct bodies the
// v20 API reference uses to document definitions, e.g.
//
//	{
//	    # The Price of the bucket
//	    price : (PriceValue),
//	    buckets : (Array[OrderBookBucket]),
//	    type : (string, default=PRICE)
//	}
//
// into an ordered models.Struct.
package pseudojson

import (
	"strings"

	"github.com/xcono/oanda/internal/models"
)

const (
	keywordArray      = "Array"
	keywordDefault    = "default"
	keywordDeprecated = "deprecated"
	keywordRequired   = "required"
)

// Parser turns definition bodies into structs. The zero value is ready to use
// and safe for concurrent use; it holds no state between calls.
type Parser struct{}

// NewParser creates a new parser instance
func NewParser() *Parser {
	return &Parser{}
}

// Parse parses input with a fresh Parser.
func Parse(input string) (models.Struct, error) {
	return NewParser().Parse(input)
}

// Parse parses a single definition body. It either returns every
// non-deprecated field in source order or an error; never a partial struct.
func (p *Parser) Parse(input string) (models.Struct, error) {
	tp := &treeParser{
		lexer: NewTokenizer(input),
		input: input,
	}

	tree, err := tp.parseBody()
	if err != nil {
		return models.Struct{}, err
	}

	return build(tree, input)
}

// treeParser is the recursive-descent half: tokens in, parse tree out.
type treeParser struct {
	lexer         *Tokenizer
	input         string
	peekCache     Token
	peekCacheFull bool
}

func (p *treeParser) fail(kind error, rule string, tok Token, msg string) *ParseError {
	return &ParseError{
		Kind:    kind,
		Rule:    rule,
		Pos:     tok.Pos,
		Token:   tok.String(),
		Message: msg,
		Input:   p.input,
	}
}

func (p *treeParser) lex(rule string) (Token, error) {
	tok, err := p.lexer.NextToken()
	if err != nil {
		return tok, p.fail(ErrGrammar, rule, tok, err.Error())
	}
	return tok, nil
}

func (p *treeParser) nextToken(rule string) (Token, error) {
	if p.peekCacheFull {
		p.peekCacheFull = false
		return p.peekCache, nil
	}
	return p.lex(rule)
}

func (p *treeParser) peekToken(rule string) (Token, error) {
	if !p.peekCacheFull {
		tok, err := p.lex(rule)
		if err != nil {
			return tok, err
		}
		p.peekCache = tok
		p.peekCacheFull = true
	}
	return p.peekCache, nil
}

func (p *treeParser) acceptToken(rule string, expected TokenKind) (Token, error) {
	tok, err := p.nextToken(rule)
	if err != nil {
		return Token{}, err
	}
	if tok.Kind != expected {
		return Token{}, p.fail(ErrGrammar, rule, tok, "expected "+expected.String())
	}
	return tok, nil
}

func (p *treeParser) advanceIf(rule string, against TokenKind) (bool, error) {
	tok, err := p.peekToken(rule)
	if err != nil {
		return false, err
	}
	if tok.Kind != against {
		return false, nil
	}
	p.peekCacheFull = false
	return true, nil
}

// parseBody parses `{ field* } EOI` and returns the field productions
// followed by a single eoi node.
func (p *treeParser) parseBody() ([]node, error) {
	if _, err := p.acceptToken("body", LeftCurlyBracket); err != nil {
		return nil, err
	}

	var tree []node
	for {
		tok, err := p.peekToken("body")
		if err != nil {
			return nil, err
		}
		if tok.Kind == RightCurlyBracket {
			break
		}
		if tok.Kind == EOF {
			return nil, p.fail(ErrGrammar, "body", tok, "unterminated body, expected '}'")
		}

		field, err := p.parseField()
		if err != nil {
			return nil, err
		}
		tree = append(tree, field)
	}

	if _, err := p.acceptToken("body", RightCurlyBracket); err != nil {
		return nil, err
	}

	tok, err := p.nextToken("EOI")
	if err != nil {
		return nil, err
	}
	if tok.Kind != EOF {
		return nil, p.fail(ErrUnexpectedToken, "EOI", tok, "trailing input after '}'")
	}

	return append(tree, eoi{pos: tok.Pos}), nil
}

func (p *treeParser) parseField() (node, error) {
	var nodes []node

	for {
		tok, err := p.peekToken("doc_string_line")
		if err != nil {
			return nil, err
		}
		if tok.Kind != DocLine {
			break
		}
		p.peekCacheFull = false
		nodes = append(nodes, docLine{pos: tok.Pos, text: tok.Content})
	}

	tok, err := p.peekToken("field_name")
	if err != nil {
		return nil, err
	}
	if tok.Kind != Identifier {
		if len(nodes) > 0 {
			return nil, p.fail(ErrMissingFieldName, "field_name", tok, "doc comment is not followed by a field name")
		}
		return nil, p.fail(ErrUnexpectedToken, "field", tok, "expected a field or '}'")
	}
	p.peekCacheFull = false
	nodes = append(nodes, fieldName{pos: tok.Pos, name: tok.Content})
	start := tok.Pos

	if _, err := p.acceptToken("field", Colon); err != nil {
		return nil, err
	}
	if _, err := p.acceptToken("field", LeftParenthesis); err != nil {
		return nil, err
	}

	closed, err := p.advanceIf("field", RightParenthesis)
	if err != nil {
		return nil, err
	}
	var end Position
	if !closed {
		for {
			item, err := p.parseItem()
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, item)

			more, err := p.advanceIf("field", Comma)
			if err != nil {
				return nil, err
			}
			if !more {
				break
			}
		}
		rparen, err := p.acceptToken("field", RightParenthesis)
		if err != nil {
			return nil, err
		}
		end = rparen.Pos
	} else {
		end = p.peekCache.Pos
	}

	// fields are comma separated, but the reference drops the comma now and then
	if _, err := p.advanceIf("field", Comma); err != nil {
		return nil, err
	}

	return fieldNode{start: start, end: end, nodes: nodes}, nil
}

func (p *treeParser) parseItem() (node, error) {
	tok, err := p.acceptToken("type_clause", Identifier)
	if err != nil {
		return nil, err
	}

	switch tok.Content {
	case keywordArray:
		isArray, err := p.advanceIf("type_name_array", LeftSquareBracket)
		if err != nil {
			return nil, err
		}
		if !isArray {
			break
		}
		elem, err := p.acceptToken("type_name_array", Identifier)
		if err != nil {
			return nil, err
		}
		if _, err := p.acceptToken("type_name_array", RightSquareBracket); err != nil {
			return nil, err
		}
		return typeArray{pos: tok.Pos, elem: elem.Content}, nil
	case keywordDefault:
		isDefault, err := p.advanceIf("default", Equals)
		if err != nil {
			return nil, err
		}
		if !isDefault {
			break
		}
		raw := p.lexer.RawUntil(",)")
		if raw.Content == "" {
			return nil, p.fail(ErrGrammar, "default", raw, "empty default value")
		}
		return defaultValue{pos: tok.Pos, value: raw.Content}, nil
	case keywordDeprecated:
		return deprecatedMarker{pos: tok.Pos}, nil
	case keywordRequired:
		return requiredMarker{pos: tok.Pos}, nil
	}

	return typeNormal{pos: tok.Pos, name: tok.Content}, nil
}

// build walks the parse tree and assembles the struct.
func build(tree []node, input string) (models.Struct, error) {
	fields := []models.Field{}

	for _, n := range tree {
		switch n := n.(type) {
		case fieldNode:
			field, skip, err := buildField(n, input)
			if err != nil {
				return models.Struct{}, err
			}
			if skip {
				continue
			}
			fields = append(fields, field)
		case eoi:
			return models.Struct{Fields: fields}, nil
		default:
			return models.Struct{}, &ParseError{
				Kind:    ErrUnexpectedToken,
				Rule:    "body",
				Pos:     n.position(),
				Token:   describe(n),
				Message: "unexpected parse tree node at top level",
				Input:   input,
			}
		}
	}

	return models.Struct{}, &ParseError{
		Kind:    ErrGrammar,
		Rule:    "EOI",
		Message: "parse tree ended without end of input",
		Input:   input,
	}
}

// buildField buckets the field's nodes into slots in one pass and then checks
// the slots. skip is true for deprecated fields.
func buildField(fn fieldNode, input string) (field models.Field, skip bool, err error) {
	var (
		docs       []string
		name       *fieldName
		normal     *typeNormal
		array      *typeArray
		conflict   node
		def        *string
		deprecated bool
		required   bool
	)

	for _, n := range fn.nodes {
		switch n := n.(type) {
		case docLine:
			if n.text != "" {
				docs = append(docs, n.text)
			}
		case fieldName:
			name = &n
		case typeNormal:
			if normal != nil || array != nil {
				conflict = n
				continue
			}
			normal = &n
		case typeArray:
			if normal != nil || array != nil {
				conflict = n
				continue
			}
			array = &n
		case defaultValue:
			if def == nil {
				v := n.value
				def = &v
			}
		case deprecatedMarker:
			deprecated = true
		case requiredMarker:
			required = true
		default:
			return models.Field{}, false, &ParseError{
				Kind:  ErrUnexpectedToken,
				Rule:  "field",
				Pos:   n.position(),
				Token: describe(n),
				Input: input,
			}
		}
	}

	if name == nil {
		return models.Field{}, false, &ParseError{
			Kind:  ErrMissingFieldName,
			Rule:  "field_name",
			Pos:   fn.start,
			End:   fn.end,
			Input: input,
		}
	}

	if deprecated {
		return models.Field{}, true, nil
	}

	if conflict != nil {
		return models.Field{}, false, &ParseError{
			Kind:    ErrConflictingType,
			Rule:    "type_clause",
			Pos:     conflict.position(),
			End:     fn.end,
			Token:   describe(conflict),
			Field:   name.name,
			Message: "a field takes exactly one of a normal or an array type",
			Input:   input,
		}
	}

	if normal == nil && array == nil {
		return models.Field{}, false, &ParseError{
			Kind:    ErrMissingType,
			Rule:    "type_clause",
			Pos:     fn.start,
			End:     fn.end,
			Field:   name.name,
			Message: "neither a type nor Array[type] was given",
			Input:   input,
		}
	}

	field = models.Field{
		Name:      name.name,
		DocString: strings.Join(docs, " "),
		Default:   def,
		Required:  required,
	}
	if array != nil {
		field.TypeName = array.elem
		field.IsArray = true
	} else {
		field.TypeName = normal.name
	}

	return field, false, nil
}

func describe(n node) string {
	switch n := n.(type) {
	case docLine:
		return "doc comment " + quote(n.text)
	case fieldName:
		return "field_name " + quote(n.name)
	case typeNormal:
		return "type_name_normal " + quote(n.name)
	case typeArray:
		return "type_name_array " + quote(keywordArray+"["+n.elem+"]")
	case defaultValue:
		return "default " + quote(n.value)
	case deprecatedMarker:
		return keywordDeprecated
	case requiredMarker:
		return keywordRequired
	case fieldNode:
		return "field"
	case eoi:
		return "EOI"
	default:
		return "unknown"
	}
}

func quote(s string) string {
	return `"` + s + `"`
}
