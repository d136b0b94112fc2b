package pseudojson

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrGrammar is returned when the input does not match the body grammar.
	ErrGrammar = errors.New("grammar mismatch")
	// ErrMissingFieldName is returned when doc lines are not followed by a field name.
	ErrMissingFieldName = errors.New("missing field name")
	// ErrMissingType is returned when a field has neither a normal nor an array type.
	ErrMissingType = errors.New("missing type")
	// ErrConflictingType is returned when a field captured more than one type.
	// The grammar should prevent it.
	ErrConflictingType = errors.New("conflicting type capture")
	// ErrUnexpectedToken is returned for a top-level token that is neither a
	// field production nor the end of input.
	ErrUnexpectedToken = errors.New("unexpected token")
)

// ParseError describes where and why a definition body failed to parse.
// Input always holds the full original text.
type ParseError struct {
	Kind    error
	Rule    string
	Pos     Position
	End     Position
	Token   string
	Field   string
	Message string
	Input   string
}

func (e *ParseError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%v at %s", e.Kind, e.Pos)
	if e.End.Line > 0 {
		fmt.Fprintf(&sb, "-%s", e.End)
	}
	fmt.Fprintf(&sb, " (rule %s", e.Rule)
	if e.Field != "" {
		fmt.Fprintf(&sb, ", field %q", e.Field)
	}
	if e.Token != "" {
		fmt.Fprintf(&sb, ", token %s", e.Token)
	}
	sb.WriteString(")")
	if e.Message != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Message)
	}
	sb.WriteString("\ninput:\n")
	sb.WriteString(e.Input)
	return sb.String()
}

func (e *ParseError) Unwrap() error {
	return e.Kind
}
