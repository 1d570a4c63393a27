package omgo

import (
	"fmt"
	"strings"
)

// ParseError is returned by ParseTyped when the input does not match the
// value grammar. Callers normally recover by retrying with ParseBasic.
type ParseError struct {
	Line, Column int
	Msg          string
	Input        string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("omgo: parse error at %d:%d: %s", e.Line, e.Column, e.Msg)
}

// BracketError is returned by the heuristic parser when brace or parenthesis
// nesting never closes. It is a normal, recoverable error; the parse that
// produced it yields no result.
type BracketError struct {
	Msg   string
	Input string
}

func (e *BracketError) Error() string {
	return "omgo: " + e.Msg
}

// OMCMessage is one entry of the OMC message log, extracted from the
// getMessagesStringInternal() reply.
type OMCMessage struct {
	File    string
	Line    int
	Column  int
	Kind    string
	Level   string
	ID      int
	Message string
}

func (m OMCMessage) String() string {
	return fmt.Sprintf("[%s:%s:%d] %s", m.Kind, m.Level, m.ID, m.Message)
}

// OMCError reports error-level log entries emitted by OMC while evaluating
// an expression.
type OMCError struct {
	Expr     string
	Messages []OMCMessage
}

func (e *OMCError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "omgo: OMC reported errors for %q:", e.Expr)
	for i, m := range e.Messages {
		fmt.Fprintf(&b, "\n%02d: %s", i, m)
	}
	return b.String()
}
