package parser

import "github.com/mosslang/resolver/internal/lexer"

// Error is a single parse failure with enough context to render a
// source-anchored diagnostic.
type Error struct {
	Pos     lexer.Position
	Length  int
	Message string
}

func (e *Error) Error() string {
	return e.Pos.String() + ": " + e.Message
}
