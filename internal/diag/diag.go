// Package diag defines the resolver's diagnostic taxonomy and renders
// diagnostics with source context, in the style of a compiler frontend's
// error formatter (a single caret under the diagnostic's start column).
package diag

import (
	"fmt"
	"strings"

	"github.com/mosslang/resolver/internal/lexer"
)

// Kind names a diagnostic category. Names are bit-stable: external tooling
// (language-server style consumers) may match on them.
type Kind string

const (
	GrammarError                       Kind = "GrammarError"
	RedundantElementKey                Kind = "RedundantElementKey"
	FailedFindElement                  Kind = "FailedFindElement"
	FailedFindElementOrPrivateElement  Kind = "FailedFindElementOrPrivateElement"
	CanNotFindIn                       Kind = "CanNotFindIn"
	CanNotCallOn                       Kind = "CanNotCallOn"
	PathError                          Kind = "PathError"
	StringEscapeError                  Kind = "StringEscapeError"
	ElementCycle                       Kind = "ElementCycle"
	Custom                             Kind = "Custom"
)

// Diagnostic is a single structural/user-facing finding attached to an
// element or scope's authoring node. It never aborts evaluation: the
// affected element resolves to Value::Err (or remains suspended) while
// unrelated elements keep progressing.
type Diagnostic struct {
	Kind    Kind
	Message string
	Start   int
	End     int
	Pos     lexer.Position
}

// New builds a Diagnostic anchored on a byte range.
func New(kind Kind, message string, start, end int, pos lexer.Position) Diagnostic {
	return Diagnostic{Kind: kind, Message: message, Start: start, End: end, Pos: pos}
}

// CanNotFindInf builds a CanNotFindIn diagnostic carrying the offending
// value's type/description.
func CanNotFindInf(value string, start, end int, pos lexer.Position) Diagnostic {
	return New(CanNotFindIn, fmt.Sprintf("cannot find in %s: not a scope", value), start, end, pos)
}

// CanNotCallOnf builds a CanNotCallOn diagnostic carrying the offending
// value's type/description.
func CanNotCallOnf(value string, start, end int, pos lexer.Position) Diagnostic {
	return New(CanNotCallOn, fmt.Sprintf("cannot call on %s: not a function or builtin", value), start, end, pos)
}

// ElementCyclef builds an ElementCycle diagnostic: this element's own
// resolution recursively depends on itself.
func ElementCyclef(start, end int, pos lexer.Position) Diagnostic {
	return New(ElementCycle, "element depends on its own resolution (cycle)", start, end, pos)
}

// Format renders a diagnostic with one line of source context and a caret,
// mirroring a hand-rolled compiler error formatter's output shape.
func (d Diagnostic) Format(file, source string) string {
	var sb strings.Builder
	if file != "" {
		fmt.Fprintf(&sb, "%s: %s:%s\n", d.Kind, file, d.Pos)
	} else {
		fmt.Fprintf(&sb, "%s: %s\n", d.Kind, d.Pos)
	}
	if line := sourceLine(source, d.Pos.Line); line != "" {
		lineNumStr := fmt.Sprintf("%4d | ", d.Pos.Line)
		sb.WriteString(lineNumStr)
		sb.WriteString(line)
		sb.WriteString("\n")
		sb.WriteString(strings.Repeat(" ", len(lineNumStr)+max(0, d.Pos.Column-1))) // builtin max (go1.21+)
		sb.WriteString("^\n")
	}
	sb.WriteString(d.Message)
	return sb.String()
}

func sourceLine(source string, lineNum int) string {
	if source == "" || lineNum < 1 {
		return ""
	}
	lines := strings.Split(source, "\n")
	if lineNum > len(lines) {
		return ""
	}
	return lines[lineNum-1]
}

// FormatAll renders a batch of diagnostics, one block per finding.
func FormatAll(diags []Diagnostic, file, source string) string {
	var sb strings.Builder
	for i, d := range diags {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(d.Format(file, source))
	}
	return sb.String()
}
