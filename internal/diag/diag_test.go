package diag

import (
	"strings"
	"testing"

	"github.com/mosslang/resolver/internal/lexer"
)

func TestFormatIncludesKindAndMessage(t *testing.T) {
	d := New(FailedFindElement, "no binding with this name", 2, 9, lexer.Position{Line: 1, Column: 3, Offset: 2})
	out := d.Format("main.ms", "v = missing;")
	if !strings.Contains(out, "FailedFindElement") {
		t.Errorf("Format output missing kind: %q", out)
	}
	if !strings.Contains(out, "no binding with this name") {
		t.Errorf("Format output missing message: %q", out)
	}
	if !strings.Contains(out, "main.ms") {
		t.Errorf("Format output missing file name: %q", out)
	}
}

func TestFormatWithoutFileOmitsFileSegment(t *testing.T) {
	d := New(GrammarError, "bad token", 0, 1, lexer.Position{Line: 1, Column: 1, Offset: 0})
	out := d.Format("", "x")
	if strings.Contains(out, "main.ms") {
		t.Errorf("unexpected file reference in %q", out)
	}
}

func TestFormatDrawsCaretUnderColumn(t *testing.T) {
	d := New(CanNotFindIn, "cannot find in Int: not a scope", 4, 11, lexer.Position{Line: 1, Column: 5, Offset: 4})
	out := d.Format("main.ms", "v = n.inner;")
	lines := strings.Split(out, "\n")
	var caretLine string
	for _, l := range lines {
		if strings.Contains(l, "^") {
			caretLine = l
			break
		}
	}
	if caretLine == "" {
		t.Fatalf("no caret line found in %q", out)
	}
	if strings.Index(caretLine, "^") != strings.Index(caretLine, strings.TrimLeft(caretLine, " ")) {
		t.Errorf("caret not aligned to trimmed prefix in %q", caretLine)
	}
	// Column 5 sits under the fifth source byte, after the "   1 | " gutter.
	if got, want := strings.Index(caretLine, "^"), len("   1 | ")+4; got != want {
		t.Errorf("caret at index %d, want %d, in %q", got, want, caretLine)
	}
}

func TestFormatOmitsSourceLineWhenOutOfRange(t *testing.T) {
	d := New(GrammarError, "oops", 0, 1, lexer.Position{Line: 5, Column: 1, Offset: 0})
	out := d.Format("main.ms", "only one line")
	if strings.Contains(out, "|") {
		t.Errorf("expected no source line rendered for an out-of-range position, got %q", out)
	}
}

func TestCanNotFindInfIncludesValueDescription(t *testing.T) {
	d := CanNotFindInf("Int", 0, 1, lexer.Position{})
	if d.Kind != CanNotFindIn {
		t.Errorf("Kind = %v, want CanNotFindIn", d.Kind)
	}
	if !strings.Contains(d.Message, "Int") {
		t.Errorf("Message = %q, want it to mention Int", d.Message)
	}
}

func TestCanNotCallOnfIncludesValueDescription(t *testing.T) {
	d := CanNotCallOnf("String", 0, 1, lexer.Position{})
	if d.Kind != CanNotCallOn {
		t.Errorf("Kind = %v, want CanNotCallOn", d.Kind)
	}
	if !strings.Contains(d.Message, "String") {
		t.Errorf("Message = %q, want it to mention String", d.Message)
	}
}

func TestElementCyclefSetsKind(t *testing.T) {
	d := ElementCyclef(0, 1, lexer.Position{})
	if d.Kind != ElementCycle {
		t.Errorf("Kind = %v, want ElementCycle", d.Kind)
	}
}

func TestFormatAllJoinsWithBlankLineBetweenEntries(t *testing.T) {
	diags := []Diagnostic{
		New(RedundantElementKey, "duplicate binding for this name; keeping the first", 0, 1, lexer.Position{Line: 1, Column: 1, Offset: 0}),
		New(StringEscapeError, "unrecognized escape sequence", 5, 6, lexer.Position{Line: 1, Column: 6, Offset: 5}),
	}
	out := FormatAll(diags, "main.ms", "k = 1; k = 2;")
	if !strings.Contains(out, "\n\n") {
		t.Errorf("expected a blank line between diagnostic blocks, got %q", out)
	}
	if strings.Count(out, "RedundantElementKey") != 1 || strings.Count(out, "StringEscapeError") != 1 {
		t.Errorf("expected one of each kind, got %q", out)
	}
}

func TestFormatAllEmptyYieldsEmptyString(t *testing.T) {
	if got := FormatAll(nil, "main.ms", "x"); got != "" {
		t.Errorf("FormatAll(nil) = %q, want empty", got)
	}
}
