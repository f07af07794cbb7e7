package parser

import (
	"testing"

	"github.com/mosslang/resolver/internal/ast"
	"github.com/mosslang/resolver/internal/lexer"
)

func parse(t *testing.T, input string) *ast.SourceFile {
	t.Helper()
	l := lexer.New(input)
	p := New(l)
	file := p.ParseSourceFile()
	if len(p.Errors()) != 0 {
		t.Fatalf("unexpected parse errors for %q: %v", input, p.Errors())
	}
	return file
}

func TestParseSimpleAssign(t *testing.T) {
	file := parse(t, `x = 1;`)
	if len(file.Assigns) != 1 {
		t.Fatalf("got %d assigns, want 1", len(file.Assigns))
	}
	a := file.Assigns[0]
	if a.Key.Text != "x" {
		t.Errorf("key = %q", a.Key.Text)
	}
	n, ok := a.Value.(*ast.Int)
	if !ok || n.Text != "1" {
		t.Errorf("value = %#v", a.Value)
	}
}

func TestParseNestedScope(t *testing.T) {
	file := parse(t, `a = { b = 2; };`)
	a := file.Assigns[0]
	scope, ok := a.Value.(*ast.Scope)
	if !ok {
		t.Fatalf("value = %#v, want *ast.Scope", a.Value)
	}
	if len(scope.Assigns) != 1 || scope.Assigns[0].Key.Text != "b" {
		t.Errorf("scope.Assigns = %#v", scope.Assigns)
	}
}

func TestParseDottedFind(t *testing.T) {
	file := parse(t, `a = b.c;`)
	find, ok := file.Assigns[0].Value.(*ast.Find)
	if !ok {
		t.Fatalf("value = %#v, want *ast.Find", file.Assigns[0].Value)
	}
	if find.Name.Text != "c" {
		t.Errorf("find.Name = %q", find.Name.Text)
	}
	target, ok := find.Target.(*ast.Name)
	if !ok || target.Text != "b" {
		t.Errorf("find.Target = %#v", find.Target)
	}
}

func TestParseMetaFind(t *testing.T) {
	file := parse(t, `a = b.@c;`)
	find, ok := file.Assigns[0].Value.(*ast.FindMeta)
	if !ok {
		t.Fatalf("value = %#v, want *ast.FindMeta", file.Assigns[0].Value)
	}
	if find.Name.Text != "c" {
		t.Errorf("find.Name = %q", find.Name.Text)
	}
}

func TestParseUntargetedMeta(t *testing.T) {
	file := parse(t, `a = @c;`)
	meta, ok := file.Assigns[0].Value.(*ast.Meta)
	if !ok {
		t.Fatalf("value = %#v, want *ast.Meta", file.Assigns[0].Value)
	}
	if meta.Name.Text != "c" {
		t.Errorf("meta.Name = %q", meta.Name.Text)
	}
}

func TestParseCallIsLeftAssociativeJuxtaposition(t *testing.T) {
	file := parse(t, `r = f x y;`)
	outer, ok := file.Assigns[0].Value.(*ast.Call)
	if !ok {
		t.Fatalf("value = %#v, want *ast.Call", file.Assigns[0].Value)
	}
	inner, ok := outer.Func.(*ast.Call)
	if !ok {
		t.Fatalf("outer.Func = %#v, want *ast.Call (f x)", outer.Func)
	}
	if name, ok := inner.Func.(*ast.Name); !ok || name.Text != "f" {
		t.Errorf("inner.Func = %#v", inner.Func)
	}
	if arg, ok := inner.Arg.(*ast.Name); !ok || arg.Text != "x" {
		t.Errorf("inner.Arg = %#v", inner.Arg)
	}
	if arg, ok := outer.Arg.(*ast.Name); !ok || arg.Text != "y" {
		t.Errorf("outer.Arg = %#v", outer.Arg)
	}
}

func TestParseFunctionLiteral(t *testing.T) {
	file := parse(t, `f = x -> { y = x; };`)
	fn, ok := file.Assigns[0].Value.(*ast.Function)
	if !ok {
		t.Fatalf("value = %#v, want *ast.Function", file.Assigns[0].Value)
	}
	if fn.Param.Text != "x" {
		t.Errorf("param = %q", fn.Param.Text)
	}
	if len(fn.Body.Assigns) != 1 {
		t.Errorf("body assigns = %#v", fn.Body.Assigns)
	}
}

func TestParseBracketedExpression(t *testing.T) {
	file := parse(t, `a = (b);`)
	br, ok := file.Assigns[0].Value.(*ast.Bracket)
	if !ok {
		t.Fatalf("value = %#v, want *ast.Bracket", file.Assigns[0].Value)
	}
	if _, ok := br.Inner.(*ast.Name); !ok {
		t.Errorf("bracket inner = %#v", br.Inner)
	}
}

func TestParseStringEscapeSegments(t *testing.T) {
	file := parse(t, `s = "a\nb";`)
	str, ok := file.Assigns[0].Value.(*ast.String)
	if !ok {
		t.Fatalf("value = %#v, want *ast.String", file.Assigns[0].Value)
	}
	if len(str.Segments) != 3 {
		t.Fatalf("segments = %#v, want 3 (raw, escape, raw)", str.Segments)
	}
	if _, ok := str.Segments[0].(*ast.StringRaw); !ok {
		t.Errorf("segment 0 = %#v", str.Segments[0])
	}
	esc, ok := str.Segments[1].(*ast.StringEscape)
	if !ok || esc.Text != `\n` {
		t.Errorf("segment 1 = %#v", str.Segments[1])
	}
	if _, ok := str.Segments[2].(*ast.StringRaw); !ok {
		t.Errorf("segment 2 = %#v", str.Segments[2])
	}
}

func TestParseStringEndByteIncludesQuotes(t *testing.T) {
	file := parse(t, `s = "ab";`)
	str := file.Assigns[0].Value.(*ast.String)
	if got, want := str.EndByte()-str.StartByte(), len(`"ab"`); got != want {
		t.Errorf("string byte span = %d, want %d (quotes included)", got, want)
	}
}

func TestParseErrorRecoversAtNextStatement(t *testing.T) {
	l := lexer.New(`a = ; b = 2;`)
	p := New(l)
	file := p.ParseSourceFile()
	if len(p.Errors()) == 0 {
		t.Fatal("expected at least one parse error")
	}
	if len(file.Assigns) != 1 || file.Assigns[0].Key.Text != "b" {
		t.Fatalf("expected recovery to still parse `b = 2;`, got %#v", file.Assigns)
	}
}

func TestParseMultipleTopLevelAssigns(t *testing.T) {
	file := parse(t, `a = 1; b = 2; c = 3;`)
	if len(file.Assigns) != 3 {
		t.Fatalf("got %d assigns, want 3", len(file.Assigns))
	}
}
