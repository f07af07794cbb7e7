package lower

import (
	"testing"

	"github.com/mosslang/resolver/internal/intern"
	"github.com/mosslang/resolver/internal/lexer"
	"github.com/mosslang/resolver/internal/parser"
	"github.com/mosslang/resolver/internal/store"
)

func lowerSource(t *testing.T, src string) (*store.Module, store.ScopeId, *intern.Interner) {
	t.Helper()
	l := lexer.New(src)
	p := parser.New(l)
	file := p.ParseSourceFile()
	if len(p.Errors()) != 0 {
		t.Fatalf("unexpected parse errors: %v", p.Errors())
	}
	module := store.NewModule(0)
	in := intern.New()
	root := File(module, file, in)
	return module, root, in
}

func TestFileResolvesLiteralsEagerly(t *testing.T) {
	module, root, in := lowerSource(t, `x = 1; s = "hi";`)
	scope := module.Scopes.Get(root)

	xId := scope.Names[in.Intern("x")]
	xEl := module.Elements.Get(xId)
	if !xEl.Resolved || xEl.Value.Kind != store.VInt || xEl.Value.Int != 1 {
		t.Errorf("x = %+v, want resolved Int(1)", xEl)
	}

	sId := scope.Names[in.Intern("s")]
	sEl := module.Elements.Get(sId)
	if !sEl.Resolved || sEl.Value.Kind != store.VString {
		t.Errorf("s = %+v, want resolved String", sEl)
	}
	if got := in.Resolve(sEl.Value.Str); got != "hi" {
		t.Errorf("s resolves to %q, want %q", got, "hi")
	}
}

func TestFileLeavesLookupsLazy(t *testing.T) {
	module, root, in := lowerSource(t, `a = 1; b = a;`)
	scope := module.Scopes.Get(root)
	bId := scope.Names[in.Intern("b")]
	bEl := module.Elements.Get(bId)
	if bEl.Resolved {
		t.Errorf("b should still be lazy before evaluation, got %+v", bEl)
	}
	if bEl.Expr.Kind != store.ExprFind {
		t.Errorf("b.Expr.Kind = %v, want ExprFind", bEl.Expr.Kind)
	}
}

func TestFilePrependsPreludeWithBuiltins(t *testing.T) {
	module, root, in := lowerSource(t, `x = 1;`)
	rootScope := module.Scopes.Get(root)
	if rootScope.Parent == nil {
		t.Fatal("root scope has no parent; expected a prelude scope")
	}
	prelude := module.Scopes.Get(*rootScope.Parent)
	if prelude.Parent != nil {
		t.Errorf("prelude scope should be parentless, got %+v", prelude.Parent)
	}

	for _, want := range []struct {
		name string
		kind store.BuiltinKind
	}{
		{"mod", store.BuiltinMod},
		{"diagnose", store.BuiltinDiagnose},
		{"if", store.BuiltinIf},
		{"add", store.BuiltinAdd},
	} {
		id, ok := prelude.Names[in.Intern(want.name)]
		if !ok {
			t.Fatalf("prelude missing binding for %q", want.name)
		}
		el := module.Elements.Get(id)
		if !el.Resolved || el.Value.Kind != store.VBuiltin || el.Value.Builtin != want.kind {
			t.Errorf("%q = %+v, want resolved Builtin(%v)", want.name, el, want.kind)
		}
	}
}

func TestDuplicateKeyKeepsFirstAndDiagnoses(t *testing.T) {
	module, root, in := lowerSource(t, `x = 1; x = 2;`)
	scope := module.Scopes.Get(root)
	id := scope.Names[in.Intern("x")]
	el := module.Elements.Get(id)
	if el.Value.Int != 1 {
		t.Errorf("x = %+v, want the first binding (1) to win", el)
	}
	if len(scope.Diagnostics) != 1 {
		t.Fatalf("scope diagnostics = %v, want exactly 1 RedundantElementKey", scope.Diagnostics)
	}
}

func TestStringEscapesSubstitute(t *testing.T) {
	module, root, in := lowerSource(t, `s = "a\nb\tc";`)
	scope := module.Scopes.Get(root)
	id := scope.Names[in.Intern("s")]
	el := module.Elements.Get(id)
	if got := in.Resolve(el.Value.Str); got != "a\nb\tc" {
		t.Errorf("s = %q, want %q", got, "a\nb\tc")
	}
}

func TestUnrecognizedEscapeProducesDiagnostic(t *testing.T) {
	module, root, in := lowerSource(t, `s = "a\qb";`)
	scope := module.Scopes.Get(root)
	id := scope.Names[in.Intern("s")]
	el := module.Elements.Get(id)
	if len(el.Diagnostics) != 1 {
		t.Fatalf("diagnostics = %v, want exactly 1 StringEscapeError", el.Diagnostics)
	}
}

func TestNestedScopeLiteralIsResolvedToAScopeValue(t *testing.T) {
	module, root, in := lowerSource(t, `a = { b = 1; };`)
	scope := module.Scopes.Get(root)
	id := scope.Names[in.Intern("a")]
	el := module.Elements.Get(id)
	if !el.Resolved || el.Value.Kind != store.VScope {
		t.Fatalf("a = %+v, want resolved Scope", el)
	}
	inner := module.Scopes.Get(el.Value.Scope.Local)
	if inner.Parent == nil || *inner.Parent != root {
		t.Errorf("nested scope's parent = %v, want root scope %v", inner.Parent, root)
	}
}

func TestFunctionLiteralParamIsPreResolved(t *testing.T) {
	module, root, in := lowerSource(t, `f = p -> { r = p; };`)
	scope := module.Scopes.Get(root)
	id := scope.Names[in.Intern("f")]
	el := module.Elements.Get(id)
	if !el.Resolved || el.Value.Kind != store.VFunction {
		t.Fatalf("f = %+v, want resolved Function", el)
	}
	fn := module.Functions.Get(el.Value.Func.Local)
	paramEl := module.Elements.Get(fn.Param)
	if !paramEl.Resolved || paramEl.Value.Kind != store.VParam {
		t.Errorf("function param = %+v, want resolved Param sentinel", paramEl)
	}
}

func TestFileSecondCallPanics(t *testing.T) {
	module, root, in := lowerSource(t, `x = 1;`)
	_ = root
	_ = in

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected lower.File to panic on an already-lowered module")
		}
	}()
	l := lexer.New(`y = 2;`)
	p := parser.New(l)
	File(module, p.ParseSourceFile(), intern.New())
}
