package specializer_test

import (
	"testing"

	"github.com/mosslang/resolver/internal/evaluator"
	"github.com/mosslang/resolver/internal/intern"
	"github.com/mosslang/resolver/internal/lexer"
	"github.com/mosslang/resolver/internal/lower"
	"github.com/mosslang/resolver/internal/parser"
	"github.com/mosslang/resolver/internal/store"
)

type soloRegistry struct{ module *store.Module }

func (r *soloRegistry) Module(id store.ModuleId) *store.Module { return r.module }

type noopLoader struct{}

func (noopLoader) LoadModule(path string) (store.GlobalScopeId, error) {
	return store.GlobalScopeId{}, nil
}

func setup(t *testing.T, src string) (*store.Module, store.ScopeId, *intern.Interner, *evaluator.Evaluator) {
	t.Helper()
	l := lexer.New(src)
	p := parser.New(l)
	file := p.ParseSourceFile()
	if len(p.Errors()) != 0 {
		t.Fatalf("unexpected parse errors: %v", p.Errors())
	}
	module := store.NewModule(0)
	in := intern.New()
	root := lower.File(module, file, in)
	eval := evaluator.New(&soloRegistry{module: module}, noopLoader{}, in)
	return module, root, in, eval
}

func rootBinding(module *store.Module, scope store.ScopeId, in *intern.Interner, name string) (store.ElementId, bool) {
	s := module.Scopes.Get(scope)
	id, ok := s.Names[in.Intern(name)]
	return id, ok
}

// Calling the same function twice (Build once, Instantiate twice) must
// produce independently-scoped results: each call's param binding resolves
// to its own argument and mutating one instance's arena growth never
// collides with the other's.
func TestInstantiateProducesIndependentScopesPerCall(t *testing.T) {
	module, root, in, eval := setup(t, `f = x -> { y = x; }; r1 = f 11; r2 = f 22; v1 = r1.y; v2 = r2.y;`)

	v1Id, ok := rootBinding(module, root, in, "v1")
	if !ok {
		t.Fatal("v1 not bound")
	}
	v2Id, ok := rootBinding(module, root, in, "v2")
	if !ok {
		t.Fatal("v2 not bound")
	}

	v1 := eval.Resolve(module, v1Id)
	v2 := eval.Resolve(module, v2Id)
	if v1.Value.Kind != store.VInt || v1.Value.Int != 11 {
		t.Errorf("v1 = %+v, want Int(11)", v1.Value)
	}
	if v2.Value.Kind != store.VInt || v2.Value.Int != 22 {
		t.Errorf("v2 = %+v, want Int(22)", v2.Value)
	}

	r1Id, _ := rootBinding(module, root, in, "r1")
	r2Id, _ := rootBinding(module, root, in, "r2")
	r1 := eval.Resolve(module, r1Id)
	r2 := eval.Resolve(module, r2Id)
	if r1.Value.Kind != store.VScope || r2.Value.Kind != store.VScope {
		t.Fatalf("r1/r2 = %+v / %+v, want Scope values", r1.Value, r2.Value)
	}
	if r1.Value.Scope.Local == r2.Value.Scope.Local {
		t.Errorf("two calls to the same function shared a scope: %v", r1.Value.Scope.Local)
	}
}

// A name referenced from inside the function body but bound outside its own
// scope tree (a closed-over variable) is recorded as a capture exactly once,
// regardless of how many call sites force the function.
func TestCaptureIsRecordedOnceAndSharedAcrossCalls(t *testing.T) {
	module, root, in, eval := setup(t, `outer = 100; f = x -> { y = outer; }; r1 = f 1; r2 = f 2; v1 = r1.y; v2 = r2.y;`)

	fId, ok := rootBinding(module, root, in, "f")
	if !ok {
		t.Fatal("f not bound")
	}
	fEl := module.Elements.Get(fId)
	if fEl.Value.Kind != store.VFunction {
		t.Fatalf("f = %+v, want resolved Function", fEl.Value)
	}

	v1Id, _ := rootBinding(module, root, in, "v1")
	v2Id, _ := rootBinding(module, root, in, "v2")
	v1 := eval.Resolve(module, v1Id)
	v2 := eval.Resolve(module, v2Id)
	if v1.Value.Kind != store.VInt || v1.Value.Int != 100 {
		t.Errorf("v1 = %+v, want Int(100) (captured outer)", v1.Value)
	}
	if v2.Value.Kind != store.VInt || v2.Value.Int != 100 {
		t.Errorf("v2 = %+v, want Int(100) (captured outer)", v2.Value)
	}

	fn := module.Functions.Get(fEl.Value.Func.Local)
	if fn.Body == nil {
		t.Fatal("fn.Body is nil after forcing two calls; expected Phase A to have run")
	}
	if len(fn.Captures) != 1 {
		t.Errorf("fn.Captures = %v, want exactly one capture (outer), shared across both calls", fn.Captures)
	}
}

// The function's own parameter is never treated as a capture, even though
// it is (lexically) outside the function's own scope tree in the sense that
// it isn't one of the body's own named bindings.
func TestParamReferenceIsNotRecordedAsACapture(t *testing.T) {
	module, root, in, eval := setup(t, `f = x -> { y = x; z = x; }; r = f 9; vy = r.y; vz = r.z;`)

	fId, _ := rootBinding(module, root, in, "f")
	fEl := module.Elements.Get(fId)

	vyId, _ := rootBinding(module, root, in, "vy")
	vzId, _ := rootBinding(module, root, in, "vz")
	vy := eval.Resolve(module, vyId)
	vz := eval.Resolve(module, vzId)
	if vy.Value.Int != 9 || vz.Value.Int != 9 {
		t.Errorf("vy/vz = %+v / %+v, want Int(9) / Int(9)", vy.Value, vz.Value)
	}

	fn := module.Functions.Get(fEl.Value.Func.Local)
	if len(fn.Captures) != 0 {
		t.Errorf("fn.Captures = %v, want none (both y and z reference the parameter, not an outer binding)", fn.Captures)
	}
}
