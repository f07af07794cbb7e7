package store

import (
	"sync"

	"github.com/mosslang/resolver/internal/ast"
	"github.com/mosslang/resolver/internal/diag"
)

// Module is one unit of lazy evaluation: a local store (scopes, elements,
// functions) that the scheduler runs on one worker goroutine but that other
// goroutines may also resolve and grow (see structMu), plus a remote view
// other workers may read from concurrently (spec.md §3's
// Module entity row).
//
// Invariant: Root is set at most once, the first time the module's source
// file's top-level scope is lowered. Invariant: UnresolvedCount == 0 iff
// every element in Elements is Resolved.
type Module struct {
	ID ModuleId

	Scopes    Arena[Scope, ScopeTag]
	Elements  Arena[Element, ElementTag]
	Functions Arena[Function, FunctionTag]

	Root *ScopeId

	Remote *ModuleRemote

	// Dependants is not read or written anywhere: a goroutine in another
	// module that depends on one of this module's elements waits on that
	// element's own mutex/cond instead.
	Dependants []GlobalElemId

	UnresolvedCount int

	// structMu's only remaining required job is serializing UnresolvedCount's
	// increment/decrement — Scopes/Elements/Functions growth is safe on its
	// own now, guarded by each Arena's own RWMutex (see
	// internal/store/arena.go). AddScope/AddElement still hold structMu
	// across their whole body (Insert plus the matching Remote.Grow call),
	// which costs nothing since nothing else contends for it at that grain,
	// but it is the UnresolvedCount bookkeeping that actually needs it:
	// evaluation is not single-threaded the way lowering is, since the
	// specializer clones a called function's body into the CALLER's module
	// on whatever goroutine resolved the call.
	structMu sync.Mutex
}

// NewModule creates an empty module ready to receive its root scope.
func NewModule(id ModuleId) *Module {
	return &Module{ID: id, Remote: NewModuleRemote()}
}

// AddScope allocates a scope in both the local arena and the remote view.
func (m *Module) AddScope(parent *ScopeId, depth int, authored ast.Node) ScopeId {
	m.structMu.Lock()
	defer m.structMu.Unlock()
	id := m.Scopes.Insert(*NewScope(m.ID, parent, depth, authored))
	m.Remote.Grow(m.Elements.Len(), m.Scopes.Len())
	return id
}

// AddElement allocates an element, bumping UnresolvedCount until it
// resolves, and grows the remote view to cover it.
func (m *Module) AddElement(e Element) ElementId {
	m.structMu.Lock()
	defer m.structMu.Unlock()
	id := m.Elements.Insert(e)
	m.UnresolvedCount++
	m.Remote.Grow(m.Elements.Len(), m.Scopes.Len())
	return id
}

// MarkResolved records that id has resolved to v, publishes it remotely,
// and decrements the module's unresolved counter.
func (m *Module) MarkResolved(id ElementId, v Value) {
	el := m.Elements.Get(id)
	el.Value = v
	el.Resolved = true
	m.structMu.Lock()
	m.UnresolvedCount--
	m.structMu.Unlock()
	if el.Remote != nil {
		m.Remote.Publish(*el.Remote, Typed(v))
	}
}

// newElement allocates el, gives it a remote slot, and registers it in
// scope's Names (if key is a named key) or Temps. A named key that
// duplicates an existing binding in scope allocates nothing at all —
// Scope.Bind's alloc callback only runs on the non-duplicate path — so a
// shadowed assignment with a non-literal value never ends up as a second,
// permanently-unresolved Element sitting outside every scope's
// NameOrder/Temps where the scheduler would never reach it. isNew tells the
// caller whether id is a freshly allocated element or the kept first
// binding, so e.g. AddResolvedElement knows not to re-resolve (and
// re-decrement UnresolvedCount for) an element that already resolved once.
func (m *Module) newElement(scope ScopeId, el Element) (id ElementId, isNew bool) {
	s := m.Scopes.Get(scope)
	alloc := func() ElementId {
		id := m.AddElement(el)
		remote := RemoteElemId(id)
		m.Elements.Get(id).Remote = &remote
		return id
	}
	if el.Key.IsTemp {
		id := alloc()
		s.AddTemp(id)
		return id, true
	}
	kept, duplicate := s.Bind(el.Key.Name, el.Authored.KeySource, alloc)
	return kept, !duplicate
}

// AddResolvedElement allocates an element that is immediately resolved to
// v — moss's literal forms (Int, String, Scope, Function) never suspend,
// since their "authored content" already is their final value. A duplicate
// name keeps the first binding's element and its original value; v is
// discarded along with the diagnostic Scope.Bind already recorded.
func (m *Module) AddResolvedElement(scope ScopeId, key ElementKey, keyNode ast.Node, v Value, diags ...diag.Diagnostic) ElementId {
	id, isNew := m.newElement(scope, Element{
		Key:      key,
		Scope:    scope,
		Module:   m.ID,
		Authored: Authored{KeySource: keyNode, Precomputed: &v},
		Expr:     ValueExpr(v),
		Diagnostics: diags,
	})
	if isNew {
		m.MarkResolved(id, v)
	}
	return id
}

// AddLazyElement allocates an element whose value is computed on demand by
// the evaluator from expr.
func (m *Module) AddLazyElement(scope ScopeId, key ElementKey, keyNode, exprSource ast.Node, expr Expr, diags ...diag.Diagnostic) ElementId {
	id, _ := m.newElement(scope, Element{
		Key:      key,
		Scope:    scope,
		Module:   m.ID,
		Authored: Authored{KeySource: keyNode, ExprSource: exprSource},
		Expr:     expr,
		Diagnostics: diags,
	})
	return id
}

// ReserveElement allocates a bare element slot (no scope binding, not
// resolved) ahead of knowing its final Expr — used by the specializer,
// which must hand out a stable id before it can recurse into that
// element's own references (guarding against cycles in a cloned body).
func (m *Module) ReserveElement() ElementId {
	id := m.AddElement(Element{})
	remote := RemoteElemId(id)
	m.Elements.Get(id).Remote = &remote
	return id
}

// FinalizeElement fills in a reserved element's scope/key/expression, and
// resolves it immediately if expr is already a literal value.
func (m *Module) FinalizeElement(id ElementId, scope ScopeId, key ElementKey, expr Expr) {
	el := m.Elements.Get(id)
	el.Scope = scope
	el.Module = m.ID
	el.Key = key
	el.Expr = expr
	if expr.Kind == ExprValue {
		m.MarkResolved(id, expr.Value)
	}
}

// File is a loaded source buffer: its text, parsed AST, display path, and —
// once lowered — the module it became (spec.md §3's File entity row). A
// File with IsModule == nil has been parsed but not yet lowered.
type File struct {
	ID       FileId
	Path     string
	Text     string
	Source   *ast.SourceFile
	IsModule *ModuleId
}
