// Package evaluator implements run_element (spec.md §4.4): the dispatch
// that forces one element's Expr towards a Value, discovering and forcing
// whatever it depends on along the way.
//
// spec.md describes dependency discovery as asynchronous — depend_element
// records a dependant and returns None, resolve_element re-drives the
// dependant later when a counter reaches zero, and a cross-worker
// dependency is a pushed Signal rather than a direct call. This
// implementation collapses that into synchronous, recursive, memoized
// resolution: Resolve(module, id) blocks the calling goroutine until id is
// either resolved or found to be cyclic, recursing directly into whatever
// id depends on (same module or not). Two things make this equivalent in
// observable behaviour:
//
//   - Memoization. Every Element gates its own computation behind a
//     mutex/condition-variable pair (internal/store's Element.Lock) rather
//     than a dependency counter: the first caller to reach an unresolved
//     element computes it, any concurrent caller blocks on the same
//     element's cond until done, and a caller that arrives once it's
//     already Resolved never blocks at all. This is the same "exactly once,
//     any number of waiters" contract depend_element/resolve_element give
//     via the counter, just without a separate wake message.
//   - Cycle safety. A plain mutex can't tell "someone else is computing
//     this" from "I am already computing this, one frame up" — so Resolve
//     threads a path set of GlobalElemIds down its own call chain and
//     bails out with an ElementCycle diagnostic the moment it would revisit
//     one, instead of deadlocking on its own lock or spinning forever.
//
// The quiescence property spec.md asks for (every element resolved, or
// blocked only on a genuine cycle, once all workers are done) holds exactly
// the same under this model: a worker that calls Resolve on every element
// reachable from its module's root scope still drives the whole dependency
// graph to completion, cross-module calls included.
package evaluator

import (
	"github.com/mosslang/resolver/internal/diag"
	"github.com/mosslang/resolver/internal/lexer"
	"github.com/mosslang/resolver/internal/specializer"
	"github.com/mosslang/resolver/internal/store"
)

// ModuleRegistry resolves a ModuleId to its live *store.Module. Satisfied by
// the interpreter facade's module table.
type ModuleRegistry interface {
	Module(id store.ModuleId) *store.Module
}

// Loader realizes the `mod` builtin: given the source-relative path
// argument, it locates or lazily creates+lowers the corresponding module
// and returns its (by-then-populated) root scope. Implementations must be
// safe for concurrent calls — spec.md's single-threaded add_module/sync
// phases are collapsed here into an internally-serialized operation (see
// DESIGN.md) rather than a deferred per-worker queue drained between
// phases.
type Loader interface {
	LoadModule(path string) (store.GlobalScopeId, error)
}

// StringResolver is satisfied by both intern.Interner and
// intern.ConcurrentInterner — the evaluator only ever needs to go from an
// already-interned StringId back to its text (for builtin arguments), never
// to intern a new string itself.
type StringResolver interface {
	Resolve(id store.StringId) string
}

// Evaluator is stateless beyond its collaborators; one instance is shared
// by every worker goroutine.
type Evaluator struct {
	Modules ModuleRegistry
	Loader  Loader
	Strings StringResolver
}

// New builds an Evaluator over the given collaborators.
func New(modules ModuleRegistry, loader Loader, strings StringResolver) *Evaluator {
	return &Evaluator{Modules: modules, Loader: loader, Strings: strings}
}

// Resolve forces id (in module) to a value, recursing into whatever it
// depends on, and returns once it is resolved or found to be part of a
// cycle. Safe to call from any goroutine for any element in any module.
func (e *Evaluator) Resolve(module *store.Module, id store.ElementId) store.TypedValue {
	return e.resolve(module, id, nil)
}

// resolveGlobal is Resolve for a cross-module-capable handle.
func (e *Evaluator) resolveGlobal(g store.GlobalElemId, path map[store.GlobalElemId]bool) store.TypedValue {
	m := e.Modules.Module(g.Module)
	return e.resolve(m, g.Local, path)
}

func (e *Evaluator) resolve(module *store.Module, id store.ElementId, path map[store.GlobalElemId]bool) store.TypedValue {
	g := store.Global(module.ID, id)
	el := module.Elements.Get(id)

	if el.Resolved {
		return el.TypedValue()
	}
	if path[g] {
		start, end, pos := posOf(el)
		el.Diagnostics = append(el.Diagnostics, diag.ElementCyclef(start, end, pos))
		return store.Typed(store.ErrValue())
	}

	mu, cond := el.Lock()
	mu.Lock()
	for {
		if el.Resolved {
			mu.Unlock()
			return el.TypedValue()
		}
		if !*el.InProgressFlag() {
			break
		}
		cond.Wait()
	}
	*el.InProgressFlag() = true
	mu.Unlock()

	newPath := make(map[store.GlobalElemId]bool, len(path)+1)
	for k := range path {
		newPath[k] = true
	}
	newPath[g] = true

	v := e.compute(module, id, el, newPath)

	mu.Lock()
	*el.InProgressFlag() = false
	cond.Broadcast()
	mu.Unlock()
	return v
}

// compute performs the actual run_element dispatch over el.Expr and records
// the result, spec.md §4.4's numbered rules.
func (e *Evaluator) compute(module *store.Module, id store.ElementId, el *store.Element, path map[store.GlobalElemId]bool) store.TypedValue {
	switch el.Expr.Kind {
	case store.ExprValue:
		// Lowering resolves every literal immediately (AddResolvedElement);
		// reaching here unresolved only happens for a specializer-cloned
		// scope/function literal finalized after its dependencies were
		// already forced, so just publish it.
		module.MarkResolved(id, el.Expr.Value)

	case store.ExprRef:
		tv := e.resolveGlobal(el.Expr.RefTarget, path)
		module.MarkResolved(id, tv.Value)

	case store.ExprFind:
		e.runFind(module, id, el, path)

	case store.ExprCall:
		e.runCall(module, id, el, path)

	case store.ExprFunctionOptimize:
		fnModule := e.Modules.Module(el.Expr.OptimizeFunc.Module)
		fn := fnModule.Functions.Get(el.Expr.OptimizeFunc.Local)
		specializer.Build(fnModule, fn, func(m *store.Module, eid store.ElementId) {
			e.resolve(m, eid, path)
		})
		module.MarkResolved(id, store.TrivialValue())
	}
	return el.TypedValue()
}

// runFind implements spec.md §4.4 rule 2.
func (e *Evaluator) runFind(module *store.Module, id store.ElementId, el *store.Element, path map[store.GlobalElemId]bool) {
	start, end, pos := posOf(el)

	var scopeModule *store.Module
	var scopeId store.ScopeId

	if el.Expr.FindTarget != nil {
		targetTv := e.resolveGlobal(*el.Expr.FindTarget, path)
		if targetTv.Value.Kind != store.VScope {
			el.Diagnostics = append(el.Diagnostics, diag.CanNotFindInf(targetTv.Value.Kind.String(), start, end, pos))
			module.MarkResolved(id, store.ErrValue())
			return
		}
		scopeGlobal := targetTv.Value.Scope
		scopeModule = e.Modules.Module(scopeGlobal.Module)
		scopeId = scopeGlobal.Local

		scope := scopeModule.Scopes.Get(scopeId)
		found, ok := scope.Names[el.Expr.FindName]
		if !ok {
			el.Diagnostics = append(el.Diagnostics, diag.New(diag.FailedFindElement,
				"no such element in this scope", start, end, pos))
			module.MarkResolved(id, store.ErrValue())
			return
		}
		e.finishFind(module, id, el, store.Global(scopeModule.ID, found), path)
		return
	}

	// Untargeted: walk the defining element's own lexical scope chain, all
	// within the same module (a scope's Parent never crosses modules).
	scopeId = el.Scope
	for {
		scope := module.Scopes.Get(scopeId)
		if found, ok := scope.Names[el.Expr.FindName]; ok {
			e.finishFind(module, id, el, store.Global(module.ID, found), path)
			return
		}
		if scope.Parent == nil {
			el.Diagnostics = append(el.Diagnostics, diag.New(diag.FailedFindElement,
				"no binding with this name in any enclosing scope", start, end, pos))
			module.MarkResolved(id, store.ErrValue())
			return
		}
		scopeId = *scope.Parent
	}
}

// finishFind realizes rule 2's hit cases: meta yields Value(Element(found))
// directly (no dereference, no memoization — the binding itself, not its
// value, is what's wanted); a plain find rewrites Expr to Ref(found) in
// place (single-assignment memoization) and then behaves exactly like Ref.
func (e *Evaluator) finishFind(module *store.Module, id store.ElementId, el *store.Element, found store.GlobalElemId, path map[store.GlobalElemId]bool) {
	if el.Expr.FindMeta {
		module.MarkResolved(id, store.ElementValue(found))
		return
	}
	el.Expr = store.RefExpr(found)
	tv := e.resolveGlobal(found, path)
	module.MarkResolved(id, tv.Value)
}

// runCall implements spec.md §4.4 rule 3.
func (e *Evaluator) runCall(module *store.Module, id store.ElementId, el *store.Element, path map[store.GlobalElemId]bool) {
	start, end, pos := posOf(el)
	fnTv := e.resolveGlobal(el.Expr.CallFunc, path)

	switch fnTv.Value.Kind {
	case store.VFunction:
		fnModule := e.Modules.Module(fnTv.Value.Func.Module)
		fn := fnModule.Functions.Get(fnTv.Value.Func.Local)
		// Force Phase A (builds and caches fn.Body) before instantiating —
		// Complete's own Expr is ExprFunctionOptimize, forcing it is always
		// same-module-or-not-at-all-ambiguous via resolveGlobal.
		e.resolveGlobal(store.Global(fnModule.ID, fn.Complete), path)
		if fn.Body == nil {
			module.MarkResolved(id, store.ErrValue())
			return
		}
		owner := el.Scope
		rootScope := specializer.Instantiate(fn, module, el.Expr.CallParam, &owner)
		module.MarkResolved(id, store.ScopeValue(rootScope))

	case store.VBuiltin:
		v := e.runBuiltin(module, fnTv.Value, el.Expr.CallParam, el, path)
		module.MarkResolved(id, v)

	default:
		el.Diagnostics = append(el.Diagnostics, diag.CanNotCallOnf(fnTv.Value.Kind.String(), start, end, pos))
		module.MarkResolved(id, store.ErrValue())
	}
}

// runBuiltin implements spec.md §4.5. Mod and Diagnose exactly as
// specified; If and Add per SPEC_FULL.md §4.5's decided semantics.
func (e *Evaluator) runBuiltin(module *store.Module, fn store.Value, argElem store.GlobalElemId, callSite *store.Element, path map[store.GlobalElemId]bool) store.Value {
	var partial *store.BuiltinPartial
	if fn.Partial != nil {
		partial = fn.Partial
	} else {
		partial = &store.BuiltinPartial{Kind: fn.Builtin}
	}

	switch partial.Kind {
	case store.BuiltinMod:
		return e.builtinMod(module, argElem, callSite, path)

	case store.BuiltinDiagnose:
		return e.builtinDiagnose(module, argElem, path)

	case store.BuiltinAdd:
		return e.builtinAdd(module, partial, argElem, callSite, path)

	case store.BuiltinIf:
		return e.builtinIf(module, partial, argElem, callSite, path)
	}
	return store.ErrValue()
}

func (e *Evaluator) builtinMod(module *store.Module, argElem store.GlobalElemId, callSite *store.Element, path map[store.GlobalElemId]bool) store.Value {
	start, end, pos := posOf(callSite)
	argTv := e.resolveGlobal(argElem, path)
	if argTv.Value.Kind != store.VString {
		callSite.Diagnostics = append(callSite.Diagnostics, diag.New(diag.PathError,
			"mod expects a string path", start, end, pos))
		return store.ErrValue()
	}
	path2 := e.Strings.Resolve(argTv.Value.Str)
	scope, err := e.Loader.LoadModule(path2)
	if err != nil {
		callSite.Diagnostics = append(callSite.Diagnostics, diag.New(diag.PathError,
			err.Error(), start, end, pos))
		return store.ErrValue()
	}
	return store.ScopeValue(scope)
}

func (e *Evaluator) builtinDiagnose(module *store.Module, argElem store.GlobalElemId, path map[store.GlobalElemId]bool) store.Value {
	argTv := e.resolveGlobal(argElem, path)
	if argTv.Value.Kind != store.VScope {
		return store.ErrValue()
	}
	scopeModule := e.Modules.Module(argTv.Value.Scope.Module)
	scope := scopeModule.Scopes.Get(argTv.Value.Scope.Local)

	onId, hasOn := lookupByText(scope, e.Strings, "on")
	sourceId, hasSource := lookupByText(scope, e.Strings, "source")
	textId, hasText := lookupByText(scope, e.Strings, "text")
	if !hasOn || !hasSource || !hasText {
		return store.ErrValue()
	}

	onTv := e.resolveGlobal(store.Global(scopeModule.ID, onId), path)
	sourceTv := e.resolveGlobal(store.Global(scopeModule.ID, sourceId), path)
	textTv := e.resolveGlobal(store.Global(scopeModule.ID, textId), path)
	if onTv.Value.Kind != store.VInt || sourceTv.Value.Kind != store.VElement || textTv.Value.Kind != store.VString {
		return store.ErrValue()
	}
	if onTv.Value.Int == 0 {
		return store.TrivialValue()
	}
	if sourceTv.Value.Element.Module != module.ID {
		// Only this worker's own elements may be annotated directly — a
		// foreign target would need a cross-worker signal this simplified,
		// synchronous evaluator has no equivalent for. See DESIGN.md.
		return store.TrivialValue()
	}
	target := module.Elements.Get(sourceTv.Value.Element.Local)
	start, end, pos := posOf(target)
	target.Diagnostics = append(target.Diagnostics, diag.New(diag.Custom,
		e.Strings.Resolve(textTv.Value.Str), start, end, pos))
	return store.TrivialValue()
}

func lookupByText(scope *store.Scope, strings StringResolver, name string) (store.ElementId, bool) {
	for id := range scope.Names {
		if strings.Resolve(id) == name {
			return scope.Names[id], true
		}
	}
	return 0, false
}

func (e *Evaluator) builtinAdd(module *store.Module, partial *store.BuiltinPartial, argElem store.GlobalElemId, callSite *store.Element, path map[store.GlobalElemId]bool) store.Value {
	start, end, pos := posOf(callSite)
	argTv := e.resolveGlobal(argElem, path)
	if argTv.Value.Kind != store.VInt {
		callSite.Diagnostics = append(callSite.Diagnostics, diag.CanNotCallOnf(argTv.Value.Kind.String(), start, end, pos))
		return store.ErrValue()
	}
	args := append(append([]store.Value{}, partial.Args...), argTv.Value)
	if len(args) < 2 {
		return store.PartialValue(&store.BuiltinPartial{Kind: store.BuiltinAdd, Args: args})
	}
	return store.IntValue(args[0].Int + args[1].Int)
}

func (e *Evaluator) builtinIf(module *store.Module, partial *store.BuiltinPartial, argElem store.GlobalElemId, callSite *store.Element, path map[store.GlobalElemId]bool) store.Value {
	start, end, pos := posOf(callSite)

	// Args holds only the (eagerly forced) cond, never growing past one
	// element, so the curry stage actually reached is Args+Elems received so
	// far, not len(Args) alone — the cond and then-branch calls both leave
	// Args at length 1.
	switch len(partial.Args) + len(partial.Elems) {
	case 0: // receiving cond — must dereference it now to decide branching later
		argTv := e.resolveGlobal(argElem, path)
		if argTv.Value.Kind != store.VInt {
			callSite.Diagnostics = append(callSite.Diagnostics, diag.CanNotCallOnf(argTv.Value.Kind.String(), start, end, pos))
			return store.ErrValue()
		}
		return store.PartialValue(&store.BuiltinPartial{Kind: store.BuiltinIf, Args: []store.Value{argTv.Value}})

	case 1: // receiving `then` — kept lazy
		return store.PartialValue(&store.BuiltinPartial{
			Kind: store.BuiltinIf, Args: partial.Args, Elems: []store.GlobalElemId{argElem},
		})

	default: // receiving `else` — now decide, and resolve only the chosen branch
		cond := partial.Args[0].Int
		var chosen store.GlobalElemId
		if cond != 0 {
			chosen = partial.Elems[0]
		} else {
			chosen = argElem
		}
		tv := e.resolveGlobal(chosen, path)
		return tv.Value
	}
}

// posOf returns the diagnostic anchor (byte range + position) for el's
// authoring node, or zero values if it has none (specializer-synthesized
// elements carry no source node of their own).
func posOf(el *store.Element) (start, end int, pos lexer.Position) {
	node := el.Authored.ExprSource
	if node == nil {
		node = el.Authored.KeySource
	}
	if node == nil {
		return 0, 0, lexer.Position{}
	}
	return node.StartByte(), node.EndByte(), node.Pos()
}
