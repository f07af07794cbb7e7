// Package specializer realizes a function call by cloning the callee's
// pre-computed body template into the caller's module with the argument
// wired in place of the parameter (spec.md §4.6). It depends only on
// internal/store; the "ensure resolved" step Phase A requires is supplied
// by the caller as a callback (internal/evaluator provides one), keeping
// this package free of an import cycle back to the evaluator.
package specializer

import "github.com/mosslang/resolver/internal/store"

// Force drives id towards resolution (recursively resolving whatever it
// depends on) and returns once it has either resolved or given up
// (suspended/cyclic) — specializer doesn't need to distinguish those two
// outcomes, it just needs el.Expr/el.Value to reflect however far
// resolution got.
type Force func(module *store.Module, id store.ElementId)

// Build computes fn's FunctionBody the first time it's needed and caches
// it on fn (spec.md §4.6 Phase A). Safe to call repeatedly; idempotent.
func Build(module *store.Module, fn *store.Function, force Force) *store.FunctionBody {
	if fn.Body != nil {
		return fn.Body
	}
	b := &buildCtx{
		module:     module,
		fn:         fn,
		force:      force,
		body:       &store.FunctionBody{},
		scopeNew:   map[store.ScopeId]store.ScopeId{},
		elemNew:    map[store.ElementId]store.ElementId{},
		captureIdx: map[store.GlobalElemId]int{},
	}
	b.body.Root = b.mapScope(fn.DefiningScope, true)
	fn.Body = b.body
	return b.body
}

type buildCtx struct {
	module *store.Module
	fn     *store.Function
	force  Force
	body   *store.FunctionBody

	scopeNew   map[store.ScopeId]store.ScopeId
	elemNew    map[store.ElementId]store.ElementId
	captureIdx map[store.GlobalElemId]int

	paramBody    *store.ElementId
	hasParamBody bool
	captureBody  map[store.GlobalElemId]store.ElementId
}

// mapScope clones scopeId (a local scope in the function's own module) into
// a BodyScope, recursing into its members. isRoot is true only for the
// function's own DefiningScope, whose body-local Parent is always nil —
// that's the capture boundary, never walked past.
func (b *buildCtx) mapScope(scopeId store.ScopeId, isRoot bool) store.ScopeId {
	if id, ok := b.scopeNew[scopeId]; ok {
		return id
	}
	bodyId := b.body.Scopes.Insert(store.BodyScope{Names: map[store.StringId]store.ElementId{}})
	b.scopeNew[scopeId] = bodyId

	scope := b.module.Scopes.Get(scopeId)
	var parent *store.ScopeId
	if !isRoot && scope.Parent != nil {
		p := b.mapScope(*scope.Parent, false)
		parent = &p
	}

	names := map[store.StringId]store.ElementId{}
	var order []store.StringId
	for _, name := range scope.NameOrder {
		names[name] = b.mapElement(scope.Names[name])
		order = append(order, name)
	}
	var temps []store.ElementId
	for _, t := range scope.Temps {
		if t == b.fn.Complete {
			continue // the trigger element itself is never part of the cloned body
		}
		temps = append(temps, b.mapElement(t))
	}

	*b.body.Scopes.Get(bodyId) = store.BodyScope{Parent: parent, NameOrder: order, Names: names, Temps: temps}
	return bodyId
}

// inTree reports whether scopeId is the function's defining scope or lies
// (through nested scope-literal parents) underneath it.
func (b *buildCtx) inTree(scopeId store.ScopeId) bool {
	for {
		if scopeId == b.fn.DefiningScope {
			return true
		}
		scope := b.module.Scopes.Get(scopeId)
		if scope.Parent == nil {
			return false
		}
		scopeId = *scope.Parent
	}
}

// paramElem returns (creating once) the synthetic body-local element
// standing in for the function's own parameter.
func (b *buildCtx) paramElem() store.ElementId {
	if b.hasParamBody {
		return *b.paramBody
	}
	id := b.body.Elements.Insert(store.BodyElement{Kind: store.BodyParam, Key: store.TempKey()})
	b.paramBody = &id
	b.hasParamBody = true
	return id
}

// captureElem returns (creating once per distinct target) the synthetic
// body-local element standing in for a reference outside the function's
// own scope tree.
func (b *buildCtx) captureElem(target store.GlobalElemId) store.ElementId {
	if b.captureBody == nil {
		b.captureBody = map[store.GlobalElemId]store.ElementId{}
	}
	if id, ok := b.captureBody[target]; ok {
		return id
	}
	idx, ok := b.captureIdx[target]
	if !ok {
		idx = len(b.fn.Captures)
		b.fn.Captures = append(b.fn.Captures, target)
		b.captureIdx[target] = idx
	}
	id := b.body.Elements.Insert(store.BodyElement{Kind: store.BodyCapture, CaptureIndex: idx, Key: store.TempKey()})
	b.captureBody[target] = id
	return id
}

// mapRef classifies a GlobalElemId reference encountered inside the
// function body: the function's own parameter, an element within the
// function's own scope tree, or (everything else) a capture.
func (b *buildCtx) mapRef(target store.GlobalElemId) store.ElementId {
	if target.Module == b.module.ID && target.Local == b.fn.Param {
		return b.paramElem()
	}
	if target.Module == b.module.ID && b.inTree(b.module.Elements.Get(target.Local).Scope) {
		return b.mapElement(target.Local)
	}
	return b.captureElem(target)
}

// mapElement clones a single element reachable from the function's own
// scope tree, forcing its resolution first (Phase A rule 1).
func (b *buildCtx) mapElement(elemId store.ElementId) store.ElementId {
	if id, ok := b.elemNew[elemId]; ok {
		return id
	}
	if elemId == b.fn.Param {
		id := b.paramElem()
		b.elemNew[elemId] = id
		return id
	}

	id := b.body.Elements.Insert(store.BodyElement{})
	b.elemNew[elemId] = id

	b.force(b.module, elemId)
	el := b.module.Elements.Get(elemId)

	var out store.BodyElement
	out.Key = el.Key

	switch el.Expr.Kind {
	case store.ExprValue:
		v := el.Expr.Value
		if v.Kind == store.VScope {
			out.Kind = store.BodyLiteral
			out.IsScopeLit = true
			out.ScopeRef = b.mapScope(v.Scope.Local, false)
		} else {
			out.Kind = store.BodyLiteral
			out.Literal = v
		}
	case store.ExprRef:
		out.Kind = store.BodyRef
		out.RefTarget = b.mapRef(el.Expr.RefTarget)
	case store.ExprCall:
		out.Kind = store.BodyCall
		out.CallFunc = b.mapRef(el.Expr.CallFunc)
		out.CallParam = b.mapRef(el.Expr.CallParam)
	case store.ExprFunctionOptimize:
		out.Kind = store.BodyFunctionOptimize
		out.OptimizeFunc = el.Expr.OptimizeFunc.Local
	default:
		// Find never survives to this point if resolution succeeded (a
		// successful Find memoizes into Ref); an unresolved/suspended Find
		// means `force` could not make progress — clone as an error so
		// Phase A stays total even under partial failure.
		out.Kind = store.BodyLiteral
		out.Literal = store.ErrValue()
	}

	*b.body.Elements.Get(id) = out
	return id
}

// Instantiate realizes one call: it clones fn's FunctionBody into
// callerModule, wiring argElem in for the parameter and fn.Captures in for
// every capture slot, and returns the freshly cloned root scope as a
// first-class Scope value (spec.md §8 scenario 6: `r = f 7; v = r.y;`).
// parent anchors the new scopes' lexical depth; it carries no lookup
// significance since every cloned expression is already Ref/Call/Value/
// FunctionOptimize, never an unresolved Find.
func Instantiate(fn *store.Function, callerModule *store.Module, argElem store.GlobalElemId, parent *store.ScopeId) store.GlobalScopeId {
	ctx := &instCtx{
		fn: fn, caller: callerModule, arg: argElem,
		scopeNew: map[store.ScopeId]store.ScopeId{},
		elemNew:  map[store.ElementId]store.ElementId{},
	}
	root := ctx.scope(fn.Body.Root, parent)
	return store.Global(callerModule.ID, root)
}

type instCtx struct {
	fn     *store.Function
	caller *store.Module
	arg    store.GlobalElemId

	scopeNew map[store.ScopeId]store.ScopeId
	elemNew  map[store.ElementId]store.ElementId
}

func (c *instCtx) scope(bodyScopeId store.ScopeId, parent *store.ScopeId) store.ScopeId {
	if id, ok := c.scopeNew[bodyScopeId]; ok {
		return id
	}
	depth := 0
	if parent != nil {
		depth = c.caller.Scopes.Get(*parent).Depth + 1
	}
	real := c.caller.AddScope(parent, depth, nil)
	c.scopeNew[bodyScopeId] = real

	bs := c.fn.Body.Scopes.Get(bodyScopeId)
	s := c.caller.Scopes.Get(real)
	for _, name := range bs.NameOrder {
		// real is a scope freshly minted for this call, so a cloned name can
		// never collide with one already bound here — alloc always runs.
		s.Bind(name, nil, func() store.ElementId { return c.element(bs.Names[name], real) })
	}
	for _, t := range bs.Temps {
		rid := c.element(t, real)
		s.AddTemp(rid)
	}
	return real
}

func (c *instCtx) element(bodyElemId store.ElementId, owner store.ScopeId) store.ElementId {
	if id, ok := c.elemNew[bodyElemId]; ok {
		return id
	}
	id := c.caller.ReserveElement()
	c.elemNew[bodyElemId] = id

	be := c.fn.Body.Elements.Get(bodyElemId)
	switch be.Kind {
	case store.BodyParam:
		c.caller.FinalizeElement(id, owner, be.Key, store.RefExpr(c.arg))
	case store.BodyCapture:
		c.caller.FinalizeElement(id, owner, be.Key, store.RefExpr(c.fn.Captures[be.CaptureIndex]))
	case store.BodyRef:
		target := c.element(be.RefTarget, owner)
		c.caller.FinalizeElement(id, owner, be.Key, store.RefExpr(store.Global(c.caller.ID, target)))
	case store.BodyCall:
		fnId := c.element(be.CallFunc, owner)
		paramId := c.element(be.CallParam, owner)
		c.caller.FinalizeElement(id, owner, be.Key,
			store.CallExpr(store.Global(c.caller.ID, fnId), store.Global(c.caller.ID, paramId)))
	case store.BodyFunctionOptimize:
		c.caller.FinalizeElement(id, owner, be.Key, store.FunctionOptimizeExpr(store.Global(c.fn.Module, be.OptimizeFunc)))
	case store.BodyLiteral:
		if be.IsScopeLit {
			nested := c.scope(be.ScopeRef, &owner)
			c.caller.FinalizeElement(id, owner, be.Key, store.ValueExpr(store.ScopeValue(store.Global(c.caller.ID, nested))))
		} else {
			c.caller.FinalizeElement(id, owner, be.Key, store.ValueExpr(be.Literal))
		}
	}
	return id
}
