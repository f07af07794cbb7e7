package store

import (
	"sync"

	"github.com/mosslang/resolver/internal/ast"
	"github.com/mosslang/resolver/internal/diag"
)

// ElementKey is either a named binding (Name) or an anonymous (Temp)
// sub-expression element.
type ElementKey struct {
	IsTemp bool
	Name   StringId
}

// NameKey builds a named ElementKey.
func NameKey(name StringId) ElementKey { return ElementKey{Name: name} }

// TempKey builds an anonymous ElementKey.
func TempKey() ElementKey { return ElementKey{IsTemp: true} }

// Authored is an element's source: either an expression node to lower and
// evaluate lazily, or a value the element is born resolved with (set by
// Module.AddResolvedElement for every literal, parameter sentinel and
// prelude builtin; elements the specializer finalizes leave it nil).
type Authored struct {
	ExprSource  ast.Node // nil if Precomputed is set
	KeySource   ast.Node // optional, for diagnostics on the key rather than the value
	Precomputed *Value
}

// Element is a named or anonymous binding: a lazy expression plus, once
// resolved, a Value. DependencyCount and Dependants are not read or written
// anywhere: waiting on and re-triggering resolution goes through the
// per-element mutex/cond below.
type Element struct {
	Key      ElementKey
	Scope    ScopeId
	Module   ModuleId
	Authored Authored

	Expr     Expr
	Value    Value
	Resolved bool

	DependencyCount int
	Dependants      []GlobalElemId

	Remote      *RemoteElemId
	Diagnostics []diag.Diagnostic

	// mu/cond/inProgress gate concurrent resolution of THIS element: any
	// goroutine from any module may call evaluator.Resolve on it (cross-
	// module demand is ordinary demand, not a separate suspend/resume
	// path), and exactly one of them does the work while the rest block on
	// cond until Resolved flips true. Cycle detection happens one layer up
	// (evaluator tracks the current call chain) since a plain Mutex can't
	// tell "another goroutine holds this" from "I hold this already".
	//
	// lockOnce guards mu/cond's lazy allocation itself: two goroutines can
	// both reach evaluator.Resolve on a freshly allocated element at once
	// (it's exactly the first force that races), so an unguarded "if mu ==
	// nil" could install two different *sync.Mutex values and let both
	// goroutines believe they alone are computing it.
	lockOnce   sync.Once
	mu         *sync.Mutex
	cond       *sync.Cond
	inProgress bool
}

// Lock returns the element's resolution mutex and condition variable,
// lazily allocating them on first use (zero Element values, e.g. in tests
// constructing one by literal, never ran through newElement/ReserveElement).
func (e *Element) Lock() (*sync.Mutex, *sync.Cond) {
	e.lockOnce.Do(func() {
		e.mu = &sync.Mutex{}
		e.cond = sync.NewCond(e.mu)
	})
	return e.mu, e.cond
}

// InProgressFlag returns a pointer to the flag recording whether this
// element is currently being computed by some goroutine. Callers must hold e.Lock()'s mutex.
func (e *Element) InProgressFlag() *bool { return &e.inProgress }

// TypedValue returns the element's current value with its type tag. Only
// meaningful once Resolved is true.
func (e *Element) TypedValue() TypedValue {
	return Typed(e.Value)
}
