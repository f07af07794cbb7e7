package store

import "github.com/mosslang/resolver/internal/lexer"

// ExprKind tags the active shape of an Expr, mirroring spec.md §3's
// post-lowering expression variants.
type ExprKind int

const (
	ExprRef ExprKind = iota
	ExprFind
	ExprCall
	ExprFunctionOptimize
	ExprValue
)

// Expr is an element's lowered expression. It is mutated in place exactly
// once, when a successful non-meta Find memoizes itself into a Ref
// (spec.md §4.4, rule 2); every other transition creates a fresh Element
// rather than mutating an existing Expr.
type Expr struct {
	Kind ExprKind

	// ExprRef
	RefTarget GlobalElemId

	// ExprFind
	FindTarget  *GlobalElemId // nil => untargeted (walk the parent chain)
	FindName    StringId
	FindMeta    bool
	FindNamePos lexer.Position

	// ExprCall
	CallFunc  GlobalElemId
	CallParam GlobalElemId

	// ExprFunctionOptimize
	OptimizeFunc GlobalFuncId

	// ExprValue
	Value Value
}

// RefExpr builds an ExprRef.
func RefExpr(target GlobalElemId) Expr {
	return Expr{Kind: ExprRef, RefTarget: target}
}

// FindExpr builds an ExprFind.
func FindExpr(target *GlobalElemId, name StringId, meta bool, pos lexer.Position) Expr {
	return Expr{Kind: ExprFind, FindTarget: target, FindName: name, FindMeta: meta, FindNamePos: pos}
}

// CallExpr builds an ExprCall.
func CallExpr(fn, param GlobalElemId) Expr {
	return Expr{Kind: ExprCall, CallFunc: fn, CallParam: param}
}

// FunctionOptimizeExpr builds an ExprFunctionOptimize.
func FunctionOptimizeExpr(fn GlobalFuncId) Expr {
	return Expr{Kind: ExprFunctionOptimize, OptimizeFunc: fn}
}

// ValueExpr builds an ExprValue.
func ValueExpr(v Value) Expr {
	return Expr{Kind: ExprValue, Value: v}
}
