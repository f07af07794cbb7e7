package store

import (
	"github.com/mosslang/resolver/internal/ast"
	"github.com/mosslang/resolver/internal/diag"
)

// Scope is an ordered collection of named elements plus anonymous (temp)
// elements, an optional parent for lexical lookup, and the node that
// authored it (a Scope/Function-body/source-file node, or nil for a
// synthetic scope built by the specializer).
type Scope struct {
	Names       map[StringId]ElementId
	NameOrder   []StringId // preserves source order for deterministic iteration
	Temps       []ElementId
	Parent      *ScopeId
	Authored    ast.Node
	Module      ModuleId
	Depth       int
	Diagnostics []diag.Diagnostic
	Remote      *RemoteScopeId
}

// NewScope creates an (initially empty) scope at the caller-supplied depth;
// callers pass the parent's Depth+1, 0 for a file's root scope, and -1 for
// the prelude.
func NewScope(module ModuleId, parent *ScopeId, depth int, authored ast.Node) *Scope {
	return &Scope{
		Names:  make(map[StringId]ElementId),
		Module: module,
		Parent: parent,
		Depth:  depth,
		Authored: authored,
	}
}

// Bind registers a named element under name, keeping the first binding on a
// duplicate name and recording RedundantElementKey on the duplicate
// (spec.md §4.3). alloc is only called — and so only ever allocates an
// Element — when name isn't already bound in this scope; a duplicate name
// short-circuits straight to the diagnostic and returns the existing id,
// mirroring original_source's `entry(name).or_insert_with(...)` so a
// shadowed assignment never leaves a second, orphaned Element that no
// scope's NameOrder/Temps ever points at.
func (s *Scope) Bind(name StringId, keyNode ast.Node, alloc func() ElementId) (kept ElementId, duplicate bool) {
	if existing, ok := s.Names[name]; ok {
		s.Diagnostics = append(s.Diagnostics, diag.New(
			diag.RedundantElementKey,
			"duplicate binding for this name; keeping the first",
			keyNode.StartByte(), keyNode.EndByte(), keyNode.Pos(),
		))
		return existing, true
	}
	id := alloc()
	s.Names[name] = id
	s.NameOrder = append(s.NameOrder, name)
	return id, false
}

// AddTemp registers an anonymous (sub-expression) element in this scope.
func (s *Scope) AddTemp(id ElementId) {
	s.Temps = append(s.Temps, id)
}
