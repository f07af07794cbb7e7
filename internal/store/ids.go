// Package store holds the per-module Scope/Element/Function arenas (the
// "local view"), their append-only cross-thread-readable mirrors (the
// "remote view"), and the Value/Expr types threaded between them. It is the
// arena-and-integer-handle layer the rest of the resolver is built on:
// scopes, elements, and functions are never referenced by pointer, only by
// one of the handle types below, so ownership stays with the arena and
// cross-module/cross-thread references stay explicit.
package store

import "github.com/mosslang/resolver/internal/intern"

// StringId re-exports the interner's id type so callers need not import
// internal/intern solely for this alias.
type StringId = intern.StringId

// FileId identifies a loaded source file.
type FileId uint32

// ModuleId identifies a module (a root scope bound to a file or a
// synthetic node), assigned to exactly one worker during the parallel
// phase.
type ModuleId uint32

// ScopeTag and ElementTag and FunctionTag are phantom type parameters that
// make LocalInModuleId, GlobalId, and RemoteInModuleId distinct types per
// arena without duplicating the handle machinery three times.
type ScopeTag struct{}
type ElementTag struct{}
type FunctionTag struct{}

// LocalInModuleId is a dense, module-local handle into one of a module's
// arenas (Scope, Element, or Function, selected by K).
type LocalInModuleId[K any] uint32

// GlobalId addresses an arena slot unambiguously across the whole
// interpreter: the owning module plus a local handle within it.
type GlobalId[K any] struct {
	Module ModuleId
	Local  LocalInModuleId[K]
}

// Global promotes a local handle to a global one given its owning module.
func Global[K any](module ModuleId, local LocalInModuleId[K]) GlobalId[K] {
	return GlobalId[K]{Module: module, Local: local}
}

// RemoteInModuleId is a dense index into a module's remote view — separate
// from LocalInModuleId because the remote view is append-only and grows
// independently of local arena compaction (there is none here, but the
// index spaces are kept conceptually distinct as specified).
type RemoteInModuleId[K any] uint32

type (
	ScopeId       = LocalInModuleId[ScopeTag]
	ElementId     = LocalInModuleId[ElementTag]
	FunctionId    = LocalInModuleId[FunctionTag]
	GlobalScopeId = GlobalId[ScopeTag]
	GlobalElemId  = GlobalId[ElementTag]
	GlobalFuncId  = GlobalId[FunctionTag]
	RemoteScopeId = RemoteInModuleId[ScopeTag]
	RemoteElemId  = RemoteInModuleId[ElementTag]
)
