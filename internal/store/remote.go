package store

import "sync"

// remoteElemCell is one element's cross-module-visible publication point:
// unresolved until Module.MarkResolved stores a value, on whichever
// goroutine resolved the element (ModuleRemote's mutex serializes writers);
// any number of other workers may read it concurrently.
type remoteElemCell struct {
	resolved bool
	value    TypedValue
}

// ModuleRemote is a module's remote view (spec.md §4.2/§9): an append-only
// mirror of its Elements/Scopes arenas that other modules' workers can read
// without touching the owning module's local store. Growth and publication
// are guarded by an RWMutex rather than a fully lock-free slab — readers
// only ever look up an id they learned from an already-published
// cross-module reference, so a short RLock per read is not on any hot
// per-tick path (schedchan's lock-free stack carries only module ids). This
// mirrors the RWMutex-guarded registries the teacher uses for similarly
// shaped single-writer/many-reader state.
//
// This is a passive, non-blocking read path only: the evaluator forces a
// specific element's resolution (and blocks until that individual element
// is done, via the per-Element mutex/cond in internal/store's Element type)
// rather than blocking on the remote view itself, so Remote no longer needs
// its own condition variable — Publish's job is purely to make the value
// visible to readers who just want to peek without forcing anything.
type ModuleRemote struct {
	mu     sync.RWMutex
	elems  []remoteElemCell
	scopes []bool // true once the scope at this index exists remotely
}

// NewModuleRemote returns an empty, ready-to-use remote view.
func NewModuleRemote() *ModuleRemote {
	return &ModuleRemote{}
}

// Grow ensures the remote view has at least n element/scope slots,
// allocating unresolved placeholders for any new ones. Called from
// Module.AddScope/AddElement, on whichever goroutine grows the local arenas.
func (r *ModuleRemote) Grow(elemCount, scopeCount int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for len(r.elems) < elemCount {
		r.elems = append(r.elems, remoteElemCell{})
	}
	for len(r.scopes) < scopeCount {
		r.scopes = append(r.scopes, true)
	}
}

// Publish stores id's resolved value, making it visible to any reader
// across the interpreter. Called from Module.MarkResolved on whichever
// goroutine resolved the element, at most once per id (resolution is
// monotone).
func (r *ModuleRemote) Publish(id RemoteElemId, v TypedValue) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.elems[id] = remoteElemCell{resolved: true, value: v}
}

// Read returns the current value at id and whether it has resolved yet.
func (r *ModuleRemote) Read(id RemoteElemId) (TypedValue, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if int(id) >= len(r.elems) {
		return TypedValue{}, false
	}
	cell := r.elems[id]
	return cell.value, cell.resolved
}

// ScopeExists reports whether the scope at id has been published remotely
// yet (scopes are created up front per module, so this is really "has the
// owning module reached this point in its local arena").
func (r *ModuleRemote) ScopeExists(id RemoteScopeId) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int(id) < len(r.scopes) && r.scopes[id]
}
