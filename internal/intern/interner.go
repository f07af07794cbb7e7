// Package intern provides the resolver's string interner: a single-thread
// variant used before/after the parallel phase, and a concurrent variant
// (concurrent.go) used during it. Both variants share a monotonic ID space
// and a SyncFrom operation so the two can exchange contents without
// reassigning an already-published StringId.
package intern

// StringId is an opaque, stable integer identifying an interned string. IDs
// are never reused and remain valid for the lifetime of the owning
// interner (or any interner it has synced with).
type StringId uint32

// StringInterner is satisfied by both *Interner and *ConcurrentInterner.
// Lowering takes this interface rather than the concrete single-thread type because
// a module can be lowered either before the parallel phase starts (the
// initial add_module calls) or during it (a `mod` reference discovered by
// a worker goroutine) — the concurrent variant is safe in both cases, the
// single-thread one only in the first.
type StringInterner interface {
	Intern(s string) StringId
}

// Empty is the StringId of the empty string, which every fresh Interner
// interns first so `""` always maps to the same, well-known ID.
const Empty StringId = 0

// Interner is the single-threaded string-to-id map: a hash map keyed by
// content to an index into a backing slice of strings. Intended for use
// outside the parallel evaluation phase (parsing/lowering before workers
// start, or CLI/query code after they finish).
type Interner struct {
	byString map[string]StringId
	strings  []string
}

// New creates an Interner with the empty string pre-interned at ID 0.
func New() *Interner {
	in := &Interner{byString: make(map[string]StringId)}
	in.Intern("")
	return in
}

// Intern returns the StringId for s, allocating a new one if s has not been
// seen before. Equal byte sequences always map to the same ID.
func (in *Interner) Intern(s string) StringId {
	if id, ok := in.byString[s]; ok {
		return id
	}
	id := StringId(len(in.strings))
	in.strings = append(in.strings, s)
	in.byString[s] = id
	return id
}

// Resolve returns the string for id. It panics if id was never interned by
// this interner (or synced in from another) — a programming error, not a
// recoverable condition.
func (in *Interner) Resolve(id StringId) string {
	return in.strings[id]
}

// Len returns the number of distinct strings interned so far.
func (in *Interner) Len() int {
	return len(in.strings)
}

// SyncFrom copies every string from other that this interner has not yet
// seen, in the order other assigned them, so that IDs already shared
// between the two remain equal afterwards. Strings present in both keep
// whichever ID this interner already assigned them (per-interner IDs are
// monotonic but not necessarily identical across independently-grown
// interners at strings interned before any sync).
func (in *Interner) SyncFrom(other *Interner) {
	for id := StringId(0); int(id) < len(other.strings); id++ {
		in.Intern(other.strings[id])
	}
}

// SyncFromConcurrent copies every string observed by a ConcurrentInterner
// snapshot into this interner.
func (in *Interner) SyncFromConcurrent(other *ConcurrentInterner) {
	for _, s := range other.Snapshot() {
		in.Intern(s)
	}
}
