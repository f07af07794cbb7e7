package intern

import (
	"hash/fnv"
	"sync"
	"sync/atomic"
)

const shardCount = 16

type shard struct {
	mu sync.RWMutex
	m  map[string]StringId
}

// ConcurrentInterner is the thread-safe string interner used during the
// parallel evaluation phase. It is seeded from a single-threaded Interner's
// current contents so that IDs allocated while workers are running never
// collide with IDs already handed out before the parallel phase began;
// NewFromSingleThread records that seed so Snapshot can report exactly the
// strings this interner introduced.
type ConcurrentInterner struct {
	seedBase uint32
	next     atomic.Uint32
	shards   [shardCount]*shard
	slots    sync.Map // StringId -> string
}

// NewFromSingleThread creates a ConcurrentInterner whose ID allocation
// continues where in left off, copying in's existing strings (including
// the empty string every Interner seeds at id 0) so ids minted before the
// parallel phase still Resolve afterwards.
func NewFromSingleThread(in *Interner) *ConcurrentInterner {
	c := &ConcurrentInterner{seedBase: uint32(in.Len())}
	c.next.Store(c.seedBase)
	for i := range c.shards {
		c.shards[i] = &shard{m: make(map[string]StringId)}
	}
	for id := StringId(0); int(id) < in.Len(); id++ {
		s := in.Resolve(id)
		c.shardFor(s).m[s] = id
		c.slots.Store(id, s)
	}
	return c
}

func (c *ConcurrentInterner) shardFor(s string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return c.shards[h.Sum32()%shardCount]
}

// Intern returns the StringId for s, allocating a fresh one (via an atomic
// counter, never reused) if s has not been seen by this interner.
func (c *ConcurrentInterner) Intern(s string) StringId {
	sh := c.shardFor(s)

	sh.mu.RLock()
	if id, ok := sh.m[s]; ok {
		sh.mu.RUnlock()
		return id
	}
	sh.mu.RUnlock()

	sh.mu.Lock()
	defer sh.mu.Unlock()
	if id, ok := sh.m[s]; ok {
		return id
	}
	id := StringId(c.next.Add(1) - 1)
	sh.m[s] = id
	c.slots.Store(id, s)
	return id
}

// Resolve returns the string for id. Safe to call concurrently with Intern;
// it panics if id was never interned here, matching the single-threaded
// Interner's contract.
func (c *ConcurrentInterner) Resolve(id StringId) string {
	v, ok := c.slots.Load(id)
	if !ok {
		panic("intern: resolve of unknown StringId")
	}
	return v.(string)
}

// Snapshot returns, in allocation order, every string this interner has
// interned beyond its seed — i.e. everything introduced during the
// parallel phase, ready to be folded back into a single-threaded Interner
// via SyncFromConcurrent.
func (c *ConcurrentInterner) Snapshot() []string {
	n := c.next.Load()
	out := make([]string, 0, int(n-c.seedBase))
	for id := c.seedBase; id < n; id++ {
		out = append(out, c.Resolve(StringId(id)))
	}
	return out
}
