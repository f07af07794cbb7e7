// Package scheduler drives every known module to quiescence: it spawns one
// worker per module (capped by a semaphore, per SPEC_FULL.md §5), has each
// worker force every element the module owns at least once, and picks up
// modules discovered mid-run (via the `mod` builtin) off a lock-free stack
// rather than the deferred add_module_delay queue spec.md describes — see
// DESIGN.md for why the synchronous evaluator makes that deferral
// unnecessary here.
package scheduler

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/mosslang/resolver/internal/evaluator"
	"github.com/mosslang/resolver/internal/mosserr"
	"github.com/mosslang/resolver/internal/obslog"
	"github.com/mosslang/resolver/internal/schedchan"
	"github.com/mosslang/resolver/internal/store"
)

// ModuleRegistry is the subset of the interpreter's module table the
// scheduler needs: looking a module up by id to run it.
type ModuleRegistry interface {
	Module(id store.ModuleId) *store.Module
}

// Scheduler owns the worker pool for one Run. It is not reused across runs.
type Scheduler struct {
	Eval        *evaluator.Evaluator
	Modules     ModuleRegistry
	Parallelism int64
	Log         *obslog.Logger

	discovered *schedchan.Stack[store.ModuleId]
	active     atomic.Int64
	seenMu     sync.Mutex
	seen       map[store.ModuleId]bool
}

// New builds a Scheduler. parallelism <= 0 means "unbounded" (GOMAXPROCS is
// a reasonable caller-supplied default, not assumed here).
func New(eval *evaluator.Evaluator, modules ModuleRegistry, parallelism int64, log *obslog.Logger) *Scheduler {
	return &Scheduler{
		Eval: eval, Modules: modules, Parallelism: parallelism, Log: log,
		discovered: schedchan.New[store.ModuleId](),
		seen:       map[store.ModuleId]bool{},
	}
}

// Discover registers a module as needing a worker pass. Safe to call from
// any goroutine at any time during Run — this is how the `mod` builtin's
// Loader hands off a freshly created module (see interp.Interpreter).
func (s *Scheduler) Discover(id store.ModuleId) {
	s.seenMu.Lock()
	already := s.seen[id]
	s.seen[id] = true
	s.seenMu.Unlock()
	if already {
		return
	}
	s.discovered.Push(id)
}

// Run drives initial (and anything Discovered while running) to
// quiescence: every element either resolved or stuck behind a genuine
// cycle. It returns once no worker is active and the discovery stack is
// empty.
func (s *Scheduler) Run(ctx context.Context, initial []store.ModuleId) error {
	limit := s.Parallelism
	if limit <= 0 {
		limit = 1 << 20 // effectively unbounded
	}
	sem := semaphore.NewWeighted(limit)
	g, gctx := errgroup.WithContext(ctx)

	for _, id := range initial {
		s.Discover(id)
	}

	done := make(chan struct{})
	go func() {
		<-gctx.Done()
		close(done)
	}()

	for {
		if id, ok := s.discovered.Pop(); ok {
			s.active.Add(1)
			if err := sem.Acquire(gctx, 1); err != nil {
				s.active.Add(-1)
				break
			}
			g.Go(func() (err error) {
				defer sem.Release(1)
				defer s.active.Add(-1)
				defer s.discovered.Nudge() // wake the dispatcher to re-check quiescence
				defer func() {
					if r := recover(); r != nil {
						err = mosserr.RecoverPanic(r)
					}
				}()
				s.runModule(id)
				return nil
			})
			continue
		}
		if s.active.Load() == 0 {
			// A worker may have pushed a discovery and finished between the
			// failed Pop above and this check; look once more before stopping.
			if id, ok := s.discovered.Pop(); ok {
				s.discovered.Push(id)
				continue
			}
			break
		}
		s.discovered.Wait(done)
		select {
		case <-gctx.Done():
			return g.Wait()
		default:
		}
	}
	return g.Wait()
}

// runModule forces every element the module currently owns, in scope
// order, matching spec.md §9's "for each locally-owned module not yet
// parsed: ... run each of its elements once" — this also surfaces
// diagnostics on elements nothing happens to Find (dead bindings still get
// their GrammarError/StringEscapeError/etc. reported).
func (s *Scheduler) runModule(id store.ModuleId) {
	module := s.Modules.Module(id)
	if s.Log != nil {
		s.Log.Debugw("worker starting module", "module", id)
	}

	// A call specialized into this module during one pass appends fresh
	// scopes/elements that the in-flight Arena.Each (which snapshots
	// length at call time) won't visit. Re-scan until a full pass adds
	// nothing new, so self-recursive/self-referential call chains within
	// one module still get every cloned element its own top-level force.
	for {
		before := module.Scopes.Len()
		module.Scopes.Each(func(_ store.ScopeId, sc *store.Scope) {
			for _, name := range sc.NameOrder {
				s.Eval.Resolve(module, sc.Names[name])
			}
			for _, t := range sc.Temps {
				s.Eval.Resolve(module, t)
			}
		})
		if module.Scopes.Len() == before {
			break
		}
	}

	if s.Log != nil {
		s.Log.Debugw("worker quiescent on module", "module", id, "unresolved", module.UnresolvedCount)
	}
}
