// Package interp is the resolver's facade (spec.md §6's Interpreter API),
// tying together intern/store/lower/evaluator/specializer/scheduler the way
// the teacher's internal/interp package ties together its own pipeline
// stages, and implementing evaluator.Loader so the `mod` builtin can reach
// back into file I/O and lowering.
package interp

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/mosslang/resolver/internal/config"
	"github.com/mosslang/resolver/internal/diag"
	"github.com/mosslang/resolver/internal/evaluator"
	"github.com/mosslang/resolver/internal/intern"
	"github.com/mosslang/resolver/internal/lexer"
	"github.com/mosslang/resolver/internal/lower"
	"github.com/mosslang/resolver/internal/obslog"
	"github.com/mosslang/resolver/internal/parser"
	"github.com/mosslang/resolver/internal/scheduler"
	"github.com/mosslang/resolver/internal/store"
)

// entryModule is the conventional path `add_module(None)` loads — moss has
// no notion of a distinguished "main" file in spec.md, so this names the
// one this implementation picks.
const entryModule = "main"

// Interpreter is the top-level façade: New/Clear/Init/AddModule/Run/
// FindFile/GetFile/GetModule/GetElementValue, matching spec.md §6.
type Interpreter struct {
	cfg config.Config
	log *obslog.Logger

	interner   *intern.Interner
	concurrent *intern.ConcurrentInterner

	eval  *evaluator.Evaluator
	sched *scheduler.Scheduler

	// mu guards the maps below. Worker goroutines also take it during Run
	// (Module lookups, and LoadModule for `mod`-discovered modules, which
	// holds it while parsing and lowering the new module).
	mu           sync.Mutex
	files        map[store.FileId]*store.File
	fileByPath   map[string]store.FileId
	nextFileId   store.FileId
	modules      map[store.ModuleId]*store.Module
	moduleByPath map[string]store.ModuleId
	nextModuleId store.ModuleId
}

// New builds an Interpreter over cfg. log may be nil (obslog.Nop() is
// used).
func New(cfg config.Config, log *obslog.Logger) *Interpreter {
	if log == nil {
		log = obslog.Nop()
	}
	ip := &Interpreter{
		cfg:          cfg,
		log:          log,
		files:        map[store.FileId]*store.File{},
		fileByPath:   map[string]store.FileId{},
		modules:      map[store.ModuleId]*store.Module{},
		moduleByPath: map[string]store.ModuleId{},
	}
	ip.Init()
	return ip
}

// Init (re)builds the interner and evaluator/scheduler collaborators. Safe
// to call again after Clear.
func (ip *Interpreter) Init() {
	ip.interner = intern.New()
	ip.concurrent = intern.NewFromSingleThread(ip.interner)
	ip.eval = evaluator.New(ip, ip, ip.concurrent)
	ip.sched = scheduler.New(ip.eval, ip, ip.cfg.Parallelism, ip.log)
}

// Clear discards every loaded file/module and resets the interner, as
// spec.md's clear() — only valid to call when no Run is in flight.
func (ip *Interpreter) Clear() {
	ip.mu.Lock()
	defer ip.mu.Unlock()
	ip.files = map[store.FileId]*store.File{}
	ip.fileByPath = map[string]store.FileId{}
	ip.modules = map[store.ModuleId]*store.Module{}
	ip.moduleByPath = map[string]store.ModuleId{}
	ip.nextFileId = 0
	ip.nextModuleId = 0
	ip.Init()
}

// AddModule loads and lowers the module at relativePath (or entryModule if
// nil), returning its id. Mirrors spec.md's add_module(Option<relative_path>);
// unlike the spec's deferred version this resolves synchronously (see
// DESIGN.md), which is fine to call before Run (the common case) or
// concurrently with Run (equivalent to a `mod` reference discovering it).
func (ip *Interpreter) AddModule(relativePath *string) (store.ModuleId, error) {
	p := entryModule
	if relativePath != nil {
		p = *relativePath
	}
	scope, err := ip.LoadModule(p)
	if err != nil {
		return 0, err
	}
	return scope.Module, nil
}

// LoadModule implements evaluator.Loader for the `mod` builtin: locate or
// create-and-lower the module at path, returning its root scope. Safe for
// concurrent callers — serialized internally by ip.mu.
func (ip *Interpreter) LoadModule(path string) (store.GlobalScopeId, error) {
	ip.mu.Lock()
	if id, ok := ip.moduleByPath[path]; ok {
		module := ip.modules[id]
		ip.mu.Unlock()
		return store.Global(module.ID, *module.Root), nil
	}

	filePath := ip.cfg.FilePath(path)
	text, err := os.ReadFile(filePath)
	if err != nil {
		ip.mu.Unlock()
		return store.GlobalScopeId{}, fmt.Errorf("mod %q: %w", path, err)
	}

	fileId := ip.nextFileId
	ip.nextFileId++
	file := &store.File{ID: fileId, Path: filePath, Text: string(text)}
	ip.files[fileId] = file
	ip.fileByPath[filePath] = fileId

	l := lexer.New(string(text))
	p := parser.New(l)
	src := p.ParseSourceFile()
	file.Source = src

	moduleId := ip.nextModuleId
	ip.nextModuleId++
	module := store.NewModule(moduleId)
	ip.modules[moduleId] = module
	ip.moduleByPath[path] = moduleId
	file.IsModule = &moduleId

	for _, lerr := range mergeLexParseErrors(l, p) {
		ip.log.Debugw("parse error", "file", filePath, "error", lerr)
	}

	// Always lower through the concurrent interner: a module can be lowered
	// before the parallel phase (the initial add_module calls) or during it
	// (a `mod` reference a worker goroutine just discovered), and the
	// single-thread Interner is unsynchronized across those callers.
	root := lower.File(module, src, ip.concurrent)
	ip.mu.Unlock()
	ip.sched.Discover(moduleId)
	ip.log.Debugw("module loaded", "path", path, "module", moduleId)
	return store.Global(moduleId, root), nil
}

func mergeLexParseErrors(l *lexer.Lexer, p *parser.Parser) []string {
	var out []string
	for _, e := range l.Errors() {
		out = append(out, e.Error())
	}
	for _, e := range p.Errors() {
		out = append(out, e.Error())
	}
	return out
}

// Module implements evaluator.ModuleRegistry / scheduler.ModuleRegistry.
func (ip *Interpreter) Module(id store.ModuleId) *store.Module {
	ip.mu.Lock()
	defer ip.mu.Unlock()
	return ip.modules[id]
}

// GetModule is Module with an explicit found flag, spec.md's
// get_module(ModuleId).
func (ip *Interpreter) GetModule(id store.ModuleId) (*store.Module, bool) {
	ip.mu.Lock()
	defer ip.mu.Unlock()
	m, ok := ip.modules[id]
	return m, ok
}

// FindFile is spec.md's find_file(path) → Option<FileId>.
func (ip *Interpreter) FindFile(path string) (store.FileId, bool) {
	ip.mu.Lock()
	defer ip.mu.Unlock()
	id, ok := ip.fileByPath[path]
	return id, ok
}

// GetFile is spec.md's get_file(FileId).
func (ip *Interpreter) GetFile(id store.FileId) (*store.File, bool) {
	ip.mu.Lock()
	defer ip.mu.Unlock()
	f, ok := ip.files[id]
	return f, ok
}

// GetElementValue is spec.md's get_element_value(ElementId) → Option<TypedValue>,
// adapted to this Go implementation's module-scoped ElementId: it never
// forces evaluation, only reports what's already resolved (the remote
// view's passive read path — see DESIGN.md).
func (ip *Interpreter) GetElementValue(module store.ModuleId, id store.ElementId) (store.TypedValue, bool) {
	m, ok := ip.GetModule(module)
	if !ok {
		return store.TypedValue{}, false
	}
	el := m.Elements.Get(id)
	if el.Remote == nil {
		return store.TypedValue{}, false
	}
	return m.Remote.Read(*el.Remote)
}

// Diagnostics collects every diagnostic attached anywhere in module: its
// own scopes' (RedundantElementKey) and elements' (everything else).
func (ip *Interpreter) Diagnostics(moduleId store.ModuleId) []diag.Diagnostic {
	m, ok := ip.GetModule(moduleId)
	if !ok {
		return nil
	}
	var out []diag.Diagnostic
	m.Scopes.Each(func(_ store.ScopeId, sc *store.Scope) {
		out = append(out, sc.Diagnostics...)
	})
	m.Elements.Each(func(_ store.ElementId, el *store.Element) {
		out = append(out, el.Diagnostics...)
	})
	return out
}

// ResolveString resolves id back to text via the interner that was live
// while this interpreter's modules were lowered. Safe to call any time
// after construction, including concurrently with a running Run.
func (ip *Interpreter) ResolveString(id store.StringId) string {
	return ip.concurrent.Resolve(id)
}

// FileForModule returns the File a module was lowered from, if any (a
// module created before its file exists, which this implementation never
// does, would report false).
func (ip *Interpreter) FileForModule(moduleId store.ModuleId) (*store.File, bool) {
	ip.mu.Lock()
	defer ip.mu.Unlock()
	for _, f := range ip.files {
		if f.IsModule != nil && *f.IsModule == moduleId {
			return f, true
		}
	}
	return nil, false
}

// Modules returns every currently loaded module id, in creation order.
func (ip *Interpreter) Modules() []store.ModuleId {
	ip.mu.Lock()
	defer ip.mu.Unlock()
	ids := make([]store.ModuleId, 0, len(ip.modules))
	for id := store.ModuleId(0); id < ip.nextModuleId; id++ {
		if _, ok := ip.modules[id]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// Run drives every loaded (and, transitively, every `mod`-discovered)
// module to quiescence, spec.md's run() (async).
func (ip *Interpreter) Run(ctx context.Context) error {
	return ip.sched.Run(ctx, nil)
}
