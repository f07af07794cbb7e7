package interp

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mosslang/resolver/internal/config"
	"github.com/mosslang/resolver/internal/store"
)

func TestMain(m *testing.M) {
	v := m.Run()
	snaps.Clean(m)
	os.Exit(v)
}

// newWorkspace materializes files under a fresh temp directory's src/
// subdirectory and returns an Interpreter configured over it.
func newWorkspace(t *testing.T, files map[string]string) *Interpreter {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default(dir)
	require.NoError(t, os.MkdirAll(cfg.SourcePath(), 0o755))
	for name, content := range files {
		path := filepath.Join(cfg.SourcePath(), name+cfg.Extension)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return New(cfg, nil)
}

func mustAddAndRun(t *testing.T, ip *Interpreter) store.ModuleId {
	t.Helper()
	moduleId, err := ip.AddModule(nil)
	require.NoError(t, err)
	require.NoError(t, ip.Run(context.Background()))
	return moduleId
}

func rootBinding(t *testing.T, ip *Interpreter, moduleId store.ModuleId, name string) (store.TypedValue, bool) {
	t.Helper()
	module, ok := ip.GetModule(moduleId)
	require.True(t, ok)
	require.NotNil(t, module.Root)
	scope := module.Scopes.Get(*module.Root)
	id, ok := scope.Names[ip.concurrent.Intern(name)]
	if !ok {
		return store.TypedValue{}, false
	}
	return ip.GetElementValue(moduleId, id)
}

// Scenario 1: x = 1; y = x; — both resolve, no diagnostics.
func TestScenarioSimple(t *testing.T) {
	ip := newWorkspace(t, map[string]string{"main": `x = 1; y = x;`})
	moduleId := mustAddAndRun(t, ip)

	x, ok := rootBinding(t, ip, moduleId, "x")
	require.True(t, ok)
	assert.Equal(t, store.IntValue(1), x.Value)

	y, ok := rootBinding(t, ip, moduleId, "y")
	require.True(t, ok)
	assert.Equal(t, store.IntValue(1), y.Value)

	assert.Empty(t, ip.Diagnostics(moduleId))
}

// Scenario 2: s = { a = 3; b = a; }; v = s.b; — dotted lookup reaches 3.
func TestScenarioDottedLookup(t *testing.T) {
	ip := newWorkspace(t, map[string]string{"main": `s = { a = 3; b = a; }; v = s.b;`})
	moduleId := mustAddAndRun(t, ip)

	v, ok := rootBinding(t, ip, moduleId, "v")
	require.True(t, ok)
	assert.Equal(t, store.IntValue(3), v.Value)
}

// Scenario 3: mod "lib" imports lib.ms lazily; re-running after clear()
// gives identical values.
func TestScenarioModImport(t *testing.T) {
	ip := newWorkspace(t, map[string]string{
		"lib":  `pi = 3;`,
		"main": `m = mod "lib"; n = m.pi;`,
	})

	moduleId := mustAddAndRun(t, ip)
	n, ok := rootBinding(t, ip, moduleId, "n")
	require.True(t, ok)
	assert.Equal(t, store.IntValue(3), n.Value)

	m, ok := rootBinding(t, ip, moduleId, "m")
	require.True(t, ok)
	assert.Equal(t, store.VScope, m.Value.Kind)

	ip.Clear()
	moduleId2 := mustAddAndRun(t, ip)
	n2, ok := rootBinding(t, ip, moduleId2, "n")
	require.True(t, ok)
	assert.Equal(t, n.Value, n2.Value)
}

// Scenario 4: a = b; b = a; — no panic, bounded termination (Run returning
// at all proves it), and the cycle is reported rather than silently
// dropped. This implementation's synchronous, memoized Resolve (see
// DESIGN.md) settles each side of a genuine cycle to Value::Err rather
// than leaving it permanently unresolved as spec.md's scenario literally
// states — the element revisited mid-chain is what carries the
// ElementCycle diagnostic, and both sides end up Resolved precisely
// because that revisit's Err return value propagates back out through the
// Ref each side memoized itself into.
func TestScenarioCycle(t *testing.T) {
	ip := newWorkspace(t, map[string]string{"main": `a = b; b = a;`})
	moduleId := mustAddAndRun(t, ip)

	a, aResolved := rootBinding(t, ip, moduleId, "a")
	b, bResolved := rootBinding(t, ip, moduleId, "b")
	require.True(t, aResolved)
	require.True(t, bResolved)
	assert.Equal(t, store.VErr, a.Value.Kind)
	assert.Equal(t, store.VErr, b.Value.Kind)

	diags := ip.Diagnostics(moduleId)
	require.Len(t, diags, 1)
	assert.Equal(t, "ElementCycle", string(diags[0].Kind))
}

// Scenario 5: k = 1; k = 2; — first binding wins, one RedundantElementKey.
func TestScenarioDuplicateKey(t *testing.T) {
	ip := newWorkspace(t, map[string]string{"main": `k = 1; k = 2;`})
	moduleId := mustAddAndRun(t, ip)

	k, ok := rootBinding(t, ip, moduleId, "k")
	require.True(t, ok)
	assert.Equal(t, store.IntValue(1), k.Value)

	diags := ip.Diagnostics(moduleId)
	require.Len(t, diags, 1)
	assert.Equal(t, "RedundantElementKey", string(diags[0].Kind))
}

// Scenario 6: f = x -> { y = x; }; r = f 7; v = r.y; — specializing the same
// function twice in one run yields independent scopes.
func TestScenarioFunctionSpecialization(t *testing.T) {
	ip := newWorkspace(t, map[string]string{
		"main": `f = x -> { y = x; }; r = f 7; v = r.y; r2 = f 9; v2 = r2.y;`,
	})
	moduleId := mustAddAndRun(t, ip)

	v, ok := rootBinding(t, ip, moduleId, "v")
	require.True(t, ok)
	assert.Equal(t, store.IntValue(7), v.Value)

	v2, ok := rootBinding(t, ip, moduleId, "v2")
	require.True(t, ok)
	assert.Equal(t, store.IntValue(9), v2.Value)

	r, ok := rootBinding(t, ip, moduleId, "r")
	require.True(t, ok)
	r2, ok := rootBinding(t, ip, moduleId, "r2")
	require.True(t, ok)
	assert.NotEqual(t, r.Value.Scope.Local, r2.Value.Scope.Local, "each call must get its own cloned scope")
}

// Parallelism determinism: the same program resolves to the same root
// bindings regardless of worker-pool width.
func TestDeterminismAcrossParallelism(t *testing.T) {
	const src = `a = 1; b = a; c = { d = b; }; e = c.d; f = mod "lib"; g = f.pi;`
	libSrc := `pi = 5;`

	var baseline map[string]store.Value
	for _, p := range []int64{1, 2, 4, 8} {
		dir := t.TempDir()
		cfg := config.Default(dir)
		cfg.Parallelism = p
		require.NoError(t, os.MkdirAll(cfg.SourcePath(), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(cfg.SourcePath(), "main.ms"), []byte(src), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(cfg.SourcePath(), "lib.ms"), []byte(libSrc), 0o644))

		ip := New(cfg, nil)
		moduleId := mustAddAndRun(t, ip)

		got := map[string]store.Value{}
		for _, name := range []string{"a", "b", "e", "g"} {
			tv, ok := rootBinding(t, ip, moduleId, name)
			require.True(t, ok, "parallelism=%d name=%s", p, name)
			got[name] = tv.Value
		}

		if baseline == nil {
			baseline = got
			continue
		}
		for name, v := range got {
			assert.Equal(t, baseline[name], v, "parallelism=%d diverged on %q", p, name)
		}
	}
}

// Snapshot coverage: diagnostics output text is stable across the fixed set
// of scenarios that produce any.
func TestDiagnosticSnapshots(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"cycle", `a = b; b = a;`},
		{"duplicate_key", `k = 1; k = 2;`},
		{"bad_escape", `s = "a\qb";`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ip := newWorkspace(t, map[string]string{"main": tc.src})
			moduleId := mustAddAndRun(t, ip)
			diags := ip.Diagnostics(moduleId)

			var kinds []string
			for _, d := range diags {
				kinds = append(kinds, string(d.Kind))
			}
			snaps.MatchSnapshot(t, tc.name, kinds)
		})
	}
}
