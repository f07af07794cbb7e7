package cmd

import (
	"fmt"

	"github.com/mosslang/resolver/interp"
	"github.com/mosslang/resolver/internal/store"
)

// formatValue renders a resolved TypedValue the way a debugging CLI would:
// enough to eyeball a run's result table, not a full re-serialization of
// the language's own syntax.
func formatValue(ip *interp.Interpreter, tv store.TypedValue) string {
	switch tv.Value.Kind {
	case store.VInt:
		return fmt.Sprintf("%d", tv.Value.Int)
	case store.VString:
		return fmt.Sprintf("%q", ip.ResolveString(tv.Value.Str))
	case store.VScope:
		return "<scope>"
	case store.VFunction:
		return "<function>"
	case store.VBuiltin:
		return fmt.Sprintf("<builtin %s>", tv.Value.Builtin)
	case store.VElement:
		return "<element>"
	case store.VTrivial:
		return "trivial"
	case store.VErr:
		return "<error>"
	default:
		return fmt.Sprintf("<%s>", tv.Value.Kind)
	}
}

// printScopeBindings prints every named binding of scopeId itself (not its
// child scopes), one line per name, in source order: resolved values formatted via
// formatValue, unresolved ones as "<unresolved>".
func printScopeBindings(ip *interp.Interpreter, moduleId store.ModuleId, scopeId store.ScopeId) {
	module, ok := ip.GetModule(moduleId)
	if !ok {
		return
	}
	scope := module.Scopes.Get(scopeId)
	for _, name := range scope.NameOrder {
		id := scope.Names[name]
		tv, resolved := ip.GetElementValue(moduleId, id)
		if !resolved {
			fmt.Printf("%s = <unresolved>\n", ip.ResolveString(name))
			continue
		}
		fmt.Printf("%s = %s\n", ip.ResolveString(name), formatValue(ip, tv))
	}
}
