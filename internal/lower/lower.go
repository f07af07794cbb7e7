// Package lower walks a parsed source file's AST and populates a
// store.Module: scopes, elements, and function templates, with every
// literal (Int/String/Scope/Function) resolved immediately and every
// lookup/call left lazy for the evaluator (spec.md §4.3).
package lower

import (
	"strconv"

	"github.com/mosslang/resolver/internal/ast"
	"github.com/mosslang/resolver/internal/diag"
	"github.com/mosslang/resolver/internal/intern"
	"github.com/mosslang/resolver/internal/store"
)

// preludeNames binds every built-in's name to its Value{Kind:VBuiltin} so
// plain lookups like `mod "lib"` (parsed as an ordinary Call of an ordinary
// Name, since this grammar has no separate builtin-reference syntax — see
// ast.Builtin's doc comment) resolve through the normal Find machinery
// instead of needing a special case in the evaluator.
var preludeNames = [...]struct {
	name string
	kind store.BuiltinKind
}{
	{"mod", store.BuiltinMod},
	{"diagnose", store.BuiltinDiagnose},
	{"if", store.BuiltinIf},
	{"add", store.BuiltinAdd},
}

// prelude builds module's one prelude scope: parentless, one depth above
// every file's root scope, holding nothing but the built-in bindings above.
func prelude(module *store.Module, interner intern.StringInterner) store.ScopeId {
	id := module.AddScope(nil, -1, nil)
	for _, b := range preludeNames {
		key := store.NameKey(interner.Intern(b.name))
		module.AddResolvedElement(id, key, nil, store.BuiltinValue(b.kind))
	}
	return id
}

// File lowers a parsed source file into module's root scope, creating it
// if module.Root is not already set (re-lowering an already-lowered module
// is a programming error). The root scope's parent is always a fresh
// prelude scope (see prelude) so every built-in name is in scope from a
// file's top level down, the same way a nested scope's bindings shadow it.
func File(module *store.Module, src *ast.SourceFile, interner intern.StringInterner) store.ScopeId {
	if module.Root != nil {
		panic("lower.File: module already has a root scope")
	}
	preludeId := prelude(module, interner)
	root := module.AddScope(&preludeId, 0, src)
	module.Root = &root
	assigns(module, root, src.Assigns, interner)
	return root
}

// assigns lowers every `key = value;` in a scope body, first-binding-wins
// on duplicate names (store.Scope.Bind handles the diagnostic).
func assigns(module *store.Module, scope store.ScopeId, list []*ast.Assign, interner intern.StringInterner) {
	for _, a := range list {
		key := store.NameKey(interner.Intern(a.Key.Text))
		value(module, scope, key, a.Key, a.Value, interner)
	}
}

// temp lowers an anonymous sub-expression (a Call's func/arg, a Find's
// target) as a Temp element in scope, returning its local id.
func temp(module *store.Module, scope store.ScopeId, v ast.Value, interner intern.StringInterner) store.ElementId {
	return value(module, scope, store.TempKey(), v, v, interner)
}

// value lowers a single value node into a new element bound under key
// (named or temp, per key.IsTemp) and returns its id.
func value(module *store.Module, scope store.ScopeId, key store.ElementKey, keyNode ast.Node, v ast.Value, interner intern.StringInterner) store.ElementId {
	switch n := v.(type) {
	case *ast.Bracket:
		// Transparent: bracket has no semantics of its own, just forwards.
		return value(module, scope, key, keyNode, n.Inner, interner)

	case *ast.Int:
		i, err := strconv.ParseInt(n.Text, 10, 64)
		if err != nil {
			d := diag.New(diag.GrammarError, "malformed integer literal: "+n.Text, n.StartByte(), n.EndByte(), n.Pos())
			return module.AddResolvedElement(scope, key, keyNode, store.ErrValue(), d)
		}
		return module.AddResolvedElement(scope, key, keyNode, store.IntValue(i))

	case *ast.String:
		s, diags := lowerString(n.Segments, interner)
		return module.AddResolvedElement(scope, key, keyNode, store.StringValue(s), diags...)

	case *ast.Name:
		return module.AddLazyElement(scope, key, keyNode, n,
			store.FindExpr(nil, interner.Intern(n.Text), false, n.Pos()))

	case *ast.Meta:
		return module.AddLazyElement(scope, key, keyNode, n,
			store.FindExpr(nil, interner.Intern(n.Name.Text), true, n.Name.Pos()))

	case *ast.Find:
		targetId := temp(module, scope, n.Target, interner)
		target := store.Global(module.ID, targetId)
		return module.AddLazyElement(scope, key, keyNode, n,
			store.FindExpr(&target, interner.Intern(n.Name.Text), false, n.Name.Pos()))

	case *ast.FindMeta:
		targetId := temp(module, scope, n.Target, interner)
		target := store.Global(module.ID, targetId)
		return module.AddLazyElement(scope, key, keyNode, n,
			store.FindExpr(&target, interner.Intern(n.Name.Text), true, n.Name.Pos()))

	case *ast.Call:
		fnId := temp(module, scope, n.Func, interner)
		argId := temp(module, scope, n.Arg, interner)
		return module.AddLazyElement(scope, key, keyNode, n,
			store.CallExpr(store.Global(module.ID, fnId), store.Global(module.ID, argId)))

	case *ast.Scope:
		child := module.AddScope(&scope, module.Scopes.Get(scope).Depth+1, n)
		assigns(module, child, n.Assigns, interner)
		return module.AddResolvedElement(scope, key, keyNode, store.ScopeValue(store.Global(module.ID, child)))

	case *ast.Function:
		_, funcVal := function(module, scope, n, interner)
		return module.AddResolvedElement(scope, key, keyNode, funcVal)

	case *ast.Dict:
		d := diag.New(diag.GrammarError, "dict literals have no lowering rule", n.StartByte(), n.EndByte(), n.Pos())
		return module.AddResolvedElement(scope, key, keyNode, store.ErrValue(), d)

	case *ast.Set:
		d := diag.New(diag.GrammarError, "set literals have no lowering rule", n.StartByte(), n.EndByte(), n.Pos())
		return module.AddResolvedElement(scope, key, keyNode, store.ErrValue(), d)

	case *ast.Builtin:
		d := diag.New(diag.GrammarError, "builtin syntax is not produced by this grammar", n.StartByte(), n.EndByte(), n.Pos())
		return module.AddResolvedElement(scope, key, keyNode, store.ErrValue(), d)

	default:
		d := diag.New(diag.GrammarError, "unknown value node", v.StartByte(), v.EndByte(), v.Pos())
		return module.AddResolvedElement(scope, key, keyNode, store.ErrValue(), d)
	}
}

// function builds a Function's defining scope (its parameter, pre-resolved
// to a Param sentinel value, plus its body's assignments) and the
// FunctionOptimize-triggering "complete" element, and returns the
// function's id and the Value its owning element should resolve to.
func function(module *store.Module, outer store.ScopeId, n *ast.Function, interner intern.StringInterner) (store.FunctionId, store.Value) {
	funcId := module.Functions.Insert(store.Function{})
	fn := store.Global(module.ID, funcId)

	defScope := module.AddScope(&outer, module.Scopes.Get(outer).Depth+1, n.Body)
	paramName := interner.Intern(n.Param.Text)
	paramId := module.AddResolvedElement(defScope, store.NameKey(paramName), n.Param, store.ParamValue(fn))

	assigns(module, defScope, n.Body.Assigns, interner)

	completeId := module.AddLazyElement(defScope, store.TempKey(), n, n, store.FunctionOptimizeExpr(fn))

	*module.Functions.Get(funcId) = store.Function{
		DefiningScope: defScope,
		Param:         paramId,
		Module:        module.ID,
		Complete:      completeId,
	}
	return funcId, store.FunctionValue(fn)
}

// escapeTable maps a StringEscape node's raw text (backslash included) to
// its substituted rune, per SPEC_FULL.md §4.3's escape table.
var escapeTable = map[string]string{
	`\"`: `"`,
	`\\`: `\`,
	`\n`: "\n",
	`\t`: "\t",
	`\r`: "\r",
	`\{`: "{",
	`\}`: "}",
}

// lowerString concatenates a String node's segments into its final text,
// substituting escapes via escapeTable. An unrecognized escape contributes
// nothing to the text and produces exactly one StringEscapeError.
func lowerString(segments []ast.StringSegment, interner intern.StringInterner) (intern.StringId, []diag.Diagnostic) {
	var text string
	var diags []diag.Diagnostic
	for _, seg := range segments {
		switch s := seg.(type) {
		case *ast.StringRaw:
			text += s.Text
		case *ast.StringEscape:
			if repl, ok := escapeTable[s.Text]; ok {
				text += repl
			} else {
				diags = append(diags, diag.New(diag.StringEscapeError,
					"unrecognized escape sequence: "+s.Text,
					s.StartByte(), s.EndByte(), s.Pos()))
			}
		}
	}
	return interner.Intern(text), diags
}
