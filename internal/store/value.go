package store

// ValueKind tags the active field of a Value.
type ValueKind int

const (
	VInt ValueKind = iota
	VString
	VScope
	VFunction
	VParam
	VBuiltin
	VElement
	VIntTy
	VStringTy
	VScopeTy
	VTyTy
	VFunctionTy
	VTrivial
	VErr
)

func (k ValueKind) String() string {
	switch k {
	case VInt:
		return "Int"
	case VString:
		return "String"
	case VScope:
		return "Scope"
	case VFunction:
		return "Function"
	case VParam:
		return "Param"
	case VBuiltin:
		return "Builtin"
	case VElement:
		return "Element"
	case VIntTy:
		return "IntTy"
	case VStringTy:
		return "StringTy"
	case VScopeTy:
		return "ScopeTy"
	case VTyTy:
		return "TyTy"
	case VFunctionTy:
		return "FunctionTy"
	case VTrivial:
		return "Trivial"
	case VErr:
		return "Err"
	default:
		return "Unknown"
	}
}

// BuiltinKind enumerates the built-in functions. If and Add are defined
// (SPEC_FULL.md §4.5 resolves the spec's open question); Mod and Diagnose
// match spec.md exactly.
type BuiltinKind int

const (
	BuiltinIf BuiltinKind = iota
	BuiltinAdd
	BuiltinMod
	BuiltinDiagnose
)

func (k BuiltinKind) String() string {
	switch k {
	case BuiltinIf:
		return "if"
	case BuiltinAdd:
		return "add"
	case BuiltinMod:
		return "mod"
	case BuiltinDiagnose:
		return "diagnose"
	default:
		return "unknown-builtin"
	}
}

// ParamId identifies a function's own formal parameter as the owner of a
// Value{Kind: VParam}. The specializer uses this to tell an element whose
// value is "the function's own argument" (substituted with PARAM_ELEMENT_ID)
// apart from a reference into some other, enclosing function's parameter (a
// capture).
type ParamId struct {
	Owner GlobalFuncId
}

// BuiltinPartial represents a builtin mid-currying: e.g. `add 3` is a
// partial application of BuiltinAdd with Args=[Int(3)], itself callable
// with the remaining argument(s). This realizes spec.md §4.5's "currying
// ... an internal device for partial application" as a dedicated value
// rather than routing through the Function/Param specializer machinery —
// see DESIGN.md for why.
//
// Elems holds arguments curried in WITHOUT dereferencing them: If's
// `then`/`else` branches must stay lazy (the unchosen branch element is
// never depended on), so they're carried as element references here rather
// than forced into Args like Add's operands and If's own condition are.
type BuiltinPartial struct {
	Kind  BuiltinKind
	Args  []Value
	Elems []GlobalElemId
}

// Value is a tagged union over every runtime value the language produces,
// plus its own type tag (every Value in this repository also implies a
// TypeTag() without a separate companion "type value" allocation — see
// TypedValue).
type Value struct {
	Kind ValueKind

	Int     int64
	Str     StringId
	Scope   GlobalScopeId
	Func    GlobalFuncId
	Param   ParamId
	Builtin BuiltinKind
	Partial *BuiltinPartial
	Element GlobalElemId
}

// IntValue, StringValue, ... are convenience constructors used throughout
// the evaluator and builtins.
func IntValue(n int64) Value                { return Value{Kind: VInt, Int: n} }
func StringValue(s StringId) Value          { return Value{Kind: VString, Str: s} }
func ScopeValue(id GlobalScopeId) Value     { return Value{Kind: VScope, Scope: id} }
func FunctionValue(id GlobalFuncId) Value   { return Value{Kind: VFunction, Func: id} }
func ParamValue(owner GlobalFuncId) Value   { return Value{Kind: VParam, Param: ParamId{Owner: owner}} }
func BuiltinValue(k BuiltinKind) Value      { return Value{Kind: VBuiltin, Builtin: k} }
func ElementValue(id GlobalElemId) Value    { return Value{Kind: VElement, Element: id} }
func ErrValue() Value                       { return Value{Kind: VErr} }
func TrivialValue() Value                   { return Value{Kind: VTrivial} }
func PartialValue(p *BuiltinPartial) Value  { return Value{Kind: VBuiltin, Builtin: p.Kind, Partial: p} }

// TypeTag returns the type-value corresponding to v's kind (IntTy for an
// Int, and so on); type values themselves report TyTy.
func (v Value) TypeTag() Value {
	switch v.Kind {
	case VInt:
		return Value{Kind: VIntTy}
	case VString:
		return Value{Kind: VStringTy}
	case VScope:
		return Value{Kind: VScopeTy}
	case VFunction:
		return Value{Kind: VFunctionTy}
	case VIntTy, VStringTy, VScopeTy, VTyTy, VFunctionTy:
		return Value{Kind: VTyTy}
	default:
		return Value{Kind: VTyTy}
	}
}

// TypedValue pairs a Value with its companion type, matching spec.md's
// `TypedValue = { value, type }`.
type TypedValue struct {
	Value Value
	Type  Value
}

// Typed wraps v together with its derived type tag.
func Typed(v Value) TypedValue {
	return TypedValue{Value: v, Type: v.TypeTag()}
}
