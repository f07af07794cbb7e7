// Package ast defines the typed syntax tree nodes the parser produces.
//
// Every node satisfies Node, giving it the "AST handle" shape the resolver
// depends on regardless of which concrete grammar/parser produced it: a
// Kind, a byte range, and typed field accessors via the concrete struct
// (this package trades a generic tree-sitter cursor for concrete Go types,
// since the grammar lives in-repo rather than behind an external provider).
package ast

import "github.com/mosslang/resolver/internal/lexer"

// Kind identifies the syntactic category of a Node, matching the node-kind
// vocabulary the resolver is specified against.
type Kind int

const (
	KindSourceFile Kind = iota
	KindScope
	KindAssign
	KindBracket
	KindCall
	KindDict
	KindFind
	KindFindMeta
	KindInt
	KindMeta
	KindName
	KindSet
	KindString
	KindStringRaw
	KindStringEscape
	KindFunction
	KindBuiltin
)

func (k Kind) String() string {
	switch k {
	case KindSourceFile:
		return "source_file"
	case KindScope:
		return "scope"
	case KindAssign:
		return "assign"
	case KindBracket:
		return "bracket"
	case KindCall:
		return "call"
	case KindDict:
		return "dict"
	case KindFind:
		return "find"
	case KindFindMeta:
		return "find_meta"
	case KindInt:
		return "int"
	case KindMeta:
		return "meta"
	case KindName:
		return "name"
	case KindSet:
		return "set"
	case KindString:
		return "string"
	case KindStringRaw:
		return "string_raw"
	case KindStringEscape:
		return "string_escape"
	case KindFunction:
		return "function"
	case KindBuiltin:
		return "builtin"
	default:
		return "unknown"
	}
}

// Node is the common handle every syntax-tree node implements: the minimal
// surface the resolver's parser/lowering pass needs, whether or not the
// grammar behind it is this package's recursive-descent parser or some
// other typed-tree provider.
type Node interface {
	Kind() Kind
	StartByte() int
	EndByte() int
	Pos() lexer.Position
}

type base struct {
	start, end int
	pos        lexer.Position
}

func (b base) StartByte() int       { return b.start }
func (b base) EndByte() int         { return b.end }
func (b base) Pos() lexer.Position  { return b.pos }

func newBase(start, end int, pos lexer.Position) base {
	return base{start: start, end: end, pos: pos}
}

// SourceFile is the root node of a parsed module: a flat list of
// assignments that populate the module's root scope.
type SourceFile struct {
	base
	Assigns []*Assign
}

func (*SourceFile) Kind() Kind { return KindSourceFile }

// NewSourceFile constructs a root node.
func NewSourceFile(start, end int, pos lexer.Position, assigns []*Assign) *SourceFile {
	return &SourceFile{base: newBase(start, end, pos), Assigns: assigns}
}

// Assign is a `key = value ;` binding, either at a scope's top level or
// inside a nested scope literal.
type Assign struct {
	base
	Key   *Name
	Value Value
}

func (*Assign) Kind() Kind { return KindAssign }

// NewAssign constructs an assignment node.
func NewAssign(start, end int, pos lexer.Position, key *Name, value Value) *Assign {
	return &Assign{base: newBase(start, end, pos), Key: key, Value: value}
}

// Value is the union of expression node kinds a `value` production can
// yield: Bracket, Call, Dict, Find, FindMeta, Int, Meta, Name, Scope, Set,
// String, Function, Builtin.
type Value interface {
	Node
	valueNode()
}

// Bracket is an explicitly parenthesized expression: `(v)`.
type Bracket struct {
	base
	Inner Value
}

func (*Bracket) Kind() Kind  { return KindBracket }
func (*Bracket) valueNode() {}

func NewBracket(start, end int, pos lexer.Position, inner Value) *Bracket {
	return &Bracket{base: newBase(start, end, pos), Inner: inner}
}

// Call is a function/builtin application written as juxtaposition:
// `func arg`.
type Call struct {
	base
	Func Value
	Arg  Value
}

func (*Call) Kind() Kind  { return KindCall }
func (*Call) valueNode() {}

func NewCall(start, end int, pos lexer.Position, fn, arg Value) *Call {
	return &Call{base: newBase(start, end, pos), Func: fn, Arg: arg}
}

// Dict is a brace-delimited literal container. The lowering pass does not
// define semantics for it (spec's grammar lists it as a value kind without
// prescribing lowering rules); lowering gives it its own case that
// produces a GrammarError and an Err value.
type Dict struct {
	base
	Entries []*Assign
}

func (*Dict) Kind() Kind  { return KindDict }
func (*Dict) valueNode() {}

func NewDict(start, end int, pos lexer.Position, entries []*Assign) *Dict {
	return &Dict{base: newBase(start, end, pos), Entries: entries}
}

// Set is a bracket-delimited literal collection, present in the grammar's
// value union but, like Dict, given no semantics by lowering: it becomes a
// GrammarError and an Err value (see Dict).
type Set struct {
	base
	Elements []Value
}

func (*Set) Kind() Kind  { return KindSet }
func (*Set) valueNode() {}

func NewSet(start, end int, pos lexer.Position, elements []Value) *Set {
	return &Set{base: newBase(start, end, pos), Elements: elements}
}

// Find is a dotted lookup `target.name`.
type Find struct {
	base
	Target Value
	Name   *Name
}

func (*Find) Kind() Kind  { return KindFind }
func (*Find) valueNode() {}

func NewFind(start, end int, pos lexer.Position, target Value, name *Name) *Find {
	return &Find{base: newBase(start, end, pos), Target: target, Name: name}
}

// FindMeta is a dotted meta-lookup `target.@name`: a first-class reference
// to the named binding inside target's scope, without dereferencing it.
type FindMeta struct {
	base
	Target Value
	Name   *Name
}

func (*FindMeta) Kind() Kind  { return KindFindMeta }
func (*FindMeta) valueNode() {}

func NewFindMeta(start, end int, pos lexer.Position, target Value, name *Name) *FindMeta {
	return &FindMeta{base: newBase(start, end, pos), Target: target, Name: name}
}

// Meta is an untargeted meta-lookup `@name`: a first-class reference to the
// nearest enclosing binding named `name`.
type Meta struct {
	base
	Name *Name
}

func (*Meta) Kind() Kind  { return KindMeta }
func (*Meta) valueNode() {}

func NewMeta(start, end int, pos lexer.Position, name *Name) *Meta {
	return &Meta{base: newBase(start, end, pos), Name: name}
}

// Int is a decimal integer literal.
type Int struct {
	base
	Text string
}

func (*Int) Kind() Kind  { return KindInt }
func (*Int) valueNode() {}

func NewInt(start, end int, pos lexer.Position, text string) *Int {
	return &Int{base: newBase(start, end, pos), Text: text}
}

// Name is an identifier, used both as a value (untargeted lookup) and as a
// key node (in Assign.Key and as the Name field of Find/FindMeta/Meta).
type Name struct {
	base
	Text string
}

func (*Name) Kind() Kind  { return KindName }
func (*Name) valueNode() {}

func NewName(start, end int, pos lexer.Position, text string) *Name {
	return &Name{base: newBase(start, end, pos), Text: text}
}

// String is a string literal composed of raw-text and escape-sequence
// segments, matching the grammar's `string(content*)` shape.
type String struct {
	base
	Segments []StringSegment
}

func (*String) Kind() Kind  { return KindString }
func (*String) valueNode() {}

func NewString(start, end int, pos lexer.Position, segments []StringSegment) *String {
	return &String{base: newBase(start, end, pos), Segments: segments}
}

// StringSegment is a child of a String node: either raw text or an escape
// sequence to be interpreted during lowering.
type StringSegment interface {
	Node
	stringSegmentNode()
}

// StringRaw is a run of literal, non-escaped string text.
type StringRaw struct {
	base
	Text string
}

func (*StringRaw) Kind() Kind           { return KindStringRaw }
func (*StringRaw) stringSegmentNode() {}

func NewStringRaw(start, end int, pos lexer.Position, text string) *StringRaw {
	return &StringRaw{base: newBase(start, end, pos), Text: text}
}

// StringEscape is a two-character escape sequence (e.g. `\n`) as written in
// the source, with the leading backslash included in Text.
type StringEscape struct {
	base
	Text string
}

func (*StringEscape) Kind() Kind           { return KindStringEscape }
func (*StringEscape) stringSegmentNode() {}

func NewStringEscape(start, end int, pos lexer.Position, text string) *StringEscape {
	return &StringEscape{base: newBase(start, end, pos), Text: text}
}

// Scope is a brace-delimited nested scope literal: `{ assign* }`.
type Scope struct {
	base
	Assigns []*Assign
}

func (*Scope) Kind() Kind  { return KindScope }
func (*Scope) valueNode() {}

func NewScope(start, end int, pos lexer.Position, assigns []*Assign) *Scope {
	return &Scope{base: newBase(start, end, pos), Assigns: assigns}
}

// Function is a `param -> { ... }` function literal.
type Function struct {
	base
	Param *Name
	Body  *Scope
}

func (*Function) Kind() Kind  { return KindFunction }
func (*Function) valueNode() {}

func NewFunction(start, end int, pos lexer.Position, param *Name, body *Scope) *Function {
	return &Function{base: newBase(start, end, pos), Param: param, Body: body}
}

// Builtin is a reference to a built-in by reserved syntax distinct from an
// ordinary Name lookup. The parser in this repository never emits it (moss
// built-ins are resolved as ordinary prelude-scope names); it is declared so
// the node-kind vocabulary from the grammar is complete. If an alternate
// front end ever produces one, lowering's Builtin case turns it into a
// GrammarError and an Err value.
type Builtin struct {
	base
	Text string
}

func (*Builtin) Kind() Kind  { return KindBuiltin }
func (*Builtin) valueNode() {}

func NewBuiltin(start, end int, pos lexer.Position, text string) *Builtin {
	return &Builtin{base: newBase(start, end, pos), Text: text}
}
