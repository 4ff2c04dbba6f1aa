// Package query is the type-directed search query language: its AST and a
// hand-written recursive-descent parser that turns a signature fragment
// like "pub async fn foo(bar: i32, _: &str) -> bool" into a Query the
// comparator can match against indexed items (spec.md §4.B).
package query

import "strings"

// Query is the root of a parsed query (spec.md §3 "Query AST").
type Query struct {
	Name *string
	Kind *QueryKind
}

// Args returns the declared argument list of the query's function decl, if
// any — mirrors the original's Query::args() convenience accessor.
func (q Query) Args() []Argument {
	if q.Kind == nil || q.Kind.FunctionQuery == nil {
		return nil
	}
	inputs := q.Kind.FunctionQuery.Decl.Inputs
	if inputs == nil {
		return nil
	}
	return *inputs
}

func (q Query) String() string {
	var b strings.Builder
	b.WriteString("fn")
	if q.Name != nil {
		b.WriteString(" ")
		b.WriteString(*q.Name)
	}
	if q.Kind != nil && q.Kind.FunctionQuery != nil {
		b.WriteString(q.Kind.FunctionQuery.Decl.String())
	}
	return b.String()
}

// QueryKind is non-exhaustive on the Rust side (room for future query
// shapes beyond functions); Go models that with a pointer-per-variant
// struct instead of an interface, since there is exactly one variant today
// and a second would be added the same way.
type QueryKind struct {
	FunctionQuery *Function
}

// Qualifier is one of the three keyword qualifiers the grammar recognizes
// on a function query. `pub`, `extern` and `fn` are parsed but dropped —
// only these three are kept because only these three are compared
// (spec.md §4.B, §4.C item 2).
type Qualifier int

const (
	QualifierAsync Qualifier = iota
	QualifierUnsafe
	QualifierConst
)

func (q Qualifier) String() string {
	switch q {
	case QualifierAsync:
		return "async"
	case QualifierUnsafe:
		return "unsafe"
	case QualifierConst:
		return "const"
	default:
		return "?"
	}
}

type Function struct {
	Decl       FnDecl
	Qualifiers map[Qualifier]struct{}
}

// FnDecl is the parenthesized argument list and optional return type.
// Inputs == nil means the query used ".." (wildcard arg list, don't compare
// arity or arguments at all); Inputs == []Argument{} means an explicit
// empty list `()`.
type FnDecl struct {
	Inputs *[]Argument
	Output *FnRetTy
}

func (d FnDecl) String() string {
	var b strings.Builder
	b.WriteString("(")
	if d.Inputs != nil {
		parts := make([]string, len(*d.Inputs))
		for i, a := range *d.Inputs {
			parts[i] = a.String()
		}
		b.WriteString(strings.Join(parts, ", "))
	} else {
		b.WriteString("..")
	}
	b.WriteString(")")
	if d.Output != nil && d.Output.Kind == ReturnKind {
		b.WriteString(" -> ")
		b.WriteString(RenderType(d.Output.Type))
	}
	return b.String()
}

// Argument is one declared parameter. Name == nil means unnamed/wildcard
// name; Type == nil means unnamed/wildcard type (both independently
// optional, per the grammar's `_` handling in both positions).
type Argument struct {
	Name *string
	Type Type
}

func (a Argument) String() string {
	switch {
	case a.Name != nil && a.Type != nil:
		return *a.Name + ": " + RenderType(a.Type)
	case a.Name != nil:
		return *a.Name + ": _"
	case a.Type != nil:
		return RenderType(a.Type)
	default:
		return "_"
	}
}

type FnRetTyKind int

const (
	ReturnKind FnRetTyKind = iota
	DefaultReturnKind
)

// FnRetTy is the return-type clause: an explicit `-> T`, or the default
// (absent `->`, or an explicit `-> ()`) which the comparator treats as
// "unit return" (spec.md §4.C, FnRetTy comparison rule).
type FnRetTy struct {
	Kind FnRetTyKind
	Type Type
}

// Type is the query-side type tree — deliberately smaller than
// internal/types.Type: a query can only ever name paths, generics,
// primitives, tuples, slices, `!`, raw pointers and references (spec.md
// §4.B grammar). There is no dyn-trait/fn-pointer/impl-trait/qualified-path
// production in the query language.
type Type interface {
	isQueryType()
}

type UnresolvedPath struct {
	Name string
	Args *GenericArgs // nil when no angle-bracketed args were given
}

type Generic struct {
	Name string
}

type Primitive struct {
	Name string
}

// Tuple elements are individually optional: `(i32, _, T)` has a wildcard
// middle slot.
type Tuple struct {
	Elems []Type // nil entry == wildcard slot
}

// Slice's element is optional: `[_]` matches any slice.
type Slice struct {
	Elem Type // nil == wildcard element
}

type Never struct{}

type RawPointer struct {
	IsMut bool
	Inner Type
}

type BorrowedRef struct {
	IsMut bool
	Inner Type
}

func (UnresolvedPath) isQueryType() {}
func (Generic) isQueryType()        {}
func (Primitive) isQueryType()      {}
func (Tuple) isQueryType()          {}
func (Slice) isQueryType()          {}
func (Never) isQueryType()          {}
func (RawPointer) isQueryType()     {}
func (BorrowedRef) isQueryType()    {}

// GenericArgs is the angle-bracketed argument list of an UnresolvedPath. A
// nil Args slot within it is the `_` wildcard.
type GenericArgs struct {
	Args []Type
}

// RenderType renders a query Type back to its surface syntax, used for
// Display and error messages.
func RenderType(t Type) string {
	if t == nil {
		return "_"
	}
	switch v := t.(type) {
	case Primitive:
		return v.Name
	case Generic:
		return v.Name
	case Never:
		return "!"
	case UnresolvedPath:
		if v.Args == nil || len(v.Args.Args) == 0 {
			return v.Name
		}
		parts := make([]string, len(v.Args.Args))
		for i, a := range v.Args.Args {
			parts[i] = RenderType(a)
		}
		return v.Name + "<" + strings.Join(parts, ", ") + ">"
	case Tuple:
		parts := make([]string, len(v.Elems))
		for i, e := range v.Elems {
			parts[i] = RenderType(e)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case Slice:
		return "[" + RenderType(v.Elem) + "]"
	case RawPointer:
		if v.IsMut {
			return "*mut " + RenderType(v.Inner)
		}
		return "*const " + RenderType(v.Inner)
	case BorrowedRef:
		if v.IsMut {
			return "&mut " + RenderType(v.Inner)
		}
		return "&" + RenderType(v.Inner)
	default:
		return "_"
	}
}

// PrimitiveNames lists the grammar's recognized primitive spellings in the
// exact precedence order parse.rs checks them (isize/usize before the i*/u*
// families they'd otherwise prefix-match).
var PrimitiveNames = []string{
	"isize", "i8", "i16", "i32", "i64", "i128",
	"usize", "u8", "u16", "u32", "u64", "u128",
	"f32", "f64", "char", "bool", "str",
}
