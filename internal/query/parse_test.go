package query

import "testing"

func TestParseTypeComplex(t *testing.T) {
	t.Parallel()
	c := newCursor("&mut [Option<i32>]")
	got, ok := parseType(c)
	if !ok {
		t.Fatalf("parseType failed")
	}
	ref, ok := got.(BorrowedRef)
	if !ok || !ref.IsMut {
		t.Fatalf("expected mutable borrowed ref, got %#v", got)
	}
	sl, ok := ref.Inner.(Slice)
	if !ok {
		t.Fatalf("expected slice inner, got %#v", ref.Inner)
	}
	path, ok := sl.Elem.(UnresolvedPath)
	if !ok || path.Name != "Option" {
		t.Fatalf("expected Option<i32> inner, got %#v", sl.Elem)
	}
	if path.Args == nil || len(path.Args.Args) != 1 {
		t.Fatalf("expected one generic arg, got %#v", path.Args)
	}
	if prim, ok := path.Args.Args[0].(Primitive); !ok || prim.Name != "i32" {
		t.Fatalf("expected i32 arg, got %#v", path.Args.Args[0])
	}
}

func TestParseTypeRawPointerTuple(t *testing.T) {
	t.Parallel()
	c := newCursor("*const (i32, &str, T)")
	got, ok := parseType(c)
	if !ok {
		t.Fatalf("parseType failed")
	}
	ptr, ok := got.(RawPointer)
	if !ok || ptr.IsMut {
		t.Fatalf("expected const raw pointer, got %#v", got)
	}
	tup, ok := ptr.Inner.(Tuple)
	if !ok || len(tup.Elems) != 3 {
		t.Fatalf("expected 3-tuple, got %#v", ptr.Inner)
	}
	if _, ok := tup.Elems[0].(Primitive); !ok {
		t.Fatalf("expected primitive first elem, got %#v", tup.Elems[0])
	}
	if _, ok := tup.Elems[1].(BorrowedRef); !ok {
		t.Fatalf("expected borrowed ref second elem, got %#v", tup.Elems[1])
	}
	if g, ok := tup.Elems[2].(Generic); !ok || g.Name != "T" {
		t.Fatalf("expected generic T third elem, got %#v", tup.Elems[2])
	}
}

func TestParseTypeWildcardGenericArg(t *testing.T) {
	t.Parallel()
	c := newCursor("Result<_, E>")
	got, ok := parseType(c)
	if !ok {
		t.Fatalf("parseType failed")
	}
	path, ok := got.(UnresolvedPath)
	if !ok || path.Name != "Result" {
		t.Fatalf("expected Result path, got %#v", got)
	}
	if path.Args == nil || len(path.Args.Args) != 2 {
		t.Fatalf("expected 2 generic args, got %#v", path.Args)
	}
	if path.Args.Args[0] != nil {
		t.Fatalf("expected wildcard first arg, got %#v", path.Args.Args[0])
	}
	if g, ok := path.Args.Args[1].(Generic); !ok || g.Name != "E" {
		t.Fatalf("expected generic E second arg, got %#v", path.Args.Args[1])
	}
}

func TestParseFunctionDeclWithUnderscore(t *testing.T) {
	t.Parallel()
	c := newCursor("(_, y: &str) -> ()")
	decl, ok := parseFunctionDecl(c)
	if !ok {
		t.Fatalf("parseFunctionDecl failed")
	}
	if decl.Inputs == nil || len(*decl.Inputs) != 2 {
		t.Fatalf("expected 2 inputs, got %#v", decl.Inputs)
	}
	first := (*decl.Inputs)[0]
	if first.Name != nil || first.Type != nil {
		t.Fatalf("expected fully wildcard first arg, got %#v", first)
	}
	second := (*decl.Inputs)[1]
	if second.Name == nil || *second.Name != "y" {
		t.Fatalf("expected named second arg y, got %#v", second)
	}
	if decl.Output == nil || decl.Output.Kind != DefaultReturnKind {
		t.Fatalf("expected default return for explicit unit, got %#v", decl.Output)
	}
}

func TestParseQueryQualified(t *testing.T) {
	t.Parallel()
	q, err := ParseQuery("pub async fn foo(bar: i32, _: &str) -> bool")
	if err != nil {
		t.Fatalf("ParseQuery failed: %v", err)
	}
	if q.Name == nil || *q.Name != "foo" {
		t.Fatalf("expected name foo, got %#v", q.Name)
	}
	if q.Kind == nil || q.Kind.FunctionQuery == nil {
		t.Fatalf("expected function query, got %#v", q.Kind)
	}
	fq := q.Kind.FunctionQuery
	if _, ok := fq.Qualifiers[QualifierAsync]; !ok {
		t.Fatalf("expected async qualifier, got %#v", fq.Qualifiers)
	}
	if len(fq.Qualifiers) != 1 {
		t.Fatalf("expected exactly one qualifier (pub is dropped), got %#v", fq.Qualifiers)
	}
	if decl := fq.Decl; decl.Inputs == nil || len(*decl.Inputs) != 2 {
		t.Fatalf("expected 2 inputs, got %#v", decl.Inputs)
	}
}

// TestParseQueryBareNameHasNoName documents a quirk inherited from upstream:
// a name atom is only recognized after at least one leading space (name
// parsing is gated on skipSpace1, mirroring nom's
// opt(preceded(multispace1, parse_symbol))), so a bare name with nothing
// before it never matches and the query comes back empty instead of
// carrying the text as a name.
func TestParseQueryBareNameHasNoName(t *testing.T) {
	t.Parallel()
	q, err := ParseQuery("foo")
	if err != nil {
		t.Fatalf("ParseQuery failed: %v", err)
	}
	if q.Name != nil {
		t.Fatalf("expected no name for a bare query, got %#v", *q.Name)
	}
}

func TestParseQueryNestedGenericReturn(t *testing.T) {
	t.Parallel()
	q, err := ParseQuery("fn abc() -> Result<Vec<i32>>")
	if err != nil {
		t.Fatalf("ParseQuery failed: %v", err)
	}
	if q.Name == nil || *q.Name != "abc" {
		t.Fatalf("expected name abc, got %#v", q.Name)
	}
	fq := q.Kind.FunctionQuery
	if fq.Decl.Inputs == nil || len(*fq.Decl.Inputs) != 0 {
		t.Fatalf("expected empty input list, got %#v", fq.Decl.Inputs)
	}
	if fq.Decl.Output == nil || fq.Decl.Output.Kind != ReturnKind {
		t.Fatalf("expected explicit return type, got %#v", fq.Decl.Output)
	}
	path, ok := fq.Decl.Output.Type.(UnresolvedPath)
	if !ok || path.Name != "Result" {
		t.Fatalf("expected Result return, got %#v", fq.Decl.Output.Type)
	}
	inner, ok := path.Args.Args[0].(UnresolvedPath)
	if !ok || inner.Name != "Vec" {
		t.Fatalf("expected Vec<i32> nested, got %#v", path.Args.Args[0])
	}
}

func TestParseGenericVsPathDisambiguation(t *testing.T) {
	t.Parallel()
	c := newCursor("Option")
	got, ok := parseType(c)
	if !ok {
		t.Fatalf("parseType failed")
	}
	if _, ok := got.(UnresolvedPath); !ok {
		t.Fatalf("expected Option to parse as a path (CamelCase, not all-uppercase), got %#v", got)
	}

	c = newCursor("T")
	got, ok = parseType(c)
	if !ok {
		t.Fatalf("parseType failed")
	}
	if g, ok := got.(Generic); !ok || g.Name != "T" {
		t.Fatalf("expected bare uppercase T to parse as Generic, got %#v", got)
	}
}
