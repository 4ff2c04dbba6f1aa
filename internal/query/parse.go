package query

import (
	"fmt"
	"strings"
)

// ParseError reports where a query failed to parse, pointing at the byte
// offset into the original input (spec.md §7, "QueryParse" error kind).
type ParseError struct {
	Input  string
	Offset int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("query parse error at byte %d: %s (near %q)", e.Offset, e.Reason, e.context())
}

func (e *ParseError) context() string {
	rest := e.Input[e.Offset:]
	if len(rest) > 24 {
		return rest[:24] + "..."
	}
	return rest
}

// cursor walks the input left to right, mirroring the &str slicing style of
// the original nom parser: every production takes a cursor and either
// advances it and returns true, or leaves it untouched and returns false.
type cursor struct {
	s   string
	pos int
}

func newCursor(s string) *cursor { return &cursor{s: s} }

func (c *cursor) rest() string { return c.s[c.pos:] }

func (c *cursor) eof() bool { return c.pos >= len(c.s) }

func (c *cursor) peek() byte {
	if c.eof() {
		return 0
	}
	return c.s[c.pos]
}

// skipSpace consumes zero or more ASCII whitespace bytes (nom's multispace0).
func (c *cursor) skipSpace() {
	for !c.eof() && isSpace(c.peek()) {
		c.pos++
	}
}

// skipSpace1 consumes one or more whitespace bytes (nom's multispace1); it
// reports whether at least one byte was consumed, restoring position if not.
func (c *cursor) skipSpace1() bool {
	start := c.pos
	c.skipSpace()
	return c.pos > start
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

func isAsciiDigit(b byte) bool { return b >= '0' && b <= '9' }
func isAsciiAlpha(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
func isAsciiAlphanumeric(b byte) bool { return isAsciiAlpha(b) || isAsciiDigit(b) }
func isAsciiUpper(b byte) bool        { return b >= 'A' && b <= 'Z' }
func isAsciiLower(b byte) bool        { return b >= 'a' && b <= 'z' }

// tag consumes the given literal prefix if present, mirroring nom::tag — a
// plain substring match with no word-boundary check (qualifier keywords can
// therefore prefix-match into a following identifier, same as upstream).
func (c *cursor) tag(lit string) bool {
	if strings.HasPrefix(c.rest(), lit) {
		c.pos += len(lit)
		return true
	}
	return false
}

// ParseQuery parses a full query string (spec.md §4.B). Trailing
// unconsumed input is not an error — like the original, parsing is
// best-effort and stops once a function query has been recognized.
func ParseQuery(input string) (Query, error) {
	c := newCursor(input)
	q, err := parseFunctionQuery(c)
	if err != nil {
		return Query{}, err
	}
	return q, nil
}

func parseFunctionQuery(c *cursor) (Query, error) {
	qualifiers := parseQualifiers(c)

	// A name only matches after at least one leading space, so a bare query
	// with no qualifiers and no preceding space in front of its name (e.g.
	// "foo") never recognizes a name atom at all.
	var name *string
	save := c.pos
	if c.skipSpace1() {
		if sym, ok := parseSymbol(c); ok {
			name = &sym
		} else {
			c.pos = save
		}
	} else {
		c.pos = save
	}

	var decl *FnDecl
	save = c.pos
	c.skipSpace()
	if d, ok := parseFunctionDecl(c); ok {
		decl = &d
	} else {
		c.pos = save
	}

	var kind *QueryKind
	if decl != nil {
		kind = &QueryKind{FunctionQuery: &Function{Decl: *decl, Qualifiers: qualifiers}}
	}

	return Query{Name: name, Kind: kind}, nil
}

// parseQualifiers consumes the leading keyword run (pub/async/unsafe/
// extern/const/fn in any order/repetition) and keeps only the three that
// the comparator checks (spec.md §4.C item 2).
func parseQualifiers(c *cursor) map[Qualifier]struct{} {
	result := map[Qualifier]struct{}{}
	keywords := []string{"pub", "async", "unsafe", "extern", "const", "fn"}
	for {
		save := c.pos
		c.skipSpace()
		matched := false
		for _, kw := range keywords {
			if c.tag(kw) {
				matched = true
				switch kw {
				case "async":
					result[QualifierAsync] = struct{}{}
				case "unsafe":
					result[QualifierUnsafe] = struct{}{}
				case "const":
					result[QualifierConst] = struct{}{}
				}
				break
			}
		}
		if !matched {
			// Leave the whitespace before the name in place for the name gate.
			c.pos = save
			break
		}
	}
	return result
}

// parseSymbol recognizes `(_|alpha)(_|alphanumeric)*`.
func parseSymbol(c *cursor) (string, bool) {
	if c.eof() {
		return "", false
	}
	start := c.pos
	b := c.peek()
	if b != '_' && !isAsciiAlpha(b) {
		return "", false
	}
	c.pos++
	for !c.eof() {
		b := c.peek()
		if b == '_' || isAsciiAlphanumeric(b) {
			c.pos++
			continue
		}
		break
	}
	return c.s[start:c.pos], true
}

// parseFunctionDecl parses the parenthesized argument list and optional
// return type.
func parseFunctionDecl(c *cursor) (FnDecl, bool) {
	if c.peek() != '(' {
		return FnDecl{}, false
	}
	c.pos++ // '('

	var inputs *[]Argument
	switch {
	case c.tag(".."):
		inputs = nil
	case c.peek() == ')':
		empty := []Argument{}
		inputs = &empty
	default:
		args, ok := parseArguments(c)
		if !ok {
			return FnDecl{}, false
		}
		inputs = &args
	}

	c.skipSpace()
	if c.peek() != ')' {
		return FnDecl{}, false
	}
	c.pos++ // ')'

	output := parseOutput(c)

	return FnDecl{Inputs: inputs, Output: output}, true
}

// parseArguments parses a comma-separated argument list up to (not
// including) the closing paren.
func parseArguments(c *cursor) ([]Argument, bool) {
	var args []Argument
	for {
		c.skipSpace()
		if c.eof() || c.peek() == ')' {
			break
		}
		arg, ok := parseOneArgument(c)
		if !ok {
			return nil, false
		}
		args = append(args, arg)
		c.skipSpace()
		if c.peek() == ',' {
			c.pos++
			continue
		}
		break
	}
	if args == nil {
		args = []Argument{}
	}
	return args, true
}

// parseOneArgument tries, in order: a named `name: type` argument, a bare
// `_` wildcard argument, or a bare type used as an unnamed argument.
func parseOneArgument(c *cursor) (Argument, bool) {
	save := c.pos
	if arg, ok := parseArgument(c); ok {
		return arg, true
	}
	c.pos = save

	if c.peek() == '_' {
		c.pos++
		return Argument{Name: nil, Type: nil}, true
	}

	if t, ok := parseType(c); ok {
		return Argument{Name: nil, Type: t}, true
	}
	return Argument{}, false
}

// parseArgument parses `name: type`, where either name or type (never the
// colon) can be `_`.
func parseArgument(c *cursor) (Argument, bool) {
	save := c.pos
	var name *string
	if c.peek() == '_' {
		c.pos++
	} else if sym, ok := parseSymbol(c); ok {
		name = &sym
	}
	if c.peek() != ':' {
		c.pos = save
		return Argument{}, false
	}
	c.pos++
	c.skipSpace()

	var typ Type
	if c.peek() == '_' {
		c.pos++
	} else {
		t, ok := parseType(c)
		if !ok {
			c.pos = save
			return Argument{}, false
		}
		typ = t
	}

	return Argument{Name: name, Type: typ}, true
}

// parseOutput parses the return-type clause. Absent `->` (eof) and an
// explicit `-> ()` both yield DefaultReturn (spec.md §4.C "unit return").
func parseOutput(c *cursor) *FnRetTy {
	save := c.pos
	c.skipSpace()

	if c.tag("->") {
		probe := c.pos
		c.skipSpace()
		if c.tag("()") {
			return &FnRetTy{Kind: DefaultReturnKind}
		}
		c.pos = probe
		if t, ok := parseType(c); ok {
			return &FnRetTy{Kind: ReturnKind, Type: t}
		}
		c.pos = save
		return &FnRetTy{Kind: DefaultReturnKind}
	}

	if c.eof() {
		return &FnRetTy{Kind: DefaultReturnKind}
	}
	c.pos = save
	return &FnRetTy{Kind: DefaultReturnKind}
}

// parseType tries each type production in the grammar's exact precedence
// order (spec.md §4.B): primitive before generic before path, so that e.g.
// "i32" is never mistaken for a path named "i32".
func parseType(c *cursor) (Type, bool) {
	c.skipSpace()

	if t, ok := parsePrimitiveType(c); ok {
		return Primitive{Name: t}, true
	}
	if t, ok := parseGenericType(c); ok {
		return t, true
	}
	if t, ok := parseUnresolvedPath(c); ok {
		return t, true
	}
	if t, ok := parseTuple(c); ok {
		return t, true
	}
	if t, ok := parseSlice(c); ok {
		return t, true
	}
	if c.peek() == '!' {
		c.pos++
		return Never{}, true
	}
	if t, ok := parseRawPointer(c); ok {
		return t, true
	}
	if t, ok := parseBorrowedRef(c); ok {
		return t, true
	}
	return nil, false
}

func parseTuple(c *cursor) (Type, bool) {
	if c.peek() != '(' {
		return nil, false
	}
	save := c.pos
	c.pos++
	var elems []Type
	for {
		c.skipSpace()
		if c.peek() == ')' {
			break
		}
		if c.peek() == '_' {
			c.pos++
			elems = append(elems, nil)
		} else {
			t, ok := parseType(c)
			if !ok {
				c.pos = save
				return nil, false
			}
			elems = append(elems, t)
		}
		c.skipSpace()
		if c.peek() == ',' {
			c.pos++
			continue
		}
		break
	}
	c.skipSpace()
	if c.peek() != ')' {
		c.pos = save
		return nil, false
	}
	c.pos++
	return Tuple{Elems: elems}, true
}

func parseSlice(c *cursor) (Type, bool) {
	if c.peek() != '[' {
		return nil, false
	}
	save := c.pos
	c.pos++
	var elem Type
	if c.peek() == '_' {
		c.pos++
	} else {
		t, ok := parseType(c)
		if !ok {
			c.pos = save
			return nil, false
		}
		elem = t
	}
	if c.peek() != ']' {
		c.pos = save
		return nil, false
	}
	c.pos++
	return Slice{Elem: elem}, true
}

func parseRawPointer(c *cursor) (Type, bool) {
	save := c.pos
	var isMut bool
	switch {
	case c.tag("*mut"):
		isMut = true
	case c.tag("*const"):
		isMut = false
	default:
		return nil, false
	}
	inner, ok := parseType(c)
	if !ok {
		c.pos = save
		return nil, false
	}
	return RawPointer{IsMut: isMut, Inner: inner}, true
}

func parseBorrowedRef(c *cursor) (Type, bool) {
	save := c.pos
	var isMut bool
	switch {
	case c.tag("&mut"):
		isMut = true
	case c.tag("&"):
		isMut = false
	default:
		return nil, false
	}
	inner, ok := parseType(c)
	if !ok {
		c.pos = save
		return nil, false
	}
	return BorrowedRef{IsMut: isMut, Inner: inner}, true
}

func parseUnresolvedPath(c *cursor) (Type, bool) {
	name, ok := parseSymbol(c)
	if !ok {
		return nil, false
	}
	args, _ := parseGenericArgs(c)
	return UnresolvedPath{Name: name, Args: args}, true
}

func parseGenericArgs(c *cursor) (*GenericArgs, bool) {
	if c.peek() != '<' {
		return nil, false
	}
	save := c.pos
	c.pos++
	var args []Type
	for {
		c.skipSpace()
		if c.peek() == '>' {
			break
		}
		if c.peek() == '_' {
			c.pos++
			args = append(args, nil)
		} else {
			t, ok := parseType(c)
			if !ok {
				c.pos = save
				return nil, false
			}
			args = append(args, t)
		}
		c.skipSpace()
		if c.peek() == ',' {
			c.pos++
			continue
		}
		break
	}
	if c.peek() != '>' {
		c.pos = save
		return nil, false
	}
	c.pos++
	return &GenericArgs{Args: args}, true
}

// parseGenericType recognizes a bare run of uppercase ASCII letters (`T`,
// `TE`) not immediately followed by a lowercase letter — the heuristic
// that tells a generic-parameter reference apart from a CamelCase path name
// like `Option` or `TError` (spec.md §4.B, "Generic vs. Path disambiguation").
func parseGenericType(c *cursor) (Type, bool) {
	start := c.pos
	for !c.eof() && isAsciiUpper(c.peek()) {
		c.pos++
	}
	if c.pos == start {
		return nil, false
	}
	if !c.eof() && isAsciiLower(c.peek()) {
		c.pos = start
		return nil, false
	}
	return Generic{Name: c.s[start:c.pos]}, true
}

func parsePrimitiveType(c *cursor) (string, bool) {
	for _, name := range PrimitiveNames {
		if c.tag(name) {
			return name, true
		}
	}
	return "", false
}
