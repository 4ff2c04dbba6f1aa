package compare

import (
	"testing"

	"github.com/alpaylan/ruggle/internal/query"
	"github.com/alpaylan/ruggle/internal/types"
)

func TestCompareSymbolExactMatch(t *testing.T) {
	t.Parallel()
	sim := compareSymbol("foo", "foo")
	if sim.Score() != 0 {
		t.Fatalf("expected score 0 for exact match, got %v", sim.Score())
	}
}

func TestCompareSymbolUsesLastSegment(t *testing.T) {
	t.Parallel()
	sim := compareSymbol("new", "my_crate::Widget::new")
	if sim.Score() != 0 {
		t.Fatalf("expected score 0 matching last path segment, got %v", sim.Score())
	}
}

func TestCompareFunctionEmptyArgsUnitReturn(t *testing.T) {
	t.Parallel()
	q, err := query.ParseQuery("fn foo()")
	if err != nil {
		t.Fatalf("ParseQuery: %v", err)
	}
	item := types.Item{
		Name: "foo",
		Inner: types.FunctionItem{Function: types.Function{
			Decl: types.FunctionSignature{Inputs: nil, Output: nil},
		}},
	}
	sims := CompareQuery(q, item, nil, types.Generics{}, map[string]query.Type{})
	if sims.Score() != 0 {
		t.Fatalf("expected perfect score for fn foo() vs fn foo(), got %v (%#v)", sims.Score(), sims)
	}
}

func TestComparePrimitiveMismatch(t *testing.T) {
	t.Parallel()
	q, err := query.ParseQuery("fn foo(x: i32)")
	if err != nil {
		t.Fatalf("ParseQuery: %v", err)
	}
	item := types.Item{
		Name: "foo",
		Inner: types.FunctionItem{Function: types.Function{
			Decl: types.FunctionSignature{
				Inputs: []types.Argument{{Name: "x", Type: types.Primitive{Name: "bool"}}},
			},
		}},
	}
	sims := CompareQuery(q, item, nil, types.Generics{}, map[string]query.Type{})
	if sims.Score() == 0 {
		t.Fatalf("expected nonzero score for i32 vs bool mismatch")
	}
}

func TestCompareGenericSubstitutionConsistency(t *testing.T) {
	t.Parallel()
	// The candidate is generic over T in both positions; a query naming
	// the same concrete type both times should score better than one that
	// names two different types for the same T (spec.md §4.C, "generic
	// substitution" atom).
	item := types.Item{
		Name: "foo",
		Inner: types.FunctionItem{Function: types.Function{
			Decl: types.FunctionSignature{
				Inputs: []types.Argument{
					{Name: "x", Type: types.Generic{Name: "T"}},
					{Name: "y", Type: types.Generic{Name: "T"}},
				},
			},
		}},
	}

	consistentQ, err := query.ParseQuery("fn foo(x: i32, y: i32)")
	if err != nil {
		t.Fatalf("ParseQuery: %v", err)
	}
	inconsistentQ, err := query.ParseQuery("fn foo(x: i32, y: bool)")
	if err != nil {
		t.Fatalf("ParseQuery: %v", err)
	}

	okScore := CompareQuery(consistentQ, item, nil, types.Generics{}, map[string]query.Type{}).Score()
	badScore := CompareQuery(inconsistentQ, item, nil, types.Generics{}, map[string]query.Type{}).Score()

	if badScore <= okScore {
		t.Fatalf("expected inconsistent substitution to score worse: ok=%v bad=%v", okScore, badScore)
	}
}

func TestCompareSelfBinding(t *testing.T) {
	t.Parallel()
	q, err := query.ParseQuery("fn push(self: Vec, x: i32)")
	if err != nil {
		t.Fatalf("ParseQuery: %v", err)
	}
	item := types.Item{
		Name: "push",
		Inner: types.FunctionItem{Function: types.Function{
			Decl: types.FunctionSignature{
				Inputs: []types.Argument{
					{Name: "self", Type: types.Generic{Name: "Self"}},
					{Name: "x", Type: types.Primitive{Name: "i32"}},
				},
			},
		}},
	}
	generics := types.Generics{}.WithEqPredicate(types.Generic{Name: "Self"}, types.ResolvedPath{Path: "Vec"})
	sims := CompareQuery(q, item, nil, generics, map[string]query.Type{})
	if sims.Score() != 0 {
		t.Fatalf("expected Self bound to Vec to match query's Vec self-type, got %v (%#v)", sims.Score(), sims)
	}
}

func TestCompareBorrowedRefMutabilityDiffers(t *testing.T) {
	t.Parallel()
	q, err := query.ParseQuery("fn foo(x: &mut i32)")
	if err != nil {
		t.Fatalf("ParseQuery: %v", err)
	}
	item := types.Item{
		Name: "foo",
		Inner: types.FunctionItem{Function: types.Function{
			Decl: types.FunctionSignature{
				Inputs: []types.Argument{
					{Name: "x", Type: types.BorrowedRef{IsMut: false, Inner: types.Primitive{Name: "i32"}}},
				},
			},
		}},
	}
	sims := CompareQuery(q, item, nil, types.Generics{}, map[string]query.Type{})
	if sims.Score() == 0 {
		t.Fatalf("expected nonzero score for mutability mismatch")
	}
}
