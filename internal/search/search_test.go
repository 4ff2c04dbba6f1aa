package search

import (
	"testing"

	"github.com/alpaylan/ruggle/internal/parent"
	"github.com/alpaylan/ruggle/internal/query"
	"github.com/alpaylan/ruggle/internal/types"
)

func buildIndex(krate *types.Crate) *types.Index {
	idx := types.NewIndex()
	meta := krate.Metadata()
	idx.Crates[meta] = krate
	idx.Parents[meta] = parent.Build(krate)
	return idx
}

func TestSearchFindsExactFunctionMatch(t *testing.T) {
	t.Parallel()

	krate := &types.Crate{
		Name:    "widgets",
		Version: "1.0.0",
		RootId:  0,
		Index: map[types.Id]types.Item{
			0: {Id: 0, Inner: types.ModuleItem{IsCrate: true, Items: []types.Id{1}}},
			1: {
				Id: 1, Name: "area", Visibility: types.VisibilityPublic,
				Inner: types.FunctionItem{Function: types.Function{
					Decl: types.FunctionSignature{
						Inputs: []types.Argument{{Name: "w", Type: types.Primitive{Name: "f64"}}},
						Output: types.Primitive{Name: "f64"},
					},
				}},
			},
		},
	}

	idx := buildIndex(krate)
	s := NewSearcher(idx)

	q, err := query.ParseQuery("fn area(w: f64) -> f64")
	if err != nil {
		t.Fatalf("ParseQuery: %v", err)
	}

	hits, err := s.Search(q, []types.CrateMetadata{krate.Metadata()}, 0.5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("expected 1 hit, got %d: %#v", len(hits), hits)
	}
	if hits[0].Name != "area" {
		t.Fatalf("expected hit named area, got %q", hits[0].Name)
	}
	if hits[0].Signature != "fn area(w: f64) -> f64" {
		t.Fatalf("unexpected signature: %q", hits[0].Signature)
	}
}

func TestSearchFindsInherentMethodWithSelfBinding(t *testing.T) {
	t.Parallel()

	krate := &types.Crate{
		Name:    "widgets",
		Version: "1.0.0",
		RootId:  0,
		Index: map[types.Id]types.Item{
			0: {Id: 0, Inner: types.ModuleItem{IsCrate: true, Items: []types.Id{1}}},
			1: {Id: 1, Name: "Stack", Inner: types.StructItem{Impls: []types.Id{2}}},
			2: {Id: 2, Inner: types.ImplItem{
				For:   types.ResolvedPath{Path: "Stack", Id: 1},
				Items: []types.Id{3},
			}},
			3: {
				Id: 3, Name: "push", Visibility: types.VisibilityPublic,
				Inner: types.FunctionItem{Function: types.Function{
					Decl: types.FunctionSignature{
						Inputs: []types.Argument{
							{Name: "self", Type: types.Generic{Name: "Self"}},
							{Name: "x", Type: types.Primitive{Name: "i32"}},
						},
					},
				}},
			},
		},
	}

	idx := buildIndex(krate)
	s := NewSearcher(idx)

	q, err := query.ParseQuery("fn push(self: Stack, x: i32)")
	if err != nil {
		t.Fatalf("ParseQuery: %v", err)
	}

	hits, err := s.Search(q, []types.CrateMetadata{krate.Metadata()}, 0.5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("expected 1 hit, got %d: %#v", len(hits), hits)
	}
	if len(hits[0].Path) == 0 || hits[0].Path[len(hits[0].Path)-1] != "push" {
		t.Fatalf("unexpected path: %v", hits[0].Path)
	}
}

func TestSearchSkipsTraitImpls(t *testing.T) {
	t.Parallel()

	traitPath := "Debug"
	krate := &types.Crate{
		Name:    "widgets",
		Version: "1.0.0",
		RootId:  0,
		Index: map[types.Id]types.Item{
			0: {Id: 0, Inner: types.ModuleItem{IsCrate: true, Items: []types.Id{1}}},
			1: {Id: 1, Name: "Stack", Inner: types.StructItem{Impls: []types.Id{2}}},
			2: {Id: 2, Inner: types.ImplItem{
				Trait: &traitPath,
				For:   types.ResolvedPath{Path: "Stack", Id: 1},
				Items: []types.Id{3},
			}},
			3: {
				Id: 3, Name: "fmt", Visibility: types.VisibilityPublic,
				Inner: types.FunctionItem{Function: types.Function{}},
			},
		},
	}

	idx := buildIndex(krate)
	s := NewSearcher(idx)

	q, err := query.ParseQuery("fn fmt()")
	if err != nil {
		t.Fatalf("ParseQuery: %v", err)
	}

	hits, err := s.Search(q, []types.CrateMetadata{krate.Metadata()}, 0.5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 0 {
		t.Fatalf("expected trait impl method to be skipped, got %d hits", len(hits))
	}
}

func TestSearchUnknownCrateErrors(t *testing.T) {
	t.Parallel()

	idx := types.NewIndex()
	s := NewSearcher(idx)

	q, err := query.ParseQuery("fn foo()")
	if err != nil {
		t.Fatalf("ParseQuery: %v", err)
	}

	if _, err := s.Search(q, []types.CrateMetadata{{Name: "missing", Version: "*"}}, 0.5); err == nil {
		t.Fatalf("expected crate-not-found error")
	}
}
