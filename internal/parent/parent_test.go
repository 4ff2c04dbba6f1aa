package parent

import (
	"testing"

	"github.com/alpaylan/ruggle/internal/types"
)

func TestBuildModuleStructImplChain(t *testing.T) {
	t.Parallel()

	// root module 0 -> struct 1 -> impl 2 -> method 3
	krate := &types.Crate{
		RootId: 0,
		Index: map[types.Id]types.Item{
			0: {Id: 0, Inner: types.ModuleItem{IsCrate: true, Items: []types.Id{1}}},
			1: {Id: 1, Name: "Widget", Inner: types.StructItem{Impls: []types.Id{2}}},
			2: {Id: 2, Inner: types.ImplItem{Items: []types.Id{3}}},
			3: {Id: 3, Name: "new", Inner: types.FunctionItem{}},
		},
	}

	parents := Build(krate)

	if p, ok := parents[1]; !ok || p.Kind != types.ModuleParent || p.Id != 0 {
		t.Fatalf("expected struct 1 parented by module 0, got %#v ok=%v", p, ok)
	}
	if p, ok := parents[2]; !ok || p.Kind != types.StructParent || p.Id != 1 {
		t.Fatalf("expected impl 2 parented by struct 1, got %#v ok=%v", p, ok)
	}
	if p, ok := parents[3]; !ok || p.Kind != types.ImplParent || p.ImplId != 2 {
		t.Fatalf("expected method 3 parented by impl 2, got %#v ok=%v", p, ok)
	}
	if _, ok := parents[0]; ok {
		t.Fatalf("root module should have no parent entry")
	}
}

func TestBuildPrimitiveUnreachableFromRoot(t *testing.T) {
	t.Parallel()

	krate := &types.Crate{
		RootId: 0,
		Index: map[types.Id]types.Item{
			0:  {Id: 0, Inner: types.ModuleItem{IsCrate: true}},
			10: {Id: 10, Inner: types.PrimitiveItem{Name: "i32", Impls: []types.Id{11}}},
			11: {Id: 11, Inner: types.ImplItem{Items: []types.Id{12}}},
			12: {Id: 12, Name: "checked_add", Inner: types.FunctionItem{}},
		},
	}

	parents := Build(krate)

	if p, ok := parents[11]; !ok || p.Kind != types.PrimitiveParent || p.Prim != "i32" {
		t.Fatalf("expected impl 11 parented by primitive i32, got %#v ok=%v", p, ok)
	}
	if p, ok := parents[12]; !ok || p.Kind != types.ImplParent || p.ImplId != 11 {
		t.Fatalf("expected method 12 parented by impl 11, got %#v ok=%v", p, ok)
	}
}
