package pathbuilder

import (
	"strings"
	"testing"

	"github.com/alpaylan/ruggle/internal/parent"
	"github.com/alpaylan/ruggle/internal/types"
)

func TestBuildModulePath(t *testing.T) {
	t.Parallel()

	krate := &types.Crate{
		Name:   "widgets",
		RootId: 0,
		Index: map[types.Id]types.Item{
			0: {Id: 0, Inner: types.ModuleItem{IsCrate: true, Items: []types.Id{1}}},
			1: {Id: 1, Name: "shapes", Inner: types.ModuleItem{Items: []types.Id{2}}},
			2: {Id: 2, Name: "area", Inner: types.FunctionItem{}},
		},
	}
	parents := parent.Build(krate)

	p, err := Build(krate, parents, 2)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got := p.Display(); got != "shapes::area" {
		t.Fatalf("Display() = %q, want shapes::area", got)
	}
	if !strings.HasPrefix(p.Link, "https://docs.rs/widgets/latest/widgets/") {
		t.Fatalf("Link = %q, want docs.rs base", p.Link)
	}
}

func TestBuildStructMethodPath(t *testing.T) {
	t.Parallel()

	krate := &types.Crate{
		Name:   "widgets",
		RootId: 0,
		Index: map[types.Id]types.Item{
			0: {Id: 0, Inner: types.ModuleItem{IsCrate: true, Items: []types.Id{1}}},
			1: {Id: 1, Name: "Widget", Inner: types.StructItem{Impls: []types.Id{2}}},
			2: {Id: 2, Inner: types.ImplItem{Items: []types.Id{3}}},
			3: {Id: 3, Name: "new", Inner: types.FunctionItem{}},
		},
	}
	parents := parent.Build(krate)

	p, err := Build(krate, parents, 3)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got := p.Display(); got != "Widget::new" {
		t.Fatalf("Display() = %q, want Widget::new", got)
	}
	want := "https://docs.rs/widgets/latest/widgets/struct.Widget.html#method.new.html"
	if p.Link != want {
		t.Fatalf("Link = %q, want %q", p.Link, want)
	}
}

func TestBuildStandardLibraryUsesRustLangBase(t *testing.T) {
	t.Parallel()

	krate := &types.Crate{
		Name:   "std",
		RootId: 0,
		Index: map[types.Id]types.Item{
			0: {Id: 0, Inner: types.ModuleItem{IsCrate: true, Items: []types.Id{1}}},
			1: {Id: 1, Name: "mem", Inner: types.ModuleItem{Items: []types.Id{2}}},
			2: {Id: 2, Name: "swap", Inner: types.FunctionItem{}},
		},
	}
	parents := parent.Build(krate)

	p, err := Build(krate, parents, 2)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !strings.HasPrefix(p.Link, "https://doc.rust-lang.org/std/") {
		t.Fatalf("Link = %q, want doc.rust-lang.org base", p.Link)
	}
}

func TestBuildPrimitiveMethodPath(t *testing.T) {
	t.Parallel()

	krate := &types.Crate{
		Name:   "core",
		RootId: 0,
		Index: map[types.Id]types.Item{
			0:  {Id: 0, Inner: types.ModuleItem{IsCrate: true}},
			10: {Id: 10, Inner: types.PrimitiveItem{Name: "i32", Impls: []types.Id{11}}},
			11: {Id: 11, Inner: types.ImplItem{Items: []types.Id{12}}},
			12: {Id: 12, Name: "checked_add", Inner: types.FunctionItem{}},
		},
	}
	parents := parent.Build(krate)

	p, err := Build(krate, parents, 12)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got := p.Display(); got != "i32::checked_add" {
		t.Fatalf("Display() = %q, want i32::checked_add", got)
	}
}

func TestBuildUnknownItem(t *testing.T) {
	t.Parallel()

	krate := &types.Crate{Name: "widgets", Index: map[types.Id]types.Item{}}
	if _, err := Build(krate, map[types.Id]types.Parent{}, 99); err == nil {
		t.Fatalf("expected error for unknown item id")
	}
}
