// Package parent builds the child→parent relation a crate's path builder
// needs to reconstruct a fully-qualified path for any item (spec.md §4.D).
// The walk mirrors internal/docs/reexports.go's walkModuleReexports: start
// at the crate root and recurse through each container kind's own
// containment list, looking items up by Id in the crate's index.
package parent

import "github.com/alpaylan/ruggle/internal/types"

// Build walks krate starting at its root module and returns the parent of
// every item reachable from it. Unreachable items (present in the index but
// never referenced by a module/struct/trait/impl container) simply have no
// entry — spec.md §4.D leaves path reconstruction undefined for those, and
// pathbuilder.Build gives such an item a path rooted at the item itself.
func Build(krate *types.Crate) map[types.Id]types.Parent {
	out := make(map[types.Id]types.Parent)
	seen := make(map[types.Id]bool)
	visit(krate, krate.RootId, out, seen)

	// Primitive items carry their own impls list but aren't necessarily
	// reachable by walking module.items (rustdoc doesn't always re-export
	// them into the root module) — visit any left over directly so their
	// impls and methods still get a PrimitiveParent entry.
	for id, item := range krate.Index {
		if _, ok := item.Inner.(types.PrimitiveItem); ok && !seen[id] {
			visit(krate, id, out, seen)
		}
	}

	return out
}

func visit(krate *types.Crate, id types.Id, out map[types.Id]types.Parent, seen map[types.Id]bool) {
	if seen[id] {
		return
	}
	seen[id] = true

	item, ok := krate.Index[id]
	if !ok {
		return
	}

	switch inner := item.Inner.(type) {
	case types.ModuleItem:
		for _, child := range inner.Items {
			setParent(out, child, types.Parent{Kind: types.ModuleParent, Id: id})
			visit(krate, child, out, seen)
		}
	case types.StructItem:
		for _, impl := range inner.Impls {
			setParent(out, impl, types.Parent{Kind: types.StructParent, Id: id})
			visit(krate, impl, out, seen)
		}
	case types.EnumItem:
		for _, v := range inner.Variants {
			setParent(out, v, types.Parent{Kind: types.StructParent, Id: id})
		}
		for _, impl := range inner.Impls {
			setParent(out, impl, types.Parent{Kind: types.StructParent, Id: id})
			visit(krate, impl, out, seen)
		}
	case types.UnionItem:
		for _, impl := range inner.Impls {
			setParent(out, impl, types.Parent{Kind: types.StructParent, Id: id})
			visit(krate, impl, out, seen)
		}
	case types.TraitItem:
		for _, child := range inner.Items {
			setParent(out, child, types.Parent{Kind: types.TraitParent, Id: id})
			visit(krate, child, out, seen)
		}
	case types.ImplItem:
		for _, child := range inner.Items {
			setParent(out, child, types.Parent{Kind: types.ImplParent, ImplId: id})
			visit(krate, child, out, seen)
		}
	case types.PrimitiveItem:
		for _, impl := range inner.Impls {
			setParent(out, impl, types.Parent{Kind: types.PrimitiveParent, Prim: inner.Name})
			visit(krate, impl, out, seen)
		}
	}
}

func setParent(out map[types.Id]types.Parent, child types.Id, p types.Parent) {
	if _, exists := out[child]; exists {
		return
	}
	out[child] = p
}
