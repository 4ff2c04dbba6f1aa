package types

// Parent names the single owning item of a child Id, as built by
// internal/parent (spec.md §4.D). It is a small tagged union rather than a
// bare Id because the path builder needs to know *how* the child hangs off
// its parent (a module's namespace segment vs. an impl's owning type) to
// reconstruct a display path correctly.
type Parent struct {
	Kind   ParentKind
	Id     Id    // parent item id (module, struct, trait) — zero for PrimitiveParent
	ImplId Id    // the owning impl's id, set only when Kind == ImplParent
	Prim   string // primitive type name, set only when Kind == PrimitiveParent
}

type ParentKind int

const (
	ModuleParent ParentKind = iota
	StructParent
	TraitParent
	ImplParent
	PrimitiveParent
)
