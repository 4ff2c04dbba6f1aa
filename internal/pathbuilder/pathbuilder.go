// Package pathbuilder reconstructs a fully-qualified path and documentation
// link for any item reachable through the parent index (spec.md §4.E),
// grounded on internal/docs/links.go's ResolveItemURI walk-and-join shape —
// adapted to spec.md's own two-base-URL scheme instead of the teacher's
// rsdoc:// scheme.
package pathbuilder

import (
	"fmt"
	"strings"

	"github.com/alpaylan/ruggle/internal/types"
)

// OwnerKind names the kind of item an item with an owner hangs off of —
// the three kinds spec.md §4.E's link form distinguishes.
type OwnerKind string

const (
	OwnerStruct OwnerKind = "struct"
	OwnerTrait  OwnerKind = "trait"
	OwnerImpl   OwnerKind = "impl"
)

// Owner is the struct, trait, or impl an associated item belongs to,
// distinct from the module path leading to it.
type Owner struct {
	Kind OwnerKind
	Name string
}

// Path is the reconstructed location of one item: the module path leading
// to it, its owner (if any), and the documentation URL it resolves to.
type Path struct {
	Modules []string
	Owner   *Owner
	Item    string
	Link    string
}

// Display concatenates module names with "::", then the owner name (if
// any), then the item name.
func (p Path) Display() string {
	parts := append(append([]string{}, p.Modules...))
	if p.Owner != nil {
		parts = append(parts, p.Owner.Name)
	}
	parts = append(parts, p.Item)
	return strings.Join(parts, "::")
}

// Segments returns every path component in display order — modules, owner
// (if any), then item name — for wire shapes that want the path as a slice
// rather than a joined string.
func (p Path) Segments() []string {
	segs := append([]string{}, p.Modules...)
	if p.Owner != nil {
		segs = append(segs, p.Owner.Name)
	}
	return append(segs, p.Item)
}

// standardLibraryCrates names the three crates whose documentation is
// hosted under doc.rust-lang.org rather than docs.rs (spec.md §4.E).
var standardLibraryCrates = map[string]bool{"std": true, "core": true, "alloc": true}

// Build reconstructs the path and link of id within krate, walking the
// parent chain from the item up to the crate root. It fails only if id
// itself isn't present in the crate's index — an item with no parent entry
// (unreachable from the module tree) still gets a path, just a short one
// rooted at itself.
func Build(krate *types.Crate, parents map[types.Id]types.Parent, id types.Id) (Path, error) {
	item, ok := krate.Index[id]
	if !ok {
		return Path{}, fmt.Errorf("item %d not found in crate %q index", id, krate.Name)
	}

	var modules []string
	var owner *Owner
	cur := id

climb:
	for {
		p, ok := parents[cur]
		if !ok {
			break
		}
		switch p.Kind {
		case types.ModuleParent:
			if mod, ok := krate.Index[p.Id]; ok && mod.Name != "" {
				modules = append([]string{mod.Name}, modules...)
			}
			cur = p.Id
		case types.StructParent:
			if ownerItem, ok := krate.Index[p.Id]; ok {
				owner = &Owner{Kind: OwnerStruct, Name: ownerItem.Name}
			}
			cur = p.Id
		case types.TraitParent:
			if ownerItem, ok := krate.Index[p.Id]; ok {
				owner = &Owner{Kind: OwnerTrait, Name: ownerItem.Name}
			}
			cur = p.Id
		case types.ImplParent:
			if implItem, ok := krate.Index[p.ImplId]; ok {
				owner = &Owner{Kind: OwnerImpl, Name: implOwnerName(implItem)}
			}
			cur = p.ImplId
		case types.PrimitiveParent:
			// A primitive stands in for a module root, not an owner — any
			// impl-kind owner recorded on the way up here belongs to the
			// primitive's own namespace, not a real owning type.
			owner = nil
			modules = append([]string{p.Prim}, modules...)
			break climb
		default:
			break climb
		}
	}

	path := Path{Modules: modules, Owner: owner, Item: item.Name}
	path.Link = buildLink(krate.Name, path)
	return path, nil
}

// implOwnerName renders an inherent impl's receiving type as a best-effort
// owner name, used only when no further Struct/Trait parent overrides it
// (an impl the parent index couldn't resolve to an owning struct or trait).
func implOwnerName(implItem types.Item) string {
	impl, ok := implItem.Inner.(types.ImplItem)
	if !ok {
		return ""
	}
	return types.RenderType(impl.For)
}

// buildLink renders the docs.rs-shaped (or doc.rust-lang.org-shaped) URL for
// a reconstructed path (spec.md §4.E): module segments each get a trailing
// slash; an owner renders the method-link form,
// "<kind>.<name>.html#method.<item>.html"; with no owner the item renders as
// a free function, "fn.<item>.html".
func buildLink(crateName string, p Path) string {
	var b strings.Builder
	b.WriteString(baseURL(crateName))
	for _, seg := range p.Modules {
		b.WriteString(seg)
		b.WriteString("/")
	}
	if p.Owner != nil {
		b.WriteString(string(p.Owner.Kind))
		b.WriteString(".")
		b.WriteString(p.Owner.Name)
		b.WriteString(".html#method.")
		b.WriteString(p.Item)
		b.WriteString(".html")
		return b.String()
	}
	b.WriteString("fn.")
	b.WriteString(p.Item)
	b.WriteString(".html")
	return b.String()
}

func baseURL(crateName string) string {
	if standardLibraryCrates[crateName] {
		return fmt.Sprintf("https://doc.rust-lang.org/%s/", crateName)
	}
	return fmt.Sprintf("https://docs.rs/%s/latest/%s/", crateName, crateName)
}
