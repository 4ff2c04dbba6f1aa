// Package search implements the driver that walks a crate's item index,
// scores every function and inherent-impl method against a parsed query,
// and returns the hits under a similarity threshold (spec.md §4.F), grounded
// on original_source/ruggle-engine/src/search.rs's Index::search.
package search

import (
	"errors"
	"fmt"
	"log"
	"sort"

	"github.com/alpaylan/ruggle/internal/compare"
	"github.com/alpaylan/ruggle/internal/markdown"
	"github.com/alpaylan/ruggle/internal/pathbuilder"
	"github.com/alpaylan/ruggle/internal/query"
	"github.com/alpaylan/ruggle/internal/types"
)

// ErrCrateNotFound and ErrItemNotFound are the sentinel errors spec.md §7
// names for the search driver; wrap with %w so callers can errors.Is against
// them regardless of which crate/item triggered the failure.
var (
	ErrCrateNotFound = errors.New("crate not present in the index")
	ErrItemNotFound  = errors.New("item not present in crate")
)

// Hit is one matched function or method, carrying enough to render a result
// line and to re-sort/re-filter without re-running the comparison.
type Hit struct {
	Id           types.Id
	Name         string
	Path         []string
	Link         string
	Docs         string
	Signature    string
	Similarities compare.Similarities
}

// Score is the hit's aggregate similarity score — lower is a closer match.
func (h Hit) Score() float64 {
	return h.Similarities.Score()
}

// Searcher runs queries against an in-memory index (spec.md §3 "Index").
// It never mutates the index, so concurrent Search calls are safe so long
// as nothing is loading into the same crates concurrently — internal/store
// is the one place that serializes against writers.
type Searcher struct {
	idx *types.Index
}

func NewSearcher(idx *types.Index) *Searcher {
	return &Searcher{idx: idx}
}

func crateNotFound(meta types.CrateMetadata) error {
	return fmt.Errorf("%w: %q", ErrCrateNotFound, meta.String())
}

func itemNotFound(id types.Id, meta types.CrateMetadata) error {
	return fmt.Errorf("%w: id %d in crate %q", ErrItemNotFound, id, meta.String())
}

// Search scores every function reachable in krates against q, returning
// hits whose score falls under threshold, sorted best-first.
func (s *Searcher) Search(q query.Query, krates []types.CrateMetadata, threshold float64) ([]Hit, error) {
	log.Printf("search: query=%q crates=%v threshold=%.3f", q.String(), krates, threshold)

	var hits []Hit
	for _, meta := range krates {
		krate, ok := s.idx.Lookup(meta)
		if !ok {
			return nil, crateNotFound(meta)
		}
		parents, ok := s.idx.Parents[krate.Metadata()]
		if !ok {
			parents = map[types.Id]types.Parent{}
		}

		found, err := searchCrate(q, krate, parents, threshold)
		if err != nil {
			return nil, err
		}
		hits = append(hits, found...)
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score() < hits[j].Score() })

	log.Printf("search: found %d hits", len(hits))
	return hits, nil
}

func searchCrate(q query.Query, krate *types.Crate, parents map[types.Id]types.Parent, threshold float64) ([]Hit, error) {
	var hits []Hit

	for _, item := range krate.Index {
		switch inner := item.Inner.(type) {
		case types.FunctionItem:
			// Associated functions of impls and traits are not free
			// functions; inherent-impl methods are scored in the arm below.
			if p, ok := parents[item.Id]; ok && (p.Kind == types.ImplParent || p.Kind == types.TraitParent) {
				continue
			}
			sims := compareItem(q, item, krate, nil)
			if sims.Score() >= threshold {
				continue
			}
			hit, err := buildHit(krate, parents, item, inner.Function, sims)
			if err != nil {
				return nil, err
			}
			hits = append(hits, hit)

		case types.ImplItem:
			if inner.Trait != nil {
				continue // trait impls are out of scope
			}
			for _, assocId := range inner.Items {
				assoc, ok := krate.Index[assocId]
				if !ok {
					return nil, itemNotFound(assocId, krate.Metadata())
				}
				fn, ok := assoc.Inner.(types.FunctionItem)
				if !ok {
					continue
				}
				sims := compareItem(q, assoc, krate, &inner)
				if sims.Score() >= threshold {
					continue
				}
				hit, err := buildHit(krate, parents, assoc, fn.Function, sims)
				if err != nil {
					return nil, err
				}
				hits = append(hits, hit)
			}
		}
	}

	return hits, nil
}

func buildHit(krate *types.Crate, parents map[types.Id]types.Parent, item types.Item, fn types.Function, sims compare.Similarities) (Hit, error) {
	p, err := pathbuilder.Build(krate, parents, item.Id)
	if err != nil {
		return Hit{}, err
	}
	return Hit{
		Id:           item.Id,
		Name:         item.Name,
		Path:         p.Segments(),
		Link:         p.Link,
		Docs:         markdown.RewriteLinks(item.Docs, docLinkMap(krate, parents, item)),
		Signature:    formatFnSignature(item.Name, fn.Decl),
		Similarities: sims,
	}, nil
}

// docLinkMap resolves an item's intra-doc links (the raw markdown target
// text rustdoc recorded, mapped to the item id it points at) to the
// reconstructed documentation URLs those ids resolve to, so the docstring's
// links point somewhere real instead of dangling inside the crate's own
// private id space.
func docLinkMap(krate *types.Crate, parents map[types.Id]types.Parent, item types.Item) map[string]string {
	if len(item.Links) == 0 {
		return nil
	}
	linkMap := make(map[string]string, len(item.Links))
	for target, id := range item.Links {
		p, err := pathbuilder.Build(krate, parents, id)
		if err != nil {
			continue
		}
		linkMap[target] = p.Link
	}
	return linkMap
}

// compareItem builds the generics context a candidate is compared under:
// an inherent impl's methods get `Self` bound to the impl's own type, per
// original_source/ruggle-engine/src/search.rs's compare().
func compareItem(q query.Query, item types.Item, krate *types.Crate, impl *types.ImplItem) compare.Similarities {
	generics := types.Generics{}
	if impl != nil {
		generics = impl.Generics.WithEqPredicate(types.Generic{Name: "Self"}, impl.For)
	}
	substs := map[string]query.Type{}
	return compare.CompareQuery(q, item, krate, generics, substs)
}

func formatFnSignature(name string, decl types.FunctionSignature) string {
	args := ""
	for i, arg := range decl.Inputs {
		if i > 0 {
			args += ", "
		}
		if arg.Name == "" {
			args += types.RenderType(arg.Type)
		} else {
			args += arg.Name + ": " + types.RenderType(arg.Type)
		}
	}

	ret := ""
	if decl.Output != nil {
		ret = " -> " + types.RenderType(decl.Output)
	}

	return fmt.Sprintf("fn %s(%s)%s", name, args, ret)
}
