package compare

import (
	"reflect"

	"github.com/alpaylan/ruggle/internal/query"
	"github.com/alpaylan/ruggle/internal/types"
)

// compareType is the recursive structural type comparator (spec.md §4.C).
// The match-arm order below is load-bearing: more specific shapes (Self,
// other generics, tuples, slices, pointer/reference pairs) are checked
// before the catch-all wrapper-transparency and path-comparison arms, the
// same order the original's `compare_type` match uses.
func compareType(lhs query.Type, rhs types.Type, krate *types.Crate, generics types.Generics, substs map[string]query.Type) Similarities {
	if rhs == nil {
		return Similarities{DiscreteSim(Different, "type mismatch")}
	}

	if g, ok := rhs.(types.Generic); ok && g.Name == "Self" {
		return compareAgainstSelf(lhs, generics, krate, substs)
	}

	if g, ok := rhs.(types.Generic); ok {
		return compareAgainstGeneric(lhs, g, substs)
	}

	switch q := lhs.(type) {
	case query.Tuple:
		if i, ok := rhs.(types.Tuple); ok {
			return compareTuple(q, i, krate, generics, substs)
		}
	case query.Slice:
		if i, ok := rhs.(types.Slice); ok {
			return compareSlice(q, i, krate, generics, substs)
		}
	case query.RawPointer:
		if i, ok := rhs.(types.RawPointer); ok {
			return compareWrapper(q.IsMut, q.Inner, i.IsMut, i.Inner, krate, generics, substs)
		}
	case query.BorrowedRef:
		if i, ok := rhs.(types.BorrowedRef); ok {
			return compareWrapper(q.IsMut, q.Inner, i.IsMut, i.Inner, krate, generics, substs)
		}
	}

	// Only the candidate side is wrapped in a pointer/reference: recurse
	// past it and mark the difference as a Subequal wrapper mismatch,
	// mirroring the original's "transparent wrapper" treatment.
	switch i := rhs.(type) {
	case types.RawPointer:
		sims := compareType(lhs, i.Inner, krate, generics, substs)
		return append(sims, DiscreteSim(Subequal, "pointer/reference wrapper"))
	case types.BorrowedRef:
		sims := compareType(lhs, i.Inner, krate, generics, substs)
		return append(sims, DiscreteSim(Subequal, "pointer/reference wrapper"))
	}

	// Only the query side is wrapped: same transparency, other direction.
	switch q := lhs.(type) {
	case query.RawPointer:
		sims := compareType(q.Inner, rhs, krate, generics, substs)
		return append(sims, DiscreteSim(Subequal, "pointer/reference wrapper"))
	case query.BorrowedRef:
		sims := compareType(q.Inner, rhs, krate, generics, substs)
		return append(sims, DiscreteSim(Subequal, "pointer/reference wrapper"))
	}

	if q, ok := lhs.(query.UnresolvedPath); ok {
		if i, ok := rhs.(types.ResolvedPath); ok {
			return comparePath(q, i, krate, generics, substs)
		}
	}

	if q, ok := lhs.(query.Primitive); ok {
		if i, ok := rhs.(types.Primitive); ok {
			if q.Name == i.Name {
				return Similarities{DiscreteSim(Equivalent, "primitive matches")}
			}
			return Similarities{DiscreteSim(Different, "primitive differs")}
		}
	}

	return Similarities{DiscreteSim(Different, "type mismatch")}
}

// compareAgainstSelf resolves the `Self` generic via the ambient
// EqPredicate the search driver injects for inherent-impl methods (spec.md
// §4.F). An unbound Self (free function accidentally naming it, or a
// pathological impl) scores Subequal rather than failing outright.
func compareAgainstSelf(lhs query.Type, generics types.Generics, krate *types.Crate, substs map[string]query.Type) Similarities {
	for _, wp := range generics.WherePredicates {
		if wp.Kind != types.EqPredicate {
			continue
		}
		if g, ok := wp.Lhs.(types.Generic); ok && g.Name == "Self" {
			return compareType(lhs, wp.Rhs, krate, generics, substs)
		}
	}
	return Similarities{DiscreteSim(Subequal, "unbound Self in where-predicate")}
}

// compareAgainstGeneric implements substitution-consistency checking: the
// first time a query fragment is compared against a given candidate
// generic name, the pairing is recorded; every subsequent occurrence of
// that same generic name must match the recorded query fragment exactly
// (spec.md §4.C, "generic substitution" atom).
func compareAgainstGeneric(lhs query.Type, rhs types.Generic, substs map[string]query.Type) Similarities {
	bound, ok := substs[rhs.Name]
	if !ok {
		substs[rhs.Name] = lhs
		return Similarities{DiscreteSim(Subequal, "generic substituted")}
	}
	if reflect.DeepEqual(lhs, bound) {
		return Similarities{DiscreteSim(Equivalent, "generic matches substitution")}
	}
	return Similarities{DiscreteSim(Different, "generic differs from substitution")}
}

func compareTuple(q query.Tuple, i types.Tuple, krate *types.Crate, generics types.Generics, substs map[string]query.Type) Similarities {
	var sims Similarities
	n := len(q.Elems)
	if len(i.Elems) < n {
		n = len(i.Elems)
	}
	for idx := 0; idx < n; idx++ {
		if q.Elems[idx] == nil {
			continue
		}
		sims = append(sims, compareType(q.Elems[idx], i.Elems[idx], krate, generics, substs)...)
	}

	sims = append(sims, DiscreteSim(Equivalent, "tuple shape"))

	diff := absDiff(len(q.Elems), len(i.Elems))
	for k := 0; k < diff; k++ {
		sims = append(sims, DiscreteSim(Different, "tuple length differs"))
	}

	return sims
}

func compareSlice(q query.Slice, i types.Slice, krate *types.Crate, generics types.Generics, substs map[string]query.Type) Similarities {
	sims := Similarities{DiscreteSim(Equivalent, "slice type")}
	if q.Elem != nil {
		sims = append(sims, compareType(q.Elem, i.Elem, krate, generics, substs)...)
	}
	return sims
}

// compareWrapper handles the RawPointer/RawPointer and BorrowedRef/
// BorrowedRef arms: recurse past the wrapper, penalizing a mutability
// mismatch with a Subequal atom rather than failing the whole comparison.
func compareWrapper(qMut bool, qInner query.Type, iMut bool, iInner types.Type, krate *types.Crate, generics types.Generics, substs map[string]query.Type) Similarities {
	sims := compareType(qInner, iInner, krate, generics, substs)
	if qMut != iMut {
		sims = append(sims, DiscreteSim(Subequal, "mutability differs"))
	}
	return sims
}

func comparePath(q query.UnresolvedPath, i types.ResolvedPath, krate *types.Crate, generics types.Generics, substs map[string]query.Type) Similarities {
	sims := Similarities{compareSymbol(q.Name, i.Path)}

	switch {
	case q.Args != nil && i.Args != nil:
		n := len(q.Args.Args)
		if len(i.Args.Types) < n {
			n = len(i.Args.Types)
		}
		for idx := 0; idx < n; idx++ {
			qa := q.Args.Args[idx]
			ia := i.Args.Types[idx]
			if qa == nil {
				continue
			}
			if ia == nil {
				sims = append(sims, DiscreteSim(Different, "missing generic arg"))
				continue
			}
			sims = append(sims, compareType(qa, ia, krate, generics, substs)...)
		}
		if len(q.Args.Args) > len(i.Args.Types) {
			for k := 0; k < len(q.Args.Args)-len(i.Args.Types); k++ {
				sims = append(sims, DiscreteSim(Different, "missing generic arg"))
			}
		}
	case q.Args != nil:
		for range q.Args.Args {
			sims = append(sims, DiscreteSim(Different, "missing generic args"))
		}
	}

	return sims
}
