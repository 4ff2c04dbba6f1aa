package compare

import (
	"github.com/agnivade/levenshtein"

	"github.com/alpaylan/ruggle/internal/query"
	"github.com/alpaylan/ruggle/internal/types"
)

// CompareQuery scores a parsed query against one candidate item. krate is
// the crate the item belongs to (consulted for future typedef-expansion
// work, spec.md §9 Open Question); generics is the ambient generic/where-
// predicate context (extended by the search driver with a `Self` binding
// for inherent-impl methods, spec.md §4.F); substs accumulates the
// generic→concrete-type bindings discovered while walking types, so that a
// repeated occurrence of the same candidate-side generic is checked for consistency
// rather than scored independently (spec.md §4.C item "generic
// substitution").
func CompareQuery(q query.Query, item types.Item, krate *types.Crate, generics types.Generics, substs map[string]query.Type) Similarities {
	var sims Similarities

	switch {
	case q.Name != nil && item.Name != "":
		sims = append(sims, compareSymbol(*q.Name, item.Name))
	case q.Name != nil:
		sims = append(sims, DiscreteSim(Different, "missing item name"))
	}

	if q.Kind != nil {
		sims = append(sims, compareQueryKind(*q.Kind, item.Inner, krate, generics, substs)...)
	}

	return sims
}

// compareSymbol is the name-distance atom: Levenshtein distance over the
// last `::`-delimited segment, normalized by the longer of the two names
// (spec.md §4.C item 1).
func compareSymbol(name, itemName string) Similarity {
	symbol := lastSegment(itemName)
	dist := levenshtein.ComputeDistance(name, symbol)
	maxLen := len(name)
	if len(symbol) > maxLen {
		maxLen = len(symbol)
	}
	if maxLen == 0 {
		maxLen = 1
	}
	return ContinuousSim(float64(dist)/float64(maxLen), "symbol name distance")
}

func lastSegment(s string) string {
	last := s
	for i := len(s) - 1; i >= 1; i-- {
		if s[i-1] == ':' && s[i] == ':' {
			last = s[i+1:]
			break
		}
	}
	return last
}

func compareQueryKind(kind query.QueryKind, inner types.ItemEnum, krate *types.Crate, generics types.Generics, substs map[string]query.Type) Similarities {
	if kind.FunctionQuery == nil {
		return nil
	}
	fnItem, ok := inner.(types.FunctionItem)
	if !ok {
		return Similarities{DiscreteSim(Different, "query expects function")}
	}
	return compareFunction(*kind.FunctionQuery, fnItem.Function, krate, generics, substs)
}

func compareQualifiers(q query.Function, fn types.Function) Similarities {
	want := map[query.Qualifier]struct{}{}
	if fn.Header.IsAsync {
		want[query.QualifierAsync] = struct{}{}
	}
	if fn.Header.IsUnsafe {
		want[query.QualifierUnsafe] = struct{}{}
	}
	if fn.Header.IsConst {
		want[query.QualifierConst] = struct{}{}
	}
	var sims Similarities
	for qual := range q.Qualifiers {
		if _, ok := want[qual]; !ok {
			sims = append(sims, DiscreteSim(Different, "missing qualifier"))
		}
	}
	for qual := range want {
		if _, ok := q.Qualifiers[qual]; !ok {
			sims = append(sims, DiscreteSim(Different, "extra qualifier"))
		}
	}
	return sims
}

func compareFunction(q query.Function, fn types.Function, krate *types.Crate, generics types.Generics, substs map[string]query.Type) Similarities {
	generics = generics.Extend(fn.Generics)

	sims := compareQualifiers(q, fn)
	sims = append(sims, compareFnDecl(q.Decl, fn.Decl, krate, generics, substs)...)
	return sims
}

func compareFnDecl(q query.FnDecl, decl types.FunctionSignature, krate *types.Crate, generics types.Generics, substs map[string]query.Type) Similarities {
	var sims Similarities

	if q.Inputs != nil {
		inputs := *q.Inputs
		for idx, arg := range inputs {
			if idx < len(decl.Inputs) {
				sims = append(sims, compareArgument(arg, decl.Inputs[idx], krate, generics, substs)...)
			}
		}

		switch {
		case len(inputs) != len(decl.Inputs):
			diff := absDiff(len(inputs), len(decl.Inputs))
			for i := 0; i < diff; i++ {
				sims = append(sims, DiscreteSim(Different, "argument count differs"))
			}
		case len(inputs) == 0:
			sims = append(sims, DiscreteSim(Equivalent, "no arguments"))
		}
	}

	if q.Output != nil {
		sims = append(sims, compareRetTy(*q.Output, decl.Output, krate, generics, substs)...)
	}

	return sims
}

func compareArgument(q query.Argument, arg types.Argument, krate *types.Crate, generics types.Generics, substs map[string]query.Type) Similarities {
	var sims Similarities
	if q.Name != nil {
		sims = append(sims, compareSymbol(*q.Name, arg.Name))
	}
	if q.Type != nil {
		sims = append(sims, compareType(q.Type, arg.Type, krate, generics, substs)...)
	}
	return sims
}

func compareRetTy(q query.FnRetTy, output types.Type, krate *types.Crate, generics types.Generics, substs map[string]query.Type) Similarities {
	switch {
	case q.Kind == query.ReturnKind && output != nil:
		return compareType(q.Type, output, krate, generics, substs)
	case q.Kind == query.DefaultReturnKind && output == nil:
		return Similarities{DiscreteSim(Equivalent, "unit return")}
	default:
		return Similarities{DiscreteSim(Different, "return type differs")}
	}
}

func absDiff(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}
