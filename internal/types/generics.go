package types

import "encoding/json"

// Generics carries the generic parameters and where-predicates in scope for
// a function or its enclosing impl block. A search driver extends the
// ambient Generics of an impl with the function's own generics before
// comparison (spec.md §4.C, "Self" resolution).
type Generics struct {
	Params          []GenericParamDef
	WherePredicates []WherePredicate
}

// Extend returns a new Generics with other's params/predicates appended,
// leaving the receiver untouched. Mirrors the original's
// `generics.params.extend(...)` step taken when a method's own generics are
// pushed on top of its impl block's.
func (g Generics) Extend(other Generics) Generics {
	params := make([]GenericParamDef, 0, len(g.Params)+len(other.Params))
	params = append(params, g.Params...)
	params = append(params, other.Params...)
	preds := make([]WherePredicate, 0, len(g.WherePredicates)+len(other.WherePredicates))
	preds = append(preds, g.WherePredicates...)
	preds = append(preds, other.WherePredicates...)
	return Generics{Params: params, WherePredicates: preds}
}

// WithEqPredicate returns a new Generics with an extra `lhs = rhs`
// where-predicate appended. Used by the search driver to bind `Self` to an
// inherent impl's `for_` type before comparing its methods (spec.md §4.F).
func (g Generics) WithEqPredicate(lhs, rhs Type) Generics {
	preds := make([]WherePredicate, 0, len(g.WherePredicates)+1)
	preds = append(preds, g.WherePredicates...)
	preds = append(preds, WherePredicate{Kind: EqPredicate, Lhs: lhs, Rhs: rhs})
	return Generics{Params: g.Params, WherePredicates: preds}
}

type GenericParamDef struct {
	Name string
	Kind string // "lifetime" | "type" | "const"
}

// WherePredicateKind distinguishes the shapes a where-clause can take. Only
// EqPredicate (`Self = ConcreteType`) is consulted by the comparator; the
// others are retained for completeness of the data model.
type WherePredicateKind int

const (
	BoundPredicate WherePredicateKind = iota
	RegionPredicate
	EqPredicate
)

// WherePredicate is a single where-clause entry. For EqPredicate, Lhs and Rhs
// are both populated; for BoundPredicate/RegionPredicate only Lhs and the
// bound names in Bounds are relevant.
type WherePredicate struct {
	Kind   WherePredicateKind
	Lhs    Type
	Rhs    Type
	Bounds []string
}

func unmarshalGenerics(raw json.RawMessage) (Generics, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return Generics{}, nil
	}
	var g struct {
		Params []struct {
			Name string                     `json:"name"`
			Kind map[string]json.RawMessage `json:"kind"`
		} `json:"params"`
		WherePredicates []json.RawMessage `json:"where_predicates"`
	}
	if err := json.Unmarshal(raw, &g); err != nil {
		return Generics{}, err
	}
	out := Generics{}
	for _, p := range g.Params {
		kind := "type"
		for k := range p.Kind {
			kind = k
			break
		}
		out.Params = append(out.Params, GenericParamDef{Name: p.Name, Kind: kind})
	}
	for _, raw := range g.WherePredicates {
		wp, ok, err := unmarshalWherePredicate(raw)
		if err != nil {
			return Generics{}, err
		}
		if ok {
			out.WherePredicates = append(out.WherePredicates, wp)
		}
	}
	return out, nil
}

func unmarshalWherePredicate(raw json.RawMessage) (WherePredicate, bool, error) {
	var outer map[string]json.RawMessage
	if err := json.Unmarshal(raw, &outer); err != nil {
		return WherePredicate{}, false, err
	}
	if v, ok := outer["eq_predicate"]; ok {
		var eq struct {
			Lhs json.RawMessage `json:"lhs"`
			Rhs struct {
				Type json.RawMessage `json:"type"`
			} `json:"rhs"`
		}
		if err := json.Unmarshal(v, &eq); err != nil {
			return WherePredicate{}, false, err
		}
		lhs, err := UnmarshalType(eq.Lhs)
		if err != nil {
			return WherePredicate{}, false, err
		}
		rhs, err := UnmarshalType(eq.Rhs.Type)
		if err != nil {
			return WherePredicate{}, false, err
		}
		return WherePredicate{Kind: EqPredicate, Lhs: lhs, Rhs: rhs}, true, nil
	}
	if v, ok := outer["bound_predicate"]; ok {
		var bp struct {
			Type   json.RawMessage `json:"type"`
			Bounds []json.RawMessage `json:"bounds"`
		}
		if err := json.Unmarshal(v, &bp); err != nil {
			return WherePredicate{}, false, err
		}
		lhs, err := UnmarshalType(bp.Type)
		if err != nil {
			return WherePredicate{}, false, err
		}
		names := make([]string, 0, len(bp.Bounds))
		for _, b := range bp.Bounds {
			var tb struct {
				TraitBound *struct {
					Trait struct {
						Name string `json:"name"`
					} `json:"trait"`
				} `json:"trait_bound"`
			}
			if err := json.Unmarshal(b, &tb); err == nil && tb.TraitBound != nil {
				names = append(names, tb.TraitBound.Trait.Name)
			}
		}
		return WherePredicate{Kind: BoundPredicate, Lhs: lhs, Bounds: names}, true, nil
	}
	// region_predicate (lifetime bound): retained in the data model but not
	// load-bearing for comparison; skip rather than fail the whole decode.
	return WherePredicate{}, false, nil
}
