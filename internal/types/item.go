package types

import (
	"encoding/json"
	"fmt"
)

// Visibility mirrors rustdoc's `Visibility` enum. The search driver does
// not filter on it; items of every visibility are scored, and the parent
// index walks private items too.
type Visibility int

const (
	VisibilityDefault Visibility = iota
	VisibilityPublic
	VisibilityCrate
	VisibilityRestricted
)

func unmarshalVisibility(raw json.RawMessage) Visibility {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		switch s {
		case "public":
			return VisibilityPublic
		case "crate":
			return VisibilityCrate
		default:
			return VisibilityDefault
		}
	}
	var tagged map[string]json.RawMessage
	if err := json.Unmarshal(raw, &tagged); err == nil {
		if _, ok := tagged["restricted"]; ok {
			return VisibilityRestricted
		}
	}
	return VisibilityDefault
}

// Deprecation carries rustdoc's `#[deprecated]` attribute payload, kept for
// display purposes; the comparator never consults it.
type Deprecation struct {
	Since string
	Note  string
}

// Span is the item's source location, kept for display/debugging only.
type Span struct {
	Filename string
	BeginLine int
	EndLine   int
}

// Item is one entry of a Crate's index: an identity (Id/CrateId/Name),
// documentation, and an ItemEnum payload naming what kind of declaration it
// is (spec.md §3 "Item").
type Item struct {
	Id          Id
	CrateId     uint32
	Name        string
	Visibility  Visibility
	Docs        string
	Links       map[string]Id
	Deprecation *Deprecation
	Span        *Span
	Inner       ItemEnum
}

// ItemEnum is the tagged union of item kinds the search driver and parent
// index care about. Kinds outside this set (statics, constants, macros,
// type aliases with no further structure, ...) decode to OtherItem so the
// whole crate still loads even when one item isn't modeled in detail.
type ItemEnum interface {
	isItemEnum()
}

type ModuleItem struct {
	IsCrate bool
	Items   []Id
}

type StructItem struct {
	Generics Generics
	Impls    []Id
}

type EnumItem struct {
	Generics Generics
	Variants []Id
	Impls    []Id
}

type UnionItem struct {
	Generics Generics
	Impls    []Id
}

type TraitItem struct {
	Generics Generics
	Items    []Id
}

// ImplItem is an `impl` block. Trait is nil for an inherent impl — the only
// kind the search driver descends into (spec.md §4.F, Non-goal: trait impls
// are skipped).
type ImplItem struct {
	IsUnsafe bool
	Generics Generics
	Trait    *string // trait path, nil for inherent impls
	For      Type
	Items    []Id
}

type FunctionItem struct {
	Function
}

// PrimitiveItem represents rustdoc's synthetic items for primitive types
// (`i32`, `str`, ...), which carry their own `impls` list exactly like a
// struct (spec.md §4.D, "Primitive.impls").
type PrimitiveItem struct {
	Name  string
	Impls []Id
}

type TypeAliasItem struct {
	Type Type
}

// OtherItem is the fallback for item kinds not otherwise modeled (statics,
// constants, macros, external re-exports, ...).
type OtherItem struct {
	Kind string
}

func (ModuleItem) isItemEnum()    {}
func (StructItem) isItemEnum()    {}
func (EnumItem) isItemEnum()      {}
func (UnionItem) isItemEnum()     {}
func (TraitItem) isItemEnum()     {}
func (ImplItem) isItemEnum()      {}
func (FunctionItem) isItemEnum()  {}
func (PrimitiveItem) isItemEnum() {}
func (TypeAliasItem) isItemEnum() {}
func (OtherItem) isItemEnum()     {}

// InnerKind names the item's kind the way rustdoc's own JSON key does,
// useful for logging.
func (it Item) InnerKind() string {
	switch it.Inner.(type) {
	case ModuleItem:
		return "module"
	case StructItem:
		return "struct"
	case EnumItem:
		return "enum"
	case UnionItem:
		return "union"
	case TraitItem:
		return "trait"
	case ImplItem:
		return "impl"
	case FunctionItem:
		return "function"
	case PrimitiveItem:
		return "primitive"
	case TypeAliasItem:
		return "type_alias"
	default:
		return "other"
	}
}

// unmarshalItem decodes one rustdoc index entry. It mirrors
// internal/docs/parse.go's parseItem/innerKind split: decode the envelope
// fields generically, then dispatch Inner by probing the single populated
// key of the `inner` object.
func unmarshalItem(id Id, raw json.RawMessage) (Item, error) {
	var env struct {
		CrateId    uint32           `json:"crate_id"`
		Name       *string          `json:"name"`
		Visibility json.RawMessage  `json:"visibility"`
		Docs       *string          `json:"docs"`
		Links      map[string]Id    `json:"links"`
		Deprecation *struct {
			Since *string `json:"since"`
			Note  *string `json:"note"`
		} `json:"deprecation"`
		Span *struct {
			Filename string `json:"filename"`
			Begin    [2]int `json:"begin"`
			End      [2]int `json:"end"`
		} `json:"span"`
		Inner json.RawMessage `json:"inner"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return Item{}, fmt.Errorf("decoding item %d envelope: %w", id, err)
	}

	name := ""
	if env.Name != nil {
		name = *env.Name
	}
	docs := ""
	if env.Docs != nil {
		docs = *env.Docs
	}

	var dep *Deprecation
	if env.Deprecation != nil {
		d := Deprecation{}
		if env.Deprecation.Since != nil {
			d.Since = *env.Deprecation.Since
		}
		if env.Deprecation.Note != nil {
			d.Note = *env.Deprecation.Note
		}
		dep = &d
	}

	var span *Span
	if env.Span != nil {
		span = &Span{
			Filename:  env.Span.Filename,
			BeginLine: env.Span.Begin[0],
			EndLine:   env.Span.End[0],
		}
	}

	inner, err := unmarshalItemEnum(env.Inner)
	if err != nil {
		return Item{}, fmt.Errorf("decoding item %d (%s) inner: %w", id, name, err)
	}

	return Item{
		Id:          id,
		CrateId:     env.CrateId,
		Name:        name,
		Visibility:  unmarshalVisibility(env.Visibility),
		Docs:        docs,
		Links:       env.Links,
		Deprecation: dep,
		Span:        span,
		Inner:       inner,
	}, nil
}

func unmarshalItemEnum(raw json.RawMessage) (ItemEnum, error) {
	var outer map[string]json.RawMessage
	if err := json.Unmarshal(raw, &outer); err != nil {
		return nil, err
	}

	if v, ok := outer["module"]; ok {
		var m struct {
			IsCrate bool `json:"is_crate"`
			Items   []Id `json:"items"`
		}
		if err := json.Unmarshal(v, &m); err != nil {
			return nil, err
		}
		return ModuleItem{IsCrate: m.IsCrate, Items: m.Items}, nil
	}
	if v, ok := outer["struct"]; ok {
		var s struct {
			Generics json.RawMessage `json:"generics"`
			Impls    []Id            `json:"impls"`
		}
		if err := json.Unmarshal(v, &s); err != nil {
			return nil, err
		}
		g, err := unmarshalGenerics(s.Generics)
		if err != nil {
			return nil, err
		}
		return StructItem{Generics: g, Impls: s.Impls}, nil
	}
	if v, ok := outer["enum"]; ok {
		var e struct {
			Generics json.RawMessage `json:"generics"`
			Variants []Id            `json:"variants"`
			Impls    []Id            `json:"impls"`
		}
		if err := json.Unmarshal(v, &e); err != nil {
			return nil, err
		}
		g, err := unmarshalGenerics(e.Generics)
		if err != nil {
			return nil, err
		}
		return EnumItem{Generics: g, Variants: e.Variants, Impls: e.Impls}, nil
	}
	if v, ok := outer["union"]; ok {
		var u struct {
			Generics json.RawMessage `json:"generics"`
			Impls    []Id            `json:"impls"`
		}
		if err := json.Unmarshal(v, &u); err != nil {
			return nil, err
		}
		g, err := unmarshalGenerics(u.Generics)
		if err != nil {
			return nil, err
		}
		return UnionItem{Generics: g, Impls: u.Impls}, nil
	}
	if v, ok := outer["trait"]; ok {
		var t struct {
			Generics json.RawMessage `json:"generics"`
			Items    []Id            `json:"items"`
		}
		if err := json.Unmarshal(v, &t); err != nil {
			return nil, err
		}
		g, err := unmarshalGenerics(t.Generics)
		if err != nil {
			return nil, err
		}
		return TraitItem{Generics: g, Items: t.Items}, nil
	}
	if v, ok := outer["impl"]; ok {
		var i struct {
			IsUnsafe bool            `json:"is_unsafe"`
			Generics json.RawMessage `json:"generics"`
			Trait    *struct {
				Path string `json:"path"`
			} `json:"trait"`
			For   json.RawMessage `json:"for"`
			Items []Id            `json:"items"`
		}
		if err := json.Unmarshal(v, &i); err != nil {
			return nil, err
		}
		g, err := unmarshalGenerics(i.Generics)
		if err != nil {
			return nil, err
		}
		forType, err := UnmarshalType(i.For)
		if err != nil {
			return nil, err
		}
		var traitPath *string
		if i.Trait != nil {
			traitPath = &i.Trait.Path
		}
		return ImplItem{IsUnsafe: i.IsUnsafe, Generics: g, Trait: traitPath, For: forType, Items: i.Items}, nil
	}
	if v, ok := outer["function"]; ok {
		fn, err := unmarshalFunction(v)
		if err != nil {
			return nil, err
		}
		return FunctionItem{Function: fn}, nil
	}
	if v, ok := outer["primitive"]; ok {
		var p struct {
			Name  string `json:"name"`
			Impls []Id   `json:"impls"`
		}
		if err := json.Unmarshal(v, &p); err != nil {
			return nil, err
		}
		return PrimitiveItem{Name: p.Name, Impls: p.Impls}, nil
	}
	if v, ok := outer["type_alias"]; ok {
		var ta struct {
			Type json.RawMessage `json:"type"`
		}
		if err := json.Unmarshal(v, &ta); err != nil {
			return nil, err
		}
		t, err := UnmarshalType(ta.Type)
		if err != nil {
			return nil, err
		}
		return TypeAliasItem{Type: t}, nil
	}

	for k := range outer {
		return OtherItem{Kind: k}, nil
	}
	return OtherItem{Kind: "unknown"}, nil
}
