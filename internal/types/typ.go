package types

import (
	"encoding/json"
	"fmt"
)

// Type is the candidate-side recursive type tree (spec.md §3/§4.A). Each
// concrete variant below is a tagged sum member; there is no sharing or
// cyclic structure between nodes (spec.md §9 "Design notes").
type Type interface {
	isType()
}

type ResolvedPath struct {
	Path string
	Id   Id
	Args *GenericArgs // nil when the path carries no generic arguments
}

type Generic struct {
	Name string
}

type Primitive struct {
	Name string
}

type Tuple struct {
	Elems []Type
}

type Slice struct {
	Elem Type
}

type Array struct {
	Elem Type
	Len  string // source-level length expression, opaque to the comparator
}

type BorrowedRef struct {
	Lifetime string // empty when elided
	IsMut    bool
	Inner    Type
}

type RawPointer struct {
	IsMut bool
	Inner Type
}

// DynTrait is `dyn Trait1 + Trait2 + 'lifetime`. The comparator never
// descends into it structurally (spec.md gives it no comparison rule beyond
// the catch-all), so only display-relevant fields are kept.
type DynTrait struct {
	Traits   []string
	Lifetime string
}

// FunctionPointer is `fn(Args) -> Ret`. Not addressed by the comparator's
// rules; carried opaquely for display.
type FunctionPointer struct {
	Inputs []Type
	Output Type // nil for unit return
}

// ImplTrait is `impl Trait1 + Trait2`. Opaque to the comparator.
type ImplTrait struct {
	Traits []string
}

type QualifiedPath struct {
	Name     string
	Args     *GenericArgs
	SelfType Type
	Trait    string // empty when there is no explicit trait
}

// Infer is the inferred-type placeholder `_` in a resolved signature.
type Infer struct{}

// Pat is a pattern-restricted range type (e.g. `u32` is `..` ranged in newer
// rustdoc output); the comparator treats it nominally via its display form.
type Pat struct {
	Inner Type
	Pat   string
}

func (ResolvedPath) isType()    {}
func (Generic) isType()         {}
func (Primitive) isType()       {}
func (Tuple) isType()           {}
func (Slice) isType()           {}
func (Array) isType()           {}
func (BorrowedRef) isType()     {}
func (RawPointer) isType()      {}
func (DynTrait) isType()        {}
func (FunctionPointer) isType() {}
func (ImplTrait) isType()       {}
func (QualifiedPath) isType()   {}
func (Infer) isType()           {}
func (Pat) isType()             {}

// GenericArgs is the generic-argument list attached to a ResolvedPath or
// QualifiedPath. Only type arguments participate in comparison (spec.md
// §4.A "only type args shown"); lifetime/const arguments are kept for
// display only.
type GenericArgs struct {
	Types []Type // positional; a nil entry is an omitted/const/lifetime arg
}

// UnmarshalType decodes a single rustdoc Type JSON value (an object with
// exactly one recognized key, e.g. {"resolved_path": {...}}) into a Type.
// This mirrors internal/docs/fragments_types.go's resolveTypeName: probe a
// decoded key-set for the known variant tags rather than relying on
// encoding/json's static dispatch, since Go interfaces can't be unmarshaled
// automatically.
func UnmarshalType(raw json.RawMessage) (Type, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var outer map[string]json.RawMessage
	if err := json.Unmarshal(raw, &outer); err != nil {
		return nil, fmt.Errorf("decoding type: %w", err)
	}

	if v, ok := outer["resolved_path"]; ok {
		return unmarshalResolvedPath(v)
	}
	if v, ok := outer["generic"]; ok {
		var name string
		if err := json.Unmarshal(v, &name); err != nil {
			return nil, fmt.Errorf("decoding generic type: %w", err)
		}
		return Generic{Name: name}, nil
	}
	if v, ok := outer["primitive"]; ok {
		var name string
		if err := json.Unmarshal(v, &name); err != nil {
			return nil, fmt.Errorf("decoding primitive type: %w", err)
		}
		return Primitive{Name: name}, nil
	}
	if v, ok := outer["tuple"]; ok {
		var rawElems []json.RawMessage
		if err := json.Unmarshal(v, &rawElems); err != nil {
			return nil, fmt.Errorf("decoding tuple type: %w", err)
		}
		elems := make([]Type, 0, len(rawElems))
		for _, re := range rawElems {
			t, err := UnmarshalType(re)
			if err != nil {
				return nil, err
			}
			elems = append(elems, t)
		}
		return Tuple{Elems: elems}, nil
	}
	if v, ok := outer["slice"]; ok {
		elem, err := UnmarshalType(v)
		if err != nil {
			return nil, err
		}
		return Slice{Elem: elem}, nil
	}
	if v, ok := outer["array"]; ok {
		var arr struct {
			Type json.RawMessage `json:"type"`
			Len  string          `json:"len"`
		}
		if err := json.Unmarshal(v, &arr); err != nil {
			return nil, fmt.Errorf("decoding array type: %w", err)
		}
		elem, err := UnmarshalType(arr.Type)
		if err != nil {
			return nil, err
		}
		return Array{Elem: elem, Len: arr.Len}, nil
	}
	if v, ok := outer["borrowed_ref"]; ok {
		var r struct {
			Lifetime  *string         `json:"lifetime"`
			IsMutable bool            `json:"is_mutable"`
			Type      json.RawMessage `json:"type"`
		}
		if err := json.Unmarshal(v, &r); err != nil {
			return nil, fmt.Errorf("decoding borrowed_ref type: %w", err)
		}
		inner, err := UnmarshalType(r.Type)
		if err != nil {
			return nil, err
		}
		lt := ""
		if r.Lifetime != nil {
			lt = *r.Lifetime
		}
		return BorrowedRef{Lifetime: lt, IsMut: r.IsMutable, Inner: inner}, nil
	}
	if v, ok := outer["raw_pointer"]; ok {
		var r struct {
			IsMutable bool            `json:"is_mutable"`
			Type      json.RawMessage `json:"type"`
		}
		if err := json.Unmarshal(v, &r); err != nil {
			return nil, fmt.Errorf("decoding raw_pointer type: %w", err)
		}
		inner, err := UnmarshalType(r.Type)
		if err != nil {
			return nil, err
		}
		return RawPointer{IsMut: r.IsMutable, Inner: inner}, nil
	}
	if v, ok := outer["dyn_trait"]; ok {
		return unmarshalDynTrait(v)
	}
	if v, ok := outer["function_pointer"]; ok {
		return unmarshalFunctionPointer(v)
	}
	if v, ok := outer["impl_trait"]; ok {
		return unmarshalImplTrait(v)
	}
	if v, ok := outer["qualified_path"]; ok {
		return unmarshalQualifiedPath(v)
	}
	if _, ok := outer["infer"]; ok {
		return Infer{}, nil
	}
	if v, ok := outer["pat"]; ok {
		var p struct {
			Type json.RawMessage `json:"type"`
			Pat  string          `json:"pat"`
		}
		if err := json.Unmarshal(v, &p); err != nil {
			return nil, fmt.Errorf("decoding pat type: %w", err)
		}
		inner, err := UnmarshalType(p.Type)
		if err != nil {
			return nil, err
		}
		return Pat{Inner: inner, Pat: p.Pat}, nil
	}

	return nil, fmt.Errorf("unrecognized type variant with keys %v", keysOf(outer))
}

func keysOf(m map[string]json.RawMessage) []string {
	ks := make([]string, 0, len(m))
	for k := range m {
		ks = append(ks, k)
	}
	return ks
}

func unmarshalResolvedPath(raw json.RawMessage) (Type, error) {
	var rp struct {
		Name string           `json:"name"`
		Id   Id               `json:"id"`
		Args *json.RawMessage `json:"args"`
	}
	if err := json.Unmarshal(raw, &rp); err != nil {
		return nil, fmt.Errorf("decoding resolved_path type: %w", err)
	}
	var args *GenericArgs
	if rp.Args != nil {
		a, err := unmarshalGenericArgs(*rp.Args)
		if err != nil {
			return nil, err
		}
		args = a
	}
	return ResolvedPath{Path: rp.Name, Id: rp.Id, Args: args}, nil
}

func unmarshalGenericArgs(raw json.RawMessage) (*GenericArgs, error) {
	var outer struct {
		AngleBracketed *struct {
			Args []json.RawMessage `json:"args"`
		} `json:"angle_bracketed"`
	}
	if err := json.Unmarshal(raw, &outer); err != nil {
		return nil, fmt.Errorf("decoding generic_args: %w", err)
	}
	if outer.AngleBracketed == nil {
		return &GenericArgs{}, nil
	}
	types := make([]Type, 0, len(outer.AngleBracketed.Args))
	for _, raw := range outer.AngleBracketed.Args {
		var a map[string]json.RawMessage
		if err := json.Unmarshal(raw, &a); err != nil {
			types = append(types, nil)
			continue
		}
		if td, ok := a["type"]; ok {
			t, err := UnmarshalType(td)
			if err != nil {
				return nil, err
			}
			types = append(types, t)
			continue
		}
		// Lifetime or const generic arg: carried as a nil placeholder so
		// positional alignment with the query side is preserved.
		types = append(types, nil)
	}
	return &GenericArgs{Types: types}, nil
}

func unmarshalDynTrait(raw json.RawMessage) (Type, error) {
	var d struct {
		Traits []struct {
			Trait struct {
				Name string `json:"name"`
				Path string `json:"path"`
			} `json:"trait"`
		} `json:"traits"`
		Lifetime *string `json:"lifetime"`
	}
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("decoding dyn_trait type: %w", err)
	}
	names := make([]string, 0, len(d.Traits))
	for _, t := range d.Traits {
		name := t.Trait.Name
		if name == "" {
			name = t.Trait.Path
		}
		names = append(names, name)
	}
	lt := ""
	if d.Lifetime != nil {
		lt = *d.Lifetime
	}
	return DynTrait{Traits: names, Lifetime: lt}, nil
}

func unmarshalFunctionPointer(raw json.RawMessage) (Type, error) {
	var fp struct {
		Sig struct {
			Inputs []json.RawMessage `json:"inputs"`
			Output json.RawMessage   `json:"output"`
		} `json:"sig"`
	}
	if err := json.Unmarshal(raw, &fp); err != nil {
		return nil, fmt.Errorf("decoding function_pointer type: %w", err)
	}
	inputs := make([]Type, 0, len(fp.Sig.Inputs))
	for _, in := range fp.Sig.Inputs {
		var pair []json.RawMessage
		if err := json.Unmarshal(in, &pair); err != nil || len(pair) < 2 {
			continue
		}
		t, err := UnmarshalType(pair[1])
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, t)
	}
	output, err := UnmarshalType(fp.Sig.Output)
	if err != nil {
		return nil, err
	}
	return FunctionPointer{Inputs: inputs, Output: output}, nil
}

func unmarshalImplTrait(raw json.RawMessage) (Type, error) {
	var bounds []struct {
		TraitBound *struct {
			Trait struct {
				Name string `json:"name"`
				Path string `json:"path"`
			} `json:"trait"`
		} `json:"trait_bound"`
	}
	if err := json.Unmarshal(raw, &bounds); err != nil {
		return nil, fmt.Errorf("decoding impl_trait type: %w", err)
	}
	names := make([]string, 0, len(bounds))
	for _, b := range bounds {
		if b.TraitBound == nil {
			continue
		}
		name := b.TraitBound.Trait.Name
		if name == "" {
			name = b.TraitBound.Trait.Path
		}
		names = append(names, name)
	}
	return ImplTrait{Traits: names}, nil
}

func unmarshalQualifiedPath(raw json.RawMessage) (Type, error) {
	var q struct {
		Name     string          `json:"name"`
		Args     *json.RawMessage `json:"args"`
		SelfType json.RawMessage `json:"self_type"`
		Trait    *struct {
			Name string `json:"name"`
		} `json:"trait"`
	}
	if err := json.Unmarshal(raw, &q); err != nil {
		return nil, fmt.Errorf("decoding qualified_path type: %w", err)
	}
	self, err := UnmarshalType(q.SelfType)
	if err != nil {
		return nil, err
	}
	var args *GenericArgs
	if q.Args != nil {
		a, err := unmarshalGenericArgs(*q.Args)
		if err != nil {
			return nil, err
		}
		args = a
	}
	traitName := ""
	if q.Trait != nil {
		traitName = q.Trait.Name
	}
	return QualifiedPath{Name: q.Name, Args: args, SelfType: self, Trait: traitName}, nil
}

// RenderType produces the deterministic display form used both in hit
// signatures and in tests (spec.md §4.A): primitive → spelling; generic →
// name; tuple → (T1, T2, …); slice/array → [T]; borrowed-ref → &T / &mut T;
// raw-pointer → *const T / *mut T; resolved path → Name<T1, T2> (type args
// only).
func RenderType(t Type) string {
	if t == nil {
		return "_"
	}
	switch v := t.(type) {
	case Primitive:
		return v.Name
	case Generic:
		return v.Name
	case Tuple:
		parts := make([]string, len(v.Elems))
		for i, e := range v.Elems {
			parts[i] = RenderType(e)
		}
		return "(" + joinComma(parts) + ")"
	case Slice:
		return "[" + RenderType(v.Elem) + "]"
	case Array:
		return "[" + RenderType(v.Elem) + "]"
	case BorrowedRef:
		if v.IsMut {
			return "&mut " + RenderType(v.Inner)
		}
		return "&" + RenderType(v.Inner)
	case RawPointer:
		if v.IsMut {
			return "*mut " + RenderType(v.Inner)
		}
		return "*const " + RenderType(v.Inner)
	case ResolvedPath:
		s := v.Path
		if v.Args != nil && len(v.Args.Types) > 0 {
			parts := make([]string, 0, len(v.Args.Types))
			for _, a := range v.Args.Types {
				if a == nil {
					continue
				}
				parts = append(parts, RenderType(a))
			}
			if len(parts) > 0 {
				s += "<" + joinComma(parts) + ">"
			}
		}
		return s
	case QualifiedPath:
		if v.Trait != "" {
			return "<" + RenderType(v.SelfType) + " as " + v.Trait + ">::" + v.Name
		}
		return RenderType(v.SelfType) + "::" + v.Name
	case DynTrait:
		s := "dyn " + joinPlus(v.Traits)
		if v.Lifetime != "" {
			s += " + " + v.Lifetime
		}
		return s
	case ImplTrait:
		return "impl " + joinPlus(v.Traits)
	case FunctionPointer:
		parts := make([]string, len(v.Inputs))
		for i, in := range v.Inputs {
			parts[i] = RenderType(in)
		}
		s := "fn(" + joinComma(parts) + ")"
		if v.Output != nil {
			s += " -> " + RenderType(v.Output)
		}
		return s
	case Infer:
		return "_"
	case Pat:
		return RenderType(v.Inner)
	default:
		return "_"
	}
}

func joinComma(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += ", "
		}
		out += p
	}
	return out
}

func joinPlus(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += " + "
		}
		out += p
	}
	return out
}
