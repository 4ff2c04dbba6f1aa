package types

import "encoding/json"

// Function is a rustdoc `Function` item's inner payload: its declared
// signature, generics and header qualifiers (spec.md §3 "Function").
type Function struct {
	Decl     FunctionSignature
	Generics Generics
	Header   FunctionHeader
}

// FunctionSignature is the parenthesized argument list and return type of a
// function (spec.md calls this "Decl"; rustdoc calls it "sig").
type FunctionSignature struct {
	Inputs  []Argument
	Output  Type // nil means unit return `()`/no `->` clause
	IsVaradic bool
}

// Argument is one named parameter: `(name, type)` in rustdoc's own
// representation.
type Argument struct {
	Name string
	Type Type
}

// FunctionHeader captures the qualifier keywords recognized by the query
// grammar (spec.md §4.B): `const`, `async`, `unsafe`. `extern "ABI"` is
// tracked separately; the grammar parses `extern` but drops it, so Abi is
// never compared.
type FunctionHeader struct {
	IsConst     bool
	IsAsync     bool
	IsUnsafe    bool
	Abi         string // empty when not `extern "..."`
}

func unmarshalFunction(raw json.RawMessage) (Function, error) {
	var f struct {
		Sig struct {
			Inputs [][2]json.RawMessage `json:"inputs"`
			Output json.RawMessage      `json:"output"`
			IsC    bool                 `json:"is_c_variadic"`
		} `json:"sig"`
		Generics json.RawMessage `json:"generics"`
		Header   struct {
			IsConst  bool    `json:"is_const"`
			IsAsync  bool    `json:"is_async"`
			IsUnsafe bool    `json:"is_unsafe"`
			Abi      json.RawMessage `json:"abi"`
		} `json:"header"`
	}
	if err := json.Unmarshal(raw, &f); err != nil {
		return Function{}, err
	}

	inputs := make([]Argument, 0, len(f.Sig.Inputs))
	for _, pair := range f.Sig.Inputs {
		var name string
		if err := json.Unmarshal(pair[0], &name); err != nil {
			return Function{}, err
		}
		t, err := UnmarshalType(pair[1])
		if err != nil {
			return Function{}, err
		}
		inputs = append(inputs, Argument{Name: name, Type: t})
	}

	output, err := UnmarshalType(f.Sig.Output)
	if err != nil {
		return Function{}, err
	}

	generics, err := unmarshalGenerics(f.Generics)
	if err != nil {
		return Function{}, err
	}

	abi := abiString(f.Header.Abi)

	return Function{
		Decl:     FunctionSignature{Inputs: inputs, Output: output, IsVaradic: f.Sig.IsC},
		Generics: generics,
		Header: FunctionHeader{
			IsConst:  f.Header.IsConst,
			IsAsync:  f.Header.IsAsync,
			IsUnsafe: f.Header.IsUnsafe,
			Abi:      abi,
		},
	}, nil
}

// abiString normalizes rustdoc's `Abi` enum (`"Rust"` or `{"C": {...}}`) down
// to a plain string, empty for the implicit Rust ABI.
func abiString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var plain string
	if err := json.Unmarshal(raw, &plain); err == nil {
		if plain == "Rust" {
			return ""
		}
		return plain
	}
	var tagged map[string]json.RawMessage
	if err := json.Unmarshal(raw, &tagged); err == nil {
		for k := range tagged {
			return k
		}
	}
	return ""
}
