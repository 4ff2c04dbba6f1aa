// Package scopes parses and resolves the scope strings a search request
// names to restrict which crates are searched (spec.md §4.H), grounded on
// original_source/ruggle-engine/src/search.rs's Scope/Set types and
// TryFrom<&str> parse.
package scopes

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alpaylan/ruggle/internal/types"
)

// ErrScopeParse is returned when a scope string matches neither the
// `crate:` nor the `set:` form (spec.md §7 "ScopeParse").
var ErrScopeParse = errors.New("invalid scope string")

type Kind int

const (
	CrateScope Kind = iota
	SetScope
)

// Scope names either a single crate (optionally version-pinned) or a named
// set of crates to search together.
type Scope struct {
	Kind  Kind
	Crate types.CrateMetadata // set when Kind == CrateScope
	Set   string              // set when Kind == SetScope
}

// Parse implements exactly the precedence original_source's Scope::try_from
// uses: `set:<name>` first, then `crate:<name>:<version>`, then
// `crate:<name>` (version defaults to "*", meaning "any version").
func Parse(s string) (Scope, error) {
	if name, ok := strings.CutPrefix(s, "set:"); ok {
		if name == "" {
			return Scope{}, fmt.Errorf("%w: empty set name in %q", ErrScopeParse, s)
		}
		return Scope{Kind: SetScope, Set: name}, nil
	}

	if rest, ok := strings.CutPrefix(s, "crate:"); ok {
		if rest == "" {
			return Scope{}, fmt.Errorf("%w: empty crate name in %q", ErrScopeParse, s)
		}
		if name, version, ok := strings.Cut(rest, ":"); ok {
			if name == "" || version == "" {
				return Scope{}, fmt.Errorf("%w: malformed crate scope %q", ErrScopeParse, s)
			}
			return Scope{Kind: CrateScope, Crate: types.CrateMetadata{Name: name, Version: version}}, nil
		}
		return Scope{Kind: CrateScope, Crate: types.CrateMetadata{Name: rest, Version: "*"}}, nil
	}

	return Scope{}, fmt.Errorf("%w: %q", ErrScopeParse, s)
}

func (s Scope) String() string {
	switch s.Kind {
	case SetScope:
		return "set:" + s.Set
	default:
		if s.Crate.IsAnyVersion() {
			return "crate:" + s.Crate.Name
		}
		return "crate:" + s.Crate.Name + ":" + s.Crate.Version
	}
}

// Expand resolves a scope down to the concrete crate list it names, looking
// up named sets in the supplied table. A crate scope expands to itself; a
// set scope expands to its member crates, or ErrScopeParse if the set is
// unknown.
func Expand(s Scope, sets map[string]types.Set) ([]types.CrateMetadata, error) {
	switch s.Kind {
	case CrateScope:
		return []types.CrateMetadata{s.Crate}, nil
	case SetScope:
		set, ok := sets[s.Set]
		if !ok {
			return nil, fmt.Errorf("%w: unknown set %q", ErrScopeParse, s.Set)
		}
		return set.Crates, nil
	default:
		return nil, fmt.Errorf("%w: unrecognized scope kind", ErrScopeParse)
	}
}
