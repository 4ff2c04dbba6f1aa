package types

// Index is the raw, unsynchronized collection of loaded crates and their
// cached parent maps (spec.md §3 "Index"). internal/store wraps one of
// these in a sync.RWMutex and owns all mutation; internal/search only reads
// through the wrapper's RLock-guarded accessors. Keeping this type
// synchronization-free lets internal/parent and internal/search unit-test
// against a plain Index without any locking concerns.
type Index struct {
	Crates  map[CrateMetadata]*Crate
	Parents map[CrateMetadata]map[Id]Parent
	Sets    map[string]Set
}

// Set is a named, user-defined group of crates searched together (spec.md
// §3 "Set", §4.H "Scopes").
type Set struct {
	Name   string
	Crates []CrateMetadata
}

func NewIndex() *Index {
	return &Index{
		Crates:  make(map[CrateMetadata]*Crate),
		Parents: make(map[CrateMetadata]map[Id]Parent),
		Sets:    make(map[string]Set),
	}
}

// Lookup returns the crate matching name, preferring an exact version match
// and falling back to any crate of that name when meta.IsAnyVersion() (spec.md
// §4.H scope resolution, original_source/ruggle-engine/src/search.rs's
// crate-not-found handling).
func (idx *Index) Lookup(meta CrateMetadata) (*Crate, bool) {
	if c, ok := idx.Crates[meta]; ok {
		return c, true
	}
	if !meta.IsAnyVersion() {
		return nil, false
	}
	for cm, c := range idx.Crates {
		if cm.Name == meta.Name {
			return c, true
		}
	}
	return nil, false
}
