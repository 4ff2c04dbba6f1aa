package types

import (
	"encoding/json"
	"fmt"
)

// ExternalCrate records the name and documentation root URL rustdoc emits
// for each crate referenced by, but not part of, the indexed crate itself
// (spec.md §4.E). The path builder's base URL does not read it.
type ExternalCrate struct {
	Name        string
	HTMLRootURL string
}

// ItemSummary is the compact (path, kind) record rustdoc keeps in its
// top-level `paths` map (spec.md §4.E). The path builder does not consult
// it; paths come from the crate's own `index` and parent map only.
type ItemSummary struct {
	CrateId uint32
	Path    []string
	Kind    string
}

// Crate is one decoded rustdoc-JSON document: the item index, the summary
// path table, and enough metadata to place it under a CrateMetadata (spec.md
// §3 "Crate").
type Crate struct {
	Name            string
	Version         string
	RootId          Id
	Index           map[Id]Item
	Paths           map[Id]ItemSummary
	ExternalCrates  map[uint32]ExternalCrate
	IncludesPrivate bool
	FormatVersion   uint32
}

func (c *Crate) Metadata() CrateMetadata {
	return CrateMetadata{Name: c.Name, Version: c.Version}
}

// ParseCrate decodes a rustdoc JSON document. name is the file-stem-derived
// crate name the store assigns (spec.md §4.G, "name=file stem"); it
// overrides whatever the JSON's root item happens to be named, mirroring
// original_source/ruggle-server/src/lib.rs's make_index behavior of
// stamping `krate.name` after decode.
func ParseCrate(data []byte, name string) (*Crate, error) {
	var doc struct {
		Root           Id                         `json:"root"`
		CrateVersion   *string                    `json:"crate_version"`
		IncludesPrivate bool                      `json:"includes_private"`
		Index          map[string]json.RawMessage `json:"index"`
		Paths          map[string]json.RawMessage `json:"paths"`
		ExternalCrates map[string]json.RawMessage `json:"external_crates"`
		FormatVersion  uint32                     `json:"format_version"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding crate %q: %w", name, err)
	}

	index := make(map[Id]Item, len(doc.Index))
	for key, raw := range doc.Index {
		id, err := parseIdKey(key)
		if err != nil {
			return nil, fmt.Errorf("crate %q: %w", name, err)
		}
		item, err := unmarshalItem(id, raw)
		if err != nil {
			return nil, fmt.Errorf("crate %q: %w", name, err)
		}
		index[id] = item
	}

	paths := make(map[Id]ItemSummary, len(doc.Paths))
	for key, raw := range doc.Paths {
		id, err := parseIdKey(key)
		if err != nil {
			return nil, fmt.Errorf("crate %q: %w", name, err)
		}
		var s struct {
			CrateId uint32   `json:"crate_id"`
			Path    []string `json:"path"`
			Kind    json.RawMessage `json:"kind"`
		}
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("crate %q: decoding path summary %d: %w", name, id, err)
		}
		paths[id] = ItemSummary{CrateId: s.CrateId, Path: s.Path, Kind: kindString(s.Kind)}
	}

	externs := make(map[uint32]ExternalCrate, len(doc.ExternalCrates))
	for key, raw := range doc.ExternalCrates {
		var cid uint32
		if _, err := fmt.Sscanf(key, "%d", &cid); err != nil {
			continue
		}
		var ec struct {
			Name        string  `json:"name"`
			HTMLRootURL *string `json:"html_root_url"`
		}
		if err := json.Unmarshal(raw, &ec); err != nil {
			return nil, fmt.Errorf("crate %q: decoding external crate %d: %w", name, cid, err)
		}
		url := ""
		if ec.HTMLRootURL != nil {
			url = *ec.HTMLRootURL
		}
		externs[cid] = ExternalCrate{Name: ec.Name, HTMLRootURL: url}
	}

	version := "*"
	if doc.CrateVersion != nil && *doc.CrateVersion != "" {
		version = *doc.CrateVersion
	}

	return &Crate{
		Name:            name,
		Version:         version,
		RootId:          doc.Root,
		Index:           index,
		Paths:           paths,
		ExternalCrates:  externs,
		IncludesPrivate: doc.IncludesPrivate,
		FormatVersion:   doc.FormatVersion,
	}, nil
}

func parseIdKey(key string) (Id, error) {
	var n uint64
	if _, err := fmt.Sscanf(key, "%d", &n); err != nil {
		return 0, fmt.Errorf("invalid item id key %q: %w", key, err)
	}
	return Id(n), nil
}

func kindString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return ""
}
