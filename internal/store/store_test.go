package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/alpaylan/ruggle/internal/types"
)

func minimalCrateJSON() []byte {
	doc := map[string]interface{}{
		"root":             0,
		"crate_version":    "1.0.0",
		"includes_private": false,
		"format_version":   39,
		"index": map[string]interface{}{
			"0": map[string]interface{}{
				"crate_id":   0,
				"name":       "widgets",
				"visibility": "public",
				"span": map[string]interface{}{
					"filename": "src/lib.rs",
					"begin":    []int{1, 0},
					"end":      []int{1, 0},
				},
				"attrs": []string{"#[crate_type = \"lib\"]"},
				"inner": map[string]interface{}{
					"module": map[string]interface{}{
						"is_crate": true,
						"items":    []int{1},
					},
				},
			},
			"1": map[string]interface{}{
				"crate_id":   0,
				"name":       "area",
				"visibility": "public",
				"inner": map[string]interface{}{
					"function": map[string]interface{}{
						"sig": map[string]interface{}{
							"inputs":          []interface{}{},
							"is_c_variadic":   false,
						},
						"generics": map[string]interface{}{"params": []interface{}{}, "where_predicates": []interface{}{}},
						"header":   map[string]interface{}{"is_const": false, "is_async": false, "is_unsafe": false},
					},
				},
			},
		},
		"paths":           map[string]interface{}{},
		"external_crates": map[string]interface{}{},
	}
	data, err := json.Marshal(doc)
	if err != nil {
		panic(err)
	}
	return data
}

func TestLoadDecodesJSONCrate(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "crate"), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "crate", "widgets.json"), minimalCrateJSON(), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	idx := Open(dir)
	if err := idx.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	idx.RLock()
	defer idx.RUnlock()

	krate, ok := idx.Raw().Lookup(types.CrateMetadata{Name: "widgets", Version: "*"})
	if !ok {
		t.Fatalf("expected widgets crate to be loaded")
	}
	if _, ok := krate.Index[1]; !ok {
		t.Fatalf("expected item 1 in decoded crate index")
	}
	if _, ok := idx.Raw().Parents[krate.Metadata()]; !ok {
		t.Fatalf("expected a parent index to be built for widgets")
	}

	if _, err := os.Stat(filepath.Join(dir, "crate", "widgets.parents.bin")); err != nil {
		t.Fatalf("expected cached parents file, got: %v", err)
	}
}

func TestPersistCrateRoundTrips(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "crate"), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	idx := Open(dir)
	krate := &types.Crate{
		Name:    "widgets",
		Version: "1.0.0",
		RootId:  0,
		Index: map[types.Id]types.Item{
			0: {Id: 0, Inner: types.ModuleItem{IsCrate: true}},
		},
	}

	if err := idx.PersistCrate(krate); err != nil {
		t.Fatalf("PersistCrate: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "crate", "widgets.bin"))
	if err != nil {
		t.Fatalf("reading persisted bin: %v", err)
	}
	decoded, err := decodeCrateBin(data, "widgets")
	if err != nil {
		t.Fatalf("decodeCrateBin: %v", err)
	}
	if decoded.Name != "widgets" {
		t.Fatalf("expected name widgets, got %q", decoded.Name)
	}

	idx.RLock()
	defer idx.RUnlock()
	if _, ok := idx.Raw().Crates[krate.Metadata()]; !ok {
		t.Fatalf("expected in-memory index to contain persisted crate")
	}
}

func TestShakeRemovesSpanAndAttrs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	crateDir := filepath.Join(dir, "crate")
	if err := os.MkdirAll(crateDir, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	path := filepath.Join(crateDir, "widgets.json")
	if err := os.WriteFile(path, minimalCrateJSON(), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	if err := Shake(crateDir); err != nil {
		t.Fatalf("Shake: %v", err)
	}

	out, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading shaken file: %v", err)
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(out, &doc); err != nil {
		t.Fatalf("unmarshal shaken doc: %v", err)
	}
	var index map[string]map[string]json.RawMessage
	if err := json.Unmarshal(doc["index"], &index); err != nil {
		t.Fatalf("unmarshal shaken index: %v", err)
	}
	if _, ok := index["0"]["span"]; ok {
		t.Fatalf("expected span to be pruned")
	}
	if _, ok := index["0"]["attrs"]; ok {
		t.Fatalf("expected attrs to be pruned")
	}
	if _, ok := index["0"]["name"]; !ok {
		t.Fatalf("expected name to survive shaking")
	}
}
