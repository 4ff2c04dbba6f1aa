package store

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// prunedItemFields are the rustdoc JSON item fields the search engine never
// reads (span/source location, raw attribute strings) — the bulk of a
// rustdoc dump's size for a large crate (original_source/ruggle-server/src/lib.rs
// shake_index; the actual field-pruning rules in ruggle-util's `shake` were
// not available to port, so this reimplements the same "drop known-unused
// bulk" idea directly against the raw JSON document).
var prunedItemFields = []string{"span", "attrs"}

// Shake rewrites every `.json` crate file under crateDir with the pruned
// fields removed, logging the directory's total size before and after.
// `.bin` files are already compact and are left untouched.
func Shake(crateDir string) error {
	before := dirSize(crateDir)

	entries, err := os.ReadDir(crateDir)
	if err != nil {
		return fmt.Errorf("reading index directory %s: %w", crateDir, err)
	}

	for _, e := range entries {
		if !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		path := filepath.Join(crateDir, e.Name())
		if err := shakeFile(path); err != nil {
			return fmt.Errorf("shaking %s: %w", path, err)
		}
	}

	after := dirSize(crateDir)
	log.Printf("store: index shaken: %.2f MB -> %.2f MB (-%.2f MB, %.1f%% smaller)",
		mb(before), mb(after), mb(before-after), percentSmaller(before, after))

	return nil
}

func shakeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decoding: %w", err)
	}

	indexRaw, ok := doc["index"]
	if !ok {
		return nil
	}
	var index map[string]map[string]json.RawMessage
	if err := json.Unmarshal(indexRaw, &index); err != nil {
		return fmt.Errorf("decoding index: %w", err)
	}

	for _, item := range index {
		for _, field := range prunedItemFields {
			delete(item, field)
		}
	}

	reencoded, err := json.Marshal(index)
	if err != nil {
		return fmt.Errorf("re-encoding index: %w", err)
	}
	doc["index"] = reencoded

	out, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("re-encoding document: %w", err)
	}

	return os.WriteFile(path, out, 0644)
}

func dirSize(dir string) int64 {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	var total int64
	for _, e := range entries {
		info, err := e.Info()
		if err != nil {
			continue
		}
		total += info.Size()
	}
	return total
}

func mb(bytes int64) float64 {
	return float64(bytes) / 1_048_576.0
}

func percentSmaller(before, after int64) float64 {
	if before == 0 {
		return 0
	}
	return float64(before-after) / float64(before) * 100.0
}
