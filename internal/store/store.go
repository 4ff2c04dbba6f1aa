// Package store loads, caches and persists the on-disk index of rustdoc
// crates (spec.md §4.G), grounded on original_source/ruggle-server/src/lib.rs's
// make_index/shake_index (parallel decode preferring a binary encoding over
// JSON, per-crate parent-index caching) and internal/cas/cas.go's
// zstd-writer/reader pattern for the binary encoding's compression layer.
package store

import (
	"bytes"
	"context"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/alpaylan/ruggle/internal/parent"
	"github.com/alpaylan/ruggle/internal/types"
	"github.com/klauspost/compress/zstd"
	"golang.org/x/sync/errgroup"
)

func init() {
	for _, v := range []interface{}{
		types.ResolvedPath{}, types.Generic{}, types.Primitive{}, types.Tuple{},
		types.Slice{}, types.Array{}, types.BorrowedRef{}, types.RawPointer{},
		types.DynTrait{}, types.FunctionPointer{}, types.ImplTrait{},
		types.QualifiedPath{}, types.Infer{}, types.Pat{},
	} {
		gob.Register(v)
	}
	for _, v := range []interface{}{
		types.ModuleItem{}, types.StructItem{}, types.EnumItem{}, types.UnionItem{},
		types.TraitItem{}, types.ImplItem{}, types.FunctionItem{}, types.PrimitiveItem{},
		types.TypeAliasItem{}, types.OtherItem{},
	} {
		gob.Register(v)
	}
}

// DecodeError wraps a failure decoding one crate file during a bulk load.
// Bulk loads log and skip these rather than failing the whole load (spec.md
// §7 "Decode" is non-fatal).
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string { return fmt.Sprintf("decoding %s: %v", e.Path, e.Err) }
func (e *DecodeError) Unwrap() error { return e.Err }

// EncodeError wraps a failure persisting a crate or its parent-index cache.
// Unlike DecodeError this is always surfaced (spec.md §7 "Encode").
type EncodeError struct {
	Path string
	Err  error
}

func (e *EncodeError) Error() string { return fmt.Sprintf("encoding %s: %v", e.Path, e.Err) }
func (e *EncodeError) Unwrap() error { return e.Err }

// Index is the mutex-guarded, on-disk-backed index (spec.md §5). Readers
// take RLock for the duration of a search, at the call site — mirroring the
// teacher's own `s.mu.Lock()`/`Unlock()` call-site idiom rather than hiding
// it behind a closure. The writers Load and PersistCrate take Lock
// themselves around the swap or insert.
type Index struct {
	mu  sync.RWMutex
	idx *types.Index
	dir string
}

func Open(dir string) *Index {
	return &Index{idx: types.NewIndex(), dir: dir}
}

func (x *Index) RLock()   { x.mu.RLock() }
func (x *Index) RUnlock() { x.mu.RUnlock() }
func (x *Index) Lock()    { x.mu.Lock() }
func (x *Index) Unlock()  { x.mu.Unlock() }

// Raw returns the underlying index. The caller must hold RLock or Lock.
func (x *Index) Raw() *types.Index { return x.idx }

func (x *Index) crateDir() string { return filepath.Join(x.dir, "crate") }
func (x *Index) setDir() string   { return filepath.Join(x.dir, "set") }

// Load walks the index directory's crate/ and set/ subdirectories, decoding
// every crate file in parallel (bin preferred over json, per
// original_source's make_index) and loading or building each crate's parent
// index, then swaps the result in under Lock.
func (x *Index) Load(ctx context.Context) error {
	log.Printf("store: loading index from %s", x.crateDir())

	entries, err := os.ReadDir(x.crateDir())
	if err != nil {
		return fmt.Errorf("reading index directory %s: %w", x.crateDir(), err)
	}

	hasBin := make(map[string]bool)
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".bin") && !strings.HasSuffix(e.Name(), ".parents.bin") {
			hasBin[strings.TrimSuffix(e.Name(), ".bin")] = true
		}
	}

	var files []string
	for _, e := range entries {
		name := e.Name()
		if strings.HasSuffix(name, ".parents.bin") {
			continue
		}
		if strings.HasSuffix(name, ".json") && hasBin[strings.TrimSuffix(name, ".json")] {
			continue // a .bin sibling exists, skip the slower json decode
		}
		if strings.HasSuffix(name, ".bin") || strings.HasSuffix(name, ".json") {
			files = append(files, name)
		}
	}
	log.Printf("store: found %d crate files", len(files))

	type loaded struct {
		meta  types.CrateMetadata
		krate *types.Crate
	}

	results := make([]*loaded, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(runtime.GOMAXPROCS(0), 1))

	for i, name := range files {
		i, name := i, name
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			path := filepath.Join(x.crateDir(), name)
			krate, err := decodeCrateFile(path)
			if err != nil {
				log.Printf("store: %v", &DecodeError{Path: path, Err: err})
				return nil
			}
			results[i] = &loaded{meta: krate.Metadata(), krate: krate}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	newIdx := types.NewIndex()
	for _, r := range results {
		if r == nil {
			continue
		}
		newIdx.Crates[r.meta] = r.krate
	}

	for meta, krate := range newIdx.Crates {
		parents, err := x.loadOrBuildParents(meta, krate)
		if err != nil {
			return err
		}
		newIdx.Parents[meta] = parents
	}

	sets, err := loadSets(x.setDir())
	if err != nil {
		log.Printf("store: registering sets skipped: %v", err)
	} else {
		newIdx.Sets = sets
	}

	x.Lock()
	x.idx = newIdx
	x.Unlock()

	log.Printf("store: loaded %d crates, %d sets", len(newIdx.Crates), len(newIdx.Sets))
	return nil
}

func decodeCrateFile(path string) (*types.Crate, error) {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if strings.HasSuffix(path, ".bin") {
		return decodeCrateBin(data, stem)
	}
	return types.ParseCrate(data, stem)
}

// loadOrBuildParents loads a crate's cached `<name>.parents.bin` if present,
// otherwise builds it from scratch and persists it for next time
// (original_source/ruggle-server/src/lib.rs make_index).
func (x *Index) loadOrBuildParents(meta types.CrateMetadata, krate *types.Crate) (map[types.Id]types.Parent, error) {
	cachePath := filepath.Join(x.crateDir(), meta.Name+".parents.bin")

	if data, err := os.ReadFile(cachePath); err == nil {
		parents, decErr := decodeParentsGob(data)
		if decErr == nil {
			return parents, nil
		}
		log.Printf("store: %v", &DecodeError{Path: cachePath, Err: decErr})
	}

	parents := parent.Build(krate)

	data, err := encodeParentsGob(parents)
	if err != nil {
		return nil, &EncodeError{Path: cachePath, Err: err}
	}
	if err := os.WriteFile(cachePath, data, 0644); err != nil {
		return nil, &EncodeError{Path: cachePath, Err: err}
	}
	log.Printf("store: cached parent index for %s at %s", meta.String(), cachePath)

	return parents, nil
}

func loadSets(dir string) (map[string]types.Set, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading set directory %s: %w", dir, err)
	}

	sets := make(map[string]types.Set)
	for _, e := range entries {
		if !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		name := strings.TrimSuffix(e.Name(), ".json")
		path := filepath.Join(dir, e.Name())

		data, err := os.ReadFile(path)
		if err != nil {
			log.Printf("store: registering set %q skipped: %v", name, err)
			continue
		}
		var crates []types.CrateMetadata
		if err := json.Unmarshal(data, &crates); err != nil {
			log.Printf("store: registering set %q skipped: %v", name, err)
			continue
		}
		sets[name] = types.Set{Name: name, Crates: crates}
	}
	return sets, nil
}

// PersistCrate writes krate to disk as gob+zstd and rebuilds its parent
// index, used when a crate is added to a running index (internal/server).
func (x *Index) PersistCrate(krate *types.Crate) error {
	path := filepath.Join(x.crateDir(), krate.Name+".bin")
	if err := encodeCrateBin(krate, path); err != nil {
		return &EncodeError{Path: path, Err: err}
	}

	meta := krate.Metadata()
	parents := parent.Build(krate)
	cachePath := filepath.Join(x.crateDir(), krate.Name+".parents.bin")
	data, err := encodeParentsGob(parents)
	if err != nil {
		return &EncodeError{Path: cachePath, Err: err}
	}
	if err := os.WriteFile(cachePath, data, 0644); err != nil {
		return &EncodeError{Path: cachePath, Err: err}
	}

	x.Lock()
	x.idx.Crates[meta] = krate
	x.idx.Parents[meta] = parents
	x.Unlock()

	return nil
}

func encodeCrateBin(krate *types.Crate, path string) error {
	var buf bytes.Buffer
	zw, err := zstd.NewWriter(&buf)
	if err != nil {
		return fmt.Errorf("creating zstd writer: %w", err)
	}
	if err := gob.NewEncoder(zw).Encode(krate); err != nil {
		zw.Close()
		return fmt.Errorf("gob-encoding crate: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("closing zstd writer: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func decodeCrateBin(data []byte, stem string) (*types.Crate, error) {
	zr, err := zstd.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("creating zstd reader: %w", err)
	}
	defer zr.Close()

	var krate types.Crate
	if err := gob.NewDecoder(zr).Decode(&krate); err != nil {
		return nil, fmt.Errorf("gob-decoding crate: %w", err)
	}
	if krate.Name == "" {
		krate.Name = stem
	}
	return &krate, nil
}

func encodeParentsGob(parents map[types.Id]types.Parent) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(parents); err != nil {
		return nil, fmt.Errorf("gob-encoding parent index: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeParentsGob(data []byte) (map[types.Id]types.Parent, error) {
	var parents map[types.Id]types.Parent
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&parents); err != nil {
		return nil, fmt.Errorf("gob-decoding parent index: %w", err)
	}
	return parents, nil
}
