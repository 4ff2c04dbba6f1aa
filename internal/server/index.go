package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/alpaylan/ruggle/internal/rpc"
	"github.com/alpaylan/ruggle/internal/types"
)

// handleIndex fetches a crate@version over the network (internal/fetch) and
// adds it to the running index, deduping concurrent identical requests with
// addCrateGroup the same way the teacher's add-crate path does.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	var req rpc.IndexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "missing crate name")
		return
	}
	version := req.Version
	if version == "" {
		version = "*"
	}

	key := req.Name + "@" + version
	v, err, _ := s.addCrateGroup.Do(key, func() (interface{}, error) {
		return s.addCrate(r.Context(), types.CrateMetadata{Name: req.Name, Version: version})
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	krate := v.(*types.Crate)
	writeJSON(w, http.StatusOK, rpc.IndexResponse{
		Name:    krate.Name,
		Version: krate.Version,
		Items:   len(krate.Index),
	})
}

// addCrate fetches a crate's rustdoc bytes and adds it to the running
// index, returning the decoded crate so handleIndex can report its item
// count. Already-indexed crates are returned as-is without re-fetching.
func (s *Server) addCrate(ctx context.Context, meta types.CrateMetadata) (*types.Crate, error) {
	s.index.RLock()
	existing, ok := s.index.Raw().Lookup(meta)
	s.index.RUnlock()
	if ok {
		return existing, nil
	}

	data, err := s.fetcher.Fetch(ctx, meta)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", meta.String(), err)
	}

	krate, err := types.ParseCrate(data, meta.Name)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", meta.String(), err)
	}
	if err := s.index.PersistCrate(krate); err != nil {
		return nil, fmt.Errorf("persisting %s: %w", meta.String(), err)
	}

	return krate, nil
}

// handleIndexLocal generates rustdoc JSON from a local crate manifest
// (internal/docgen) and adds it to the running index. Out of scope per
// spec.md §1: the server's generator is a docgen.ExternalProcess stub, so
// this handler answers 501 with docgen.ErrNotConfigured.
func (s *Server) handleIndexLocal(w http.ResponseWriter, r *http.Request) {
	var req rpc.IndexLocalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	data, err := s.gen.Generate(r.Context(), req.ManifestPath)
	if err != nil {
		writeError(w, http.StatusNotImplemented, err.Error())
		return
	}

	krate, err := types.ParseCrate(data, req.ManifestPath)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := s.index.PersistCrate(krate); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, rpc.IndexResponse{
		Name:    krate.Name,
		Version: krate.Version,
		Items:   len(krate.Index),
	})
}
