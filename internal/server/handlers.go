package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/alpaylan/ruggle/internal/compare"
	"github.com/alpaylan/ruggle/internal/query"
	"github.com/alpaylan/ruggle/internal/rpc"
	"github.com/alpaylan/ruggle/internal/scopes"
	"github.com/alpaylan/ruggle/internal/types"
)

func (s *Server) resolveScopes(scopeStrs []string) ([]types.CrateMetadata, error) {
	s.index.RLock()
	sets := s.index.Raw().Sets
	s.index.RUnlock()

	var krates []types.CrateMetadata
	for _, raw := range scopeStrs {
		sc, err := scopes.Parse(raw)
		if err != nil {
			return nil, err
		}
		expanded, err := scopes.Expand(sc, sets)
		if err != nil {
			return nil, err
		}
		krates = append(krates, expanded...)
	}
	return krates, nil
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req rpc.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.Threshold <= 0 {
		req.Threshold = s.cfg.Index.DefaultThreshold
	}
	if req.Limit <= 0 {
		req.Limit = s.cfg.Index.DefaultLimit
	}

	q, err := query.ParseQuery(req.Query)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	krates, err := s.resolveScopes(req.Scopes)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.index.RLock()
	hits, err := s.searcher.Search(q, krates, req.Threshold)
	s.index.RUnlock()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if req.Limit > 0 && len(hits) > req.Limit {
		hits = hits[:req.Limit]
	}

	out := make([]rpc.Hit, len(hits))
	for i, h := range hits {
		out[i] = rpc.Hit{
			Id:        uint32(h.Id),
			Name:      h.Name,
			Path:      h.Path,
			Link:      h.Link,
			Docs:      h.Docs,
			Signature: h.Signature,
		}
	}

	writeJSON(w, http.StatusOK, rpc.SearchResponse{Hits: out})
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req rpc.CompareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	q, err := query.ParseQuery(req.Query)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	meta := types.CrateMetadata{Name: req.CrateName, Version: req.CrateVersion}
	if meta.Version == "" {
		meta.Version = "*"
	}

	s.index.RLock()
	defer s.index.RUnlock()

	krate, ok := s.index.Raw().Lookup(meta)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("crate not present in the index: %q", meta.String()))
		return
	}
	item, ok := krate.Index[types.Id(req.ItemId)]
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("item not present in crate: id %d in %q", req.ItemId, meta.String()))
		return
	}

	sims := compare.CompareQuery(q, item, krate, types.Generics{}, map[string]query.Type{})
	reasons := make([]string, len(sims))
	for i, sim := range sims {
		reasons[i] = sim.Reason
	}

	writeJSON(w, http.StatusOK, rpc.CompareResponse{Score: sims.Score(), Similarities: reasons})
}

func (s *Server) handleParseQuery(w http.ResponseWriter, r *http.Request) {
	var req rpc.ParseQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	q, err := query.ParseQuery(req.Text)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, rpc.ParseQueryResponse{Query: q.String()})
}

func (s *Server) handleScopes(w http.ResponseWriter, r *http.Request) {
	s.index.RLock()
	defer s.index.RUnlock()

	var out []rpc.SetSummary
	for name, set := range s.index.Raw().Sets {
		crates := make([]string, len(set.Crates))
		for i, c := range set.Crates {
			crates[i] = c.String()
		}
		out = append(out, rpc.SetSummary{Name: name, Crates: crates})
	}

	writeJSON(w, http.StatusOK, rpc.ScopesResponse{Sets: out})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "stopping"})
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.Stop(ctx)
		os.Exit(0)
	}()
}
