// Package server runs the unix-socket daemon that fronts a running
// internal/store.Index with search, index-update, and scope-listing
// endpoints over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/alpaylan/ruggle/internal/config"
	"github.com/alpaylan/ruggle/internal/docgen"
	"github.com/alpaylan/ruggle/internal/fetch"
	"github.com/alpaylan/ruggle/internal/search"
	"github.com/alpaylan/ruggle/internal/store"
	"golang.org/x/sync/singleflight"
)

// Server hosts the in-memory index and the search/index-update handlers the
// core exposes over HTTP. One Server corresponds to one daemon process.
type Server struct {
	index    *store.Index
	searcher *search.Searcher
	fetcher  fetch.Fetcher
	gen      docgen.Generator
	cfg      *config.Config

	socketPath string
	httpServer *http.Server
	listener   net.Listener

	mu         sync.Mutex
	expTimer   *time.Timer
	expiration time.Duration

	addCrateGroup singleflight.Group
}

func NewServer(cfg *config.Config, index *store.Index, socketPath string) *Server {
	expSec := cfg.Server.ExpirationSeconds
	if expSec <= 0 {
		expSec = 600
	}

	return &Server{
		index:      index,
		searcher:   search.NewSearcher(index.Raw()),
		fetcher:    fetch.NewHTTPFetcher(),
		gen:        &docgen.ExternalProcess{},
		cfg:        cfg,
		socketPath: socketPath,
		expiration: time.Duration(expSec) * time.Second,
	}
}

func (s *Server) Start(ctx context.Context) error {
	if err := s.index.Load(ctx); err != nil {
		log.Printf("server: initial load failed: %v", err)
	}
	// Load swaps in a new types.Index; point the searcher at it.
	s.index.RLock()
	s.searcher = search.NewSearcher(s.index.Raw())
	s.index.RUnlock()

	if err := os.MkdirAll(filepath.Dir(s.socketPath), 0755); err != nil {
		return fmt.Errorf("creating socket directory: %w", err)
	}
	os.Remove(s.socketPath)

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("listening on socket: %w", err)
	}
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("setting socket permissions: %w", err)
	}
	s.listener = listener

	mux := http.NewServeMux()
	mux.HandleFunc("POST /search", s.withExpReset(s.handleSearch))
	mux.HandleFunc("POST /compare", s.withExpReset(s.handleCompare))
	mux.HandleFunc("POST /parse_query", s.withExpReset(s.handleParseQuery))
	mux.HandleFunc("POST /index", s.withExpReset(s.handleIndex))
	mux.HandleFunc("POST /index/local", s.withExpReset(s.handleIndexLocal))
	mux.HandleFunc("GET /scopes", s.withExpReset(s.handleScopes))
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("POST /stop", s.handleStop)

	s.httpServer = &http.Server{Handler: mux}

	s.mu.Lock()
	s.expTimer = time.AfterFunc(s.expiration, s.expire)
	s.mu.Unlock()

	log.Printf("server: listening on %s (expires after %s of inactivity)", s.socketPath, s.expiration)

	if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("serving: %w", err)
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	var errs []error
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			log.Printf("server: shutdown error: %v", err)
			errs = append(errs, err)
		}
	}
	if s.listener != nil {
		if err := s.listener.Close(); err != nil {
			log.Printf("server: listener close error: %v", err)
			errs = append(errs, err)
		}
	}
	if err := os.Remove(s.socketPath); err != nil && !os.IsNotExist(err) {
		log.Printf("server: socket remove error: %v", err)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (s *Server) expire() {
	log.Printf("server: expiring due to inactivity")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.Stop(ctx)
	os.Exit(0)
}

func (s *Server) resetExpiration() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.expTimer != nil {
		s.expTimer.Stop()
		s.expTimer.Reset(s.expiration)
	}
}

func (s *Server) withExpReset(handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.resetExpiration()
		handler(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
