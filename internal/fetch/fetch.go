// Package fetch defines the optional network collaborator the core can use
// to retrieve a crate's rustdoc bytes when it is missing from the on-disk
// index (spec.md §6 "Consumed"), with an HTTP implementation against docs.rs
// adapted from internal/docs/fetch.go.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/alpaylan/ruggle/internal/types"
	"github.com/klauspost/compress/zstd"
)

// Fetcher retrieves the rustdoc bytes for a crate. The core never calls this
// directly from the comparator or search driver — only internal/server's
// add-crate path does, on a cache miss.
type Fetcher interface {
	Fetch(ctx context.Context, meta types.CrateMetadata) ([]byte, error)
}

// HTTPFetcher fetches zstd-compressed rustdoc JSON from docs.rs, the same
// endpoint and decompression step as the teacher's FetchRustdocJSON.
type HTTPFetcher struct {
	client *http.Client
}

func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{client: &http.Client{Timeout: 60 * time.Second}}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, meta types.CrateMetadata) ([]byte, error) {
	version := meta.Version
	if version == "" || version == "*" {
		version = "latest"
	}

	url := fmt.Sprintf("https://docs.rs/crate/%s/%s/json", meta.Name, version)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", "ruggle/0.1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("docs.rs returned %d for %s: %s", resp.StatusCode, meta.String(), string(body))
	}

	decoder, err := zstd.NewReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("creating zstd decoder: %w", err)
	}
	defer decoder.Close()

	data, err := io.ReadAll(decoder)
	if err != nil {
		return nil, fmt.Errorf("decompressing rustdoc JSON: %w", err)
	}

	return data, nil
}
