// Package rpc defines the JSON wire shapes internal/server exposes over
// HTTP and internal/mcp exposes as MCP tool arguments/results — the "Exposed"
// surface of spec.md §6, concretized for a single transport-agnostic schema.
package rpc

// SearchRequest is the request body for POST /search.
type SearchRequest struct {
	Query     string   `json:"query"`
	Scopes    []string `json:"scopes"`
	Threshold float64  `json:"threshold,omitempty"`
	Limit     int      `json:"limit,omitempty"`
}

// SearchResponse is the response body for POST /search.
type SearchResponse struct {
	Hits []Hit `json:"hits"`
}

// Hit is the stable wire shape for a single search result (spec.md §6
// "Hit wire shape"). The similarity vector is deliberately omitted.
type Hit struct {
	Id        uint32   `json:"id"`
	Name      string   `json:"name"`
	Path      []string `json:"path"`
	Link      string   `json:"link"`
	Docs      string   `json:"docs,omitempty"`
	Signature string   `json:"signature"`
}

// CompareRequest is the request body for POST /compare — scores a single
// candidate item against a query without running the full search driver.
type CompareRequest struct {
	Query        string `json:"query"`
	CrateName    string `json:"crate_name"`
	CrateVersion string `json:"crate_version"`
	ItemId       uint32 `json:"item_id"`
}

// CompareResponse is the response body for POST /compare.
type CompareResponse struct {
	Score        float64  `json:"score"`
	Similarities []string `json:"similarities"`
}

// ParseQueryRequest is the request body for POST /parse_query.
type ParseQueryRequest struct {
	Text string `json:"text"`
}

// ParseQueryResponse is the response body for POST /parse_query.
type ParseQueryResponse struct {
	Query    string `json:"query"`
	Residual string `json:"residual,omitempty"`
}

// IndexRequest is the request body for POST /index — fetches a crate by
// name/version over the network and adds it to the running index.
type IndexRequest struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

// IndexResponse is the response body for POST /index.
type IndexResponse struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Items   int    `json:"items"`
}

// IndexLocalRequest is the request body for POST /index/local — generates
// rustdoc JSON from a local crate manifest and adds it to the running index.
type IndexLocalRequest struct {
	ManifestPath string `json:"manifest_path"`
}

// ScopesResponse is the response body for GET /scopes, listing the named
// sets currently registered in the index.
type ScopesResponse struct {
	Sets []SetSummary `json:"sets"`
}

type SetSummary struct {
	Name   string   `json:"name"`
	Crates []string `json:"crates"`
}
