package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/alpaylan/ruggle/internal/rpc"
)

// Client talks to a running Server over its unix socket.
type Client struct {
	socketPath string
	httpClient *http.Client
}

func NewClient(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		httpClient: &http.Client{
			Transport: &http.Transport{
				DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
					return net.Dial("unix", socketPath)
				},
			},
			Timeout: 5 * time.Minute, // indexing a large crate can be slow
		},
	}
}

// ConnectOrSpawn tries to connect to the daemon, spawning it if necessary.
func ConnectOrSpawn(socketPath string) (*Client, error) {
	client := NewClient(socketPath)

	if client.IsAvailable() {
		return client, nil
	}

	if err := Spawn(); err != nil {
		return nil, fmt.Errorf("spawning daemon: %w", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		time.Sleep(100 * time.Millisecond)
		if client.IsAvailable() {
			return client, nil
		}
	}

	return nil, fmt.Errorf("daemon did not start within 5 seconds")
}

func (c *Client) IsAvailable() bool {
	conn, err := net.DialTimeout("unix", c.socketPath, 100*time.Millisecond)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

func (c *Client) Search(ctx context.Context, req rpc.SearchRequest) (*rpc.SearchResponse, error) {
	var resp rpc.SearchResponse
	err := c.post(ctx, "/search", req, &resp)
	return &resp, err
}

func (c *Client) Compare(ctx context.Context, req rpc.CompareRequest) (*rpc.CompareResponse, error) {
	var resp rpc.CompareResponse
	err := c.post(ctx, "/compare", req, &resp)
	return &resp, err
}

func (c *Client) ParseQuery(ctx context.Context, req rpc.ParseQueryRequest) (*rpc.ParseQueryResponse, error) {
	var resp rpc.ParseQueryResponse
	err := c.post(ctx, "/parse_query", req, &resp)
	return &resp, err
}

func (c *Client) Index(ctx context.Context, req rpc.IndexRequest) (*rpc.IndexResponse, error) {
	var resp rpc.IndexResponse
	err := c.post(ctx, "/index", req, &resp)
	return &resp, err
}

func (c *Client) IndexLocal(ctx context.Context, req rpc.IndexLocalRequest) (*rpc.IndexResponse, error) {
	var resp rpc.IndexResponse
	err := c.post(ctx, "/index/local", req, &resp)
	return &resp, err
}

func (c *Client) Scopes(ctx context.Context) (*rpc.ScopesResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://unix/scopes", nil)
	if err != nil {
		return nil, err
	}
	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scopes request: %w", err)
	}
	defer httpResp.Body.Close()

	var resp rpc.ScopesResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decoding scopes: %w", err)
	}
	return &resp, nil
}

func (c *Client) Stop(ctx context.Context) error {
	var resp map[string]string
	return c.post(ctx, "/stop", nil, &resp)
}

func (c *Client) post(ctx context.Context, path string, body, result interface{}) error {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "http://unix"+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("daemon returned %d: %s", resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	return nil
}
