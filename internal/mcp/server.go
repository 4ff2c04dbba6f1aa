// Package mcp exposes search/compare/parse_query as MCP tools over stdio —
// a second transport for spec.md §6's "Exposed" surface, alongside
// internal/server's HTTP routes, adapted from the teacher's own
// mcp-go server scaffolding.
package mcp

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/alpaylan/ruggle/internal/rpc"
	"github.com/alpaylan/ruggle/internal/server"
	"github.com/mark3labs/mcp-go/mcp"
	gomcpserver "github.com/mark3labs/mcp-go/server"
)

//go:embed instructions.md
var instructions string

type Server struct {
	mcpServer *gomcpserver.MCPServer
	client    *server.Client
}

func NewServer(socketPath string) (*Server, error) {
	client, err := server.ConnectOrSpawn(socketPath)
	if err != nil {
		return nil, fmt.Errorf("connecting to daemon: %w", err)
	}

	s := &Server{client: client}

	mcpServer := gomcpserver.NewMCPServer(
		"ruggle",
		"0.1.0",
		gomcpserver.WithInstructions(instructions),
		gomcpserver.WithToolCapabilities(true),
	)

	s.registerTools(mcpServer)

	s.mcpServer = mcpServer
	return s, nil
}

func (s *Server) registerTools(mcpServer *gomcpserver.MCPServer) {
	mcpServer.AddTool(
		mcp.NewTool("search_functions",
			mcp.WithDescription("Search indexed Rust crates for functions and inherent methods matching a signature query, e.g. `fn parse(input: &str) -> Result<T, E>`."),
			mcp.WithString("query",
				mcp.Description("A function signature query"),
				mcp.Required(),
			),
			mcp.WithArray("scopes",
				mcp.Description("Scopes to search: crate:<name>, crate:<name>:<version>, or set:<name>"),
				mcp.Items(map[string]interface{}{"type": "string"}),
				mcp.Required(),
			),
			mcp.WithNumber("threshold",
				mcp.Description("Maximum similarity score to include (lower is stricter; default comes from server config)"),
			),
			mcp.WithNumber("limit",
				mcp.Description("Maximum number of hits to return"),
			),
		),
		s.handleSearchFunctions,
	)

	mcpServer.AddTool(
		mcp.NewTool("parse_query",
			mcp.WithDescription("Parse a function signature query and return its normalized form, without running a search."),
			mcp.WithString("text",
				mcp.Description("The signature text to parse"),
				mcp.Required(),
			),
		),
		s.handleParseQuery,
	)

	mcpServer.AddTool(
		mcp.NewTool("compare_signature",
			mcp.WithDescription("Score a single known item (by crate and item id) against a query, without running a full search."),
			mcp.WithString("query",
				mcp.Description("A function signature query"),
				mcp.Required(),
			),
			mcp.WithString("crate_name",
				mcp.Description("Name of the crate the item belongs to"),
				mcp.Required(),
			),
			mcp.WithString("crate_version",
				mcp.Description("Version of the crate (default: any indexed version)"),
			),
			mcp.WithNumber("item_id",
				mcp.Description("The item's id within the crate's index"),
				mcp.Required(),
			),
		),
		s.handleCompareSignature,
	)
}

func (s *Server) handleSearchFunctions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	query, _ := args["query"].(string)
	if query == "" {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}

	var searchReq rpc.SearchRequest
	searchReq.Query = query

	if scopesRaw, ok := args["scopes"]; ok {
		scopesJSON, _ := json.Marshal(scopesRaw)
		json.Unmarshal(scopesJSON, &searchReq.Scopes)
	}
	if len(searchReq.Scopes) == 0 {
		return mcp.NewToolResultError("missing required parameter: scopes"), nil
	}

	if threshold, ok := args["threshold"].(float64); ok {
		searchReq.Threshold = threshold
	}
	if limit, ok := args["limit"].(float64); ok {
		searchReq.Limit = int(limit)
	}

	resp, err := s.client.Search(ctx, searchReq)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}

	resultJSON, _ := json.MarshalIndent(resp.Hits, "", "  ")
	return mcp.NewToolResultText(string(resultJSON)), nil
}

func (s *Server) handleParseQuery(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	text, _ := args["text"].(string)
	if text == "" {
		return mcp.NewToolResultError("missing required parameter: text"), nil
	}

	resp, err := s.client.ParseQuery(ctx, rpc.ParseQueryRequest{Text: text})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("parse failed: %v", err)), nil
	}

	return mcp.NewToolResultText(resp.Query), nil
}

func (s *Server) handleCompareSignature(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	query, _ := args["query"].(string)
	crateName, _ := args["crate_name"].(string)
	if query == "" || crateName == "" {
		return mcp.NewToolResultError("missing required parameter: query or crate_name"), nil
	}
	crateVersion, _ := args["crate_version"].(string)
	itemID, _ := args["item_id"].(float64)

	resp, err := s.client.Compare(ctx, rpc.CompareRequest{
		Query:        query,
		CrateName:    crateName,
		CrateVersion: crateVersion,
		ItemId:       uint32(itemID),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("compare failed: %v", err)), nil
	}

	resultJSON, _ := json.MarshalIndent(resp, "", "  ")
	return mcp.NewToolResultText(string(resultJSON)), nil
}

func (s *Server) Run() error {
	return gomcpserver.ServeStdio(s.mcpServer)
}

func (s *Server) Shutdown(_ context.Context) error {
	return nil
}
