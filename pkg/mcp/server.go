// Package mcp exposes the terminology graph to MCP clients over Stdio.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/duynguyendang/termgraph/pkg/dictionary"
	"github.com/duynguyendang/termgraph/pkg/graph"
	"github.com/duynguyendang/termgraph/pkg/store"
)

// MCPServer wraps a single open concept store.
type MCPServer struct {
	store *store.ConceptStore
}

// Run starts the MCP server on Stdio.
func Run(ctx context.Context, st *store.ConceptStore) error {
	s := server.NewMCPServer(
		"TermGraph",
		"0.1.0",
		server.WithResourceCapabilities(true, true),
		server.WithLogging(),
	)

	ms := &MCPServer{store: st}

	// --- Resources ---

	// Resource: Store Summary
	s.AddResource(
		mcp.NewResource(
			"termgraph://summary",
			"Store Summary",
			mcp.WithResourceDescription("Summary statistics of the concept graph store"),
			mcp.WithMIMEType("application/json"),
		),
		ms.handleSummary,
	)

	// --- Tools ---

	s.AddTool(
		mcp.NewTool(
			"lookup_term",
			mcp.WithDescription("Look up the preferred term of a concept code."),
			mcp.WithString("code", mcp.Required(), mcp.Description("The concept code, e.g. C4872")),
		),
		ms.handleLookupTerm,
	)

	s.AddTool(
		mcp.NewTool(
			"ancestors",
			mcp.WithDescription("List all ancestors of a concept with hop distance."),
			mcp.WithString("code", mcp.Required(), mcp.Description("The seed concept code")),
		),
		ms.handleAncestors,
	)

	s.AddTool(
		mcp.NewTool(
			"descendants",
			mcp.WithDescription("List all descendants of a concept with hop distance."),
			mcp.WithString("code", mcp.Required(), mcp.Description("The seed concept code")),
		),
		ms.handleDescendants,
	)

	s.AddTool(
		mcp.NewTool(
			"search_terms",
			mcp.WithDescription("Fuzzy-search concept synonyms."),
			mcp.WithString("query", mcp.Required(), mcp.Description("The search query string")),
			mcp.WithNumber("limit", mcp.Description("Max number of results (default 10)")),
		),
		ms.handleSearchTerms,
	)

	// Start the server on Stdio
	slog.Info("Starting MCP server on Stdio")
	return server.ServeStdio(s)
}

// --- Resource Handlers ---

func (ms *MCPServer) handleSummary(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	snap := ms.store.Snapshot()
	summary := map[string]interface{}{
		"concept_count": snap.Len(),
		"generation":    snap.Generation(),
	}

	jsonBytes, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal summary: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}

// --- Tool Handlers ---

func (ms *MCPServer) handleLookupTerm(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	code, ok := args["code"].(string)
	if !ok {
		return mcp.NewToolResultError("code argument required"), nil
	}

	term, found := ms.store.LookupTerm(code)
	if !found {
		return mcp.NewToolResultText(fmt.Sprintf("No concept with code %s.", code)), nil
	}
	return mcp.NewToolResultText(term), nil
}

func (ms *MCPServer) handleAncestors(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return ms.traverse(request, graph.Ancestors)
}

func (ms *MCPServer) handleDescendants(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return ms.traverse(request, graph.Descendants)
}

func (ms *MCPServer) traverse(request mcp.CallToolRequest, walk func(*store.Snapshot, []string) []graph.Hit) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	code, ok := args["code"].(string)
	if !ok {
		return mcp.NewToolResultError("code argument required"), nil
	}

	hits := walk(ms.store.Snapshot(), []string{code})
	if len(hits) == 0 {
		return mcp.NewToolResultText("No results found."), nil
	}

	var formatted []string
	for _, h := range hits {
		formatted = append(formatted, fmt.Sprintf("%s (%s) distance=%d", h.Code, h.Term, h.Distance))
	}
	return mcp.NewToolResultText(strings.Join(formatted, "\n")), nil
}

func (ms *MCPServer) handleSearchTerms(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	query, ok := args["query"].(string)
	if !ok {
		return mcp.NewToolResultError("query argument required"), nil
	}

	limit := 10
	if l, ok := args["limit"].(float64); ok {
		limit = int(l)
	}

	matches := dictionary.Search(ms.store.Snapshot(), query, limit)
	if len(matches) == 0 {
		return mcp.NewToolResultText("No matches found."), nil
	}

	var formatted []string
	for _, m := range matches {
		formatted = append(formatted, fmt.Sprintf("%s: %s (%.2f)", m.Code, m.Term, m.Score))
	}
	return mcp.NewToolResultText(strings.Join(formatted, "\n")), nil
}
