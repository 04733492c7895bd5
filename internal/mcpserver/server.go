// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes CodeClip tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/xid"

	"github.com/JulianC775/CodeClip/internal/clipsvc"
	"github.com/JulianC775/CodeClip/internal/models"
	"github.com/JulianC775/CodeClip/internal/store"
)

// Server wraps the MCP server with CodeClip tools.
type Server struct {
	mcp *server.MCPServer
	svc *clipsvc.Service
}

// New creates a new MCP server with all CodeClip tools registered.
func New(svc *clipsvc.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"CodeClip",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_snippets",
		mcp.WithDescription("Search saved code snippets by title and tags, optionally filtered to one language."),
		mcp.WithString("query", mcp.Description("Case-insensitive search text (empty matches everything)")),
		mcp.WithString("language", mcp.Description("Exact language filter, e.g. go, python (empty for all)")),
	), s.searchSnippets)

	s.mcp.AddTool(mcp.NewTool("read_snippet",
		mcp.WithDescription("Read the full code of a snippet by id."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Snippet id")),
	), s.readSnippet)

	s.mcp.AddTool(mcp.NewTool("create_snippet",
		mcp.WithDescription("Save a new code snippet."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Display name of the snippet")),
		mcp.WithString("language", mcp.Required(), mcp.Description("Language tag, e.g. go, python")),
		mcp.WithString("code", mcp.Required(), mcp.Description("The code content")),
		mcp.WithString("tags", mcp.Description("Comma-separated tags, e.g. sort,algo")),
	), s.createSnippet)

	s.mcp.AddTool(mcp.NewTool("list_languages",
		mcp.WithDescription("List every language present in the collection."),
	), s.listLanguages)

	s.mcp.AddTool(mcp.NewTool("export_collection",
		mcp.WithDescription("Export the full snippet collection in its portable JSON form."),
	), s.exportCollection)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) searchSnippets(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := ""
	if q, err := req.RequireString("query"); err == nil {
		query = q
	}
	language := ""
	if l, err := req.RequireString("language"); err == nil {
		language = l
	}

	hits := s.svc.View(query, language)
	if len(hits) == 0 {
		return mcp.NewToolResultText("no snippets found"), nil
	}

	type hit struct {
		ID       string   `json:"id"`
		Title    string   `json:"title"`
		Language string   `json:"language"`
		Tags     []string `json:"tags"`
	}
	out := make([]hit, 0, len(hits))
	for _, sn := range hits {
		out = append(out, hit{ID: sn.ID, Title: sn.Title, Language: sn.Language, Tags: sn.Tags})
	}
	data, _ := json.MarshalIndent(out, "", "  ")
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) readSnippet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sn, err := s.svc.Get(id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	return mcp.NewToolResultText(sn.Code), nil
}

func (s *Server) createSnippet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	language, err := req.RequireString("language")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	code, err := req.RequireString("code")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var tags []string
	if raw, err := req.RequireString("tags"); err == nil && raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
	}

	id := xid.New().String()
	if _, err := s.svc.Dispatch(store.AddSnippet{Snippet: models.Snippet{
		ID:       id,
		Title:    strings.TrimSpace(title),
		Language: language,
		Code:     code,
		Tags:     tags,
	}}); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s", id)), nil
}

func (s *Server) listLanguages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	langs := s.svc.Languages()
	if len(langs) == 0 {
		return mcp.NewToolResultText("collection is empty"), nil
	}
	return mcp.NewToolResultText(strings.Join(langs, "\n")), nil
}

func (s *Server) exportCollection(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, err := s.svc.Export()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
