// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes the documentation SEO tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/ansuz/internal/analyzer"
	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/frontmatter"
	"github.com/starford/ansuz/internal/storage"
	"github.com/starford/ansuz/internal/suggest"
)

// Server wraps the MCP server with documentation tools.
type Server struct {
	mcp      *server.MCPServer
	store    storage.Provider
	remote   suggest.Suggester // optional, may be nil
	fallback suggest.Suggester
	limits   analyzer.Limits
	policy   frontmatter.Policy
	schedule []string
}

// New creates an MCP server with all tools registered. remote may be nil;
// suggestions then always come from the static fallback.
func New(store storage.Provider, remote, fallback suggest.Suggester, limits analyzer.Limits) *Server {
	s := &Server{
		store:    store,
		remote:   remote,
		fallback: fallback,
		limits:   limits,
		policy:   frontmatter.DefaultPolicy(),
		schedule: frontmatter.DefaultKeySchedule,
	}

	s.mcp = server.NewMCPServer(
		"Ansuz",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("analyze_document",
		mcp.WithDescription("Run the SEO checks against one Markdown document and return its issues as JSON."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the document (e.g. guide/intro.md)")),
	), s.analyzeDocument)

	s.mcp.AddTool(mcp.NewTool("suggest_metadata",
		mcp.WithDescription("Generate candidate front matter (description, keywords, dates, structuredData) "+
			"for a document without modifying it. Keys already present in the document are respected "+
			"per the merge rules; read the contract first via the get_frontmatter_contract tool or the "+
			"ansuz://frontmatter-contract resource."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the document")),
	), s.suggestMetadata)

	s.mcp.AddTool(mcp.NewTool("preview_enhance",
		mcp.WithDescription("Merge candidate metadata into a document's front matter and return the full "+
			"resulting text plus the changed keys. Nothing is written to disk."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the document")),
	), s.previewEnhance)

	s.mcp.AddTool(mcp.NewTool("list_documents",
		mcp.WithDescription("List all Markdown documents, or those under a specific folder."),
		mcp.WithString("folder", mcp.Description("Optional folder to list (empty for the whole tree)")),
	), s.listDocuments)

	s.mcp.AddTool(mcp.NewTool("get_frontmatter_contract",
		mcp.WithDescription("Returns the canonical front-matter contract: recognized keys, their merge "+
			"rules and formatting guarantees. Call this before proposing metadata."),
	), s.getContract)

	// Resource: front-matter contract.
	s.mcp.AddResource(
		mcp.NewResource("ansuz://frontmatter-contract", "Front Matter Contract",
			mcp.WithResourceDescription("Recognized front-matter keys and the merge rules applied to them."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readContractResource,
	)

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

func (s *Server) analyzeDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := s.store.Read(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}
	a := analyzer.New(s.limits)
	a.AnalyzeDocument(path, data)
	report := a.Report()

	doc := analyzer.DocReport{Path: path, Issues: []analyzer.Issue{}}
	if len(report.DocReports) > 0 {
		doc = report.DocReports[0]
	}
	out, _ := json.MarshalIndent(doc, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) suggestMetadata(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	_, _, cand, err := s.candidate(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(cand, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) previewEnhance(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	block, body, cand, err := s.candidate(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	merged, conflicts := frontmatter.Merge(block, cand.Block(), s.policy)
	changes := frontmatter.Diff(block, merged)
	text, err := frontmatter.Serialize(merged, body, s.schedule)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	out, _ := json.MarshalIndent(map[string]any{
		"path":      path,
		"changes":   changes,
		"conflicts": conflicts,
		"text":      text,
	}, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listDocuments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	folder := ""
	if f, err := req.RequireString("folder"); err == nil {
		folder = f
	}

	docs, err := s.store.List(folder)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var paths []string
	for _, d := range docs {
		paths = append(paths, d.Path)
	}
	return mcp.NewToolResultText(strings.Join(paths, "\n")), nil
}

func (s *Server) getContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(FrontmatterContract), nil
}

func (s *Server) readContractResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "ansuz://frontmatter-contract",
			MIMEType: "text/markdown",
			Text:     FrontmatterContract,
		},
	}, nil
}

// candidate reads and parses the document, then resolves metadata from the
// remote suggester with static fallback.
func (s *Server) candidate(ctx context.Context, path string) (*frontmatter.Block, string, suggest.Candidate, error) {
	data, err := s.store.Read(path)
	if err != nil {
		return nil, "", suggest.Candidate{}, fmt.Errorf("not found: %s", path)
	}
	block, body, err := frontmatter.Parse(data)
	if err != nil {
		return nil, "", suggest.Candidate{}, err
	}

	if s.remote != nil {
		cand, err := s.remote.Suggest(ctx, path, body, block)
		if err == nil {
			return block, body, cand, nil
		}
		if !errors.Is(err, apperr.ErrSuggestUnavailable) {
			return nil, "", suggest.Candidate{}, err
		}
	}
	cand, err := s.fallback.Suggest(ctx, path, body, block)
	if err != nil {
		return nil, "", suggest.Candidate{}, err
	}
	return block, body, cand, nil
}
