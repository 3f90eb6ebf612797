// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes cdir's history, shortcuts and ranking as read-only tools
// over stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/cdir/internal/apperr"
	"github.com/starford/cdir/internal/pretty"
	"github.com/starford/cdir/internal/search"
	"github.com/starford/cdir/internal/store"
	"github.com/starford/cdir/internal/suggest"
)

const defaultLimit = 20

// Store is the subset of the store the tools read.
type Store interface {
	ListRecentPaths(limit int) ([]store.Visit, error)
	ListShortcuts() ([]store.Shortcut, error)
	GetShortcut(name string) (*store.Shortcut, error)
	VisitHistory(since time.Time) ([]store.Visit, error)
}

// Server wraps the MCP server with cdir tools.
type Server struct {
	mcp     *server.MCPServer
	store   Store
	home    string
	suggest suggest.Config
	now     func() time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithHome sets the directory rendered as "~".
func WithHome(home string) Option {
	return func(s *Server) { s.home = home }
}

// WithSuggestConfig sets the ranking used by suggest_paths.
func WithSuggestConfig(cfg suggest.Config) Option {
	return func(s *Server) { s.suggest = cfg }
}

// WithClock sets the time source used by suggest_paths.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// pathResult is the JSON shape of one listed directory.
type pathResult struct {
	Path    string    `json:"path"`
	Display string    `json:"display"`
	Visited time.Time `json:"visited"`
	Score   float64   `json:"score,omitempty"`
}

// New creates a new MCP server with all cdir tools registered.
func New(st Store, opts ...Option) *Server {
	s := &Server{store: st, suggest: suggest.DefaultConfig(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	s.mcp = server.NewMCPServer(
		"cdir",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("recent_paths",
		mcp.WithDescription("List recently visited directories, most recent first."),
		mcp.WithNumber("limit", mcp.Description("Maximum number of rows (default 20)")),
	), s.recentPaths)

	s.mcp.AddTool(mcp.NewTool("search_paths",
		mcp.WithDescription("Search visited directories. Read the query syntax via the "+
			"cdir://query-syntax resource before using fuzzy mode."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query")),
		mcp.WithString("mode", mcp.Description("exact (default) or fuzzy")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of rows (default 20)")),
	), s.searchPaths)

	s.mcp.AddTool(mcp.NewTool("list_shortcuts",
		mcp.WithDescription("List all named directory shortcuts."),
	), s.listShortcuts)

	s.mcp.AddTool(mcp.NewTool("get_shortcut",
		mcp.WithDescription("Return the directory a shortcut points to."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Shortcut name (case-sensitive)")),
	), s.getShortcut)

	s.mcp.AddTool(mcp.NewTool("pretty_path",
		mcp.WithDescription("Render a path compactly using shortcut names and ~."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Absolute directory path")),
		mcp.WithNumber("max_width", mcp.Description("Optional character budget (0 = none)")),
	), s.prettyPath)

	s.mcp.AddTool(mcp.NewTool("suggest_paths",
		mcp.WithDescription("Rank directories likely to be visited next from the given directory."),
		mcp.WithString("cwd", mcp.Required(), mcp.Description("Current working directory")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of suggestions")),
	), s.suggestPaths)

	s.mcp.AddResource(
		mcp.NewResource("cdir://query-syntax", "Query Syntax",
			mcp.WithResourceDescription("Exact and fuzzy search syntax accepted by search_paths."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readQuerySyntax,
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

func (s *Server) resolver() (*pretty.Resolver, error) {
	shortcuts, err := s.store.ListShortcuts()
	if err != nil {
		return nil, err
	}
	return pretty.NewResolver(shortcuts, s.home), nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) toResults(visits []store.Visit) ([]pathResult, error) {
	r, err := s.resolver()
	if err != nil {
		return nil, err
	}
	out := make([]pathResult, 0, len(visits))
	for _, v := range visits {
		out = append(out, pathResult{Path: v.Path, Display: r.Render(v.Path, 0).String(), Visited: v.Time.UTC()})
	}
	return out, nil
}

func (s *Server) recentPaths(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	visits, err := s.store.ListRecentPaths(req.GetInt("limit", defaultLimit))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.toResults(visits)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(results)
}

func (s *Server) searchPaths(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	mode, err := search.ParseMode(req.GetString("mode", "exact"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	visits, err := s.store.ListRecentPaths(0)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	matched := search.Filter(query, mode, visits, func(v store.Visit) []string { return []string{v.Path} })
	if limit := req.GetInt("limit", defaultLimit); limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	results, err := s.toResults(matched)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(results)
}

func (s *Server) listShortcuts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list, err := s.store.ListShortcuts()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	type shortcut struct {
		Name        string `json:"name"`
		Path        string `json:"path"`
		Description string `json:"description,omitempty"`
	}
	out := make([]shortcut, 0, len(list))
	for _, sc := range list {
		out = append(out, shortcut{Name: sc.Name, Path: sc.Path, Description: sc.Description})
	}
	return jsonResult(out)
}

func (s *Server) getShortcut(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sc, err := s.store.GetShortcut(name)
	if errors.Is(err, apperr.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", name)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(sc.Path), nil
}

func (s *Server) prettyPath(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	r, err := s.resolver()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(r.Render(path, req.GetInt("max_width", 0)).String()), nil
}

func (s *Server) suggestPaths(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cwd, err := req.RequireString("cwd")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	cfg := s.suggest
	cfg.Limit = req.GetInt("limit", cfg.Limit)

	now := s.now()
	var since time.Time
	if cfg.Lookback > 0 {
		since = now.Add(-cfg.Lookback)
	}
	history, err := s.store.VisitHistory(since)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	r, err := s.resolver()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ranked := suggest.Suggest(history, cwd, now, cfg)
	out := make([]pathResult, 0, len(ranked))
	for _, sg := range ranked {
		out = append(out, pathResult{
			Path:    sg.Path,
			Display: r.Render(sg.Path, 0).String(),
			Visited: sg.LastVisit.UTC(),
			Score:   sg.Score,
		})
	}
	return jsonResult(out)
}

func (s *Server) readQuerySyntax(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "cdir://query-syntax",
			MIMEType: "text/markdown",
			Text:     QuerySyntax,
		},
	}, nil
}
