package mcp

import (
	"database/sql"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hpungsan/nbtidy/internal/config"
)

var sanitizeToolDef = mcp.NewTool("notebook_sanitize",
	mcp.WithDescription("Repair the JSON structure of every notebook under a directory so it passes strict nbformat validation. Only files that needed repairs are rewritten."),
	mcp.WithString("root", mcp.Description("Directory to scan recursively (default: current directory)")),
	mcp.WithBoolean("strip_outputs", mcp.Description("Empty every code cell's outputs instead of normalizing them")),
	mcp.WithBoolean("keep_going", mcp.Description("Record unreadable or malformed files and continue instead of aborting")),
	mcp.WithBoolean("dry_run", mcp.Description("Report which files would change without writing anything")),
)

var checkToolDef = mcp.NewTool("notebook_check",
	mcp.WithDescription("Dry-run sanitize: list the notebooks under a directory that would be rewritten, without modifying any file."),
	mcp.WithString("root", mcp.Description("Directory to scan recursively (default: current directory)")),
	mcp.WithBoolean("strip_outputs", mcp.Description("Check against strip mode instead of normalize mode")),
)

var historyToolDef = mcp.NewTool("notebook_history",
	mcp.WithDescription("List recent sanitize and check runs with the paths they modified."),
	mcp.WithNumber("limit", mcp.Description("Maximum runs to return")),
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"notebook_sanitize": {
		def:     sanitizeToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSanitize },
	},
	"notebook_check": {
		def:     checkToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCheck },
	},
	"notebook_history": {
		def:     historyToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleHistory },
	},
}

// AllToolNames returns a list of all valid tool names.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	return names
}

// NewServer creates a new MCP server with nbtidy tools registered.
func NewServer(db *sql.DB, cfg *config.Config, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"nbtidy",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(db, cfg)
	for _, entry := range toolRegistry {
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run starts the MCP server using stdio transport.
func Run(db *sql.DB, cfg *config.Config, version string) error {
	s := NewServer(db, cfg, version)
	return server.ServeStdio(s)
}
