package mcp

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/nbtidy/internal/config"
	"github.com/hpungsan/nbtidy/internal/db"
	"github.com/hpungsan/nbtidy/internal/errors"
	"github.com/hpungsan/nbtidy/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	db  *sql.DB
	cfg *config.Config
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *sql.DB, cfg *config.Config) *Handlers {
	return &Handlers{db: db, cfg: cfg}
}

// Request types for each tool

// SanitizeRequest represents the arguments for notebook_sanitize.
type SanitizeRequest struct {
	Root         string `json:"root,omitempty"`
	StripOutputs bool   `json:"strip_outputs,omitempty"`
	KeepGoing    bool   `json:"keep_going,omitempty"`
	DryRun       bool   `json:"dry_run,omitempty"`
}

// CheckRequest represents the arguments for notebook_check.
type CheckRequest struct {
	Root         string `json:"root,omitempty"`
	StripOutputs bool   `json:"strip_outputs,omitempty"`
}

// HistoryRequest represents the arguments for notebook_history.
type HistoryRequest struct {
	Limit int `json:"limit,omitempty"`
}

// Handler implementations

// HandleSanitize handles the notebook_sanitize tool call.
func (h *Handlers) HandleSanitize(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SanitizeRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Sanitize(h.cfg, ops.SanitizeInput{
		Root:         input.Root,
		StripOutputs: input.StripOutputs || h.cfg.StripOutputs,
		KeepGoing:    input.KeepGoing || h.cfg.KeepGoing,
		DryRun:       input.DryRun,
	})
	if err != nil {
		return errorResult(err), nil
	}

	h.recordRun("sanitize", input.StripOutputs, result)
	return successResult(result)
}

// HandleCheck handles the notebook_check tool call.
func (h *Handlers) HandleCheck(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CheckRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Sanitize(h.cfg, ops.SanitizeInput{
		Root:         input.Root,
		StripOutputs: input.StripOutputs || h.cfg.StripOutputs,
		KeepGoing:    h.cfg.KeepGoing,
		DryRun:       true,
	})
	if err != nil {
		return errorResult(err), nil
	}

	h.recordRun("check", input.StripOutputs, result)
	return successResult(result)
}

// HandleHistory handles the notebook_history tool call.
func (h *Handlers) HandleHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[HistoryRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	limit := input.Limit
	if limit <= 0 {
		limit = h.cfg.HistoryLimit
	}
	result, err := ops.History(h.db, ops.HistoryInput{Limit: limit})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// recordRun stores a run in the ledger. Best-effort: a ledger failure
// never fails the tool call.
func (h *Handlers) recordRun(mode string, strip bool, result *ops.SanitizeOutput) {
	if h.db == nil {
		return
	}
	_ = db.RecordRun(h.db, &db.Run{
		ID:        ops.NewRunID(),
		Root:      result.Root,
		Mode:      mode,
		Strip:     strip,
		Checked:   result.Checked,
		Modified:  len(result.Modified),
		CreatedAt: time.Now().Unix(),
		Paths:     result.Modified,
	})
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if tErr, ok := err.(*errors.TidyError); ok {
		errorObj := map[string]any{
			"code":    tErr.Code,
			"message": tErr.Message,
		}
		// Internal error details can carry local paths; keep them out of
		// the wire payload.
		if tErr.Code != errors.ErrInternal && tErr.Details != nil {
			errorObj["details"] = tErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
