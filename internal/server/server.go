// Package server wires all MCP components and creates the server instance.
//
// This is the composition root: it creates concrete implementations and
// injects them into the tools, prompts and resources that depend on
// abstractions. No business logic lives here, only wiring.
package server

import (
	"fmt"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/HendryAvila/clickup-mcp/internal/clickup"
	"github.com/HendryAvila/clickup-mcp/internal/config"
	"github.com/HendryAvila/clickup-mcp/internal/pager"
	"github.com/HendryAvila/clickup-mcp/internal/prompts"
	"github.com/HendryAvila/clickup-mcp/internal/resources"
	"github.com/HendryAvila/clickup-mcp/internal/tools"
)

// Version is set at build time via ldflags.
var Version = "dev"

// NewLogger builds a JSON logger on stderr; stdout carries the MCP stdio
// transport.
func NewLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level: %w", err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = lvl
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger.With(zap.String("version", Version)), nil
}

// New creates and configures the MCP server with all tools, prompts,
// and resources registered. This is the single place where all
// dependencies are resolved.
func New(cfg *config.Config, logger *zap.Logger) (*server.MCPServer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	// --- Create shared dependencies ---

	client := clickup.NewClient(cfg.APIToken,
		clickup.WithBaseURL(cfg.BaseURL),
		clickup.WithTimeout(cfg.Timeout),
		clickup.WithLogger(logger.Named("clickup")),
		clickup.WithUserAgent("clickup-mcp/"+Version),
	)
	return newServer(client, cfg, logger), nil
}

// newServer registers everything against fetcher. Split from New so the
// wiring can be exercised without network access.
func newServer(fetcher clickup.Fetcher, cfg *config.Config, logger *zap.Logger) *server.MCPServer {
	p := pager.New(fetcher, cfg.MaxLimit, logger.Named("pager"))
	toolLog := logger.Named("tools")

	// --- Create the MCP server ---

	s := server.NewMCPServer(
		"clickup-mcp",
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	// --- Register tools ---

	searchTool := tools.NewSearchTasksTool(p, cfg.TeamID, cfg.Limits, toolLog)
	s.AddTool(searchTool.Definition(), searchTool.Handle)

	getTaskTool := tools.NewGetTaskTool(fetcher, cfg.CharacterLimit, toolLog)
	s.AddTool(getTaskTool.Definition(), getTaskTool.Handle)

	exportTool := tools.NewExportCSVTool(p, cfg.TeamID, cfg.Limits, toolLog)
	s.AddTool(exportTool.Definition(), exportTool.Handle)

	phoneTool := tools.NewNormalizePhoneTool()
	s.AddTool(phoneTool.Definition(), phoneTool.Handle)

	// --- Register prompts ---

	exportPrompt := prompts.NewExportPrompt()
	s.AddPrompt(exportPrompt.Definition(), exportPrompt.Handle)

	// --- Register resources ---

	resourceHandler := resources.NewHandler(cfg.Limits)
	s.AddResource(resourceHandler.LimitsResource(), resourceHandler.HandleLimits)

	logger.Info("server ready",
		zap.String("base_url", cfg.BaseURL),
		zap.Bool("team_configured", cfg.TeamID != ""),
		zap.Int("character_limit", cfg.CharacterLimit),
		zap.Int("max_limit", cfg.MaxLimit),
		zap.Int("default_limit", cfg.DefaultLimit),
	)
	return s
}

// serverInstructions returns the system instructions that tell the AI
// how to use the tools effectively.
func serverInstructions() string {
	return `You have access to a ClickUp workspace through clickup-mcp.

## Tools
- clickup_search_tasks: page through tasks of a list (list_id) or the whole workspace.
  Filter with statuses, assignees and tags. Use offset/limit to page; the response
  footer tells you the next offset.
- clickup_get_task: one task with every custom field value.
- clickup_export_tasks_csv: every matching task as CSV, with an optional combined
  phone_number column in E.164 form.
- clickup_normalize_phone: normalize a single phone number the way exports do.

## Response size
Responses are capped. When a response says it was truncated, narrow the filters,
lower the limit, or use response_mode="compact".

## Statuses
Status names are matched exactly and are case-sensitive. If ClickUp rejects a
status filter, the server fetches every task and filters locally; this is slower
on large workspaces but returns exact totals.`
}
