// Package resources implements MCP resource handlers.
//
// Resources provide read-only data that the host can consume for context.
// They use URI-based addressing (clickup://...) following MCP conventions.
package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/clickup-mcp/internal/config"
)

// LimitsURI addresses the effective response limits.
const LimitsURI = "clickup://config/limits"

// Handler serves the server's resources.
type Handler struct {
	limits config.Limits
}

// NewHandler creates a resource Handler with its dependencies.
func NewHandler(limits config.Limits) *Handler {
	return &Handler{limits: limits}
}

// LimitsResource returns the MCP resource definition for the limits.
func (h *Handler) LimitsResource() mcp.Resource {
	return mcp.NewResource(
		LimitsURI,
		"ClickUp Response Limits",
		mcp.WithResourceDescription("Character limit and page sizes applied to tool responses"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleLimits returns the limits as JSON.
func (h *Handler) HandleLimits(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(h.limits, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling limits: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
