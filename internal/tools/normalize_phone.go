package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/clickup-mcp/internal/phone"
)

// NormalizePhoneTool handles the clickup_normalize_phone MCP tool.
type NormalizePhoneTool struct{}

// NewNormalizePhoneTool creates a NormalizePhoneTool.
func NewNormalizePhoneTool() *NormalizePhoneTool {
	return &NormalizePhoneTool{}
}

// Definition returns the MCP tool definition for clickup_normalize_phone.
func (t *NormalizePhoneTool) Definition() mcp.Tool {
	return mcp.NewTool("clickup_normalize_phone",
		mcp.WithDescription(
			"Normalize a free-form phone number to E.164 the same way exports do. "+
				"Extensions are dropped; 10-digit numbers are treated as North American.",
		),
		mcp.WithString("phone",
			mcp.Required(),
			mcp.Description("Phone number as typed, e.g. \"(412) 481-2210 ext 5\""),
		),
	)
}

// Handle processes the clickup_normalize_phone tool call.
func (t *NormalizePhoneTool) Handle(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw := req.GetString("phone", "")
	if raw == "" {
		return mcp.NewToolResultError("'phone' is required"), nil
	}

	normalized := phone.Normalize(raw)
	if normalized == "" {
		return mcp.NewToolResultText(fmt.Sprintf(
			"Could not normalize %q: expected 10 to 15 digits not starting with 0.", raw)), nil
	}
	return mcp.NewToolResultText(normalized), nil
}
