// Package tools implements the MCP tool handlers for ClickUp.
//
// Each tool is a struct that receives its dependencies via constructor
// and exposes Definition() for registration and Handle() with mcp-go's
// CallToolRequest signature. Domain failures are returned as tool error
// results, never as Go errors, so the client sees the message.
package tools

import (
	"bytes"
	"encoding/json"
	"maps"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/HendryAvila/clickup-mcp/internal/clickup"
	"github.com/HendryAvila/clickup-mcp/internal/response"
)

// itemLabel names the collection in truncation messages.
const itemLabel = "tasks"

// intArg extracts an integer argument from a tool request, returning
// defaultVal if the key is missing or not a number (JSON numbers are float64).
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}

// boolArg extracts a boolean argument from a tool request.
func boolArg(req mcp.CallToolRequest, key string, defaultVal bool) bool {
	v, ok := req.GetArguments()[key].(bool)
	if !ok {
		return defaultVal
	}
	return v
}

// stringSliceArg extracts a list of strings. A plain string is split on
// commas so clients that cannot send arrays still work. Blank entries are
// dropped.
func stringSliceArg(req mcp.CallToolRequest, key string) []string {
	var raw []string
	switch v := req.GetArguments()[key].(type) {
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				raw = append(raw, s)
			}
		}
	case []string:
		raw = v
	case string:
		raw = strings.Split(v, ",")
	}

	var out []string
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// taskFilters builds the server-side filters shared by search and export.
// Status filtering is handled separately by the pager.
func taskFilters(req mcp.CallToolRequest) url.Values {
	q := url.Values{}
	for _, a := range stringSliceArg(req, "assignees") {
		q.Add("assignees[]", a)
	}
	for _, tag := range stringSliceArg(req, "tags") {
		q.Add("tags[]", tag)
	}
	if boolArg(req, "include_closed", false) {
		q.Set("include_closed", strconv.FormatBool(true))
	}
	if boolArg(req, "subtasks", false) {
		q.Set("subtasks", strconv.FormatBool(true))
	}
	return q
}

// endpointArg resolves the task collection from list_id or team_id,
// falling back to the configured team.
func endpointArg(req mcp.CallToolRequest, defaultTeam string) (string, bool) {
	listID := strings.TrimSpace(req.GetString("list_id", ""))
	teamID := strings.TrimSpace(req.GetString("team_id", defaultTeam))
	if listID == "" && teamID == "" {
		return "", false
	}
	return clickup.TasksEndpoint(teamID, listID), true
}

// callLogger returns a logger tagged with the tool name and a fresh call id.
func callLogger(base *zap.Logger, tool string) *zap.Logger {
	return base.With(zap.String("tool", tool), zap.String("call_id", uuid.NewString()))
}

// bounded truncates body to limit and appends the truncation notice.
func bounded(body string, itemCount int, limit int) (string, *response.Info) {
	out := response.Truncate(body, itemCount, itemLabel, limit)
	return out.Content + out.Footer(), out.Truncation
}

// boundedJSON truncates a JSON object body and records the truncation
// info and any extra members inside the object, so the output stays a
// single parseable document. Content the JSON strategy could not keep
// valid gets the plain text footer instead.
func boundedJSON(body string, itemCount int, limit int, members map[string]any) (string, *response.Info) {
	out := response.Truncate(body, itemCount, itemLabel, limit)
	doc := []byte(out.Content)
	if !json.Valid(doc) || !bytes.HasPrefix(bytes.TrimSpace(doc), []byte("{")) {
		return out.Content + out.Footer(), out.Truncation
	}

	members = maps.Clone(members)
	if members == nil {
		members = make(map[string]any)
	}
	if out.Truncation != nil {
		members["truncation"] = out.Truncation
	}
	if len(members) == 0 {
		return out.Content, nil
	}

	// Members are appended before the closing brace of the object.
	doc = bytes.TrimRight(doc, " \t\r\n")
	buf := bytes.NewBuffer(append([]byte(nil), doc[:len(doc)-1]...))
	empty := bytes.Equal(bytes.TrimSpace(buf.Bytes()), []byte("{"))
	for _, key := range slices.Sorted(maps.Keys(members)) {
		v, err := json.Marshal(members[key])
		if err != nil {
			return out.Content + out.Footer(), out.Truncation
		}
		if !empty {
			buf.WriteByte(',')
		}
		empty = false
		k, _ := json.Marshal(key)
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')

	var indented bytes.Buffer
	if err := json.Indent(&indented, buf.Bytes(), "", "  "); err != nil {
		return out.Content + out.Footer(), out.Truncation
	}
	return indented.String(), out.Truncation
}

// withLimits documents the shared pagination arguments.
func withLimits(defaultLimit, maxLimit int) []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithNumber("offset",
			mcp.Description("Number of matching tasks to skip (default: 0)"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Tasks per page (default: "+strconv.Itoa(defaultLimit)+", max: "+strconv.Itoa(maxLimit)+")"),
		),
	}
}
