// Package response shapes tool output for the client: response modes,
// pagination metadata and size-bounded truncation.
//
// Three response modes trade detail for size:
//   - detailed: one markdown section per task with custom fields
//   - compact: one line per task
//   - json: the raw task objects with pagination metadata
package response

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// Response mode constants.
const (
	ModeDetailed = "detailed"
	ModeCompact  = "compact"
	ModeJSON     = "json"
)

// ModeValues returns the enum values for MCP tool definitions.
func ModeValues() []string {
	return []string{ModeDetailed, ModeCompact, ModeJSON}
}

// ParseMode normalizes a response_mode string, defaulting to "detailed"
// for empty or unrecognized values.
func ParseMode(s string) string {
	switch s {
	case ModeCompact, ModeJSON:
		return s
	default:
		return ModeDetailed
	}
}

// NavigationHint returns a one-line footer when more results exist.
// Returns an empty string when the page is the last one.
func NavigationHint(p Pagination) string {
	if !p.HasMore || p.NextOffset == nil {
		return ""
	}
	if p.Total != nil {
		return fmt.Sprintf("\n📊 Showing %s-%s of %s. Use offset=%d for the next page.",
			humanize.Comma(int64(p.Offset+1)), humanize.Comma(int64(p.Offset+p.Count)),
			humanize.Comma(int64(*p.Total)), *p.NextOffset)
	}
	return fmt.Sprintf("\n📊 Showing %s-%s. More results may exist: use offset=%d for the next page.",
		humanize.Comma(int64(p.Offset+1)), humanize.Comma(int64(p.Offset+p.Count)), *p.NextOffset)
}
