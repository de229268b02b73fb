// Package render turns tasks into tool output: markdown sections, compact
// lines or JSON.
//
// Detailed output gives every task a top-level "# Name (id)" header; the
// truncator counts those headers to report how many tasks survived a cut.
package render

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/HendryAvila/clickup-mcp/internal/clickup"
	"github.com/HendryAvila/clickup-mcp/internal/fields"
	"github.com/HendryAvila/clickup-mcp/internal/response"
)

// listDescriptionLength caps descriptions in multi-task output.
const listDescriptionLength = 300

// TaskList renders a page of tasks in the given response mode.
func TaskList(tasks []clickup.Task, p response.Pagination, mode string) (string, error) {
	if mode == response.ModeJSON {
		return TasksJSON(tasks, p)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## 🔍 %s %s\n\n", humanize.Comma(int64(len(tasks))), plural(len(tasks), "task", "tasks"))
	for _, t := range tasks {
		if mode == response.ModeCompact {
			b.WriteString(Compact(t))
			b.WriteByte('\n')
			continue
		}
		b.WriteString(Detailed(t, listDescriptionLength))
		b.WriteString("\n---\n\n")
	}
	b.WriteString(response.NavigationHint(p))
	return b.String(), nil
}

// TaskDetail renders a single task. JSON mode returns the task object.
func TaskDetail(t clickup.Task, mode string) (string, error) {
	switch mode {
	case response.ModeJSON:
		b, err := json.MarshalIndent(t, "", "  ")
		if err != nil {
			return "", fmt.Errorf("encoding task: %w", err)
		}
		return string(b), nil
	case response.ModeCompact:
		return Compact(t), nil
	default:
		return Detailed(t, 0), nil
	}
}

// TasksJSON renders {"tasks": [...], "pagination": {...}}.
func TasksJSON(tasks []clickup.Task, p response.Pagination) (string, error) {
	if tasks == nil {
		tasks = []clickup.Task{}
	}
	b, err := json.MarshalIndent(struct {
		Tasks      []clickup.Task      `json:"tasks"`
		Pagination response.Pagination `json:"pagination"`
	}{tasks, p}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding tasks: %w", err)
	}
	return string(b), nil
}

// Compact renders one line per task.
func Compact(t clickup.Task) string {
	line := fmt.Sprintf("- **%s** (`%s`) · %s", t.Name, t.ID, t.Status.Status)
	if due := t.DueDate.ISO(); due != "" {
		line += " · due " + due[:10]
	}
	if names := assigneeNames(t); names != "" {
		line += " · " + names
	}
	return line
}

// Detailed renders a markdown section for a task. descLimit caps the
// description length; 0 keeps it whole.
func Detailed(t clickup.Task, descLimit int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s (%s)\n\n", t.Name, t.ID)
	fmt.Fprintf(&b, "- **Status:** %s\n", t.Status.Status)
	if t.List != nil && t.List.Name != "" {
		fmt.Fprintf(&b, "- **List:** %s\n", t.List.Name)
	}
	if names := assigneeNames(t); names != "" {
		fmt.Fprintf(&b, "- **Assignees:** %s\n", names)
	}
	if t.Priority != nil && t.Priority.Priority != "" {
		fmt.Fprintf(&b, "- **Priority:** %s\n", t.Priority.Priority)
	}
	if due := t.DueDate.ISO(); due != "" {
		fmt.Fprintf(&b, "- **Due:** %s\n", due)
	}
	if created := t.DateCreated.ISO(); created != "" {
		fmt.Fprintf(&b, "- **Created:** %s\n", created)
	}
	if t.URL != "" {
		fmt.Fprintf(&b, "- **URL:** %s\n", t.URL)
	}

	var custom []string
	for _, f := range t.CustomFields {
		if v := fields.Extract(f); v != "" {
			custom = append(custom, fmt.Sprintf("- **%s:** %s", f.Name, v))
		}
	}
	if len(custom) > 0 {
		b.WriteString("\n## Custom Fields\n\n")
		b.WriteString(strings.Join(custom, "\n"))
		b.WriteByte('\n')
	}

	desc := strings.TrimSpace(t.TextContent)
	if desc == "" {
		desc = strings.TrimSpace(t.Description)
	}
	if desc != "" {
		if descLimit > 0 && len([]rune(desc)) > descLimit {
			desc = string([]rune(desc)[:descLimit]) + "…"
		}
		b.WriteString("\n## Description\n\n")
		b.WriteString(desc)
		b.WriteByte('\n')
	}
	return b.String()
}

func assigneeNames(t clickup.Task) string {
	names := make([]string, 0, len(t.Assignees))
	for _, u := range t.Assignees {
		if u.Username != "" {
			names = append(names, u.Username)
		} else if u.Email != "" {
			names = append(names, u.Email)
		}
	}
	return strings.Join(names, ", ")
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
