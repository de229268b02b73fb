// Package export flattens ClickUp tasks into CSV.
//
// Tasks in one export may carry different custom field schemas, and the
// same field name can appear more than once on a task. The header is the
// union of all names seen, each once, and every cell is resolved by name.
package export

import (
	"context"
	"net/url"
	"slices"
	"strings"

	"github.com/HendryAvila/clickup-mcp/internal/clickup"
	"github.com/HendryAvila/clickup-mcp/internal/fields"
	"github.com/HendryAvila/clickup-mcp/internal/pager"
)

// Standard column names, in export order.
const (
	ColumnTaskID      = "Task ID"
	ColumnName        = "Name"
	ColumnStatus      = "Status"
	ColumnDateCreated = "Date Created"
	ColumnDateUpdated = "Date Updated"
	ColumnURL         = "URL"
	ColumnAssignees   = "Assignees"
	ColumnCreator     = "Creator"
	ColumnDueDate     = "Due Date"
	ColumnPriority    = "Priority"
	ColumnDescription = "Description"
	ColumnTags        = "Tags"
)

// StandardColumns are the task attributes exported ahead of custom fields.
var StandardColumns = []string{
	ColumnTaskID, ColumnName, ColumnStatus, ColumnDateCreated, ColumnDateUpdated, ColumnURL,
	ColumnAssignees, ColumnCreator, ColumnDueDate, ColumnPriority, ColumnDescription, ColumnTags,
}

const (
	// PhoneColumn is the combined phone column.
	PhoneColumn = "phone_number"

	// emailColumn is the column the combined phone column is placed after.
	emailColumn = "Email"
)

// phoneFallbacks are the field names tried, in order, for the combined
// phone column after PhoneColumn itself.
var phoneFallbacks = []string{"Personal Phone", "Biz Phone number"}

// Options selects the exported columns.
type Options struct {
	// CustomFields restricts and orders the custom field columns. Names
	// not present on any task are dropped. Empty exports every field seen.
	CustomFields []string
	// IncludeStandardFields prepends StandardColumns.
	IncludeStandardFields bool
	// AddPhoneColumn adds a phone_number column combining every phone
	// field of a task, unless such a column already exists.
	AddPhoneColumn bool
}

// Request describes one export.
type Request struct {
	Endpoint string
	Filters  url.Values
	// Statuses filters tasks by exact status name after fetching.
	Statuses []string
	Options
}

// Result is a finished export. CSV is "" when no task matched.
type Result struct {
	CSV     string
	Columns []string
	Rows    int
	Scanned int
}

// TaskSource reads every task of an endpoint.
type TaskSource interface {
	FetchAll(ctx context.Context, endpoint string, filters url.Values) ([]clickup.Task, error)
}

// CSV fetches every task of req.Endpoint and renders the matching ones.
func CSV(ctx context.Context, src TaskSource, req Request) (*Result, error) {
	all, err := src.FetchAll(ctx, req.Endpoint, req.Filters)
	if err != nil {
		return nil, err
	}

	tasks := pager.FilterByStatus(all, req.Statuses)
	if len(tasks) == 0 {
		return &Result{Scanned: len(all)}, nil
	}

	columns := Columns(tasks, req.Options)
	return &Result{
		CSV:     Render(tasks, columns, req.Options),
		Columns: columns,
		Rows:    len(tasks),
		Scanned: len(all),
	}, nil
}

// Columns computes the header for tasks.
func Columns(tasks []clickup.Task, opts Options) []string {
	observed := fields.Names(tasks)

	custom := observed
	if len(opts.CustomFields) > 0 {
		custom = nil
		for _, name := range opts.CustomFields {
			if slices.Contains(observed, name) {
				custom = append(custom, name)
			}
		}
	}

	var columns []string
	add := func(name string) {
		if !slices.Contains(columns, name) {
			columns = append(columns, name)
		}
	}
	if opts.IncludeStandardFields {
		for _, c := range StandardColumns {
			add(c)
		}
	}
	for _, c := range custom {
		add(c)
	}

	if opts.AddPhoneColumn && !slices.Contains(columns, PhoneColumn) {
		if i := slices.Index(columns, emailColumn); i >= 0 {
			columns = slices.Insert(columns, i+1, PhoneColumn)
		} else {
			columns = append(columns, PhoneColumn)
		}
	}
	return columns
}

// Render writes the header row and one row per task, newline-separated.
func Render(tasks []clickup.Task, columns []string, opts Options) string {
	var b strings.Builder
	writeRow(&b, columns)
	row := make([]string, len(columns))
	for _, t := range tasks {
		for i, col := range columns {
			row[i] = Cell(t, col, opts)
		}
		b.WriteByte('\n')
		writeRow(&b, row)
	}
	return b.String()
}

func writeRow(b *strings.Builder, cells []string) {
	for i, c := range cells {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(Escape(c))
	}
}

// Escape quotes a cell containing a comma, double quote or newline and
// doubles its inner quotes. Other cells are returned unchanged.
func Escape(s string) string {
	if !strings.ContainsAny(s, ",\"\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// Cell resolves one column of a task.
func Cell(t clickup.Task, column string, opts Options) string {
	if opts.IncludeStandardFields {
		if v, ok := standardValue(t, column); ok {
			return v
		}
	}
	if column == PhoneColumn && opts.AddPhoneColumn {
		return CombinedPhone(t)
	}
	return fields.Get(t, column, "")
}

// CombinedPhone picks a task's phone number: the phone_number field, then
// "Personal Phone", then "Biz Phone number", then the first phone-like
// field with a value.
func CombinedPhone(t clickup.Task) string {
	for _, name := range append([]string{PhoneColumn}, phoneFallbacks...) {
		if v := fields.Get(t, name, ""); v != "" {
			return v
		}
	}
	for _, f := range t.CustomFields {
		if fields.LooksLikePhone(f) && fields.HasValue(f) {
			return fields.Extract(f)
		}
	}
	return ""
}

func standardValue(t clickup.Task, column string) (string, bool) {
	switch column {
	case ColumnTaskID:
		return t.ID, true
	case ColumnName:
		return t.Name, true
	case ColumnStatus:
		return t.Status.Status, true
	case ColumnDateCreated:
		return t.DateCreated.ISO(), true
	case ColumnDateUpdated:
		return t.DateUpdated.ISO(), true
	case ColumnURL:
		return t.URL, true
	case ColumnAssignees:
		names := make([]string, 0, len(t.Assignees))
		for _, u := range t.Assignees {
			names = append(names, userName(u))
		}
		return strings.Join(names, fields.ListSeparator), true
	case ColumnCreator:
		if t.Creator == nil {
			return "", true
		}
		return userName(*t.Creator), true
	case ColumnDueDate:
		return t.DueDate.ISO(), true
	case ColumnPriority:
		if t.Priority == nil {
			return "", true
		}
		return t.Priority.Priority, true
	case ColumnDescription:
		if t.TextContent != "" {
			return t.TextContent, true
		}
		return t.Description, true
	case ColumnTags:
		names := make([]string, 0, len(t.Tags))
		for _, tag := range t.Tags {
			names = append(names, tag.Name)
		}
		return strings.Join(names, fields.ListSeparator), true
	default:
		return "", false
	}
}

func userName(u clickup.User) string {
	if u.Username != "" {
		return u.Username
	}
	return u.Email
}
