// Package clickup holds the ClickUp API v2 domain types and the HTTP
// transport the rest of the server fetches pages through.
package clickup

import (
	"strconv"
	"strings"
	"time"
)

// Task is a ClickUp task as returned by the task endpoints. Only the fields
// the server renders or exports are decoded.
type Task struct {
	ID           string        `json:"id"`
	CustomID     string        `json:"custom_id,omitempty"`
	Name         string        `json:"name"`
	TextContent  string        `json:"text_content,omitempty"`
	Description  string        `json:"description,omitempty"`
	Status       Status        `json:"status"`
	DateCreated  Millis        `json:"date_created,omitempty"`
	DateUpdated  Millis        `json:"date_updated,omitempty"`
	DateClosed   Millis        `json:"date_closed,omitempty"`
	DueDate      Millis        `json:"due_date,omitempty"`
	URL          string        `json:"url,omitempty"`
	Creator      *User         `json:"creator,omitempty"`
	Assignees    []User        `json:"assignees,omitempty"`
	Tags         []Tag         `json:"tags,omitempty"`
	Priority     *Priority     `json:"priority,omitempty"`
	List         *Ref          `json:"list,omitempty"`
	CustomFields []CustomField `json:"custom_fields,omitempty"`
}

// Status is the workflow state of a task. Status.Status is the name the
// client-side filter compares against, case-sensitively.
type Status struct {
	ID     string `json:"id,omitempty"`
	Status string `json:"status"`
	Type   string `json:"type,omitempty"`
	Color  string `json:"color,omitempty"`
}

// User is a workspace member as embedded in tasks.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

// Tag is a task tag.
type Tag struct {
	Name string `json:"name"`
}

// Priority is the task priority; ClickUp sends null when unset.
type Priority struct {
	ID       string `json:"id,omitempty"`
	Priority string `json:"priority"`
}

// Ref is a named reference to a list, folder or space.
type Ref struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// TaskPage is the envelope of the paged task endpoints.
type TaskPage struct {
	Tasks    []Task `json:"tasks"`
	LastPage bool   `json:"last_page,omitempty"`
}

// Millis is a Unix timestamp in milliseconds. ClickUp encodes these as JSON
// strings ("1700000000000"), numbers, or null depending on the endpoint.
type Millis string

// UnmarshalJSON accepts quoted, numeric and null timestamps.
func (m *Millis) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" {
		s = ""
	}
	*m = Millis(s)
	return nil
}

// Time returns the timestamp in UTC and whether it was set and parseable.
func (m Millis) Time() (time.Time, bool) {
	if m == "" {
		return time.Time{}, false
	}
	ms, err := strconv.ParseInt(string(m), 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(ms).UTC(), true
}

// ISO formats the timestamp as a full ISO-8601 UTC timestamp with
// millisecond precision, or "" when unset.
func (m Millis) ISO() string {
	t, ok := m.Time()
	if !ok {
		return ""
	}
	return t.Format(ISOLayout)
}

// ISOLayout is the timestamp layout used for exported dates.
const ISOLayout = "2006-01-02T15:04:05.000Z"

// DateLayout is the date-only layout used for date custom fields.
const DateLayout = "2006-01-02"
