// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/HendryAvila/clickup-mcp/internal/clickup"
)

// Call records one Fetch invocation.
type Call struct {
	Method   string
	Endpoint string
	Query    url.Values
}

// Page returns the page query parameter of the call, or -1.
func (c Call) Page() int {
	n, err := strconv.Atoi(c.Query.Get("page"))
	if err != nil {
		return -1
	}
	return n
}

// Statuses returns the statuses[] filter sent with the call.
func (c Call) Statuses() []string {
	return c.Query["statuses[]"]
}

// FakeClickUp is an in-memory clickup.Fetcher serving paged task endpoints
// and single-task lookups.
type FakeClickUp struct {
	mu    sync.Mutex
	tasks map[string][]clickup.Task // endpoint -> tasks
	calls []Call

	// PageSize is the number of tasks served per page.
	PageSize int

	// RejectStatusFilter makes any request carrying statuses[] fail
	// with 400, like ClickUp does for statuses missing from a list.
	RejectStatusFilter bool

	// PageErr injects an error for unfiltered requests of a given page.
	PageErr map[int]error
}

// NewFakeClickUp creates a FakeClickUp serving pageSize tasks per page.
func NewFakeClickUp(pageSize int) *FakeClickUp {
	return &FakeClickUp{
		tasks:    make(map[string][]clickup.Task),
		PageSize: pageSize,
		PageErr:  make(map[int]error),
	}
}

// AddTask appends a task to endpoint's collection.
func (f *FakeClickUp) AddTask(endpoint string, task clickup.Task) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks[endpoint] = append(f.tasks[endpoint], task)
}

// AddTaskJSON decodes js as a task and appends it to endpoint's collection.
func (f *FakeClickUp) AddTaskJSON(endpoint, js string) error {
	var task clickup.Task
	if err := json.Unmarshal([]byte(js), &task); err != nil {
		return err
	}
	f.AddTask(endpoint, task)
	return nil
}

// AddTasks appends n generated tasks cycling through statuses.
func (f *FakeClickUp) AddTasks(endpoint string, n int, statuses ...string) {
	if len(statuses) == 0 {
		statuses = []string{"open"}
	}
	for i := 0; i < n; i++ {
		f.AddTask(endpoint, clickup.Task{
			ID:     fmt.Sprintf("t%d", i),
			Name:   fmt.Sprintf("Task %d", i),
			Status: clickup.Status{Status: statuses[i%len(statuses)]},
		})
	}
}

// Calls returns the recorded calls in order.
func (f *FakeClickUp) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// Fetch implements clickup.Fetcher.
func (f *FakeClickUp) Fetch(ctx context.Context, method, endpoint string, body any, query url.Values) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Method: method, Endpoint: endpoint, Query: query})

	if method != http.MethodGet {
		return nil, &clickup.APIError{StatusCode: http.StatusMethodNotAllowed, Method: method, Endpoint: endpoint}
	}

	if id, ok := strings.CutPrefix(endpoint, "/task/"); ok {
		return f.getTask(id, endpoint)
	}

	tasks, ok := f.tasks[endpoint]
	if !ok {
		return nil, &clickup.APIError{StatusCode: http.StatusNotFound, Message: "Not found", Method: method, Endpoint: endpoint}
	}

	statuses := query["statuses[]"]
	if len(statuses) > 0 {
		if f.RejectStatusFilter {
			return nil, &clickup.APIError{
				StatusCode: http.StatusBadRequest,
				Code:       "ITEM_114",
				Message:    "Status not found",
				Method:     method,
				Endpoint:   endpoint,
			}
		}
		tasks = filterStatuses(tasks, statuses)
	}

	page, _ := strconv.Atoi(query.Get("page"))
	if len(statuses) == 0 {
		if err := f.PageErr[page]; err != nil {
			return nil, err
		}
	}

	start := min(page*f.PageSize, len(tasks))
	end := min(start+f.PageSize, len(tasks))
	return json.Marshal(clickup.TaskPage{
		Tasks:    tasks[start:end],
		LastPage: end == len(tasks),
	})
}

func (f *FakeClickUp) getTask(id, endpoint string) (json.RawMessage, error) {
	for _, tasks := range f.tasks {
		for _, t := range tasks {
			if t.ID == id {
				return json.Marshal(t)
			}
		}
	}
	return nil, &clickup.APIError{StatusCode: http.StatusNotFound, Message: "Task not found", Method: http.MethodGet, Endpoint: endpoint}
}

func filterStatuses(tasks []clickup.Task, statuses []string) []clickup.Task {
	var out []clickup.Task
	for _, t := range tasks {
		for _, s := range statuses {
			if t.Status.Status == s {
				out = append(out, t)
				break
			}
		}
	}
	return out
}
