// Package pager walks ClickUp's paged task endpoints.
//
// Search asks the server to filter by status first. ClickUp answers 400 when
// a requested status does not exist on every list in scope, so on that one
// failure Search re-reads the whole collection without the status filter
// and filters on the client. FetchAll is the plain exhaustive loop used by
// exports.
//
// Pages are fetched strictly one after another; any failure aborts the
// walk and is returned as is.
package pager

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/HendryAvila/clickup-mcp/internal/clickup"
	"github.com/HendryAvila/clickup-mcp/internal/response"
)

// DefaultMaxLimit is ClickUp's fixed page size.
const DefaultMaxLimit = 100

const (
	pageParam   = "page"
	statusParam = "statuses[]"
)

// Pager fetches task pages through a clickup.Fetcher.
type Pager struct {
	fetcher  clickup.Fetcher
	maxLimit int
	logger   *zap.Logger
}

// New creates a Pager. maxLimit is the transport's page size: a page with
// fewer tasks than maxLimit ends an exhaustive walk.
func New(fetcher clickup.Fetcher, maxLimit int, logger *zap.Logger) *Pager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxLimit <= 0 {
		maxLimit = DefaultMaxLimit
	}
	return &Pager{fetcher: fetcher, maxLimit: maxLimit, logger: logger}
}

// MaxLimit returns the page size used for exhaustive walks.
func (p *Pager) MaxLimit() int {
	return p.maxLimit
}

// Query describes one client-facing page request.
type Query struct {
	Endpoint string
	// Filters are passed to every request, fallback included.
	Filters url.Values
	// Statuses is the optional status-name filter.
	Statuses []string
	Offset   int
	Limit    int
}

// Result is one page of tasks and where it sits.
type Result struct {
	Tasks      []clickup.Task
	Pagination response.Pagination
	// Fallback is true when the status filter was applied client-side.
	Fallback bool
	// Scanned is the number of tasks read to build the page.
	Scanned int
}

// Search returns the page of tasks at q.Offset. The server filters when it
// can; when it rejects the status filter with 400, the full unfiltered
// collection is read and filtered locally, which makes the total known.
func (p *Pager) Search(ctx context.Context, q Query) (*Result, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = p.maxLimit
	}
	offset := max(q.Offset, 0)

	query := cloneValues(q.Filters)
	query.Set(pageParam, strconv.Itoa(offset/limit))
	for _, s := range q.Statuses {
		query.Add(statusParam, s)
	}

	tasks, err := p.fetchPage(ctx, q.Endpoint, query)
	if err == nil {
		return &Result{
			Tasks:      tasks,
			Pagination: response.Paginate(nil, len(tasks), offset, limit),
			Scanned:    len(tasks),
		}, nil
	}
	if len(q.Statuses) == 0 || !errors.Is(err, clickup.ErrBadRequest) {
		return nil, err
	}

	p.logger.Info("status filter rejected by server, filtering client-side",
		zap.String("endpoint", q.Endpoint),
		zap.Strings("statuses", q.Statuses),
		zap.Error(err),
	)

	all, err := p.FetchAll(ctx, q.Endpoint, q.Filters)
	if err != nil {
		return nil, err
	}

	filtered := FilterByStatus(all, q.Statuses)
	page := Window(filtered, offset, limit)
	return &Result{
		Tasks:      page,
		Pagination: response.Paginate(response.Known(len(filtered)), len(page), offset, limit),
		Fallback:   true,
		Scanned:    len(all),
	}, nil
}

// FetchAll reads every page of endpoint at the maximum page size until a
// short page signals the end.
func (p *Pager) FetchAll(ctx context.Context, endpoint string, filters url.Values) ([]clickup.Task, error) {
	var all []clickup.Task
	for page := 0; ; page++ {
		query := cloneValues(filters)
		query.Set(pageParam, strconv.Itoa(page))

		tasks, err := p.fetchPage(ctx, endpoint, query)
		if err != nil {
			return nil, err
		}
		all = append(all, tasks...)

		if len(tasks) < p.maxLimit {
			p.logger.Debug("exhaustive fetch complete",
				zap.String("endpoint", endpoint),
				zap.Int("pages", page+1),
				zap.Int("tasks", len(all)),
			)
			return all, nil
		}
	}
}

func (p *Pager) fetchPage(ctx context.Context, endpoint string, query url.Values) ([]clickup.Task, error) {
	data, err := p.fetcher.Fetch(ctx, http.MethodGet, endpoint, nil, query)
	if err != nil {
		return nil, err
	}
	page, err := clickup.DecodeTaskPage(data)
	if err != nil {
		return nil, err
	}
	return page.Tasks, nil
}

// FilterByStatus keeps tasks whose status name exactly matches one of
// statuses. An empty statuses list keeps everything.
func FilterByStatus(tasks []clickup.Task, statuses []string) []clickup.Task {
	if len(statuses) == 0 {
		return tasks
	}
	want := make(map[string]bool, len(statuses))
	for _, s := range statuses {
		want[s] = true
	}

	out := make([]clickup.Task, 0, len(tasks))
	for _, t := range tasks {
		if want[t.Status.Status] {
			out = append(out, t)
		}
	}
	return out
}

// Window returns tasks[offset:offset+limit], clamped to the slice.
func Window(tasks []clickup.Task, offset, limit int) []clickup.Task {
	if offset >= len(tasks) {
		return []clickup.Task{}
	}
	end := min(offset+limit, len(tasks))
	return tasks[offset:end]
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v)+2)
	for k, vals := range v {
		out[k] = append([]string(nil), vals...)
	}
	return out
}
