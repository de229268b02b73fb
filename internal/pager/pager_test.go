package pager

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/HendryAvila/clickup-mcp/internal/clickup"
	"github.com/HendryAvila/clickup-mcp/internal/testutil"
)

const endpoint = "/team/9/task"

func newPager(t *testing.T, fake *testutil.FakeClickUp) *Pager {
	t.Helper()
	return New(fake, fake.PageSize, zaptest.NewLogger(t))
}

func ids(tasks []clickup.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func TestSearch_ServerSideFilter(t *testing.T) {
	fake := testutil.NewFakeClickUp(100)
	fake.AddTasks(endpoint, 30, "open", "closed")
	p := newPager(t, fake)

	res, err := p.Search(context.Background(), Query{
		Endpoint: endpoint,
		Statuses: []string{"open"},
		Offset:   0,
		Limit:    20,
	})
	require.NoError(t, err)

	assert.False(t, res.Fallback)
	assert.Len(t, res.Tasks, 15)
	assert.Nil(t, res.Pagination.Total, "server-side results have no known total")
	assert.False(t, res.Pagination.HasMore, "15 < limit means no more")

	calls := fake.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, []string{"open"}, calls[0].Statuses())
	assert.Equal(t, 0, calls[0].Page())
}

func TestSearch_PageIndexFromOffset(t *testing.T) {
	fake := testutil.NewFakeClickUp(100)
	fake.AddTasks(endpoint, 10)
	p := newPager(t, fake)

	_, err := p.Search(context.Background(), Query{Endpoint: endpoint, Offset: 45, Limit: 20})
	require.NoError(t, err)

	calls := fake.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, 2, calls[0].Page(), "floor(45/20)")
}

func TestSearch_FullPageHasMore(t *testing.T) {
	fake := testutil.NewFakeClickUp(20)
	fake.AddTasks(endpoint, 50)
	p := newPager(t, fake)

	res, err := p.Search(context.Background(), Query{Endpoint: endpoint, Offset: 0, Limit: 20})
	require.NoError(t, err)

	assert.True(t, res.Pagination.HasMore)
	require.NotNil(t, res.Pagination.NextOffset)
	assert.Equal(t, 20, *res.Pagination.NextOffset)
}

func TestSearch_FallbackFiltersClientSide(t *testing.T) {
	fake := testutil.NewFakeClickUp(10)
	fake.RejectStatusFilter = true
	// 35 tasks over four pages; statuses cycle open, review, closed.
	fake.AddTasks(endpoint, 35, "open", "review", "closed")
	p := newPager(t, fake)

	filters := url.Values{"include_closed": {"true"}}
	res, err := p.Search(context.Background(), Query{
		Endpoint: endpoint,
		Filters:  filters,
		Statuses: []string{"open", "review"},
		Offset:   5,
		Limit:    10,
	})
	require.NoError(t, err)

	assert.True(t, res.Fallback)
	assert.Equal(t, 35, res.Scanned)

	// open/review tasks: t0 t1 t3 t4 t6 t7 t9 t10 ... 24 in total.
	require.NotNil(t, res.Pagination.Total)
	assert.Equal(t, 24, *res.Pagination.Total)
	assert.Equal(t, []string{"t7", "t9", "t10", "t12", "t13", "t15", "t16", "t18", "t19", "t21"}, ids(res.Tasks))
	assert.Equal(t, 10, res.Pagination.Count)
	assert.True(t, res.Pagination.HasMore)
	require.NotNil(t, res.Pagination.NextOffset)
	assert.Equal(t, 15, *res.Pagination.NextOffset)

	for _, task := range res.Tasks {
		assert.Contains(t, []string{"open", "review"}, task.Status.Status)
	}

	calls := fake.Calls()
	require.Len(t, calls, 5, "one rejected call plus four unfiltered pages")
	for i, c := range calls[1:] {
		assert.Empty(t, c.Statuses(), "fallback must drop the status filter")
		assert.Equal(t, i, c.Page(), "pages fetched in order")
		assert.Equal(t, "true", c.Query.Get("include_closed"), "other filters are kept")
	}
}

func TestSearch_FallbackLastWindow(t *testing.T) {
	fake := testutil.NewFakeClickUp(10)
	fake.RejectStatusFilter = true
	fake.AddTasks(endpoint, 20, "open", "closed")
	p := newPager(t, fake)

	res, err := p.Search(context.Background(), Query{
		Endpoint: endpoint,
		Statuses: []string{"open"},
		Offset:   8,
		Limit:    5,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"t16", "t18"}, ids(res.Tasks))
	assert.False(t, res.Pagination.HasMore)
	assert.Nil(t, res.Pagination.NextOffset)
}

func TestSearch_FallbackStatusMatchIsCaseSensitive(t *testing.T) {
	fake := testutil.NewFakeClickUp(10)
	fake.RejectStatusFilter = true
	fake.AddTasks(endpoint, 4, "Open")
	p := newPager(t, fake)

	res, err := p.Search(context.Background(), Query{Endpoint: endpoint, Statuses: []string{"open"}, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, res.Tasks)
	assert.Equal(t, 0, *res.Pagination.Total)
}

func TestSearch_BadRequestWithoutStatusesPropagates(t *testing.T) {
	fetcher := &failingFetcher{err: &clickup.APIError{StatusCode: http.StatusBadRequest}}
	p := New(fetcher, 100, nil)

	_, err := p.Search(context.Background(), Query{Endpoint: endpoint, Limit: 20})
	require.Error(t, err)
	assert.True(t, errors.Is(err, clickup.ErrBadRequest))
	assert.Equal(t, 1, fetcher.n)
}

func TestSearch_OtherErrorsDoNotFallBack(t *testing.T) {
	fake := testutil.NewFakeClickUp(10)
	fake.AddTasks(endpoint, 5)
	p := newPager(t, fake)

	_, err := p.Search(context.Background(), Query{Endpoint: "/team/unknown/task", Statuses: []string{"open"}, Limit: 10})
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, clickup.StatusCode(err))
	assert.Len(t, fake.Calls(), 1)
}

func TestSearch_FallbackPageFailureAborts(t *testing.T) {
	fake := testutil.NewFakeClickUp(10)
	fake.RejectStatusFilter = true
	fake.AddTasks(endpoint, 40)
	boom := &clickup.APIError{StatusCode: http.StatusTooManyRequests, Message: "Rate limit"}
	fake.PageErr[2] = boom
	p := newPager(t, fake)

	_, err := p.Search(context.Background(), Query{Endpoint: endpoint, Statuses: []string{"open"}, Limit: 10})
	require.Error(t, err)
	assert.Same(t, boom, err, "failure propagates unmodified")
	assert.Len(t, fake.Calls(), 4, "rejected call plus pages 0..2")
}

func TestFetchAll_StopsOnShortPage(t *testing.T) {
	fake := testutil.NewFakeClickUp(10)
	fake.AddTasks(endpoint, 25)
	p := newPager(t, fake)

	tasks, err := p.FetchAll(context.Background(), endpoint, nil)
	require.NoError(t, err)
	assert.Len(t, tasks, 25)
	assert.Len(t, fake.Calls(), 3)
}

func TestFetchAll_ExactMultipleNeedsOneEmptyPage(t *testing.T) {
	fake := testutil.NewFakeClickUp(10)
	fake.AddTasks(endpoint, 20)
	p := newPager(t, fake)

	tasks, err := p.FetchAll(context.Background(), endpoint, nil)
	require.NoError(t, err)
	assert.Len(t, tasks, 20)
	assert.Len(t, fake.Calls(), 3)
}

func TestFetchAll_DoesNotMutateFilters(t *testing.T) {
	fake := testutil.NewFakeClickUp(10)
	fake.AddTasks(endpoint, 3)
	p := newPager(t, fake)

	filters := url.Values{"archived": {"false"}}
	_, err := p.FetchAll(context.Background(), endpoint, filters)
	require.NoError(t, err)
	assert.Equal(t, url.Values{"archived": {"false"}}, filters)
}

func TestWindow(t *testing.T) {
	tasks := make([]clickup.Task, 5)
	for i := range tasks {
		tasks[i].ID = string(rune('a' + i))
	}

	assert.Equal(t, []string{"b", "c"}, ids(Window(tasks, 1, 2)))
	assert.Equal(t, []string{"d", "e"}, ids(Window(tasks, 3, 10)))
	assert.Empty(t, Window(tasks, 5, 10))
	assert.Empty(t, Window(tasks, 50, 10))
}

func TestFilterByStatus_EmptyKeepsAll(t *testing.T) {
	tasks := []clickup.Task{{ID: "a"}, {ID: "b"}}
	assert.Len(t, FilterByStatus(tasks, nil), 2)
}

// failingFetcher fails every call with err and counts calls.
type failingFetcher struct {
	err error
	n   int
}

func (f *failingFetcher) Fetch(ctx context.Context, method, endpoint string, body any, query url.Values) (json.RawMessage, error) {
	f.n++
	return nil, f.err
}
