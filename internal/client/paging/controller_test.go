package paging

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID   int
	Name string
}

func ident(it item) string { return strconv.Itoa(it.ID) }

// pagedFetch serves deterministic pages of pageSize items up to total.
type pagedFetch struct {
	mu    sync.Mutex
	calls int
	total int
}

func (f *pagedFetch) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *pagedFetch) fetch(_ context.Context, page, pageSize int) (Page[item], error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	totalPages := (f.total + pageSize - 1) / pageSize
	start := (page - 1) * pageSize
	var items []item
	for i := start; i < start+pageSize && i < f.total; i++ {
		items = append(items, item{ID: i + 1, Name: fmt.Sprintf("item-%d", i+1)})
	}
	return Page[item]{
		Items:       items,
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalCount:  f.total,
		PageSize:    pageSize,
		HasMore:     page < totalPages,
	}, nil
}

type httpErr struct{ code int }

func (e *httpErr) Error() string   { return fmt.Sprintf("http %d", e.code) }
func (e *httpErr) HTTPStatus() int { return e.code }

func TestLoadFirst_ThenLoadMore_Accumulates(t *testing.T) {
	f := &pagedFetch{total: 100}
	c := NewController(f.fetch, ident, 20, nil)
	ctx := context.Background()

	require.NoError(t, c.LoadFirst(ctx))
	s := c.Snapshot()
	assert.Len(t, s.Items, 20)
	assert.Equal(t, 1, s.CurrentPage)
	assert.Equal(t, 5, s.TotalPages)
	assert.Equal(t, 100, s.TotalCount)
	assert.True(t, s.HasMore)

	require.NoError(t, c.LoadMore(ctx))
	s = c.Snapshot()
	assert.Len(t, s.Items, 40)
	assert.Equal(t, 2, s.CurrentPage)
	assert.True(t, s.HasMore)
	assert.Equal(t, "item-21", s.Items[20].Name, "server order preserved on append")
}

func TestLoadMore_AccumulationLaw(t *testing.T) {
	// List length after N successful page loads equals the sum of per-page
	// lengths, and currentPage advances by exactly one per call.
	f := &pagedFetch{total: 50}
	c := NewController(f.fetch, ident, 20, nil)
	ctx := context.Background()

	require.NoError(t, c.LoadFirst(ctx))
	for want := 2; c.Snapshot().HasMore; want++ {
		require.NoError(t, c.LoadMore(ctx))
		assert.Equal(t, want, c.Snapshot().CurrentPage)
	}

	s := c.Snapshot()
	assert.Len(t, s.Items, 50) // 20 + 20 + 10
	assert.False(t, s.HasMore)
}

func TestLoadMore_NoopWhenNoMore(t *testing.T) {
	f := &pagedFetch{total: 10}
	c := NewController(f.fetch, ident, 20, nil)
	ctx := context.Background()

	require.NoError(t, c.LoadFirst(ctx))
	require.False(t, c.Snapshot().HasMore)
	before := f.Calls()

	require.NoError(t, c.LoadMore(ctx))
	assert.Equal(t, before, f.Calls(), "LoadMore must not hit the network when hasMore is false")
}

func TestLoadMore_EmptyPageAuthoritativeOverMetadata(t *testing.T) {
	calls := 0
	fetch := func(_ context.Context, page, pageSize int) (Page[item], error) {
		calls++
		if page == 1 {
			return Page[item]{
				Items:       []item{{ID: 1}},
				CurrentPage: 1,
				TotalPages:  3,
				TotalCount:  30,
				HasMore:     true,
			}, nil
		}
		// Server still claims more pages, but returns nothing.
		return Page[item]{CurrentPage: page, TotalPages: 3, TotalCount: 30, HasMore: true}, nil
	}
	c := NewController(fetch, ident, 10, nil)
	ctx := context.Background()

	require.NoError(t, c.LoadFirst(ctx))
	require.NoError(t, c.LoadMore(ctx))

	s := c.Snapshot()
	assert.False(t, s.HasMore)
	assert.Len(t, s.Items, 1)

	require.NoError(t, c.LoadMore(ctx))
	assert.Equal(t, 2, calls, "capped hasMore must stop further fetches")
}

func TestLoadMore_ServerFaultBeyondFirstPageEndsPagination(t *testing.T) {
	fetch := func(_ context.Context, page, pageSize int) (Page[item], error) {
		if page == 1 {
			return Page[item]{Items: []item{{ID: 1}}, CurrentPage: 1, TotalPages: 9, TotalCount: 90, HasMore: true}, nil
		}
		return Page[item]{}, &httpErr{code: 500}
	}
	c := NewController(fetch, ident, 10, nil)
	ctx := context.Background()

	require.NoError(t, c.LoadFirst(ctx))
	require.NoError(t, c.LoadMore(ctx), "5xx past page 1 reads as exhausted pagination, not an error")

	s := c.Snapshot()
	assert.False(t, s.HasMore)
	assert.NoError(t, s.Err)
	assert.Len(t, s.Items, 1, "the already-loaded items survive")
}

func TestLoadFirst_FailureDegradesToEmptyPage(t *testing.T) {
	boom := errors.New("network down")
	fetch := func(context.Context, int, int) (Page[item], error) {
		return Page[item]{}, boom
	}
	c := NewController(fetch, ident, 10, nil)

	err := c.LoadFirst(context.Background())
	require.ErrorIs(t, err, boom)

	s := c.Snapshot()
	assert.NotNil(t, s.Err)
	assert.Empty(t, s.Items)
	assert.False(t, s.HasMore)
	assert.False(t, s.Loading, "spinner must not be stuck")
}

func TestRefresh_ReplacesNotAppends(t *testing.T) {
	f := &pagedFetch{total: 100}
	c := NewController(f.fetch, ident, 20, nil)
	ctx := context.Background()

	require.NoError(t, c.LoadFirst(ctx))
	require.NoError(t, c.LoadMore(ctx))
	require.Len(t, c.Snapshot().Items, 40)

	require.NoError(t, c.Refresh(ctx))
	s := c.Snapshot()
	assert.Len(t, s.Items, 20, "refresh replaces the list with page 1")
	assert.Equal(t, 1, s.CurrentPage)
}

func TestLoadFirst_ReentrancyGuard(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var mu sync.Mutex
	calls := 0

	fetch := func(context.Context, int, int) (Page[item], error) {
		mu.Lock()
		calls++
		mu.Unlock()
		close(started)
		<-release
		return Page[item]{Items: []item{{ID: 1}}, CurrentPage: 1, TotalPages: 1, TotalCount: 1}, nil
	}
	c := NewController(fetch, ident, 10, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = c.LoadFirst(context.Background())
	}()
	<-started

	// Second call while the first is in flight must not fetch.
	require.NoError(t, c.LoadFirst(context.Background()))
	close(release)
	<-done

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, calls)
}

func TestRefresh_AuthoritativeOverStragglingLoadMore(t *testing.T) {
	page2Entered := make(chan struct{})
	page2Release := make(chan struct{})

	fetch := func(_ context.Context, page, pageSize int) (Page[item], error) {
		switch page {
		case 1:
			return Page[item]{Items: []item{{ID: 1, Name: "fresh"}}, CurrentPage: 1, TotalPages: 2, TotalCount: 3, HasMore: true}, nil
		default:
			close(page2Entered)
			<-page2Release
			return Page[item]{Items: []item{{ID: 2, Name: "stale"}}, CurrentPage: 2, TotalPages: 2, TotalCount: 3}, nil
		}
	}
	c := NewController(fetch, ident, 2, nil)
	ctx := context.Background()

	require.NoError(t, c.LoadFirst(ctx))

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = c.LoadMore(ctx)
	}()
	<-page2Entered

	// Refresh completes while page 2 is still in flight.
	require.NoError(t, c.Refresh(ctx))
	close(page2Release)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("straggling LoadMore never completed")
	}

	s := c.Snapshot()
	assert.Len(t, s.Items, 1, "straggling load-more result must be discarded")
	assert.Equal(t, "fresh", s.Items[0].Name)
	assert.Equal(t, 1, s.CurrentPage)
}

func TestOptimisticMutations(t *testing.T) {
	f := &pagedFetch{total: 3}
	c := NewController(f.fetch, ident, 10, nil)
	ctx := context.Background()
	require.NoError(t, c.LoadFirst(ctx))
	require.Equal(t, 3, c.Snapshot().TotalCount)

	t.Run("add prepends and bumps count once", func(t *testing.T) {
		c.AddOptimistic(item{ID: 99, Name: "mine"})
		s := c.Snapshot()
		assert.Equal(t, 4, s.TotalCount)
		assert.Equal(t, 99, s.Items[0].ID)
		assert.Len(t, s.Items, 4)
	})

	t.Run("update merges by identity", func(t *testing.T) {
		ok := c.UpdateOptimistic("99", func(it item) item {
			it.Name = "renamed"
			return it
		})
		require.True(t, ok)
		assert.Equal(t, "renamed", c.Snapshot().Items[0].Name)
	})

	t.Run("update of unknown id is a no-op", func(t *testing.T) {
		assert.False(t, c.UpdateOptimistic("404", func(it item) item { return it }))
	})

	t.Run("remove decrements count", func(t *testing.T) {
		require.True(t, c.RemoveOptimistic("99"))
		s := c.Snapshot()
		assert.Equal(t, 3, s.TotalCount)
		assert.Len(t, s.Items, 3)
	})
}

func TestRemoveOptimistic_CountFlooredAtZero(t *testing.T) {
	fetch := func(context.Context, int, int) (Page[item], error) {
		return Page[item]{Items: []item{{ID: 1}}, CurrentPage: 1, TotalPages: 1, TotalCount: 0}, nil
	}
	c := NewController(fetch, ident, 10, nil)
	require.NoError(t, c.LoadFirst(context.Background()))

	require.True(t, c.RemoveOptimistic("1"))
	assert.Equal(t, 0, c.Snapshot().TotalCount)
}

func TestSinglePage_Synthesis(t *testing.T) {
	p := SinglePage([]item{{ID: 1}, {ID: 2}}, 20)
	assert.Equal(t, 1, p.CurrentPage)
	assert.Equal(t, 1, p.TotalPages)
	assert.Equal(t, 2, p.TotalCount)
	assert.False(t, p.HasMore)
}
