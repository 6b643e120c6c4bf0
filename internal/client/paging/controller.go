package paging

import (
	"context"
	"errors"
	"sync"

	"github.com/condoway/client-go/internal/logging"
)

// FetchFunc loads one page of a resource. The owner identity is bound by
// the resource package when the controller is constructed.
type FetchFunc[T any] func(ctx context.Context, page, pageSize int) (Page[T], error)

// statusCoder is satisfied by transport errors that carry an HTTP status.
// Declared locally so this package stays independent of the transport.
type statusCoder interface {
	HTTPStatus() int
}

// Controller owns a growable ordered list synchronized with a paginated
// endpoint. Loading/loading-more/refreshing flags provide re-entrancy
// guards; a generation counter makes a refresh authoritative over any
// load-more still in flight when it started.
type Controller[T any] struct {
	fetch    FetchFunc[T]
	identity func(T) string
	pageSize int
	log      logging.Logger

	mu          sync.Mutex
	items       []T
	currentPage int
	totalPages  int
	totalCount  int
	hasMore     bool
	loading     bool
	loadingMore bool
	refreshing  bool
	lastErr     error
	gen         uint64
}

// Snapshot is a copy of the controller state for rendering.
type Snapshot[T any] struct {
	Items       []T
	CurrentPage int
	TotalPages  int
	TotalCount  int
	HasMore     bool
	Loading     bool
	LoadingMore bool
	Refreshing  bool
	Err         error
}

func NewController[T any](fetch FetchFunc[T], identity func(T) string, pageSize int, log logging.Logger) *Controller[T] {
	if log == nil {
		log = logging.Nop{}
	}
	return &Controller[T]{
		fetch:    fetch,
		identity: identity,
		pageSize: pageSize,
		log:      log,
		hasMore:  true,
	}
}

// LoadFirst fetches page 1 and replaces the list. It is a no-op while a
// first load or a load-more is already in flight. On failure the error is
// recorded and the list degrades to an explicit empty page so the UI never
// renders a stuck spinner over stale state.
func (c *Controller[T]) LoadFirst(ctx context.Context) error {
	c.mu.Lock()
	if c.loading || c.loadingMore {
		c.mu.Unlock()
		return nil
	}
	c.loading = true
	c.gen++
	gen := c.gen
	c.mu.Unlock()

	page, err := c.fetch(ctx, 1, c.pageSize)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	if gen != c.gen {
		return nil
	}
	return c.applyFirstPage(ctx, page, err)
}

// Refresh is LoadFirst tracked under a separate flag so pull-to-refresh UIs
// can distinguish it from the initial load. It may start while a load-more
// is in flight; bumping the generation makes its page-1 result win over any
// straggling load-more completion.
func (c *Controller[T]) Refresh(ctx context.Context) error {
	c.mu.Lock()
	if c.refreshing || c.loading {
		c.mu.Unlock()
		return nil
	}
	c.refreshing = true
	c.gen++
	gen := c.gen
	c.mu.Unlock()

	page, err := c.fetch(ctx, 1, c.pageSize)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.refreshing = false
	if gen != c.gen {
		return nil
	}
	return c.applyFirstPage(ctx, page, err)
}

// applyFirstPage replaces list state with page 1's result. Caller holds the lock.
func (c *Controller[T]) applyFirstPage(ctx context.Context, page Page[T], err error) error {
	if err != nil {
		c.lastErr = err
		c.items = []T{}
		c.currentPage = 1
		c.totalPages = 0
		c.totalCount = 0
		c.hasMore = false
		c.log.Warn(ctx, "first page load failed", "error", err)
		return err
	}
	c.lastErr = nil
	c.items = append([]T{}, page.Items...)
	c.currentPage = 1
	c.totalPages = page.TotalPages
	c.totalCount = page.TotalCount
	c.hasMore = page.HasMore && page.TotalPages > 1
	return nil
}

// LoadMore fetches the next page and appends it. No-op while any load is in
// flight or when there is nothing more. An empty result is authoritative
// over server pagination metadata: it always caps hasMore. A server-side
// 5xx on a page beyond the first is read as exhausted pagination rather
// than an error; the backend is known to fault past its last page.
func (c *Controller[T]) LoadMore(ctx context.Context) error {
	c.mu.Lock()
	if c.loading || c.loadingMore || c.refreshing || !c.hasMore {
		c.mu.Unlock()
		return nil
	}
	next := c.currentPage + 1
	c.loadingMore = true
	gen := c.gen
	c.mu.Unlock()

	page, err := c.fetch(ctx, next, c.pageSize)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loadingMore = false
	if gen != c.gen {
		// A refresh completed while this page was in flight; its page-1
		// result is authoritative, drop this one.
		return nil
	}
	if err != nil {
		if next > 1 && isServerFault(err) {
			c.hasMore = false
			c.log.Debug(ctx, "treating server fault as end of data", "page", next)
			return nil
		}
		c.lastErr = err
		return err
	}
	if len(page.Items) == 0 {
		c.hasMore = false
		return nil
	}
	c.lastErr = nil
	c.items = append(c.items, page.Items...)
	c.currentPage = next
	c.totalPages = page.TotalPages
	c.totalCount = page.TotalCount
	c.hasMore = page.HasMore && next < page.TotalPages
	return nil
}

func isServerFault(err error) bool {
	var sc statusCoder
	if errors.As(err, &sc) {
		return sc.HTTPStatus() >= 500
	}
	return false
}

// AddOptimistic prepends an item locally without a server round trip.
func (c *Controller[T]) AddOptimistic(item T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append([]T{item}, c.items...)
	c.totalCount++
}

// UpdateOptimistic applies fn to the item matching id. Returns false when
// no item matches.
func (c *Controller[T]) UpdateOptimistic(id string, fn func(T) T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, item := range c.items {
		if c.identity(item) == id {
			c.items[i] = fn(item)
			return true
		}
	}
	return false
}

// RemoveOptimistic removes the item matching id, flooring the total count
// at zero. Returns false when no item matches.
func (c *Controller[T]) RemoveOptimistic(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, item := range c.items {
		if c.identity(item) == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			if c.totalCount > 0 {
				c.totalCount--
			}
			return true
		}
	}
	return false
}

// ReplaceAll swaps the whole item buffer, keeping pagination metadata.
// Used by specializations that post-process fetched items.
func (c *Controller[T]) ReplaceAll(items []T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append([]T{}, items...)
}

// Snapshot returns a copy of the current state.
func (c *Controller[T]) Snapshot() Snapshot[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot[T]{
		Items:       append([]T{}, c.items...),
		CurrentPage: c.currentPage,
		TotalPages:  c.totalPages,
		TotalCount:  c.totalCount,
		HasMore:     c.hasMore,
		Loading:     c.loading,
		LoadingMore: c.loadingMore,
		Refreshing:  c.refreshing,
		Err:         c.lastErr,
	}
}
