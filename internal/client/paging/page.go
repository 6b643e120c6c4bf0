// Package paging implements the generic paginated-list contract shared by
// the occurrence, visitor, and notification screens: first load, load-more,
// refresh, and optimistic local mutations over a server-backed ordered list.
package paging

// Page is one page of a server-backed list plus its pagination metadata.
type Page[T any] struct {
	Items       []T
	CurrentPage int
	TotalPages  int
	TotalCount  int
	PageSize    int
	HasMore     bool
}

// SinglePage synthesizes metadata for endpoints that return a bare array:
// everything fits on page 1 and there is nothing more to fetch.
func SinglePage[T any](items []T, pageSize int) Page[T] {
	return Page[T]{
		Items:       items,
		CurrentPage: 1,
		TotalPages:  1,
		TotalCount:  len(items),
		PageSize:    pageSize,
		HasMore:     false,
	}
}
