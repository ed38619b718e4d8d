package client

import (
	"context"
	"errors"
)

// PageResult is one page returned by a FetchFunc.
type PageResult[T any] struct {
	Items   []T
	Total   int  // total items reported by the server, -1 if unknown
	HasMore bool // server reports more pages after this one
}

// FetchFunc loads a single page. Pages are numbered from 1.
type FetchFunc[T any] func(ctx context.Context, page, pageSize int) (PageResult[T], error)

// IteratorConfig configures an Iterator.
type IteratorConfig struct {
	PageSize int // items per page (default: 100)
	MaxItems int // stop after this many items, 0 means no limit
}

// Iterator walks a paginated collection one item at a time.
// Usage:
//
//	iter := client.ListCoursesIter(100)
//	for iter.Next(ctx) {
//	    course := iter.Item()
//	    fmt.Println(course.Name)
//	}
//	if err := iter.Err(); err != nil {
//	    log.Fatal(err)
//	}
type Iterator[T any] struct {
	fetch    FetchFunc[T]
	pageSize int
	maxItems int

	page    int
	items   []T
	index   int
	seen    int
	total   int
	hasMore bool
	err     error
	done    bool
}

// NewIterator creates an iterator over fetch.
func NewIterator[T any](fetch FetchFunc[T], cfg IteratorConfig) *Iterator[T] {
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 100
	}
	return &Iterator[T]{
		fetch:    fetch,
		pageSize: pageSize,
		maxItems: cfg.MaxItems,
		index:    -1,
		total:    -1,
		hasMore:  true,
	}
}

// Next advances the iterator to the next item.
// Returns false when iteration is complete or an error occurred.
func (it *Iterator[T]) Next(ctx context.Context) bool {
	if it.err != nil || it.done {
		return false
	}
	if it.maxItems > 0 && it.seen >= it.maxItems {
		it.done = true
		return false
	}

	if it.index < len(it.items)-1 {
		it.index++
		it.seen++
		return true
	}

	if !it.hasMore {
		it.done = true
		return false
	}

	if it.fetch == nil {
		it.err = errors.New("iterator has no fetch function")
		return false
	}

	it.page++
	res, err := it.fetch(ctx, it.page, it.pageSize)
	if err != nil {
		it.err = err
		return false
	}

	it.total = res.Total
	it.hasMore = res.HasMore
	if len(res.Items) == 0 {
		it.done = true
		it.hasMore = false
		return false
	}

	it.items = res.Items
	it.index = 0
	it.seen++
	return true
}

// Item returns the current item. Must be called after Next returns true.
func (it *Iterator[T]) Item() T {
	var zero T
	if it.index < 0 || it.index >= len(it.items) {
		return zero
	}
	return it.items[it.index]
}

// Err returns any error that occurred during iteration.
func (it *Iterator[T]) Err() error {
	return it.err
}

// Total returns the server-reported total, or -1 before the first fetch.
func (it *Iterator[T]) Total() int {
	return it.total
}

// HasMore reports whether more items may follow.
func (it *Iterator[T]) HasMore() bool {
	if it.err != nil || it.done {
		return false
	}
	return it.index < len(it.items)-1 || it.hasMore
}

// Collect fetches all remaining items and returns them as a slice.
func (it *Iterator[T]) Collect(ctx context.Context) ([]T, error) {
	var all []T
	for it.Next(ctx) {
		all = append(all, it.Item())
	}
	return all, it.Err()
}
