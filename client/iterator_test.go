package client

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaintrub/docebo-go/internal/platformtest"
	"github.com/vaintrub/docebo-go/models"
)

func pagedInts(total int) FetchFunc[int] {
	return func(_ context.Context, page, pageSize int) (PageResult[int], error) {
		start := (page - 1) * pageSize
		var items []int
		for i := start; i < start+pageSize && i < total; i++ {
			items = append(items, i)
		}
		return PageResult[int]{Items: items, Total: total, HasMore: start+pageSize < total}, nil
	}
}

func TestIterator_Total(t *testing.T) {
	iter := NewIterator(pagedInts(5), IteratorConfig{PageSize: 2})
	assert.Equal(t, -1, iter.Total())

	require.True(t, iter.Next(context.Background()))
	assert.Equal(t, 5, iter.Total())
}

func TestIterator_HasMore(t *testing.T) {
	ctx := context.Background()
	iter := NewIterator(pagedInts(3), IteratorConfig{PageSize: 2})
	assert.True(t, iter.HasMore())

	require.True(t, iter.Next(ctx))
	assert.True(t, iter.HasMore())
	require.True(t, iter.Next(ctx))
	assert.True(t, iter.HasMore())
	require.True(t, iter.Next(ctx))
	assert.False(t, iter.HasMore())
	assert.False(t, iter.Next(ctx))
	assert.False(t, iter.HasMore())
}

func TestIterator_Collect(t *testing.T) {
	items, err := NewIterator(pagedInts(7), IteratorConfig{PageSize: 3}).Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6}, items)
}

func TestIterator_MaxItems(t *testing.T) {
	items, err := NewIterator(pagedInts(10), IteratorConfig{PageSize: 3, MaxItems: 4}).Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3}, items)
}

func TestIterator_Error(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	iter := NewIterator(func(_ context.Context, page, _ int) (PageResult[int], error) {
		calls++
		if page == 2 {
			return PageResult[int]{}, boom
		}
		return PageResult[int]{Items: []int{1}, HasMore: true}, nil
	}, IteratorConfig{})

	items, err := iter.Collect(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []int{1}, items)
	assert.False(t, iter.Next(context.Background()))
	assert.Equal(t, 2, calls)
}

func TestIterator_EmptyPageStops(t *testing.T) {
	iter := NewIterator(func(context.Context, int, int) (PageResult[int], error) {
		return PageResult[int]{HasMore: true}, nil
	}, IteratorConfig{})
	assert.False(t, iter.Next(context.Background()))
	assert.NoError(t, iter.Err())
	assert.Equal(t, 0, iter.Item())
}

func TestRecordIter_WalksPlatformPages(t *testing.T) {
	srv := platformtest.New(t)
	for i := 1; i <= 5; i++ {
		srv.AddRecords(models.KindCourse, models.Record{"id": i, "name": "Course"})
	}
	adapter := newTestAdapter(t, srv.URL)

	courses, err := adapter.ListCoursesIter(2).Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, courses, 5)
	assert.Equal(t, "5", courses[4].ID)
	assert.Equal(t, 3, srv.CountCalls("GET", "/learn/v1/courses"))
}
