package toolkit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const E = Ellipsis

func TestTotalPages(t *testing.T) {
	for _, tc := range []struct{ total, size, want int }{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{47, 10, 5},
		{5, 0, 0},
	} {
		assert.Equal(t, tc.want, TotalPages(tc.total, tc.size), "total=%d size=%d", tc.total, tc.size)
	}
}

func TestPageItems_CoverEveryItemOnce(t *testing.T) {
	items := make([]int, 47)
	for i := range items {
		items[i] = i
	}

	var seen []int
	for page := 1; page <= TotalPages(len(items), 10); page++ {
		got := PageItems(items, page, 10)
		require.Len(t, got, min(10, len(items)-(page-1)*10))
		seen = append(seen, got...)
	}
	require.Equal(t, items, seen)
	require.Len(t, PageItems(items, 5, 10), 7)
	require.Empty(t, PageItems(items, 6, 10))
	require.Empty(t, PageItems(items, 0, 10))
}

func TestPageRange(t *testing.T) {
	for _, tc := range []struct {
		page, total int
		want        []PageLink
	}{
		{1, 0, []PageLink{}},
		{1, 1, []PageLink{1}},
		{1, 10, []PageLink{1, 2, 3, E, 10}},
		{6, 10, []PageLink{1, E, 4, 5, 6, 7, 8, E, 10}},
		{4, 10, []PageLink{1, 2, 3, 4, 5, 6, E, 10}},
		{5, 10, []PageLink{1, 2, 3, 4, 5, 6, 7, E, 10}},
		{10, 10, []PageLink{1, E, 8, 9, 10}},
		{3, 5, []PageLink{1, 2, 3, 4, 5}},
	} {
		got := PageRange(tc.page, tc.total)
		assert.Equal(t, tc.want, append([]PageLink{}, got...), "page=%d total=%d", tc.page, tc.total)
		assert.Equal(t, got, PageRange(tc.page, tc.total))
		if tc.total >= 1 {
			assert.Equal(t, PageLink(1), got[0])
			assert.Equal(t, PageLink(tc.total), got[len(got)-1])
		}
	}
}

func TestPageLink_String(t *testing.T) {
	require.Equal(t, "...", Ellipsis.String())
	require.Equal(t, "7", PageLink(7).String())
}

func TestSiblingRange(t *testing.T) {
	require.Equal(t, []PageLink{1, 2, 3, 4, 5}, SiblingRange(50, 10, 1, 3))
	require.Equal(t, []PageLink{1, 2, 3, 4, 5, E, 10}, SiblingRange(100, 10, 1, 2))
	require.Equal(t, []PageLink{1, E, 6, 7, 8, 9, 10}, SiblingRange(100, 10, 1, 9))
	require.Equal(t, []PageLink{1, E, 4, 5, 6, E, 10}, SiblingRange(100, 10, 1, 5))
	require.Empty(t, SiblingRange(0, 10, 1, 1))
}

func TestPaginator_Navigation(t *testing.T) {
	var calls [][2]int
	p := NewPaginator(47, 10, func(page, size int) { calls = append(calls, [2]int{page, size}) })

	require.Equal(t, 5, p.TotalPages())
	require.False(t, p.HandlePageChange(0))
	require.False(t, p.HandlePageChange(6))
	require.Equal(t, 1, p.Page())

	require.True(t, p.Last())
	require.Equal(t, 5, p.Page())
	require.False(t, p.Next())
	require.True(t, p.Previous())
	require.True(t, p.First())
	require.False(t, p.Previous())

	require.Equal(t, [][2]int{{5, 10}, {4, 10}, {1, 10}}, calls)
	require.Len(t, Paginate(p, make([]int, 47)), 10)
}

func TestPaginator_PageSizeResetsToFirst(t *testing.T) {
	p := NewPaginator(100, 10, nil)
	require.True(t, p.HandlePageChange(7))

	p.HandlePageSizeChange(25)
	require.Equal(t, 1, p.Page())
	require.Equal(t, 25, p.PageSize())
	require.Equal(t, 4, p.TotalPages())
}

func TestPaginator_SetTotalItemsClamps(t *testing.T) {
	p := NewPaginator(100, 10, nil)
	require.True(t, p.HandlePageChange(10))

	p.SetTotalItems(35)
	require.Equal(t, 4, p.Page())

	p.SetTotalItems(0)
	require.Equal(t, 1, p.Page())
	require.Empty(t, p.Range())
}

func TestPaginator_DefaultPageSize(t *testing.T) {
	p := NewPaginator(3, 0, nil)
	require.Equal(t, DefaultPageSize, p.PageSize())
}
