package paging

import (
	"github.com/stretchr/testify/assert"
	"math"
	"testing"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		page, size int
		want       Request
	}{
		{0, 0, Request{Page: 1, Size: 10}},
		{-3, 5, Request{Page: 1, Size: 5}},
		{2, 500, Request{Page: 2, Size: 100}},
		{4, 25, Request{Page: 4, Size: 25}},
		{math.MaxInt, 100, Request{Page: MaxPage, Size: 100}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Normalize(tc.page, tc.size), "page=%d size=%d", tc.page, tc.size)
	}
}

func TestNewAndSlice(t *testing.T) {
	all := []int{1, 2, 3, 4, 5, 6, 7}
	r := Normalize(2, 3)

	p := New(Slice(all, r), len(all), r)
	assert.Equal(t, []int{4, 5, 6}, p.Items)
	assert.Equal(t, Meta{TotalItems: 7, TotalPages: 3, CurrentPage: 2, PageSize: 3}, p.Meta)

	last := Normalize(3, 3)
	assert.Equal(t, []int{7}, Slice(all, last))

	past := Normalize(9, 3)
	p = New(Slice(all, past), len(all), past)
	assert.Empty(t, p.Items)
	assert.NotNil(t, p.Items)

	huge := Normalize(math.MaxInt, 10)
	assert.Positive(t, huge.Offset())
	assert.Empty(t, Slice(all, huge))

	empty := New[int](nil, 0, Normalize(1, 10))
	assert.NotNil(t, empty.Items)
	assert.Zero(t, empty.Meta.TotalPages)
}
