// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Agora Contributors

package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func intp(v int) *int { return &v }

func TestNewPage(t *testing.T) {
	tests := []struct {
		name   string
		page   *int
		limit  *int
		want   Page
		offset int
	}{
		{"defaults", nil, nil, Page{Page: 1, Limit: DefaultLimit}, 0},
		{"second page", intp(2), intp(20), Page{Page: 2, Limit: 20}, 20},
		{"zero page clamps to first", intp(0), intp(5), Page{Page: 1, Limit: 5}, 0},
		{"negative limit uses default", intp(3), intp(-1), Page{Page: 3, Limit: DefaultLimit}, 20},
		{"limit bounded", nil, intp(1000), Page{Page: 1, Limit: MaxLimit}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewPage(tt.page, tt.limit)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.offset, got.Offset())
		})
	}
}

func TestPage_Window(t *testing.T) {
	p := Page{Page: 2, Limit: 3}

	start, end := p.Window(10)
	assert.Equal(t, 3, start)
	assert.Equal(t, 6, end)

	start, end = p.Window(4)
	assert.Equal(t, 3, start)
	assert.Equal(t, 4, end)

	start, end = p.Window(2)
	assert.Equal(t, 2, start)
	assert.Equal(t, 2, end)
}

func TestParseSortType(t *testing.T) {
	st, ok := ParseSortType("")
	assert.True(t, ok)
	assert.Equal(t, SortNew, st)

	st, ok = ParseSortType("TopWeek")
	assert.True(t, ok)
	assert.Equal(t, SortTopWeek, st)

	_, ok = ParseSortType("Sideways")
	assert.False(t, ok)
}

func TestSortType_Since(t *testing.T) {
	now := time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)

	since, ok := SortTopDay.Since(now)
	assert.True(t, ok)
	assert.Equal(t, now.AddDate(0, 0, -1), since)

	_, ok = SortNew.Since(now)
	assert.False(t, ok)
}

func TestParseListingType(t *testing.T) {
	lt, ok := ParseListingType("Subscribed")
	assert.True(t, ok)
	assert.Equal(t, ListingSubscribed, lt)

	_, ok = ParseListingType("Nope")
	assert.False(t, ok)
}
