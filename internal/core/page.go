// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Agora Contributors

package core

// Page size bounds shared by every listing command.
const (
	DefaultLimit = 10
	MaxLimit     = 50
)

// Page is a normalised 1-based page request.
type Page struct {
	Page  int
	Limit int
}

// NewPage clamps optional page and limit inputs into a valid Page.
func NewPage(page, limit *int) Page {
	p := Page{Page: 1, Limit: DefaultLimit}
	if page != nil && *page > 1 {
		p.Page = *page
	}
	if limit != nil && *limit > 0 {
		p.Limit = min(*limit, MaxLimit)
	}
	return p
}

// Offset returns the number of rows to skip.
func (p Page) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// Window returns the [start, end) slice bounds of this page over n items.
func (p Page) Window(n int) (int, int) {
	start := min(p.Offset(), n)
	end := min(start+p.Limit, n)
	return start, end
}
