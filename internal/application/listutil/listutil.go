// Package listutil narrows read-model rows by a free-text search and an
// optional page window taken from URL query values.
package listutil

import (
	"net/url"
	"strconv"
	"strings"
)

// DefaultPerPage is the page size when per_page is absent or not allowed.
const DefaultPerPage = 20

// PerPageOptions are the allowed per_page values.
var PerPageOptions = []int{10, 20, 50, 100}

// Params is what a caller asked for. Page 0 means unpaged.
type Params struct {
	Search  string
	Page    int
	PerPage int
}

// Paged reports whether a page window was requested.
func (p Params) Paged() bool { return p.Page > 0 }

// Parse reads q, page and per_page.
// POST: Page is 0 when absent or unparsable, otherwise >= 1
// POST: PerPage is one of PerPageOptions
func Parse(q url.Values) Params {
	p := Params{Search: strings.TrimSpace(q.Get("q")), PerPage: DefaultPerPage}
	if raw := q.Get("page"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			p.Page = max(n, 1)
		}
	}
	if n, err := strconv.Atoi(q.Get("per_page")); err == nil && allowedPerPage(n) {
		p.PerPage = n
	}
	return p
}

// PageInfo describes the window that was returned.
type PageInfo struct {
	Page       int
	PerPage    int
	Total      int
	TotalPages int
}

// NewPageInfo clamps page into [1, TotalPages].
// PRE: total >= 0
func NewPageInfo(page, perPage, total int) PageInfo {
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	totalPages := max((total+perPage-1)/perPage, 1)
	return PageInfo{
		Page:       min(max(page, 1), totalPages),
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	}
}

// Offset is the index of the first row on the page.
func (p PageInfo) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// End is one past the index of the last row on the page.
func (p PageInfo) End() int {
	return min(p.Offset()+p.PerPage, p.Total)
}

// Matches reports whether any field contains search, ignoring case.
// An empty search matches everything.
func Matches(search string, fields ...string) bool {
	if search == "" {
		return true
	}
	needle := strings.ToLower(search)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

// Apply filters rows by p.Search over the text of each row, then cuts the
// requested page. Unpaged requests get every match on a single page.
// POST: Total counts matches before paging
func Apply[T any](rows []T, p Params, text func(T) []string) ([]T, PageInfo) {
	matched := make([]T, 0, len(rows))
	for _, r := range rows {
		if Matches(p.Search, text(r)...) {
			matched = append(matched, r)
		}
	}
	if !p.Paged() {
		return matched, PageInfo{Page: 1, PerPage: len(matched), Total: len(matched), TotalPages: 1}
	}
	info := NewPageInfo(p.Page, p.PerPage, len(matched))
	return matched[info.Offset():info.End()], info
}

func allowedPerPage(n int) bool {
	for _, opt := range PerPageOptions {
		if n == opt {
			return true
		}
	}
	return false
}
