// Package pager tracks 1-based pagination over a sequence of known length.
package pager

// DefaultPerPage is the page size used when none is configured.
const DefaultPerPage = 10

// TotalPages returns ceil(count/perPage); 0 when count is 0.
func TotalPages(count, perPage int) int {
	if count <= 0 || perPage <= 0 {
		return 0
	}
	return (count + perPage - 1) / perPage
}

// Slice returns the items on the given 1-based page. Pages outside the
// valid range yield an empty slice.
func Slice[T any](items []T, page, perPage int) []T {
	if page < 1 || perPage <= 0 {
		return nil
	}
	start := (page - 1) * perPage
	if start >= len(items) {
		return nil
	}
	end := min(start+perPage, len(items))
	return items[start:end]
}

// Cursor holds the current page over a sequence of Count items. The page
// always satisfies 1 <= page <= max(TotalPages, 1).
type Cursor struct {
	page    int
	perPage int
	count   int
}

// New returns a cursor on page 1. A non-positive perPage falls back to
// DefaultPerPage.
func New(count, perPage int) *Cursor {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	c := &Cursor{perPage: perPage}
	c.Reset(count)
	return c
}

// Reset moves back to page 1 over a sequence of count items. Call it
// whenever the active sequence changes.
func (c *Cursor) Reset(count int) {
	c.count = max(count, 0)
	c.page = 1
}

// Next advances one page. It is a no-op on the last page and reports
// whether the page changed.
func (c *Cursor) Next() bool {
	if c.page >= c.TotalPages() {
		return false
	}
	c.page++
	return true
}

// Prev goes back one page. It is a no-op on page 1 and reports whether
// the page changed.
func (c *Cursor) Prev() bool {
	if c.page <= 1 {
		return false
	}
	c.page--
	return true
}

// Page returns the current 1-based page.
func (c *Cursor) Page() int { return c.page }

// PerPage returns the page size.
func (c *Cursor) PerPage() int { return c.perPage }

// Count returns the length of the active sequence.
func (c *Cursor) Count() int { return c.count }

// TotalPages returns the number of pages over the active sequence.
func (c *Cursor) TotalPages() int {
	return TotalPages(c.count, c.perPage)
}

// Bounds returns the half-open index range of the current page.
func (c *Cursor) Bounds() (start, end int) {
	start = min((c.page-1)*c.perPage, c.count)
	end = min(start+c.perPage, c.count)
	return start, end
}
