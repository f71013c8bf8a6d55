package services

import (
	"github.com/zatekoja/wayfinder/internal/domain/entities"
)

// TotalPages returns ceil(total/pageSize).
func TotalPages(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// NeedsPagination reports whether a pager should be shown at all.
func NeedsPagination(total, pageSize int) bool {
	return TotalPages(total, pageSize) > 1
}

// Paginate returns the 1-indexed page of records. Out-of-range page numbers
// yield an empty slice; clamping is the caller's job.
func Paginate(records []entities.PlaceRecord, pageSize, pageNumber int) []entities.PlaceRecord {
	if pageSize <= 0 || pageNumber < 1 {
		return nil
	}
	start := (pageNumber - 1) * pageSize
	if start >= len(records) {
		return nil
	}
	end := min(start+pageSize, len(records))
	return records[start:end]
}

// PageOfIndex returns the 1-indexed page holding the record at index.
func PageOfIndex(index, pageSize int) int {
	return index/pageSize + 1
}

// ClampPage keeps a requested page inside [1, totalPages].
func ClampPage(page, totalPages int) int {
	if totalPages < 1 || page < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}

// PaginationController slices an in-memory result set into fixed-size pages
// and announces page changes. It never fetches data.
type PaginationController struct {
	records  []entities.PlaceRecord
	pageSize int
	current  int

	onPageChange []func(entities.Page)
}

// NewPaginationController creates a controller over an empty result set
func NewPaginationController(pageSize int) *PaginationController {
	if pageSize <= 0 {
		pageSize = entities.PageSize
	}
	return &PaginationController{pageSize: pageSize, current: 1}
}

// OnPageChange registers a listener fired after every page switch.
func (c *PaginationController) OnPageChange(fn func(entities.Page)) {
	c.onPageChange = append(c.onPageChange, fn)
}

// SetRecords replaces the result set and shows its first page.
func (c *PaginationController) SetRecords(records []entities.PlaceRecord) {
	c.records = records
	c.SetPage(1)
}

// Records returns the full result set.
func (c *PaginationController) Records() []entities.PlaceRecord {
	return c.records
}

// PageSize returns the fixed page size.
func (c *PaginationController) PageSize() int {
	return c.pageSize
}

// CurrentPage returns the 1-indexed current page number.
func (c *PaginationController) CurrentPage() int {
	return c.current
}

// TotalPages returns the number of pages over the current result set.
func (c *PaginationController) TotalPages() int {
	return TotalPages(len(c.records), c.pageSize)
}

// NeedsPagination reports whether the pager UI is needed.
func (c *PaginationController) NeedsPagination() bool {
	return NeedsPagination(len(c.records), c.pageSize)
}

// Page returns the current page.
func (c *PaginationController) Page() entities.Page {
	return entities.Page{
		Number:     c.current,
		Size:       c.pageSize,
		TotalPages: c.TotalPages(),
		Total:      len(c.records),
		Records:    Paginate(c.records, c.pageSize, c.current),
	}
}

// SetPage switches pages and notifies listeners. The number is used as given.
func (c *PaginationController) SetPage(pageNumber int) {
	c.current = pageNumber
	page := c.Page()
	for _, fn := range c.onPageChange {
		fn(page)
	}
}

// IndexOf returns the index of the place in the full result set, or -1.
func (c *PaginationController) IndexOf(placeID string) int {
	for i, r := range c.records {
		if r.ID == placeID {
			return i
		}
	}
	return -1
}

// OnCurrentPage reports whether the place is visible on the current page.
func (c *PaginationController) OnCurrentPage(placeID string) bool {
	idx := c.IndexOf(placeID)
	return idx >= 0 && PageOfIndex(idx, c.pageSize) == c.current
}

// Find returns the record with the given id.
func (c *PaginationController) Find(placeID string) (entities.PlaceRecord, bool) {
	idx := c.IndexOf(placeID)
	if idx < 0 {
		return entities.PlaceRecord{}, false
	}
	return c.records[idx], true
}
