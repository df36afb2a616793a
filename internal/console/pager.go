package console

import (
	"github.com/Gilbert-2/security-threat-detection-sub000/internal/models"
)

// Pager tracks the client side pagination state for a list view: the
// current page, the selected page size and the totals from the last fetch.
type Pager struct {
	page       int
	size       int
	totalPages int
	total      int
}

// NewPager starts on page 1 with the default page size.
func NewPager() *Pager {
	return &Pager{page: 1, size: models.DefaultPageSize}
}

// Page returns the current page, 1-based.
func (p *Pager) Page() int {
	return p.page
}

// Size returns the selected page size.
func (p *Pager) Size() int {
	return p.size
}

// SetSize switches the page size and resets to page 1, since item offsets
// shift under a new size. An unsupported size falls back to the default.
// Selecting the current size again changes nothing.
func (p *Pager) SetSize(size int) {
	valid := false
	for _, allowed := range models.AllowedPageSizes {
		if size == allowed {
			valid = true
			break
		}
	}
	if !valid {
		size = models.DefaultPageSize
	}
	if size == p.size {
		return
	}
	p.size = size
	p.page = 1
}

// SetPage jumps to a page, clamped to the known range.
func (p *Pager) SetPage(page int) {
	if page < 1 {
		page = 1
	}
	if p.totalPages > 0 && page > p.totalPages {
		page = p.totalPages
	}
	p.page = page
}

// Next advances one page when there is one.
func (p *Pager) Next() {
	p.SetPage(p.page + 1)
}

// Prev goes back one page when possible.
func (p *Pager) Prev() {
	p.SetPage(p.page - 1)
}

// Apply records the totals from a fetched page and clamps the current page
// into the new range, which matters when rows were deleted underneath us.
func (p *Pager) Apply(pagination *models.Pagination) {
	if pagination == nil {
		return
	}
	p.total = pagination.Total
	p.totalPages = pagination.TotalPages
	if p.totalPages > 0 && p.page > p.totalPages {
		p.page = p.totalPages
	}
}

// Total returns the item total from the last fetch.
func (p *Pager) Total() int {
	return p.total
}

// Window returns the direct page numbers to render.
func (p *Pager) Window() []int {
	pagination := models.Pagination{TotalPages: p.totalPages}
	return pagination.Window()
}

// HasNext reports whether a later page exists.
func (p *Pager) HasNext() bool {
	return p.page < p.totalPages
}

// HasPrev reports whether an earlier page exists.
func (p *Pager) HasPrev() bool {
	return p.page > 1
}
