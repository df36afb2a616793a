package models

// AllowedPageSizes is the closed set of page sizes the dashboard offers.
var AllowedPageSizes = []int{5, 10, 20, 50}

// DefaultPageSize is used when a request carries no size or an unknown one.
const DefaultPageSize = 10

// PageWindowSize bounds the number of direct page buttons rendered.
const PageWindowSize = 5

// Pagination contains pagination metadata returned in list responses.
//
// Invariants: TotalPages = ceil(Total/Limit), HasNext = Page < TotalPages,
// HasPrev = Page > 1, and the accompanying items slice never exceeds Limit.
type Pagination struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

// NewPagination derives full pagination metadata from a slice request.
func NewPagination(page, limit, total int) *Pagination {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}
	totalPages := total / limit
	if total%limit != 0 {
		totalPages++
	}
	return &Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}

// Window returns the direct page numbers to render, at most PageWindowSize
// of them, always starting at page 1.
func (p *Pagination) Window() []int {
	if p == nil || p.TotalPages < 1 {
		return nil
	}
	count := p.TotalPages
	if count > PageWindowSize {
		count = PageWindowSize
	}
	pages := make([]int, count)
	for i := range pages {
		pages[i] = i + 1
	}
	return pages
}

// PageQuery holds normalised paging parameters parsed from a request.
type PageQuery struct {
	Page  int
	Limit int
}

// NormalizePageQuery clamps a raw page/limit pair to valid values. An
// unknown limit falls back to the default rather than being honoured.
func NormalizePageQuery(page, limit int) PageQuery {
	if page < 1 {
		page = 1
	}
	valid := false
	for _, size := range AllowedPageSizes {
		if limit == size {
			valid = true
			break
		}
	}
	if !valid {
		limit = DefaultPageSize
	}
	return PageQuery{Page: page, Limit: limit}
}

// Offset converts the page index into a row offset.
func (q PageQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}
