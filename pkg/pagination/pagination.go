// Package pagination provides page-number pagination shared by every list
// endpoint. Pages are 1-based and sized by the PAGE_SIZE config value, which
// is capped so a misconfigured deployment can't ask SQLite for unbounded
// result sets.
package pagination

// Page describes one page of a list request.
type Page struct {
	Number int
	Size   int
}

// New clamps the requested page number to 1 or greater and applies the
// configured page size.
func New(number, size int) Page {
	if number < 1 {
		number = 1
	}
	if size < 1 {
		size = 1
	}
	return Page{Number: number, Size: size}
}

// Limit returns the SQL LIMIT for this page.
func (p Page) Limit() int {
	return p.Size
}

// Offset returns the SQL OFFSET for this page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// TotalPages returns how many pages a result set of total rows spans. An
// empty result set still has one page so clients always have something to
// render.
func (p Page) TotalPages(total int) int {
	if total <= 0 {
		return 1
	}
	pages := total / p.Size
	if total%p.Size != 0 {
		pages++
	}
	return pages
}

// Meta is the pagination envelope included in list responses.
type Meta struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewMeta builds the response envelope for a page and its total row count.
func NewMeta(p Page, total int) Meta {
	return Meta{
		Page:       p.Number,
		PageSize:   p.Size,
		Total:      total,
		TotalPages: p.TotalPages(total),
	}
}
