// Package pagination pages the obligation listing for both the SQL and the
// in-memory stores.
package pagination

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PageRequest is bound from the page and page_size query parameters.
type PageRequest struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// Normalize returns a copy with missing values defaulted and page_size capped.
// Callers outside gin binding (CLI, stores) rely on it for the same bounds.
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	switch {
	case p.PageSize < 1:
		p.PageSize = DefaultPageSize
	case p.PageSize > MaxPageSize:
		p.PageSize = MaxPageSize
	}
	return p
}

// Offset assumes a normalized request.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Window clamps the page to [0, total) and returns slice bounds.
func (p PageRequest) Window(total int) (start, end int) {
	start = min(p.Offset(), total)
	end = min(start+p.PageSize, total)
	return start, end
}

// PageResponse is the listing envelope. Data is never null in JSON.
type PageResponse[T any] struct {
	Data       []T   `json:"data"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

func NewPageResponse[T any](data []T, page, pageSize int, totalItems int64) PageResponse[T] {
	if data == nil {
		data = []T{}
	}
	totalPages := 0
	if pageSize > 0 {
		totalPages = int((totalItems + int64(pageSize) - 1) / int64(pageSize))
	}
	return PageResponse[T]{
		Data:       data,
		Page:       page,
		PageSize:   pageSize,
		TotalItems: totalItems,
		TotalPages: totalPages,
	}
}

// Slice pages items that are already filtered and ordered.
func Slice[T any](items []T, req PageRequest) PageResponse[T] {
	req = req.Normalize()
	start, end := req.Window(len(items))
	return NewPageResponse(items[start:end], req.Page, req.PageSize, int64(len(items)))
}
