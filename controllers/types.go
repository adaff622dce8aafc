package controllers

// StandardResponse is the envelope most handlers return. Pagination is only
// set on list endpoints.
type StandardResponse struct {
	Success    bool            `json:"success"`
	Data       interface{}     `json:"data,omitempty"`
	Meta       interface{}     `json:"meta,omitempty"`
	Pagination *PaginationMeta `json:"pagination,omitempty"`
	Message    string          `json:"message,omitempty"`
}

type PaginationMeta struct {
	CurrentPage int   `json:"currentPage"`
	PageSize    int   `json:"pageSize"`
	TotalItems  int64 `json:"totalItems"`
	TotalPages  int   `json:"totalPages"`
}

// NewPaginationMeta derives the page count from a total row count.
func NewPaginationMeta(page, pageSize int, total int64) PaginationMeta {
	pages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return PaginationMeta{
		CurrentPage: page,
		PageSize:    pageSize,
		TotalItems:  total,
		TotalPages:  pages,
	}
}
