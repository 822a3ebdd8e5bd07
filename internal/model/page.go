package model

// Page is the paginated list shape. It is written to clients as is, never
// wrapped in the success envelope.
type Page[T any] struct {
	Items      []T `json:"items"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// NewPage builds a page and derives TotalPages as ceil(total/limit).
func NewPage[T any](items []T, total, page, limit int) Page[T] {
	if items == nil {
		items = []T{}
	}
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return Page[T]{Items: items, Total: total, Page: page, Limit: limit, TotalPages: pages}
}

// Paginated marks Page for the response envelope.
func (Page[T]) Paginated() {}
