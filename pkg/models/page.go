package models

// Page is the envelope shape returned by paged list endpoints. Number is the
// zero-based page index on the wire; the console translates to and from the
// 1-based page users see.
type Page[T any] struct {
	Content       []T `json:"content"`
	TotalElements int `json:"totalElements"`
	TotalPages    int `json:"totalPages"`
	Size          int `json:"size"`
	Number        int `json:"number"`
}

// TotalPagesFor computes the page count for a total and page size, with a
// floor of one page so empty result sets still render a pager.
func TotalPagesFor(total, size int) int {
	if size < 1 {
		size = 1
	}
	if total < 0 {
		total = 0
	}
	pages := (total + size - 1) / size
	if pages < 1 {
		return 1
	}
	return pages
}
