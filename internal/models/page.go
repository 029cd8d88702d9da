package models

import "net/http"

// Paginated is one page of a larger result set.
type Paginated[T any] struct {
	Items      []T `json:"data"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// TotalPages returns ceil(total/limit) without overflowing for large limits.
func TotalPages(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	n := total / limit
	if total%limit != 0 {
		n++
	}
	return n
}

// HasPage reports whether page holds at least one of total items.
func HasPage(total, page, limit int) bool {
	return page >= 1 && page-1 < TotalPages(total, limit)
}

// Offset returns the index of the first item on page. Callers check
// HasPage first so the product cannot overflow.
func Offset(page, limit int) int {
	return (page - 1) * limit
}

// Paginate slices an in-memory result set. page and limit must be positive.
func Paginate[T any](all []T, page, limit int) Paginated[T] {
	items := []T{}
	if HasPage(len(all), page, limit) {
		start := Offset(page, limit)
		end := start + min(limit, len(all)-start)
		items = make([]T, end-start)
		copy(items, all[start:end])
	}

	return Paginated[T]{
		Items:      items,
		Total:      len(all),
		Page:       page,
		Limit:      limit,
		TotalPages: TotalPages(len(all), limit),
	}
}

// CheckPagination rejects non-positive page or limit values.
func CheckPagination(page, limit int) error {
	if page < 1 || limit < 1 {
		return NewAPIError(http.StatusBadRequest, "page and limit must be positive integers", nil)
	}
	return nil
}
