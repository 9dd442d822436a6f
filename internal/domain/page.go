package domain

// PaginationParams carries page/limit values from the HTTP layer to the
// museum client, which translates them into the backend's skip/limit query.
// Page is 1-indexed. Limit is capped at 50, the backend's own page ceiling.
type PaginationParams struct {
	// Page is the current page number, starting at 1.
	Page int
	// Limit is the maximum number of items to return.
	Limit int
}

// NewPaginationParams builds a PaginationParams from optional HTTP query params.
// Nil pointers fall back to page=1, limit=10 (the admin dashboard's
// "recent visitors" size).
func NewPaginationParams(page, limit *int) PaginationParams {
	p := PaginationParams{Page: 1, Limit: 10}
	if page != nil && *page >= 1 {
		p.Page = *page
	}
	if limit != nil && *limit >= 1 {
		p.Limit = min(*limit, 50)
	}
	return p
}

// Offset returns the zero-based row offset passed as the backend's skip value.
func (p PaginationParams) Offset() int {
	return (p.Page - 1) * p.Limit
}
