package query

// Pagination selects one page of results; both fields start at 1.
type Pagination struct {
	Page     int
	PageSize int
}

func (p Pagination) Skip() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit()
}

func (p Pagination) Limit() int {
	if p.PageSize < 1 {
		return 1
	}
	return p.PageSize
}

// PaginationResult is returned alongside a page of records.
type PaginationResult struct {
	Page         int   `json:"page"`
	PageSize     int   `json:"pageSize"`
	TotalPages   int   `json:"totalPages"`
	TotalRecords int64 `json:"totalRecords"`
}

// NewPaginationResult computes totalPages = ceil(totalRecords / pageSize).
func NewPaginationResult(p Pagination, totalRecords int64) PaginationResult {
	totalPages := 0
	if p.PageSize > 0 && totalRecords > 0 {
		totalPages = int((totalRecords + int64(p.PageSize) - 1) / int64(p.PageSize))
	}
	return PaginationResult{
		Page:         p.Page,
		PageSize:     p.PageSize,
		TotalPages:   totalPages,
		TotalRecords: totalRecords,
	}
}
