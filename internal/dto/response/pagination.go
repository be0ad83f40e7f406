package response

import "admin-backend/internal/data/query"

type PaginatedResponse[T any] struct {
	Pagination query.PaginationResult `json:"pagination"`
	Data       []T                    `json:"data"`
}

func NewPaginatedResponse[T any](data []T, page query.Pagination, total int64) *PaginatedResponse[T] {
	if data == nil {
		data = []T{}
	}
	return &PaginatedResponse[T]{
		Pagination: query.NewPaginationResult(page, total),
		Data:       data,
	}
}
