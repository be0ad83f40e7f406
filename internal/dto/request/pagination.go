package request

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"admin-backend/internal/data/query"
)

// ListRequest is the decoded list query string:
// filter=["field:op:value",...]&sort=field:dir&page=1&pageSize=20
type ListRequest struct {
	Filter   []string
	Sort     string
	Page     int
	PageSize int
}

// ParseListRequest reads the list query. page falls back to 1 and pageSize
// to defaultSize when missing; pageSize is capped at maxSize.
func ParseListRequest(values url.Values, defaultSize, maxSize int) (ListRequest, error) {
	req := ListRequest{
		Sort:     strings.TrimSpace(values.Get("sort")),
		Page:     1,
		PageSize: defaultSize,
	}

	if raw := strings.TrimSpace(values.Get("filter")); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.Filter); err != nil {
			return ListRequest{}, fmt.Errorf("filter must be a JSON array of \"field:operator:value\" strings")
		}
	}

	if raw := values.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return ListRequest{}, fmt.Errorf("page must be a positive integer")
		}
		req.Page = page
	}

	if raw := values.Get("pageSize"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size < 1 {
			return ListRequest{}, fmt.Errorf("pageSize must be a positive integer")
		}
		req.PageSize = size
	}
	if maxSize > 0 && req.PageSize > maxSize {
		req.PageSize = maxSize
	}

	return req, nil
}

func (r ListRequest) Pagination() query.Pagination {
	return query.Pagination{Page: r.Page, PageSize: r.PageSize}
}
