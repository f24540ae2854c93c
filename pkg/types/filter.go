package types

import "time"

// Filter - параметры поиска, сортировки и пагинации из query string.
type Filter struct {
	Search    string           `json:"search,omitempty"`
	SortBy    string           `json:"sort_by,omitempty"`
	SortOrder string           `json:"sort_order,omitempty"`
	Filter    map[string]int64 `json:"filter,omitempty"`
	Page      int              `json:"page"`
	PageSize  int              `json:"page_size"`
}

func (f Filter) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}

// http://localhost:8080/api/assets?search=dell&sort_by=status&sort_order=desc&filter[status_id]=1&page=2&page_size=25

// AuditFilter - параметры выборки журнала действий.
type AuditFilter struct {
	UserID     *int64
	ActionType string
	EntityType string
	EntityID   *int64
	From       *time.Time
	To         *time.Time
	Page       int
	PageSize   int
}

func (f AuditFilter) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}
