package utils

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"it-inventory/pkg/types"
)

const (
	DefaultLimit = 25
	MaxLimit     = 200
)

func parsePage(values url.Values) (page, pageSize int) {
	page, pageSize = 1, DefaultLimit
	if p, err := strconv.Atoi(values.Get("page")); err == nil && p > 0 {
		page = p
	}
	if l, err := strconv.Atoi(values.Get("page_size")); err == nil && l > 0 {
		pageSize = min(l, MaxLimit)
	}
	return page, pageSize
}

// ParseFilterFromQuery: search, sort_by, sort_order, filter[x]=id, page, page_size.
func ParseFilterFromQuery(values url.Values) types.Filter {
	filter := types.Filter{
		Search:    strings.TrimSpace(values.Get("search")),
		SortBy:    values.Get("sort_by"),
		SortOrder: strings.ToLower(values.Get("sort_order")),
		Filter:    make(map[string]int64),
	}
	filter.Page, filter.PageSize = parsePage(values)

	for key, vals := range values {
		if len(vals) == 0 || vals[0] == "" {
			continue
		}
		if strings.HasPrefix(key, "filter[") && strings.HasSuffix(key, "]") {
			if id, err := strconv.ParseInt(vals[0], 10, 64); err == nil && id > 0 {
				filter.Filter[key[7:len(key)-1]] = id
			}
		}
	}
	return filter
}

func ParseAuditFilterFromQuery(values url.Values) types.AuditFilter {
	filter := types.AuditFilter{
		ActionType: values.Get("action_type"),
		EntityType: values.Get("entity_type"),
	}
	filter.Page, filter.PageSize = parsePage(values)

	if id, err := strconv.ParseInt(values.Get("user_id"), 10, 64); err == nil {
		filter.UserID = &id
	}
	if id, err := strconv.ParseInt(values.Get("entity_id"), 10, 64); err == nil {
		filter.EntityID = &id
	}
	if t, err := time.Parse("2006-01-02", values.Get("start_date")); err == nil {
		filter.From = &t
	}
	// конечная дата включается целиком
	if t, err := time.Parse("2006-01-02", values.Get("end_date")); err == nil {
		end := t.AddDate(0, 0, 1)
		filter.To = &end
	}
	return filter
}
