package utils

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "it-inventory/pkg/errors"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", apperrors.NewNotFoundError("Статус", 7), http.StatusNotFound},
		{"duplicate", apperrors.NewDuplicateError("Тип актива", "prefix", "PRN", ""), http.StatusConflict},
		{"deletion", &apperrors.DeletionError{Label: "PC", Count: 1}, http.StatusConflict},
		{"validation", apperrors.NewValidationError("name", "обязательное поле"), http.StatusUnprocessableEntity},
		{"wrapped unauthenticated", fmt.Errorf("auth: %w", apperrors.ErrUnauthenticated), http.StatusUnauthorized},
		{"expired token", apperrors.ErrTokenExpired, http.StatusUnauthorized},
		{"forbidden", apperrors.ErrForbidden, http.StatusForbidden},
		{"inactive", apperrors.ErrInactiveUser, http.StatusBadRequest},
		{"storage", apperrors.NewStorageError("select", errors.New("boom")), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, StatusFor(tc.err))
		})
	}
}

func TestParseFilterFromQuery(t *testing.T) {
	values := url.Values{
		"search":              {"  dell "},
		"sort_order":          {"DESC"},
		"page":                {"2"},
		"page_size":           {"1000"},
		"filter[status_id]":   {"3"},
		"filter[location_id]": {"abc"},
	}
	f := ParseFilterFromQuery(values)

	assert.Equal(t, "dell", f.Search)
	assert.Equal(t, "desc", f.SortOrder)
	assert.Equal(t, 2, f.Page)
	assert.Equal(t, MaxLimit, f.PageSize)
	assert.Equal(t, map[string]int64{"status_id": 3}, f.Filter)
}

func TestParseFilterFromQuery_Defaults(t *testing.T) {
	f := ParseFilterFromQuery(url.Values{"page": {"-1"}})
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, DefaultLimit, f.PageSize)
}

func TestParseAuditFilterFromQuery_EndDateInclusive(t *testing.T) {
	f := ParseAuditFilterFromQuery(url.Values{
		"start_date": {"2025-01-01"},
		"end_date":   {"2025-01-31"},
		"entity_id":  {"12"},
	})
	require.NotNil(t, f.From)
	require.NotNil(t, f.To)
	require.NotNil(t, f.EntityID)
	assert.Equal(t, "2025-01-01", f.From.Format("2006-01-02"))
	assert.Equal(t, "2025-02-01", f.To.Format("2006-01-02"))
	assert.EqualValues(t, 12, *f.EntityID)
	assert.Nil(t, f.UserID)
}

func TestProvidedFields(t *testing.T) {
	provided, err := ProvidedFields([]byte(`{"name":"B","serial_number":null}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"name": true, "serial_number": true}, provided)

	_, err = ProvidedFields([]byte(`[1,2]`))
	assert.Error(t, err)
}

func TestPasswordTruncatedAt72Bytes(t *testing.T) {
	long := strings.Repeat("a", 72)
	hash, err := HashPassword(long + "tail-one")
	require.NoError(t, err)

	assert.NoError(t, ComparePasswords(hash, long+"tail-two"))
	assert.Error(t, ComparePasswords(hash, strings.Repeat("a", 71)))
}
