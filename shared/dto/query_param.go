package dto

import (
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"crm/shared/constant"
)

const (
	SortDirAsc  = "ASC"
	SortDirDesc = "DESC"
)

// QueryParams carries list pagination and ordering. A zero Limit lists
// everything.
type QueryParams struct {
	Page    int    `json:"page"     validate:"omitempty"`
	Limit   int    `json:"limit"    validate:"omitempty"`
	SortBy  string `json:"sort_by"  validate:"omitempty"`
	SortDir string `json:"sort_dir" validate:"omitempty,oneof=ASC DESC"`
}

// FromRequest reads page, limit, sort_by and sort_dir from the query string.
// Malformed or non-positive numbers are ignored and limit is capped at
// constant.MaxValueLimit. With paginate set, a missing page or limit falls
// back to the defaults so large tables are never listed whole.
func (q *QueryParams) FromRequest(r *http.Request, paginate bool) {
	query := r.URL.Query()

	q.Page = positive(query, constant.RequestParamPage, q.Page)
	q.Limit = min(positive(query, constant.RequestParamLimit, q.Limit), constant.MaxValueLimit)

	if sortBy := query.Get(constant.RequestParamSortBy); sortBy != "" {
		q.SortBy = sortBy
	}

	switch dir := strings.ToUpper(query.Get(constant.RequestParamSortDir)); dir {
	case SortDirAsc, SortDirDesc:
		q.SortDir = dir
	}

	if !paginate {
		return
	}

	if q.Page == 0 {
		q.Page = constant.DefaultValuePage
	}

	if q.Limit == 0 {
		q.Limit = constant.DefaultValueLimit
	}
}

func positive(query url.Values, key string, fallback int) int {
	n, err := strconv.Atoi(query.Get(key))
	if err != nil || n <= 0 {
		return fallback
	}

	return n
}

// AllowSort keeps SortBy only when it names one of the allowed columns,
// since the column is interpolated into ORDER BY.
func (q *QueryParams) AllowSort(defaultSortBy string, allowed ...string) {
	if !slices.Contains(allowed, q.SortBy) {
		q.SortBy = defaultSortBy
	}

	if q.SortBy != "" && q.SortDir == "" {
		q.SortDir = constant.DefaultValueSortDir
	}
}
