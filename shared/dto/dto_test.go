package dto_test

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"crm/shared/constant"
	"crm/shared/dto"
	"crm/shared/model"
)

func TestMetadata_FromModel(t *testing.T) {
	created := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	var got dto.Metadata
	got.FromModel(model.Metadata{
		CreatedAt:  created,
		ModifiedAt: created.Add(time.Hour),
		CreatedBy:  "u-1",
		ModifiedBy: "u-2",
	})

	assert.Equal(t, "u-1", got.CreatedBy)
	assert.Equal(t, "u-2", got.ModifiedBy)
	assert.NotEmpty(t, got.CreatedAt)
	assert.NotEqual(t, got.CreatedAt, got.ModifiedAt)
}

func TestQueryParams_FromRequest(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		paginate bool
		want     dto.QueryParams
	}{
		{
			name:  "all parameters",
			query: "page=2&limit=20&sort_by=event_name&sort_dir=asc",
			want:  dto.QueryParams{Page: 2, Limit: 20, SortBy: "event_name", SortDir: dto.SortDirAsc},
		},
		{
			name:     "defaults when paginating",
			paginate: true,
			want:     dto.QueryParams{Page: constant.DefaultValuePage, Limit: constant.DefaultValueLimit},
		},
		{
			name: "nothing without pagination",
			want: dto.QueryParams{},
		},
		{
			name:     "malformed numbers fall back",
			query:    "page=abc&limit=-10",
			paginate: true,
			want:     dto.QueryParams{Page: constant.DefaultValuePage, Limit: constant.DefaultValueLimit},
		},
		{
			name:  "limit is capped",
			query: "limit=5000",
			want:  dto.QueryParams{Limit: constant.MaxValueLimit},
		},
		{
			name:  "unknown direction ignored",
			query: "sort_dir=sideways",
			want:  dto.QueryParams{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/v1/leads/?"+tt.query, nil)

			var got dto.QueryParams
			got.FromRequest(req, tt.paginate)

			assert.Equal(t, tt.want, got)
		})
	}
}

func TestQueryParams_AllowSort(t *testing.T) {
	tests := []struct {
		name   string
		params dto.QueryParams
		want   dto.QueryParams
	}{
		{
			name:   "allowed column is kept",
			params: dto.QueryParams{SortBy: "event_name", SortDir: dto.SortDirAsc},
			want:   dto.QueryParams{SortBy: "event_name", SortDir: dto.SortDirAsc},
		},
		{
			name:   "unknown column falls back",
			params: dto.QueryParams{SortBy: "1; DROP TABLE leads", SortDir: dto.SortDirAsc},
			want:   dto.QueryParams{SortBy: constant.DefaultValueSortBy, SortDir: dto.SortDirAsc},
		},
		{
			name: "empty sort gets default direction",
			want: dto.QueryParams{SortBy: constant.DefaultValueSortBy, SortDir: constant.DefaultValueSortDir},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := tt.params
			params.AllowSort(constant.DefaultValueSortBy, "event_name", "created_at")

			assert.Equal(t, tt.want, params)
		})
	}
}

func TestFilter_GetWhereClause(t *testing.T) {
	tests := []struct {
		name   string
		filter dto.Filter
		where  string
		args   map[string]any
	}{
		{
			name:   "equality",
			filter: dto.Filter{Field: "status", Operator: dto.FilterOperatorEq, Value: "lost", Table: "leads"},
			where:  "leads.status = :status",
			args:   map[string]any{"status": "lost"},
		},
		{
			name:   "strict bound with arg name",
			filter: dto.Filter{ArgName: "arrival", Field: "event_date", Operator: dto.FilterOperatorLess, Value: "2026-05-10"},
			where:  "event_date < :arrival",
			args:   map[string]any{"arrival": "2026-05-10"},
		},
		{
			name:   "like",
			filter: dto.Filter{Field: "event_name", Operator: dto.FilterOperatorLike, Value: "gala", Table: "leads"},
			where:  "LOWER(leads.event_name) LIKE LOWER(:event_name)",
			args:   map[string]any{"event_name": "%gala%"},
		},
		{
			name:   "in expands slices",
			filter: dto.Filter{Field: "id", Operator: dto.FilterOperatorIn, Value: []string{"a", "b"}, Table: "activities"},
			where:  "activities.id IN (:id_0, :id_1)",
			args:   map[string]any{"id_0": "a", "id_1": "b"},
		},
		{
			name:   "in with nothing matches nothing",
			filter: dto.Filter{Field: "id", Operator: dto.FilterOperatorIn, Value: []string{}},
			where:  "FALSE",
			args:   map[string]any{},
		},
		{
			name:   "in with a scalar binds it",
			filter: dto.Filter{Field: "id", Operator: dto.FilterOperatorIn, Value: "a"},
			where:  "id IN (:id)",
			args:   map[string]any{"id": "a"},
		},
		{
			name:   "null check",
			filter: dto.Filter{Field: "reminded_at", Operator: dto.FilterIsNull, Table: "activities"},
			where:  "activities.reminded_at IS NULL",
			args:   map[string]any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := tt.filter.GetWhereClause()

			assert.Equal(t, tt.where, where)
			assert.Equal(t, tt.args, args)
		})
	}
}

func TestFilterGroup_GetWhereClause(t *testing.T) {
	search := dto.FilterGroup{Operator: dto.FilterGroupOperatorOr}
	search.Add(dto.Filter{ArgName: "search_first", Field: "first_name", Operator: dto.FilterOperatorLike, Value: "ann", Table: "contacts"})
	search.Add(dto.Filter{ArgName: "search_email", Field: "email", Operator: dto.FilterOperatorLike, Value: "ann", Table: "contacts"})

	group := dto.NewFilterGroup()
	group.AddIfNotEmpty("organization_id", dto.FilterOperatorEq, "contacts", "org-1")
	group.AddIfNotEmpty("owner_id", dto.FilterOperatorEq, "contacts", "")
	group.Add(dto.Filter{Field: "ignored", Operator: "unknown"})
	group.AddGroup(dto.NewFilterGroup())
	group.AddGroup(search)

	where, args := group.GetWhereClause()

	assert.Equal(t, "(contacts.organization_id = :organization_id AND "+
		"(LOWER(contacts.first_name) LIKE LOWER(:search_first) OR LOWER(contacts.email) LIKE LOWER(:search_email)))", where)
	assert.Equal(t, map[string]any{"organization_id": "org-1", "search_first": "%ann%", "search_email": "%ann%"}, args)

	empty := dto.NewFilterGroup()
	where, _ = empty.GetWhereClause()
	assert.Empty(t, where)
}
