package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"crm/infras/otel"
	"crm/infras/postgres"
	"crm/internal/domains/eventdetail/model"
	gDto "crm/shared/dto"
	gRepo "crm/shared/repository"
	"time"
)

type EventDetail interface {
	Insert(ctx context.Context, model model.EventDetail) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.EventDetail, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.EventDetail, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	Delete(ctx context.Context, filter gDto.FilterGroup) error
}

type repositoryImpl struct {
	gRepo.Repository[model.EventDetail]
}

func New(db *postgres.Connection, otel otel.Otel) EventDetail {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.EventDetail](model.EntityName, model.TableName, model.FieldID, db, otel),
	}
}

// ByLead selects the lines of a lead.
func ByLead(leadID string) gDto.FilterGroup {
	filter := gDto.NewFilterGroup()
	filter.Add(gDto.Filter{Field: model.FieldLeadID, Operator: gDto.FilterOperatorEq, Value: leadID, Table: model.TableName})

	return filter
}

// OutsideStay selects the lines of a lead falling outside arrival..departure.
func OutsideStay(leadID string, arrival, departure time.Time) gDto.FilterGroup {
	outside := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorOr,
		Filters: []any{
			gDto.Filter{ArgName: "arrival", Field: model.FieldEventDate, Operator: gDto.FilterOperatorLess, Value: arrival, Table: model.TableName},
			gDto.Filter{ArgName: "departure", Field: model.FieldEventDate, Operator: gDto.FilterOperatorGreater, Value: departure, Table: model.TableName},
		},
	}

	filter := ByLead(leadID)
	filter.AddGroup(outside)

	return filter
}

// ByLeadAndID selects one line of a lead.
func ByLeadAndID(leadID, id string) gDto.FilterGroup {
	filter := ByLead(leadID)
	filter.Add(gDto.Filter{Field: model.FieldID, Operator: gDto.FilterOperatorEq, Value: id, Table: model.TableName})

	return filter
}
