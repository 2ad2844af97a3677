package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"crm/infras/otel"
	"crm/infras/postgres"
	"crm/internal/domains/proposal/model"
	gDto "crm/shared/dto"
	gRepo "crm/shared/repository"

	"github.com/jmoiron/sqlx"
)

type Proposal interface {
	Insert(ctx context.Context, model model.Proposal) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Proposal, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Proposal, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	Delete(ctx context.Context, filter gDto.FilterGroup) error
	InsertTx(ctx context.Context, sqltx *sqlx.Tx, model model.Proposal) error
	UpdateTx(ctx context.Context, sqltx *sqlx.Tx, req map[string]any, filter gDto.FilterGroup) error
}

type repositoryImpl struct {
	gRepo.Repository[model.Proposal]
}

func New(db *postgres.Connection, otel otel.Otel) Proposal {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Proposal](model.EntityName, model.TableName, model.FieldID, db, otel),
	}
}

// ByLead selects the proposals of a lead.
func ByLead(leadID string) gDto.FilterGroup {
	filter := gDto.NewFilterGroup()
	filter.Add(gDto.Filter{Field: model.FieldLeadID, Operator: gDto.FilterOperatorEq, Value: leadID, Table: model.TableName})

	return filter
}

// ByLeadAndID selects one proposal of a lead.
func ByLeadAndID(leadID, id string) gDto.FilterGroup {
	filter := ByLead(leadID)
	filter.Add(gDto.Filter{Field: model.FieldID, Operator: gDto.FilterOperatorEq, Value: id, Table: model.TableName})

	return filter
}

// Newest orders proposals by version, latest first.
func Newest(limit int) gDto.QueryParams {
	return gDto.QueryParams{Limit: limit, SortBy: model.FieldVersion, SortDir: gDto.SortDirDesc}
}
