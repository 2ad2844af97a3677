package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"crm/infras/otel"
	"crm/infras/postgres"
	"crm/internal/domains/lead/model"
	gDto "crm/shared/dto"
	gRepo "crm/shared/repository"

	"github.com/jmoiron/sqlx"
)

type Lead interface {
	Insert(ctx context.Context, model model.Lead) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Lead, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Lead, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	Delete(ctx context.Context, filter gDto.FilterGroup) error
	InsertTx(ctx context.Context, sqltx *sqlx.Tx, model model.Lead) error
	UpdateTx(ctx context.Context, sqltx *sqlx.Tx, req map[string]any, filter gDto.FilterGroup) error
}

type repositoryImpl struct {
	gRepo.Repository[model.Lead]
}

func New(db *postgres.Connection, otel otel.Otel) Lead {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Lead](model.EntityName, model.TableName, model.FieldID, db, otel),
	}
}
