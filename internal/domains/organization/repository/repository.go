package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"crm/infras/otel"
	"crm/infras/postgres"
	"crm/internal/domains/organization/model"
	gDto "crm/shared/dto"
	gRepo "crm/shared/repository"
)

type Organization interface {
	Insert(ctx context.Context, model model.Organization) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Organization, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Organization, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	Delete(ctx context.Context, filter gDto.FilterGroup) error
}

type repositoryImpl struct {
	gRepo.Repository[model.Organization]
}

func New(db *postgres.Connection, otel otel.Otel) Organization {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Organization](model.EntityName, model.TableName, model.FieldID, db, otel),
	}
}
