package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"crm/infras/otel"
	"crm/infras/postgres"
	"crm/internal/domains/activity/model"
	gDto "crm/shared/dto"
	gRepo "crm/shared/repository"
	"time"

	"github.com/jmoiron/sqlx"
)

type Activity interface {
	Insert(ctx context.Context, model model.Activity) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Activity, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Activity, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	Delete(ctx context.Context, filter gDto.FilterGroup) error
	InsertTx(ctx context.Context, sqltx *sqlx.Tx, model model.Activity) error
	UpdateTx(ctx context.Context, sqltx *sqlx.Tx, req map[string]any, filter gDto.FilterGroup) error
}

type repositoryImpl struct {
	gRepo.Repository[model.Activity]
}

func New(db *postgres.Connection, otel otel.Otel) Activity {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Activity](model.EntityName, model.TableName, model.FieldID, db, otel),
	}
}

func byField(field, operator string, value any) gDto.Filter {
	return gDto.Filter{Field: field, Operator: operator, Value: value, Table: model.TableName}
}

// ByLead selects the activities of a lead.
func ByLead(leadID string) gDto.FilterGroup {
	filter := gDto.NewFilterGroup()
	filter.Add(byField(model.FieldLeadID, gDto.FilterOperatorEq, leadID))

	return filter
}

// OpenFollowUps selects incomplete activities with a due time, optionally
// assigned to one user.
func OpenFollowUps(assignedTo string) gDto.FilterGroup {
	filter := gDto.NewFilterGroup()
	filter.Add(byField(model.FieldCompleted, gDto.FilterOperatorEq, false))
	filter.Add(byField(model.FieldDueAt, gDto.FilterIsNotNull, nil))
	filter.AddIfNotEmpty(model.FieldAssignedTo, gDto.FilterOperatorEq, model.TableName, assignedTo)

	return filter
}

// DueForReminder selects open follow-ups due at or before now that were never reminded.
func DueForReminder(now time.Time) gDto.FilterGroup {
	filter := OpenFollowUps("")
	filter.Add(gDto.Filter{ArgName: "due_before", Field: model.FieldDueAt, Operator: gDto.FilterOperatorLessEq, Value: now, Table: model.TableName})
	filter.Add(byField(model.FieldRemindedAt, gDto.FilterIsNull, nil))

	return filter
}

// ByLeadAndID selects one activity of a lead.
func ByLeadAndID(leadID, id string) gDto.FilterGroup {
	filter := ByLead(leadID)
	filter.Add(byField(model.FieldID, gDto.FilterOperatorEq, id))

	return filter
}
