package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"crm/infras/otel"
	"crm/infras/postgres"
	activityModel "crm/internal/domains/activity/model"
	"crm/internal/domains/dashboard/model"
	leadModel "crm/internal/domains/lead/model"
	"crm/shared/constant"
	"crm/shared/logger"
	"fmt"
	"time"
)

type Dashboard interface {
	StatusTotals(ctx context.Context, filter model.Filter) ([]model.StatusTotal, error)
	CreatedAt(ctx context.Context, filter model.Filter) ([]time.Time, error)
	ConfirmedRevenue(ctx context.Context, filter model.Filter) ([]model.DayAmount, error)
	UpcomingEvents(ctx context.Context, from, to time.Time, ownerID string, limit int) ([]model.UpcomingEvent, error)
	OverdueFollowUps(ctx context.Context, now time.Time, ownerID string) (int, error)
}

type repositoryImpl struct {
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Dashboard {
	return &repositoryImpl{
		db:   db,
		otel: otel,
	}
}

// StatusTotals counts the leads created in range and sums their budget per status.
func (repo *repositoryImpl) StatusTotals(ctx context.Context, filter model.Filter) ([]model.StatusTotal, error) {
	query := `SELECT leads.status AS status, COUNT(leads.id) AS count, COALESCE(SUM(leads.budget), 0) AS budget
		FROM leads
		WHERE leads.created_at >= :since AND leads.created_at < :until` + ownerClause("leads.owner_id", filter.OwnerID) + `
		GROUP BY leads.status`

	var totals []model.StatusTotal

	err := repo.selectNamed(ctx, "StatusTotals", query, rangeArgs(filter), &totals)

	return totals, err
}

// CreatedAt lists the creation time of every lead in range.
func (repo *repositoryImpl) CreatedAt(ctx context.Context, filter model.Filter) ([]time.Time, error) {
	query := `SELECT leads.created_at
		FROM leads
		WHERE leads.created_at >= :since AND leads.created_at < :until` + ownerClause("leads.owner_id", filter.OwnerID)

	var stamps []time.Time

	err := repo.selectNamed(ctx, "CreatedAt", query, rangeArgs(filter), &stamps)

	return stamps, err
}

// ConfirmedRevenue sums the line totals of confirmed leads per event date.
func (repo *repositoryImpl) ConfirmedRevenue(ctx context.Context, filter model.Filter) ([]model.DayAmount, error) {
	query := `SELECT event_details.event_date AS event_date, COALESCE(SUM(event_details.attendees * event_details.rate), 0) AS amount
		FROM event_details
		JOIN leads ON leads.id = event_details.lead_id
		WHERE leads.status = :status
		AND event_details.event_date >= :from AND event_details.event_date <= :to` + ownerClause("leads.owner_id", filter.OwnerID) + `
		GROUP BY event_details.event_date
		ORDER BY event_details.event_date`

	args := rangeArgs(filter)
	args["status"] = string(leadModel.StatusConfirmed)

	var days []model.DayAmount

	err := repo.selectNamed(ctx, "ConfirmedRevenue", query, args, &days)

	return days, err
}

// UpcomingEvents lists the event lines of non lost leads between from and to.
func (repo *repositoryImpl) UpcomingEvents(ctx context.Context, from, to time.Time, ownerID string, limit int) ([]model.UpcomingEvent, error) {
	query := `SELECT event_details.id AS event_detail_id, event_details.lead_id AS lead_id, leads.event_name AS event_name,
			leads.status AS status, event_details.event_date AS event_date, event_details.start_time AS start_time,
			event_details.end_time AS end_time, event_details.function_room AS function_room, event_details.attendees AS attendees
		FROM event_details
		JOIN leads ON leads.id = event_details.lead_id
		WHERE leads.status <> :status
		AND event_details.event_date >= :from AND event_details.event_date <= :to` + ownerClause("leads.owner_id", ownerID) + `
		ORDER BY event_details.event_date, event_details.start_time, event_details.id
		LIMIT :limit`

	args := map[string]any{
		"status":   string(leadModel.StatusLost),
		"from":     from,
		"to":       to,
		"owner_id": ownerID,
		"limit":    limit,
	}

	var events []model.UpcomingEvent

	err := repo.selectNamed(ctx, "UpcomingEvents", query, args, &events)

	return events, err
}

// OverdueFollowUps counts open follow-ups whose due time has passed.
func (repo *repositoryImpl) OverdueFollowUps(ctx context.Context, now time.Time, ownerID string) (int, error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, fmt.Sprintf("%s.%s.OverdueFollowUps", constant.OtelRepositoryScopeName, model.EntityName))
	defer scope.End()

	query := fmt.Sprintf(`SELECT COUNT(%[1]s.id)
		FROM %[1]s
		WHERE %[1]s.completed = :completed AND %[1]s.due_at IS NOT NULL AND %[1]s.due_at < :now`, activityModel.TableName) +
		ownerClause(activityModel.TableName+"."+activityModel.FieldAssignedTo, ownerID)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	args := map[string]any{
		"completed": false,
		"now":       now,
		"owner_id":  ownerID,
	}

	prepare, err := repo.db.Read.PrepareNamedContext(ctx, query)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return 0, fmt.Errorf("failed to prepare statement (%s): %w", model.EntityName, err)
	}
	defer prepare.Close()

	var count int

	if err = prepare.GetContext(ctx, &count, args); err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return 0, fmt.Errorf("failed to count overdue follow-ups: %w", err)
	}

	return count, nil
}

func (repo *repositoryImpl) selectNamed(ctx context.Context, name, query string, args map[string]any, dest any) error {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, fmt.Sprintf("%s.%s.%s", constant.OtelRepositoryScopeName, model.EntityName, name))
	defer scope.End()

	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	prepare, err := repo.db.Read.PrepareNamedContext(ctx, query)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return fmt.Errorf("failed to prepare statement (%s): %w", model.EntityName, err)
	}
	defer prepare.Close()

	if err = prepare.SelectContext(ctx, dest, args); err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return fmt.Errorf("failed to query %s (%s): %w", name, model.EntityName, err)
	}

	return nil
}

// rangeArgs binds from and to as calendar dates for DATE columns, since and
// until as instants for timestamp columns.
func rangeArgs(filter model.Filter) map[string]any {
	return map[string]any{
		"from":     filter.From,
		"to":       filter.To,
		"since":    filter.Since().UTC(),
		"until":    filter.Until().UTC(),
		"owner_id": filter.OwnerID,
	}
}

func ownerClause(column, ownerID string) string {
	if ownerID == "" {
		return ""
	}

	return fmt.Sprintf(" AND %s = :owner_id", column)
}
