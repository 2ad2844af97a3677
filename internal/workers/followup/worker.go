package followup

import (
	"context"
	"crm/config"
	"crm/infras/kafka"
	"crm/infras/otel"
	"crm/internal/domains/activity/model"
	"crm/internal/domains/activity/repository"
	"crm/shared/constant"
	gDto "crm/shared/dto"
	"crm/shared/timezone"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

const actor = "system:follow-up"

// Worker publishes a reminder for every open follow-up once its due time has
// passed, then stamps reminded_at so it is published only once.
type Worker struct {
	repo  repository.Activity
	kafka kafka.Client
	cfg   *config.Config
	otel  otel.Otel
	now   func() time.Time
}

func New(repo repository.Activity, kafka kafka.Client, cfg *config.Config, otel otel.Otel) *Worker {
	return &Worker{
		repo:  repo,
		kafka: kafka,
		cfg:   cfg,
		otel:  otel,
		now:   timezone.Now,
	}
}

// Run ticks every configured interval until ctx is cancelled. The first batch
// runs immediately.
func (w *Worker) Run(ctx context.Context) {
	interval := time.Duration(w.cfg.Worker.FollowUp.IntervalSeconds) * time.Second
	if interval <= 0 {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info().Dur("interval", interval).Msg("follow-up reminder worker started")

	for {
		if _, err := w.Tick(ctx); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("follow-up reminder batch failed")
		}

		select {
		case <-ctx.Done():
			log.Info().Msg("follow-up reminder worker stopped")

			return
		case <-ticker.C:
		}
	}
}

// Tick publishes one batch and returns how many follow-ups were reminded.
func (w *Worker) Tick(ctx context.Context) (reminded int, err error) {
	ctx, scope := w.otel.NewScope(ctx, constant.OtelWorkerScopeName, constant.OtelWorkerScopeName+".followup.Tick")
	defer scope.End()
	defer scope.TraceIfError(&err)

	now := w.now()

	params := gDto.QueryParams{
		Limit:   w.cfg.Worker.FollowUp.BatchSize,
		SortBy:  model.FieldDueAt,
		SortDir: gDto.SortDirAsc,
	}

	due, err := w.repo.GetAll(ctx, params, repository.DueForReminder(now))
	if err != nil {
		return 0, fmt.Errorf("failed to get due follow-ups: %w", err)
	}

	if len(due) == 0 {
		return 0, nil
	}

	messages := make([]kafka.Message, len(due))
	ids := make([]string, len(due))

	for i, activity := range due {
		messages[i] = kafka.Message{Key: activity.LeadID, Value: activity.ToFollowUpDue()}
		ids[i] = activity.ID
	}

	// unstamped follow-ups are picked up again by the next tick
	if err = w.kafka.SendMessages(ctx, w.cfg.Kafka.Topics.FollowUpDue, messages...); err != nil {
		return 0, fmt.Errorf("failed to publish follow-up reminders: %w", err)
	}

	filter := gDto.NewFilterGroup()
	filter.Add(gDto.Filter{Field: model.FieldID, Operator: gDto.FilterOperatorIn, Value: ids, Table: model.TableName})

	fields := map[string]any{
		model.FieldRemindedAt:    now,
		constant.FieldModifiedAt: now,
		constant.FieldModifiedBy: actor,
	}

	if err = w.repo.Update(ctx, fields, filter); err != nil {
		return 0, fmt.Errorf("failed to stamp reminded follow-ups: %w", err)
	}

	scope.SetAttribute("reminded", len(due))
	log.Info().Int("count", len(due)).Msg("follow-up reminders published")

	return len(due), nil
}
