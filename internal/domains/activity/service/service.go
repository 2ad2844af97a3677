package service

import (
	"context"
	"crm/config"
	"crm/infras/otel"
	"crm/internal/domains/activity/model"
	"crm/internal/domains/activity/model/dto"
	"crm/internal/domains/activity/repository"
	leadModel "crm/internal/domains/lead/model"
	leadRepo "crm/internal/domains/lead/repository"
	userModel "crm/internal/domains/user/model"
	userRepo "crm/internal/domains/user/repository"
	"crm/shared"
	"crm/shared/cache"
	"crm/shared/constant"
	gDto "crm/shared/dto"
	"crm/shared/failure"
	"crm/shared/timezone"
	"fmt"
	"slices"

	"github.com/rs/zerolog/log"
)

type Activity interface {
	Create(ctx context.Context, leadID string, req dto.CreateActivityRequest) (string, error)
	GetAll(ctx context.Context, leadID string, req gDto.QueryParams) (dto.GetActivitiesResponse, error)
	Get(ctx context.Context, leadID, id string) (dto.ActivityResponse, error)
	Update(ctx context.Context, leadID, id string, req dto.UpdateActivityRequest) error
	Delete(ctx context.Context, leadID, id string) error
	Complete(ctx context.Context, leadID, id string) error
	FollowUps(ctx context.Context, req gDto.QueryParams) (dto.GetActivitiesResponse, error)
}

type serviceImpl struct {
	repo     repository.Activity
	leadRepo leadRepo.Lead
	userRepo userRepo.User
	cfg      *config.Config
	cache    cache.RedisCache
	otel     otel.Otel
}

func New(repo repository.Activity, leadRepo leadRepo.Lead, userRepo userRepo.User, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) Activity {
	return &serviceImpl{
		repo:     repo,
		leadRepo: leadRepo,
		userRepo: userRepo,
		cfg:      cfg,
		cache:    cache,
		otel:     otel,
	}
}

func (s *serviceImpl) Create(ctx context.Context, leadID string, req dto.CreateActivityRequest) (id string, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".activity.Create")
	defer scope.End()
	defer scope.TraceIfError(&err)

	if err = s.ensureLead(ctx, leadID); err != nil {
		return id, err
	}

	if req.AssignedTo != nil {
		if err = s.ensureAssignee(ctx, *req.AssignedTo); err != nil {
			return id, err
		}
	}

	activity, err := req.ToModel(leadID, shared.Actor(ctx), timezone.Now())
	if err != nil {
		return id, err
	}

	if err = s.repo.Insert(ctx, activity); err != nil {
		log.Error().Err(err).Msg("failed to create activity")

		return id, fmt.Errorf("failed to create activity: %w", err)
	}

	if activity.DueAt != nil {
		go shared.InvalidateCaches(context.WithoutCancel(ctx), s.cache, constant.CacheKeyDashboard)
	}

	return activity.ID, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, leadID string, req gDto.QueryParams) (res dto.GetActivitiesResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".activity.GetAll")
	defer scope.End()
	defer scope.TraceIfError(&err)

	if err = s.ensureLead(ctx, leadID); err != nil {
		return res, err
	}

	return s.list(ctx, req, repository.ByLead(leadID))
}

// FollowUps lists the open follow-ups assigned to the caller.
func (s *serviceImpl) FollowUps(ctx context.Context, req gDto.QueryParams) (res dto.GetActivitiesResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".activity.FollowUps")
	defer scope.End()
	defer scope.TraceIfError(&err)

	return s.list(ctx, req, repository.OpenFollowUps(shared.Actor(ctx)))
}

func (s *serviceImpl) list(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetActivitiesResponse, err error) {
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count activities")

		return res, fmt.Errorf("failed to count activities: %w", err)
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get activities")

		return res, fmt.Errorf("failed to get activities: %w", err)
	}

	res.FromModels(models, total, req.Limit, timezone.Now())

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, leadID, id string) (res dto.ActivityResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".activity.Get")
	defer scope.End()
	defer scope.TraceIfError(&err)

	activity, err := s.activity(ctx, leadID, id)
	if err != nil {
		return res, err
	}

	res.FromModel(activity, timezone.Now())

	return res, nil
}

func (s *serviceImpl) Update(ctx context.Context, leadID, id string, req dto.UpdateActivityRequest) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".activity.Update")
	defer scope.End()
	defer scope.TraceIfError(&err)

	if req.IsEmpty() {
		return failure.BadRequestFromString("update request cannot be empty")
	}

	if _, err = s.editableActivity(ctx, leadID, id); err != nil {
		return err
	}

	if req.AssignedTo != "" {
		if err = s.ensureAssignee(ctx, req.AssignedTo); err != nil {
			return err
		}
	}

	fields, err := req.ToFields(shared.Actor(ctx))
	if err != nil {
		return err
	}

	if err = s.repo.Update(ctx, fields, repository.ByLeadAndID(leadID, id)); err != nil {
		log.Error().Err(err).Msg("failed to update activity")

		return fmt.Errorf("failed to update activity: %w", err)
	}

	go shared.InvalidateCaches(context.WithoutCancel(ctx), s.cache, constant.CacheKeyDashboard)

	return nil
}

func (s *serviceImpl) Delete(ctx context.Context, leadID, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".activity.Delete")
	defer scope.End()
	defer scope.TraceIfError(&err)

	if _, err = s.editableActivity(ctx, leadID, id); err != nil {
		return err
	}

	if err = s.repo.Delete(ctx, repository.ByLeadAndID(leadID, id)); err != nil {
		log.Error().Err(err).Msg("failed to delete activity")

		return fmt.Errorf("failed to delete activity: %w", err)
	}

	go shared.InvalidateCaches(context.WithoutCancel(ctx), s.cache, constant.CacheKeyDashboard)

	return nil
}

func (s *serviceImpl) Complete(ctx context.Context, leadID, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".activity.Complete")
	defer scope.End()
	defer scope.TraceIfError(&err)

	activity, err := s.activity(ctx, leadID, id)
	if err != nil {
		return err
	}

	if activity.Completed {
		return failure.BadRequestFromString("activity is already completed")
	}

	now := timezone.Now()
	fields := map[string]any{
		model.FieldCompleted:     true,
		model.FieldCompletedAt:   now,
		constant.FieldModifiedAt: now,
		constant.FieldModifiedBy: shared.Actor(ctx),
	}

	if err = s.repo.Update(ctx, fields, repository.ByLeadAndID(leadID, id)); err != nil {
		log.Error().Err(err).Msg("failed to complete activity")

		return fmt.Errorf("failed to complete activity: %w", err)
	}

	go shared.InvalidateCaches(context.WithoutCancel(ctx), s.cache, constant.CacheKeyDashboard)

	return nil
}

// editableActivity rejects changes to activities recorded by the system.
func (s *serviceImpl) editableActivity(ctx context.Context, leadID, id string) (model.Activity, error) {
	activity, err := s.activity(ctx, leadID, id)
	if err != nil {
		return activity, err
	}

	if !slices.Contains(model.ManualTypes, activity.Type) {
		return activity, failure.BadRequestFromString(fmt.Sprintf("%s activities are recorded by the system and cannot be changed", activity.Type))
	}

	return activity, nil
}

func (s *serviceImpl) activity(ctx context.Context, leadID, id string) (model.Activity, error) {
	activity, err := s.repo.Get(ctx, repository.ByLeadAndID(leadID, id))
	if err != nil {
		log.Error().Err(err).Msg("failed to get activity")

		return activity, fmt.Errorf("failed to get activity: %w", err)
	}

	if activity.ID == "" {
		return activity, failure.NotFound("activity")
	}

	return activity, nil
}

func (s *serviceImpl) ensureLead(ctx context.Context, leadID string) error {
	exist, err := s.leadRepo.Exist(ctx, shared.FilterByID(leadID, leadModel.FieldID, leadModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to check if lead exists")

		return fmt.Errorf("failed to check if lead exists: %w", err)
	}

	if !exist {
		return failure.NotFound("lead")
	}

	return nil
}

func (s *serviceImpl) ensureAssignee(ctx context.Context, userID string) error {
	user, err := s.userRepo.Get(ctx, shared.FilterByID(userID, userModel.FieldID, userModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get assignee")

		return fmt.Errorf("failed to get assignee: %w", err)
	}

	if user.ID == "" || !user.Active {
		return failure.BadRequestFromString("assigned_to must be an active user")
	}

	return nil
}
