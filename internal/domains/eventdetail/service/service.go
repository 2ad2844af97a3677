package service

import (
	"context"
	"crm/config"
	"crm/infras/otel"
	"crm/internal/domains/eventdetail/model"
	"crm/internal/domains/eventdetail/model/dto"
	"crm/internal/domains/eventdetail/repository"
	leadModel "crm/internal/domains/lead/model"
	leadRepo "crm/internal/domains/lead/repository"
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

const (
	cacheGetAllEventDetail = "event_detail:gets"
)

type EventDetail interface {
	Create(ctx context.Context, leadID string, req dto.CreateEventDetailRequest) (string, error)
	GetAll(ctx context.Context, leadID string) (dto.GetEventDetailsResponse, error)
	Get(ctx context.Context, leadID, id string) (dto.EventDetailResponse, error)
	Update(ctx context.Context, leadID, id string, req dto.UpdateEventDetailRequest) error
	Delete(ctx context.Context, leadID, id string) error
}

type serviceImpl struct {
	repo     repository.EventDetail
	leadRepo leadRepo.Lead
	cfg      *config.Config
	cache    cache.RedisCache
	otel     otel.Otel
}

func New(repo repository.EventDetail, leadRepo leadRepo.Lead, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) EventDetail {
	return &serviceImpl{
		repo:     repo,
		leadRepo: leadRepo,
		cfg:      cfg,
		cache:    cache,
		otel:     otel,
	}
}

func (s *serviceImpl) Create(ctx context.Context, leadID string, req dto.CreateEventDetailRequest) (id string, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".eventDetail.Create")
	defer scope.End()
	defer scope.TraceIfError(&err)

	lead, err := s.editableLead(ctx, leadID)
	if err != nil {
		return id, err
	}

	eventDate, err := dto.ParseEventDate(req.EventDate)
	if err != nil {
		return id, err
	}

	if err = req.Normalize(); err != nil {
		return id, err
	}

	detail := req.ToModel(leadID, shared.Actor(ctx), eventDate, timezone.Now())

	if err = checkLine(lead, detail); err != nil {
		return id, err
	}

	if err = s.repo.Insert(ctx, detail); err != nil {
		log.Error().Err(err).Msg("failed to create event detail")

		return id, fmt.Errorf("failed to create event detail: %w", err)
	}

	go s.invalidate(context.WithoutCancel(ctx), leadID)

	return detail.ID, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, leadID string) (res dto.GetEventDetailsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".eventDetail.GetAll")
	defer scope.End()
	defer scope.TraceIfError(&err)

	return cache.Remember(ctx, s.cache, shared.BuildCacheKey(cacheGetAllEventDetail, leadID), s.cfg.Cache.TTL, func(ctx context.Context) (res dto.GetEventDetailsResponse, err error) {
		exist, err := s.leadRepo.Exist(ctx, shared.FilterByID(leadID, leadModel.FieldID, leadModel.TableName))
		if err != nil {
			log.Error().Err(err).Msg("failed to check if lead exists")

			return res, fmt.Errorf("failed to check if lead exists: %w", err)
		}

		if !exist {
			return res, failure.NotFound("lead")
		}

		models, err := s.repo.GetAll(ctx, gDto.QueryParams{SortBy: model.FieldEventDate, SortDir: gDto.SortDirAsc}, repository.ByLead(leadID))
		if err != nil {
			log.Error().Err(err).Msg("failed to get event details")

			return res, fmt.Errorf("failed to get event details: %w", err)
		}

		slices.SortStableFunc(models, model.Compare)
		res.FromModels(models)

		return res, nil
	})
}

func (s *serviceImpl) Get(ctx context.Context, leadID, id string) (res dto.EventDetailResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".eventDetail.Get")
	defer scope.End()
	defer scope.TraceIfError(&err)

	detail, err := s.detail(ctx, leadID, id)
	if err != nil {
		return res, err
	}

	res.FromModel(detail)

	return res, nil
}

func (s *serviceImpl) Update(ctx context.Context, leadID, id string, req dto.UpdateEventDetailRequest) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".eventDetail.Update")
	defer scope.End()
	defer scope.TraceIfError(&err)

	if req.IsEmpty() {
		return failure.BadRequestFromString("update request cannot be empty")
	}

	lead, err := s.editableLead(ctx, leadID)
	if err != nil {
		return err
	}

	current, err := s.detail(ctx, leadID, id)
	if err != nil {
		return err
	}

	if err = req.Normalize(); err != nil {
		return err
	}

	merged, err := req.Apply(current)
	if err != nil {
		return err
	}

	if err = checkLine(lead, merged); err != nil {
		return err
	}

	if err = s.repo.Update(ctx, req.ToFields(shared.Actor(ctx), merged), repository.ByLeadAndID(leadID, id)); err != nil {
		log.Error().Err(err).Msg("failed to update event detail")

		return fmt.Errorf("failed to update event detail: %w", err)
	}

	go s.invalidate(context.WithoutCancel(ctx), leadID)

	return nil
}

func (s *serviceImpl) Delete(ctx context.Context, leadID, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".eventDetail.Delete")
	defer scope.End()
	defer scope.TraceIfError(&err)

	if _, err = s.editableLead(ctx, leadID); err != nil {
		return err
	}

	filter := repository.ByLeadAndID(leadID, id)

	exist, err := s.repo.Exist(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to check if event detail exists")

		return fmt.Errorf("failed to check if event detail exists: %w", err)
	}

	if !exist {
		return failure.NotFound("event detail")
	}

	if err = s.repo.Delete(ctx, filter); err != nil {
		log.Error().Err(err).Msg("failed to delete event detail")

		return fmt.Errorf("failed to delete event detail: %w", err)
	}

	go s.invalidate(context.WithoutCancel(ctx), leadID)

	return nil
}

func checkLine(lead leadModel.Lead, detail model.EventDetail) error {
	if !lead.Covers(detail.EventDate) {
		return failure.BadRequestFromString(fmt.Sprintf("event_date must be between %s and %s",
			timezone.FormatDate(lead.ArrivalDate), timezone.FormatDate(lead.DepartureDate)))
	}

	return dto.CheckTimes(detail)
}

// editableLead loads the lead and rejects changes to the lines of a lost lead.
func (s *serviceImpl) editableLead(ctx context.Context, leadID string) (leadModel.Lead, error) {
	lead, err := s.leadRepo.Get(ctx, shared.FilterByID(leadID, leadModel.FieldID, leadModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get lead")

		return lead, fmt.Errorf("failed to get lead: %w", err)
	}

	if lead.ID == "" {
		return lead, failure.NotFound("lead")
	}

	if lead.Status == leadModel.StatusLost {
		return lead, failure.BadRequestFromString("event details of a lost lead cannot be changed")
	}

	return lead, nil
}

func (s *serviceImpl) detail(ctx context.Context, leadID, id string) (model.EventDetail, error) {
	detail, err := s.repo.Get(ctx, repository.ByLeadAndID(leadID, id))
	if err != nil {
		log.Error().Err(err).Msg("failed to get event detail")

		return detail, fmt.Errorf("failed to get event detail: %w", err)
	}

	if detail.ID == "" {
		return detail, failure.NotFound("event detail")
	}

	return detail, nil
}

func (s *serviceImpl) invalidate(ctx context.Context, leadID string) {
	if err := s.cache.Delete(ctx, shared.BuildCacheKey(cacheGetAllEventDetail, leadID)); err != nil {
		log.Error().Err(err).Msg("failed to delete event details from cache")
	}

	shared.InvalidateCaches(ctx, s.cache, constant.CacheKeyDashboard)
}
