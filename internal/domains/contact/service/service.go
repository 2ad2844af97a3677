package service

import (
	"context"
	"crm/config"
	"crm/infras/otel"
	"crm/infras/postgres"
	"crm/internal/domains/contact/model"
	"crm/internal/domains/contact/model/dto"
	"crm/internal/domains/contact/repository"
	orgModel "crm/internal/domains/organization/model"
	orgRepo "crm/internal/domains/organization/repository"
	"crm/shared"
	"crm/shared/cache"
	"crm/shared/constant"
	gDto "crm/shared/dto"
	"crm/shared/failure"
	"crm/shared/timezone"
	"fmt"

	"github.com/rs/zerolog/log"
)

const (
	cacheGetContact    = "contact:get"
	cacheGetAllContact = "contact:gets"
)

type Contact interface {
	Create(ctx context.Context, req dto.CreateContactRequest) (string, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetContactsResponse, error)
	Get(ctx context.Context, id string) (dto.ContactResponse, error)
	Update(ctx context.Context, req dto.UpdateContactRequest, id string) error
	Delete(ctx context.Context, id string) error
}

type serviceImpl struct {
	repo    repository.Contact
	orgRepo orgRepo.Organization
	cfg     *config.Config
	cache   cache.RedisCache
	otel    otel.Otel
}

func New(repo repository.Contact, orgRepo orgRepo.Organization, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) Contact {
	return &serviceImpl{
		repo:    repo,
		orgRepo: orgRepo,
		cfg:     cfg,
		cache:   cache,
		otel:    otel,
	}
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateContactRequest) (id string, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".contact.Create")
	defer scope.End()
	defer scope.TraceIfError(&err)

	if err = s.ensureOrganization(ctx, req.OrganizationID); err != nil {
		return id, err
	}

	contact := req.ToModel(shared.Actor(ctx), timezone.Now())

	if err = s.repo.Insert(ctx, contact); err != nil {
		log.Error().Err(err).Msg("failed to create contact")

		return id, fmt.Errorf("failed to create contact: %w", err)
	}

	go func() {
		shared.InvalidateCaches(context.WithoutCancel(ctx), s.cache, cacheGetAllContact)
	}()

	return contact.ID, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetContactsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".contact.GetAll")
	defer scope.End()
	defer scope.TraceIfError(&err)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllContact, req, filter)

	res, err = cache.Remember(ctx, s.cache, cacheKey, s.cfg.Cache.TTL, func(ctx context.Context) (res dto.GetContactsResponse, err error) {
		total, err := s.repo.Count(ctx, filter)
		if err != nil {
			log.Error().Err(err).Msg("failed to count contacts")

			return res, fmt.Errorf("failed to count contacts: %w", err)
		}

		models, err := s.repo.GetAll(ctx, req, filter)
		if err != nil {
			log.Error().Err(err).Msg("failed to get contacts")

			return res, fmt.Errorf("failed to get contacts: %w", err)
		}

		res.FromModels(models, total, req.Limit)

		return res, nil
	})

	return res, err
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.ContactResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".contact.Get")
	defer scope.End()
	defer scope.TraceIfError(&err)

	return cache.Remember(ctx, s.cache, shared.BuildCacheKey(cacheGetContact, id), s.cfg.Cache.TTL, func(ctx context.Context) (res dto.ContactResponse, err error) {
		contact, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
		if err != nil {
			log.Error().Err(err).Msg("failed to get contact")

			return res, fmt.Errorf("failed to get contact: %w", err)
		}

		if contact.ID == "" {
			return res, failure.NotFound("contact")
		}

		res.FromModel(contact)

		return res, nil
	})
}

func (s *serviceImpl) Update(ctx context.Context, req dto.UpdateContactRequest, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".contact.Update")
	defer scope.End()
	defer scope.TraceIfError(&err)

	if req.IsEmpty() {
		return failure.BadRequestFromString("update request cannot be empty")
	}

	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	exist, err := s.repo.Exist(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to check if contact exists")

		return fmt.Errorf("failed to check if contact exists: %w", err)
	}

	if !exist {
		return failure.NotFound("contact")
	}

	if err = s.ensureOrganization(ctx, req.OrganizationID); err != nil {
		return err
	}

	if err = s.repo.Update(ctx, shared.TransformFields(req, shared.Actor(ctx)), filter); err != nil {
		log.Error().Err(err).Msg("failed to update contact")

		return fmt.Errorf("failed to update contact: %w", err)
	}

	go s.invalidate(context.WithoutCancel(ctx), id)

	return nil
}

func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".contact.Delete")
	defer scope.End()
	defer scope.TraceIfError(&err)

	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	exist, err := s.repo.Exist(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to check if contact exists")

		return fmt.Errorf("failed to check if contact exists: %w", err)
	}

	if !exist {
		return failure.NotFound("contact")
	}

	if err = s.repo.Delete(ctx, filter); err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return failure.Conflict("contact is referenced by leads")
		}

		log.Error().Err(err).Msg("failed to delete contact")

		return fmt.Errorf("failed to delete contact: %w", err)
	}

	go s.invalidate(context.WithoutCancel(ctx), id)

	return nil
}

func (s *serviceImpl) ensureOrganization(ctx context.Context, organizationID *string) error {
	if organizationID == nil {
		return nil
	}

	exist, err := s.orgRepo.Exist(ctx, shared.FilterByID(*organizationID, orgModel.FieldID, orgModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to check if organization exists")

		return fmt.Errorf("failed to check if organization exists: %w", err)
	}

	if !exist {
		return failure.BadRequestFromString("organization does not exist")
	}

	return nil
}

func (s *serviceImpl) invalidate(ctx context.Context, id string) {
	if err := s.cache.Delete(ctx, shared.BuildCacheKey(cacheGetContact, id)); err != nil {
		log.Error().Err(err).Msg("failed to delete contact from cache")
	}

	shared.InvalidateCaches(ctx, s.cache, cacheGetAllContact)
	shared.InvalidateCaches(ctx, s.cache, constant.CacheKeyLeads)
}
