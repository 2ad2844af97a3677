package service

import (
	"context"
	"crm/config"
	"crm/infras/otel"
	"crm/infras/postgres"
	"crm/infras/s3"
	"crm/internal/domains/organization/model"
	"crm/internal/domains/organization/model/dto"
	"crm/internal/domains/organization/repository"
	"crm/shared"
	"crm/shared/base64"
	"crm/shared/cache"
	"crm/shared/constant"
	gDto "crm/shared/dto"
	"crm/shared/failure"
	"crm/shared/timezone"
	"fmt"

	"github.com/rs/zerolog/log"
)

const (
	cacheGetOrganization    = "organization:get"
	cacheGetAllOrganization = "organization:gets"
	cacheCountOrganization  = "organization:count"
)

type Organization interface {
	Create(ctx context.Context, req dto.CreateOrganizationRequest) (string, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetOrganizationsResponse, error)
	Get(ctx context.Context, id string) (dto.OrganizationResponse, error)
	Update(ctx context.Context, req dto.UpdateOrganizationRequest, id string) error
	Delete(ctx context.Context, id string) error
}

type serviceImpl struct {
	repo    repository.Organization
	storage s3.S3
	cfg     *config.Config
	cache   cache.RedisCache
	otel    otel.Otel
}

func New(repo repository.Organization, storage s3.S3, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) Organization {
	return &serviceImpl{
		repo:    repo,
		storage: storage,
		cfg:     cfg,
		cache:   cache,
		otel:    otel,
	}
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateOrganizationRequest) (id string, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".organization.Create")
	defer scope.End()
	defer scope.TraceIfError(&err)

	organization := req.ToModel(shared.Actor(ctx), timezone.Now())

	if req.Logo != nil {
		logoURL, err := s.uploadLogo(ctx, organization.ID, *req.Logo)
		if err != nil {
			return id, err
		}

		organization.LogoURL = &logoURL
	}

	if err = s.repo.Insert(ctx, organization); err != nil {
		log.Error().Err(err).Msg("failed to create organization")

		return id, fmt.Errorf("failed to create organization: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		shared.InvalidateCaches(c, s.cache, cacheGetAllOrganization)
		shared.InvalidateCaches(c, s.cache, cacheCountOrganization)
	}()

	return organization.ID, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetOrganizationsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".organization.GetAll")
	defer scope.End()
	defer scope.TraceIfError(&err)

	return cache.Remember(ctx, s.cache, shared.BuildCacheKeyWithQuery(cacheGetAllOrganization, req, filter), s.cfg.Cache.TTL, func(ctx context.Context) (res dto.GetOrganizationsResponse, err error) {
		total, err := s.count(ctx, req, filter)
		if err != nil {
			return res, err
		}

		models, err := s.repo.GetAll(ctx, req, filter)
		if err != nil {
			log.Error().Err(err).Msg("failed to get organizations")

			return res, fmt.Errorf("failed to get organizations: %w", err)
		}

		res.FromModels(models, total, req.Limit)

		return res, nil
	})
}

func (s *serviceImpl) count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (int, error) {
	return cache.Remember(ctx, s.cache, shared.BuildCacheKeyWithQuery(cacheCountOrganization, req, filter), s.cfg.Cache.TTL, func(ctx context.Context) (int, error) {
		total, err := s.repo.Count(ctx, filter)
		if err != nil {
			log.Error().Err(err).Msg("failed to count organizations")

			return 0, fmt.Errorf("failed to count organizations: %w", err)
		}

		return total, nil
	})
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.OrganizationResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".organization.Get")
	defer scope.End()
	defer scope.TraceIfError(&err)

	return cache.Remember(ctx, s.cache, shared.BuildCacheKey(cacheGetOrganization, id), s.cfg.Cache.TTL, func(ctx context.Context) (res dto.OrganizationResponse, err error) {
		organization, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
		if err != nil {
			log.Error().Err(err).Msg("failed to get organization")

			return res, fmt.Errorf("failed to get organization: %w", err)
		}

		if organization.ID == "" {
			return res, failure.NotFound("organization")
		}

		res.FromModel(organization)

		return res, nil
	})
}

func (s *serviceImpl) Update(ctx context.Context, req dto.UpdateOrganizationRequest, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".organization.Update")
	defer scope.End()
	defer scope.TraceIfError(&err)

	if req.IsEmpty() {
		return failure.BadRequestFromString("update request cannot be empty")
	}

	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	current, err := s.repo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get organization")

		return fmt.Errorf("failed to get organization: %w", err)
	}

	if current.ID == "" {
		return failure.NotFound("organization")
	}

	if req.Logo != nil {
		logoURL, err := s.uploadLogo(ctx, id, *req.Logo)
		if err != nil {
			return err
		}

		req.LogoURL = &logoURL
	}

	if err := s.repo.Update(ctx, shared.TransformFields(req, shared.Actor(ctx)), filter); err != nil {
		log.Error().Err(err).Msg("failed to update organization")

		return fmt.Errorf("failed to update organization: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if req.LogoURL != nil && current.LogoURL != nil && *current.LogoURL != *req.LogoURL {
			s.deleteLogo(c, *current.LogoURL)
		}

		s.invalidate(c, id)
	}()

	return nil
}

func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".organization.Delete")
	defer scope.End()
	defer scope.TraceIfError(&err)

	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	current, err := s.repo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get organization")

		return fmt.Errorf("failed to get organization: %w", err)
	}

	if current.ID == "" {
		return failure.NotFound("organization")
	}

	if err := s.repo.Delete(ctx, filter); err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return failure.Conflict("organization is referenced by contacts or leads")
		}

		log.Error().Err(err).Msg("failed to delete organization")

		return fmt.Errorf("failed to delete organization: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if current.LogoURL != nil {
			s.deleteLogo(c, *current.LogoURL)
		}

		s.invalidate(c, id)
	}()

	return nil
}

func (s *serviceImpl) uploadLogo(ctx context.Context, id, dataURI string) (string, error) {
	contentType, data, err := base64.Decode(dataURI)
	if err != nil {
		return "", failure.BadRequest(err)
	}

	url, err := s.storage.UploadFileBytes(ctx, s.cfg.External.S3.BucketName, model.LogoDirectory, id+base64.Extension(contentType), contentType, data)
	if err != nil {
		log.Error().Err(err).Str("organization_id", id).Msg("failed to upload organization logo")

		return "", fmt.Errorf("failed to upload organization logo: %w", err)
	}

	return url, nil
}

func (s *serviceImpl) deleteLogo(ctx context.Context, url string) {
	objectName := s.storage.GetObjectNameFromURL(s.cfg.External.S3.BucketName, url)
	if objectName == "" {
		return
	}

	if err := s.storage.DeleteFile(ctx, s.cfg.External.S3.BucketName, "", objectName); err != nil {
		log.Error().Err(err).Str("object", objectName).Msg("failed to delete organization logo")
	}
}

func (s *serviceImpl) invalidate(ctx context.Context, id string) {
	if err := s.cache.Delete(ctx, shared.BuildCacheKey(cacheGetOrganization, id)); err != nil {
		log.Error().Err(err).Msg("failed to delete organization from cache")
	}

	shared.InvalidateCaches(ctx, s.cache, cacheGetAllOrganization)
	shared.InvalidateCaches(ctx, s.cache, cacheCountOrganization)
	shared.InvalidateCaches(ctx, s.cache, constant.CacheKeyLeads)
}
