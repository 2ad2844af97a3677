package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"crm/config"
	"crm/infras/otel"
	"crm/infras/postgres"
	"crm/internal/domains/user/model"
	"crm/internal/domains/user/model/dto"
	"crm/internal/domains/user/repository"
	"crm/shared"
	"crm/shared/cache"
	"crm/shared/constant"
	gDto "crm/shared/dto"
	"crm/shared/failure"
	"crm/shared/password"
)

const (
	cacheGetUser    = "user:get"
	cacheGetAllUser = "user:gets"
)

// User manages the sales team accounts. Every team keeps at least one active
// admin, and nobody can demote, deactivate or delete themselves.
type User interface {
	Create(ctx context.Context, req dto.CreateUserRequest) error
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetUsersResponse, error)
	Get(ctx context.Context, id string) (dto.UserResponse, error)
	Update(ctx context.Context, req dto.UpdateUserRequest, id string) error
	Delete(ctx context.Context, id string) error
}

type serviceImpl struct {
	repo  repository.User
	cfg   *config.Config
	cache cache.RedisCache
	otel  otel.Otel
}

func New(repo repository.User, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) User {
	return &serviceImpl{
		repo:  repo,
		cfg:   cfg,
		cache: cache,
		otel:  otel,
	}
}

func byID(id string) gDto.FilterGroup {
	return shared.FilterByID(id, model.FieldID, model.TableName)
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateUserRequest) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".user.Create")
	defer scope.End()
	defer scope.TraceIfError(&err)

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	filter := gDto.NewFilterGroup()
	filter.AddIfNotEmpty(model.FieldEmail, gDto.FilterOperatorEq, model.TableName, req.Email)

	exists, err := s.repo.Exist(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to check if user exists")

		return fmt.Errorf("failed to check if user exists: %w", err)
	}

	if exists {
		return failure.Conflict("email already registered")
	}

	hashed, err := password.Hash(req.Password)
	if err != nil {
		return failure.BadRequest(err)
	}

	if err = s.repo.Insert(ctx, req.ToModel(shared.Actor(ctx), hashed)); err != nil {
		if postgres.IsUniqueViolation(err) {
			return failure.Conflict("email already registered")
		}

		log.Error().Err(err).Msg("failed to create user")

		return fmt.Errorf("failed to create user: %w", err)
	}

	go s.invalidate(context.WithoutCancel(ctx), "")

	return nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetUsersResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".user.GetAll")
	defer scope.End()
	defer scope.TraceIfError(&err)

	key := shared.BuildCacheKeyWithQuery(cacheGetAllUser, req, filter)

	return cache.Remember(ctx, s.cache, key, s.cfg.Cache.TTL, func(ctx context.Context) (res dto.GetUsersResponse, err error) {
		var (
			total int
			users []model.User
		)

		g, gctx := errgroup.WithContext(ctx)

		g.Go(func() (err error) {
			total, err = s.repo.Count(gctx, filter)

			return err
		})

		g.Go(func() (err error) {
			users, err = s.repo.GetAll(gctx, req, filter)

			return err
		})

		if err = g.Wait(); err != nil {
			log.Error().Err(err).Msg("failed to get users")

			return res, fmt.Errorf("failed to get users: %w", err)
		}

		res.FromModels(users, total, req.Limit)

		return res, nil
	})
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.UserResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".user.Get")
	defer scope.End()
	defer scope.TraceIfError(&err)

	return cache.Remember(ctx, s.cache, shared.BuildCacheKey(cacheGetUser, id), s.cfg.Cache.TTL, func(ctx context.Context) (res dto.UserResponse, err error) {
		user, err := s.find(ctx, id)
		if err != nil {
			return res, err
		}

		res.FromModel(user)

		return res, nil
	})
}

func (s *serviceImpl) Update(ctx context.Context, req dto.UpdateUserRequest, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".user.Update")
	defer scope.End()
	defer scope.TraceIfError(&err)

	if req.IsEmpty() {
		return failure.BadRequestFromString("update request cannot be empty")
	}

	user, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	demoted := req.Role != "" && req.Role != user.Role
	deactivated := req.Active != nil && !*req.Active && user.Active

	if demoted || deactivated {
		if shared.Actor(ctx) == id {
			return failure.BadRequestFromString("you cannot change your own role or deactivate yourself")
		}

		if err = s.keepAnAdmin(ctx, user); err != nil {
			return err
		}
	}

	if err = s.repo.Update(ctx, shared.TransformFields(req, shared.Actor(ctx)), byID(id)); err != nil {
		log.Error().Err(err).Msg("failed to update user")

		return fmt.Errorf("failed to update user: %w", err)
	}

	go s.invalidate(context.WithoutCancel(ctx), id)

	return nil
}

func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".user.Delete")
	defer scope.End()
	defer scope.TraceIfError(&err)

	if shared.Actor(ctx) == id {
		return failure.BadRequestFromString("you cannot delete yourself")
	}

	user, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	if err = s.keepAnAdmin(ctx, user); err != nil {
		return err
	}

	if err = s.repo.Delete(ctx, byID(id)); err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return failure.Conflict("user still owns leads, deactivate it instead")
		}

		log.Error().Err(err).Msg("failed to delete user")

		return fmt.Errorf("failed to delete user: %w", err)
	}

	go s.invalidate(context.WithoutCancel(ctx), id)

	return nil
}

func (s *serviceImpl) find(ctx context.Context, id string) (model.User, error) {
	user, err := s.repo.Get(ctx, byID(id))
	if err != nil {
		log.Error().Err(err).Str("user_id", id).Msg("failed to get user")

		return user, fmt.Errorf("failed to get user: %w", err)
	}

	if user.ID == "" {
		return user, failure.NotFound(model.EntityName)
	}

	return user, nil
}

// keepAnAdmin refuses to take away user when it is the last active admin.
func (s *serviceImpl) keepAnAdmin(ctx context.Context, user model.User) error {
	if user.Role != constant.RoleAdmin || !user.Active {
		return nil
	}

	filter := gDto.NewFilterGroup()
	filter.Add(gDto.Filter{Field: model.FieldRole, Operator: gDto.FilterOperatorEq, Value: constant.RoleAdmin, Table: model.TableName})
	filter.Add(gDto.Filter{Field: model.FieldActive, Operator: gDto.FilterOperatorEq, Value: true, Table: model.TableName})
	filter.Add(gDto.Filter{Field: model.FieldID, Operator: gDto.FilterOperatorNotEq, Value: user.ID, Table: model.TableName})

	others, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count admins")

		return fmt.Errorf("failed to count admins: %w", err)
	}

	if others == 0 {
		return failure.Conflict("the team needs at least one active admin")
	}

	return nil
}

func (s *serviceImpl) invalidate(ctx context.Context, id string) {
	if id != "" {
		if err := s.cache.Delete(ctx, shared.BuildCacheKey(cacheGetUser, id)); err != nil {
			log.Error().Err(err).Str("user_id", id).Msg("failed to delete user from cache")
		}
	}

	shared.InvalidateCaches(ctx, s.cache, cacheGetAllUser)
	shared.InvalidateCaches(ctx, s.cache, constant.CacheKeyLeads)
}
