package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"crm/config"
	"crm/infras/jwt"
	"crm/infras/otel"
	"crm/internal/domains/auth/model/dto"
	userModel "crm/internal/domains/user/model"
	userDto "crm/internal/domains/user/model/dto"
	userRepo "crm/internal/domains/user/repository"
	"crm/shared"
	"crm/shared/constant"
	gDto "crm/shared/dto"
	"crm/shared/failure"
	"crm/shared/password"
	"crm/shared/timezone"
)

// Both unknown emails and wrong passwords get this message.
const msgBadCredentials = "invalid email or password"

type Auth interface {
	Register(ctx context.Context, req dto.RegisterRequest) error
	Login(ctx context.Context, req dto.LoginRequest) (dto.TokenResponse, error)
	RefreshToken(ctx context.Context, req dto.RefreshTokenRequest) (dto.TokenResponse, error)
	ChangePassword(ctx context.Context, req dto.ChangePasswordRequest, userID string) error
	Profile(ctx context.Context, userID string) (userDto.UserResponse, error)
}

type serviceImpl struct {
	users userRepo.User
	cfg   *config.Config
	otel  otel.Otel
	jwt   jwt.JWT
}

func New(users userRepo.User, cfg *config.Config, otel otel.Otel, jwt jwt.JWT) Auth {
	return &serviceImpl{
		users: users,
		cfg:   cfg,
		otel:  otel,
		jwt:   jwt,
	}
}

func byEmail(email string) gDto.FilterGroup {
	group := gDto.NewFilterGroup()
	group.Add(gDto.Filter{
		Field:    userModel.FieldEmail,
		Operator: gDto.FilterOperatorEq,
		Value:    dto.NormalizeEmail(email),
		Table:    userModel.TableName,
	})

	return group
}

func byID(id string) gDto.FilterGroup {
	return shared.FilterByID(id, userModel.FieldID, userModel.TableName)
}

// find loads a user and turns a miss into a 404.
func (s *serviceImpl) find(ctx context.Context, filter gDto.FilterGroup) (userModel.User, error) {
	user, err := s.users.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get user")

		return user, fmt.Errorf("failed to get user: %w", err)
	}

	if user.ID == "" {
		return user, failure.NotFound("user")
	}

	return user, nil
}

func (s *serviceImpl) Register(ctx context.Context, req dto.RegisterRequest) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Register")
	defer scope.End()
	defer scope.TraceIfError(&err)

	taken, err := s.users.Exist(ctx, byEmail(req.Email))
	if err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	}

	if taken {
		return failure.Conflict("email already registered")
	}

	hashed, err := password.Hash(req.Password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err = s.users.Insert(ctx, req.ToUserModel(constant.ContextGuest, hashed, timezone.Now())); err != nil {
		log.Error().Err(err).Msg("failed to register user")

		return fmt.Errorf("failed to register user: %w", err)
	}

	return nil
}

func (s *serviceImpl) Login(ctx context.Context, req dto.LoginRequest) (res dto.TokenResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Login")
	defer scope.End()
	defer scope.TraceIfError(&err)

	filter := byEmail(req.Email)

	user, err := s.find(ctx, filter)

	var f *failure.Failure
	if errors.As(err, &f) {
		log.Warn().Str("email", req.Email).Msg("login with unknown email")

		return res, failure.Unauthorized(msgBadCredentials)
	}

	if err != nil {
		return res, err
	}

	if password.Verify(req.Password, user.Password) != nil {
		log.Warn().Str("user_id", user.ID).Msg("login with wrong password")

		return res, failure.Unauthorized(msgBadCredentials)
	}

	if !user.Active {
		return res, failure.Forbidden("user account is deactivated")
	}

	pair, err := s.jwt.GenerateTokenPair(jwt.Subject{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.FullName,
		Role:   user.Role,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to generate tokens")

		return res, fmt.Errorf("failed to generate tokens: %w", err)
	}

	fields := shared.TransformFields(dto.LastLogin(timezone.Now()), user.ID)

	if password.NeedsRehash(user.Password) {
		if rehashed, hashErr := password.Hash(req.Password); hashErr == nil {
			fields[userModel.FieldPassword] = rehashed
		}
	}

	// a stale last_login is not worth failing the login over
	if err := s.users.Update(ctx, fields, filter); err != nil {
		log.Warn().Err(err).Str("user_id", user.ID).Msg("failed to record login")
	}

	return dto.NewTokenResponse(pair), nil
}

func (s *serviceImpl) RefreshToken(ctx context.Context, req dto.RefreshTokenRequest) (res dto.TokenResponse, err error) {
	_, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".RefreshToken")
	defer scope.End()
	defer scope.TraceIfError(&err)

	pair, err := s.jwt.RefreshTokens(req.RefreshToken)
	if err != nil {
		log.Warn().Err(err).Msg("refresh rejected")

		return res, failure.Unauthorized("invalid refresh token")
	}

	return dto.NewTokenResponse(pair), nil
}

func (s *serviceImpl) ChangePassword(ctx context.Context, req dto.ChangePasswordRequest, userID string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ChangePassword")
	defer scope.End()
	defer scope.TraceIfError(&err)

	filter := byID(userID)

	user, err := s.find(ctx, filter)
	if err != nil {
		return err
	}

	if password.Verify(req.CurrentPassword, user.Password) != nil {
		return failure.BadRequestFromString("current password is incorrect")
	}

	hashed, err := password.Hash(req.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err = s.users.Update(ctx, shared.TransformFields(dto.Password(hashed), userID), filter); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("failed to update password")

		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}

func (s *serviceImpl) Profile(ctx context.Context, userID string) (res userDto.UserResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Profile")
	defer scope.End()
	defer scope.TraceIfError(&err)

	user, err := s.find(ctx, byID(userID))
	if err != nil {
		return res, err
	}

	res.FromModel(user)

	return res, nil
}
