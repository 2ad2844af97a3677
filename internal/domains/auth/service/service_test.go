package service_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"crm/config"
	"crm/infras/jwt"
	jwtMocks "crm/infras/jwt/mocks"
	"crm/infras/otel/mocks"
	"crm/internal/domains/auth/model/dto"
	"crm/internal/domains/auth/service"
	userMocks "crm/internal/domains/user/mocks"
	userModel "crm/internal/domains/user/model"
	"crm/shared/constant"
	"crm/shared/failure"
	gModel "crm/shared/model"
	"crm/shared/password"
	"crm/shared/timezone"
)

func newUser(t *testing.T, plain string) userModel.User {
	t.Helper()

	hashed, err := password.Hash(plain)
	require.NoError(t, err)

	return userModel.User{
		ID:       "user-id-123",
		Email:    "test@example.com",
		Password: hashed,
		Role:     constant.RoleUser,
		FullName: "Test User",
		Active:   true,
		Metadata: gModel.NewMetadata("system", timezone.Now()),
	}
}

func TestAuthService_Register(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUserRepo := userMocks.NewMockUser(ctrl)
	svc := service.New(mockUserRepo, &config.Config{}, mocks.NewOtel(), jwtMocks.NewMockJWT(ctrl))

	req := dto.RegisterRequest{Email: "new@example.com", Password: "password123", FullName: "New User"}

	t.Run("email taken", func(t *testing.T) {
		mockUserRepo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)

		err := svc.Register(context.Background(), req)
		assert.Equal(t, http.StatusConflict, failure.GetCode(err))
	})

	t.Run("stores hashed password", func(t *testing.T) {
		mockUserRepo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
		mockUserRepo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, user userModel.User) error {
			assert.Equal(t, req.Email, user.Email)
			assert.NotEqual(t, req.Password, user.Password)
			assert.NoError(t, password.Verify(req.Password, user.Password))
			assert.Equal(t, constant.RoleUser, user.Role)

			return nil
		})

		assert.NoError(t, svc.Register(context.Background(), req))
	})
}

func TestAuthService_Login(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUserRepo := userMocks.NewMockUser(ctrl)
	mockJWT := jwtMocks.NewMockJWT(ctrl)
	mockOtel := mocks.NewOtel()

	svc := service.New(mockUserRepo, &config.Config{}, mockOtel, mockJWT)

	validUser := newUser(t, "password")
	subject := jwt.Subject{UserID: validUser.ID, Email: validUser.Email, Name: validUser.FullName, Role: validUser.Role}
	tokenPair := &jwt.TokenPair{AccessToken: "access-token", RefreshToken: "refresh-token"}

	tests := []struct {
		name      string
		req       dto.LoginRequest
		setupMock func()
		wantCode  int
	}{
		{
			name: "successful login",
			req:  dto.LoginRequest{Email: "test@example.com", Password: "password"},
			setupMock: func() {
				mockUserRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(validUser, nil)
				mockJWT.EXPECT().GenerateTokenPair(subject).Return(tokenPair, nil)
				mockUserRepo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
			},
		},
		{
			name: "user not found",
			req:  dto.LoginRequest{Email: "nonexistent@example.com", Password: "password"},
			setupMock: func() {
				mockUserRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(userModel.User{}, nil)
			},
			wantCode: http.StatusUnauthorized,
		},
		{
			name: "repository error",
			req:  dto.LoginRequest{Email: "test@example.com", Password: "password"},
			setupMock: func() {
				mockUserRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(userModel.User{}, errors.New("db down"))
			},
			wantCode: http.StatusInternalServerError,
		},
		{
			name: "wrong password",
			req:  dto.LoginRequest{Email: "test@example.com", Password: "wrongpassword"},
			setupMock: func() {
				mockUserRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(validUser, nil)
			},
			wantCode: http.StatusUnauthorized,
		},
		{
			name: "inactive user",
			req:  dto.LoginRequest{Email: "test@example.com", Password: "password"},
			setupMock: func() {
				inactiveUser := validUser
				inactiveUser.Active = false

				mockUserRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(inactiveUser, nil)
			},
			wantCode: http.StatusForbidden,
		},
		{
			name: "token generation error",
			req:  dto.LoginRequest{Email: "test@example.com", Password: "password"},
			setupMock: func() {
				mockUserRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(validUser, nil)
				mockJWT.EXPECT().GenerateTokenPair(subject).Return(nil, errors.New("token generation failed"))
			},
			wantCode: http.StatusInternalServerError,
		},
		{
			name: "last login update failure does not block login",
			req:  dto.LoginRequest{Email: "test@example.com", Password: "password"},
			setupMock: func() {
				mockUserRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(validUser, nil)
				mockJWT.EXPECT().GenerateTokenPair(subject).Return(tokenPair, nil)
				mockUserRepo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("update error"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			result, err := svc.Login(context.Background(), tt.req)

			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, "access-token", result.AccessToken)
			assert.Equal(t, "refresh-token", result.RefreshToken)
		})
	}
}

func TestAuthService_RefreshToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockJWT := jwtMocks.NewMockJWT(ctrl)
	svc := service.New(userMocks.NewMockUser(ctrl), &config.Config{}, mocks.NewOtel(), mockJWT)

	t.Run("successful token refresh", func(t *testing.T) {
		mockJWT.EXPECT().RefreshTokens("valid-refresh-token").Return(&jwt.TokenPair{
			AccessToken:  "new-access-token",
			RefreshToken: "new-refresh-token",
		}, nil)

		result, err := svc.RefreshToken(context.Background(), dto.RefreshTokenRequest{RefreshToken: "valid-refresh-token"})
		require.NoError(t, err)
		assert.Equal(t, "new-access-token", result.AccessToken)
	})

	t.Run("invalid refresh token", func(t *testing.T) {
		mockJWT.EXPECT().RefreshTokens("invalid-refresh-token").Return(nil, jwt.ErrInvalidToken)

		_, err := svc.RefreshToken(context.Background(), dto.RefreshTokenRequest{RefreshToken: "invalid-refresh-token"})
		assert.Equal(t, http.StatusUnauthorized, failure.GetCode(err))
	})
}

func TestAuthService_ChangePassword(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUserRepo := userMocks.NewMockUser(ctrl)
	svc := service.New(mockUserRepo, &config.Config{}, mocks.NewOtel(), jwtMocks.NewMockJWT(ctrl))

	validUser := newUser(t, "oldpassword")

	tests := []struct {
		name      string
		req       dto.ChangePasswordRequest
		setupMock func()
		wantCode  int
	}{
		{
			name: "successful change",
			req:  dto.ChangePasswordRequest{CurrentPassword: "oldpassword", NewPassword: "newpassword123"},
			setupMock: func() {
				mockUserRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(validUser, nil)
				mockUserRepo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, fields map[string]any, _ any) error {
						hashed, ok := fields[userModel.FieldPassword].(string)
						assert.True(t, ok)
						assert.NoError(t, password.Verify("newpassword123", hashed))
						assert.Equal(t, validUser.ID, fields[constant.FieldModifiedBy])

						return nil
					})
			},
		},
		{
			name: "user not found",
			req:  dto.ChangePasswordRequest{CurrentPassword: "oldpassword", NewPassword: "newpassword123"},
			setupMock: func() {
				mockUserRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(userModel.User{}, nil)
			},
			wantCode: http.StatusNotFound,
		},
		{
			name: "wrong current password",
			req:  dto.ChangePasswordRequest{CurrentPassword: "nope", NewPassword: "newpassword123"},
			setupMock: func() {
				mockUserRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(validUser, nil)
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "update error",
			req:  dto.ChangePasswordRequest{CurrentPassword: "oldpassword", NewPassword: "newpassword123"},
			setupMock: func() {
				mockUserRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(validUser, nil)
				mockUserRepo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("update error"))
			},
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			err := svc.ChangePassword(context.Background(), tt.req, validUser.ID)

			if tt.wantCode != 0 {
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestAuthService_Profile(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUserRepo := userMocks.NewMockUser(ctrl)
	svc := service.New(mockUserRepo, &config.Config{}, mocks.NewOtel(), jwtMocks.NewMockJWT(ctrl))

	user := newUser(t, "password")
	mockUserRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(user, nil)

	res, err := svc.Profile(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, res.Email)
	assert.Equal(t, user.FullName, res.FullName)
}
