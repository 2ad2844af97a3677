package service_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"crm/config"
	otelMocks "crm/infras/otel/mocks"
	"crm/internal/domains/user/mocks"
	"crm/internal/domains/user/model"
	"crm/internal/domains/user/model/dto"
	"crm/internal/domains/user/service"
	cacheMocks "crm/shared/cache/mocks"
	"crm/shared/constant"
	gDto "crm/shared/dto"
	"crm/shared/failure"
	"crm/shared/password"
)

type fixture struct {
	repo    *mocks.MockUser
	cache   *cacheMocks.MockRedisCache
	cleared chan string
	svc     service.User
}

func newFixture(t *testing.T) fixture {
	ctrl := gomock.NewController(t)

	f := fixture{
		repo:    mocks.NewMockUser(ctrl),
		cache:   cacheMocks.NewMockRedisCache(ctrl),
		cleared: make(chan string, 16),
	}
	f.svc = service.New(f.repo, &config.Config{}, f.cache, otelMocks.NewOtel())

	f.cache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.cache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.cache.EXPECT().Clear(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, pattern string) error {
		select {
		case f.cleared <- pattern:
		default:
		}

		return nil
	}).AnyTimes()

	return f
}

func (f fixture) waitCleared(t *testing.T, pattern string) {
	t.Helper()

	timeout := time.After(time.Second)

	for {
		select {
		case got := <-f.cleared:
			if got == pattern {
				return
			}
		case <-timeout:
			t.Fatalf("cache %s was not cleared", pattern)
		}
	}
}

func as(userID string) context.Context {
	return context.WithValue(context.Background(), constant.ContextKeyUserID, userID)
}

func admin(id string) model.User {
	return model.User{ID: id, Email: id + "@hotel.test", Role: constant.RoleAdmin, Active: true}
}

func TestUserService_Create(t *testing.T) {
	password.Cost = 4

	t.Run("stores lowercased email and hashed password", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
		f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, user model.User) error {
			assert.Equal(t, "sales@hotel.test", user.Email)
			assert.Equal(t, constant.RoleUser, user.Role)
			assert.True(t, user.Active)
			assert.NoError(t, password.Verify("correct horse", user.Password))

			return nil
		})

		err := f.svc.Create(as("u-admin"), dto.CreateUserRequest{Email: " Sales@Hotel.test ", Password: "correct horse", FullName: "Sales"})
		require.NoError(t, err)
	})

	t.Run("duplicate email", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)

		err := f.svc.Create(as("u-admin"), dto.CreateUserRequest{Email: "sales@hotel.test", Password: "correct horse", FullName: "Sales"})
		assert.Equal(t, http.StatusConflict, failure.GetCode(err))
	})

	t.Run("unique violation on insert", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
		f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(&pq.Error{Code: constant.PqErrorCodeUniqueViolation})

		err := f.svc.Create(as("u-admin"), dto.CreateUserRequest{Email: "sales@hotel.test", Password: "correct horse", FullName: "Sales"})
		assert.Equal(t, http.StatusConflict, failure.GetCode(err))
	})
}

func TestUserService_GetAll(t *testing.T) {
	f := newFixture(t)

	params := gDto.QueryParams{Page: 1, Limit: 1}

	f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("miss"))
	f.repo.EXPECT().Count(gomock.Any(), gomock.Any()).Return(2, nil)
	f.repo.EXPECT().GetAll(gomock.Any(), params, gomock.Any()).Return([]model.User{admin("u-1")}, nil)

	res, err := f.svc.GetAll(context.Background(), params, gDto.NewFilterGroup())
	require.NoError(t, err)
	assert.Equal(t, 2, res.TotalData)
	assert.Equal(t, 2, res.TotalPage)
	require.Len(t, res.Users, 1)
	assert.Equal(t, "u-1", res.Users[0].ID)
}

func TestUserService_Get(t *testing.T) {
	f := newFixture(t)

	f.cache.EXPECT().Get(gomock.Any(), "user:get:missing", gomock.Any()).Return(errors.New("miss"))
	f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.User{}, nil)

	_, err := f.svc.Get(context.Background(), "missing")
	assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
}

func TestUserService_Update(t *testing.T) {
	inactive := false

	t.Run("empty request", func(t *testing.T) {
		f := newFixture(t)

		err := f.svc.Update(as("u-admin"), dto.UpdateUserRequest{}, "u-1")
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})

	t.Run("cannot demote yourself", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(admin("u-admin"), nil)

		err := f.svc.Update(as("u-admin"), dto.UpdateUserRequest{Role: constant.RoleUser}, "u-admin")
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})

	t.Run("last active admin", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(admin("u-2"), nil)
		f.repo.EXPECT().Count(gomock.Any(), gomock.Any()).Return(0, nil)

		err := f.svc.Update(as("u-admin"), dto.UpdateUserRequest{Active: &inactive}, "u-2")
		assert.Equal(t, http.StatusConflict, failure.GetCode(err))
	})

	t.Run("deactivates another admin", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(admin("u-2"), nil)
		f.repo.EXPECT().Count(gomock.Any(), gomock.Any()).Return(1, nil)
		f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
			assert.Equal(t, &inactive, fields[model.FieldActive])
			assert.Equal(t, "u-admin", fields[constant.FieldModifiedBy])

			return nil
		})

		err := f.svc.Update(as("u-admin"), dto.UpdateUserRequest{Active: &inactive}, "u-2")
		require.NoError(t, err)
	})

	t.Run("renaming skips the admin check", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(admin("u-admin"), nil)
		f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

		err := f.svc.Update(as("u-admin"), dto.UpdateUserRequest{FullName: "Front Office"}, "u-admin")
		require.NoError(t, err)

		// lead reads embed the owner name
		f.waitCleared(t, "lead:*")
	})
}

func TestUserService_Delete(t *testing.T) {
	t.Run("cannot delete yourself", func(t *testing.T) {
		f := newFixture(t)

		err := f.svc.Delete(as("u-1"), "u-1")
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})

	t.Run("user still owns leads", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.User{ID: "u-2", Role: constant.RoleUser, Active: true}, nil)
		f.repo.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(&pq.Error{Code: constant.PqErrorCodeFkViolation})

		err := f.svc.Delete(as("u-1"), "u-2")
		assert.Equal(t, http.StatusConflict, failure.GetCode(err))
	})

	t.Run("not found", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.User{}, nil)

		err := f.svc.Delete(as("u-1"), "u-9")
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})

	t.Run("deletes", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.User{ID: "u-2", Role: constant.RoleUser}, nil)
		f.repo.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil)

		require.NoError(t, f.svc.Delete(as("u-1"), "u-2"))
	})
}
