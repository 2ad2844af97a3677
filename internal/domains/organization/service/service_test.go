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
	s3Mocks "crm/infras/s3/mocks"
	"crm/internal/domains/organization/mocks"
	"crm/internal/domains/organization/model"
	"crm/internal/domains/organization/model/dto"
	"crm/internal/domains/organization/service"
	cacheMocks "crm/shared/cache/mocks"
	gDto "crm/shared/dto"
	"crm/shared/failure"
)

const pngLogo = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNk+M9QDwADhgGAWjR9awAAAABJRU5ErkJggg=="

type fixture struct {
	repo    *mocks.MockOrganization
	storage *s3Mocks.MockS3
	cache   *cacheMocks.MockRedisCache
	cleared chan string
	svc     service.Organization
}

func newFixture(t *testing.T) fixture {
	ctrl := gomock.NewController(t)

	cfg := &config.Config{}
	cfg.External.S3.BucketName = "crm"

	f := fixture{
		repo:    mocks.NewMockOrganization(ctrl),
		storage: s3Mocks.NewMockS3(ctrl),
		cache:   cacheMocks.NewMockRedisCache(ctrl),
		cleared: make(chan string, 16),
	}
	f.svc = service.New(f.repo, f.storage, cfg, f.cache, otelMocks.NewOtel())

	// cache writes happen in background goroutines
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

func TestOrganizationService_Create(t *testing.T) {
	t.Run("uploads logo before insert", func(t *testing.T) {
		f := newFixture(t)

		f.storage.EXPECT().
			UploadFileBytes(gomock.Any(), "crm", model.LogoDirectory, gomock.Any(), "image/png", gomock.Any()).
			Return("https://cdn.test/organizations/x.png", nil)
		f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, org model.Organization) error {
			require.NotNil(t, org.LogoURL)
			assert.Equal(t, "https://cdn.test/organizations/x.png", *org.LogoURL)
			assert.Equal(t, "Acme Events", org.Name)

			return nil
		})

		logo := pngLogo
		id, err := f.svc.Create(context.Background(), dto.CreateOrganizationRequest{Name: "Acme Events", Logo: &logo})
		require.NoError(t, err)
		assert.NotEmpty(t, id)
	})

	t.Run("rejects undecodable logo", func(t *testing.T) {
		f := newFixture(t)

		logo := "data:image/png;base64,###"
		_, err := f.svc.Create(context.Background(), dto.CreateOrganizationRequest{Name: "Acme", Logo: &logo})
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})

	t.Run("insert error", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(errors.New("db down"))

		_, err := f.svc.Create(context.Background(), dto.CreateOrganizationRequest{Name: "Acme"})
		assert.Error(t, err)
	})
}

func TestOrganizationService_Get(t *testing.T) {
	f := newFixture(t)

	f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("miss")).Times(2)
	f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Organization{ID: "org-1", Name: "Acme"}, nil)
	f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Organization{}, nil)

	res, err := f.svc.Get(context.Background(), "org-1")
	require.NoError(t, err)
	assert.Equal(t, "Acme", res.Name)

	_, err = f.svc.Get(context.Background(), "missing")
	assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
}

func TestOrganizationService_GetCacheHit(t *testing.T) {
	f := newFixture(t)

	f.cache.EXPECT().Get(gomock.Any(), "organization:get:org-1", gomock.Any()).DoAndReturn(func(_ context.Context, _ string, v any) error {
		*(v.(*dto.OrganizationResponse)) = dto.OrganizationResponse{ID: "org-1", Name: "Cached"}

		return nil
	})

	res, err := f.svc.Get(context.Background(), "org-1")
	require.NoError(t, err)
	assert.Equal(t, "Cached", res.Name)
}

func TestOrganizationService_GetAll(t *testing.T) {
	f := newFixture(t)

	params := gDto.QueryParams{Page: 1, Limit: 2}

	f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("miss")).Times(2)
	f.repo.EXPECT().Count(gomock.Any(), gomock.Any()).Return(3, nil)
	f.repo.EXPECT().GetAll(gomock.Any(), params, gomock.Any()).Return([]model.Organization{{ID: "a"}, {ID: "b"}}, nil)

	res, err := f.svc.GetAll(context.Background(), params, gDto.NewFilterGroup())
	require.NoError(t, err)
	assert.Equal(t, 3, res.TotalData)
	assert.Equal(t, 2, res.TotalPage)
	assert.Len(t, res.Organizations, 2)
}

func TestOrganizationService_Update(t *testing.T) {
	t.Run("empty request", func(t *testing.T) {
		f := newFixture(t)

		err := f.svc.Update(context.Background(), dto.UpdateOrganizationRequest{}, "org-1")
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})

	t.Run("not found", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Organization{}, nil)

		err := f.svc.Update(context.Background(), dto.UpdateOrganizationRequest{Name: "New"}, "org-1")
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})

	t.Run("updates name only", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Organization{ID: "org-1", Name: "Old"}, nil)
		f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
				assert.Equal(t, "New", fields[model.FieldName])
				assert.NotContains(t, fields, model.FieldLogoURL)

				return nil
			})

		assert.NoError(t, f.svc.Update(context.Background(), dto.UpdateOrganizationRequest{Name: "New"}, "org-1"))
		f.waitCleared(t, "lead:*")
	})
}

func TestOrganizationService_Delete(t *testing.T) {
	t.Run("referenced by leads", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Organization{ID: "org-1"}, nil)
		f.repo.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(
			errors.Join(errors.New("failed to delete data (organization)"), &pq.Error{Code: "23503"}))

		err := f.svc.Delete(context.Background(), "org-1")
		assert.Equal(t, http.StatusConflict, failure.GetCode(err))
	})

	t.Run("not found", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Organization{}, nil)

		err := f.svc.Delete(context.Background(), "org-1")
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})

	t.Run("deleted", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Organization{ID: "org-1"}, nil)
		f.repo.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil)

		assert.NoError(t, f.svc.Delete(context.Background(), "org-1"))
	})
}
