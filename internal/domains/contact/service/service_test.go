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
	"crm/internal/domains/contact/mocks"
	"crm/internal/domains/contact/model"
	"crm/internal/domains/contact/model/dto"
	"crm/internal/domains/contact/service"
	orgMocks "crm/internal/domains/organization/mocks"
	cacheMocks "crm/shared/cache/mocks"
	gDto "crm/shared/dto"
	"crm/shared/failure"
)

type fixture struct {
	repo    *mocks.MockContact
	orgRepo *orgMocks.MockOrganization
	cache   *cacheMocks.MockRedisCache
	cleared chan string
	svc     service.Contact
}

func newFixture(t *testing.T) fixture {
	ctrl := gomock.NewController(t)

	f := fixture{
		repo:    mocks.NewMockContact(ctrl),
		orgRepo: orgMocks.NewMockOrganization(ctrl),
		cache:   cacheMocks.NewMockRedisCache(ctrl),
		cleared: make(chan string, 16),
	}
	f.svc = service.New(f.repo, f.orgRepo, &config.Config{}, f.cache, otelMocks.NewOtel())

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

func strPtr(s string) *string {
	return &s
}

func TestContactService_Create(t *testing.T) {
	t.Run("unknown organization", func(t *testing.T) {
		f := newFixture(t)

		f.orgRepo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)

		_, err := f.svc.Create(context.Background(), dto.CreateContactRequest{FirstName: "Rina", OrganizationID: strPtr("org-1")})
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})

	t.Run("without organization", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, c model.Contact) error {
			assert.Equal(t, "Rina", c.FirstName)
			assert.Nil(t, c.OrganizationID)

			return nil
		})

		id, err := f.svc.Create(context.Background(), dto.CreateContactRequest{FirstName: "Rina"})
		require.NoError(t, err)
		assert.NotEmpty(t, id)
	})
}

func TestContactService_Get(t *testing.T) {
	t.Run("cache hit skips repository", func(t *testing.T) {
		f := newFixture(t)

		f.cache.EXPECT().Get(gomock.Any(), "contact:get:c-1", gomock.Any()).DoAndReturn(func(_ context.Context, _ string, value any) error {
			value.(*dto.ContactResponse).FirstName = "Cached"

			return nil
		})

		res, err := f.svc.Get(context.Background(), "c-1")
		require.NoError(t, err)
		assert.Equal(t, "Cached", res.FirstName)
	})

	t.Run("loads with full name", func(t *testing.T) {
		f := newFixture(t)

		f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("miss"))
		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Contact{
			ID:               "c-1",
			FirstName:        "Rina",
			LastName:         strPtr("Wijaya"),
			OrganizationName: strPtr("Acme"),
		}, nil)

		res, err := f.svc.Get(context.Background(), "c-1")
		require.NoError(t, err)
		assert.Equal(t, "Rina Wijaya", res.FullName)
		assert.Equal(t, "Acme", *res.OrganizationName)
	})

	t.Run("not found", func(t *testing.T) {
		f := newFixture(t)

		f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("miss"))
		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Contact{}, nil)

		_, err := f.svc.Get(context.Background(), "c-1")
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})
}

func TestContactService_GetAll(t *testing.T) {
	f := newFixture(t)

	params := gDto.QueryParams{Page: 1, Limit: 10}
	filter := gDto.NewFilterGroup()
	filter.AddGroup(dto.SearchFilter("rina"))

	f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("miss"))
	f.repo.EXPECT().Count(gomock.Any(), filter).Return(1, nil)
	f.repo.EXPECT().GetAll(gomock.Any(), params, filter).Return([]model.Contact{{ID: "c-1", FirstName: "Rina"}}, nil)

	res, err := f.svc.GetAll(context.Background(), params, filter)
	require.NoError(t, err)
	assert.Equal(t, 1, res.TotalData)
	assert.Equal(t, "Rina", res.Contacts[0].FullName)
}

func TestContactService_Update(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		f := newFixture(t)

		err := f.svc.Update(context.Background(), dto.UpdateContactRequest{}, "c-1")
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})

	t.Run("moves to another organization", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
		f.orgRepo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
		f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

		err := f.svc.Update(context.Background(), dto.UpdateContactRequest{OrganizationID: strPtr("org-2")}, "c-1")
		assert.NoError(t, err)

		// lead reads embed the contact name
		f.waitCleared(t, "lead:*")
	})
}

func TestContactService_Delete(t *testing.T) {
	f := newFixture(t)

	f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
	f.repo.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(&pq.Error{Code: "23503"})

	err := f.svc.Delete(context.Background(), "c-1")
	assert.Equal(t, http.StatusConflict, failure.GetCode(err))
}

func TestSearchFilter(t *testing.T) {
	group := dto.SearchFilter("rin")
	where, args := group.GetWhereClause()

	assert.Contains(t, where, "LOWER(contacts.first_name) LIKE LOWER(:search_first_name)")
	assert.Contains(t, where, " OR ")
	assert.Equal(t, "%rin%", args["search_email"])
}
