package service_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"crm/config"
	otelMocks "crm/infras/otel/mocks"
	postgresMocks "crm/infras/postgres/mocks"
	s3Mocks "crm/infras/s3/mocks"
	activityMocks "crm/internal/domains/activity/mocks"
	activityModel "crm/internal/domains/activity/model"
	contactMocks "crm/internal/domains/contact/mocks"
	contactModel "crm/internal/domains/contact/model"
	eventDetailMocks "crm/internal/domains/eventdetail/mocks"
	eventDetailModel "crm/internal/domains/eventdetail/model"
	leadMocks "crm/internal/domains/lead/mocks"
	leadModel "crm/internal/domains/lead/model"
	orgMocks "crm/internal/domains/organization/mocks"
	orgModel "crm/internal/domains/organization/model"
	"crm/internal/domains/proposal/mocks"
	"crm/internal/domains/proposal/model"
	"crm/internal/domains/proposal/pdf"
	"crm/internal/domains/proposal/service"
	cacheMocks "crm/shared/cache/mocks"
	"crm/shared/constant"
	"crm/shared/failure"
)

const (
	leadID  = "lead-1"
	fileURL = "https://cdn.example.com/proposals/lead-1/BQT.pdf"
)

type fixture struct {
	repo         *mocks.MockProposal
	renderer     *mocks.MockRenderer
	leads        *leadMocks.MockLead
	contacts     *contactMocks.MockContact
	orgs         *orgMocks.MockOrganization
	eventDetails *eventDetailMocks.MockEventDetail
	activities   *activityMocks.MockActivity
	storage      *s3Mocks.MockS3
	cache        *cacheMocks.MockRedisCache
	svc          service.Proposal
}

func newFixture(t *testing.T, commitErr error) fixture {
	ctrl := gomock.NewController(t)

	cfg := &config.Config{}
	cfg.External.S3.BucketName = "crm"
	cfg.Proposal.NumberPrefix = "BQT"
	cfg.Proposal.ServiceCharge = 10
	cfg.Proposal.TaxPercent = 11
	cfg.Proposal.ValidityDays = 14
	cfg.Proposal.StorageDir = "proposals"
	cfg.Cache.TTL = 60

	f := fixture{
		repo:         mocks.NewMockProposal(ctrl),
		renderer:     mocks.NewMockRenderer(ctrl),
		leads:        leadMocks.NewMockLead(ctrl),
		contacts:     contactMocks.NewMockContact(ctrl),
		orgs:         orgMocks.NewMockOrganization(ctrl),
		eventDetails: eventDetailMocks.NewMockEventDetail(ctrl),
		activities:   activityMocks.NewMockActivity(ctrl),
		storage:      s3Mocks.NewMockS3(ctrl),
		cache:        cacheMocks.NewMockRedisCache(ctrl),
	}

	deps := service.Dependencies{
		Leads:         f.leads,
		Contacts:      f.contacts,
		Organizations: f.orgs,
		EventDetails:  f.eventDetails,
		Activities:    f.activities,
	}
	f.svc = service.New(f.repo, deps, postgresMocks.NewTransactor(commitErr), f.storage, f.renderer, cfg, f.cache, otelMocks.NewOtel())

	f.cache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.cache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	return f
}

func strPtr(s string) *string {
	return &s
}

func actorCtx() context.Context {
	return context.WithValue(context.Background(), constant.ContextKeyUserID, "user-1")
}

func day(d int) time.Time {
	return time.Date(2026, 11, d, 0, 0, 0, 0, time.UTC)
}

func lead(status leadModel.Status) leadModel.Lead {
	return leadModel.Lead{
		ID:             leadID,
		EventName:      "Annual Sales Kickoff",
		EventType:      leadModel.EventTypeConference,
		Status:         status,
		ContactID:      "contact-1",
		OrganizationID: strPtr("org-1"),
		ArrivalDate:    day(20),
		DepartureDate:  day(21),
		Attendees:      30,
		Currency:       "USD",
	}
}

func details() []eventDetailModel.EventDetail {
	return []eventDetailModel.EventDetail{
		{ID: "d2", LeadID: leadID, EventDate: day(21), StartTime: "09:00", EndTime: "12:00", FunctionRoom: "Harbour Hall", Attendees: 20, Rate: 20},
		{ID: "d1", LeadID: leadID, EventDate: day(20), StartTime: "09:00", EndTime: "17:00", FunctionRoom: "Harbour Hall", Attendees: 30, Rate: 20},
	}
}

// expectSources sets up the reads every render starts with.
func (f fixture) expectSources(l leadModel.Lead, lines []eventDetailModel.EventDetail, latest []model.Proposal) {
	f.leads.EXPECT().Get(gomock.Any(), gomock.Any()).Return(l, nil)
	f.eventDetails.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return(lines, nil)
	f.repo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return(latest, nil)
}

func (f fixture) expectClient() {
	f.contacts.EXPECT().Get(gomock.Any(), gomock.Any()).Return(contactModel.Contact{
		ID:        "contact-1",
		FirstName: "Maya",
		LastName:  strPtr("Lin"),
		Email:     strPtr("maya@example.com"),
	}, nil)
	f.orgs.EXPECT().Get(gomock.Any(), gomock.Any()).Return(orgModel.Organization{
		ID:      "org-1",
		Name:    "Acme Corp",
		City:    strPtr("Singapore"),
		Country: strPtr("SG"),
	}, nil)
}

func TestGenerate(t *testing.T) {
	f := newFixture(t, nil)

	f.expectSources(lead(leadModel.StatusTentative), details(), []model.Proposal{{ID: "p2", Version: 2}})
	f.expectClient()

	var doc pdf.Document
	f.renderer.EXPECT().Render(gomock.Any()).DoAndReturn(func(d pdf.Document) ([]byte, error) {
		doc = d

		return []byte("%PDF"), nil
	})

	var fileName string
	f.storage.EXPECT().UploadFileBytes(gomock.Any(), "crm", "proposals/lead-1", gomock.Any(), model.ContentType, []byte("%PDF")).
		DoAndReturn(func(_ context.Context, _, _, name, _ string, _ []byte) (string, error) {
			fileName = name

			return fileURL, nil
		})

	var stored model.Proposal
	f.repo.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ *sqlx.Tx, p model.Proposal) error {
			stored = p

			return nil
		})

	var activity activityModel.Activity
	f.activities.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ *sqlx.Tx, a activityModel.Activity) error {
			activity = a

			return nil
		})

	res, err := f.svc.Generate(actorCtx(), leadID)
	require.NoError(t, err)

	assert.Equal(t, 3, res.Version)
	assert.True(t, strings.HasPrefix(res.Number, "BQT-"))
	assert.True(t, strings.HasSuffix(res.Number, "-03"))
	assert.Equal(t, model.ObjectName(res.Number, stored.ID), fileName)
	assert.Equal(t, fileURL, res.FileURL)
	assert.InDelta(t, 1000, res.Subtotal, 0.001)
	assert.InDelta(t, 100, res.ServiceCharge, 0.001)
	assert.InDelta(t, 121, res.Tax, 0.001)
	assert.InDelta(t, 1221, res.Total, 0.001)

	assert.False(t, doc.Draft)
	assert.Equal(t, "Maya Lin", doc.Client.Name)
	assert.Equal(t, "Acme Corp", doc.Client.Organization)
	assert.Equal(t, "Singapore, SG", doc.Client.Address)
	assert.Equal(t, 1, doc.Event.Nights)
	require.Len(t, doc.Quote.Days, 2)
	assert.Equal(t, day(20), doc.Quote.Days[0].Date)

	assert.Equal(t, leadID, stored.LeadID)
	assert.Equal(t, "user-1", stored.CreatedBy)
	assert.Equal(t, activityModel.TypeProposal, activity.Type)
	assert.True(t, activity.Completed)
	assert.Contains(t, activity.Subject, res.Number)
}

func TestGenerateRejectsLead(t *testing.T) {
	tests := []struct {
		name  string
		lead  leadModel.Lead
		lines []eventDetailModel.EventDetail
		code  int
	}{
		{name: "missing lead", lead: leadModel.Lead{}, lines: details(), code: http.StatusNotFound},
		{name: "lost lead", lead: lead(leadModel.StatusLost), lines: details(), code: http.StatusBadRequest},
		{name: "no event details", lead: lead(leadModel.StatusConfirmed), lines: nil, code: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil)
			f.expectSources(tt.lead, tt.lines, nil)

			_, err := f.svc.Generate(actorCtx(), leadID)
			require.Error(t, err)
			assert.Equal(t, tt.code, failure.GetCode(err))
		})
	}
}

func TestGenerateUploadFailure(t *testing.T) {
	f := newFixture(t, nil)

	f.expectSources(lead(leadModel.StatusTentative), details(), nil)
	f.expectClient()
	f.renderer.EXPECT().Render(gomock.Any()).Return([]byte("%PDF"), nil)
	f.storage.EXPECT().UploadFileBytes(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return("", errors.New("s3 down"))

	_, err := f.svc.Generate(actorCtx(), leadID)
	require.Error(t, err)
	assert.ErrorContains(t, err, "s3 down")
}

func TestGenerateVersionConflict(t *testing.T) {
	f := newFixture(t, nil)

	f.expectSources(lead(leadModel.StatusTentative), details(), nil)
	f.expectClient()
	f.renderer.EXPECT().Render(gomock.Any()).Return([]byte("%PDF"), nil)

	var uploaded string
	f.storage.EXPECT().UploadFileBytes(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _, dir, name, _ string, _ []byte) (string, error) {
			uploaded = dir + "/" + name

			return "https://cdn.example.com/crm/" + uploaded, nil
		})

	var attempted model.Proposal
	f.repo.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ *sqlx.Tx, p model.Proposal) error {
			attempted = p

			return &pq.Error{Code: constant.PqErrorCodeUniqueViolation}
		})

	deleted := make(chan string, 1)
	f.storage.EXPECT().GetObjectNameFromURL("crm", gomock.Any()).DoAndReturn(func(_, url string) string {
		return strings.TrimPrefix(url, "https://cdn.example.com/crm/")
	})
	f.storage.EXPECT().DeleteFile(gomock.Any(), "crm", "", gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _, name string) error {
			deleted <- name

			return nil
		})

	_, err := f.svc.Generate(actorCtx(), leadID)
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, failure.GetCode(err))

	select {
	case name := <-deleted:
		assert.Equal(t, uploaded, name)
		assert.Contains(t, name, attempted.ID)
	case <-time.After(time.Second):
		t.Fatal("uploaded file was not removed")
	}
}

func TestGenerateSameVersionUsesDistinctKeys(t *testing.T) {
	f := newFixture(t, nil)

	var names []string

	for range 2 {
		f.expectSources(lead(leadModel.StatusTentative), details(), []model.Proposal{{ID: "p1", Version: 1}})
		f.expectClient()
		f.renderer.EXPECT().Render(gomock.Any()).Return([]byte("%PDF"), nil)
		f.storage.EXPECT().UploadFileBytes(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _, _, name, _ string, _ []byte) (string, error) {
				names = append(names, name)

				return fileURL, nil
			})
		f.repo.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		f.activities.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

		res, err := f.svc.Generate(actorCtx(), leadID)
		require.NoError(t, err)
		assert.Equal(t, 2, res.Version)
	}

	require.Len(t, names, 2)
	assert.NotEqual(t, names[0], names[1])
}

func TestPreview(t *testing.T) {
	f := newFixture(t, nil)

	f.expectSources(lead(leadModel.StatusConfirmed), details(), []model.Proposal{{ID: "p1", Version: 1}})
	f.expectClient()
	f.renderer.EXPECT().Render(gomock.Any()).DoAndReturn(func(d pdf.Document) ([]byte, error) {
		assert.True(t, d.Draft)

		return []byte("%PDF-draft"), nil
	})

	file, err := f.svc.Preview(actorCtx(), leadID)
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(file.Name, "-02.pdf"))
	assert.Equal(t, []byte("%PDF-draft"), file.Content)
}

func TestGetAll(t *testing.T) {
	t.Run("unknown lead", func(t *testing.T) {
		f := newFixture(t, nil)
		f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("miss"))
		f.leads.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)

		_, err := f.svc.GetAll(actorCtx(), leadID)
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})

	t.Run("lists newest first", func(t *testing.T) {
		f := newFixture(t, nil)
		f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("miss"))
		f.leads.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
		f.repo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return([]model.Proposal{
			{ID: "p2", LeadID: leadID, Version: 2, ValidUntil: day(30)},
			{ID: "p1", LeadID: leadID, Version: 1, ValidUntil: day(25)},
		}, nil)

		res, err := f.svc.GetAll(actorCtx(), leadID)
		require.NoError(t, err)
		require.Len(t, res.Proposals, 2)
		assert.Equal(t, "p2", res.Proposals[0].ID)
		assert.Equal(t, "2026-11-30", res.Proposals[0].ValidUntil)
	})
}

func TestGet(t *testing.T) {
	f := newFixture(t, nil)
	f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Proposal{}, nil)

	_, err := f.svc.Get(actorCtx(), leadID, "missing")
	assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
}

func TestDelete(t *testing.T) {
	f := newFixture(t, nil)

	f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Proposal{ID: "p1", LeadID: leadID, FileURL: fileURL}, nil)
	f.repo.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil)

	deleted := make(chan struct{})
	f.storage.EXPECT().GetObjectNameFromURL("crm", fileURL).Return("proposals/lead-1/BQT.pdf")
	f.storage.EXPECT().DeleteFile(gomock.Any(), "crm", "", "proposals/lead-1/BQT.pdf").
		DoAndReturn(func(context.Context, string, string, string) error {
			close(deleted)

			return nil
		})

	require.NoError(t, f.svc.Delete(actorCtx(), leadID, "p1"))

	select {
	case <-deleted:
	case <-time.After(time.Second):
		t.Fatal("proposal file was not removed")
	}
}
