package dto_test

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crm/config"
	"crm/internal/domains/lead/model"
	"crm/internal/domains/lead/model/dto"
	"crm/shared/constant"
	"crm/shared/failure"
	"crm/shared/timezone"
)

func date(t *testing.T, value string) time.Time {
	t.Helper()

	d, err := timezone.ParseDate(value)
	require.NoError(t, err)

	return d
}

func TestCurrency_Validate(t *testing.T) {
	cfg := &config.Config{}
	cfg.Proposal.Currencies = []string{"USD", "IDR"}

	assert.NoError(t, dto.Currency("IDR").Validate(cfg))
	assert.Error(t, dto.Currency("JPY").Validate(cfg))
}

func TestCreateLeadRequest_Dates(t *testing.T) {
	t.Run("day event", func(t *testing.T) {
		req := dto.CreateLeadRequest{ArrivalDate: "2026-05-01", DepartureDate: "2026-05-01"}

		arrival, departure, err := req.Dates()
		require.NoError(t, err)
		assert.Equal(t, arrival, departure)
	})

	t.Run("departure before arrival", func(t *testing.T) {
		req := dto.CreateLeadRequest{ArrivalDate: "2026-05-02", DepartureDate: "2026-05-01"}

		_, _, err := req.Dates()
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})
}

func TestCreateLeadRequest_ToModel(t *testing.T) {
	now := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	owner := "user-9"
	followUp := "2026-04-10"

	req := dto.CreateLeadRequest{
		EventName:    "Annual Summit",
		EventType:    model.EventTypeConference,
		ContactID:    "c-1",
		OwnerID:      &owner,
		Attendees:    120,
		Budget:       9999.999,
		Currency:     "EUR",
		FollowUpDate: &followUp,
	}

	lead, err := req.ToModel("user-1", "USD", date(t, "2026-05-01"), date(t, "2026-05-03"), now)
	require.NoError(t, err)

	assert.NotEmpty(t, lead.ID)
	assert.Equal(t, model.StatusTentative, lead.Status)
	assert.Equal(t, "user-9", lead.OwnerID)
	assert.Equal(t, "EUR", lead.Currency)
	assert.Equal(t, 10000.0, lead.Budget)
	assert.Equal(t, date(t, "2026-04-10"), *lead.FollowUpDate)
	assert.Equal(t, "user-1", lead.CreatedBy)
}

func TestUpdateLeadRequest_Stay(t *testing.T) {
	current := model.Lead{ArrivalDate: date(t, "2026-05-01"), DepartureDate: date(t, "2026-05-03")}

	t.Run("unchanged", func(t *testing.T) {
		arrival, departure, changed, err := dto.UpdateLeadRequest{EventName: "x"}.Stay(current)
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Equal(t, current.ArrivalDate, arrival)
		assert.Equal(t, current.DepartureDate, departure)
	})

	t.Run("arrival only keeps departure", func(t *testing.T) {
		arrival, departure, changed, err := dto.UpdateLeadRequest{ArrivalDate: "2026-05-02"}.Stay(current)
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, date(t, "2026-05-02"), arrival)
		assert.Equal(t, current.DepartureDate, departure)
	})

	t.Run("arrival past current departure", func(t *testing.T) {
		_, _, _, err := dto.UpdateLeadRequest{ArrivalDate: "2026-05-05"}.Stay(current)
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})
}

func TestUpdateLeadRequest_ToFields(t *testing.T) {
	budget := 10.006
	arrival := date(t, "2026-05-02")

	fields, err := dto.UpdateLeadRequest{Budget: &budget, Currency: "IDR"}.ToFields("user-1", &arrival, nil)
	require.NoError(t, err)

	assert.Equal(t, 10.01, fields[model.FieldBudget])
	assert.Equal(t, "IDR", fields[model.FieldCurrency])
	assert.Equal(t, arrival, fields[model.FieldArrivalDate])
	assert.NotContains(t, fields, model.FieldDepartureDate)
	assert.Equal(t, "user-1", fields[constant.FieldModifiedBy])
}

func TestLeadResponse_FromModel(t *testing.T) {
	first, last := "Budi", "Santoso"

	var res dto.LeadResponse
	res.FromModel(model.Lead{
		ID:               "lead-1",
		Status:           model.StatusConfirmed,
		ArrivalDate:      date(t, "2026-05-01"),
		DepartureDate:    date(t, "2026-05-03"),
		ContactFirstName: &first,
		ContactLastName:  &last,
	})

	assert.Equal(t, "confirmed", res.Status)
	assert.Equal(t, "Budi Santoso", res.ContactName)
	assert.Equal(t, "2026-05-01", res.ArrivalDate)
	assert.Equal(t, "2026-05-03", res.DepartureDate)
	assert.Nil(t, res.ConfirmedAt)
}

func TestListFilter(t *testing.T) {
	t.Run("builds arrival range", func(t *testing.T) {
		filter, err := dto.ListFilter(url.Values{
			"status": {"confirmed"},
			"search": {"summit"},
			"from":   {"2026-05-01"},
			"to":     {"2026-05-31"},
		})
		require.NoError(t, err)

		where, args := filter.GetWhereClause()
		assert.Contains(t, where, "leads.arrival_date >= :arrival_from")
		assert.Contains(t, where, "leads.arrival_date <= :arrival_to")
		assert.Equal(t, "confirmed", args["status"])
		assert.Equal(t, "%summit%", args["event_name"])
		assert.Equal(t, date(t, "2026-05-31"), args["arrival_to"])
	})

	t.Run("invalid status", func(t *testing.T) {
		_, err := dto.ListFilter(url.Values{"status": {"won"}})
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})

	t.Run("invalid date", func(t *testing.T) {
		_, err := dto.ListFilter(url.Values{"from": {"01/05/2026"}})
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})
}
