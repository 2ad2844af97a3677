package dto

import (
	"crm/config"
	"crm/internal/domains/lead/model"
	"crm/shared"
	"crm/shared/constant"
	gDto "crm/shared/dto"
	"crm/shared/failure"
	gModel "crm/shared/model"
	"crm/shared/timezone"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
)

// Currency is an ISO 4217 code accepted by the hotel.
type Currency string

func (c Currency) Validate(cfg *config.Config) error {
	if !slices.Contains(cfg.Proposal.Currencies, string(c)) {
		return fmt.Errorf("unsupported currency %q", c)
	}

	return nil
}

type CreateLeadRequest struct {
	EventName      string   `json:"event_name"                validate:"required,max=150"`
	EventType      string   `json:"event_type"                validate:"required,oneof=wedding conference meeting social incentive other"`
	ContactID      string   `json:"contact_id"                validate:"required,uuid"`
	OrganizationID *string  `json:"organization_id,omitempty" validate:"omitempty,uuid"`
	OwnerID        *string  `json:"owner_id,omitempty"        validate:"omitempty,uuid"`
	ArrivalDate    string   `json:"arrival_date"              validate:"required,datetime=2006-01-02"`
	DepartureDate  string   `json:"departure_date"            validate:"required,datetime=2006-01-02"`
	Attendees      int      `json:"attendees"                 validate:"required,gte=1"`
	Budget         float64  `json:"budget"                    validate:"gte=0"`
	Currency       Currency `json:"currency,omitempty"        validate:"omitempty,configured"`
	Source         *string  `json:"source,omitempty"          validate:"omitempty,oneof=walk_in phone email website referral agency other"`
	FollowUpDate   *string  `json:"follow_up_date,omitempty"  validate:"omitempty,datetime=2006-01-02"`
	Notes          *string  `json:"notes,omitempty"           validate:"omitempty,max=5000"`
}

// Dates parses and checks the stay. Departure on the arrival day is a day event.
func (r *CreateLeadRequest) Dates() (arrival, departure time.Time, err error) {
	return parseStay(r.ArrivalDate, r.DepartureDate)
}

func (r *CreateLeadRequest) ToModel(actor, defaultCurrency string, arrival, departure time.Time, now time.Time) (model.Lead, error) {
	followUp, err := parseOptionalDate(r.FollowUpDate)
	if err != nil {
		return model.Lead{}, err
	}

	owner := actor
	if r.OwnerID != nil {
		owner = *r.OwnerID
	}

	currency := string(r.Currency)
	if currency == "" {
		currency = defaultCurrency
	}

	return model.Lead{
		ID:             uuid.NewString(),
		EventName:      r.EventName,
		EventType:      r.EventType,
		Status:         model.StatusTentative,
		ContactID:      r.ContactID,
		OrganizationID: r.OrganizationID,
		OwnerID:        owner,
		ArrivalDate:    arrival,
		DepartureDate:  departure,
		Attendees:      r.Attendees,
		Budget:         shared.RoundMoney(r.Budget),
		Currency:       currency,
		Source:         r.Source,
		FollowUpDate:   followUp,
		Notes:          r.Notes,
		Metadata:       gModel.NewMetadata(actor, now),
	}, nil
}

// UpdateLeadRequest is a partial update. Status is changed through
// ChangeStatusRequest only.
type UpdateLeadRequest struct {
	EventName      string   `db:"event_name"      json:"event_name,omitempty"      validate:"omitempty,max=150"`
	EventType      string   `db:"event_type"      json:"event_type,omitempty"      validate:"omitempty,oneof=wedding conference meeting social incentive other"`
	ContactID      string   `db:"contact_id"      json:"contact_id,omitempty"      validate:"omitempty,uuid"`
	OrganizationID *string  `db:"organization_id" json:"organization_id,omitempty" validate:"omitempty,uuid"`
	OwnerID        string   `db:"owner_id"        json:"owner_id,omitempty"        validate:"omitempty,uuid"`
	ArrivalDate    string   `json:"arrival_date,omitempty"   validate:"omitempty,datetime=2006-01-02"`
	DepartureDate  string   `json:"departure_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Attendees      int      `db:"attendees"       json:"attendees,omitempty"       validate:"omitempty,gte=1"`
	Budget         *float64 `db:"budget"          json:"budget,omitempty"          validate:"omitempty,gte=0"`
	Currency       Currency `db:"currency"        json:"currency,omitempty"        validate:"omitempty,configured"`
	Source         *string  `db:"source"          json:"source,omitempty"          validate:"omitempty,oneof=walk_in phone email website referral agency other"`
	FollowUpDate   *string  `json:"follow_up_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Notes          *string  `db:"notes"           json:"notes,omitempty"           validate:"omitempty,max=5000"`
}

func (r UpdateLeadRequest) IsEmpty() bool {
	return r == (UpdateLeadRequest{})
}

// Stay resolves the stay after the update against the current lead.
func (r UpdateLeadRequest) Stay(current model.Lead) (arrival, departure time.Time, changed bool, err error) {
	if r.ArrivalDate == "" && r.DepartureDate == "" {
		return current.ArrivalDate, current.DepartureDate, false, nil
	}

	arrivalStr := r.ArrivalDate
	if arrivalStr == "" {
		arrivalStr = timezone.FormatDate(current.ArrivalDate)
	}

	departureStr := r.DepartureDate
	if departureStr == "" {
		departureStr = timezone.FormatDate(current.DepartureDate)
	}

	arrival, departure, err = parseStay(arrivalStr, departureStr)

	return arrival, departure, err == nil, err
}

// ToFields converts the request into the column map for the repository.
func (r UpdateLeadRequest) ToFields(actor string, arrival, departure *time.Time) (map[string]any, error) {
	fields := shared.TransformFields(r, actor)

	if r.Budget != nil {
		fields[model.FieldBudget] = shared.RoundMoney(*r.Budget)
	}

	if r.Currency != "" {
		fields[model.FieldCurrency] = string(r.Currency)
	}

	if arrival != nil {
		fields[model.FieldArrivalDate] = *arrival
	}

	if departure != nil {
		fields[model.FieldDepartureDate] = *departure
	}

	followUp, err := parseOptionalDate(r.FollowUpDate)
	if err != nil {
		return nil, err
	}

	if followUp != nil {
		fields[model.FieldFollowUpDate] = *followUp
	}

	return fields, nil
}

type ChangeStatusRequest struct {
	Status     model.Status `json:"status"                validate:"required,oneof=tentative confirmed lost"`
	LostReason *string      `json:"lost_reason,omitempty" validate:"omitempty,max=500"`
	Note       *string      `json:"note,omitempty"        validate:"omitempty,max=2000"`
}

type LeadResponse struct {
	ID               string  `json:"id"`
	EventName        string  `json:"event_name"`
	EventType        string  `json:"event_type"`
	Status           string  `json:"status"`
	ContactID        string  `json:"contact_id"`
	ContactName      string  `json:"contact_name"`
	ContactEmail     *string `json:"contact_email,omitempty"`
	ContactPhone     *string `json:"contact_phone,omitempty"`
	OrganizationID   *string `json:"organization_id,omitempty"`
	OrganizationName *string `json:"organization_name,omitempty"`
	OwnerID          string  `json:"owner_id"`
	OwnerName        *string `json:"owner_name,omitempty"`
	ArrivalDate      string  `json:"arrival_date"`
	DepartureDate    string  `json:"departure_date"`
	Attendees        int     `json:"attendees"`
	Budget           float64 `json:"budget"`
	Currency         string  `json:"currency"`
	Source           *string `json:"source,omitempty"`
	FollowUpDate     *string `json:"follow_up_date,omitempty"`
	Notes            *string `json:"notes,omitempty"`
	LostReason       *string `json:"lost_reason,omitempty"`
	ConfirmedAt      *string `json:"confirmed_at,omitempty"`
	LostAt           *string `json:"lost_at,omitempty"`
	gDto.Metadata
}

func (r *LeadResponse) FromModel(model model.Lead) {
	r.ID = model.ID
	r.EventName = model.EventName
	r.EventType = model.EventType
	r.Status = model.Status.String()
	r.ContactID = model.ContactID
	r.ContactName = model.ContactName()
	r.ContactEmail = model.ContactEmail
	r.ContactPhone = model.ContactPhone
	r.OrganizationID = model.OrganizationID
	r.OrganizationName = model.OrganizationName
	r.OwnerID = model.OwnerID
	r.OwnerName = model.OwnerName
	r.ArrivalDate = timezone.FormatDate(model.ArrivalDate)
	r.DepartureDate = timezone.FormatDate(model.DepartureDate)
	r.Attendees = model.Attendees
	r.Budget = model.Budget
	r.Currency = model.Currency
	r.Source = model.Source
	r.FollowUpDate = formatOptional(model.FollowUpDate, timezone.FormatDate)
	r.Notes = model.Notes
	r.LostReason = model.LostReason
	r.ConfirmedAt = formatOptional(model.ConfirmedAt, formatTimestamp)
	r.LostAt = formatOptional(model.LostAt, formatTimestamp)
	r.Metadata.FromModel(model.Metadata)
}

type GetLeadsResponse struct {
	Leads     []LeadResponse `json:"leads"`
	TotalPage int            `json:"total_page"`
	TotalData int            `json:"total_data"`
}

func (r *GetLeadsResponse) FromModels(models []model.Lead, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Leads = make([]LeadResponse, len(models))
	for i, mod := range models {
		r.Leads[i].FromModel(mod)
	}
}

func parseStay(arrivalStr, departureStr string) (arrival, departure time.Time, err error) {
	arrival, err = timezone.ParseDate(arrivalStr)
	if err != nil {
		return arrival, departure, failure.BadRequestFromString("arrival_date must match the format 2006-01-02")
	}

	departure, err = timezone.ParseDate(departureStr)
	if err != nil {
		return arrival, departure, failure.BadRequestFromString("departure_date must match the format 2006-01-02")
	}

	if departure.Before(arrival) {
		return arrival, departure, failure.BadRequestFromString("departure_date must not be before arrival_date")
	}

	return arrival, departure, nil
}

func parseOptionalDate(value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}

	date, err := timezone.ParseDate(*value)
	if err != nil {
		return nil, failure.BadRequestFromString("follow_up_date must match the format 2006-01-02")
	}

	return &date, nil
}

func formatTimestamp(t time.Time) string {
	return timezone.Format(t, constant.DateFormat)
}

func formatOptional(value *time.Time, format func(time.Time) string) *string {
	if value == nil {
		return nil
	}

	formatted := format(*value)

	return &formatted
}
