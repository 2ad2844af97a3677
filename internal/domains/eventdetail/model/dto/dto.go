package dto

import (
	"crm/internal/domains/eventdetail/model"
	"crm/shared"
	gDto "crm/shared/dto"
	"crm/shared/failure"
	gModel "crm/shared/model"
	"crm/shared/timezone"
	"time"

	"github.com/google/uuid"
)

type CreateEventDetailRequest struct {
	EventDate    string  `json:"event_date"      validate:"required,datetime=2006-01-02"`
	StartTime    string  `json:"start_time"      validate:"required,datetime=15:04"`
	EndTime      string  `json:"end_time"        validate:"required,datetime=15:04"`
	FunctionRoom string  `json:"function_room"   validate:"required,max=100"`
	SetupStyle   string  `json:"setup_style"     validate:"required,oneof=theater classroom banquet u_shape boardroom cocktail reception"`
	Meal         string  `json:"meal,omitempty"  validate:"omitempty,oneof=none breakfast lunch dinner coffee_break cocktail full_board"`
	Attendees    int     `json:"attendees"       validate:"required,gte=1"`
	Rate         float64 `json:"rate"            validate:"gte=0"`
	Notes        *string `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

func (r *CreateEventDetailRequest) ToModel(leadID, actor string, eventDate, now time.Time) model.EventDetail {
	meal := r.Meal
	if meal == "" {
		meal = model.MealNone
	}

	return model.EventDetail{
		ID:           uuid.NewString(),
		LeadID:       leadID,
		EventDate:    eventDate,
		StartTime:    r.StartTime,
		EndTime:      r.EndTime,
		FunctionRoom: r.FunctionRoom,
		SetupStyle:   r.SetupStyle,
		Meal:         meal,
		Attendees:    r.Attendees,
		Rate:         shared.RoundMoney(r.Rate),
		Notes:        r.Notes,
		Metadata:     gModel.NewMetadata(actor, now),
	}
}

type UpdateEventDetailRequest struct {
	EventDate    string   `json:"event_date,omitempty"                   validate:"omitempty,datetime=2006-01-02"`
	StartTime    string   `db:"start_time"    json:"start_time,omitempty"    validate:"omitempty,datetime=15:04"`
	EndTime      string   `db:"end_time"      json:"end_time,omitempty"      validate:"omitempty,datetime=15:04"`
	FunctionRoom string   `db:"function_room" json:"function_room,omitempty" validate:"omitempty,max=100"`
	SetupStyle   string   `db:"setup_style"   json:"setup_style,omitempty"   validate:"omitempty,oneof=theater classroom banquet u_shape boardroom cocktail reception"`
	Meal         string   `db:"meal"          json:"meal,omitempty"          validate:"omitempty,oneof=none breakfast lunch dinner coffee_break cocktail full_board"`
	Attendees    int      `db:"attendees"     json:"attendees,omitempty"     validate:"omitempty,gte=1"`
	Rate         *float64 `db:"rate"          json:"rate,omitempty"          validate:"omitempty,gte=0"`
	Notes        *string  `db:"notes"         json:"notes,omitempty"         validate:"omitempty,max=2000"`
}

func (r UpdateEventDetailRequest) IsEmpty() bool {
	return r == (UpdateEventDetailRequest{})
}

// Apply returns current with the request merged in, for validation before
// the update is written.
func (r UpdateEventDetailRequest) Apply(current model.EventDetail) (model.EventDetail, error) {
	if r.EventDate != "" {
		date, err := ParseEventDate(r.EventDate)
		if err != nil {
			return current, err
		}

		current.EventDate = date
	}

	if r.StartTime != "" {
		current.StartTime = r.StartTime
	}

	if r.EndTime != "" {
		current.EndTime = r.EndTime
	}

	return current, nil
}

func (r UpdateEventDetailRequest) ToFields(actor string, merged model.EventDetail) map[string]any {
	fields := shared.TransformFields(r, actor)

	if r.EventDate != "" {
		fields[model.FieldEventDate] = merged.EventDate
	}

	if r.Rate != nil {
		fields[model.FieldRate] = shared.RoundMoney(*r.Rate)
	}

	return fields
}

func ParseEventDate(value string) (time.Time, error) {
	date, err := timezone.ParseDate(value)
	if err != nil {
		return date, failure.BadRequestFromString("event_date must match the format 2006-01-02")
	}

	return date, nil
}

const clockLayout = "15:04"

// ParseClock accepts H:MM or HH:MM and returns the zero padded HH:MM form
// stored in the database, so stored values order lexically.
func ParseClock(field, value string) (string, error) {
	t, err := time.Parse(clockLayout, value)
	if err != nil {
		return "", failure.BadRequestFromString(field + " must match the format 15:04")
	}

	return t.Format(clockLayout), nil
}

// normalizeClocks rewrites the non empty start and end times in place.
func normalizeClocks(start, end *string) error {
	for _, v := range []struct {
		field string
		value *string
	}{{model.FieldStartTime, start}, {model.FieldEndTime, end}} {
		if *v.value == "" {
			continue
		}

		clock, err := ParseClock(v.field, *v.value)
		if err != nil {
			return err
		}

		*v.value = clock
	}

	return nil
}

func (r *CreateEventDetailRequest) Normalize() error {
	return normalizeClocks(&r.StartTime, &r.EndTime)
}

func (r *UpdateEventDetailRequest) Normalize() error {
	return normalizeClocks(&r.StartTime, &r.EndTime)
}

// CheckTimes reports a bad request unless the function ends after it starts.
func CheckTimes(detail model.EventDetail) error {
	start, err := time.Parse(clockLayout, detail.StartTime)
	if err != nil {
		return failure.BadRequestFromString("start_time must match the format 15:04")
	}

	end, err := time.Parse(clockLayout, detail.EndTime)
	if err != nil {
		return failure.BadRequestFromString("end_time must match the format 15:04")
	}

	if !end.After(start) {
		return failure.BadRequestFromString("end_time must be after start_time")
	}

	return nil
}

type EventDetailResponse struct {
	ID           string  `json:"id"`
	LeadID       string  `json:"lead_id"`
	EventDate    string  `json:"event_date"`
	StartTime    string  `json:"start_time"`
	EndTime      string  `json:"end_time"`
	FunctionRoom string  `json:"function_room"`
	SetupStyle   string  `json:"setup_style"`
	Meal         string  `json:"meal"`
	Attendees    int     `json:"attendees"`
	Rate         float64 `json:"rate"`
	LineTotal    float64 `json:"line_total"`
	Notes        *string `json:"notes,omitempty"`
	gDto.Metadata
}

func (r *EventDetailResponse) FromModel(model model.EventDetail) {
	r.ID = model.ID
	r.LeadID = model.LeadID
	r.EventDate = timezone.FormatDate(model.EventDate)
	r.StartTime = model.StartTime
	r.EndTime = model.EndTime
	r.FunctionRoom = model.FunctionRoom
	r.SetupStyle = model.SetupStyle
	r.Meal = model.Meal
	r.Attendees = model.Attendees
	r.Rate = model.Rate
	r.LineTotal = model.LineTotal()
	r.Notes = model.Notes
	r.Metadata.FromModel(model.Metadata)
}

type GetEventDetailsResponse struct {
	EventDetails []EventDetailResponse `json:"event_details"`
	Total        float64               `json:"total"`
}

func (r *GetEventDetailsResponse) FromModels(models []model.EventDetail) {
	r.EventDetails = make([]EventDetailResponse, len(models))

	var total float64

	for i, mod := range models {
		r.EventDetails[i].FromModel(mod)
		total += r.EventDetails[i].LineTotal
	}

	r.Total = shared.RoundMoney(total)
}
