package dto

import (
	"crm/internal/domains/activity/model"
	"crm/shared"
	"crm/shared/constant"
	gDto "crm/shared/dto"
	"crm/shared/failure"
	gModel "crm/shared/model"
	"crm/shared/timezone"
	"time"

	"github.com/google/uuid"
)

type CreateActivityRequest struct {
	Type       string  `json:"type"                  validate:"required,oneof=call email meeting note site_visit"`
	Subject    string  `json:"subject"               validate:"required,max=200"`
	Notes      *string `json:"notes,omitempty"       validate:"omitempty,max=5000"`
	ActivityAt *string `json:"activity_at,omitempty" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	DueAt      *string `json:"due_at,omitempty"      validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	AssignedTo *string `json:"assigned_to,omitempty" validate:"omitempty,uuid"`
}

// ToModel defaults activity_at to now and the assignee to the actor.
func (r *CreateActivityRequest) ToModel(leadID, actor string, now time.Time) (model.Activity, error) {
	activityAt := now
	if r.ActivityAt != nil {
		parsed, err := parseTimestamp(model.FieldActivityAt, *r.ActivityAt)
		if err != nil {
			return model.Activity{}, err
		}

		activityAt = parsed
	}

	var dueAt *time.Time

	if r.DueAt != nil {
		parsed, err := parseTimestamp(model.FieldDueAt, *r.DueAt)
		if err != nil {
			return model.Activity{}, err
		}

		dueAt = &parsed
	}

	assignee := actor
	if r.AssignedTo != nil {
		assignee = *r.AssignedTo
	}

	return model.Activity{
		ID:         uuid.NewString(),
		LeadID:     leadID,
		Type:       r.Type,
		Subject:    r.Subject,
		Notes:      r.Notes,
		ActivityAt: activityAt,
		DueAt:      dueAt,
		AssignedTo: assignee,
		Metadata:   gModel.NewMetadata(actor, now),
	}, nil
}

type UpdateActivityRequest struct {
	Type       string  `db:"type"        json:"type,omitempty"        validate:"omitempty,oneof=call email meeting note site_visit"`
	Subject    string  `db:"subject"     json:"subject,omitempty"     validate:"omitempty,max=200"`
	Notes      *string `db:"notes"       json:"notes,omitempty"       validate:"omitempty,max=5000"`
	ActivityAt *string `json:"activity_at,omitempty" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	DueAt      *string `json:"due_at,omitempty"      validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	AssignedTo string  `db:"assigned_to" json:"assigned_to,omitempty" validate:"omitempty,uuid"`
}

func (r UpdateActivityRequest) IsEmpty() bool {
	return r == (UpdateActivityRequest{})
}

// ToFields converts the request into the column map. A new due time rearms
// the reminder.
func (r UpdateActivityRequest) ToFields(actor string) (map[string]any, error) {
	fields := shared.TransformFields(r, actor)

	if r.ActivityAt != nil {
		activityAt, err := parseTimestamp(model.FieldActivityAt, *r.ActivityAt)
		if err != nil {
			return nil, err
		}

		fields[model.FieldActivityAt] = activityAt
	}

	if r.DueAt != nil {
		dueAt, err := parseTimestamp(model.FieldDueAt, *r.DueAt)
		if err != nil {
			return nil, err
		}

		fields[model.FieldDueAt] = dueAt
		fields[model.FieldRemindedAt] = nil
	}

	return fields, nil
}

type ActivityResponse struct {
	ID            string  `json:"id"`
	LeadID        string  `json:"lead_id"`
	LeadEventName *string `json:"lead_event_name,omitempty"`
	Type          string  `json:"type"`
	Subject       string  `json:"subject"`
	Notes         *string `json:"notes,omitempty"`
	ActivityAt    string  `json:"activity_at"`
	DueAt         *string `json:"due_at,omitempty"`
	AssignedTo    string  `json:"assigned_to"`
	Completed     bool    `json:"completed"`
	CompletedAt   *string `json:"completed_at,omitempty"`
	Overdue       bool    `json:"overdue"`
	gDto.Metadata
}

func (r *ActivityResponse) FromModel(model model.Activity, now time.Time) {
	r.ID = model.ID
	r.LeadID = model.LeadID
	r.LeadEventName = model.LeadEventName
	r.Type = model.Type
	r.Subject = model.Subject
	r.Notes = model.Notes
	r.ActivityAt = formatTimestamp(model.ActivityAt)
	r.DueAt = formatOptional(model.DueAt)
	r.AssignedTo = model.AssignedTo
	r.Completed = model.Completed
	r.CompletedAt = formatOptional(model.CompletedAt)
	r.Overdue = model.IsOverdue(now)
	r.Metadata.FromModel(model.Metadata)
}

type GetActivitiesResponse struct {
	Activities []ActivityResponse `json:"activities"`
	TotalPage  int                `json:"total_page"`
	TotalData  int                `json:"total_data"`
}

func (r *GetActivitiesResponse) FromModels(models []model.Activity, totalData, limit int, now time.Time) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Activities = make([]ActivityResponse, len(models))
	for i, mod := range models {
		r.Activities[i].FromModel(mod, now)
	}
}

func parseTimestamp(field, value string) (time.Time, error) {
	parsed, err := time.Parse(constant.DateFormat, value)
	if err != nil {
		return parsed, failure.BadRequestFromString(field + " must be an RFC 3339 timestamp")
	}

	return parsed, nil
}

func formatTimestamp(t time.Time) string {
	return timezone.Format(t, constant.DateFormat)
}

func formatOptional(t *time.Time) *string {
	if t == nil {
		return nil
	}

	formatted := formatTimestamp(*t)

	return &formatted
}
