package dto

import (
	"crm/internal/domains/contact/model"
	"crm/shared"
	gDto "crm/shared/dto"
	gModel "crm/shared/model"
	"time"

	"github.com/google/uuid"
)

type CreateContactRequest struct {
	OrganizationID *string `json:"organization_id,omitempty" validate:"omitempty,uuid"`
	FirstName      string  `json:"first_name"                validate:"required,max=100"`
	LastName       *string `json:"last_name,omitempty"       validate:"omitempty,max=100"`
	Email          *string `json:"email,omitempty"           validate:"omitempty,email"`
	Phone          *string `json:"phone,omitempty"           validate:"omitempty,max=30"`
	JobTitle       *string `json:"job_title,omitempty"       validate:"omitempty,max=100"`
	Notes          *string `json:"notes,omitempty"           validate:"omitempty,max=2000"`
}

func (r *CreateContactRequest) ToModel(actor string, now time.Time) model.Contact {
	return model.Contact{
		ID:             uuid.NewString(),
		OrganizationID: r.OrganizationID,
		FirstName:      r.FirstName,
		LastName:       r.LastName,
		Email:          r.Email,
		Phone:          r.Phone,
		JobTitle:       r.JobTitle,
		Notes:          r.Notes,
		Metadata:       gModel.NewMetadata(actor, now),
	}
}

type UpdateContactRequest struct {
	OrganizationID *string `db:"organization_id" json:"organization_id,omitempty" validate:"omitempty,uuid"`
	FirstName      string  `db:"first_name"      json:"first_name,omitempty"      validate:"omitempty,max=100"`
	LastName       *string `db:"last_name"       json:"last_name,omitempty"       validate:"omitempty,max=100"`
	Email          *string `db:"email"           json:"email,omitempty"           validate:"omitempty,email"`
	Phone          *string `db:"phone"           json:"phone,omitempty"           validate:"omitempty,max=30"`
	JobTitle       *string `db:"job_title"       json:"job_title,omitempty"       validate:"omitempty,max=100"`
	Notes          *string `db:"notes"           json:"notes,omitempty"           validate:"omitempty,max=2000"`
}

func (r UpdateContactRequest) IsEmpty() bool {
	return r == (UpdateContactRequest{})
}

type ContactResponse struct {
	ID               string  `json:"id"`
	OrganizationID   *string `json:"organization_id,omitempty"`
	OrganizationName *string `json:"organization_name,omitempty"`
	FirstName        string  `json:"first_name"`
	LastName         *string `json:"last_name,omitempty"`
	FullName         string  `json:"full_name"`
	Email            *string `json:"email,omitempty"`
	Phone            *string `json:"phone,omitempty"`
	JobTitle         *string `json:"job_title,omitempty"`
	Notes            *string `json:"notes,omitempty"`
	gDto.Metadata
}

func (r *ContactResponse) FromModel(model model.Contact) {
	r.ID = model.ID
	r.OrganizationID = model.OrganizationID
	r.OrganizationName = model.OrganizationName
	r.FirstName = model.FirstName
	r.LastName = model.LastName
	r.FullName = model.FullName()
	r.Email = model.Email
	r.Phone = model.Phone
	r.JobTitle = model.JobTitle
	r.Notes = model.Notes
	r.Metadata.FromModel(model.Metadata)
}

type GetContactsResponse struct {
	Contacts  []ContactResponse `json:"contacts"`
	TotalPage int               `json:"total_page"`
	TotalData int               `json:"total_data"`
}

func (r *GetContactsResponse) FromModels(models []model.Contact, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Contacts = make([]ContactResponse, len(models))
	for i, mod := range models {
		r.Contacts[i].FromModel(mod)
	}
}

// SearchFilter matches the term against name and email.
func SearchFilter(term string) gDto.FilterGroup {
	group := gDto.FilterGroup{Operator: gDto.FilterGroupOperatorOr}

	for _, field := range []string{model.FieldFirstName, model.FieldLastName, model.FieldEmail} {
		group.Add(gDto.Filter{
			ArgName:  "search_" + field,
			Field:    field,
			Operator: gDto.FilterOperatorLike,
			Value:    term,
			Table:    model.TableName,
		})
	}

	return group
}
