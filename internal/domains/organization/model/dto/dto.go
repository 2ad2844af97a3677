package dto

import (
	"crm/internal/domains/organization/model"
	"crm/shared"
	gDto "crm/shared/dto"
	gModel "crm/shared/model"
	"time"

	"github.com/google/uuid"
)

type CreateOrganizationRequest struct {
	Name     string  `json:"name"               validate:"required,max=150"`
	Industry *string `json:"industry,omitempty" validate:"omitempty,max=100"`
	Address  *string `json:"address,omitempty"  validate:"omitempty,max=255"`
	City     *string `json:"city,omitempty"     validate:"omitempty,max=100"`
	Country  *string `json:"country,omitempty"  validate:"omitempty,max=100"`
	Phone    *string `json:"phone,omitempty"    validate:"omitempty,max=30"`
	Email    *string `json:"email,omitempty"    validate:"omitempty,email"`
	Website  *string `json:"website,omitempty"  validate:"omitempty,url"`
	// Logo is a base64 data uri.
	Logo *string `json:"logo,omitempty" validate:"omitempty,mimetypes=image/png image/jpeg,maxfilesize=2"`
}

func (r *CreateOrganizationRequest) ToModel(actor string, now time.Time) model.Organization {
	return model.Organization{
		ID:       uuid.NewString(),
		Name:     r.Name,
		Industry: r.Industry,
		Address:  r.Address,
		City:     r.City,
		Country:  r.Country,
		Phone:    r.Phone,
		Email:    r.Email,
		Website:  r.Website,
		Metadata: gModel.NewMetadata(actor, now),
	}
}

type UpdateOrganizationRequest struct {
	Name     string  `db:"name"     json:"name,omitempty"     validate:"omitempty,max=150"`
	Industry *string `db:"industry" json:"industry,omitempty" validate:"omitempty,max=100"`
	Address  *string `db:"address"  json:"address,omitempty"  validate:"omitempty,max=255"`
	City     *string `db:"city"     json:"city,omitempty"     validate:"omitempty,max=100"`
	Country  *string `db:"country"  json:"country,omitempty"  validate:"omitempty,max=100"`
	Phone    *string `db:"phone"    json:"phone,omitempty"    validate:"omitempty,max=30"`
	Email    *string `db:"email"    json:"email,omitempty"    validate:"omitempty,email"`
	Website  *string `db:"website"  json:"website,omitempty"  validate:"omitempty,url"`
	Logo     *string `json:"logo,omitempty" validate:"omitempty,mimetypes=image/png image/jpeg,maxfilesize=2"`
	LogoURL  *string `db:"logo_url" json:"-"`
}

func (r UpdateOrganizationRequest) IsEmpty() bool {
	return r.Name == "" && r.Industry == nil && r.Address == nil && r.City == nil && r.Country == nil &&
		r.Phone == nil && r.Email == nil && r.Website == nil && r.Logo == nil
}

type OrganizationResponse struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Industry *string `json:"industry,omitempty"`
	Address  *string `json:"address,omitempty"`
	City     *string `json:"city,omitempty"`
	Country  *string `json:"country,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Email    *string `json:"email,omitempty"`
	Website  *string `json:"website,omitempty"`
	LogoURL  *string `json:"logo_url,omitempty"`
	gDto.Metadata
}

func (r *OrganizationResponse) FromModel(model model.Organization) {
	r.ID = model.ID
	r.Name = model.Name
	r.Industry = model.Industry
	r.Address = model.Address
	r.City = model.City
	r.Country = model.Country
	r.Phone = model.Phone
	r.Email = model.Email
	r.Website = model.Website
	r.LogoURL = model.LogoURL
	r.Metadata.FromModel(model.Metadata)
}

type GetOrganizationsResponse struct {
	Organizations []OrganizationResponse `json:"organizations"`
	TotalPage     int                    `json:"total_page"`
	TotalData     int                    `json:"total_data"`
}

func (r *GetOrganizationsResponse) FromModels(models []model.Organization, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Organizations = make([]OrganizationResponse, len(models))
	for i, mod := range models {
		r.Organizations[i].FromModel(mod)
	}
}
