package model

import "crm/shared/model"

const (
	TableName  = "organizations"
	EntityName = "organization"

	FieldID       = "id"
	FieldName     = "name"
	FieldIndustry = "industry"
	FieldAddress  = "address"
	FieldCity     = "city"
	FieldCountry  = "country"
	FieldPhone    = "phone"
	FieldEmail    = "email"
	FieldWebsite  = "website"
	FieldLogoURL  = "logo_url"

	// LogoDirectory is the object storage prefix for organization logos.
	LogoDirectory = "organizations"
)

type Organization struct {
	ID       string  `db:"id"`
	Name     string  `db:"name"`
	Industry *string `db:"industry"`
	Address  *string `db:"address"`
	City     *string `db:"city"`
	Country  *string `db:"country"`
	Phone    *string `db:"phone"`
	Email    *string `db:"email"`
	Website  *string `db:"website"`
	LogoURL  *string `db:"logo_url"`
	model.Metadata
}
