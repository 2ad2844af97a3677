package model

import (
	"crm/shared/model"
	"strings"
)

const (
	TableName  = "contacts"
	EntityName = "contact"

	FieldID             = "id"
	FieldOrganizationID = "organization_id"
	FieldFirstName      = "first_name"
	FieldLastName       = "last_name"
	FieldEmail          = "email"
	FieldPhone          = "phone"
	FieldJobTitle       = "job_title"
	FieldNotes          = "notes"
)

type Contact struct {
	ID               string  `db:"id"`
	OrganizationID   *string `db:"organization_id"`
	FirstName        string  `db:"first_name"`
	LastName         *string `db:"last_name"`
	Email            *string `db:"email"`
	Phone            *string `db:"phone"`
	JobTitle         *string `db:"job_title"`
	Notes            *string `db:"notes"`
	OrganizationName *string `db:"organization_name" table:"organizations" column:"name"`
	model.Metadata
}

func (Contact) GetJoinQuery() string {
	return "LEFT JOIN organizations ON organizations.id = contacts.organization_id"
}

func (c Contact) FullName() string {
	if c.LastName == nil || *c.LastName == "" {
		return c.FirstName
	}

	return strings.TrimSpace(c.FirstName + " " + *c.LastName)
}
