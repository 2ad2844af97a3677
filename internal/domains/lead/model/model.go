package model

import (
	"crm/shared/model"
	"strings"
	"time"
)

const (
	TableName  = "leads"
	EntityName = "lead"

	FieldID             = "id"
	FieldEventName      = "event_name"
	FieldEventType      = "event_type"
	FieldStatus         = "status"
	FieldContactID      = "contact_id"
	FieldOrganizationID = "organization_id"
	FieldOwnerID        = "owner_id"
	FieldArrivalDate    = "arrival_date"
	FieldDepartureDate  = "departure_date"
	FieldAttendees      = "attendees"
	FieldBudget         = "budget"
	FieldCurrency       = "currency"
	FieldSource         = "source"
	FieldFollowUpDate   = "follow_up_date"
	FieldNotes          = "notes"
	FieldLostReason     = "lost_reason"
	FieldConfirmedAt    = "confirmed_at"
	FieldLostAt         = "lost_at"
)

const (
	EventTypeWedding    = "wedding"
	EventTypeConference = "conference"
	EventTypeMeeting    = "meeting"
	EventTypeSocial     = "social"
	EventTypeIncentive  = "incentive"
	EventTypeOther      = "other"
)

const (
	SourceWalkIn   = "walk_in"
	SourcePhone    = "phone"
	SourceEmail    = "email"
	SourceWebsite  = "website"
	SourceReferral = "referral"
	SourceAgency   = "agency"
	SourceOther    = "other"
)

type Lead struct {
	ID             string     `db:"id"`
	EventName      string     `db:"event_name"`
	EventType      string     `db:"event_type"`
	Status         Status     `db:"status"`
	ContactID      string     `db:"contact_id"`
	OrganizationID *string    `db:"organization_id"`
	OwnerID        string     `db:"owner_id"`
	ArrivalDate    time.Time  `db:"arrival_date"`
	DepartureDate  time.Time  `db:"departure_date"`
	Attendees      int        `db:"attendees"`
	Budget         float64    `db:"budget"`
	Currency       string     `db:"currency"`
	Source         *string    `db:"source"`
	FollowUpDate   *time.Time `db:"follow_up_date"`
	Notes          *string    `db:"notes"`
	LostReason     *string    `db:"lost_reason"`
	ConfirmedAt    *time.Time `db:"confirmed_at"`
	LostAt         *time.Time `db:"lost_at"`

	ContactFirstName *string `db:"contact_first_name" table:"contacts"      column:"first_name"`
	ContactLastName  *string `db:"contact_last_name"  table:"contacts"      column:"last_name"`
	ContactEmail     *string `db:"contact_email"      table:"contacts"      column:"email"`
	ContactPhone     *string `db:"contact_phone"      table:"contacts"      column:"phone"`
	OrganizationName *string `db:"organization_name"  table:"organizations" column:"name"`
	OwnerName        *string `db:"owner_name"         table:"users"         column:"full_name"`
	model.Metadata
}

func (Lead) GetJoinQuery() string {
	return "JOIN contacts ON contacts.id = leads.contact_id " +
		"LEFT JOIN organizations ON organizations.id = leads.organization_id " +
		"LEFT JOIN users ON users.id = leads.owner_id"
}

func (l Lead) ContactName() string {
	parts := []string{}

	for _, part := range []*string{l.ContactFirstName, l.ContactLastName} {
		if part != nil && *part != "" {
			parts = append(parts, *part)
		}
	}

	return strings.Join(parts, " ")
}

// Nights is the number of nights between arrival and departure.
func (l Lead) Nights() int {
	return int(l.DepartureDate.Sub(l.ArrivalDate).Hours() / 24)
}

// Covers reports whether date falls within the stay, both ends inclusive.
func (l Lead) Covers(date time.Time) bool {
	return !date.Before(l.ArrivalDate) && !date.After(l.DepartureDate)
}

// StatusChanged is published on every lead status transition.
type StatusChanged struct {
	LeadID     string    `json:"lead_id"`
	EventName  string    `json:"event_name"`
	From       Status    `json:"from"`
	To         Status    `json:"to"`
	LostReason string    `json:"lost_reason,omitempty"`
	OwnerID    string    `json:"owner_id"`
	ChangedBy  string    `json:"changed_by"`
	ChangedAt  time.Time `json:"changed_at"`
}
