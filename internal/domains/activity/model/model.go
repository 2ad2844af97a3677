package model

import (
	"crm/shared/model"
	"time"
)

const (
	TableName  = "activities"
	EntityName = "activity"

	FieldID          = "id"
	FieldLeadID      = "lead_id"
	FieldType        = "type"
	FieldSubject     = "subject"
	FieldNotes       = "notes"
	FieldActivityAt  = "activity_at"
	FieldDueAt       = "due_at"
	FieldAssignedTo  = "assigned_to"
	FieldCompleted   = "completed"
	FieldCompletedAt = "completed_at"
	FieldRemindedAt  = "reminded_at"
)

const (
	TypeCall         = "call"
	TypeEmail        = "email"
	TypeMeeting      = "meeting"
	TypeNote         = "note"
	TypeSiteVisit    = "site_visit"
	TypeStatusChange = "status_change"
	TypeProposal     = "proposal"
)

// ManualTypes are the activity types a user may log directly. Status changes
// and proposals are recorded by the system.
var ManualTypes = []string{TypeCall, TypeEmail, TypeMeeting, TypeNote, TypeSiteVisit}

type Activity struct {
	ID            string     `db:"id"`
	LeadID        string     `db:"lead_id"`
	Type          string     `db:"type"`
	Subject       string     `db:"subject"`
	Notes         *string    `db:"notes"`
	ActivityAt    time.Time  `db:"activity_at"`
	DueAt         *time.Time `db:"due_at"`
	AssignedTo    string     `db:"assigned_to"`
	Completed     bool       `db:"completed"`
	CompletedAt   *time.Time `db:"completed_at"`
	RemindedAt    *time.Time `db:"reminded_at"`
	LeadEventName *string    `db:"lead_event_name" table:"leads" column:"event_name"`
	model.Metadata
}

func (Activity) GetJoinQuery() string {
	return "JOIN leads ON leads.id = activities.lead_id"
}

// IsOverdue reports whether a follow-up is still open after its due time.
func (a Activity) IsOverdue(now time.Time) bool {
	return !a.Completed && a.DueAt != nil && a.DueAt.Before(now)
}

// FollowUpDue is published when an open follow-up passes its due time.
type FollowUpDue struct {
	ActivityID    string    `json:"activity_id"`
	LeadID        string    `json:"lead_id"`
	LeadEventName string    `json:"lead_event_name,omitempty"`
	AssignedTo    string    `json:"assigned_to"`
	Subject       string    `json:"subject"`
	DueAt         time.Time `json:"due_at"`
}

func (a Activity) ToFollowUpDue() FollowUpDue {
	event := FollowUpDue{
		ActivityID: a.ID,
		LeadID:     a.LeadID,
		AssignedTo: a.AssignedTo,
		Subject:    a.Subject,
	}

	if a.LeadEventName != nil {
		event.LeadEventName = *a.LeadEventName
	}

	if a.DueAt != nil {
		event.DueAt = *a.DueAt
	}

	return event
}
