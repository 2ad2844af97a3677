package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"crm/internal/domains/activity/model"
)

func TestActivity_IsOverdue(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	before := now.Add(-time.Minute)
	after := now.Add(time.Minute)

	assert.True(t, model.Activity{DueAt: &before}.IsOverdue(now))
	assert.False(t, model.Activity{DueAt: &after}.IsOverdue(now))
	assert.False(t, model.Activity{DueAt: &before, Completed: true}.IsOverdue(now))
	assert.False(t, model.Activity{}.IsOverdue(now))
}

func TestActivity_ToFollowUpDue(t *testing.T) {
	due := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	name := "Santoso Wedding"

	event := model.Activity{
		ID:            "a-1",
		LeadID:        "lead-1",
		Subject:       "Send menu",
		AssignedTo:    "user-1",
		DueAt:         &due,
		LeadEventName: &name,
	}.ToFollowUpDue()

	assert.Equal(t, model.FollowUpDue{
		ActivityID:    "a-1",
		LeadID:        "lead-1",
		LeadEventName: name,
		AssignedTo:    "user-1",
		Subject:       "Send menu",
		DueAt:         due,
	}, event)
}
