package model

import (
	"crm/shared"
	"crm/shared/model"
	"strings"
	"time"
)

const (
	TableName  = "event_details"
	EntityName = "event_detail"

	FieldID           = "id"
	FieldLeadID       = "lead_id"
	FieldEventDate    = "event_date"
	FieldStartTime    = "start_time"
	FieldEndTime      = "end_time"
	FieldFunctionRoom = "function_room"
	FieldSetupStyle   = "setup_style"
	FieldMeal         = "meal"
	FieldAttendees    = "attendees"
	FieldRate         = "rate"
	FieldNotes        = "notes"
)

const (
	SetupTheater    = "theater"
	SetupClassroom  = "classroom"
	SetupBanquet    = "banquet"
	SetupUShape     = "u_shape"
	SetupBoardroom  = "boardroom"
	SetupCocktail   = "cocktail"
	SetupReception  = "reception"
	MealNone        = "none"
	MealBreakfast   = "breakfast"
	MealLunch       = "lunch"
	MealDinner      = "dinner"
	MealCoffeeBreak = "coffee_break"
	MealCocktail    = "cocktail"
	MealFullBoard   = "full_board"
)

// EventDetail is one function of a lead on a given day.
type EventDetail struct {
	ID           string    `db:"id"`
	LeadID       string    `db:"lead_id"`
	EventDate    time.Time `db:"event_date"`
	StartTime    string    `db:"start_time"`
	EndTime      string    `db:"end_time"`
	FunctionRoom string    `db:"function_room"`
	SetupStyle   string    `db:"setup_style"`
	Meal         string    `db:"meal"`
	Attendees    int       `db:"attendees"`
	Rate         float64   `db:"rate"`
	Notes        *string   `db:"notes"`
	model.Metadata
}

// LineTotal is attendees times the per person rate.
func (e EventDetail) LineTotal() float64 {
	return shared.RoundMoney(float64(e.Attendees) * e.Rate)
}

// Compare orders lines by day, then start time.
func Compare(a, b EventDetail) int {
	if c := a.EventDate.Compare(b.EventDate); c != 0 {
		return c
	}

	return strings.Compare(a.StartTime, b.StartTime)
}
