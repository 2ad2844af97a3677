package dto

import (
	"crm/internal/domains/dashboard/model"
	leadModel "crm/internal/domains/lead/model"
	"crm/shared"
	"crm/shared/constant"
	"crm/shared/failure"
	"crm/shared/timezone"
	"fmt"
	"math"
	"net/url"
	"time"
)

// ParseFilter reads from, to and owner_id. The range defaults to the month of today.
func ParseFilter(query url.Values, today time.Time) (model.Filter, error) {
	filter := model.Filter{
		From:    timezone.StartOfMonth(today),
		OwnerID: query.Get(leadModel.FieldOwnerID),
	}
	filter.To = filter.From.AddDate(0, 1, -1)

	if value := query.Get(constant.RequestParamDateFrom); value != "" {
		from, err := timezone.ParseDate(value)
		if err != nil {
			return filter, failure.BadRequestFromString("from must match the format 2006-01-02")
		}

		filter.From = from
	}

	if value := query.Get(constant.RequestParamDateTo); value != "" {
		to, err := timezone.ParseDate(value)
		if err != nil {
			return filter, failure.BadRequestFromString("to must match the format 2006-01-02")
		}

		filter.To = to
	}

	if filter.To.Before(filter.From) {
		return filter, failure.BadRequestFromString("to must be on or after from")
	}

	if days := int(filter.To.Sub(filter.From).Hours() / 24); days > model.MaxRangeDays {
		return filter, failure.BadRequestFromString(fmt.Sprintf("the range must not exceed %d days", model.MaxRangeDays))
	}

	return filter, nil
}

type StatusSummary struct {
	Status string  `json:"status"`
	Count  int     `json:"count"`
	Budget float64 `json:"budget"`
}

type MonthCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

type MonthAmount struct {
	Month  string  `json:"month"`
	Amount float64 `json:"amount"`
}

type UpcomingEventResponse struct {
	EventDetailID string `json:"event_detail_id"`
	LeadID        string `json:"lead_id"`
	EventName     string `json:"event_name"`
	Status        string `json:"status"`
	EventDate     string `json:"event_date"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	FunctionRoom  string `json:"function_room"`
	Attendees     int    `json:"attendees"`
}

type DashboardResponse struct {
	From             string                  `json:"from"`
	To               string                  `json:"to"`
	OwnerID          string                  `json:"owner_id,omitempty"`
	TotalLeads       int                     `json:"total_leads"`
	TotalBudget      float64                 `json:"total_budget"`
	ConversionRate   float64                 `json:"conversion_rate"`
	Statuses         []StatusSummary         `json:"statuses"`
	LeadsPerMonth    []MonthCount            `json:"leads_per_month"`
	RevenuePerMonth  []MonthAmount           `json:"revenue_per_month"`
	UpcomingEvents   []UpcomingEventResponse `json:"upcoming_events"`
	OverdueFollowUps int                     `json:"overdue_follow_ups"`
}

// SetStatuses reports every status, including the ones without leads.
func (r *DashboardResponse) SetStatuses(totals []model.StatusTotal) {
	byStatus := make(map[string]model.StatusTotal, len(totals))
	for _, total := range totals {
		byStatus[total.Status] = total
	}

	r.Statuses = make([]StatusSummary, len(leadModel.Statuses))
	r.TotalLeads = 0
	r.TotalBudget = 0

	for i, status := range leadModel.Statuses {
		total := byStatus[string(status)]

		r.Statuses[i] = StatusSummary{Status: string(status), Count: total.Count, Budget: shared.RoundMoney(total.Budget)}
		r.TotalLeads += total.Count
		r.TotalBudget += total.Budget
	}

	r.TotalBudget = shared.RoundMoney(r.TotalBudget)

	confirmed := byStatus[string(leadModel.StatusConfirmed)].Count
	lost := byStatus[string(leadModel.StatusLost)].Count
	r.ConversionRate = math.Round(model.ConversionRate(confirmed, lost)*10000) / 10000
}

func (r *DashboardResponse) SetLeadsPerMonth(series []model.MonthValue) {
	r.LeadsPerMonth = make([]MonthCount, len(series))
	for i, month := range series {
		r.LeadsPerMonth[i] = MonthCount{Month: month.Month, Count: int(month.Value)}
	}
}

func (r *DashboardResponse) SetRevenuePerMonth(series []model.MonthValue) {
	r.RevenuePerMonth = make([]MonthAmount, len(series))
	for i, month := range series {
		r.RevenuePerMonth[i] = MonthAmount{Month: month.Month, Amount: month.Value}
	}
}

func (r *DashboardResponse) SetUpcomingEvents(events []model.UpcomingEvent) {
	r.UpcomingEvents = make([]UpcomingEventResponse, len(events))
	for i, event := range events {
		r.UpcomingEvents[i] = UpcomingEventResponse{
			EventDetailID: event.EventDetailID,
			LeadID:        event.LeadID,
			EventName:     event.EventName,
			Status:        event.Status,
			EventDate:     timezone.FormatDate(event.EventDate),
			StartTime:     event.StartTime,
			EndTime:       event.EndTime,
			FunctionRoom:  event.FunctionRoom,
			Attendees:     event.Attendees,
		}
	}
}
