package model

import (
	"crm/shared"
	"crm/shared/timezone"
	"time"
)

const (
	EntityName = "dashboard"

	// MaxRangeDays bounds the span of a dashboard query.
	MaxRangeDays = 366
	// UpcomingDays is the look-ahead window of upcoming events.
	UpcomingDays = 14
	// UpcomingLimit caps the number of upcoming events returned.
	UpcomingLimit = 50

	monthLayout = "2006-01"
)

// Filter scopes the aggregation. From and To are calendar dates, both inclusive.
type Filter struct {
	From    time.Time
	To      time.Time
	OwnerID string
}

// Since is the instant From starts at the hotel.
func (f Filter) Since() time.Time {
	return timezone.Midnight(f.From)
}

// Until is the exclusive upper bound of the range: the hotel's midnight after To.
func (f Filter) Until() time.Time {
	return timezone.Midnight(f.To.AddDate(0, 0, 1))
}

type StatusTotal struct {
	Status string  `db:"status"`
	Count  int     `db:"count"`
	Budget float64 `db:"budget"`
}

type DayAmount struct {
	Date   time.Time `db:"event_date"`
	Amount float64   `db:"amount"`
}

type UpcomingEvent struct {
	EventDetailID string    `db:"event_detail_id"`
	LeadID        string    `db:"lead_id"`
	EventName     string    `db:"event_name"`
	Status        string    `db:"status"`
	EventDate     time.Time `db:"event_date"`
	StartTime     string    `db:"start_time"`
	EndTime       string    `db:"end_time"`
	FunctionRoom  string    `db:"function_room"`
	Attendees     int       `db:"attendees"`
}

// MonthValue is one zero-filled bucket of a monthly series.
type MonthValue struct {
	Month string
	Value float64
}

// Months lists the first day of every month touched by from..to.
func Months(from, to time.Time) []time.Time {
	start := time.Date(from.Year(), from.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(to.Year(), to.Month(), 1, 0, 0, 0, 0, time.UTC)

	var months []time.Time
	for m := start; !m.After(end); m = m.AddDate(0, 1, 0) {
		months = append(months, m)
	}

	return months
}

func MonthKey(t time.Time) string {
	return t.Format(monthLayout)
}

// CountByMonth buckets timestamps per month of the hotel's calendar, emitting
// every month of the range.
func CountByMonth(from, to time.Time, stamps []time.Time) []MonthValue {
	counts := make(map[string]float64, len(stamps))
	for _, t := range stamps {
		counts[MonthKey(timezone.ToAppTime(t))]++
	}

	return fill(from, to, counts)
}

// SumByMonth folds daily amounts into months, emitting every month of the range.
func SumByMonth(from, to time.Time, days []DayAmount) []MonthValue {
	sums := make(map[string]float64, len(days))
	for _, d := range days {
		sums[MonthKey(d.Date)] += d.Amount
	}

	series := fill(from, to, sums)
	for i := range series {
		series[i].Value = shared.RoundMoney(series[i].Value)
	}

	return series
}

func fill(from, to time.Time, values map[string]float64) []MonthValue {
	months := Months(from, to)

	series := make([]MonthValue, len(months))
	for i, m := range months {
		key := MonthKey(m)
		series[i] = MonthValue{Month: key, Value: values[key]}
	}

	return series
}

// ConversionRate is confirmed / (confirmed + lost), zero when nothing is decided.
func ConversionRate(confirmed, lost int) float64 {
	decided := confirmed + lost
	if decided == 0 {
		return 0
	}

	return float64(confirmed) / float64(decided)
}
