package model

import (
	eventDetailModel "crm/internal/domains/eventdetail/model"
	"crm/shared"
	"slices"
	"time"
)

// Day groups the event lines of one calendar date.
type Day struct {
	Date     time.Time
	Lines    []eventDetailModel.EventDetail
	Subtotal float64
}

// Quote holds the priced lines of a proposal. Service charge applies to the
// subtotal and tax applies to the subtotal plus service charge.
type Quote struct {
	Days                 []Day
	Subtotal             float64
	ServiceChargePercent float64
	ServiceCharge        float64
	TaxPercent           float64
	Tax                  float64
	Total                float64
}

func NewQuote(lines []eventDetailModel.EventDetail, serviceChargePercent, taxPercent float64) Quote {
	sorted := slices.Clone(lines)
	slices.SortStableFunc(sorted, eventDetailModel.Compare)

	quote := Quote{
		ServiceChargePercent: serviceChargePercent,
		TaxPercent:           taxPercent,
	}

	for _, line := range sorted {
		if n := len(quote.Days); n == 0 || !quote.Days[n-1].Date.Equal(line.EventDate) {
			quote.Days = append(quote.Days, Day{Date: line.EventDate})
		}

		day := &quote.Days[len(quote.Days)-1]
		day.Lines = append(day.Lines, line)
		day.Subtotal = shared.RoundMoney(day.Subtotal + line.LineTotal())
	}

	for _, day := range quote.Days {
		quote.Subtotal += day.Subtotal
	}

	quote.Subtotal = shared.RoundMoney(quote.Subtotal)
	quote.ServiceCharge = shared.RoundMoney(quote.Subtotal * serviceChargePercent / 100)
	quote.Tax = shared.RoundMoney((quote.Subtotal + quote.ServiceCharge) * taxPercent / 100)
	quote.Total = shared.RoundMoney(quote.Subtotal + quote.ServiceCharge + quote.Tax)

	return quote
}

// Lines counts the priced lines across all days.
func (q Quote) Lines() int {
	count := 0
	for _, day := range q.Days {
		count += len(day.Lines)
	}

	return count
}
