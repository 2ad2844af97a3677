package model_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	eventDetailModel "crm/internal/domains/eventdetail/model"
	"crm/internal/domains/proposal/model"
)

func day(d int) time.Time {
	return time.Date(2026, 11, d, 0, 0, 0, 0, time.UTC)
}

func TestNumber(t *testing.T) {
	assert.Equal(t, "BQT-20261120-03", model.Number("BQT", time.Date(2026, 11, 20, 15, 4, 0, 0, time.UTC), 3))
	assert.Equal(t, "BQT-20261120-12", model.Number("BQT", day(20), 12))
	assert.Equal(t, "BQT-20261120-03.pdf", model.FileName("BQT-20261120-03"))
	assert.Equal(t, "BQT-20261120-03-p1.pdf", model.ObjectName("BQT-20261120-03", "p1"))
	assert.NotEqual(t, model.ObjectName("BQT-20261120-03", "p1"), model.ObjectName("BQT-20261120-03", "p2"))
}

func TestNewQuote(t *testing.T) {
	lines := []eventDetailModel.EventDetail{
		{ID: "dinner", EventDate: day(21), StartTime: "19:00", Attendees: 200, Rate: 45.5},
		{ID: "coffee", EventDate: day(20), StartTime: "10:00", Attendees: 50, Rate: 7.25},
		{ID: "lunch", EventDate: day(21), StartTime: "12:00", Attendees: 100, Rate: 20},
	}

	quote := model.NewQuote(lines, 10, 11)

	ids := [][]string{}
	for _, d := range quote.Days {
		dayIDs := []string{}
		for _, l := range d.Lines {
			dayIDs = append(dayIDs, l.ID)
		}

		ids = append(ids, dayIDs)
	}

	if diff := cmp.Diff([][]string{{"coffee"}, {"lunch", "dinner"}}, ids); diff != "" {
		t.Errorf("grouping mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, 362.5, quote.Days[0].Subtotal)
	assert.Equal(t, 11100.0, quote.Days[1].Subtotal)
	assert.Equal(t, 11462.5, quote.Subtotal)
	assert.Equal(t, 1146.25, quote.ServiceCharge)
	// (11462.5 + 1146.25) * 11% = 1386.9625
	assert.Equal(t, 1386.96, quote.Tax)
	assert.Equal(t, 13995.71, quote.Total)
	assert.Equal(t, 3, quote.Lines())

	assert.Equal(t, "dinner", lines[0].ID, "input order is left untouched")
}

func TestNewQuote_Empty(t *testing.T) {
	quote := model.NewQuote(nil, 10, 11)

	assert.Empty(t, quote.Days)
	assert.Zero(t, quote.Total)
}
