package pdf

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	eventDetailModel "crm/internal/domains/eventdetail/model"
	"crm/internal/domains/proposal/model"
)

const testTemplate = `
hotel:
  name: Hotel Test
  address: Jl. Test 1
  email: events@hotel.test
intro: Thank you for your enquiry.
terms:
  - Deposit of 30% is due on confirmation.
  - Café and pâtisserie items are charged per piece.
signature:
  name: Sales Office
`

func testDocument(lines int) Document {
	details := make([]eventDetailModel.EventDetail, 0, lines)
	for i := range lines {
		details = append(details, eventDetailModel.EventDetail{
			ID:           fmt.Sprintf("d-%d", i),
			EventDate:    time.Date(2026, 11, 20+i%3, 0, 0, 0, 0, time.UTC),
			StartTime:    fmt.Sprintf("%02d:00", 8+i%10),
			EndTime:      fmt.Sprintf("%02d:30", 8+i%10),
			FunctionRoom: "Grand Ballroom with a very long name that will not fit the column",
			SetupStyle:   eventDetailModel.SetupBanquet,
			Meal:         eventDetailModel.MealCoffeeBreak,
			Attendees:    100 + i,
			Rate:         12.5,
		})
	}

	return Document{
		Number:     "BQT-20261019-01",
		IssuedAt:   time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC),
		ValidUntil: time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC),
		Client:     Client{Name: "Budi Santoso", Organization: "PT Maju", Email: "budi@maju.test"},
		Event: Event{
			Name:      "Annual Summit",
			Type:      "conference",
			Arrival:   time.Date(2026, 11, 20, 0, 0, 0, 0, time.UTC),
			Departure: time.Date(2026, 11, 22, 0, 0, 0, 0, time.UTC),
			Nights:    2,
			Attendees: 120,
			Currency:  "USD",
		},
		Quote: model.NewQuote(details, 10, 11),
	}
}

func newTestRenderer(t *testing.T) *rendererImpl {
	t.Helper()

	tmpl, err := ParseTemplate([]byte(testTemplate))
	require.NoError(t, err)

	return &rendererImpl{tmpl: tmpl}
}

func TestRender_SinglePage(t *testing.T) {
	out, err := newTestRenderer(t).Render(testDocument(1))
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.Contains(t, string(out), "Page 1 of 1")
	assert.NotContains(t, string(out), "Page 2 of")
	assert.Contains(t, string(out), "Terms & Conditions")
	assert.Contains(t, string(out), "(Nights)")
}

func TestRender_DayEventHasNoNights(t *testing.T) {
	doc := testDocument(1)
	doc.Event.Departure = doc.Event.Arrival
	doc.Event.Nights = 0

	out, err := newTestRenderer(t).Render(doc)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "(Nights)")
}

func TestRender_PaginatesLongTables(t *testing.T) {
	out, err := newTestRenderer(t).Render(testDocument(90))
	require.NoError(t, err)

	content := string(out)

	pages := bytes.Count(out, []byte("/Type /Page\n"))
	require.Greater(t, pages, 2)

	assert.Contains(t, content, fmt.Sprintf("Page %d of %d", pages, pages))
	// the table header is repeated on every page holding table rows
	assert.GreaterOrEqual(t, bytes.Count(out, []byte("(Function Room)")), pages-1)
	assert.NotContains(t, content, "{nb}")
}

func TestRender_Draft(t *testing.T) {
	doc := testDocument(1)
	doc.Draft = true

	out, err := newTestRenderer(t).Render(doc)
	require.NoError(t, err)
	assert.Contains(t, string(out), `Banquet Proposal \(Draft\)`)
}

func TestParseTemplate(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		tmpl, err := ParseTemplate([]byte(testTemplate))
		require.NoError(t, err)

		assert.Equal(t, "Banquet Proposal", tmpl.Title)
		assert.Equal(t, [3]int{31, 56, 100}, tmpl.Accent)
		assert.Len(t, tmpl.Terms, 2)
	})

	t.Run("hotel name required", func(t *testing.T) {
		_, err := ParseTemplate([]byte("title: x"))
		assert.Error(t, err)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		_, err := ParseTemplate([]byte("hotel: ["))
		assert.Error(t, err)
	})
}

func TestLoadTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "proposal.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testTemplate), 0o600))

	tmpl, err := LoadTemplate(path)
	require.NoError(t, err)
	assert.Equal(t, "Hotel Test", tmpl.Hotel.Name)

	_, err = LoadTemplate(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestMoney(t *testing.T) {
	cases := map[float64]string{
		0:          "0.00",
		12.5:       "12.50",
		1234.5:     "1,234.50",
		1234567.89: "1,234,567.89",
		-999999.99: "-999,999.99",
	}

	for amount, want := range cases {
		assert.Equal(t, want, money(amount))
	}
}

func TestPercent(t *testing.T) {
	assert.Equal(t, "10", percent(10))
	assert.Equal(t, "12.5", percent(12.5))
	assert.Equal(t, "0", percent(0))
}
