package repository_test

import (
	"context"
	"crm/infras/otel/mocks"
	"crm/infras/postgres"
	"crm/internal/domains/dashboard/model"
	"crm/internal/domains/dashboard/repository"
	"crm/shared/timezone"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE leads (
	id         TEXT PRIMARY KEY,
	event_name TEXT NOT NULL,
	status     TEXT NOT NULL,
	owner_id   TEXT NOT NULL,
	budget     REAL NOT NULL,
	created_at TIMESTAMP NOT NULL
);
CREATE TABLE event_details (
	id            TEXT PRIMARY KEY,
	lead_id       TEXT NOT NULL,
	event_date    DATE NOT NULL,
	start_time    TEXT NOT NULL,
	end_time      TEXT NOT NULL,
	function_room TEXT NOT NULL,
	attendees     INTEGER NOT NULL,
	rate          REAL NOT NULL
);
CREATE TABLE activities (
	id          TEXT PRIMARY KEY,
	lead_id     TEXT NOT NULL,
	assigned_to TEXT NOT NULL,
	completed   BOOLEAN NOT NULL,
	due_at      TIMESTAMP
);`

func date(m time.Month, d int) time.Time {
	return time.Date(2026, m, d, 0, 0, 0, 0, time.UTC)
}

func newRepository(t *testing.T) repository.Dashboard {
	t.Helper()

	sqlx.BindDriver("sqlite", sqlx.QUESTION)

	db, err := sqlx.Open("sqlite", ":memory:")
	require.NoError(t, err)

	db.SetMaxOpenConns(1)

	_, err = db.Exec(schema)
	require.NoError(t, err)

	t.Cleanup(func() { _ = db.Close() })

	seed(t, db)

	return repository.New(&postgres.Connection{Read: db, Write: db}, mocks.NewOtel())
}

func seed(t *testing.T, db *sqlx.DB) {
	t.Helper()

	leads := []struct {
		id, status, owner string
		budget            float64
		created           time.Time
	}{
		{"l1", "confirmed", "u1", 5000, date(3, 2).Add(9 * time.Hour)},
		{"l2", "tentative", "u1", 1200, date(3, 20).Add(15 * time.Hour)},
		{"l3", "lost", "u2", 800, date(4, 1).Add(8 * time.Hour)},
		{"l4", "confirmed", "u2", 3000, date(5, 10)},
		{"l5", "tentative", "u1", 999, date(2, 27)},
		{"l6", "tentative", "u3", 400, time.Date(2026, 10, 31, 20, 0, 0, 0, time.UTC)},
	}
	for _, l := range leads {
		_, err := db.Exec(`INSERT INTO leads (id, event_name, status, owner_id, budget, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
			l.id, "Event "+l.id, l.status, l.owner, l.budget, l.created)
		require.NoError(t, err)
	}

	details := []struct {
		id, lead  string
		date      time.Time
		start     string
		attendees int
		rate      float64
	}{
		{"d1", "l1", date(4, 15), "09:00", 100, 25},
		{"d2", "l1", date(4, 16), "18:00", 80, 40},
		{"d3", "l4", date(5, 1), "10:00", 50, 30},
		{"d4", "l2", date(4, 15), "08:00", 20, 10},
		{"d5", "l3", date(4, 15), "07:00", 10, 10},
	}
	for _, d := range details {
		_, err := db.Exec(`INSERT INTO event_details (id, lead_id, event_date, start_time, end_time, function_room, attendees, rate) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			d.id, d.lead, d.date, d.start, "23:00", "Harbour Hall", d.attendees, d.rate)
		require.NoError(t, err)
	}

	due := date(4, 10)
	later := date(6, 1)
	activities := []struct {
		id, assignee string
		completed    bool
		due          *time.Time
	}{
		{"a1", "u1", false, &due},
		{"a2", "u2", false, &due},
		{"a3", "u1", true, &due},
		{"a4", "u1", false, &later},
		{"a5", "u1", false, nil},
	}
	for _, a := range activities {
		_, err := db.Exec(`INSERT INTO activities (id, lead_id, assigned_to, completed, due_at) VALUES (?, ?, ?, ?, ?)`,
			a.id, "l1", a.assignee, a.completed, a.due)
		require.NoError(t, err)
	}
}

func TestStatusTotals(t *testing.T) {
	inZone(t, "UTC")
	repo := newRepository(t)

	totals, err := repo.StatusTotals(context.Background(), model.Filter{From: date(3, 1), To: date(4, 30)})
	require.NoError(t, err)

	byStatus := map[string]model.StatusTotal{}
	for _, total := range totals {
		byStatus[total.Status] = total
	}

	want := map[string]model.StatusTotal{
		"confirmed": {Status: "confirmed", Count: 1, Budget: 5000},
		"tentative": {Status: "tentative", Count: 1, Budget: 1200},
		"lost":      {Status: "lost", Count: 1, Budget: 800},
	}
	if diff := cmp.Diff(want, byStatus); diff != "" {
		t.Errorf("StatusTotals() mismatch (-want +got):\n%s", diff)
	}

	owned, err := repo.StatusTotals(context.Background(), model.Filter{From: date(3, 1), To: date(4, 30), OwnerID: "u2"})
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.Equal(t, "lost", owned[0].Status)
}

func inZone(t *testing.T, name string) {
	t.Helper()

	loc, err := time.LoadLocation(name)
	require.NoError(t, err)

	previous := timezone.Location()
	timezone.SetLocation(loc)
	t.Cleanup(func() { timezone.SetLocation(previous) })
}

func TestCreatedAt(t *testing.T) {
	inZone(t, "UTC")
	repo := newRepository(t)

	// the upper bound is inclusive of the whole last day
	stamps, err := repo.CreatedAt(context.Background(), model.Filter{From: date(3, 1), To: date(3, 20)})
	require.NoError(t, err)

	assert.Len(t, stamps, 2)
}

func TestCreatedAtUsesHotelMidnight(t *testing.T) {
	inZone(t, "Asia/Jakarta")
	repo := newRepository(t)

	// l6 was created at 03:00 on Nov 1 hotel time
	october, err := repo.CreatedAt(context.Background(), model.Filter{From: date(10, 1), To: date(10, 31), OwnerID: "u3"})
	require.NoError(t, err)
	assert.Empty(t, october)

	november := model.Filter{From: date(11, 1), To: date(11, 30), OwnerID: "u3"}

	stamps, err := repo.CreatedAt(context.Background(), november)
	require.NoError(t, err)
	require.Len(t, stamps, 1)

	series := model.CountByMonth(november.From, november.To, stamps)
	assert.Equal(t, []model.MonthValue{{Month: "2026-11", Value: 1}}, series)

	totals, err := repo.StatusTotals(context.Background(), november)
	require.NoError(t, err)
	require.Len(t, totals, 1)
	assert.Equal(t, 1, totals[0].Count)
}

func TestConfirmedRevenue(t *testing.T) {
	repo := newRepository(t)

	days, err := repo.ConfirmedRevenue(context.Background(), model.Filter{From: date(4, 1), To: date(5, 31)})
	require.NoError(t, err)

	want := []model.DayAmount{
		{Date: date(4, 15), Amount: 2500},
		{Date: date(4, 16), Amount: 3200},
		{Date: date(5, 1), Amount: 1500},
	}
	if diff := cmp.Diff(want, days); diff != "" {
		t.Errorf("ConfirmedRevenue() mismatch (-want +got):\n%s", diff)
	}
}

func TestUpcomingEvents(t *testing.T) {
	repo := newRepository(t)

	events, err := repo.UpcomingEvents(context.Background(), date(4, 15), date(4, 29), "", 10)
	require.NoError(t, err)

	ids := make([]string, len(events))
	for i, e := range events {
		ids[i] = e.EventDetailID
	}

	// d5 belongs to a lost lead
	assert.Equal(t, []string{"d4", "d1", "d2"}, ids)
	assert.Equal(t, "Event l2", events[0].EventName)

	limited, err := repo.UpcomingEvents(context.Background(), date(4, 15), date(4, 29), "", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestOverdueFollowUps(t *testing.T) {
	repo := newRepository(t)
	now := date(5, 1)

	count, err := repo.OverdueFollowUps(context.Background(), now, "")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = repo.OverdueFollowUps(context.Background(), now, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
