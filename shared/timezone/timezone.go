// Package timezone keeps wall clock times in the hotel's zone (APP_TIMEZONE)
// and calendar dates as zone-less UTC midnights, the way DATE columns scan.
package timezone

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"crm/config"
)

var (
	mu       sync.RWMutex
	location *time.Location
)

func load() *time.Location {
	name := config.Get().App.Timezone
	if name == "" {
		log.Warn().Msg("No timezone configured, using UTC")

		return time.UTC
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Error().Err(err).Str("timezone", name).Msg("Unknown timezone, using UTC. Use IANA names like Asia/Jakarta")

		return time.UTC
	}

	log.Info().Str("timezone", loc.String()).Msg("Application timezone initialized")

	return loc
}

// Location returns the application zone, loading it from config on first use.
func Location() *time.Location {
	mu.RLock()
	loc := location
	mu.RUnlock()

	if loc != nil {
		return loc
	}

	mu.Lock()
	defer mu.Unlock()

	if location == nil {
		location = load()
	}

	return location
}

// SetLocation overrides the application zone.
func SetLocation(loc *time.Location) {
	mu.Lock()
	defer mu.Unlock()

	location = loc
}

func Now() time.Time {
	return time.Now().In(Location())
}

func ToAppTime(t time.Time) time.Time {
	return t.In(Location())
}

// Format formats t in the application timezone.
func Format(t time.Time, layout string) string {
	return ToAppTime(t).Format(layout)
}

// ParseDate parses a calendar date (2006-01-02) as UTC midnight.
func ParseDate(value string) (time.Time, error) {
	return time.Parse(time.DateOnly, value)
}

// FormatDate formats a calendar date without converting it to the app timezone.
func FormatDate(t time.Time) string {
	return t.Format(time.DateOnly)
}

// Date drops the clock of t as read in the application timezone.
func Date(t time.Time) time.Time {
	t = ToAppTime(t)

	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Today is the hotel's current calendar date.
func Today() time.Time {
	return Date(time.Now())
}

// StartOfMonth returns the first day of the month of the calendar date d.
func StartOfMonth(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// Midnight is the instant the calendar date d starts in the application
// timezone, for comparing dates against timestamp columns.
func Midnight(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, Location())
}
