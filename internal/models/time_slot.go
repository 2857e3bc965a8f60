package models

import (
	"fmt"
	"strings"
	"time"
)

// TimeSlot is a recurring weekly slot. DayOfWeek is a weekday name, not a date,
// so the same slot id is reused across every week.
type TimeSlot struct {
	ID              int64  `db:"id" json:"id"`
	DayOfWeek       string `db:"day_of_week" json:"day_of_week"`
	StartTime       string `db:"start_time" json:"start_time"`
	EndTime         string `db:"end_time" json:"end_time"`
	DurationMinutes int    `db:"duration_minutes" json:"duration_minutes"`
}

// Label renders the slot for human-facing messages, e.g. "Lundi 08:00-10:00".
func (t TimeSlot) Label() string {
	return fmt.Sprintf("%s %s-%s", t.DayOfWeek, shortClock(t.StartTime), shortClock(t.EndTime))
}

var weekdayNames = map[string]time.Weekday{
	"lundi":     time.Monday,
	"mardi":     time.Tuesday,
	"mercredi":  time.Wednesday,
	"jeudi":     time.Thursday,
	"vendredi":  time.Friday,
	"samedi":    time.Saturday,
	"dimanche":  time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	"sunday":    time.Sunday,
}

// ParseWeekday maps a French or English day name to a time.Weekday.
func ParseWeekday(name string) (time.Weekday, bool) {
	day, ok := weekdayNames[strings.ToLower(strings.TrimSpace(name))]
	return day, ok
}

// ParseClock parses "15:04:05", "15:04" or a timestamp whose clock part is
// used (lib/pq scans TIME columns as "0000-01-01T15:04:05Z"), and returns the
// offset from midnight.
func ParseClock(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{"15:04:05", "15:04", "15:04:05.999999999", time.RFC3339Nano} {
		if t, err := time.Parse(layout, raw); err == nil {
			return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute + time.Duration(t.Second())*time.Second, nil
		}
	}
	return 0, fmt.Errorf("invalid clock value %q", raw)
}

func shortClock(raw string) string {
	d, err := ParseClock(raw)
	if err != nil {
		return raw
	}
	return fmt.Sprintf("%02d:%02d", int(d/time.Hour), int(d%time.Hour/time.Minute))
}
