package models

import "time"

// Week is an immutable calendar week. At most one row has IsCurrent set.
type Week struct {
	ID        int64     `db:"id" json:"id"`
	WeekID    int       `db:"week_id" json:"week_id"`
	Year      int       `db:"year" json:"year"`
	StartDate time.Time `db:"start_date" json:"start_date"`
	EndDate   time.Time `db:"end_date" json:"end_date"`
	IsCurrent bool      `db:"is_current" json:"is_current"`
}
