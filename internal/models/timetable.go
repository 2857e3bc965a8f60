package models

import "time"

// Timetable is the schedule of one promotion for one week, unique per pair.
type Timetable struct {
	ID          int64     `db:"id" json:"id"`
	PromotionID int64     `db:"promotion_id" json:"promotion_id"`
	WeekID      int64     `db:"week_id" json:"week_id"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// TimetableDetail is a timetable with its promotion and week loaded.
type TimetableDetail struct {
	Timetable
	Promotion Promotion `db:"promotion" json:"promotion"`
	Week      Week      `db:"week" json:"week"`
}
