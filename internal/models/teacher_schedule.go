package models

import "time"

// TeacherSessionRow is a session of a teacher with every relation needed to
// place it on a calendar. Relation columns are nullable because they come from
// outer joins.
type TeacherSessionRow struct {
	ID              int64       `db:"id"`
	TimetableID     int64       `db:"timetable_id"`
	DurationMinutes int         `db:"duration_minutes"`
	SessionType     SessionType `db:"session_type"`
	Notes           *string     `db:"notes"`
	CourseID        *int64      `db:"course_id"`
	CourseName      *string     `db:"course_name"`
	RoomID          *int64      `db:"room_id"`
	RoomName        *string     `db:"room_name"`
	DayOfWeek       *string     `db:"day_of_week"`
	StartTime       *string     `db:"start_time"`
	EndTime         *string     `db:"end_time"`
	WeekID          *int64      `db:"week_id"`
	WeekStartDate   *time.Time  `db:"week_start_date"`
	PromotionID     *int64      `db:"promotion_id"`
	PromotionName   *string     `db:"promotion_name"`
}

// TeacherSession is a calendar-ready session.
type TeacherSession struct {
	ID              int64       `json:"id"`
	Title           string      `json:"title"`
	Start           time.Time   `json:"start"`
	End             time.Time   `json:"end"`
	DayOfWeek       string      `json:"day_of_week"`
	DurationMinutes int         `json:"duration_minutes"`
	SessionType     SessionType `json:"session_type"`
	Notes           *string     `json:"notes,omitempty"`
	CourseID        int64       `json:"course_id"`
	RoomID          int64       `json:"room_id"`
	RoomName        string      `json:"room_name"`
	PromotionID     int64       `json:"promotion_id"`
	PromotionName   string      `json:"promotion_name"`
	WeekID          int64       `json:"week_id"`
	IsCurrentWeek   bool        `json:"is_current_week"`
}

// TeacherScheduleStats are derived on every request.
type TeacherScheduleStats struct {
	TotalSessions       int     `json:"total_sessions"`
	CurrentWeekSessions int     `json:"current_week_sessions"`
	TodaySessions       int     `json:"today_sessions"`
	CompletionRate      float64 `json:"completion_rate"`
}

// TeacherSchedule is the personal read-only calendar of a teacher.
type TeacherSchedule struct {
	TeacherID   int64                `json:"teacher_id"`
	Sessions    []TeacherSession     `json:"sessions"`
	Stats       TeacherScheduleStats `json:"stats"`
	GeneratedAt time.Time            `json:"generated_at"`
}
