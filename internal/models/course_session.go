package models

import "time"

// SessionType enumerates the kinds of course sessions.
type SessionType string

const (
	SessionLecture  SessionType = "Cours Magistral"
	SessionTutorial SessionType = "Travaux Dirigés"
	SessionLab      SessionType = "Travaux Pratiques"
	SessionExam     SessionType = "Examen"
)

// SessionTypes lists every accepted session type.
var SessionTypes = []SessionType{SessionLecture, SessionTutorial, SessionLab, SessionExam}

// Valid reports whether t is one of SessionTypes.
func (t SessionType) Valid() bool {
	for _, known := range SessionTypes {
		if t == known {
			return true
		}
	}
	return false
}

// CourseSession is one placed session inside a timetable.
type CourseSession struct {
	ID              int64       `db:"id" json:"id"`
	TimetableID     int64       `db:"timetable_id" json:"timetable_id"`
	CourseID        int64       `db:"course_id" json:"course_id"`
	TeacherID       int64       `db:"teacher_id" json:"teacher_id"`
	RoomID          int64       `db:"room_id" json:"room_id"`
	TimeSlotID      int64       `db:"time_slot_id" json:"time_slot_id"`
	DurationMinutes int         `db:"duration_minutes" json:"duration_minutes"`
	SessionType     SessionType `db:"session_type" json:"session_type"`
	Notes           *string     `db:"notes" json:"notes,omitempty"`
	CreatedAt       time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time   `db:"updated_at" json:"updated_at"`
}

// CourseSessionDetail joins a session with its course, teacher, room and slot.
type CourseSessionDetail struct {
	CourseSession
	CourseName  string `db:"course_name" json:"course_name"`
	TeacherName string `db:"teacher_name" json:"teacher_name"`
	RoomName    string `db:"room_name" json:"room_name"`
	DayOfWeek   string `db:"day_of_week" json:"day_of_week"`
	StartTime   string `db:"start_time" json:"start_time"`
	EndTime     string `db:"end_time" json:"end_time"`
}

// ConflictCandidate is a session about to be written, checked against a week.
// ExcludeSessionID is the candidate's own id when it updates an existing row.
type ConflictCandidate struct {
	TimeSlotID       int64
	TeacherID        int64
	RoomID           int64
	WeekID           int64
	ExcludeSessionID *int64
}

// SlotOccupant is a committed session holding a time slot in a given week.
type SlotOccupant struct {
	SessionID     int64  `db:"id"`
	TimetableID   int64  `db:"timetable_id"`
	PromotionName string `db:"promotion_name"`
	TeacherID     int64  `db:"teacher_id"`
	TeacherName   string `db:"teacher_name"`
	RoomID        int64  `db:"room_id"`
	RoomName      string `db:"room_name"`
	TimeSlotID    int64  `db:"time_slot_id"`
	DayOfWeek     string `db:"day_of_week"`
	StartTime     string `db:"start_time"`
	EndTime       string `db:"end_time"`
}

// ConflictDimension names which resource clashed.
type ConflictDimension string

const (
	ConflictTeacher ConflictDimension = "TEACHER"
	ConflictRoom    ConflictDimension = "ROOM"
	ConflictBoth    ConflictDimension = "TEACHER_AND_ROOM"
)

// SessionConflict describes a clash between an incoming session and an occupant.
type SessionConflict struct {
	Dimension         ConflictDimension `json:"dimension"`
	IncomingIndex     int               `json:"incoming_index"`
	IncomingSessionID *int64            `json:"incoming_session_id,omitempty"`
	ExistingSessionID *int64            `json:"existing_session_id,omitempty"`
	ExistingIndex     *int              `json:"existing_index,omitempty"`
	TimetableID       int64             `json:"timetable_id,omitempty"`
	PromotionName     string            `json:"promotion_name,omitempty"`
	TeacherID         int64             `json:"teacher_id"`
	TeacherName       string            `json:"teacher_name,omitempty"`
	RoomID            int64             `json:"room_id"`
	RoomName          string            `json:"room_name,omitempty"`
	TimeSlotID        int64             `json:"time_slot_id"`
	TimeSlot          string            `json:"time_slot,omitempty"`
}

// SessionConflictError is returned when a sync batch would double-book a resource.
type SessionConflictError struct {
	Message  string          `json:"message"`
	Conflict SessionConflict `json:"conflict"`
}

// Error implements the error interface for conflict errors.
func (e *SessionConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}
