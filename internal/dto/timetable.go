package dto

// SessionInput is one entry of the desired state submitted to a sync call.
// A nil ID asks for a new session.
type SessionInput struct {
	ID              *int64  `json:"id,omitempty" validate:"omitempty,gt=0"`
	CourseID        int64   `json:"course_id" validate:"required,gt=0"`
	TeacherID       int64   `json:"teacher_id" validate:"required,gt=0"`
	RoomID          int64   `json:"room_id" validate:"required,gt=0"`
	TimeSlotID      int64   `json:"time_slot_id" validate:"required,gt=0"`
	DurationMinutes int     `json:"duration_minutes" validate:"required,min=1"`
	SessionType     string  `json:"session_type" validate:"required,session_type"`
	Notes           *string `json:"notes,omitempty" validate:"omitempty,max=500"`
}

// SyncSessionsRequest carries the complete desired session list of a timetable.
type SyncSessionsRequest struct {
	Sessions []SessionInput `json:"sessions" validate:"required,dive"`
}

// CheckOrCreateTimetableRequest identifies the (promotion, week) pair to open.
type CheckOrCreateTimetableRequest struct {
	PromotionID int64 `json:"promotion_id" validate:"required,gt=0"`
	WeekID      int64 `json:"week_id" validate:"required,gt=0"`
}
