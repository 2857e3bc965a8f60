package models

// Course is a teachable subject with at most one assigned teacher.
type Course struct {
	ID          int64   `db:"id" json:"id"`
	Name        string  `db:"name" json:"name"`
	Description *string `db:"description" json:"description,omitempty"`
	Level       Level   `db:"level" json:"level"`
	TeacherID   *int64  `db:"user_id" json:"user_id,omitempty"`
}
