package models

import "time"

// Level enumerates academic levels shared by promotions and courses.
type Level string

const (
	Level1 Level = "Niveau 1"
	Level2 Level = "Niveau 2"
	Level3 Level = "Niveau 3"
	Level4 Level = "Niveau 4"
	Level5 Level = "Niveau 5"
)

// Promotion is a student cohort. Deleting one cascades to its timetables.
type Promotion struct {
	ID           int64     `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Level        Level     `db:"level" json:"level"`
	StudentCount int       `db:"student_count" json:"student_count"`
	Published    bool      `db:"published" json:"published"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
