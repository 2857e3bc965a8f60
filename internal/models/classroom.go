package models

// ClassroomType enumerates room kinds.
type ClassroomType string

const (
	ClassroomAmphitheater ClassroomType = "Amphithéâtre"
	ClassroomLecture      ClassroomType = "Salle de cours"
	ClassroomLab          ClassroomType = "Laboratoire"
)

// Classroom is a bookable room.
type Classroom struct {
	ID        int64         `db:"id" json:"id"`
	Name      string        `db:"name" json:"name"`
	Capacity  int           `db:"capacity" json:"capacity"`
	Type      ClassroomType `db:"type" json:"type"`
	Available bool          `db:"available" json:"available"`
}
