package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

// sessionWeekLockNamespace occupies the high 32 bits of week lock keys.
const sessionWeekLockNamespace int64 = 7301

// lib/pq decodes TIME columns as timestamps on year 0; render them as clocks instead.
const slotClockColumns = `to_char(ts.start_time, 'HH24:MI:SS') AS start_time, to_char(ts.end_time, 'HH24:MI:SS') AS end_time`

// CourseSessionRepository persists course sessions.
type CourseSessionRepository struct {
	db *sqlx.DB
}

// NewCourseSessionRepository constructs the repository.
func NewCourseSessionRepository(db *sqlx.DB) *CourseSessionRepository {
	return &CourseSessionRepository{db: db}
}

func (r *CourseSessionRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// LockWeek takes a transaction-scoped advisory lock serializing writers of one week.
func (r *CourseSessionRepository) LockWeek(ctx context.Context, exec sqlx.ExtContext, weekID int64) error {
	if _, err := r.exec(exec).ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, weekLockKey(weekID)); err != nil {
		return fmt.Errorf("lock week %d: %w", weekID, err)
	}
	return nil
}

// weekLockKey places the week id in the low 32 bits of a namespaced bigint
// key. Keys are distinct for every id below 2^32; larger ids are folded.
func weekLockKey(weekID int64) int64 {
	return sessionWeekLockNamespace<<32 | (weekID^(weekID>>32))&0xFFFFFFFF
}

// ListIDsByTimetable returns ids of the sessions owned by a timetable, locking the rows.
func (r *CourseSessionRepository) ListIDsByTimetable(ctx context.Context, exec sqlx.ExtContext, timetableID int64) ([]int64, error) {
	const query = `SELECT id FROM course_sessions WHERE timetable_id = $1 ORDER BY id FOR UPDATE`
	var ids []int64
	if err := sqlx.SelectContext(ctx, r.exec(exec), &ids, query, timetableID); err != nil {
		return nil, fmt.Errorf("list session ids: %w", err)
	}
	return ids, nil
}

// DeleteByIDs removes the given sessions of a timetable.
func (r *CourseSessionRepository) DeleteByIDs(ctx context.Context, exec sqlx.ExtContext, timetableID int64, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	const query = `DELETE FROM course_sessions WHERE timetable_id = $1 AND id = ANY($2)`
	if _, err := r.exec(exec).ExecContext(ctx, query, timetableID, pq.Array(ids)); err != nil {
		return fmt.Errorf("delete sessions: %w", err)
	}
	return nil
}

// ListSlotOccupants returns committed sessions using a time slot in a week,
// optionally skipping one session id.
func (r *CourseSessionRepository) ListSlotOccupants(ctx context.Context, exec sqlx.ExtContext, weekID, timeSlotID int64, excludeID *int64) ([]models.SlotOccupant, error) {
	const query = `
SELECT cs.id, cs.timetable_id, p.name AS promotion_name, cs.teacher_id, u.full_name AS teacher_name,
       cs.room_id, c.name AS room_name, cs.time_slot_id, ts.day_of_week,
       ` + slotClockColumns + `
FROM course_sessions cs
JOIN timetables t ON t.id = cs.timetable_id
JOIN promotions p ON p.id = t.promotion_id
JOIN users u ON u.id = cs.teacher_id
JOIN classrooms c ON c.id = cs.room_id
JOIN time_slots ts ON ts.id = cs.time_slot_id
WHERE cs.time_slot_id = $1 AND t.week_id = $2 AND ($3::bigint IS NULL OR cs.id <> $3)
ORDER BY cs.id`
	var occupants []models.SlotOccupant
	if err := sqlx.SelectContext(ctx, r.exec(exec), &occupants, query, timeSlotID, weekID, excludeID); err != nil {
		return nil, fmt.Errorf("list slot occupants: %w", err)
	}
	return occupants, nil
}

// Create inserts a session and fills its generated id.
func (r *CourseSessionRepository) Create(ctx context.Context, exec sqlx.ExtContext, session *models.CourseSession) error {
	now := time.Now().UTC()
	session.CreatedAt = now
	session.UpdatedAt = now

	const query = `
INSERT INTO course_sessions (timetable_id, course_id, teacher_id, room_id, time_slot_id, duration_minutes, session_type, notes, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING id`
	row := r.exec(exec).QueryRowxContext(ctx, query,
		session.TimetableID, session.CourseID, session.TeacherID, session.RoomID, session.TimeSlotID,
		session.DurationMinutes, session.SessionType, session.Notes, session.CreatedAt, session.UpdatedAt)
	if err := row.Scan(&session.ID); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// Update rewrites a session in place. It returns sql.ErrNoRows when the
// session does not belong to the timetable.
func (r *CourseSessionRepository) Update(ctx context.Context, exec sqlx.ExtContext, session *models.CourseSession) error {
	session.UpdatedAt = time.Now().UTC()
	const query = `
UPDATE course_sessions
SET course_id = $1, teacher_id = $2, room_id = $3, time_slot_id = $4, duration_minutes = $5, session_type = $6, notes = $7, updated_at = $8
WHERE id = $9 AND timetable_id = $10`
	result, err := r.exec(exec).ExecContext(ctx, query,
		session.CourseID, session.TeacherID, session.RoomID, session.TimeSlotID, session.DurationMinutes,
		session.SessionType, session.Notes, session.UpdatedAt, session.ID, session.TimetableID)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("session rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListDetailedByTimetable returns the sessions of a timetable joined with course, teacher, room and slot.
func (r *CourseSessionRepository) ListDetailedByTimetable(ctx context.Context, timetableID int64) ([]models.CourseSessionDetail, error) {
	const query = `
SELECT cs.id, cs.timetable_id, cs.course_id, cs.teacher_id, cs.room_id, cs.time_slot_id, cs.duration_minutes,
       cs.session_type, cs.notes, cs.created_at, cs.updated_at,
       co.name AS course_name, u.full_name AS teacher_name, c.name AS room_name,
       ts.day_of_week, ` + slotClockColumns + `
FROM course_sessions cs
JOIN courses co ON co.id = cs.course_id
JOIN users u ON u.id = cs.teacher_id
JOIN classrooms c ON c.id = cs.room_id
JOIN time_slots ts ON ts.id = cs.time_slot_id
WHERE cs.timetable_id = $1
ORDER BY cs.id`
	sessions := make([]models.CourseSessionDetail, 0)
	if err := r.db.SelectContext(ctx, &sessions, query, timetableID); err != nil {
		return nil, fmt.Errorf("list timetable sessions: %w", err)
	}
	return sessions, nil
}

// ListForTeacher returns every session taught by a teacher with its calendar relations.
func (r *CourseSessionRepository) ListForTeacher(ctx context.Context, teacherID int64) ([]models.TeacherSessionRow, error) {
	const query = `
SELECT cs.id, cs.timetable_id, cs.duration_minutes, cs.session_type, cs.notes,
       co.id AS course_id, co.name AS course_name, c.id AS room_id, c.name AS room_name,
       ts.day_of_week, ` + slotClockColumns + `,
       w.id AS week_id, w.start_date AS week_start_date,
       p.id AS promotion_id, p.name AS promotion_name
FROM course_sessions cs
LEFT JOIN courses co ON co.id = cs.course_id
LEFT JOIN classrooms c ON c.id = cs.room_id
LEFT JOIN time_slots ts ON ts.id = cs.time_slot_id
LEFT JOIN timetables t ON t.id = cs.timetable_id
LEFT JOIN weeks w ON w.id = t.week_id
LEFT JOIN promotions p ON p.id = t.promotion_id
WHERE cs.teacher_id = $1
ORDER BY w.start_date ASC, cs.id ASC`
	var rows []models.TeacherSessionRow
	if err := r.db.SelectContext(ctx, &rows, query, teacherID); err != nil {
		return nil, fmt.Errorf("list teacher sessions: %w", err)
	}
	return rows, nil
}
