package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

// TimetableRepository persists timetable containers.
type TimetableRepository struct {
	db *sqlx.DB
}

// NewTimetableRepository constructs the repository.
func NewTimetableRepository(db *sqlx.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

// FindByID returns a timetable or sql.ErrNoRows.
func (r *TimetableRepository) FindByID(ctx context.Context, id int64) (*models.Timetable, error) {
	const query = `SELECT id, promotion_id, week_id, created_at, updated_at FROM timetables WHERE id = $1`
	var timetable models.Timetable
	if err := r.db.GetContext(ctx, &timetable, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find timetable: %w", err)
	}
	return &timetable, nil
}

// FindDetail returns a timetable joined with its promotion and week.
func (r *TimetableRepository) FindDetail(ctx context.Context, id int64) (*models.TimetableDetail, error) {
	const query = `
SELECT t.id, t.promotion_id, t.week_id, t.created_at, t.updated_at,
       p.id AS "promotion.id", p.name AS "promotion.name", p.level AS "promotion.level",
       p.student_count AS "promotion.student_count", p.published AS "promotion.published",
       p.created_at AS "promotion.created_at", p.updated_at AS "promotion.updated_at",
       w.id AS "week.id", w.week_id AS "week.week_id", w.year AS "week.year",
       w.start_date AS "week.start_date", w.end_date AS "week.end_date", w.is_current AS "week.is_current"
FROM timetables t
JOIN promotions p ON p.id = t.promotion_id
JOIN weeks w ON w.id = t.week_id
WHERE t.id = $1`
	var detail models.TimetableDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find timetable detail: %w", err)
	}
	return &detail, nil
}

// FindOrCreate returns the timetable of a (promotion, week) pair, inserting it
// when missing. Concurrent callers converge on the same row.
func (r *TimetableRepository) FindOrCreate(ctx context.Context, promotionID, weekID int64) (*models.Timetable, bool, error) {
	now := time.Now().UTC()
	const insert = `
INSERT INTO timetables (promotion_id, week_id, created_at, updated_at)
VALUES ($1, $2, $3, $3)
ON CONFLICT (promotion_id, week_id) DO NOTHING`
	result, err := r.db.ExecContext(ctx, insert, promotionID, weekID, now)
	if err != nil {
		return nil, false, fmt.Errorf("insert timetable: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("timetable rows affected: %w", err)
	}

	const query = `SELECT id, promotion_id, week_id, created_at, updated_at FROM timetables WHERE promotion_id = $1 AND week_id = $2`
	var timetable models.Timetable
	if err := r.db.GetContext(ctx, &timetable, query, promotionID, weekID); err != nil {
		return nil, false, fmt.Errorf("select timetable: %w", err)
	}
	return &timetable, affected > 0, nil
}
