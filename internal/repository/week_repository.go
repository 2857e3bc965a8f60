package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

const weekColumns = `id, week_id, year, start_date, end_date, is_current`

// WeekRepository reads calendar weeks.
type WeekRepository struct {
	db *sqlx.DB
}

// NewWeekRepository constructs the repository.
func NewWeekRepository(db *sqlx.DB) *WeekRepository {
	return &WeekRepository{db: db}
}

// FindByID returns a week or sql.ErrNoRows.
func (r *WeekRepository) FindByID(ctx context.Context, id int64) (*models.Week, error) {
	query := `SELECT ` + weekColumns + ` FROM weeks WHERE id = $1`
	var week models.Week
	if err := r.db.GetContext(ctx, &week, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find week: %w", err)
	}
	return &week, nil
}

// FindCurrent returns the week flagged as current, or sql.ErrNoRows when none is.
func (r *WeekRepository) FindCurrent(ctx context.Context) (*models.Week, error) {
	query := `SELECT ` + weekColumns + ` FROM weeks WHERE is_current = TRUE LIMIT 1`
	var week models.Week
	if err := r.db.GetContext(ctx, &week, query); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find current week: %w", err)
	}
	return &week, nil
}
