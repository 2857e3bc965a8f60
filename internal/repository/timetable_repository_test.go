package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

func TestTimetableRepositoryFindOrCreateInserts(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	now := time.Now()
	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (promotion_id, week_id) DO NOTHING")).
		WithArgs(int64(3), int64(4), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM timetables WHERE promotion_id = $1 AND week_id = $2")).
		WithArgs(int64(3), int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "promotion_id", "week_id", "created_at", "updated_at"}).AddRow(9, 3, 4, now, now))

	timetable, created, err := repo.FindOrCreate(context.Background(), 3, 4)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, int64(9), timetable.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryFindOrCreateExisting(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	now := time.Now()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO timetables")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("FROM timetables WHERE promotion_id = $1 AND week_id = $2")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "promotion_id", "week_id", "created_at", "updated_at"}).AddRow(9, 3, 4, now, now))

	timetable, created, err := repo.FindOrCreate(context.Background(), 3, 4)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, int64(9), timetable.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryFindDetail(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	now := time.Now()
	start := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"id", "promotion_id", "week_id", "created_at", "updated_at",
		"promotion.id", "promotion.name", "promotion.level", "promotion.student_count", "promotion.published", "promotion.created_at", "promotion.updated_at",
		"week.id", "week.week_id", "week.year", "week.start_date", "week.end_date", "week.is_current",
	}).AddRow(9, 3, 4, now, now, 3, "L3 Informatique", "Niveau 3", 40, true, now, now, 4, 11, 2025, start, start.AddDate(0, 0, 6), true)
	mock.ExpectQuery(regexp.QuoteMeta("FROM timetables t")).
		WithArgs(int64(9)).
		WillReturnRows(rows)

	detail, err := repo.FindDetail(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, "L3 Informatique", detail.Promotion.Name)
	assert.Equal(t, models.Level3, detail.Promotion.Level)
	assert.Equal(t, 11, detail.Week.WeekID)
	assert.True(t, detail.Week.IsCurrent)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM timetables WHERE id = $1")).
		WithArgs(int64(404)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), 404)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
