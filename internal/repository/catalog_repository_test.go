package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

func TestCatalogRepositoryExistingIDs(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCatalogRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM classrooms WHERE id = ANY($1)")).
		WithArgs(pq.Array([]int64{2, 3})).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(2))

	found, err := repo.ExistingClassroomIDs(context.Background(), []int64{2, 3})
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, found)

	empty, err := repo.ExistingCourseIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryFilterIDsWithRole(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE u.id = ANY($1) AND r.name = $2")).
		WithArgs(pq.Array([]int64{7, 8}), "enseignant").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	found, err := repo.FilterIDsWithRole(context.Background(), []int64{7, 8}, models.RoleTeacher)
	require.NoError(t, err)
	assert.Equal(t, []int64{7}, found)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWeekRepositoryFindCurrentMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewWeekRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM weeks WHERE is_current = TRUE")).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindCurrent(context.Background())
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWeekRepositoryFindCurrent(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewWeekRepository(db)

	start := time.Date(2025, 3, 17, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("FROM weeks WHERE is_current = TRUE")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "week_id", "year", "start_date", "end_date", "is_current"}).AddRow(2, 12, 2025, start, start.AddDate(0, 0, 6), true))

	week, err := repo.FindCurrent(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), week.ID)
	assert.True(t, week.IsCurrent)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPromotionRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPromotionRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM promotions WHERE id = $1")).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "level", "student_count", "published", "created_at", "updated_at"}).AddRow(3, "L3 Informatique", "Niveau 3", 40, false, now, now))

	promotion, err := repo.FindByID(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "L3 Informatique", promotion.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}
