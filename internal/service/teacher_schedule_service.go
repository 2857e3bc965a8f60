package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

type teacherSessionLister interface {
	ListForTeacher(ctx context.Context, teacherID int64) ([]models.TeacherSessionRow, error)
}

type currentWeekFinder interface {
	FindCurrent(ctx context.Context) (*models.Week, error)
}

var errIncompleteSession = errors.New("session is missing calendar relations")

// TeacherScheduleService builds the personal calendar of a teacher.
type TeacherScheduleService struct {
	sessions teacherSessionLister
	weeks    currentWeekFinder
	cache    *CacheService
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewTeacherScheduleService constructs the aggregator. A zero cacheTTL uses the cache default.
func NewTeacherScheduleService(sessions teacherSessionLister, weeks currentWeekFinder, cache *CacheService, cacheTTL time.Duration, logger *zap.Logger) *TeacherScheduleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeacherScheduleService{sessions: sessions, weeks: weeks, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

// GetScheduleForTeacher returns the teacher's dated sessions and statistics
// relative to now. The boolean reports whether sessions came from cache.
// Only dated sessions are cached; the current week is resolved on every call.
func (s *TeacherScheduleService) GetScheduleForTeacher(ctx context.Context, teacherID int64, now time.Time) (*models.TeacherSchedule, bool, error) {
	key := TeacherScheduleKey(teacherID)
	var sessions []models.TeacherSession
	hit, err := s.cache.Get(ctx, key, &sessions)
	if err != nil {
		hit = false
	}

	if !hit {
		rows, err := s.sessions.ListForTeacher(ctx, teacherID)
		if err != nil {
			return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher sessions")
		}
		sessions = s.buildSessions(teacherID, rows, now.Location())
		_ = s.cache.Set(ctx, key, sessions, s.cacheTTL)
	}

	currentWeekID, err := s.currentWeekID(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve current week")
	}
	for i := range sessions {
		sessions[i].IsCurrentWeek = currentWeekID != 0 && sessions[i].WeekID == currentWeekID
	}

	return &models.TeacherSchedule{
		TeacherID:   teacherID,
		Sessions:    sessions,
		Stats:       computeTeacherStats(sessions, now),
		GeneratedAt: now,
	}, hit, nil
}

// currentWeekID returns 0 when no week is flagged current.
func (s *TeacherScheduleService) currentWeekID(ctx context.Context) (int64, error) {
	week, err := s.weeks.FindCurrent(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return week.ID, nil
}

func (s *TeacherScheduleService) buildSessions(teacherID int64, rows []models.TeacherSessionRow, loc *time.Location) []models.TeacherSession {
	sessions := make([]models.TeacherSession, 0, len(rows))
	for _, row := range rows {
		session, err := toTeacherSession(row, loc)
		if err != nil {
			s.logger.Warn("skipping teacher session",
				zap.Int64("teacher_id", teacherID),
				zap.Int64("session_id", row.ID),
				zap.Error(err),
			)
			continue
		}
		sessions = append(sessions, session)
	}
	return sessions
}

func toTeacherSession(row models.TeacherSessionRow, loc *time.Location) (models.TeacherSession, error) {
	if row.DayOfWeek == nil || row.StartTime == nil || row.WeekStartDate == nil || row.CourseID == nil || row.RoomID == nil || row.PromotionID == nil {
		return models.TeacherSession{}, errIncompleteSession
	}
	weekday, ok := models.ParseWeekday(*row.DayOfWeek)
	if !ok {
		return models.TeacherSession{}, fmt.Errorf("unknown day of week %q", *row.DayOfWeek)
	}
	clock, err := models.ParseClock(*row.StartTime)
	if err != nil {
		return models.TeacherSession{}, err
	}
	if loc == nil {
		loc = time.UTC
	}

	weekStart := *row.WeekStartDate
	day := time.Date(weekStart.Year(), weekStart.Month(), weekStart.Day(), 0, 0, 0, 0, loc)
	offset := (int(weekday) - int(day.Weekday()) + 7) % 7
	start := day.AddDate(0, 0, offset).Add(clock)

	session := models.TeacherSession{
		ID:              row.ID,
		Title:           stringValue(row.CourseName),
		Start:           start,
		End:             start.Add(time.Duration(row.DurationMinutes) * time.Minute),
		DayOfWeek:       *row.DayOfWeek,
		DurationMinutes: row.DurationMinutes,
		SessionType:     row.SessionType,
		Notes:           row.Notes,
		CourseID:        *row.CourseID,
		RoomID:          *row.RoomID,
		RoomName:        stringValue(row.RoomName),
		PromotionID:     *row.PromotionID,
		PromotionName:   stringValue(row.PromotionName),
	}
	if row.WeekID != nil {
		session.WeekID = *row.WeekID
	}
	return session, nil
}

func computeTeacherStats(sessions []models.TeacherSession, now time.Time) models.TeacherScheduleStats {
	stats := models.TeacherScheduleStats{TotalSessions: len(sessions)}
	year, month, day := now.Date()
	completed := 0
	for _, session := range sessions {
		if !session.IsCurrentWeek {
			continue
		}
		stats.CurrentWeekSessions++
		start := session.Start.In(now.Location())
		if y, m, d := start.Date(); y == year && m == month && d == day {
			stats.TodaySessions++
		}
		if session.End.Before(now) {
			completed++
		}
	}
	if stats.CurrentWeekSessions > 0 {
		rate := float64(completed) * 100 / float64(stats.CurrentWeekSessions)
		stats.CompletionRate = math.Round(rate*100) / 100
	}
	return stats
}

func stringValue(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
