package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

type timetableRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Timetable, error)
	FindDetail(ctx context.Context, id int64) (*models.TimetableDetail, error)
	FindOrCreate(ctx context.Context, promotionID, weekID int64) (*models.Timetable, bool, error)
}

type promotionReader interface {
	FindByID(ctx context.Context, id int64) (*models.Promotion, error)
}

type weekReader interface {
	FindByID(ctx context.Context, id int64) (*models.Week, error)
}

type timetableSessionLister interface {
	ListDetailedByTimetable(ctx context.Context, timetableID int64) ([]models.CourseSessionDetail, error)
}

// TimetableService resolves timetable containers and their sessions.
type TimetableService struct {
	timetables timetableRepository
	promotions promotionReader
	weeks      weekReader
	sessions   timetableSessionLister
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewTimetableService constructs the service.
func NewTimetableService(timetables timetableRepository, promotions promotionReader, weeks weekReader, sessions timetableSessionLister, validate *validator.Validate, logger *zap.Logger) *TimetableService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimetableService{
		timetables: timetables,
		promotions: promotions,
		weeks:      weeks,
		sessions:   sessions,
		validator:  registerValidations(validate),
		logger:     logger,
	}
}

// GetOrCreate returns the timetable of a (promotion, week) pair, creating it on
// first access. The boolean reports whether a row was inserted.
func (s *TimetableService) GetOrCreate(ctx context.Context, req dto.CheckOrCreateTimetableRequest) (*models.TimetableDetail, bool, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, false, validationError(err, "invalid timetable payload")
	}
	if _, err := s.promotions.FindByID(ctx, req.PromotionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, appErrors.Clone(appErrors.ErrNotFound, "promotion not found")
		}
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load promotion")
	}
	if _, err := s.weeks.FindByID(ctx, req.WeekID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, appErrors.Clone(appErrors.ErrNotFound, "week not found")
		}
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load week")
	}

	timetable, created, err := s.timetables.FindOrCreate(ctx, req.PromotionID, req.WeekID)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open timetable")
	}
	if created {
		s.logger.Info("timetable created",
			zap.Int64("timetable_id", timetable.ID),
			zap.Int64("promotion_id", req.PromotionID),
			zap.Int64("week_id", req.WeekID),
		)
	}

	detail, err := s.Get(ctx, timetable.ID)
	if err != nil {
		return nil, false, err
	}
	return detail, created, nil
}

// Get returns a timetable with its promotion and week.
func (s *TimetableService) Get(ctx context.Context, id int64) (*models.TimetableDetail, error) {
	detail, err := s.timetables.FindDetail(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}
	return detail, nil
}

// ListSessions returns the joined sessions of a timetable.
func (s *TimetableService) ListSessions(ctx context.Context, id int64) ([]models.CourseSessionDetail, error) {
	if _, err := s.timetables.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}
	sessions, err := s.sessions.ListDetailedByTimetable(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sessions")
	}
	return sessions, nil
}
