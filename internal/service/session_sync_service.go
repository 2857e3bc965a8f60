package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

const teacherScheduleCachePattern = "teacher_schedule:*"

type txRunner interface {
	WithinTx(ctx context.Context, fn func(exec sqlx.ExtContext) error) error
}

type syncTimetableReader interface {
	FindByID(ctx context.Context, id int64) (*models.Timetable, error)
	FindDetail(ctx context.Context, id int64) (*models.TimetableDetail, error)
}

type sessionStore interface {
	slotOccupantLister
	LockWeek(ctx context.Context, exec sqlx.ExtContext, weekID int64) error
	ListIDsByTimetable(ctx context.Context, exec sqlx.ExtContext, timetableID int64) ([]int64, error)
	DeleteByIDs(ctx context.Context, exec sqlx.ExtContext, timetableID int64, ids []int64) error
	Create(ctx context.Context, exec sqlx.ExtContext, session *models.CourseSession) error
	Update(ctx context.Context, exec sqlx.ExtContext, session *models.CourseSession) error
	ListDetailedByTimetable(ctx context.Context, timetableID int64) ([]models.CourseSessionDetail, error)
}

type referenceCatalog interface {
	ExistingCourseIDs(ctx context.Context, ids []int64) ([]int64, error)
	ExistingClassroomIDs(ctx context.Context, ids []int64) ([]int64, error)
	ExistingTimeSlotIDs(ctx context.Context, ids []int64) ([]int64, error)
}

type teacherRoleChecker interface {
	FilterIDsWithRole(ctx context.Context, ids []int64, role models.UserRole) ([]int64, error)
}

type publicationNotifier interface {
	NotifyPublished(ctx context.Context, timetable *models.TimetableDetail, sessionCount int) error
}

// SessionSyncConfig tunes the reconciler.
type SessionSyncConfig struct {
	// BatchConflictCheck rejects batches that double-book a resource among
	// their own entries before storage is touched.
	BatchConflictCheck bool
}

// SessionSyncServiceParams groups constructor dependencies.
type SessionSyncServiceParams struct {
	Tx         txRunner
	Timetables syncTimetableReader
	Sessions   sessionStore
	Catalog    referenceCatalog
	Users      teacherRoleChecker
	Notifier   publicationNotifier
	Cache      *CacheService
	Metrics    *MetricsService
	Validator  *validator.Validate
	Logger     *zap.Logger
	Config     SessionSyncConfig
}

// SessionSyncService reconciles the persisted sessions of a timetable with a desired list.
type SessionSyncService struct {
	tx         txRunner
	timetables syncTimetableReader
	sessions   sessionStore
	catalog    referenceCatalog
	users      teacherRoleChecker
	detector   *ConflictDetector
	notifier   publicationNotifier
	cache      *CacheService
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
	cfg        SessionSyncConfig
}

// NewSessionSyncService constructs the reconciler.
func NewSessionSyncService(params SessionSyncServiceParams) *SessionSyncService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionSyncService{
		tx:         params.Tx,
		timetables: params.Timetables,
		sessions:   params.Sessions,
		catalog:    params.Catalog,
		users:      params.Users,
		detector:   NewConflictDetector(params.Sessions),
		notifier:   params.Notifier,
		cache:      params.Cache,
		metrics:    params.Metrics,
		validator:  registerValidations(params.Validator),
		logger:     logger,
		cfg:        params.Config,
	}
}

// Sync replaces the sessions of a timetable with the submitted list. Either
// every change is committed or none is.
func (s *SessionSyncService) Sync(ctx context.Context, timetableID int64, req dto.SyncSessionsRequest) ([]models.CourseSessionDetail, error) {
	start := time.Now()
	sessions, err := s.sync(ctx, timetableID, req)
	s.metrics.ObserveSessionSync(syncOutcome(err), time.Since(start))
	return sessions, err
}

func (s *SessionSyncService) sync(ctx context.Context, timetableID int64, req dto.SyncSessionsRequest) ([]models.CourseSessionDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid sessions payload")
	}
	if fields := duplicateIDFields(req.Sessions); len(fields) > 0 {
		return nil, appErrors.Fields("duplicate session ids", fields)
	}

	timetable, err := s.timetables.FindByID(ctx, timetableID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}

	if err := s.checkReferences(ctx, req.Sessions); err != nil {
		return nil, err
	}

	if s.cfg.BatchConflictCheck {
		if conflict := detectBatchConflict(req.Sessions); conflict != nil {
			s.metrics.RecordSessionConflict(string(conflict.Dimension))
			return nil, wrapConflict(*conflict)
		}
	}

	err = s.tx.WithinTx(ctx, func(exec sqlx.ExtContext) error {
		return s.apply(ctx, exec, timetable, req.Sessions)
	})
	if err != nil {
		var conflictErr *models.SessionConflictError
		if errors.As(err, &conflictErr) {
			s.metrics.RecordSessionConflict(string(conflictErr.Conflict.Dimension))
			return nil, err
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sync sessions")
	}

	result, err := s.sessions.ListDetailedByTimetable(ctx, timetable.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sessions")
	}

	s.logger.Info("timetable sessions synced",
		zap.Int64("timetable_id", timetable.ID),
		zap.Int("submitted", len(req.Sessions)),
		zap.Int("persisted", len(result)),
	)
	s.afterCommit(ctx, timetable.ID, len(result))
	return result, nil
}

// apply runs inside the transaction. It may be replayed on serialization failures.
func (s *SessionSyncService) apply(ctx context.Context, exec sqlx.ExtContext, timetable *models.Timetable, inputs []dto.SessionInput) error {
	if err := s.sessions.LockWeek(ctx, exec, timetable.WeekID); err != nil {
		return err
	}

	existing, err := s.sessions.ListIDsByTimetable(ctx, exec, timetable.ID)
	if err != nil {
		return err
	}
	owned := make(map[int64]struct{}, len(existing))
	for _, id := range existing {
		owned[id] = struct{}{}
	}

	requested := make(map[int64]struct{}, len(inputs))
	for _, in := range inputs {
		if in.ID != nil {
			requested[*in.ID] = struct{}{}
		}
	}
	stale := make([]int64, 0)
	for _, id := range existing {
		if _, keep := requested[id]; !keep {
			stale = append(stale, id)
		}
	}
	if err := s.sessions.DeleteByIDs(ctx, exec, timetable.ID, stale); err != nil {
		return err
	}

	for i, in := range inputs {
		var selfID *int64
		if in.ID != nil {
			if _, ok := owned[*in.ID]; ok {
				selfID = in.ID
			}
		}

		conflict, err := s.detector.FindConflict(ctx, exec, models.ConflictCandidate{
			TimeSlotID:       in.TimeSlotID,
			TeacherID:        in.TeacherID,
			RoomID:           in.RoomID,
			WeekID:           timetable.WeekID,
			ExcludeSessionID: selfID,
		})
		if err != nil {
			return err
		}
		if conflict != nil {
			conflict.IncomingIndex = i
			conflict.IncomingSessionID = in.ID
			return wrapConflict(*conflict)
		}

		session := sessionFromInput(timetable.ID, in)
		if selfID != nil {
			session.ID = *selfID
			if err := s.sessions.Update(ctx, exec, session); err != nil {
				return err
			}
			continue
		}
		if err := s.sessions.Create(ctx, exec, session); err != nil {
			return err
		}
	}
	return nil
}

func (s *SessionSyncService) checkReferences(ctx context.Context, inputs []dto.SessionInput) error {
	courseIDs := make([]int64, 0, len(inputs))
	teacherIDs := make([]int64, 0, len(inputs))
	roomIDs := make([]int64, 0, len(inputs))
	slotIDs := make([]int64, 0, len(inputs))
	for _, in := range inputs {
		courseIDs = append(courseIDs, in.CourseID)
		teacherIDs = append(teacherIDs, in.TeacherID)
		roomIDs = append(roomIDs, in.RoomID)
		slotIDs = append(slotIDs, in.TimeSlotID)
	}

	courses, err := s.catalog.ExistingCourseIDs(ctx, uniqueIDs(courseIDs))
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate courses")
	}
	rooms, err := s.catalog.ExistingClassroomIDs(ctx, uniqueIDs(roomIDs))
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate classrooms")
	}
	slots, err := s.catalog.ExistingTimeSlotIDs(ctx, uniqueIDs(slotIDs))
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate time slots")
	}
	teachers, err := s.users.FilterIDsWithRole(ctx, uniqueIDs(teacherIDs), models.RoleTeacher)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate teachers")
	}

	knownCourses, knownRooms, knownSlots, knownTeachers := idSet(courses), idSet(rooms), idSet(slots), idSet(teachers)
	var fields []appErrors.FieldError
	for i, in := range inputs {
		if _, ok := knownCourses[in.CourseID]; !ok {
			fields = append(fields, appErrors.FieldError{Field: fmt.Sprintf("sessions[%d].course_id", i), Message: fmt.Sprintf("course %d does not exist", in.CourseID)})
		}
		if _, ok := knownTeachers[in.TeacherID]; !ok {
			fields = append(fields, appErrors.FieldError{Field: fmt.Sprintf("sessions[%d].teacher_id", i), Message: fmt.Sprintf("user %d does not exist or is not a teacher", in.TeacherID)})
		}
		if _, ok := knownRooms[in.RoomID]; !ok {
			fields = append(fields, appErrors.FieldError{Field: fmt.Sprintf("sessions[%d].room_id", i), Message: fmt.Sprintf("classroom %d does not exist", in.RoomID)})
		}
		if _, ok := knownSlots[in.TimeSlotID]; !ok {
			fields = append(fields, appErrors.FieldError{Field: fmt.Sprintf("sessions[%d].time_slot_id", i), Message: fmt.Sprintf("time slot %d does not exist", in.TimeSlotID)})
		}
	}
	if len(fields) > 0 {
		return appErrors.Fields("invalid session references", fields)
	}
	return nil
}

func (s *SessionSyncService) afterCommit(ctx context.Context, timetableID int64, sessionCount int) {
	if err := s.cache.Invalidate(ctx, teacherScheduleCachePattern); err != nil {
		s.logger.Warn("failed to invalidate teacher schedules", zap.Int64("timetable_id", timetableID), zap.Error(err))
	}
	if s.notifier == nil {
		return
	}
	detail, err := s.timetables.FindDetail(ctx, timetableID)
	if err != nil {
		s.logger.Warn("failed to load timetable for publication", zap.Int64("timetable_id", timetableID), zap.Error(err))
		return
	}
	if err := s.notifier.NotifyPublished(ctx, detail, sessionCount); err != nil {
		s.logger.Warn("failed to enqueue publication", zap.Int64("timetable_id", timetableID), zap.Error(err))
	}
}

func sessionFromInput(timetableID int64, in dto.SessionInput) *models.CourseSession {
	return &models.CourseSession{
		TimetableID:     timetableID,
		CourseID:        in.CourseID,
		TeacherID:       in.TeacherID,
		RoomID:          in.RoomID,
		TimeSlotID:      in.TimeSlotID,
		DurationMinutes: in.DurationMinutes,
		SessionType:     models.SessionType(in.SessionType),
		Notes:           in.Notes,
	}
}

func duplicateIDFields(inputs []dto.SessionInput) []appErrors.FieldError {
	seen := make(map[int64]int, len(inputs))
	var fields []appErrors.FieldError
	for i, in := range inputs {
		if in.ID == nil {
			continue
		}
		if first, ok := seen[*in.ID]; ok {
			fields = append(fields, appErrors.FieldError{
				Field:   fmt.Sprintf("sessions[%d].id", i),
				Message: fmt.Sprintf("duplicate session id %d (also at sessions[%d])", *in.ID, first),
			})
			continue
		}
		seen[*in.ID] = i
	}
	return fields
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	result := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}

func idSet(ids []int64) map[int64]struct{} {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func syncOutcome(err error) string {
	if err == nil {
		return "success"
	}
	appErr := appErrors.FromError(err)
	switch appErr.Code {
	case appErrors.ErrConflict.Code:
		return "conflict"
	case appErrors.ErrValidation.Code:
		return "invalid"
	case appErrors.ErrNotFound.Code:
		return "not_found"
	default:
		return "error"
	}
}
