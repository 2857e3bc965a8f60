package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-timetable-api/internal/middleware"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
	"github.com/noah-isme/sma-timetable-api/pkg/response"
)

type teacherScheduleService interface {
	GetScheduleForTeacher(ctx context.Context, teacherID int64, now time.Time) (*models.TeacherSchedule, bool, error)
}

// TeacherScheduleHandler serves the personal calendar of the authenticated teacher.
type TeacherScheduleHandler struct {
	service teacherScheduleService
	now     func() time.Time
}

// NewTeacherScheduleHandler constructs the handler.
func NewTeacherScheduleHandler(service teacherScheduleService) *TeacherScheduleHandler {
	return &TeacherScheduleHandler{service: service, now: time.Now}
}

// Mine godoc
// @Summary Calendar of the authenticated teacher
// @Tags Teachers
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /teacher-schedule [get]
func (h *TeacherScheduleHandler) Mine(c *gin.Context) {
	claims := middleware.ClaimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	schedule, cacheHit, err := h.service.GetScheduleForTeacher(c.Request.Context(), claims.UserID, h.now())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.OK(c, schedule, middleware.ResponseMeta(c))
}
