package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/middleware"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/pkg/response"
)

type sessionSyncer interface {
	Sync(ctx context.Context, timetableID int64, req dto.SyncSessionsRequest) ([]models.CourseSessionDetail, error)
}

type timetableReader interface {
	GetOrCreate(ctx context.Context, req dto.CheckOrCreateTimetableRequest) (*models.TimetableDetail, bool, error)
	Get(ctx context.Context, id int64) (*models.TimetableDetail, error)
	ListSessions(ctx context.Context, id int64) ([]models.CourseSessionDetail, error)
}

// TimetableHandler exposes timetable lookup and session synchronization.
type TimetableHandler struct {
	timetables timetableReader
	syncer     sessionSyncer
}

// NewTimetableHandler constructs the handler.
func NewTimetableHandler(timetables timetableReader, syncer sessionSyncer) *TimetableHandler {
	return &TimetableHandler{timetables: timetables, syncer: syncer}
}

// CheckOrCreate godoc
// @Summary Open the timetable of a promotion for a week
// @Description Returns the existing timetable or creates it. 201 when created.
// @Tags Timetables
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CheckOrCreateTimetableRequest true "Promotion and week"
// @Success 200 {object} response.Envelope
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /timetables/check-or-create [post]
func (h *TimetableHandler) CheckOrCreate(c *gin.Context) {
	var req dto.CheckOrCreateTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}

	timetable, created, err := h.timetables.GetOrCreate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	middleware.SetMeta(c, "created", created)
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	response.JSON(c, status, timetable, middleware.ResponseMeta(c))
}

// Get godoc
// @Summary Get a timetable with its promotion and week
// @Tags Timetables
// @Produce json
// @Security BearerAuth
// @Param id path int true "Timetable ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /timetables/{id} [get]
func (h *TimetableHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	timetable, err := h.timetables.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, timetable, middleware.ResponseMeta(c))
}

// ListSessions godoc
// @Summary List the sessions of a timetable
// @Tags Timetables
// @Produce json
// @Security BearerAuth
// @Param id path int true "Timetable ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /timetables/{id}/sessions [get]
func (h *TimetableHandler) ListSessions(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	sessions, err := h.timetables.ListSessions(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetMeta(c, "count", len(sessions))
	response.OK(c, sessions, middleware.ResponseMeta(c))
}

// Sync godoc
// @Summary Replace the sessions of a timetable
// @Description Reconciles the submitted list against stored sessions atomically. Sessions absent from the list are deleted; a conflicting teacher or room aborts the whole batch.
// @Tags Timetables
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Timetable ID"
// @Param payload body dto.SyncSessionsRequest true "Desired sessions"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /timetables/{id}/sessions/sync [post]
func (h *TimetableHandler) Sync(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.SyncSessionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}

	sessions, err := h.syncer.Sync(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetMeta(c, "count", len(sessions))
	response.OK(c, sessions, middleware.ResponseMeta(c))
}
