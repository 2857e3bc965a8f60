package service

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

type slotOccupantLister interface {
	ListSlotOccupants(ctx context.Context, exec sqlx.ExtContext, weekID, timeSlotID int64, excludeID *int64) ([]models.SlotOccupant, error)
}

// ConflictDetector checks a candidate session against committed sessions of the same week.
type ConflictDetector struct {
	repo slotOccupantLister
}

// NewConflictDetector constructs a ConflictDetector.
func NewConflictDetector(repo slotOccupantLister) *ConflictDetector {
	return &ConflictDetector{repo: repo}
}

// FindConflict returns the clash with the lowest session id, or nil. It reads
// through exec so a running sync sees its own writes.
func (d *ConflictDetector) FindConflict(ctx context.Context, exec sqlx.ExtContext, candidate models.ConflictCandidate) (*models.SessionConflict, error) {
	occupants, err := d.repo.ListSlotOccupants(ctx, exec, candidate.WeekID, candidate.TimeSlotID, candidate.ExcludeSessionID)
	if err != nil {
		return nil, err
	}
	return DetectConflict(candidate, occupants), nil
}

// DetectConflict picks the first occupant sharing the candidate's teacher or room.
func DetectConflict(candidate models.ConflictCandidate, occupants []models.SlotOccupant) *models.SessionConflict {
	var match *models.SlotOccupant
	for i := range occupants {
		occ := &occupants[i]
		if occ.TimeSlotID != candidate.TimeSlotID {
			continue
		}
		if candidate.ExcludeSessionID != nil && occ.SessionID == *candidate.ExcludeSessionID {
			continue
		}
		if occ.TeacherID != candidate.TeacherID && occ.RoomID != candidate.RoomID {
			continue
		}
		if match == nil || occ.SessionID < match.SessionID {
			match = occ
		}
	}
	if match == nil {
		return nil
	}

	existingID := match.SessionID
	slot := models.TimeSlot{ID: match.TimeSlotID, DayOfWeek: match.DayOfWeek, StartTime: match.StartTime, EndTime: match.EndTime}
	return &models.SessionConflict{
		Dimension:         dimensionOf(candidate.TeacherID == match.TeacherID, candidate.RoomID == match.RoomID),
		IncomingSessionID: candidate.ExcludeSessionID,
		ExistingSessionID: &existingID,
		TimetableID:       match.TimetableID,
		PromotionName:     match.PromotionName,
		TeacherID:         match.TeacherID,
		TeacherName:       match.TeacherName,
		RoomID:            match.RoomID,
		RoomName:          match.RoomName,
		TimeSlotID:        match.TimeSlotID,
		TimeSlot:          slot.Label(),
	}
}

// detectBatchConflict finds two entries of one batch booking the same teacher
// or room on the same time slot. The later entry is reported as incoming.
func detectBatchConflict(inputs []dto.SessionInput) *models.SessionConflict {
	bySlot := make(map[int64][]int, len(inputs))
	for i, in := range inputs {
		for _, j := range bySlot[in.TimeSlotID] {
			prev := inputs[j]
			sameTeacher := prev.TeacherID == in.TeacherID
			sameRoom := prev.RoomID == in.RoomID
			if !sameTeacher && !sameRoom {
				continue
			}
			existingIndex := j
			return &models.SessionConflict{
				Dimension:         dimensionOf(sameTeacher, sameRoom),
				IncomingIndex:     i,
				IncomingSessionID: in.ID,
				ExistingSessionID: prev.ID,
				ExistingIndex:     &existingIndex,
				TeacherID:         prev.TeacherID,
				RoomID:            prev.RoomID,
				TimeSlotID:        in.TimeSlotID,
			}
		}
		bySlot[in.TimeSlotID] = append(bySlot[in.TimeSlotID], i)
	}
	return nil
}

func dimensionOf(sameTeacher, sameRoom bool) models.ConflictDimension {
	switch {
	case sameTeacher && sameRoom:
		return models.ConflictBoth
	case sameTeacher:
		return models.ConflictTeacher
	default:
		return models.ConflictRoom
	}
}

// conflictMessage renders a human readable description of a clash.
func conflictMessage(c models.SessionConflict) string {
	if c.ExistingIndex != nil {
		return fmt.Sprintf("sessions[%d] and sessions[%d] book the same %s on time slot %d",
			*c.ExistingIndex, c.IncomingIndex, resourceLabel(c.Dimension), c.TimeSlotID)
	}
	where := c.TimeSlot
	if where == "" {
		where = fmt.Sprintf("time slot %d", c.TimeSlotID)
	}
	switch c.Dimension {
	case models.ConflictTeacher:
		return fmt.Sprintf("teacher %s is already booked on %s for %s", c.TeacherName, where, c.PromotionName)
	case models.ConflictRoom:
		return fmt.Sprintf("room %s is already booked on %s for %s", c.RoomName, where, c.PromotionName)
	default:
		return fmt.Sprintf("teacher %s and room %s are already booked on %s for %s", c.TeacherName, c.RoomName, where, c.PromotionName)
	}
}

func resourceLabel(d models.ConflictDimension) string {
	switch d {
	case models.ConflictTeacher:
		return "teacher"
	case models.ConflictRoom:
		return "room"
	default:
		return "teacher and room"
	}
}

func wrapConflict(conflict models.SessionConflict) error {
	message := conflictMessage(conflict)
	domainErr := &models.SessionConflictError{Message: message, Conflict: conflict}
	appErr := appErrors.Wrap(domainErr, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, fmt.Sprintf("session conflict: %s", message))
	appErr.Details = conflict
	return appErr
}
