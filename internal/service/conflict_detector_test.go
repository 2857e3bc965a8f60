package service

import (
	"context"
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/models"
)

type occupantListerStub struct {
	occupants []models.SlotOccupant
	err       error
	gotWeek   int64
	gotSlot   int64
	gotSkip   *int64
}

func (s *occupantListerStub) ListSlotOccupants(ctx context.Context, exec sqlx.ExtContext, weekID, timeSlotID int64, excludeID *int64) ([]models.SlotOccupant, error) {
	s.gotWeek, s.gotSlot, s.gotSkip = weekID, timeSlotID, excludeID
	return s.occupants, s.err
}

func occupant(id, teacherID, roomID int64) models.SlotOccupant {
	return models.SlotOccupant{
		SessionID: id, TimetableID: 2, PromotionName: "M1 Réseaux",
		TeacherID: teacherID, TeacherName: "Paul Durand", RoomID: roomID, RoomName: "Salle 101",
		TimeSlotID: 10, DayOfWeek: "Mardi", StartTime: "14:00:00", EndTime: "16:00:00",
	}
}

func TestDetectConflictClassifiesDimension(t *testing.T) {
	candidate := models.ConflictCandidate{TimeSlotID: 10, TeacherID: 6, RoomID: 3, WeekID: 1}

	cases := []struct {
		name      string
		occupants []models.SlotOccupant
		want      models.ConflictDimension
	}{
		{name: "teacher", occupants: []models.SlotOccupant{occupant(1, 6, 9)}, want: models.ConflictTeacher},
		{name: "room", occupants: []models.SlotOccupant{occupant(1, 7, 3)}, want: models.ConflictRoom},
		{name: "both", occupants: []models.SlotOccupant{occupant(1, 6, 3)}, want: models.ConflictBoth},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			conflict := DetectConflict(candidate, tc.occupants)
			require.NotNil(t, conflict)
			assert.Equal(t, tc.want, conflict.Dimension)
			assert.Equal(t, "Mardi 14:00-16:00", conflict.TimeSlot)
			assert.Equal(t, "M1 Réseaux", conflict.PromotionName)
		})
	}
}

func TestDetectConflictPicksLowestSessionID(t *testing.T) {
	candidate := models.ConflictCandidate{TimeSlotID: 10, TeacherID: 6, RoomID: 3, WeekID: 1}
	conflict := DetectConflict(candidate, []models.SlotOccupant{occupant(9, 7, 3), occupant(4, 6, 8), occupant(2, 8, 8)})
	require.NotNil(t, conflict)
	require.NotNil(t, conflict.ExistingSessionID)
	assert.Equal(t, int64(4), *conflict.ExistingSessionID)
	assert.Equal(t, models.ConflictTeacher, conflict.Dimension)
}

func TestDetectConflictIgnoresSelfAndUnrelated(t *testing.T) {
	self := int64(4)
	candidate := models.ConflictCandidate{TimeSlotID: 10, TeacherID: 6, RoomID: 3, WeekID: 1, ExcludeSessionID: &self}
	assert.Nil(t, DetectConflict(candidate, []models.SlotOccupant{occupant(4, 6, 3), occupant(5, 7, 8)}))
	assert.Nil(t, DetectConflict(candidate, nil))
}

func TestConflictDetectorFindConflictPassesScope(t *testing.T) {
	stub := &occupantListerStub{occupants: []models.SlotOccupant{occupant(3, 6, 9)}}
	detector := NewConflictDetector(stub)
	self := int64(12)

	conflict, err := detector.FindConflict(context.Background(), nil, models.ConflictCandidate{TimeSlotID: 10, TeacherID: 6, RoomID: 3, WeekID: 4, ExcludeSessionID: &self})
	require.NoError(t, err)
	require.NotNil(t, conflict)
	assert.Equal(t, int64(4), stub.gotWeek)
	assert.Equal(t, int64(10), stub.gotSlot)
	assert.Equal(t, &self, stub.gotSkip)
}

func TestConflictDetectorPropagatesStorageErrors(t *testing.T) {
	detector := NewConflictDetector(&occupantListerStub{err: errors.New("timeout")})
	conflict, err := detector.FindConflict(context.Background(), nil, models.ConflictCandidate{TimeSlotID: 10})
	assert.Error(t, err)
	assert.Nil(t, conflict)
}

func TestDetectBatchConflict(t *testing.T) {
	inputs := []dto.SessionInput{
		{TeacherID: 5, RoomID: 2, TimeSlotID: 10},
		{TeacherID: 6, RoomID: 3, TimeSlotID: 10},
		{TeacherID: 5, RoomID: 9, TimeSlotID: 11},
		{TeacherID: 6, RoomID: 2, TimeSlotID: 10},
	}
	conflict := detectBatchConflict(inputs)
	require.NotNil(t, conflict)
	assert.Equal(t, 3, conflict.IncomingIndex)
	require.NotNil(t, conflict.ExistingIndex)
	assert.Equal(t, 0, *conflict.ExistingIndex)
	assert.Equal(t, models.ConflictRoom, conflict.Dimension)

	assert.Nil(t, detectBatchConflict(inputs[:3]))
}
