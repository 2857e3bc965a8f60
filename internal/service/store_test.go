package service

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

// memStore is an in-memory transactional stand-in for the timetable tables.
// WithinTx works on a copy of the committed sessions and swaps it in on success.
type memStore struct {
	txMu      sync.Mutex
	committed map[int64]models.CourseSession
	working   map[int64]models.CourseSession
	nextID    int64
	txCount   int
	locked    []int64
	createErr error

	timetables map[int64]models.Timetable
	promotions map[int64]models.Promotion
	weeks      map[int64]models.Week
	courses    map[int64]string
	teachers   map[int64]string
	rooms      map[int64]string
	slots      map[int64]models.TimeSlot
}

func newMemStore() *memStore {
	return &memStore{
		committed: map[int64]models.CourseSession{},
		nextID:    100,
		timetables: map[int64]models.Timetable{
			1: {ID: 1, PromotionID: 1, WeekID: 1},
			2: {ID: 2, PromotionID: 2, WeekID: 1},
			3: {ID: 3, PromotionID: 1, WeekID: 2},
		},
		promotions: map[int64]models.Promotion{
			1: {ID: 1, Name: "L3 Informatique", Level: models.Level3},
			2: {ID: 2, Name: "M1 Réseaux", Level: models.Level4},
		},
		weeks: map[int64]models.Week{
			1: {ID: 1, WeekID: 11, Year: 2025, IsCurrent: true},
			2: {ID: 2, WeekID: 12, Year: 2025},
		},
		courses:  map[int64]string{1: "Algorithmique", 2: "Réseaux", 3: "Bases de données"},
		teachers: map[int64]string{5: "Claire Martin", 6: "Paul Durand", 7: "Nadia Benali"},
		rooms:    map[int64]string{2: "Amphi A", 3: "Salle 101", 9: "Labo 3"},
		slots: map[int64]models.TimeSlot{
			10: {ID: 10, DayOfWeek: "Lundi", StartTime: "08:00:00", EndTime: "10:00:00", DurationMinutes: 120},
			11: {ID: 11, DayOfWeek: "Lundi", StartTime: "10:15:00", EndTime: "12:15:00", DurationMinutes: 120},
			12: {ID: 12, DayOfWeek: "Mardi", StartTime: "08:00:00", EndTime: "10:00:00", DurationMinutes: 120},
		},
	}
}

func (m *memStore) seed(session models.CourseSession) {
	m.committed[session.ID] = session
	if session.ID >= m.nextID {
		m.nextID = session.ID + 1
	}
}

func (m *memStore) state() map[int64]models.CourseSession {
	if m.working != nil {
		return m.working
	}
	return m.committed
}

// snapshot returns the committed sessions of a timetable ordered by id.
func (m *memStore) snapshot(timetableID int64) []models.CourseSession {
	result := make([]models.CourseSession, 0)
	for _, s := range m.committed {
		if s.TimetableID == timetableID {
			result = append(result, s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

func (m *memStore) WithinTx(ctx context.Context, fn func(exec sqlx.ExtContext) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()
	m.txCount++

	m.working = make(map[int64]models.CourseSession, len(m.committed))
	for id, s := range m.committed {
		m.working[id] = s
	}
	nextID := m.nextID
	err := fn(nil)
	if err != nil {
		m.working = nil
		m.nextID = nextID
		return err
	}
	m.committed = m.working
	m.working = nil
	return nil
}

func (m *memStore) FindByID(ctx context.Context, id int64) (*models.Timetable, error) {
	t, ok := m.timetables[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &t, nil
}

func (m *memStore) FindDetail(ctx context.Context, id int64) (*models.TimetableDetail, error) {
	t, ok := m.timetables[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &models.TimetableDetail{Timetable: t, Promotion: m.promotions[t.PromotionID], Week: m.weeks[t.WeekID]}, nil
}

func (m *memStore) LockWeek(ctx context.Context, exec sqlx.ExtContext, weekID int64) error {
	m.locked = append(m.locked, weekID)
	return nil
}

func (m *memStore) ListIDsByTimetable(ctx context.Context, exec sqlx.ExtContext, timetableID int64) ([]int64, error) {
	ids := make([]int64, 0)
	for id, s := range m.state() {
		if s.TimetableID == timetableID {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (m *memStore) DeleteByIDs(ctx context.Context, exec sqlx.ExtContext, timetableID int64, ids []int64) error {
	state := m.state()
	for _, id := range ids {
		if s, ok := state[id]; ok && s.TimetableID == timetableID {
			delete(state, id)
		}
	}
	return nil
}

func (m *memStore) ListSlotOccupants(ctx context.Context, exec sqlx.ExtContext, weekID, timeSlotID int64, excludeID *int64) ([]models.SlotOccupant, error) {
	occupants := make([]models.SlotOccupant, 0)
	for id, s := range m.state() {
		if s.TimeSlotID != timeSlotID || m.timetables[s.TimetableID].WeekID != weekID {
			continue
		}
		if excludeID != nil && *excludeID == id {
			continue
		}
		slot := m.slots[s.TimeSlotID]
		occupants = append(occupants, models.SlotOccupant{
			SessionID:     id,
			TimetableID:   s.TimetableID,
			PromotionName: m.promotions[m.timetables[s.TimetableID].PromotionID].Name,
			TeacherID:     s.TeacherID,
			TeacherName:   m.teachers[s.TeacherID],
			RoomID:        s.RoomID,
			RoomName:      m.rooms[s.RoomID],
			TimeSlotID:    s.TimeSlotID,
			DayOfWeek:     slot.DayOfWeek,
			StartTime:     slot.StartTime,
			EndTime:       slot.EndTime,
		})
	}
	sort.Slice(occupants, func(i, j int) bool { return occupants[i].SessionID < occupants[j].SessionID })
	return occupants, nil
}

func (m *memStore) Create(ctx context.Context, exec sqlx.ExtContext, session *models.CourseSession) error {
	if m.createErr != nil {
		return m.createErr
	}
	session.ID = m.nextID
	m.nextID++
	m.state()[session.ID] = *session
	return nil
}

func (m *memStore) Update(ctx context.Context, exec sqlx.ExtContext, session *models.CourseSession) error {
	state := m.state()
	current, ok := state[session.ID]
	if !ok || current.TimetableID != session.TimetableID {
		return sql.ErrNoRows
	}
	session.CreatedAt = current.CreatedAt
	state[session.ID] = *session
	return nil
}

func (m *memStore) ListDetailedByTimetable(ctx context.Context, timetableID int64) ([]models.CourseSessionDetail, error) {
	result := make([]models.CourseSessionDetail, 0)
	for _, s := range m.snapshot(timetableID) {
		slot := m.slots[s.TimeSlotID]
		result = append(result, models.CourseSessionDetail{
			CourseSession: s,
			CourseName:    m.courses[s.CourseID],
			TeacherName:   m.teachers[s.TeacherID],
			RoomName:      m.rooms[s.RoomID],
			DayOfWeek:     slot.DayOfWeek,
			StartTime:     slot.StartTime,
			EndTime:       slot.EndTime,
		})
	}
	return result, nil
}

func (m *memStore) ExistingCourseIDs(ctx context.Context, ids []int64) ([]int64, error) {
	return filterKnown(ids, func(id int64) bool { _, ok := m.courses[id]; return ok }), nil
}

func (m *memStore) ExistingClassroomIDs(ctx context.Context, ids []int64) ([]int64, error) {
	return filterKnown(ids, func(id int64) bool { _, ok := m.rooms[id]; return ok }), nil
}

func (m *memStore) ExistingTimeSlotIDs(ctx context.Context, ids []int64) ([]int64, error) {
	return filterKnown(ids, func(id int64) bool { _, ok := m.slots[id]; return ok }), nil
}

func (m *memStore) FilterIDsWithRole(ctx context.Context, ids []int64, role models.UserRole) ([]int64, error) {
	if role != models.RoleTeacher {
		return nil, nil
	}
	return filterKnown(ids, func(id int64) bool { _, ok := m.teachers[id]; return ok }), nil
}

func filterKnown(ids []int64, known func(int64) bool) []int64 {
	result := make([]int64, 0, len(ids))
	for _, id := range ids {
		if known(id) {
			result = append(result, id)
		}
	}
	return result
}

type notifierStub struct {
	published []*models.TimetableDetail
	err       error
}

func (n *notifierStub) NotifyPublished(ctx context.Context, timetable *models.TimetableDetail, sessionCount int) error {
	n.published = append(n.published, timetable)
	return n.err
}
