package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rotaboard/rota-api/internal/models"
	appErrors "github.com/rotaboard/rota-api/pkg/errors"
)

type assignmentStoreStub struct {
	nextID int
	rows   []models.Assignment
}

func (s *assignmentStoreStub) ListByWeek(_ context.Context, weekStart string) ([]models.Assignment, error) {
	out := make([]models.Assignment, 0, len(s.rows))
	for _, a := range s.rows {
		if a.WeekStart == weekStart {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *assignmentStoreStub) Upsert(_ context.Context, a *models.Assignment) error {
	if a.ID == "" {
		s.nextID++
		a.ID = fmt.Sprintf("a%d", s.nextID)
	}
	for i := range s.rows {
		if s.rows[i].ID == a.ID {
			s.rows[i] = *a
			return nil
		}
	}
	s.rows = append(s.rows, *a)
	return nil
}

func (s *assignmentStoreStub) Delete(_ context.Context, id string) error {
	for i := range s.rows {
		if s.rows[i].ID == id {
			s.rows = append(s.rows[:i], s.rows[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

type personReaderStub struct {
	persons map[string]models.Person
}

func (s personReaderStub) FindByID(_ context.Context, id string) (*models.Person, error) {
	p, ok := s.persons[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &p, nil
}

type instanceStoreStub struct {
	instances map[string]models.DayShiftInstance
}

func instanceKey(weekStart string, day models.Weekday, slotKey string) string {
	return weekStart + "/" + string(day) + "/" + slotKey
}

func (s *instanceStoreStub) GetInstance(_ context.Context, weekStart string, day models.Weekday, slotKey string) (*models.DayShiftInstance, error) {
	inst, ok := s.instances[instanceKey(weekStart, day, slotKey)]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &inst, nil
}

func (s *instanceStoreStub) UpsertInstance(_ context.Context, inst *models.DayShiftInstance) error {
	if s.instances == nil {
		s.instances = map[string]models.DayShiftInstance{}
	}
	s.instances[instanceKey(inst.WeekStart, inst.Day, inst.SlotKey)] = *inst
	return nil
}

type overrideFixture struct {
	service     *OverrideService
	assignments *assignmentStoreStub
	instances   *instanceStoreStub
}

func newOverrideFixture(persons []models.Person, catalog *models.SlotCatalog) *overrideFixture {
	byID := map[string]models.Person{}
	for _, p := range persons {
		byID[p.ID] = p
	}
	assignments := &assignmentStoreStub{}
	instances := &instanceStoreStub{}
	return &overrideFixture{
		service: NewOverrideService(
			assignments,
			personReaderStub{persons: byID},
			instances,
			catalogStub{catalog: catalog},
			nil,
			testSchedulerConfig(),
			nil,
		),
		assignments: assignments,
		instances:   instances,
	}
}

func TestToggleCellIsItsOwnInverse(t *testing.T) {
	fx := newOverrideFixture([]models.Person{mkPerson("p1", "front-desk")}, frontDeskCatalog())

	added, err := fx.service.ToggleCell(context.Background(), testWeek, models.Monday, "front-morning", "p1", false)
	require.NoError(t, err)
	assert.Equal(t, models.DeltaAdded, added.Action)
	assert.Equal(t, models.StatusAssigned, added.Assignment.Status)
	assert.Equal(t, "08:00", added.Assignment.StartTime)
	assert.Len(t, fx.assignments.rows, 1)

	removed, err := fx.service.ToggleCell(context.Background(), testWeek, models.Monday, "front-morning", "p1", false)
	require.NoError(t, err)
	assert.Equal(t, models.DeltaRemoved, removed.Action)
	assert.Equal(t, added.Assignment.ID, removed.Assignment.ID)
	assert.Empty(t, fx.assignments.rows)
}

func TestToggleCellRejectsMissionMismatch(t *testing.T) {
	fx := newOverrideFixture([]models.Person{mkPerson("p1", "support")}, frontDeskCatalog())

	_, err := fx.service.ToggleCell(context.Background(), testWeek, models.Monday, "front-morning", "p1", false)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestToggleCellRejectsCancelledSlot(t *testing.T) {
	catalog := models.NewSlotCatalog([]models.SlotDefinition{
		{Key: "front-morning", Mission: "front-desk", StartTime: "08:00", EndTime: "13:00", RequiredCount: 2},
	}, []models.DayShiftInstance{
		{WeekStart: testWeek, Day: models.Tuesday, SlotKey: "front-morning", Cancelled: true},
	})
	fx := newOverrideFixture([]models.Person{mkPerson("p1", "front-desk")}, catalog)

	_, err := fx.service.ToggleCell(context.Background(), testWeek, models.Tuesday, "front-morning", "p1", false)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)

	// the same slot is still open on other days
	_, err = fx.service.ToggleCell(context.Background(), testWeek, models.Monday, "front-morning", "p1", false)
	assert.NoError(t, err)
}

func TestToggleCellOverloadRequiresConfirmation(t *testing.T) {
	fx := newOverrideFixture([]models.Person{mkPerson("p1", "front-desk")}, frontDeskCatalog())

	for _, day := range models.WeekDays[:6] {
		_, err := fx.service.ToggleCell(context.Background(), testWeek, day, "front-morning", "p1", false)
		require.NoError(t, err)
	}

	_, err := fx.service.ToggleCell(context.Background(), testWeek, models.Saturday, "front-morning", "p1", false)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrOverloadConfirmation.Code, appErrors.FromError(err).Code)
	assert.Len(t, fx.assignments.rows, 6)

	delta, err := fx.service.ToggleCell(context.Background(), testWeek, models.Saturday, "front-morning", "p1", true)
	require.NoError(t, err)
	assert.Equal(t, models.DeltaAdded, delta.Action)
	assert.Len(t, fx.assignments.rows, 7)
}

func TestToggleCellRejectsUnknownPerson(t *testing.T) {
	fx := newOverrideFixture(nil, frontDeskCatalog())

	_, err := fx.service.ToggleCell(context.Background(), testWeek, models.Monday, "front-morning", "ghost", false)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestToggleLongShiftRewritesEndTime(t *testing.T) {
	fx := newOverrideFixture([]models.Person{mkPerson("p1", "front-desk")}, frontDeskCatalog())
	_, err := fx.service.ToggleCell(context.Background(), testWeek, models.Monday, "front-afternoon", "p1", false)
	require.NoError(t, err)
	_, err = fx.service.ToggleCell(context.Background(), testWeek, models.Wednesday, "front-afternoon", "p1", false)
	require.NoError(t, err)

	monday, err := fx.service.ToggleLongShift(context.Background(), testWeek, models.Monday, "front-afternoon", "p1", true)
	require.NoError(t, err)
	assert.True(t, monday.IsLongShift)
	assert.Equal(t, "19:30", monday.EndTime)

	wednesday, err := fx.service.ToggleLongShift(context.Background(), testWeek, models.Wednesday, "front-afternoon", "p1", true)
	require.NoError(t, err)
	assert.Equal(t, "18:30", wednesday.EndTime)

	// disabling restores the slot's base end time
	monday, err = fx.service.ToggleLongShift(context.Background(), testWeek, models.Monday, "front-afternoon", "p1", false)
	require.NoError(t, err)
	assert.False(t, monday.IsLongShift)
	assert.Equal(t, "17:30", monday.EndTime)
}

func TestToggleLongShiftRequiresEligibleSlot(t *testing.T) {
	fx := newOverrideFixture([]models.Person{mkPerson("p1", "front-desk")}, frontDeskCatalog())
	_, err := fx.service.ToggleCell(context.Background(), testWeek, models.Monday, "front-morning", "p1", false)
	require.NoError(t, err)

	_, err = fx.service.ToggleLongShift(context.Background(), testWeek, models.Monday, "front-morning", "p1", true)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestToggleLongShiftMissingCell(t *testing.T) {
	fx := newOverrideFixture([]models.Person{mkPerson("p1", "front-desk")}, frontDeskCatalog())

	_, err := fx.service.ToggleLongShift(context.Background(), testWeek, models.Monday, "front-afternoon", "p1", true)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestCancelSlotToggles(t *testing.T) {
	fx := newOverrideFixture(nil, frontDeskCatalog())

	inst, err := fx.service.CancelSlot(context.Background(), testWeek, models.Friday, "front-morning")
	require.NoError(t, err)
	assert.True(t, inst.Cancelled)

	inst, err = fx.service.CancelSlot(context.Background(), testWeek, models.Friday, "front-morning")
	require.NoError(t, err)
	assert.False(t, inst.Cancelled)
}

func TestCancelSlotUnknownKey(t *testing.T) {
	fx := newOverrideFixture(nil, frontDeskCatalog())

	_, err := fx.service.CancelSlot(context.Background(), testWeek, models.Friday, "nope")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
