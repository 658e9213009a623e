package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/rotaboard/rota-api/internal/models"
	"github.com/rotaboard/rota-api/pkg/config"
	appErrors "github.com/rotaboard/rota-api/pkg/errors"
)

type overrideAssignmentRepository interface {
	ListByWeek(ctx context.Context, weekStart string) ([]models.Assignment, error)
	Upsert(ctx context.Context, a *models.Assignment) error
	Delete(ctx context.Context, id string) error
}

type overridePersonReader interface {
	FindByID(ctx context.Context, id string) (*models.Person, error)
}

type overrideInstanceRepository interface {
	GetInstance(ctx context.Context, weekStart string, day models.Weekday, slotKey string) (*models.DayShiftInstance, error)
	UpsertInstance(ctx context.Context, inst *models.DayShiftInstance) error
}

// OverrideService applies point edits on top of the published ledger: toggle
// one cell, toggle long-shift hours, cancel a day's slot. Each edit is atomic
// with respect to the week's ledger.
type OverrideService struct {
	assignments overrideAssignmentRepository
	roster      overridePersonReader
	instances   overrideInstanceRepository
	catalog     weekCatalogProvider
	locker      *WeekLocker
	cfg         config.SchedulerConfig
	logger      *zap.Logger
}

// NewOverrideService wires override dependencies. The locker must be the same
// instance the ledger service uses so manual edits and publishes serialize.
func NewOverrideService(
	assignments overrideAssignmentRepository,
	roster overridePersonReader,
	instances overrideInstanceRepository,
	catalog weekCatalogProvider,
	locker *WeekLocker,
	cfg config.SchedulerConfig,
	logger *zap.Logger,
) *OverrideService {
	if locker == nil {
		locker = NewWeekLocker()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.OverloadThreshold <= 0 {
		cfg.OverloadThreshold = 6
	}
	return &OverrideService{
		assignments: assignments,
		roster:      roster,
		instances:   instances,
		catalog:     catalog,
		locker:      locker,
		cfg:         cfg,
		logger:      logger,
	}
}

// ToggleCell flips one (person, day, slot) cell: removes the assignment when
// held, inserts it otherwise. Inserting past the weekly threshold requires
// confirmOverload; toggling is its own inverse.
func (s *OverrideService) ToggleCell(ctx context.Context, weekStart string, day models.Weekday, slotKey, personID string, confirmOverload bool) (*models.AssignmentDelta, error) {
	catalog, def, err := s.resolveCell(ctx, weekStart, day, slotKey)
	if err != nil {
		return nil, err
	}
	if personID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "person id is required")
	}

	unlock := s.locker.Lock(weekStart)
	defer unlock()

	week, err := s.assignments.ListByWeek(ctx, weekStart)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to load week ledger")
	}

	cell := models.AssignmentCell{PersonID: personID, Day: day, SlotKey: slotKey}
	var weeklyCount int
	for i := range week {
		if week[i].PersonID == personID {
			weeklyCount++
		}
		if week[i].CellKey() == cell {
			if err := s.assignments.Delete(ctx, week[i].ID); err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to remove assignment")
			}
			s.logger.Info("assignment removed by override",
				zap.String("week_start", weekStart), zap.String("person_id", personID),
				zap.String("day", string(day)), zap.String("slot_key", slotKey))
			return &models.AssignmentDelta{Action: models.DeltaRemoved, Assignment: week[i]}, nil
		}
	}

	person, err := s.roster.FindByID(ctx, personID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown person")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to load person")
	}
	if !person.Active {
		return nil, appErrors.Clone(appErrors.ErrValidation, "person is not active")
	}
	if person.Mission != def.Mission {
		return nil, appErrors.Clone(appErrors.ErrConflict,
			fmt.Sprintf("person mission %q does not match slot mission %q", person.Mission, def.Mission))
	}
	if catalog.Cancelled(day, slotKey) {
		return nil, appErrors.Clone(appErrors.ErrConflict, "slot is cancelled for this day")
	}
	if weeklyCount+1 > s.cfg.OverloadThreshold && !confirmOverload {
		return nil, appErrors.Clone(appErrors.ErrOverloadConfirmation,
			fmt.Sprintf("placement would exceed %d weekly shifts, retry with confirm", s.cfg.OverloadThreshold))
	}

	startTime, endTime := catalog.Times(day, slotKey)
	assignment := &models.Assignment{
		PersonID:  personID,
		WeekStart: weekStart,
		Day:       day,
		SlotKey:   slotKey,
		StartTime: startTime,
		EndTime:   endTime,
		Status:    models.StatusAssigned,
	}
	if err := s.assignments.Upsert(ctx, assignment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to insert assignment")
	}

	s.logger.Info("assignment added by override",
		zap.String("week_start", weekStart), zap.String("person_id", personID),
		zap.String("day", string(day)), zap.String("slot_key", slotKey))
	return &models.AssignmentDelta{Action: models.DeltaAdded, Assignment: *assignment}, nil
}

// ToggleLongShift mutates only the long-shift flag and the recomputed end
// time of an existing assignment. A missing assignment is a NotFound signal,
// not a failure: the UI commonly races the base toggle.
func (s *OverrideService) ToggleLongShift(ctx context.Context, weekStart string, day models.Weekday, slotKey, personID string, enabled bool) (*models.Assignment, error) {
	catalog, def, err := s.resolveCell(ctx, weekStart, day, slotKey)
	if err != nil {
		return nil, err
	}
	if enabled && !def.IsLong {
		return nil, appErrors.Clone(appErrors.ErrValidation, "slot is not long-shift eligible")
	}

	unlock := s.locker.Lock(weekStart)
	defer unlock()

	week, err := s.assignments.ListByWeek(ctx, weekStart)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to load week ledger")
	}

	cell := models.AssignmentCell{PersonID: personID, Day: day, SlotKey: slotKey}
	for i := range week {
		if week[i].CellKey() != cell {
			continue
		}
		a := week[i]
		a.IsLongShift = enabled
		if enabled {
			a.EndTime = s.longShiftEnd(day)
		} else {
			_, a.EndTime = catalog.Times(day, slotKey)
		}
		if err := s.assignments.Upsert(ctx, &a); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to update long shift")
		}
		return &a, nil
	}

	return nil, appErrors.Clone(appErrors.ErrNotFound, "no assignment for this cell")
}

// CancelSlot toggles the cancelled flag on a day instance. Assignments
// already made against the cell stay in the ledger; the slot renders as void.
func (s *OverrideService) CancelSlot(ctx context.Context, weekStart string, day models.Weekday, slotKey string) (*models.DayShiftInstance, error) {
	if _, _, err := s.resolveCell(ctx, weekStart, day, slotKey); err != nil {
		return nil, err
	}

	unlock := s.locker.Lock(weekStart)
	defer unlock()

	inst, err := s.instances.GetInstance(ctx, weekStart, day, slotKey)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to load day instance")
		}
		inst = &models.DayShiftInstance{
			WeekStart: weekStart,
			Day:       day,
			SlotKey:   slotKey,
		}
	}
	inst.Cancelled = !inst.Cancelled

	if err := s.instances.UpsertInstance(ctx, inst); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to update day instance")
	}

	s.logger.Info("slot cancellation toggled",
		zap.String("week_start", weekStart), zap.String("day", string(day)),
		zap.String("slot_key", slotKey), zap.Bool("cancelled", inst.Cancelled))
	return inst, nil
}

// resolveCell validates the (week, day, slot) coordinates and loads the week
// catalog, rejecting malformed input before any side effect.
func (s *OverrideService) resolveCell(ctx context.Context, weekStart string, day models.Weekday, slotKey string) (*models.SlotCatalog, models.SlotDefinition, error) {
	if _, err := models.ParseWeekStart(weekStart); err != nil {
		return nil, models.SlotDefinition{}, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	if !day.Valid() {
		return nil, models.SlotDefinition{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown day of week %q", day))
	}
	catalog, err := s.catalog.WeekCatalog(ctx, weekStart)
	if err != nil {
		return nil, models.SlotDefinition{}, err
	}
	def, ok := catalog.Definition(slotKey)
	if !ok {
		return nil, models.SlotDefinition{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown slot key %q", slotKey))
	}
	return catalog, def, nil
}

func (s *OverrideService) longShiftEnd(day models.Weekday) string {
	if override, ok := s.cfg.LongShiftEndTimeByDay[string(day)]; ok {
		return override
	}
	return s.cfg.LongShiftEndTime
}
