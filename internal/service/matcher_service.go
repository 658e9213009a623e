package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rotaboard/rota-api/internal/models"
	"github.com/rotaboard/rota-api/pkg/config"
	appErrors "github.com/rotaboard/rota-api/pkg/errors"
)

type matcherRosterReader interface {
	List(ctx context.Context, filter models.PersonFilter) ([]models.Person, error)
}

type matcherPreferenceReader interface {
	ListByWeek(ctx context.Context, weekStart string) ([]models.PreferenceSubmission, error)
}

type weekCatalogProvider interface {
	WeekCatalog(ctx context.Context, weekStart string) (*models.SlotCatalog, error)
}

// MatcherService converts the week's preference submissions into a candidate
// assignment set. The pass is greedy and preference-driven: every stated
// preference is honoured unless it directly conflicts, and required headcount
// is never a hard cap.
type MatcherService struct {
	roster      matcherRosterReader
	preferences matcherPreferenceReader
	catalog     weekCatalogProvider
	cfg         config.SchedulerConfig
	logger      *zap.Logger
}

// NewMatcherService wires matcher dependencies.
func NewMatcherService(roster matcherRosterReader, preferences matcherPreferenceReader, catalog weekCatalogProvider, cfg config.SchedulerConfig, logger *zap.Logger) *MatcherService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.OverloadThreshold <= 0 {
		cfg.OverloadThreshold = 6
	}
	return &MatcherService{
		roster:      roster,
		preferences: preferences,
		catalog:     catalog,
		cfg:         cfg,
		logger:      logger,
	}
}

// Match runs the coverage pass for one week. Per-placement problems become
// ConflictRecords; only structural failures (bad week key, store down) abort
// the call.
func (s *MatcherService) Match(ctx context.Context, weekStart string) (*models.MatchResult, error) {
	if _, err := models.ParseWeekStart(weekStart); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}

	catalog, err := s.catalog.WeekCatalog(ctx, weekStart)
	if err != nil {
		return nil, err
	}

	roster, err := s.roster.List(ctx, models.PersonFilter{})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to load roster")
	}
	persons := make(map[string]models.Person, len(roster))
	for _, p := range roster {
		persons[p.ID] = p
	}

	submissions, err := s.preferences.ListByWeek(ctx, weekStart)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to load preferences")
	}
	sort.Slice(submissions, func(i, j int) bool {
		return submissions[i].PersonID < submissions[j].PersonID
	})

	result := &models.MatchResult{
		WeekStart:      weekStart,
		Assignments:    []models.Assignment{},
		Conflicts:      []models.ConflictRecord{},
		UnassignedPool: []string{},
	}

	placed := map[models.AssignmentCell]struct{}{}
	weeklyCount := map[string]int{}
	submitted := map[string]struct{}{}

	for _, sub := range submissions {
		submitted[sub.PersonID] = struct{}{}

		person, known := persons[sub.PersonID]
		if !known || !person.Active {
			// stale submission from someone no longer on the active roster
			s.logger.Debug("skipping submission without active roster entry",
				zap.String("person_id", sub.PersonID), zap.String("week_start", weekStart))
			continue
		}

		days, err := sub.DecodeDays()
		if err != nil {
			s.logger.Warn("malformed preference day map",
				zap.String("person_id", sub.PersonID), zap.Error(err))
			continue
		}
		longOptIns, err := sub.DecodeLongShiftDays()
		if err != nil {
			s.logger.Warn("malformed long shift opt-in map",
				zap.String("person_id", sub.PersonID), zap.Error(err))
			longOptIns = models.LongShiftOptIns{}
		}

		for _, day := range models.WeekDays {
			for _, slotKey := range days[day] {
				s.placeOne(catalog, person, day, slotKey, longOptIns[day], weekStart, placed, weeklyCount, result)
			}
		}
	}

	for _, p := range roster {
		if !p.Active {
			continue
		}
		if _, ok := submitted[p.ID]; !ok {
			result.UnassignedPool = append(result.UnassignedPool, p.ID)
		}
	}
	sort.Strings(result.UnassignedPool)

	result.Coverage = buildCoverage(catalog, result.Assignments)

	s.logger.Info("coverage match completed",
		zap.String("week_start", weekStart),
		zap.Int("assignments", len(result.Assignments)),
		zap.Int("conflicts", len(result.Conflicts)),
		zap.Int("unassigned", len(result.UnassignedPool)),
	)
	return result, nil
}

// placeOne attempts a single (person, day, slot) placement, downgrading every
// failure to a ConflictRecord so one bad preference never aborts the week.
func (s *MatcherService) placeOne(
	catalog *models.SlotCatalog,
	person models.Person,
	day models.Weekday,
	slotKey string,
	longOptIn bool,
	weekStart string,
	placed map[models.AssignmentCell]struct{},
	weeklyCount map[string]int,
	result *models.MatchResult,
) {
	def, ok := catalog.Definition(slotKey)
	if !ok {
		// slot removed from the catalog after submission; the preference
		// boundary rejects unknown keys, so this only happens on races
		s.logger.Warn("preference references unknown slot key",
			zap.String("person_id", person.ID), zap.String("slot_key", slotKey))
		return
	}

	if def.Mission != person.Mission {
		result.Conflicts = append(result.Conflicts, models.ConflictRecord{
			Kind:     models.ConflictMissionMismatch,
			PersonID: person.ID,
			Day:      day,
			SlotKey:  slotKey,
			Message:  fmt.Sprintf("person mission %q does not match slot mission %q", person.Mission, def.Mission),
		})
		return
	}

	if catalog.Cancelled(day, slotKey) {
		result.Conflicts = append(result.Conflicts, models.ConflictRecord{
			Kind:     models.ConflictCancelledSlot,
			PersonID: person.ID,
			Day:      day,
			SlotKey:  slotKey,
			Message:  "slot is cancelled for this day",
		})
		return
	}

	cell := models.AssignmentCell{PersonID: person.ID, Day: day, SlotKey: slotKey}
	if _, dup := placed[cell]; dup {
		result.Conflicts = append(result.Conflicts, models.ConflictRecord{
			Kind:     models.ConflictDuplicate,
			PersonID: person.ID,
			Day:      day,
			SlotKey:  slotKey,
			Message:  "person already holds this slot on this day",
		})
		return
	}

	startTime, endTime := catalog.Times(day, slotKey)
	isLong := def.IsLong && longOptIn
	if isLong {
		endTime = s.LongShiftEnd(day)
	}

	placed[cell] = struct{}{}
	weeklyCount[person.ID]++
	result.Assignments = append(result.Assignments, models.Assignment{
		ID:          uuid.NewString(),
		PersonID:    person.ID,
		WeekStart:   weekStart,
		Day:         day,
		SlotKey:     slotKey,
		StartTime:   startTime,
		EndTime:     endTime,
		Status:      models.StatusAssigned,
		IsLongShift: isLong,
	})

	// overload is informational in bulk mode: the placement stands
	if weeklyCount[person.ID] > s.cfg.OverloadThreshold {
		result.Conflicts = append(result.Conflicts, models.ConflictRecord{
			Kind:     models.ConflictOverload,
			PersonID: person.ID,
			Day:      day,
			SlotKey:  slotKey,
			Message:  fmt.Sprintf("weekly assignment count %d exceeds threshold %d", weeklyCount[person.ID], s.cfg.OverloadThreshold),
		})
	}
}

// LongShiftEnd resolves the extended end time for a day-of-week from the
// configuration table.
func (s *MatcherService) LongShiftEnd(day models.Weekday) string {
	if override, ok := s.cfg.LongShiftEndTimeByDay[string(day)]; ok {
		return override
	}
	return s.cfg.LongShiftEndTime
}

// buildCoverage summarises every catalog cell that requires or received
// people, in week order for stable output.
func buildCoverage(catalog *models.SlotCatalog, assignments []models.Assignment) []models.SlotCoverage {
	counts := map[models.InstanceKey]int{}
	for _, a := range assignments {
		counts[models.InstanceKey{Day: a.Day, SlotKey: a.SlotKey}]++
	}

	keys := make([]string, 0, len(catalog.Definitions))
	for key := range catalog.Definitions {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	coverage := []models.SlotCoverage{}
	for _, day := range models.WeekDays {
		for _, key := range keys {
			required := catalog.RequiredCount(day, key)
			assigned := counts[models.InstanceKey{Day: day, SlotKey: key}]
			cancelled := catalog.Cancelled(day, key)
			if required == 0 && assigned == 0 && !cancelled {
				continue
			}
			coverage = append(coverage, models.SlotCoverage{
				Day:           day,
				SlotKey:       key,
				RequiredCount: required,
				AssignedCount: assigned,
				OverAssigned:  assigned > required,
				UnderAssigned: !cancelled && assigned < required,
				Cancelled:     cancelled,
			})
		}
	}
	return coverage
}
