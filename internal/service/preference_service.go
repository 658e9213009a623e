package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/rotaboard/rota-api/internal/models"
	appErrors "github.com/rotaboard/rota-api/pkg/errors"
)

type preferenceRepository interface {
	ListByWeek(ctx context.Context, weekStart string) ([]models.PreferenceSubmission, error)
	GetByPersonWeek(ctx context.Context, personID, weekStart string) (*models.PreferenceSubmission, error)
	Upsert(ctx context.Context, sub *models.PreferenceSubmission) error
}

type preferencePersonReader interface {
	FindByID(ctx context.Context, id string) (*models.Person, error)
}

// PreferenceView is the decoded shape handed to callers: day map and opt-ins
// already unmarshalled and normalised.
type PreferenceView struct {
	PersonID      string                 `json:"person_id"`
	WeekStart     string                 `json:"week_start"`
	Days          models.PreferenceDays  `json:"days"`
	LongShiftDays models.LongShiftOptIns `json:"long_shift_days"`
	Notes         string                 `json:"notes"`
	UpdatedAt     string                 `json:"updated_at"`
}

// SubmitPreferenceRequest is the inbound submission payload.
type SubmitPreferenceRequest struct {
	PersonID      string              `json:"person_id" validate:"required,uuid4"`
	Days          map[string][]string `json:"days"`
	LongShiftDays map[string]bool     `json:"long_shift_days"`
	Notes         string              `json:"notes" validate:"max=500"`
}

// PreferenceService validates and stores weekly slot preferences.
type PreferenceService struct {
	preferences preferenceRepository
	roster      preferencePersonReader
	catalog     weekCatalogProvider
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewPreferenceService wires preference dependencies.
func NewPreferenceService(preferences preferenceRepository, roster preferencePersonReader, catalog weekCatalogProvider, v *validator.Validate, logger *zap.Logger) *PreferenceService {
	if v == nil {
		v = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PreferenceService{
		preferences: preferences,
		roster:      roster,
		catalog:     catalog,
		validator:   v,
		logger:      logger,
	}
}

// Get returns the decoded submission for one person and week, or NotFound.
func (s *PreferenceService) Get(ctx context.Context, personID, weekStart string) (*PreferenceView, error) {
	if _, err := models.ParseWeekStart(weekStart); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	sub, err := s.preferences.GetByPersonWeek(ctx, personID, weekStart)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no submission for this person and week")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to load submission")
	}
	return decodeSubmission(sub)
}

// ListWeek returns every decoded submission for a week.
func (s *PreferenceService) ListWeek(ctx context.Context, weekStart string) ([]PreferenceView, error) {
	if _, err := models.ParseWeekStart(weekStart); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	subs, err := s.preferences.ListByWeek(ctx, weekStart)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to list submissions")
	}
	views := make([]PreferenceView, 0, len(subs))
	for i := range subs {
		view, err := decodeSubmission(&subs[i])
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}
	return views, nil
}

// Submit validates a submission against the roster and the week's catalog and
// stores it, overwriting any previous submission for the (person, week) pair.
// Unknown slot keys and long-shift opt-ins for ineligible slots are rejected.
func (s *PreferenceService) Submit(ctx context.Context, weekStart string, req *SubmitPreferenceRequest) (*PreferenceView, error) {
	if _, err := models.ParseWeekStart(weekStart); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}

	person, err := s.roster.FindByID(ctx, req.PersonID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown person")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to load person")
	}
	if !person.Active {
		return nil, appErrors.Clone(appErrors.ErrValidation, "person is not active")
	}

	catalog, err := s.catalog.WeekCatalog(ctx, weekStart)
	if err != nil {
		return nil, err
	}

	for name := range req.Days {
		if _, err := models.ParseWeekday(name); err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown day of week %q", name))
		}
	}
	days := models.NormalizeDays(req.Days)
	for _, keys := range days {
		for _, key := range keys {
			def, ok := catalog.Definition(key)
			if !ok {
				return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown slot key %q", key))
			}
			if def.Mission != person.Mission {
				return nil, appErrors.Clone(appErrors.ErrValidation,
					fmt.Sprintf("slot %q belongs to mission %q, person is %q", key, def.Mission, person.Mission))
			}
		}
	}

	optIns := models.LongShiftOptIns{}
	for name, opted := range req.LongShiftDays {
		day, err := models.ParseWeekday(name)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown day of week %q", name))
		}
		if opted && !dayHasLongSlot(catalog, days[day]) {
			return nil, appErrors.Clone(appErrors.ErrValidation,
				fmt.Sprintf("long-shift opt-in on %s without a long-shift eligible slot", day))
		}
		optIns[day] = opted
	}

	encodedDays, err := models.EncodeDays(days)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode day map")
	}
	encodedOptIns, err := models.EncodeLongShiftDays(optIns)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode opt-ins")
	}

	sub := &models.PreferenceSubmission{
		PersonID:      req.PersonID,
		WeekStart:     weekStart,
		Days:          encodedDays,
		LongShiftDays: encodedOptIns,
		Notes:         req.Notes,
	}
	if err := s.preferences.Upsert(ctx, sub); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to store submission")
	}

	s.logger.Info("preference submission stored",
		zap.String("person_id", req.PersonID), zap.String("week_start", weekStart))
	return decodeSubmission(sub)
}

func dayHasLongSlot(catalog *models.SlotCatalog, keys []string) bool {
	for _, key := range keys {
		if def, ok := catalog.Definition(key); ok && def.IsLong {
			return true
		}
	}
	return false
}

func decodeSubmission(sub *models.PreferenceSubmission) (*PreferenceView, error) {
	days, err := sub.DecodeDays()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "corrupt day map in store")
	}
	optIns, err := sub.DecodeLongShiftDays()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "corrupt opt-in map in store")
	}
	return &PreferenceView{
		PersonID:      sub.PersonID,
		WeekStart:     sub.WeekStart,
		Days:          days,
		LongShiftDays: optIns,
		Notes:         sub.Notes,
		UpdatedAt:     sub.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}, nil
}
