package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rotaboard/rota-api/internal/models"
	appErrors "github.com/rotaboard/rota-api/pkg/errors"
	"github.com/rotaboard/rota-api/pkg/jobs"
)

type slotCatalogRepository interface {
	ListDefinitions(ctx context.Context) ([]models.SlotDefinition, error)
	FindDefinition(ctx context.Context, key string) (*models.SlotDefinition, error)
	CreateDefinition(ctx context.Context, def *models.SlotDefinition) error
	UpdateDefinition(ctx context.Context, def *models.SlotDefinition) error
	ListInstances(ctx context.Context, weekStart string) ([]models.DayShiftInstance, error)
}

type catalogCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

const catalogCacheKey = "catalog:slots"

// CreateSlotRequest captures the payload for a new slot definition.
type CreateSlotRequest struct {
	Key           string `json:"key" validate:"required"`
	Mission       string `json:"mission" validate:"required"`
	Name          string `json:"name" validate:"required"`
	StartTime     string `json:"start_time" validate:"required"`
	EndTime       string `json:"end_time" validate:"required"`
	RequiredCount int    `json:"required_count" validate:"min=0"`
	IsLong        bool   `json:"is_long"`
}

// UpdateSlotRequest captures mutable slot definition fields.
type UpdateSlotRequest struct {
	Mission       string `json:"mission" validate:"required"`
	Name          string `json:"name" validate:"required"`
	StartTime     string `json:"start_time" validate:"required"`
	EndTime       string `json:"end_time" validate:"required"`
	RequiredCount int    `json:"required_count" validate:"min=0"`
	IsLong        bool   `json:"is_long"`
}

// CatalogService manages the slot catalog and materializes per-week views.
// Admin mutations invalidate the Redis snapshot and notify registered
// listeners off the request path.
type CatalogService struct {
	repo      slotCatalogRepository
	cache     catalogCache
	notify    *jobs.Queue
	validator *validator.Validate
	logger    *zap.Logger
	cacheTTL  time.Duration

	mu        sync.RWMutex
	listeners []func(context.Context)
}

// NewCatalogService wires catalog dependencies. The notification queue may be
// nil, in which case listeners are invoked synchronously.
func NewCatalogService(repo slotCatalogRepository, cache catalogCache, validate *validator.Validate, logger *zap.Logger, cacheTTL time.Duration) *CatalogService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	s := &CatalogService{
		repo:      repo,
		cache:     cache,
		validator: validate,
		logger:    logger,
		cacheTTL:  cacheTTL,
	}
	s.notify = jobs.NewQueue("catalog-changes", s.dispatchChange, jobs.QueueConfig{Workers: 1, Logger: logger})
	return s
}

// StartNotifications begins asynchronous listener dispatch.
func (s *CatalogService) StartNotifications(ctx context.Context) {
	s.notify.Start(ctx)
}

// StopNotifications drains the dispatch queue.
func (s *CatalogService) StopNotifications() {
	s.notify.Stop()
}

// OnCatalogChanged registers a callback invoked after any catalog mutation.
func (s *CatalogService) OnCatalogChanged(fn func(context.Context)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// ListSlots returns all slot definitions, served from cache when warm.
func (s *CatalogService) ListSlots(ctx context.Context) ([]models.SlotDefinition, error) {
	if s.cache != nil {
		var cached []models.SlotDefinition
		if err := s.cache.Get(ctx, catalogCacheKey, &cached); err == nil {
			return cached, nil
		}
	}

	defs, err := s.repo.ListDefinitions(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to list slot catalog")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, catalogCacheKey, defs, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache slot catalog", zap.Error(err))
		}
	}
	return defs, nil
}

// CreateSlot adds a slot definition to the catalog.
func (s *CatalogService) CreateSlot(ctx context.Context, req CreateSlotRequest) (*models.SlotDefinition, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid slot payload")
	}
	if err := validateClock(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}
	if _, err := s.repo.FindDefinition(ctx, req.Key); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "slot key already exists")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to check slot key")
	}

	def := &models.SlotDefinition{
		Key:           req.Key,
		Mission:       models.Mission(req.Mission),
		Name:          req.Name,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		RequiredCount: req.RequiredCount,
		IsLong:        req.IsLong,
	}
	if err := s.repo.CreateDefinition(ctx, def); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to create slot")
	}

	s.catalogChanged(ctx)
	return def, nil
}

// UpdateSlot mutates an existing slot definition.
func (s *CatalogService) UpdateSlot(ctx context.Context, key string, req UpdateSlotRequest) (*models.SlotDefinition, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid slot payload")
	}
	if err := validateClock(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindDefinition(ctx, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "slot not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to load slot")
	}

	existing.Mission = models.Mission(req.Mission)
	existing.Name = req.Name
	existing.StartTime = req.StartTime
	existing.EndTime = req.EndTime
	existing.RequiredCount = req.RequiredCount
	existing.IsLong = req.IsLong

	if err := s.repo.UpdateDefinition(ctx, existing); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "slot not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to update slot")
	}

	s.catalogChanged(ctx)
	return existing, nil
}

// WeekCatalog loads the definitions plus the given week's instance overrides.
func (s *CatalogService) WeekCatalog(ctx context.Context, weekStart string) (*models.SlotCatalog, error) {
	defs, err := s.ListSlots(ctx)
	if err != nil {
		return nil, err
	}
	instances, err := s.repo.ListInstances(ctx, weekStart)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to load week instances")
	}
	return models.NewSlotCatalog(defs, instances), nil
}

// ListInstances returns the override rows for a week.
func (s *CatalogService) ListInstances(ctx context.Context, weekStart string) ([]models.DayShiftInstance, error) {
	if _, err := models.ParseWeekStart(weekStart); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	instances, err := s.repo.ListInstances(ctx, weekStart)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to load week instances")
	}
	return instances, nil
}

func (s *CatalogService) catalogChanged(ctx context.Context) {
	if s.cache != nil {
		if err := s.cache.Delete(ctx, catalogCacheKey); err != nil {
			s.logger.Warn("failed to invalidate catalog cache", zap.Error(err))
		}
	}
	if err := s.notify.Enqueue(jobs.Job{ID: uuid.NewString(), Type: "catalog_changed"}); err != nil {
		// queue not started (tests, sync mode): fall back to direct dispatch
		_ = s.dispatchChange(ctx, jobs.Job{})
	}
}

func (s *CatalogService) dispatchChange(ctx context.Context, _ jobs.Job) error {
	s.mu.RLock()
	listeners := make([]func(context.Context), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.RUnlock()

	for _, fn := range listeners {
		fn(ctx)
	}
	return nil
}

// validateClock rejects malformed or inverted HH:MM windows.
func validateClock(start, end string) error {
	st, err := time.Parse("15:04", start)
	if err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "start_time must be HH:MM")
	}
	et, err := time.Parse("15:04", end)
	if err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "end_time must be HH:MM")
	}
	if !et.After(st) {
		return appErrors.Clone(appErrors.ErrValidation, "end_time must be after start_time")
	}
	return nil
}
