package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/rotaboard/rota-api/internal/models"
	appErrors "github.com/rotaboard/rota-api/pkg/errors"
)

// WeekLocker serializes writers per week. The ledger has no optimistic
// concurrency tokens; each week's state is a single logical resource.
type WeekLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewWeekLocker builds an empty lock set.
func NewWeekLocker() *WeekLocker {
	return &WeekLocker{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the week's mutex, creating it on first use.
func (l *WeekLocker) Lock(weekStart string) func() {
	l.mu.Lock()
	lock, ok := l.locks[weekStart]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[weekStart] = lock
	}
	l.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

type ledgerRepository interface {
	ListByWeek(ctx context.Context, weekStart string) ([]models.Assignment, error)
	FindByID(ctx context.Context, id string) (*models.Assignment, error)
	ReplaceWeek(ctx context.Context, weekStart string, assignments []models.Assignment) error
	UpdateStatus(ctx context.Context, id string, status models.AssignmentStatus, swapReason *string) error
}

// LedgerService owns the durable published assignment state and its
// lifecycle transitions.
type LedgerService struct {
	repo   ledgerRepository
	locker *WeekLocker
	logger *zap.Logger
}

// NewLedgerService wires ledger dependencies.
func NewLedgerService(repo ledgerRepository, locker *WeekLocker, logger *zap.Logger) *LedgerService {
	if locker == nil {
		locker = NewWeekLocker()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerService{repo: repo, locker: locker, logger: logger}
}

// GetWeek returns the week's current ledger.
func (s *LedgerService) GetWeek(ctx context.Context, weekStart string) ([]models.Assignment, error) {
	if _, err := models.ParseWeekStart(weekStart); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	out, err := s.repo.ListByWeek(ctx, weekStart)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to load week ledger")
	}
	return out, nil
}

// Publish replaces the week's ledger with the given set. Full-replace
// semantics: republishing the same set is idempotent and never accumulates
// stale entries. Duplicate cells are rejected before any side effect.
func (s *LedgerService) Publish(ctx context.Context, weekStart string, assignments []models.Assignment) error {
	if _, err := models.ParseWeekStart(weekStart); err != nil {
		return appErrors.Clone(appErrors.ErrValidation, err.Error())
	}

	seen := map[models.AssignmentCell]struct{}{}
	for i := range assignments {
		a := &assignments[i]
		if a.PersonID == "" || a.SlotKey == "" {
			return appErrors.Clone(appErrors.ErrValidation, "assignment requires person_id and slot_key")
		}
		if !a.Day.Valid() {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown day of week %q", a.Day))
		}
		if a.WeekStart != "" && a.WeekStart != weekStart {
			return appErrors.Clone(appErrors.ErrValidation, "assignment week does not match published week")
		}
		if a.Status == "" {
			a.Status = models.StatusAssigned
		}
		cell := a.CellKey()
		if _, dup := seen[cell]; dup {
			return appErrors.Clone(appErrors.ErrValidation,
				fmt.Sprintf("duplicate assignment for person %s on %s/%s", a.PersonID, a.Day, a.SlotKey))
		}
		seen[cell] = struct{}{}
	}

	unlock := s.locker.Lock(weekStart)
	defer unlock()

	if err := s.repo.ReplaceWeek(ctx, weekStart, assignments); err != nil {
		return appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to publish week")
	}

	s.logger.Info("week published",
		zap.String("week_start", weekStart),
		zap.Int("assignments", len(assignments)),
	)
	return nil
}

// Confirm transitions assigned → confirmed.
func (s *LedgerService) Confirm(ctx context.Context, assignmentID string) error {
	a, err := s.findAssignment(ctx, assignmentID)
	if err != nil {
		return err
	}
	if a.Status != models.StatusAssigned {
		return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("cannot confirm assignment in status %q", a.Status))
	}
	if err := s.repo.UpdateStatus(ctx, assignmentID, models.StatusConfirmed, nil); err != nil {
		return appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to confirm assignment")
	}
	return nil
}

// RequestSwap transitions assigned|confirmed → swap_requested with a reason.
func (s *LedgerService) RequestSwap(ctx context.Context, assignmentID, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return appErrors.Clone(appErrors.ErrValidation, "swap reason is required")
	}
	a, err := s.findAssignment(ctx, assignmentID)
	if err != nil {
		return err
	}
	if a.Status != models.StatusAssigned && a.Status != models.StatusConfirmed {
		return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("cannot request swap from status %q", a.Status))
	}
	if err := s.repo.UpdateStatus(ctx, assignmentID, models.StatusSwapRequested, &reason); err != nil {
		return appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to request swap")
	}
	return nil
}

// ResolveSwap closes a swap request. Approved or not, the assignment returns
// to assigned with the reason discarded; an approved exchange is handled
// outside the ledger.
func (s *LedgerService) ResolveSwap(ctx context.Context, assignmentID string, approve bool) error {
	a, err := s.findAssignment(ctx, assignmentID)
	if err != nil {
		return err
	}
	if a.Status != models.StatusSwapRequested {
		return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("assignment is not awaiting swap (status %q)", a.Status))
	}
	if err := s.repo.UpdateStatus(ctx, assignmentID, models.StatusAssigned, nil); err != nil {
		return appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to resolve swap")
	}
	s.logger.Info("swap resolved",
		zap.String("assignment_id", assignmentID),
		zap.Bool("approved", approve),
	)
	return nil
}

func (s *LedgerService) findAssignment(ctx context.Context, id string) (*models.Assignment, error) {
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "assignment id is required")
	}
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to load assignment")
	}
	return a, nil
}
