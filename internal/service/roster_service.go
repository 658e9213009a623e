package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/rotaboard/rota-api/internal/models"
	appErrors "github.com/rotaboard/rota-api/pkg/errors"
)

type rosterRepository interface {
	List(ctx context.Context, filter models.PersonFilter) ([]models.Person, error)
	FindByID(ctx context.Context, id string) (*models.Person, error)
	Create(ctx context.Context, person *models.Person) error
	Update(ctx context.Context, person *models.Person) error
}

// CreatePersonRequest is the inbound roster-creation payload.
type CreatePersonRequest struct {
	FullName string `json:"full_name" validate:"required,min=2,max=120"`
	Mission  string `json:"mission" validate:"required,min=1,max=60"`
	Active   *bool  `json:"active"`
}

// UpdatePersonRequest carries partial roster mutations. Nil fields are left
// untouched.
type UpdatePersonRequest struct {
	FullName *string `json:"full_name" validate:"omitempty,min=2,max=120"`
	Mission  *string `json:"mission" validate:"omitempty,min=1,max=60"`
	Active   *bool   `json:"active"`
}

// RosterService manages the personnel roster.
type RosterService struct {
	roster    rosterRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRosterService wires roster dependencies.
func NewRosterService(roster rosterRepository, v *validator.Validate, logger *zap.Logger) *RosterService {
	if v == nil {
		v = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RosterService{roster: roster, validator: v, logger: logger}
}

// List returns roster entries matching the filter.
func (s *RosterService) List(ctx context.Context, filter models.PersonFilter) ([]models.Person, error) {
	persons, err := s.roster.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to list roster")
	}
	return persons, nil
}

// Get returns one roster entry or NotFound.
func (s *RosterService) Get(ctx context.Context, id string) (*models.Person, error) {
	person, err := s.roster.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "person not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to load person")
	}
	return person, nil
}

// Create adds a roster entry. New entries default to active.
func (s *RosterService) Create(ctx context.Context, req *CreatePersonRequest) (*models.Person, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	person := &models.Person{
		FullName: req.FullName,
		Mission:  models.Mission(req.Mission),
		Active:   true,
	}
	if req.Active != nil {
		person.Active = *req.Active
	}
	if err := s.roster.Create(ctx, person); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to create person")
	}
	s.logger.Info("roster entry created", zap.String("person_id", person.ID), zap.String("mission", string(person.Mission)))
	return person, nil
}

// Update applies a partial mutation to a roster entry. Deactivating a person
// leaves their existing assignments in place; the matcher simply stops
// considering them in future runs.
func (s *RosterService) Update(ctx context.Context, id string, req *UpdatePersonRequest) (*models.Person, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	person, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.FullName != nil {
		person.FullName = *req.FullName
	}
	if req.Mission != nil {
		person.Mission = models.Mission(*req.Mission)
	}
	if req.Active != nil {
		person.Active = *req.Active
	}
	if err := s.roster.Update(ctx, person); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to update person")
	}
	s.logger.Info("roster entry updated", zap.String("person_id", person.ID))
	return person, nil
}
