package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/rotaboard/rota-api/internal/models"
)

// RosterRepository persists the personnel roster.
type RosterRepository struct {
	db *sqlx.DB
}

// NewRosterRepository constructs the repository.
func NewRosterRepository(db *sqlx.DB) *RosterRepository {
	return &RosterRepository{db: db}
}

const personColumns = `id, full_name, mission, active, created_at, updated_at`

// List returns roster entries matching the filter.
func (r *RosterRepository) List(ctx context.Context, filter models.PersonFilter) ([]models.Person, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}

	if filter.Mission != nil {
		args = append(args, *filter.Mission)
		conditions = append(conditions, fmt.Sprintf("mission = $%d", len(args)))
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		conditions = append(conditions, fmt.Sprintf("active = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		conditions = append(conditions, fmt.Sprintf("full_name ILIKE $%d", len(args)))
	}

	query := fmt.Sprintf(`SELECT %s FROM persons WHERE %s ORDER BY full_name`, personColumns, strings.Join(conditions, " AND "))
	persons := []models.Person{}
	if err := r.db.SelectContext(ctx, &persons, query, args...); err != nil {
		return nil, fmt.Errorf("list persons: %w", err)
	}
	return persons, nil
}

// FindByID returns one roster entry.
func (r *RosterRepository) FindByID(ctx context.Context, id string) (*models.Person, error) {
	query := fmt.Sprintf(`SELECT %s FROM persons WHERE id = $1`, personColumns)
	var person models.Person
	if err := r.db.GetContext(ctx, &person, query, id); err != nil {
		return nil, err
	}
	return &person, nil
}

// Create inserts a roster entry.
func (r *RosterRepository) Create(ctx context.Context, person *models.Person) error {
	if person.ID == "" {
		person.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	person.CreatedAt = now
	person.UpdatedAt = now
	const query = `INSERT INTO persons (id, full_name, mission, active, created_at, updated_at)
		VALUES (:id, :full_name, :mission, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, person); err != nil {
		return fmt.Errorf("create person: %w", err)
	}
	return nil
}

// Update mutates a roster entry.
func (r *RosterRepository) Update(ctx context.Context, person *models.Person) error {
	person.UpdatedAt = time.Now().UTC()
	const query = `UPDATE persons
		SET full_name = :full_name, mission = :mission, active = :active, updated_at = :updated_at
		WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, person); err != nil {
		return fmt.Errorf("update person: %w", err)
	}
	return nil
}
