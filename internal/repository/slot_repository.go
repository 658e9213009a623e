package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/rotaboard/rota-api/internal/models"
)

// SlotRepository persists the slot catalog: definitions plus per-week day
// instance overrides.
type SlotRepository struct {
	db *sqlx.DB
}

// NewSlotRepository constructs the repository.
func NewSlotRepository(db *sqlx.DB) *SlotRepository {
	return &SlotRepository{db: db}
}

const slotDefinitionColumns = `key, mission, name, start_time, end_time, required_count, is_long, created_at, updated_at`

// ListDefinitions returns every slot definition ordered by key.
func (r *SlotRepository) ListDefinitions(ctx context.Context) ([]models.SlotDefinition, error) {
	query := fmt.Sprintf(`SELECT %s FROM slot_definitions ORDER BY key`, slotDefinitionColumns)
	defs := []models.SlotDefinition{}
	if err := r.db.SelectContext(ctx, &defs, query); err != nil {
		return nil, fmt.Errorf("list slot definitions: %w", err)
	}
	return defs, nil
}

// FindDefinition returns one slot definition by key.
func (r *SlotRepository) FindDefinition(ctx context.Context, key string) (*models.SlotDefinition, error) {
	query := fmt.Sprintf(`SELECT %s FROM slot_definitions WHERE key = $1`, slotDefinitionColumns)
	var def models.SlotDefinition
	if err := r.db.GetContext(ctx, &def, query, key); err != nil {
		return nil, err
	}
	return &def, nil
}

// CreateDefinition inserts a new slot definition.
func (r *SlotRepository) CreateDefinition(ctx context.Context, def *models.SlotDefinition) error {
	now := time.Now().UTC()
	def.CreatedAt = now
	def.UpdatedAt = now
	const query = `INSERT INTO slot_definitions (key, mission, name, start_time, end_time, required_count, is_long, created_at, updated_at)
		VALUES (:key, :mission, :name, :start_time, :end_time, :required_count, :is_long, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, def); err != nil {
		return fmt.Errorf("create slot definition: %w", err)
	}
	return nil
}

// UpdateDefinition mutates an existing slot definition.
func (r *SlotRepository) UpdateDefinition(ctx context.Context, def *models.SlotDefinition) error {
	def.UpdatedAt = time.Now().UTC()
	const query = `UPDATE slot_definitions
		SET mission = :mission, name = :name, start_time = :start_time, end_time = :end_time,
		    required_count = :required_count, is_long = :is_long, updated_at = :updated_at
		WHERE key = :key`
	res, err := r.db.NamedExecContext(ctx, query, def)
	if err != nil {
		return fmt.Errorf("update slot definition: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

const instanceColumns = `id, week_start, day, slot_key, required_count, custom_start_time, custom_end_time, cancelled, updated_at`

// ListInstances returns the per-day overrides recorded for a week.
func (r *SlotRepository) ListInstances(ctx context.Context, weekStart string) ([]models.DayShiftInstance, error) {
	query := fmt.Sprintf(`SELECT %s FROM day_shift_instances WHERE week_start = $1 ORDER BY day, slot_key`, instanceColumns)
	instances := []models.DayShiftInstance{}
	if err := r.db.SelectContext(ctx, &instances, query, weekStart); err != nil {
		return nil, fmt.Errorf("list day shift instances: %w", err)
	}
	return instances, nil
}

// GetInstance returns the override row for one cell when present.
func (r *SlotRepository) GetInstance(ctx context.Context, weekStart string, day models.Weekday, slotKey string) (*models.DayShiftInstance, error) {
	query := fmt.Sprintf(`SELECT %s FROM day_shift_instances WHERE week_start = $1 AND day = $2 AND slot_key = $3`, instanceColumns)
	var inst models.DayShiftInstance
	if err := r.db.GetContext(ctx, &inst, query, weekStart, day, slotKey); err != nil {
		return nil, err
	}
	return &inst, nil
}

// UpsertInstance creates or replaces the override row for one cell.
func (r *SlotRepository) UpsertInstance(ctx context.Context, inst *models.DayShiftInstance) error {
	if inst.ID == "" {
		inst.ID = uuid.NewString()
	}
	inst.UpdatedAt = time.Now().UTC()
	const query = `INSERT INTO day_shift_instances (id, week_start, day, slot_key, required_count, custom_start_time, custom_end_time, cancelled, updated_at)
		VALUES (:id, :week_start, :day, :slot_key, :required_count, :custom_start_time, :custom_end_time, :cancelled, :updated_at)
		ON CONFLICT (week_start, day, slot_key) DO UPDATE
		SET required_count = EXCLUDED.required_count,
		    custom_start_time = EXCLUDED.custom_start_time,
		    custom_end_time = EXCLUDED.custom_end_time,
		    cancelled = EXCLUDED.cancelled,
		    updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, inst); err != nil {
		return fmt.Errorf("upsert day shift instance: %w", err)
	}
	return nil
}
