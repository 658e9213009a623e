package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/rotaboard/rota-api/internal/models"
)

// AssignmentRepository persists the assignment ledger.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository constructs the repository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

const assignmentColumns = `id, person_id, week_start, day, slot_key, start_time, end_time, status, is_long_shift, swap_reason, created_at, updated_at`

// ListByWeek returns the week's ledger ordered by day, slot and person.
func (r *AssignmentRepository) ListByWeek(ctx context.Context, weekStart string) ([]models.Assignment, error) {
	query := fmt.Sprintf(`SELECT %s FROM assignments WHERE week_start = $1 ORDER BY day, slot_key, person_id`, assignmentColumns)
	out := []models.Assignment{}
	if err := r.db.SelectContext(ctx, &out, query, weekStart); err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return out, nil
}

// FindByID returns one assignment.
func (r *AssignmentRepository) FindByID(ctx context.Context, id string) (*models.Assignment, error) {
	query := fmt.Sprintf(`SELECT %s FROM assignments WHERE id = $1`, assignmentColumns)
	var a models.Assignment
	if err := r.db.GetContext(ctx, &a, query, id); err != nil {
		return nil, err
	}
	return &a, nil
}

// ReplaceWeek atomically replaces the week's ledger: delete then bulk insert
// inside one transaction. Readers never observe a half-replaced week.
func (r *AssignmentRepository) ReplaceWeek(ctx context.Context, weekStart string, assignments []models.Assignment) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace week: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM assignments WHERE week_start = $1`, weekStart); err != nil {
		return fmt.Errorf("clear week assignments: %w", err)
	}

	now := time.Now().UTC()
	const insert = `INSERT INTO assignments (id, person_id, week_start, day, slot_key, start_time, end_time, status, is_long_shift, swap_reason, created_at, updated_at)
		VALUES (:id, :person_id, :week_start, :day, :slot_key, :start_time, :end_time, :status, :is_long_shift, :swap_reason, :created_at, :updated_at)`
	for i := range assignments {
		a := &assignments[i]
		if a.ID == "" {
			a.ID = uuid.NewString()
		}
		a.WeekStart = weekStart
		if a.CreatedAt.IsZero() {
			a.CreatedAt = now
		}
		a.UpdatedAt = now
		if _, err = tx.NamedExecContext(ctx, insert, a); err != nil {
			return fmt.Errorf("insert week assignment: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit replace week: %w", err)
	}
	return nil
}

// Upsert inserts or updates a single assignment cell.
func (r *AssignmentRepository) Upsert(ctx context.Context, a *models.Assignment) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now
	const query = `INSERT INTO assignments (id, person_id, week_start, day, slot_key, start_time, end_time, status, is_long_shift, swap_reason, created_at, updated_at)
		VALUES (:id, :person_id, :week_start, :day, :slot_key, :start_time, :end_time, :status, :is_long_shift, :swap_reason, :created_at, :updated_at)
		ON CONFLICT (person_id, week_start, day, slot_key) DO UPDATE
		SET start_time = EXCLUDED.start_time,
		    end_time = EXCLUDED.end_time,
		    status = EXCLUDED.status,
		    is_long_shift = EXCLUDED.is_long_shift,
		    swap_reason = EXCLUDED.swap_reason,
		    updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, a); err != nil {
		return fmt.Errorf("upsert assignment: %w", err)
	}
	return nil
}

// Delete removes one assignment.
func (r *AssignmentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM assignments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("delete assignment %s: no rows", id)
	}
	return nil
}

// UpdateStatus transitions an assignment's lifecycle state, replacing the swap
// reason (nil clears it).
func (r *AssignmentRepository) UpdateStatus(ctx context.Context, id string, status models.AssignmentStatus, swapReason *string) error {
	const query = `UPDATE assignments SET status = $2, swap_reason = $3, updated_at = $4 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, status, swapReason, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update assignment status: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("update assignment %s: no rows", id)
	}
	return nil
}
