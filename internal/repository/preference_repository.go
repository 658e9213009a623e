package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/rotaboard/rota-api/internal/models"
)

// PreferenceRepository persists weekly preference submissions.
type PreferenceRepository struct {
	db *sqlx.DB
}

// NewPreferenceRepository constructs the repository.
func NewPreferenceRepository(db *sqlx.DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

const preferenceColumns = `id, person_id, week_start, days, long_shift_days, notes, updated_at, created_at`

// ListByWeek returns every current submission for a week.
func (r *PreferenceRepository) ListByWeek(ctx context.Context, weekStart string) ([]models.PreferenceSubmission, error) {
	query := fmt.Sprintf(`SELECT %s FROM preference_submissions WHERE week_start = $1 ORDER BY person_id`, preferenceColumns)
	subs := []models.PreferenceSubmission{}
	if err := r.db.SelectContext(ctx, &subs, query, weekStart); err != nil {
		return nil, fmt.Errorf("list preferences: %w", err)
	}
	return subs, nil
}

// GetByPersonWeek returns the current submission for one person and week.
func (r *PreferenceRepository) GetByPersonWeek(ctx context.Context, personID, weekStart string) (*models.PreferenceSubmission, error) {
	query := fmt.Sprintf(`SELECT %s FROM preference_submissions WHERE person_id = $1 AND week_start = $2`, preferenceColumns)
	var sub models.PreferenceSubmission
	if err := r.db.GetContext(ctx, &sub, query, personID, weekStart); err != nil {
		return nil, err
	}
	return &sub, nil
}

// Upsert stores a submission. Re-submission overwrites the previous record
// for the (person, week) pair; history survives only through updated_at.
func (r *PreferenceRepository) Upsert(ctx context.Context, sub *models.PreferenceSubmission) error {
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = now
	}
	sub.UpdatedAt = now
	if len(sub.Days) == 0 {
		sub.Days = []byte("{}")
	}
	if len(sub.LongShiftDays) == 0 {
		sub.LongShiftDays = []byte("{}")
	}

	const query = `INSERT INTO preference_submissions (id, person_id, week_start, days, long_shift_days, notes, updated_at, created_at)
		VALUES (:id, :person_id, :week_start, :days, :long_shift_days, :notes, :updated_at, :created_at)
		ON CONFLICT (person_id, week_start) DO UPDATE
		SET days = EXCLUDED.days,
		    long_shift_days = EXCLUDED.long_shift_days,
		    notes = EXCLUDED.notes,
		    updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, sub); err != nil {
		return fmt.Errorf("upsert preference submission: %w", err)
	}
	return nil
}
