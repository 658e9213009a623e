package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rotaboard/rota-api/internal/models"
)

func newPreferenceMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestPreferenceRepositoryUpsertDefaultsEmptyMaps(t *testing.T) {
	db, mock, cleanup := newPreferenceMock(t)
	defer cleanup()
	repo := NewPreferenceRepository(db)

	mock.ExpectExec("INSERT INTO preference_submissions").
		WithArgs(sqlmock.AnyArg(), "p-1", "2026-01-04", []byte("{}"), []byte("{}"), "", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	sub := &models.PreferenceSubmission{
		PersonID:  "p-1",
		WeekStart: "2026-01-04",
	}
	err := repo.Upsert(context.Background(), sub)
	require.NoError(t, err)
	assert.NotEmpty(t, sub.ID)
	assert.False(t, sub.UpdatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPreferenceRepositoryGetByPersonWeek(t *testing.T) {
	db, mock, cleanup := newPreferenceMock(t)
	defer cleanup()
	repo := NewPreferenceRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "person_id", "week_start", "days", "long_shift_days", "notes", "updated_at", "created_at"}).
		AddRow("s-1", "p-1", "2026-01-04", `{"monday":["front-morning"]}`, `{"monday":true}`, "mornings only", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, person_id, week_start, days, long_shift_days, notes, updated_at, created_at FROM preference_submissions WHERE person_id = $1 AND week_start = $2")).
		WithArgs("p-1", "2026-01-04").
		WillReturnRows(rows)

	sub, err := repo.GetByPersonWeek(context.Background(), "p-1", "2026-01-04")
	require.NoError(t, err)
	assert.Equal(t, "s-1", sub.ID)

	days, err := sub.DecodeDays()
	require.NoError(t, err)
	assert.Equal(t, []string{"front-morning"}, days[models.Monday])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPreferenceRepositoryGetByPersonWeekMissing(t *testing.T) {
	db, mock, cleanup := newPreferenceMock(t)
	defer cleanup()
	repo := NewPreferenceRepository(db)

	mock.ExpectQuery("SELECT .+ FROM preference_submissions").
		WithArgs("p-1", "2026-01-04").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByPersonWeek(context.Background(), "p-1", "2026-01-04")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPreferenceRepositoryListByWeek(t *testing.T) {
	db, mock, cleanup := newPreferenceMock(t)
	defer cleanup()
	repo := NewPreferenceRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "person_id", "week_start", "days", "long_shift_days", "notes", "updated_at", "created_at"}).
		AddRow("s-1", "p-1", "2026-01-04", `{}`, `{}`, "", now, now).
		AddRow("s-2", "p-2", "2026-01-04", `{}`, `{}`, "", now, now)
	mock.ExpectQuery("SELECT .+ FROM preference_submissions WHERE week_start").
		WithArgs("2026-01-04").
		WillReturnRows(rows)

	subs, err := repo.ListByWeek(context.Background(), "2026-01-04")
	require.NoError(t, err)
	assert.Len(t, subs, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}
