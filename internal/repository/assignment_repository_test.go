package repository

import (
	"context"
	"fmt"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rotaboard/rota-api/internal/models"
)

func newAssignmentMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestAssignmentRepositoryListByWeek(t *testing.T) {
	db, mock, cleanup := newAssignmentMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "person_id", "week_start", "day", "slot_key", "start_time", "end_time", "status", "is_long_shift", "swap_reason", "created_at", "updated_at"}).
		AddRow("a-1", "p-1", "2026-01-04", "monday", "front-morning", "08:00", "13:00", "assigned", false, nil, now, now).
		AddRow("a-2", "p-2", "2026-01-04", "monday", "front-morning", "08:00", "19:30", "confirmed", true, nil, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, person_id, week_start, day, slot_key, start_time, end_time, status, is_long_shift, swap_reason, created_at, updated_at FROM assignments WHERE week_start = $1 ORDER BY day, slot_key, person_id")).
		WithArgs("2026-01-04").
		WillReturnRows(rows)

	assignments, err := repo.ListByWeek(context.Background(), "2026-01-04")
	require.NoError(t, err)
	require.Len(t, assignments, 2)
	assert.Equal(t, models.StatusConfirmed, assignments[1].Status)
	assert.True(t, assignments[1].IsLongShift)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryReplaceWeek(t *testing.T) {
	db, mock, cleanup := newAssignmentMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM assignments WHERE week_start").
		WithArgs("2026-01-04").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("INSERT INTO assignments").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO assignments").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := repo.ReplaceWeek(context.Background(), "2026-01-04", []models.Assignment{
		{PersonID: "p-1", Day: models.Monday, SlotKey: "front-morning", StartTime: "08:00", EndTime: "13:00", Status: models.StatusAssigned},
		{PersonID: "p-2", Day: models.Monday, SlotKey: "front-morning", StartTime: "08:00", EndTime: "13:00", Status: models.StatusAssigned},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryReplaceWeekRollsBack(t *testing.T) {
	db, mock, cleanup := newAssignmentMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM assignments WHERE week_start").
		WithArgs("2026-01-04").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO assignments").
		WillReturnError(fmt.Errorf("boom"))
	mock.ExpectRollback()

	err := repo.ReplaceWeek(context.Background(), "2026-01-04", []models.Assignment{
		{PersonID: "p-1", Day: models.Monday, SlotKey: "front-morning", StartTime: "08:00", EndTime: "13:00", Status: models.StatusAssigned},
	})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryUpdateStatus(t *testing.T) {
	db, mock, cleanup := newAssignmentMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	reason := "family event"
	mock.ExpectExec("UPDATE assignments SET status").
		WithArgs("a-1", "swap_requested", &reason, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateStatus(context.Background(), "a-1", models.StatusSwapRequested, &reason)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryUpdateStatusNoRows(t *testing.T) {
	db, mock, cleanup := newAssignmentMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectExec("UPDATE assignments SET status").
		WithArgs("missing", "confirmed", nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), "missing", models.StatusConfirmed, nil)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newAssignmentMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectExec("DELETE FROM assignments WHERE id").
		WithArgs("a-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete(context.Background(), "a-1"))

	mock.ExpectExec("DELETE FROM assignments WHERE id").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))
	require.Error(t, repo.Delete(context.Background(), "missing"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
