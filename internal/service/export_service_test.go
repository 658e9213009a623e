package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rotaboard/rota-api/internal/models"
	appErrors "github.com/rotaboard/rota-api/pkg/errors"
	"github.com/rotaboard/rota-api/pkg/storage"
)

type exportStoreStub struct {
	files map[string][]byte
}

func (s *exportStoreStub) Save(filename string, data []byte) (string, error) {
	if s.files == nil {
		s.files = map[string][]byte{}
	}
	s.files[filename] = data
	return filename, nil
}

func (s *exportStoreStub) Read(filename string) ([]byte, error) {
	data, ok := s.files[filename]
	if !ok {
		return nil, fmt.Errorf("no such file %q", filename)
	}
	return data, nil
}

func newExportFixture(persons []models.Person, assignments []models.Assignment, catalog *models.SlotCatalog) (*ExportService, *exportStoreStub) {
	ledger := &assignmentStoreStub{rows: assignments}
	store := &exportStoreStub{}
	signer := storage.NewSignedURLSigner("test-secret", time.Hour)
	service := NewExportService(
		ledger,
		rosterStub{persons: persons},
		catalogStub{catalog: catalog},
		store,
		signer,
		nil,
	)
	return service, store
}

func TestExportWeekCSVGrid(t *testing.T) {
	catalog := models.NewSlotCatalog([]models.SlotDefinition{
		{Key: "front-morning", Mission: "front-desk", Name: "Morning", StartTime: "08:00", EndTime: "13:00", RequiredCount: 2},
		{Key: "front-afternoon", Mission: "front-desk", Name: "Afternoon", StartTime: "13:00", EndTime: "17:30", RequiredCount: 1, IsLong: true},
	}, []models.DayShiftInstance{
		{WeekStart: testWeek, Day: models.Tuesday, SlotKey: "front-morning", Cancelled: true},
	})
	persons := []models.Person{
		{ID: "p1", FullName: "Bella Ortiz", Mission: "front-desk", Active: true},
		{ID: "p2", FullName: "Adam Keel", Mission: "front-desk", Active: true},
	}
	assignments := []models.Assignment{
		mkAssignment("a1", "p1", models.Monday, "front-morning", models.StatusAssigned),
		mkAssignment("a2", "p2", models.Monday, "front-morning", models.StatusSwapRequested),
		{
			ID: "a3", PersonID: "p1", WeekStart: testWeek, Day: models.Monday,
			SlotKey: "front-afternoon", StartTime: "13:00", EndTime: "19:30",
			Status: models.StatusAssigned, IsLongShift: true,
		},
	}

	service, _ := newExportFixture(persons, assignments, catalog)
	result, err := service.ExportWeek(context.Background(), testWeek, FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "csv", result.Format)
	assert.NotEmpty(t, result.Token)
	assert.Greater(t, result.SizeBytes, 0)

	_, data, err := service.Download(result.Token)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, []string{"Slot", "Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}, records[0])

	// rows come out in slot key order, afternoon before morning
	afternoon, morning := records[1], records[2]
	assert.Equal(t, "Afternoon (13:00-17:30)", afternoon[0])
	assert.Equal(t, "Bella Ortiz (until 19:30)", afternoon[2])
	assert.Equal(t, "Morning (08:00-13:00)", morning[0])
	assert.Equal(t, "Adam Keel [swap]; Bella Ortiz", morning[2])
	assert.Equal(t, "CANCELLED", morning[3])
}

func TestExportWeekPDFRenders(t *testing.T) {
	service, _ := newExportFixture(
		[]models.Person{{ID: "p1", FullName: "Bella Ortiz", Mission: "front-desk", Active: true}},
		[]models.Assignment{mkAssignment("a1", "p1", models.Monday, "front-morning", models.StatusAssigned)},
		frontDeskCatalog(),
	)

	result, err := service.ExportWeek(context.Background(), testWeek, FormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "pdf", result.Format)

	_, data, err := service.Download(result.Token)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestExportWeekRejectsUnknownFormat(t *testing.T) {
	service, _ := newExportFixture(nil, nil, frontDeskCatalog())

	_, err := service.ExportWeek(context.Background(), testWeek, ExportFormat("xlsx"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestDownloadRejectsForgedToken(t *testing.T) {
	service, _ := newExportFixture(nil, nil, frontDeskCatalog())

	result, err := service.ExportWeek(context.Background(), testWeek, FormatCSV)
	require.NoError(t, err)

	_, _, err = service.Download(result.Token + "x")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
