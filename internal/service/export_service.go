package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rotaboard/rota-api/internal/models"
	appErrors "github.com/rotaboard/rota-api/pkg/errors"
	"github.com/rotaboard/rota-api/pkg/export"
)

type exportAssignmentReader interface {
	ListByWeek(ctx context.Context, weekStart string) ([]models.Assignment, error)
}

type exportRosterReader interface {
	List(ctx context.Context, filter models.PersonFilter) ([]models.Person, error)
}

type exportStore interface {
	Save(filename string, data []byte) (string, error)
	Read(filename string) ([]byte, error)
}

type downloadSigner interface {
	Generate(relPath string) (string, time.Time, error)
	Parse(token string) (string, time.Time, error)
}

// ExportFormat enumerates supported export encodings.
type ExportFormat string

const (
	FormatCSV ExportFormat = "csv"
	FormatPDF ExportFormat = "pdf"
)

// ExportResult describes a rendered export and its signed download token.
type ExportResult struct {
	Filename  string    `json:"filename"`
	Format    string    `json:"format"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	SizeBytes int       `json:"size_bytes"`
}

// ExportService renders a week's ledger as a downloadable grid, one row per
// slot and one column per day, with signed time-limited download tokens.
type ExportService struct {
	assignments exportAssignmentReader
	roster      exportRosterReader
	catalog     weekCatalogProvider
	csv         *export.CSVExporter
	pdf         *export.PDFExporter
	store       exportStore
	signer      downloadSigner
	logger      *zap.Logger
}

// NewExportService wires export dependencies.
func NewExportService(
	assignments exportAssignmentReader,
	roster exportRosterReader,
	catalog weekCatalogProvider,
	store exportStore,
	signer downloadSigner,
	logger *zap.Logger,
) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		assignments: assignments,
		roster:      roster,
		catalog:     catalog,
		csv:         export.NewCSVExporter(),
		pdf:         export.NewPDFExporter(),
		store:       store,
		signer:      signer,
		logger:      logger,
	}
}

// ExportWeek renders the week grid in the requested format, stores the file
// and returns a signed download token.
func (s *ExportService) ExportWeek(ctx context.Context, weekStart string, format ExportFormat) (*ExportResult, error) {
	if _, err := models.ParseWeekStart(weekStart); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	if format != FormatCSV && format != FormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}

	table, err := s.buildWeekTable(ctx, weekStart)
	if err != nil {
		return nil, err
	}

	var data []byte
	switch format {
	case FormatCSV:
		data, err = s.csv.Render(*table)
	case FormatPDF:
		data, err = s.pdf.Render(*table)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	filename := fmt.Sprintf("week-%s/%d.%s", weekStart, time.Now().UTC().Unix(), format)
	relPath, err := s.store.Save(filename, data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store export")
	}

	token, expiresAt, err := s.signer.Generate(relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download token")
	}

	s.logger.Info("week export rendered",
		zap.String("week_start", weekStart), zap.String("format", string(format)),
		zap.Int("bytes", len(data)))
	return &ExportResult{
		Filename:  relPath,
		Format:    string(format),
		Token:     token,
		ExpiresAt: expiresAt,
		SizeBytes: len(data),
	}, nil
}

// Download resolves a signed token back to the stored file contents.
func (s *ExportService) Download(token string) (filename string, data []byte, err error) {
	relPath, _, err := s.signer.Parse(token)
	if err != nil {
		return "", nil, appErrors.Clone(appErrors.ErrUnauthorized, err.Error())
	}
	data, err = s.store.Read(relPath)
	if err != nil {
		return "", nil, appErrors.Clone(appErrors.ErrNotFound, "export file no longer exists")
	}
	return relPath, data, nil
}

func (s *ExportService) buildWeekTable(ctx context.Context, weekStart string) (*export.Table, error) {
	catalog, err := s.catalog.WeekCatalog(ctx, weekStart)
	if err != nil {
		return nil, err
	}
	assignments, err := s.assignments.ListByWeek(ctx, weekStart)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to load week ledger")
	}
	persons, err := s.roster.List(ctx, models.PersonFilter{})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to load roster")
	}

	names := make(map[string]string, len(persons))
	for _, p := range persons {
		names[p.ID] = p.FullName
	}

	cells := map[models.InstanceKey][]string{}
	for _, a := range assignments {
		label := names[a.PersonID]
		if label == "" {
			label = a.PersonID
		}
		if a.IsLongShift {
			label += fmt.Sprintf(" (until %s)", a.EndTime)
		}
		if a.Status == models.StatusSwapRequested {
			label += " [swap]"
		}
		key := models.InstanceKey{Day: a.Day, SlotKey: a.SlotKey}
		cells[key] = append(cells[key], label)
	}

	slotKeys := make([]string, 0, len(catalog.Definitions))
	for key := range catalog.Definitions {
		slotKeys = append(slotKeys, key)
	}
	sort.Strings(slotKeys)

	headers := []string{"Slot"}
	for _, day := range models.WeekDays {
		headers = append(headers, titleCase(string(day)))
	}

	rows := make([][]string, 0, len(slotKeys))
	for _, key := range slotKeys {
		def := catalog.Definitions[key]
		row := []string{fmt.Sprintf("%s (%s-%s)", def.Name, def.StartTime, def.EndTime)}
		for _, day := range models.WeekDays {
			if catalog.Cancelled(day, key) {
				row = append(row, "CANCELLED")
				continue
			}
			entries := cells[models.InstanceKey{Day: day, SlotKey: key}]
			sort.Strings(entries)
			row = append(row, strings.Join(entries, "; "))
		}
		rows = append(rows, row)
	}

	return &export.Table{
		Title:   fmt.Sprintf("Week of %s", weekStart),
		Headers: headers,
		Rows:    rows,
	}, nil
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
