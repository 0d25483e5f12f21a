package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/daprotis-api/internal/models"
	appErrors "github.com/noah-isme/daprotis-api/pkg/errors"
	"github.com/noah-isme/daprotis-api/pkg/export"
)

// ExportFormat is a roster download format.
type ExportFormat string

const (
	ExportFormatCSV  ExportFormat = "csv"
	ExportFormatPDF  ExportFormat = "pdf"
	ExportFormatXLSX ExportFormat = "xlsx"
)

var exportContentTypes = map[ExportFormat]string{
	ExportFormatCSV:  "text/csv; charset=utf-8",
	ExportFormatPDF:  "application/pdf",
	ExportFormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

var rosterHeaders = []string{"Alumno", "Teléfono", "Día", "Horario", "Inscripto"}

type rosterLister interface {
	Roster(ctx context.Context, session *models.Session, filter models.RosterFilter) ([]models.RosterEntry, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

type xlsxRenderer interface {
	Render(data export.Dataset, sheet string) ([]byte, error)
}

// ExportResult is a rendered roster ready to stream.
type ExportResult struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportService renders the enrollment roster.
type ExportService struct {
	roster rosterLister
	csv    csvRenderer
	pdf    pdfRenderer
	xlsx   xlsxRenderer
	logger *zap.Logger
	clock  Clock
	loc    *time.Location
}

// NewExportService constructs an ExportService. Nil renderers use the
// pkg/export defaults.
func NewExportService(roster rosterLister, logger *zap.Logger, loc *time.Location, csv csvRenderer, pdf pdfRenderer, xlsx xlsxRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if xlsx == nil {
		xlsx = export.NewXLSXExporter()
	}
	return &ExportService{roster: roster, csv: csv, pdf: pdf, xlsx: xlsx, logger: logger, clock: systemClock, loc: loc}
}

// ParseExportFormat validates a format query value. Empty means csv.
func ParseExportFormat(raw string) (ExportFormat, error) {
	format := ExportFormat(strings.ToLower(strings.TrimSpace(raw)))
	if format == "" {
		return ExportFormatCSV, nil
	}
	if _, ok := exportContentTypes[format]; !ok {
		return "", fieldError("format", "valores permitidos: csv pdf xlsx", "unsupported export format")
	}
	return format, nil
}

// Roster renders the active enrollment roster in the requested format.
func (s *ExportService) Roster(ctx context.Context, session *models.Session, format ExportFormat, filter models.RosterFilter) (*ExportResult, error) {
	contentType, ok := exportContentTypes[format]
	if !ok {
		return nil, fieldError("format", "valores permitidos: csv pdf xlsx", "unsupported export format")
	}
	entries, err := s.roster.Roster(ctx, session, filter)
	if err != nil {
		return nil, err
	}
	dataset := s.buildRosterDataset(entries)
	now := s.clock().In(s.loc)

	var body []byte
	switch format {
	case ExportFormatCSV:
		body, err = s.csv.Render(dataset)
	case ExportFormatPDF:
		body, err = s.pdf.Render(dataset, fmt.Sprintf("Inscripciones activas %s", now.Format("02/01/2006")))
	case ExportFormatXLSX:
		body, err = s.xlsx.Render(dataset, "Inscripciones")
	}
	if err != nil {
		s.logger.Error("roster export failed", zap.String("format", string(format)), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render roster")
	}

	return &ExportResult{
		Filename:    fmt.Sprintf("inscripciones_%s.%s", now.Format("20060102_150405"), format),
		ContentType: contentType,
		Body:        body,
	}, nil
}

func (s *ExportService) buildRosterDataset(entries []models.RosterEntry) export.Dataset {
	rows := make([]map[string]string, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, map[string]string{
			"Alumno":    strings.TrimSpace(entry.FirstName + " " + entry.LastName),
			"Teléfono":  entry.Phone,
			"Día":       entry.DayOfWeek,
			"Horario":   entry.TimeSlot,
			"Inscripto": entry.EnrolledAt.In(s.loc).Format("2006-01-02 15:04"),
		})
	}
	return export.Dataset{Headers: rosterHeaders, Rows: rows}
}
