package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/daprotis-api/internal/models"
	appErrors "github.com/noah-isme/daprotis-api/pkg/errors"
	"github.com/noah-isme/daprotis-api/pkg/export"
)

type stubRoster struct {
	entries []models.RosterEntry
	filter  models.RosterFilter
	err     error
}

func (s *stubRoster) Roster(_ context.Context, _ *models.Session, filter models.RosterFilter) ([]models.RosterEntry, error) {
	s.filter = filter
	return s.entries, s.err
}

type failingRenderer struct{}

func (failingRenderer) Render(export.Dataset) ([]byte, error) { return nil, errors.New("disk full") }

func newExportFixture(roster *stubRoster) *ExportService {
	svc := NewExportService(roster, nil, buenosAires, nil, nil, nil)
	svc.clock = fixedClock(time.Date(2025, 3, 12, 18, 30, 0, 0, buenosAires))
	return svc
}

func sampleRoster() *stubRoster {
	return &stubRoster{entries: []models.RosterEntry{{
		EnrollmentID: "e1",
		FirstName:    "Ana",
		LastName:     "Gómez",
		Phone:        "1155554444",
		DayOfWeek:    "Miércoles",
		TimeSlot:     "19:00",
		EnrolledAt:   time.Date(2025, 3, 10, 21, 15, 0, 0, time.UTC),
	}}}
}

func TestExportRosterCSV(t *testing.T) {
	roster := sampleRoster()
	svc := newExportFixture(roster)

	result, err := svc.Roster(context.Background(), adminSession(), ExportFormatCSV, models.RosterFilter{ScheduleID: "wed-19"})
	require.NoError(t, err)

	assert.Equal(t, "inscripciones_20250312_183000.csv", result.Filename)
	assert.Equal(t, "text/csv; charset=utf-8", result.ContentType)
	assert.Equal(t, "wed-19", roster.filter.ScheduleID)
	body := string(result.Body)
	assert.Contains(t, body, "Alumno,Teléfono,Día,Horario,Inscripto")
	assert.Contains(t, body, "Ana Gómez,1155554444,Miércoles,19:00,2025-03-10 18:15")
}

func TestExportRosterPDFAndXLSX(t *testing.T) {
	svc := newExportFixture(sampleRoster())

	pdf, err := svc.Roster(context.Background(), adminSession(), ExportFormatPDF, models.RosterFilter{})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf.Body, []byte("%PDF")))

	xlsx, err := svc.Roster(context.Background(), adminSession(), ExportFormatXLSX, models.RosterFilter{})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(xlsx.Body, []byte("PK")))
	assert.Equal(t, "inscripciones_20250312_183000.xlsx", xlsx.Filename)
}

func TestExportRosterPropagatesAccessErrors(t *testing.T) {
	roster := &stubRoster{err: appErrors.Clone(appErrors.ErrForbidden, "insufficient permissions")}
	svc := newExportFixture(roster)

	_, err := svc.Roster(context.Background(), memberSession("u1"), ExportFormatCSV, models.RosterFilter{})
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))
}

func TestExportRosterRenderFailure(t *testing.T) {
	svc := NewExportService(sampleRoster(), nil, buenosAires, failingRenderer{}, nil, nil)

	_, err := svc.Roster(context.Background(), adminSession(), ExportFormatCSV, models.RosterFilter{})
	assert.True(t, errors.Is(err, appErrors.ErrInternal))
}

func TestParseExportFormat(t *testing.T) {
	format, err := ParseExportFormat("")
	require.NoError(t, err)
	assert.Equal(t, ExportFormatCSV, format)

	format, err = ParseExportFormat(" XLSX ")
	require.NoError(t, err)
	assert.Equal(t, ExportFormatXLSX, format)

	_, err = ParseExportFormat("docx")
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}
