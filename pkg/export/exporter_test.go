package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleDataset() Dataset {
	return Dataset{
		Headers: []string{"Alumno", "Día", "Horario"},
		Rows: []map[string]string{
			{"Alumno": "Ana Pérez", "Día": "Miércoles", "Horario": "18:00"},
			{"Alumno": "Juan Gómez", "Día": "Sábado", "Horario": "10:00"},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)

	text := strings.TrimPrefix(string(out), "\ufeff")
	lines := strings.Split(strings.TrimSpace(text), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Alumno,Día,Horario", lines[0])
	assert.Equal(t, "Ana Pérez,Miércoles,18:00", lines[1])
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	out, err := NewPDFExporter().Render(sampleDataset(), "Inscripciones")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestXLSXExporterRender(t *testing.T) {
	out, err := NewXLSXExporter().Render(sampleDataset(), "Inscripciones")
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Inscripciones")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Alumno", "Día", "Horario"}, rows[0])
	assert.Equal(t, "Juan Gómez", rows[2][0])
}
