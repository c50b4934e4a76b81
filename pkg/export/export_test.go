package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Headers: []string{"student_code", "full_name", "total"},
		Rows: []map[string]string{
			{"student_code": "6501", "full_name": "Somchai, K.", "total": "72.40"},
			{"student_code": "6502", "full_name": "Mali", "total": "48.00"},
		},
	}
}

func TestCSVRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset(), "ignored")
	require.NoError(t, err)
	body := strings.TrimPrefix(string(out), "\ufeff")
	lines := strings.Split(strings.TrimSpace(body), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "student_code,full_name,total", lines[0])
	assert.Equal(t, `6501,"Somchai, K.",72.40`, lines[1])
}

func TestRenderRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{}, "")
	assert.Error(t, err)
	_, err = NewPDFExporter().Render(Dataset{}, "")
	assert.Error(t, err)
}

func TestPDFRender(t *testing.T) {
	out, err := NewPDFExporter().Render(sampleDataset(), "cohort overview")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("PDF")
	require.NoError(t, err)
	assert.Equal(t, FormatPDF, f)
	assert.Equal(t, "application/pdf", For(f).ContentType())

	f, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, "csv", For(f).Extension())

	_, err = ParseFormat("xlsx")
	assert.Error(t, err)
}

func TestCSVNeutralisesFormulaCells(t *testing.T) {
	data := Dataset{
		Headers: []string{"full_name", "delta"},
		Rows:    []map[string]string{{"full_name": "=HYPERLINK(\"x\")", "delta": "-3.5"}},
	}
	out, err := NewCSVExporter().Render(data, "")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(strings.TrimPrefix(string(out), "\ufeff")), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, `"'=HYPERLINK(""x"")",-3.5`, lines[1])
}
