package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sample = Dataset{
	Columns: []Column{{Key: "title", Title: "Title", Width: 3}, {Key: "views", Title: "Views"}},
	Rows: []map[string]string{
		{"title": "Solar Dryers, a study", "views": "4"},
		{"title": strings.Repeat("Very long title ", 20), "views": "1"},
	},
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sample)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(out, []byte("\ufeff")))

	records, err := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(out, []byte("\ufeff")))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"Title", "Views"}, records[0])
	assert.Equal(t, "Solar Dryers, a study", records[1][0])
}

func TestCSVExporterRequiresColumns(t *testing.T) {
	_, err := (&CSVExporter{}).Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	exporter := &PDFExporter{now: func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }}
	out, err := exporter.Render(sample, "Research Catalogue")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestColumnWidthsFillPage(t *testing.T) {
	widths := columnWidths(sample.Columns)
	assert.InDelta(t, pageWidth, widths[0]+widths[1], 0.001)
	assert.InDelta(t, widths[0], 3*widths[1], 0.001)
}
