package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/rcastellanos/csv-insight-service/internal/core/domain"
)

func sampleReport() *Report {
	return &Report{
		RunID:       "4a1f1f86-0000-0000-0000-000000000001",
		FileName:    "scores.csv",
		GeneratedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		Summary: &domain.DataSummary{
			TotalRows:   3,
			ValidRows:   2,
			InvalidRows: 1,
			ColumnStatistics: []domain.ColumnStatistics{
				{
					ColumnName: "score",
					Statistics: map[domain.StatisticType]float64{
						domain.StatCount:   3,
						domain.StatSum:     60,
						domain.StatAverage: 20,
						domain.StatMin:     10,
						domain.StatMax:     30,
						domain.StatMedian:  20,
					},
					UniqueValues: 3,
				},
			},
		},
		Errors: []domain.ValidationError{
			{
				RowNumber:  2,
				ColumnName: "score",
				Value:      domain.NewNumber(200),
				Rule:       domain.Range(0, 100),
				Message:    "number 200 is outside range [0, 100]",
			},
		},
	}
}

func TestRegistry_Formats(t *testing.T) {
	reg := NewRegistry()

	for _, format := range []string{"json", "html", "xml", "xlsx", "JSON", "Xlsx"} {
		assert.True(t, reg.IsSupported(format), format)
	}
	assert.False(t, reg.IsSupported("pdf"))

	_, err := reg.Get("pdf")
	require.Error(t, err)
}

func TestJSONRenderer(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONRenderer().Render(&buf, sampleReport()))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "scores.csv", decoded["file_name"])

	summary, ok := decoded["summary"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(3), summary["total_rows"])
}

func TestHTMLRenderer(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewHTMLRenderer().Render(&buf, sampleReport()))

	out := buf.String()
	assert.Contains(t, out, "scores.csv")
	assert.Contains(t, out, "<h3>score</h3>")
	assert.Contains(t, out, "Validation Errors")
	assert.Contains(t, out, "outside range")
}

func TestHTMLRenderer_EscapesContent(t *testing.T) {
	rep := sampleReport()
	rep.FileName = `<script>alert("x")</script>.csv`

	var buf bytes.Buffer
	require.NoError(t, NewHTMLRenderer().Render(&buf, rep))
	assert.NotContains(t, buf.String(), "<script>alert")
}

func TestXMLRenderer(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewXMLRenderer().Render(&buf, sampleReport()))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "<?xml"))
	assert.Contains(t, out, "<analysis_report>")
	assert.Contains(t, out, `<column name="score">`)
	assert.Contains(t, out, `<statistic name="count">3</statistic>`)
	assert.Contains(t, out, `<error row="2"`)
}

func TestXLSXRenderer(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewXLSXRenderer().Render(&buf, sampleReport()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{"Summary", "Columns", "Errors"}, f.GetSheetList())

	name, err := f.GetCellValue("Columns", "A2")
	require.NoError(t, err)
	assert.Equal(t, "score", name)
}

func TestXLSXRenderer_NoErrorsSheetWhenClean(t *testing.T) {
	rep := sampleReport()
	rep.Errors = nil

	var buf bytes.Buffer
	require.NoError(t, NewXLSXRenderer().Render(&buf, rep))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.NotContains(t, f.GetSheetList(), "Errors")
}

func TestRegistry_RenderDispatch(t *testing.T) {
	reg := NewRegistry()

	var buf bytes.Buffer
	require.NoError(t, reg.Render("json", &buf, sampleReport()))
	assert.Contains(t, buf.String(), `"run_id"`)
}
