package report

import (
	"encoding/xml"
	"io"

	"github.com/rcastellanos/csv-insight-service/internal/core/domain"
)

// XMLRenderer writes the report as XML. The statistics map is flattened
// into an ordered element list because maps have no XML encoding.
type XMLRenderer struct{}

// NewXMLRenderer creates an XML renderer
func NewXMLRenderer() *XMLRenderer {
	return &XMLRenderer{}
}

type xmlStatistic struct {
	Name  string  `xml:"name,attr"`
	Value float64 `xml:",chardata"`
}

type xmlColumn struct {
	Name         string         `xml:"name,attr"`
	UniqueValues int            `xml:"unique_values"`
	NullCount    int            `xml:"null_count"`
	MissingCount int            `xml:"missing_count"`
	Statistics   []xmlStatistic `xml:"statistics>statistic"`
}

type xmlError struct {
	RowNumber int    `xml:"row,attr"`
	Column    string `xml:"column,attr"`
	Value     string `xml:"value"`
	Message   string `xml:"message"`
}

type xmlReport struct {
	XMLName     xml.Name    `xml:"analysis_report"`
	RunID       string      `xml:"run_id"`
	FileName    string      `xml:"file_name"`
	GeneratedAt string      `xml:"generated_at"`
	TotalRows   int         `xml:"total_rows"`
	ValidRows   int         `xml:"valid_rows"`
	InvalidRows int         `xml:"invalid_rows"`
	Columns     []xmlColumn `xml:"columns>column"`
	Errors      []xmlError  `xml:"errors>error,omitempty"`
}

// Render implements Renderer
func (r *XMLRenderer) Render(w io.Writer, rep *Report) error {
	doc := xmlReport{
		RunID:       rep.RunID,
		FileName:    rep.FileName,
		GeneratedAt: rep.GeneratedAt.Format("2006-01-02T15:04:05Z07:00"),
	}

	if rep.Summary != nil {
		doc.TotalRows = rep.Summary.TotalRows
		doc.ValidRows = rep.Summary.ValidRows
		doc.InvalidRows = rep.Summary.InvalidRows
		for _, col := range rep.Summary.ColumnStatistics {
			doc.Columns = append(doc.Columns, xmlColumn{
				Name:         col.ColumnName,
				UniqueValues: col.UniqueValues,
				NullCount:    col.NullCount,
				MissingCount: col.MissingCount,
				Statistics:   orderedStats(col.Statistics),
			})
		}
	}

	for _, verr := range rep.Errors {
		doc.Errors = append(doc.Errors, xmlError{
			RowNumber: verr.RowNumber,
			Column:    verr.ColumnName,
			Value:     verr.Value.String(),
			Message:   verr.Message,
		})
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}

func orderedStats(stats map[domain.StatisticType]float64) []xmlStatistic {
	out := make([]xmlStatistic, 0, len(stats))
	for _, name := range statOrder {
		if value, ok := stats[name]; ok {
			out = append(out, xmlStatistic{Name: string(name), Value: value})
		}
	}
	return out
}

// Format implements Renderer
func (r *XMLRenderer) Format() string { return "xml" }

// Extension implements Renderer
func (r *XMLRenderer) Extension() string { return ".xml" }
