package domain

import "time"

// Column describes one column of an ingested file. Columns are immutable
// once the header row (or first data row) has been processed.
type Column struct {
	Name       string   `json:"name"`
	Index      int      `json:"index"` // 0-based ordinal
	DataType   DataType `json:"data_type"`
	IsRequired bool     `json:"is_required"`
}

// DataRow is one typed row of data. RowNumber is 1-based and counts data
// rows only; the header row and skipped empty lines are excluded.
type DataRow struct {
	RowNumber int         `json:"row_number"`
	Values    []CellValue `json:"values"` // one per column, same length as headers
}

// CSVData is the whole-file ingestion result: the header columns plus every
// typed row, in source order. It is created once per read and immutable
// thereafter.
type CSVData struct {
	Headers     []Column  `json:"headers"`
	Rows        []DataRow `json:"rows"`
	FileName    string    `json:"file_name"`
	ProcessedAt time.Time `json:"processed_at"`
}

// ColumnByName returns the column with the given name, if present
func (d *CSVData) ColumnByName(name string) (Column, bool) {
	for _, col := range d.Headers {
		if col.Name == name {
			return col, true
		}
	}
	return Column{}, false
}

// ColumnNames returns the header names in order
func (d *CSVData) ColumnNames() []string {
	names := make([]string, len(d.Headers))
	for i, col := range d.Headers {
		names[i] = col.Name
	}
	return names
}
