package statistics

import (
	"context"
	"time"

	"github.com/rcastellanos/csv-insight-service/internal/core/domain"
)

// Accumulator consumes batches from a streaming ingestion run and builds
// the same summary Summarize would produce over the whole file. It
// implements the ingestion BatchConsumer interface.
//
// Median and standard deviation need the full value set, so the
// accumulator keeps every numeric value and every unique key per column
// in memory. Memory grows with the numeric cardinality of the file, not
// with its raw byte size.
type Accumulator struct {
	columns []domain.Column
	state   []*columnState
	rows    int
	started time.Time
}

type columnState struct {
	numbers []float64
	unique  map[string]struct{}
	missing int
	null    int
}

// NewAccumulator creates an empty accumulator
func NewAccumulator() *Accumulator {
	return &Accumulator{started: time.Now()}
}

// Columns records the column set reported by the reader
func (a *Accumulator) Columns(cols []domain.Column) error {
	a.columns = cols
	a.state = make([]*columnState, len(cols))
	for i := range a.state {
		a.state[i] = &columnState{unique: make(map[string]struct{})}
	}
	return nil
}

// Batch folds one batch of rows into the running state
func (a *Accumulator) Batch(_ context.Context, rows []domain.DataRow) error {
	for _, row := range rows {
		a.rows++
		for i, st := range a.state {
			if i >= len(row.Values) {
				continue
			}
			cell := row.Values[i]
			st.unique[cell.Key()] = struct{}{}
			switch cell.Type {
			case domain.TypeNumber:
				st.numbers = append(st.numbers, cell.Number)
			case domain.TypeEmpty:
				st.missing++
				st.null++
			default:
				st.null++
			}
		}
	}
	return nil
}

// Summary builds the file-level summary from the accumulated state
func (a *Accumulator) Summary() *domain.DataSummary {
	stats := make([]domain.ColumnStatistics, len(a.columns))
	for i, col := range a.columns {
		st := a.state[i]
		stats[i] = domain.ColumnStatistics{
			ColumnName:   col.Name,
			Statistics:   computeAggregates(st.numbers),
			UniqueValues: len(st.unique),
			NullCount:    st.null,
			MissingCount: st.missing,
		}
	}

	return &domain.DataSummary{
		TotalRows:        a.rows,
		ValidRows:        a.rows,
		InvalidRows:      0,
		ColumnStatistics: stats,
		ProcessingTime:   time.Since(a.started),
	}
}
