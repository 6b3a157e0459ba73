package statistics

import (
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/rcastellanos/csv-insight-service/internal/core/domain"
)

// Engine computes per-column aggregates over ingested data. Aggregates
// consider only Number cells; Text, Date, Boolean and Empty cells in a
// column contribute to NullCount but never to the numeric statistics.
type Engine struct {
	logger *slog.Logger
}

// NewEngine creates a statistics engine
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{logger: logger}
}

// Summarize computes the file-level summary from the data alone. It does
// not validate: every row is reported as valid. Use
// SummarizeWithValidation to fold a validation result in.
func (e *Engine) Summarize(data *domain.CSVData) *domain.DataSummary {
	start := time.Now()

	stats := make([]domain.ColumnStatistics, len(data.Headers))
	for i, col := range data.Headers {
		values := make([]domain.CellValue, 0, len(data.Rows))
		for _, row := range data.Rows {
			if i < len(row.Values) {
				values = append(values, row.Values[i])
			}
		}
		stats[i] = e.CalculateColumnStatistics(col.Name, values)
	}

	e.logger.Debug("summary computed",
		slog.String("file", data.FileName),
		slog.Int("rows", len(data.Rows)),
		slog.Int("columns", len(data.Headers)))

	return &domain.DataSummary{
		TotalRows:        len(data.Rows),
		ValidRows:        len(data.Rows),
		InvalidRows:      0,
		ColumnStatistics: stats,
		ProcessingTime:   time.Since(start),
	}
}

// SummarizeWithValidation computes the summary over all rows and folds
// the validation partition into the row counts. Statistics still cover
// every row, invalid ones included.
func (e *Engine) SummarizeWithValidation(data *domain.CSVData, result *domain.ValidationResult) *domain.DataSummary {
	summary := e.Summarize(data)
	if result != nil {
		summary.ValidRows = len(result.ValidRows)
		summary.InvalidRows = len(result.InvalidRows)
	}
	return summary
}

// CalculateColumnStatistics computes the aggregates for one column from
// its cells in row order. With no numeric cells the Statistics map is
// empty rather than zero-filled.
func (e *Engine) CalculateColumnStatistics(columnName string, values []domain.CellValue) domain.ColumnStatistics {
	numbers := make([]float64, 0, len(values))
	unique := make(map[string]struct{}, len(values))
	missing := 0

	for _, cell := range values {
		unique[cell.Key()] = struct{}{}
		switch cell.Type {
		case domain.TypeNumber:
			numbers = append(numbers, cell.Number)
		case domain.TypeEmpty:
			missing++
		}
	}

	return domain.ColumnStatistics{
		ColumnName:   columnName,
		Statistics:   computeAggregates(numbers),
		UniqueValues: len(unique),
		NullCount:    len(values) - len(numbers),
		MissingCount: missing,
	}
}

// computeAggregates builds the statistics map from the numeric values of
// a column. The median sorts a copy; the input order is left intact.
func computeAggregates(numbers []float64) map[domain.StatisticType]float64 {
	stats := make(map[domain.StatisticType]float64)
	if len(numbers) == 0 {
		return stats
	}

	sum := 0.0
	min := numbers[0]
	max := numbers[0]
	for _, n := range numbers {
		sum += n
		if n < min {
			min = n
		}
		if n > max {
			max = n
		}
	}
	mean := sum / float64(len(numbers))

	stats[domain.StatCount] = float64(len(numbers))
	stats[domain.StatSum] = sum
	stats[domain.StatAverage] = mean
	stats[domain.StatMin] = min
	stats[domain.StatMax] = max
	stats[domain.StatMedian] = median(numbers)
	stats[domain.StatStandardDeviation] = stdDev(numbers, mean)

	return stats
}

// median returns the middle value of the sorted numbers, or the mean of
// the two middle values for an even count
func median(numbers []float64) float64 {
	sorted := make([]float64, len(numbers))
	copy(sorted, numbers)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// stdDev returns the population standard deviation
func stdDev(numbers []float64, mean float64) float64 {
	variance := 0.0
	for _, n := range numbers {
		d := n - mean
		variance += d * d
	}
	variance /= float64(len(numbers))
	return math.Sqrt(variance)
}
