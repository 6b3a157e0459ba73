package domain

import "time"

// StatisticType identifies one per-column aggregate
type StatisticType string

const (
	StatCount             StatisticType = "count"
	StatSum               StatisticType = "sum"
	StatAverage           StatisticType = "average"
	StatMin               StatisticType = "min"
	StatMax               StatisticType = "max"
	StatMedian            StatisticType = "median"
	StatStandardDeviation StatisticType = "standard_deviation"
)

// ColumnStatistics holds the aggregates for one column. Statistics contains
// a key only when the aggregate was computable (no numeric values means an
// empty map). NullCount counts rows whose value is not a Number, which
// deliberately conflates non-numeric and missing values for compatibility;
// MissingCount counts Empty cells only.
type ColumnStatistics struct {
	ColumnName   string                    `json:"column_name"`
	Statistics   map[StatisticType]float64 `json:"statistics"`
	UniqueValues int                       `json:"unique_values"`
	NullCount    int                       `json:"null_count"`
	MissingCount int                       `json:"missing_count"`
}

// DataSummary is the file-level statistics snapshot. ValidRows and
// InvalidRows reflect a ValidationResult only when the caller explicitly
// threads one in; summary generation alone reports all rows as valid.
type DataSummary struct {
	TotalRows        int                `json:"total_rows"`
	ValidRows        int                `json:"valid_rows"`
	InvalidRows      int                `json:"invalid_rows"`
	ColumnStatistics []ColumnStatistics `json:"column_statistics"`
	ProcessingTime   time.Duration      `json:"processing_time"`
}
