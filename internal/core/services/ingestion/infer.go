package ingestion

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rcastellanos/csv-insight-service/internal/core/domain"
)

// dateLayouts are the accepted date formats, tried in order. ISO-8601
// date and date-time forms at minimum.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// InferType decides the semantic type of a sampled raw value. Trial order
// matters: numeric before date so "2024" resolves to Number, not Date.
func InferType(sample string) domain.DataType {
	if strings.TrimSpace(sample) == "" {
		return domain.TypeEmpty
	}
	if _, ok := parseNumber(sample); ok {
		return domain.TypeNumber
	}
	if _, ok := parseDate(sample); ok {
		return domain.TypeDate
	}
	if _, ok := parseBool(sample); ok {
		return domain.TypeBoolean
	}
	return domain.TypeText
}

// ParseCellValue coerces a raw field against the column's established
// type. It is total: blank input yields Empty and any value that fails to
// parse as the declared type degrades to Text for that cell only, without
// changing the column type.
func ParseCellValue(raw string, columnType domain.DataType) domain.CellValue {
	if strings.TrimSpace(raw) == "" {
		return domain.NewEmpty()
	}

	switch columnType {
	case domain.TypeNumber:
		if n, ok := parseNumber(raw); ok {
			return domain.NewNumber(n)
		}
	case domain.TypeDate:
		if d, ok := parseDate(raw); ok {
			return domain.NewDate(d)
		}
	case domain.TypeBoolean:
		if b, ok := parseBool(raw); ok {
			return domain.NewBool(b)
		}
	}

	return domain.NewText(raw)
}

// parseNumber attempts a locale-invariant numeric parse: optional sign,
// decimal point, exponent
func parseNumber(s string) (float64, bool) {
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// parseDate attempts the accepted date layouts in order
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseBool accepts true/false, case-insensitive
func parseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}
