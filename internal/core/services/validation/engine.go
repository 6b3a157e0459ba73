package validation

import (
	"fmt"
	"log/slog"
	"regexp"
	"sync"

	"github.com/rcastellanos/csv-insight-service/internal/core/domain"
	apperrors "github.com/rcastellanos/csv-insight-service/internal/pkg/errors"
)

// Engine evaluates declarative rule sets against ingested rows. A rule
// only constrains the variant it understands: a Range rule applied to a
// Text cell passes vacuously, so type drift in the data never produces
// spurious range errors. Required is the one rule that rejects Empty.
type Engine struct {
	logger *slog.Logger

	mu       sync.RWMutex
	patterns map[string]*regexp.Regexp
}

// NewEngine creates a validation engine
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		logger:   logger,
		patterns: make(map[string]*regexp.Regexp),
	}
}

// ValidateData evaluates the rule set against every row and partitions
// the rows into valid and invalid sides, both preserving source order.
// Every row lands on exactly one side. A malformed rule aborts the run.
func (e *Engine) ValidateData(data *domain.CSVData, rules domain.RuleSet) (*domain.ValidationResult, error) {
	result := &domain.ValidationResult{
		IsValid:     true,
		Errors:      []domain.ValidationError{},
		ValidRows:   []domain.DataRow{},
		InvalidRows: []domain.DataRow{},
	}

	for _, row := range data.Rows {
		rowErrors, err := e.ValidateRow(row, data.Headers, rules)
		if err != nil {
			return nil, err
		}

		if len(rowErrors) == 0 {
			result.ValidRows = append(result.ValidRows, row)
		} else {
			result.InvalidRows = append(result.InvalidRows, row)
			result.Errors = append(result.Errors, rowErrors...)
			result.IsValid = false
		}
	}

	e.logger.Debug("validation completed",
		slog.String("file", data.FileName),
		slog.Int("valid_rows", len(result.ValidRows)),
		slog.Int("invalid_rows", len(result.InvalidRows)),
		slog.Int("errors", len(result.Errors)))

	return result, nil
}

// ValidateRow evaluates every applicable rule against every cell in the
// row and collects all failures rather than stopping at the first
func (e *Engine) ValidateRow(row domain.DataRow, columns []domain.Column, rules domain.RuleSet) ([]domain.ValidationError, error) {
	var rowErrors []domain.ValidationError

	for i, col := range columns {
		colRules, ok := rules[col.Name]
		if !ok || i >= len(row.Values) {
			continue
		}

		cell := row.Values[i]
		for _, rule := range colRules {
			passed, message, err := e.CheckCell(cell, rule)
			if err != nil {
				return nil, err
			}
			if !passed {
				rowErrors = append(rowErrors, domain.ValidationError{
					RowNumber:  row.RowNumber,
					ColumnName: col.Name,
					Value:      cell,
					Rule:       rule,
					Message:    message,
				})
			}
		}
	}

	return rowErrors, nil
}

// CheckCell evaluates a single rule against a single cell. It returns
// whether the cell passed and, on failure, a human-readable message.
// The error return is reserved for malformed rules.
func (e *Engine) CheckCell(cell domain.CellValue, rule domain.ValidationRule) (bool, string, error) {
	switch rule.Kind {
	case domain.RuleRequired:
		if cell.Type == domain.TypeEmpty {
			return false, "value is required", nil
		}
		return true, "", nil

	case domain.RuleMinLength:
		if cell.Type != domain.TypeText {
			return true, "", nil
		}
		if len(cell.Text) < rule.MinLength {
			return false, fmt.Sprintf("text length %d is below minimum %d", len(cell.Text), rule.MinLength), nil
		}
		return true, "", nil

	case domain.RuleMaxLength:
		if cell.Type != domain.TypeText {
			return true, "", nil
		}
		if len(cell.Text) > rule.MaxLength {
			return false, fmt.Sprintf("text length %d exceeds maximum %d", len(cell.Text), rule.MaxLength), nil
		}
		return true, "", nil

	case domain.RuleRange:
		if cell.Type != domain.TypeNumber {
			return true, "", nil
		}
		if cell.Number < rule.Min || cell.Number > rule.Max {
			return false, fmt.Sprintf("number %v is outside range [%v, %v]", cell.Number, rule.Min, rule.Max), nil
		}
		return true, "", nil

	case domain.RulePattern:
		if cell.Type != domain.TypeText {
			return true, "", nil
		}
		re, err := e.compile(rule.Pattern)
		if err != nil {
			return false, "", err
		}
		if !re.MatchString(cell.Text) {
			return false, fmt.Sprintf("text does not match pattern %q", rule.Pattern), nil
		}
		return true, "", nil

	case domain.RuleCustom:
		if rule.Predicate == nil {
			return false, "", apperrors.InvalidRule("custom rule has no predicate")
		}
		if !rule.Predicate(cell) {
			return false, "value rejected by custom rule", nil
		}
		return true, "", nil

	default:
		return false, "", apperrors.InvalidRule(fmt.Sprintf("unknown rule kind: %s", rule.Kind))
	}
}

// compile returns a cached compiled pattern, compiling on first use.
// The cache is shared across files validated by the same engine.
func (e *Engine) compile(expr string) (*regexp.Regexp, error) {
	e.mu.RLock()
	re, ok := e.patterns[expr]
	e.mu.RUnlock()
	if ok {
		return re, nil
	}

	compiled, err := regexp.Compile(expr)
	if err != nil {
		return nil, apperrors.InvalidRule(fmt.Sprintf("invalid pattern %q: %v", expr, err))
	}

	e.mu.Lock()
	e.patterns[expr] = compiled
	e.mu.Unlock()

	return compiled, nil
}
