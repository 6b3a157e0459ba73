package domain

// RuleKind identifies a validation rule type
type RuleKind string

const (
	RuleRequired  RuleKind = "required"
	RuleMinLength RuleKind = "min_length"
	RuleMaxLength RuleKind = "max_length"
	RuleRange     RuleKind = "range"
	RulePattern   RuleKind = "pattern"
	RuleCustom    RuleKind = "custom"
)

// ValidationRule is a declarative constraint evaluated against one cell.
// Kind selects the active variant; only the fields for that variant are
// meaningful. Rules are immutable after construction and safe to share
// across files and goroutines.
type ValidationRule struct {
	Kind      RuleKind             `json:"kind"`
	MinLength int                  `json:"min_length,omitempty"`
	MaxLength int                  `json:"max_length,omitempty"`
	Min       float64              `json:"min,omitempty"`
	Max       float64              `json:"max,omitempty"`
	Pattern   string               `json:"pattern,omitempty"`
	Predicate func(CellValue) bool `json:"-"`
}

// Required builds a rule that rejects Empty cells
func Required() ValidationRule {
	return ValidationRule{Kind: RuleRequired}
}

// MinLength builds a rule that rejects Text shorter than n
func MinLength(n int) ValidationRule {
	return ValidationRule{Kind: RuleMinLength, MinLength: n}
}

// MaxLength builds a rule that rejects Text longer than n
func MaxLength(n int) ValidationRule {
	return ValidationRule{Kind: RuleMaxLength, MaxLength: n}
}

// Range builds a rule that rejects Numbers outside [min, max]
func Range(min, max float64) ValidationRule {
	return ValidationRule{Kind: RuleRange, Min: min, Max: max}
}

// Pattern builds a rule that rejects Text not containing a match for the
// given regular expression (search semantics, not a full-string anchor)
func Pattern(expr string) ValidationRule {
	return ValidationRule{Kind: RulePattern, Pattern: expr}
}

// Custom builds a rule backed by a caller-supplied predicate; the cell
// fails when the predicate returns false
func Custom(predicate func(CellValue) bool) ValidationRule {
	return ValidationRule{Kind: RuleCustom, Predicate: predicate}
}

// RuleSet maps column names to the rules evaluated against that column.
// Columns with no entry have no rules.
type RuleSet map[string][]ValidationRule

// ValidationError records one failed rule evaluation. Produced once,
// never mutated.
type ValidationError struct {
	RowNumber  int            `json:"row_number"`
	ColumnName string         `json:"column_name"`
	Value      CellValue      `json:"value"`
	Rule       ValidationRule `json:"rule"`
	Message    string         `json:"message"`
}

// ValidationResult partitions the validated rows. ValidRows and InvalidRows
// partition the input exactly, preserving source order within each side;
// IsValid holds iff Errors is empty iff InvalidRows is empty.
type ValidationResult struct {
	IsValid     bool              `json:"is_valid"`
	Errors      []ValidationError `json:"errors"`
	ValidRows   []DataRow         `json:"-"`
	InvalidRows []DataRow         `json:"-"`
}
