package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcastellanos/csv-insight-service/internal/core/domain"
	apperrors "github.com/rcastellanos/csv-insight-service/internal/pkg/errors"
)

func TestCheckCell_Required(t *testing.T) {
	engine := NewEngine(nil)
	rule := domain.Required()

	passed, _, err := engine.CheckCell(domain.NewEmpty(), rule)
	require.NoError(t, err)
	assert.False(t, passed)

	// Empty text is still a present value
	passed, _, err = engine.CheckCell(domain.NewText(""), rule)
	require.NoError(t, err)
	assert.True(t, passed)

	passed, _, err = engine.CheckCell(domain.NewNumber(0), rule)
	require.NoError(t, err)
	assert.True(t, passed)
}

func TestCheckCell_Lengths(t *testing.T) {
	engine := NewEngine(nil)

	passed, _, err := engine.CheckCell(domain.NewText("ab"), domain.MinLength(3))
	require.NoError(t, err)
	assert.False(t, passed)

	passed, _, err = engine.CheckCell(domain.NewText("abc"), domain.MinLength(3))
	require.NoError(t, err)
	assert.True(t, passed)

	passed, _, err = engine.CheckCell(domain.NewText("abcd"), domain.MaxLength(3))
	require.NoError(t, err)
	assert.False(t, passed)

	passed, _, err = engine.CheckCell(domain.NewText("abc"), domain.MaxLength(3))
	require.NoError(t, err)
	assert.True(t, passed)
}

func TestCheckCell_Range(t *testing.T) {
	engine := NewEngine(nil)
	rule := domain.Range(0, 100)

	tests := []struct {
		value float64
		want  bool
	}{
		{-1, false},
		{0, true},
		{50, true},
		{100, true},
		{100.5, false},
	}

	for _, tt := range tests {
		passed, _, err := engine.CheckCell(domain.NewNumber(tt.value), rule)
		require.NoError(t, err)
		assert.Equal(t, tt.want, passed, "value %v", tt.value)
	}
}

func TestCheckCell_Pattern(t *testing.T) {
	engine := NewEngine(nil)
	rule := domain.Pattern(`^[A-Z]{2}\d{4}$`)

	passed, _, err := engine.CheckCell(domain.NewText("AB1234"), rule)
	require.NoError(t, err)
	assert.True(t, passed)

	passed, msg, err := engine.CheckCell(domain.NewText("invalid"), rule)
	require.NoError(t, err)
	assert.False(t, passed)
	assert.NotEmpty(t, msg)
}

func TestCheckCell_PatternSearchSemantics(t *testing.T) {
	engine := NewEngine(nil)

	// An unanchored pattern matches anywhere in the text
	passed, _, err := engine.CheckCell(domain.NewText("order-42-final"), domain.Pattern(`\d+`))
	require.NoError(t, err)
	assert.True(t, passed)
}

func TestCheckCell_InvalidPattern(t *testing.T) {
	engine := NewEngine(nil)

	_, _, err := engine.CheckCell(domain.NewText("x"), domain.Pattern("["))
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidRule))
}

func TestCheckCell_Custom(t *testing.T) {
	engine := NewEngine(nil)
	even := domain.Custom(func(cell domain.CellValue) bool {
		return cell.Type == domain.TypeNumber && int(cell.Number)%2 == 0
	})

	passed, _, err := engine.CheckCell(domain.NewNumber(4), even)
	require.NoError(t, err)
	assert.True(t, passed)

	passed, _, err = engine.CheckCell(domain.NewNumber(3), even)
	require.NoError(t, err)
	assert.False(t, passed)
}

func TestCheckCell_CustomWithoutPredicate(t *testing.T) {
	engine := NewEngine(nil)

	_, _, err := engine.CheckCell(domain.NewText("x"), domain.ValidationRule{Kind: domain.RuleCustom})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidRule))
}

func TestCheckCell_VacuousPassOnTypeMismatch(t *testing.T) {
	engine := NewEngine(nil)

	tests := []struct {
		name string
		cell domain.CellValue
		rule domain.ValidationRule
	}{
		{"range on text", domain.NewText("hello"), domain.Range(0, 10)},
		{"range on date", domain.NewDate(time.Now()), domain.Range(0, 10)},
		{"range on empty", domain.NewEmpty(), domain.Range(0, 10)},
		{"min length on number", domain.NewNumber(7), domain.MinLength(5)},
		{"max length on boolean", domain.NewBool(true), domain.MaxLength(1)},
		{"pattern on number", domain.NewNumber(123), domain.Pattern(`^\d$`)},
		{"pattern on empty", domain.NewEmpty(), domain.Pattern("x")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			passed, msg, err := engine.CheckCell(tt.cell, tt.rule)
			require.NoError(t, err)
			assert.True(t, passed)
			assert.Empty(t, msg)
		})
	}
}

func TestValidateRow_CollectsAllFailures(t *testing.T) {
	engine := NewEngine(nil)

	columns := []domain.Column{
		{Name: "name", Index: 0, DataType: domain.TypeText},
		{Name: "age", Index: 1, DataType: domain.TypeNumber},
	}
	row := domain.DataRow{
		RowNumber: 3,
		Values:    []domain.CellValue{domain.NewText("x"), domain.NewNumber(250)},
	}
	rules := domain.RuleSet{
		"name": {domain.MinLength(2), domain.MaxLength(10)},
		"age":  {domain.Range(0, 150)},
	}

	rowErrors, err := engine.ValidateRow(row, columns, rules)
	require.NoError(t, err)
	require.Len(t, rowErrors, 2)

	assert.Equal(t, 3, rowErrors[0].RowNumber)
	assert.Equal(t, "name", rowErrors[0].ColumnName)
	assert.Equal(t, "age", rowErrors[1].ColumnName)
}

func TestValidateData_Partition(t *testing.T) {
	engine := NewEngine(nil)

	data := &domain.CSVData{
		Headers: []domain.Column{
			{Name: "name", Index: 0, DataType: domain.TypeText},
			{Name: "age", Index: 1, DataType: domain.TypeNumber},
		},
		Rows: []domain.DataRow{
			{RowNumber: 1, Values: []domain.CellValue{domain.NewText("Alice"), domain.NewNumber(30)}},
			{RowNumber: 2, Values: []domain.CellValue{domain.NewEmpty(), domain.NewNumber(25)}},
			{RowNumber: 3, Values: []domain.CellValue{domain.NewText("Carol"), domain.NewNumber(200)}},
			{RowNumber: 4, Values: []domain.CellValue{domain.NewText("Dan"), domain.NewNumber(41)}},
		},
	}
	rules := domain.RuleSet{
		"name": {domain.Required()},
		"age":  {domain.Range(0, 150)},
	}

	result, err := engine.ValidateData(data, rules)
	require.NoError(t, err)

	assert.False(t, result.IsValid)
	// Exact partition, source order preserved within each side
	require.Len(t, result.ValidRows, 2)
	require.Len(t, result.InvalidRows, 2)
	assert.Equal(t, 1, result.ValidRows[0].RowNumber)
	assert.Equal(t, 4, result.ValidRows[1].RowNumber)
	assert.Equal(t, 2, result.InvalidRows[0].RowNumber)
	assert.Equal(t, 3, result.InvalidRows[1].RowNumber)
	assert.Len(t, result.Errors, 2)
}

func TestValidateData_NoRules(t *testing.T) {
	engine := NewEngine(nil)

	data := &domain.CSVData{
		Headers: []domain.Column{{Name: "a", Index: 0, DataType: domain.TypeText}},
		Rows: []domain.DataRow{
			{RowNumber: 1, Values: []domain.CellValue{domain.NewText("x")}},
		},
	}

	result, err := engine.ValidateData(data, domain.RuleSet{})
	require.NoError(t, err)
	assert.True(t, result.IsValid)
	assert.Empty(t, result.Errors)
	assert.Len(t, result.ValidRows, 1)
	assert.Empty(t, result.InvalidRows)
}

func TestValidateData_RequiredEmptySingleError(t *testing.T) {
	engine := NewEngine(nil)

	// An Empty cell under Required plus length rules yields exactly one
	// error: the length rules pass vacuously
	data := &domain.CSVData{
		Headers: []domain.Column{{Name: "code", Index: 0, DataType: domain.TypeText}},
		Rows: []domain.DataRow{
			{RowNumber: 1, Values: []domain.CellValue{domain.NewEmpty()}},
		},
	}
	rules := domain.RuleSet{
		"code": {domain.Required(), domain.MinLength(3), domain.MaxLength(8)},
	}

	result, err := engine.ValidateData(data, rules)
	require.NoError(t, err)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, domain.RuleRequired, result.Errors[0].Rule.Kind)
}
