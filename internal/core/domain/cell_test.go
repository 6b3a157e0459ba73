package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCellValue_EmptyDistinctFromBlankText(t *testing.T) {
	empty := NewEmpty()
	blank := NewText("")

	assert.True(t, empty.IsEmpty())
	assert.False(t, blank.IsEmpty())
	assert.False(t, empty.Equal(blank))
	assert.NotEqual(t, empty.Key(), blank.Key())
}

func TestCellValue_Key_StructuralEquality(t *testing.T) {
	ts := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		a     CellValue
		b     CellValue
		equal bool
	}{
		{"same number", NewNumber(42), NewNumber(42), true},
		{"different number", NewNumber(42), NewNumber(42.5), false},
		{"same text", NewText("hello"), NewText("hello"), true},
		{"text vs number rendering", NewText("42"), NewNumber(42), false},
		{"same date", NewDate(ts), NewDate(ts), true},
		{"date vs shifted date", NewDate(ts), NewDate(ts.Add(time.Second)), false},
		{"same bool", NewBool(true), NewBool(true), true},
		{"bool vs text", NewBool(true), NewText("true"), false},
		{"empty vs empty", NewEmpty(), NewEmpty(), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.equal, tt.a.Equal(tt.b))
		})
	}
}

func TestCellValue_String(t *testing.T) {
	ts := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "hello", NewText("hello").String())
	assert.Equal(t, "42.5", NewNumber(42.5).String())
	assert.Equal(t, "42", NewNumber(42).String())
	assert.Equal(t, "true", NewBool(true).String())
	assert.Equal(t, "2024-03-15T00:00:00Z", NewDate(ts).String())
	assert.Equal(t, "", NewEmpty().String())
}

func TestValidDataTypes(t *testing.T) {
	types := ValidDataTypes()

	assert.Len(t, types, 5)
	assert.Contains(t, types, TypeNumber)
	assert.Contains(t, types, TypeEmpty)
}
