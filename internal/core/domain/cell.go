package domain

import (
	"fmt"
	"strconv"
	"time"
)

// DataType identifies the semantic type of a cell or column
type DataType string

const (
	TypeText    DataType = "text"
	TypeNumber  DataType = "number"
	TypeDate    DataType = "date"
	TypeBoolean DataType = "boolean"
	TypeEmpty   DataType = "empty"
)

// ValidDataTypes returns the list of valid data types
func ValidDataTypes() []DataType {
	return []DataType{TypeText, TypeNumber, TypeDate, TypeBoolean, TypeEmpty}
}

// CellValue is a tagged union over the five cell variants. Exactly one
// variant is active, selected by Type; the other payload fields are zero.
// Empty represents a missing value and is distinct from Text("").
type CellValue struct {
	Type   DataType  `json:"type"`
	Text   string    `json:"text,omitempty"`
	Number float64   `json:"number,omitempty"`
	Date   time.Time `json:"date,omitempty"`
	Bool   bool      `json:"bool,omitempty"`
}

// NewText creates a Text cell value
func NewText(s string) CellValue {
	return CellValue{Type: TypeText, Text: s}
}

// NewNumber creates a Number cell value
func NewNumber(n float64) CellValue {
	return CellValue{Type: TypeNumber, Number: n}
}

// NewDate creates a Date cell value
func NewDate(t time.Time) CellValue {
	return CellValue{Type: TypeDate, Date: t}
}

// NewBool creates a Boolean cell value
func NewBool(b bool) CellValue {
	return CellValue{Type: TypeBoolean, Bool: b}
}

// NewEmpty creates an Empty cell value
func NewEmpty() CellValue {
	return CellValue{Type: TypeEmpty}
}

// IsEmpty reports whether the cell holds the Empty variant
func (c CellValue) IsEmpty() bool {
	return c.Type == TypeEmpty
}

// String renders the cell for display and reports
func (c CellValue) String() string {
	switch c.Type {
	case TypeText:
		return c.Text
	case TypeNumber:
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	case TypeDate:
		return c.Date.Format(time.RFC3339)
	case TypeBoolean:
		return strconv.FormatBool(c.Bool)
	default:
		return ""
	}
}

// Key returns a canonical representation used for structural equality
// across all variants, e.g. when counting distinct values. Two cells are
// equal iff their keys are equal.
func (c CellValue) Key() string {
	switch c.Type {
	case TypeText:
		return "t:" + c.Text
	case TypeNumber:
		return "n:" + strconv.FormatFloat(c.Number, 'g', -1, 64)
	case TypeDate:
		return "d:" + strconv.FormatInt(c.Date.UnixNano(), 10)
	case TypeBoolean:
		return "b:" + strconv.FormatBool(c.Bool)
	default:
		return "e:"
	}
}

// Equal reports structural equality between two cell values
func (c CellValue) Equal(other CellValue) bool {
	return c.Key() == other.Key()
}

// GoString helps test failure output stay readable
func (c CellValue) GoString() string {
	return fmt.Sprintf("CellValue(%s=%s)", c.Type, c.String())
}
