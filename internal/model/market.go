package model

import (
	"strings"
	"time"
)

// Canonical OHLCV field names, in output order.
const (
	FieldOpen   = "Open"
	FieldHigh   = "High"
	FieldLow    = "Low"
	FieldClose  = "Close"
	FieldVolume = "Volume"
)

// OHLCVFields lists the fields kept in a price table.
var OHLCVFields = []string{FieldOpen, FieldHigh, FieldLow, FieldClose, FieldVolume}

// Column is a table column label. Ticker is set only for compound labels,
// where a provider batches several symbols into one table.
type Column struct {
	Field  string
	Ticker string
}

// Compound reports whether the label carries a ticker level.
func (c Column) Compound() bool { return c.Ticker != "" }

func (c Column) String() string {
	if c.Compound() {
		return c.Field + "/" + c.Ticker
	}
	return c.Field
}

// Frame is a date-indexed table as returned by a data provider.
// Values is column-major: Values[col][row]. A nil cell is missing.
type Frame struct {
	Index   []time.Time
	Columns []Column
	Values  [][]*float64
}

// Empty reports whether the frame has no rows.
func (f *Frame) Empty() bool {
	return f == nil || len(f.Index) == 0
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	if f == nil {
		return 0
	}
	return len(f.Index)
}

// Compound reports whether any column uses a compound label.
func (f *Frame) Compound() bool {
	for _, c := range f.Columns {
		if c.Compound() {
			return true
		}
	}
	return false
}

// ColumnIndex returns the position of the first column whose field matches
// name case-insensitively, or -1.
func (f *Frame) ColumnIndex(name string) int {
	for i, c := range f.Columns {
		if strings.EqualFold(c.Field, name) {
			return i
		}
	}
	return -1
}

// Float returns a pointer to v, for building frames.
func Float(v float64) *float64 { return &v }
