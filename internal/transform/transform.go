// Package transform reshapes provider frames into price tables.
//
// Providers do not agree on column shape. Normalize recognises these shapes:
//
//	shape                      labels            result
//	flat                       Field             unchanged
//	compound, symbol present   (Field, Ticker)   columns for symbol, ticker level dropped
//	compound, symbol absent    (Field, Ticker)   unchanged (fallback)
//
// After a fallback, SelectFields takes the first column per field.
package transform

import (
	"time"

	"StockArchive/internal/model"
)

// Shape describes what Normalize found.
type Shape int

const (
	ShapeFlat Shape = iota
	ShapeCompound
	ShapeCompoundFallback
)

func (s Shape) String() string {
	switch s {
	case ShapeFlat:
		return "flat"
	case ShapeCompound:
		return "compound"
	case ShapeCompoundFallback:
		return "compound-fallback"
	default:
		return "unknown"
	}
}

// Normalize flattens compound column labels to the slice for symbol.
// The input frame is not modified.
func Normalize(f *model.Frame, symbol string) (*model.Frame, Shape) {
	if !f.Compound() {
		return f, ShapeFlat
	}

	out := &model.Frame{Index: f.Index}
	for i, c := range f.Columns {
		if c.Ticker != symbol {
			continue
		}
		out.Columns = append(out.Columns, model.Column{Field: c.Field})
		out.Values = append(out.Values, f.Values[i])
	}
	if len(out.Columns) == 0 {
		return f, ShapeCompoundFallback
	}
	return out, ShapeCompound
}

// SelectFields keeps the OHLCV columns that are present, in canonical order,
// and drops everything else. Field names are matched case-insensitively and
// the first matching column wins.
func SelectFields(f *model.Frame) *model.Frame {
	out := &model.Frame{Index: f.Index}
	for _, field := range model.OHLCVFields {
		i := f.ColumnIndex(field)
		if i < 0 {
			continue
		}
		out.Columns = append(out.Columns, model.Column{Field: field})
		out.Values = append(out.Values, f.Values[i])
	}
	return out
}

// StripTimezone re-anchors every index timestamp's wall clock in UTC,
// leaving naive dates that serialize without an offset.
func StripTimezone(f *model.Frame) *model.Frame {
	index := make([]time.Time, len(f.Index))
	for i, t := range f.Index {
		index[i] = time.Date(t.Year(), t.Month(), t.Day(),
			t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
	}
	return &model.Frame{Index: index, Columns: f.Columns, Values: f.Values}
}

// PriceTable runs the full reshape: Normalize, SelectFields, StripTimezone.
func PriceTable(f *model.Frame, symbol string) (*model.Frame, Shape) {
	normalized, shape := Normalize(f, symbol)
	return StripTimezone(SelectFields(normalized)), shape
}
