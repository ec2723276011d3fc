package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"StockArchive/internal/model"

	"github.com/shopspring/decimal"
)

// DateFormat is the key format of a series file.
const DateFormat = "2006-01-02"

// pricePlaces is the number of fractional digits kept for prices.
const pricePlaces = 2

// seriesRow is one date's record. Fields are written in column order.
type seriesRow struct {
	fields []string
	values []*float64
}

func (r seriesRow) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, field := range r.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(field)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(formatValue(field, r.values[i]))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// formatValue renders prices rounded to two places and volume as an integer.
func formatValue(field string, v *float64) string {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return "null"
	}
	places := int32(pricePlaces)
	if field == model.FieldVolume {
		places = 0
	}
	return decimal.NewFromFloat(*v).Round(places).String()
}

// EncodeSeries serializes a price table as a JSON object keyed by calendar
// date. Keys come out sorted, so equal tables encode to equal bytes. When two
// rows share a date the later row wins.
func EncodeSeries(f *model.Frame) ([]byte, error) {
	names := make([]string, len(f.Columns))
	for i, c := range f.Columns {
		names[i] = c.Field
	}

	rows := make(map[string]seriesRow, f.Len())
	for r, t := range f.Index {
		values := make([]*float64, len(f.Columns))
		for c := range f.Columns {
			if r < len(f.Values[c]) {
				values[c] = f.Values[c][r]
			}
		}
		rows[t.Format(DateFormat)] = seriesRow{fields: names, values: values}
	}

	data, err := json.Marshal(rows)
	if err != nil {
		return nil, fmt.Errorf("encode series: %w", err)
	}
	return data, nil
}

// SeriesPath returns the output file for symbol inside dir.
func SeriesPath(dir, symbol string) string {
	return filepath.Join(dir, symbol+".json")
}

// WriteSeries overwrites the series file for symbol with data.
func WriteSeries(dir, symbol string, data []byte) (string, error) {
	if symbol == "" || strings.ContainsAny(symbol, `/\`) || symbol == "." || symbol == ".." {
		return "", fmt.Errorf("invalid symbol %q for a file name", symbol)
	}
	path := SeriesPath(dir, symbol)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write series: %w", err)
	}
	return path, nil
}

// EnsureDir creates the output directory if it does not exist.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	return nil
}
