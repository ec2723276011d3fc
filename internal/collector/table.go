package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"StockArchive/internal/model"
	"StockArchive/internal/store"

	"github.com/go-resty/resty/v2"
)

// TableFetcher implements Fetcher against a generic table service that
// returns split-orient frames, possibly with compound column labels.
type TableFetcher struct {
	Client *resty.Client
}

// NewTableFetcher creates a new fetcher with optional proxy support.
func NewTableFetcher(baseURL, apiKey, proxyURL string, timeout time.Duration) *TableFetcher {
	client := newClient(baseURL, proxyURL, timeout)
	if apiKey != "" {
		client.SetAuthToken(apiKey)
	}
	return &TableFetcher{Client: client}
}

func (f *TableFetcher) Name() string { return "table" }

// tableLabel accepts either "Open" or ["Open", "AAA"].
type tableLabel model.Column

func (l *tableLabel) UnmarshalJSON(data []byte) error {
	var field string
	if err := json.Unmarshal(data, &field); err == nil {
		*l = tableLabel{Field: field}
		return nil
	}
	var parts []string
	if err := json.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("column label %s: %w", string(data), err)
	}
	switch len(parts) {
	case 1:
		*l = tableLabel{Field: parts[0]}
	case 2:
		*l = tableLabel{Field: parts[0], Ticker: parts[1]}
	default:
		return fmt.Errorf("column label %s: expected 1 or 2 levels, got %d", string(data), len(parts))
	}
	return nil
}

// indexLayouts are tried in order. Layouts without an offset parse as UTC.
var indexLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	store.DateFormat,
}

func parseIndex(s string) (time.Time, error) {
	for _, layout := range indexLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised index timestamp %q", s)
}

// tableResponse is the split-orient JSON shape returned by the table service.
type tableResponse struct {
	Columns []tableLabel `json:"columns"`
	Index   []string     `json:"index"`
	Data    [][]*float64 `json:"data"`
}

func (f *TableFetcher) FetchHistory(ctx context.Context, symbol string) (*model.Frame, error) {
	resp, err := f.Client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetQueryParams(map[string]string{
			"symbol":   symbol,
			"period":   "max",
			"interval": "1d",
		}).
		Get("/api/v1/history")
	if err != nil {
		return nil, fmt.Errorf("fetch history: %w", err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, fmt.Errorf("fetch history %s: %w", symbol, ErrNotFound)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("fetch history: status %d, body: %s", resp.StatusCode(), resp.String())
	}

	var table tableResponse
	if err := json.Unmarshal(resp.Body(), &table); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}
	return table.frame()
}

func (t *tableResponse) frame() (*model.Frame, error) {
	if len(t.Data) != len(t.Index) {
		return nil, fmt.Errorf("decode history: %d index entries for %d rows", len(t.Index), len(t.Data))
	}
	index := make([]time.Time, len(t.Index))
	for i, s := range t.Index {
		ts, err := parseIndex(s)
		if err != nil {
			return nil, fmt.Errorf("decode history: row %d: %w", i, err)
		}
		index[i] = ts
	}
	frame := &model.Frame{
		Index:   index,
		Columns: make([]model.Column, len(t.Columns)),
		Values:  make([][]*float64, len(t.Columns)),
	}
	for i, c := range t.Columns {
		frame.Columns[i] = model.Column(c)
		frame.Values[i] = make([]*float64, len(t.Data))
	}
	for row, values := range t.Data {
		if len(values) != len(t.Columns) {
			return nil, fmt.Errorf("decode history: row %d has %d values for %d columns", row, len(values), len(t.Columns))
		}
		for col, v := range values {
			frame.Values[col][row] = v
		}
	}
	return frame, nil
}
