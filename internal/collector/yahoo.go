package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"StockArchive/internal/model"

	"github.com/go-resty/resty/v2"
)

const yahooBaseURL = "https://query1.finance.yahoo.com"

// yahooEpoch is the period1 sent for the full history. Yahoo answers
// range=max with coarser bars, an explicit window stays daily.
const yahooEpoch = -2208994789

// YahooFetcher implements Fetcher using Yahoo Finance public chart API.
type YahooFetcher struct {
	Client    *resty.Client
	SymbolMap map[string]string // maps watchlist symbol to Yahoo ticker
	Now       func() time.Time
}

// NewYahooFetcher creates a new Yahoo Finance fetcher. An empty baseURL uses
// the public endpoint.
func NewYahooFetcher(baseURL, proxyURL string, timeout time.Duration) *YahooFetcher {
	if baseURL == "" {
		baseURL = yahooBaseURL
	}
	return &YahooFetcher{
		Client: newClient(baseURL, proxyURL, timeout).
			SetHeader("User-Agent", "Mozilla/5.0"),
		SymbolMap: map[string]string{
			"SPX500": "^GSPC",
			"SPX":    "^GSPC",
			"SP500":  "^GSPC",
		},
		Now: time.Now,
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

func (f *YahooFetcher) yahooSymbol(symbol string) string {
	if mapped, ok := f.SymbolMap[symbol]; ok {
		return mapped
	}
	return symbol
}

// yahooChart is the response structure from Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol               string `json:"symbol"`
				GMTOffset            int    `json:"gmtoffset"`
				ExchangeTimezoneName string `json:"exchangeTimezoneName"`
				DataGranularity      string `json:"dataGranularity"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// FetchHistory downloads the maximum available range of daily bars.
func (f *YahooFetcher) FetchHistory(ctx context.Context, symbol string) (*model.Frame, error) {
	resp, err := f.Client.R().
		SetContext(ctx).
		SetPathParam("symbol", f.yahooSymbol(symbol)).
		SetQueryParams(map[string]string{
			"interval": "1d",
			"period1":  strconv.FormatInt(yahooEpoch, 10),
			"period2":  strconv.FormatInt(f.Now().Unix(), 10),
			"events":   "div,splits",
		}).
		Get("/v8/finance/chart/{symbol}")
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch: %w", err)
	}

	var chart yahooChart
	if err := json.Unmarshal(resp.Body(), &chart); err != nil {
		if resp.StatusCode() != http.StatusOK {
			return nil, fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode(), resp.String())
		}
		return nil, fmt.Errorf("yahoo decode: %w", err)
	}
	if e := chart.Chart.Error; e != nil {
		if e.Code == "Not Found" {
			return nil, fmt.Errorf("yahoo %s: %s: %w", symbol, e.Description, ErrNotFound)
		}
		return nil, fmt.Errorf("yahoo api error: %s", e.Description)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode(), resp.String())
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 {
		return &model.Frame{}, nil
	}

	result := chart.Chart.Result[0]
	if g := result.Meta.DataGranularity; g != "" && g != "1d" {
		return nil, fmt.Errorf("yahoo %s: expected daily bars, got granularity %q", symbol, g)
	}
	if len(result.Indicators.Quote) == 0 {
		return &model.Frame{}, nil
	}
	quote := result.Indicators.Quote[0]
	loc := time.FixedZone(result.Meta.ExchangeTimezoneName, result.Meta.GMTOffset)

	series := [][]*float64{quote.Open, quote.High, quote.Low, quote.Close, quote.Volume}
	frame := &model.Frame{
		Columns: make([]model.Column, len(model.OHLCVFields)),
		Values:  make([][]*float64, len(model.OHLCVFields)),
	}
	for i, field := range model.OHLCVFields {
		frame.Columns[i] = model.Column{Field: field}
	}

	for i, ts := range result.Timestamp {
		o, h, l, c := at(quote.Open, i), at(quote.High, i), at(quote.Low, i), at(quote.Close, i)
		if o == nil && h == nil && l == nil && c == nil {
			continue // skip null bars (holidays etc.)
		}
		frame.Index = append(frame.Index, time.Unix(ts, 0).In(loc))
		for col, s := range series {
			frame.Values[col] = append(frame.Values[col], at(s, i))
		}
	}
	return frame, nil
}

func at(values []*float64, i int) *float64 {
	if i < len(values) {
		return values[i]
	}
	return nil
}
