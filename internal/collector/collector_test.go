package collector

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"StockArchive/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yahooTwoBars = `{"chart":{"result":[{
  "meta":{"symbol":"2330.TW","gmtoffset":28800,"exchangeTimezoneName":"Asia/Taipei","dataGranularity":"1d"},
  "timestamp":[1704153600,1704240000,1704326400],
  "indicators":{"quote":[{
    "open":[590.0,null,593.0],
    "high":[593.0,null,594.5],
    "low":[589.0,null,586.0],
    "close":[593.0,null,586.0],
    "volume":[26059058,null,37106763]
  }]}
}],"error":null}}`

func TestYahooFetcher_FetchHistory(t *testing.T) {
	var gotPath, gotInterval string
	var gotQuery url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		gotInterval = gotQuery.Get("interval")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(yahooTwoBars))
	}))
	defer srv.Close()

	f := NewYahooFetcher(srv.URL, "", 5*time.Second)
	f.Now = func() time.Time { return time.Unix(1704412800, 0) }
	frame, err := f.FetchHistory(context.Background(), "2330.TW")
	require.NoError(t, err)

	assert.Equal(t, "/v8/finance/chart/2330.TW", gotPath)
	assert.Equal(t, "1d", gotInterval)
	assert.Equal(t, "-2208994789", gotQuery.Get("period1"))
	assert.Equal(t, "1704412800", gotQuery.Get("period2"))
	assert.False(t, gotQuery.Has("range"))

	require.Equal(t, 2, frame.Len(), "all-null bar is dropped")
	assert.False(t, frame.Compound())
	require.Len(t, frame.Columns, 5)
	assert.Equal(t, model.FieldOpen, frame.Columns[0].Field)
	assert.Equal(t, model.FieldVolume, frame.Columns[4].Field)

	_, offset := frame.Index[0].Zone()
	assert.Equal(t, 28800, offset)
	assert.Equal(t, "2024-01-02", frame.Index[0].Format("2006-01-02"))
	assert.Equal(t, 593.0, *frame.Values[0][1])
	assert.Equal(t, 37106763.0, *frame.Values[4][1])
}

func TestYahooFetcher_SymbolMap(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"chart":{"result":[{"timestamp":[],"indicators":{"quote":[{}]}}],"error":null}}`))
	}))
	defer srv.Close()

	frame, err := NewYahooFetcher(srv.URL, "", time.Second).FetchHistory(context.Background(), "SPX500")
	require.NoError(t, err)
	assert.True(t, frame.Empty())
	assert.Equal(t, "/v8/finance/chart/^GSPC", gotPath)
}

func TestYahooFetcher_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`))
	}))
	defer srv.Close()

	_, err := NewYahooFetcher(srv.URL, "", time.Second).FetchHistory(context.Background(), "ZZZZ")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestYahooFetcher_RejectsCoarseGranularity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"chart":{"result":[{
  "meta":{"symbol":"2330.TW","gmtoffset":28800,"dataGranularity":"3mo"},
  "timestamp":[1704153600],
  "indicators":{"quote":[{"open":[1],"high":[1],"low":[1],"close":[1],"volume":[1]}]}
}],"error":null}}`))
	}))
	defer srv.Close()

	_, err := NewYahooFetcher(srv.URL, "", time.Second).FetchHistory(context.Background(), "2330.TW")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "3mo")
}

func TestYahooFetcher_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	}))
	defer srv.Close()

	_, err := NewYahooFetcher(srv.URL, "", time.Second).FetchHistory(context.Background(), "2330.TW")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), "502")
}

func TestTableFetcher_CompoundColumns(t *testing.T) {
	var gotAuth, gotSymbol string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotSymbol = r.URL.Query().Get("symbol")
		_, _ = w.Write([]byte(`{
  "columns": [["Open","AAA"],["Close","AAA"],["Adj Close","AAA"]],
  "index": ["2024-01-02T00:00:00-05:00","2024-01-03T00:00:00-05:00"],
  "data": [[10.111, 10.5, 10.4],[10.6, null, 10.7]]
}`))
	}))
	defer srv.Close()

	f := NewTableFetcher(srv.URL, "secret", "", time.Second)
	frame, err := f.FetchHistory(context.Background(), "AAA")
	require.NoError(t, err)

	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "AAA", gotSymbol)
	assert.True(t, frame.Compound())
	assert.Equal(t, model.Column{Field: "Open", Ticker: "AAA"}, frame.Columns[0])
	require.Equal(t, 2, frame.Len())
	assert.Nil(t, frame.Values[1][1])
	assert.Equal(t, 10.6, *frame.Values[0][1])
}

func TestTableFetcher_NaiveIndex(t *testing.T) {
	for _, ts := range []string{"2024-01-02", "2024-01-02T00:00:00.000", "2024-01-02T00:00:00"} {
		t.Run(ts, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"columns":["Close"],"index":["` + ts + `"],"data":[[10.5]]}`))
			}))
			defer srv.Close()

			frame, err := NewTableFetcher(srv.URL, "", "", time.Second).FetchHistory(context.Background(), "AAA")
			require.NoError(t, err)
			require.Equal(t, 1, frame.Len())
			assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), frame.Index[0])
		})
	}
}

func TestTableFetcher_BadIndex(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"columns":["Close"],"index":["02/01/2024"],"data":[[10.5]]}`))
	}))
	defer srv.Close()

	_, err := NewTableFetcher(srv.URL, "", "", time.Second).FetchHistory(context.Background(), "AAA")
	assert.ErrorContains(t, err, "02/01/2024")
}

func TestTableFetcher_MalformedRows(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"columns":["Open","Close"],"index":["2024-01-02T00:00:00Z"],"data":[[1.0]]}`))
	}))
	defer srv.Close()

	_, err := NewTableFetcher(srv.URL, "", "", time.Second).FetchHistory(context.Background(), "AAA")
	assert.Error(t, err)
}

func TestTableFetcher_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewTableFetcher(srv.URL, "", "", time.Second).FetchHistory(context.Background(), "AAA")
	assert.ErrorIs(t, err, ErrNotFound)
}
