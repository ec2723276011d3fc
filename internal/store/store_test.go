package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"StockArchive/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }

func ohlcvFrame() *model.Frame {
	return &model.Frame{
		Index: []time.Time{day(3), day(2)},
		Columns: []model.Column{
			{Field: model.FieldOpen}, {Field: model.FieldHigh}, {Field: model.FieldLow},
			{Field: model.FieldClose}, {Field: model.FieldVolume},
		},
		Values: [][]*float64{
			{model.Float(593.0), model.Float(590.0)},
			{model.Float(594.456), model.Float(593.0)},
			{model.Float(586.125), model.Float(589.0)},
			{model.Float(586.0), nil},
			{model.Float(37106763), model.Float(26059058)},
		},
	}
}

func TestEncodeSeries(t *testing.T) {
	data, err := EncodeSeries(ohlcvFrame())
	require.NoError(t, err)

	want := `{"2024-01-02":{"Open":590,"High":593,"Low":589,"Close":null,"Volume":26059058},` +
		`"2024-01-03":{"Open":593,"High":594.46,"Low":586.13,"Close":586,"Volume":37106763}}`
	assert.Equal(t, want, string(data))
}

func TestEncodeSeries_OnlyPresentFields(t *testing.T) {
	f := &model.Frame{
		Index:   []time.Time{day(2)},
		Columns: []model.Column{{Field: model.FieldClose}},
		Values:  [][]*float64{{model.Float(10.005)}},
	}
	data, err := EncodeSeries(f)
	require.NoError(t, err)
	assert.JSONEq(t, `{"2024-01-02":{"Close":10.01}}`, string(data))
}

func TestEncodeSeries_DuplicateDateLastWins(t *testing.T) {
	f := &model.Frame{
		Index:   []time.Time{day(2), day(2).Add(9 * time.Hour)},
		Columns: []model.Column{{Field: model.FieldClose}},
		Values:  [][]*float64{{model.Float(1), model.Float(2)}},
	}
	data, err := EncodeSeries(f)
	require.NoError(t, err)
	assert.Equal(t, `{"2024-01-02":{"Close":2}}`, string(data))
}

func TestEncodeSeries_Deterministic(t *testing.T) {
	a, err := EncodeSeries(ohlcvFrame())
	require.NoError(t, err)
	b, err := EncodeSeries(ohlcvFrame())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestWriteSeries(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	require.NoError(t, EnsureDir(dir))

	path, err := WriteSeries(dir, "2330.TW", []byte(`{"old":true}`))
	require.NoError(t, err)
	path, err = WriteSeries(dir, "2330.TW", []byte(`{}`))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "2330.TW.json"), path)
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(got))
}

func TestWriteSeries_RejectsPathSymbols(t *testing.T) {
	dir := t.TempDir()
	for _, s := range []string{"", "..", "a/b", `a\b`} {
		_, err := WriteSeries(dir, s, []byte(`{}`))
		assert.Error(t, err, s)
	}
}

func TestMetadataRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metadata.json")
	now := time.Date(2024, 5, 6, 7, 8, 9, 0, time.FixedZone("CST", 8*3600))

	require.NoError(t, WriteMetadata(path, []string{"AAA", "CCC"}, now))
	meta, err := LoadMetadata(path)
	require.NoError(t, err)
	assert.Equal(t, "2024-05-05 23:08:09 UTC", meta.LastUpdated)
	assert.Equal(t, []string{"AAA", "CCC"}, meta.Stocks)

	require.NoError(t, WriteMetadata(path, nil, now))
	meta, err = LoadMetadata(path)
	require.NoError(t, err)
	assert.Equal(t, []string{}, meta.Stocks, "overwritten, not merged")
}

func TestLoadMetadata_Missing(t *testing.T) {
	meta, err := LoadMetadata(filepath.Join(t.TempDir(), "metadata.json"))
	require.NoError(t, err)
	assert.Nil(t, meta)
}
