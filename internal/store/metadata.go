package store

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"StockArchive/internal/model"
)

// TimestampFormat is the layout of RunMetadata.LastUpdated, before the UTC suffix.
const TimestampFormat = "2006-01-02 15:04:05"

// NewMetadata builds the run metadata for the given completion time.
func NewMetadata(stocks []string, now time.Time) *model.RunMetadata {
	if stocks == nil {
		stocks = []string{}
	}
	return &model.RunMetadata{
		LastUpdated: now.UTC().Format(TimestampFormat) + " UTC",
		Stocks:      stocks,
	}
}

// WriteMetadata overwrites the metadata file. Earlier runs are not merged.
func WriteMetadata(path string, stocks []string, now time.Time) error {
	data, err := json.MarshalIndent(NewMetadata(stocks, now), "", "  ")
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	return nil
}

// LoadMetadata reads the metadata file. Returns nil if the file doesn't exist.
func LoadMetadata(path string) (*model.RunMetadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var meta model.RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	return &meta, nil
}
