package watchlist

import (
	"fmt"
	"os"
	"strings"
)

// Load reads one symbol per line from path, trimming whitespace and skipping
// blank lines. File order is kept and duplicates are not removed. A missing
// file yields a single-entry list holding defaultSymbol.
func Load(path, defaultSymbol string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{defaultSymbol}, nil
		}
		return nil, fmt.Errorf("read watchlist: %w", err)
	}

	var symbols []string
	for _, line := range strings.Split(string(data), "\n") {
		if s := strings.TrimSpace(line); s != "" {
			symbols = append(symbols, s)
		}
	}
	return symbols, nil
}
